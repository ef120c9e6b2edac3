/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoir/procyon/pkg/schema"
)

func TestEffectiveWindow(t *testing.T) {
	now := int64(1600000000)

	t.Run("no window anywhere", func(t *testing.T) {
		require.Nil(t, effectiveWindow(nil, nil, now))
	})

	t.Run("referent window wins over request window", func(t *testing.T) {
		w := effectiveWindow(
			&schema.NonRevokedInterval{From: 5, To: 10},
			&schema.NonRevokedInterval{From: 1, To: 2},
			now)
		require.Equal(t, &schema.NonRevokedInterval{From: 5, To: 10}, w)
	})

	t.Run("request window applies when referent has none", func(t *testing.T) {
		w := effectiveWindow(nil, &schema.NonRevokedInterval{From: 1, To: 2}, now)
		require.Equal(t, &schema.NonRevokedInterval{From: 1, To: 2}, w)
	})

	t.Run("missing bounds default to zero and now", func(t *testing.T) {
		w := effectiveWindow(&schema.NonRevokedInterval{From: -1, To: 0}, nil, now)
		require.Equal(t, int64(0), w.From)
		require.Equal(t, now, w.To)
		require.True(t, 0 <= w.From && w.From <= w.To)
	})

	t.Run("inputs are never mutated", func(t *testing.T) {
		referent := &schema.NonRevokedInterval{From: -3, To: 0}
		request := &schema.NonRevokedInterval{From: 4, To: 0}

		_ = effectiveWindow(referent, request, now)
		require.Equal(t, &schema.NonRevokedInterval{From: -3, To: 0}, referent)
		require.Equal(t, &schema.NonRevokedInterval{From: 4, To: 0}, request)
	})
}

func TestFetchDeltas(t *testing.T) {
	newResolver := func(session *mockSession) (*revocationResolver, *mockLedger) {
		ledger := &mockLedger{session: session}
		return &revocationResolver{
			ledger: ledger,
			now:    func() int64 { return 1600000000 },
		}, ledger
	}

	t.Run("fetches once per distinct registry and window", func(t *testing.T) {
		session := &mockSession{deltaTimestamps: map[string]int64{"rev-reg-1": 42}}
		resolver, ledger := newResolver(session)

		interval := &schema.NonRevokedInterval{From: 0, To: 100}
		referents := map[string]*referent{
			"attr_1": {credentialID: "cred-1", nonRevoked: interval},
			"attr_2": {credentialID: "cred-1", nonRevoked: interval},
			"pred_1": {credentialID: "cred-2", nonRevoked: interval},
		}
		credentials := map[string]*schema.CredentialInfo{
			"cred-1": {RevRegID: "rev-reg-1", CredRevID: "7"},
			"cred-2": {RevRegID: "rev-reg-1", CredRevID: "8"},
		}

		deltas, err := resolver.fetchDeltas(referents, credentials, nil)
		require.NoError(t, err)
		require.Len(t, deltas, 1)
		require.Len(t, session.deltaCalls, 1)
		require.Equal(t, 1, ledger.opened)
		require.Equal(t, 1, session.closed)
	})

	t.Run("distinct windows fetch separately", func(t *testing.T) {
		session := &mockSession{}
		resolver, _ := newResolver(session)

		referents := map[string]*referent{
			"attr_1": {credentialID: "cred-1", nonRevoked: &schema.NonRevokedInterval{From: 0, To: 100}},
			"attr_2": {credentialID: "cred-1", nonRevoked: &schema.NonRevokedInterval{From: 0, To: 200}},
		}
		credentials := map[string]*schema.CredentialInfo{
			"cred-1": {RevRegID: "rev-reg-1", CredRevID: "7"},
		}

		deltas, err := resolver.fetchDeltas(referents, credentials, nil)
		require.NoError(t, err)
		require.Len(t, deltas, 2)
		require.Len(t, session.deltaCalls, 2)
	})

	t.Run("non-revocable credentials and missing windows open no session", func(t *testing.T) {
		session := &mockSession{}
		resolver, ledger := newResolver(session)

		referents := map[string]*referent{
			"attr_1": {credentialID: "cred-1", nonRevoked: &schema.NonRevokedInterval{From: 0, To: 100}},
			"attr_2": {credentialID: "cred-2"},
		}
		credentials := map[string]*schema.CredentialInfo{
			"cred-1": {}, // no revocation registry
			"cred-2": {RevRegID: "rev-reg-1"},
		}

		deltas, err := resolver.fetchDeltas(referents, credentials, nil)
		require.NoError(t, err)
		require.Empty(t, deltas)
		require.Zero(t, ledger.opened)
	})
}

func TestResolveStates(t *testing.T) {
	regDefs := map[string]*schema.RevocationRegistryDefinition{
		"rev-reg-1": {ID: "rev-reg-1"},
	}

	newResolver := func(registry *mockRegistry) (*revocationResolver, *mockSession) {
		session := &mockSession{deltaTimestamps: map[string]int64{"rev-reg-1": 42}}
		return &revocationResolver{
			ledger:     &mockLedger{session: session},
			revocation: &mockRevocation{registries: map[string]*mockRegistry{"rev-reg-1": registry}},
			now:        func() int64 { return 1600000000 },
		}, session
	}

	referents := map[string]*referent{
		"attr_1": {credentialID: "cred-1", nonRevoked: &schema.NonRevokedInterval{From: 0, To: 100}},
	}
	credentials := map[string]*schema.CredentialInfo{
		"cred-1": {RevRegID: "rev-reg-1", CredRevID: "7"},
	}

	t.Run("tails already local", func(t *testing.T) {
		registry := &mockRegistry{hasTails: true}
		resolver, _ := newResolver(registry)

		states, err := resolver.resolveStates(referents, credentials, regDefs, nil)
		require.NoError(t, err)
		require.Zero(t, registry.retrieveCalled)
		require.Contains(t, states, "rev-reg-1")
		require.Contains(t, states["rev-reg-1"], int64(42))
	})

	t.Run("tails downloaded on first use", func(t *testing.T) {
		registry := &mockRegistry{hasTails: false}
		resolver, _ := newResolver(registry)

		_, err := resolver.resolveStates(referents, credentials, regDefs, nil)
		require.NoError(t, err)
		require.Equal(t, 1, registry.retrieveCalled)
	})

	t.Run("registry definition missing", func(t *testing.T) {
		registry := &mockRegistry{hasTails: true}
		resolver, _ := newResolver(registry)

		_, err := resolver.resolveStates(referents, credentials,
			map[string]*schema.RevocationRegistryDefinition{}, nil)
		require.Error(t, err)
	})
}
