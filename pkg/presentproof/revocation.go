/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/schema"
)

// deltaKey deduplicates accumulator delta fetches within one assembly call.
type deltaKey struct {
	registryID string
	from       int64
	to         int64
}

type pendingState struct {
	registryID string
	credRevID  string
	delta      *schema.RevocationRegistryDelta
	timestamp  int64
}

// revocationResolver determines which registries need delta computation for a
// set of required credentials and produces per-registry revocation states.
type revocationResolver struct {
	ledger     Ledger
	revocation RevocationProvider
	now        func() int64
}

func (r *revocationResolver) resolveStates(referents map[string]*referent,
	credentials map[string]*schema.CredentialInfo,
	regDefs map[string]*schema.RevocationRegistryDefinition,
	requestInterval *schema.NonRevokedInterval) (RevocationStates, error) {

	deltas, err := r.fetchDeltas(referents, credentials, requestInterval)
	if err != nil {
		return nil, err
	}

	states := RevocationStates{}
	for _, pending := range deltas {
		regDef, ok := regDefs[pending.registryID]
		if !ok {
			return nil, errors.Errorf("no registry definition resolved for %s", pending.registryID)
		}

		registry, err := r.revocation.FromDefinition(regDef)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to build revocation registry %s", pending.registryID)
		}

		// tails data is a lazily populated local cache, fetched on first use
		if !registry.HasLocalTailsFile() {
			err = registry.RetrieveTails()
			if err != nil {
				return nil, errors.Wrapf(err, "unable to retrieve tails for registry %s", pending.registryID)
			}
		}

		state, err := registry.CreateRevocationState(pending.credRevID, pending.delta, pending.timestamp)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create revocation state for registry %s", pending.registryID)
		}

		if _, ok := states[pending.registryID]; !ok {
			states[pending.registryID] = map[int64]json.RawMessage{}
		}
		states[pending.registryID][pending.timestamp] = state
	}

	return states, nil
}

// fetchDeltas fetches the accumulator delta exactly once per distinct
// (registry, window) key. Credentials with no revocation registry and
// referents with no effective window are skipped entirely.
func (r *revocationResolver) fetchDeltas(referents map[string]*referent,
	credentials map[string]*schema.CredentialInfo,
	requestInterval *schema.NonRevokedInterval) (map[deltaKey]*pendingState, error) {

	deltas := map[deltaKey]*pendingState{}

	var session LedgerSession
	defer func() {
		if session != nil {
			_ = session.Close()
		}
	}()

	for _, ref := range referents {
		cred := credentials[ref.credentialID]
		if cred.RevRegID == "" {
			continue
		}

		window := effectiveWindow(ref.nonRevoked, requestInterval, r.now())
		if window == nil {
			continue
		}

		key := deltaKey{registryID: cred.RevRegID, from: window.From, to: window.To}
		if _, ok := deltas[key]; ok {
			continue
		}

		if session == nil {
			var err error
			session, err = r.ledger.Session()
			if err != nil {
				return nil, errors.Wrap(err, "unable to open ledger session")
			}
		}

		delta, timestamp, err := session.GetRevocRegDelta(cred.RevRegID, window.From, window.To)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get revocation delta for registry %s", cred.RevRegID)
		}

		deltas[key] = &pendingState{
			registryID: cred.RevRegID,
			credRevID:  cred.CredRevID,
			delta:      delta,
			timestamp:  timestamp,
		}
	}

	return deltas, nil
}

// effectiveWindow picks the per-referent window when present, else the
// request-level window, else nil (no non-revocation proof required). Missing
// bounds default to from=0 and to=now. The inputs are never mutated.
func effectiveWindow(referentInterval, requestInterval *schema.NonRevokedInterval, now int64) *schema.NonRevokedInterval {
	interval := referentInterval
	if interval == nil {
		interval = requestInterval
	}
	if interval == nil {
		return nil
	}

	out := &schema.NonRevokedInterval{From: interval.From, To: interval.To}
	if out.From < 0 {
		out.From = 0
	}
	if out.To == 0 {
		out.To = now
	}

	return out
}
