/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/
package mongodb

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/scoir/procyon/pkg/datastore"
)

// To run these tests manually, start an instance by running the following
// command in the terminal
// docker run -p 27017:27017 --name MongoStoreTest -d mongo:4.2.8
// delete using
//   docker kill MongoStoreTest
//   docker rm MongoStoreTest
func testStore(t *testing.T) datastore.Store {
	t.Helper()

	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set, skipping integration test")
	}

	prov, err := NewProvider(&Config{URL: url, Database: "procyon-test"})
	require.NoError(t, err)

	store, err := prov.OpenStore(uuid.New().String())
	require.NoError(t, err)

	return store
}

func newExchange(threadID string) *datastore.PresentationExchange {
	return &datastore.PresentationExchange{
		ExchangeID:   uuid.New().String(),
		ConnectionID: "conn-1",
		ThreadID:     threadID,
		Initiator:    datastore.InitiatorSelf,
		Role:         datastore.RoleVerifier,
		State:        datastore.StateRequestSent,
	}
}

func TestNewProvider(t *testing.T) {
	t.Run("config missing", func(t *testing.T) {
		_, err := NewProvider(nil)
		require.Error(t, err)
	})
}

func TestOpenStore(t *testing.T) {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL not set, skipping integration test")
	}

	prov, err := NewProvider(&Config{URL: url, Database: "procyon-test"})
	require.NoError(t, err)

	t.Run("name required", func(t *testing.T) {
		_, err := prov.OpenStore("")
		require.Error(t, err)
	})

	t.Run("happy path", func(t *testing.T) {
		store, err := prov.OpenStore(datastore.PresentationExchangeC)
		require.NoError(t, err)
		require.NotNil(t, store)
	})
}

func TestSavePresentationExchange(t *testing.T) {
	store := testStore(t)

	t.Run("save is idempotent", func(t *testing.T) {
		rec := newExchange(uuid.New().String())

		require.NoError(t, store.SavePresentationExchange(rec, "first save"))
		require.NoError(t, store.SavePresentationExchange(rec, "retried save"))

		got, err := store.GetPresentationExchange(rec.ExchangeID)
		require.NoError(t, err)
		require.Equal(t, rec.ExchangeID, got.ExchangeID)
		require.Equal(t, rec.State, got.State)

		// the retry must not have produced a second record
		found, err := store.FindPresentationExchangeByThread(rec.ThreadID, nil)
		require.NoError(t, err)
		require.Equal(t, rec.ExchangeID, found.ExchangeID)
	})

	t.Run("save updates state in place", func(t *testing.T) {
		rec := newExchange(uuid.New().String())
		require.NoError(t, store.SavePresentationExchange(rec, "create"))

		rec.State = datastore.StatePresentationReceived
		require.NoError(t, store.SavePresentationExchange(rec, "update"))

		got, err := store.GetPresentationExchange(rec.ExchangeID)
		require.NoError(t, err)
		require.Equal(t, datastore.StatePresentationReceived, got.State)
	})
}

func TestGetPresentationExchange(t *testing.T) {
	store := testStore(t)

	_, err := store.GetPresentationExchange("no-such-id")
	require.True(t, errors.Is(err, datastore.ErrNotFound))
}

func TestFindPresentationExchangeByThread(t *testing.T) {
	store := testStore(t)

	t.Run("not found", func(t *testing.T) {
		_, err := store.FindPresentationExchangeByThread("no-such-thread", nil)
		require.True(t, errors.Is(err, datastore.ErrNotFound))
	})

	t.Run("scoped by connection", func(t *testing.T) {
		threadID := uuid.New().String()
		rec := newExchange(threadID)
		require.NoError(t, store.SavePresentationExchange(rec, "create"))

		found, err := store.FindPresentationExchangeByThread(threadID,
			&datastore.ExchangeCriteria{ConnectionID: "conn-1"})
		require.NoError(t, err)
		require.Equal(t, rec.ExchangeID, found.ExchangeID)

		_, err = store.FindPresentationExchangeByThread(threadID,
			&datastore.ExchangeCriteria{ConnectionID: "conn-other"})
		require.True(t, errors.Is(err, datastore.ErrNotFound))
	})

	t.Run("ambiguous thread", func(t *testing.T) {
		threadID := uuid.New().String()
		require.NoError(t, store.SavePresentationExchange(newExchange(threadID), "one"))
		require.NoError(t, store.SavePresentationExchange(newExchange(threadID), "two"))

		_, err := store.FindPresentationExchangeByThread(threadID, nil)
		require.True(t, errors.Is(err, datastore.ErrAmbiguous))
	})
}

func TestListPresentationExchange(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.SavePresentationExchange(newExchange(uuid.New().String()), "seed"))
	}

	list, err := store.ListPresentationExchange(&datastore.ExchangeCriteria{PageSize: 2, Role: "verifier"})
	require.NoError(t, err)
	require.Equal(t, 3, list.Count)
	require.Len(t, list.Exchanges, 2)
}
