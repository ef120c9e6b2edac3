/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package datastore

import (
	"github.com/pkg/errors"
)

const (
	PresentationExchangeC = "PresentationExchange"
)

var (
	// ErrNotFound is returned when no record matches a retrieval.
	ErrNotFound = errors.New("record not found")

	// ErrAmbiguous is returned when a retrieval expected to match exactly one
	// record matches several.
	ErrAmbiguous = errors.New("multiple records match")
)

// Provider storage provider interface
type Provider interface {
	// OpenStore opens a store with given name space and returns the handle
	OpenStore(name string) (Store, error)

	// CloseStore closes store of given name space
	CloseStore(name string) error

	// Close closes all stores created under this store provider
	Close() error
}

// Store persists presentation exchange records. SavePresentationExchange is
// idempotent: retrying with unchanged field values leaves one record with the
// same persisted state.
//go:generate mockery -name=Store
type Store interface {
	SavePresentationExchange(rec *PresentationExchange, reason string) error
	GetPresentationExchange(id string) (*PresentationExchange, error)

	// FindPresentationExchangeByThread returns exactly one record for the
	// thread, optionally scoped by criteria. It fails with ErrNotFound or
	// ErrAmbiguous otherwise.
	FindPresentationExchangeByThread(threadID string, c *ExchangeCriteria) (*PresentationExchange, error)

	ListPresentationExchange(c *ExchangeCriteria) (*PresentationExchangeList, error)
}
