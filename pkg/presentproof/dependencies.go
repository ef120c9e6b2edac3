/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"

	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"

	"github.com/scoir/procyon/pkg/datastore"
	"github.com/scoir/procyon/pkg/schema"
)

// RevocationStates maps revocation registry id to the states computed per
// delta timestamp, in the shape the proof engine consumes.
type RevocationStates map[string]map[int64]json.RawMessage

//go:generate mockery -inpkg -name=Provider
type Provider interface {
	Store() datastore.Store
	Holder() Holder
	Ledger() Ledger
	Verifier() Verifier

	// Responder may return nil; a missing responder is not an error.
	Responder() Responder

	Oracle() Oracle
	Revocation() RevocationProvider
}

// Holder is the wallet capability of the prover side.
//go:generate mockery -inpkg -name=Holder
type Holder interface {
	GetCredential(credentialID string) (*schema.CredentialInfo, error)
	CreatePresentation(req *schema.IndyProofRequest, requested *schema.IndyRequestedCredentials,
		schemas map[string]*schema.LedgerSchema, credDefs map[string]*vdr.ClaimDefData,
		revStates RevocationStates) (*schema.IndyProof, error)
}

// Ledger hands out read sessions. Reads are grouped per session and the
// session is always closed, on failure included.
//go:generate mockery -inpkg -name=Ledger
type Ledger interface {
	Session() (LedgerSession, error)
}

//go:generate mockery -inpkg -name=LedgerSession
type LedgerSession interface {
	GetSchema(schemaID string) (*schema.LedgerSchema, error)
	GetCredDef(credDefID string) (*vdr.ClaimDefData, error)
	GetRevocRegDef(revRegID string) (*schema.RevocationRegistryDefinition, error)
	GetRevocRegDelta(revRegID string, from, to int64) (*schema.RevocationRegistryDelta, int64, error)
	Close() error
}

// Verifier checks a completed presentation against its proof request.
//go:generate mockery -inpkg -name=Verifier
type Verifier interface {
	VerifyPresentation(req *schema.IndyProofRequest, proof *schema.IndyProof,
		schemas map[string]*schema.LedgerSchema, credDefs map[string]*vdr.ClaimDefData) (bool, error)
}

// Responder emits outbound protocol messages.
//go:generate mockery -inpkg -name=Responder
type Responder interface {
	SendReply(msg interface{}) error
}

//go:generate mockery -inpkg -name=Oracle
type Oracle interface {
	NewNonce() (string, error)
}

// RevocationProvider materializes registry capabilities from ledger
// definitions.
//go:generate mockery -inpkg -name=RevocationProvider
type RevocationProvider interface {
	FromDefinition(def *schema.RevocationRegistryDefinition) (RevocationRegistry, error)
}

// RevocationRegistry manages one registry's tails data and revocation states.
// Tails data is a lazily populated local cache keyed by registry.
//go:generate mockery -inpkg -name=RevocationRegistry
type RevocationRegistry interface {
	HasLocalTailsFile() bool
	RetrieveTails() error
	CreateRevocationState(credRevID string, delta *schema.RevocationRegistryDelta, timestamp int64) (json.RawMessage, error)
}
