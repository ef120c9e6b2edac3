/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/datastore"
	"github.com/scoir/procyon/pkg/schema"
)

type mockProvider struct {
	store      datastore.Store
	holder     Holder
	ledger     Ledger
	verifier   Verifier
	responder  Responder
	oracle     Oracle
	revocation RevocationProvider
}

func (r *mockProvider) Store() datastore.Store         { return r.store }
func (r *mockProvider) Holder() Holder                 { return r.holder }
func (r *mockProvider) Ledger() Ledger                 { return r.ledger }
func (r *mockProvider) Verifier() Verifier             { return r.verifier }
func (r *mockProvider) Responder() Responder           { return r.responder }
func (r *mockProvider) Oracle() Oracle                 { return r.oracle }
func (r *mockProvider) Revocation() RevocationProvider { return r.revocation }

type mockStore struct {
	saved      []*datastore.PresentationExchange
	reasons    []string
	saveErr    error
	byThread   map[string]*datastore.PresentationExchange
	findErr    error
	byExchange map[string]*datastore.PresentationExchange
}

func (r *mockStore) SavePresentationExchange(rec *datastore.PresentationExchange, reason string) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, rec)
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *mockStore) GetPresentationExchange(id string) (*datastore.PresentationExchange, error) {
	rec, ok := r.byExchange[id]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return rec, nil
}

func (r *mockStore) FindPresentationExchangeByThread(threadID string, _ *datastore.ExchangeCriteria) (
	*datastore.PresentationExchange, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	rec, ok := r.byThread[threadID]
	if !ok {
		return nil, datastore.ErrNotFound
	}
	return rec, nil
}

func (r *mockStore) ListPresentationExchange(_ *datastore.ExchangeCriteria) (*datastore.PresentationExchangeList, error) {
	return &datastore.PresentationExchangeList{}, nil
}

type mockHolder struct {
	credentials map[string]*schema.CredentialInfo
	getCalls    map[string]int

	proof         *schema.IndyProof
	createErr     error
	gotSchemas    map[string]*schema.LedgerSchema
	gotCredDefs   map[string]*vdr.ClaimDefData
	gotRevStates  RevocationStates
	createCalled  bool
	gotRequested  *schema.IndyRequestedCredentials
}

func (r *mockHolder) GetCredential(credentialID string) (*schema.CredentialInfo, error) {
	if r.getCalls == nil {
		r.getCalls = map[string]int{}
	}
	r.getCalls[credentialID]++

	cred, ok := r.credentials[credentialID]
	if !ok {
		return nil, errors.Errorf("credential %s not found", credentialID)
	}
	return cred, nil
}

func (r *mockHolder) CreatePresentation(_ *schema.IndyProofRequest, requested *schema.IndyRequestedCredentials,
	schemas map[string]*schema.LedgerSchema, credDefs map[string]*vdr.ClaimDefData,
	revStates RevocationStates) (*schema.IndyProof, error) {

	r.createCalled = true
	r.gotRequested = requested
	r.gotSchemas = schemas
	r.gotCredDefs = credDefs
	r.gotRevStates = revStates

	if r.createErr != nil {
		return nil, r.createErr
	}
	return r.proof, nil
}

type deltaCall struct {
	regID    string
	from, to int64
}

type mockSession struct {
	schemas map[string]*schema.LedgerSchema
	creds   map[string]*vdr.ClaimDefData
	regDefs map[string]*schema.RevocationRegistryDefinition

	deltaTimestamps map[string]int64
	deltaErr        error

	schemaCalls []string
	credCalls   []string
	regCalls    []string
	deltaCalls  []deltaCall

	closed int
}

func (r *mockSession) GetSchema(schemaID string) (*schema.LedgerSchema, error) {
	r.schemaCalls = append(r.schemaCalls, schemaID)
	sch, ok := r.schemas[schemaID]
	if !ok {
		return nil, errors.Errorf("schema %s not on ledger", schemaID)
	}
	return sch, nil
}

func (r *mockSession) GetCredDef(credDefID string) (*vdr.ClaimDefData, error) {
	r.credCalls = append(r.credCalls, credDefID)
	cd, ok := r.creds[credDefID]
	if !ok {
		return nil, errors.Errorf("cred def %s not on ledger", credDefID)
	}
	return cd, nil
}

func (r *mockSession) GetRevocRegDef(revRegID string) (*schema.RevocationRegistryDefinition, error) {
	r.regCalls = append(r.regCalls, revRegID)
	def, ok := r.regDefs[revRegID]
	if !ok {
		return nil, errors.Errorf("registry %s not on ledger", revRegID)
	}
	return def, nil
}

func (r *mockSession) GetRevocRegDelta(revRegID string, from, to int64) (*schema.RevocationRegistryDelta, int64, error) {
	r.deltaCalls = append(r.deltaCalls, deltaCall{regID: revRegID, from: from, to: to})
	if r.deltaErr != nil {
		return nil, 0, r.deltaErr
	}

	ts, ok := r.deltaTimestamps[revRegID]
	if !ok {
		ts = to
	}
	return &schema.RevocationRegistryDelta{Ver: "1.0"}, ts, nil
}

func (r *mockSession) Close() error {
	r.closed++
	return nil
}

type mockLedger struct {
	session    *mockSession
	sessionErr error
	opened     int
}

func (r *mockLedger) Session() (LedgerSession, error) {
	if r.sessionErr != nil {
		return nil, r.sessionErr
	}
	r.opened++
	return r.session, nil
}

type mockVerifier struct {
	verified bool
	err      error

	gotSchemas  map[string]*schema.LedgerSchema
	gotCredDefs map[string]*vdr.ClaimDefData
}

func (r *mockVerifier) VerifyPresentation(_ *schema.IndyProofRequest, _ *schema.IndyProof,
	schemas map[string]*schema.LedgerSchema, credDefs map[string]*vdr.ClaimDefData) (bool, error) {

	r.gotSchemas = schemas
	r.gotCredDefs = credDefs
	return r.verified, r.err
}

type mockResponder struct {
	sent []interface{}
	err  error
}

func (r *mockResponder) SendReply(msg interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

type mockOracle struct {
	nonce string
	err   error
}

func (r *mockOracle) NewNonce() (string, error) {
	return r.nonce, r.err
}

type mockRegistry struct {
	hasTails       bool
	retrieveCalled int
	retrieveErr    error
	stateErr       error
	stateCalls     []string
}

func (r *mockRegistry) HasLocalTailsFile() bool {
	return r.hasTails
}

func (r *mockRegistry) RetrieveTails() error {
	r.retrieveCalled++
	return r.retrieveErr
}

func (r *mockRegistry) CreateRevocationState(credRevID string, _ *schema.RevocationRegistryDelta,
	timestamp int64) (json.RawMessage, error) {

	r.stateCalls = append(r.stateCalls, credRevID)
	if r.stateErr != nil {
		return nil, r.stateErr
	}
	return json.RawMessage(fmt.Sprintf(`{"cred_rev_id":%q,"timestamp":%d}`, credRevID, timestamp)), nil
}

func newLedgerForProof() *mockLedger {
	return &mockLedger{session: &mockSession{
		schemas: map[string]*schema.LedgerSchema{
			"schema-1": {ID: "schema-1", Name: "drinks", AttrNames: []string{"favorite_drink"}},
		},
		creds: map[string]*vdr.ClaimDefData{
			"cred-def-1": {ID: "cred-def-1"},
		},
	}}
}

type mockRevocation struct {
	registries map[string]*mockRegistry
	err        error
}

func (r *mockRevocation) FromDefinition(def *schema.RevocationRegistryDefinition) (RevocationRegistry, error) {
	if r.err != nil {
		return nil, r.err
	}
	reg, ok := r.registries[def.ID]
	if !ok {
		return nil, errors.Errorf("no registry for %s", def.ID)
	}
	return reg, nil
}
