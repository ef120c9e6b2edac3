/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/scoir/procyon/pkg/datastore"
	"github.com/scoir/procyon/pkg/schema"
)

// Manager drives the present-proof protocol: it owns the exchange state
// machine, thread correlation, and the proposal/presentation consistency
// check. Every operation persists the record before returning; on failure no
// partial record change is persisted.
type Manager struct {
	store      datastore.Store
	holder     Holder
	ledger     Ledger
	verifier   Verifier
	responder  Responder
	oracle     Oracle
	revocation RevocationProvider
	logger     *logrus.Entry
	now        func() int64
}

func New(prov Provider) (*Manager, error) {
	m := &Manager{
		store:      prov.Store(),
		holder:     prov.Holder(),
		ledger:     prov.Ledger(),
		verifier:   prov.Verifier(),
		responder:  prov.Responder(),
		oracle:     prov.Oracle(),
		revocation: prov.Revocation(),
		logger:     logrus.WithField("component", "presentproof"),
		now:        func() int64 { return time.Now().Unix() },
	}

	if m.store == nil {
		return nil, errors.New("presentation manager requires a datastore")
	}

	return m, nil
}

// CreateExchangeForProposal records a proposal this agent is sending: a new
// exchange with role prover, initiated by self.
func (r *Manager) CreateExchangeForProposal(connectionID string, proposal *ProposalMessage,
	autoPresent bool) (*datastore.PresentationExchange, error) {

	rec := &datastore.PresentationExchange{
		ExchangeID:           uuid.New().String(),
		ConnectionID:         connectionID,
		ThreadID:             proposal.ThreadID(),
		Initiator:            datastore.InitiatorSelf,
		Role:                 datastore.RoleProver,
		State:                datastore.StateProposalSent,
		PresentationProposal: proposal.PresentationProposal,
		AutoPresent:          autoPresent,
	}

	err := r.store.SavePresentationExchange(rec, "create presentation proposal")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, nil
}

// ReceiveProposal records an inbound proposal: a new exchange with role
// verifier, initiated externally.
func (r *Manager) ReceiveProposal(connectionID string, proposal *ProposalMessage) (*datastore.PresentationExchange, error) {
	rec := &datastore.PresentationExchange{
		ExchangeID:           uuid.New().String(),
		ConnectionID:         connectionID,
		ThreadID:             proposal.ThreadID(),
		Initiator:            datastore.InitiatorExternal,
		Role:                 datastore.RoleVerifier,
		State:                datastore.StateProposalReceived,
		PresentationProposal: proposal.PresentationProposal,
	}

	err := r.store.SavePresentationExchange(rec, "receive presentation proposal")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, nil
}

// CreateBoundRequest derives a proof request from the stored proposal and
// threads it to the existing exchange. Name, version and nonce default when
// empty.
func (r *Manager) CreateBoundRequest(rec *datastore.PresentationExchange, name, version, nonce,
	comment string) (*datastore.PresentationExchange, *RequestMessage, error) {

	if rec.PresentationProposal == nil {
		return nil, nil, errors.Wrap(ErrProtocol, "no presentation proposal to bind request to")
	}

	err := r.checkTransition(rec, datastore.StateRequestSent)
	if err != nil {
		return nil, nil, err
	}

	if nonce == "" {
		nonce, err = r.oracle.NewNonce()
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to generate proof request nonce")
		}
	}

	proofReq := rec.PresentationProposal.ProofRequest(name, version, nonce)

	msg, err := NewRequestMessage(rec.ThreadID, comment, proofReq)
	if err != nil {
		return nil, nil, err
	}

	rec.PresentationRequest = proofReq
	rec.State = datastore.StateRequestSent

	err = r.store.SavePresentationExchange(rec, "create (bound) presentation request")
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, msg, nil
}

// CreateExchangeForRequest records a free request (no prior proposal) this
// agent is sending: a new exchange with role verifier, initiated by self.
func (r *Manager) CreateExchangeForRequest(connectionID string, request *RequestMessage) (*datastore.PresentationExchange, error) {
	proofReq, err := request.ProofRequest()
	if err != nil {
		return nil, err
	}

	rec := &datastore.PresentationExchange{
		ExchangeID:          uuid.New().String(),
		ConnectionID:        connectionID,
		ThreadID:            request.ThreadID(),
		Initiator:           datastore.InitiatorSelf,
		Role:                datastore.RoleVerifier,
		State:               datastore.StateRequestSent,
		PresentationRequest: proofReq,
	}

	err = r.store.SavePresentationExchange(rec, "create (free) presentation request")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, nil
}

// ReceiveRequest attaches an inbound proof request to the exchange. For a
// free request the caller builds a fresh prover-side record first.
func (r *Manager) ReceiveRequest(rec *datastore.PresentationExchange, request *RequestMessage) (*datastore.PresentationExchange, error) {
	err := r.checkTransition(rec, datastore.StateRequestReceived)
	if err != nil {
		return nil, err
	}

	if request != nil {
		proofReq, err := request.ProofRequest()
		if err != nil {
			return nil, err
		}
		rec.PresentationRequest = proofReq
	}

	if rec.PresentationRequest == nil {
		return nil, errors.Wrap(ErrProtocol, "no presentation request to receive")
	}

	rec.State = datastore.StateRequestReceived

	err = r.store.SavePresentationExchange(rec, "receive presentation request")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, nil
}

// CreatePresentation assembles a proof answering the stored request with the
// given credential selection and threads it to the exchange.
func (r *Manager) CreatePresentation(rec *datastore.PresentationExchange, requested *schema.IndyRequestedCredentials,
	comment string) (*datastore.PresentationExchange, *PresentationMessage, error) {

	if rec.PresentationRequest == nil {
		return nil, nil, errors.Wrap(ErrProtocol, "no presentation request on exchange")
	}

	err := r.checkTransition(rec, datastore.StatePresentationSent)
	if err != nil {
		return nil, nil, err
	}

	asm := &assembler{
		holder:     r.holder,
		ledger:     r.ledger,
		revocation: r.revocation,
		now:        r.now,
	}

	proof, err := asm.assemble(rec.PresentationRequest, requested)
	if err != nil {
		return nil, nil, err
	}

	msg, err := NewPresentationMessage(rec.ThreadID, comment, proof)
	if err != nil {
		return nil, nil, err
	}

	rec.Presentation = proof
	rec.State = datastore.StatePresentationSent

	err = r.store.SavePresentationExchange(rec, "create presentation")
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, msg, nil
}

// ReceivePresentation correlates an inbound presentation with its exchange,
// checks revealed values against the stored proposal, and records it. A
// mismatched attribute fails the receive and leaves the record untouched.
func (r *Manager) ReceivePresentation(connectionID string, msg *PresentationMessage) (*datastore.PresentationExchange, error) {
	proof, err := msg.Proof()
	if err != nil {
		return nil, err
	}

	var criteria *datastore.ExchangeCriteria
	if connectionID != "" {
		criteria = &datastore.ExchangeCriteria{ConnectionID: connectionID}
	}

	rec, err := r.store.FindPresentationExchangeByThread(msg.ThreadID(), criteria)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "no presentation exchange for thread %s", msg.ThreadID())
		}
		return nil, err
	}

	err = r.checkTransition(rec, datastore.StatePresentationReceived)
	if err != nil {
		return nil, err
	}

	if rec.PresentationRequest == nil {
		return nil, errors.Wrapf(ErrProtocol, "no presentation request on exchange %s", rec.ExchangeID)
	}

	if rec.PresentationProposal != nil {
		err = checkAgainstProposal(rec, proof)
		if err != nil {
			return nil, err
		}
	}

	rec.Presentation = proof
	rec.State = datastore.StatePresentationReceived

	err = r.store.SavePresentationExchange(rec, "receive presentation")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, nil
}

// checkAgainstProposal verifies every revealed attribute in the presentation
// matches an attribute specification in the stored proposal preview, guarding
// against values substituted between proposal and presentation.
func checkAgainstProposal(rec *datastore.PresentationExchange, proof *schema.IndyProof) error {
	if proof.RequestedProof == nil {
		return newManagerError("presentation has no requested proof section")
	}

	for reft, attrSpec := range proof.RequestedProof.RevealedAttrs {
		reqAttr, ok := rec.PresentationRequest.RequestedAttributes[reft]
		if !ok {
			return newManagerError("revealed attribute referent %s not in presentation request", reft)
		}

		idx := int(attrSpec.SubProofIndex)
		if idx < 0 || idx >= len(proof.Identifiers) {
			return newManagerError("revealed attribute %s references invalid sub proof %d", reft, idx)
		}

		credDefID := proof.Identifiers[idx].CredDefID
		if !rec.PresentationProposal.HasAttrSpec(credDefID, reqAttr.Name, attrSpec.Raw) {
			return newManagerError("presentation %s=%s mismatches proposal value", reqAttr.Name, attrSpec.Raw)
		}
	}

	return nil
}

// VerifyPresentation resolves the ledger objects the presentation references,
// runs verification, stores the result, and acks the presentation.
func (r *Manager) VerifyPresentation(rec *datastore.PresentationExchange) (*datastore.PresentationExchange, error) {
	if rec.Presentation == nil || rec.PresentationRequest == nil {
		return nil, errors.Wrap(ErrProtocol, "presentation exchange has no presentation to verify")
	}

	err := r.checkTransition(rec, datastore.StateVerified)
	if err != nil {
		return nil, err
	}

	vc := &verifyCoordinator{
		ledger:   r.ledger,
		verifier: r.verifier,
	}

	verified, err := vc.verify(rec.PresentationRequest, rec.Presentation)
	if err != nil {
		return nil, err
	}

	rec.Verified = &verified
	rec.State = datastore.StateVerified

	err = r.store.SavePresentationExchange(rec, "verify presentation")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	err = r.SendPresentationAck(rec)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// SendPresentationAck emits an ack threaded to the exchange. A missing
// responder is logged and skipped.
func (r *Manager) SendPresentationAck(rec *datastore.PresentationExchange) error {
	if r.responder == nil {
		r.logger.WithField("thread_id", rec.ThreadID).
			Warn("no responder configured: cannot ack presentation")
		return nil
	}

	err := r.responder.SendReply(NewAckMessage(rec.ThreadID))
	return errors.Wrap(err, "unable to send presentation ack")
}

// ReceivePresentationAck completes the prover side of the exchange.
func (r *Manager) ReceivePresentationAck(connectionID string, ack *AckMessage) (*datastore.PresentationExchange, error) {
	rec, err := r.store.FindPresentationExchangeByThread(ack.ThreadID(),
		&datastore.ExchangeCriteria{ConnectionID: connectionID})
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "no presentation exchange for thread %s", ack.ThreadID())
		}
		return nil, err
	}

	if rec.State != datastore.StatePresentationSent && rec.State != datastore.StatePresentationAcked {
		return nil, errors.Wrapf(ErrProtocol, "ack received before presentation was sent on thread %s", rec.ThreadID)
	}

	rec.State = datastore.StatePresentationAcked

	err = r.store.SavePresentationExchange(rec, "receive presentation ack")
	if err != nil {
		return nil, errors.Wrap(err, "unable to save presentation exchange")
	}

	return rec, nil
}

// checkTransition rejects any transition that would move the record to an
// earlier protocol state. Re-entering the same state is allowed so retried
// saves stay safe.
func (r *Manager) checkTransition(rec *datastore.PresentationExchange, next datastore.State) error {
	if rec.State == next {
		return nil
	}

	if next.Rank() < rec.State.Rank() {
		return errors.Wrapf(ErrProtocol, "cannot move exchange %s from %s back to %s",
			rec.ExchangeID, rec.State, next)
	}

	return nil
}
