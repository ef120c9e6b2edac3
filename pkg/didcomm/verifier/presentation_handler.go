/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/scoir/procyon/pkg/presentproof"
)

// envelope is the transport frame around a protocol message.
type envelope struct {
	ConnectionID string          `json:"connection_id"`
	Message      json.RawMessage `json:"message"`
}

type typedMessage struct {
	Type string `json:"@type"`
}

type proofHandler struct {
	manager   PresentationManager
	responder presentproof.Responder
	logger    *logrus.Entry
}

func (r *proofHandler) handleEnvelope(body []byte) error {
	env := &envelope{}
	err := json.Unmarshal(body, env)
	if err != nil {
		return errors.Wrap(err, "invalid presentation envelope")
	}

	tm := &typedMessage{}
	err = json.Unmarshal(env.Message, tm)
	if err != nil {
		return errors.Wrap(err, "invalid presentation message")
	}

	switch tm.Type {
	case presentproof.ProposalMsgType:
		return r.proposePresentationMsg(env)
	case presentproof.PresentationMsgType:
		return r.presentationMsg(env)
	case presentproof.AckMsgType:
		return r.presentationAckMsg(env)
	default:
		return errors.Errorf("unsupported message type %s", tm.Type)
	}
}

// proposePresentationMsg records the proposal and answers with a proof
// request bound to the proposal thread.
func (r *proofHandler) proposePresentationMsg(env *envelope) error {
	proposal := &presentproof.ProposalMessage{}
	err := json.Unmarshal(env.Message, proposal)
	if err != nil {
		return errors.Wrap(err, "invalid presentation proposal")
	}

	rec, err := r.manager.ReceiveProposal(env.ConnectionID, proposal)
	if err != nil {
		return errors.Wrap(err, "unable to receive presentation proposal")
	}

	rec, request, err := r.manager.CreateBoundRequest(rec, "", "", "", "")
	if err != nil {
		return errors.Wrap(err, "unable to create bound presentation request")
	}

	r.logger.WithFields(logrus.Fields{
		"exchange_id": rec.ExchangeID,
		"thread_id":   rec.ThreadID,
	}).Info("sending bound presentation request")

	if r.responder == nil {
		r.logger.Warn("no responder configured: bound request not sent")
		return nil
	}

	return errors.Wrap(r.responder.SendReply(request), "unable to send presentation request")
}

// presentationMsg records the inbound presentation and verifies it; the
// manager acks on successful verification.
func (r *proofHandler) presentationMsg(env *envelope) error {
	msg := &presentproof.PresentationMessage{}
	err := json.Unmarshal(env.Message, msg)
	if err != nil {
		return errors.Wrap(err, "invalid presentation")
	}

	rec, err := r.manager.ReceivePresentation(env.ConnectionID, msg)
	if err != nil {
		return errors.Wrap(err, "unable to receive presentation")
	}

	rec, err = r.manager.VerifyPresentation(rec)
	if err != nil {
		return errors.Wrap(err, "unable to verify presentation")
	}

	r.logger.WithFields(logrus.Fields{
		"exchange_id": rec.ExchangeID,
		"verified":    rec.Verified != nil && *rec.Verified,
	}).Info("presentation processed")

	return nil
}

func (r *proofHandler) presentationAckMsg(env *envelope) error {
	ack := &presentproof.AckMessage{}
	err := json.Unmarshal(env.Message, ack)
	if err != nil {
		return errors.Wrap(err, "invalid presentation ack")
	}

	_, err = r.manager.ReceivePresentationAck(env.ConnectionID, ack)
	return errors.Wrap(err, "unable to receive presentation ack")
}
