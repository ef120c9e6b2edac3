/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"encoding/base64"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/pkg/didcomm/protocol/decorator"
	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/schema"
)

const (
	ProposalMsgType     = "https://didcomm.org/present-proof/1.0/propose-presentation"
	RequestMsgType      = "https://didcomm.org/present-proof/1.0/request-presentation"
	PresentationMsgType = "https://didcomm.org/present-proof/1.0/presentation"
	AckMsgType          = "https://didcomm.org/present-proof/1.0/ack"

	requestAttachID      = "libindy-request-presentation-0"
	presentationAttachID = "libindy-presentation-0"
)

// ProposalMessage previews the attributes and predicates the prover intends
// to present.
type ProposalMessage struct {
	ID                   string                      `json:"@id,omitempty"`
	Type                 string                      `json:"@type,omitempty"`
	Comment              string                      `json:"comment,omitempty"`
	Thread               *decorator.Thread           `json:"~thread,omitempty"`
	PresentationProposal *schema.PresentationPreview `json:"presentation_proposal"`
}

func NewProposalMessage(comment string, preview *schema.PresentationPreview) *ProposalMessage {
	return &ProposalMessage{
		ID:                   uuid.New().String(),
		Type:                 ProposalMsgType,
		Comment:              comment,
		PresentationProposal: preview,
	}
}

func (r *ProposalMessage) ThreadID() string {
	if r.Thread != nil && r.Thread.ID != "" {
		return r.Thread.ID
	}
	return r.ID
}

// RequestMessage carries the proof request payload as a base64 attachment.
type RequestMessage struct {
	ID                        string                 `json:"@id,omitempty"`
	Type                      string                 `json:"@type,omitempty"`
	Comment                   string                 `json:"comment,omitempty"`
	Thread                    *decorator.Thread      `json:"~thread,omitempty"`
	RequestPresentationAttach []decorator.Attachment `json:"request_presentations~attach"`
}

func NewRequestMessage(threadID, comment string, req *schema.IndyProofRequest) (*RequestMessage, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal proof request")
	}

	msg := &RequestMessage{
		ID:      uuid.New().String(),
		Type:    RequestMsgType,
		Comment: comment,
		RequestPresentationAttach: []decorator.Attachment{
			{
				ID:       requestAttachID,
				MimeType: "application/json",
				Data: decorator.AttachmentData{
					Base64: base64.StdEncoding.EncodeToString(data),
				},
			},
		},
	}
	if threadID != "" {
		msg.Thread = &decorator.Thread{ID: threadID}
	}

	return msg, nil
}

func (r *RequestMessage) ThreadID() string {
	if r.Thread != nil && r.Thread.ID != "" {
		return r.Thread.ID
	}
	return r.ID
}

// ProofRequest extracts the attached proof request payload.
func (r *RequestMessage) ProofRequest() (*schema.IndyProofRequest, error) {
	attachment, ok := getAttachment(requestAttachID, r.RequestPresentationAttach)
	if !ok {
		return nil, errors.New("presentation request attachment missing")
	}

	data, err := attachment.Data.Fetch()
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch proof request attachment")
	}

	req := &schema.IndyProofRequest{}
	err = json.Unmarshal(data, req)
	if err != nil {
		return nil, errors.Wrap(err, "invalid proof request format")
	}

	return req, nil
}

// PresentationMessage carries the constructed proof as a base64 attachment.
type PresentationMessage struct {
	ID                  string                 `json:"@id,omitempty"`
	Type                string                 `json:"@type,omitempty"`
	Comment             string                 `json:"comment,omitempty"`
	Thread              *decorator.Thread      `json:"~thread,omitempty"`
	PresentationsAttach []decorator.Attachment `json:"presentations~attach"`
}

func NewPresentationMessage(threadID, comment string, proof *schema.IndyProof) (*PresentationMessage, error) {
	data, err := json.Marshal(proof)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal proof")
	}

	msg := &PresentationMessage{
		ID:      uuid.New().String(),
		Type:    PresentationMsgType,
		Comment: comment,
		PresentationsAttach: []decorator.Attachment{
			{
				ID:       presentationAttachID,
				MimeType: "application/json",
				Data: decorator.AttachmentData{
					Base64: base64.StdEncoding.EncodeToString(data),
				},
			},
		},
	}
	if threadID != "" {
		msg.Thread = &decorator.Thread{ID: threadID}
	}

	return msg, nil
}

func (r *PresentationMessage) ThreadID() string {
	if r.Thread != nil && r.Thread.ID != "" {
		return r.Thread.ID
	}
	return r.ID
}

// Proof extracts the attached presentation payload.
func (r *PresentationMessage) Proof() (*schema.IndyProof, error) {
	attachment, ok := getAttachment(presentationAttachID, r.PresentationsAttach)
	if !ok {
		return nil, errors.New("presentation attachment missing")
	}

	data, err := attachment.Data.Fetch()
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch presentation attachment")
	}

	proof := &schema.IndyProof{}
	err = json.Unmarshal(data, proof)
	if err != nil {
		return nil, errors.Wrap(err, "invalid presentation format, not indy proof")
	}

	return proof, nil
}

// AckMessage acknowledges a verified presentation. Thread reference only.
type AckMessage struct {
	ID     string            `json:"@id,omitempty"`
	Type   string            `json:"@type,omitempty"`
	Status string            `json:"status,omitempty"`
	Thread *decorator.Thread `json:"~thread,omitempty"`
}

func NewAckMessage(threadID string) *AckMessage {
	return &AckMessage{
		ID:     uuid.New().String(),
		Type:   AckMsgType,
		Status: "OK",
		Thread: &decorator.Thread{ID: threadID},
	}
}

func (r *AckMessage) ThreadID() string {
	if r.Thread != nil && r.Thread.ID != "" {
		return r.Thread.ID
	}
	return r.ID
}

func getAttachment(attachID string, attach []decorator.Attachment) (*decorator.Attachment, bool) {
	for _, attachment := range attach {
		if attachment.ID == attachID {
			return &attachment, true
		}
	}
	return nil, false
}
