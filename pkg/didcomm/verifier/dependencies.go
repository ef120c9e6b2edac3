/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"github.com/scoir/procyon/pkg/amqp"
	"github.com/scoir/procyon/pkg/datastore"
	"github.com/scoir/procyon/pkg/presentproof"
)

//go:generate mockery -inpkg -name=Provider
type Provider interface {
	Listener() amqp.Listener
	Responder() presentproof.Responder
	PresentationManager() (PresentationManager, error)
}

// PresentationManager is the slice of the exchange manager this service
// drives.
//go:generate mockery -inpkg -name=PresentationManager
type PresentationManager interface {
	ReceiveProposal(connectionID string, proposal *presentproof.ProposalMessage) (*datastore.PresentationExchange, error)
	CreateBoundRequest(rec *datastore.PresentationExchange, name, version, nonce, comment string) (
		*datastore.PresentationExchange, *presentproof.RequestMessage, error)
	ReceivePresentation(connectionID string, msg *presentproof.PresentationMessage) (*datastore.PresentationExchange, error)
	VerifyPresentation(rec *datastore.PresentationExchange) (*datastore.PresentationExchange, error)
	ReceivePresentationAck(connectionID string, ack *presentproof.AckMessage) (*datastore.PresentationExchange, error)
}
