/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package datastore

import (
	"time"

	"github.com/scoir/procyon/pkg/schema"
)

type Initiator string

const (
	InitiatorSelf     Initiator = "self"
	InitiatorExternal Initiator = "external"
)

type Role string

const (
	RoleProver   Role = "prover"
	RoleVerifier Role = "verifier"
)

type State string

const (
	StateProposalSent         State = "proposal_sent"
	StateProposalReceived     State = "proposal_received"
	StateRequestSent          State = "request_sent"
	StateRequestReceived      State = "request_received"
	StatePresentationSent     State = "presentation_sent"
	StatePresentationReceived State = "presentation_received"
	StateVerified             State = "verified"
	StatePresentationAcked    State = "presentation_acked"
)

var stateRank = map[State]int{
	StateProposalSent:         1,
	StateProposalReceived:     1,
	StateRequestSent:          2,
	StateRequestReceived:      2,
	StatePresentationSent:     3,
	StatePresentationReceived: 3,
	StateVerified:             4,
	StatePresentationAcked:    5,
}

// Rank orders states along the protocol; transitions never decrease it.
func (r State) Rank() int {
	return stateRank[r]
}

// PresentationExchange is one run of the present-proof protocol between a
// prover and a verifier, correlated by thread id. The thread id is immutable
// after first assignment and identifies one exchange per connection.
type PresentationExchange struct {
	ExchangeID   string
	ConnectionID string
	ThreadID     string
	Initiator    Initiator
	Role         Role
	State        State

	PresentationProposal *schema.PresentationPreview
	PresentationRequest  *schema.IndyProofRequest
	Presentation         *schema.IndyProof

	// Verified is nil until verification has run.
	Verified    *bool
	AutoPresent bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ExchangeCriteria struct {
	Start, PageSize int
	ConnectionID    string
	Role            string
	State           string
}

type PresentationExchangeList struct {
	Count     int
	Exchanges []*PresentationExchange
}
