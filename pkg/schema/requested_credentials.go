/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

// IndyRequestedCredentials is the prover's selection of wallet credentials and
// self-attested values answering a proof request, keyed by referent.
type IndyRequestedCredentials struct {
	SelfAttestedAttrs   map[string]string                  `json:"self_attested_attributes"`
	RequestedAttributes map[string]*IndyRequestedAttribute `json:"requested_attributes"`
	RequestedPredicates map[string]*IndyRequestedPredicate `json:"requested_predicates"`
}

type IndyRequestedAttribute struct {
	CredID    string `json:"cred_id"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Revealed  bool   `json:"revealed"`
}

type IndyRequestedPredicate struct {
	CredID    string `json:"cred_id"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// CredentialInfo is the holder's view of one stored credential, carrying the
// ledger identifiers needed to assemble a proof.
type CredentialInfo struct {
	Referent  string            `json:"referent"`
	SchemaID  string            `json:"schema_id"`
	CredDefID string            `json:"cred_def_id"`
	RevRegID  string            `json:"rev_reg_id,omitempty"`
	CredRevID string            `json:"cred_rev_id,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}
