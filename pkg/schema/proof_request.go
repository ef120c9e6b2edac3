/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

// IndyProofRequest is the proof request payload attached to a request-presentation
// message. Referents key the requested attributes and predicates.
// Ref: https://github.com/hyperledger/indy-sdk/blob/57dcdae74164d1c7aa06f2cccecaae121cefac25/libindy/src/api/anoncreds.rs#L1214
type IndyProofRequest struct {
	Name                string                                `json:"name"`
	Version             string                                `json:"version"`
	Nonce               string                                `json:"nonce"`
	RequestedAttributes map[string]*IndyProofRequestAttr      `json:"requested_attributes"`
	RequestedPredicates map[string]*IndyProofRequestPredicate `json:"requested_predicates"`
	NonRevoked          *NonRevokedInterval                   `json:"non_revoked,omitempty"`
}

type IndyProofRequestAttr struct {
	Name         string              `json:"name,omitempty"`
	Names        []string            `json:"names,omitempty"`
	Restrictions []map[string]string `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

type IndyProofRequestPredicate struct {
	Name         string              `json:"name"`
	PType        string              `json:"p_type"`
	PValue       int32               `json:"p_value"`
	Restrictions []map[string]string `json:"restrictions,omitempty"`
	NonRevoked   *NonRevokedInterval `json:"non_revoked,omitempty"`
}

// NonRevokedInterval is the (from, to) window a proof must demonstrate
// non-revocation over. A zero To means "unset"; callers fill it with the
// current time at the moment of proof assembly.
type NonRevokedInterval struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}
