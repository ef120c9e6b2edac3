/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"fmt"
	"strings"
)

// PresentationPreview is the prover-suggested preview of what it intends to
// present. The verifier holds it against the final presentation to detect
// substituted attribute values.
type PresentationPreview struct {
	Type       string              `json:"@type,omitempty"`
	Attributes []*PreviewAttribute `json:"attributes"`
	Predicates []*PreviewPredicate `json:"predicates"`
}

type PreviewAttribute struct {
	Name      string `json:"name"`
	CredDefID string `json:"cred_def_id,omitempty"`
	MimeType  string `json:"mime-type,omitempty"`
	Value     string `json:"value,omitempty"`
	Referent  string `json:"referent,omitempty"`
}

type PreviewPredicate struct {
	Name      string `json:"name"`
	CredDefID string `json:"cred_def_id,omitempty"`
	Predicate string `json:"predicate"`
	Threshold int32  `json:"threshold"`
}

// HasAttrSpec reports whether the preview contains an attribute specification
// with the exact (cred def id, name, value) triple.
func (r *PresentationPreview) HasAttrSpec(credDefID, name, value string) bool {
	for _, attr := range r.Attributes {
		if attr.CredDefID == credDefID && canonical(attr.Name) == canonical(name) && attr.Value == value {
			return true
		}
	}

	return false
}

// ProofRequest derives a concrete proof request from the preview. Empty name,
// version or nonce fall back to defaults; the nonce default is the caller's
// concern and an empty one is kept as-is.
func (r *PresentationPreview) ProofRequest(name, version, nonce string) *IndyProofRequest {
	if name == "" {
		name = "proof-request"
	}
	if version == "" {
		version = "1.0"
	}

	req := &IndyProofRequest{
		Name:                name,
		Version:             version,
		Nonce:               nonce,
		RequestedAttributes: map[string]*IndyProofRequestAttr{},
		RequestedPredicates: map[string]*IndyProofRequestPredicate{},
	}

	for i, attr := range r.Attributes {
		reft := fmt.Sprintf("%d_%s_uuid", i, canonical(attr.Name))
		pa := &IndyProofRequestAttr{
			Name: attr.Name,
		}
		if attr.CredDefID != "" {
			pa.Restrictions = []map[string]string{{"cred_def_id": attr.CredDefID}}
		}
		req.RequestedAttributes[reft] = pa
	}

	for i, pred := range r.Predicates {
		reft := fmt.Sprintf("%d_%s_GE_uuid", i, canonical(pred.Name))
		pp := &IndyProofRequestPredicate{
			Name:   pred.Name,
			PType:  pred.Predicate,
			PValue: pred.Threshold,
		}
		if pred.CredDefID != "" {
			pp.Restrictions = []map[string]string{{"cred_def_id": pred.CredDefID}}
		}
		req.RequestedPredicates[reft] = pp
	}

	return req
}

func canonical(attr string) string {
	return strings.ToLower(strings.Replace(attr, " ", "", -1))
}
