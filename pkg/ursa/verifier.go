/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ursa

import (
	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
	"github.com/hyperledger/ursa-wrapper-go/pkg/libursa/ursa"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/scoir/procyon/pkg/schema"
)

// ProofVerifier checks indy presentations against their proof request: first
// structurally, then cryptographically through libursa.
type ProofVerifier struct {
}

func NewProofVerifier() *ProofVerifier {
	return &ProofVerifier{}
}

// VerifyPresentation returns false without error when the proof is
// structurally consistent but the cryptographic check fails; malformed input
// returns an error.
func (r *ProofVerifier) VerifyPresentation(proofReq *schema.IndyProofRequest, indyProof *schema.IndyProof,
	schemas map[string]*schema.LedgerSchema, credDefs map[string]*vdr.ClaimDefData) (bool, error) {

	err := compareAttrFromProofAndRequest(proofReq, indyProof)
	if err != nil {
		return false, err
	}

	err = verifyRevealedAttributeValues(proofReq, indyProof)
	if err != nil {
		return false, err
	}

	err = r.verifyCryptoProof(proofReq, indyProof, schemas, credDefs)
	if err != nil {
		logrus.WithError(err).Info("presentation failed cryptographic verification")
		return false, nil
	}

	return true, nil
}

func (r *ProofVerifier) verifyCryptoProof(proofReq *schema.IndyProofRequest, indyProof *schema.IndyProof,
	schemas map[string]*schema.LedgerSchema, credDefs map[string]*vdr.ClaimDefData) error {

	nonCredSchema, err := BuildNonCredentialSchema()
	if err != nil {
		return errors.Wrap(err, "unable to build non credential schema")
	}

	verifier, err := ursa.NewProofVerifier()
	if err != nil {
		return errors.Wrap(err, "unable to create ursa proof verifier")
	}

	for subProofIdx, identifier := range indyProof.Identifiers {
		sch, ok := schemas[identifier.SchemaID]
		if !ok {
			return errors.Errorf("no schema resolved for identifier %d", subProofIdx)
		}

		credDef, ok := credDefs[identifier.CredDefID]
		if !ok {
			return errors.Errorf("no cred def resolved for identifier %d", subProofIdx)
		}

		attrsForCredential := attributesForCredential(subProofIdx, indyProof.RequestedProof, proofReq)
		predicatesForCredential := predicatesForCredential(subProofIdx, indyProof.RequestedProof, proofReq)

		credentialSchema, err := BuildCredentialSchema(sch.AttrNames)
		if err != nil {
			return errors.Wrap(err, "unable to build verify schema")
		}

		subProofRequest, err := buildSubProofRequest(attrsForCredential, predicatesForCredential)
		if err != nil {
			return err
		}

		pubKey, err := CredDefPublicKey(credDef.PKey(), credDef.RKey())
		if err != nil {
			return errors.Wrap(err, "unable to load cred def handle")
		}

		err = verifier.AddSubProofRequest(subProofRequest, credentialSchema, nonCredSchema, pubKey)
		if err != nil {
			return errors.Wrap(err, "unable to add sub proof request")
		}
	}

	proofReqNonce, err := ursa.NonceFromJSON(proofReq.Nonce)
	if err != nil {
		return errors.Wrap(err, "invalid proof request nonce")
	}

	cryptoProof, err := ursa.ProofFromJSON(indyProof.Proof)
	if err != nil {
		return errors.Wrap(err, "invalid ursa proof format")
	}
	defer func() { _ = cryptoProof.Free() }()

	return verifier.Verify(cryptoProof, proofReqNonce)
}

func attributesForCredential(subProofIdx int, requestedProof *schema.IndyRequestedProof,
	proofReq *schema.IndyProofRequest) []*schema.IndyProofRequestAttr {

	var revealedAttrs []*schema.IndyProofRequestAttr

	for attrReferent, rattr := range requestedProof.RevealedAttrs {
		pa, ok := proofReq.RequestedAttributes[attrReferent]
		if subProofIdx == int(rattr.SubProofIndex) && ok {
			revealedAttrs = append(revealedAttrs, pa)
		}
	}

	for attrReferent, rgroup := range requestedProof.RevealedAttrGroups {
		pa, ok := proofReq.RequestedAttributes[attrReferent]
		if subProofIdx == int(rgroup.SubProofIndex) && ok {
			revealedAttrs = append(revealedAttrs, pa)
		}
	}

	return revealedAttrs
}

func predicatesForCredential(subProofIdx int, requestedProof *schema.IndyRequestedProof,
	proofReq *schema.IndyProofRequest) []*schema.IndyProofRequestPredicate {

	var predicates []*schema.IndyProofRequestPredicate

	for predicateReferent, rpredicate := range requestedProof.Predicates {
		p, ok := proofReq.RequestedPredicates[predicateReferent]
		if subProofIdx == int(rpredicate.SubProofIndex) && ok {
			predicates = append(predicates, p)
		}
	}

	return predicates
}

func buildSubProofRequest(attrs []*schema.IndyProofRequestAttr,
	predicates []*schema.IndyProofRequestPredicate) (*ursa.SubProofRequestHandle, error) {

	subProofBuilder, err := ursa.NewSubProofRequestBuilder()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create sub proof request builder")
	}

	var names []string
	for _, attr := range attrs {
		if len(attr.Name) > 0 {
			names = append(names, attr.Name)
		}

		names = append(names, attr.Names...)
	}

	for _, name := range names {
		err := subProofBuilder.AddRevealedAttr(AttrCommonView(name))
		if err != nil {
			return nil, errors.Wrap(err, "unable to add revealed attribute")
		}
	}

	for _, predicate := range predicates {
		err = subProofBuilder.AddPredicate(AttrCommonView(predicate.Name), predicate.PType, predicate.PValue)
		if err != nil {
			return nil, errors.Wrap(err, "unable to add predicate to sub proof")
		}
	}

	subProofRequest, err := subProofBuilder.Finalize()
	if err != nil {
		return nil, errors.Wrap(err, "unable to finalize sub proof request")
	}

	return subProofRequest, nil
}
