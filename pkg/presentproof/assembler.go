/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/schema"
)

// referent tracks one requested referent's credential selection and the
// non-revocation window declared for it in the proof request.
type referent struct {
	credentialID string
	nonRevoked   *schema.NonRevokedInterval
}

// assembler resolves everything a proof needs: credentials from the holder,
// schemas, credential definitions and revocation registry definitions from
// the ledger, and revocation states. All ledger lookups are deduplicated for
// the lifetime of one assemble call only.
type assembler struct {
	holder     Holder
	ledger     Ledger
	revocation RevocationProvider
	now        func() int64
}

func (r *assembler) assemble(proofReq *schema.IndyProofRequest,
	requested *schema.IndyRequestedCredentials) (*schema.IndyProof, error) {

	referents := collectReferents(proofReq, requested)

	credentials := map[string]*schema.CredentialInfo{}
	for _, ref := range referents {
		if _, ok := credentials[ref.credentialID]; ok {
			continue
		}

		cred, err := r.holder.GetCredential(ref.credentialID)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get credential %s from holder", ref.credentialID)
		}
		credentials[ref.credentialID] = cred
	}

	schemas, credDefs, regDefs, err := r.resolveLedgerObjects(credentials)
	if err != nil {
		return nil, err
	}

	resolver := &revocationResolver{
		ledger:     r.ledger,
		revocation: r.revocation,
		now:        r.now,
	}

	revStates, err := resolver.resolveStates(referents, credentials, regDefs, proofReq.NonRevoked)
	if err != nil {
		return nil, err
	}

	proof, err := r.holder.CreatePresentation(proofReq, requested, schemas, credDefs, revStates)
	if err != nil {
		return nil, errors.Wrap(err, "holder unable to create presentation")
	}

	return proof, nil
}

// collectReferents builds the referent map from the requested attributes and
// predicates, copying any per-referent non-revocation window declared in the
// proof request.
func collectReferents(proofReq *schema.IndyProofRequest,
	requested *schema.IndyRequestedCredentials) map[string]*referent {

	out := map[string]*referent{}

	for reft, attr := range requested.RequestedAttributes {
		ref := &referent{credentialID: attr.CredID}
		if reqAttr, ok := proofReq.RequestedAttributes[reft]; ok {
			ref.nonRevoked = reqAttr.NonRevoked
		}
		out[reft] = ref
	}

	for reft, pred := range requested.RequestedPredicates {
		ref := &referent{credentialID: pred.CredID}
		if reqPred, ok := proofReq.RequestedPredicates[reft]; ok {
			ref.nonRevoked = reqPred.NonRevoked
		}
		out[reft] = ref
	}

	return out
}

// resolveLedgerObjects reads the schema and credential definition of every
// distinct credential, and the registry definition of every credential that
// carries a revocation registry id. Reads share one ledger session and are
// deduplicated by id.
func (r *assembler) resolveLedgerObjects(credentials map[string]*schema.CredentialInfo) (
	map[string]*schema.LedgerSchema, map[string]*vdr.ClaimDefData,
	map[string]*schema.RevocationRegistryDefinition, error) {

	session, err := r.ledger.Session()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "unable to open ledger session")
	}
	defer func() { _ = session.Close() }()

	schemas := map[string]*schema.LedgerSchema{}
	credDefs := map[string]*vdr.ClaimDefData{}
	regDefs := map[string]*schema.RevocationRegistryDefinition{}

	for _, cred := range credentials {
		if _, ok := schemas[cred.SchemaID]; !ok {
			sch, err := session.GetSchema(cred.SchemaID)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "unable to get schema %s from ledger", cred.SchemaID)
			}
			schemas[cred.SchemaID] = sch
		}

		if _, ok := credDefs[cred.CredDefID]; !ok {
			credDef, err := session.GetCredDef(cred.CredDefID)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "unable to get cred def %s from ledger", cred.CredDefID)
			}
			credDefs[cred.CredDefID] = credDef
		}

		if cred.RevRegID == "" {
			continue
		}

		if _, ok := regDefs[cred.RevRegID]; !ok {
			regDef, err := session.GetRevocRegDef(cred.RevRegID)
			if err != nil {
				return nil, nil, nil, errors.Wrapf(err, "unable to get revocation registry %s from ledger", cred.RevRegID)
			}
			regDefs[cred.RevRegID] = regDef
		}
	}

	return schemas, credDefs, regDefs, nil
}
