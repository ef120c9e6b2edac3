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

// verifyCoordinator resolves the schemas and credential definitions named by
// a presentation's identifier list and invokes verification. Lookups are
// deduplicated per call within one ledger session.
type verifyCoordinator struct {
	ledger   Ledger
	verifier Verifier
}

func (r *verifyCoordinator) verify(proofReq *schema.IndyProofRequest, proof *schema.IndyProof) (bool, error) {
	session, err := r.ledger.Session()
	if err != nil {
		return false, errors.Wrap(err, "unable to open ledger session")
	}
	defer func() { _ = session.Close() }()

	schemas := map[string]*schema.LedgerSchema{}
	credDefs := map[string]*vdr.ClaimDefData{}

	for _, identifier := range proof.Identifiers {
		if _, ok := schemas[identifier.SchemaID]; !ok {
			sch, err := session.GetSchema(identifier.SchemaID)
			if err != nil {
				return false, errors.Wrapf(err, "unable to get schema %s from ledger", identifier.SchemaID)
			}
			schemas[identifier.SchemaID] = sch
		}

		if _, ok := credDefs[identifier.CredDefID]; !ok {
			credDef, err := session.GetCredDef(identifier.CredDefID)
			if err != nil {
				return false, errors.Wrapf(err, "unable to get cred def %s from ledger", identifier.CredDefID)
			}
			credDefs[identifier.CredDefID] = credDef
		}
	}

	verified, err := r.verifier.VerifyPresentation(proofReq, proof, schemas, credDefs)
	if err != nil {
		return false, errors.Wrap(err, "verifier unable to check presentation")
	}

	return verified, nil
}
