package ursa

import (
	"encoding/json"
	"math/big"
	"reflect"

	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/schema"
)

// compareAttrFromProofAndRequest checks the presentation answers exactly the
// referents the request named, no more and no fewer.
func compareAttrFromProofAndRequest(proofReq *schema.IndyProofRequest, indyProof *schema.IndyProof) error {
	empty := struct{}{}

	requestedAttrs := map[string]struct{}{}
	for k := range proofReq.RequestedAttributes {
		requestedAttrs[k] = empty
	}

	receivedAttrs := map[string]struct{}{}
	for k := range indyProof.RequestedProof.RevealedAttrs {
		receivedAttrs[k] = empty
	}

	for k := range indyProof.RequestedProof.RevealedAttrGroups {
		receivedAttrs[k] = empty
	}

	for k := range indyProof.RequestedProof.UnrevealedAttrs {
		receivedAttrs[k] = empty
	}

	for k := range indyProof.RequestedProof.SelfAttestedAttrs {
		receivedAttrs[k] = empty
	}

	if !reflect.DeepEqual(requestedAttrs, receivedAttrs) {
		return errors.Errorf("requested attributes [%v] do not correspond with received [%v]", requestedAttrs, receivedAttrs)
	}

	requestedPreds := map[string]struct{}{}
	for k := range proofReq.RequestedPredicates {
		requestedPreds[k] = empty
	}

	receivedPreds := map[string]struct{}{}
	for k := range indyProof.RequestedProof.Predicates {
		receivedPreds[k] = empty
	}

	if !reflect.DeepEqual(requestedPreds, receivedPreds) {
		return errors.Errorf("requested predicates [%v] do not correspond to received [%v]", requestedPreds, receivedPreds)
	}

	return nil
}

// verifyRevealedAttributeValues checks every revealed value's encoding
// matches the encoded attribute inside the cryptographic proof.
func verifyRevealedAttributeValues(proofReq *schema.IndyProofRequest, indyProof *schema.IndyProof) error {
	for attrReferent, info := range indyProof.RequestedProof.RevealedAttrs {
		requestAttr, ok := proofReq.RequestedAttributes[attrReferent]
		if !ok {
			return errors.Errorf("attribute with referent %s not found in proof request", attrReferent)
		}

		err := verifyRevealedAttrValue(requestAttr.Name, indyProof, info)
		if err != nil {
			return err
		}
	}

	for attrReferent, infos := range indyProof.RequestedProof.RevealedAttrGroups {
		requestAttr, ok := proofReq.RequestedAttributes[attrReferent]
		if !ok {
			return errors.Errorf("attribute group with referent %s not found in proof request", attrReferent)
		}

		if len(infos.Values) != len(requestAttr.Names) {
			return errors.Errorf("revealed attr group %s does not match proof request attribute group", attrReferent)
		}

		for _, attrName := range requestAttr.Names {
			attrInfo, ok := infos.Values[attrName]
			if !ok {
				return errors.Errorf("attribute %s not revealed in group %s", attrName, attrReferent)
			}

			err := verifyRevealedAttrValue(attrName, indyProof, &schema.RevealedAttributeInfo{
				SubProofIndex: infos.SubProofIndex,
				Raw:           attrInfo.Raw,
				Encoded:       attrInfo.Encoded,
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func verifyRevealedAttrValue(attrName string, proof *schema.IndyProof, info *schema.RevealedAttributeInfo) error {
	cryptoProof := &schema.CryptoProof{}
	err := json.Unmarshal(proof.Proof, cryptoProof)
	if err != nil {
		return errors.Wrap(err, "invalid crypto proof")
	}

	subProofIdx := int(info.SubProofIndex)
	if subProofIdx >= len(cryptoProof.Proofs) {
		return errors.Errorf("crypto proof not found by index %d", subProofIdx)
	}

	attrs := cryptoProof.Proofs[subProofIdx].RevealedAttrs()

	var cryptoProofEnc string
	for k, v := range attrs {
		if AttrCommonView(k) == AttrCommonView(attrName) {
			cryptoProofEnc = v
			break
		}
	}

	if cryptoProofEnc == "" {
		return errors.Errorf("attribute with name %q not found in crypto proof", attrName)
	}

	i := new(big.Int)
	j := new(big.Int)
	i.SetString(info.Encoded, 10)
	j.SetString(cryptoProofEnc, 10)

	if i.Cmp(j) != 0 {
		return errors.Errorf("encoded values for %q differ between requested proof %q and crypto proof %q",
			attrName, info.Encoded, cryptoProofEnc)
	}

	return nil
}
