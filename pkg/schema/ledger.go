/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package schema

import (
	"encoding/json"
)

// LedgerSchema is a credential schema as read from the ledger.
type LedgerSchema struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	AttrNames []string `json:"attrNames"`
	SeqNo     int      `json:"seqNo,omitempty"`
}

// RevocationRegistryDefinition is a revocation registry definition as read
// from the ledger.
type RevocationRegistryDefinition struct {
	ID           string                            `json:"id"`
	CredDefID    string                            `json:"credDefId"`
	RevocDefType string                            `json:"revocDefType"`
	Tag          string                            `json:"tag"`
	Value        RevocationRegistryDefinitionValue `json:"value"`
}

type RevocationRegistryDefinitionValue struct {
	IssuanceType  string          `json:"issuanceType,omitempty"`
	MaxCredNum    int             `json:"maxCredNum"`
	PublicKeys    json.RawMessage `json:"publicKeys,omitempty"`
	TailsHash     string          `json:"tailsHash"`
	TailsLocation string          `json:"tailsLocation"`
}

// RevocationRegistryDelta is the accumulator delta over a requested window.
// The value is kept opaque; only the proof engine interprets it.
type RevocationRegistryDelta struct {
	Ver   string          `json:"ver,omitempty"`
	Value json.RawMessage `json:"value"`
}
