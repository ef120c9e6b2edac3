/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package indy

import (
	"encoding/json"
	"math/rand"

	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/presentproof"
	"github.com/scoir/procyon/pkg/schema"
)

// indy-node read transaction types
const (
	getRevocRegDefType   = "115"
	getRevocRegDeltaType = "117"

	// any DID is accepted as the submitter of an unsigned read request
	readSubmitterDID = "LibindyDid111111111111"
)

// Ledger hands out read sessions backed by an indy-vdr pool connection. Each
// session owns one connection and releases it on Close.
type Ledger struct {
	dial func() (VDRClient, error)
}

func NewLedger(dial func() (VDRClient, error)) *Ledger {
	return &Ledger{dial: dial}
}

func (r *Ledger) Session() (presentproof.LedgerSession, error) {
	client, err := r.dial()
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to indy ledger")
	}

	return &session{client: client}, nil
}

type session struct {
	client VDRClient
}

func (r *session) Close() error {
	return r.client.Close()
}

func (r *session) GetSchema(schemaID string) (*schema.LedgerSchema, error) {
	rply, err := r.client.GetSchema(schemaID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get schema from ledger")
	}

	out := &schema.LedgerSchema{}
	err = decodeReply(rply, out)
	if err != nil {
		return nil, errors.Wrap(err, "invalid reply from ledger for schema")
	}

	if out.ID == "" {
		out.ID = schemaID
	}
	if out.SeqNo == 0 {
		out.SeqNo = int(rply.SeqNo)
	}

	return out, nil
}

func (r *session) GetCredDef(credDefID string) (*vdr.ClaimDefData, error) {
	rply, err := r.client.GetCredDef(credDefID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get cred def from ledger")
	}

	out := &vdr.ClaimDefData{}
	err = decodeReply(rply, out)
	if err != nil {
		return nil, errors.Wrap(err, "invalid reply from ledger for cred def")
	}
	out.ID = credDefID

	return out, nil
}

func (r *session) GetRevocRegDef(revRegID string) (*schema.RevocationRegistryDefinition, error) {
	rply, err := r.submitRead(map[string]interface{}{
		"type": getRevocRegDefType,
		"id":   revRegID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to get revocation registry definition from ledger")
	}

	out := &schema.RevocationRegistryDefinition{}
	err = decodeReply(rply, out)
	if err != nil {
		return nil, errors.Wrap(err, "invalid reply from ledger for revocation registry definition")
	}

	if out.ID == "" {
		out.ID = revRegID
	}

	return out, nil
}

// deltaReplyData is the shape of a GET_REVOC_REG_DELTA reply; the delta
// timestamp is the transaction time of the accumulator the window closed on.
type deltaReplyData struct {
	Value struct {
		AccumTo struct {
			TxnTime int64 `json:"txnTime"`
		} `json:"accum_to"`
	} `json:"value"`
}

func (r *session) GetRevocRegDelta(revRegID string, from, to int64) (*schema.RevocationRegistryDelta, int64, error) {
	op := map[string]interface{}{
		"type":          getRevocRegDeltaType,
		"revocRegDefId": revRegID,
		"to":            to,
	}
	if from > 0 {
		op["from"] = from
	}

	rply, err := r.submitRead(op)
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to get revocation registry delta from ledger")
	}

	delta := &schema.RevocationRegistryDelta{}
	err = decodeReply(rply, delta)
	if err != nil {
		return nil, 0, errors.Wrap(err, "invalid reply from ledger for revocation registry delta")
	}

	meta := &deltaReplyData{}
	err = decodeReply(rply, meta)
	if err != nil {
		return nil, 0, errors.Wrap(err, "invalid accumulator metadata in delta reply")
	}

	timestamp := meta.Value.AccumTo.TxnTime
	if timestamp == 0 {
		timestamp = to
	}

	return delta, timestamp, nil
}

func (r *session) submitRead(operation map[string]interface{}) (*vdr.ReadReply, error) {
	request := map[string]interface{}{
		"operation":       operation,
		"identifier":      readSubmitterDID,
		"protocolVersion": 2,
		"reqId":           rand.Uint32(),
	}

	b, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal ledger read request")
	}

	return r.client.Submit(b)
}

func decodeReply(rply *vdr.ReadReply, out interface{}) error {
	d, err := json.Marshal(rply.Data)
	if err != nil {
		return err
	}

	return json.Unmarshal(d, out)
}
