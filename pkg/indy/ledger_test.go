/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package indy

import (
	"encoding/json"
	"testing"

	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type mockVDRClient struct {
	schemaReply *vdr.ReadReply
	credReply   *vdr.ReadReply
	submitReply *vdr.ReadReply
	err         error

	submitted [][]byte
	closed    int
}

func (r *mockVDRClient) GetSchema(_ string) (*vdr.ReadReply, error) {
	return r.schemaReply, r.err
}

func (r *mockVDRClient) GetCredDef(_ string) (*vdr.ReadReply, error) {
	return r.credReply, r.err
}

func (r *mockVDRClient) Submit(request []byte) (*vdr.ReadReply, error) {
	r.submitted = append(r.submitted, request)
	return r.submitReply, r.err
}

func (r *mockVDRClient) Close() error {
	r.closed++
	return nil
}

func testLedger(client *mockVDRClient) *Ledger {
	return NewLedger(func() (VDRClient, error) { return client, nil })
}

func TestLedger_Session(t *testing.T) {
	t.Run("dial failure", func(t *testing.T) {
		ledger := NewLedger(func() (VDRClient, error) { return nil, errors.New("pool down") })

		_, err := ledger.Session()
		require.Error(t, err)
	})

	t.Run("close releases the connection", func(t *testing.T) {
		client := &mockVDRClient{}
		ledger := testLedger(client)

		session, err := ledger.Session()
		require.NoError(t, err)
		require.NoError(t, session.Close())
		require.Equal(t, 1, client.closed)
	})
}

func TestSession_GetSchema(t *testing.T) {
	client := &mockVDRClient{
		schemaReply: &vdr.ReadReply{
			SeqNo: 99,
			Data: map[string]interface{}{
				"name":      "drinks",
				"version":   "1.0",
				"attrNames": []string{"favorite_drink"},
			},
		},
	}
	ledger := testLedger(client)
	session, err := ledger.Session()
	require.NoError(t, err)

	sch, err := session.GetSchema("schema-1")
	require.NoError(t, err)
	require.Equal(t, "schema-1", sch.ID)
	require.Equal(t, "drinks", sch.Name)
	require.Equal(t, []string{"favorite_drink"}, sch.AttrNames)
	require.Equal(t, 99, sch.SeqNo)
}

func TestSession_GetCredDef(t *testing.T) {
	client := &mockVDRClient{
		credReply: &vdr.ReadReply{
			Data: map[string]interface{}{
				"primary": map[string]interface{}{"n": "123"},
			},
		},
	}
	ledger := testLedger(client)
	session, err := ledger.Session()
	require.NoError(t, err)

	credDef, err := session.GetCredDef("cred-def-1")
	require.NoError(t, err)
	require.Equal(t, "cred-def-1", credDef.ID)
}

func TestSession_GetRevocRegDef(t *testing.T) {
	client := &mockVDRClient{
		submitReply: &vdr.ReadReply{
			Data: map[string]interface{}{
				"credDefId": "cred-def-1",
				"value": map[string]interface{}{
					"tailsHash":     "hash-1",
					"tailsLocation": "http://tails/hash-1",
					"maxCredNum":    100,
				},
			},
		},
	}
	ledger := testLedger(client)
	session, err := ledger.Session()
	require.NoError(t, err)

	def, err := session.GetRevocRegDef("rev-reg-1")
	require.NoError(t, err)
	require.Equal(t, "rev-reg-1", def.ID)
	require.Equal(t, "cred-def-1", def.CredDefID)
	require.Equal(t, "hash-1", def.Value.TailsHash)
	require.Equal(t, 100, def.Value.MaxCredNum)

	require.Len(t, client.submitted, 1)

	request := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(client.submitted[0], &request))
	require.EqualValues(t, 2, request["protocolVersion"])
	require.Equal(t, "LibindyDid111111111111", request["identifier"])

	op, ok := request["operation"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "115", op["type"])
	require.Equal(t, "rev-reg-1", op["id"])
}

func TestSession_GetRevocRegDelta(t *testing.T) {
	newClient := func(data map[string]interface{}) *mockVDRClient {
		return &mockVDRClient{submitReply: &vdr.ReadReply{Data: data}}
	}

	t.Run("timestamp comes from the accumulator txn time", func(t *testing.T) {
		client := newClient(map[string]interface{}{
			"value": map[string]interface{}{
				"accum_to": map[string]interface{}{"txnTime": 1234},
			},
		})
		ledger := testLedger(client)
		session, err := ledger.Session()
		require.NoError(t, err)

		delta, timestamp, err := session.GetRevocRegDelta("rev-reg-1", 10, 2000)
		require.NoError(t, err)
		require.NotNil(t, delta)
		require.Equal(t, int64(1234), timestamp)

		request := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(client.submitted[0], &request))
		op := request["operation"].(map[string]interface{})
		require.Equal(t, "117", op["type"])
		require.Equal(t, "rev-reg-1", op["revocRegDefId"])
		require.EqualValues(t, 10, op["from"])
		require.EqualValues(t, 2000, op["to"])
	})

	t.Run("zero from is omitted from the read", func(t *testing.T) {
		client := newClient(map[string]interface{}{"value": map[string]interface{}{}})
		ledger := testLedger(client)
		session, err := ledger.Session()
		require.NoError(t, err)

		_, timestamp, err := session.GetRevocRegDelta("rev-reg-1", 0, 2000)
		require.NoError(t, err)
		require.Equal(t, int64(2000), timestamp)

		request := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(client.submitted[0], &request))
		op := request["operation"].(map[string]interface{})
		_, hasFrom := op["from"]
		require.False(t, hasFrom)
	})
}
