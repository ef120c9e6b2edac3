/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package indy

import (
	"github.com/hyperledger/indy-vdr/wrappers/golang/vdr"
)

//go:generate mockery -name=VDRClient
type VDRClient interface {
	GetSchema(schemaID string) (*vdr.ReadReply, error)
	GetCredDef(credDefID string) (*vdr.ReadReply, error)
	Submit(request []byte) (*vdr.ReadReply, error)
	Close() error
}
