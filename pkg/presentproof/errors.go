/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presentproof

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound signals a referenced exchange record, proposal, or ledger
	// object is absent.
	ErrNotFound = errors.New("not found")

	// ErrProtocol signals an operation invoked against a record missing
	// required prior state.
	ErrProtocol = errors.New("protocol state error")
)

// ManagerError reports an invalid inbound presentation: an attribute value
// substituted since the proposal, or malformed verification input. The
// exchange record is left in its prior persisted state.
type ManagerError struct {
	msg string
}

func (e *ManagerError) Error() string {
	return e.msg
}

func newManagerError(format string, args ...interface{}) *ManagerError {
	return &ManagerError{msg: fmt.Sprintf(format, args...)}
}

// IsManagerError reports whether err is a ManagerError, unwrapping as needed.
func IsManagerError(err error) bool {
	var me *ManagerError
	return errors.As(err, &me)
}
