/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rabbitmq

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/scoir/procyon/pkg/amqp"
)

// Responder publishes protocol replies onto an outbound queue as JSON.
type Responder struct {
	publisher amqp.Publisher
}

func NewResponder(publisher amqp.Publisher) *Responder {
	return &Responder{publisher: publisher}
}

func (r *Responder) SendReply(msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "unable to marshal reply")
	}

	return r.publisher.Publish(body, "application/json")
}

func (r *Responder) Close() error {
	return r.publisher.Close()
}
