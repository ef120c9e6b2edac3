/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/scoir/procyon/pkg/amqp"
)

// Server consumes inbound present-proof envelopes off the wire and drives the
// exchange manager with them.
type Server struct {
	listener amqp.Listener
	handler  *proofHandler
	logger   *logrus.Entry
}

func New(ctx Provider) (*Server, error) {
	mgr, err := ctx.PresentationManager()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get presentation manager")
	}

	r := &Server{
		listener: ctx.Listener(),
		handler: &proofHandler{
			manager:   mgr,
			responder: ctx.Responder(),
			logger:    logrus.WithField("component", "didcomm-verifier"),
		},
		logger: logrus.WithField("component", "didcomm-verifier"),
	}

	return r, nil
}

// Run blocks consuming deliveries until the listener channel closes. Handler
// failures are logged, not fatal; the next delivery is processed.
func (r *Server) Run() error {
	msgs, err := r.listener.Listen()
	if err != nil {
		return errors.Wrap(err, "unable to listen for presentation messages")
	}

	for delivery := range msgs {
		err := r.handler.handleEnvelope(delivery.Body)
		if err != nil {
			r.logger.WithError(err).Error("unable to handle presentation message")
		}
	}

	return nil
}

func (r *Server) Close() error {
	return r.listener.Close()
}
