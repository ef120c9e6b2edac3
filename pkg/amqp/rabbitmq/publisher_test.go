/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rabbitmq

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	addy := os.Getenv("RABBITMQ_ADDR")
	if addy == "" {
		t.Skip("RABBITMQ_ADDR not set, skipping integration test")
	}

	t.Run("publish and listen", func(t *testing.T) {
		queue := "test-queue"
		publisher, err := NewPublisher(addy, queue)
		require.NoError(t, err)
		listener, err := NewListener(addy, queue)
		require.NoError(t, err)

		msgCh := make(chan []byte, 1)
		go func() {
			ch, err := listener.Listen()
			require.NoError(t, err)

			incoming := <-ch
			msgCh <- incoming.Body
		}()

		err = publisher.Publish([]byte("{}"), "application/json")
		require.NoError(t, err)

		err = publisher.Close()
		require.NoError(t, err)

		result := <-msgCh
		require.Equal(t, []byte("{}"), result)

		err = listener.Close()
		require.NoError(t, err)
	})
}
