// Package stream publishes generated signals to NATS as float32 sample frames.
package stream

import (
	"time"

	"github.com/nats-io/nats.go"
)

// Connect dials NATS and keeps reconnecting for the life of the connection.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name("biosynth"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}
