// Package bus carries workflow requests and lifecycle events over NATS. The
// server can run embedded in-process, so a single binary serves the whole
// loop without external infrastructure.
package bus

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// readyTimeout bounds how long an embedded server may take to accept
// connections before startup fails.
const readyTimeout = 5 * time.Second

// EmbeddedServer is an in-process NATS server.
type EmbeddedServer struct {
	ns *natsserver.Server
}

// StartEmbedded boots an in-process NATS server on the given port. Port zero
// picks a random free port, which tests rely on.
func StartEmbedded(port int) (*EmbeddedServer, error) {
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	}
	if port == 0 {
		opts.Port = natsserver.RANDOM_PORT
	}

	ns, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded nats server: %w", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready after %s", readyTimeout)
	}
	return &EmbeddedServer{ns: ns}, nil
}

// ClientURL returns the URL clients connect to.
func (s *EmbeddedServer) ClientURL() string { return s.ns.ClientURL() }

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.ns.Shutdown()
	s.ns.WaitForShutdown()
}
