package model

import (
	"context"
	"net"
)

// SecurityLayer opens the listener the tier server accepts on, plain or TLS.
type SecurityLayer interface {
	Listen(network, addr string) (net.Listener, error)
}

// Server is a tier server with a graceful stop.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	// Address is the bound listen address, or the configured one before Start.
	Address() string
}
