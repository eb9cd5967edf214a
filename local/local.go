// Package local provides an in-process signer connection.
//
// For signers compiled into the same binary as the host, this adapter
// wraps the device with session enforcement and capability discovery.
// Records still cross it as CBOR envelopes, so the host sees exactly
// what a remote signer would return.
package local

import (
	"context"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/server"
	"github.com/blockberries/urregistry/types"
)

// Compile-time interface check.
var _ urregistry.Connection = (*Connection)(nil)

// Connection wraps a local Device with session enforcement and
// capability discovery.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection wrapping the given
// device with the default server configuration.
func NewConnection(dev urregistry.Device) *Connection {
	srv, err := server.New(dev, server.DefaultConfig())
	if err != nil {
		// The default configuration always validates.
		panic(err)
	}
	return &Connection{srv: srv}
}

// NewConnectionWithConfig creates an in-process connection with a
// custom server configuration.
func NewConnectionWithConfig(dev urregistry.Device, cfg server.Config) (*Connection, error) {
	srv, err := server.New(dev, cfg)
	if err != nil {
		return nil, err
	}
	return &Connection{srv: srv}, nil
}

func (c *Connection) Handshake(ctx context.Context, req types.HandshakeRequest) (types.DeviceInfo, error) {
	return c.srv.Handshake(ctx, req)
}

func (c *Connection) Sign(ctx context.Context, req types.Envelope) (types.Envelope, error) {
	return c.srv.Sign(ctx, req)
}

func (c *Connection) Capabilities() types.Capabilities {
	return c.srv.Capabilities()
}

// Server returns the wrapped server.
func (c *Connection) Server() *server.Server {
	return c.srv
}

func (c *Connection) Close() error {
	return c.srv.Close()
}
