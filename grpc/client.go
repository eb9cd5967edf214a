package urgrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/server"
	"github.com/blockberries/urregistry/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ urregistry.Connection = (*Client)(nil)

// Client implements urregistry.Connection for remote signers over gRPC
// using cramberry serialization. No protobuf types or conversion layer
// required.
type Client struct {
	cc    *grpc.ClientConn
	info  types.DeviceInfo
	guard *server.SessionGuard
}

// Dial connects to a remote signer.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("urgrpc client: dial %s: %w", addr, err)
	}
	return &Client{
		cc:    cc,
		guard: server.NewSessionGuard(),
	}, nil
}

func (c *Client) Close() error {
	c.guard.Close()
	return c.cc.Close()
}

func (c *Client) Handshake(ctx context.Context, req types.HandshakeRequest) (types.DeviceInfo, error) {
	if err := c.guard.AcquireHandshake(); err != nil {
		return types.DeviceInfo{}, err
	}

	resp := new(types.DeviceInfo)
	if err := c.cc.Invoke(ctx, fullMethod("Handshake"), &req, resp); err != nil {
		c.guard.FailHandshake()
		return types.DeviceInfo{}, fromStatus(err)
	}

	c.info = *resp
	c.guard.CompleteHandshake()
	return *resp, nil
}

func (c *Client) Sign(ctx context.Context, req types.Envelope) (types.Envelope, error) {
	if err := c.guard.AcquireSign(); err != nil {
		return types.Envelope{}, err
	}
	defer c.guard.CompleteSign()

	resp := new(types.Envelope)
	if err := c.cc.Invoke(ctx, fullMethod("Sign"), &req, resp); err != nil {
		return types.Envelope{}, fromStatus(err)
	}
	return *resp, nil
}

// Info returns the device info received at handshake.
func (c *Client) Info() types.DeviceInfo { return c.info }

func (c *Client) Capabilities() types.Capabilities { return c.info.Capabilities }
