package urgrpc

import (
	"context"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/server"
	"github.com/blockberries/urregistry/types"
)

// Compile-time interface check.
var _ SignerServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a signer as a gRPC service.
type GRPCServer struct {
	srv *server.Server
	log *zap.Logger
}

// NewGRPCServer creates a gRPC server wrapping the given device with
// the default server configuration.
func NewGRPCServer(dev urregistry.Device) *GRPCServer {
	gs, err := NewGRPCServerWithConfig(dev, server.DefaultConfig())
	if err != nil {
		// The default configuration always validates.
		panic(err)
	}
	return gs
}

// NewGRPCServerWithConfig creates a gRPC server with a custom server
// configuration. Its logger is shared with the transport.
func NewGRPCServerWithConfig(dev urregistry.Device, cfg server.Config) (*GRPCServer, error) {
	srv, err := server.New(dev, cfg)
	if err != nil {
		return nil, err
	}
	return &GRPCServer{srv: srv, log: cfg.Logger.Named("grpc")}, nil
}

// Register adds the signer service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterSignerServiceServer(gs, s)
}

// Serve starts the gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	s.log.Info("serving", zap.Stringer("addr", lis.Addr()))
	return gs.Serve(lis)
}

// Stop gracefully stops the gRPC server.
func (s *GRPCServer) Stop(gs *grpc.Server) {
	gs.GracefulStop()
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) Handshake(ctx context.Context, req *types.HandshakeRequest) (*types.DeviceInfo, error) {
	info, err := s.srv.Handshake(ctx, *req)
	if err != nil {
		s.log.Warn("handshake failed", zap.Error(err))
		return nil, toStatus(err)
	}
	return &info, nil
}

func (s *GRPCServer) Sign(ctx context.Context, req *types.Envelope) (*types.Envelope, error) {
	resp, err := s.srv.Sign(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}
