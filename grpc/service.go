package urgrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/urregistry/types"

	"google.golang.org/grpc"
)

const serviceName = "urregistry.v1.SignerService"

// SignerServiceServer is the server-side interface for the signer gRPC
// service.
type SignerServiceServer interface {
	Handshake(context.Context, *types.HandshakeRequest) (*types.DeviceInfo, error)
	Sign(context.Context, *types.Envelope) (*types.Envelope, error)
}

// RegisterSignerServiceServer registers the SignerServiceServer on a
// gRPC server.
func RegisterSignerServiceServer(s *grpc.Server, srv SignerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerHandshake(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.HandshakeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignerServiceServer).Handshake(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Handshake")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(SignerServiceServer).Handshake(ctx, req.(*types.HandshakeRequest))
	})
}

func handlerSign(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.Envelope)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignerServiceServer).Sign(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Sign")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(SignerServiceServer).Sign(ctx, req.(*types.Envelope))
	})
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the signer.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SignerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handshake", Handler: handlerHandshake},
		{MethodName: "Sign", Handler: handlerSign},
	},
	Metadata: "urregistry/v1/signer.cram",
}
