package urgrpc

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/registry"
	"github.com/blockberries/urregistry/server"
)

// toStatus maps a server error onto a gRPC status so the client can
// recover its class.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var code codes.Code
	switch {
	case errors.Is(err, server.ErrInvalidState):
		code = codes.FailedPrecondition
	case errors.Is(err, urregistry.ErrUnsupportedRequest):
		code = codes.Unimplemented
	case errors.Is(err, server.ErrPayloadTooLarge):
		code = codes.ResourceExhausted
	case errors.Is(err, registry.ErrUnknownType):
		code = codes.NotFound
	default:
		if _, ok := urregistry.IsRequestMismatch(err); ok {
			code = codes.DataLoss
		} else {
			code = codes.InvalidArgument
		}
	}
	return status.Error(code, err.Error())
}

// fromStatus wraps the sentinel matching a status code, leaving other
// errors as they are.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.FailedPrecondition:
		sentinel = server.ErrInvalidState
	case codes.Unimplemented:
		sentinel = urregistry.ErrUnsupportedRequest
	case codes.ResourceExhausted:
		sentinel = server.ErrPayloadTooLarge
	case codes.NotFound:
		sentinel = registry.ErrUnknownType
	default:
		return err
	}
	return fmt.Errorf("%w: remote: %s", sentinel, st.Message())
}
