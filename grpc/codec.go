// Package urgrpc carries envelopes between a host and a signer over
// gRPC. The transport messages in urregistry/types are serialized with
// cramberry struct tags, so no protobuf generation is involved; the
// records themselves stay CBOR inside the envelope payload.
package urgrpc

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"google.golang.org/grpc/encoding"

	"github.com/blockberries/urregistry/types"
)

const codecName = "cramberry"

// CramberryCodec is the grpc/encoding.Codec for the signer service. It
// only accepts the service's own messages.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) {
	if err := checkMessage(v); err != nil {
		return nil, err
	}
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("urgrpc: marshal %T: %w", v, err)
	}
	return data, nil
}

func (CramberryCodec) Unmarshal(data []byte, v any) error {
	if err := checkMessage(v); err != nil {
		return err
	}
	if err := cramberry.Unmarshal(data, v); err != nil {
		return fmt.Errorf("urgrpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (CramberryCodec) Name() string { return codecName }

func checkMessage(v any) error {
	switch v.(type) {
	case *types.Envelope, *types.HandshakeRequest, *types.DeviceInfo:
		return nil
	default:
		return fmt.Errorf("urgrpc: %T is not a signer service message", v)
	}
}

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
