package urregistry

import (
	"context"
	"fmt"

	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
	"github.com/blockberries/urregistry/stellar"
	"github.com/blockberries/urregistry/types"
)

// identified is a record carrying an optional request identifier.
type identified interface {
	registry.RegistryItem
	RequestID() []byte
}

// EncodeEnvelope encodes ri into an envelope named after its registry
// type.
func EncodeEnvelope(ri registry.RegistryItem) (types.Envelope, error) {
	data, err := registry.ToCBOR(ri)
	if err != nil {
		return types.Envelope{}, fmt.Errorf("encode %s: %w", ri.RegistryType().Name, err)
	}
	return types.Envelope{Type: ri.RegistryType().Name, Payload: data}, nil
}

// DecodeEnvelope decodes env with the decoder c holds for env.Type.
// CBOR errors are returned unchanged.
func DecodeEnvelope(c *registry.Catalog, env types.Envelope, opts ...registry.DecodeOption) (registry.RegistryItem, error) {
	return c.DecodeNamed(env.Type, env.Payload, opts...)
}

// SignCardano sends req over conn and returns the decoded signature.
// The signature must echo the request identifier.
func SignCardano(ctx context.Context, conn Connection, req *cardano.SignRequest, opts ...registry.DecodeOption) (*cardano.Signature, error) {
	return sign(ctx, conn, req, cardano.SignatureType, cardano.SignatureFromDataItem, opts)
}

// SignBitcoin sends req over conn and returns the decoded signature.
func SignBitcoin(ctx context.Context, conn Connection, req *btc.SignRequest, opts ...registry.DecodeOption) (*btc.Signature, error) {
	return sign(ctx, conn, req, btc.SignatureType, btc.SignatureFromDataItem, opts)
}

// SignStellar sends req over conn and returns the decoded signature.
func SignStellar(ctx context.Context, conn Connection, req *stellar.SignRequest, opts ...registry.DecodeOption) (*stellar.Signature, error) {
	return sign(ctx, conn, req, stellar.SignatureType, stellar.SignatureFromDataItem, opts)
}

func sign[Sig identified](
	ctx context.Context,
	conn Connection,
	req identified,
	want registry.RegistryType,
	dec func(item.Item, ...registry.DecodeOption) (Sig, error),
	opts []registry.DecodeOption,
) (Sig, error) {
	var zero Sig
	env, err := EncodeEnvelope(req)
	if err != nil {
		return zero, err
	}
	resp, err := conn.Sign(ctx, env)
	if err != nil {
		return zero, err
	}
	if resp.Type != want.Name {
		return zero, fmt.Errorf("%w: got %q, want %q", ErrUnexpectedResponse, resp.Type, want.Name)
	}
	it, err := item.Decode(resp.Payload)
	if err != nil {
		return zero, err
	}
	sig, err := dec(it, opts...)
	if err != nil {
		return zero, err
	}
	if err := CheckRequestEcho(want.Name, req.RequestID(), sig.RequestID()); err != nil {
		return zero, err
	}
	return sig, nil
}
