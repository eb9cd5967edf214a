package registry

import "github.com/blockberries/urregistry/item"

// Keys shared by every signature record.
const (
	SignatureKeyRequestID uint64 = 1
	SignatureKeySignature uint64 = 2
)

// SignatureMap starts a signature record map: the tagged request
// identifier when present, then the signature bytes.
func SignatureMap(requestID, signature []byte) *item.Map {
	m := item.NewMap()
	if requestID != nil {
		m.Set(SignatureKeyRequestID, RequestIDItem(requestID))
	}
	m.Set(SignatureKeySignature, item.Bytes(signature))
	return m
}

// ReadSignature reads the request identifier and signature keys.
func ReadSignature(f *Fields) (requestID, signature []byte, err error) {
	if requestID, err = f.RequestID(SignatureKeyRequestID); err != nil {
		return nil, nil, err
	}
	if signature, err = f.Bytes(SignatureKeySignature, "signature"); err != nil {
		return nil, nil, err
	}
	return requestID, signature, nil
}
