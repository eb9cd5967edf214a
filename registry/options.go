package registry

// RequestOptions carries the optional fields every sign request shares.
type RequestOptions struct {
	RequestID []byte
	Origin    string
	HasOrigin bool
}

// RequestOption sets an optional sign request field.
type RequestOption func(*RequestOptions)

// WithRequestID attaches a 16-byte request identifier.
func WithRequestID(id []byte) RequestOption {
	return func(o *RequestOptions) { o.RequestID = CloneBytes(id) }
}

// WithOrigin names the software that issued the request.
func WithOrigin(origin string) RequestOption {
	return func(o *RequestOptions) {
		o.Origin = origin
		o.HasOrigin = true
	}
}

// ApplyRequestOptions collects opts and checks the request identifier
// length on behalf of record.
func ApplyRequestOptions(record string, opts []RequestOption) (RequestOptions, error) {
	var o RequestOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := CheckRequestID(record, o.RequestID); err != nil {
		return RequestOptions{}, err
	}
	return o, nil
}

// FriendlyRequestOptions converts the loosely-typed identifier and origin
// accepted by the Construct factories. Empty strings mean absent.
func FriendlyRequestOptions(uuidString, origin string) ([]RequestOption, error) {
	var opts []RequestOption
	if uuidString != "" {
		id, err := ParseRequestID(uuidString)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithRequestID(id))
	}
	if origin != "" {
		opts = append(opts, WithOrigin(origin))
	}
	return opts, nil
}
