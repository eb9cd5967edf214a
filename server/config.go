package server

import (
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/registry"
)

// DefaultMaxPayloadBytes bounds an incoming sign request payload.
const DefaultMaxPayloadBytes = 1 << 20

// Config controls how the server decodes and routes requests.
type Config struct {
	// StrictTags rejects nested entities that carry no tag.
	StrictTags bool
	// MaxPayloadBytes bounds the CBOR payload of an incoming envelope.
	MaxPayloadBytes int
	// Catalog resolves envelope type names to decoders.
	Catalog *registry.Catalog
	Logger  *zap.Logger
}

// DefaultConfig returns a permissive configuration over the default
// catalog with logging disabled.
func DefaultConfig() Config {
	return Config{
		MaxPayloadBytes: DefaultMaxPayloadBytes,
		Catalog:         urregistry.DefaultCatalog(),
		Logger:          zap.NewNop(),
	}
}

func (c Config) Validate() error {
	var allErrors field.ErrorList
	if c.MaxPayloadBytes <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("maxPayloadBytes"), c.MaxPayloadBytes, "must be positive"))
	}
	if c.Catalog == nil {
		allErrors = append(allErrors, field.Required(field.NewPath("catalog"), "catalog is required"))
	}
	if c.Logger == nil {
		allErrors = append(allErrors, field.Required(field.NewPath("logger"), "logger is required"))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (c Config) decodeOptions() []registry.DecodeOption {
	if c.StrictTags {
		return []registry.DecodeOption{registry.StrictTags()}
	}
	return nil
}
