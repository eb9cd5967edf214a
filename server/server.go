package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/registry"
	"github.com/blockberries/urregistry/stellar"
	"github.com/blockberries/urregistry/types"
)

// ErrPayloadTooLarge is returned for envelopes over Config.MaxPayloadBytes.
var ErrPayloadTooLarge = errors.New("server: payload too large")

// Server wraps a signer with session enforcement and capability
// routing. The host interacts with the device exclusively through this
// server.
type Server struct {
	dev   urregistry.Device
	cfg   Config
	log   *zap.Logger
	guard *SessionGuard
	info  types.DeviceInfo

	// Optional interfaces (nil if not supported).
	cardano urregistry.CardanoSigner
	bitcoin urregistry.BitcoinSigner
	stellar urregistry.StellarSigner
}

// New creates a new Server wrapping the given device.
func New(dev urregistry.Device, cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server: invalid config: %w", err)
	}
	s := &Server{
		dev:   dev,
		cfg:   cfg,
		log:   cfg.Logger,
		guard: NewSessionGuard(),
	}
	// Pre-discover optional interfaces (validated after handshake).
	s.cardano, _ = dev.(urregistry.CardanoSigner)
	s.bitcoin, _ = dev.(urregistry.BitcoinSigner)
	s.stellar, _ = dev.(urregistry.StellarSigner)
	return s, nil
}

// Handshake performs the session handshake, validates capability
// declarations, and transitions the state machine to Ready.
func (s *Server) Handshake(ctx context.Context, req types.HandshakeRequest) (types.DeviceInfo, error) {
	if err := s.guard.AcquireHandshake(); err != nil {
		return types.DeviceInfo{}, err
	}
	if req.Version != types.ProtocolVersion {
		s.guard.FailHandshake()
		return types.DeviceInfo{}, fmt.Errorf("server: unsupported protocol version %d (want %d)", req.Version, types.ProtocolVersion)
	}

	info, err := s.dev.Handshake(ctx, req)
	if err != nil {
		s.guard.FailHandshake()
		return info, err
	}

	if err := discoverCapabilities(s.log, s.dev, info.Capabilities); err != nil {
		s.guard.FailHandshake()
		return info, err
	}

	s.info = info
	s.guard.CompleteHandshake()
	s.log.Info("handshake complete",
		zap.String("origin", req.Origin),
		zap.String("fingerprint", info.FingerprintHex()),
		zap.Stringer("capabilities", info.Capabilities),
	)
	return info, nil
}

// Sign decodes one sign request, routes it to the signer for its chain
// and returns the encoded signature. Requests are handled one at a time.
func (s *Server) Sign(ctx context.Context, env types.Envelope) (types.Envelope, error) {
	if err := s.guard.AcquireSign(); err != nil {
		return types.Envelope{}, err
	}
	defer s.guard.CompleteSign()

	log := s.log.With(zap.String("type", env.Type), zap.Int("size", len(env.Payload)))
	if len(env.Payload) > s.cfg.MaxPayloadBytes {
		log.Warn("rejecting sign request", zap.Error(ErrPayloadTooLarge))
		return types.Envelope{}, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(env.Payload), s.cfg.MaxPayloadBytes)
	}

	rec, err := urregistry.DecodeEnvelope(s.cfg.Catalog, env, s.cfg.decodeOptions()...)
	if err != nil {
		log.Warn("rejecting sign request", zap.Error(err))
		return types.Envelope{}, err
	}

	sig, err := s.dispatch(ctx, rec)
	if err != nil {
		log.Warn("sign request failed", zap.Error(err))
		return types.Envelope{}, err
	}

	out, err := urregistry.EncodeEnvelope(sig)
	if err != nil {
		return types.Envelope{}, err
	}
	log.Debug("signed", zap.String("response", out.Type))
	return out, nil
}

// dispatch routes a decoded record to the declared signer for its
// chain and checks that the answer echoes the request identifier.
func (s *Server) dispatch(ctx context.Context, rec registry.RegistryItem) (registry.RegistryItem, error) {
	switch req := rec.(type) {
	case *cardano.SignRequest:
		if s.AsCardanoSigner() == nil {
			return nil, unsupported(rec)
		}
		sig, err := s.cardano.SignCardano(ctx, req)
		return checked(req.RequestID(), sig, err)
	case *btc.SignRequest:
		if s.AsBitcoinSigner() == nil {
			return nil, unsupported(rec)
		}
		sig, err := s.bitcoin.SignBitcoin(ctx, req)
		return checked(req.RequestID(), sig, err)
	case *stellar.SignRequest:
		if s.AsStellarSigner() == nil {
			return nil, unsupported(rec)
		}
		sig, err := s.stellar.SignStellar(ctx, req)
		return checked(req.RequestID(), sig, err)
	default:
		return nil, unsupported(rec)
	}
}

type signature interface {
	comparable
	registry.RegistryItem
	RequestID() []byte
}

func checked[S signature](requestID []byte, sig S, err error) (registry.RegistryItem, error) {
	if err != nil {
		return nil, err
	}
	var zero S
	if sig == zero {
		return nil, errors.New("server: signer returned no signature")
	}
	if err := urregistry.CheckRequestEcho(sig.RegistryType().Name, requestID, sig.RequestID()); err != nil {
		return nil, err
	}
	return sig, nil
}

func unsupported(rec registry.RegistryItem) error {
	return fmt.Errorf("%w: %s", urregistry.ErrUnsupportedRequest, rec.RegistryType().Name)
}

// Info returns the device info reported at handshake.
func (s *Server) Info() types.DeviceInfo {
	return s.info
}

// Capabilities returns the device's declared capabilities.
// Only valid after Handshake completes.
func (s *Server) Capabilities() types.Capabilities {
	return s.info.Capabilities
}

// AsCardanoSigner returns the CardanoSigner interface or nil.
func (s *Server) AsCardanoSigner() urregistry.CardanoSigner {
	if s.info.Capabilities.Has(types.CapCardano) {
		return s.cardano
	}
	return nil
}

// AsBitcoinSigner returns the BitcoinSigner interface or nil.
func (s *Server) AsBitcoinSigner() urregistry.BitcoinSigner {
	if s.info.Capabilities.Has(types.CapBitcoin) {
		return s.bitcoin
	}
	return nil
}

// AsStellarSigner returns the StellarSigner interface or nil.
func (s *Server) AsStellarSigner() urregistry.StellarSigner {
	if s.info.Capabilities.Has(types.CapStellar) {
		return s.stellar
	}
	return nil
}

// State returns the session state name.
func (s *Server) State() string { return s.guard.State() }

// Close ends the session. Later calls fail with ErrInvalidState.
func (s *Server) Close() error {
	s.guard.Close()
	return nil
}

// discoverCapabilities checks which optional interfaces the device
// implements and verifies consistency with declared capabilities.
func discoverCapabilities(log *zap.Logger, dev urregistry.Device, declared types.Capabilities) error {
	_, hasCardano := dev.(urregistry.CardanoSigner)
	_, hasBitcoin := dev.(urregistry.BitcoinSigner)
	_, hasStellar := dev.(urregistry.StellarSigner)

	checks := []struct {
		cap   types.Capabilities
		has   bool
		iface string
	}{
		{types.CapCardano, hasCardano, "CardanoSigner"},
		{types.CapBitcoin, hasBitcoin, "BitcoinSigner"},
		{types.CapStellar, hasStellar, "StellarSigner"},
	}
	for _, c := range checks {
		if declared.Has(c.cap) && !c.has {
			return fmt.Errorf("server: device declared %s but does not implement %s", c.cap, c.iface)
		}
	}

	// Warn (but don't error) if the device implements an interface but didn't declare it.
	for _, c := range checks {
		if !declared.Has(c.cap) && c.has {
			log.Warn("device implements signer but did not declare it; capability will not be used",
				zap.String("interface", c.iface))
		}
	}
	if unknown := declared &^ types.CapAll; unknown != 0 {
		log.Warn("device declared unknown capabilities", zap.Uint8("bits", uint8(unknown)))
	}
	return nil
}
