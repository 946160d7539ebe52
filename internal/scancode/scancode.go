// Package scancode renders scannable images for credential verification
// references. The image encodes nothing but the public verification URL, so
// rendering is deterministic and safe to cache.
package scancode

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"credgate/internal/platform/metrics"
	"credgate/internal/trust"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

// defaultSize is the rendered image edge length in pixels.
const defaultSize = 256

// Renderer turns a URL into a scannable PNG image.
type Renderer interface {
	Render(url string, size int) ([]byte, error)
}

// Cache stores rendered images keyed by credential. Implementations signal a
// miss with found=false, never with an error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Payload is the JSON answer for a scancode request: the reference itself
// plus the image inlined as a data URI for direct embedding.
type Payload struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	URL          string              `json:"verification_url"`
	Image        string              `json:"qr_code"`
}

// Service renders and caches scancodes for verification references.
type Service struct {
	renderer Renderer
	origin   string
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache enables image caching with the given TTL. Safe because renders
// are deterministic; a stale entry is byte-identical to a fresh one.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs the scancode service. origin is the public base URL
// encoded into every image.
func NewService(renderer Renderer, origin string, opts ...Option) *Service {
	svc := &Service{
		renderer: renderer,
		origin:   origin,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// Image returns the PNG scancode for a credential's verification reference.
func (s *Service) Image(ctx context.Context, id domain.CredentialID) ([]byte, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, cacheKey(id))
		if err != nil {
			s.logger.WarnContext(ctx, "scancode cache read failed", "error", err)
		} else if found {
			if s.metrics != nil {
				s.metrics.ScancodeCacheHits.Inc()
			}
			return cached, nil
		}
	}

	ref := trust.VerificationReference(s.origin, id)
	png, err := s.renderer.Render(ref.URL, defaultSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scancode render failed")
	}
	if s.metrics != nil {
		s.metrics.ScancodesRendered.Inc()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(id), png, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "scancode cache write failed", "error", err)
		}
	}
	return png, nil
}

// Embed returns the reference together with the image as a data URI.
func (s *Service) Embed(ctx context.Context, id domain.CredentialID) (*Payload, error) {
	png, err := s.Image(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := trust.VerificationReference(s.origin, id)
	return &Payload{
		CredentialID: id,
		URL:          ref.URL,
		Image:        "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

func cacheKey(id domain.CredentialID) string {
	return "scancode:" + id.String()
}
