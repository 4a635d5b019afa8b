package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Provider is a named geocoding backend.
type Provider interface {
	Client
	Name() string
}

// Limiter spaces outbound requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Cascade tries providers in order until one matches.
type Cascade struct {
	providers []Provider
	limiter   Limiter
}

// NewCascade creates a Cascade over providers.
func NewCascade(providers ...Provider) *Cascade {
	return &Cascade{providers: providers}
}

// NewPacedCascade creates a Cascade that waits on limiter before every
// provider after the first. The caller is expected to wait on the same
// limiter before calling Lookup.
func NewPacedCascade(limiter Limiter, providers ...Provider) *Cascade {
	return &Cascade{providers: providers, limiter: limiter}
}

// Lookup implements Client. The first Matched result wins. When no
// provider matches, the result is NoMatch if any provider answered
// cleanly, otherwise Failed with the last error.
func (c *Cascade) Lookup(ctx context.Context, query string) Result {
	if len(c.providers) == 0 {
		return Fail("cascade", eris.New("geocode: no providers configured"))
	}

	var lastErr error
	missed := false
	for i, p := range c.providers {
		if i > 0 && c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Fail("cascade", eris.Wrap(err, "geocode: cascade wait"))
			}
		}
		res := p.Lookup(ctx, query)
		switch res.Kind {
		case Matched:
			return res
		case NoMatch:
			missed = true
		case Failed:
			lastErr = res.Err
			zap.L().Debug("cascade: provider error, trying next",
				zap.String("provider", p.Name()),
				zap.Error(res.Err),
			)
		}
		if ctx.Err() != nil {
			return Fail("cascade", eris.Wrap(ctx.Err(), "geocode: cascade"))
		}
	}

	if missed {
		return Miss("cascade")
	}
	return Fail("cascade", lastErr)
}

// Config selects and configures providers for New.
type Config struct {
	Providers    []string
	NominatimURL string
	OverpassURL  string
	UserAgent    string
	Timeout      time.Duration
	CountryCodes string
	// Limiter paces fallback providers inside a Cascade. Nil disables pacing.
	Limiter Limiter
}

// New builds the configured provider chain. A single provider is returned
// directly; several are wrapped in a Cascade.
func New(cfg Config) (Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}

	names := cfg.Providers
	if len(names) == 0 {
		names = []string{providerNominatim}
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case providerNominatim:
			providers = append(providers, NewNominatim(
				WithBaseURL(cfg.NominatimURL),
				WithHTTPClient(hc),
				WithUserAgent(cfg.UserAgent),
				WithCountryCodes(cfg.CountryCodes),
			))
		case providerOverpass:
			providers = append(providers, NewOverpass(cfg.OverpassURL, hc, firstCountry(cfg.CountryCodes)))
		default:
			return nil, eris.Errorf("geocode: unknown provider %q", name)
		}
	}

	if len(providers) == 1 {
		return providers[0], nil
	}
	return NewPacedCascade(cfg.Limiter, providers...), nil
}

func firstCountry(codes string) string {
	first, _, _ := strings.Cut(codes, ",")
	return strings.TrimSpace(first)
}
