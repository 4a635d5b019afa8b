package config

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/zsj-atlas/zsj-cli/internal/ratelimit"
)

// Validate checks the settings the given command depends on. Mode is one
// of "batch", "serve", "validate" or "runs".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "batch":
		if c.Offset.Radius <= 0 {
			errs = append(errs, "offset.radius must be > 0")
		}
		if c.Offset.Precision < 0 || c.Offset.Precision > 10 {
			errs = append(errs, "offset.precision must be between 0 and 10")
		}
		if c.Geocode.Enabled {
			if c.Geocode.MinInterval < ratelimit.DefaultInterval {
				errs = append(errs, "geocode.min_interval must be >= "+ratelimit.DefaultInterval.String())
			}
			if len(c.Geocode.Providers) == 0 {
				errs = append(errs, "geocode.providers is required when geocoding")
			}
			if c.Geocode.UserAgent == "" {
				errs = append(errs, "geocode.user_agent is required when geocoding")
			}
		}
		if c.Output == "" {
			errs = append(errs, "output is required")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Output == "" {
			errs = append(errs, "output is required")
		}
	case "validate":
	case "runs":
		if c.Store.Driver == "none" || c.Store.Driver == "" {
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "", "none", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for postgres")
		}
	default:
		errs = append(errs, "store.driver must be sqlite, postgres or none")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
