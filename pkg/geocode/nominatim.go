package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies requests as the Nominatim usage policy requires.
	DefaultUserAgent = "zsj-cli/1.0"
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 10 * time.Second

	providerNominatim = "nominatim"
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim geocodes through the Nominatim search API.
type Nominatim struct {
	baseURL      string
	userAgent    string
	countryCodes string
	language     string
	httpClient   *http.Client
}

// NominatimOption configures a Nominatim provider.
type NominatimOption func(*Nominatim)

// WithBaseURL overrides the Nominatim endpoint.
func WithBaseURL(u string) NominatimOption {
	return func(n *Nominatim) {
		if u != "" {
			n.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) NominatimOption {
	return func(n *Nominatim) {
		if hc != nil {
			n.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) NominatimOption {
	return func(n *Nominatim) {
		if ua != "" {
			n.userAgent = ua
		}
	}
}

// WithCountryCodes restricts results to the given ISO 3166-1 codes
// (comma separated). An empty value removes the restriction.
func WithCountryCodes(codes string) NominatimOption {
	return func(n *Nominatim) {
		n.countryCodes = codes
	}
}

// NewNominatim creates a Nominatim provider.
func NewNominatim(opts ...NominatimOption) *Nominatim {
	n := &Nominatim{
		baseURL:      DefaultNominatimURL,
		userAgent:    DefaultUserAgent,
		countryCodes: "sk",
		language:     "sk",
		httpClient:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the provider name.
func (n *Nominatim) Name() string { return providerNominatim }

// Lookup implements Client.
func (n *Nominatim) Lookup(ctx context.Context, query string) Result {
	if strings.TrimSpace(query) == "" {
		return Miss(providerNominatim)
	}

	params := url.Values{
		"q":               {query},
		"format":          {"jsonv2"},
		"limit":           {"1"},
		"accept-language": {n.language},
	}
	if n.countryCodes != "" {
		params.Set("countrycodes", n.countryCodes)
	}

	reqURL := n.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Fail(providerNominatim, eris.Wrap(err, "geocode: nominatim build request"))
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Fail(providerNominatim, eris.Wrap(err, "geocode: nominatim request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return Fail(providerNominatim, eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail(providerNominatim, eris.Wrap(err, "geocode: nominatim read body"))
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return Fail(providerNominatim, eris.Wrap(err, "geocode: nominatim parse response"))
	}
	if len(places) == 0 {
		return Miss(providerNominatim)
	}

	place := places[0]
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(place.Lat), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(place.Lon), 64)
	if latErr != nil || lonErr != nil {
		return Fail(providerNominatim, eris.Errorf("geocode: nominatim unparseable coordinate %q,%q", place.Lat, place.Lon))
	}
	if !ValidCoordinate(lat, lon) {
		return Fail(providerNominatim, eris.Errorf("geocode: nominatim coordinate out of range %f,%f", lat, lon))
	}

	return Match(providerNominatim, lat, lon, place.DisplayName)
}
