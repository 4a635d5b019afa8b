package geocode

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/serjvanilla/go-overpass"
)

// DefaultOverpassURL is the main public Overpass API interpreter.
const DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

const providerOverpass = "overpass"

// Overpass looks up named OSM place nodes inside a country area. Only the
// first comma-separated part of the query is used as the place name.
type Overpass struct {
	client  *overpass.Client
	country string
}

// NewOverpass creates an Overpass provider. country is an ISO 3166-1
// alpha-2 code; empty means "SK".
func NewOverpass(endpoint string, httpClient *http.Client, country string) *Overpass {
	if endpoint == "" {
		endpoint = DefaultOverpassURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if country == "" {
		country = "SK"
	}
	client := overpass.NewWithSettings(endpoint, 1, httpClient)
	return &Overpass{client: &client, country: strings.ToUpper(country)}
}

// Name returns the provider name.
func (o *Overpass) Name() string { return providerOverpass }

// Lookup implements Client.
func (o *Overpass) Lookup(ctx context.Context, query string) Result {
	name := placeName(query)
	if name == "" {
		return Miss(providerOverpass)
	}

	type outcome struct {
		res overpass.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := o.client.Query(placeQuery(o.country, name))
		done <- outcome{res: res, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		return Fail(providerOverpass, eris.Wrap(ctx.Err(), "geocode: overpass query"))
	case out = <-done:
	}
	if out.err != nil {
		return Fail(providerOverpass, eris.Wrap(out.err, "geocode: overpass query"))
	}

	node := firstNode(out.res)
	if node == nil {
		return Miss(providerOverpass)
	}
	if !ValidCoordinate(node.Lat, node.Lon) {
		return Fail(providerOverpass, eris.Errorf("geocode: overpass coordinate out of range %f,%f", node.Lat, node.Lon))
	}
	return Match(providerOverpass, node.Lat, node.Lon, node.Tags["name"])
}

// firstNode returns the node with the lowest ID so repeated lookups agree.
func firstNode(res overpass.Result) *overpass.Node {
	var best *overpass.Node
	for _, n := range res.Nodes {
		if n == nil {
			continue
		}
		if best == nil || n.ID < best.ID {
			best = n
		}
	}
	return best
}

func placeName(query string) string {
	name, _, _ := strings.Cut(query, ",")
	return strings.TrimSpace(name)
}

func placeQuery(country, name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return fmt.Sprintf(`[out:json][timeout:25];
area["ISO3166-1"="%s"][admin_level=2]->.country;
node["place"]["name"="%s"](area.country);
out body 5;`, country, escaped)
}
