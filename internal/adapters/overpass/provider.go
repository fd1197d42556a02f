// Package overpass implements ports.PlacesProvider on OpenStreetMap data via
// the Overpass API. OSM has no ratings or price levels, so those fields are
// always absent.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/serjvanilla/go-overpass"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

// DefaultEndpoint is the public Overpass instance.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// tagFilter selects OSM elements for one search term.
type tagFilter struct {
	key   string
	value string // empty matches any value
}

var termFilters = map[string]tagFilter{
	"restaurant":         {"amenity", "restaurant|fast_food"},
	"store":              {"shop", ""},
	"cafe":               {"amenity", "cafe"},
	"bank":               {"amenity", "bank|atm"},
	"hospital":           {"amenity", "hospital|clinic|doctors"},
	"school":             {"amenity", "school|university|college"},
	"gas_station":        {"amenity", "fuel"},
	"pharmacy":           {"amenity", "pharmacy"},
	"supermarket":        {"shop", "supermarket|convenience"},
	"shopping_mall":      {"shop", "mall|department_store"},
	"gym":                {"leisure", "fitness_centre|sports_centre"},
	"beauty_salon":       {"shop", "beauty|hairdresser"},
	"real_estate_agency": {"office", "estate_agent"},
	"lawyer":             {"office", "lawyer"},
	"accounting":         {"office", "accountant|tax_advisor"},
	"electronics_store":  {"shop", "electronics|computer|mobile_phone"},
	"clothing_store":     {"shop", "clothes|shoes"},
	"bakery":             {"shop", "bakery"},
}

// osmTypes translates OSM tag values into the place-type vocabulary the
// category classifier understands.
var osmTypes = map[string]string{
	"amenity=restaurant":     "restaurant",
	"amenity=fast_food":      "meal_takeaway",
	"amenity=cafe":           "cafe",
	"amenity=bank":           "bank",
	"amenity=atm":            "atm",
	"amenity=hospital":       "hospital",
	"amenity=clinic":         "doctor",
	"amenity=doctors":        "doctor",
	"amenity=pharmacy":       "pharmacy",
	"amenity=school":         "school",
	"amenity=university":     "university",
	"amenity=college":        "university",
	"amenity=fuel":           "gas_station",
	"shop=car_repair":        "car_repair",
	"shop=supermarket":       "supermarket",
	"shop=convenience":       "supermarket",
	"shop=mall":              "shopping_mall",
	"shop=department_store":  "shopping_mall",
	"leisure=fitness_centre": "gym",
	"leisure=sports_centre":  "gym",
	"shop=beauty":            "beauty_salon",
	"shop=hairdresser":       "hair_care",
	"office=estate_agent":    "real_estate_agency",
	"office=lawyer":          "lawyer",
	"office=accountant":      "accounting",
	"office=tax_advisor":     "accounting",
	"shop=electronics":       "electronics_store",
	"shop=clothes":           "clothing_store",
	"shop=bakery":            "bakery",
}

// Querier runs an Overpass QL query. *overpass.Client satisfies it.
type Querier interface {
	Query(query string) (overpass.Result, error)
}

// Retention bounds how long a searched element waits for its GetDetails.
const Retention = 10 * time.Minute

// Provider is an OSM-backed PlacesProvider. Elements returned by
// SearchNearby are held until GetDetails has been called once per search
// that returned them, or until Retention passes.
type Provider struct {
	client  Querier
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingRecord
}

type pendingRecord struct {
	rec  domain.PlaceRecord
	refs int
	at   time.Time
}

// New creates a Provider talking to endpoint.
func New(endpoint string, timeout time.Duration) *Provider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	client := overpass.NewWithSettings(endpoint, 2, &http.Client{Timeout: timeout})
	return NewWithQuerier(&client, timeout)
}

// NewWithQuerier creates a Provider on an existing Querier.
func NewWithQuerier(q Querier, timeout time.Duration) *Provider {
	return &Provider{client: q, timeout: timeout, now: time.Now, pending: make(map[string]*pendingRecord)}
}

// SearchNearby returns OSM elements tagged for term inside region.
func (p *Provider) SearchNearby(ctx context.Context, region domain.Region, term string, limit int) ([]domain.PlaceSummary, error) {
	f, ok := termFilters[term]
	if !ok {
		return nil, fmt.Errorf("%w: no OSM mapping for %q", domain.ErrProviderUnavailable, term)
	}

	result, err := p.query(ctx, buildQuery(f, region.BBox(), int(p.timeout.Seconds())))
	if err != nil {
		return nil, err
	}

	records := toRecords(result, term)
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	out := make([]domain.PlaceSummary, 0, len(records))
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.expire(now)
	for _, rec := range records {
		if !region.Contains(rec.Location) {
			continue
		}
		if held, ok := p.pending[rec.ID]; ok {
			held.rec, held.at = rec, now
			held.refs++
		} else {
			p.pending[rec.ID] = &pendingRecord{rec: rec, refs: 1, at: now}
		}
		out = append(out, domain.PlaceSummary{ID: rec.ID, Name: rec.Name, Types: rec.Types, Location: rec.Location})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetDetails returns the record captured by an earlier SearchNearby. The
// search response already carries every tag, so no second query is made.
// The record is released once every search that returned it has been read.
func (p *Provider) GetDetails(ctx context.Context, id string) (*domain.PlaceRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	held, ok := p.pending[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown osm element %s", domain.ErrProviderUnavailable, id)
	}
	rec := held.rec
	if held.refs--; held.refs <= 0 {
		delete(p.pending, id)
	}
	return &rec, nil
}

// Pending returns the number of elements still held for GetDetails.
func (p *Provider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// expire drops elements older than Retention. Callers hold p.mu.
func (p *Provider) expire(now time.Time) {
	for id, held := range p.pending {
		if now.Sub(held.at) > Retention {
			delete(p.pending, id)
		}
	}
}

func (p *Provider) query(ctx context.Context, q string) (*overpass.Result, error) {
	type reply struct {
		res overpass.Result
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		res, err := p.client.Query(q)
		ch <- reply{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: overpass query failed: %v", domain.ErrProviderUnavailable, r.err)
		}
		return &r.res, nil
	}
}

func buildQuery(f tagFilter, bbox string, timeoutSec int) string {
	sel := fmt.Sprintf(`["%s"]`, f.key)
	if f.value != "" {
		sel = fmt.Sprintf(`["%s"~"^(%s)$"]`, f.key, f.value)
	}
	if timeoutSec <= 0 {
		timeoutSec = 25
	}
	return fmt.Sprintf(`[out:json][timeout:%d];
(
	node%s(%s);
	way%s(%s);
);
out body;
>;
out skel qt;`, timeoutSec, sel, bbox, sel, bbox)
}

func toRecords(result *overpass.Result, term string) []domain.PlaceRecord {
	var out []domain.PlaceRecord
	for _, n := range result.Nodes {
		if len(n.Tags) == 0 {
			continue // skeleton node of a way
		}
		out = append(out, record("node", n.ID, n.Tags, domain.GeoPoint{Lat: n.Lat, Lon: n.Lon}, term))
	}
	for _, w := range result.Ways {
		if len(w.Tags) == 0 {
			continue
		}
		out = append(out, record("way", w.ID, w.Tags, wayCenter(w), term))
	}
	return out
}

func wayCenter(w *overpass.Way) domain.GeoPoint {
	if w.Bounds != nil {
		return domain.GeoPoint{
			Lat: (w.Bounds.Min.Lat + w.Bounds.Max.Lat) / 2,
			Lon: (w.Bounds.Min.Lon + w.Bounds.Max.Lon) / 2,
		}
	}
	var lat, lon float64
	var n int
	for _, node := range w.Nodes {
		if node == nil {
			continue
		}
		lat += node.Lat
		lon += node.Lon
		n++
	}
	if n == 0 {
		return domain.GeoPoint{}
	}
	return domain.GeoPoint{Lat: lat / float64(n), Lon: lon / float64(n)}
}

func record(kind string, id int64, tags map[string]string, loc domain.GeoPoint, term string) domain.PlaceRecord {
	name := tags["name"]
	if name == "" {
		name = strings.ReplaceAll(term, "_", " ")
	}
	rec := domain.PlaceRecord{
		ID:       "osm:" + kind + ":" + strconv.FormatInt(id, 10),
		Name:     name,
		Types:    typesFor(tags, term),
		Location: loc,
		Address:  address(tags),
		Website:  tags["website"],
		Phone:    tags["phone"],
		Status:   "OPERATIONAL",
	}
	if oh := tags["opening_hours"]; oh != "" {
		rec.OpeningHours = []string{oh}
	}
	return rec
}

// typesFor lists the element's recognised tag types, then the search term.
func typesFor(tags map[string]string, term string) []string {
	var types []string
	seen := map[string]bool{}
	for _, key := range []string{"amenity", "shop", "leisure", "office"} {
		v, ok := tags[key]
		if !ok {
			continue
		}
		if t, ok := osmTypes[key+"="+v]; ok && !seen[t] {
			types = append(types, t)
			seen[t] = true
		}
		if key == "shop" && !seen["store"] {
			types = append(types, "store")
			seen["store"] = true
		}
	}
	if !seen[term] {
		types = append(types, term)
	}
	return types
}

func address(tags map[string]string) string {
	parts := []string{}
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	if street != "" {
		parts = append(parts, street)
	}
	if city := tags["addr:city"]; city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}
