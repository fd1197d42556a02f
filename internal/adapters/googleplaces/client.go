// Package googleplaces implements ports.PlacesProvider on the Google Places
// web service (nearby search + place details).
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/areainsight/internal/core/domain"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	// pageSize is the number of results Google returns per nearby-search page.
	pageSize = 20
)

// detailFields is the field mask requested from the details endpoint.
const detailFields = "name,place_id,types,rating,user_ratings_total,formatted_address,geometry," +
	"business_status,price_level,website,formatted_phone_number,opening_hours"

// Config configures a Client.
type Config struct {
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	PageDelay time.Duration
}

// Client is a Google Places PlacesProvider.
type Client struct {
	apiKey    string
	baseURL   string
	timeout   time.Duration
	pageDelay time.Duration
	http      *fasthttp.Client
}

// New creates a new Client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = 2 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		timeout:   cfg.Timeout,
		pageDelay: cfg.PageDelay,
		http: &fasthttp.Client{
			Name:                "areainsight",
			MaxConnsPerHost:     16,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location location `json:"location"`
}

type nearbyResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Geometry geometry `json:"geometry"`
}

type nearbyResponse struct {
	Status        string         `json:"status"`
	ErrorMessage  string         `json:"error_message"`
	Results       []nearbyResult `json:"results"`
	NextPageToken string         `json:"next_page_token"`
}

type detailsResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
	BusinessStatus   string   `json:"business_status"`
	PriceLevel       *int     `json:"price_level"`
	Website          string   `json:"website"`
	Phone            string   `json:"formatted_phone_number"`
	OpeningHours     *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type detailsResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Result       detailsResult `json:"result"`
}

// SearchNearby queries the circle enclosing region for places matching term
// and keeps those inside the box.
func (c *Client) SearchNearby(ctx context.Context, region domain.Region, term string, limit int) ([]domain.PlaceSummary, error) {
	if limit <= 0 {
		limit = pageSize
	}
	center := region.Center()
	radius := region.RadiusMeters()
	if radius < 1 {
		radius = 1
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", center.Lat, center.Lon))
	params.Set("radius", strconv.FormatFloat(radius, 'f', 0, 64))
	params.Set("type", term)
	params.Set("key", c.apiKey)

	var out []domain.PlaceSummary
	for {
		var resp nearbyResponse
		if err := c.get(ctx, "/nearbysearch/json", params, &resp); err != nil {
			return nil, err
		}
		switch resp.Status {
		case "OK":
		case "ZERO_RESULTS":
			return out, nil
		default:
			return nil, statusError("nearbysearch", resp.Status, resp.ErrorMessage)
		}

		for _, r := range resp.Results {
			p := domain.GeoPoint{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng}
			if !region.Contains(p) {
				continue
			}
			out = append(out, domain.PlaceSummary{ID: r.PlaceID, Name: r.Name, Types: r.Types, Location: p})
			if len(out) >= limit {
				return out, nil
			}
		}

		if resp.NextPageToken == "" || limit <= pageSize {
			return out, nil
		}
		// A page token only becomes valid a short while after it is issued.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pageDelay):
		}
		params = url.Values{}
		params.Set("pagetoken", resp.NextPageToken)
		params.Set("key", c.apiKey)
	}
}

// GetDetails fetches the full record for a place id.
func (c *Client) GetDetails(ctx context.Context, id string) (*domain.PlaceRecord, error) {
	params := url.Values{}
	params.Set("place_id", id)
	params.Set("fields", detailFields)
	params.Set("key", c.apiKey)

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, statusError("details", resp.Status, resp.ErrorMessage)
	}

	r := resp.Result
	rec := &domain.PlaceRecord{
		ID:          r.PlaceID,
		Name:        r.Name,
		Types:       r.Types,
		Rating:      r.Rating,
		RatingCount: r.UserRatingsTotal,
		Location:    domain.GeoPoint{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
		PriceLevel:  r.PriceLevel,
		Address:     r.FormattedAddress,
		Status:      r.BusinessStatus,
		Website:     r.Website,
		Phone:       r.Phone,
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if r.OpeningHours != nil {
		rec.OpeningHours = r.OpeningHours.WeekdayText
	}
	return rec, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path + "?" + params.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, path, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return fmt.Errorf("%w: %s: http status %d", domain.ErrProviderUnavailable, path, code)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s: decode: %v", domain.ErrProviderUnavailable, path, err)
	}
	return nil
}

func statusError(op, status, msg string) error {
	if msg != "" {
		return fmt.Errorf("%w: %s status %s: %s", domain.ErrProviderUnavailable, op, status, msg)
	}
	return fmt.Errorf("%w: %s status %s", domain.ErrProviderUnavailable, op, status)
}
