package googleplaces_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/areainsight/internal/adapters/googleplaces"
	"github.com/samirrijal/areainsight/internal/core/domain"
)

var region = domain.Region{North: 40.72, South: 40.70, East: -73.99, West: -74.01}

func newServer(t *testing.T, handler http.HandlerFunc) *googleplaces.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return googleplaces.New(googleplaces.Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		PageDelay: time.Millisecond,
	})
}

func TestSearchNearby(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "cafe", r.URL.Query().Get("type"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NotEmpty(t, r.URL.Query().Get("radius"))
		fmt.Fprint(w, `{"status":"OK","results":[
			{"place_id":"in","name":"Inside","types":["cafe","food"],"geometry":{"location":{"lat":40.71,"lng":-74.0}}},
			{"place_id":"out","name":"Outside","types":["cafe"],"geometry":{"location":{"lat":40.80,"lng":-74.0}}}
		]}`)
	})

	got, err := client.SearchNearby(context.Background(), region, "cafe", 20)
	require.NoError(t, err)
	require.Len(t, got, 1, "results outside the box are dropped")
	assert.Equal(t, domain.PlaceSummary{
		ID:       "in",
		Name:     "Inside",
		Types:    []string{"cafe", "food"},
		Location: domain.GeoPoint{Lat: 40.71, Lon: -74.0},
	}, got[0])
}

func TestSearchNearby_ZeroResults(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	})
	got, err := client.SearchNearby(context.Background(), region, "bank", 20)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchNearby_ErrorStatus(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OVER_QUERY_LIMIT","error_message":"slow down"}`)
	})
	_, err := client.SearchNearby(context.Background(), region, "bank", 20)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorContains(t, err, "slow down")
}

func TestSearchNearby_HTTPError(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.SearchNearby(context.Background(), region, "bank", 20)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestSearchNearby_MalformedBody(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":`)
	})
	_, err := client.SearchNearby(context.Background(), region, "bank", 20)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestSearchNearby_Paging(t *testing.T) {
	page := func(prefix string, n int, token string) string {
		body := `{"status":"OK","next_page_token":"` + token + `","results":[`
		for i := 0; i < n; i++ {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"place_id":"%s%d","name":"x","geometry":{"location":{"lat":40.71,"lng":-74.0}}}`, prefix, i)
		}
		return body + "]}"
	}
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pagetoken") == "next" {
			fmt.Fprint(w, page("b", 20, ""))
			return
		}
		fmt.Fprint(w, page("a", 20, "next"))
	})

	got, err := client.SearchNearby(context.Background(), region, "store", 30)
	require.NoError(t, err)
	assert.Len(t, got, 30)
	assert.Equal(t, "b9", got[29].ID)

	// at the default cap only the first page is read
	got, err = client.SearchNearby(context.Background(), region, "store", 20)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestGetDetails(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "user_ratings_total")
		fmt.Fprint(w, `{"status":"OK","result":{
			"place_id":"abc","name":"Joe's","types":["restaurant","food"],
			"rating":4.5,"user_ratings_total":120,"price_level":2,
			"formatted_address":"1 Main St","business_status":"OPERATIONAL",
			"website":"https://joes.example","formatted_phone_number":"(212) 555-0100",
			"geometry":{"location":{"lat":40.71,"lng":-74.0}},
			"opening_hours":{"weekday_text":["Monday: 9-5"]}
		}}`)
	})

	rec, err := client.GetDetails(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.ID)
	assert.Equal(t, "Joe's", rec.Name)
	require.NotNil(t, rec.Rating)
	assert.Equal(t, 4.5, *rec.Rating)
	require.NotNil(t, rec.RatingCount)
	assert.Equal(t, 120, *rec.RatingCount)
	require.NotNil(t, rec.PriceLevel)
	assert.Equal(t, 2, *rec.PriceLevel)
	assert.Equal(t, []string{"Monday: 9-5"}, rec.OpeningHours)
	assert.Empty(t, rec.Category, "classification is the caller's job")
}

func TestGetDetails_OptionalFieldsAbsent(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","result":{"name":"Bare","types":["store"]}}`)
	})
	rec, err := client.GetDetails(context.Background(), "bare")
	require.NoError(t, err)
	assert.Equal(t, "bare", rec.ID)
	assert.Nil(t, rec.Rating)
	assert.Nil(t, rec.RatingCount)
	assert.Nil(t, rec.PriceLevel)
}

func TestGetDetails_CancelledContext(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GetDetails(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
}
