package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CommodityTracker/internal/calculator"
	"CommodityTracker/internal/model"
)

var day0 = model.Date(2024, time.January, 2)

func TestFXEmpireFetcher_Decode(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"instrument":  r.URL.Query().Get("instrument"),
			"granularity": r.URL.Query().Get("granularity"),
			"from":        r.URL.Query().Get("from"),
			"count":       r.URL.Query().Get("count"),
		}
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[
			{"Date":"2024-01-02T00:00:00.000Z","Open":2060,"Close":2064.5},
			{"Date":"2024-01-03T00:00:00.000Z","Close":null},
			{"Date":"not a date","Close":2000},
			{"Date":"2024-01-04","Close":"2040.25"}
		]`))
	}))
	defer srv.Close()

	f := NewFXEmpireFetcher("", time.Second)
	f.BaseURL = srv.URL
	points, err := f.FetchDaily(context.Background(), "XAU/USD", day0)
	require.NoError(t, err)

	assert.Equal(t, "XAU/USD", gotQuery["instrument"])
	assert.Equal(t, "D", gotQuery["granularity"])
	assert.Equal(t, "1704153600", gotQuery["from"])
	assert.Equal(t, "5000", gotQuery["count"])

	require.Len(t, points, 3, "undated record dropped")
	assert.Equal(t, model.At(day0, 2064.5), points[0])
	assert.Equal(t, model.Gap(day0.AddDate(0, 0, 1)), points[1])
	assert.Equal(t, model.At(day0.AddDate(0, 0, 2), 2040.25), points[2])
}

func TestCandlesToPoints_NonFiniteCloseIsGap(t *testing.T) {
	jan1 := model.Date(2020, time.January, 1)
	points := candlesToPoints([]fxCandle{
		{Date: "2020-01-01", Close: "NaN"},
		{Date: "2020-01-02", Close: "110"},
		{Date: "2020-01-03", Close: "Inf"},
		{Date: "2020-01-04", Close: "-Infinity"},
	})

	require.Len(t, points, 4)
	assert.Equal(t, model.Gap(jan1), points[0])
	assert.Equal(t, model.At(jan1.AddDate(0, 0, 1), 110), points[1])
	assert.Equal(t, model.Gap(jan1.AddDate(0, 0, 2)), points[2])
	assert.Equal(t, model.Gap(jan1.AddDate(0, 0, 3)), points[3])

	s := model.NewPriceSeries("XAU/USD", points)
	_, _, err := calculator.LumpSum(s, 100, jan1, jan1.AddDate(0, 0, 3))
	require.ErrorIs(t, err, calculator.ErrInvalidPrice)

	traj, sum, err := calculator.LumpSum(s, 100, jan1.AddDate(0, 0, 1), jan1.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.InDelta(t, 100, sum.FinalValue, 1e-9)
	assert.InDeltaSlice(t, []float64{100}, traj.Values(), 1e-9)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{2064.5, 2064.5, true},
		{" 2040.25 ", 2040.25, true},
		{7, 7, true},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-inf", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := toFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestFXEmpireFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewFXEmpireFetcher("", time.Second)
	f.BaseURL = srv.URL
	_, err := f.FetchDaily(context.Background(), "XAU/USD", day0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestYahooFetcher_Decode(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1704205800,1704292200,1704378600],
			"indicators":{"quote":[{"close":[2073.4,null,2042.3]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL + "/"
	points, err := f.FetchDaily(context.Background(), "XAU/USD", day0)
	require.NoError(t, err)
	assert.Equal(t, "/GC=F", path)

	require.Len(t, points, 3)
	assert.Equal(t, day0, points[0].Date)
	assert.InDelta(t, 2073.4, points[0].Value, 1e-9)
	assert.False(t, points[1].Valid)
	assert.True(t, points[2].Valid)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL + "/"
	_, err := f.FetchDaily(context.Background(), "XAG/USD", day0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestCollector_UsesPrimary(t *testing.T) {
	primary := &StaticFetcher{Points: map[string][]model.Point{
		"XAU/USD": {model.At(day0.AddDate(0, 0, 1), 2), model.At(day0, 1), model.At(day0, 3)},
	}}
	c := NewCollector(primary, nil)
	s, err := c.Collect(context.Background(), model.Gold, day0)
	require.NoError(t, err)
	assert.Equal(t, "XAU/USD", s.Symbol)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, 3.0, s.At(0).Value)
}

func TestCollector_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		primary Fetcher
	}{
		{"primary error", &StaticFetcher{Err: errors.New("boom")}},
		{"primary empty", &StaticFetcher{}},
	}
	fallback := &StaticFetcher{Points: map[string][]model.Point{
		"XAG/USD": SyntheticPoints(25, day0, 10),
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewCollector(tt.primary, fallback).Collect(context.Background(), model.Silver, day0)
			require.NoError(t, err)
			assert.Equal(t, 10, s.Len())
		})
	}
}

func TestCollector_AllSourcesFail(t *testing.T) {
	c := NewCollector(&StaticFetcher{Err: errors.New("down")}, &StaticFetcher{})
	_, err := c.Collect(context.Background(), model.Gold, day0)
	require.ErrorIs(t, err, ErrNoData)

	_, err = NewCollector(&StaticFetcher{}, nil).Collect(context.Background(), model.Commodity("copper"), day0)
	require.Error(t, err)
}

func TestStaticFetcher_FiltersFrom(t *testing.T) {
	f := &StaticFetcher{Points: map[string][]model.Point{"XAU/USD": SyntheticPoints(100, day0, 5)}}
	points, err := f.FetchDaily(context.Background(), "XAU/USD", day0.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:8118", 60*time.Second)
	assert.Equal(t, 60*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org", nil)
	require.NoError(t, err)
	proxy, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8118", proxy.Host)

	direct := NewHTTPClient("", 0)
	assert.Equal(t, 30*time.Second, direct.Timeout)
	assert.Nil(t, direct.Transport.(*http.Transport).Proxy)
}
