package indicator

import (
	"context"
	"fmt"
	"time"

	"CommodityTracker/internal/model"
)

// Source fetches one external indicator series by id.
type Source interface {
	FetchSeries(ctx context.Context, id string, start, end time.Time) (model.PriceSeries, error)
}

// DefaultSeries is the indicator set used for correlation when none is
// configured: inflation, rates, dollar, money supply, labour, risk and oil.
var DefaultSeries = []string{
	"CPIAUCSL",
	"DGS10",
	"DFII10",
	"T10YIE",
	"FEDFUNDS",
	"DTWEXBGS",
	"M2SL",
	"UNRATE",
	"VIXCLS",
	"DCOILWTICO",
	"SP500",
	"GDP",
}

// APIError represents a non-200 response from FRED.
type APIError struct {
	StatusCode int
	Message    string
	SeriesID   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FRED API error: %s (status: %d, series: %s)", e.Message, e.StatusCode, e.SeriesID)
}

// observationsResponse is the JSON body of series/observations.
type observationsResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}
