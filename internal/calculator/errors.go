package calculator

import (
	"errors"
	"fmt"
	"time"

	"CommodityTracker/internal/model"
)

var (
	// ErrEmptyRange means no entries fell inside the requested window.
	ErrEmptyRange = errors.New("no data available in the specified date range")
	// ErrInvalidPrice means the baseline price is absent or not positive.
	ErrInvalidPrice = errors.New("invalid baseline price")
	// ErrInvalidWindow means a rolling window outside [1, len(series)].
	ErrInvalidWindow = errors.New("invalid rolling window")
	// ErrInvalidSchedule means a non-positive interval or contribution.
	ErrInvalidSchedule = errors.New("invalid contribution schedule")
	// ErrNoContributions means no scheduled day matched a price.
	ErrNoContributions = errors.New("no scheduled contribution matched a price")
	// ErrInvalidAmount means a non-positive investment amount.
	ErrInvalidAmount = errors.New("investment amount must be positive")
	// ErrInvalidTopN means a non-positive ranking size.
	ErrInvalidTopN = errors.New("top-n must be positive")
)

func rangeError(err error, symbol string, start, end time.Time) error {
	return fmt.Errorf("%w: %s from %s to %s", err, symbol,
		start.Format(model.DateFormat), end.Format(model.DateFormat))
}
