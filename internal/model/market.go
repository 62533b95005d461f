package model

import (
	"fmt"
	"strings"
)

// Commodity identifies a supported precious metal.
type Commodity string

const (
	Gold   Commodity = "gold"
	Silver Commodity = "silver"
)

// Commodities lists every supported commodity in display order.
var Commodities = []Commodity{Gold, Silver}

// ParseCommodity accepts a case-insensitive commodity name.
func ParseCommodity(s string) (Commodity, error) {
	switch Commodity(strings.ToLower(strings.TrimSpace(s))) {
	case Gold:
		return Gold, nil
	case Silver:
		return Silver, nil
	}
	return "", fmt.Errorf("invalid commodity %q: use 'gold' or 'silver'", s)
}

// Instrument returns the spot instrument quoted against USD.
func (c Commodity) Instrument() string {
	switch c {
	case Gold:
		return "XAU/USD"
	case Silver:
		return "XAG/USD"
	}
	return ""
}

// Title returns the display name, e.g. "Gold".
func (c Commodity) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// PriceLabel is the column label used for exported price data.
func (c Commodity) PriceLabel() string {
	return c.Title() + "_USD_Price"
}
