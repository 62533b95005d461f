package model

// CorrelationEntry is the rank correlation of a commodity against one
// external series. Coefficient lies in [-1, 1].
type CorrelationEntry struct {
	SeriesID     string
	Coefficient  float64
	Observations int
}

// SkippedIndicator records why an indicator did not produce a coefficient.
type SkippedIndicator struct {
	SeriesID string
	Reason   string
}

// Ranking is the outcome of correlating one commodity against many series.
type Ranking struct {
	TopIncreasing []CorrelationEntry
	TopDecreasing []CorrelationEntry
	Skipped       []SkippedIndicator
}

// RollingStats holds trailing-window statistics parallel to a series.
type RollingStats struct {
	Window         int
	Mean           []Point
	StdDev         []Point
	DailyReturnPct []Point
}

// Comparison is a pair of series rebased to 100 on their first common day.
type Comparison struct {
	SymbolA string
	SymbolB string
	A       []Point
	B       []Point
	ReturnA float64 // percent, from raw values
	ReturnB float64
}

// Heatmap holds the mean daily return (percent) per calendar month.
type Heatmap struct {
	Years []int
	Cells map[int][12]Point // year -> month index (0 = January)
}
