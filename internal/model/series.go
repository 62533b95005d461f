package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DateFormat is the canonical day format used for storage and display.
const DateFormat = "2006-01-02"

// Point is one dated observation. Valid is false for a gap, which keeps
// an absent value distinguishable from a zero value.
type Point struct {
	Date  time.Time
	Value float64
	Valid bool
}

// At returns a valid point for the given day.
func At(date time.Time, value float64) Point {
	return Point{Date: Day(date), Value: value, Valid: true}
}

// Gap returns an absent point for the given day.
func Gap(date time.Time) Point {
	return Point{Date: Day(date)}
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current day at midnight UTC.
func Today() time.Time {
	return Day(time.Now())
}

// Date builds a day from its components.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// PriceSeries is an immutable, day-indexed sequence of observations for one
// instrument. Days are unique and strictly ascending.
type PriceSeries struct {
	Symbol string
	points []Point
}

// NewPriceSeries sorts points by day. When several points share a day the
// one appearing last in the input wins. NaN and infinite values become gaps.
func NewPriceSeries(symbol string, points []Point) PriceSeries {
	byDay := make(map[time.Time]int, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		p.Date = Day(p.Date)
		if p.Valid && !Finite(p.Value) {
			p = Gap(p.Date)
		}
		if i, ok := byDay[p.Date]; ok {
			out[i] = p
			continue
		}
		byDay[p.Date] = len(out)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return PriceSeries{Symbol: symbol, points: out}
}

// Len returns the number of entries, gaps included.
func (s PriceSeries) Len() int { return len(s.points) }

// Empty reports whether the series has no entries.
func (s PriceSeries) Empty() bool { return len(s.points) == 0 }

// At returns the i-th entry.
func (s PriceSeries) At(i int) Point { return s.points[i] }

// Points returns a copy of all entries.
func (s PriceSeries) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Valid returns a copy of the non-gap entries.
func (s PriceSeries) Valid() []Point {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if p.Valid {
			out = append(out, p)
		}
	}
	return out
}

// First returns the earliest entry; ok is false for an empty series.
func (s PriceSeries) First() (p Point, ok bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[0], true
}

// Last returns the latest entry; ok is false for an empty series.
func (s PriceSeries) Last() (p Point, ok bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// LastValid returns the latest non-gap entry.
func (s PriceSeries) LastValid() (p Point, ok bool) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if s.points[i].Valid {
			return s.points[i], true
		}
	}
	return Point{}, false
}

// Index returns the position of the entry for day, or -1.
func (s PriceSeries) Index(day time.Time) int {
	day = Day(day)
	i := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(day) })
	if i < len(s.points) && s.points[i].Date.Equal(day) {
		return i
	}
	return -1
}

// Lookup returns the entry for day, if present.
func (s PriceSeries) Lookup(day time.Time) (Point, bool) {
	i := s.Index(day)
	if i < 0 {
		return Point{}, false
	}
	return s.points[i], true
}

// Span returns the first and last day of the series.
func (s PriceSeries) Span() (start, end time.Time) {
	if len(s.points) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.points[0].Date, s.points[len(s.points)-1].Date
}

// Slice returns a new series holding entries [i, j).
func (s PriceSeries) Slice(i, j int) PriceSeries {
	out := make([]Point, j-i)
	copy(out, s.points[i:j])
	return PriceSeries{Symbol: s.Symbol, points: out}
}

// ParseDay reads a day written as yyyy-mm-dd or dd-mm-yyyy.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateFormat, "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use yyyy-mm-dd or dd-mm-yyyy", s)
}
