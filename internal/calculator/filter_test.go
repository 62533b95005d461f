package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CommodityTracker/internal/model"
)

func TestFilter_InclusiveBounds(t *testing.T) {
	s := series("XAU/USD", jan1, 1, 2, 3, 4, 5)

	got, err := Filter(s, jan1.AddDate(0, 0, 1), jan1.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, 2.0, got.At(0).Value)
	assert.Equal(t, 4.0, got.At(2).Value)
	assert.Equal(t, 5, s.Len(), "input must not change")
}

func TestFilter_KeepsGaps(t *testing.T) {
	s := model.NewPriceSeries("XAU/USD", []model.Point{
		model.At(jan1, 1),
		model.Gap(jan1.AddDate(0, 0, 1)),
		model.At(jan1.AddDate(0, 0, 2), 3),
	})
	got, err := Filter(s, jan1, jan1.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Equal(t, 3, got.Len())
	assert.False(t, got.At(1).Valid)
}

func TestFilter_EmptyRange(t *testing.T) {
	_, err := Filter(threeDay(), model.Date(2021, time.January, 1), model.Date(2021, time.February, 1))
	require.ErrorIs(t, err, ErrEmptyRange)
	assert.Contains(t, err.Error(), "XAU/USD")

	_, err = Filter(model.PriceSeries{Symbol: "XAG/USD"}, jan1, jan1)
	require.ErrorIs(t, err, ErrEmptyRange)
}

func TestFilter_StartAfterEnd(t *testing.T) {
	_, err := Filter(threeDay(), jan1.AddDate(0, 0, 2), jan1)
	require.ErrorIs(t, err, ErrEmptyRange)
}
