package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBar(ts int64, o, h, l, c float64) Bar {
	return Bar{
		Timestamp: ts,
		Open:      decimal.NewFromFloat(o),
		High:      decimal.NewFromFloat(h),
		Low:       decimal.NewFromFloat(l),
		Close:     decimal.NewFromFloat(c),
		Volume:    decimal.NewFromInt(1),
	}
}

func TestValidateBars(t *testing.T) {
	good := []Bar{
		testBar(1000, 100, 101, 99, 100.5),
		testBar(2000, 100.5, 102, 100, 101),
	}
	require.NoError(t, ValidateBars(good))

	t.Run("empty", func(t *testing.T) {
		err := ValidateBars(nil)
		require.Error(t, err)
		var die *DataIntegrityError
		require.ErrorAs(t, err, &die)
		assert.Equal(t, 0, die.Index)
	})

	t.Run("non-positive price", func(t *testing.T) {
		bars := []Bar{testBar(1000, 100, 101, 99, 100), testBar(2000, 0, 101, 99, 100)}
		err := ValidateBars(bars)
		var die *DataIntegrityError
		require.ErrorAs(t, err, &die)
		assert.Equal(t, 1, die.Index)
	})

	t.Run("high below low", func(t *testing.T) {
		bars := []Bar{testBar(1000, 100, 98, 99, 100)}
		require.Error(t, ValidateBars(bars))
	})

	t.Run("duplicate timestamp", func(t *testing.T) {
		bars := []Bar{testBar(1000, 100, 101, 99, 100), testBar(1000, 100, 101, 99, 100)}
		require.Error(t, ValidateBars(bars))
	})

	t.Run("out of order", func(t *testing.T) {
		bars := []Bar{testBar(2000, 100, 101, 99, 100), testBar(1000, 100, 101, 99, 100)}
		require.Error(t, ValidateBars(bars))
	})
}

func TestBarTime(t *testing.T) {
	b := testBar(1_700_000_000_000, 1, 1, 1, 1)
	assert.Equal(t, int64(1_700_000_000), b.Time().Unix())
	assert.Equal(t, "UTC", b.Time().Location().String())
}
