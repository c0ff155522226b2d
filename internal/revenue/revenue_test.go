package revenue_test

import (
	"testing"

	"github.com/UnknownOlympus/aeolus/internal/revenue"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected decimal.NullDecimal
		workers  int
		want     string
	}{
		{"even three ways", amount(9_000_000), 3, "3000000"},
		{"two workers", amount(4_000_000), 2, "2000000"},
		{"null revenue", decimal.NullDecimal{}, 3, "0"},
		{"no workers", amount(1_000), 0, "0"},
		{"single worker", amount(750_000), 1, "750000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := revenue.Split(tt.expected, tt.workers)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestSplit_SumMatchesWhenEven(t *testing.T) {
	t.Parallel()

	expected := amount(9_000_000)
	share := revenue.Split(expected, 3)

	assert.True(t, share.Mul(decimal.NewFromInt(3)).Equal(expected.Decimal))
}

func TestAllocate(t *testing.T) {
	t.Parallel()

	t.Run("even split", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(amount(4_000_000), "VND", []string{"B", "A"})

		require.Len(t, shares, 2)
		assert.True(t, shares["A"].Equal(decimal.NewFromInt(2_000_000)))
		assert.True(t, shares["B"].Equal(decimal.NewFromInt(2_000_000)))
	})

	t.Run("remainder goes to first ids", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(amount(100), "VND", []string{"c", "a", "b"})

		assert.True(t, shares["a"].Equal(decimal.NewFromInt(34)))
		assert.True(t, shares["b"].Equal(decimal.NewFromInt(33)))
		assert.True(t, shares["c"].Equal(decimal.NewFromInt(33)))
	})

	t.Run("cents", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(decimal.NewNullDecimal(decimal.RequireFromString("10.00")), "USD",
			[]string{"x", "y", "z"})

		total := decimal.Zero
		for _, s := range shares {
			total = total.Add(s)
		}
		assert.True(t, total.Equal(decimal.NewFromInt(10)))
		assert.True(t, shares["x"].Equal(decimal.RequireFromString("3.34")))
		assert.True(t, shares["z"].Equal(decimal.RequireFromString("3.33")))
	})

	t.Run("stored scale does not widen the currency unit", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(decimal.NewNullDecimal(decimal.RequireFromString("100000.0000")), "VND",
			[]string{"c", "a", "b"})

		assert.True(t, shares["a"].Equal(decimal.NewFromInt(33334)), shares["a"].String())
		assert.True(t, shares["b"].Equal(decimal.NewFromInt(33333)), shares["b"].String())
		assert.True(t, shares["c"].Equal(decimal.NewFromInt(33333)), shares["c"].String())
	})

	t.Run("significant digits below the unit are kept", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(decimal.NewNullDecimal(decimal.RequireFromString("100.5000")), "VND",
			[]string{"a", "b"})

		assert.True(t, shares["a"].Equal(decimal.RequireFromString("50.3")), shares["a"].String())
		assert.True(t, shares["b"].Equal(decimal.RequireFromString("50.2")), shares["b"].String())
	})

	t.Run("duplicates and blanks ignored", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(amount(90), "VND", []string{"a", "a", "", "b", "c"})

		require.Len(t, shares, 3)
		assert.True(t, shares["a"].Equal(decimal.NewFromInt(30)))
	})

	t.Run("null revenue", func(t *testing.T) {
		t.Parallel()
		shares := revenue.Allocate(decimal.NullDecimal{}, "VND", []string{"a", "b"})

		assert.True(t, shares["a"].IsZero())
		assert.True(t, shares["b"].IsZero())
	})

	t.Run("no assignees", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, revenue.Allocate(amount(90), "VND", nil))
	})
}

func TestWorkerCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, revenue.WorkerCount([]string{"A", "B", "A"}))
	assert.Equal(t, 0, revenue.WorkerCount([]string{""}))
}
