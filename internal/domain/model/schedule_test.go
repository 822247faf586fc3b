package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobbykesh/lms/internal/domain/model"
	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeSchedule(t *testing.T) {
	t.Run("flat interest on a six month loan", func(t *testing.T) {
		total, installments, err := model.ComputeSchedule(
			decimal.NewFromInt(15000), decimal.NewFromInt(10),
			6, valueobject.FrequencyMonthly, date(2024, time.March, 15),
		)
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(16500).Equal(total), "total %s", total)
		require.Len(t, installments, 6)
		for _, inst := range installments {
			assert.True(t, decimal.NewFromInt(2750).Equal(inst.Amount), "amount %s", inst.Amount)
			assert.False(t, inst.Paid)
		}
		assert.Equal(t, date(2024, time.April, 15), installments[0].DueDate, "first due date is one period after start")
		assert.Equal(t, date(2024, time.September, 15), installments[5].DueDate)
	})

	t.Run("zero rate splits the principal evenly", func(t *testing.T) {
		total, installments, err := model.ComputeSchedule(
			decimal.NewFromInt(1000), decimal.Zero,
			4, valueobject.FrequencyWeekly, date(2024, time.June, 1),
		)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1000).Equal(total))
		require.Len(t, installments, 4)
		for _, inst := range installments {
			assert.True(t, decimal.NewFromInt(250).Equal(inst.Amount))
		}
	})

	t.Run("rounding remainder lands in the final installment", func(t *testing.T) {
		// 100 / 3 = 33.33 (rounded); the last installment makes the sum exact.
		total, installments, err := model.ComputeSchedule(
			decimal.NewFromInt(100), decimal.Zero,
			3, valueobject.FrequencyDaily, date(2024, time.June, 1),
		)
		require.NoError(t, err)
		require.Len(t, installments, 3)

		assert.True(t, decimal.RequireFromString("33.33").Equal(installments[0].Amount))
		assert.True(t, decimal.RequireFromString("33.33").Equal(installments[1].Amount))
		assert.True(t, decimal.RequireFromString("33.34").Equal(installments[2].Amount))

		sum := decimal.Zero
		for _, inst := range installments {
			sum = sum.Add(inst.Amount)
		}
		assert.True(t, sum.Equal(total), "schedule must sum exactly to the total")
	})

	t.Run("installments always sum to the total", func(t *testing.T) {
		cases := []struct {
			principal string
			rate      string
			term      int
		}{
			{"500", "0", 1},
			{"1234.56", "7.5", 5},
			{"9999.99", "12", 7},
			{"20000", "15", 26},
			{"333.33", "33.3", 13},
		}
		for _, tc := range cases {
			total, installments, err := model.ComputeSchedule(
				decimal.RequireFromString(tc.principal), decimal.RequireFromString(tc.rate),
				tc.term, valueobject.FrequencyWeekly, date(2024, time.January, 1),
			)
			require.NoError(t, err)
			require.Len(t, installments, tc.term)

			sum := decimal.Zero
			for _, inst := range installments {
				sum = sum.Add(inst.Amount)
			}
			assert.True(t, sum.Equal(total), "P=%s R=%s T=%d: sum %s != total %s",
				tc.principal, tc.rate, tc.term, sum, total)
		}
	})

	t.Run("daily and weekly spacing", func(t *testing.T) {
		_, daily, err := model.ComputeSchedule(
			decimal.NewFromInt(100), decimal.Zero, 3,
			valueobject.FrequencyDaily, date(2024, time.June, 1),
		)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 2), daily[0].DueDate)
		assert.Equal(t, date(2024, time.June, 4), daily[2].DueDate)

		_, weekly, err := model.ComputeSchedule(
			decimal.NewFromInt(100), decimal.Zero, 2,
			valueobject.FrequencyWeekly, date(2024, time.June, 1),
		)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.June, 8), weekly[0].DueDate)
		assert.Equal(t, date(2024, time.June, 15), weekly[1].DueDate)
	})

	t.Run("monthly spacing clamps to month end", func(t *testing.T) {
		// Jan 31 + 1 month must stay in February, not overflow into March.
		_, installments, err := model.ComputeSchedule(
			decimal.NewFromInt(1200), decimal.Zero, 3,
			valueobject.FrequencyMonthly, date(2024, time.January, 31),
		)
		require.NoError(t, err)
		assert.Equal(t, date(2024, time.February, 29), installments[0].DueDate)
		assert.Equal(t, date(2024, time.March, 31), installments[1].DueDate)
		assert.Equal(t, date(2024, time.April, 30), installments[2].DueDate)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		start := date(2024, time.June, 1)

		_, _, err := model.ComputeSchedule(decimal.Zero, decimal.NewFromInt(10), 3, valueobject.FrequencyMonthly, start)
		require.Error(t, err)

		_, _, err = model.ComputeSchedule(decimal.NewFromInt(100), decimal.NewFromInt(-1), 3, valueobject.FrequencyMonthly, start)
		require.Error(t, err)

		_, _, err = model.ComputeSchedule(decimal.NewFromInt(100), decimal.NewFromInt(10), 0, valueobject.FrequencyMonthly, start)
		require.Error(t, err)

		_, _, err = model.ComputeSchedule(decimal.NewFromInt(100), decimal.NewFromInt(10), 3, valueobject.Frequency{}, start)
		require.Error(t, err)
	})
}
