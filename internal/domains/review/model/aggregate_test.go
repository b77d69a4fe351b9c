package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRatingAfterAdd_FirstReview(t *testing.T) {
	got := RatingAfterAdd(decimal.Zero, 0, 4)
	assert.True(t, dec("4.00").Equal(got), "got %s", got)
}

func TestRatingAfterAdd_FoldsIntoExistingAverage(t *testing.T) {
	// [5] then 4: 5*1/2 + 4/2 = 4.50
	got := RatingAfterAdd(dec("5.00"), 1, 4)
	assert.True(t, dec("4.50").Equal(got), "got %s", got)

	// [5,4] then 4: 4.5*2/3 + 4/3 = 4.333... rounds to 4.33
	got = RatingAfterAdd(dec("4.50"), 2, 4)
	assert.True(t, dec("4.33").Equal(got), "got %s", got)
}

func TestRatingAfterAdd_RoundsHalfUp(t *testing.T) {
	// [4] then 5: 4.5 exactly, no rounding needed.
	got := RatingAfterAdd(dec("4.00"), 1, 5)
	assert.True(t, dec("4.50").Equal(got), "got %s", got)

	// avg 4.25 over 1, add 4: (4.25+4)/2 = 4.125, half-up to 4.13.
	got = RatingAfterAdd(dec("4.25"), 1, 4)
	assert.True(t, dec("4.13").Equal(got), "got %s", got)
}

func TestRatingAfterUpdate(t *testing.T) {
	// [5,3] avg 4.00, the 3 becomes 5: 4 + (5-3)/2 = 5.00
	got := RatingAfterUpdate(dec("4.00"), 2, 3, 5)
	assert.True(t, dec("5.00").Equal(got), "got %s", got)
}

func TestRatingAfterUpdate_ZeroCountFallsBackToNewRating(t *testing.T) {
	var got decimal.Decimal
	assert.NotPanics(t, func() {
		got = RatingAfterUpdate(decimal.Zero, 0, 3, 5)
	})
	assert.True(t, dec("5.00").Equal(got), "got %s", got)
}

func TestRatingAfterUpdate_SameRatingIsNoop(t *testing.T) {
	avg := dec("3.67")
	got := RatingAfterUpdate(avg, 3, 4, 4)
	assert.True(t, avg.Equal(got))
}

func TestRatingAfterUpdate_NonTerminatingDivision(t *testing.T) {
	// [4,4,4] avg 4.00, one 4 becomes 5: 4 + 1/3 = 4.33
	got := RatingAfterUpdate(dec("4.00"), 3, 4, 5)
	assert.True(t, dec("4.33").Equal(got), "got %s", got)
}

func TestRatingAfterDelete(t *testing.T) {
	// [5,3,4] avg 4.00, the 3 goes: (4*3 - 3)/2 = 4.50
	got := RatingAfterDelete(dec("4.00"), 3, 3)
	assert.True(t, dec("4.50").Equal(got), "got %s", got)
}

func TestRatingAfterDelete_LastReviewResetsToZero(t *testing.T) {
	got := RatingAfterDelete(dec("5.00"), 1, 5)
	assert.True(t, got.IsZero())
}

func TestAggregate_AddThenDeleteAllReturnsToZero(t *testing.T) {
	ratings := []int{5, 3, 4, 1, 2}

	avg := decimal.Zero
	for i, r := range ratings {
		avg = RatingAfterAdd(avg, i, r)
	}

	// Deleting in reverse insertion order walks the count back down.
	count := len(ratings)
	for i := len(ratings) - 1; i >= 0; i-- {
		avg = RatingAfterDelete(avg, count, ratings[i])
		count--
	}

	assert.Zero(t, count)
	assert.True(t, avg.IsZero(), "got %s", avg)
}

func TestAggregate_StaysNearTrueMean(t *testing.T) {
	// Each step rounds to cents, so drift can accumulate, but over a
	// short history it must stay within a cent per operation of the
	// exact mean.
	ratings := []int{5, 1, 3, 4, 2, 5, 5, 1, 3, 4}

	avg := decimal.Zero
	sum := 0
	for i, r := range ratings {
		avg = RatingAfterAdd(avg, i, r)
		sum += r
	}

	exact := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(ratings))))
	drift := avg.Sub(exact).Abs()

	tolerance := dec("0.01").Mul(decimal.NewFromInt(int64(len(ratings))))
	require.True(t, drift.LessThanOrEqual(tolerance), "drift %s exceeds %s", drift, tolerance)
}

func TestAggregate_ResultsHaveTwoDecimals(t *testing.T) {
	got := RatingAfterAdd(dec("4.50"), 2, 4)
	assert.EqualValues(t, -2, got.Exponent())

	got = RatingAfterDelete(dec("5.00"), 1, 5)
	assert.EqualValues(t, -2, got.Exponent())
}
