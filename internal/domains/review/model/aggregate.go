package model

import "github.com/shopspring/decimal"

// Incremental rating aggregate math. Each function takes the stored
// average (already rounded to cents) and the review count as of before
// the mutation, and returns the next stored average, rounded half-up to
// two decimals. The default division precision of 16 digits keeps the
// intermediate error orders of magnitude below the cent rounding.
//
// Rounding each step from the stored value, rather than from an exact
// running sum, is deliberate: it makes the stored aggregate a pure
// function of the review history as observed through this code path, so
// replaying the same operations always reproduces the same value.

// RatingAfterAdd folds one new rating into the aggregate.
// avg' = avg * n/(n+1) + r/(n+1); for the first review avg' = r.
func RatingAfterAdd(avg decimal.Decimal, count, rating int) decimal.Decimal {
	r := decimal.NewFromInt(int64(rating))
	if count == 0 {
		return r.Round(2)
	}

	n := decimal.NewFromInt(int64(count))
	next := n.Add(decimal.NewFromInt(1))

	return avg.Mul(n).Div(next).Add(r.Div(next)).Round(2)
}

// RatingAfterUpdate replaces one existing rating without changing the
// count. avg' = avg + (r_new - r_old)/n; at count 0 there is nothing to
// fold against, so the new rating stands alone.
func RatingAfterUpdate(avg decimal.Decimal, count, oldRating, newRating int) decimal.Decimal {
	if count == 0 {
		return decimal.NewFromInt(int64(newRating)).Round(2)
	}
	if oldRating == newRating {
		return avg
	}

	n := decimal.NewFromInt(int64(count))
	delta := decimal.NewFromInt(int64(newRating - oldRating))

	return avg.Add(delta.Div(n)).Round(2)
}

// RatingAfterDelete removes one existing rating.
// avg' = (avg*n - r_old)/(n-1); removing the last review resets to 0.00.
func RatingAfterDelete(avg decimal.Decimal, count, oldRating int) decimal.Decimal {
	if count <= 1 {
		return decimal.Zero.Round(2)
	}

	n := decimal.NewFromInt(int64(count))
	prev := n.Sub(decimal.NewFromInt(1))
	r := decimal.NewFromInt(int64(oldRating))

	return avg.Mul(n).Sub(r).Div(prev).Round(2)
}
