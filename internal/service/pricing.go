package service

import (
	"sort"

	"marketplace-api/internal/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// taxMultiplier is applied to every order subtotal
var taxMultiplier = decimal.RequireFromString("1.20")

// TotalWithTax sums the price of every referenced product, counting repeated
// references again, and applies tax rounded half-up to cents. References
// missing from products contribute nothing.
func TotalWithTax(productIDs []int64, products []models.Product) float64 {
	prices := lo.KeyBy(products, func(p models.Product) int64 { return p.ID })

	subtotal := decimal.Zero
	for _, id := range productIDs {
		if p, ok := prices[id]; ok {
			subtotal = subtotal.Add(decimal.NewFromFloat(p.Price))
		}
	}

	total, _ := subtotal.Mul(taxMultiplier).Round(2).Float64()
	return total
}

// AggregateScore returns the mean review score rounded to two decimals and the
// review ids in ascending order. No reviews yields a zero score.
func AggregateScore(reviews []models.ReviewScore) (float64, []int64) {
	ids := lo.Map(reviews, func(r models.ReviewScore, _ int) int64 { return r.ID })
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(reviews) == 0 {
		return 0, ids
	}

	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Score)))
	}

	score, _ := sum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(2).Float64()
	return score, ids
}
