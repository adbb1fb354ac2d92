package analysis

import (
	"sort"

	"github.com/coder4052/market-analysis/pkg/product"
)

// ourProductDetails enriches our unique products with engagement metrics and
// an in-brand ranking. Review counts and ratings live on raw rows, not on the
// aggregated unique products, so they are recovered by group-key match.
func (a *Analyzer) ourProductDetails(t *product.Table, ourUniques []UniqueProduct) []OurProductDetail {
	if len(ourUniques) == 0 {
		return []OurProductDetail{}
	}

	var ourRows []product.Record
	for _, r := range t.Records {
		if r.Brand == a.cfg.OurBrand {
			ourRows = append(ourRows, r)
		}
	}

	competitorAvg := a.competitorAvgReviews(t)

	details := make([]OurProductDetail, 0, len(ourUniques))
	for _, u := range ourUniques {
		reviews, rating := recoverEngagement(u, ourRows, t.Columns)
		score := 0.0
		if rating > 0 {
			score = reviews * rating
		}

		details = append(details, OurProductDetail{
			Brand:        u.Brand,
			Name:         u.Name,
			VolumeML:     u.VolumeML,
			PackCount:    u.PackCount,
			LowestPrice:  u.MinLowestPrice,
			UnitPrice:    u.MinUnitPrice,
			Platforms:    u.Platforms,
			ReviewCount:  reviews,
			Rating:       rating,
			Score:        score,
			Reaction:     a.classifyReaction(reviews, competitorAvg),
			Satisfaction: a.classifySatisfaction(rating),
		})
	}

	// Rank by performance score, best first. Ties keep group-key order.
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Score > details[j].Score
	})

	if len(details) == 1 {
		details[0].SingleProduct = true
		return details
	}
	for i := range details {
		details[i].Rank = i + 1
	}
	return details
}

// recoverEngagement takes the maximum review count and rating over the raw
// rows belonging to the unique product's group. Missing values count as 0.
func recoverEngagement(u UniqueProduct, rows []product.Record, cols product.ColumnSet) (reviews, rating float64) {
	for _, r := range rows {
		if !matchesGroup(u, r, cols) {
			continue
		}
		if r.ReviewCount != nil && *r.ReviewCount > reviews {
			reviews = *r.ReviewCount
		}
		if r.Rating != nil && *r.Rating > rating {
			rating = *r.Rating
		}
	}
	return reviews, rating
}

// competitorAvgReviews averages competitor review counts, considering only
// rows that actually have reviews. Returns 0 when no competitor has any.
func (a *Analyzer) competitorAvgReviews(t *product.Table) float64 {
	if !t.Columns.ReviewCount {
		return 0
	}
	sum, n := 0.0, 0
	for _, r := range t.Records {
		if r.Brand == a.cfg.OurBrand {
			continue
		}
		if r.ReviewCount != nil && *r.ReviewCount > 0 {
			sum += *r.ReviewCount
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (a *Analyzer) classifyReaction(reviews, competitorAvg float64) MarketReaction {
	if competitorAvg > 0 {
		ratio := reviews / competitorAvg
		switch {
		case ratio >= a.cfg.HighEngagementRatio:
			return ReactionHigh
		case ratio >= a.cfg.GoodEngagementRatio:
			return ReactionAboveAverage
		default:
			return ReactionNormal
		}
	}
	if reviews == 0 {
		return ReactionNoReviews
	}
	return ReactionNormal
}

func (a *Analyzer) classifySatisfaction(rating float64) Satisfaction {
	switch {
	case rating >= a.cfg.ExcellentRating:
		return SatisfactionExcellent
	case rating >= a.cfg.GoodRating:
		return SatisfactionGood
	case rating > 0:
		return SatisfactionNeedsWork
	default:
		return SatisfactionNoRating
	}
}
