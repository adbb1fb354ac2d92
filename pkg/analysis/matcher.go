package analysis

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/coder4052/market-analysis/pkg/product"
)

// cohort is the competitor set selected for one price comparison.
type cohort struct {
	members []product.Record
	tier    ComparisonTier
	label   string
}

// analyzeCompetitiveness runs the tiered price comparison for every one of
// our products on every platform. Platforms where no product could be
// matched are omitted from the result map.
func (a *Analyzer) analyzeCompetitiveness(t *product.Table) (map[string][]CompetitiveEntry, bool) {
	cols := t.Columns
	if !cols.LowestUnitPrice || !cols.Platform {
		return map[string][]CompetitiveEntry{}, false
	}

	result := make(map[string][]CompetitiveEntry)

	for _, platform := range t.Platforms() {
		var ours, competitors []product.Record
		for _, r := range t.Records {
			if r.Platform != platform {
				continue
			}
			if r.Brand == a.cfg.OurBrand {
				ours = append(ours, r)
			} else {
				competitors = append(competitors, r)
			}
		}
		if len(ours) == 0 || len(competitors) == 0 {
			continue
		}

		var entries []CompetitiveEntry
		for _, our := range ours {
			entry, ok := a.compareProduct(our, competitors)
			if !ok {
				continue
			}
			entries = append(entries, entry)
		}

		if len(entries) > 0 {
			result[platform] = entries
		}
	}

	return result, true
}

// compareProduct selects the most specific non-empty cohort for one of our
// products and derives its price metrics. Returns false when the product or
// its cohort lacks the data to compare.
func (a *Analyzer) compareProduct(our product.Record, competitors []product.Record) (CompetitiveEntry, bool) {
	if our.VolumeML == nil || our.PackCount == nil || our.LowestUnitPrice == nil {
		return CompetitiveEntry{}, false
	}

	c := a.selectCohort(*our.VolumeML, *our.PackCount, competitors)

	var prices []float64
	for _, m := range c.members {
		if m.LowestUnitPrice != nil {
			prices = append(prices, *m.LowestUnitPrice)
		}
	}
	if len(prices) == 0 {
		return CompetitiveEntry{}, false
	}

	mean, min, max := priceStats(prices)
	ourPrice := *our.LowestUnitPrice

	gap := ourPrice - mean
	gapPercent := 0.0
	if mean != 0 {
		gapPercent = gap / mean * 100
	}

	// Strict evaluation order: ties on a boundary take the cheaper label.
	var position MarketPosition
	switch {
	case ourPrice <= min:
		position = PositionLowest
	case ourPrice <= mean:
		position = PositionBelowAverage
	case ourPrice <= max:
		position = PositionAboveAverage
	default:
		position = PositionPremium
	}

	return CompetitiveEntry{
		Product:         productLabel(our),
		OurUnitPrice:    ourPrice,
		CompetitorMean:  mean,
		CompetitorMin:   min,
		CompetitorMax:   max,
		PriceGap:        gap,
		PriceGapPercent: gapPercent,
		Position:        position,
		CompetitorCount: len(prices),
		Tier:            c.tier,
		TierLabel:       c.label,
		MainCompetitors: a.mainCompetitors(c.members),
	}, true
}

// selectCohort walks the fallback ladder and returns the first tier with any
// members. Tier 4 always matches, so the result is never empty when the
// platform has competitors.
func (a *Analyzer) selectCohort(volume, count float64, competitors []product.Record) cohort {
	exact := filterRecords(competitors, func(r product.Record) bool {
		return r.VolumeML != nil && *r.VolumeML == volume &&
			r.PackCount != nil && *r.PackCount == count
	})
	if len(exact) > 0 {
		return cohort{members: exact, tier: TierExact, label: "동일 용량+개수"}
	}

	lo, hi := volume*(1-a.cfg.VolumeSimilarity), volume*(1+a.cfg.VolumeSimilarity)
	similar := filterRecords(competitors, func(r product.Record) bool {
		return r.VolumeML != nil && *r.VolumeML >= lo && *r.VolumeML <= hi &&
			r.PackCount != nil && *r.PackCount == count
	})
	if len(similar) > 0 {
		return cohort{
			members: similar,
			tier:    TierSimilarVolume,
			label:   fmt.Sprintf("유사 용량(%sml~%sml)", formatNumber(lo), formatNumber(hi)),
		}
	}

	sameCount := filterRecords(competitors, func(r product.Record) bool {
		return r.PackCount != nil && *r.PackCount == count
	})
	if len(sameCount) > 0 {
		return cohort{members: sameCount, tier: TierSameCount, label: "동일 개수"}
	}

	return cohort{members: competitors, tier: TierEntireMarket, label: "전체 시장"}
}

// mainCompetitors lists up to the configured number of cohort members,
// cheapest first with priceless members last.
func (a *Analyzer) mainCompetitors(members []product.Record) []CompetitorDetail {
	sorted := make([]product.Record, len(members))
	copy(sorted, members)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].LowestUnitPrice, sorted[j].LowestUnitPrice
		if (pi == nil) != (pj == nil) {
			return pj == nil
		}
		if pi != nil && *pi != *pj {
			return *pi < *pj
		}
		if sorted[i].Brand != sorted[j].Brand {
			return sorted[i].Brand < sorted[j].Brand
		}
		return sorted[i].Name < sorted[j].Name
	})

	limit := a.cfg.MainCompetitorsCount
	if limit > len(sorted) {
		limit = len(sorted)
	}

	details := make([]CompetitorDetail, 0, limit)
	for _, r := range sorted[:limit] {
		details = append(details, CompetitorDetail{
			Brand:     r.Brand,
			Name:      r.Name,
			VolumeML:  r.VolumeML,
			PackCount: r.PackCount,
			UnitPrice: r.LowestUnitPrice,
		})
	}
	return details
}

func filterRecords(records []product.Record, keep func(product.Record) bool) []product.Record {
	var out []product.Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func priceStats(prices []float64) (mean, min, max float64) {
	min, max = prices[0], prices[0]
	sum := 0.0
	for _, p := range prices {
		sum += p
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return sum / float64(len(prices)), min, max
}

func productLabel(r product.Record) string {
	label := r.Name
	if r.VolumeML != nil {
		label += " " + formatNumber(*r.VolumeML) + "ml"
	}
	if r.PackCount != nil {
		label += " " + formatNumber(*r.PackCount) + "개"
	}
	return label
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
