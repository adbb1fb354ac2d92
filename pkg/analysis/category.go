package analysis

import (
	"fmt"
	"sort"

	"github.com/coder4052/market-analysis/pkg/product"
)

// analyzeCategory runs the full per-category pipeline. It never fails: empty
// input returns a zero result, structural insufficiency returns a partial
// result, and individual insights degrade to empty values with an entry in
// the result's unavailable list.
func (a *Analyzer) analyzeCategory(t *product.Table, categoryName string, warnings *[]Warning) CategoryResult {
	result := CategoryResult{
		CategoryName: categoryName,
		Insights:     emptyInsights(),
	}

	if t.Empty() {
		return result
	}

	result.TotalProducts = t.Len()
	for _, r := range t.Records {
		if r.Brand == a.cfg.OurBrand {
			result.OurCount++
		} else {
			result.CompetitorCount++
		}
	}

	uniques := uniqueProducts(t)
	if uniques.Degraded {
		// Fewer than two identity columns: raw counts stand, unique-product
		// metrics stay zeroed.
		*warnings = append(*warnings, Warning(fmt.Sprintf(
			"[%s] 제품 식별 컬럼이 부족하여 고유 제품 분석을 건너뜁니다.", categoryName)))
		return result
	}

	result.TotalUnique = len(uniques.Products)
	var ourUniques []UniqueProduct
	for _, u := range uniques.Products {
		if u.Brand == a.cfg.OurBrand {
			result.OurUnique++
			ourUniques = append(ourUniques, u)
		} else {
			result.CompetitorUnique++
		}
	}

	result.Insights.OurProductDetails = a.ourProductDetails(t, ourUniques)

	competitiveness, ok := a.analyzeCompetitiveness(t)
	result.Insights.Competitiveness = competitiveness
	if !ok {
		result.Insights.Unavailable = append(result.Insights.Unavailable, "detailed_competitiveness")
		*warnings = append(*warnings, Warning(fmt.Sprintf(
			"[%s] 단위가격/플랫폼 정보가 없어 가격 경쟁력 분석을 건너뜁니다.", categoryName)))
	}

	volumeMarket, ok := a.analyzeVolumeMarket(t)
	result.Insights.VolumeCountMarket = volumeMarket
	if !ok {
		result.Insights.Unavailable = append(result.Insights.Unavailable, "volume_count_market")
	}

	marketShare, ok := a.analyzeMarketShare(uniques.Products, t.Columns)
	result.Insights.MarketShare = marketShare
	if !ok {
		result.Insights.Unavailable = append(result.Insights.Unavailable, "market_share")
	}

	return result
}

// analyzeVolumeMarket breaks the market down by (volume, pack count)
// combination and reports the most common ones.
func (a *Analyzer) analyzeVolumeMarket(t *product.Table) ([]VolumeCombo, bool) {
	cols := t.Columns
	if !cols.VolumeML || !cols.PackCount {
		return []VolumeCombo{}, false
	}

	type comboKey struct{ volume, count float64 }
	type comboAgg struct {
		total, ours int
		prices      []float64
	}

	combos := make(map[comboKey]*comboAgg)
	for _, r := range t.Records {
		if r.VolumeML == nil || r.PackCount == nil {
			continue
		}
		key := comboKey{*r.VolumeML, *r.PackCount}
		agg := combos[key]
		if agg == nil {
			agg = &comboAgg{}
			combos[key] = agg
		}
		agg.total++
		if r.Brand == a.cfg.OurBrand {
			agg.ours++
		}
		if cols.LowestUnitPrice && r.LowestUnitPrice != nil {
			agg.prices = append(agg.prices, *r.LowestUnitPrice)
		}
	}
	if len(combos) == 0 {
		return []VolumeCombo{}, true
	}

	keys := make([]comboKey, 0, len(combos))
	for k := range combos {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if combos[keys[i]].total != combos[keys[j]].total {
			return combos[keys[i]].total > combos[keys[j]].total
		}
		if keys[i].volume != keys[j].volume {
			return keys[i].volume < keys[j].volume
		}
		return keys[i].count < keys[j].count
	})

	limit := a.cfg.TopVolumeCombos
	if limit > len(keys) {
		limit = len(keys)
	}

	market := make([]VolumeCombo, 0, limit)
	for _, k := range keys[:limit] {
		agg := combos[k]
		combo := VolumeCombo{
			Label:         fmt.Sprintf("%sml %s개", formatNumber(k.volume), formatNumber(k.count)),
			VolumeML:      k.volume,
			PackCount:     k.count,
			TotalProducts: agg.total,
			OurProducts:   agg.ours,
		}
		if len(agg.prices) > 0 {
			mean, min, max := priceStats(agg.prices)
			combo.MeanUnitPrice = &mean
			combo.MinUnitPrice = &min
			combo.MaxUnitPrice = &max
		}
		market = append(market, combo)
	}

	return market, true
}

// analyzeMarketShare computes each brand's share of the unique-product count
// and reports the top brands.
func (a *Analyzer) analyzeMarketShare(uniques []UniqueProduct, cols product.ColumnSet) (map[string]BrandShare, bool) {
	if !cols.Brand || len(uniques) == 0 {
		return map[string]BrandShare{}, cols.Brand
	}

	counts := make(map[string]int)
	for _, u := range uniques {
		counts[u.Brand]++
	}

	brands := make([]string, 0, len(counts))
	for b := range counts {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if counts[brands[i]] != counts[brands[j]] {
			return counts[brands[i]] > counts[brands[j]]
		}
		return brands[i] < brands[j]
	})

	limit := a.cfg.TopBrandsCount
	if limit > len(brands) {
		limit = len(brands)
	}

	// Full precision: shares must stay additive, rounding is left to the
	// presentation layer.
	total := float64(len(uniques))
	share := make(map[string]BrandShare, limit)
	for _, b := range brands[:limit] {
		share[b] = BrandShare{
			ProductCount: counts[b],
			SharePercent: float64(counts[b]) / total * 100,
		}
	}

	return share, true
}
