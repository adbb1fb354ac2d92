package analysis

import (
	"sort"
	"strconv"
	"strings"

	"github.com/coder4052/market-analysis/pkg/product"
)

// UniqueProduct is one canonical (brand, name, volume, count) product with
// aggregates over its listings.
type UniqueProduct struct {
	Brand     string
	Name      string
	VolumeML  *float64
	PackCount *float64

	Listings       int
	MinLowestPrice *float64
	MinUnitPrice   *float64
	Platforms      []string
}

// UniqueSet is the identity-resolver output. When fewer than two identity
// columns are available the resolver degrades to per-brand counts and
// Products is empty.
type UniqueSet struct {
	Products    []UniqueProduct
	BrandCounts map[string]int
	Degraded    bool
}

// uniqueProducts groups the table's records into canonical products keyed by
// whichever of the four identity columns the table carries. Records with a
// null value in an available key column are excluded from grouping.
func uniqueProducts(t *product.Table) UniqueSet {
	cols := t.Columns

	if cols.IdentityColumns() < 2 {
		counts := make(map[string]int)
		for _, r := range t.Records {
			counts[r.Brand]++
		}
		return UniqueSet{BrandCounts: counts, Degraded: true}
	}

	type group struct {
		first product.Record
		agg   UniqueProduct
		seen  map[string]bool
	}

	groups := make(map[string]*group)
	order := []string{}

	for _, r := range t.Records {
		key, ok := groupKey(r, cols)
		if !ok {
			continue
		}

		g, exists := groups[key]
		if !exists {
			g = &group{
				first: r,
				agg: UniqueProduct{
					Brand:     r.Brand,
					Name:      r.Name,
					VolumeML:  r.VolumeML,
					PackCount: r.PackCount,
					Platforms: []string{},
				},
				seen: make(map[string]bool),
			}
			groups[key] = g
			order = append(order, key)
		}

		g.agg.Listings++
		if cols.LowestPrice && r.LowestPrice != nil {
			if g.agg.MinLowestPrice == nil || *r.LowestPrice < *g.agg.MinLowestPrice {
				g.agg.MinLowestPrice = r.LowestPrice
			}
		}
		if cols.LowestUnitPrice && r.LowestUnitPrice != nil {
			if g.agg.MinUnitPrice == nil || *r.LowestUnitPrice < *g.agg.MinUnitPrice {
				g.agg.MinUnitPrice = r.LowestUnitPrice
			}
		}
		if cols.Platform && r.Platform != "" && !g.seen[r.Platform] {
			g.seen[r.Platform] = true
			g.agg.Platforms = append(g.agg.Platforms, r.Platform)
		}
	}

	products := make([]UniqueProduct, 0, len(groups))
	for _, key := range order {
		products = append(products, groups[key].agg)
	}

	// Deterministic output ordered by group key.
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if a.Brand != b.Brand {
			return a.Brand < b.Brand
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		av, bv := floatOrZero(a.VolumeML), floatOrZero(b.VolumeML)
		if av != bv {
			return av < bv
		}
		return floatOrZero(a.PackCount) < floatOrZero(b.PackCount)
	})

	return UniqueSet{Products: products}
}

// groupKey builds the composite key over the available identity columns.
// Returns false when the record has a null in any available key column.
func groupKey(r product.Record, cols product.ColumnSet) (string, bool) {
	var parts []string
	if cols.Brand {
		parts = append(parts, r.Brand)
	}
	if cols.Name {
		parts = append(parts, r.Name)
	}
	if cols.VolumeML {
		if r.VolumeML == nil {
			return "", false
		}
		parts = append(parts, strconv.FormatFloat(*r.VolumeML, 'f', -1, 64))
	}
	if cols.PackCount {
		if r.PackCount == nil {
			return "", false
		}
		parts = append(parts, strconv.FormatFloat(*r.PackCount, 'f', -1, 64))
	}
	return strings.Join(parts, "\x1f"), true
}

// matchesGroup reports whether a raw record belongs to the unique product's
// group under the available identity columns.
func matchesGroup(u UniqueProduct, r product.Record, cols product.ColumnSet) bool {
	if cols.Brand && r.Brand != u.Brand {
		return false
	}
	if cols.Name && r.Name != u.Name {
		return false
	}
	if cols.VolumeML {
		if r.VolumeML == nil || u.VolumeML == nil || *r.VolumeML != *u.VolumeML {
			return false
		}
	}
	if cols.PackCount {
		if r.PackCount == nil || u.PackCount == nil || *r.PackCount != *u.PackCount {
			return false
		}
	}
	return true
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
