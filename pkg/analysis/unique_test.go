package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coder4052/market-analysis/pkg/product"
)

func fullColumns() product.ColumnSet {
	return product.ColumnSet{
		Brand:           true,
		Name:            true,
		VolumeML:        true,
		PackCount:       true,
		LowestPrice:     true,
		LowestUnitPrice: true,
		FactoryMade:     true,
		ReviewCount:     true,
		Rating:          true,
		Platform:        true,
	}
}

func listing(brand, name string, volume, count, price, unitPrice float64, platform string) product.Record {
	return product.Record{
		Brand:           brand,
		Name:            name,
		VolumeML:        product.Float(volume),
		PackCount:       product.Float(count),
		LowestPrice:     product.Float(price),
		LowestUnitPrice: product.Float(unitPrice),
		Platform:        platform,
	}
}

func TestUniqueProducts(t *testing.T) {
	t.Run("groups listings of the same product across platforms", func(t *testing.T) {
		table := &product.Table{
			Columns: fullColumns(),
			Records: []product.Record{
				listing("서로", "수정과", 500, 1, 12000, 2400, "네이버"),
				listing("서로", "수정과", 500, 1, 11000, 2200, "쿠팡"),
				listing("서로", "수정과", 1000, 1, 20000, 2000, "네이버"),
			},
		}

		set := uniqueProducts(table)
		require.False(t, set.Degraded)
		require.Len(t, set.Products, 2)

		small := set.Products[0]
		assert.Equal(t, "수정과", small.Name)
		assert.Equal(t, 500.0, *small.VolumeML)
		assert.Equal(t, 2, small.Listings)
		assert.Equal(t, 11000.0, *small.MinLowestPrice)
		assert.Equal(t, 2200.0, *small.MinUnitPrice)
		assert.Equal(t, []string{"네이버", "쿠팡"}, small.Platforms)

		large := set.Products[1]
		assert.Equal(t, 1000.0, *large.VolumeML)
		assert.Equal(t, 1, large.Listings)
	})

	t.Run("deduplicates platforms within a group", func(t *testing.T) {
		table := &product.Table{
			Columns: fullColumns(),
			Records: []product.Record{
				listing("서로", "수정과", 500, 1, 12000, 2400, "네이버"),
				listing("서로", "수정과", 500, 1, 12500, 2500, "네이버"),
			},
		}

		set := uniqueProducts(table)
		require.Len(t, set.Products, 1)
		assert.Equal(t, []string{"네이버"}, set.Products[0].Platforms)
	})

	t.Run("excludes records with nil in an available key column", func(t *testing.T) {
		noVolume := listing("서로", "수정과", 0, 1, 12000, 2400, "네이버")
		noVolume.VolumeML = nil

		table := &product.Table{
			Columns: fullColumns(),
			Records: []product.Record{
				noVolume,
				listing("서로", "수정과", 500, 1, 12000, 2400, "네이버"),
			},
		}

		set := uniqueProducts(table)
		require.Len(t, set.Products, 1)
		assert.Equal(t, 1, set.Products[0].Listings)
	})

	t.Run("degrades to brand counts with fewer than two identity columns", func(t *testing.T) {
		table := &product.Table{
			Columns: product.ColumnSet{Brand: true, Platform: true},
			Records: []product.Record{
				{Brand: "서로", Platform: "네이버"},
				{Brand: "서로", Platform: "쿠팡"},
				{Brand: "한옥마을", Platform: "네이버"},
			},
		}

		set := uniqueProducts(table)
		assert.True(t, set.Degraded)
		assert.Empty(t, set.Products)
		assert.Equal(t, map[string]int{"서로": 2, "한옥마을": 1}, set.BrandCounts)
	})

	t.Run("output order is deterministic", func(t *testing.T) {
		table := &product.Table{
			Columns: fullColumns(),
			Records: []product.Record{
				listing("한옥마을", "수정과", 500, 1, 9000, 1800, "네이버"),
				listing("서로", "수정과", 1000, 1, 20000, 2000, "네이버"),
				listing("서로", "수정과", 500, 1, 12000, 2400, "네이버"),
			},
		}

		set := uniqueProducts(table)
		require.Len(t, set.Products, 3)
		assert.Equal(t, "서로", set.Products[0].Brand)
		assert.Equal(t, 500.0, *set.Products[0].VolumeML)
		assert.Equal(t, 1000.0, *set.Products[1].VolumeML)
		assert.Equal(t, "한옥마을", set.Products[2].Brand)
	})
}

func TestMatchesGroup(t *testing.T) {
	cols := fullColumns()
	u := UniqueProduct{
		Brand:     "서로",
		Name:      "수정과",
		VolumeML:  product.Float(500),
		PackCount: product.Float(1),
	}

	assert.True(t, matchesGroup(u, listing("서로", "수정과", 500, 1, 0, 0, "네이버"), cols))
	assert.False(t, matchesGroup(u, listing("서로", "수정과", 1000, 1, 0, 0, "네이버"), cols))
	assert.False(t, matchesGroup(u, listing("한옥마을", "수정과", 500, 1, 0, 0, "네이버"), cols))

	nilVolume := listing("서로", "수정과", 0, 1, 0, 0, "네이버")
	nilVolume.VolumeML = nil
	assert.False(t, matchesGroup(u, nilVolume, cols))
}
