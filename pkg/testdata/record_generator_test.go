package testdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTable(t *testing.T) {
	cfg := RecordGeneratorConfig{
		Count:         80,
		OurBrand:      "서로",
		OurShare:      0.2,
		HandmadeShare: 0.5,
		NullChance:    0.1,
		Seed:          1,
	}

	t.Run("same seed reproduces the same table", func(t *testing.T) {
		first := GenerateTable(cfg)
		second := GenerateTable(cfg)

		require.Equal(t, first.Len(), second.Len())
		assert.Equal(t, first.Records, second.Records)
	})

	t.Run("records carry the configured platform and known brands", func(t *testing.T) {
		table := GenerateTable(cfg)
		require.Equal(t, 80, table.Len())

		ours := 0
		for _, r := range table.Records {
			assert.Equal(t, "네이버", r.Platform)
			assert.NotEmpty(t, r.Brand)
			assert.NotEmpty(t, r.Name)
			require.NotNil(t, r.FactoryMade)
			if r.Brand == "서로" {
				ours++
			}
		}
		assert.Greater(t, ours, 0)
		assert.Less(t, ours, 80)
	})

	t.Run("zero null chance keeps all numerics present", func(t *testing.T) {
		solid := cfg
		solid.NullChance = 0
		table := GenerateTable(solid)

		for _, r := range table.Records {
			assert.NotNil(t, r.VolumeML)
			assert.NotNil(t, r.PackCount)
			assert.NotNil(t, r.LowestPrice)
			assert.NotNil(t, r.LowestUnitPrice)
		}
	})
}
