package testdata

import (
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/coder4052/market-analysis/pkg/product"
)

// RecordGeneratorConfig configures product record generation parameters
type RecordGeneratorConfig struct {
	Count         int
	OurBrand      string
	OurShare      float64 // 0.0-1.0 (probability a record carries OurBrand)
	Platform      string
	HandmadeShare float64 // 0.0-1.0 (probability of 공장형 여부 == 0)
	NullChance    float64 // 0.0-1.0 (probability a numeric field is missing)
	Seed          int64
}

// Korean sujeonggwa listing names seen across marketplaces
var productNameParts = struct {
	Prefixes []string
	Suffixes []string
}{
	Prefixes: []string{"수제", "전통", "옛날", "프리미엄", "명품", "우리집", "국산", "시골"},
	Suffixes: []string{"수정과", "수정과 음료", "계피 수정과", "곶감 수정과", "생강 수정과"},
}

var competitorBrands = []string{
	"한옥마을", "담양식품", "청정원가", "고향의맛", "안동제조", "솔뫼", "다온", "미담",
}

var volumeOptions = []float64{120, 240, 500, 1000, 1500}
var countOptions = []float64{1, 2, 5, 10, 20, 30}

// GenerateTable builds a normalized product table with realistic listings.
// The same seed always produces the same table.
func GenerateTable(cfg RecordGeneratorConfig) *product.Table {
	faker := gofakeit.New(cfg.Seed)
	rng := rand.New(rand.NewSource(cfg.Seed))

	if cfg.Count == 0 {
		cfg.Count = 50
	}
	if cfg.Platform == "" {
		cfg.Platform = "네이버"
	}

	records := make([]product.Record, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		records = append(records, generateRecord(cfg, faker, rng))
	}

	return &product.Table{
		Records: records,
		Columns: product.ColumnSet{
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
		},
	}
}

func generateRecord(cfg RecordGeneratorConfig, faker *gofakeit.Faker, rng *rand.Rand) product.Record {
	brand := cfg.OurBrand
	if rng.Float64() >= cfg.OurShare {
		brand = competitorBrands[rng.Intn(len(competitorBrands))]
	}

	name := productNameParts.Prefixes[rng.Intn(len(productNameParts.Prefixes))] +
		" " + productNameParts.Suffixes[rng.Intn(len(productNameParts.Suffixes))]

	volume := volumeOptions[rng.Intn(len(volumeOptions))]
	count := countOptions[rng.Intn(len(countOptions))]

	unitPrice := float64(faker.IntRange(800, 5000))
	total := unitPrice * count

	factory := 1.0
	if rng.Float64() < cfg.HandmadeShare {
		factory = 0
	}

	reviews := float64(faker.IntRange(0, 2000))
	rating := float64(faker.IntRange(30, 50)) / 10

	r := product.Record{
		Brand:           brand,
		Name:            name,
		Platform:        cfg.Platform,
		VolumeML:        maybeNull(volume, cfg.NullChance, rng),
		PackCount:       maybeNull(count, cfg.NullChance, rng),
		LowestPrice:     maybeNull(total, cfg.NullChance, rng),
		LowestUnitPrice: maybeNull(unitPrice, cfg.NullChance, rng),
		FactoryMade:     product.Float(factory),
		ReviewCount:     maybeNull(reviews, cfg.NullChance, rng),
		Rating:          maybeNull(rating, cfg.NullChance, rng),
	}
	return r
}

func maybeNull(v, nullChance float64, rng *rand.Rand) *float64 {
	if nullChance > 0 && rng.Float64() < nullChance {
		return nil
	}
	return product.Float(v)
}
