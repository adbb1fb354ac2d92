package analysis

import (
	"time"

	"github.com/coder4052/market-analysis/pkg/logger"
	"github.com/coder4052/market-analysis/pkg/product"
)

const (
	AnalysisType     = "수정과 시장 분석"
	HandmadeCategory = "수제 제품"
	AllCategory      = "전체 제품"
)

// Config tunes the analysis thresholds. Values mirror the application
// configuration so the analyzer stays usable on its own in tests.
type Config struct {
	OurBrand             string
	VolumeSimilarity     float64
	TopBrandsCount       int
	TopVolumeCombos      int
	MainCompetitorsCount int
	ExcellentRating      float64
	GoodRating           float64
	HighEngagementRatio  float64
	GoodEngagementRatio  float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		OurBrand:             "서로",
		VolumeSimilarity:     0.20,
		TopBrandsCount:       10,
		TopVolumeCombos:      10,
		MainCompetitorsCount: 3,
		ExcellentRating:      4.5,
		GoodRating:           4.0,
		HighEngagementRatio:  2.0,
		GoodEngagementRatio:  1.0,
	}
}

// Analyzer runs the market analysis pipeline over normalized product tables.
type Analyzer struct {
	cfg Config
	log logger.Logger
}

func NewAnalyzer(cfg Config, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Default()
	}
	return &Analyzer{cfg: cfg, log: log}
}

// Analyze merges the platform tables and produces the full report. It returns
// a nil report only when no tables are given; every other input yields a
// report, with non-fatal problems reported as warnings.
func (a *Analyzer) Analyze(tables []*product.Table) (*Report, []Warning) {
	if len(tables) == 0 {
		return nil, []Warning{"분석할 데이터가 없습니다."}
	}

	merged := product.Merge(tables)
	warnings := []Warning{}

	handmade := merged
	if merged.Columns.FactoryMade {
		handmade = merged.Filter(func(r product.Record) bool {
			return r.FactoryMade != nil && *r.FactoryMade == 0
		})
	} else {
		warnings = append(warnings, "'공장형 여부' 컬럼을 찾을 수 없습니다. 전체 제품을 수제 제품으로 간주합니다.")
	}

	a.log.Info("analysis started",
		"total_products", merged.Len(),
		"handmade_products", handmade.Len(),
		"platforms", len(merged.Platforms()))

	report := &Report{
		Timestamp:    time.Now().Format(time.RFC3339),
		AnalysisType: AnalysisType,
		OurBrand:     a.cfg.OurBrand,
		Handmade:     a.analyzeCategory(handmade, HandmadeCategory, &warnings),
		All:          a.analyzeCategory(merged, AllCategory, &warnings),
		Platforms:    merged.Platforms(),
	}

	a.log.Info("analysis finished",
		"handmade_unique", report.Handmade.TotalUnique,
		"all_unique", report.All.TotalUnique,
		"warnings", len(warnings))

	return report, warnings
}
