package analysis

// ComparisonTier identifies how specific the competitor cohort was that a
// price comparison ran against.
type ComparisonTier string

const (
	// TierExact matched identical volume and pack count.
	TierExact ComparisonTier = "exact"
	// TierSimilarVolume matched volume within tolerance and identical count.
	TierSimilarVolume ComparisonTier = "similar_volume"
	// TierSameCount matched pack count only.
	TierSameCount ComparisonTier = "same_count"
	// TierEntireMarket fell back to every competitor on the platform.
	TierEntireMarket ComparisonTier = "entire_market"
)

// MarketPosition classifies our unit price against the cohort. The four
// labels are mutually exclusive and evaluated in price order.
type MarketPosition string

const (
	PositionLowest       MarketPosition = "lowest"
	PositionBelowAverage MarketPosition = "below_average"
	PositionAboveAverage MarketPosition = "above_average"
	PositionPremium      MarketPosition = "premium"
)

// MarketReaction classifies review engagement against the competitor average.
type MarketReaction string

const (
	ReactionHigh         MarketReaction = "high"
	ReactionAboveAverage MarketReaction = "above_average"
	ReactionNormal       MarketReaction = "normal"
	ReactionNoReviews    MarketReaction = "no_reviews"
)

// Satisfaction classifies the product rating.
type Satisfaction string

const (
	SatisfactionExcellent Satisfaction = "excellent"
	SatisfactionGood      Satisfaction = "good"
	SatisfactionNeedsWork Satisfaction = "needs_improvement"
	SatisfactionNoRating  Satisfaction = "no_rating"
)

// Warning is a non-fatal signal raised while analyzing. Warnings never abort
// the pipeline and are not part of the stored report.
type Warning string

// CompetitorDetail is one cohort member listed alongside a price comparison.
// A nil unit price is the explicit no-price-info marker.
type CompetitorDetail struct {
	Brand     string   `json:"브랜드"`
	Name      string   `json:"제품명"`
	VolumeML  *float64 `json:"용량_ml"`
	PackCount *float64 `json:"개수"`
	UnitPrice *float64 `json:"단위가격"`
}

// CompetitiveEntry is the price comparison for one of our products on one
// platform.
type CompetitiveEntry struct {
	Product         string             `json:"제품"`
	OurUnitPrice    float64            `json:"우리_단위가격"`
	CompetitorMean  float64            `json:"경쟁사_평균"`
	CompetitorMin   float64            `json:"경쟁사_최저"`
	CompetitorMax   float64            `json:"경쟁사_최고"`
	PriceGap        float64            `json:"가격차이"`
	PriceGapPercent float64            `json:"가격차이_퍼센트"`
	Position        MarketPosition     `json:"시장_포지션"`
	CompetitorCount int                `json:"경쟁사_수"`
	Tier            ComparisonTier     `json:"비교_단계"`
	TierLabel       string             `json:"비교_기준"`
	MainCompetitors []CompetitorDetail `json:"주요_경쟁사"`
}

// OurProductDetail is the enriched view of one of our unique products.
type OurProductDetail struct {
	Brand         string         `json:"브랜드"`
	Name          string         `json:"제품명"`
	VolumeML      *float64       `json:"용량_ml"`
	PackCount     *float64       `json:"개수"`
	LowestPrice   *float64       `json:"최저가"`
	UnitPrice     *float64       `json:"단위가격"`
	Platforms     []string       `json:"판매플랫폼"`
	ReviewCount   float64        `json:"리뷰_개수"`
	Rating        float64        `json:"평점"`
	Score         float64        `json:"성과_점수"`
	Reaction      MarketReaction `json:"시장반응도"`
	Satisfaction  Satisfaction   `json:"고객만족도"`
	Rank          int            `json:"브랜드내순위,omitempty"`
	SingleProduct bool           `json:"단일_제품"`
}

// VolumeCombo is one (volume, pack count) market segment.
type VolumeCombo struct {
	Label         string   `json:"용량_개수"`
	VolumeML      float64  `json:"용량_ml"`
	PackCount     float64  `json:"개수"`
	TotalProducts int      `json:"총_제품수"`
	OurProducts   int      `json:"우리_제품수"`
	MeanUnitPrice *float64 `json:"평균_단위가격"`
	MinUnitPrice  *float64 `json:"최저_단위가격"`
	MaxUnitPrice  *float64 `json:"최고_단위가격"`
}

// BrandShare is one brand's slice of the unique-product market.
type BrandShare struct {
	ProductCount int     `json:"제품_수"`
	SharePercent float64 `json:"점유율_퍼센트"`
}

// Insights holds the per-category business insights. Insights that could not
// be computed are listed in Unavailable and left empty, never aborting the
// category analysis.
type Insights struct {
	OurProductDetails []OurProductDetail            `json:"our_product_details"`
	Competitiveness   map[string][]CompetitiveEntry `json:"detailed_competitiveness"`
	VolumeCountMarket []VolumeCombo                 `json:"volume_count_market"`
	MarketShare       map[string]BrandShare         `json:"market_share"`
	Unavailable       []string                      `json:"unavailable_insights,omitempty"`
}

func emptyInsights() Insights {
	return Insights{
		OurProductDetails: []OurProductDetail{},
		Competitiveness:   map[string][]CompetitiveEntry{},
		VolumeCountMarket: []VolumeCombo{},
		MarketShare:       map[string]BrandShare{},
	}
}

// CategoryResult is the analysis of one category subset (handmade or all).
type CategoryResult struct {
	CategoryName     string   `json:"category_name"`
	TotalProducts    int      `json:"total_products_analyzed"`
	TotalUnique      int      `json:"total_unique_products"`
	OurCount         int      `json:"our_products_count"`
	OurUnique        int      `json:"our_unique_products_count"`
	CompetitorCount  int      `json:"competitor_products_count"`
	CompetitorUnique int      `json:"competitor_unique_products_count"`
	Insights         Insights `json:"business_insights"`
}

// Report is the complete analysis artifact persisted to the store.
type Report struct {
	Timestamp    string         `json:"timestamp"`
	AnalysisType string         `json:"analysis_type"`
	OurBrand     string         `json:"our_brand"`
	Handmade     CategoryResult `json:"handmade_category"`
	All          CategoryResult `json:"all_category"`
	Platforms    []string       `json:"platforms_analyzed"`
}
