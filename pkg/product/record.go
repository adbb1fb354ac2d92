package product

import "time"

// Record is one normalized price listing. Numeric fields are nullable:
// a nil pointer means the source cell was empty or not coercible.
type Record struct {
	Brand           string     `json:"브랜드"`
	Name            string     `json:"제품명"`
	VolumeML        *float64   `json:"용량_ml"`
	PackCount       *float64   `json:"개수"`
	ListPrice       *float64   `json:"일반_판매가"`
	ListUnitPrice   *float64   `json:"일반_판매가_단위가격"`
	DiscountPrice   *float64   `json:"상시_할인가"`
	DiscountUnit    *float64   `json:"상시_할인가_단위가격"`
	ShippingFee     *float64   `json:"배송비"`
	LowestPrice     *float64   `json:"최저가_배송비_포함"`
	LowestUnitPrice *float64   `json:"최저가_단위가격_100ml당"`
	FactoryMade     *float64   `json:"공장형_여부"`
	ReviewCount     *float64   `json:"리뷰_개수"`
	Rating          *float64   `json:"평점"`
	Platform        string     `json:"플랫폼"`
	IngestedAt      time.Time  `json:"분석_시간"`
}

// ColumnSet records which source columns were present in a table. It is
// computed once at normalization so the analysis code checks capabilities
// instead of probing every row.
type ColumnSet struct {
	Brand           bool
	Name            bool
	VolumeML        bool
	PackCount       bool
	LowestPrice     bool
	LowestUnitPrice bool
	FactoryMade     bool
	ReviewCount     bool
	Rating          bool
	Platform        bool
}

// Union merges two column sets; a column is present in the merged table when
// it was present in either source.
func (c ColumnSet) Union(other ColumnSet) ColumnSet {
	return ColumnSet{
		Brand:           c.Brand || other.Brand,
		Name:            c.Name || other.Name,
		VolumeML:        c.VolumeML || other.VolumeML,
		PackCount:       c.PackCount || other.PackCount,
		LowestPrice:     c.LowestPrice || other.LowestPrice,
		LowestUnitPrice: c.LowestUnitPrice || other.LowestUnitPrice,
		FactoryMade:     c.FactoryMade || other.FactoryMade,
		ReviewCount:     c.ReviewCount || other.ReviewCount,
		Rating:          c.Rating || other.Rating,
		Platform:        c.Platform || other.Platform,
	}
}

// IdentityColumns counts how many of the four product-identity columns
// (brand, name, volume, pack count) the table carries.
func (c ColumnSet) IdentityColumns() int {
	n := 0
	for _, present := range []bool{c.Brand, c.Name, c.VolumeML, c.PackCount} {
		if present {
			n++
		}
	}
	return n
}

// Table is a normalized set of records plus its column capabilities.
type Table struct {
	Records []Record
	Columns ColumnSet
}

// Empty reports whether the table has no records.
func (t *Table) Empty() bool {
	return t == nil || len(t.Records) == 0
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Merge combines multiple tables into one. Records are concatenated in input
// order and column sets are unioned.
func Merge(tables []*Table) *Table {
	merged := &Table{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		merged.Records = append(merged.Records, t.Records...)
		merged.Columns = merged.Columns.Union(t.Columns)
	}
	return merged
}

// Filter returns a new table with the same column set containing only records
// matching keep.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := &Table{Columns: t.Columns}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Platforms returns the distinct platforms in first-appearance order.
func (t *Table) Platforms() []string {
	if t == nil || !t.Columns.Platform {
		return []string{}
	}
	seen := make(map[string]bool)
	platforms := []string{}
	for _, r := range t.Records {
		if r.Platform == "" || seen[r.Platform] {
			continue
		}
		seen[r.Platform] = true
		platforms = append(platforms, r.Platform)
	}
	return platforms
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 {
	return &v
}
