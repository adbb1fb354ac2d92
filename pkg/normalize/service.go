package normalize

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/coder4052/market-analysis/pkg/logger"
	"github.com/coder4052/market-analysis/pkg/product"
	"github.com/xuri/excelize/v2"
)

// Source spreadsheet column names. These are the exact headers the platform
// exports use.
const (
	ColBrand           = "브랜드"
	ColName            = "제품명"
	ColVolumeML        = "용량(ml)"
	ColPackCount       = "개수"
	ColListPrice       = "일반 판매가"
	ColListUnitPrice   = "일반 판매가 단위가격(100ml당)"
	ColDiscountPrice   = "상시 할인가"
	ColDiscountUnit    = "상시 할인가 단위가격(100ml당)"
	ColShippingFee     = "배송비"
	ColLowestPrice     = "최저가(배송비 포함)"
	ColLowestUnitPrice = "최저가 단위가격(100ml당)"
	ColFactoryMade     = "공장형 여부"
	ColReviewCount     = "리뷰 개수"
	ColRating          = "평점"
)

// RequiredColumns is the full set of columns the analysis can use, in export
// order.
var RequiredColumns = []string{
	ColBrand, ColName, ColVolumeML, ColPackCount,
	ColListPrice, ColListUnitPrice, ColDiscountPrice, ColDiscountUnit,
	ColShippingFee, ColLowestPrice, ColLowestUnitPrice,
	ColFactoryMade, ColReviewCount, ColRating,
}

// PlatformKeywords maps filename keywords to platform labels.
var PlatformKeywords = map[string]string{
	"네이버":  "네이버",
	"쿠팡":   "쿠팡",
	"올웨이즈": "올웨이즈",
}

// PlatformOther is the label for files whose platform cannot be inferred.
const PlatformOther = "기타"

// Service loads platform spreadsheets and standardizes them into tables.
type Service struct {
	logger logger.Logger
}

// NewService creates a new normalizer service.
func NewService(log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{logger: log}
}

// PlatformFromFilename infers the sales platform from the uploaded filename.
func (s *Service) PlatformFromFilename(filename string) string {
	for keyword, platform := range PlatformKeywords {
		if strings.Contains(filename, keyword) {
			return platform
		}
	}
	return PlatformOther
}

// Normalize reads one xlsx export, tags rows with the platform inferred from
// the filename, coerces numeric columns and drops rows missing brand or
// product name. It returns the normalized table, the platform label and the
// list of expected columns the file did not carry.
func (s *Service) Normalize(filename string, r io.Reader) (*product.Table, string, []string, error) {
	platform := s.PlatformFromFilename(filename)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, platform, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, platform, nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, platform, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, platform, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	headerIndex := make(map[string]int)
	for i, header := range rows[0] {
		headerIndex[strings.TrimSpace(header)] = i
	}

	var missing []string
	available := 0
	for _, col := range RequiredColumns {
		if _, ok := headerIndex[col]; ok {
			available++
		} else {
			missing = append(missing, col)
		}
	}
	if available == 0 {
		return nil, platform, missing, fmt.Errorf("[%s] no expected columns found", platform)
	}
	if len(missing) > 0 {
		s.logger.Warn("missing columns in upload", "platform", platform, "columns", missing)
	}

	table := &product.Table{Columns: columnSet(headerIndex)}
	ingestedAt := time.Now()

	cell := func(row []string, col string) (string, bool) {
		idx, ok := headerIndex[col]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	for _, row := range rows[1:] {
		rec := product.Record{
			Platform:   platform,
			IngestedAt: ingestedAt,
		}
		if v, ok := cell(row, ColBrand); ok {
			rec.Brand = v
		}
		if v, ok := cell(row, ColName); ok {
			rec.Name = v
		}

		// Rows without the essential identity fields are dropped, matching
		// the contract that brand and name are non-null after normalization.
		if table.Columns.Brand && rec.Brand == "" {
			continue
		}
		if table.Columns.Name && rec.Name == "" {
			continue
		}

		rec.VolumeML = numericCell(row, headerIndex, ColVolumeML)
		rec.PackCount = numericCell(row, headerIndex, ColPackCount)
		rec.ListPrice = numericCell(row, headerIndex, ColListPrice)
		rec.ListUnitPrice = numericCell(row, headerIndex, ColListUnitPrice)
		rec.DiscountPrice = numericCell(row, headerIndex, ColDiscountPrice)
		rec.DiscountUnit = numericCell(row, headerIndex, ColDiscountUnit)
		rec.ShippingFee = numericCell(row, headerIndex, ColShippingFee)
		rec.LowestPrice = numericCell(row, headerIndex, ColLowestPrice)
		rec.LowestUnitPrice = numericCell(row, headerIndex, ColLowestUnitPrice)
		rec.FactoryMade = numericCell(row, headerIndex, ColFactoryMade)
		rec.ReviewCount = numericCell(row, headerIndex, ColReviewCount)
		rec.Rating = numericCell(row, headerIndex, ColRating)

		table.Records = append(table.Records, rec)
	}

	s.logger.Info("spreadsheet normalized",
		"platform", platform, "rows", len(table.Records), "missing_columns", len(missing))

	return table, platform, missing, nil
}

func columnSet(headerIndex map[string]int) product.ColumnSet {
	has := func(col string) bool {
		_, ok := headerIndex[col]
		return ok
	}
	return product.ColumnSet{
		Brand:           has(ColBrand),
		Name:            has(ColName),
		VolumeML:        has(ColVolumeML),
		PackCount:       has(ColPackCount),
		LowestPrice:     has(ColLowestPrice),
		LowestUnitPrice: has(ColLowestUnitPrice),
		FactoryMade:     has(ColFactoryMade),
		ReviewCount:     has(ColReviewCount),
		Rating:          has(ColRating),
		Platform:        true, // always stamped from the filename
	}
}

// numericCell coerces one cell to a number. Empty or unparseable values
// become nil rather than errors.
func numericCell(row []string, headerIndex map[string]int, col string) *float64 {
	idx, ok := headerIndex[col]
	if !ok || idx >= len(row) {
		return nil
	}
	raw := strings.TrimSpace(row[idx])
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSuffix(raw, "원")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
