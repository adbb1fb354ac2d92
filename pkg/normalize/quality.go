package normalize

import (
	"fmt"

	"github.com/coder4052/market-analysis/pkg/product"
)

// QualityReport summarizes the uploaded tables and any data issues found.
type QualityReport struct {
	TotalFiles    int      `json:"total_files"`
	TotalProducts int      `json:"total_products"`
	Platforms     []string `json:"platforms"`
	Issues        []string `json:"quality_issues"`
}

// FileSummary describes one normalized upload.
type FileSummary struct {
	Platform      string `json:"platform"`
	TotalProducts int    `json:"total_products"`
	UniqueBrands  int    `json:"unique_brands"`
	OurProducts   int    `json:"our_products"`
	HasPriceInfo  bool   `json:"has_price_info"`
	HasVolumeInfo bool   `json:"has_volume_info"`
}

// ValidateQuality checks the normalized tables for issues that would degrade
// the analysis. Issues are advisory; nothing here blocks the pipeline.
func (s *Service) ValidateQuality(tables []*product.Table, ourBrand string) QualityReport {
	if len(tables) == 0 {
		return QualityReport{
			Platforms: []string{},
			Issues:    []string{"업로드된 파일이 없습니다."},
		}
	}

	report := QualityReport{
		TotalFiles: len(tables),
		Platforms:  []string{},
		Issues:     []string{},
	}

	seen := make(map[string]bool)
	for _, t := range tables {
		report.TotalProducts += t.Len()
		for _, p := range t.Platforms() {
			if !seen[p] {
				seen[p] = true
				report.Platforms = append(report.Platforms, p)
			}
		}
		report.Issues = append(report.Issues, tableIssues(t, ourBrand)...)
	}

	return report
}

func tableIssues(t *product.Table, ourBrand string) []string {
	var issues []string

	if t.Empty() {
		return []string{"빈 데이터가 있습니다."}
	}

	platform := t.Records[0].Platform
	if platform == "" {
		platform = "알 수 없음"
	}

	if !t.Columns.Brand {
		issues = append(issues, fmt.Sprintf("[%s] 필수 컬럼 '%s'이 없습니다.", platform, ColBrand))
	}
	if !t.Columns.Name {
		issues = append(issues, fmt.Sprintf("[%s] 필수 컬럼 '%s'이 없습니다.", platform, ColName))
	}

	priceAvailable := false
	volumeAvailable := false
	ourProducts := 0
	for _, r := range t.Records {
		if r.LowestPrice != nil || r.LowestUnitPrice != nil {
			priceAvailable = true
		}
		if r.VolumeML != nil || r.PackCount != nil {
			volumeAvailable = true
		}
		if r.Brand == ourBrand {
			ourProducts++
		}
	}

	if !priceAvailable {
		issues = append(issues, fmt.Sprintf("[%s] 가격 정보가 없습니다.", platform))
	}
	if !volumeAvailable {
		issues = append(issues, fmt.Sprintf("[%s] 용량/개수 정보가 없습니다.", platform))
	}
	if t.Columns.Brand && ourProducts == 0 {
		issues = append(issues, fmt.Sprintf("[%s] '%s' 브랜드 제품이 없습니다.", platform, ourBrand))
	}

	return issues
}

// Summaries builds per-file summaries of the normalized uploads.
func (s *Service) Summaries(tables []*product.Table, ourBrand string) []FileSummary {
	summaries := []FileSummary{}

	for _, t := range tables {
		if t.Empty() {
			continue
		}

		summary := FileSummary{
			Platform:      t.Records[0].Platform,
			TotalProducts: t.Len(),
		}
		if summary.Platform == "" {
			summary.Platform = "알 수 없음"
		}

		brands := make(map[string]bool)
		for _, r := range t.Records {
			if r.Brand != "" {
				brands[r.Brand] = true
			}
			if r.Brand == ourBrand {
				summary.OurProducts++
			}
			if r.LowestPrice != nil {
				summary.HasPriceInfo = true
			}
			if r.VolumeML != nil {
				summary.HasVolumeInfo = true
			}
		}
		summary.UniqueBrands = len(brands)

		summaries = append(summaries, summary)
	}

	return summaries
}
