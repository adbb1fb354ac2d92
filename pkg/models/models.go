package models

import (
	"github.com/coder4052/market-analysis/pkg/analysis"
	"github.com/coder4052/market-analysis/pkg/normalize"
)

// ErrorResponse is the uniform error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UploadResponse is returned by the analysis upload endpoint.
type UploadResponse struct {
	Report   *analysis.Report        `json:"report"`
	Warnings []analysis.Warning      `json:"warnings"`
	Quality  normalize.QualityReport `json:"quality"`
	Saved    bool                    `json:"saved"`
	Filename string                  `json:"filename,omitempty"`
}

// CleanupResponse is returned by the report cleanup endpoint.
type CleanupResponse struct {
	Deleted int `json:"deleted"`
	Kept    int `json:"kept"`
}

// StorageStatusResponse reports the report store connection state.
type StorageStatusResponse struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	Repo      string `json:"repo"`
}
