package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAllowedOrigins(t *testing.T) {
	t.Run("unset leaves origins empty", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "")
		cfg := Load()
		assert.Nil(t, cfg.AllowedOrigins)
	})

	t.Run("comma separated list is split and trimmed", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", "https://dashboard.example.com, https://admin.example.com ,")
		cfg := Load()
		assert.Equal(t, []string{
			"https://dashboard.example.com",
			"https://admin.example.com",
		}, cfg.AllowedOrigins)
	})

	t.Run("separators without values fall back to the default", func(t *testing.T) {
		t.Setenv("ALLOWED_ORIGINS", " , ")
		cfg := Load()
		assert.Nil(t, cfg.AllowedOrigins)
	})
}
