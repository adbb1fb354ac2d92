package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSConfig(t *testing.T) {
	t.Run("defaults to development dashboard origins", func(t *testing.T) {
		cfg := CORSConfig(nil)
		assert.Equal(t, []string{
			"http://localhost:3000",
			"http://localhost:8501",
		}, cfg.AllowOrigins)
	})

	t.Run("configured origins replace the defaults", func(t *testing.T) {
		origins := []string{"https://dashboard.example.com"}
		cfg := CORSConfig(origins)
		assert.Equal(t, origins, cfg.AllowOrigins)
		assert.Contains(t, cfg.AllowMethods, http.MethodPost)
	})
}
