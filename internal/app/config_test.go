package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg := Config{Addr: "0.0.0.0:8080"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	// An explicitly configured address wins over PORT.
	cfg = Config{Addr: "127.0.0.1:3000"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
}
