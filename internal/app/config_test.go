package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		debug      bool
		version    string
	}{
		{name: "defaults", version: "dev"},
		{name: "explicit config file", configPath: "/etc/bsprep.yaml", version: "1.2.3"},
		{name: "debug only", debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.configPath, tt.debug, tt.version)

			assert.Equal(t, tt.configPath, cfg.ConfigPath)
			assert.Equal(t, tt.debug, cfg.Debug)
			assert.Equal(t, tt.version, cfg.Version)
			assert.Nil(t, cfg.Settings, "Settings should be nil before loading")
			assert.Nil(t, cfg.Env, "Env should be nil before loading")
		})
	}
}
