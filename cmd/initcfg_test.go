package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ballotwatch/candidate-sync/internal/config"
)

func TestWriteStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := &config.Config{
		FEC: config.FECConfig{BaseURL: "https://api.open.fec.gov/v1", PerPage: 100},
		Log: config.LogConfig{Level: "info", Format: "json"},
	}

	require.NoError(t, writeStarterConfig(path, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got config.Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, c.FEC.BaseURL, got.FEC.BaseURL)
	assert.Equal(t, "info", got.Log.Level)

	// Second write refuses to clobber.
	err = writeStarterConfig(path, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}
