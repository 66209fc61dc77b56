/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		bind:          "127.0.0.1",
		port:          8080,
		createLimit:   100,
		roomTTL:       2 * time.Hour,
		sweepInterval: time.Hour,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "cert without key", mutate: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: "--tls-key"},
		{name: "key without cert", mutate: func(c *Config) { c.tlsKey = "key.pem" }, wantErr: "--tls-cert"},
		{name: "tls pair", mutate: func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }},
		{name: "port zero", mutate: func(c *Config) { c.port = 0 }, wantErr: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.port = 65536 }, wantErr: "invalid port"},
		{name: "zero ttl", mutate: func(c *Config) { c.roomTTL = 0 }, wantErr: "room ttl"},
		{name: "negative sweep", mutate: func(c *Config) { c.sweepInterval = -time.Second }, wantErr: "sweep interval"},
		{name: "no creates allowed", mutate: func(c *Config) { c.createLimit = 0 }, wantErr: "create limit"},
		{name: "relative base url", mutate: func(c *Config) { c.baseURL = "/santa" }, wantErr: "base url"},
		{name: "ftp base url", mutate: func(c *Config) { c.baseURL = "ftp://example.com" }, wantErr: "base url"},
		{name: "https base url", mutate: func(c *Config) { c.baseURL = "https://example.com/santa" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_BaseURLTrailingSlash(t *testing.T) {
	cfg := testConfig()
	cfg.baseURL = "https://example.com/santa/"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "https://example.com/santa", cfg.baseURL)
}

func TestConfig_Scheme(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmd_Defaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	assert.Equal(t, "shufflebox", cmd.Use)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 30, cfg.createLimit)
	assert.Equal(t, 2*time.Hour, cfg.roomTTL)
	assert.Equal(t, time.Hour, cfg.sweepInterval)
	assert.Empty(t, cfg.corsOrigins)
}

func TestNewCmd_Environment(t *testing.T) {
	t.Setenv("SHUFFLEBOX_PORT", "9090")
	t.Setenv("SHUFFLEBOX_ROOM_TTL", "30m")
	t.Setenv("SHUFFLEBOX_BASE_URL", "https://example.com")
	t.Setenv("SHUFFLEBOX_VERBOSE", "true")

	cfg := &Config{}
	_ = newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 30*time.Minute, cfg.roomTTL)
	assert.Equal(t, "https://example.com", cfg.baseURL)
	assert.True(t, cfg.verbose)
}

func TestNewCmd_RejectsInvalidFlags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--port", "0"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}
