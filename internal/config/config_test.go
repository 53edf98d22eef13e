package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkhunt/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 2, c.TotalRounds)
	assert.Equal(t, 30*24*time.Hour, c.SessionTTL())
	assert.Equal(t, BackendGroth16, c.ProofBackend)
}

func TestParseKeepsDefaultsForMissingFields(t *testing.T) {
	c, err := Parse([]byte(`{"total_rounds": 4, "hub_url": "https://hub.example/matches", "hub_secret": "s"}`))
	require.NoError(t, err)
	assert.Equal(t, 4, c.TotalRounds)
	assert.Equal(t, "data/keys/jungle_move.vk", c.MoveVKPath)
	assert.NoError(t, c.Validate())
}

func TestParseRejectsBadJSON(t *testing.T) {
	_, err := Parse([]byte(`{"total_rounds": "two"}`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GameConfig)
	}{
		{"odd rounds", func(c *GameConfig) { c.TotalRounds = 3 }},
		{"zero rounds", func(c *GameConfig) { c.TotalRounds = 0 }},
		{"zero ttl", func(c *GameConfig) { c.SessionTTLSeconds = 0 }},
		{"unknown backend", func(c *GameConfig) { c.ProofBackend = "stark" }},
		{"hub without secret", func(c *GameConfig) { c.HubURL = "https://hub.example" }},
		{"hub without timeout", func(c *GameConfig) {
			c.HubURL, c.HubSecret, c.HubTimeoutSeconds = "https://hub.example", "s", 0
		}},
		{"hub with negative timeout", func(c *GameConfig) {
			c.HubURL, c.HubSecret, c.HubTimeoutSeconds = "https://hub.example", "s", -1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	c := Default()
	c.TotalRounds = 3
	assert.ErrorIs(t, c.Validate(), domain.ErrInvalidRoundCount)

	c = Default()
	c.HubTimeoutSeconds = 0
	assert.NoError(t, c.Validate(), "timeout is irrelevant without a hub")
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(map[string]string{
		EnvTotalRounds:  "6",
		EnvProofBackend: BackendPlonk,
		EnvHubURL:       "https://hub.example",
		EnvHubSecret:    "secret",
		EnvSessionTTL:   "",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, c.TotalRounds)
	assert.Equal(t, BackendPlonk, c.ProofBackend)
	assert.Equal(t, "https://hub.example", c.HubURL)
	assert.Equal(t, Default().SessionTTLSeconds, c.SessionTTLSeconds)

	err = c.ApplyEnv(map[string]string{EnvHubTimeoutSec: "soon"})
	assert.Error(t, err)
	assert.Equal(t, 5, c.HubTimeoutSeconds)
}
