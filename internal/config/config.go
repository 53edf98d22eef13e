package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"zkhunt/internal/domain"
)

// DefaultPath is where the runtime looks for the game configuration.
const DefaultPath = "data/zkhunt_config.json"

const (
	BackendGroth16 = "groth16"
	BackendPlonk   = "plonk"
)

// Env keys read from the Nakama runtime environment.
const (
	EnvTotalRounds   = "zkhunt_total_rounds"
	EnvSessionTTL    = "zkhunt_session_ttl_seconds"
	EnvProofBackend  = "zkhunt_proof_backend"
	EnvMoveVKPath    = "zkhunt_move_vk_path"
	EnvSearchVKPath  = "zkhunt_search_vk_path"
	EnvHubURL        = "zkhunt_hub_url"
	EnvHubSecret     = "zkhunt_hub_secret"
	EnvHubIssuer     = "zkhunt_hub_issuer"
	EnvHubTimeoutSec = "zkhunt_hub_timeout_seconds"
)

type GameConfig struct {
	TotalRounds       int    `json:"total_rounds"`
	SessionTTLSeconds int    `json:"session_ttl_seconds"`
	ProofBackend      string `json:"proof_backend"`
	MoveVKPath        string `json:"move_vk_path"`
	SearchVKPath      string `json:"search_vk_path"`
	// HubURL is the ranking service endpoint. Empty disables match notifications.
	HubURL            string `json:"hub_url"`
	HubSecret         string `json:"hub_secret"`
	HubIssuer         string `json:"hub_issuer"`
	HubTimeoutSeconds int    `json:"hub_timeout_seconds"`
}

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		TotalRounds:       domain.DefaultTotalRounds,
		SessionTTLSeconds: int((30 * 24 * time.Hour).Seconds()),
		ProofBackend:      BackendGroth16,
		MoveVKPath:        "data/keys/jungle_move.vk",
		SearchVKPath:      "data/keys/search_response.vk",
		HubIssuer:         "zkhunt",
		HubTimeoutSeconds: 5,
	}
}

// SessionTTL returns the session expiry window.
func (c GameConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// HubTimeout returns the per-request timeout for the ranking service.
func (c GameConfig) HubTimeout() time.Duration {
	return time.Duration(c.HubTimeoutSeconds) * time.Second
}

// Validate rejects configurations the game rules cannot run with.
func (c GameConfig) Validate() error {
	var errs []error
	if err := domain.ValidateTotalRounds(c.TotalRounds); err != nil {
		errs = append(errs, fmt.Errorf("total_rounds=%d: %w", c.TotalRounds, err))
	}
	if c.SessionTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("session_ttl_seconds must be positive, got %d", c.SessionTTLSeconds))
	}
	switch c.ProofBackend {
	case BackendGroth16, BackendPlonk:
	default:
		errs = append(errs, fmt.Errorf("unknown proof_backend %q", c.ProofBackend))
	}
	if c.HubURL != "" && c.HubSecret == "" {
		errs = append(errs, errors.New("hub_secret is required when hub_url is set"))
	}
	if c.HubURL != "" && c.HubTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("hub_timeout_seconds must be positive when hub_url is set, got %d", c.HubTimeoutSeconds))
	}
	return errors.Join(errs...)
}

// ApplyEnv overrides fields from runtime environment values.
// Unparseable numbers are reported and leave the field unchanged.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	var errs []error
	setInt := func(key string, dst *int) {
		val, ok := env[key]
		if !ok || val == "" {
			return
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = i
	}
	setString := func(key string, dst *string) {
		if val, ok := env[key]; ok && val != "" {
			*dst = val
		}
	}

	setInt(EnvTotalRounds, &c.TotalRounds)
	setInt(EnvSessionTTL, &c.SessionTTLSeconds)
	setString(EnvProofBackend, &c.ProofBackend)
	setString(EnvMoveVKPath, &c.MoveVKPath)
	setString(EnvSearchVKPath, &c.SearchVKPath)
	setString(EnvHubURL, &c.HubURL)
	setString(EnvHubSecret, &c.HubSecret)
	setString(EnvHubIssuer, &c.HubIssuer)
	setInt(EnvHubTimeoutSec, &c.HubTimeoutSeconds)
	return errors.Join(errs...)
}

// Parse decodes a JSON config on top of the defaults.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, nil
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from path once, applies env
// overrides and validates the result. A missing file falls back to defaults.
func LoadGameConfig(path string, env map[string]string) error {
	loadOnce.Do(func() {
		c := Default()
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		default:
			if c, err = Parse(data); err != nil {
				loadErr = err
				return
			}
		}

		if err := c.ApplyEnv(env); err != nil {
			loadErr = fmt.Errorf("invalid game config env: %w", err)
			return
		}
		if err := c.Validate(); err != nil {
			loadErr = fmt.Errorf("invalid game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or defaults before a load.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}
