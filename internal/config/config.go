package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Gramps contains connection settings for the Gramps Web API.
type Gramps struct {
	URL             string  `toml:"url"`
	Username        string  `toml:"username"`
	Password        string  `toml:"password"`
	RequestTimeout  int     `toml:"request_timeout"`
	RatePerSecond   float64 `toml:"rate_per_second"`
	RateBurst       int     `toml:"rate_burst"`
	CacheTTLSeconds int     `toml:"cache_ttl_seconds"`
}

// Matching contains the fuzzy person matching thresholds and weights.
type Matching struct {
	MinScore       float64 `toml:"min_score"`
	ReviewScore    float64 `toml:"review_score"`
	ConfidentScore float64 `toml:"confident_score"`
	// ExactScore is the score at or above which a match is reported as
	// exact rather than fuzzy.
	ExactScore        float64 `toml:"exact_score"`
	SurnameWeight     float64 `toml:"surname_weight"`
	FirstNameWeight   float64 `toml:"first_name_weight"`
	TokenSortWeight   float64 `toml:"token_sort_weight"`
	PartialRatioScale float64 `toml:"partial_ratio_scale"`
	ExactSurnameBonus float64 `toml:"exact_surname_bonus"`
	ExactFirstBonus   float64 `toml:"exact_first_bonus"`
	MaxCandidates     int     `toml:"max_candidates"`
}

// Normalize contains the confidence constants used by the
// relationship normalization passes.
type Normalize struct {
	IdentityFact       float64 `toml:"identity_fact"`
	GenderInference    float64 `toml:"gender_inference"`
	ReciprocalScale    float64 `toml:"reciprocal_scale"`
	SpouseGender       float64 `toml:"spouse_gender"`
	SpouseRelationship float64 `toml:"spouse_relationship"`
	MarriedName        float64 `toml:"married_name"`
	InferredMaiden     float64 `toml:"inferred_maiden"`
	SiblingInLaw       float64 `toml:"sibling_in_law"`
}

// Extraction contains LLM connection settings for obituary fact extraction.
type Extraction struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lineage.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Gramps: Gramps Web API connection, rate limit, person cache
//   - Matching: fuzzy matcher thresholds, weights, and bonuses
//   - Normalize: relationship pass confidence constants
//   - Extraction: LLM settings for fact extraction
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Gramps     Gramps     `toml:"gramps"`
	Matching   Matching   `toml:"matching"`
	Normalize  Normalize  `toml:"normalize"`
	Extraction Extraction `toml:"extraction"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lineage/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lineage.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "lineage.db")
}

// CommitLockPath returns the lock file guarding commit runs.
func (c *Config) CommitLockPath() string {
	return filepath.Join(c.Paths.DataDir, "commit.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
