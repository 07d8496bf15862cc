package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGramps()
	c.normalizeMatching()
	c.normalizeNormalize()
	c.normalizeExtraction()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGramps() {
	c.Gramps.URL = strings.TrimRight(strings.TrimSpace(c.Gramps.URL), "/")
	c.Gramps.Username = strings.TrimSpace(c.Gramps.Username)
	c.Gramps.Password = strings.TrimSpace(c.Gramps.Password)
	if c.Gramps.Password == "" {
		if value, ok := os.LookupEnv("GRAMPS_PASSWORD"); ok {
			c.Gramps.Password = strings.TrimSpace(value)
		}
	}
	if c.Gramps.RequestTimeout <= 0 {
		c.Gramps.RequestTimeout = defaultGrampsRequestTimeout
	}
	if c.Gramps.RatePerSecond <= 0 {
		c.Gramps.RatePerSecond = defaultGrampsRatePerSecond
	}
	if c.Gramps.RateBurst <= 0 {
		c.Gramps.RateBurst = defaultGrampsRateBurst
	}
	if c.Gramps.CacheTTLSeconds <= 0 {
		c.Gramps.CacheTTLSeconds = defaultGrampsCacheTTLSeconds
	}
}

func (c *Config) normalizeMatching() {
	m := &c.Matching
	if m.MinScore <= 0 {
		m.MinScore = defaultMatchMinScore
	}
	if m.ReviewScore <= 0 {
		m.ReviewScore = defaultMatchReviewScore
	}
	if m.ConfidentScore <= 0 {
		m.ConfidentScore = defaultMatchConfidentScore
	}
	if m.ExactScore <= 0 {
		m.ExactScore = defaultMatchExactScore
	}
	if m.SurnameWeight <= 0 {
		m.SurnameWeight = defaultSurnameWeight
	}
	if m.FirstNameWeight <= 0 {
		m.FirstNameWeight = defaultFirstNameWeight
	}
	if m.TokenSortWeight <= 0 {
		m.TokenSortWeight = defaultTokenSortWeight
	}
	if m.PartialRatioScale <= 0 {
		m.PartialRatioScale = defaultPartialRatioScale
	}
	if m.ExactSurnameBonus < 0 {
		m.ExactSurnameBonus = defaultExactSurnameBonus
	}
	if m.ExactFirstBonus < 0 {
		m.ExactFirstBonus = defaultExactFirstBonus
	}
	if m.MaxCandidates <= 0 {
		m.MaxCandidates = defaultMaxCandidates
	}
}

func (c *Config) normalizeNormalize() {
	n := &c.Normalize
	if n.IdentityFact <= 0 {
		n.IdentityFact = defaultIdentityFact
	}
	if n.GenderInference <= 0 {
		n.GenderInference = defaultGenderInference
	}
	if n.ReciprocalScale <= 0 {
		n.ReciprocalScale = defaultReciprocalScale
	}
	if n.SpouseGender <= 0 {
		n.SpouseGender = defaultSpouseGender
	}
	if n.SpouseRelationship <= 0 {
		n.SpouseRelationship = defaultSpouseRelationship
	}
	if n.MarriedName <= 0 {
		n.MarriedName = defaultMarriedName
	}
	if n.InferredMaiden <= 0 {
		n.InferredMaiden = defaultInferredMaiden
	}
	if n.SiblingInLaw <= 0 {
		n.SiblingInLaw = defaultSiblingInLaw
	}
}

func (c *Config) normalizeExtraction() {
	c.Extraction.APIKey = strings.TrimSpace(c.Extraction.APIKey)
	if c.Extraction.APIKey == "" {
		if value, ok := os.LookupEnv("LINEAGE_LLM_API_KEY"); ok {
			c.Extraction.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Extraction.APIKey = strings.TrimSpace(value)
		}
	}
	c.Extraction.BaseURL = strings.TrimRight(strings.TrimSpace(c.Extraction.BaseURL), "/")
	if c.Extraction.BaseURL == "" {
		c.Extraction.BaseURL = defaultExtractionBaseURL
	}
	c.Extraction.Model = strings.TrimSpace(c.Extraction.Model)
	if c.Extraction.Model == "" {
		c.Extraction.Model = defaultExtractionModel
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = defaultExtractionTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
