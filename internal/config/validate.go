package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateNormalize(); err != nil {
		return err
	}
	if err := c.validateGramps(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	for key, value := range map[string]float64{
		"matching.min_score":       m.MinScore,
		"matching.review_score":    m.ReviewScore,
		"matching.confident_score": m.ConfidentScore,
		"matching.exact_score":     m.ExactScore,
	} {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	if m.MinScore > m.ReviewScore {
		return errors.New("matching.min_score must not exceed matching.review_score")
	}
	if m.ReviewScore > m.ConfidentScore {
		return errors.New("matching.review_score must not exceed matching.confident_score")
	}
	if m.SurnameWeight+m.FirstNameWeight+m.TokenSortWeight <= 0 {
		return errors.New("matching weights must sum to a positive value")
	}
	if m.PartialRatioScale <= 0 || m.PartialRatioScale > 1 {
		return errors.New("matching.partial_ratio_scale must be between 0 and 1")
	}
	if m.MaxCandidates <= 0 {
		return errors.New("matching.max_candidates must be positive")
	}
	return nil
}

func (c *Config) validateNormalize() error {
	n := c.Normalize
	for key, value := range map[string]float64{
		"normalize.identity_fact":       n.IdentityFact,
		"normalize.gender_inference":    n.GenderInference,
		"normalize.reciprocal_scale":    n.ReciprocalScale,
		"normalize.spouse_gender":       n.SpouseGender,
		"normalize.spouse_relationship": n.SpouseRelationship,
		"normalize.married_name":        n.MarriedName,
		"normalize.inferred_maiden":     n.InferredMaiden,
		"normalize.sibling_in_law":      n.SiblingInLaw,
	} {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}

func (c *Config) validateGramps() error {
	if c.Gramps.URL == "" {
		// Commands that talk to the external store reject an empty URL
		// themselves; local-only workflows remain usable.
		return nil
	}
	if c.Gramps.Username == "" {
		return errors.New("gramps.username must be set when gramps.url is configured")
	}
	if c.Gramps.Password == "" {
		return errors.New("gramps.password must be set when gramps.url is configured (or set GRAMPS_PASSWORD)")
	}
	return nil
}
