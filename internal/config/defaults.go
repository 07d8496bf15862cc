package config

const (
	defaultDataDir = "~/.local/share/lineage"
	defaultLogDir  = "~/.local/share/lineage/logs"

	defaultGrampsRequestTimeout  = 30
	defaultGrampsRatePerSecond   = 5.0
	defaultGrampsRateBurst       = 5
	defaultGrampsCacheTTLSeconds = 300

	defaultMatchMinScore       = 0.40
	defaultMatchReviewScore    = 0.60
	defaultMatchConfidentScore = 0.85
	defaultMatchExactScore     = 0.99
	defaultSurnameWeight       = 0.6
	defaultFirstNameWeight     = 0.3
	defaultTokenSortWeight     = 0.1
	defaultPartialRatioScale   = 0.9
	defaultExactSurnameBonus   = 0.10
	defaultExactFirstBonus     = 0.05
	defaultMaxCandidates       = 5

	defaultIdentityFact       = 0.95
	defaultGenderInference    = 0.95
	defaultReciprocalScale    = 0.95
	defaultSpouseGender       = 0.85
	defaultSpouseRelationship = 0.95
	defaultMarriedName        = 0.85
	defaultInferredMaiden     = 0.75
	defaultSiblingInLaw       = 0.75

	defaultExtractionBaseURL = "https://api.openai.com/v1"
	defaultExtractionModel   = "gpt-4o-mini"
	defaultExtractionTimeout = 120

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Gramps: Gramps{
			RequestTimeout:  defaultGrampsRequestTimeout,
			RatePerSecond:   defaultGrampsRatePerSecond,
			RateBurst:       defaultGrampsRateBurst,
			CacheTTLSeconds: defaultGrampsCacheTTLSeconds,
		},
		Matching: Matching{
			MinScore:          defaultMatchMinScore,
			ReviewScore:       defaultMatchReviewScore,
			ConfidentScore:    defaultMatchConfidentScore,
			ExactScore:        defaultMatchExactScore,
			SurnameWeight:     defaultSurnameWeight,
			FirstNameWeight:   defaultFirstNameWeight,
			TokenSortWeight:   defaultTokenSortWeight,
			PartialRatioScale: defaultPartialRatioScale,
			ExactSurnameBonus: defaultExactSurnameBonus,
			ExactFirstBonus:   defaultExactFirstBonus,
			MaxCandidates:     defaultMaxCandidates,
		},
		Normalize: Normalize{
			IdentityFact:       defaultIdentityFact,
			GenderInference:    defaultGenderInference,
			ReciprocalScale:    defaultReciprocalScale,
			SpouseGender:       defaultSpouseGender,
			SpouseRelationship: defaultSpouseRelationship,
			MarriedName:        defaultMarriedName,
			InferredMaiden:     defaultInferredMaiden,
			SiblingInLaw:       defaultSiblingInLaw,
		},
		Extraction: Extraction{
			BaseURL:        defaultExtractionBaseURL,
			Model:          defaultExtractionModel,
			TimeoutSeconds: defaultExtractionTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
