// Package extraction turns raw obituary text into facts using an
// OpenAI-style chat endpoint. Extraction runs three passes: subject
// identity, explicit relationships with gender, and logical inference.
// Each pass expects a strict JSON response; code fences around the
// JSON are tolerated. For offline use, ReadFactsFile loads the same
// fact shapes from a JSON file without touching the LLM.
package extraction
