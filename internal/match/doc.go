// Package match scores obituary person names against external person
// records. Scores live in [0, 1]; the configured thresholds partition
// them into confident matches, review candidates, and rejections.
package match
