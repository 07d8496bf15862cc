// Package normalize rewrites an obituary's extracted fact set into a
// canonical form. Relationship terms are re-keyed to describe the
// related person rather than the subject, genders are inferred from
// gendered terms, parenthetical spouse mentions and maiden names are
// expanded into facts, and reciprocal relationships are materialized at
// scaled confidence. Running the passes a second time over their own
// output is a no-op.
package normalize
