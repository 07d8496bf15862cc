package extraction

const identityPrompt = `You are a genealogy expert. Identify the deceased and every other person named in this obituary.

SURNAME PATTERNS:
1. "Surname, First Name" at the start names the deceased.
2. "First (Spouse) Surname" means First carries the surname and Spouse is married to First.
3. Otherwise the surname is the last word of a full name.

Return ONLY valid JSON in this shape, no other text:
{
  "subject": {
    "full_name": "Full Name",
    "gender": "male/female/unknown",
    "death_date": "date as written, or null",
    "birth_date": "date as written, or null",
    "maiden_name": "Surname or null",
    "location": "place of residence or null"
  },
  "other_persons": [
    {"full_name": "Full Name"}
  ]
}

RULES:
- List every named person: spouses, children, grandchildren, siblings, in-laws.
- A first name alone is acceptable when no surname can be determined.
- "(nee Surname)" after the subject's name is the maiden name.
- Do not extract relationships or infer gender for other persons yet.

OBITUARY:
%s`

const relationshipPrompt = `You are a genealogy expert. Extract relationships and gender from this obituary.

PEOPLE ALREADY IDENTIFIED:
%s

THE DECEASED: %s

For each relationship phrase, report who is related to whom. The
relationship_type describes what person_b is to person_a: in "Maxine's
daughter Patricia", person_a is Maxine, person_b is Patricia, and the
type is daughter.

Return ONLY valid JSON in this shape, no other text:
{
  "relationships": [
    {
      "person_a": "Full Name",
      "person_b": "Full Name",
      "relationship_type": "daughter, son, husband, wife, father, mother, brother, sister, grandson, granddaughter, son_in_law, daughter_in_law, brother_in_law, sister_in_law, ...",
      "source_context": "exact phrase from the obituary"
    }
  ],
  "gender_facts": [
    {"person": "Full Name", "gender": "male/female"}
  ]
}

RULES:
- Use the exact names from the people list when possible.
- Record each relationship once, from the deceased's perspective when
  the deceased is involved. Do not add the reverse direction.
- Gender follows the relationship term: husband, father, brother, son
  are male; wife, mother, sister, daughter are female.
- "First (Spouse) Surname" means Spouse is married to First; the
  person in parentheses is usually the wife.

OBITUARY:
%s`

const inferencePrompt = `You are a genealogy expert. Derive additional relationships by logical inference.

PEOPLE:
%s

EXPLICIT RELATIONSHIPS:
%s

INFERENCE RULES:
1. "Name (Spouse) Surname" means Name and Spouse are married.
2. A son-in-law or daughter-in-law is the spouse of one of the subject's children.
3. A brother-in-law or sister-in-law whose surname matches a spouse's maiden name is that spouse's sibling.
4. An unmarried daughter carries her father's surname as maiden name.

Return ONLY valid JSON in this shape, no other text:
{
  "inferred_relationships": [
    {
      "person_a": "Full Name",
      "person_b": "Full Name",
      "relationship_type": "what person_b is to person_a",
      "confidence_score": 0.75,
      "inference_basis": "which rule and phrase supports this"
    }
  ],
  "inferred_facts": [
    {"person": "Full Name", "fact_type": "maiden_name", "fact_value": "Surname", "inference_basis": "which rule and phrase supports this"}
  ]
}

RULES:
- Only infer what follows logically from the explicit relationships.
- Confidence between 0.60 and 0.80.
- State the basis for every inference in one short sentence.
- Do not repeat relationships that are already explicit.
- Be conservative; return empty arrays when nothing can be derived.`
