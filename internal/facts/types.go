package facts

import (
	"strings"
	"time"
)

// Type classifies what a fact asserts about a person.
type Type string

const (
	TypePersonName        Type = "person_name"
	TypeDeathDate         Type = "death_date"
	TypeDeathAge          Type = "death_age"
	TypeBirthDate         Type = "birth_date"
	TypeGender            Type = "gender"
	TypeMaidenName        Type = "maiden_name"
	TypeRelationship      Type = "relationship"
	TypeMarriage          Type = "marriage"
	TypeLocation          Type = "location"
	TypeLocationBirth     Type = "location_birth"
	TypeLocationDeath     Type = "location_death"
	TypeLocationResidence Type = "location_residence"
	TypeSurvivedBy        Type = "survived_by"
	TypePrecededInDeath   Type = "preceded_in_death"
)

var allTypes = []Type{
	TypePersonName,
	TypeDeathDate,
	TypeDeathAge,
	TypeBirthDate,
	TypeGender,
	TypeMaidenName,
	TypeRelationship,
	TypeMarriage,
	TypeLocation,
	TypeLocationBirth,
	TypeLocationDeath,
	TypeLocationResidence,
	TypeSurvivedBy,
	TypePrecededInDeath,
}

var typeSet = func() map[Type]struct{} {
	set := make(map[Type]struct{}, len(allTypes))
	for _, t := range allTypes {
		set[t] = struct{}{}
	}
	return set
}()

// AllTypes returns the ordered list of known fact types.
func AllTypes() []Type {
	cp := make([]Type, len(allTypes))
	copy(cp, allTypes)
	return cp
}

// ParseType converts a string into a known Type.
func ParseType(value string) (Type, bool) {
	normalized := Type(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := typeSet[normalized]
	return normalized, ok
}

// Role describes a person's position relative to the obituary subject.
type Role string

const (
	RoleSubject     Role = "subject"
	RoleSpouse      Role = "spouse"
	RoleParent      Role = "parent"
	RoleChild       Role = "child"
	RoleSibling     Role = "sibling"
	RoleGrandparent Role = "grandparent"
	RoleGrandchild  Role = "grandchild"
	RoleInLaw       Role = "in_law"
	RoleOther       Role = "other"
)

var allRoles = []Role{
	RoleSubject,
	RoleSpouse,
	RoleParent,
	RoleChild,
	RoleSibling,
	RoleGrandparent,
	RoleGrandchild,
	RoleInLaw,
	RoleOther,
}

var roleSet = func() map[Role]struct{} {
	set := make(map[Role]struct{}, len(allRoles))
	for _, r := range allRoles {
		set[r] = struct{}{}
	}
	return set
}()

// AllRoles returns the ordered list of known roles.
func AllRoles() []Role {
	cp := make([]Role, len(allRoles))
	copy(cp, allRoles)
	return cp
}

// ParseRole converts a string into a known Role.
func ParseRole(value string) (Role, bool) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := roleSet[normalized]
	return normalized, ok
}

// Gender is the inferred gender of a person mentioned in an obituary.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender converts a string into a known Gender, defaulting to unknown.
func ParseGender(value string) Gender {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// GrampsCode maps a gender onto the numeric code the external store uses.
func (g Gender) GrampsCode() int {
	switch g {
	case GenderMale:
		return 1
	case GenderFemale:
		return 0
	default:
		return 2
	}
}

// ResolutionStatus tracks how far a single fact has progressed through
// reconciliation against the external store.
type ResolutionStatus string

const (
	Unresolved  ResolutionStatus = "unresolved"
	Resolved    ResolutionStatus = "resolved"
	Conflicting ResolutionStatus = "conflicting"
	Rejected    ResolutionStatus = "rejected"
)

// ParseResolutionStatus converts a string into a known ResolutionStatus,
// defaulting to unresolved.
func ParseResolutionStatus(value string) ResolutionStatus {
	switch ResolutionStatus(strings.ToLower(strings.TrimSpace(value))) {
	case Resolved:
		return Resolved
	case Conflicting:
		return Conflicting
	case Rejected:
		return Rejected
	default:
		return Unresolved
	}
}

// Fact is a single assertion extracted from an obituary.
//
// PersonName identifies who the fact describes; an empty PersonName means
// the obituary subject. For relationship facts the assertion reads
// "PersonName is Relationship of RelatedName", where an empty RelatedName
// again means the obituary subject.
//
// Inferred marks facts the pipeline derived rather than extracted;
// InferenceBasis says what the derivation rested on.
type Fact struct {
	ID             int64
	ObituaryID     string
	Type           Type
	PersonName     string
	Role           Role
	Value          string
	RelatedName    string
	Relationship   string
	Confidence     float64
	Normalized     bool
	Inferred       bool
	InferenceBasis string
	Resolution     ResolutionStatus
	CreatedAt      time.Time
}

// DescribesSubject reports whether the fact is about the obituary subject.
func (f Fact) DescribesSubject() bool {
	return strings.TrimSpace(f.PersonName) == ""
}

// Key returns a deduplication key covering the semantic identity of a fact.
func (f Fact) Key() string {
	return strings.ToLower(strings.Join([]string{
		string(f.Type),
		strings.TrimSpace(f.PersonName),
		strings.TrimSpace(f.Value),
		strings.TrimSpace(f.RelatedName),
		strings.TrimSpace(f.Relationship),
	}, "|"))
}
