package gramps

import "strings"

// Event types and attribute names the engine reads and writes.
const (
	EventDeath = "Death"
	EventBirth = "Birth"

	AttrMaidenName = "Maiden Name"
	AttrLocation   = "Location"
)

// Surname is one entry in a person's surname list.
type Surname struct {
	Surname string `json:"surname"`
	Primary bool   `json:"primary,omitempty"`
}

// Name is a Gramps name record.
type Name struct {
	FirstName string    `json:"first_name"`
	Surnames  []Surname `json:"surname_list,omitempty"`
}

// Attribute is a typed key/value attached to a person.
type Attribute struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// EventRef links a person to an event record.
type EventRef struct {
	Ref string `json:"ref"`
}

// Person is the subset of the Gramps person record the engine reads
// and writes. Gender uses the Gramps codes: 0 female, 1 male, 2 unknown.
type Person struct {
	Handle           string      `json:"handle,omitempty"`
	GrampsID         string      `json:"gramps_id,omitempty"`
	PrimaryName      Name        `json:"primary_name"`
	Gender           int         `json:"gender"`
	EventRefs        []EventRef  `json:"event_ref_list,omitempty"`
	FamilyList       []string    `json:"family_list,omitempty"`
	ParentFamilyList []string    `json:"parent_family_list,omitempty"`
	Attributes       []Attribute `json:"attribute_list,omitempty"`
}

// DisplayName renders the person as "First Surname".
func (p *Person) DisplayName() string {
	parts := make([]string, 0, 2)
	if first := strings.TrimSpace(p.PrimaryName.FirstName); first != "" {
		parts = append(parts, first)
	}
	if surname := p.Surname(); surname != "" {
		parts = append(parts, surname)
	}
	return strings.Join(parts, " ")
}

// Surname returns the primary surname, falling back to the first entry.
func (p *Person) Surname() string {
	for _, s := range p.PrimaryName.Surnames {
		if s.Primary {
			return strings.TrimSpace(s.Surname)
		}
	}
	if len(p.PrimaryName.Surnames) > 0 {
		return strings.TrimSpace(p.PrimaryName.Surnames[0].Surname)
	}
	return ""
}

// Attribute returns the value of the named attribute.
func (p *Person) Attribute(attrType string) (string, bool) {
	for _, a := range p.Attributes {
		if strings.EqualFold(a.Type, attrType) {
			return a.Value, true
		}
	}
	return "", false
}

// NewPerson builds a person record from name parts and a gender code.
func NewPerson(firstName, surname string, gender int) *Person {
	person := &Person{
		PrimaryName: Name{FirstName: strings.TrimSpace(firstName)},
		Gender:      gender,
	}
	if surname = strings.TrimSpace(surname); surname != "" {
		person.PrimaryName.Surnames = []Surname{{Surname: surname, Primary: true}}
	}
	return person
}

// Event is a Gramps event record.
type Event struct {
	Handle      string `json:"handle,omitempty"`
	GrampsID    string `json:"gramps_id,omitempty"`
	Type        string `json:"type"`
	Date        *Date  `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// ChildRef links a family to a child person record.
type ChildRef struct {
	Ref string `json:"ref"`
}

// Family is a Gramps family record.
type Family struct {
	Handle       string     `json:"handle,omitempty"`
	GrampsID     string     `json:"gramps_id,omitempty"`
	FatherHandle string     `json:"father_handle,omitempty"`
	MotherHandle string     `json:"mother_handle,omitempty"`
	ChildRefs    []ChildRef `json:"child_ref_list,omitempty"`
}

// HasChild reports whether the family already references the person.
func (f *Family) HasChild(handle string) bool {
	for _, ref := range f.ChildRefs {
		if ref.Ref == handle {
			return true
		}
	}
	return false
}

// SpousePair reports whether the family joins the two handles as
// parents, in either order.
func (f *Family) SpousePair(a, b string) bool {
	return (f.FatherHandle == a && f.MotherHandle == b) ||
		(f.FatherHandle == b && f.MotherHandle == a)
}
