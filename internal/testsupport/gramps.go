package testsupport

import (
	"context"
	"fmt"
	"sync"

	"lineage/internal/gramps"
)

// FakeGramps is an in-memory gramps.Service for resolution and commit
// tests. Records live in maps keyed by generated handles.
type FakeGramps struct {
	mu       sync.Mutex
	nextID   int
	Persons  map[string]*gramps.Person
	Events   map[string]*gramps.Event
	Families map[string]*gramps.Family

	// CreateErr, when set, is returned by every create call to
	// exercise retry behavior.
	CreateErr error
}

// NewFakeGramps returns an empty fake service.
func NewFakeGramps() *FakeGramps {
	return &FakeGramps{
		Persons:  make(map[string]*gramps.Person),
		Events:   make(map[string]*gramps.Event),
		Families: make(map[string]*gramps.Family),
	}
}

// AddPerson seeds a person record and returns its handle.
func (f *FakeGramps) AddPerson(person gramps.Person) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle := f.newHandle("P")
	person.Handle = handle
	f.Persons[handle] = &person
	return handle
}

func (f *FakeGramps) newHandle(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%04d", prefix, f.nextID)
}

func (f *FakeGramps) CheckConnection(context.Context) error { return nil }

func (f *FakeGramps) People(context.Context) ([]gramps.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gramps.Person, 0, len(f.Persons))
	for _, p := range f.Persons {
		out = append(out, *p)
	}
	return out, nil
}

func (f *FakeGramps) GetPerson(_ context.Context, handle string) (*gramps.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Persons[handle]
	if !ok {
		return nil, fmt.Errorf("person %s not found", handle)
	}
	cp := *p
	return &cp, nil
}

func (f *FakeGramps) CreatePerson(_ context.Context, person *gramps.Person) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	handle := f.newHandle("P")
	cp := *person
	cp.Handle = handle
	f.Persons[handle] = &cp
	return handle, nil
}

func (f *FakeGramps) UpdatePerson(_ context.Context, person *gramps.Person) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Persons[person.Handle]; !ok {
		return fmt.Errorf("person %s not found", person.Handle)
	}
	cp := *person
	f.Persons[person.Handle] = &cp
	return nil
}

func (f *FakeGramps) GetEvent(_ context.Context, handle string) (*gramps.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.Events[handle]
	if !ok {
		return nil, fmt.Errorf("event %s not found", handle)
	}
	cp := *event
	return &cp, nil
}

func (f *FakeGramps) CreateEvent(_ context.Context, event *gramps.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	handle := f.newHandle("E")
	cp := *event
	cp.Handle = handle
	f.Events[handle] = &cp
	return handle, nil
}

func (f *FakeGramps) GetFamily(_ context.Context, handle string) (*gramps.Family, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	family, ok := f.Families[handle]
	if !ok {
		return nil, fmt.Errorf("family %s not found", handle)
	}
	cp := *family
	return &cp, nil
}

func (f *FakeGramps) CreateFamily(_ context.Context, family *gramps.Family) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	handle := f.newHandle("F")
	cp := *family
	cp.Handle = handle
	f.Families[handle] = &cp
	return handle, nil
}

func (f *FakeGramps) UpdateFamily(_ context.Context, family *gramps.Family) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Families[family.Handle]; !ok {
		return fmt.Errorf("family %s not found", family.Handle)
	}
	cp := *family
	f.Families[family.Handle] = &cp
	return nil
}
