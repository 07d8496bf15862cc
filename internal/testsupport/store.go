package testsupport

import (
	"context"
	"testing"

	"lineage/internal/config"
	"lineage/internal/store"
)

// MustOpenStore opens a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewObituary creates an obituary record for tests.
func NewObituary(t testing.TB, st *store.Store, subjectName, text string) *store.Obituary {
	t.Helper()

	obituary, err := st.NewObituary(context.Background(), "test", subjectName, text)
	if err != nil {
		t.Fatalf("store.NewObituary: %v", err)
	}
	return obituary
}
