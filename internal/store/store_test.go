package store_test

import (
	"context"
	"testing"

	"lineage/internal/facts"
	"lineage/internal/store"
	"lineage/internal/testsupport"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return testsupport.MustOpenStore(t, cfg)
}

func TestObituaryLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	obituary, err := st.NewObituary(ctx, "clipping", "Helen Kowalski", "Helen Kowalski passed away.")
	if err != nil {
		t.Fatalf("NewObituary: %v", err)
	}
	if obituary.ID == "" || obituary.CreatedAt.IsZero() {
		t.Fatalf("obituary missing id or timestamp: %+v", obituary)
	}

	loaded, err := st.GetObituary(ctx, obituary.ID)
	if err != nil {
		t.Fatalf("GetObituary: %v", err)
	}
	if loaded == nil || loaded.SubjectName != "Helen Kowalski" || loaded.Source != "clipping" {
		t.Fatalf("loaded obituary = %+v", loaded)
	}

	if missing, err := st.GetObituary(ctx, "nope"); err != nil || missing != nil {
		t.Fatalf("missing obituary = %+v, %v, want nil, nil", missing, err)
	}

	listed, err := st.ListObituaries(ctx)
	if err != nil {
		t.Fatalf("ListObituaries: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d obituaries, want 1", len(listed))
	}

	removed, err := st.RemoveObituary(ctx, obituary.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveObituary = %v, %v", removed, err)
	}
	if again, _ := st.RemoveObituary(ctx, obituary.ID); again {
		t.Error("second remove reported a deletion")
	}
}

func TestReplaceFactsIsAtomicSwap(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	first, err := st.InsertFacts(ctx, obituary.ID, []facts.Fact{
		{Type: facts.TypeDeathDate, Value: "2024-01-05", Confidence: 0.9},
		{Type: facts.TypeLocation, Value: "Milwaukee", Confidence: 0.8},
	})
	if err != nil {
		t.Fatalf("InsertFacts: %v", err)
	}
	if first[0].ID == 0 || first[1].ID == 0 {
		t.Fatalf("fact ids not assigned: %+v", first)
	}

	replaced, err := st.ReplaceFacts(ctx, obituary.ID, []facts.Fact{
		{Type: facts.TypeDeathDate, Value: "2024-01-05", Normalized: true, Confidence: 0.9},
		{Type: facts.TypeGender, Value: "female", Normalized: true, Confidence: 0.95},
		{Type: facts.TypeRelationship, PersonName: "Walter Kowalski", Relationship: "husband", Confidence: 0.9},
	})
	if err != nil {
		t.Fatalf("ReplaceFacts: %v", err)
	}
	if len(replaced) != 3 {
		t.Fatalf("replaced %d facts, want 3", len(replaced))
	}

	current, err := st.FactsForObituary(ctx, obituary.ID)
	if err != nil {
		t.Fatalf("FactsForObituary: %v", err)
	}
	if len(current) != 3 {
		t.Fatalf("stored %d facts after replace, want 3", len(current))
	}
	for _, f := range current {
		if f.Type == facts.TypeLocation {
			t.Errorf("replaced fact survived: %+v", f)
		}
	}

	fact, err := st.GetFact(ctx, replaced[2].ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if fact == nil || fact.Relationship != "husband" || fact.PersonName != "Walter Kowalski" {
		t.Fatalf("round-tripped fact = %+v", fact)
	}
}

func TestPersonResolutionRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	res, err := st.InsertPersonResolution(ctx, &store.PersonResolution{
		ObituaryID: obituary.ID,
		PersonName: "Walter Kowalski",
		Role:       facts.RoleSpouse,
		Status:     store.ResolutionPending,
		MatchScore: 0.72,
		Candidates: []store.Candidate{
			{Handle: "P0001", Name: "Walter Kowalski", Score: 0.72},
			{Handle: "P0002", Name: "Walt Kowalske", Score: 0.55, MatchedMaidenName: true},
		},
	})
	if err != nil {
		t.Fatalf("InsertPersonResolution: %v", err)
	}
	if len(res.Candidates) != 2 || !res.Candidates[1].MatchedMaidenName {
		t.Fatalf("candidates did not round-trip: %+v", res.Candidates)
	}

	res.Status = store.ResolutionMatched
	res.GrampsHandle = "P0001"
	res.MatchMethod = store.MatchFuzzy
	if err := st.UpdatePersonResolution(ctx, res); err != nil {
		t.Fatalf("UpdatePersonResolution: %v", err)
	}

	byName, err := st.PersonResolutionByName(ctx, obituary.ID, "Walter Kowalski")
	if err != nil {
		t.Fatalf("PersonResolutionByName: %v", err)
	}
	if byName.Status != store.ResolutionMatched || byName.GrampsHandle != "P0001" {
		t.Fatalf("updated resolution = %+v", byName)
	}

	pending, err := st.PersonResolutionsForObituary(ctx, obituary.ID, store.ResolutionPending)
	if err != nil {
		t.Fatalf("PersonResolutionsForObituary: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending filter returned %d rows, want 0", len(pending))
	}
}

func TestFactAuditFieldsRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	inserted, err := st.InsertFacts(ctx, obituary.ID, []facts.Fact{
		{Type: facts.TypeGender, PersonName: "Walter Kowalski", Value: "male",
			Inferred: true, InferenceBasis: `gendered relationship term "husband"`, Confidence: 0.85},
		{Type: facts.TypeDeathDate, Value: "2024-01-05", Confidence: 0.95},
	})
	if err != nil {
		t.Fatalf("InsertFacts: %v", err)
	}

	gender, err := st.GetFact(ctx, inserted[0].ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if !gender.Inferred || gender.InferenceBasis == "" {
		t.Fatalf("inference fields lost: %+v", gender)
	}
	if gender.Resolution != facts.Unresolved {
		t.Fatalf("new fact resolution = %s, want %s", gender.Resolution, facts.Unresolved)
	}

	direct, err := st.GetFact(ctx, inserted[1].ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if direct.Inferred || direct.InferenceBasis != "" {
		t.Fatalf("stated fact marked inferred: %+v", direct)
	}

	if err := st.SetFactResolutionStatus(ctx, inserted[1].ID, facts.Conflicting); err != nil {
		t.Fatalf("SetFactResolutionStatus: %v", err)
	}
	direct, err = st.GetFact(ctx, inserted[1].ID)
	if err != nil {
		t.Fatalf("GetFact: %v", err)
	}
	if direct.Resolution != facts.Conflicting {
		t.Fatalf("stamped resolution = %s, want %s", direct.Resolution, facts.Conflicting)
	}
}

func TestResolutionOverridesRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	res, err := st.InsertPersonResolution(ctx, &store.PersonResolution{
		ObituaryID: obituary.ID,
		PersonName: "Walter Kowalski",
		Role:       facts.RoleSpouse,
		Status:     store.ResolutionPending,
	})
	if err != nil {
		t.Fatalf("InsertPersonResolution: %v", err)
	}

	res.Status = store.ResolutionRejected
	res.FirstNameOverride = "Walt"
	res.SurnameOverride = "Kowalsky"
	res.GenderOverride = "male"
	if err := st.UpdatePersonResolution(ctx, res); err != nil {
		t.Fatalf("UpdatePersonResolution: %v", err)
	}

	loaded, err := st.PersonResolutionByName(ctx, obituary.ID, "Walter Kowalski")
	if err != nil {
		t.Fatalf("PersonResolutionByName: %v", err)
	}
	if loaded.Status != store.ResolutionRejected {
		t.Errorf("status = %s, want %s", loaded.Status, store.ResolutionRejected)
	}
	if loaded.FirstNameOverride != "Walt" || loaded.SurnameOverride != "Kowalsky" || loaded.GenderOverride != "male" {
		t.Errorf("overrides did not round-trip: %+v", loaded)
	}
	if parsed, ok := store.ParseResolutionStatus("rejected"); !ok || parsed != store.ResolutionRejected {
		t.Errorf("ParseResolutionStatus(rejected) = %s, %v", parsed, ok)
	}

	inserted, err := st.InsertFacts(ctx, obituary.ID, []facts.Fact{
		{Type: facts.TypeBirthDate, PersonName: "Walter Kowalski", Value: "around 1950"},
	})
	if err != nil {
		t.Fatalf("InsertFacts: %v", err)
	}
	fr, err := st.InsertFactResolution(ctx, &store.FactResolution{
		ObituaryID:         obituary.ID,
		FactID:             inserted[0].ID,
		PersonResolutionID: res.ID,
		Status:             store.FactPending,
		Action:             store.ActionAdd,
	})
	if err != nil {
		t.Fatalf("InsertFactResolution: %v", err)
	}
	fr.ValueOverride = "1949"
	if err := st.UpdateFactResolution(ctx, fr); err != nil {
		t.Fatalf("UpdateFactResolution: %v", err)
	}
	loadedFR, err := st.FactResolutionForFact(ctx, inserted[0].ID)
	if err != nil {
		t.Fatalf("FactResolutionForFact: %v", err)
	}
	if loadedFR.ValueOverride != "1949" {
		t.Errorf("value override = %q, want 1949", loadedFR.ValueOverride)
	}
}

func TestApproveAllPendingSkipsSkipActions(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	inserted, err := st.InsertFacts(ctx, obituary.ID, []facts.Fact{
		{Type: facts.TypeDeathDate, Value: "2024-01-05"},
		{Type: facts.TypeLocation, Value: "Milwaukee"},
		{Type: facts.TypeGender, Value: "female"},
	})
	if err != nil {
		t.Fatalf("InsertFacts: %v", err)
	}
	personRes, err := st.InsertPersonResolution(ctx, &store.PersonResolution{
		ObituaryID: obituary.ID,
		PersonName: "Helen Kowalski",
		Status:     store.ResolutionMatched,
	})
	if err != nil {
		t.Fatalf("InsertPersonResolution: %v", err)
	}

	for i, action := range []store.Action{store.ActionAdd, store.ActionUpdate, store.ActionSkip} {
		if _, err := st.InsertFactResolution(ctx, &store.FactResolution{
			ObituaryID:         obituary.ID,
			FactID:             inserted[i].ID,
			PersonResolutionID: personRes.ID,
			Status:             store.FactPending,
			Action:             action,
		}); err != nil {
			t.Fatalf("InsertFactResolution: %v", err)
		}
	}

	changed, err := st.ApproveAllPending(ctx, obituary.ID)
	if err != nil {
		t.Fatalf("ApproveAllPending: %v", err)
	}
	if changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}

	remaining, err := st.FactResolutionsForObituary(ctx, obituary.ID, store.FactPending)
	if err != nil {
		t.Fatalf("FactResolutionsForObituary: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Action != store.ActionSkip {
		t.Fatalf("remaining pending = %+v, want only the skip action", remaining)
	}
}

func TestBatchLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	batch, err := st.NewBatch(ctx, obituary.ID)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if batch.Status != store.BatchPending {
		t.Fatalf("new batch status = %s", batch.Status)
	}

	batch.Status = store.BatchCompleted
	batch.PersonsCreated = 2
	batch.FactsCommitted = 5
	batch.FamiliesCreated = 1
	if err := st.UpdateBatch(ctx, batch); err != nil {
		t.Fatalf("UpdateBatch: %v", err)
	}

	latest, err := st.LatestBatchForObituary(ctx, obituary.ID)
	if err != nil {
		t.Fatalf("LatestBatchForObituary: %v", err)
	}
	if latest.Status != store.BatchCompleted || latest.FactsCommitted != 5 {
		t.Fatalf("latest batch = %+v", latest)
	}
}

func TestRecordExternalIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	obituary := testsupport.NewObituary(t, st, "Helen Kowalski", "text")

	created, err := st.RecordExternal(ctx, store.RecordEvent, "P0001/Death", obituary.ID)
	if err != nil || !created {
		t.Fatalf("first RecordExternal = %v, %v", created, err)
	}
	again, err := st.RecordExternal(ctx, store.RecordEvent, "P0001/Death", obituary.ID)
	if err != nil {
		t.Fatalf("second RecordExternal: %v", err)
	}
	if again {
		t.Error("duplicate mapping reported as created")
	}

	has, err := st.HasExternal(ctx, store.RecordEvent, "P0001/Death", obituary.ID)
	if err != nil || !has {
		t.Fatalf("HasExternal = %v, %v", has, err)
	}

	mappings, err := st.MappingsForObituary(ctx, obituary.ID, store.RecordEvent)
	if err != nil {
		t.Fatalf("MappingsForObituary: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("mappings = %d, want 1", len(mappings))
	}
}
