package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"lineage/internal/facts"
	"lineage/internal/gramps"
	"lineage/internal/logging"
	"lineage/internal/match"
	"lineage/internal/services"
	"lineage/internal/store"
)

// Coordinator runs the resolution stage for one obituary at a time.
type Coordinator struct {
	store   *store.Store
	gramps  gramps.Service
	matcher *match.Matcher
	logger  *slog.Logger
}

// New builds a resolution coordinator.
func New(st *store.Store, svc gramps.Service, matcher *match.Matcher, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{store: st, gramps: svc, matcher: matcher, logger: logger}
}

// Summary reports what a resolution run decided.
type Summary struct {
	PersonsMatched   int
	PersonsPending   int
	PersonsCreateNew int
	FactsMatched     int
	FactsPending     int
	FactsSkipped     int
}

// Resolve matches every person in the obituary's fact set against the
// external store and assigns each fact an action. Existing resolutions
// are kept unless they previously failed, so reruns are safe after
// manual review decisions.
func (c *Coordinator) Resolve(ctx context.Context, obituaryID string) (*Summary, error) {
	ctx = services.WithObituaryID(services.WithStage(ctx, "resolve"), obituaryID)
	logger := c.logger.With(logging.String("obituary_id", obituaryID))

	obituary, err := c.store.GetObituary(ctx, obituaryID)
	if err != nil {
		return nil, err
	}
	if obituary == nil {
		return nil, services.Wrap(services.ErrNotFound, "resolve", "load", fmt.Sprintf("obituary %s not found", obituaryID), nil)
	}

	factSet, err := c.store.FactsForObituary(ctx, obituaryID)
	if err != nil {
		return nil, err
	}
	if len(factSet) == 0 {
		return nil, services.Wrap(services.ErrValidation, "resolve", "load", "obituary has no facts; run extraction first", nil)
	}

	pool, err := c.gramps.People(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("resolving persons", logging.Int("facts", len(factSet)), logging.Int("pool", len(pool)))

	summary := &Summary{}
	resolutions := make(map[string]*store.PersonResolution)
	for _, person := range collectPersons(obituary, factSet) {
		res, err := c.resolvePerson(ctx, obituaryID, person, pool)
		if err != nil {
			return nil, err
		}
		resolutions[strings.ToLower(person.name)] = res
		switch res.Status {
		case store.ResolutionMatched, store.ResolutionCommitted:
			summary.PersonsMatched++
		case store.ResolutionPending:
			summary.PersonsPending++
		case store.ResolutionCreateNew:
			summary.PersonsCreateNew++
		}
	}

	events := newEventCache(c.gramps)
	for _, fact := range factSet {
		res, err := c.resolveFact(ctx, fact, obituary, resolutions, pool, events)
		if err != nil {
			return nil, err
		}
		if res == nil {
			continue
		}
		switch {
		case res.Action == store.ActionSkip:
			summary.FactsSkipped++
		case res.Status == store.FactMatched:
			summary.FactsMatched++
		case res.Status == store.FactPending:
			summary.FactsPending++
		}
	}

	logger.Info("resolution complete",
		logging.Int("matched", summary.PersonsMatched),
		logging.Int("pending", summary.PersonsPending),
		logging.Int("create_new", summary.PersonsCreateNew),
		logging.Int("facts_pending", summary.FactsPending))
	return summary, nil
}

// person is one distinct individual referenced by the fact set.
type person struct {
	name   string
	role   facts.Role
	maiden string
}

// collectPersons gathers the subject plus every distinct person name in
// the fact set, keeping the most specific role seen for each. A maiden
// name fact attaches to its person so matching can try both surnames.
func collectPersons(obituary *store.Obituary, factSet []facts.Fact) []person {
	ordered := []person{{name: obituary.SubjectName, role: facts.RoleSubject}}
	index := map[string]int{strings.ToLower(obituary.SubjectName): 0}

	record := func(name string, role facts.Role) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if i, ok := index[key]; ok {
			if ordered[i].role == facts.RoleOther && role != facts.RoleOther && role != "" {
				ordered[i].role = role
			}
			return
		}
		if role == "" {
			role = facts.RoleOther
		}
		index[key] = len(ordered)
		ordered = append(ordered, person{name: name, role: role})
	}

	for _, f := range factSet {
		record(f.PersonName, f.Role)
		if f.Type == facts.TypeRelationship {
			record(f.RelatedName, facts.RoleOther)
		}
	}

	for _, f := range factSet {
		if f.Type != facts.TypeMaidenName || strings.TrimSpace(f.Value) == "" {
			continue
		}
		name := f.PersonName
		if f.DescribesSubject() {
			name = obituary.SubjectName
		}
		if i, ok := index[strings.ToLower(name)]; ok && ordered[i].maiden == "" {
			ordered[i].maiden = strings.TrimSpace(f.Value)
		}
	}
	return ordered
}

// resolvePerson scores one person against the pool and persists the
// outcome. An existing resolution short-circuits unless it failed.
func (c *Coordinator) resolvePerson(ctx context.Context, obituaryID string, p person, pool []gramps.Person) (*store.PersonResolution, error) {
	existing, err := c.store.PersonResolutionByName(ctx, obituaryID, p.name)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != store.ResolutionFailed {
		return existing, nil
	}

	candidates := c.scoreCandidates(match.Query{Name: p.name, MaidenName: p.maiden}, pool)

	res := &store.PersonResolution{
		ObituaryID: obituaryID,
		PersonName: p.name,
		Role:       p.role,
		Status:     store.ResolutionCreateNew,
	}
	if len(candidates) > 0 {
		top := candidates[0]
		switch {
		case c.matcher.BandFor(top.Score) == match.BandConfident:
			res.Status = store.ResolutionMatched
			res.GrampsHandle = top.Handle
			res.MatchScore = top.Score
			res.MatchedMaidenName = top.MatchedMaidenName
			res.MatchMethod = store.MatchFuzzy
			if c.matcher.IsExact(top.Score) {
				res.MatchMethod = store.MatchExact
			}
		default:
			res.Status = store.ResolutionPending
			res.Candidates = candidates
		}
	}

	if existing != nil {
		res.ID = existing.ID
		if err := c.store.UpdatePersonResolution(ctx, res); err != nil {
			return nil, err
		}
		return res, nil
	}
	return c.store.InsertPersonResolution(ctx, res)
}

// scoreCandidates returns the pool entries above the floor, best first,
// capped at the configured candidate limit.
func (c *Coordinator) scoreCandidates(query match.Query, pool []gramps.Person) []store.Candidate {
	var candidates []store.Candidate
	for i := range pool {
		p := &pool[i]
		display := p.DisplayName()
		if display == "" {
			continue
		}
		maiden, _ := p.Attribute(gramps.AttrMaidenName)
		score := c.matcher.ScorePerson(query, display, maiden)
		if c.matcher.BandFor(score.Value) == match.BandReject {
			continue
		}
		candidates = append(candidates, store.Candidate{
			Handle:            p.Handle,
			Name:              display,
			Score:             score.Value,
			MatchedMaidenName: score.MatchedMaidenName,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if limit := c.matcher.MaxCandidates(); len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// resolveFact assigns an action to one fact. Facts that already carry a
// non-failed resolution are left alone.
func (c *Coordinator) resolveFact(
	ctx context.Context,
	fact facts.Fact,
	obituary *store.Obituary,
	resolutions map[string]*store.PersonResolution,
	pool []gramps.Person,
	events *eventCache,
) (*store.FactResolution, error) {
	existing, err := c.store.FactResolutionForFact(ctx, fact.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != store.FactFailed {
		return existing, nil
	}

	personName := fact.PersonName
	if fact.DescribesSubject() {
		personName = obituary.SubjectName
	}
	personRes, ok := resolutions[strings.ToLower(personName)]
	if !ok {
		c.logger.Warn("skipping fact with no person resolution",
			logging.Int64("fact_id", fact.ID),
			logging.String("person", personName))
		return nil, nil
	}

	res := &store.FactResolution{
		ObituaryID:         fact.ObituaryID,
		FactID:             fact.ID,
		PersonResolutionID: personRes.ID,
	}
	c.decideFact(ctx, res, fact, personRes, pool, events)

	if existing != nil {
		res.ID = existing.ID
		if err := c.store.UpdateFactResolution(ctx, res); err != nil {
			return nil, err
		}
	} else {
		res, err = c.store.InsertFactResolution(ctx, res)
		if err != nil {
			return nil, err
		}
	}
	if err := c.stampFactOutcome(ctx, fact.ID, res); err != nil {
		return nil, err
	}
	return res, nil
}

// stampFactOutcome records the reconciliation outcome on the fact row.
// Pending facts stay unresolved until review or commit settles them.
func (c *Coordinator) stampFactOutcome(ctx context.Context, factID int64, res *store.FactResolution) error {
	var status facts.ResolutionStatus
	switch {
	case res.IsConflict:
		status = facts.Conflicting
	case res.Status == store.FactMatched:
		status = facts.Resolved
	default:
		return nil
	}
	return c.store.SetFactResolutionStatus(ctx, factID, status)
}

// decideFact fills in the action, status, and conflict data for a fact
// against its person's resolution.
func (c *Coordinator) decideFact(
	ctx context.Context,
	res *store.FactResolution,
	fact facts.Fact,
	personRes *store.PersonResolution,
	pool []gramps.Person,
	events *eventCache,
) {
	// subject-side relationship facts mirror a person-side fact; the
	// person-side one drives family creation
	if fact.Type == facts.TypeRelationship && fact.DescribesSubject() && fact.RelatedName != "" {
		res.Action = store.ActionSkip
		res.Status = store.FactMatched
		return
	}

	if personRes.Status != store.ResolutionMatched && personRes.Status != store.ResolutionCommitted {
		// no external record yet; everything is new information
		res.Action = store.ActionAdd
		res.Status = store.FactPending
		return
	}

	// an identity fact is satisfied by the person match itself
	if fact.Type == facts.TypePersonName {
		res.Action = store.ActionSkip
		res.Status = store.FactMatched
		return
	}

	external, found := c.externalValue(ctx, fact, personRes.GrampsHandle, pool, events)
	switch {
	case !found:
		res.Action = store.ActionAdd
		res.Status = store.FactPending
	case valuesAgree(fact, external):
		res.Action = store.ActionSkip
		res.Status = store.FactMatched
		res.ExternalValue = external
	default:
		res.Action = store.ActionUpdate
		res.Status = store.FactPending
		res.IsConflict = true
		res.ExternalValue = external
	}
}

// externalValue looks up what the external record currently says for
// the fact's type, if anything.
func (c *Coordinator) externalValue(ctx context.Context, fact facts.Fact, handle string, pool []gramps.Person, events *eventCache) (string, bool) {
	var record *gramps.Person
	for i := range pool {
		if pool[i].Handle == handle {
			record = &pool[i]
			break
		}
	}
	if record == nil {
		return "", false
	}

	switch fact.Type {
	case facts.TypeGender:
		if record.Gender == facts.GenderUnknown.GrampsCode() {
			return "", false
		}
		return genderFromCode(record.Gender), true
	case facts.TypeMaidenName:
		return record.Attribute(gramps.AttrMaidenName)
	case facts.TypeLocation:
		return record.Attribute(gramps.AttrLocation)
	case facts.TypeDeathDate:
		return events.dateFor(ctx, record, gramps.EventDeath)
	case facts.TypeBirthDate:
		return events.dateFor(ctx, record, gramps.EventBirth)
	default:
		// relationship facts are reconciled at family creation
		return "", false
	}
}

func genderFromCode(code int) string {
	switch code {
	case 1:
		return string(facts.GenderMale)
	case 0:
		return string(facts.GenderFemale)
	default:
		return string(facts.GenderUnknown)
	}
}

// valuesAgree compares a fact value against the external record's
// value for the same slot.
func valuesAgree(fact facts.Fact, external string) bool {
	left := strings.TrimSpace(fact.Value)
	right := strings.TrimSpace(external)
	if strings.EqualFold(left, right) {
		return true
	}
	switch fact.Type {
	case facts.TypeDeathDate, facts.TypeBirthDate:
		// different textual formats can express the same date
		a, okA := gramps.ParseDate(left)
		b, okB := gramps.ParseDate(right)
		if okA && okB && len(a.Dateval) == len(b.Dateval) {
			for i := range a.Dateval {
				if a.Dateval[i] != b.Dateval[i] {
					return false
				}
			}
			return true
		}
	}
	return false
}

// eventCache memoizes event lookups per person during one run.
type eventCache struct {
	svc    gramps.Service
	byRef  map[string]*gramps.Event
	failed map[string]struct{}
}

func newEventCache(svc gramps.Service) *eventCache {
	return &eventCache{svc: svc, byRef: make(map[string]*gramps.Event), failed: make(map[string]struct{})}
}

// dateFor finds the person's event of the given type and renders its
// date in the canonical textual form.
func (e *eventCache) dateFor(ctx context.Context, person *gramps.Person, eventType string) (string, bool) {
	for _, ref := range person.EventRefs {
		event, ok := e.lookup(ctx, ref.Ref)
		if !ok || !strings.EqualFold(event.Type, eventType) {
			continue
		}
		if event.Date == nil || len(event.Date.Dateval) < 3 {
			continue
		}
		return renderDateval(event.Date.Dateval), true
	}
	return "", false
}

func (e *eventCache) lookup(ctx context.Context, ref string) (*gramps.Event, bool) {
	if event, ok := e.byRef[ref]; ok {
		return event, true
	}
	if _, ok := e.failed[ref]; ok {
		return nil, false
	}
	event, err := e.svc.GetEvent(ctx, ref)
	if err != nil || event == nil {
		e.failed[ref] = struct{}{}
		return nil, false
	}
	e.byRef[ref] = event
	return event, true
}

// renderDateval formats a Gramps dateval as ISO or bare year.
func renderDateval(dateval []any) string {
	day := datevalInt(dateval[0])
	month := datevalInt(dateval[1])
	year := datevalInt(dateval[2])
	if month == 0 || day == 0 {
		return fmt.Sprintf("%04d", year)
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func datevalInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
