package commit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"lineage/internal/config"
	"lineage/internal/facts"
	"lineage/internal/gramps"
	"lineage/internal/logging"
	"lineage/internal/services"
	"lineage/internal/store"
)

// Orchestrator runs commit batches against the external store.
type Orchestrator struct {
	store  *store.Store
	gramps gramps.Service
	cfg    *config.Config
	logger *slog.Logger
}

// New builds a commit orchestrator.
func New(st *store.Store, svc gramps.Service, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{store: st, gramps: svc, cfg: cfg, logger: logger}
}

// run carries the per-batch state shared by the commit steps.
type run struct {
	obituary    *store.Obituary
	batch       *store.CommitBatch
	factSet     []facts.Fact
	factsByID   map[int64]facts.Fact
	resolutions map[int64]*store.PersonResolution
	byName      map[string]*store.PersonResolution
	records     map[string]*gramps.Person
}

// Commit pushes one obituary's approved results to the external store.
// A file lock serializes commit runs across processes.
func (o *Orchestrator) Commit(ctx context.Context, obituaryID string) (*store.CommitBatch, error) {
	ctx = services.WithObituaryID(services.WithStage(ctx, "commit"), obituaryID)

	lock := flock.New(o.cfg.CommitLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire commit lock: %w", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "commit", "lock", "another commit is already running", nil)
	}
	defer func() { _ = lock.Unlock() }()

	r, err := o.prepare(ctx, obituaryID)
	if err != nil {
		return nil, err
	}

	batch := r.batch
	now := time.Now().UTC()
	batch.Status = store.BatchInProgress
	batch.StartedAt = &now
	if err := o.store.UpdateBatch(ctx, batch); err != nil {
		return nil, err
	}
	logger := o.logger.With(
		logging.String("obituary_id", obituaryID),
		logging.String("batch_id", batch.ID))
	logger.Info("commit started")

	commitErr := o.runSteps(ctx, r)

	finished := time.Now().UTC()
	batch.FinishedAt = &finished
	if commitErr != nil {
		batch.Status = store.BatchFailed
		batch.ErrorMessage = commitErr.Error()
	} else {
		batch.Status = store.BatchCompleted
	}
	if err := o.store.UpdateBatch(ctx, batch); err != nil {
		return nil, err
	}
	if commitErr != nil {
		logger.Error("commit failed", logging.Error(commitErr))
		return batch, commitErr
	}

	logger.Info("commit complete",
		logging.Int("persons_created", batch.PersonsCreated),
		logging.Int("facts_committed", batch.FactsCommitted),
		logging.Int("families_created", batch.FamiliesCreated))
	return batch, nil
}

func (o *Orchestrator) runSteps(ctx context.Context, r *run) error {
	if err := o.createPersons(ctx, r); err != nil {
		return err
	}
	if err := o.commitFacts(ctx, r); err != nil {
		return err
	}
	if err := o.commitFamilies(ctx, r); err != nil {
		return err
	}
	return o.finishResolutions(ctx, r)
}

// prepare validates readiness and loads everything a run needs.
func (o *Orchestrator) prepare(ctx context.Context, obituaryID string) (*run, error) {
	obituary, err := o.store.GetObituary(ctx, obituaryID)
	if err != nil {
		return nil, err
	}
	if obituary == nil {
		return nil, services.Wrap(services.ErrNotFound, "commit", "load", fmt.Sprintf("obituary %s not found", obituaryID), nil)
	}

	pending, err := o.store.PersonResolutionsForObituary(ctx, obituaryID, store.ResolutionPending)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for _, res := range pending {
			names = append(names, res.PersonName)
		}
		return nil, services.Wrap(services.ErrValidation, "commit", "readiness",
			fmt.Sprintf("persons awaiting review: %s", strings.Join(names, ", ")), nil)
	}

	resolutions, err := o.store.PersonResolutionsForObituary(ctx, obituaryID)
	if err != nil {
		return nil, err
	}
	if len(resolutions) == 0 {
		return nil, services.Wrap(services.ErrValidation, "commit", "readiness", "no resolutions; run resolve first", nil)
	}

	factSet, err := o.store.FactsForObituary(ctx, obituaryID)
	if err != nil {
		return nil, err
	}

	batch, err := o.store.NewBatch(ctx, obituaryID)
	if err != nil {
		return nil, err
	}

	r := &run{
		obituary:    obituary,
		batch:       batch,
		factSet:     factSet,
		factsByID:   make(map[int64]facts.Fact, len(factSet)),
		resolutions: make(map[int64]*store.PersonResolution, len(resolutions)),
		byName:      make(map[string]*store.PersonResolution, len(resolutions)),
		records:     make(map[string]*gramps.Person),
	}
	for _, fact := range factSet {
		r.factsByID[fact.ID] = fact
	}
	for _, res := range resolutions {
		r.resolutions[res.ID] = res
		r.byName[strings.ToLower(res.PersonName)] = res
	}
	return r, nil
}

// resolutionFor maps a fact's person name onto its resolution. The
// empty name refers to the subject.
func (r *run) resolutionFor(personName string) *store.PersonResolution {
	name := strings.TrimSpace(personName)
	if name == "" {
		name = r.obituary.SubjectName
	}
	return r.byName[strings.ToLower(name)]
}

// personGender reads a person's gender from the fact set.
func (r *run) personGender(personName string) facts.Gender {
	for _, f := range r.factSet {
		if f.Type == facts.TypeGender && strings.EqualFold(f.PersonName, personName) {
			return facts.ParseGender(f.Value)
		}
	}
	return facts.GenderUnknown
}

// record fetches a person record by handle, memoized for the run.
func (o *Orchestrator) record(ctx context.Context, r *run, handle string) (*gramps.Person, error) {
	if person, ok := r.records[handle]; ok {
		return person, nil
	}
	person, err := o.gramps.GetPerson(ctx, handle)
	if err != nil {
		return nil, err
	}
	r.records[handle] = person
	return person, nil
}

// finishResolutions flips fully applied resolutions to committed.
func (o *Orchestrator) finishResolutions(ctx context.Context, r *run) error {
	for _, res := range r.resolutions {
		if res.Status == store.ResolutionMatched || res.Status == store.ResolutionCreateNew {
			res.Status = store.ResolutionCommitted
			if err := o.store.UpdatePersonResolution(ctx, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitName breaks a display name into given name and surname. The
// last field is the surname; everything before it is the given name.
func splitName(name string) (first, surname string) {
	fields := strings.Fields(strings.TrimSpace(name))
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}
