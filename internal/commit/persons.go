package commit

import (
	"context"

	"lineage/internal/facts"
	"lineage/internal/gramps"
	"lineage/internal/logging"
	"lineage/internal/store"
)

// createPersons creates an external record for every person marked
// create_new. Resolutions that already carry a handle are left alone,
// which makes reruns after a partial failure safe.
func (o *Orchestrator) createPersons(ctx context.Context, r *run) error {
	for _, res := range r.resolutions {
		if res.Status != store.ResolutionCreateNew || res.GrampsHandle != "" {
			continue
		}

		first, surname := splitName(res.PersonName)
		if res.FirstNameOverride != "" {
			first = res.FirstNameOverride
		}
		if res.SurnameOverride != "" {
			surname = res.SurnameOverride
		}
		gender := r.personGender(personNameFor(r, res))
		if res.GenderOverride != "" {
			gender = facts.ParseGender(res.GenderOverride)
		}
		person := gramps.NewPerson(first, surname, gender.GrampsCode())

		handle, err := o.gramps.CreatePerson(ctx, person)
		if err != nil {
			return err
		}
		if _, err := o.store.RecordExternal(ctx, store.RecordPerson, handle, r.obituary.ID); err != nil {
			return err
		}

		res.GrampsHandle = handle
		res.MatchMethod = store.MatchCreated
		if err := o.store.UpdatePersonResolution(ctx, res); err != nil {
			return err
		}
		r.batch.PersonsCreated++
		o.logger.Info("person created",
			logging.String("person", res.PersonName),
			logging.String("handle", handle))
	}
	return nil
}

// personNameFor returns the fact-set spelling of a resolution's person,
// empty for the subject.
func personNameFor(r *run, res *store.PersonResolution) string {
	if res.PersonName == r.obituary.SubjectName {
		return ""
	}
	return res.PersonName
}
