package commit

import (
	"context"
	"fmt"

	"lineage/internal/facts"
	"lineage/internal/gramps"
	"lineage/internal/logging"
	"lineage/internal/store"
)

// commitFacts applies every matched or approved fact to its person's
// external record. Skip actions become committed no-ops; relationship
// facts are committed by the family step and marked there.
func (o *Orchestrator) commitFacts(ctx context.Context, r *run) error {
	pending, err := o.store.FactResolutionsForObituary(ctx, r.obituary.ID, store.CommittableFactStatuses()...)
	if err != nil {
		return err
	}

	for _, res := range pending {
		fact, ok := r.factsByID[res.FactID]
		if !ok {
			continue
		}
		if fact.Type == facts.TypeRelationship && res.Action != store.ActionSkip {
			// handled by commitFamilies
			continue
		}

		if res.Action == store.ActionSkip {
			res.Status = store.FactCommitted
			if err := o.store.UpdateFactResolution(ctx, res); err != nil {
				return err
			}
			continue
		}

		personRes := r.resolutions[res.PersonResolutionID]
		if personRes == nil || personRes.GrampsHandle == "" {
			o.logger.Warn("fact skipped, person has no external record",
				logging.Int64("fact_id", fact.ID),
				logging.String("person", fact.PersonName))
			continue
		}

		if res.ValueOverride != "" {
			fact.Value = res.ValueOverride
		}
		if err := o.applyFact(ctx, r, fact, personRes.GrampsHandle, res); err != nil {
			return err
		}
		if res.Status == store.FactFailed {
			if err := o.store.UpdateFactResolution(ctx, res); err != nil {
				return err
			}
			continue
		}

		res.Status = store.FactCommitted
		if err := o.store.UpdateFactResolution(ctx, res); err != nil {
			return err
		}
		if err := o.store.SetFactResolutionStatus(ctx, fact.ID, facts.Resolved); err != nil {
			return err
		}
		r.batch.FactsCommitted++
	}
	return nil
}

// applyFact pushes one non-relationship fact to the external record.
func (o *Orchestrator) applyFact(ctx context.Context, r *run, fact facts.Fact, handle string, res *store.FactResolution) error {
	switch fact.Type {
	case facts.TypeDeathDate:
		return o.applyEvent(ctx, r, fact, handle, gramps.EventDeath, res)
	case facts.TypeBirthDate:
		return o.applyEvent(ctx, r, fact, handle, gramps.EventBirth, res)
	case facts.TypeGender:
		return o.applyGender(ctx, r, fact, handle)
	case facts.TypeMaidenName:
		return o.applyAttribute(ctx, r, handle, gramps.AttrMaidenName, fact.Value)
	case facts.TypeLocation:
		return o.applyAttribute(ctx, r, handle, gramps.AttrLocation, fact.Value)
	default:
		return nil
	}
}

// applyEvent creates a dated event and attaches it to the person. A
// deterministic mapping key skips events a previous partial run
// already created.
func (o *Orchestrator) applyEvent(ctx context.Context, r *run, fact facts.Fact, handle, eventType string, res *store.FactResolution) error {
	date, ok := gramps.ParseDate(fact.Value)
	if !ok {
		res.Status = store.FactFailed
		res.ErrorMessage = fmt.Sprintf("unparseable date %q", fact.Value)
		o.logger.Warn("date fact skipped",
			logging.Int64("fact_id", fact.ID),
			logging.String("value", fact.Value))
		return nil
	}

	eventKey := handle + "/" + eventType
	already, err := o.store.HasExternal(ctx, store.RecordEvent, eventKey, r.obituary.ID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	eventHandle, err := o.gramps.CreateEvent(ctx, &gramps.Event{Type: eventType, Date: date})
	if err != nil {
		return err
	}

	person, err := o.record(ctx, r, handle)
	if err != nil {
		return err
	}
	person.EventRefs = append(person.EventRefs, gramps.EventRef{Ref: eventHandle})
	if err := o.gramps.UpdatePerson(ctx, person); err != nil {
		return err
	}

	if _, err := o.store.RecordExternal(ctx, store.RecordEvent, eventKey, r.obituary.ID); err != nil {
		return err
	}
	return nil
}

func (o *Orchestrator) applyGender(ctx context.Context, r *run, fact facts.Fact, handle string) error {
	code := facts.ParseGender(fact.Value).GrampsCode()
	person, err := o.record(ctx, r, handle)
	if err != nil {
		return err
	}
	if person.Gender == code {
		return nil
	}
	person.Gender = code
	return o.gramps.UpdatePerson(ctx, person)
}

func (o *Orchestrator) applyAttribute(ctx context.Context, r *run, handle, attrType, value string) error {
	person, err := o.record(ctx, r, handle)
	if err != nil {
		return err
	}
	for i, attr := range person.Attributes {
		if attr.Type == attrType {
			if attr.Value == value {
				return nil
			}
			person.Attributes[i].Value = value
			return o.gramps.UpdatePerson(ctx, person)
		}
	}
	person.Attributes = append(person.Attributes, gramps.Attribute{Type: attrType, Value: value})
	return o.gramps.UpdatePerson(ctx, person)
}
