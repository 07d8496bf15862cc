package commit

import (
	"context"

	"lineage/internal/facts"
	"lineage/internal/gramps"
	"lineage/internal/logging"
	"lineage/internal/store"
)

// commitFamilies builds family records from the committable
// relationship facts. Spouse pairs are deduplicated by handle pair and
// parent-child links reuse an existing family of the parent when one
// exists.
func (o *Orchestrator) commitFamilies(ctx context.Context, r *run) error {
	pending, err := o.store.FactResolutionsForObituary(ctx, r.obituary.ID, store.CommittableFactStatuses()...)
	if err != nil {
		return err
	}

	spouseSeen := make(map[[2]string]struct{})
	for _, res := range pending {
		fact, ok := r.factsByID[res.FactID]
		if !ok || fact.Type != facts.TypeRelationship || res.Action == store.ActionSkip {
			continue
		}

		personRes := r.resolutionFor(fact.PersonName)
		relatedRes := r.resolutionFor(fact.RelatedName)
		if personRes == nil || relatedRes == nil || personRes.GrampsHandle == "" || relatedRes.GrampsHandle == "" {
			o.logger.Warn("relationship fact without external records",
				logging.Int64("fact_id", fact.ID),
				logging.String("relationship", fact.Relationship))
			continue
		}
		personHandle := personRes.GrampsHandle
		relatedHandle := relatedRes.GrampsHandle

		var familyErr error
		switch facts.NormalizeTerm(fact.Relationship) {
		case "husband", "wife", "spouse":
			familyErr = o.ensureSpouseFamily(ctx, r, spouseSeen, personHandle, relatedHandle)
		case "son", "daughter", "child":
			familyErr = o.ensureParentFamily(ctx, r, relatedHandle, personHandle)
		case "father", "mother", "parent":
			familyErr = o.ensureParentFamily(ctx, r, personHandle, relatedHandle)
		default:
			// no direct family record for this relationship
		}
		if familyErr != nil {
			return familyErr
		}

		res.Status = store.FactCommitted
		if err := o.store.UpdateFactResolution(ctx, res); err != nil {
			return err
		}
		r.batch.FactsCommitted++
	}
	return nil
}

// ensureSpouseFamily finds or creates the family joining two spouses.
func (o *Orchestrator) ensureSpouseFamily(ctx context.Context, r *run, seen map[[2]string]struct{}, a, b string) error {
	key := pairKey(a, b)
	if _, done := seen[key]; done {
		return nil
	}
	seen[key] = struct{}{}

	personA, err := o.record(ctx, r, a)
	if err != nil {
		return err
	}
	for _, familyHandle := range personA.FamilyList {
		family, err := o.gramps.GetFamily(ctx, familyHandle)
		if err != nil {
			return err
		}
		if family.SpousePair(a, b) {
			return nil
		}
	}

	personB, err := o.record(ctx, r, b)
	if err != nil {
		return err
	}
	father, mother := parentSlots(personA, personB)
	familyHandle, err := o.gramps.CreateFamily(ctx, &gramps.Family{FatherHandle: father, MotherHandle: mother})
	if err != nil {
		return err
	}
	if _, err := o.store.RecordExternal(ctx, store.RecordFamily, familyHandle, r.obituary.ID); err != nil {
		return err
	}
	r.batch.FamiliesCreated++

	for _, person := range []*gramps.Person{personA, personB} {
		person.FamilyList = append(person.FamilyList, familyHandle)
		if err := o.gramps.UpdatePerson(ctx, person); err != nil {
			return err
		}
	}
	o.logger.Info("family created",
		logging.String("father", father),
		logging.String("mother", mother),
		logging.String("handle", familyHandle))
	return nil
}

// ensureParentFamily attaches a child to the parent's family, creating
// the family when the parent has none.
func (o *Orchestrator) ensureParentFamily(ctx context.Context, r *run, parentHandle, childHandle string) error {
	parent, err := o.record(ctx, r, parentHandle)
	if err != nil {
		return err
	}

	for _, familyHandle := range parent.FamilyList {
		family, err := o.gramps.GetFamily(ctx, familyHandle)
		if err != nil {
			return err
		}
		if family.FatherHandle != parentHandle && family.MotherHandle != parentHandle {
			continue
		}
		if family.HasChild(childHandle) {
			return nil
		}
		family.ChildRefs = append(family.ChildRefs, gramps.ChildRef{Ref: childHandle})
		if err := o.gramps.UpdateFamily(ctx, family); err != nil {
			return err
		}
		return o.attachParentFamily(ctx, r, childHandle, familyHandle)
	}

	family := &gramps.Family{ChildRefs: []gramps.ChildRef{{Ref: childHandle}}}
	if parent.Gender == facts.GenderFemale.GrampsCode() {
		family.MotherHandle = parentHandle
	} else {
		family.FatherHandle = parentHandle
	}
	familyHandle, err := o.gramps.CreateFamily(ctx, family)
	if err != nil {
		return err
	}
	if _, err := o.store.RecordExternal(ctx, store.RecordFamily, familyHandle, r.obituary.ID); err != nil {
		return err
	}
	r.batch.FamiliesCreated++

	parent.FamilyList = append(parent.FamilyList, familyHandle)
	if err := o.gramps.UpdatePerson(ctx, parent); err != nil {
		return err
	}
	return o.attachParentFamily(ctx, r, childHandle, familyHandle)
}

func (o *Orchestrator) attachParentFamily(ctx context.Context, r *run, childHandle, familyHandle string) error {
	child, err := o.record(ctx, r, childHandle)
	if err != nil {
		return err
	}
	for _, existing := range child.ParentFamilyList {
		if existing == familyHandle {
			return nil
		}
	}
	child.ParentFamilyList = append(child.ParentFamilyList, familyHandle)
	return o.gramps.UpdatePerson(ctx, child)
}

// parentSlots assigns the father and mother slots from record genders.
func parentSlots(a, b *gramps.Person) (father, mother string) {
	switch {
	case a.Gender == facts.GenderMale.GrampsCode():
		return a.Handle, b.Handle
	case b.Gender == facts.GenderMale.GrampsCode():
		return b.Handle, a.Handle
	case a.Gender == facts.GenderFemale.GrampsCode():
		return b.Handle, a.Handle
	default:
		return a.Handle, b.Handle
	}
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}
