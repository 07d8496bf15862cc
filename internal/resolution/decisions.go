package resolution

import (
	"context"
	"fmt"

	"lineage/internal/facts"
	"lineage/internal/logging"
	"lineage/internal/services"
	"lineage/internal/store"
)

// ApproveFact marks a pending fact resolution approved for commit.
func (c *Coordinator) ApproveFact(ctx context.Context, factResolutionID int64) error {
	return c.setFactStatus(ctx, factResolutionID, store.FactApproved)
}

// RejectFact marks a pending fact resolution rejected. Rejected facts
// are never committed.
func (c *Coordinator) RejectFact(ctx context.Context, factResolutionID int64) error {
	return c.setFactStatus(ctx, factResolutionID, store.FactRejected)
}

func (c *Coordinator) setFactStatus(ctx context.Context, id int64, status store.FactStatus) error {
	res, err := c.store.GetFactResolution(ctx, id)
	if err != nil {
		return err
	}
	if res == nil {
		return services.Wrap(services.ErrNotFound, "review", "facts", fmt.Sprintf("fact resolution %d not found", id), nil)
	}
	if res.Status != store.FactPending {
		return services.Wrap(services.ErrValidation, "review", "facts",
			fmt.Sprintf("fact resolution %d is %s, only pending facts can be decided", id, res.Status), nil)
	}
	res.Status = status
	if err := c.store.UpdateFactResolution(ctx, res); err != nil {
		return err
	}
	if status == store.FactRejected {
		if err := c.store.SetFactResolutionStatus(ctx, res.FactID, facts.Rejected); err != nil {
			return err
		}
	}
	c.logger.Info("fact decision recorded",
		logging.Int64("fact_resolution_id", id),
		logging.String("status", string(status)))
	return nil
}

// ApproveAllFacts approves every pending add or update fact for an
// obituary and returns how many changed.
func (c *Coordinator) ApproveAllFacts(ctx context.Context, obituaryID string) (int64, error) {
	changed, err := c.store.ApproveAllPending(ctx, obituaryID)
	if err != nil {
		return 0, err
	}
	c.logger.Info("pending facts approved",
		logging.String("obituary_id", obituaryID),
		logging.Int64("changed", changed))
	return changed, nil
}

// SelectCandidate resolves a pending person to one of their scored
// candidates.
func (c *Coordinator) SelectCandidate(ctx context.Context, obituaryID, personName, handle string) error {
	res, err := c.store.PersonResolutionByName(ctx, obituaryID, personName)
	if err != nil {
		return err
	}
	if res == nil {
		return services.Wrap(services.ErrNotFound, "review", "persons",
			fmt.Sprintf("no resolution for %q", personName), nil)
	}
	if res.Status != store.ResolutionPending {
		return services.Wrap(services.ErrValidation, "review", "persons",
			fmt.Sprintf("%q is %s, only pending persons can be selected", personName, res.Status), nil)
	}
	for _, candidate := range res.Candidates {
		if candidate.Handle != handle {
			continue
		}
		res.Status = store.ResolutionMatched
		res.GrampsHandle = candidate.Handle
		res.MatchScore = candidate.Score
		res.MatchMethod = store.MatchFuzzy
		res.MatchedMaidenName = candidate.MatchedMaidenName
		if err := c.store.UpdatePersonResolution(ctx, res); err != nil {
			return err
		}
		c.logger.Info("candidate selected",
			logging.String("person", personName),
			logging.String("handle", handle),
			logging.Float64("score", candidate.Score))
		return nil
	}
	return services.Wrap(services.ErrValidation, "review", "persons",
		fmt.Sprintf("handle %q is not a candidate for %q", handle, personName), nil)
}

// MarkCreateNew switches a pending person to be created as a new
// external record instead of matched.
func (c *Coordinator) MarkCreateNew(ctx context.Context, obituaryID, personName string) error {
	res, err := c.store.PersonResolutionByName(ctx, obituaryID, personName)
	if err != nil {
		return err
	}
	if res == nil {
		return services.Wrap(services.ErrNotFound, "review", "persons",
			fmt.Sprintf("no resolution for %q", personName), nil)
	}
	if res.Status != store.ResolutionPending {
		return services.Wrap(services.ErrValidation, "review", "persons",
			fmt.Sprintf("%q is %s, only pending persons can be marked for creation", personName, res.Status), nil)
	}
	res.Status = store.ResolutionCreateNew
	res.GrampsHandle = ""
	res.MatchScore = 0
	res.MatchMethod = ""
	res.MatchedMaidenName = false
	if err := c.store.UpdatePersonResolution(ctx, res); err != nil {
		return err
	}
	c.logger.Info("person marked for creation", logging.String("person", personName))
	return nil
}

// RejectPerson excludes a pending person from the commit entirely. Their
// facts are marked rejected so nothing about them reaches the external
// store.
func (c *Coordinator) RejectPerson(ctx context.Context, obituaryID, personName string) error {
	res, err := c.store.PersonResolutionByName(ctx, obituaryID, personName)
	if err != nil {
		return err
	}
	if res == nil {
		return services.Wrap(services.ErrNotFound, "review", "persons",
			fmt.Sprintf("no resolution for %q", personName), nil)
	}
	if res.Status != store.ResolutionPending {
		return services.Wrap(services.ErrValidation, "review", "persons",
			fmt.Sprintf("%q is %s, only pending persons can be rejected", personName, res.Status), nil)
	}
	res.Status = store.ResolutionRejected
	res.GrampsHandle = ""
	res.MatchScore = 0
	res.MatchMethod = ""
	res.MatchedMaidenName = false
	if err := c.store.UpdatePersonResolution(ctx, res); err != nil {
		return err
	}

	factResolutions, err := c.store.FactResolutionsForObituary(ctx, obituaryID)
	if err != nil {
		return err
	}
	for _, fr := range factResolutions {
		if fr.PersonResolutionID != res.ID || fr.Status == store.FactCommitted {
			continue
		}
		fr.Status = store.FactRejected
		if err := c.store.UpdateFactResolution(ctx, fr); err != nil {
			return err
		}
		if err := c.store.SetFactResolutionStatus(ctx, fr.FactID, facts.Rejected); err != nil {
			return err
		}
	}
	c.logger.Info("person rejected", logging.String("person", personName))
	return nil
}

// OverridePerson records reviewer corrections to the name or gender a
// person will be created with. Empty arguments leave the corresponding
// field untouched.
func (c *Coordinator) OverridePerson(ctx context.Context, obituaryID, personName, firstName, surname, gender string) error {
	res, err := c.store.PersonResolutionByName(ctx, obituaryID, personName)
	if err != nil {
		return err
	}
	if res == nil {
		return services.Wrap(services.ErrNotFound, "review", "persons",
			fmt.Sprintf("no resolution for %q", personName), nil)
	}
	if firstName == "" && surname == "" && gender == "" {
		return services.Wrap(services.ErrValidation, "review", "persons",
			"nothing to override, give a first name, surname, or gender", nil)
	}
	if firstName != "" {
		res.FirstNameOverride = firstName
	}
	if surname != "" {
		res.SurnameOverride = surname
	}
	if gender != "" {
		res.GenderOverride = string(facts.ParseGender(gender))
	}
	if err := c.store.UpdatePersonResolution(ctx, res); err != nil {
		return err
	}
	c.logger.Info("person override recorded",
		logging.String("person", personName),
		logging.String("first_name", res.FirstNameOverride),
		logging.String("surname", res.SurnameOverride),
		logging.String("gender", res.GenderOverride))
	return nil
}

// OverrideFactValue replaces the value a fact will be committed with.
// Only pending or approved facts can be corrected.
func (c *Coordinator) OverrideFactValue(ctx context.Context, factResolutionID int64, value string) error {
	res, err := c.store.GetFactResolution(ctx, factResolutionID)
	if err != nil {
		return err
	}
	if res == nil {
		return services.Wrap(services.ErrNotFound, "review", "facts",
			fmt.Sprintf("fact resolution %d not found", factResolutionID), nil)
	}
	if res.Status != store.FactPending && res.Status != store.FactApproved {
		return services.Wrap(services.ErrValidation, "review", "facts",
			fmt.Sprintf("fact resolution %d is %s, only pending or approved facts can be corrected", factResolutionID, res.Status), nil)
	}
	res.ValueOverride = value
	if err := c.store.UpdateFactResolution(ctx, res); err != nil {
		return err
	}
	c.logger.Info("fact value override recorded",
		logging.Int64("fact_resolution_id", factResolutionID),
		logging.String("value", value))
	return nil
}
