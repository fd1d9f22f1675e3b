package schema

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Validation policy values accepted by the store.
const (
	ValidationLevelOff      = "off"
	ValidationLevelStrict   = "strict"
	ValidationLevelModerate = "moderate"

	ValidationActionError = "error"
	ValidationActionWarn  = "warn"
)

// CollectionSpec declares one collection: its validator, validation policy,
// and the indexes it must carry. The validator is passed through to the store
// verbatim; well-formedness is the store's concern.
type CollectionSpec struct {
	Name             string
	Validator        bson.M
	ValidationLevel  string
	ValidationAction string
	Indexes          []IndexSpec
}

// IndexSpec declares one index. Name is the identity within a collection: a
// live index carrying the same name is never recreated or altered, even when
// Keys, Unique, or PartialFilter differ from what is declared here.
type IndexSpec struct {
	Keys          bson.D
	Name          string
	Unique        bool
	PartialFilter bson.M
}

// Plan is the full desired state for one reconciliation run. Collections are
// processed in slice order: all validators first, then all indexes, then the
// seed check.
type Plan struct {
	Collections    []CollectionSpec
	SeedCollection string
	SeedRecords    []bson.M
}

// DefaultPlan returns the static desired state for the sign-up store.
func DefaultPlan() Plan {
	return Plan{
		Collections:    []CollectionSpec{Users(), OnboardingSteps()},
		SeedCollection: StepsCollection,
		SeedRecords:    StepSeeds(),
	}
}

func ValidateCollectionSpec(spec CollectionSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return fmt.Errorf("collection spec missing name")
	}
	if len(spec.Validator) == 0 {
		return fmt.Errorf("collection %q missing validator", spec.Name)
	}
	switch spec.ValidationLevel {
	case ValidationLevelOff, ValidationLevelStrict, ValidationLevelModerate:
	default:
		return fmt.Errorf("collection %q has invalid validation level %q", spec.Name, spec.ValidationLevel)
	}
	switch spec.ValidationAction {
	case ValidationActionError, ValidationActionWarn:
	default:
		return fmt.Errorf("collection %q has invalid validation action %q", spec.Name, spec.ValidationAction)
	}
	seen := make(map[string]bool, len(spec.Indexes))
	for i, idx := range spec.Indexes {
		if strings.TrimSpace(idx.Name) == "" {
			return fmt.Errorf("collection %q index[%d] missing name", spec.Name, i)
		}
		if len(idx.Keys) == 0 {
			return fmt.Errorf("collection %q index %q missing keys", spec.Name, idx.Name)
		}
		if seen[idx.Name] {
			return fmt.Errorf("collection %q has duplicate index name %q", spec.Name, idx.Name)
		}
		seen[idx.Name] = true
	}
	return nil
}

func ValidatePlan(plan Plan) error {
	names := make(map[string]bool, len(plan.Collections))
	for i, spec := range plan.Collections {
		if err := ValidateCollectionSpec(spec); err != nil {
			return fmt.Errorf("collection[%d] invalid: %w", i, err)
		}
		if names[spec.Name] {
			return fmt.Errorf("duplicate collection name %q", spec.Name)
		}
		names[spec.Name] = true
	}
	if len(plan.SeedRecords) > 0 && !names[plan.SeedCollection] {
		return fmt.Errorf("seed collection %q not declared in plan", plan.SeedCollection)
	}
	return nil
}
