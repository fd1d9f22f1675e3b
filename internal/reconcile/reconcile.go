package reconcile

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/danmuck/onboardctl/internal/schema"
)

// SeedOutcome reports what SeedIfEmpty did.
type SeedOutcome struct {
	Seeded   bool
	Inserted int
	Existing int64
}

// EnsureCollection brings one collection into conformance with its spec:
// absent collections are created with the validator and validation policy,
// present ones get the validator re-applied in place via a modify-collection
// call. The in-place update succeeds even when existing documents would fail
// the validator, provided the spec carries a tolerant policy (the shipped
// specs use moderate/warn). Documents are never touched.
func EnsureCollection(ctx context.Context, store Store, spec schema.CollectionSpec) error {
	if store == nil {
		return ErrNilStore
	}
	if strings.TrimSpace(spec.Name) == "" {
		return ErrEmptyCollectionName
	}

	names, err := store.CollectionNames(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if slices.Contains(names, spec.Name) {
		if err := store.UpdateValidator(ctx, spec); err != nil {
			return fmt.Errorf("update validator on %q: %w", spec.Name, err)
		}
		log.Info().Str("collection", spec.Name).Msg("collection already exists, validator re-applied")
		return nil
	}

	if err := store.CreateCollection(ctx, spec); err != nil {
		return fmt.Errorf("create collection %q: %w", spec.Name, err)
	}
	log.Info().Str("collection", spec.Name).Msg("collection created with validator")
	return nil
}

// EnsureIndexes creates every declared index whose name is not already live on
// the collection. Presence is judged by name alone: an existing index is
// skipped unconditionally, even when its live definition differs from the
// spec. Changing an index's keys, uniqueness, or filter therefore requires an
// explicit drop by name before re-running. A unique index failing to build
// over data that already violates it surfaces as the store's error; clearing
// the conflicting documents is an operator precondition.
func EnsureIndexes(ctx context.Context, store Store, collection string, specs []schema.IndexSpec) error {
	if store == nil {
		return ErrNilStore
	}
	if strings.TrimSpace(collection) == "" {
		return ErrEmptyCollectionName
	}

	live, err := store.IndexNames(ctx, collection)
	if err != nil {
		return fmt.Errorf("list indexes on %q: %w", collection, err)
	}

	for _, spec := range specs {
		if slices.Contains(live, spec.Name) {
			log.Info().Str("collection", collection).Str("index", spec.Name).Msg("index already exists, skipped")
			continue
		}
		if err := store.CreateIndex(ctx, collection, spec); err != nil {
			return fmt.Errorf("create index %q on %q: %w", spec.Name, collection, err)
		}
		log.Info().Str("collection", collection).Str("index", spec.Name).Bool("unique", spec.Unique).Msg("index created")
	}
	return nil
}

// SeedIfEmpty inserts the records in order, but only when the collection's
// approximate count is zero. Any existing document, related or not, skips the
// whole insert. The count is approximate and unsynchronized: two seeders
// racing can both observe zero and both insert. A per-record unique-key
// upsert would close that race; this tool assumes a single one-shot
// initializer instead.
func SeedIfEmpty(ctx context.Context, store Store, collection string, records []bson.M) (SeedOutcome, error) {
	if store == nil {
		return SeedOutcome{}, ErrNilStore
	}
	if strings.TrimSpace(collection) == "" {
		return SeedOutcome{}, ErrEmptyCollectionName
	}

	count, err := store.EstimatedCount(ctx, collection)
	if err != nil {
		return SeedOutcome{}, fmt.Errorf("count documents in %q: %w", collection, err)
	}
	if count > 0 {
		log.Info().Str("collection", collection).Int64("existing", count).Msg("seed skipped, collection not empty")
		return SeedOutcome{Existing: count}, nil
	}

	if err := store.InsertMany(ctx, collection, records); err != nil {
		return SeedOutcome{}, fmt.Errorf("seed %q: %w", collection, err)
	}
	log.Info().Str("collection", collection).Int("inserted", len(records)).Msg("seed records inserted")
	return SeedOutcome{Seeded: true, Inserted: len(records)}, nil
}

// Run applies the whole plan in its fixed order: every collection's
// validator, then every collection's indexes, then the seed check. Each step
// is independently idempotent; the first error aborts the remainder.
func Run(ctx context.Context, store Store, plan schema.Plan) error {
	if store == nil {
		return ErrNilStore
	}
	if err := schema.ValidatePlan(plan); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	for _, spec := range plan.Collections {
		if err := EnsureCollection(ctx, store, spec); err != nil {
			return err
		}
	}
	for _, spec := range plan.Collections {
		if err := EnsureIndexes(ctx, store, spec.Name, spec.Indexes); err != nil {
			return err
		}
	}
	if len(plan.SeedRecords) > 0 {
		if _, err := SeedIfEmpty(ctx, store, plan.SeedCollection, plan.SeedRecords); err != nil {
			return err
		}
	}
	return nil
}
