package reconcile

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/danmuck/onboardctl/internal/schema"
)

// Store is the narrow slice of the document store the reconciler touches.
// The live implementation is MongoStore; tests substitute a fake.
type Store interface {
	// CollectionNames lists the names of all collections in the database.
	CollectionNames(ctx context.Context) ([]string, error)
	// CreateCollection creates the collection with its validator and policy.
	CreateCollection(ctx context.Context, spec schema.CollectionSpec) error
	// UpdateValidator replaces the validator and policy on an existing
	// collection in place, leaving documents untouched.
	UpdateValidator(ctx context.Context, spec schema.CollectionSpec) error
	// IndexNames lists the names of live indexes on a collection. A
	// collection that does not exist yields an empty list, not an error.
	IndexNames(ctx context.Context, collection string) ([]string, error)
	// CreateIndex builds one index from its spec.
	CreateIndex(ctx context.Context, collection string, spec schema.IndexSpec) error
	// EstimatedCount returns an approximate document count for a collection.
	EstimatedCount(ctx context.Context, collection string) (int64, error)
	// InsertMany performs one ordered bulk insert.
	InsertMany(ctx context.Context, collection string, docs []bson.M) error
}
