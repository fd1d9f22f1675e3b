package reconcile

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danmuck/onboardctl/internal/schema"
)

// MongoStore adapts a mongo database handle to the Store interface.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) CollectionNames(ctx context.Context) ([]string, error) {
	return s.db.ListCollectionNames(ctx, bson.D{})
}

func (s *MongoStore) CreateCollection(ctx context.Context, spec schema.CollectionSpec) error {
	opts := options.CreateCollection().
		SetValidator(spec.Validator).
		SetValidationLevel(spec.ValidationLevel).
		SetValidationAction(spec.ValidationAction)
	return s.db.CreateCollection(ctx, spec.Name, opts)
}

// UpdateValidator issues collMod directly; the driver has no typed helper for
// replacing a validator in place.
func (s *MongoStore) UpdateValidator(ctx context.Context, spec schema.CollectionSpec) error {
	cmd := bson.D{
		{Key: "collMod", Value: spec.Name},
		{Key: "validator", Value: spec.Validator},
		{Key: "validationLevel", Value: spec.ValidationLevel},
		{Key: "validationAction", Value: spec.ValidationAction},
	}
	return s.db.RunCommand(ctx, cmd).Err()
}

func (s *MongoStore) IndexNames(ctx context.Context, collection string) ([]string, error) {
	specs, err := s.db.Collection(collection).Indexes().ListSpecifications(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(specs))
	for _, is := range specs {
		names = append(names, is.Name)
	}
	return names, nil
}

func (s *MongoStore) CreateIndex(ctx context.Context, collection string, spec schema.IndexSpec) error {
	opts := options.Index().SetName(spec.Name)
	if spec.Unique {
		opts.SetUnique(true)
	}
	if spec.PartialFilter != nil {
		opts.SetPartialFilterExpression(spec.PartialFilter)
	}
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    spec.Keys,
		Options: opts,
	})
	return err
}

func (s *MongoStore) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	return s.db.Collection(collection).EstimatedDocumentCount(ctx)
}

func (s *MongoStore) InsertMany(ctx context.Context, collection string, docs []bson.M) error {
	payload := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		payload = append(payload, doc)
	}
	_, err := s.db.Collection(collection).InsertMany(ctx, payload, options.InsertMany().SetOrdered(true))
	return err
}
