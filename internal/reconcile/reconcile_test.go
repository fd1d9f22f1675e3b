package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/danmuck/onboardctl/internal/schema"
	"github.com/danmuck/onboardctl/internal/testutil/testlog"
)

var errBoom = errors.New("boom")

// fakeStore is a stateful in-memory Store: operations mutate it the way the
// live store would, so idempotence can be checked by running twice.
type fakeStore struct {
	collections map[string]schema.CollectionSpec
	indexes     map[string][]string
	docs        map[string][]bson.M

	creates          []string
	validatorUpdates []string
	indexCreates     []string
	inserts          int

	failOp string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: make(map[string]schema.CollectionSpec),
		indexes:     make(map[string][]string),
		docs:        make(map[string][]bson.M),
	}
}

func (f *fakeStore) fail(op string) error {
	if f.failOp == op {
		return fmt.Errorf("%s: %w", op, errBoom)
	}
	return nil
}

func (f *fakeStore) CollectionNames(_ context.Context) ([]string, error) {
	if err := f.fail("CollectionNames"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) CreateCollection(_ context.Context, spec schema.CollectionSpec) error {
	if err := f.fail("CreateCollection"); err != nil {
		return err
	}
	f.collections[spec.Name] = spec
	f.creates = append(f.creates, spec.Name)
	return nil
}

func (f *fakeStore) UpdateValidator(_ context.Context, spec schema.CollectionSpec) error {
	if err := f.fail("UpdateValidator"); err != nil {
		return err
	}
	f.collections[spec.Name] = spec
	f.validatorUpdates = append(f.validatorUpdates, spec.Name)
	return nil
}

func (f *fakeStore) IndexNames(_ context.Context, collection string) ([]string, error) {
	if err := f.fail("IndexNames"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.indexes[collection]...), nil
}

func (f *fakeStore) CreateIndex(_ context.Context, collection string, spec schema.IndexSpec) error {
	if err := f.fail("CreateIndex"); err != nil {
		return err
	}
	f.indexes[collection] = append(f.indexes[collection], spec.Name)
	f.indexCreates = append(f.indexCreates, collection+"/"+spec.Name)
	return nil
}

func (f *fakeStore) EstimatedCount(_ context.Context, collection string) (int64, error) {
	if err := f.fail("EstimatedCount"); err != nil {
		return 0, err
	}
	return int64(len(f.docs[collection])), nil
}

func (f *fakeStore) InsertMany(_ context.Context, collection string, records []bson.M) error {
	if err := f.fail("InsertMany"); err != nil {
		return err
	}
	f.docs[collection] = append(f.docs[collection], records...)
	f.inserts++
	return nil
}

func TestEnsureCollectionCreatesWhenAbsent(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()

	if err := EnsureCollection(context.Background(), store, schema.Users()); err != nil {
		t.Fatalf("ensure collection failed: %v", err)
	}
	if len(store.creates) != 1 || store.creates[0] != schema.UsersCollection {
		t.Fatalf("expected one create of %q, got %v", schema.UsersCollection, store.creates)
	}
	if len(store.validatorUpdates) != 0 {
		t.Fatalf("expected no validator updates on fresh collection, got %v", store.validatorUpdates)
	}
}

func TestEnsureCollectionUpdatesWhenPresent(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()
	store.collections[schema.UsersCollection] = schema.CollectionSpec{Name: schema.UsersCollection}

	if err := EnsureCollection(context.Background(), store, schema.Users()); err != nil {
		t.Fatalf("ensure collection failed: %v", err)
	}
	if len(store.creates) != 0 {
		t.Fatalf("expected no creates on existing collection, got %v", store.creates)
	}
	if len(store.validatorUpdates) != 1 || store.validatorUpdates[0] != schema.UsersCollection {
		t.Fatalf("expected one validator update of %q, got %v", schema.UsersCollection, store.validatorUpdates)
	}
}

func TestEnsureCollectionRejectsEmptyName(t *testing.T) {
	testlog.Start(t)
	err := EnsureCollection(context.Background(), newFakeStore(), schema.CollectionSpec{Name: "  "})
	if !errors.Is(err, ErrEmptyCollectionName) {
		t.Fatalf("expected ErrEmptyCollectionName, got %v", err)
	}
}

func TestEnsureIndexesSkipsExistingNameWithoutDiffing(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()
	// Live index holds the name but (hypothetically) a stale definition; the
	// reconciler must still skip it by name alone.
	store.indexes[schema.UsersCollection] = []string{schema.IndexUniqEmail}

	specs := schema.Users().Indexes
	if err := EnsureIndexes(context.Background(), store, schema.UsersCollection, specs); err != nil {
		t.Fatalf("ensure indexes failed: %v", err)
	}
	for _, created := range store.indexCreates {
		if created == schema.UsersCollection+"/"+schema.IndexUniqEmail {
			t.Fatalf("existing index %q was recreated", schema.IndexUniqEmail)
		}
	}
	if len(store.indexCreates) != len(specs)-1 {
		t.Fatalf("expected %d creates, got %v", len(specs)-1, store.indexCreates)
	}
}

func TestEnsureIndexesCreatesAllWhenNonePresent(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()

	specs := schema.OnboardingSteps().Indexes
	if err := EnsureIndexes(context.Background(), store, schema.StepsCollection, specs); err != nil {
		t.Fatalf("ensure indexes failed: %v", err)
	}
	want := []string{
		schema.StepsCollection + "/" + schema.IndexUniqKey,
		schema.StepsCollection + "/" + schema.IndexOrderAsc,
	}
	if !slices.Equal(store.indexCreates, want) {
		t.Fatalf("unexpected creates: got %v want %v", store.indexCreates, want)
	}
}

func TestSeedIfEmptySkipsNonEmptyCollection(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()
	// One unrelated document is enough to suppress seeding entirely, even
	// though none of the default step keys are present.
	store.docs[schema.StepsCollection] = []bson.M{{"key": "legacy", "order": 99, "title": "Legacy"}}

	outcome, err := SeedIfEmpty(context.Background(), store, schema.StepsCollection, schema.StepSeeds())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if outcome.Seeded || outcome.Inserted != 0 {
		t.Fatalf("expected skip, got %+v", outcome)
	}
	if outcome.Existing != 1 {
		t.Fatalf("expected existing count 1, got %d", outcome.Existing)
	}
	if store.inserts != 0 {
		t.Fatalf("expected zero inserts, got %d", store.inserts)
	}
}

func TestSeedIfEmptyInsertsRecordsInOrder(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()

	outcome, err := SeedIfEmpty(context.Background(), store, schema.StepsCollection, schema.StepSeeds())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !outcome.Seeded || outcome.Inserted != 4 {
		t.Fatalf("expected 4 records seeded, got %+v", outcome)
	}
	if store.inserts != 1 {
		t.Fatalf("expected one bulk insert, got %d", store.inserts)
	}
	wantKeys := []string{"account", "profile", "preferences", "summary"}
	docs := store.docs[schema.StepsCollection]
	if len(docs) != len(wantKeys) {
		t.Fatalf("expected %d docs, got %d", len(wantKeys), len(docs))
	}
	for i, want := range wantKeys {
		if docs[i]["key"] != want {
			t.Fatalf("doc[%d] key = %v, want %q", i, docs[i]["key"], want)
		}
	}
}

func TestRunFreshDatabase(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()

	if err := Run(context.Background(), store, schema.DefaultPlan()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(store.creates) != 2 {
		t.Fatalf("expected 2 collection creates, got %v", store.creates)
	}
	wantIndexes := []string{
		schema.UsersCollection + "/" + schema.IndexUniqEmail,
		schema.UsersCollection + "/" + schema.IndexUniqUsername,
		schema.UsersCollection + "/" + schema.IndexOauthProviderID,
		schema.UsersCollection + "/" + schema.IndexOnboardingStep,
		schema.UsersCollection + "/" + schema.IndexCreatedAtDesc,
		schema.UsersCollection + "/" + schema.IndexUpdatedAtDesc,
		schema.StepsCollection + "/" + schema.IndexUniqKey,
		schema.StepsCollection + "/" + schema.IndexOrderAsc,
	}
	if !slices.Equal(store.indexCreates, wantIndexes) {
		t.Fatalf("unexpected index creates:\n got %v\nwant %v", store.indexCreates, wantIndexes)
	}
	if len(store.docs[schema.StepsCollection]) != 4 {
		t.Fatalf("expected 4 seed docs, got %d", len(store.docs[schema.StepsCollection]))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()
	plan := schema.DefaultPlan()

	if err := Run(context.Background(), store, plan); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	firstCreates := len(store.creates)
	firstIndexCreates := len(store.indexCreates)
	firstDocs := len(store.docs[schema.StepsCollection])

	if err := Run(context.Background(), store, plan); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(store.creates) != firstCreates {
		t.Fatalf("second run created collections: %v", store.creates)
	}
	if len(store.indexCreates) != firstIndexCreates {
		t.Fatalf("second run created indexes: %v", store.indexCreates)
	}
	if len(store.docs[schema.StepsCollection]) != firstDocs {
		t.Fatalf("second run inserted seeds: %d docs", len(store.docs[schema.StepsCollection]))
	}
	// Re-applying validators in place is the one repeated write.
	if len(store.validatorUpdates) != 2 {
		t.Fatalf("expected 2 validator re-applications on second run, got %v", store.validatorUpdates)
	}
}

func TestRunAbortsOnFirstStoreError(t *testing.T) {
	testlog.Start(t)
	store := newFakeStore()
	store.failOp = "CreateIndex"

	err := Run(context.Background(), store, schema.DefaultPlan())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	// Collections were reconciled before the failure; seeding never ran.
	if len(store.creates) != 2 {
		t.Fatalf("expected collection creates before failure, got %v", store.creates)
	}
	if store.inserts != 0 {
		t.Fatalf("expected no seed insert after index failure, got %d", store.inserts)
	}
}

func TestRunRejectsInvalidPlan(t *testing.T) {
	testlog.Start(t)
	plan := schema.Plan{Collections: []schema.CollectionSpec{{Name: ""}}}
	err := Run(context.Background(), newFakeStore(), plan)
	if !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestNilStoreRejected(t *testing.T) {
	testlog.Start(t)
	if err := EnsureCollection(context.Background(), nil, schema.Users()); !errors.Is(err, ErrNilStore) {
		t.Fatalf("ensure collection: expected ErrNilStore, got %v", err)
	}
	if err := EnsureIndexes(context.Background(), nil, schema.UsersCollection, nil); !errors.Is(err, ErrNilStore) {
		t.Fatalf("ensure indexes: expected ErrNilStore, got %v", err)
	}
	if _, err := SeedIfEmpty(context.Background(), nil, schema.StepsCollection, nil); !errors.Is(err, ErrNilStore) {
		t.Fatalf("seed: expected ErrNilStore, got %v", err)
	}
}
