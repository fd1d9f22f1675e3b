// Package reconcile owns the idempotent bootstrap operations.
//
// Ownership boundary:
// - collection existence and validator lifecycle
// - index presence by name
// - reference-data seeding behind an emptiness check
//
// Every run re-derives what is missing from the live store; nothing is cached
// between runs. Execution is one linear sequence of blocking calls with no
// retry and no rollback. The first store error aborts the run.
package reconcile
