// Package schema owns the declarative shape of the sign-up store.
//
// Ownership boundary:
// - collection and index spec types
// - the two collection definitions (users, onboarding_steps)
// - the fixed onboarding-step seed records
//
// Validator and partial-filter documents are opaque bson blobs handed to the
// store verbatim; this package does not interpret them.
package schema
