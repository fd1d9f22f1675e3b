package reconcile

import "errors"

var (
	ErrNilStore            = errors.New("reconcile: nil store")
	ErrEmptyCollectionName = errors.New("reconcile: empty collection name")
	ErrInvalidPlan         = errors.New("reconcile: invalid plan")
)
