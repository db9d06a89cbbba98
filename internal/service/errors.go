// Package service provides business logic services for the Meridian
// back-office.
package service

import (
	"errors"
)

// Service errors
var (
	// ErrStoreFailure indicates a datastore operation failed. The raw
	// cause is logged; callers only ever see this generic value.
	ErrStoreFailure = errors.New("storage operation failed")
)
