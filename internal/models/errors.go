package models

import "errors"

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound indicates the requested record does not exist for the
	// tenant. Cross-tenant lookups surface as not found, never as forbidden.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a uniqueness conflict (keyword already stored
	// for the tenant).
	ErrDuplicate = errors.New("duplicate record")

	// ErrKeywordsUnavailable indicates a batch request referenced keywords
	// that are missing, foreign, or not in pending status.
	ErrKeywordsUnavailable = errors.New("some keywords not found or already processed")

	// ErrLimitExceeded indicates the tenant's monthly blog quota would be
	// exceeded by the requested batch.
	ErrLimitExceeded = errors.New("monthly blog limit exceeded")

	// ErrAlreadyPublished indicates a blog is already live on a real store
	// (demo-mode publishes may be re-published).
	ErrAlreadyPublished = errors.New("blog already published")
)
