package common

import "errors"

// Engine errors. Store and service methods return these unchanged so
// callers can branch with errors.Is.
var (
	// Resolution errors
	ErrNotFound     = errors.New("content not found")
	ErrCorruptState = errors.New("entity has no translations")

	// Write-path errors
	ErrInvalidInput   = errors.New("invalid input")
	ErrSlugConflict   = errors.New("slug already taken in this locale")
	ErrNotSoftDeleted = errors.New("entity must be soft-deleted first")

	// Taxonomy precondition errors
	ErrCycleDetected      = errors.New("reparent would create a cycle")
	ErrInvalidSiblingSet  = errors.New("ordered ids do not match current children")
	ErrHasChildren        = errors.New("node still has children")
	ErrHasAttachedContent = errors.New("node still has attached content")
)
