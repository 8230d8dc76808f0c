package resolver

import "errors"

var (
	// ErrDocumentRead indicates a source document could not be read.
	ErrDocumentRead = errors.New("document read failed")

	// ErrStageFailed indicates copying a resource next to a document failed.
	ErrStageFailed = errors.New("resource staging failed")
)
