package processor

import "errors"

var (
	// ErrEmptyInput means ingestion produced nothing to index: no supported
	// files, or no chunks after splitting.
	ErrEmptyInput = errors.New("no content to index")

	// ErrNoActiveIndex means the operation needs a built or loaded corpus
	// and there is none.
	ErrNoActiveIndex = errors.New("no active index")
)
