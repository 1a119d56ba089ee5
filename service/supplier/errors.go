package supplier

import "errors"

var (
	ErrSourceNotFound    = errors.New("supplier not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrNotFeedSource     = errors.New("supplier is not a feed source")
	ErrFeedURLMissing    = errors.New("feed URL not configured")
	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrEmptyFeed         = errors.New("no valid data in feed")
	ErrInvalidTransition = errors.New("invalid sync state transition")
)
