package folio

import "errors"

var (
	// ErrNoActiveDocument is returned when an operation needs an active
	// document and the session has none.
	ErrNoActiveDocument = errors.New("folio: no active document")

	// ErrDocumentNotFound is returned when a document id does not exist.
	ErrDocumentNotFound = errors.New("folio: document not found")

	// ErrPageNotFound is returned when a page number does not exist in
	// the active document.
	ErrPageNotFound = errors.New("folio: page not found")

	// ErrBatchRunning is returned when a batch run is already active.
	ErrBatchRunning = errors.New("folio: batch run already active")

	// ErrNotRecognized is returned when an operation needs recognized
	// text and the page has none yet.
	ErrNotRecognized = errors.New("folio: page has no recognized text")

	// ErrModelNotReady is returned when the recognition model could not
	// be brought up.
	ErrModelNotReady = errors.New("folio: recognition model not ready")
)
