package export

import "errors"

var (
	// ErrInvalidInvoice is returned before rendering when a field the document needs is missing
	ErrInvalidInvoice = errors.New("invoice cannot be exported")

	// ErrRender wraps failures of the PDF renderer or of writing its output
	ErrRender = errors.New("failed to render invoice document")
)
