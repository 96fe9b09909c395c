package mdconvert

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown     = errors.New("markdown content cannot be empty")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrConverterNotFound = errors.New("converter not found")
	ErrConversionFailed  = errors.New("conversion failed")
	ErrOutputDir         = errors.New("cannot prepare output directory")
)
