package pipeline

import "fmt"

// FailureKind classifies why an upload did not make it into the sheet.
type FailureKind string

const (
	// FailureNoInput means no image was supplied.
	FailureNoInput FailureKind = "no_input"

	// FailureUnparseable means the model reply could not be decoded.
	FailureUnparseable FailureKind = "unparseable"

	// FailureEmpty means the model decided the image holds no invoice.
	FailureEmpty FailureKind = "empty"

	// FailureSheet means the spreadsheet update failed.
	FailureSheet FailureKind = "sheet"

	// FailureInternal covers everything else, such as model transport
	// errors.
	FailureInternal FailureKind = "internal"
)

// ProcessError is the error type returned by Processor.Process. Detail is
// safe to show to the user; the wrapped cause may carry more.
type ProcessError struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Warning reports whether the failure is an expected outcome of a bad or
// unreadable upload rather than a fault in the service.
func (e *ProcessError) Warning() bool {
	switch e.Kind {
	case FailureNoInput, FailureUnparseable, FailureEmpty:
		return true
	default:
		return false
	}
}
