package nyxerrors

import (
	"context"
	"errors"
)

// ClassifyContext maps a context error to its Code, falling back otherwise.
func ClassifyContext(err error, fallback Code) Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	default:
		return fallback
	}
}
