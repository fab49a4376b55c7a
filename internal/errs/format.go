package errs

import (
	"errors"
	"strings"
)

// FormatForUser renders a human-readable message for CLI output: an *Error
// becomes "Error: " plus its message and any details as "(k=v, ...)"; any
// other error is returned verbatim, and nil yields "".
func FormatForUser(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(e.Message)
	if len(e.Details) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Details {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(v)
			first = false
		}
		sb.WriteString(")")
	}
	return sb.String()
}
