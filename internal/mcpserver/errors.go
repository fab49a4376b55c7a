package mcpserver

import (
	"errors"
	"fmt"

	"github.com/mcp-docs/mcp-docs/internal/errs"
)

// Standard JSON-RPC error codes.
const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
	codeInternalError  = -32603
)

// toolError is a JSON-RPC-shaped error surfaced to the calling MCP client.
type toolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *toolError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

func invalidParamsError(msg string) *toolError {
	return &toolError{Code: codeInvalidParams, Message: msg}
}

func methodNotFoundError(name string) *toolError {
	return &toolError{Code: codeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}

// mapError translates a domain error into a JSON-RPC-shaped tool error.
func mapError(err error) *toolError {
	if err == nil {
		return nil
	}

	var e *errs.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case errs.KindNotFound:
			return &toolError{Code: codeMethodNotFound, Message: e.Message}
		case errs.KindValidation:
			return &toolError{Code: codeInvalidParams, Message: e.Message}
		default:
			return &toolError{Code: codeInternalError, Message: e.Message}
		}
	}
	return &toolError{Code: codeInternalError, Message: err.Error()}
}
