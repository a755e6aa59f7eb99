// Package mcp implements the Model Context Protocol server exposing
// the Airflow documentation index to AI clients.
package mcp

import (
	"context"
	"errors"
	"fmt"

	airerrors "github.com/airdocs-mcp/airdocs/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeIndexNotFound indicates no documentation index exists.
	ErrCodeIndexNotFound = -32001

	// ErrCodeDocumentNotFound indicates the requested document does
	// not exist in the index.
	ErrCodeDocumentNotFound = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrDocumentNotFound indicates a document lookup missed.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var appErr *airerrors.Error
	if errors.As(err, &appErr) {
		return mapAppError(appErr)
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return &MCPError{
			Code:    ErrCodeDocumentNotFound,
			Message: "Document not found.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{
			Code:    ErrCodeMethodNotFound,
			Message: "Tool not found.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// mapAppError converts a coded application error to an MCPError.
func mapAppError(ae *airerrors.Error) *MCPError {
	message := ae.Message
	if ae.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ae.Message, ae.Suggestion)
	}

	switch ae.Category {
	case airerrors.CategoryValidation:
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: message,
		}
	case airerrors.CategoryStorage:
		if ae.Code == airerrors.ErrCodeStorageUnavailable {
			return &MCPError{
				Code:    ErrCodeIndexNotFound,
				Message: fmt.Sprintf("%s Run 'airdocs index' to build the index.", ae.Message),
			}
		}
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: message,
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: message,
		}
	}
}
