// Package errors provides structured error handling for AirDocs.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (database file, disk)
//   - 3XX: Git / network errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates database and disk I/O errors.
	CategoryStorage Category = "STORAGE"
	// CategoryGit indicates git clone / fetch errors.
	CategoryGit Category = "GIT"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStorageUnavailable = "ERR_201_STORAGE_UNAVAILABLE"
	ErrCodeStoragePermission  = "ERR_202_STORAGE_PERMISSION"
	ErrCodeStorageCorrupt     = "ERR_203_STORAGE_CORRUPT"
	ErrCodeIndexLocked        = "ERR_204_INDEX_LOCKED"

	// Git errors (300-399)
	ErrCodeGitClone   = "ERR_301_GIT_CLONE"
	ErrCodeGitMissing = "ERR_302_GIT_MISSING"

	// Validation errors (400-499)
	ErrCodeInvalidSource = "ERR_401_INVALID_SOURCE"
	ErrCodeQuerySyntax   = "ERR_402_QUERY_SYNTAX"
	ErrCodeQueryEmpty    = "ERR_403_QUERY_EMPTY"
	ErrCodeInvalidInput  = "ERR_404_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
	ErrCodeParseFailed  = "ERR_503_PARSE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryGit
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStorageUnavailable, ErrCodeStorageCorrupt:
		return SeverityFatal
	case ErrCodeParseFailed:
		return SeverityWarning
	default:
		return SeverityError
	}
}
