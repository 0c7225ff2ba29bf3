package core

import (
	"fmt"

	errs "github.com/jmgilman/go/errors"
)

// Error codes for filesystem and shell failures. Codes shared with the
// platform error package reuse its values.
const (
	CodeNotFound         = errs.CodeNotFound
	CodeAlreadyExists    = errs.CodeAlreadyExists
	CodePermissionDenied = errs.CodeForbidden

	CodeNotADirectory   errs.ErrorCode = "NOT_A_DIRECTORY"
	CodeIsADirectory    errs.ErrorCode = "IS_A_DIRECTORY"
	CodeNotEmpty        errs.ErrorCode = "NOT_EMPTY"
	CodeSystemProtected errs.ErrorCode = "SYSTEM_PROTECTED"
	CodeInvalidName     errs.ErrorCode = "INVALID_NAME"
	CodeInvalidMode     errs.ErrorCode = "INVALID_MODE"
	CodeParentMissing   errs.ErrorCode = "PARENT_MISSING"
	CodeCommandNotFound errs.ErrorCode = "COMMAND_NOT_FOUND"
	CodeMissingOperand  errs.ErrorCode = "MISSING_OPERAND"
	CodeAdminRequired   errs.ErrorCode = "ADMIN_REQUIRED"
	CodeCorruptSnapshot errs.ErrorCode = "CORRUPT_SNAPSHOT"
)

var reasons = map[errs.ErrorCode]string{
	CodeNotFound:         "No such file or directory",
	CodeAlreadyExists:    "File exists",
	CodePermissionDenied: "Permission denied",
	CodeNotADirectory:    "Not a directory",
	CodeIsADirectory:     "Is a directory",
	CodeNotEmpty:         "Directory not empty",
	CodeSystemProtected:  "Operation not permitted on system directory",
	CodeInvalidName:      "Invalid name",
	CodeInvalidMode:      "Invalid permission string",
	CodeParentMissing:    "No such file or directory",
	CodeCommandNotFound:  "command not found",
	CodeMissingOperand:   "missing operand(s)",
	CodeAdminRequired:    "permission denied (admin only)",
	CodeCorruptSnapshot:  "corrupt snapshot",
}

// PathError records a failed filesystem operation on a path.
// It satisfies errs.PlatformError so codes survive wrapping.
type PathError struct {
	Op      string         // operation, e.g. "mkdir", "read"
	Path    string         // path as given by the caller
	ErrCode errs.ErrorCode // failure category
}

// NewPathError creates a PathError
func NewPathError(op, path string, code errs.ErrorCode) *PathError {
	return &PathError{Op: op, Path: path, ErrCode: code}
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Message())
}

// Code returns the failure category
func (e *PathError) Code() errs.ErrorCode { return e.ErrCode }

// Classification is always permanent; nothing in the tree is retryable
func (e *PathError) Classification() errs.ErrorClassification {
	return errs.ClassificationPermanent
}

// Message returns the UNIX-style reason text
func (e *PathError) Message() string { return ReasonFor(e.ErrCode) }

// Context exposes the operation and path as metadata
func (e *PathError) Context() map[string]interface{} {
	return map[string]interface{}{"op": e.Op, "path": e.Path}
}

// Unwrap returns nil; PathError is always a leaf
func (e *PathError) Unwrap() error { return nil }

// CodeOf extracts the error code from anywhere in the chain
func CodeOf(err error) errs.ErrorCode {
	return errs.GetCode(err)
}

// HasCode reports whether err carries the given code
func HasCode(err error, code errs.ErrorCode) bool {
	return err != nil && errs.GetCode(err) == code
}

// ReasonFor returns the user-facing reason for a code
func ReasonFor(code errs.ErrorCode) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return string(code)
}

// Reason renders the short user-facing reason for an error: the UNIX-style
// text for path errors, the bare message for other coded errors.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var pathErr *PathError
	if errs.As(err, &pathErr) {
		return pathErr.Message()
	}
	var pe errs.PlatformError
	if errs.As(err, &pe) {
		return pe.Message()
	}
	return err.Error()
}

// Message renders an error for a terminal: path errors keep their operation
// and path, coded errors drop the code prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pathErr *PathError
	if errs.As(err, &pathErr) {
		return pathErr.Error()
	}
	var pe errs.PlatformError
	if errs.As(err, &pe) {
		return pe.Message()
	}
	return err.Error()
}
