package tecdsa

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a threshold-signing error
type ErrorCategory string

const (
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryThreshold     ErrorCategory = "threshold"
	ErrorCategoryParticipant   ErrorCategory = "participant"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
	ErrorCategoryNonce         ErrorCategory = "nonce"
	ErrorCategorySigning       ErrorCategory = "signing"
	ErrorCategoryEncoding      ErrorCategory = "encoding"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Important, the attempt is lost but a retry may succeed
	ErrorSeverityHigh     ErrorSeverity = "high"     // Caller bug or bad input, do not retry as-is
	ErrorSeverityCritical ErrorSeverity = "critical" // Environment failure (randomness, memory)
)

// Error is the structured error returned by every operation in this package.
// Sentinels are compared by Code, so errors.Is matches a sentinel even after
// WithContext or WithCause produced a copy.
type Error struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) clone() *Error {
	c := *e
	c.Context = make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		c.Context[k] = v
	}
	return &c
}

// WithContext returns a copy of the error carrying an extra key/value.
func (e *Error) WithContext(key string, value interface{}) *Error {
	c := e.clone()
	c.Context[key] = value
	return c
}

// WithCause returns a copy of the error wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails returns a copy of the error with a human readable detail.
func (e *Error) WithDetails(format string, args ...interface{}) *Error {
	c := e.clone()
	c.Details = fmt.Sprintf(format, args...)
	return c
}

// IsRecoverable returns whether a fresh signing attempt may succeed
func (e *Error) IsRecoverable() bool {
	return e.Recoverable
}

// NewError creates a new structured error. Only medium severity errors are
// recoverable: those describe a lost attempt rather than bad input.
func NewError(category ErrorCategory, severity ErrorSeverity, code, message string) *Error {
	return &Error{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity == ErrorSeverityMedium,
	}
}

// Threshold and participant errors
var (
	ErrInvalidThreshold = NewError(
		ErrorCategoryThreshold, ErrorSeverityHigh, "INVALID_THRESHOLD",
		"threshold must satisfy 1 <= t <= n")

	ErrInsufficientPartials = NewError(
		ErrorCategoryThreshold, ErrorSeverityHigh, "INSUFFICIENT_PARTIALS",
		"fewer partial signatures than the threshold")

	ErrDegenerateInterpolationSet = NewError(
		ErrorCategoryParticipant, ErrorSeverityHigh, "DEGENERATE_INTERPOLATION_SET",
		"duplicate participant indices in interpolation set")

	ErrInvalidShare = NewError(
		ErrorCategoryParticipant, ErrorSeverityHigh, "INVALID_SHARE",
		"share is malformed")
)

// Cryptographic errors
var (
	ErrSingularElement = NewError(
		ErrorCategoryCryptographic, ErrorSeverityMedium, "SINGULAR_ELEMENT",
		"modular inverse of zero")

	ErrRandomnessGeneration = NewError(
		ErrorCategoryCryptographic, ErrorSeverityCritical, "RANDOMNESS_GENERATION_FAILED",
		"failed to generate secure randomness")

	ErrInvalidDigest = NewError(
		ErrorCategoryValidation, ErrorSeverityHigh, "INVALID_DIGEST",
		"message digest must be 32 bytes")
)

// Nonce errors
var (
	ErrDegenerateNonceOrR = NewError(
		ErrorCategoryNonce, ErrorSeverityMedium, "DEGENERATE_NONCE_OR_R",
		"nonce is zero or yields r = 0, discard it and agree on a new one")

	ErrNonceAgreementUnsupported = NewError(
		ErrorCategoryNonce, ErrorSeverityHigh, "NONCE_AGREEMENT_UNSUPPORTED",
		"nonce agreement protocol is not available")
)

// Signing errors
var (
	ErrInconsistentNonce = NewError(
		ErrorCategorySigning, ErrorSeverityMedium, "INCONSISTENT_NONCE",
		"partial signatures do not share a common r")

	ErrRecoveryMismatch = NewError(
		ErrorCategorySigning, ErrorSeverityMedium, "RECOVERY_MISMATCH",
		"no recovery id reproduces the aggregate public key")

	ErrRetriesExhausted = NewError(
		ErrorCategorySigning, ErrorSeverityHigh, "RETRIES_EXHAUSTED",
		"signing event abandoned after the maximum number of nonce attempts")
)

// Configuration and encoding errors
var (
	ErrInvalidCurve = NewError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "INVALID_CURVE",
		"curve is invalid or unsupported")

	ErrConfigurationMismatch = NewError(
		ErrorCategoryConfiguration, ErrorSeverityHigh, "CONFIGURATION_MISMATCH",
		"configuration parameters are inconsistent")

	ErrMalformedEncoding = NewError(
		ErrorCategoryEncoding, ErrorSeverityHigh, "MALFORMED_ENCODING",
		"encoded value cannot be decoded")
)

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// IsRecoverableError reports whether the signing event may be retried with a
// freshly agreed nonce. Errors from outside this package are not.
func IsRecoverableError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsRecoverable()
	}
	return false
}

// GetErrorContext extracts context from a structured error
func GetErrorContext(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Context
	}
	return nil
}
