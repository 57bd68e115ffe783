// Package errkind categorizes failures so the chat loop can print a useful
// hint instead of a raw error chain. Clients attach a Kind at the point where
// the failure is still unambiguous (an HTTP status, a transport error);
// Classify handles whatever reaches it untyped.
package errkind

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a coarse failure category.
type Kind int

const (
	Generic Kind = iota
	Network
	Auth
	RateLimit
	Extraction
	IndexBuild
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network"
	case Auth:
		return "auth"
	case RateLimit:
		return "rate_limit"
	case Extraction:
		return "extraction"
	case IndexBuild:
		return "index_build"
	default:
		return "generic"
	}
}

// Error pairs an underlying error with its Kind.
type Error struct {
	kind Kind
	err  error
}

// New wraps err with the given kind. Returns nil if err is nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: err}
}

// Errorf formats a new error carrying the given kind. The format string
// supports %w wrapping.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// Kind returns the failure category.
func (e *Error) Kind() Kind { return e.kind }

// Classify returns the Kind of err. A typed *Error anywhere in the chain
// wins; otherwise the error message is matched against known upstream
// substrings. The substring matching is a deliberate last resort for errors
// that arrive untyped from third-party layers — it is fragile and lives only
// here.
func Classify(err error) Kind {
	if err == nil {
		return Generic
	}
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "incorrect api key"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "unauthorized"):
		return Auth
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"):
		return RateLimit
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "timed out"),
		strings.Contains(msg, "connection reset"):
		return Network
	default:
		return Generic
	}
}

// Hint returns a short user-facing suggestion for a failure category.
// Empty for Generic.
func Hint(k Kind) string {
	switch k {
	case Auth:
		return "Your API key looks invalid or revoked. Please verify it and restart."
	case RateLimit:
		return "You may be hitting the provider's rate limits. Wait a moment and try again."
	case Network:
		return "A network error occurred. Check your internet connection and try again."
	default:
		return ""
	}
}
