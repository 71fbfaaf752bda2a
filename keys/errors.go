package keys

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind (and Artifact, where set) rather than
// matching error strings. Filesystem failures are never wrapped in *Error;
// they surface as the *fs.PathError returned by the os package.
type Kind string

const (
	KindNameRequired       Kind = "NameRequired"
	KindArtifactExists     Kind = "ArtifactExists"
	KindDerivationMismatch Kind = "DerivationMismatch"
	KindInvalidSeed        Kind = "InvalidSeed"
	KindEncoding           Kind = "Encoding"
)

// Error is the package's structured error type.
//
// Artifact and Path are set when the failure concerns one artifact slot:
// ArtifactExists carries both, DerivationMismatch carries only Artifact.
type Error struct {
	Kind     Kind
	Artifact Artifact
	Path     string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func wrapError(kind Kind, msg string, cause error) error {
	if cause == nil {
		return newError(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func errNameRequired() error {
	return newError(KindNameRequired, "name is required")
}

func errArtifactExists(a Artifact, path string) error {
	return &Error{
		Kind:     KindArtifactExists,
		Artifact: a,
		Path:     path,
		Message:  fmt.Sprintf("the %s already exists (%s)", a.Description(), path),
	}
}

func errDerivationMismatch(a Artifact) error {
	return &Error{
		Kind:     KindDerivationMismatch,
		Artifact: a,
		Message:  fmt.Sprintf("%s from seed derivation is different", a.Field()),
	}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// ArtifactOf returns the artifact slot a structured error refers to.
// ok is false when err is not a *Error or names no artifact.
func ArtifactOf(err error) (a Artifact, ok bool) {
	var e *Error
	if !errors.As(err, &e) || e.Artifact == 0 {
		return 0, false
	}
	return e.Artifact, true
}
