package errs

import (
	"errors"
	"strings"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindUnavailable means the upstream explicitly reports the content as
	// unplayable. The message is safe to show to end users.
	KindUnavailable Kind = iota + 1
	// KindMalformed means an upstream payload could not be parsed or lacked an
	// expected field. It is a system fault.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidID indicates that the input is not a syntactically valid video id.
	ErrInvalidID = errors.New("invalid video id")
	// ErrUnavailable matches every error of KindUnavailable.
	ErrUnavailable = errors.New("video unavailable")
	// ErrMalformed matches every error of KindMalformed.
	ErrMalformed = errors.New("malformed upstream response")
	// ErrPrivate indicates that the video is private.
	ErrPrivate = errors.New("video is private")
	// ErrAgeRestricted indicates that the video has an age restriction.
	ErrAgeRestricted = errors.New("age restricted")
	// ErrLoginRequired indicates that the upstream requires a signed in viewer.
	ErrLoginRequired = errors.New("login required")
	// ErrGeoBlocked indicates the video is not available in the current region.
	ErrGeoBlocked = errors.New("geo blocked")
	// ErrRateLimited indicates throttling or rate limiting by the remote service.
	ErrRateLimited = errors.New("rate limited")
	// ErrCipherFailed indicates failure during signature deciphering.
	ErrCipherFailed = errors.New("cipher failed")
)

// Error is the distinguished domain error. Error() returns Message verbatim.
type Error struct {
	Kind    Kind
	Message string
	// Status is the upstream playability status when known (ERROR, LOGIN_REQUIRED, ...).
	Status string
	Err    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels and the reason-derived refinements.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	if e.Kind != KindUnavailable {
		return false
	}
	return refine(e.Status, e.Message) == target
}

// Unavailable builds a KindUnavailable error carrying the upstream reason.
func Unavailable(status, reason string) *Error {
	return &Error{Kind: KindUnavailable, Status: status, Message: reason}
}

// Malformed builds a KindMalformed error. cause may be nil.
func Malformed(message string, cause error) *Error {
	return &Error{Kind: KindMalformed, Message: message, Err: cause}
}

// IsDomain reports whether err carries a reason that may be shown to end
// users as a normal "no result" outcome.
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindUnavailable
}

// Reason returns the message of the domain error in err's chain, if any.
func Reason(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

// refine maps an upstream status and reason to a specific sentinel.
func refine(status, reason string) error {
	if status == "LOGIN_REQUIRED" {
		r := strings.ToLower(reason)
		switch {
		case strings.Contains(r, "private"):
			return ErrPrivate
		case strings.Contains(r, "confirm your age") || strings.Contains(r, "inappropriate"):
			return ErrAgeRestricted
		}
		return ErrLoginRequired
	}
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "private"):
		return ErrPrivate
	case strings.Contains(r, "country") || strings.Contains(r, "region"):
		return ErrGeoBlocked
	case strings.Contains(r, "confirm your age") || strings.Contains(r, "age-restricted"):
		return ErrAgeRestricted
	case strings.Contains(r, "too many requests") || strings.Contains(r, "unusual traffic"):
		return ErrRateLimited
	case strings.Contains(r, "sign in"):
		return ErrLoginRequired
	}
	return nil
}
