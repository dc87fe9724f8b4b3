package weather

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrLocationNotFound is wrapped by providers when the upstream does not know the location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrTimeout is returned when a provider call does not finish within its bound.
	ErrTimeout = errors.New("provider call timed out")
)

// ErrorKind is the closed set of provider failure kinds.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindLocationNotFound
	KindTimeout
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindLocationNotFound:
		return "location_not_found"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// KindOf maps an error returned by a provider call to its ErrorKind.
// Anything not recognised as not-found or a timeout is KindOther.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrLocationNotFound) {
		return KindLocationNotFound
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindOther
}

// ClassifyFailures decides the aggregate failure class for a complete set of
// outcome kinds. Any success yields FailureNone. An empty set is FailureAllOther.
func ClassifyFailures(kinds []ErrorKind) Failure {
	if len(kinds) == 0 {
		return FailureAllOther
	}
	allNotFound := true
	for _, k := range kinds {
		if k == KindNone {
			return FailureNone
		}
		if k != KindLocationNotFound {
			allNotFound = false
		}
	}
	if allNotFound {
		return FailureAllNotFound
	}
	return FailureAllOther
}
