package deleter

import (
	"context"
	"errors"
	"io/fs"
	"syscall"
)

// Reason categorizes why a removal failed
type Reason string

const (
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonInUse            Reason = "in_use"
	ReasonNotFound         Reason = "not_found"
	ReasonInvalidPath      Reason = "invalid_path"
	ReasonCanceled         Reason = "canceled"
	ReasonUnknown          Reason = "unknown"
)

// String returns a human-readable reason
func (r Reason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "Permission denied"
	case ReasonInUse:
		return "File is in use"
	case ReasonNotFound:
		return "Not found"
	case ReasonInvalidPath:
		return "Invalid path"
	case ReasonCanceled:
		return "Canceled"
	case ReasonUnknown:
		return "Unknown error"
	case "":
		return ""
	default:
		return "Unspecified error"
	}
}

// Hint returns a short suggestion for the user, or "" when there is none.
func (r Reason) Hint() string {
	switch r {
	case ReasonPermissionDenied:
		return "check ownership or run with elevated permissions"
	case ReasonInUse:
		return "close the application using it and retry"
	case ReasonNotFound:
		return "already removed"
	default:
		return ""
	}
}

// Classify analyzes a removal error. It returns "" for a nil error.
func Classify(err error) Reason {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrEmptyPath):
		return ReasonInvalidPath
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM:
			return ReasonPermissionDenied
		case syscall.EBUSY, syscall.ETXTBSY:
			return ReasonInUse
		case syscall.ENOENT:
			return ReasonNotFound
		case syscall.ENAMETOOLONG, syscall.EINVAL:
			return ReasonInvalidPath
		}
	}
	return ReasonUnknown
}

// GroupFailures groups failed outcomes by reason
func GroupFailures(outcomes []Outcome) map[Reason][]Outcome {
	grouped := make(map[Reason][]Outcome)
	for _, o := range outcomes {
		if o.Success {
			continue
		}
		grouped[o.Reason] = append(grouped[o.Reason], o)
	}
	return grouped
}
