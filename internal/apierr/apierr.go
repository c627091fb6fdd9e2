// Package apierr defines the error taxonomy shared by the pipeline and the
// remote client. Callers branch on Kind via errors.As / apierr.IsKind rather
// than string matching.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// InvalidInput: missing required identifiers or malformed parameters;
	// fatal to the single operation, never retried.
	InvalidInput Kind = iota + 1
	// RemoteUnavailable: network failure or remote 5xx after the retry
	// budget is exhausted.
	RemoteUnavailable
	// RateLimitExceeded: the token bucket stayed empty beyond the bounded
	// wait.
	RateLimitExceeded
	// NodeNotFound: a requested node id is absent from the fetched subtree.
	NodeNotFound
	// PartialFailure: a batch operation where some items failed; carried
	// alongside the successful results, never escalated to a whole-batch
	// failure.
	PartialFailure
	// FilesystemError: all materialization tiers exhausted.
	FilesystemError
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case RemoteUnavailable:
		return "remote_unavailable"
	case RateLimitExceeded:
		return "rate_limit_exceeded"
	case NodeNotFound:
		return "node_not_found"
	case PartialFailure:
		return "partial_failure"
	case FilesystemError:
		return "filesystem_error"
	default:
		return "unknown"
	}
}

// Error carries a classified failure with the operation context needed to
// retry a narrower request: operation name, file id, node id(s).
type Error struct {
	Kind   Kind
	Op     string
	FileID string
	NodeID string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	parts := []string{e.Kind.String()}
	if e.Op != "" {
		parts = append(parts, "op="+e.Op)
	}
	if e.FileID != "" {
		parts = append(parts, "file="+e.FileID)
	}
	if e.NodeID != "" {
		parts = append(parts, "node="+e.NodeID)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	msg := strings.Join(parts, " ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error with a formatted detail message.
func New(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches classification and operation context to an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithFile returns a copy of the error annotated with a file id.
func (e *Error) WithFile(fileID string) *Error {
	out := *e
	out.FileID = fileID
	return &out
}

// WithNode returns a copy of the error annotated with a node id.
func (e *Error) WithNode(nodeID string) *Error {
	out := *e
	out.NodeID = nodeID
	return &out
}

// IsKind reports whether err (or anything it wraps) is an *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind == kind
	}
	return false
}
