// ABOUTME: Error taxonomy shared by the client, session store and commands
// ABOUTME: Classifies failures by kind and carries the user-facing message

package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindServer
	KindNetwork
	KindPersistence
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Message, when set, is what the user sees.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// Sentinels for errors.Is checks against a kind
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrServer      = &Error{Kind: KindServer}
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrPersistence = &Error{Kind: KindPersistence}
)

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare sentinel of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an Error of the given kind
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err under kind. Returns nil if err is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ServerMessage is implemented by errors that carry a message from the backend
type ServerMessage interface {
	ServerMessage() string
}

// UserMessage returns the backend's message when one is in the chain,
// otherwise fallback
func UserMessage(err error, fallback string) string {
	var sm ServerMessage
	if errors.As(err, &sm) {
		if msg := sm.ServerMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
