package trigger

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal trigger error
type Kind int

const (
	// KindConfig covers anything wrong with the resolved configuration.
	// No network activity happens after one of these.
	KindConfig Kind = iota + 1

	// KindTransport covers timeouts, refused connections and DNS failures
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindTransport:
		return "transport error"
	default:
		return "error"
	}
}

// Error is a fatal trigger error of a known kind
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func configError(format string, args ...any) error {
	return &Error{Kind: KindConfig, Err: fmt.Errorf(format, args...)}
}

// ConfigError wraps err as a configuration error
func ConfigError(err error) error {
	return &Error{Kind: KindConfig, Err: err}
}

// TransportError wraps err as a transport error
func TransportError(err error) error {
	return &Error{Kind: KindTransport, Err: err}
}

// IsConfig reports whether err is a configuration error
func IsConfig(err error) bool {
	return kindOf(err) == KindConfig
}

// IsTransport reports whether err is a transport error
func IsTransport(err error) bool {
	return kindOf(err) == KindTransport
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
