package process

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork   Kind = "NETWORK"
	KindMalformed Kind = "MALFORMED_RESPONSE"
	KindProcess   Kind = "PROCESS_ERROR"
)

// Failure is the only error type returned by Client.
type Failure struct {
	Kind    Kind
	Action  string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	msg := f.Message
	if msg == "" && f.Err != nil {
		msg = f.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s", f.Action, f.Kind, msg)
}

func (f *Failure) Unwrap() error { return f.Err }

func IsKind(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

// KindOf returns the failure kind of err, or "" when err is not a Failure.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func networkFailure(action string, err error) *Failure {
	return &Failure{Kind: KindNetwork, Action: action, Message: err.Error(), Err: err}
}

func malformed(action, format string, args ...any) *Failure {
	return &Failure{Kind: KindMalformed, Action: action, Message: fmt.Sprintf(format, args...)}
}

func processFailure(action, message string) *Failure {
	if message == "" {
		message = "process rejected the request"
	}
	return &Failure{Kind: KindProcess, Action: action, Message: message}
}
