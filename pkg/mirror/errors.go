package mirror

import (
	"errors"
	"fmt"
)

var (
	ErrLocalPathNotFound       = errors.New("local path does not exist")
	ErrRemotePathNotFound      = errors.New("remote path does not exist")
	ErrDirectoryCreationFailed = errors.New("failed to create directory")
	ErrTransferFailed          = errors.New("failed to transfer file")
	ErrSessionFailure          = errors.New("session failure")
)

// Error is the failure every Engine operation returns,
// errors.Is matches its Kind against the sentinels above,
// errors.Unwrap yields the underlying error untouched.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func newError(kind error, op, path string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	return &Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}

	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}
