package utils

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes the failures that can happen during API key checks,
// code imports, and detection API calls.
type ErrorKind string

const (
	ErrParse  ErrorKind = "Parse"
	ErrExists ErrorKind = "Exists"
	ErrExten  ErrorKind = "Extension"
	ErrStatus ErrorKind = "Status"
	ErrLimit  ErrorKind = "Limit"
	ErrAscii  ErrorKind = "Ascii"
	ErrGitHub ErrorKind = "GitHub"
	ErrUpload ErrorKind = "Upload"
)

// KindedError is an error carrying one of the ErrorKind categories plus a
// human-readable message. Import-time errors abort only the current import
// action; per-file detection errors are recorded on the file's status cell.
type KindedError struct {
	Kind ErrorKind
	Msg  string
}

func (e *KindedError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Msg)
}

func newKindedError(kind ErrorKind, format string, args ...any) *KindedError {
	return &KindedError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func ParseErr(format string, args ...any) *KindedError {
	return newKindedError(ErrParse, format, args...)
}

func ExistsErr(format string, args ...any) *KindedError {
	return newKindedError(ErrExists, format, args...)
}

func ExtenErr(format string, args ...any) *KindedError {
	return newKindedError(ErrExten, format, args...)
}

func StatusErr(format string, args ...any) *KindedError {
	return newKindedError(ErrStatus, format, args...)
}

func LimitErr(format string, args ...any) *KindedError {
	return newKindedError(ErrLimit, format, args...)
}

func AsciiErr(format string, args ...any) *KindedError {
	return newKindedError(ErrAscii, format, args...)
}

func GitHubErr(format string, args ...any) *KindedError {
	return newKindedError(ErrGitHub, format, args...)
}

func UploadErr(format string, args ...any) *KindedError {
	return newKindedError(ErrUpload, format, args...)
}

// ErrorIsKind reports whether err is (or wraps) a KindedError of the given kind.
func ErrorIsKind(err error, kind ErrorKind) bool {
	var ke *KindedError
	return errors.As(err, &ke) && ke.Kind == kind
}
