package binreader

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrTruncatedInput indicates a read past the end of the container.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrInvalidSignature indicates a container header that does not carry the expected tag.
	ErrInvalidSignature = errors.New("invalid signature")
)

// DecodeError reports a failure while decoding a container, with the byte
// offset where it happened.
type DecodeError struct {
	// Container is the kind of container being decoded ("bsk", "bms", ...).
	Container string
	// Offset is the byte offset of the failing read, or -1 when unknown.
	Offset int64

	Err error
}

func (err *DecodeError) Error() string {
	var s strings.Builder
	if err.Container != "" {
		s.WriteString(err.Container)
		s.WriteString(": ")
	}
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Err != nil {
		s.WriteString(": ")
		s.WriteString(err.Err.Error())
	}
	return s.String()
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}

// NewError returns a DecodeError for a failure detected after the bytes were
// read, such as an implausible count or an out-of-range index.
func NewError(container string, offset int, err error) *DecodeError {
	return &DecodeError{Container: container, Offset: int64(offset), Err: err}
}
