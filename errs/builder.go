package errs

import "fmt"

// Builder allows gradual construction of an *Error. The zero value is
// ready to use.
type Builder struct {
	code    ErrCode
	codeSet bool
	msg     string
	meta    []interface{}
	err     error
}

// B starts a new Builder.
func B() *Builder { return &Builder{} }

func (b *Builder) Code(c ErrCode) *Builder {
	b.code, b.codeSet = c, true
	return b
}

func (b *Builder) Msg(msg string) *Builder {
	b.msg = msg
	return b
}

func (b *Builder) Msgf(format string, args ...interface{}) *Builder {
	b.msg = fmt.Sprintf(format, args...)
	return b
}

func (b *Builder) Meta(pairs ...interface{}) *Builder {
	b.meta = append(b.meta, pairs...)
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err = err
	if e, ok := err.(*Error); ok && !b.codeSet {
		b.code = e.Code
	}
	return b
}

// Err returns the built error. It never returns nil: an unset code becomes
// Unknown, and an unset message becomes "unknown error" when there's no
// cause to borrow a message from.
func (b *Builder) Err() error {
	code := b.code
	if !b.codeSet {
		code = Unknown
	}
	msg := b.msg
	if msg == "" && b.err == nil {
		msg = "unknown error"
	}

	var meta Metadata
	var stack []byte
	if e, ok := b.err.(*Error); ok {
		meta = e.Meta
		stack = e.stack
	} else {
		stack = captureStack()
	}

	return &Error{
		Code:       code,
		Message:    msg,
		Meta:       mergeMeta(meta, b.meta),
		underlying: b.err,
		stack:      stack,
	}
}
