package errs_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/speedy-rpc/speedygo/errs"
)

func TestBuilderDefaults(t *testing.T) {
	c := qt.New(t)

	err := errs.B().Err()
	c.Assert(errs.Code(err), qt.Equals, errs.Unknown)
	c.Assert(err.Error(), qt.Equals, "unknown: unknown error")
}

func TestBuilderCodeAndMessage(t *testing.T) {
	c := qt.New(t)

	err := errs.B().Code(errs.NotFound).Msgf("no object %q", "mock").Err()
	c.Assert(errs.Code(err), qt.Equals, errs.NotFound)
	c.Assert(err.Error(), qt.Equals, `not_found: no object "mock"`)
	c.Assert(errs.NotFound.HTTPStatus(), qt.Equals, 404)
}

func TestWrapPreservesCode(t *testing.T) {
	c := qt.New(t)

	inner := errs.B().Code(errs.CodecError).Msg("bad bytes").Err()
	wrapped := errs.Wrap(inner, "decoding request")
	c.Assert(errs.Code(wrapped), qt.Equals, errs.CodecError)
	c.Assert(wrapped.(*errs.Error).ErrorMessage(), qt.Equals, "decoding request: bad bytes")
}

func TestWrapNil(t *testing.T) {
	c := qt.New(t)
	c.Assert(errs.Wrap(nil, "whatever"), qt.IsNil)
	c.Assert(errs.WrapCode(nil, errs.Internal, "whatever"), qt.IsNil)
}

func TestConvertPlainError(t *testing.T) {
	c := qt.New(t)
	err := errs.Convert(errors.New("boom"))
	c.Assert(errs.Code(err), qt.Equals, errs.Unknown)
}

func TestMetaMerge(t *testing.T) {
	c := qt.New(t)
	err := errs.B().Code(errs.SchemaError).Meta("field", "intval").Msg("wrong type").Err().(*errs.Error)
	c.Assert(err.Meta["field"], qt.Equals, "intval")
}
