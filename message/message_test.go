package message_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/speedy-rpc/speedygo/errs"
	"github.com/speedy-rpc/speedygo/message"
)

var testMessageSchema = message.NewSchema("TestMessage",
	message.FieldDef{Name: "str", Spec: message.String{}},
	message.FieldDef{Name: "int", Spec: message.Int{}},
)

func TestDefaultsOnConstruction(t *testing.T) {
	c := qt.New(t)

	m := testMessageSchema.New()
	s, err := m.Get("str")
	c.Assert(err, qt.IsNil)
	c.Assert(s, qt.Equals, "")

	i, err := m.Get("int")
	c.Assert(err, qt.IsNil)
	c.Assert(i, qt.Equals, 0)
}

func TestConstructWithKwargsEqualsCopyWith(t *testing.T) {
	c := qt.New(t)

	kw := map[string]interface{}{"str": "Hi there!", "int": 0}
	a := testMessageSchema.New(kw)

	b, err := testMessageSchema.New().CopyWith(kw)
	c.Assert(err, qt.IsNil)

	c.Assert(a.Equal(b), qt.IsTrue)
	c.Assert(a.Hash(), qt.Equals, b.Hash())
}

func TestSetUnknownFieldFails(t *testing.T) {
	c := qt.New(t)

	m := testMessageSchema.New()
	err := m.Set("unknown", 1)
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errs.Code(err), qt.Equals, errs.SchemaError)
}

func TestSetWrongShapeFails(t *testing.T) {
	c := qt.New(t)

	m := testMessageSchema.New()
	err := m.Set("int", "x")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(errs.Code(err), qt.Equals, errs.SchemaError)
}

func TestValidateSucceedsOnWellFormedMessage(t *testing.T) {
	c := qt.New(t)

	m := testMessageSchema.New(map[string]interface{}{"str": "ok", "int": 1})
	c.Assert(m.Validate(), qt.IsNil)
}

func TestHashAndEqualityAreStructural(t *testing.T) {
	c := qt.New(t)

	a := testMessageSchema.New(map[string]interface{}{"str": "x", "int": 1})
	b := testMessageSchema.New(map[string]interface{}{"str": "x", "int": 1})
	diff := testMessageSchema.New(map[string]interface{}{"str": "x", "int": 2})

	c.Assert(a.Equal(b), qt.IsTrue)
	c.Assert(a.Hash(), qt.Equals, b.Hash())
	c.Assert(a.Equal(diff), qt.IsFalse)
}

func TestCompareIsFieldWiseInDeclaredOrder(t *testing.T) {
	c := qt.New(t)

	a := testMessageSchema.New(map[string]interface{}{"str": "a", "int": 5})
	b := testMessageSchema.New(map[string]interface{}{"str": "b", "int": 0})

	c.Assert(a.Compare(b) < 0, qt.IsTrue)
	c.Assert(b.Compare(a) > 0, qt.IsTrue)
	c.Assert(a.Compare(a) == 0, qt.IsTrue)
}

func TestListAndMapFieldsValidateRecursively(t *testing.T) {
	c := qt.New(t)

	schema := message.NewSchema("Bag",
		message.FieldDef{Name: "ints", Spec: message.List{Elem: message.Int{}}},
		message.FieldDef{Name: "labels", Spec: message.Map{Key: message.String{}, Elem: message.String{}}},
	)

	m := schema.New()
	err := m.Set("ints", []interface{}{1, 2, "x"})
	c.Assert(errs.Code(err), qt.Equals, errs.SchemaError)

	err = m.Set("ints", []interface{}{1, 2, 3})
	c.Assert(err, qt.IsNil)

	err = m.Set("labels", map[string]interface{}{"a": "ok"})
	c.Assert(err, qt.IsNil)
}
