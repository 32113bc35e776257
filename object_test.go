package jsonedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectAddAppendsInOrder(t *testing.T) {
	ed := New(mustParse(t, `{"b":1}`))
	ed.Object("$").Add("a", 2).Object("$").Add("c", 3)
	require.NoError(t, ed.Err())
	assert.Equal(t, `{"b":1,"a":2,"c":3}`, ed.String())
}

func TestObjectAddAll(t *testing.T) {
	ed := New(mustParse(t, `{"a":{"x":1}}`))
	ed.Object("$").AddAll(
		Attr("b", CopyOf("$.a")),
		Attr("a", "replaced"),
	)
	require.NoError(t, ed.Err())
	assert.Equal(t, `{"a":"replaced","b":{"x":1}}`, ed.String())
}

func TestObjectAddAllIsAtomic(t *testing.T) {
	ed := New(mustParse(t, `{"a":1}`))
	ed.Object("$").AddAll(Attr("b", 2), Attr("c", CopyOf("$.missing")))
	assert.ErrorIs(t, ed.Err(), ErrNoMatch)
	assert.Equal(t, `{"a":1}`, ed.Root().String())
}

func TestObjectSetAcceptsAnyValue(t *testing.T) {
	ed := New(mustParse(t, `{"a":"s","b":[1]}`))
	ed.Object("$").Set("a", Object{Attr("nested", true)}).
		Object("$").Set("b", nil)
	require.NoError(t, ed.Err())
	assert.Equal(t, `{"a":{"nested":true},"b":null}`, ed.String())
}

func TestObjectRemoveKeepsOrder(t *testing.T) {
	ed := New(mustParse(t, `{"a":1,"b":2,"c":3}`))
	ed.Object("$").Remove("b").Object("$").Add("d", 4)
	require.NoError(t, ed.Err())
	root := ed.Root()
	assert.Equal(t, []string{"a", "c", "d"}, root.Keys())
	assert.Equal(t, "3", root.Get("c").Number())
}

func TestObjectViewByQuotedKey(t *testing.T) {
	ed := New(mustParse(t, `{"odd key":{"a.b":{}}}`))
	ed.Object(`$['odd key']["a.b"]`).Add("ok", 1)
	require.NoError(t, ed.Err())
	assert.Equal(t, `{"odd key":{"a.b":{"ok":1}}}`, ed.String())
}

func TestRootViewOfArrayDocument(t *testing.T) {
	ed := New(mustParse(t, `[1]`))
	ed.Object("$").Add("a", 1)
	assert.ErrorIs(t, ed.Err(), ErrNotAnObject)

	ed = New(mustParse(t, `[1]`))
	ed.Array("$").Add(2)
	require.NoError(t, ed.Err())
	assert.Equal(t, `[1,2]`, ed.String())
}
