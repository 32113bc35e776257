package jsonedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePredicate(t *testing.T) {
	expensive, err := CompilePredicate(`@.price > 10`)
	require.NoError(t, err)

	ed := New(mustParse(t, storeDoc))
	ed.Array("$.store.book").RemoveIf(expensive)
	require.NoError(t, ed.Err())
	assert.Equal(t, `[{"title":"A","price":8,"tags":["x"]}]`, find(t, ed, "$.store.book").String())
}

func TestCompilePredicateNonMatchingElements(t *testing.T) {
	p, err := CompilePredicate(`it.tags[0] == "x"`)
	require.NoError(t, err)
	assert.True(t, p(mustParse(t, `{"tags":["x"]}`)))
	assert.False(t, p(mustParse(t, `{}`)))
	assert.False(t, p(FromString("plain")))

	notBool, err := CompilePredicate(`@`)
	require.NoError(t, err)
	assert.False(t, notBool(FromInt(1)))
}

func TestCompileMapper(t *testing.T) {
	m, err := CompileMapper(`{"title": upper(@.title), "cheap": @.price < 10}`)
	require.NoError(t, err)

	ed := New(mustParse(t, storeDoc))
	ed.Array("$.store.book").Transform(m)
	require.NoError(t, ed.Err())
	assert.Equal(t,
		`[{"cheap":true,"title":"A"},{"cheap":false,"title":"B"},{"cheap":false,"title":"C"}]`,
		find(t, ed, "$.store.book").String())
}

func TestCompileMapperErrorAbortsTransform(t *testing.T) {
	m, err := CompileMapper(`@ + 1`)
	require.NoError(t, err)

	ed := New(mustParse(t, `[1,2,"three"]`))
	ed.Array("$").Transform(m)
	assert.ErrorIs(t, ed.Err(), ErrUnsupportedValue)
	assert.Equal(t, `[1,2,"three"]`, ed.Root().String())
}

func TestCompileErrors(t *testing.T) {
	_, err := CompilePredicate(`@.a ==`)
	assert.Error(t, err)
	_, err = CompileMapper(`(`)
	assert.Error(t, err)
}
