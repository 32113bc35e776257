package jsonedit

import (
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPatch_Operations(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		patch string
		want  string
	}{
		{"add key", `{"a":1}`, `[{"op":"add","path":"/b","value":{"y":1,"x":2}}]`, `{"a":1,"b":{"y":1,"x":2}}`},
		{"add replaces", `{"a":1,"b":2}`, `[{"op":"add","path":"/a","value":3}]`, `{"a":3,"b":2}`},
		{"add to array end", `{"xs":[1]}`, `[{"op":"add","path":"/xs/-","value":2}]`, `{"xs":[1,2]}`},
		{"insert into array", `{"xs":[1,3]}`, `[{"op":"add","path":"/xs/1","value":2}]`, `{"xs":[1,2,3]}`},
		{"escaped pointer", `{"a/b":{"m~n":1}}`, `[{"op":"replace","path":"/a~1b/m~0n","value":2}]`, `{"a/b":{"m~n":2}}`},
		{"remove key", `{"a":1,"b":2,"c":3}`, `[{"op":"remove","path":"/b"}]`, `{"a":1,"c":3}`},
		{"remove element", `[1,2,3]`, `[{"op":"remove","path":"/0"}]`, `[2,3]`},
		{"replace root", `{"a":1}`, `[{"op":"replace","path":"","value":[true]}]`, `[true]`},
		{"move", `{"a":{"x":1},"b":{}}`, `[{"op":"move","from":"/a/x","path":"/b/y"}]`, `{"a":{},"b":{"y":1}}`},
		{"copy", `{"a":{"x":[1]}}`, `[{"op":"copy","from":"/a/x","path":"/b"}]`, `{"a":{"x":[1]},"b":[1]}`},
		{"test then replace", `{"a":1.0}`, `[{"op":"test","path":"/a","value":1},{"op":"replace","path":"/a","value":2}]`, `{"a":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := New(mustParse(t, tt.doc))
			ed.ApplyPatchBytes([]byte(tt.patch))
			require.NoError(t, ed.Err())
			assert.Equal(t, tt.want, ed.String())
		})
	}
}

func TestJSONPatch_Errors(t *testing.T) {
	tests := []struct {
		name  string
		patch string
		want  error
	}{
		{"replace missing", `[{"op":"replace","path":"/nope","value":1}]`, ErrNoSuchAttribute},
		{"remove missing", `[{"op":"remove","path":"/nope"}]`, ErrNoSuchAttribute},
		{"test fails", `[{"op":"test","path":"/a","value":2}]`, ErrTestFailed},
		{"index out of range", `[{"op":"add","path":"/xs/5","value":1}]`, ErrIndexOutOfBounds},
		{"leading zero", `[{"op":"remove","path":"/xs/01"}]`, ErrInvalidPath},
		{"bad pointer", `[{"op":"add","path":"a","value":1}]`, ErrInvalidPath},
		{"missing parent", `[{"op":"add","path":"/x/y","value":1}]`, ErrNoMatch},
		{"scalar parent", `[{"op":"add","path":"/a/b","value":1}]`, ErrNoMatch},
		{"missing value", `[{"op":"add","path":"/b"}]`, ErrUnsupportedValue},
		{"move into child", `[{"op":"move","from":"/xs","path":"/xs/0"}]`, ErrUnsupportedValue},
		{"unknown op", `[{"op":"frobnicate","path":"/a"}]`, ErrUnsupportedValue},
		{"not a patch", `{"op":"add"}`, ErrUnsupportedValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := New(mustParse(t, `{"a":1,"xs":[1,2]}`))
			ed.ApplyPatchBytes([]byte(tt.patch))
			assert.ErrorIs(t, ed.Err(), tt.want)
			assert.Equal(t, `{"a":1,"xs":[1,2]}`, ed.Root().String())
		})
	}
}

func TestJSONPatch_StopsAtFirstFailure(t *testing.T) {
	ed := New(mustParse(t, `{"a":1}`))
	ed.ApplyPatch(mustDecodePatch(t, `[
		{"op":"add","path":"/b","value":2},
		{"op":"test","path":"/a","value":"wrong"},
		{"op":"add","path":"/c","value":3}
	]`))
	require.ErrorIs(t, ed.Err(), ErrTestFailed)
	assert.Contains(t, ed.Err().Error(), "operation 1 (test)")
	assert.Equal(t, `{"a":1,"b":2}`, ed.Root().String())
}

func TestJSONPatch_MoveRestoresSourceOnFailure(t *testing.T) {
	ed := New(mustParse(t, `{"a":1,"b":2,"c":3}`))
	ed.ApplyPatchBytes([]byte(`[{"op":"move","from":"/b","path":"/missing/b"}]`))
	require.ErrorIs(t, ed.Err(), ErrNoMatch)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, ed.Root().String())
}

func TestJSONPatch_EditsLiveContainers(t *testing.T) {
	ed := New(mustParse(t, `{"svc":{"port":8080}}`))
	svc := ed.Object("$.svc").Node()

	ed.ApplyPatch(mustDecodePatch(t, `[{"op":"replace","path":"/svc/port","value":9090}]`))
	require.NoError(t, ed.Err())
	assert.Equal(t, "9090", svc.Get("port").Number())
}

func TestJSONPatch_MatchesLibraryApply(t *testing.T) {
	doc := `{"name":"api","ports":[80,443],"labels":{"tier":"web"}}`
	patchJSON := `[
		{"op":"add","path":"/ports/1","value":8080},
		{"op":"remove","path":"/labels/tier"},
		{"op":"add","path":"/labels/team","value":"core"},
		{"op":"copy","from":"/name","path":"/labels/app"}
	]`
	want, err := mustDecodePatch(t, patchJSON).Apply([]byte(doc))
	require.NoError(t, err)

	ed := New(mustParse(t, doc))
	ed.ApplyPatchBytes([]byte(patchJSON))
	got, err := ed.JSON()
	require.NoError(t, err)
	assert.True(t, jsonpatch.Equal(want, got), "want %s, got %s", want, got)
}

func TestMergePatchReportsChanges(t *testing.T) {
	ed, err := Edit([]byte(`{"one":{"two":{"attribute":"Old","keep":1}},"gone":true}`))
	require.NoError(t, err)
	assert.False(t, ed.Changed())

	ed.Object("$.one.two").Set("attribute", "New").
		Object("$").Remove("gone").
		Object("$.one").Add("three", Array{1})
	require.NoError(t, ed.Err())
	assert.True(t, ed.Changed())

	patch, err := ed.MergePatch()
	require.NoError(t, err)
	assert.JSONEq(t, `{"one":{"two":{"attribute":"New"},"three":[1]},"gone":null}`, string(patch))
}

func TestChangedIgnoresKeyOrder(t *testing.T) {
	ed := New(mustParse(t, `{"a":1,"b":2}`))
	ed.Object("$").Remove("a").Object("$").Add("a", 1)
	require.NoError(t, ed.Err())
	assert.Equal(t, `{"b":2,"a":1}`, ed.String())
	assert.False(t, ed.Changed())
}

func TestMergePatchUnchanged(t *testing.T) {
	ed, err := Edit([]byte("a: 1\nb: [x]\n"))
	require.NoError(t, err)
	require.NoError(t, ed.Err())
	patch, err := ed.MergePatch()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(patch))
}
