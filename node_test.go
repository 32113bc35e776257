package jsonedit

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "true", FromBool(true).String())
	assert.Equal(t, "-7", FromInt(-7).String())
	assert.Equal(t, "18446744073709551615", FromUint(math.MaxUint64).String())
	assert.Equal(t, "0.5", FromFloat(0.5).String())
	assert.True(t, FromFloat(math.NaN()).IsNull())
	assert.True(t, FromFloat(math.Inf(-1)).IsNull())
	assert.Equal(t, `"a\"b<>"`, FromString(`a"b<>`).String())
	assert.Equal(t, `[1,null]`, FromSlice([]*Node{FromInt(1), nil}).String())
	assert.Equal(t, `{"b":1,"a":3}`, FromKeyVals(
		KeyVal{"b", FromInt(1)},
		KeyVal{"a", FromInt(2)},
		KeyVal{"a", FromInt(3)},
	).String())

	n, err := FromNumber("1.50e3")
	require.NoError(t, err)
	assert.Equal(t, "1.50e3", n.Number())
	f, err := n.Float64()
	require.NoError(t, err)
	assert.Equal(t, 1500.0, f)
	i, err := n.Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1500), i)

	for _, bad := range []string{"", "01", "1.", ".5", "+1", "0x10", "1e", "NaN", " 1"} {
		_, err := FromNumber(bad)
		assert.ErrorIs(t, err, ErrUnsupportedValue, "FromNumber(%q)", bad)
	}
}

func TestAccessorsOnWrongKind(t *testing.T) {
	s := FromString("x")
	assert.Nil(t, s.Get("a"))
	assert.Nil(t, s.Index(0))
	assert.Nil(t, s.Keys())
	assert.Nil(t, s.Values())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("a"))
	assert.False(t, s.Bool())
	_, err := s.Int64()
	assert.Error(t, err)

	var nilNode *Node
	assert.Equal(t, NullKind, nilNode.Kind())
	assert.True(t, nilNode.IsNull())
	assert.Equal(t, "null", nilNode.String())
}

func TestInt64RejectsFractions(t *testing.T) {
	n, err := FromNumber("2.5")
	require.NoError(t, err)
	_, err = n.Int64()
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	orig := mustParse(t, `{"a":[{"b":1}],"c":"d"}`)
	cp := orig.Clone()
	require.True(t, orig.Equal(cp))

	cp.Get("a").Index(0).put("b", FromInt(2))
	cp.put("e", Null())
	assert.Equal(t, `{"a":[{"b":1}],"c":"d"}`, orig.String())
	assert.Equal(t, `{"a":[{"b":2}],"c":"d","e":null}`, cp.String())
	assert.NotSame(t, orig.Get("a"), cp.Get("a"))
}

func TestInterface(t *testing.T) {
	n := mustParse(t, `{"i":3,"f":1.5,"s":"x","b":false,"n":null,"a":[1,{"k":[]}]}`)
	want := map[string]any{
		"i": int64(3),
		"f": 1.5,
		"s": "x",
		"b": false,
		"n": nil,
		"a": []any{int64(1), map[string]any{"k": []any{}}},
	}
	if diff := cmp.Diff(want, n.Interface()); diff != "" {
		t.Fatalf("Interface() mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkVisitsInDocumentOrder(t *testing.T) {
	n := mustParse(t, `{"a":{"b":1},"c":[2,3]}`)
	var seen []string
	n.Walk(func(n *Node) bool {
		seen = append(seen, n.String())
		return n.Kind() != ObjectKind || !n.Has("b")
	})
	assert.Equal(t, []string{`{"a":{"b":1},"c":[2,3]}`, `{"b":1}`, `[2,3]`, "2", "3"}, seen)
}

func TestDeleteKeyReindexes(t *testing.T) {
	n := mustParse(t, `{"a":1,"b":2,"c":3}`)
	require.True(t, n.deleteKey("a"))
	assert.False(t, n.deleteKey("a"))
	assert.Equal(t, "3", n.Get("c").Number())
	n.put("b", FromInt(20))
	assert.Equal(t, `{"b":20,"c":3}`, n.String())
}

func TestEqualAndCompare(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
		cmp   int
	}{
		{`1`, `1.0`, true, 0},
		{`1e2`, `100`, true, 0},
		{`12345678901234567890`, `12345678901234567891`, false, -1},
		{`{"a":1,"b":[true]}`, `{"b":[true],"a":1}`, true, 0},
		{`{"a":1}`, `{"a":1,"b":2}`, false, -1},
		{`[1,2]`, `[1,2,3]`, false, -1},
		{`[2]`, `[1,5]`, false, 1},
		{`"a"`, `"b"`, false, -1},
		{`null`, `false`, false, -1},
		{`true`, `false`, false, 1},
		{`"1"`, `1`, false, 1},
		{`[]`, `{}`, false, -1},
	}
	for _, tt := range tests {
		a, b := mustParse(t, tt.a), mustParse(t, tt.b)
		assert.Equal(t, tt.equal, a.Equal(b), "%s == %s", tt.a, tt.b)
		assert.Equal(t, tt.cmp, Compare(a, b), "Compare(%s, %s)", tt.a, tt.b)
		assert.Equal(t, -tt.cmp, Compare(b, a), "Compare(%s, %s)", tt.b, tt.a)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	var n Node
	require.NoError(t, n.UnmarshalJSON([]byte(`{"z":1,"a":2}`)))
	assert.Equal(t, []string{"z", "a"}, n.Keys())
	assert.Error(t, n.UnmarshalJSON([]byte(`{"z":`)))
}
