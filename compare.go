package jsonedit

import (
	"cmp"
	"math/big"
	"slices"
	"strings"
)

// Equal reports whether n and o hold the same value. Object entries are
// compared regardless of key order and numbers by numeric value.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n.Kind() != o.Kind() {
		return false
	}
	switch n.Kind() {
	case NullKind:
		return true
	case BoolKind:
		return n.b == o.b
	case NumberKind:
		return compareNumbers(n.num, o.num) == 0
	case StringKind:
		return n.str == o.str
	case ArrayKind:
		if len(n.vals) != len(o.vals) {
			return false
		}
		for i := range n.vals {
			if !n.vals[i].Equal(o.vals[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		if len(n.keys) != len(o.keys) {
			return false
		}
		for i, k := range n.keys {
			j, ok := o.index[k]
			if !ok || !n.vals[i].Equal(o.vals[j]) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare returns an integer comparing two nodes: 0 if a equals b, -1 if
// a < b and +1 if a > b. Kinds order as null < bool < number < string <
// array < object; objects compare by their sorted keys, then values.
func Compare(a, b *Node) int {
	if a == b {
		return 0
	}
	if a.Kind() != b.Kind() {
		return cmp.Compare(kindRank(a.Kind()), kindRank(b.Kind()))
	}
	switch a.Kind() {
	case BoolKind:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		}
		return 1
	case NumberKind:
		return compareNumbers(a.num, b.num)
	case StringKind:
		return strings.Compare(a.str, b.str)
	case ArrayKind:
		for i := 0; i < len(a.vals) && i < len(b.vals); i++ {
			if c := Compare(a.vals[i], b.vals[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.vals), len(b.vals))
	case ObjectKind:
		ak, bk := slices.Sorted(slices.Values(a.keys)), slices.Sorted(slices.Values(b.keys))
		if c := slices.Compare(ak, bk); c != 0 {
			return c
		}
		for _, k := range ak {
			if c := Compare(a.vals[a.index[k]], b.vals[b.index[k]]); c != 0 {
				return c
			}
		}
	}
	return 0
}

func kindRank(k Kind) int {
	switch k {
	case ArrayKind:
		return int(ObjectKind)
	case ObjectKind:
		return int(ArrayKind)
	}
	return int(k)
}

// compareNumbers compares number literals exactly, so that 1, 1.0 and 1e0
// are equal and large integers keep their precision.
func compareNumbers(a, b string) int {
	if a == b {
		return 0
	}
	x, okA := new(big.Float).SetPrec(256).SetString(a)
	y, okB := new(big.Float).SetPrec(256).SetString(b)
	if !okA || !okB {
		return strings.Compare(a, b)
	}
	return x.Cmp(y)
}
