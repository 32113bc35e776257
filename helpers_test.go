package jsonedit

import (
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/pmezard/go-difflib/difflib"
)

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	n, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return n
}

func mustDecodePatch(t *testing.T, s string) jsonpatch.Patch {
	t.Helper()
	patch, err := jsonpatch.DecodePatch([]byte(s))
	if err != nil {
		t.Fatalf("jsonpatch decode error: %v", err)
	}
	return patch
}

func unifiedDiff(before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func diffStats(diff string) (adds, removes int) {
	for _, line := range strings.Split(diff, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			if !strings.HasPrefix(line, "+++") {
				adds++
			}
		case '-':
			if !strings.HasPrefix(line, "---") {
				removes++
			}
		}
	}
	return
}

// dumpNode logs the structure of n, one line per node.
func dumpNode(t *testing.T, n *Node, indent int) {
	t.Helper()
	prefix := strings.Repeat("  ", indent)
	switch n.Kind() {
	case ObjectKind:
		t.Logf("%sobject (len=%d)", prefix, n.Len())
		for i, k := range n.keys {
			t.Logf("%s[%q]:", prefix, k)
			dumpNode(t, n.vals[i], indent+1)
		}
	case ArrayKind:
		t.Logf("%sarray (len=%d)", prefix, n.Len())
		for i, v := range n.vals {
			t.Logf("%s[%d]:", prefix, i)
			dumpNode(t, v, indent+1)
		}
	default:
		t.Logf("%s%s: %s", prefix, n.Kind(), n)
	}
}
