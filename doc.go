// Package jsonedit edits JSON (and YAML) documents in place through path
// expressions.
//
// A document is held as a tree of *Node values. Paths use a JSONPath
// dialect: "$.a.b", "$.items[0]", "$['odd key']", "$..name", "$.xs[*]" and
// filters such as "$.items[?(@.price > 10)]", which are evaluated with
// expr-lang. An edit first resolves its path to exactly one object or
// array and then changes that container in place, so other references to
// the same container observe the change.
//
//	ed, err := jsonedit.Edit(data)
//	if err != nil {
//		return err
//	}
//	ed.Object("$.one.two").Add("attribute", "New value")
//	ed.Array("$.one.two.array").Add("item 5", jsonedit.CopyOf("$.one.three"))
//	if err := ed.Err(); err != nil {
//		return err
//	}
//	out, err := ed.Serialize()
//
// Values written by an edit are converted with FromValue. A CopySpec is
// resolved when the edit is applied and writes a detached copy of the node
// it names.
//
// Edits chain. The first failing edit is kept in Err, every later edit on
// the same Editor is skipped, and the failing edit leaves the document as
// it was.
//
// RFC 6902 JSON Patch documents can be applied with ApplyPatch, and
// MergePatch reports the changes since the Editor was opened as an RFC 7396
// merge patch.
package jsonedit
