package jsonedit

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kevinwang15/jsonedit/internal/jpath"
)

// CompilePredicate compiles an expr-lang expression into a Predicate. The
// element is available as "@" (or "it"), in the same form as in path
// filters:
//
//	p, _ := jsonedit.CompilePredicate(`@.price > 10`)
//	ed.Array("$.items").RemoveIf(p)
//
// An element for which the expression fails to evaluate, or yields a
// non-bool result, is not selected.
func CompilePredicate(src string) (Predicate, error) {
	prog, err := compileElementExpr(src, expr.AsBool())
	if err != nil {
		return nil, err
	}
	return func(item *Node) bool {
		res, err := runElementExpr(prog, item)
		if err != nil {
			return false
		}
		b, _ := res.(bool)
		return b
	}, nil
}

// CompileMapper compiles an expr-lang expression into a Mapper whose
// result replaces the element. Maps produced by the expression are
// written with their keys sorted. If the expression fails for an element
// the Mapper returns the error, which aborts the transform.
func CompileMapper(src string) (Mapper, error) {
	prog, err := compileElementExpr(src)
	if err != nil {
		return nil, err
	}
	return func(item *Node) any {
		res, err := runElementExpr(prog, item)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrUnsupportedValue, src, err)
		}
		return res
	}, nil
}

func compileElementExpr(src string, opts ...expr.Option) (*vm.Program, error) {
	prog, err := expr.Compile(jpath.RewriteCurrent(src), opts...)
	if err != nil {
		return nil, fmt.Errorf("jsonedit: failed to compile %q: %w", src, err)
	}
	return prog, nil
}

func runElementExpr(prog *vm.Program, item *Node) (any, error) {
	return expr.Run(prog, map[string]any{jpath.CurrentVar: item.Interface()})
}
