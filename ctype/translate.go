// Package ctype translates source type expressions into C declarators.
//
// Translation is pure: nothing is cached between calls and every
// function is safe for concurrent use.
package ctype

import (
	"fmt"

	"github.com/ardanlabs/cheddar/parser"
)

// TranslateAnonymous renders expr as a bare C declarator, e.g.
// `*const *const f64` becomes "double const* const*". Function types
// fail with ErrMissingName since C can not spell them without a name.
func TranslateAnonymous(expr parser.Expr) (string, error) {
	if _, ok := expr.(*parser.Fn); ok {
		return "", errorf(MissingName, expr, "C function pointers must have a name associated with them")
	}

	t, err := Resolve(expr)
	if err != nil {
		return "", err
	}

	return Declare(t, "")
}

// TranslateNamed renders a declaration of name with type expr. For a
// function type the name is placed inside the pointer parentheses:
// "double (*name)(int hi)". An empty name is the anonymous form.
func TranslateNamed(expr parser.Expr, name string) (string, error) {
	if name == "" {
		return TranslateAnonymous(expr)
	}

	t, err := Resolve(expr)
	if err != nil {
		return "", err
	}

	return Declare(t, name)
}

// Resolve converts expr into its C type.
func Resolve(expr parser.Expr) (CType, error) {
	switch e := expr.(type) {
	case *parser.Unit:
		return Void{}, nil

	case *parser.Path:
		return resolvePath(e)

	case *parser.Ptr:
		return resolvePtr(e)

	case *parser.Fn:
		return resolveFn(e)

	case *parser.Never:
		return nil, errorf(UnsupportedType, e, "diverging types have no C equivalent")

	case *parser.Ref:
		return nil, errorf(UnsupportedType, e, "references are not FFI safe, use a raw pointer")

	case *parser.Slice, *parser.Array, *parser.Tuple:
		return nil, errorf(UnsupportedType, e, "type has no C equivalent")

	case nil:
		return nil, &Error{Kind: UnsupportedType, Msg: "missing type"}
	}

	return nil, errorf(UnsupportedType, expr, "unknown type expression %T", expr)
}

func resolvePtr(p *parser.Ptr) (CType, error) {
	if _, ok := p.Elem.(*parser.Fn); ok {
		return nil, errorf(MissingName, p, "pointers to function pointers are not supported")
	}

	pointee, err := Resolve(p.Elem)
	if err != nil {
		return nil, err
	}

	return &Pointer{Const: !p.Mutable, Pointee: pointee}, nil
}

func resolveFn(f *parser.Fn) (CType, error) {
	if !f.Extern {
		return nil, errorf(UnsupportedType, f, "function pointers must use the C calling convention (`extern fn`)")
	}

	fn := &Function{Return: Void{}}

	for i, p := range f.Params {
		if _, ok := p.Type.(*parser.Fn); ok && p.Name == "" {
			return nil, errorf(MissingName, f, "parameter %d is a function pointer and needs a name", i+1)
		}

		t, err := Resolve(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: t})
	}

	switch f.Ret.(type) {
	case nil:
	case *parser.Never:
		return nil, errorf(UnsupportedType, f, "functions that never return can not cross the C boundary")
	case *parser.Fn:
		return nil, errorf(UnsupportedType, f, "function pointers returning function pointers are not supported")
	default:
		ret, err := Resolve(f.Ret)
		if err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
		fn.Return = ret
	}

	return fn, nil
}
