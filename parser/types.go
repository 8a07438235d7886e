package parser

import (
	"fmt"
	"strings"
)

// Expr is a parsed source type expression.
type Expr interface {
	String() string
	expr()
}

// Unit is the empty tuple type `()`.
type Unit struct{}

// Never is the diverging type `!`.
type Never struct{}

// Path is a possibly module-qualified type name such as `u8`,
// `MyType` or `libc::c_int`.
type Path struct {
	Segments []string
	Generics []Expr
}

// Ptr is a raw pointer, `*const T` or `*mut T`.
type Ptr struct {
	Mutable bool
	Elem    Expr
}

// Ref is a reference, `&T` or `&mut T`.
type Ref struct {
	Mutable bool
	Elem    Expr
}

// Param is a single function parameter. Name is empty for unnamed
// parameters.
type Param struct {
	Name string
	Type Expr
}

// Fn is a bare function type. Ret is nil when the function has no
// return type.
type Fn struct {
	Extern bool
	Params []Param
	Ret    Expr
}

type Slice struct {
	Elem Expr
}

type Array struct {
	Elem Expr
	Len  string
}

// Tuple is a tuple with at least one element.
type Tuple struct {
	Elems []Expr
}

func (*Unit) expr()  {}
func (*Never) expr() {}
func (*Path) expr()  {}
func (*Ptr) expr()   {}
func (*Ref) expr()   {}
func (*Fn) expr()    {}
func (*Slice) expr() {}
func (*Array) expr() {}
func (*Tuple) expr() {}

func (*Unit) String() string  { return "()" }
func (*Never) String() string { return "!" }

func (p *Path) String() string {
	s := strings.Join(p.Segments, "::")
	if len(p.Generics) == 0 {
		return s
	}
	return s + "<" + joinExprs(p.Generics) + ">"
}

func (p *Ptr) String() string {
	if p.Mutable {
		return "*mut " + p.Elem.String()
	}
	return "*const " + p.Elem.String()
}

func (r *Ref) String() string {
	if r.Mutable {
		return "&mut " + r.Elem.String()
	}
	return "&" + r.Elem.String()
}

func (f *Fn) String() string {
	var b strings.Builder
	if f.Extern {
		b.WriteString("extern ")
	}
	b.WriteString("fn(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteString(": ")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteString(")")
	if f.Ret != nil {
		b.WriteString(" -> ")
		b.WriteString(f.Ret.String())
	}
	return b.String()
}

func (s *Slice) String() string { return "[" + s.Elem.String() + "]" }

func (a *Array) String() string { return fmt.Sprintf("[%s; %s]", a.Elem, a.Len) }

func (t *Tuple) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinExprs(t.Elems) + ")"
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

type StructField struct {
	Name string
	Type Expr
	Docs []string
}

type Struct struct {
	Name   string
	Fields []StructField
	Docs   []string
	Pos    int
}

// IsOpaque reports whether the struct has no visible fields and should
// be emitted as an incomplete type.
func (s Struct) IsOpaque() bool {
	return len(s.Fields) == 0
}

type Function struct {
	Name       string
	ReturnType Expr
	Params     []Param
	Docs       []string
	Pos        int
}

type TypeDef struct {
	Name       string
	SourceType Expr
	Docs       []string
	Pos        int
}

type EnumValue struct {
	Name  string
	Value string
	Docs  []string
}

type Enum struct {
	Name   string
	Values []EnumValue
	Docs   []string
	Pos    int
}

// File holds the exported items found in one source file. Pos on each
// item is its byte offset in the comment-stripped source. Items that
// failed to parse are listed in Errors instead.
type File struct {
	Structs   []Struct
	Functions []Function
	TypeDefs  []TypeDef
	Enums     []Enum
	Errors    []error
}
