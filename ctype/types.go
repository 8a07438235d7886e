package ctype

import "strings"

// CType is a resolved C type. The concrete types are Void, Native,
// Pointer, Function and Named. Every type except Function also
// implements fmt.Stringer with its anonymous declarator; a Function has
// no anonymous form and is only rendered through Declare.
type CType interface {
	// declare renders a declaration of name. An empty name yields the
	// anonymous declarator.
	declare(name string) string
}

// Void is the C `void` type.
type Void struct{}

// Native is a primitive spelled as a C keyword or fixed-width token,
// such as "double", "uint32_t" or "unsigned long long".
type Native struct {
	Token string
}

// Pointer is one level of indirection. Const marks the pointee as
// immutable through this pointer.
type Pointer struct {
	Const   bool
	Pointee CType
}

// Param is a function pointer parameter. Name may be empty.
type Param struct {
	Name string
	Type CType
}

// Function is a function pointer signature. Parameter order is
// significant.
type Function struct {
	Return CType
	Params []Param
}

// Named is an opaque type name that is declared elsewhere in the
// generated header.
type Named struct {
	Ident string
}

func (Void) String() string     { return "void" }
func (n Native) String() string { return n.Token }
func (n Named) String() string  { return n.Ident }

func (p *Pointer) String() string {
	return compose(p.Pointee.declare(""), p.Const)
}

func (v Void) declare(name string) string     { return withName(v.String(), name) }
func (n Native) declare(name string) string   { return withName(n.String(), name) }
func (n Named) declare(name string) string    { return withName(n.String(), name) }
func (p *Pointer) declare(name string) string { return withName(p.String(), name) }
func (f *Function) declare(name string) string {
	return formatFunc(f, name)
}

func withName(decl, name string) string {
	if name == "" {
		return decl
	}
	return decl + " " + name
}

// compose wraps an already rendered pointee declarator with one
// pointer level. Applied innermost first, this yields C's right to
// left reading: `T const*` is a pointer to const T.
func compose(inner string, isConst bool) string {
	if isConst {
		return inner + " const*"
	}
	return inner + "*"
}

// Declare renders t as a declaration of name. Function types embed the
// name inside the pointer parentheses; everything else is the anonymous
// declarator followed by a space and the name. An empty name renders the
// anonymous declarator, which a Function does not have.
func Declare(t CType, name string) (string, error) {
	if _, ok := t.(*Function); ok && name == "" {
		return "", &Error{Kind: MissingName, Msg: "C function pointers must have a name associated with them"}
	}
	return t.declare(name), nil
}

// formatFunc renders `<ret> (*name)(<params>)`. An empty parameter list
// is spelled `(void)`.
func formatFunc(f *Function, name string) string {
	var b strings.Builder
	b.WriteString("(*")
	b.WriteString(name)
	b.WriteString(")(")
	b.WriteString(formatParams(f.Params))
	b.WriteString(")")

	return f.Return.declare(b.String())
}

func formatParams(params []Param) string {
	if len(params) == 0 {
		return "void"
	}

	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type.declare(p.Name)
	}

	return strings.Join(parts, ", ")
}
