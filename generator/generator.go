package generator

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/semver/v3"

	"github.com/ardanlabs/cheddar/config"
	"github.com/ardanlabs/cheddar/ctype"
	"github.com/ardanlabs/cheddar/logger"
	"github.com/ardanlabs/cheddar/parser"
)

// Warning describes an item that was left out of the header.
type Warning struct {
	Kind string
	Item string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %v", w.Kind, w.Item, w.Err)
}

type Generator struct {
	cfg      *config.Config
	file     *parser.File
	warnings []Warning
	written  int
}

func New(cfg *config.Config, file *parser.File) *Generator {
	return &Generator{
		cfg:  cfg,
		file: file,
	}
}

// Warnings returns the items skipped by the last call to Generate.
func (g *Generator) Warnings() []Warning {
	return g.warnings
}

// declaration is one rendered top-level item, kept with its source
// offset so the header follows source order.
type declaration struct {
	pos  int
	text string
}

// Generate assembles the complete header. Items that can not be
// translated are skipped and reported through Warnings, unless the
// config is strict, in which case the first failure is returned.
func (g *Generator) Generate() (string, error) {
	g.warnings = nil
	g.written = 0

	if err := g.cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid config: %w", err)
	}

	for _, err := range g.file.Errors {
		var ie *parser.ItemError
		name := ""
		if errors.As(err, &ie) {
			name = ie.Item
		}
		if err := g.skip("item", name, err); err != nil {
			return "", err
		}
	}

	decls, err := g.declarations()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	if err := g.generatePreamble(&buf); err != nil {
		return "", fmt.Errorf("generating preamble: %w", err)
	}

	for _, d := range decls {
		fmt.Fprintf(&buf, "%s\n\n", d.text)
	}
	g.written = len(decls)

	fmt.Fprintf(&buf, "#ifdef __cplusplus\n")
	fmt.Fprintf(&buf, "}\n")
	fmt.Fprintf(&buf, "#endif\n\n")
	fmt.Fprintf(&buf, "#endif\n")

	return buf.String(), nil
}

// DeclarationCount reports how many items the last Generate call wrote.
func (g *Generator) DeclarationCount() int {
	return g.written
}

func (g *Generator) skip(kind, name string, err error) error {
	if g.cfg.Strict {
		return fmt.Errorf("%s %s: %w", kind, name, err)
	}

	logger.LogItemSkipped(kind, name, err)
	g.warnings = append(g.warnings, Warning{Kind: kind, Item: name, Err: err})

	return nil
}

func (g *Generator) declarations() ([]declaration, error) {
	var decls []declaration

	add := func(kind, name string, pos int, docs []string, render func() (string, error)) error {
		text, err := render()
		if err != nil {
			return g.skip(kind, name, err)
		}
		decls = append(decls, declaration{pos: pos, text: docComment(docs, "") + text})
		return nil
	}

	for _, td := range g.file.TypeDefs {
		if err := add("typedef", td.Name, td.Pos, td.Docs, func() (string, error) { return generateTypeDef(td) }); err != nil {
			return nil, err
		}
	}

	for _, e := range g.file.Enums {
		if err := add("enum", e.Name, e.Pos, e.Docs, func() (string, error) { return generateEnum(e), nil }); err != nil {
			return nil, err
		}
	}

	for _, s := range g.file.Structs {
		if err := add("struct", s.Name, s.Pos, s.Docs, func() (string, error) { return generateStruct(s) }); err != nil {
			return nil, err
		}
	}

	for _, fn := range g.file.Functions {
		if err := add("function", fn.Name, fn.Pos, fn.Docs, func() (string, error) { return generateFunction(fn) }); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(decls, func(i, j int) bool { return decls[i].pos < decls[j].pos })

	return decls, nil
}

const preambleTmpl = `/* Generated by cheddar. Do not edit. */
#ifndef {{.Guard}}
#define {{.Guard}}

#ifdef __cplusplus
extern "C" {
#endif

#include <stdint.h>
#include <stdbool.h>

{{if .Version -}}
#define {{.Prefix}}_VERSION "{{.Version}}"
#define {{.Prefix}}_VERSION_MAJOR {{.Version.Major}}
#define {{.Prefix}}_VERSION_MINOR {{.Version.Minor}}
#define {{.Prefix}}_VERSION_PATCH {{.Version.Patch}}

{{end -}}
{{if .InsertCode -}}
{{.InsertCode}}

{{end -}}
`

var preamble = template.Must(template.New("preamble").Parse(preambleTmpl))

func (g *Generator) generatePreamble(buf *bytes.Buffer) error {
	version, err := g.cfg.ParsedVersion()
	if err != nil {
		return err
	}

	data := struct {
		Guard      string
		Prefix     string
		Version    *semver.Version
		InsertCode string
	}{
		Guard:      g.cfg.Guard(),
		Prefix:     g.cfg.MacroPrefix(),
		Version:    version,
		InsertCode: strings.TrimRight(g.cfg.InsertCode, "\n"),
	}

	return preamble.Execute(buf, data)
}

func generateTypeDef(td parser.TypeDef) (string, error) {
	decl, err := ctype.TranslateNamed(td.SourceType, td.Name)
	if err != nil {
		return "", err
	}

	return "typedef " + decl + ";", nil
}

func generateEnum(e parser.Enum) string {
	var buf bytes.Buffer

	prefix := ctype.SanitizeID(e.Name)

	fmt.Fprintf(&buf, "typedef enum %s {\n", e.Name)
	for _, v := range e.Values {
		buf.WriteString(docComment(v.Docs, "\t"))
		if v.Value != "" {
			fmt.Fprintf(&buf, "\t%s_%s = %s,\n", prefix, v.Name, v.Value)
		} else {
			fmt.Fprintf(&buf, "\t%s_%s,\n", prefix, v.Name)
		}
	}
	fmt.Fprintf(&buf, "} %s;", e.Name)

	return buf.String()
}

func generateStruct(s parser.Struct) (string, error) {
	if s.IsOpaque() {
		return fmt.Sprintf("typedef struct %s %s;", s.Name, s.Name), nil
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "typedef struct %s {\n", s.Name)
	for _, f := range s.Fields {
		decl, err := declareMember(f.Type, f.Name)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.WriteString(docComment(f.Docs, "\t"))
		fmt.Fprintf(&buf, "\t%s;\n", decl)
	}
	fmt.Fprintf(&buf, "} %s;", s.Name)

	return buf.String(), nil
}

// generateFunction renders a prototype. The function name and parameter
// list take the declarator slot of the return type, so a function
// returning a function pointer comes out as `R (*name(params))(args)`.
func generateFunction(fn parser.Function) (string, error) {
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		decl, err := declareMember(p.Type, p.Name)
		if err != nil {
			return "", fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		params = append(params, decl)
	}
	if len(params) == 0 {
		params = append(params, "void")
	}

	declarator := fn.Name + "(" + strings.Join(params, ", ") + ")"

	if fn.ReturnType == nil {
		return "void " + declarator + ";", nil
	}

	decl, err := ctype.TranslateNamed(fn.ReturnType, declarator)
	if err != nil {
		return "", fmt.Errorf("return type: %w", err)
	}

	return decl + ";", nil
}

// declareMember renders a struct field or function parameter. C has no
// void objects, so a unit member is rejected rather than emitted.
func declareMember(ty parser.Expr, name string) (string, error) {
	t, err := ctype.Resolve(ty)
	if err != nil {
		return "", err
	}

	if _, ok := t.(ctype.Void); ok {
		return "", &ctype.Error{Kind: ctype.UnsupportedType, Expr: ty.String(), Msg: "zero-sized members have no C equivalent"}
	}

	return ctype.Declare(t, name)
}

func docComment(docs []string, indent string) string {
	if len(docs) == 0 {
		return ""
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s/**\n", indent)
	for _, line := range docs {
		if line == "" {
			fmt.Fprintf(&buf, "%s *\n", indent)
			continue
		}
		fmt.Fprintf(&buf, "%s * %s\n", indent, line)
	}
	fmt.Fprintf(&buf, "%s */\n", indent)

	return buf.String()
}
