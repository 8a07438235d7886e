package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
var multiSpaceRe = regexp.MustCompile(`[ \t]+`)
var reprCRe = regexp.MustCompile(`#\[repr\(\s*C\s*(?:,[^)]*)?\)\]`)
var noMangleRe = regexp.MustCompile(`#\[(?:unsafe\()?no_mangle\)?\]`)

// attrsRe matches attributes written on the same line as the item they
// annotate, e.g. `#[repr(C)] pub struct Point`.
const attrsRe = `((?:#\[[^\n\]]*\][ \t]*)*)`

var leadingAttrsRe = regexp.MustCompile(`^` + attrsRe)
var typeRe = regexp.MustCompile(`(?m)^[ \t]*` + attrsRe + `pub\s+type\s+(\w+)\s*=\s*([^;]+);`)
var structRe = regexp.MustCompile(`(?m)^[ \t]*` + attrsRe + `pub\s+struct\s+(\w+)\s*`)
var enumRe = regexp.MustCompile(`(?m)^[ \t]*` + attrsRe + `pub\s+enum\s+(\w+)\s*`)
var funcRe = regexp.MustCompile(`(?m)^[ \t]*` + attrsRe + `pub\s+(?:unsafe\s+)?extern\s+(?:"C"\s+)?fn\s+(\w+)\s*\(`)
var fieldRe = regexp.MustCompile(`^(?:pub(?:\([^)]*\))?\s+)?(?:mut\s+)?(\w+)\s*:\s*([\s\S]+)$`)
var variantRe = regexp.MustCompile(`^(\w+)\s*(?:=\s*([\s\S]+))?$`)

// ItemError reports an exported item that could not be parsed.
type ItemError struct {
	Item string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Parse extracts the items a C header can describe from source text:
// `pub type` aliases, `#[repr(C)]` structs and enums, and
// `#[no_mangle] pub extern fn` functions. Items that are exported but
// malformed are recorded in File.Errors.
func Parse(content string) (*File, error) {
	content = removeComments(content)
	content = normalizeWhitespace(content)
	content = joinAttributes(content)

	file := &File{}

	parseTypeDefs(content, file)
	parseEnums(content, file)
	parseStructs(content, file)
	parseFunctions(content, file)

	return file, nil
}

// removeComments strips block comments and every line comment except
// `///` doc comments, which are kept for the generated header.
func removeComments(s string) string {
	s = blockCommentRe.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "///") && !strings.HasPrefix(trimmed, "////") {
			continue
		}
		if idx := lineCommentIndex(line); idx >= 0 {
			lines[i] = line[:idx]
		}
	}

	return strings.Join(lines, "\n")
}

func lineCommentIndex(line string) int {
	inString := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '"':
			inString = !inString
		case !inString && strings.HasPrefix(line[i:], "//"):
			return i
		}
	}
	return -1
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = multiSpaceRe.ReplaceAllString(s, " ")

	return s
}

// joinAttributes folds attributes that span several lines, such as a
// long `#[derive(...)]` list, onto a single line. Newlines are replaced
// in place so byte offsets are unchanged.
func joinAttributes(s string) string {
	b := []byte(s)

	lineStart := true
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\n':
			lineStart = true
			continue
		case s[i] == ' ' || s[i] == '\t':
			continue
		case !lineStart || !strings.HasPrefix(s[i:], "#["):
			lineStart = false
			continue
		}

		body, ok := enclosed(s[i+1:])
		if !ok {
			lineStart = false
			continue
		}

		end := i + 1 + len(body) + 2
		for j := i; j < end; j++ {
			if b[j] == '\n' {
				b[j] = ' '
			}
		}
		i = end - 1
	}

	return string(b)
}

// itemAttrs returns the attributes of the item matched by m: the lines
// above it plus any written on the item's own line.
func itemAttrs(content string, m []int) (attrs string, docs []string) {
	attrs, docs = preamble(content, m[0])
	return attrs + " " + content[m[2]:m[3]], docs
}

// preamble returns the attribute and doc comment lines directly above
// the item starting at offset start.
func preamble(content string, start int) (attrs string, docs []string) {
	lines := strings.Split(content[:start], "\n")
	// The last element is the partial line the item begins on.
	lines = lines[:len(lines)-1]

	var attrLines []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "///"):
			docs = append([]string{docText(line)}, docs...)
		case strings.HasPrefix(line, "#["):
			attrLines = append(attrLines, line)
		default:
			return strings.Join(attrLines, " "), docs
		}
	}

	return strings.Join(attrLines, " "), docs
}

func docText(line string) string {
	line = strings.TrimPrefix(line, "///")
	return strings.TrimPrefix(line, " ")
}

func parseTypeDefs(content string, file *File) {
	matches := typeRe.FindAllStringSubmatchIndex(content, -1)

	for _, m := range matches {
		name := content[m[4]:m[5]]
		src := strings.TrimSpace(content[m[6]:m[7]])
		_, docs := itemAttrs(content, m)

		ty, err := ParseType(src)
		if err != nil {
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: err})
			continue
		}

		file.TypeDefs = append(file.TypeDefs, TypeDef{
			Name:       name,
			SourceType: ty,
			Docs:       docs,
			Pos:        m[0],
		})
	}
}

func parseStructs(content string, file *File) {
	matches := structRe.FindAllStringSubmatchIndex(content, -1)

	for _, m := range matches {
		name := content[m[4]:m[5]]
		attrs, docs := itemAttrs(content, m)
		if !reprCRe.MatchString(attrs) {
			continue
		}

		st := Struct{Name: name, Docs: docs, Pos: m[0]}

		rest := content[m[1]:]
		switch {
		case strings.HasPrefix(rest, ";"):
		case strings.HasPrefix(rest, "{"):
			body, ok := enclosed(rest)
			if !ok {
				file.Errors = append(file.Errors, &ItemError{Item: name, Err: fmt.Errorf("unterminated struct body")})
				continue
			}
			fields, err := parseStructFields(body)
			if err != nil {
				file.Errors = append(file.Errors, &ItemError{Item: name, Err: err})
				continue
			}
			st.Fields = fields
		default:
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: fmt.Errorf("tuple and generic structs are not supported")})
			continue
		}

		file.Structs = append(file.Structs, st)
	}
}

func parseStructFields(body string) ([]StructField, error) {
	var fields []StructField

	for _, part := range splitTopLevel(body, ',') {
		docs, decl := splitMemberDocs(part)
		if decl == "" {
			continue
		}

		m := fieldRe.FindStringSubmatch(decl)
		if m == nil {
			return nil, fmt.Errorf("malformed field %q", decl)
		}

		ty, err := ParseType(strings.TrimSpace(m[2]))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", m[1], err)
		}

		fields = append(fields, StructField{
			Name: m[1],
			Type: ty,
			Docs: docs,
		})
	}

	return fields, nil
}

func parseEnums(content string, file *File) {
	matches := enumRe.FindAllStringSubmatchIndex(content, -1)

	for _, m := range matches {
		name := content[m[4]:m[5]]
		attrs, docs := itemAttrs(content, m)
		if !reprCRe.MatchString(attrs) {
			continue
		}

		rest := content[m[1]:]
		body, ok := enclosed(rest)
		if !ok || !strings.HasPrefix(rest, "{") {
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: fmt.Errorf("malformed enum body")})
			continue
		}

		values, err := parseEnumValues(body)
		if err != nil {
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: err})
			continue
		}

		file.Enums = append(file.Enums, Enum{
			Name:   name,
			Values: values,
			Docs:   docs,
			Pos:    m[0],
		})
	}
}

func parseEnumValues(body string) ([]EnumValue, error) {
	var values []EnumValue

	for _, part := range splitTopLevel(body, ',') {
		docs, decl := splitMemberDocs(part)
		if decl == "" {
			continue
		}

		m := variantRe.FindStringSubmatch(decl)
		if m == nil {
			return nil, fmt.Errorf("variant %q carries data", decl)
		}

		values = append(values, EnumValue{
			Name:  m[1],
			Value: strings.TrimSpace(m[2]),
			Docs:  docs,
		})
	}

	return values, nil
}

func parseFunctions(content string, file *File) {
	matches := funcRe.FindAllStringSubmatchIndex(content, -1)

	for _, m := range matches {
		name := content[m[4]:m[5]]
		attrs, docs := itemAttrs(content, m)
		if !noMangleRe.MatchString(attrs) {
			continue
		}

		// m[1] sits just past the opening parenthesis.
		rest := content[m[1]-1:]
		paramsStr, ok := enclosed(rest)
		if !ok {
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: fmt.Errorf("unterminated parameter list")})
			continue
		}

		fn := Function{Name: name, Docs: docs, Pos: m[0]}

		params, err := parseParams(paramsStr)
		if err != nil {
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: err})
			continue
		}
		fn.Params = params

		ret, err := parseReturn(rest[len(paramsStr)+2:])
		if err != nil {
			file.Errors = append(file.Errors, &ItemError{Item: name, Err: err})
			continue
		}
		fn.ReturnType = ret

		file.Functions = append(file.Functions, fn)
	}
}

func parseParams(paramsStr string) ([]Param, error) {
	var params []Param

	for _, part := range splitTopLevel(paramsStr, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := fieldRe.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("malformed parameter %q", part)
		}

		ty, err := ParseType(strings.TrimSpace(m[2]))
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", m[1], err)
		}

		params = append(params, Param{Name: m[1], Type: ty})
	}

	return params, nil
}

// parseReturn reads an optional `-> T` up to the function body or
// where clause. A nil Expr means the function returns nothing.
func parseReturn(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "->") {
		return nil, nil
	}
	s = s[2:]

	end := len(s)
	if i := strings.IndexAny(s, "{;"); i >= 0 {
		end = i
	}
	if i := strings.Index(s[:end], " where "); i >= 0 {
		end = i
	}

	return ParseType(strings.TrimSpace(s[:end]))
}

// splitMemberDocs separates leading doc comments and attributes from
// a struct field or enum variant declaration.
func splitMemberDocs(part string) ([]string, string) {
	var docs []string
	var decl []string

	for _, line := range strings.Split(part, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "///"):
			docs = append(docs, docText(line))
		case strings.HasPrefix(line, "#["):
			if rest := strings.TrimSpace(leadingAttrsRe.ReplaceAllString(line, "")); rest != "" {
				decl = append(decl, rest)
			}
		default:
			decl = append(decl, line)
		}
	}

	return docs, strings.Join(decl, " ")
}

// enclosed returns the text between the bracket s starts with and its
// matching close bracket.
func enclosed(s string) (string, bool) {
	if s == "" {
		return "", false
	}

	depth := 0
	for i := 0; i < len(s); i++ {
		if strings.HasPrefix(s[i:], "//") {
			if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
				i += nl
				continue
			}
			break
		}

		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return s[1:i], true
			}
		}
	}

	return "", false
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets, generic argument lists or doc comments.
func splitTopLevel(s string, sep byte) []string {
	var parts []string

	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		if strings.HasPrefix(s[i:], "//") {
			if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
				i += nl
				continue
			}
			break
		}

		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}':
			depth--
		case '>':
			if i == 0 || s[i-1] != '-' {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])

	return parts
}
