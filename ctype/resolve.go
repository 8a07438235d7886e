package ctype

import (
	"strings"

	"github.com/ardanlabs/cheddar/parser"
)

// AliasModule is the only module whose members are resolved. Its
// members are direct aliases for platform C types.
const AliasModule = "libc"

var nativeTypes = map[string]string{
	"f32":   "float",
	"f64":   "double",
	"i8":    "int8_t",
	"i16":   "int16_t",
	"i32":   "int32_t",
	"i64":   "int64_t",
	"isize": "intptr_t",
	"u8":    "uint8_t",
	"u16":   "uint16_t",
	"u32":   "uint32_t",
	"u64":   "uint64_t",
	"usize": "uintptr_t",
}

var aliasTypes = map[string]string{
	"c_float":     "float",
	"c_double":    "double",
	"c_char":      "char",
	"c_schar":     "signed char",
	"c_uchar":     "unsigned char",
	"c_short":     "short",
	"c_ushort":    "unsigned short",
	"c_int":       "int",
	"c_uint":      "unsigned int",
	"c_long":      "long",
	"c_ulong":     "unsigned long",
	"c_longlong":  "long long",
	"c_ulonglong": "unsigned long long",
}

// resolveNative looks up a bare primitive name.
func resolveNative(name string) (CType, bool) {
	token, ok := nativeTypes[name]
	if !ok {
		return nil, false
	}
	return Native{Token: token}, true
}

// resolveAlias maps a member of the alias module. Members outside the
// keyword table, such as size_t or FILE, keep their own spelling.
func resolveAlias(name string) CType {
	if name == "c_void" {
		return Void{}
	}
	if token, ok := aliasTypes[name]; ok {
		return Native{Token: token}
	}
	return Native{Token: name}
}

// resolvePath resolves a named type. Single segments that are not
// primitives are opaque Named types; multi-segment paths are accepted
// only as `libc::<member>`.
func resolvePath(p *parser.Path) (CType, error) {
	if len(p.Generics) > 0 {
		return nil, errorf(UnsupportedType, p, "generic types have no C equivalent")
	}

	switch len(p.Segments) {
	case 0:
		return nil, errorf(InvalidPath, p, "empty path")
	case 1:
		name := p.Segments[0]
		if t, ok := resolveNative(name); ok {
			return t, nil
		}
		return Named{Ident: name}, nil
	}

	module, last := p.Segments[:len(p.Segments)-1], p.Segments[len(p.Segments)-1]
	if len(module) != 1 || module[0] != AliasModule {
		return nil, errorf(InvalidPath, p, "types in module `%s` can not be resolved, only `%s` is supported",
			strings.Join(module, "::"), AliasModule)
	}

	return resolveAlias(last), nil
}
