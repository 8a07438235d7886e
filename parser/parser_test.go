package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeRoundTrip(t *testing.T) {
	sources := []string{
		"()",
		"!",
		"u8",
		"libc::c_int",
		"*const u8",
		"*mut *const *mut bool",
		"&u8",
		"&mut MyType",
		"[u8]",
		"[u8; 16]",
		"(i32, f64)",
		"(u8,)",
		"Vec<Option<u8>>",
		"fn(a: bool)",
		"extern fn(hi: libc::c_int) -> libc::c_double",
		"extern fn(i32, *mut u8)",
		"extern fn(cb: extern fn(x: i8) -> i8) -> *mut u8",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			e, err := ParseType(src)
			require.NoError(t, err)
			assert.Equal(t, src, e.String())
		})
	}
}

func TestParseTypeShapes(t *testing.T) {
	e, err := ParseType("*const *mut u8")
	require.NoError(t, err)
	assert.Equal(t, &Ptr{
		Mutable: false,
		Elem: &Ptr{
			Mutable: true,
			Elem:    &Path{Segments: []string{"u8"}},
		},
	}, e)

	e, err = ParseType(`extern "C" fn(a: i8, u8) -> ()`)
	require.NoError(t, err)
	assert.Equal(t, &Fn{
		Extern: true,
		Params: []Param{
			{Name: "a", Type: &Path{Segments: []string{"i8"}}},
			{Type: &Path{Segments: []string{"u8"}}},
		},
		Ret: &Unit{},
	}, e)

	e, err = ParseType(`extern "system" fn()`)
	require.NoError(t, err)
	assert.False(t, e.(*Fn).Extern)

	e, err = ParseType("::libc::size_t")
	require.NoError(t, err)
	assert.Equal(t, []string{"libc", "size_t"}, e.(*Path).Segments)

	e, err = ParseType("(u16)")
	require.NoError(t, err)
	assert.Equal(t, &Path{Segments: []string{"u16"}}, e)
}

func TestParseTypeErrors(t *testing.T) {
	tests := []struct {
		source string
		offset int
	}{
		{"", 0},
		{"*u8", 1},
		{"*const", 6},
		{"u8 u8", 3},
		{"fn(a: u8", 8},
		{"[u8; ]", 5},
		{`extern "C`, 7},
		{"u8 + u16", 3},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := ParseType(tt.source)
			require.Error(t, err)

			var serr *SyntaxError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.offset, serr.Offset)
		})
	}
}

const source = `
use libc;

/// Colour channel order.
#[repr(C)]
#[derive(Clone, Copy)]
pub enum Order {
    /// Red, green, blue.
    Rgb = 1,
    Bgr,
}

// Not exported: no repr(C).
pub enum Internal { A, B }

#[repr(C)]
pub struct Pixel {
    pub r: u8,
    pub g: u8, // trailing comment
    /// Alpha, where 0 is transparent.
    pub a: u8,
}

#[repr(C)]
pub struct Handle;

/* A callback. */
pub type Callback = extern fn(user: *mut libc::c_void, status: i32);

/// Blends two pixels.
#[no_mangle]
pub extern "C" fn blend(a: *const Pixel, b: *const Pixel, out: *mut Pixel) -> bool {
    true
}

#[no_mangle]
pub unsafe extern fn on_event(cb: Callback, ctx: *mut libc::c_void) {}

pub extern fn not_exported() {}

#[repr(C)]
pub struct Broken(u8);
`

func TestParse(t *testing.T) {
	file, err := Parse(source)
	require.NoError(t, err)

	require.Len(t, file.Enums, 1)
	order := file.Enums[0]
	assert.Equal(t, "Order", order.Name)
	assert.Equal(t, []string{"Colour channel order."}, order.Docs)
	assert.Equal(t, []EnumValue{
		{Name: "Rgb", Value: "1", Docs: []string{"Red, green, blue."}},
		{Name: "Bgr"},
	}, order.Values)

	require.Len(t, file.Structs, 2)
	pixel := file.Structs[0]
	assert.Equal(t, "Pixel", pixel.Name)
	require.Len(t, pixel.Fields, 3)
	assert.Equal(t, "g", pixel.Fields[1].Name)
	assert.Equal(t, "u8", pixel.Fields[1].Type.String())
	assert.Equal(t, []string{"Alpha, where 0 is transparent."}, pixel.Fields[2].Docs)
	assert.True(t, file.Structs[1].IsOpaque())

	require.Len(t, file.TypeDefs, 1)
	assert.Equal(t, "Callback", file.TypeDefs[0].Name)
	assert.Equal(t, "extern fn(user: *mut libc::c_void, status: i32)", file.TypeDefs[0].SourceType.String())

	require.Len(t, file.Functions, 2)
	blend := file.Functions[0]
	assert.Equal(t, "blend", blend.Name)
	assert.Equal(t, []string{"Blends two pixels."}, blend.Docs)
	require.Len(t, blend.Params, 3)
	assert.Equal(t, "out", blend.Params[2].Name)
	assert.Equal(t, "*mut Pixel", blend.Params[2].Type.String())
	assert.Equal(t, "bool", blend.ReturnType.String())

	onEvent := file.Functions[1]
	assert.Equal(t, "on_event", onEvent.Name)
	assert.Nil(t, onEvent.ReturnType)

	assert.Less(t, file.Enums[0].Pos, file.Structs[0].Pos)
	assert.Less(t, file.TypeDefs[0].Pos, blend.Pos)

	require.Len(t, file.Errors, 1)
	var ie *ItemError
	require.True(t, errors.As(file.Errors[0], &ie))
	assert.Equal(t, "Broken", ie.Item)
}

func TestParseMalformedItems(t *testing.T) {
	src := `
pub type Bad = *u8;

#[repr(C)]
pub enum Tagged {
    A(u8),
}

#[no_mangle]
pub extern fn f(x: *i32) {}
`
	file, err := Parse(src)
	require.NoError(t, err)

	assert.Empty(t, file.TypeDefs)
	assert.Empty(t, file.Enums)
	assert.Empty(t, file.Functions)
	require.Len(t, file.Errors, 3)

	var items []string
	for _, err := range file.Errors {
		var ie *ItemError
		require.True(t, errors.As(err, &ie))
		items = append(items, ie.Item)
	}
	assert.ElementsMatch(t, []string{"Bad", "Tagged", "f"}, items)
}

func TestParseAttributeLayouts(t *testing.T) {
	src := `
#[repr(C)] pub struct One { a: u8 }

/// Spread over several lines.
#[derive(
    Debug,
    Clone,
)]
#[repr(C)]
pub struct Two {
    #[doc(hidden)] pub b: u16,
    #[cfg_attr(
        feature = "serde",
        serde(rename = "c")
    )]
    pub c: u32,
}

#[repr(C)] #[derive(Clone, Copy)] pub enum Three { X, Y }

#[no_mangle] pub extern fn four(v: u8) {}

#[derive(Debug)] pub struct Plain { a: u8 }
`
	file, err := Parse(src)
	require.NoError(t, err)
	assert.Empty(t, file.Errors)

	require.Len(t, file.Structs, 2)
	assert.Equal(t, "One", file.Structs[0].Name)
	require.Len(t, file.Structs[0].Fields, 1)
	assert.Equal(t, "a", file.Structs[0].Fields[0].Name)

	two := file.Structs[1]
	assert.Equal(t, "Two", two.Name)
	assert.Equal(t, []string{"Spread over several lines."}, two.Docs)
	require.Len(t, two.Fields, 2)
	assert.Equal(t, "b", two.Fields[0].Name)
	assert.Equal(t, "u16", two.Fields[0].Type.String())
	assert.Equal(t, "c", two.Fields[1].Name)

	require.Len(t, file.Enums, 1)
	assert.Equal(t, "Three", file.Enums[0].Name)
	assert.Len(t, file.Enums[0].Values, 2)

	require.Len(t, file.Functions, 1)
	assert.Equal(t, "four", file.Functions[0].Name)
}

func TestJoinAttributes(t *testing.T) {
	src := "#[derive(\n Debug,\n)]\npub struct A;\n/// #[not(\n"
	got := joinAttributes(src)

	assert.Equal(t, len(src), len(got))
	assert.Equal(t, "#[derive(  Debug, )]\npub struct A;\n/// #[not(\n", got)
}

func TestSplitTopLevel(t *testing.T) {
	parts := splitTopLevel("a: u8, cb: extern fn(x: i8, y: i8) -> i8, v: Vec<(u8, u8)>", ',')
	require.Len(t, parts, 3)
	assert.Equal(t, " cb: extern fn(x: i8, y: i8) -> i8", parts[1])
}
