package apidiff

import (
	"testing"

	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
)

func TestResolver_CanonicalString(t *testing.T) {
	r := &resolver{
		module: "mylib.shapes",
		from: map[string]string{
			"Optional": "typing.Optional",
			"Pt":       "mylib.geometry.Point",
		},
		aliases: map[string]string{
			"np": "numpy",
		},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"builtin", "int", "builtins.int"},
		{"builtin exception", "ValueError", "builtins.ValueError"},
		{"from import", "Optional", "typing.Optional"},
		{"from import renamed", "Pt", "mylib.geometry.Point"},
		{"module alias attribute", "np.ndarray", "numpy.ndarray"},
		{"module local", "Circle", "mylib.shapes.Circle"},
		{"already qualified", "collections.abc.Mapping", "collections.abc.Mapping"},
		{"none literal", "None", "None"},
		{"ellipsis", "...", "..."},
		{"subscript", "Optional[int]", "typing.Optional[builtins.int]"},
		{"nested subscript", "dict[str, Optional[Pt]]", "builtins.dict[builtins.str, typing.Optional[mylib.geometry.Point]]"},
		{"union", "int | None", "builtins.int | None"},
		{"union inside subscript", "list[int | str]", "builtins.list[builtins.int | builtins.str]"},
		{"forward reference", `"Circle"`, "mylib.shapes.Circle"},
		{"single quoted forward reference", "'Optional[int]'", "typing.Optional[builtins.int]"},
		{"whitespace", "  int  ", "builtins.int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.canonicalString(tt.in); got != tt.want {
				t.Errorf("canonicalString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver_EmptyAnnotationIsUnknown(t *testing.T) {
	r := &resolver{module: "mylib"}
	if got := r.canonical(""); got != pymodel.TypeUnknown {
		t.Errorf("canonical(\"\") = %q, want unknown sentinel", got)
	}
	if got := r.canonicalNode(nil, nil); got != pymodel.TypeUnknown {
		t.Errorf("canonicalNode(nil) = %q, want unknown sentinel", got)
	}
}

func TestResolver_ResolveRelative(t *testing.T) {
	r := &resolver{module: "mylib.sub.mod"}

	tests := []struct {
		ref  string
		want string
	}{
		{".sibling", "mylib.sub.sibling"},
		{".", "mylib.sub"},
		{"..other", "mylib.other"},
		{"..", "mylib"},
		{"...top", "top"},
	}
	for _, tt := range tests {
		if got := r.resolveRelative(tt.ref); got != tt.want {
			t.Errorf("resolveRelative(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestSplitTopLevel(t *testing.T) {
	got := splitTopLevel("dict[str, int], list[tuple[int, str]], bool", ',')
	want := []string{"dict[str, int]", " list[tuple[int, str]]", " bool"}
	if len(got) != len(want) {
		t.Fatalf("splitTopLevel parts = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}
