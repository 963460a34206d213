package apidiff

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
)

// resolver canonicalizes annotation text to module-qualified TypeRefs using
// the defining module's import table, so two versions of a package compare
// by type identity regardless of local import aliasing.
type resolver struct {
	module  string
	from    map[string]string // from m import n [as x]  ->  x: m.n
	aliases map[string]string // import m as a           ->  a: m
}

// pyBuiltins are names resolved to the builtins module when they appear
// unqualified and unimported.
var pyBuiltins = map[string]bool{
	"int": true, "float": true, "complex": true, "bool": true,
	"str": true, "bytes": true, "bytearray": true, "memoryview": true,
	"list": true, "tuple": true, "range": true, "dict": true,
	"set": true, "frozenset": true, "object": true, "type": true,
	"slice": true, "property": true, "callable": true,
	"BaseException": true, "Exception": true, "ValueError": true,
	"TypeError": true, "KeyError": true, "RuntimeError": true,
}

// newResolver scans the module's top-level import statements into lookup
// tables. Relative imports resolve against the module's own dotted path.
func newResolver(module string, root *sitter.Node, src []byte) *resolver {
	r := &resolver{
		module:  module,
		from:    make(map[string]string),
		aliases: make(map[string]string),
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			r.scanImport(child, src)
		case "import_from_statement":
			r.scanImportFrom(child, src)
		}
	}
	return r
}

// scanImport handles `import a.b` and `import a.b as c`. A plain import
// binds the head segment to itself, so only aliased imports need a table
// entry.
func (r *resolver) scanImport(node *sitter.Node, src []byte) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "aliased_import" {
			continue
		}
		var path, alias string
		for j := 0; j < int(child.ChildCount()); j++ {
			inner := child.Child(j)
			switch inner.Type() {
			case "dotted_name":
				path = inner.Content(src)
			case "identifier":
				alias = inner.Content(src)
			}
		}
		if path != "" && alias != "" {
			r.aliases[alias] = path
		}
	}
}

// scanImportFrom handles `from m import n`, `from m import n as x`, and
// relative forms. Wildcard imports contribute nothing resolvable.
func (r *resolver) scanImportFrom(node *sitter.Node, src []byte) {
	var modulePath string
	sawImport := false

	record := func(name, alias string) {
		if name == "" || modulePath == "" {
			return
		}
		bound := alias
		if bound == "" {
			bound = name
		}
		r.from[bound] = modulePath + "." + name
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import":
			sawImport = true
		case "relative_import":
			modulePath = r.resolveRelative(child.Content(src))
		case "dotted_name":
			if !sawImport {
				modulePath = child.Content(src)
			} else {
				record(child.Content(src), "")
			}
		case "identifier":
			if sawImport {
				record(child.Content(src), "")
			}
		case "aliased_import":
			var name, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				inner := child.Child(j)
				switch inner.Type() {
				case "dotted_name":
					if name == "" {
						name = inner.Content(src)
					}
				case "identifier":
					if name == "" {
						name = inner.Content(src)
					} else {
						alias = inner.Content(src)
					}
				}
			}
			record(name, alias)
		}
	}
}

// resolveRelative turns ".sub" / ".." prefixes into an absolute dotted path
// anchored at the importing module's package.
func (r *resolver) resolveRelative(ref string) string {
	dots := 0
	for dots < len(ref) && ref[dots] == '.' {
		dots++
	}
	rest := ref[dots:]

	parts := strings.Split(r.module, ".")
	// One dot means the containing package; each extra dot climbs one level.
	drop := dots
	if drop > len(parts) {
		drop = len(parts)
	}
	base := strings.Join(parts[:len(parts)-drop], ".")

	switch {
	case base == "":
		return rest
	case rest == "":
		return base
	default:
		return base + "." + rest
	}
}

func (r *resolver) canonicalNode(node *sitter.Node, src []byte) pymodel.TypeRef {
	if node == nil {
		return pymodel.TypeUnknown
	}
	return r.canonical(node.Content(src))
}

// canonical resolves annotation text to its canonical dotted form. An empty
// annotation yields the unknown sentinel.
func (r *resolver) canonical(expr string) pymodel.TypeRef {
	s := r.canonicalString(expr)
	if s == "" {
		return pymodel.TypeUnknown
	}
	return pymodel.TypeRef(s)
}

func (r *resolver) canonicalString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// String-literal forward reference: unquote and resolve the contents.
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return r.canonicalString(s[1 : len(s)-1])
	}

	if s == "None" || s == "..." {
		return s
	}

	// PEP 604 unions: canonicalize each arm.
	if parts := splitTopLevel(s, '|'); len(parts) > 1 {
		for i := range parts {
			parts[i] = r.canonicalString(parts[i])
		}
		return strings.Join(parts, " | ")
	}

	// Subscripted generics: resolve the head and each argument.
	if open := strings.IndexByte(s, '['); open >= 0 && strings.HasSuffix(s, "]") {
		head := r.canonicalString(s[:open])
		args := splitTopLevel(s[open+1:len(s)-1], ',')
		for i := range args {
			args[i] = r.canonicalString(args[i])
		}
		return head + "[" + strings.Join(args, ", ") + "]"
	}

	return r.resolveName(s)
}

// resolveName qualifies a dotted name: imported names map through the import
// tables, builtins get the builtins prefix, already-qualified names pass
// through, and anything else is assumed defined in this module.
func (r *resolver) resolveName(name string) string {
	head, rest, qualified := strings.Cut(name, ".")

	if fq, ok := r.from[head]; ok {
		if qualified {
			return fq + "." + rest
		}
		return fq
	}
	if fq, ok := r.aliases[head]; ok {
		if qualified {
			return fq + "." + rest
		}
		return fq
	}
	if qualified {
		return name
	}
	if pyBuiltins[head] {
		return "builtins." + head
	}
	return r.module + "." + name
}

// splitTopLevel splits on sep outside any bracket nesting. Returns a
// single-element slice when sep never occurs at the top level.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
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
