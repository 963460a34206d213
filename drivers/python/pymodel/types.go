package pymodel

// SymbolKind identifies what kind of callable a symbol is.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolMethod   SymbolKind = "method"
)

// ParamKind is the binding mode of a Python call parameter. The kind decides
// whether adding or removing the parameter breaks callers.
type ParamKind string

const (
	ParamPositionalOnly      ParamKind = "PositionalOnly"
	ParamPositionalOrKeyword ParamKind = "PositionalOrKeyword"
	ParamKeywordOnly         ParamKind = "KeywordOnly"
	ParamVarPositional       ParamKind = "VarPositional"
	ParamVarKeyword          ParamKind = "VarKeyword"
)

// TypeRef is the canonical module-qualified identity of a type, e.g.
// "builtins.int" or "typing.Optional[builtins.str]". Two TypeRefs are
// compatible iff their strings are equal; there is no subtype reasoning.
type TypeRef string

// TypeUnknown is the sentinel for an unannotated parameter. It compares
// unequal to every concrete type; unknown-vs-unknown is handled explicitly
// by the diff engine and never reported as a change.
const TypeUnknown TypeRef = "unknown"

// Parameter is one parameter of a callable's public signature.
type Parameter struct {
	Name       string    `json:"name"`
	Kind       ParamKind `json:"kind"`
	HasDefault bool      `json:"has_default"`
	Type       TypeRef   `json:"type"`
}

// Required reports whether a caller must supply this parameter.
func (p Parameter) Required() bool {
	if p.Kind == ParamVarPositional || p.Kind == ParamVarKeyword {
		return false
	}
	return !p.HasDefault
}

// Symbol is one publicly reachable callable: a module-level function or a
// method (constructors are methods named __init__).
type Symbol struct {
	Name        string      `json:"name"`
	Kind        SymbolKind  `json:"kind"`
	Module      string      `json:"module"`
	OwningClass string      `json:"owning_class,omitempty"`
	Parameters  []Parameter `json:"parameters"`
	ReturnType  TypeRef     `json:"return_type,omitempty"`
}

// FQName returns the fully-qualified dotted name used as the symbol's
// identity: module.Class.method for methods, module.function otherwise.
func (s Symbol) FQName() string {
	if s.Kind == SymbolMethod {
		return s.OwningClass + "." + s.Name
	}
	return s.Module + "." + s.Name
}

// Owner returns the scope a break on this symbol is reported against:
// the owning class for methods, the defining module for functions.
func (s Symbol) Owner() string {
	if s.Kind == SymbolMethod {
		return s.OwningClass
	}
	return s.Module
}

// Parameter lookup by name. Returns the zero Parameter when absent.
func (s Symbol) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// InterfaceModel is the complete public surface of one package version.
type InterfaceModel struct {
	ProjectName string            `json:"project_name"`
	Symbols     map[string]Symbol `json:"symbols"`
}
