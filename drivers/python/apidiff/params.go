package apidiff

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
)

// classifyParameters turns a tree-sitter `parameters` node into the ordered
// parameter list of a callable's public signature. Binding kinds follow the
// grammar: a `/` separator marks everything before it positional-only, a
// bare `*` or a *args pattern marks everything after it keyword-only.
// The implicit self/cls receiver of a non-static method is not part of the
// public signature and is dropped.
func classifyParameters(node *sitter.Node, src []byte, res *resolver, isMethod bool, decorators []string) []pymodel.Parameter {
	var params []pymodel.Parameter
	keywordOnly := false

	kindFor := func() pymodel.ParamKind {
		if keywordOnly {
			return pymodel.ParamKeywordOnly
		}
		return pymodel.ParamPositionalOrKeyword
	}

	appendSplat := func(pattern *sitter.Node, typ pymodel.TypeRef) {
		inner := pattern.NamedChild(0)
		if inner == nil {
			return
		}
		kind := pymodel.ParamVarPositional
		if pattern.Type() == "dictionary_splat_pattern" {
			kind = pymodel.ParamVarKeyword
		} else {
			keywordOnly = true
		}
		params = append(params, pymodel.Parameter{
			Name: inner.Content(src),
			Kind: kind,
			Type: typ,
		})
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			params = append(params, pymodel.Parameter{
				Name: child.Content(src),
				Kind: kindFor(),
				Type: pymodel.TypeUnknown,
			})

		case "typed_parameter":
			pattern := child.NamedChild(0)
			typ := res.canonicalNode(child.ChildByFieldName("type"), src)
			if pattern == nil {
				continue
			}
			switch pattern.Type() {
			case "identifier":
				params = append(params, pymodel.Parameter{
					Name: pattern.Content(src),
					Kind: kindFor(),
					Type: typ,
				})
			case "list_splat_pattern", "dictionary_splat_pattern":
				appendSplat(pattern, typ)
			}

		case "default_parameter":
			name := child.ChildByFieldName("name")
			if name == nil {
				continue
			}
			params = append(params, pymodel.Parameter{
				Name:       name.Content(src),
				Kind:       kindFor(),
				HasDefault: true,
				Type:       pymodel.TypeUnknown,
			})

		case "typed_default_parameter":
			name := child.ChildByFieldName("name")
			if name == nil {
				continue
			}
			params = append(params, pymodel.Parameter{
				Name:       name.Content(src),
				Kind:       kindFor(),
				HasDefault: true,
				Type:       res.canonicalNode(child.ChildByFieldName("type"), src),
			})

		case "list_splat_pattern", "dictionary_splat_pattern":
			appendSplat(child, pymodel.TypeUnknown)

		case "positional_separator":
			// "/": everything declared so far binds positionally only.
			for j := range params {
				if params[j].Kind == pymodel.ParamPositionalOrKeyword {
					params[j].Kind = pymodel.ParamPositionalOnly
				}
			}

		case "keyword_separator":
			keywordOnly = true
		}
	}

	if isMethod && !isStatic(decorators) && len(params) > 0 {
		if first := params[0]; first.Name == "self" || first.Name == "cls" {
			params = params[1:]
		}
	}

	return params
}

func isStatic(decorators []string) bool {
	for _, d := range decorators {
		if d == "staticmethod" {
			return true
		}
	}
	return false
}
