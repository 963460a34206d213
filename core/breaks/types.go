package breaks

import (
	"fmt"

	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
)

// BreakKind classifies a detected API incompatibility. The set is closed:
// a new kind is added by extending this enum plus one detection/rendering
// pair, never by persisting free text.
type BreakKind string

const (
	KindRemoveParameterDefault  BreakKind = "RemoveParameterDefault"
	KindRemoveMethod            BreakKind = "RemoveMethod"
	KindRemoveFunction          BreakKind = "RemoveFunction"
	KindRemoveRequiredParameter BreakKind = "RemoveRequiredParameter"
	KindChangeParameterType     BreakKind = "ChangeParameterType"
	KindAddRequiredParameter    BreakKind = "AddRequiredParameter"
)

// Break is one detected incompatibility between two interface models.
// Code is the canonical rendered form; it is what users see, what the
// ledger stores, and the sole identity used for acceptance matching.
type Break struct {
	Kind BreakKind
	Code string
}

// RemoveParameterDefault reports a parameter that was optional and is now
// required. The detail renders the optionality flip, not the default values.
func RemoveParameterDefault(symbol pymodel.Symbol, param string) Break {
	return Break{
		Kind: KindRemoveParameterDefault,
		Code: fmt.Sprintf("RemoveParameterDefault: Switch parameter optional (%s): %s: True -> False.", symbol.FQName(), param),
	}
}

// RemoveSymbol reports a callable present in the baseline and gone from the
// current model. Methods are reported relative to their owning class, free
// functions relative to their defining module.
func RemoveSymbol(symbol pymodel.Symbol) Break {
	if symbol.Kind == pymodel.SymbolMethod {
		return Break{
			Kind: KindRemoveMethod,
			Code: fmt.Sprintf("RemoveMethod: Remove method (%s): %s", symbol.Owner(), symbol.Name),
		}
	}
	return Break{
		Kind: KindRemoveFunction,
		Code: fmt.Sprintf("RemoveFunction: Remove function (%s): %s", symbol.Owner(), symbol.Name),
	}
}

// RemoveRequiredParameter reports a positionally bindable parameter that was
// removed from a callable's signature.
func RemoveRequiredParameter(symbol pymodel.Symbol, param pymodel.Parameter) Break {
	return Break{
		Kind: KindRemoveRequiredParameter,
		Code: fmt.Sprintf("RemoveRequiredParameter: Remove %s parameter (%s): %s.", param.Kind, symbol.FQName(), param.Name),
	}
}

// ChangeParameterType reports a parameter whose canonical type identity
// differs between the two models.
func ChangeParameterType(symbol pymodel.Symbol, param string, from, to pymodel.TypeRef) Break {
	return Break{
		Kind: KindChangeParameterType,
		Code: fmt.Sprintf("ChangeParameterType: Change parameter type (%s): %s: %s => %s", symbol.FQName(), param, from, to),
	}
}

// AddRequiredParameter reports a new parameter that existing call sites
// cannot satisfy: positionally bindable and without a default.
func AddRequiredParameter(symbol pymodel.Symbol, param pymodel.Parameter) Break {
	return Break{
		Kind: KindAddRequiredParameter,
		Code: fmt.Sprintf("AddRequiredParameter: Add %s parameter (%s): %s.", param.Kind, symbol.FQName(), param.Name),
	}
}
