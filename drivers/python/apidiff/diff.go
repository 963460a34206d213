package apidiff

import (
	"sort"

	"github.com/emenda-labs/pyapi/core/breaks"
	"github.com/emenda-labs/pyapi/drivers/python/pymodel"
)

// Diff compares a baseline interface model against the current one and
// returns every detected break. A fixed, ordered list of detector passes
// runs over the entire model pair; the result is the concatenation of each
// pass's output in pass-declaration order. The ordering is a user-visible
// contract: the first break in the result is the one surfaced in the
// "accept this break" usage hint, so pass order must never change silently.
func Diff(baseline, current pymodel.InterfaceModel) []breaks.Break {
	s := diffState{baseline: baseline, current: current}
	passes := []func(){
		s.removeParameterDefault,
		s.removeSymbol,
		s.removeRequiredParameter,
		s.changeParameterType,
		s.addRequiredParameter,
	}
	for _, pass := range passes {
		pass()
	}
	return s.found
}

type diffState struct {
	baseline pymodel.InterfaceModel
	current  pymodel.InterfaceModel
	found    []breaks.Break
}

func (s *diffState) emit(b breaks.Break) {
	s.found = append(s.found, b)
}

// sharedSymbols returns the fully-qualified names present in both models,
// sorted lexicographically so repeated runs produce identical output.
func (s *diffState) sharedSymbols() []string {
	var names []string
	for name := range s.baseline.Symbols {
		if _, ok := s.current.Symbols[name]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// removedSymbols returns the names present only in the baseline, sorted.
func (s *diffState) removedSymbols() []string {
	var names []string
	for name := range s.baseline.Symbols {
		if _, ok := s.current.Symbols[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Pass 1: a parameter that had a default no longer has one, so a call that
// omitted it stops working.
func (s *diffState) removeParameterDefault() {
	for _, name := range s.sharedSymbols() {
		base := s.baseline.Symbols[name]
		cur := s.current.Symbols[name]
		for _, bp := range base.Parameters {
			cp, ok := cur.Parameter(bp.Name)
			if !ok {
				continue
			}
			if bp.HasDefault && !cp.HasDefault {
				s.emit(breaks.RemoveParameterDefault(base, bp.Name))
			}
		}
	}
}

// Pass 2: whole-callable removal.
func (s *diffState) removeSymbol() {
	for _, name := range s.removedSymbols() {
		s.emit(breaks.RemoveSymbol(s.baseline.Symbols[name]))
	}
}

// Pass 3: a positionally bindable parameter disappeared from a surviving
// callable. Variadic and keyword-only parameters are excluded: dropping
// those is handled by call-site keyword absorption rules, not position.
func (s *diffState) removeRequiredParameter() {
	for _, name := range s.sharedSymbols() {
		base := s.baseline.Symbols[name]
		cur := s.current.Symbols[name]
		for _, bp := range base.Parameters {
			if !positionalKind(bp.Kind) {
				continue
			}
			if _, ok := cur.Parameter(bp.Name); !ok {
				s.emit(breaks.RemoveRequiredParameter(base, bp))
			}
		}
	}
}

// Pass 4: canonical type identity changed for a parameter present in both
// models. Two unannotated parameters are never a change; unannotated versus
// concrete is a narrowing and is reported.
func (s *diffState) changeParameterType() {
	for _, name := range s.sharedSymbols() {
		base := s.baseline.Symbols[name]
		cur := s.current.Symbols[name]
		for _, bp := range base.Parameters {
			cp, ok := cur.Parameter(bp.Name)
			if !ok {
				continue
			}
			if bp.Type == pymodel.TypeUnknown && cp.Type == pymodel.TypeUnknown {
				continue
			}
			if bp.Type != cp.Type {
				s.emit(breaks.ChangeParameterType(base, bp.Name, bp.Type, cp.Type))
			}
		}
	}
}

// Pass 5: a new parameter existing call sites cannot satisfy: positionally
// bindable and without a default. A keyword-only parameter with a default or
// a new **kwargs never breaks callers and is not reported.
func (s *diffState) addRequiredParameter() {
	for _, name := range s.sharedSymbols() {
		base := s.baseline.Symbols[name]
		cur := s.current.Symbols[name]
		for _, cp := range cur.Parameters {
			if !positionalKind(cp.Kind) || !cp.Required() {
				continue
			}
			if _, ok := base.Parameter(cp.Name); !ok {
				s.emit(breaks.AddRequiredParameter(cur, cp))
			}
		}
	}
}

func positionalKind(k pymodel.ParamKind) bool {
	return k == pymodel.ParamPositionalOnly || k == pymodel.ParamPositionalOrKeyword
}
