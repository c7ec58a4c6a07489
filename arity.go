package scatter

import (
	"sort"
	"strconv"
	"strings"
)

// MultiIndex is a small sorted set of pop-slot indices, used wherever a
// pushed value's type depends on more than one popped value (dup pushes a
// single index, || pushes the union of two). Kept as a sorted slice rather
// than the teacher's map-heavy style elsewhere, since these sets are always
// tiny (1-3 elements) and need a stable iteration order for Stringify.
type MultiIndex []int

func newMultiIndex(i int) MultiIndex { return MultiIndex{i} }

func newMultiIndex2(a, b int) MultiIndex { return MultiIndex{a, b} }

func (m MultiIndex) contains(i int) bool {
	for _, x := range m {
		if x == i {
			return true
		}
	}
	return false
}

// insert adds i to the set, keeping it sorted and deduplicated.
func (m MultiIndex) insert(i int) MultiIndex {
	if m.contains(i) {
		return m
	}
	out := make(MultiIndex, 0, len(m)+1)
	inserted := false
	for _, x := range m {
		if !inserted && i < x {
			out = append(out, i)
			inserted = true
		}
		out = append(out, x)
	}
	if !inserted {
		out = append(out, i)
	}
	return out
}

// ResultantKind discriminates a ResultantType's payload.
type ResultantKind int

const (
	ResultNormal ResultantKind = iota
	ResultDependent
	ResultRecall
)

// ResultantType is one pushed value's statically-known type: a concrete
// Type, a reference to one or more popped positions whose union determines
// the type (Dependent), or the name of a not-yet-bound function (Recall).
type ResultantType struct {
	Kind   ResultantKind
	Normal Type
	Deps   MultiIndex
	Recall string
}

func normalType(t Type) ResultantType          { return ResultantType{Kind: ResultNormal, Normal: t} }
func dependentType(idx MultiIndex) ResultantType { return ResultantType{Kind: ResultDependent, Deps: idx} }
func recallType(name string) ResultantType     { return ResultantType{Kind: ResultRecall, Recall: name} }

func (r ResultantType) references(i int) bool {
	return r.Kind == ResultDependent && r.Deps.contains(i)
}

// union computes ResultantType's join: two concrete types join via the Type
// lattice; a Dependent combined with a Normal just keeps the Normal (the
// concrete type already subsumes whatever the dependent slot could be); two
// Dependents union their index sets.
func (r ResultantType) union(o ResultantType) ResultantType {
	switch {
	case r.Kind == ResultNormal && o.Kind == ResultNormal:
		return normalType(UnionType(r.Normal, o.Normal))
	case r.Kind == ResultDependent && o.Kind == ResultNormal:
		return o
	case r.Kind == ResultNormal && o.Kind == ResultDependent:
		return r
	case r.Kind == ResultDependent && o.Kind == ResultDependent:
		idx := r.Deps
		for _, i := range o.Deps {
			idx = idx.insert(i)
		}
		return dependentType(idx)
	default:
		return r
	}
}

func (r ResultantType) stringify() string {
	switch r.Kind {
	case ResultNormal:
		return r.Normal.Letter()
	case ResultDependent:
		parts := make([]string, len(r.Deps))
		for i, idx := range r.Deps {
			parts[i] = strconv.Itoa(idx)
		}
		return strings.Join(parts, "|")
	case ResultRecall:
		return "?" + r.Recall
	default:
		return "?"
	}
}

// EffectCertainty records whether a capture variable's effect happens on
// every execution path (Always) or only some of them (Sometimes, e.g. one
// arm of a branch defines it and another doesn't).
type EffectCertainty int

const (
	Always EffectCertainty = iota
	Sometimes
)

// VariableEffect is what one term (or composed block) does to one capture
// variable: whether it expects the variable to already be defined, and
// whether/how certainly it (re)defines it.
type VariableEffect struct {
	Expects bool
	Defines bool
	Type    ResultantType
	When    EffectCertainty
}

func (e VariableEffect) references(i int) bool {
	return e.Defines && e.Type.references(i)
}

// serial composes self (first) then next (second): next's expectation
// propagates backward unless self already always-defines the variable; a
// definition by next overrides (if Always) or unions into (if Sometimes)
// self's definition.
func (e VariableEffect) serial(next VariableEffect) VariableEffect {
	out := e
	if next.Expects && !(e.Defines && e.When == Always) {
		out.Expects = true
	}
	if next.Defines {
		switch {
		case !e.Defines:
			out.Defines = true
			out.Type = next.Type
			out.When = next.When
		case next.When == Always:
			out.Type = next.Type
			out.When = Always
		default:
			out.Type = e.Type.union(next.Type)
		}
	}
	return out
}

// parallel composes self (left branch arm) with right (another arm): an
// expectation in either arm propagates; a definition present in only one
// arm becomes Sometimes, since the other arm skips it.
func (e VariableEffect) parallel(right VariableEffect) VariableEffect {
	out := e
	out.Expects = e.Expects || right.Expects
	switch {
	case !e.Defines && !right.Defines:
	case !e.Defines && right.Defines:
		out.Defines = true
		out.Type = right.Type
		out.When = Sometimes
	case e.Defines && !right.Defines:
		out.When = Sometimes
	case e.When == Always && right.When == Always:
		out.Type = e.Type.union(right.Type)
		out.When = Always
	default:
		out.Type = e.Type.union(right.Type)
		out.When = Sometimes
	}
	return out
}

// maybe downgrades an Always definition to Sometimes -- used when a
// variable effect from only one parallel arm is folded into a result that
// must account for the other arm skipping it entirely.
func (e VariableEffect) maybe() VariableEffect {
	if e.Defines {
		e.When = Sometimes
	}
	return e
}

// CaptureEffects maps capture-variable name to its VariableEffect across a
// term or block.
type CaptureEffects struct {
	Variables map[string]VariableEffect
}

func definesCapture(name string, t ResultantType) CaptureEffects {
	return CaptureEffects{Variables: map[string]VariableEffect{
		name: {Defines: true, Type: t, When: Always},
	}}
}

func expectsCapture(name string) CaptureEffects {
	return CaptureEffects{Variables: map[string]VariableEffect{
		name: {Expects: true},
	}}
}

func (c CaptureEffects) serial(right CaptureEffects) CaptureEffects {
	if len(c.Variables) == 0 && len(right.Variables) == 0 {
		return CaptureEffects{}
	}
	out := CaptureEffects{Variables: make(map[string]VariableEffect, len(c.Variables))}
	for name, eff := range c.Variables {
		out.Variables[name] = eff
	}
	for name, rightEff := range right.Variables {
		if eff, ok := out.Variables[name]; ok {
			out.Variables[name] = eff.serial(rightEff)
		} else {
			out.Variables[name] = rightEff
		}
	}
	return out
}

func (c CaptureEffects) parallel(right CaptureEffects) CaptureEffects {
	if len(c.Variables) == 0 && len(right.Variables) == 0 {
		return CaptureEffects{}
	}
	out := CaptureEffects{Variables: make(map[string]VariableEffect, len(c.Variables))}
	for name, eff := range c.Variables {
		if rightEff, ok := right.Variables[name]; ok {
			out.Variables[name] = eff.parallel(rightEff)
		} else {
			out.Variables[name] = eff.maybe()
		}
	}
	for name, rightEff := range right.Variables {
		if _, ok := out.Variables[name]; !ok {
			out.Variables[name] = rightEff.maybe()
		}
	}
	return out
}

func (c CaptureEffects) references(i int) bool {
	for _, eff := range c.Variables {
		if eff.references(i) {
			return true
		}
	}
	return false
}

// ArityCombineErrorKind enumerates why serialArity/parallelArity failed.
type ArityCombineErrorKind int

const (
	ArityDifferingSizes ArityCombineErrorKind = iota
	ArityIncompatibleTypes
)

func (k ArityCombineErrorKind) String() string {
	if k == ArityDifferingSizes {
		return "differing sizes"
	}
	return "incompatible types"
}

// ArityCombineError reports why composing two arities failed.
type ArityCombineError struct {
	Kind ArityCombineErrorKind
}

func (e *ArityCombineError) Error() string { return "arity combine error: " + e.Kind.String() }

// Arity is a term or block's stack effect: what it expects popped (index 0
// is the top of the stack, the first value popped; higher indices lie
// deeper), what it pushes, and what it does to capture variables.
type Arity struct {
	Pops     []Type
	Pushes   []ResultantType
	Captures CaptureEffects
}

func noopArity() Arity { return Arity{} }

func captureArity(name string) Arity {
	return Arity{
		Pops:     []Type{TypeUnknown},
		Captures: definesCapture(name, dependentType(newMultiIndex(0))),
	}
}

func recallArity(name string) Arity {
	return Arity{
		Pushes:   []ResultantType{recallType(name)},
		Captures: expectsCapture(name),
	}
}

func literalArity(t Type) Arity { return Arity{Pushes: []ResultantType{normalType(t)}} }

func unaryArity(a, r Type) Arity { return Arity{Pops: []Type{a}, Pushes: []ResultantType{normalType(r)}} }

func binaryArity(a, b, r Type) Arity {
	return Arity{Pops: []Type{a, b}, Pushes: []ResultantType{normalType(r)}}
}

func pushTwoArity(a, b Type) Arity {
	return Arity{Pushes: []ResultantType{normalType(a), normalType(b)}}
}

func popTwoArity(a, b Type) Arity { return Arity{Pops: []Type{b, a}} }

// genericArity builds the common "pop N unknowns, push values each
// dependent on some subset of those pops" shape shared by dup, swap, over,
// the logical/comparison operators, and similar stack shufflers.
func genericArity(popCount int, results ...MultiIndex) Arity {
	a := Arity{Pops: make([]Type, popCount)}
	for i := range a.Pops {
		a.Pops[i] = TypeUnknown
	}
	for _, r := range results {
		a.Pushes = append(a.Pushes, dependentType(r))
	}
	return a
}

func numberBinaryArity() Arity { return binaryArity(TypeNumber, TypeNumber, TypeNumber) }
func numberUnaryArity() Arity  { return unaryArity(TypeNumber, TypeNumber) }

func (a Arity) size() (int, int) { return len(a.Pops), len(a.Pushes) }

// attemptPop resolves one expected pop type against the running arity's
// pending pushes: if there's a concrete pending push, it must be assignable
// to term; if there's a dependent pending push, the referenced pop slots
// are narrowed to term; if there's nothing pending, a brand new pop slot is
// appended and the result is a fresh dependent reference to it.
func (a *Arity) attemptPop(term Type) (ResultantType, error) {
	if n := len(a.Pushes); n > 0 {
		top := a.Pushes[n-1]
		switch top.Kind {
		case ResultNormal:
			a.Pushes = a.Pushes[:n-1]
			if !top.Normal.AssignableTo(term) {
				return ResultantType{}, &ArityCombineError{ArityIncompatibleTypes}
			}
			return normalType(top.Normal), nil
		case ResultDependent:
			if term == TypeUnknown {
				a.Pushes = a.Pushes[:n-1]
				return dependentType(top.Deps), nil
			}
			for _, x := range top.Deps {
				if !term.AssignableTo(a.Pops[x]) {
					return ResultantType{}, &ArityCombineError{ArityIncompatibleTypes}
				}
			}
			a.Pushes = a.Pushes[:n-1]
			for _, x := range top.Deps {
				for i, push := range a.Pushes {
					if push.references(x) {
						a.Pushes[i] = normalType(term)
					}
				}
				a.Pops[x] = term
			}
			return normalType(term), nil
		case ResultRecall:
			panic("attemptPop: unresolved Recall reached composition; analyze must bind it first")
		}
	}
	a.Pops = append(a.Pops, term)
	return dependentType(newMultiIndex(len(a.Pops) - 1)), nil
}

func (a *Arity) push(t ResultantType) { a.Pushes = append(a.Pushes, t) }

// serialArity composes first then second: second's expected pops are
// resolved against first's trailing pushes (or extend first's pops when
// nothing is pending), then second's pushes are appended, re-expressing any
// of second's own dependent pushes in terms of the now-resolved pop types.
func serialArity(first, second Arity) (Arity, error) {
	running := first
	resolved := make([]ResultantType, len(second.Pops))
	for i, t := range second.Pops {
		r, err := running.attemptPop(t)
		if err != nil {
			return Arity{}, err
		}
		resolved[i] = r
	}

	for _, push := range second.Pushes {
		switch push.Kind {
		case ResultNormal:
			running.push(push)
		case ResultDependent:
			acc := resolved[push.Deps[0]]
			for _, idx := range push.Deps[1:] {
				acc = acc.union(resolved[idx])
			}
			running.push(acc)
		default:
			running.push(push)
		}
	}

	running.Captures = running.Captures.serial(second.Captures)
	return running, nil
}

// String renders an arity in spec's text notation -- see ParseArity for the
// grammar this is the inverse of.
func (a Arity) String() string { return a.stringify() }

// stringify renders an arity in spec's text notation: pops (bottom to top,
// shown as a digit when the slot is Unknown and something downstream
// references it), a '-', then the pushes, then any capture effects.
func (a Arity) stringify() string {
	var sb strings.Builder
	for i := len(a.Pops) - 1; i >= 0; i-- {
		pop := a.Pops[i]
		referenced := pop == TypeUnknown && (a.pushesReference(i) || a.Captures.references(i))
		if referenced {
			sb.WriteString(strconv.Itoa(i))
		} else {
			sb.WriteString(pop.Letter())
		}
		sb.WriteByte(' ')
	}
	sb.WriteByte('-')
	for _, push := range a.Pushes {
		sb.WriteByte(' ')
		sb.WriteString(push.stringify())
	}
	names := make([]string, 0, len(a.Captures.Variables))
	for name := range a.Captures.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		eff := a.Captures.Variables[name]
		sb.WriteString(", ")
		if eff.Expects {
			sb.WriteByte('>')
		}
		sb.WriteString(name)
		if eff.Defines {
			sb.WriteByte(':')
			sb.WriteString(eff.Type.stringify())
			if eff.When == Sometimes {
				sb.WriteByte('?')
			}
		}
	}
	return sb.String()
}

func (a Arity) pushesReference(i int) bool {
	for _, p := range a.Pushes {
		if p.references(i) {
			return true
		}
	}
	return false
}

// extendPops grows pops by one fresh Unknown slot and inserts a new
// dependent push at the front referencing it -- used by Parallel to pad the
// shorter side of two arities up to a common pop count before comparing.
func (a *Arity) extendPops() {
	a.Pops = append(a.Pops, TypeUnknown)
	idx := len(a.Pops) - 1
	a.Pushes = append([]ResultantType{dependentType(newMultiIndex(idx))}, a.Pushes...)
}

func resolveDependents(pushes []ResultantType, pops []Type) {
	for i, push := range pushes {
		if push.Kind != ResultDependent {
			continue
		}
		var resolved Type
		have := false
		for _, idx := range push.Deps {
			if pops[idx] == TypeUnknown {
				continue
			}
			if !have {
				resolved, have = pops[idx], true
				continue
			}
			if t, ok := InterType(resolved, pops[idx]); ok {
				resolved = t
			}
		}
		if have {
			pushes[i] = normalType(resolved)
		}
	}
}

// parallelArity composes two branch arms into one arity describing either
// having executed: pop counts are equalized first (the shorter side is
// padded with fresh dependent pops), corresponding pop types are met
// (Type.Inter), and corresponding pushes are joined (ResultantType.union).
func parallelArity(rawLeft, rawRight Arity) (Arity, error) {
	left, right := rawLeft, rawRight
	for len(left.Pops) < len(right.Pops) {
		left.extendPops()
	}
	for len(right.Pops) < len(left.Pops) {
		right.extendPops()
	}
	lp, lh := left.size()
	rp, rh := right.size()
	if lp != rp || lh != rh {
		return Arity{}, &ArityCombineError{ArityDifferingSizes}
	}

	res := noopArity()
	for i, t := range left.Pops {
		merged, ok := InterType(right.Pops[i], t)
		if !ok {
			return Arity{}, &ArityCombineError{ArityIncompatibleTypes}
		}
		res.Pops = append(res.Pops, merged)
	}

	resolveDependents(left.Pushes, res.Pops)
	resolveDependents(right.Pushes, res.Pops)

	for i, t := range left.Pushes {
		res.Pushes = append(res.Pushes, t.union(right.Pushes[i]))
	}
	res.Captures = left.Captures.parallel(right.Captures)

	return res, nil
}
