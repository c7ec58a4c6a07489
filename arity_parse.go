package scatter

import (
	"strconv"
	"strings"
)

// parseResultantType parses one push-side token: a type letter, or a
// '|'-joined set of pop-slot indices (a Dependent reference). Recall tokens
// (spelled "?name" by ResultantType.stringify) round-trip too; analyze.go
// produces one for every name that resolves to no function.
func parseResultantType(s string) (ResultantType, bool) {
	if strings.HasPrefix(s, "?") && len(s) > 1 {
		return recallType(s[1:]), true
	}
	if t, ok := parseTypeLetter(s); ok {
		return normalType(t), true
	}
	parts := strings.Split(s, "|")
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return ResultantType{}, false
	}
	m := newMultiIndex(idx)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return ResultantType{}, false
		}
		m = m.insert(n)
	}
	return dependentType(m), true
}

// ParseArity parses spec's arity text notation: "pop* - push*[, capture*]",
// e.g. "n n - n", "1 0 - 0|1", "0 - 0 0, >a:n?". Pop tokens are written
// deepest first (mirroring Arity.String's display order) and are reversed
// here, since Arity stores the top of the stack at pop index 0.
func ParseArity(source string) (Arity, bool) {
	sections := strings.Split(source, ",")
	head := strings.TrimSpace(sections[0])
	popsStr, pushesStr, ok := cutOnce(head, "-")
	if !ok {
		return Arity{}, false
	}

	popTokens := strings.Fields(popsStr)
	pops := make([]Type, len(popTokens))
	for i, tok := range popTokens {
		t, ok := parseTypeAsPop(tok)
		if !ok {
			return Arity{}, false
		}
		pops[len(popTokens)-1-i] = t
	}

	pushTokens := strings.Fields(pushesStr)
	pushes := make([]ResultantType, len(pushTokens))
	for i, tok := range pushTokens {
		r, ok := parseResultantType(tok)
		if !ok {
			return Arity{}, false
		}
		pushes[i] = r
	}

	captures := CaptureEffects{Variables: map[string]VariableEffect{}}
	for _, section := range sections[1:] {
		name, eff, ok := parseCaptureSection(section)
		if !ok {
			return Arity{}, false
		}
		captures.Variables[name] = eff
	}

	return Arity{Pops: pops, Pushes: pushes, Captures: captures}, true
}

func parseCaptureSection(section string) (string, VariableEffect, bool) {
	s := strings.TrimSpace(section)
	var eff VariableEffect
	if strings.HasPrefix(s, ">") {
		eff.Expects = true
		s = s[1:]
	}
	name, rest, hasDefine := cutOnce(s, ":")
	if !hasDefine {
		return s, eff, s != ""
	}
	eff.When = Always
	if strings.HasSuffix(rest, "?") {
		eff.When = Sometimes
		rest = rest[:len(rest)-1]
	}
	t, ok := parseResultantType(rest)
	if !ok {
		return "", VariableEffect{}, false
	}
	eff.Defines = true
	eff.Type = t
	return name, eff, true
}

func cutOnce(s, sep string) (before, after string, ok bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
