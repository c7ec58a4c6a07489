package scatter

import (
	"math"
	"sort"
	"sync"
	"unicode/utf8"
)

// IntrinsicFunc is a built-in's runtime behavior: pop its operands off the
// interpreter's stack, push its results, and report any runtime failure.
type IntrinsicFunc func(it *Interpreter) error

// IntrinsicDef is one intrinsic's full entry: its statically known arity
// (consulted by analyze.go instead of ever walking into a "body"), the
// mangled identifier codegen emits for it, and its interpreter behavior.
// Mirrors the teacher's table-of-builtins style (internals.go's opcode
// dispatch table) generalized from opcodes to named intrinsics.
type IntrinsicDef struct {
	Name  string
	Arity Arity
	// Indefinite is set only for `eval`: its target is resolved at runtime
	// from a popped Address, so no static arity describes it and any block
	// using it cannot have a statically inferred arity either.
	Indefinite bool
	Mangled    string
	Exec       IntrinsicFunc
}

var (
	intrinsicsOnce  sync.Once
	intrinsicsTable map[string]IntrinsicDef
)

func intrinsics() map[string]IntrinsicDef {
	intrinsicsOnce.Do(func() {
		intrinsicsTable = buildIntrinsics()
	})
	return intrinsicsTable
}

// IsIntrinsic reports whether name is a built-in rather than a
// user-defined or imported function.
func IsIntrinsic(name string) bool {
	_, ok := intrinsics()[name]
	return ok
}

// LookupIntrinsic returns the full entry for an intrinsic name.
func LookupIntrinsic(name string) (IntrinsicDef, bool) {
	def, ok := intrinsics()[name]
	return def, ok
}

// IntrinsicNames returns every intrinsic name, sorted, for the REPL's
// "list intrinsics" command.
func IntrinsicNames() []string {
	tbl := intrinsics()
	names := make([]string, 0, len(tbl))
	for name := range tbl {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildIntrinsics() map[string]IntrinsicDef {
	defs := []IntrinsicDef{
		{Name: "+", Arity: numberBinaryArity(), Mangled: "plus", Exec: intrinsicArith(func(a, b float64) float64 { return a + b })},
		{Name: "-", Arity: numberBinaryArity(), Mangled: "minus", Exec: intrinsicArith(func(a, b float64) float64 { return a - b })},
		{Name: "*", Arity: numberBinaryArity(), Mangled: "times", Exec: intrinsicArith(func(a, b float64) float64 { return a * b })},
		{Name: "/", Arity: numberBinaryArity(), Mangled: "divide", Exec: intrinsicArith(func(a, b float64) float64 { return a / b })},
		{Name: "%", Arity: numberBinaryArity(), Mangled: "modulo", Exec: intrinsicArith(math.Mod)},
		{Name: "**", Arity: numberBinaryArity(), Mangled: "pow_i", Exec: intrinsicArith(math.Pow)},

		{Name: "||", Arity: genericArity(2, newMultiIndex2(0, 1)), Mangled: "or_i", Exec: intrinsicOr},
		{Name: "&&", Arity: genericArity(2, newMultiIndex2(0, 1)), Mangled: "and_i", Exec: intrinsicAnd},

		{Name: "swap", Arity: genericArity(2, newMultiIndex(0), newMultiIndex(1)), Mangled: "swap", Exec: intrinsicSwap},
		{Name: "dup", Arity: genericArity(1, newMultiIndex(0), newMultiIndex(0)), Mangled: "dup", Exec: intrinsicDup},
		{Name: "over", Arity: genericArity(2, newMultiIndex(1), newMultiIndex(0), newMultiIndex(1)), Mangled: "over", Exec: intrinsicOver},
		{Name: "rot", Arity: genericArity(3, newMultiIndex(1), newMultiIndex(0), newMultiIndex(2)), Mangled: "rot", Exec: intrinsicRot},
		{Name: "drop", Arity: Arity{Pops: []Type{TypeUnknown}}, Mangled: "drop", Exec: intrinsicDrop},

		{Name: ">", Arity: binaryArity(TypeNumber, TypeNumber, TypeBool), Mangled: "greater", Exec: intrinsicCompare(func(a, b float64) bool { return a > b })},
		{Name: "<", Arity: binaryArity(TypeNumber, TypeNumber, TypeBool), Mangled: "less", Exec: intrinsicCompare(func(a, b float64) bool { return a < b })},
		{Name: "==", Arity: binaryArity(TypeUnknown, TypeUnknown, TypeBool), Mangled: "equals", Exec: intrinsicEquals},
		{Name: "!", Arity: unaryArity(TypeUnknown, TypeBool), Mangled: "not", Exec: intrinsicNot},

		{Name: "++", Arity: numberUnaryArity(), Mangled: "increment", Exec: intrinsicNumUnary(func(n float64) float64 { return n + 1 })},
		{Name: "--", Arity: numberUnaryArity(), Mangled: "decrement", Exec: intrinsicNumUnary(func(n float64) float64 { return n - 1 })},

		{Name: "join", Arity: binaryArity(TypeUnknown, TypeUnknown, TypeString), Mangled: "join", Exec: intrinsicJoin},
		{Name: "length", Arity: unaryArity(TypeString, TypeNumber), Mangled: "length", Exec: intrinsicLength},
		{
			Name: "substring",
			Arity: Arity{
				Pops:   []Type{TypeString, TypeNumber, TypeNumber},
				Pushes: []ResultantType{normalType(TypeString)},
			},
			Mangled: "substring", Exec: intrinsicSubstring,
		},
		{Name: "to_char", Arity: unaryArity(TypeString, TypeNumber), Mangled: "to_char", Exec: intrinsicToChar},
		{Name: "from_char", Arity: unaryArity(TypeNumber, TypeString), Mangled: "from_char", Exec: intrinsicFromChar},
		{
			Name: "index",
			Arity: Arity{
				Pops:   []Type{TypeString, TypeString},
				Pushes: []ResultantType{normalType(TypeNumber)},
			},
			Mangled: "string_index", Exec: intrinsicIndex,
		},

		{Name: "print", Arity: Arity{Pops: []Type{TypeUnknown}}, Mangled: "print", Exec: intrinsicPrint},
		{
			Name: "readline",
			Arity: Arity{
				Pushes: []ResultantType{normalType(TypeString), normalType(TypeBool)},
			},
			Mangled: "readline", Exec: intrinsicReadline,
		},

		{
			Name: "assert",
			Arity: Arity{
				Pops: []Type{TypeString, TypeUnknown},
			},
			Mangled: "assert_i", Exec: intrinsicAssert,
		},
		{Name: "eval", Indefinite: true, Mangled: "eval_i", Exec: intrinsicEval},
	}

	table := make(map[string]IntrinsicDef, len(defs))
	for _, d := range defs {
		if _, dup := table[d.Name]; dup {
			panic("scatter: duplicate intrinsic name " + d.Name)
		}
		table[d.Name] = d
	}
	return table
}

func intrinsicArith(f func(a, b float64) float64) IntrinsicFunc {
	return func(it *Interpreter) error {
		a, b, err := it.take2Numbers()
		if err != nil {
			return err
		}
		return it.push(NewNumber(f(a, b)))
	}
}

func intrinsicCompare(f func(a, b float64) bool) IntrinsicFunc {
	return func(it *Interpreter) error {
		a, b, err := it.take2Numbers()
		if err != nil {
			return err
		}
		return it.push(NewBool(f(a, b)))
	}
}

func intrinsicNumUnary(f func(float64) float64) IntrinsicFunc {
	return func(it *Interpreter) error {
		n, err := it.takeNumber()
		if err != nil {
			return err
		}
		return it.push(NewNumber(f(n)))
	}
}

func intrinsicOr(it *Interpreter) error {
	a, b, err := it.take2()
	if err != nil {
		return err
	}
	if a.Truthy() {
		return it.push(a)
	}
	return it.push(b)
}

func intrinsicAnd(it *Interpreter) error {
	a, b, err := it.take2()
	if err != nil {
		return err
	}
	if a.Truthy() {
		return it.push(b)
	}
	return it.push(a)
}

func intrinsicSwap(it *Interpreter) error {
	a, b, err := it.take2()
	if err != nil {
		return err
	}
	return it.push2(b, a)
}

func intrinsicDup(it *Interpreter) error {
	v, err := it.take()
	if err != nil {
		return err
	}
	return it.push2(v, v)
}

func intrinsicOver(it *Interpreter) error {
	a, b, err := it.take2()
	if err != nil {
		return err
	}
	return it.push3(a, b, a)
}

func intrinsicRot(it *Interpreter) error {
	a, b, c, err := it.take3()
	if err != nil {
		return err
	}
	return it.push3(b, c, a)
}

func intrinsicDrop(it *Interpreter) error {
	_, err := it.take()
	return err
}

func intrinsicNot(it *Interpreter) error {
	v, err := it.take()
	if err != nil {
		return err
	}
	return it.push(NewBool(!v.Truthy()))
}

func intrinsicEquals(it *Interpreter) error {
	a, b, err := it.take2()
	if err != nil {
		return err
	}
	if a.Kind != b.Kind {
		return &RuntimeError{Kind: RuntimeTypeMismatch, Detail: "mismatched types cannot be compared with =="}
	}
	return it.push(NewBool(a.Equal(b)))
}

func intrinsicJoin(it *Interpreter) error {
	a, b, err := it.take2()
	if err != nil {
		return err
	}
	return it.push(NewString(a.String() + b.String()))
}

func intrinsicLength(it *Interpreter) error {
	s, err := it.takeString()
	if err != nil {
		return err
	}
	return it.push(NewNumber(float64(utf8.RuneCountInString(s))))
}

func intrinsicSubstring(it *Interpreter) error {
	s, err := it.takeString()
	if err != nil {
		return err
	}
	end, err := it.takeNumber()
	if err != nil {
		return err
	}
	start, err := it.takeNumber()
	if err != nil {
		return err
	}
	runes := []rune(s)
	si, err := clampIndex(start, len(runes))
	if err != nil {
		return err
	}
	ei, err := clampIndex(end, len(runes))
	if err != nil {
		return err
	}
	if ei < si {
		ei = si
	}
	return it.push(NewString(string(runes[si:ei])))
}

func clampIndex(n float64, length int) (int, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n < 0 {
		return 0, &RuntimeError{Kind: RuntimeTypeMismatch, Detail: "index must be a non-negative integer"}
	}
	i := int(n)
	if i > length {
		i = length
	}
	if i < 0 {
		i = 0
	}
	return i, nil
}

func intrinsicToChar(it *Interpreter) error {
	s, err := it.takeString()
	if err != nil {
		return err
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || len(s) == 0 {
		return &RuntimeError{Kind: RuntimeTypeMismatch, Detail: "to_char requires a single-character string"}
	}
	return it.push(NewNumber(float64(r)))
}

func intrinsicFromChar(it *Interpreter) error {
	n, err := it.takeNumber()
	if err != nil {
		return err
	}
	if n != math.Trunc(n) || n < 0 || !utf8.ValidRune(rune(n)) {
		return &RuntimeError{Kind: RuntimeTypeMismatch, Detail: "from_char requires a valid unicode scalar value"}
	}
	return it.push(NewString(string(rune(n))))
}

func intrinsicIndex(it *Interpreter) error {
	needle, err := it.takeString()
	if err != nil {
		return err
	}
	haystack, err := it.takeString()
	if err != nil {
		return err
	}
	hr, nr := []rune(haystack), []rune(needle)
	idx := runeIndex(hr, nr)
	return it.push(NewNumber(float64(idx)))
}

func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, r := range needle {
			if haystack[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func intrinsicPrint(it *Interpreter) error {
	v, err := it.take()
	if err != nil {
		return err
	}
	it.writeOut(v.String() + "\n")
	return nil
}

func intrinsicReadline(it *Interpreter) error {
	line, ok := it.readline()
	if err := it.push(NewString(line)); err != nil {
		return err
	}
	return it.push(NewBool(ok))
}

func intrinsicAssert(it *Interpreter) error {
	message, err := it.take()
	if err != nil {
		return err
	}
	cond, err := it.take()
	if err != nil {
		return err
	}
	if !cond.Truthy() {
		return &RuntimeError{Kind: RuntimeAssertFailed, Detail: "Assertion failed: " + message.String()}
	}
	return nil
}

func intrinsicEval(it *Interpreter) error {
	v, err := it.take()
	if err != nil {
		return err
	}
	if v.Kind != ValueAddress {
		return &RuntimeError{Kind: RuntimeTypeMismatch, Detail: "eval requires an address"}
	}
	return it.callAddress(v.Addr)
}
