package scatter

// Type is the static type lattice values and arities reason over.
type Type int

const (
	TypeUnknown Type = iota
	TypeBool
	TypeNumber
	TypeString
	TypeAddress
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeAddress:
		return "address"
	default:
		return "?"
	}
}

// Letter is the one-character arity-notation spelling of a type: the form
// Arity.String and the arity text grammar (arity_parse.go) use.
func (t Type) Letter() string {
	switch t {
	case TypeBool:
		return "b"
	case TypeNumber:
		return "n"
	case TypeString:
		return "s"
	case TypeAddress:
		return "a"
	default:
		return "u"
	}
}

// parseTypeLetter parses one of the fixed type letters (push-side arity
// notation): digits are never valid here.
func parseTypeLetter(s string) (Type, bool) {
	switch s {
	case "b":
		return TypeBool, true
	case "n":
		return TypeNumber, true
	case "s":
		return TypeString, true
	case "a":
		return TypeAddress, true
	case "u":
		return TypeUnknown, true
	default:
		return TypeUnknown, false
	}
}

// parseTypeAsPop parses one pop-side token: either a type letter, or a bare
// digit naming a dependent-position index, which always denotes Unknown in
// storage (the digit itself is just stringify's display of "this position
// is referenced downstream").
func parseTypeAsPop(s string) (Type, bool) {
	if t, ok := parseTypeLetter(s); ok {
		return t, true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return TypeUnknown, false
		}
	}
	return TypeUnknown, len(s) > 0
}

// AssignableTo reports whether a value of type a may be used where b is
// expected: always true against Unknown, otherwise only identity.
func (a Type) AssignableTo(b Type) bool {
	return b == TypeUnknown || a == b
}

// UnionType is the lattice join: the less-specific of the two types if one
// is assignable to the other, else Unknown.
func UnionType(a, b Type) Type {
	if a == b {
		return a
	}
	if a.AssignableTo(b) {
		return b
	}
	if b.AssignableTo(a) {
		return a
	}
	return TypeUnknown
}

// InterType is the lattice meet: the more-specific of the two types if one
// is assignable to the other. ok is false when the types are incompatible.
func InterType(a, b Type) (Type, bool) {
	if a == b {
		return a, true
	}
	if a.AssignableTo(b) {
		return a, true
	}
	if b.AssignableTo(a) {
		return b, true
	}
	return TypeUnknown, false
}
