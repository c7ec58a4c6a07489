package scatter

// Term is one AST leaf. Exactly one of the embedded payload fields is
// meaningful, selected by Kind -- mirroring the teacher's enum-via-tagged-
// struct idiom (see core.go's opcode representation) rather than an
// interface type, since terms are small, fixed in shape, and walked by a
// single visitor (the analyzer and the interpreter both switch on Kind).
type TermKind int

const (
	TermLiteral TermKind = iota
	TermAddress
	TermName
	TermCapture
	TermBranch
	TermLoop
)

type Term struct {
	Kind TermKind

	Literal Value       // TermLiteral
	Name    string       // TermAddress, TermName, TermCapture
	Range   SourceRange  // TermName, TermCapture: source range of the name reference
	Branch  *BranchTerm  // TermBranch
	Loop    *LoopTerm    // TermLoop
}

// BranchArm is one `(cond) body` pair of a Branch term. Arms are tried in
// order; the first whose cond block leaves a truthy value on top of stack
// runs its body and the branch is done.
type BranchArm struct {
	Cond Block
	Body Block
}

type BranchTerm struct {
	Arms []BranchArm
}

// LoopTerm is a pre/body/post loop. At least one of Pre or Post must be
// present for the loop to have a statically determinable arity; a loop with
// neither is rejected at analysis time.
type LoopTerm struct {
	Pre  *Block
	Body Block
	Post *Block
}

// Block is an ordered sequence of terms, executed left to right.
type Block struct {
	Terms []Term
}

// Function is a named block installed into a namespace.
type Function struct {
	Name string
	Body Block
}

// ImportKind selects how an Import's target names are brought into scope.
type ImportKind int

const (
	ImportWildcard ImportKind = iota
	ImportNamed
	ImportScoped
)

// Import is one `#` directive: how names from the imported module are
// exposed (Wildcard: all by their own name; Named: only the listed names;
// Scoped: all, qualified as prefix.name), together with the path the module
// was imported from, relative to the importing file.
type Import struct {
	Kind   ImportKind
	Names  []string // ImportNamed
	Prefix string   // ImportScoped
	Path   string
}

// Module is one parsed source file: its imports, the functions it defines,
// and its top-level body (the code that runs when the module is an entry
// point; loading a module as an import does not run its body).
type Module struct {
	Imports   []Import
	Functions []Function
	Body      Block
}
