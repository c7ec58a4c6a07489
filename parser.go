package scatter

import "fmt"

// ParseContext names where an unexpected token was found, for
// ParseUnexpectedTokenInContext errors.
type ParseContext int

const (
	ContextFirstInBranch ParseContext = iota
	ContextAddress
	ContextAfterPostCondition
	ContextImportNameList
	ContextImportNaming
	ContextImportPath
	ContextCapture
)

func (c ParseContext) String() string {
	switch c {
	case ContextFirstInBranch:
		return "start of branch"
	case ContextAddress:
		return "address"
	case ContextAfterPostCondition:
		return "end of loop post-condition"
	case ContextImportNameList:
		return "import name list"
	case ContextImportNaming:
		return "import"
	case ContextImportPath:
		return "import path"
	case ContextCapture:
		return "capture"
	default:
		return "expression"
	}
}

// ParseErrorKind enumerates the parser's structured error taxonomy.
type ParseErrorKind int

const (
	ParseUnclosedExpression ParseErrorKind = iota
	ParseExpectedMoreAfter
	ParseUnexpectedTokenInContext
	ParseUnexpectedSymbol
)

// ParseError reports a syntax error with the precise range it was found at.
// EOF is set when the error was caused by running out of tokens rather than
// by an actually-wrong token being present; IsEarlyEOF lets a REPL tell
// "keep reading, more input may fix this" apart from "this is just wrong".
type ParseError struct {
	Kind      ParseErrorKind
	Construct string // UnclosedExpression: what construct never closed
	Reason    string // ExpectedMoreAfter: why more was expected
	Context   ParseContext
	Detail    string // UnexpectedSymbol: human description
	Range     SourceRange
	EOF       bool
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseUnclosedExpression:
		return fmt.Sprintf("unclosed %s starting at %s", e.Construct, e.Range)
	case ParseExpectedMoreAfter:
		return fmt.Sprintf("expected more after %s at %s", e.Reason, e.Range)
	case ParseUnexpectedTokenInContext:
		return fmt.Sprintf("unexpected token in %s at %s", e.Context, e.Range)
	case ParseUnexpectedSymbol:
		detail := e.Detail
		if detail == "" {
			detail = "unexpected symbol"
		}
		return fmt.Sprintf("%s at %s", detail, e.Range)
	default:
		return "parse error"
	}
}

// IsEarlyEOF reports whether this error stems from the token stream running
// out, as opposed to an actually-invalid token -- the REPL uses this to
// decide whether to keep accumulating lines instead of reporting failure.
func (e *ParseError) IsEarlyEOF() bool { return e.EOF }

// cursor is the parser's one-token-lookahead view over a Token slice.
type cursor struct {
	toks []Token
	pos  int
}

func (c *cursor) next() (Token, bool) {
	if c.pos >= len(c.toks) {
		return Token{}, false
	}
	t := c.toks[c.pos]
	c.pos++
	return t, true
}

func (c *cursor) peek() (Token, bool) {
	if c.pos >= len(c.toks) {
		return Token{}, false
	}
	return c.toks[c.pos], true
}

func (c *cursor) peekIsSymbol(s Symbol) bool {
	t, ok := c.peek()
	return ok && t.Kind == TokSymbol && t.Symbol == s
}

func rangeOrEOF(tok Token, ok bool, fallback SourceRange) SourceRange {
	if ok {
		return tok.Range
	}
	return fallback
}

// Parse builds a Module's AST from a fully tokenized source. It never
// performs name resolution -- that is Program's job (program.go).
func Parse(toks []Token) (*Module, error) {
	c := &cursor{toks: toks}
	return parseModule(c)
}

func literalTerm(tok Token) Term {
	var v Value
	switch tok.Kind {
	case TokString:
		v = NewString(tok.Text)
	case TokNumber:
		v = NewNumber(tok.Number)
	case TokBool:
		v = NewBool(tok.Bool)
	}
	return Term{Kind: TermLiteral, Literal: v, Range: tok.Range}
}

func parseModule(c *cursor) (*Module, error) {
	mod := &Module{}
	for {
		tok, ok := c.next()
		if !ok {
			return mod, nil
		}
		switch tok.Kind {
		case TokString, TokNumber, TokBool:
			mod.Body.Terms = append(mod.Body.Terms, literalTerm(tok))

		case TokName:
			if c.peekIsSymbol(SymColon) {
				c.next()
				fn, err := parseFunction(tok.Text, c)
				if err != nil {
					return nil, err
				}
				mod.Functions = append(mod.Functions, fn)
			} else {
				mod.Body.Terms = append(mod.Body.Terms, Term{Kind: TermName, Name: tok.Text, Range: tok.Range})
			}

		case TokSymbol:
			switch tok.Symbol {
			case SymLineEnd:
				continue
			case SymHash:
				imp, err := parseImport(c, tok.Range)
				if err != nil {
					return nil, err
				}
				mod.Imports = append(mod.Imports, imp)
			case SymCurlyOpen:
				branch, err := parseBranch(c, tok.Range)
				if err != nil {
					return nil, err
				}
				mod.Body.Terms = append(mod.Body.Terms, Term{Kind: TermBranch, Branch: branch, Range: tok.Range})
			case SymSquareOpen:
				loop, err := parseLoop(c, tok.Range)
				if err != nil {
					return nil, err
				}
				mod.Body.Terms = append(mod.Body.Terms, Term{Kind: TermLoop, Loop: loop, Range: tok.Range})
			case SymAt:
				name, err := parseAddressName(c, tok.Range)
				if err != nil {
					return nil, err
				}
				mod.Body.Terms = append(mod.Body.Terms, Term{Kind: TermAddress, Name: name, Range: tok.Range})
			case SymTilde:
				names, err := parseCaptureNames(c, tok.Range)
				if err != nil {
					return nil, err
				}
				mod.Body.Terms = append(mod.Body.Terms, captureTerms(names, tok.Range)...)
			default:
				return nil, &ParseError{Kind: ParseUnexpectedSymbol, Detail: "unexpected " + tok.Symbol.String() + " in module", Range: tok.Range}
			}
		}
	}
}

// captureTerms expands one `~ a b c ~` construct into capture terms in
// reverse listing order, so the first value popped (the current top of
// stack) binds to the last-listed name.
func captureTerms(names []string, rng SourceRange) []Term {
	terms := make([]Term, len(names))
	for i, name := range names {
		terms[len(names)-1-i] = Term{Kind: TermCapture, Name: name, Range: rng}
	}
	return terms
}

func parseFunction(name string, c *cursor) (Function, error) {
	if c.peekIsSymbol(SymCurlyOpen) {
		c.next()
		terms, end, err := parseBlockTerms(c, false)
		if err != nil {
			return Function{}, err
		}
		switch end {
		case endCurlyClose:
			return Function{Name: name, Body: Block{Terms: terms}}, nil
		case endEOF:
			return Function{}, &ParseError{Kind: ParseUnclosedExpression, Construct: "function " + name, EOF: true}
		default:
			return Function{}, unexpectedEndSymbol(end, "function body")
		}
	}

	terms, end, err := parseBlockTerms(c, true)
	if err != nil {
		return Function{}, err
	}
	switch end {
	case endLineEnd, endEOF:
		return Function{Name: name, Body: Block{Terms: terms}}, nil
	default:
		return Function{}, unexpectedEndSymbol(end, "function body")
	}
}

// blockEnd is the symbol that stopped a term run, or endEOF/endLineEnd.
type blockEnd int

const (
	endEOF blockEnd = iota
	endCurlyClose
	endParenOpen
	endParenClose
	endSquareClose
	endLineEnd
)

// parseBlockTerms consumes terms until it reaches a structural closer, EOF,
// or (when stopAtLineEnd) a logical line end. The closer token itself is
// consumed; callers interpret which blockEnd they got.
func parseBlockTerms(c *cursor, stopAtLineEnd bool) ([]Term, blockEnd, error) {
	var terms []Term
	for {
		tok, ok := c.next()
		if !ok {
			return terms, endEOF, nil
		}
		switch tok.Kind {
		case TokString, TokNumber, TokBool:
			terms = append(terms, literalTerm(tok))

		case TokName:
			terms = append(terms, Term{Kind: TermName, Name: tok.Text, Range: tok.Range})

		case TokSymbol:
			switch tok.Symbol {
			case SymLineEnd:
				if stopAtLineEnd {
					return terms, endLineEnd, nil
				}
			case SymCurlyClose:
				return terms, endCurlyClose, nil
			case SymParenOpen:
				return terms, endParenOpen, nil
			case SymParenClose:
				return terms, endParenClose, nil
			case SymSquareClose:
				return terms, endSquareClose, nil
			case SymCurlyOpen:
				branch, err := parseBranch(c, tok.Range)
				if err != nil {
					return nil, endEOF, err
				}
				terms = append(terms, Term{Kind: TermBranch, Branch: branch, Range: tok.Range})
			case SymSquareOpen:
				loop, err := parseLoop(c, tok.Range)
				if err != nil {
					return nil, endEOF, err
				}
				terms = append(terms, Term{Kind: TermLoop, Loop: loop, Range: tok.Range})
			case SymAt:
				name, err := parseAddressName(c, tok.Range)
				if err != nil {
					return nil, endEOF, err
				}
				terms = append(terms, Term{Kind: TermAddress, Name: name, Range: tok.Range})
			case SymTilde:
				names, err := parseCaptureNames(c, tok.Range)
				if err != nil {
					return nil, endEOF, err
				}
				terms = append(terms, captureTerms(names, tok.Range)...)
			case SymColon:
				return nil, endEOF, &ParseError{Kind: ParseUnexpectedSymbol, Detail: "unexpected : in block", Range: tok.Range}
			case SymHash:
				return nil, endEOF, &ParseError{Kind: ParseUnexpectedSymbol, Detail: "imports are only valid at module scope", Range: tok.Range}
			default:
				return nil, endEOF, &ParseError{Kind: ParseUnexpectedSymbol, Range: tok.Range}
			}
		}
	}
}

func unexpectedEndSymbol(end blockEnd, where string) error {
	var detail string
	switch end {
	case endCurlyClose:
		detail = "unexpected } in " + where
	case endParenOpen:
		detail = "unexpected ( in " + where
	case endParenClose:
		detail = "unexpected ) in " + where
	case endSquareClose:
		detail = "unexpected ] in " + where
	default:
		detail = "unexpected end of " + where
	}
	return &ParseError{Kind: ParseUnexpectedSymbol, Detail: detail}
}

// parseCondition reads a branch/loop condition block. Its opening `(` has
// already been consumed by the caller (either explicitly, for a branch's
// first arm, or implicitly as the prior body block's terminator).
func parseCondition(c *cursor) (Block, error) {
	terms, end, err := parseBlockTerms(c, false)
	if err != nil {
		return Block{}, err
	}
	switch end {
	case endParenClose:
		return Block{Terms: terms}, nil
	case endEOF:
		return Block{}, &ParseError{Kind: ParseUnclosedExpression, Construct: "condition", EOF: true}
	default:
		return Block{}, unexpectedEndSymbol(end, "condition")
	}
}

func parseBranch(c *cursor, openRange SourceRange) (*BranchTerm, error) {
	tok, ok := c.next()
	if !ok || tok.Kind != TokSymbol || tok.Symbol != SymParenOpen {
		return nil, &ParseError{
			Kind: ParseUnexpectedTokenInContext, Context: ContextFirstInBranch,
			Range: rangeOrEOF(tok, ok, openRange), EOF: !ok,
		}
	}

	var arms []BranchArm
	for {
		cond, err := parseCondition(c)
		if err != nil {
			return nil, err
		}
		bodyTerms, end, err := parseBlockTerms(c, false)
		if err != nil {
			return nil, err
		}
		switch end {
		case endCurlyClose:
			arms = append(arms, BranchArm{Cond: cond, Body: Block{Terms: bodyTerms}})
			return &BranchTerm{Arms: arms}, nil
		case endParenOpen:
			arms = append(arms, BranchArm{Cond: cond, Body: Block{Terms: bodyTerms}})
			continue
		case endEOF:
			return nil, &ParseError{Kind: ParseUnclosedExpression, Construct: "branch", Range: openRange, EOF: true}
		default:
			return nil, unexpectedEndSymbol(end, "branch arm")
		}
	}
}

func parseLoop(c *cursor, openRange SourceRange) (*LoopTerm, error) {
	var loop LoopTerm

	if c.peekIsSymbol(SymParenOpen) {
		c.next()
		cond, err := parseCondition(c)
		if err != nil {
			return nil, err
		}
		loop.Pre = &cond
	}

	bodyTerms, end, err := parseBlockTerms(c, false)
	if err != nil {
		return nil, err
	}
	switch end {
	case endSquareClose:
		loop.Body = Block{Terms: bodyTerms}
		return &loop, nil
	case endParenOpen:
		loop.Body = Block{Terms: bodyTerms}
		cond, err := parseCondition(c)
		if err != nil {
			return nil, err
		}
		loop.Post = &cond
		tok, ok := c.next()
		if !ok || tok.Kind != TokSymbol || tok.Symbol != SymSquareClose {
			return nil, &ParseError{
				Kind: ParseUnexpectedTokenInContext, Context: ContextAfterPostCondition,
				Range: rangeOrEOF(tok, ok, openRange), EOF: !ok,
			}
		}
		return &loop, nil
	case endEOF:
		return nil, &ParseError{Kind: ParseUnclosedExpression, Construct: "loop", Range: openRange, EOF: true}
	default:
		return nil, unexpectedEndSymbol(end, "loop")
	}
}

func parseAddressName(c *cursor, atRange SourceRange) (string, error) {
	tok, ok := c.next()
	if !ok || tok.Kind != TokName {
		return "", &ParseError{
			Kind: ParseUnexpectedTokenInContext, Context: ContextAddress,
			Range: rangeOrEOF(tok, ok, atRange), EOF: !ok,
		}
	}
	return tok.Text, nil
}

func parseCaptureNames(c *cursor, tildeRange SourceRange) ([]string, error) {
	var names []string
	for {
		tok, ok := c.next()
		if !ok {
			return nil, &ParseError{Kind: ParseUnclosedExpression, Construct: "capture", Range: tildeRange, EOF: true}
		}
		if tok.Kind == TokSymbol && tok.Symbol == SymTilde {
			if len(names) == 0 {
				return nil, &ParseError{Kind: ParseUnexpectedTokenInContext, Context: ContextCapture, Range: tok.Range}
			}
			return names, nil
		}
		if tok.Kind != TokName {
			return nil, &ParseError{Kind: ParseUnexpectedTokenInContext, Context: ContextCapture, Range: tok.Range}
		}
		names = append(names, tok.Text)
	}
}

// parseImport handles `# (* | name | { name* }) stringLiteral`.
func parseImport(c *cursor, hashRange SourceRange) (Import, error) {
	tok, ok := c.next()
	if !ok {
		return Import{}, &ParseError{Kind: ParseUnclosedExpression, Construct: "import", Range: hashRange, EOF: true}
	}

	var imp Import
	switch {
	case tok.Kind == TokName && tok.Text == "*":
		imp.Kind = ImportWildcard
	case tok.Kind == TokName:
		imp.Kind = ImportScoped
		imp.Prefix = tok.Text
	case tok.Kind == TokSymbol && tok.Symbol == SymCurlyOpen:
		imp.Kind = ImportNamed
		names, err := parseImportNameList(c)
		if err != nil {
			return Import{}, err
		}
		imp.Names = names
	default:
		return Import{}, &ParseError{Kind: ParseUnexpectedTokenInContext, Context: ContextImportNaming, Range: tok.Range}
	}

	pathTok, ok := c.next()
	if !ok || pathTok.Kind != TokString {
		return Import{}, &ParseError{
			Kind: ParseUnexpectedTokenInContext, Context: ContextImportPath,
			Range: rangeOrEOF(pathTok, ok, hashRange), EOF: !ok,
		}
	}
	imp.Path = pathTok.Text
	return imp, nil
}

func parseImportNameList(c *cursor) ([]string, error) {
	var names []string
	for {
		tok, ok := c.next()
		if !ok {
			return nil, &ParseError{Kind: ParseUnclosedExpression, Construct: "import name list", EOF: true}
		}
		if tok.Kind == TokSymbol && tok.Symbol == SymCurlyClose {
			return names, nil
		}
		if tok.Kind != TokName {
			return nil, &ParseError{Kind: ParseUnexpectedTokenInContext, Context: ContextImportNameList, Range: tok.Range}
		}
		names = append(names, tok.Text)
	}
}
