package scatter

import "fmt"

// SourceLocation names a single point in a source file: a character offset
// together with the (line, column) it decodes to. All three fields are
// zero-indexed, matching how the lexer's crawler counts them.
type SourceLocation struct {
	Offset int
	Line   int
	Column int
}

// Add advances the location by one character, as if that character had just
// been consumed. A newline starts a new line; anything else just moves the
// column forward.
func (loc SourceLocation) Add(c rune) SourceLocation {
	loc.Offset++
	if c == '\n' {
		loc.Line++
		loc.Column = 0
	} else {
		loc.Column++
	}
	return loc
}

func (loc SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", loc.Line+1, loc.Column+1)
}

// SourceRange is a half-open span [Start, End) over a source file: End is
// exclusive, so an empty range has Start == End.
type SourceRange struct {
	Start SourceLocation
	End   SourceLocation
}

func (rng SourceRange) String() string {
	if rng.Start == rng.End {
		return rng.Start.String()
	}
	return fmt.Sprintf("%v-%v", rng.Start, rng.End)
}

// until returns the range from rng.Start up to (but not including) end.
func (rng SourceRange) until(end SourceLocation) SourceRange {
	return SourceRange{rng.Start, end}
}

// crawler walks a source string one character at a time, handing the lexer
// state machine one character of lookahead -- the only lookahead this
// toolchain ever needs.
type crawler struct {
	src  []rune
	pos  int
	loc  SourceLocation
	prev SourceLocation
}

func newCrawler(src string) *crawler {
	return &crawler{src: []rune(src)}
}

// crawlerStep is the tuple yielded for each character: the character itself,
// a peek at the next one (0 if there is none), and the locations just
// before, at, and just after it.
type crawlerStep struct {
	c, peek    rune
	prev, cur  SourceLocation
	next       SourceLocation
	ok         bool
}

func (cr *crawler) next() crawlerStep {
	if cr.pos >= len(cr.src) {
		return crawlerStep{prev: cr.loc, cur: cr.loc, next: cr.loc}
	}
	c := cr.src[cr.pos]
	var peek rune
	if cr.pos+1 < len(cr.src) {
		peek = cr.src[cr.pos+1]
	}
	prev := cr.prev
	cur := cr.loc
	next := cr.loc.Add(c)
	cr.prev = cur
	cr.loc = next
	cr.pos++
	return crawlerStep{c: c, peek: peek, prev: prev, cur: cur, next: next, ok: true}
}

func (cr *crawler) here() SourceLocation { return cr.loc }
