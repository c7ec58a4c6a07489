package scatter

import (
	"fmt"
	"strings"
)

// logging gives Program and Interpreter a shared leveled-mark logf, in the
// manner of the teacher's core.go logging embed: callers pass a short mark
// ("load", "run", "!") and a printf-style message; logf pads marks to a
// running column width so output lines up.
type logging struct {
	logfn     func(mess string, args ...interface{})
	markWidth int
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(" ", n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
