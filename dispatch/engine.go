// Package dispatch drives a left-to-right scan of a token stream, trying
// registered patterns at each position and invoking the winning handler.
//
// Registrations are plain table entries built at startup; dispatch is a
// direct closure call. Handlers may start nested, scope-restricted
// traversals over sub-ranges, communicate through a per-traversal context
// store, and record token edits for later source reconstruction.
package dispatch

import (
	"fmt"
	"sort"

	"github.com/tokrex/tokrex/match"
	"github.com/tokrex/tokrex/pattern"
	"github.com/tokrex/tokrex/token"
)

// Handler reacts to one match. The returned value is recorded in the
// context under the registration's name; a non-nil error aborts the whole
// traversal.
type Handler func(r *Run, m *match.Match) (any, error)

// Registration is one dispatch-table entry.
type Registration struct {
	Name     string
	Pattern  *pattern.Pattern
	Handler  Handler
	Priority int  // higher fires first; ties break by registration order
	Consumes bool // advance past the match instead of one token

	// AllowedCallers restricts the registration to nested traversals
	// started by one of the named handlers. Empty means unrestricted.
	AllowedCallers []string

	prog  *match.Program
	order int
}

func (r *Registration) allows(caller string) bool {
	if len(r.AllowedCallers) == 0 {
		return true
	}
	for _, name := range r.AllowedCallers {
		if name == caller {
			return true
		}
	}
	return false
}

// Option adjusts a registration beyond its defaults (priority 0,
// consuming, unrestricted).
type Option func(*Registration)

// WithPriority sets the registration's priority.
func WithPriority(p int) Option {
	return func(r *Registration) { r.Priority = p }
}

// NonConsuming makes the cursor advance one token regardless of the
// match's extent.
func NonConsuming() Option {
	return func(r *Registration) { r.Consumes = false }
}

// AllowedCallers limits the registration to nested traversals started by
// the named handlers.
func AllowedCallers(names ...string) Option {
	return func(r *Registration) { r.AllowedCallers = names }
}

// Engine holds the registration table and the lifecycle hooks.
type Engine struct {
	regs   []*Registration
	byName map[string]*Registration

	OnBegin     func(r *Run)
	OnEnd       func(r *Run)
	OnUnmatched func(r *Run, index int)
}

// NewEngine returns an empty dispatch table.
func NewEngine() *Engine {
	return &Engine{byName: map[string]*Registration{}}
}

// Register compiles patternText and adds an entry under name. Names must
// be unique; the error carries any pattern syntax failure.
func (e *Engine) Register(name, patternText string, h Handler, opts ...Option) error {
	pat, err := pattern.Compile(patternText)
	if err != nil {
		return fmt.Errorf("registration %q: %w", name, err)
	}
	reg := &Registration{
		Name:     name,
		Pattern:  pat,
		Handler:  h,
		Consumes: true,
		prog:     match.Compile(pat),
		order:    len(e.regs),
	}
	for _, opt := range opts {
		opt(reg)
	}
	if _, dup := e.byName[name]; dup {
		return fmt.Errorf("registration %q: duplicate name", name)
	}
	e.regs = append(e.regs, reg)
	e.byName[name] = reg
	return nil
}

// inScope selects registrations by name, sorted by priority (descending)
// then registration order. A nil name set selects every registration that
// carries no caller restriction plus the restricted ones, which are then
// filtered per position by the caller check.
func (e *Engine) inScope(names []string) []*Registration {
	var regs []*Registration
	if names == nil {
		regs = append(regs, e.regs...)
	} else {
		for _, n := range names {
			if reg, ok := e.byName[n]; ok {
				regs = append(regs, reg)
			}
		}
	}
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].Priority != regs[j].Priority {
			return regs[i].Priority > regs[j].Priority
		}
		return regs[i].order < regs[j].order
	})
	return regs
}

// Visit runs a top-level traversal over all registrations with a fresh
// context. The finished Run gives access to the context and the edits.
func (e *Engine) Visit(toks []token.Token) (*Run, error) {
	return e.Execute(toks, nil, nil)
}

// Traverse runs a top-level traversal restricted to the named
// registrations (nil means all). The context is shared by every handler
// for the duration of this invocation.
func (e *Engine) Traverse(toks []token.Token, names []string, ctx *Context) error {
	_, err := e.Execute(toks, names, ctx)
	return err
}

// Execute is the general entry point behind Visit and Traverse.
func (e *Engine) Execute(toks []token.Token, names []string, ctx *Context) (*Run, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	r := &Run{
		engine: e,
		toks:   toks,
		ctx:    ctx,
		edits:  NewEditList(toks),
	}
	if e.OnBegin != nil {
		e.OnBegin(r)
	}
	err := r.scan(0, len(toks), names)
	if e.OnEnd != nil {
		e.OnEnd(r)
	}
	return r, err
}

// Run is the state of one top-level traversal: cursor, caller stack,
// context, and the collected edits. Handlers receive the same Run for
// nested traversals.
type Run struct {
	engine *Engine
	toks   []token.Token
	ctx    *Context
	edits  *EditList

	callers []string // handlers that initiated the active nested traversals
	current string   // handler being invoked right now
	skip    int      // cursor override requested by the current handler
}

// Tokens is the sequence being traversed. It is read-only for the
// duration of the traversal.
func (r *Run) Tokens() []token.Token { return r.toks }

// Context is the keyed store shared by all handlers of this traversal.
func (r *Run) Context() *Context { return r.ctx }

// Edits is the append-only token-edit list of this traversal.
func (r *Run) Edits() *EditList { return r.edits }

// Caller is the handler that initiated the current nested traversal, or
// "" at top level.
func (r *Run) Caller() string {
	if len(r.callers) == 0 {
		return ""
	}
	return r.callers[len(r.callers)-1]
}

// Traverse scans toks[start:end) with only the named registrations in
// scope, pushing the invoking handler's identity onto the caller stack
// for the duration. It blocks until the nested traversal completes.
func (r *Run) Traverse(start, end int, names ...string) error {
	if start < 0 {
		start = 0
	}
	if end > len(r.toks) {
		end = len(r.toks)
	}
	r.callers = append(r.callers, r.current)
	saved := r.skip
	err := r.scan(start, end, names)
	r.skip = saved
	r.callers = r.callers[:len(r.callers)-1]
	return err
}

// SkipToIndex fast-forwards the cursor to an absolute token index once
// the current handler returns.
func (r *Run) SkipToIndex(i int) { r.skip = i }

// SkipTo fast-forwards the cursor to the next token with the given text
// at or after from; without an occurrence the cursor moves to the end.
func (r *Run) SkipTo(from int, value string) {
	for i := from; i < len(r.toks); i++ {
		if r.toks[i].Value == value {
			r.skip = i
			return
		}
	}
	r.skip = len(r.toks)
}

// SkipBalanced fast-forwards the cursor past the bracket-balanced region
// that opens at from, so downstream registrations never re-scan it.
func (r *Run) SkipBalanced(from int) {
	if from >= len(r.toks) {
		r.skip = len(r.toks)
		return
	}
	open := r.toks[from].Value
	close, ok := balancedClose[open]
	if !ok {
		r.skip = from + 1
		return
	}
	depth := 0
	for i := from; i < len(r.toks); i++ {
		switch r.toks[i].Value {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				r.skip = i + 1
				return
			}
		}
	}
	r.skip = len(r.toks)
}

var balancedClose = map[string]string{"(": ")", "{": "}", "[": "]", "<": ">"}

// scan is the dispatch loop. At each index the in-scope registrations are
// tried in priority order; a registration whose caller allow-list
// excludes the current caller is skipped exactly like a non-match.
func (r *Run) scan(start, end int, names []string) error {
	regs := r.engine.inScope(names)
	i := start
	for i < end {
		fired := false
		for _, reg := range regs {
			if !reg.allows(r.Caller()) {
				continue
			}
			m, ok := reg.prog.TryMatch(r.toks, i)
			if !ok {
				continue
			}

			prev := r.current
			r.current = reg.Name
			r.skip = -1
			ret, err := reg.Handler(r, m)
			r.current = prev
			if err != nil {
				return fmt.Errorf("handler %q: %w", reg.Name, err)
			}
			r.ctx.recordReturn(reg.Name, ret)

			next := i + 1
			if r.skip >= 0 {
				next = r.skip
			} else if reg.Consumes && m.End > i {
				next = m.End
			}
			if next <= i {
				next = i + 1 // zero-width match or backwards skip
			}
			i = next
			fired = true
			break
		}
		if !fired {
			if r.engine.OnUnmatched != nil {
				r.engine.OnUnmatched(r, i)
			}
			i++
		}
	}
	return nil
}
