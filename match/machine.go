package match

import "github.com/tokrex/tokrex/token"

// btFrame is one pending alternative: where to resume and the state to
// resume with.
type btFrame struct {
	pc, sp int
	caps   []int
	loops  []int
}

// machine executes one Program against one token sequence. A fresh machine
// is built per attempt; Programs themselves are never mutated.
type machine struct {
	prog *Program
	toks []token.Token

	pc, sp int
	caps   []int
	loops  []int // cursor snapshots for in-flight unbounded loops

	bt []btFrame

	// requireEnd anchors the accept position; used to evaluate lookbehind
	// subpatterns that must end exactly at the outer cursor. -1 disables.
	requireEnd int
}

func newMachine(p *Program, toks []token.Token, start int, caps []int) *machine {
	if caps == nil {
		caps = make([]int, p.slots)
		for i := range caps {
			caps[i] = -1
		}
	}
	return &machine{
		prog:       p,
		toks:       toks,
		pc:         0,
		sp:         start,
		caps:       caps,
		requireEnd: -1,
	}
}

func (m *machine) cur() (token.Token, bool) {
	if m.sp < len(m.toks) {
		return m.toks[m.sp], true
	}
	return token.Token{}, false
}

func (m *machine) pushFrame(pc int) {
	m.bt = append(m.bt, btFrame{
		pc:    pc,
		sp:    m.sp,
		caps:  append([]int(nil), m.caps...),
		loops: append([]int(nil), m.loops...),
	})
}

// backtrack resumes the most recent pending alternative; it reports false
// when none remain.
func (m *machine) backtrack() bool {
	if len(m.bt) == 0 {
		return false
	}
	f := m.bt[len(m.bt)-1]
	m.bt = m.bt[:len(m.bt)-1]
	m.pc, m.sp = f.pc, f.sp
	m.caps = f.caps
	m.loops = f.loops
	return true
}

// run executes until accept or until every alternative is exhausted.
func (m *machine) run() bool {
	for {
		in := &m.prog.insts[m.pc]
		ok := true

		switch in.op {
		case opKind:
			t, have := m.cur()
			matched := have && t.Kind == in.kind
			if in.negate {
				matched = have && t.Kind != in.kind && t.Kind != token.EOF
			}
			if matched {
				m.sp++
				m.pc++
			} else {
				ok = false
			}

		case opValue:
			t, have := m.cur()
			if have && t.Value == in.value && (in.kind == token.Invalid || t.Kind == in.kind) {
				m.sp++
				m.pc++
			} else {
				ok = false
			}

		case opAny:
			t, have := m.cur()
			if have && t.Kind != token.EOF {
				m.sp++
				m.pc++
			} else {
				ok = false
			}

		case opSplit:
			m.pushFrame(in.y)
			m.pc = in.x

		case opJmp:
			m.pc = in.x

		case opSave:
			m.caps[in.x] = m.sp
			m.pc++

		case opPushPos:
			m.loops = append(m.loops, m.sp)
			m.pc++

		case opLoop:
			saved := m.loops[len(m.loops)-1]
			m.loops = m.loops[:len(m.loops)-1]
			if m.sp == saved {
				// the body matched nothing; taking the loop again would
				// never terminate
				ok = false
			} else {
				m.pc = in.x
			}

		case opBackref:
			ok = m.backref(in)

		case opBalanced:
			ok = m.balanced(in)

		case opLook:
			ok = m.look(in)

		case opMatch:
			if m.requireEnd >= 0 && m.sp != m.requireEnd {
				ok = false
			} else {
				return true
			}
		}

		if !ok && !m.backtrack() {
			return false
		}
	}
}

// backref compares the upcoming tokens against the referenced capture,
// value for value. A capture that never participated matches emptily. The
// optional depth constraint pins the bracket nesting, accumulated since
// the capture began, at the reference point.
func (m *machine) backref(in *inst) bool {
	start, end := m.caps[2*in.group], m.caps[2*in.group+1]
	if start < 0 || end < 0 {
		m.pc++
		return true
	}
	if in.depth >= 0 && nestingDepth(m.toks, start, m.sp) != in.depth {
		return false
	}
	n := end - start
	if m.sp+n > len(m.toks) {
		return false
	}
	for i := 0; i < n; i++ {
		if m.toks[m.sp+i].Value != m.toks[start+i].Value {
			return false
		}
	}
	m.sp += n
	m.pc++
	return true
}

// balanced consumes from an opening bracket to the close that returns the
// nesting to zero. An unterminated region is an ordinary match failure.
func (m *machine) balanced(in *inst) bool {
	t, have := m.cur()
	if !have || t.Value != in.open {
		return false
	}
	depth := 1
	for i := m.sp + 1; i < len(m.toks); i++ {
		switch m.toks[i].Value {
		case in.open:
			depth++
		case in.close:
			depth--
			if depth == 0 {
				m.sp = i + 1
				m.pc++
				return true
			}
		}
	}
	return false
}

// look evaluates a lookaround at the current cursor. The subprogram sees a
// copy of the current captures (they are readable) but its outcome commits
// neither position nor captures.
func (m *machine) look(in *inst) bool {
	matched := false
	if in.behind {
		// anchor the subpattern to end exactly at the cursor, trying
		// progressively earlier start positions
		for j := m.sp; j >= 0 && !matched; j-- {
			sub := newMachine(in.sub, m.toks, j, append([]int(nil), m.caps...))
			sub.requireEnd = m.sp
			matched = sub.run()
		}
	} else {
		sub := newMachine(in.sub, m.toks, m.sp, append([]int(nil), m.caps...))
		matched = sub.run()
	}
	if matched == in.negative {
		return false
	}
	m.pc++
	return true
}

// nestingDepth is the net bracket depth across toks[from:to). Script
// brackets count by value; markup elements count by tag kind, a self-close
// cancelling its own open.
func nestingDepth(toks []token.Token, from, to int) int {
	d := 0
	for i := from; i < to && i < len(toks); i++ {
		switch toks[i].Kind {
		case token.TagOpen:
			d++
		case token.TagClose, token.SelfClose:
			d--
		default:
			switch toks[i].Value {
			case "(", "{", "[":
				d++
			case ")", "}", "]":
				d--
			}
		}
	}
	return d
}
