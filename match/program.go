// Package match executes compiled patterns against token sequences with
// full backtracking.
//
// A pattern tree is lowered to a small instruction program; execution uses
// an explicit backtracking stack of (pc, cursor, captures) frames, so
// runtime stack growth is bounded by pattern nesting, not input length.
package match

import (
	"github.com/tokrex/tokrex/pattern"
	"github.com/tokrex/tokrex/token"
)

type opcode uint8

const (
	opKind     opcode = iota // match one token by kind (negatable)
	opValue                  // match one token by exact text
	opAny                    // match any token except EOF
	opSplit                  // try x, fall back to y
	opJmp                    // continue at x
	opSave                   // record cursor in capture slot x
	opPushPos                // remember cursor for the loop guard
	opLoop                   // fail the iteration if the cursor is stuck, else jump x
	opBackref                // compare upcoming tokens to a capture
	opBalanced               // consume a bracket-balanced span
	opLook                   // run a lookaround subprogram
	opMatch                  // accept
)

type inst struct {
	op   opcode
	x, y int

	kind   token.Kind
	negate bool
	value  string

	group, depth int // opBackref
	open, close  string

	sub              *Program // opLook
	behind, negative bool
}

// Program is an executable form of one compiled pattern. It is read-only
// and reusable across matches.
type Program struct {
	insts []inst
	slots int // capture slots: 2 * (groups + 1), pair 0 is the full match
	names map[string]int
}

// Compile lowers a pattern tree into a Program.
func Compile(p *pattern.Pattern) *Program {
	c := &compiler{}
	c.emit(inst{op: opSave, x: 0})
	c.node(p.Root)
	c.emit(inst{op: opSave, x: 1})
	c.emit(inst{op: opMatch})
	return &Program{
		insts: c.insts,
		slots: 2 * (p.Groups + 1),
		names: p.Names,
	}
}

type compiler struct {
	insts []inst
}

func (c *compiler) emit(in inst) int {
	c.insts = append(c.insts, in)
	return len(c.insts) - 1
}

func (c *compiler) pc() int { return len(c.insts) }

func (c *compiler) node(n pattern.Node) {
	switch v := n.(type) {
	case *pattern.ClassNode:
		c.emit(inst{op: opKind, kind: v.Kind, negate: v.Negate})

	case *pattern.LiteralNode:
		c.emit(inst{op: opValue, kind: v.Kind, value: v.Value})

	case *pattern.AnyNode:
		c.emit(inst{op: opAny})

	case *pattern.SeqNode:
		for _, child := range v.Nodes {
			c.node(child)
		}

	case *pattern.AltNode:
		c.alternation(v.Branches)

	case *pattern.GroupNode:
		if v.Index > 0 {
			c.emit(inst{op: opSave, x: 2 * v.Index})
			c.node(v.Node)
			c.emit(inst{op: opSave, x: 2*v.Index + 1})
			return
		}
		c.node(v.Node)

	case *pattern.QuantNode:
		c.quantifier(v)

	case *pattern.LookNode:
		sub := &compiler{}
		sub.node(v.Node)
		sub.emit(inst{op: opMatch})
		c.emit(inst{
			op:       opLook,
			sub:      &Program{insts: sub.insts},
			behind:   v.Behind,
			negative: v.Negative,
		})

	case *pattern.BackrefNode:
		c.emit(inst{op: opBackref, group: v.Index, depth: v.Depth})

	case *pattern.BalancedNode:
		c.emit(inst{op: opBalanced, open: v.Open, close: v.Close})
	}
}

// alternation emits branches tried strictly in written order.
func (c *compiler) alternation(branches []pattern.Node) {
	var jumps []int
	for i, br := range branches {
		if i == len(branches)-1 {
			c.node(br)
			break
		}
		split := c.emit(inst{op: opSplit})
		c.insts[split].x = c.pc()
		c.node(br)
		jumps = append(jumps, c.emit(inst{op: opJmp}))
		c.insts[split].y = c.pc()
	}
	end := c.pc()
	for _, j := range jumps {
		c.insts[j].x = end
	}
}

// quantifier emits Min mandatory copies of the body, then either a guarded
// loop (unbounded) or a chain of optional copies. Greedy forms try the
// repetition first; lazy forms try the continuation first. Every choice is
// an opSplit frame, so later failures re-open earlier repetition counts.
func (c *compiler) quantifier(q *pattern.QuantNode) {
	for i := 0; i < q.Min; i++ {
		c.node(q.Node)
	}
	if q.Max < 0 {
		split := c.emit(inst{op: opSplit})
		body := c.pc()
		c.emit(inst{op: opPushPos})
		c.node(q.Node)
		c.emit(inst{op: opLoop, x: split})
		end := c.pc()
		if q.Lazy {
			c.insts[split].x, c.insts[split].y = end, body
		} else {
			c.insts[split].x, c.insts[split].y = body, end
		}
		return
	}

	var splits []int
	for i := q.Min; i < q.Max; i++ {
		splits = append(splits, c.emit(inst{op: opSplit}))
		c.node(q.Node)
	}
	end := c.pc()
	for _, s := range splits {
		if q.Lazy {
			c.insts[s].x, c.insts[s].y = end, s+1
		} else {
			c.insts[s].x, c.insts[s].y = s+1, end
		}
	}
}
