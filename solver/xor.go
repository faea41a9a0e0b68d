package solver

import (
	"sort"
	"strconv"
)

// XOR clauses are stored apart from ordinary clauses. An XorClause states
// that the variables in vars sum to rhs modulo 2. Negated literals never
// appear here: the parser folds each negation into the right-hand side.
//
// Two variables per XOR are watched, analogously to the two-watched-literal
// scheme: the clause is only examined once at most one of its variables
// remains unassigned.
type XorClause struct {
	vars []Var
	rhs  bool
}

// Vars returns the variables of the constraint.
func (x *XorClause) Vars() []Var { return x.vars }

// Rhs returns the parity the variables must sum to.
func (x *XorClause) Rhs() bool { return x.rhs }

// CNF returns the DIMACS "x" line for the constraint. A false right-hand
// side is encoded by negating the first literal.
func (x *XorClause) CNF() string {
	res := "x "
	for i, v := range x.vars {
		n := int(v) + 1
		if i == 0 && !x.rhs {
			n = -n
		}
		res += strconv.Itoa(n) + " "
	}
	return res + "0"
}

// normalizeXor sorts the variables and cancels duplicate pairs (v+v = 0).
// It returns the reduced variable set.
func normalizeXor(vars []Var) []Var {
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	out := vars[:0]
	for i := 0; i < len(vars); {
		if i+1 < len(vars) && vars[i] == vars[i+1] {
			i += 2
			continue
		}
		out = append(out, vars[i])
		i++
	}
	return out
}

// watchXor registers the first two variables of the clause in the XOR
// watch lists. Must only be called for clauses with at least two variables.
func (s *Solver) watchXor(idx int) {
	x := &s.xorClauses[idx]
	s.xorWatches[x.vars[0]] = append(s.xorWatches[x.vars[0]], idx)
	s.xorWatches[x.vars[1]] = append(s.xorWatches[x.vars[1]], idx)
}

// propagateXors examines the XOR clauses watching v after v was assigned.
func (s *Solver) propagateXors(v Var) *conflictRef {
	ws := s.xorWatches[v]
	kept := 0
	for i := 0; i < len(ws); i++ {
		idx := ws[i]
		x := &s.xorClauses[idx]
		other := x.vars[0]
		if other == v {
			other = x.vars[1]
		}
		// Look for an unassigned replacement to watch instead of v.
		moved := false
		for _, w := range x.vars {
			if w == v || w == other || s.varValue(w) != lUndef {
				continue
			}
			// Keep the watch pair in the first two positions.
			for k, wv := range x.vars {
				if wv == v {
					x.vars[k] = w
				} else if wv == w {
					x.vars[k] = v
				}
			}
			s.xorWatches[w] = append(s.xorWatches[w], idx)
			moved = true
			break
		}
		if moved {
			continue
		}
		ws[kept] = idx
		kept++
		if s.varValue(other) == lUndef {
			// Unit: other must complete the parity.
			val := x.rhs
			for _, w := range x.vars {
				if w != other && s.varValue(w) == lTrue {
					val = !val
				}
			}
			p := other.SignedLit(!val)
			s.xorReasons[other] = s.xorReasonLits(x, p, other)
			s.enqueue(p, propBy{kind: reasonXor, ref: CRefUndef})
			s.Stats.NbXorProps++
			continue
		}
		// Fully assigned: check the parity.
		sum := false
		for _, w := range x.vars {
			if s.varValue(w) == lTrue {
				sum = !sum
			}
		}
		if sum != x.rhs {
			copy(ws[kept:], ws[i+1:])
			s.xorWatches[v] = ws[:kept+len(ws)-i-1]
			s.Stats.NbXorConfls++
			return &conflictRef{kind: reasonXor, xorLits: s.xorConflictLits(x)}
		}
	}
	s.xorWatches[v] = ws[:kept]
	return nil
}

// xorReasonLits synthesizes the reason clause for an XOR propagation: the
// implied literal first, then one falsified literal per assigned variable.
func (s *Solver) xorReasonLits(x *XorClause, p Lit, skip Var) []Lit {
	lits := make([]Lit, 0, len(x.vars))
	lits = append(lits, p)
	for _, w := range x.vars {
		if w == skip {
			continue
		}
		lits = append(lits, w.SignedLit(s.varValue(w) == lTrue))
	}
	return lits
}

// xorConflictLits synthesizes the conflict clause of a violated XOR: one
// falsified literal per variable.
func (s *Solver) xorConflictLits(x *XorClause) []Lit {
	lits := make([]Lit, 0, len(x.vars))
	for _, w := range x.vars {
		lits = append(lits, w.SignedLit(s.varValue(w) == lTrue))
	}
	return lits
}
