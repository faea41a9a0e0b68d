package solver

// Assignment state: per-variable value, reason and decision level, plus the
// trail of assigned literals in assignment order. trailLim[d] is the trail
// index at which decision level d+1 began; qhead is the index of the next
// literal whose consequences have not been propagated yet.

type reasonKind byte

const (
	reasonNone = reasonKind(iota) // Decision, or level-0 fact.
	reasonClause
	reasonBinary
	reasonTernary
	reasonXor
)

// propBy tells why a variable was assigned. Binary and ternary reasons
// carry their other literals inline since those clauses have no arena
// representation. XOR reasons point at the synthesized literal list kept in
// xorReasons, indexed by the propagated variable.
type propBy struct {
	kind   reasonKind
	ref    CRef
	l0, l1 Lit
}

var noReason = propBy{kind: reasonNone, ref: CRefUndef}

// A conflictRef describes a falsified clause found by propagation. For
// binary and ternary clauses the literals are carried inline; for XOR
// conflicts they are synthesized at detection time.
type conflictRef struct {
	kind    reasonKind
	ref     CRef
	lits    [3]Lit
	n       int
	xorLits []Lit
}

type varData struct {
	reason propBy
	level  int32
}

func (s *Solver) varValue(v Var) lbool {
	return s.assigns[v]
}

func (s *Solver) value(l Lit) lbool {
	val := s.assigns[l.Var()]
	if val == lUndef || l.IsPositive() {
		return val
	}
	return val.negate()
}

func (s *Solver) level(v Var) int32 {
	return s.varData[v].level
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

func (s *Solver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

// enqueue records the assignment making p true. The caller must have
// checked that p is currently unassigned.
func (s *Solver) enqueue(p Lit, from propBy) {
	v := p.Var()
	s.assigns[v] = boolToLbool(p.IsPositive())
	s.varData[v] = varData{reason: from, level: int32(s.decisionLevel())}
	s.trail = append(s.trail, p)
}

// isLocked reports whether the clause is the reason for a currently
// assigned literal. Locked clauses are never removed.
func (s *Solver) isLocked(ref CRef) bool {
	c := s.ca.clause(ref)
	v := c.Get(0).Var()
	rd := s.varData[v]
	return s.assigns[v] != lUndef && rd.reason.kind == reasonClause && rd.reason.ref == ref
}

// reasonLits expands the reason of v into buf. The propagated literal comes
// first; all other literals are false at levels at or below v's level.
func (s *Solver) reasonLits(v Var, buf []Lit) []Lit {
	buf = buf[:0]
	p := v.SignedLit(s.assigns[v] == lFalse)
	from := s.varData[v].reason
	switch from.kind {
	case reasonNone:
		return buf
	case reasonClause:
		c := s.ca.clause(from.ref)
		for i := 0; i < c.Len(); i++ {
			buf = append(buf, c.Get(i))
		}
		return buf
	case reasonBinary:
		return append(buf, p, from.l0)
	case reasonTernary:
		return append(buf, p, from.l0, from.l1)
	case reasonXor:
		return append(buf, s.xorReasons[v]...)
	}
	panic("unknown reason kind")
}

// conflictLits expands a conflict into buf. Every literal is false under
// the current assignment.
func (s *Solver) conflictLits(cf conflictRef, buf []Lit) []Lit {
	buf = buf[:0]
	switch cf.kind {
	case reasonClause:
		c := s.ca.clause(cf.ref)
		for i := 0; i < c.Len(); i++ {
			buf = append(buf, c.Get(i))
		}
		return buf
	case reasonBinary, reasonTernary:
		return append(buf, cf.lits[:cf.n]...)
	case reasonXor:
		return append(buf, cf.xorLits...)
	}
	panic("unknown conflict kind")
}

// cancelUntil undoes all assignments above the given decision level.
// Level-0 assignments are never touched. Phases are saved, variables are
// put back in the activity order, over-glue learnts installed above the
// target level are dropped, and the Gauss engine rolls back its snapshots.
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	for i := len(s.trail) - 1; i >= s.trailLim[level]; i-- {
		p := s.trail[i]
		v := p.Var()
		s.polarity[v] = p.IsPositive()
		s.assigns[v] = lUndef
		s.varData[v] = varData{reason: noReason, level: -1}
		if !s.varQueue.contains(int(v)) {
			s.varQueue.insert(int(v))
		}
	}
	s.qhead = s.trailLim[level]
	s.trail = s.trail[:s.trailLim[level]]
	s.trailLim = s.trailLim[:level]
	s.dropOverGlue(level)
	if s.gauss != nil {
		s.gauss.rollback(level)
	}
}

// dropOverGlue removes learnt clauses whose creation glue exceeded MaxGlue
// once the search backjumps below their installation level. Records are
// only created under dynamic restarts.
func (s *Solver) dropOverGlue(level int) {
	if len(s.overGlue) == 0 {
		return
	}
	kept := s.overGlue[:0]
	for _, og := range s.overGlue {
		if og.level <= level {
			kept = append(kept, og)
			continue
		}
		if s.isLocked(og.ref) {
			kept = append(kept, og)
			continue
		}
		s.detachClause(og.ref)
		s.removeLearnt(og.ref)
		s.ca.free(og.ref)
		s.Stats.NbClOverMaxGlue++
	}
	s.overGlue = kept
}
