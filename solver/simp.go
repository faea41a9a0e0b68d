package solver

// Simplification episodes run between search episodes, with the trail at
// level 0. The built-in pass cleans the clause database against the
// level-0 assignment; heavier in-processing (variable elimination,
// probing, XOR subsumption) is the business of external simplifiers,
// which interact with the solver through the same contract: level-0 units,
// clause rewrites, variable elimination marks and the reconstruction
// stack.

// A reconsEntry allows a model over the simplified variable space to be
// extended back over an eliminated variable: if the clause has no true
// literal under the model, lit must be set.
type reconsEntry struct {
	lit    Lit
	clause []Lit
}

// PushReconstruction records that lit must be satisfied whenever clause is
// not, when extending a model over eliminated variables. Entries are
// replayed in reverse order of recording.
func (s *Solver) PushReconstruction(clause []Lit, lit Lit) {
	s.recons = append(s.recons, reconsEntry{lit: lit, clause: append([]Lit(nil), clause...)})
}

// MarkEliminated excludes v from branching. The watch lists must not
// reference the variable anymore; the built-in cleanup rebuilds them, so
// external simplifiers only need to have rewritten the clauses.
func (s *Solver) MarkEliminated(v Var) {
	s.elimed[v] = true
	s.decisionVar[v] = false
}

// extendModel replays the reconstruction stack over the current model.
func (s *Solver) extendModel() {
	for i := len(s.recons) - 1; i >= 0; i-- {
		e := &s.recons[i]
		satisfied := false
		for _, l := range e.clause {
			if val := s.model[l.Var()]; val != lUndef && (val == lTrue) == l.IsPositive() {
				satisfied = true
				break
			}
		}
		if !satisfied {
			s.model[e.lit.Var()] = boolToLbool(e.lit.IsPositive())
		}
	}
}

// greedyUnbind unbinds model variables whose value no original clause
// needs, so that the reported model only constrains useful variables.
func (s *Solver) greedyUnbind() {
	needed := make([]bool, s.nbVars)
	mark := func(lits []Lit) {
		// The first true literal of each clause is kept bound.
		for _, l := range lits {
			if (s.model[l.Var()] == lTrue) == l.IsPositive() {
				needed[l.Var()] = true
				return
			}
		}
	}
	for _, b := range s.binOrig {
		mark(b[:])
	}
	for _, t := range s.triOrig {
		mark(t[:])
	}
	for _, ref := range s.clauses {
		mark(litsOf(s.ca.clause(ref)))
	}
	for i := 0; i < s.qhead && i < len(s.trail); i++ {
		if s.level(s.trail[i].Var()) == 0 {
			needed[s.trail[i].Var()] = true
		}
	}
	for _, x := range s.xorClauses {
		for _, v := range x.vars {
			needed[v] = true
		}
	}
	for v := 0; v < s.nbVars; v++ {
		if !needed[v] {
			s.model[v] = lUndef
		}
	}
}

// simplify cleans the clause database against the level-0 assignment:
// satisfied clauses are removed, false literals are stripped, XOR
// constraints are reduced, and the watch lists are rebuilt. Must be called
// at level 0 with the propagation queue drained.
func (s *Solver) simplify() Status {
	s.Stats.NbSimplifies++
	s.fullRestart()

	keptLong := s.clauses[:0]
	var demoted [][]Lit
	for _, ref := range s.clauses {
		switch lits := s.reduceAtLevel0(ref); {
		case lits == nil: // Satisfied: dropped.
			s.ca.free(ref)
		case len(lits) > 3:
			keptLong = append(keptLong, ref)
		default:
			demoted = append(demoted, lits)
			s.ca.free(ref)
		}
	}
	s.clauses = keptLong
	keptLearnt := s.learnts[:0]
	for _, ref := range s.learnts {
		lits := s.reduceAtLevel0(ref)
		if lits != nil && len(lits) >= 3 {
			keptLearnt = append(keptLearnt, ref)
			continue
		}
		s.ca.free(ref)
		switch {
		case lits == nil:
		case len(lits) == 2:
			s.binLearnts = append(s.binLearnts, [2]Lit{lits[0], lits[1]})
		case len(lits) == 1:
			if !s.assertLevel0(lits[0]) {
				s.status = Unsat
				return Unsat
			}
		case len(lits) == 0:
			s.status = Unsat
			return Unsat
		}
	}
	s.learnts = keptLearnt
	s.overGlue = s.overGlue[:0]

	s.binOrig = s.cleanBinaries(s.binOrig)
	s.binLearnts = s.cleanBinaries(s.binLearnts)
	if s.status == Unsat {
		return Unsat
	}
	keptTri := s.triOrig[:0]
	for _, t := range s.triOrig {
		switch lits := s.reduceLits(t[:]); {
		case lits == nil:
		case len(lits) == 3:
			keptTri = append(keptTri, t)
		default:
			demoted = append(demoted, append([]Lit(nil), lits...))
		}
	}
	s.triOrig = keptTri
	for _, lits := range demoted {
		switch len(lits) {
		case 0:
			s.status = Unsat
			return Unsat
		case 1:
			if !s.assertLevel0(lits[0]) {
				s.status = Unsat
				return Unsat
			}
		case 2:
			s.binOrig = append(s.binOrig, [2]Lit{lits[0], lits[1]})
		case 3:
			s.triOrig = append(s.triOrig, [3]Lit{lits[0], lits[1], lits[2]})
		}
	}

	if st := s.simplifyXors(); st == Unsat {
		s.status = Unsat
		return Unsat
	}
	s.rebuildWatches()
	s.qhead = 0 // Re-drain the whole level-0 trail against the rebuilt lists.
	if confl := s.propagate(); confl != nil {
		s.status = Unsat
		return Unsat
	}
	if s.ca.needsCompact() {
		s.garbageCollect()
	}
	return s.status
}

// reduceAtLevel0 evaluates an arena clause against the level-0 assignment.
// It returns nil when the clause is satisfied, or the surviving literals.
func (s *Solver) reduceAtLevel0(ref CRef) []Lit {
	c := s.ca.clause(ref)
	lits := litsOf(c)
	out := s.reduceLits(lits)
	if out == nil {
		return nil
	}
	if len(out) != c.Len() && len(out) >= 3 {
		for i, l := range out {
			c.Set(i, l)
		}
		c.Shrink(len(out))
	}
	return out
}

// reduceLits filters the literals of a clause against the level-0
// assignment, returning nil when one of them is true there.
func (s *Solver) reduceLits(lits []Lit) []Lit {
	out := make([]Lit, 0, len(lits))
	for _, l := range lits {
		switch s.value(l) {
		case lTrue:
			if s.level(l.Var()) == 0 {
				return nil
			}
			out = append(out, l)
		case lFalse:
			if s.level(l.Var()) != 0 {
				out = append(out, l)
			}
		default:
			out = append(out, l)
		}
	}
	return out
}

func (s *Solver) cleanBinaries(bins [][2]Lit) [][2]Lit {
	kept := bins[:0]
	for _, b := range bins {
		switch lits := s.reduceLits(b[:]); {
		case lits == nil:
		case len(lits) == 2:
			kept = append(kept, b)
		case len(lits) == 1:
			if !s.assertLevel0(lits[0]) {
				s.status = Unsat
			}
		case len(lits) == 0:
			s.status = Unsat
		}
	}
	return kept
}

// assertLevel0 enqueues a literal as a permanent fact, reporting false on
// a contradiction with the current level-0 assignment.
func (s *Solver) assertLevel0(l Lit) bool {
	switch s.value(l) {
	case lFalse:
		return false
	case lUndef:
		s.enqueue(l, noReason)
	}
	return true
}

// simplifyXors substitutes the level-0 assignment into the XOR store.
func (s *Solver) simplifyXors() Status {
	kept := s.xorClauses[:0]
	for _, x := range s.xorClauses {
		vars := x.vars[:0]
		rhs := x.rhs
		for _, v := range x.vars {
			switch s.varValue(v) {
			case lTrue:
				if s.level(v) == 0 {
					rhs = !rhs
				} else {
					vars = append(vars, v)
				}
			case lFalse:
				if s.level(v) != 0 {
					vars = append(vars, v)
				}
			default:
				vars = append(vars, v)
			}
		}
		switch len(vars) {
		case 0:
			if rhs {
				return Unsat
			}
		case 1:
			p := vars[0].SignedLit(!rhs)
			if s.value(p) == lFalse {
				return Unsat
			}
			if s.value(p) == lUndef {
				s.enqueue(p, noReason)
			}
		default:
			kept = append(kept, XorClause{vars: append([]Var(nil), vars...), rhs: rhs})
		}
	}
	s.xorClauses = kept
	if s.gauss != nil {
		s.gauss = newGaussEngine(s, s.conf.Gauss)
	}
	return Indet
}

// rebuildWatches reconstructs every watch list from the clause stores.
func (s *Solver) rebuildWatches() {
	for i := range s.watches {
		s.watches[i] = s.watches[i][:0]
	}
	for _, b := range s.binOrig {
		s.attachBinary(b[0], b[1])
	}
	for _, b := range s.binLearnts {
		s.attachBinary(b[0], b[1])
	}
	for _, t := range s.triOrig {
		s.attachTernary(t[0], t[1], t[2])
	}
	for _, ref := range s.clauses {
		s.attachClause(ref)
	}
	for _, ref := range s.learnts {
		s.attachClause(ref)
	}
	for i := range s.xorWatches {
		s.xorWatches[i] = s.xorWatches[i][:0]
	}
	for i := range s.xorClauses {
		s.watchXor(i)
	}
	if s.conf.DoSortWatched {
		s.sortWatches()
	}
}
