package solver

// Decision heuristic: activity-ordered variable picking with optional
// random branches, optional restriction to the top-K active variables, and
// the four polarity modes.

// pickBranchLit chooses the next decision literal, or LitUndef when every
// decision variable is assigned.
func (s *Solver) pickBranchLit() Lit {
	v := VarUndef
	if s.conf.RandomVarFreq > 0 && s.rand.Float64() < s.conf.RandomVarFreq {
		if cand := Var(s.rand.Intn(s.nbVars)); s.assigns[cand] == lUndef && s.decisionVar[cand] {
			v = cand
			s.Stats.NbRndDecisions++
		}
	}
	if v == VarUndef && s.conf.RestrictPickBranch > 0 {
		v = s.pickRestricted(s.conf.RestrictPickBranch)
	}
	for v == VarUndef && !s.varQueue.empty() {
		if cand := Var(s.varQueue.removeMin()); s.assigns[cand] == lUndef && s.decisionVar[cand] {
			v = cand
		}
	}
	if v == VarUndef {
		return LitUndef
	}
	s.Stats.NbDecisions++
	return v.SignedLit(!s.pickPolarity(v))
}

// pickRestricted pops up to k unassigned candidates off the activity order
// and picks one uniformly, reinserting the others. Useful for
// cryptographic instances where the free variables of the solution are few.
func (s *Solver) pickRestricted(k int) Var {
	cands := s.restrictBuf[:0]
	for len(cands) < k && !s.varQueue.empty() {
		if cand := Var(s.varQueue.removeMin()); s.assigns[cand] == lUndef && s.decisionVar[cand] {
			cands = append(cands, cand)
		}
	}
	s.restrictBuf = cands
	if len(cands) == 0 {
		return VarUndef
	}
	chosen := cands[s.rand.Intn(len(cands))]
	for _, c := range cands {
		if c != chosen {
			s.varQueue.insert(int(c))
		}
	}
	return chosen
}

// pickPolarity returns the value to try first for v.
func (s *Solver) pickPolarity(v Var) bool {
	switch s.conf.PolarityMode {
	case PolarityTrue:
		return true
	case PolarityFalse:
		return false
	case PolarityRnd:
		return s.rand.Intn(2) == 0
	default: // PolarityAuto: saved phase, seeded by Jeroslow-Wang.
		return s.polarity[v]
	}
}

// initPolarities seeds the polarity cache with a Jeroslow-Wang estimate:
// each literal scores the sum of 2^-|C| over the clauses containing it, and
// the preferred value is the sign with the higher score.
func (s *Solver) initPolarities(pb *Problem) {
	if s.conf.PolarityMode != PolarityAuto {
		for i := range s.polarity {
			s.polarity[i] = s.conf.PolarityMode == PolarityTrue
		}
		return
	}
	scores := make([]float64, s.nbVars*2)
	for _, lits := range pb.Clauses {
		w := 1.0
		for range lits {
			w /= 2
		}
		for _, l := range lits {
			scores[l] += w
		}
	}
	for v := 0; v < s.nbVars; v++ {
		s.polarity[v] = scores[Var(v).Lit()] >= scores[Var(v).SignedLit(true)]
	}
}

// rebuildOrderHeap rebuilds the activity order from the unassigned
// decision variables.
func (s *Solver) rebuildOrderHeap() {
	ints := make([]int, 0, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		if s.assigns[v] == lUndef && s.decisionVar[v] {
			ints = append(ints, v)
		}
	}
	s.varQueue.build(ints)
}
