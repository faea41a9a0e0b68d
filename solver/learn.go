package solver

// Conflict analysis: first-UIP resolution along the trail, learnt clause
// minimization, glue computation and activity bookkeeping.

// analyze resolves the conflict down to the first UIP of the current
// decision level. It returns the learnt literals (asserting literal first,
// a literal of the backjump level second), the backjump level and the glue
// of the learnt clause. seen marks are cleared before returning.
func (s *Solver) analyze(confl *conflictRef) (learnt []Lit, btLevel, glue int) {
	s.learntBuf = s.learntBuf[:0]
	learnt = append(s.learntBuf, LitUndef) // Slot 0 is for the asserting literal.
	pathC := 0
	p := LitUndef
	idx := len(s.trail) - 1
	curLvl := int32(s.decisionLevel())

	lits := s.conflictLits(*confl, s.reasonBuf[:0])
	if confl.kind == reasonClause {
		s.claBumpActivity(confl.ref)
	}
	for {
		for _, q := range lits {
			if q == p {
				continue // The literal being resolved upon.
			}
			v := q.Var()
			if !s.seen[v] && s.level(v) > 0 {
				s.seen[v] = true
				s.varBumpActivity(v)
				if s.level(v) >= curLvl {
					pathC++
				} else {
					learnt = append(learnt, q)
				}
			}
		}
		// Walk the trail backward to the next marked literal.
		for !s.seen[s.trail[idx].Var()] {
			idx--
		}
		p = s.trail[idx]
		idx--
		s.seen[p.Var()] = false
		pathC--
		if pathC == 0 {
			break
		}
		v := p.Var()
		if s.varData[v].reason.kind == reasonClause {
			s.claBumpActivity(s.varData[v].reason.ref)
		}
		lits = s.reasonLits(v, s.reasonBuf[:0])
	}
	learnt[0] = p.Negation()

	learnt = s.minimize(learnt)
	s.Stats.NbLearntLits += int64(len(learnt))

	// Put a literal of the backjump level in second position.
	btLevel = 0
	if len(learnt) > 1 {
		maxI := 1
		for i := 2; i < len(learnt); i++ {
			if s.level(learnt[i].Var()) > s.level(learnt[maxI].Var()) {
				maxI = i
			}
		}
		learnt[1], learnt[maxI] = learnt[maxI], learnt[1]
		btLevel = int(s.level(learnt[1].Var()))
	}
	glue = s.computeGlue(learnt)

	for _, l := range learnt {
		s.seen[l.Var()] = false
	}
	for _, l := range s.toClear {
		s.seen[l.Var()] = false
	}
	s.toClear = s.toClear[:0]
	s.learntBuf = learnt
	s.varDecayActivity()
	s.claDecayActivity()
	return learnt, btLevel, glue
}

// minimize removes redundant literals from the learnt clause: a literal is
// dropped when its reason resolves away against literals already present
// (locally, or transitively when recursive minimization is enabled).
func (s *Solver) minimize(learnt []Lit) []Lit {
	if !s.conf.DoMinimLearntMore {
		return learnt
	}
	var abstractLevels uint32
	if s.conf.DoMinimLMoreRecur {
		for _, l := range learnt[1:] {
			abstractLevels |= abstractLevel(s.level(l.Var()))
		}
	}
	sz := 1
	for i := 1; i < len(learnt); i++ {
		v := learnt[i].Var()
		if s.varData[v].reason.kind == reasonNone {
			learnt[sz] = learnt[i]
			sz++
			continue
		}
		if s.conf.DoMinimLMoreRecur {
			if s.litRedundant(learnt[i], abstractLevels) {
				s.toClear = append(s.toClear, learnt[i])
			} else {
				learnt[sz] = learnt[i]
				sz++
			}
			continue
		}
		redundant := true
		for _, q := range s.reasonLits(v, s.minBuf[:0])[1:] {
			if !s.seen[q.Var()] && s.level(q.Var()) > 0 {
				redundant = false
				break
			}
		}
		if redundant {
			s.toClear = append(s.toClear, learnt[i])
		} else {
			learnt[sz] = learnt[i]
			sz++
		}
	}
	s.Stats.NbMinimizedLits += int64(len(learnt) - sz)
	return learnt[:sz]
}

// abstractLevel maps a decision level to one of 32 buckets, used to cut
// hopeless branches early during recursive minimization.
func abstractLevel(lvl int32) uint32 {
	return 1 << (uint32(lvl) & 31)
}

// litRedundant checks whether p is implied by seen literals, walking the
// implication graph through reasons. Uses the analyze stack and records
// extra marks in toClear.
func (s *Solver) litRedundant(p Lit, abstractLevels uint32) bool {
	s.analyzeStack = append(s.analyzeStack[:0], p)
	top := len(s.toClear)
	for len(s.analyzeStack) > 0 {
		q := s.analyzeStack[len(s.analyzeStack)-1]
		s.analyzeStack = s.analyzeStack[:len(s.analyzeStack)-1]
		v := q.Var()
		for _, r := range s.reasonLits(v, s.minBuf[:0])[1:] {
			w := r.Var()
			if s.seen[w] || s.level(w) == 0 {
				continue
			}
			if s.varData[w].reason.kind != reasonNone && abstractLevel(s.level(w))&abstractLevels != 0 {
				s.seen[w] = true
				s.analyzeStack = append(s.analyzeStack, r)
				s.toClear = append(s.toClear, r)
				continue
			}
			// Not redundant: undo the speculative marks.
			for _, c := range s.toClear[top:] {
				s.seen[c.Var()] = false
			}
			s.toClear = s.toClear[:top]
			return false
		}
	}
	return true
}

// computeGlue counts the distinct decision levels among the literals.
func (s *Solver) computeGlue(lits []Lit) int {
	s.glueStamp++
	glue := 0
	for _, l := range lits {
		lvl := s.level(l.Var())
		if s.permDiff[lvl] != s.glueStamp {
			s.permDiff[lvl] = s.glueStamp
			glue++
		}
	}
	return glue
}

// otfImprove shrinks the conflict clause in place when the learnt clause
// subsumes it minus at least one literal. Called before the backjump,
// while decision levels are still valid, so the clause can be re-attached
// on its two deepest literals.
func (s *Solver) otfImprove(confl *conflictRef, learnt []Lit) {
	if confl.kind != reasonClause {
		return
	}
	c := s.ca.clause(confl.ref)
	if !c.Learnt() || len(learnt) < 3 || len(learnt) >= c.Len() || s.isLocked(confl.ref) {
		return
	}
	s.glueStamp++
	for _, l := range learnt {
		s.permDiff[l] = s.glueStamp
	}
	matched := 0
	for i := 0; i < c.Len(); i++ {
		if s.permDiff[c.Get(i)] == s.glueStamp {
			matched++
		}
	}
	if matched != len(learnt) {
		return // Some learnt literal is missing from c: no subsumption.
	}
	s.detachClause(confl.ref)
	sz := 0
	for i := 0; i < c.Len(); i++ {
		if s.permDiff[c.Get(i)] == s.glueStamp {
			c.Set(sz, c.Get(i))
			sz++
		}
	}
	s.Stats.NbShrunkenLits += int64(c.Len() - sz)
	s.Stats.NbShrunkenClauses++
	c.Shrink(sz)
	// Watch the two deepest literals.
	for i := 0; i < 2; i++ {
		maxI := i
		for j := i + 1; j < c.Len(); j++ {
			if s.level(c.Get(j).Var()) > s.level(c.Get(maxI).Var()) {
				maxI = j
			}
		}
		c.swap(i, maxI)
	}
	c.setGlue(s.computeGlue(litsOf(c)))
	s.attachClause(confl.ref)
}

func litsOf(c Clause) []Lit {
	lits := make([]Lit, c.Len())
	for i := range lits {
		lits[i] = c.Get(i)
	}
	return lits
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.varDecay
}

func (s *Solver) varBumpActivity(v Var) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 { // Rescaling is needed to avoid overflowing.
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
	}
	if s.varQueue.contains(int(v)) {
		s.varQueue.decrease(int(v))
	}
}

func (s *Solver) claDecayActivity() {
	s.claInc *= 1 / claDecay
}

func (s *Solver) claBumpActivity(ref CRef) {
	c := s.ca.clause(ref)
	if !c.Learnt() {
		return
	}
	act := c.activity() + s.claInc
	c.setActivity(act)
	if act > 1e30 { // Rescale to avoid overflow.
		for _, ref2 := range s.learnts {
			c2 := s.ca.clause(ref2)
			c2.setActivity(c2.activity() * 1e-30)
		}
		s.claInc *= 1e-30
	}
}
