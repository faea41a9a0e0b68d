package solver

import "sort"

// Learnt-clause database management: periodic halving of the learnt set
// ordered by (glue, activity), with locked and low-glue clauses protected.

const (
	initNbMaxLearnts  = 2000 // Maximum # of learnt clauses, at first.
	incrNbMaxLearnts  = 300  // By how much the max is incremented at each reduction.
	incrPostponeNbMax = 1000 // Extra bump when lots of good clauses are currently learnt.
	claDecay          = 0.999
)

// shouldReduce is true when the conflict count reached the next reduction
// point, idxReduce times the current learnt budget.
func (s *Solver) shouldReduce() bool {
	return s.Stats.NbConflicts >= int64(s.idxReduce)*int64(s.nbMaxLearnts)
}

// reduceDB removes roughly the worst half of the learnt clauses. Clauses
// locked as a reason, of glue 2 or less, or explicitly protected survive.
func (s *Solver) reduceDB() {
	s.idxReduce = int(s.Stats.NbConflicts)/s.nbMaxLearnts + 1
	sort.Slice(s.learnts, func(i, j int) bool {
		ci := s.ca.clause(s.learnts[i])
		cj := s.ca.clause(s.learnts[j])
		if ci.glue() != cj.glue() {
			return ci.glue() > cj.glue()
		}
		return ci.activity() < cj.activity()
	})
	half := len(s.learnts) / 2
	if half > 0 && s.ca.clause(s.learnts[half]).glue() <= 3 {
		// Lots of good clauses: postpone the next reduction instead.
		s.nbMaxLearnts += incrPostponeNbMax
	}
	removed := 0
	kept := s.learnts[:0]
	for i, ref := range s.learnts {
		c := s.ca.clause(ref)
		if i < half && c.glue() > 2 && !c.Protected() && !s.isLocked(ref) {
			s.detachClause(ref)
			s.ca.free(ref)
			removed++
			s.Stats.NbDeleted++
			continue
		}
		kept = append(kept, ref)
	}
	s.learnts = kept
	s.nbMaxLearnts += incrNbMaxLearnts
	// Purge over-glue records whose clause was just deleted, so they never
	// point at recycled handles.
	keptOg := s.overGlue[:0]
	for _, og := range s.overGlue {
		if !s.ca.isDead(og.ref) {
			keptOg = append(keptOg, og)
		}
	}
	s.overGlue = keptOg
	if s.ca.needsCompact() {
		s.garbageCollect()
	}
}

// removeLearnt drops ref from the learnt list. The clause itself must
// already be detached.
func (s *Solver) removeLearnt(ref CRef) {
	for i, r := range s.learnts {
		if r == ref {
			s.learnts[i] = s.learnts[len(s.learnts)-1]
			s.learnts = s.learnts[:len(s.learnts)-1]
			return
		}
	}
}

// garbageCollect compacts the clause arena and remaps every stored handle:
// clause lists, watch lists, reasons and the over-glue backlog.
func (s *Solver) garbageCollect() {
	remap := s.ca.compact()
	for i, ref := range s.clauses {
		s.clauses[i] = remap[ref]
	}
	for i, ref := range s.learnts {
		s.learnts[i] = remap[ref]
	}
	for i := range s.watches {
		for j := range s.watches[i] {
			if s.watches[i][j].kind == watchLong {
				s.watches[i][j].ref = remap[s.watches[i][j].ref]
			}
		}
	}
	for v := range s.varData {
		if s.varData[v].reason.kind == reasonClause {
			s.varData[v].reason.ref = remap[s.varData[v].reason.ref]
		}
	}
	for i := range s.overGlue {
		s.overGlue[i].ref = remap[s.overGlue[i].ref]
	}
	s.Stats.NbCompactions++
}
