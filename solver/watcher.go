package solver

import "sort"

// Watched-literal propagation. Every literal has a list of watch entries
// for the clauses in which its negation is watched. Binary and ternary
// clauses are inlined in the entries themselves; long clauses are watched
// through their arena handle plus a blocker literal that lets most visits
// skip the clause load entirely.

type watchKind byte

const (
	watchBinary = watchKind(iota)
	watchTernary
	watchLong
)

type watcher struct {
	kind   watchKind
	ref    CRef
	l0, l1 Lit // binary: l0 is the other lit. ternary: the two others. long: l0 is the blocker.
}

// attachBinary watches the clause (a | b) from both sides.
func (s *Solver) attachBinary(a, b Lit) {
	s.watches[a.Negation()] = append(s.watches[a.Negation()], watcher{kind: watchBinary, ref: CRefUndef, l0: b})
	s.watches[b.Negation()] = append(s.watches[b.Negation()], watcher{kind: watchBinary, ref: CRefUndef, l0: a})
}

// attachTernary watches the clause (a | b | c) from all three sides.
func (s *Solver) attachTernary(a, b, c Lit) {
	s.watches[a.Negation()] = append(s.watches[a.Negation()], watcher{kind: watchTernary, ref: CRefUndef, l0: b, l1: c})
	s.watches[b.Negation()] = append(s.watches[b.Negation()], watcher{kind: watchTernary, ref: CRefUndef, l0: a, l1: c})
	s.watches[c.Negation()] = append(s.watches[c.Negation()], watcher{kind: watchTernary, ref: CRefUndef, l0: a, l1: b})
}

// attachClause watches an arena clause on its first two literals.
func (s *Solver) attachClause(ref CRef) {
	c := s.ca.clause(ref)
	first, second := c.Get(0), c.Get(1)
	s.watches[first.Negation()] = append(s.watches[first.Negation()], watcher{kind: watchLong, ref: ref, l0: second})
	s.watches[second.Negation()] = append(s.watches[second.Negation()], watcher{kind: watchLong, ref: ref, l0: first})
}

// detachClause removes the watch entries of an arena clause.
func (s *Solver) detachClause(ref CRef) {
	c := s.ca.clause(ref)
	for i := 0; i < 2; i++ {
		neg := c.Get(i).Negation()
		ws := s.watches[neg]
		for j := range ws {
			if ws[j].kind == watchLong && ws[j].ref == ref {
				ws[j] = ws[len(ws)-1]
				s.watches[neg] = ws[:len(ws)-1]
				break
			}
		}
	}
}

// sortWatches orders every watch list so that binary entries come first,
// then ternaries, then long clauses. Forced propagations are then found at
// minimum cost.
func (s *Solver) sortWatches() {
	for i := range s.watches {
		ws := s.watches[i]
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].kind < ws[b].kind })
	}
}

// propagate drains the propagation queue and returns the first conflict
// found, or nil. The queue is strict FIFO: learnt clause content depends on
// this order, so it is part of the correctness contract.
func (s *Solver) propagate() *conflictRef {
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++
		s.Stats.NbPropagations++
		if confl := s.propagateLit(p); confl != nil {
			return confl
		}
		if confl := s.propagateXors(p.Var()); confl != nil {
			return confl
		}
	}
	return nil
}

// propagateLit visits the watch list of the newly satisfied literal p,
// i.e. all clauses in which ~p is watched.
func (s *Solver) propagateLit(p Lit) *conflictRef {
	falseLit := p.Negation()
	ws := s.watches[p]
	kept := 0
	for i := 0; i < len(ws); i++ {
		w := ws[i]
		switch w.kind {
		case watchBinary:
			switch s.value(w.l0) {
			case lTrue:
			case lFalse:
				copy(ws[kept:], ws[i:])
				s.watches[p] = ws[:kept+len(ws)-i]
				return &conflictRef{kind: reasonBinary, ref: CRefUndef, lits: [3]Lit{w.l0, falseLit}, n: 2}
			default:
				s.enqueue(w.l0, propBy{kind: reasonBinary, ref: CRefUndef, l0: falseLit})
			}
			ws[kept] = w
			kept++
		case watchTernary:
			v0, v1 := s.value(w.l0), s.value(w.l1)
			switch {
			case v0 == lTrue || v1 == lTrue:
			case v0 == lFalse && v1 == lFalse:
				copy(ws[kept:], ws[i:])
				s.watches[p] = ws[:kept+len(ws)-i]
				return &conflictRef{kind: reasonTernary, ref: CRefUndef, lits: [3]Lit{w.l0, w.l1, falseLit}, n: 3}
			case v0 == lUndef && v1 == lFalse:
				s.enqueue(w.l0, propBy{kind: reasonTernary, ref: CRefUndef, l0: falseLit, l1: w.l1})
			case v1 == lUndef && v0 == lFalse:
				s.enqueue(w.l1, propBy{kind: reasonTernary, ref: CRefUndef, l0: falseLit, l1: w.l0})
			}
			ws[kept] = w
			kept++
		case watchLong:
			if s.value(w.l0) == lTrue { // Blocker short-circuit.
				ws[kept] = w
				kept++
				continue
			}
			c := s.ca.clause(w.ref)
			if c.Get(0) == falseLit {
				c.swap(0, 1)
			}
			first := c.Get(0)
			if first != w.l0 && s.value(first) == lTrue {
				ws[kept] = watcher{kind: watchLong, ref: w.ref, l0: first}
				kept++
				continue
			}
			moved := false
			for k := 2; k < c.Len(); k++ {
				if s.value(c.Get(k)) != lFalse {
					c.swap(1, k)
					neg := c.Get(1).Negation()
					s.watches[neg] = append(s.watches[neg], watcher{kind: watchLong, ref: w.ref, l0: first})
					moved = true
					break
				}
			}
			if moved {
				continue // Entry leaves this list.
			}
			ws[kept] = watcher{kind: watchLong, ref: w.ref, l0: first}
			kept++
			if s.value(first) == lFalse {
				copy(ws[kept:], ws[i+1:])
				s.watches[p] = ws[:kept+len(ws)-i-1]
				return &conflictRef{kind: reasonClause, ref: w.ref}
			}
			s.enqueue(first, propBy{kind: reasonClause, ref: w.ref})
		}
	}
	s.watches[p] = ws[:kept]
	return nil
}
