package solver

// On-the-fly Gaussian elimination over the XOR clauses. Each matrix covers
// a connected component of variables; while the decision level stays at or
// below the configured depth, the engine substitutes the current assignment into
// the matrix, row-reduces it and extracts unit implications and conflicts
// the clause-level propagator cannot see.
//
// Each working row additionally carries an origin bitset over the original
// rows: working = XOR of the original XOR constraints whose bits are set.
// This is what lets a zero row or a unit row be blamed on concrete
// literals: the combined constraint's variables are all assigned, and
// their current values form the reason.

type gaussSnapshot struct {
	level  int
	rows   []bitRow
	origin []bitRow
	subst  []bool
}

type gaussMatrix struct {
	cols  []Var       // Column index to variable.
	colOf map[Var]int // Variable to column index.
	orig  []bitRow    // The original XOR rows, never mutated.

	rows   []bitRow // Working coefficient rows.
	origin []bitRow // origin[i] tells which orig rows were XORed into rows[i].
	subst  []bool   // Per column: substituted into the working rows.
	dirty  bool     // Working state must be rebuilt from the last snapshot.

	saves []gaussSnapshot

	disabled bool
	called   int64
	useful   int64
}

type gaussEngine struct {
	s        *Solver
	conf     GaussConf
	matrices []*gaussMatrix
}

func newGaussEngine(s *Solver, conf GaussConf) *gaussEngine {
	g := &gaussEngine{s: s, conf: conf}
	for _, group := range findMatrixComponents(s.xorClauses, conf) {
		g.matrices = append(g.matrices, newGaussMatrix(s.xorClauses, group, conf))
	}
	return g
}

func newGaussMatrix(xors []XorClause, rowIdxs []int, conf GaussConf) *gaussMatrix {
	m := &gaussMatrix{colOf: make(map[Var]int)}
	occ := make(map[Var]int)
	for _, ri := range rowIdxs {
		for _, v := range xors[ri].vars {
			occ[v]++
			if _, ok := m.colOf[v]; !ok {
				m.colOf[v] = len(m.cols)
				m.cols = append(m.cols, v)
			}
		}
	}
	if conf.OrderCols {
		// Most shared variables first: pivots then cancel more rows early.
		sortVarsByOcc(m.cols, occ)
		for i, v := range m.cols {
			m.colOf[v] = i
		}
	}
	for _, ri := range rowIdxs {
		r := newBitRow(len(m.cols))
		for _, v := range xors[ri].vars {
			r.set(m.colOf[v])
		}
		r.rhs = xors[ri].rhs
		m.orig = append(m.orig, r)
	}
	m.dirty = true
	return m
}

// reset rebuilds the working state from the original rows.
func (m *gaussMatrix) reset() {
	m.rows = cloneRows(m.orig)
	m.origin = make([]bitRow, len(m.orig))
	for i := range m.origin {
		m.origin[i] = newBitRow(len(m.orig))
		m.origin[i].set(i)
	}
	m.subst = make([]bool, len(m.cols))
}

// restore rebuilds the working state from the deepest surviving snapshot,
// or from scratch when none is left.
func (m *gaussMatrix) restore() {
	if n := len(m.saves); n > 0 {
		save := &m.saves[n-1]
		m.rows = cloneRows(save.rows)
		m.origin = cloneRows(save.origin)
		m.subst = append(m.subst[:0], save.subst...)
	} else {
		m.reset()
	}
	m.dirty = false
}

// rollback drops the snapshots taken above the given level and marks the
// working state stale.
func (g *gaussEngine) rollback(level int) {
	for _, m := range g.matrices {
		for len(m.saves) > 0 && m.saves[len(m.saves)-1].level > level {
			m.saves = m.saves[:len(m.saves)-1]
		}
		m.dirty = true
	}
}

// reenable lifts the per-matrix disabling, typically at a full restart.
func (g *gaussEngine) reenable() {
	if g.conf.DontDisable {
		return
	}
	for _, m := range g.matrices {
		m.disabled = false
		m.called = 0
		m.useful = 0
	}
}

// check runs every enabled matrix against the current assignment. It
// returns a conflict, or reports whether at least one literal was
// propagated. Must be called with the propagation queue empty.
func (g *gaussEngine) check() (confl *conflictRef, propagated bool) {
	level := g.s.decisionLevel()
	for _, m := range g.matrices {
		if m.disabled {
			continue
		}
		m.called++
		g.s.Stats.NbGaussCalled++
		if !g.conf.IterativeReduce {
			m.reset()
		} else if m.dirty {
			m.restore()
		}
		g.substitute(m)
		m.eliminate()
		confl, prop := g.scan(m)
		if confl != nil {
			m.useful++
			g.s.Stats.NbGaussConfls++
			m.dirty = true
			return confl, false
		}
		if prop {
			m.useful++
			g.s.Stats.NbGaussProps++
			propagated = true
		}
		if level%g.conf.SaveEveryNth == 0 {
			m.save(level)
		}
		if !g.conf.DontDisable && m.called > 100 && m.useful == 0 {
			m.disabled = true
		}
	}
	return nil, propagated
}

// substitute folds every newly assigned variable into the working rows.
func (g *gaussEngine) substitute(m *gaussMatrix) {
	for j, v := range m.cols {
		if m.subst[j] || g.s.varValue(v) == lUndef {
			continue
		}
		val := g.s.varValue(v) == lTrue
		for i := range m.rows {
			if m.rows[i].get(j) {
				m.rows[i].clear(j)
				if val {
					m.rows[i].rhs = !m.rows[i].rhs
				}
			}
		}
		m.subst[j] = true
	}
}

// eliminate brings the working rows to reduced row echelon form.
func (m *gaussMatrix) eliminate() {
	r := 0
	for j := 0; j < len(m.cols) && r < len(m.rows); j++ {
		if m.subst[j] {
			continue
		}
		pivot := -1
		for i := r; i < len(m.rows); i++ {
			if m.rows[i].get(j) {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			continue
		}
		m.rows[r], m.rows[pivot] = m.rows[pivot], m.rows[r]
		m.origin[r], m.origin[pivot] = m.origin[pivot], m.origin[r]
		for i := range m.rows {
			if i != r && m.rows[i].get(j) {
				m.rows[i].xorWith(&m.rows[r])
				m.origin[i].xorWith(&m.origin[r])
			}
		}
		r++
	}
}

// scan looks for zero rows with an odd right-hand side (conflicts) and
// rows with a single coefficient (unit implications).
func (g *gaussEngine) scan(m *gaussMatrix) (confl *conflictRef, propagated bool) {
	for i := range m.rows {
		row := &m.rows[i]
		if row.isZero() {
			if row.rhs {
				return &conflictRef{kind: reasonXor, xorLits: g.blame(m, i, VarUndef)}, propagated
			}
			continue
		}
		if row.popCount() != 1 {
			continue
		}
		j := row.firstSet()
		v := m.cols[j]
		val := row.rhs
		switch g.s.varValue(v) {
		case lUndef:
			p := v.SignedLit(!val)
			lits := append([]Lit{p}, g.blame(m, i, v)...)
			g.s.xorReasons[v] = lits
			g.s.enqueue(p, propBy{kind: reasonXor, ref: CRefUndef})
			propagated = true
			g.s.Stats.NbGaussUnitTruths++
		case lTrue:
			if !val {
				return &conflictRef{kind: reasonXor, xorLits: g.blameWith(m, i, v)}, propagated
			}
		case lFalse:
			if val {
				return &conflictRef{kind: reasonXor, xorLits: g.blameWith(m, i, v)}, propagated
			}
		}
	}
	return nil, propagated
}

// blame reconstructs the combined original constraint behind working row i
// and returns one falsified literal per assigned variable of it, skipping
// the given target variable.
func (g *gaussEngine) blame(m *gaussMatrix, i int, skip Var) []Lit {
	comb := newBitRow(len(m.cols))
	for b := 0; b < len(m.orig); b++ {
		if m.origin[i].get(b) {
			comb.xorWith(&m.orig[b])
		}
	}
	var lits []Lit
	for j, v := range m.cols {
		if v == skip || !comb.get(j) {
			continue
		}
		lits = append(lits, v.SignedLit(g.s.varValue(v) == lTrue))
	}
	return lits
}

// blameWith is blame plus the falsified literal of the target variable
// itself, for the case where a unit row contradicts an assigned variable.
func (g *gaussEngine) blameWith(m *gaussMatrix, i int, v Var) []Lit {
	return append(g.blame(m, i, v), v.SignedLit(g.s.varValue(v) == lTrue))
}

// save snapshots the working state at the given level, unless a snapshot
// for it already exists.
func (m *gaussMatrix) save(level int) {
	if n := len(m.saves); n > 0 && m.saves[n-1].level >= level {
		return
	}
	m.saves = append(m.saves, gaussSnapshot{
		level:  level,
		rows:   cloneRows(m.rows),
		origin: cloneRows(m.origin),
		subst:  append([]bool(nil), m.subst...),
	})
}
