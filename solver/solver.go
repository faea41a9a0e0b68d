package solver

import (
	"math/rand"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	defaultVarDecay = 0.8 // Initial variable activity decay; ramps up to 0.95 during search.
)

type overGlueRec struct {
	ref   CRef
	level int
}

// A Solver holds the whole state of one search: clause stores, watch
// lists, trail, heuristics, XOR engine and statistics. It is
// single-threaded; a portfolio runs several independent Solvers.
type Solver struct {
	Stats Stats

	conf   Conf
	log    logrus.FieldLogger
	nbVars int
	status Status

	ca         *arena
	watches    [][]watcher
	clauses    []CRef   // Long original clauses.
	binOrig    [][2]Lit // Binary original clauses, inlined in the watch lists.
	triOrig    [][3]Lit // Ternary original clauses, inlined in the watch lists.
	learnts    []CRef
	binLearnts [][2]Lit

	xorClauses []XorClause
	xorWatches [][]int
	xorReasons [][]Lit
	gauss      *gaussEngine

	assigns     []lbool
	varData     []varData
	trail       []Lit
	trailLim    []int
	qhead       int
	decisionVar []bool
	elimed      []bool

	polarity  []bool
	polarity0 []bool // Polarities as seeded at construction; restored on full restart.
	activity  []float64
	varQueue  queue
	varInc    float64
	varDecay  float64
	claInc    float32

	restart      *restartPolicy
	overGlue     []overGlueRec
	idxReduce    int
	nbMaxLearnts int

	nextSimplify int64
	simpInterval int64

	rand        *rand.Rand
	interrupted atomic.Bool

	model  []lbool
	recons []reconsEntry

	// Scratch buffers for conflict analysis.
	seen         []bool
	toClear      []Lit
	analyzeStack []Lit
	learntBuf    []Lit
	reasonBuf    []Lit
	minBuf       []Lit
	restrictBuf  []Var
	permDiff     []int
	glueStamp    int
}

// New makes a solver for the given problem. The configuration must have
// been validated beforehand.
func New(pb *Problem, conf Conf) *Solver {
	nbVars := pb.NbVars
	s := &Solver{
		conf:         conf,
		log:          logrus.StandardLogger(),
		nbVars:       nbVars,
		status:       pb.Status,
		ca:           newArena(len(pb.Clauses) * 8),
		watches:      make([][]watcher, nbVars*2),
		xorWatches:   make([][]int, nbVars),
		xorReasons:   make([][]Lit, nbVars),
		assigns:      make([]lbool, nbVars),
		varData:      make([]varData, nbVars),
		trail:        make([]Lit, 0, nbVars),
		decisionVar:  make([]bool, nbVars),
		elimed:       make([]bool, nbVars),
		polarity:     make([]bool, nbVars),
		activity:     make([]float64, nbVars),
		varInc:       1.0,
		varDecay:     defaultVarDecay,
		claInc:       1.0,
		idxReduce:    1,
		nbMaxLearnts: initNbMaxLearnts,
		nextSimplify: conf.SimpStartMult,
		simpInterval: conf.SimpStartMult,
		rand:         rand.New(rand.NewSource(conf.OrigSeed)),
		seen:         make([]bool, nbVars),
		permDiff:     make([]int, nbVars*2+2),
	}
	s.restart = newRestartPolicy(conf.FixRestartType)
	for i := range s.varData {
		s.varData[i] = varData{reason: noReason, level: -1}
	}
	for i := range s.decisionVar {
		s.decisionVar[i] = true
	}
	if s.status == Unsat {
		return s
	}
	s.initPolarities(pb)
	s.polarity0 = append([]bool(nil), s.polarity...)
	for _, lits := range pb.Clauses {
		s.addClauseLits(lits, false)
	}
	for _, x := range pb.Xors {
		s.xorClauses = append(s.xorClauses, XorClause{vars: append([]Var(nil), x.vars...), rhs: x.rhs})
		s.watchXor(len(s.xorClauses) - 1)
	}
	for _, unit := range pb.Units {
		switch s.value(unit) {
		case lFalse:
			s.status = Unsat
			return s
		case lUndef:
			s.enqueue(unit, noReason)
		}
	}
	if conf.DoSortWatched {
		s.sortWatches()
	}
	if conf.Gauss.DecisionUntil > 0 && len(s.xorClauses) > 0 {
		s.gauss = newGaussEngine(s, conf.Gauss)
	}
	s.varQueue = newQueue(s.activity)
	return s
}

// SetLogger redirects the solver's diagnostic output.
func (s *Solver) SetLogger(log logrus.FieldLogger) {
	s.log = log
}

// addClauseLits stores a normalized clause in the representation fitting
// its size: inlined for binary and ternary clauses, arena otherwise.
func (s *Solver) addClauseLits(lits []Lit, learnt bool) {
	switch len(lits) {
	case 2:
		if learnt {
			s.binLearnts = append(s.binLearnts, [2]Lit{lits[0], lits[1]})
		} else {
			s.binOrig = append(s.binOrig, [2]Lit{lits[0], lits[1]})
		}
		s.attachBinary(lits[0], lits[1])
	case 3:
		if learnt {
			// Learnt ternaries stay in the arena so that database
			// reduction can see them.
			ref := s.ca.alloc(lits, true)
			s.learnts = append(s.learnts, ref)
			s.attachClause(ref)
		} else {
			s.triOrig = append(s.triOrig, [3]Lit{lits[0], lits[1], lits[2]})
			s.attachTernary(lits[0], lits[1], lits[2])
		}
	default:
		ref := s.ca.alloc(lits, learnt)
		if learnt {
			s.learnts = append(s.learnts, ref)
		} else {
			s.clauses = append(s.clauses, ref)
		}
		s.attachClause(ref)
	}
}

// NbVars returns the number of variables of the problem.
func (s *Solver) NbVars() int {
	return s.nbVars
}

// Interrupt asks the solver to stop as soon as it reaches a coherent
// state. Safe to call from another goroutine, typically a signal handler.
func (s *Solver) Interrupt() {
	s.interrupted.Store(true)
}

// Interrupted tells whether an interrupt was requested.
func (s *Solver) Interrupted() bool {
	return s.interrupted.Load()
}

// Status returns the current status of the solver.
func (s *Solver) Status() Status {
	return s.status
}

// Solve searches for a model of the problem. It returns Sat or Unsat, or
// Indet when the restart or conflict budget was exhausted or an interrupt
// was honored. After Indet the solver is at level 0 with a coherent clause
// database, from which learnt and original clauses can be dumped.
func (s *Solver) Solve() Status {
	if s.status == Unsat {
		return s.status
	}
	s.status = Indet
	localRestarts := int64(0)
	if confl := s.propagate(); confl != nil {
		s.status = Unsat
		return s.status
	}
	for s.status == Indet {
		if s.Interrupted() {
			s.cancelUntil(0)
			return Indet
		}
		if localRestarts >= int64(s.conf.MaxRestarts) || s.Stats.NbConflicts >= s.conf.MaxConflicts {
			s.cancelUntil(0)
			return Indet
		}
		s.status = s.search()
		if s.status != Indet {
			break
		}
		s.Stats.NbRestarts++
		localRestarts++
		switch s.restart.kind() {
		case DynamicRestart:
			s.Stats.NbDynRestarts++
		default:
			s.Stats.NbStaticRestarts++
		}
		s.restart.onRestart()
		s.rebuildOrderHeap()
		if s.conf.DoSchedSimp && s.Stats.NbConflicts >= s.nextSimplify {
			if s.simplify() == Unsat {
				s.status = Unsat
				break
			}
			s.simpInterval = int64(float64(s.simpInterval) * s.conf.SimpStartMMult)
			s.nextSimplify = s.Stats.NbConflicts + s.simpInterval
		}
		if s.conf.Verbosity >= 2 {
			s.log.WithFields(logrus.Fields{
				"restarts":  s.Stats.NbRestarts,
				"conflicts": s.Stats.NbConflicts,
				"learnts":   len(s.learnts),
				"deleted":   s.Stats.NbDeleted,
			}).Info("restarting")
		}
	}
	if s.status == Sat {
		s.saveModel()
	}
	return s.status
}

// search runs the CDCL loop until a restart fires or a result is proven.
func (s *Solver) search() Status {
	for {
		confl := s.propagate()
		if confl == nil && s.gaussActive() {
			gaussConfl, propagated := s.gauss.check()
			if gaussConfl != nil {
				confl = gaussConfl
			} else if propagated {
				continue
			}
		}
		if confl != nil {
			s.Stats.NbConflicts++
			ml := s.maxConflictLevel(confl)
			if ml == 0 {
				return Unsat
			}
			if ml < s.decisionLevel() {
				// Gauss conflicts can be entirely below the current
				// level; analysis must run at the level of the conflict.
				s.cancelUntil(ml)
			}
			learnt, btLevel, glue := s.analyze(confl)
			s.otfImprove(confl, learnt)
			s.cancelUntil(btLevel)
			if !s.installLearnt(learnt, glue) {
				return Unsat
			}
			s.restart.onConflict(glue)
			if s.Stats.NbConflicts%5000 == 0 && s.varDecay < 0.95 {
				s.varDecay += 0.01
			}
			if s.restart.shouldRestart() || s.Stats.NbConflicts >= s.conf.MaxConflicts {
				s.cancelUntil(0)
				return Indet
			}
			if s.shouldReduce() {
				s.reduceDB()
			}
			continue
		}
		if s.Interrupted() {
			s.cancelUntil(0)
			return Indet
		}
		lit := s.pickBranchLit()
		if lit == LitUndef {
			return Sat
		}
		s.newDecisionLevel()
		s.enqueue(lit, noReason)
	}
}

// maxConflictLevel returns the highest decision level among the literals
// of the conflict, 0 when the conflict only involves permanent facts.
func (s *Solver) maxConflictLevel(confl *conflictRef) int {
	ml := int32(0)
	for _, l := range s.conflictLits(*confl, s.reasonBuf[:0]) {
		if lvl := s.level(l.Var()); lvl > ml {
			ml = lvl
		}
	}
	return int(ml)
}

func (s *Solver) gaussActive() bool {
	return s.gauss != nil && s.decisionLevel() <= s.conf.Gauss.DecisionUntil
}

// installLearnt adds the learnt clause to the database and asserts its
// first literal. Returns false on a top-level contradiction.
func (s *Solver) installLearnt(learnt []Lit, glue int) bool {
	s.Stats.NbLearnts++
	switch len(learnt) {
	case 1:
		s.Stats.NbUnitLearnts++
		switch s.value(learnt[0]) {
		case lFalse:
			return false
		case lUndef:
			s.enqueue(learnt[0], noReason)
		}
	case 2:
		s.Stats.NbBinaryLearnts++
		s.binLearnts = append(s.binLearnts, [2]Lit{learnt[0], learnt[1]})
		s.attachBinary(learnt[0], learnt[1])
		s.enqueue(learnt[0], propBy{kind: reasonBinary, ref: CRefUndef, l0: learnt[1]})
	default:
		ref := s.ca.alloc(learnt, true)
		c := s.ca.clause(ref)
		c.setGlue(glue)
		c.setActivity(s.claInc)
		if glue <= 2 {
			c.setProtected(true)
			s.Stats.NbGlue2Learnts++
		}
		s.learnts = append(s.learnts, ref)
		s.attachClause(ref)
		if glue > s.conf.MaxGlue && s.restart.kind() == DynamicRestart {
			s.overGlue = append(s.overGlue, overGlueRec{ref: ref, level: s.decisionLevel()})
		}
		s.enqueue(learnt[0], propBy{kind: reasonClause, ref: ref})
	}
	return true
}

// saveModel snapshots the current total assignment and extends it over
// variables handled by the reconstruction stack.
func (s *Solver) saveModel() {
	s.model = append(s.model[:0], s.assigns...)
	s.extendModel()
	if s.conf.GreedyUnbound {
		s.greedyUnbind()
	}
}

// Model returns the last model found. Variables left unbound by greedy
// unbinding are reported as false; use ModelValue to tell them apart.
func (s *Solver) Model() []bool {
	res := make([]bool, s.nbVars)
	for i, val := range s.model {
		res[i] = val == lTrue
	}
	return res
}

// ModelValue returns the model's value for v: true, false, or unbound
// (don't-care after greedy unbinding).
func (s *Solver) ModelValue(v Var) (value, bound bool) {
	if int(v) >= len(s.model) || s.model[v] == lUndef {
		return false, false
	}
	return s.model[v] == lTrue, true
}

// BlockingClause returns the negation of the current model restricted to
// its decision variables, or nil if the model involved no decision.
// Adding it and re-solving enumerates the next model.
func (s *Solver) BlockingClause() []Lit {
	var lits []Lit
	for i := len(s.trailLim) - 1; i >= 0; i-- {
		dec := s.trail[s.trailLim[i]]
		lits = append(lits, dec.Negation())
	}
	return lits
}

// AddClause adds a clause after construction time, canceling the search
// back to level 0 first. It returns false when the solver became
// trivially unsatisfiable. Used for blocking clauses during model
// enumeration and by the library-debug mode.
func (s *Solver) AddClause(lits []Lit) bool {
	if s.status == Unsat {
		return false
	}
	s.cancelUntil(0)
	s.status = Indet
	// Normalize against the level-0 assignment.
	out := make([]Lit, 0, len(lits))
	for _, l := range lits {
		switch s.value(l) {
		case lTrue:
			return true // Clause already satisfied forever.
		case lUndef:
			out = append(out, l)
		}
	}
	switch len(out) {
	case 0:
		s.status = Unsat
		return false
	case 1:
		s.enqueue(out[0], noReason)
		if confl := s.propagate(); confl != nil {
			s.status = Unsat
			return false
		}
	default:
		s.addClauseLits(out, false)
	}
	s.rebuildOrderHeap()
	return true
}

// AddXorClause adds an XOR constraint after construction time. The
// matrices of the Gauss engine are rebuilt.
func (s *Solver) AddXorClause(vars []Var, rhs bool) bool {
	if s.status == Unsat {
		return false
	}
	s.cancelUntil(0)
	s.status = Indet
	vars = normalizeXor(append([]Var(nil), vars...))
	switch len(vars) {
	case 0:
		if rhs {
			s.status = Unsat
			return false
		}
	case 1:
		return s.AddClause([]Lit{vars[0].SignedLit(!rhs)})
	default:
		s.xorClauses = append(s.xorClauses, XorClause{vars: vars, rhs: rhs})
		s.watchXor(len(s.xorClauses) - 1)
		if s.gauss != nil {
			s.gauss = newGaussEngine(s, s.conf.Gauss)
		}
	}
	return true
}

// NbClauses returns the number of original clauses currently stored.
func (s *Solver) NbClauses() int {
	return len(s.clauses) + len(s.binOrig) + len(s.triOrig)
}

// NbXorClauses returns the number of XOR constraints currently stored.
func (s *Solver) NbXorClauses() int {
	return len(s.xorClauses)
}

// NbLearnts returns the number of learnt clauses currently stored.
func (s *Solver) NbLearnts() int {
	return len(s.learnts) + len(s.binLearnts)
}
