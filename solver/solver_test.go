package solver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A test associates a DIMACS input with an expected status.
type test struct {
	name     string
	cnf      string
	expected Status
}

var tests = []test{
	{"single unit", "p cnf 1 1\n1 0\n", Sat},
	{"immediate contradiction", "p cnf 1 2\n1 0\n-1 0\n", Unsat},
	{"empty clause", "p cnf 2 2\n1 2 0\n0\n", Unsat},
	{"simple sat", "p cnf 3 2\n1 2 0\n-1 3 0\n", Sat},
	{"chain implications", "p cnf 4 4\n1 0\n-1 2 0\n-2 3 0\n-3 4 0\n", Sat},
	{"pigeonhole 3 into 2", php(3, 2), Unsat},
	{"pigeonhole 4 into 3", php(4, 3), Unsat},
	{"xor chain unsat", "p cnf 3 0\nx 1 2 0\nx 2 3 0\nx 1 3 0\n", Unsat},
	{"xor chain sat", "p cnf 3 0\nx 1 2 0\nx 2 3 0\nx -1 3 0\n", Sat},
	{"xor and cnf mixed", "p cnf 3 2\n1 2 0\n-2 3 0\nx 1 2 3 0\n", Sat},
	{"xor forces contradiction", "p cnf 2 2\n1 0\n2 0\nx 1 2 0\n", Unsat},
	{"long clauses", "p cnf 6 7\n1 2 3 0\n4 5 6 0\n-1 -4 0\n-2 -5 0\n-3 -6 0\n-1 -3 0\n-4 -6 0\n", Sat},
}

func parseString(t *testing.T, cnf string) *Problem {
	t.Helper()
	pb, err := ParseCNF(strings.NewReader(cnf))
	require.NoError(t, err)
	return pb
}

// verifyModel checks that the model reported by s satisfies every clause
// and every XOR constraint of pb.
func verifyModel(t *testing.T, pb *Problem, s *Solver) {
	t.Helper()
	model := s.Model()
	holds := func(l Lit) bool {
		return model[l.Var()] == l.IsPositive()
	}
	for _, unit := range pb.Units {
		assert.True(t, holds(unit), "unit %d falsified", unit.Int())
	}
	for _, lits := range pb.Clauses {
		sat := false
		for _, l := range lits {
			if holds(l) {
				sat = true
				break
			}
		}
		assert.True(t, sat, "clause %v falsified", lits)
	}
	for _, x := range pb.Xors {
		sum := false
		for _, v := range x.vars {
			if model[v] {
				sum = !sum
			}
		}
		assert.Equal(t, x.rhs, sum, "xor %v violated", x.vars)
	}
}

func TestSolver(t *testing.T) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := parseString(t, tt.cnf)
			s := New(pb, DefaultConf())
			require.Equal(t, tt.expected, s.Solve())
			if tt.expected == Sat {
				verifyModel(t, pb, s)
			}
		})
	}
}

// php returns the DIMACS encoding of putting p pigeons into h holes, one
// clause per pigeon and one per hole and pair of pigeons.
func php(p, h int) string {
	v := func(pigeon, hole int) int { return pigeon*h + hole + 1 }
	var sb strings.Builder
	nbClauses := p + h*p*(p-1)/2
	fmt.Fprintf(&sb, "p cnf %d %d\n", p*h, nbClauses)
	for i := 0; i < p; i++ {
		for j := 0; j < h; j++ {
			fmt.Fprintf(&sb, "%d ", v(i, j))
		}
		sb.WriteString("0\n")
	}
	for j := 0; j < h; j++ {
		for i1 := 0; i1 < p; i1++ {
			for i2 := i1 + 1; i2 < p; i2++ {
				fmt.Fprintf(&sb, "-%d -%d 0\n", v(i1, j), v(i2, j))
			}
		}
	}
	return sb.String()
}

func TestParseSlice(t *testing.T) {
	cnf := [][]int{{1, 2, 3}, {-1}, {-2}, {-3}}
	pb := ParseSlice(cnf)
	s := New(pb, DefaultConf())
	require.Equal(t, Unsat, s.Solve())
}

func TestParseSliceSat(t *testing.T) {
	cnf := [][]int{{1}, {-2, 3}, {-2, 4}, {-5, 3}, {-5, 6}, {-7, 3}, {-7, 8}, {-9, 10}, {-9, 4}, {-1, 10}, {-1, 6}, {3, 10}, {-3, -10}, {4, 6, 8}}
	pb := ParseSlice(cnf)
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	verifyModel(t, pb, s)
}

func TestDeterminismWithFixedSeed(t *testing.T) {
	cnf := php(4, 3)
	conf := DefaultConf()
	conf.OrigSeed = 42
	conf.RandomVarFreq = 0.1

	pb1 := parseString(t, cnf)
	s1 := New(pb1, conf)
	st1 := s1.Solve()

	pb2 := parseString(t, cnf)
	s2 := New(pb2, conf)
	st2 := s2.Solve()

	require.Equal(t, st1, st2)
	require.Equal(t, s1.Stats.NbConflicts, s2.Stats.NbConflicts)
	require.Equal(t, s1.Stats.NbDecisions, s2.Stats.NbDecisions)
}

func TestRestartBudget(t *testing.T) {
	conf := DefaultConf()
	conf.MaxRestarts = 1
	conf.FixRestartType = StaticRestart
	pb := parseString(t, php(7, 6))
	s := New(pb, conf)
	require.Equal(t, Indet, s.Solve(), "one restart cannot refute php(7,6)")
	// The solver must be left in a coherent, dumpable level-0 state.
	var sb strings.Builder
	require.NoError(t, s.DumpLearnts(&sb, 1<<30))
	require.NotEmpty(t, sb.String())
}

func TestConflictBudget(t *testing.T) {
	conf := DefaultConf()
	conf.MaxConflicts = 10
	conf.FixRestartType = DynamicRestart
	pb := parseString(t, php(7, 6))
	s := New(pb, conf)
	require.Equal(t, Indet, s.Solve())
}

func TestInterrupt(t *testing.T) {
	pb := parseString(t, php(7, 6))
	s := New(pb, DefaultConf())
	s.Interrupt()
	require.Equal(t, Indet, s.Solve())
}

func TestEnumerateModels(t *testing.T) {
	pb := parseString(t, "p cnf 2 0\n")
	s := New(pb, DefaultConf())
	var models [][]bool
	ret := s.Solve()
	for ret == Sat {
		model := s.Model()
		for _, prev := range models {
			require.NotEqual(t, prev, model, "model enumerated twice")
		}
		models = append(models, model)
		blocking := s.BlockingClause()
		if len(blocking) == 0 || !s.AddClause(blocking) {
			break
		}
		ret = s.Solve()
	}
	require.Len(t, models, 4)
	require.Equal(t, Unsat, s.Solve(), "no fifth model may exist")
}

func TestBlockingClauseExcludesModel(t *testing.T) {
	pb := parseString(t, "p cnf 3 2\n1 2 0\n2 3 0\n")
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	first := s.Model()
	blocking := s.BlockingClause()
	require.NotEmpty(t, blocking)
	require.True(t, s.AddClause(blocking))
	if s.Solve() == Sat {
		require.NotEqual(t, first, s.Model())
	}
}

func TestSolveTwiceIsStable(t *testing.T) {
	pb := parseString(t, "p cnf 3 2\n1 2 0\n-1 3 0\n")
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	verifyModel(t, pb, s)
}

func TestPolarityModes(t *testing.T) {
	for _, mode := range []PolarityMode{PolarityTrue, PolarityFalse, PolarityRnd, PolarityAuto} {
		conf := DefaultConf()
		conf.PolarityMode = mode
		pb := parseString(t, "p cnf 4 3\n1 2 0\n-2 3 0\n-3 -4 0\n")
		s := New(pb, conf)
		require.Equal(t, Sat, s.Solve(), "mode %v", mode)
		verifyModel(t, pb, s)
	}
}

func TestRestrictedBranching(t *testing.T) {
	conf := DefaultConf()
	conf.RestrictPickBranch = 2
	pb := parseString(t, php(3, 2))
	s := New(pb, conf)
	require.Equal(t, Unsat, s.Solve())
}

func TestRestartModes(t *testing.T) {
	for _, kind := range []RestartType{AutoRestart, StaticRestart, DynamicRestart} {
		conf := DefaultConf()
		conf.FixRestartType = kind
		pb := parseString(t, php(4, 3))
		s := New(pb, conf)
		require.Equal(t, Unsat, s.Solve(), "restart mode %v", kind)
	}
}

func TestRecursiveMinimization(t *testing.T) {
	conf := DefaultConf()
	conf.DoMinimLMoreRecur = true
	pb := parseString(t, php(4, 3))
	s := New(pb, conf)
	require.Equal(t, Unsat, s.Solve())
}

func TestGreedyUnbound(t *testing.T) {
	conf := DefaultConf()
	conf.GreedyUnbound = true
	pb := parseString(t, "p cnf 3 1\n1 0\n")
	s := New(pb, conf)
	require.Equal(t, Sat, s.Solve())
	_, bound := s.ModelValue(IntToVar(1))
	require.True(t, bound, "variable 1 is needed by the unit clause")
}

func BenchmarkSolvePigeons(b *testing.B) {
	cnf := php(6, 5)
	for i := 0; i < b.N; i++ {
		pb, err := ParseCNF(strings.NewReader(cnf))
		if err != nil {
			b.Fatal(err)
		}
		s := New(pb, DefaultConf())
		if s.Solve() != Unsat {
			b.Fatal("expected unsat")
		}
	}
}

func TestAddClauseAfterSolve(t *testing.T) {
	pb := parseString(t, "p cnf 2 1\n1 2 0\n")
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	require.True(t, s.AddClause([]Lit{IntToLit(-1)}))
	require.True(t, s.AddClause([]Lit{IntToLit(-2)}))
	require.Equal(t, Unsat, s.Solve())
}
