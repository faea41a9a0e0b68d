package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// gaussConf enables the matrix engine for tiny test instances.
func gaussConf() Conf {
	conf := DefaultConf()
	conf.Gauss.DecisionUntil = 100
	conf.Gauss.MinMatrixRows = 1
	return conf
}

func TestBitRow(t *testing.T) {
	r := newBitRow(70)
	require.True(t, r.isZero())
	r.set(3)
	r.set(69)
	require.True(t, r.get(3))
	require.True(t, r.get(69))
	require.False(t, r.get(4))
	require.Equal(t, 2, r.popCount())
	require.Equal(t, 3, r.firstSet())
	r.clear(3)
	require.Equal(t, 69, r.firstSet())

	o := newBitRow(70)
	o.set(69)
	o.rhs = true
	r.xorWith(&o)
	require.True(t, r.isZero())
	require.True(t, r.rhs)
}

func TestFindMatrixComponents(t *testing.T) {
	xors := []XorClause{
		{vars: []Var{0, 1}, rhs: true},
		{vars: []Var{1, 2}, rhs: false},
		{vars: []Var{5, 6}, rhs: true},
	}
	conf := GaussConf{MinMatrixRows: 1, MaxMatrixRows: 100, MaxNumMatrixes: 10}
	groups := findMatrixComponents(xors, conf)
	require.Len(t, groups, 2)
	// Largest component first.
	require.Len(t, groups[0], 2)
	require.Len(t, groups[1], 1)

	conf.NoMatrixFind = true
	groups = findMatrixComponents(xors, conf)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 3)
}

func TestFindMatrixComponentsBounds(t *testing.T) {
	xors := []XorClause{
		{vars: []Var{0, 1}, rhs: true},
		{vars: []Var{2, 3}, rhs: true},
	}
	conf := GaussConf{MinMatrixRows: 2, MaxMatrixRows: 100, MaxNumMatrixes: 10}
	require.Empty(t, findMatrixComponents(xors, conf))
}

func TestGaussUnsatChain(t *testing.T) {
	pb := ParseXorSlice(nil, [][]int{{1, 2}, {2, 3}, {1, 3}})
	s := New(pb, gaussConf())
	require.Equal(t, Unsat, s.Solve())
}

func TestGaussSatChain(t *testing.T) {
	pb := ParseXorSlice(nil, [][]int{{1, 2}, {2, 3}, {-1, 3}})
	s := New(pb, gaussConf())
	require.Equal(t, Sat, s.Solve())
	verifyModel(t, pb, s)
}

func TestGaussWithClauses(t *testing.T) {
	// Parity constraints plus clauses: x1 and x4 are forced true, while
	// x2 = x3 is left free.
	cnf := [][]int{{1}, {3, 4}}
	xors := [][]int{{1, 2, 3}, {2, 3, 4}}
	pb := ParseXorSlice(cnf, xors)
	s := New(pb, gaussConf())
	require.Equal(t, Sat, s.Solve())
	verifyModel(t, pb, s)
}

func TestGaussLargerSystem(t *testing.T) {
	// An inconsistent dense system: summing the first three equations
	// gives x4 = 1, the unit says x4 = 0.
	xors := [][]int{
		{1, 2, 4},
		{2, 3, 4},
		{1, 3, 4},
		{-4},
	}
	pb := ParseXorSlice(nil, xors)
	s := New(pb, gaussConf())
	require.Equal(t, Unsat, s.Solve())
}

func TestGaussMatchesPlainXorSolving(t *testing.T) {
	insts := []struct {
		cnf  [][]int
		xors [][]int
	}{
		{nil, [][]int{{1, 2, 3}, {-2, 3}, {1, 3}}},
		{[][]int{{1, 2}}, [][]int{{1, 2, 3}, {2, 3}}},
		{nil, [][]int{{1, 2}, {2, 3}, {3, 4}, {4, 1}}},
		{[][]int{{-3}}, [][]int{{1, 2, 3}, {1, -2}}},
	}
	for i, inst := range insts {
		plain := New(ParseXorSlice(inst.cnf, inst.xors), DefaultConf())
		gauss := New(ParseXorSlice(inst.cnf, inst.xors), gaussConf())
		require.Equal(t, plain.Solve(), gauss.Solve(), "instance %d", i)
	}
}

func TestGaussSnapshotRollback(t *testing.T) {
	// Enough variables to force several decisions and backtracks with a
	// snapshot interval of 1.
	conf := gaussConf()
	conf.Gauss.SaveEveryNth = 1
	xors := [][]int{
		{1, 2, 3},
		{3, 4, 5},
		{5, 6, 1},
		{2, 4, 6},
	}
	pb := ParseXorSlice(nil, xors)
	s := New(pb, conf)
	st := s.Solve()
	require.Equal(t, New(ParseXorSlice(nil, xors), DefaultConf()).Solve(), st)
	if st == Sat {
		verifyModel(t, pb, s)
	}
}

func TestGaussDisabledBelowDepth(t *testing.T) {
	conf := gaussConf()
	conf.Gauss.DecisionUntil = 0
	pb := ParseXorSlice(nil, [][]int{{1, 2}, {2, 3}, {1, 3}})
	s := New(pb, conf)
	require.Equal(t, Unsat, s.Solve())
	require.Zero(t, s.Stats.NbGaussCalled)
}
