package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeXor(t *testing.T) {
	require.Equal(t, []Var{0, 1, 2}, normalizeXor([]Var{2, 0, 1}))
	require.Equal(t, []Var{1}, normalizeXor([]Var{0, 1, 0}))
	require.Empty(t, normalizeXor([]Var{3, 3}))
	require.Equal(t, []Var{0, 3}, normalizeXor([]Var{3, 0, 2, 2}))
}

func TestXorPropagation(t *testing.T) {
	// x1 xor x2 xor x3 = 1 with x1 and x2 forced true: x3 must be true.
	pb := ParseXorSlice([][]int{{1}, {2}}, [][]int{{1, 2, 3}})
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	m := s.Model()
	require.True(t, m[0])
	require.True(t, m[1])
	require.True(t, m[2])
}

func TestXorConflictDuringSearch(t *testing.T) {
	// Two xors disagreeing on the same pair.
	pb := ParseXorSlice(nil, [][]int{{1, 2}, {-1, 2}})
	s := New(pb, DefaultConf())
	require.Equal(t, Unsat, s.Solve())
}

func TestXorParityModels(t *testing.T) {
	// x1 xor x2 = 0 and x2 xor x3 = 0: all-equal models only.
	pb := ParseXorSlice(nil, [][]int{{-1, 2}, {-2, 3}})
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	m := s.Model()
	require.Equal(t, m[0], m[1])
	require.Equal(t, m[1], m[2])
}

func TestXorLongChain(t *testing.T) {
	// A parity chain over 10 variables, globally inconsistent.
	var xors [][]int
	for i := 1; i < 10; i++ {
		xors = append(xors, []int{-i, i + 1}) // x_i = x_{i+1}
	}
	xors = append(xors, []int{1, 10}) // x_1 xor x_10 = 1: contradiction.
	pb := ParseXorSlice(nil, xors)
	s := New(pb, DefaultConf())
	require.Equal(t, Unsat, s.Solve())
}

func TestXorWithCNFInteraction(t *testing.T) {
	// The xor forces an odd number of true vars among x1..x3, the
	// clauses forbid x1 and x2: x3 must be true.
	pb := ParseXorSlice([][]int{{-1}, {-2}}, [][]int{{1, 2, 3}})
	s := New(pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	m := s.Model()
	require.False(t, m[0])
	require.False(t, m[1])
	require.True(t, m[2])
}

func TestXorClauseCNF(t *testing.T) {
	x := XorClause{vars: []Var{0, 2}, rhs: true}
	require.Equal(t, "x 1 3 0", x.CNF())
	x = XorClause{vars: []Var{0, 2}, rhs: false}
	require.Equal(t, "x -1 3 0", x.CNF())
}
