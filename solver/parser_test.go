package solver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	pb := parseString(t, "c a comment\np cnf 4 2\n1 -2 0\n3 4 0\n")
	require.Equal(t, 4, pb.NbVars)
	require.Len(t, pb.Clauses, 2)
	require.Equal(t, Indet, pb.Status)
}

func TestParseEmptyClause(t *testing.T) {
	pb := parseString(t, "p cnf 2 2\n1 2 0\n0\n")
	require.Equal(t, Unsat, pb.Status)
}

func TestParseTautologyDropped(t *testing.T) {
	pb := parseString(t, "p cnf 2 2\n1 -1 2 0\n1 2 0\n")
	require.Len(t, pb.Clauses, 1)
}

func TestParseDuplicateLitsDeduplicated(t *testing.T) {
	pb := parseString(t, "p cnf 2 1\n1 1 2 0\n")
	require.Len(t, pb.Clauses, 1)
	require.Len(t, pb.Clauses[0], 2)
}

func TestParseUnitCollected(t *testing.T) {
	pb := parseString(t, "p cnf 3 2\n2 0\n1 2 3 0\n")
	require.Len(t, pb.Units, 1)
	require.Equal(t, IntToLit(2), pb.Units[0])
}

func TestParseLiteralOutOfRange(t *testing.T) {
	_, err := ParseCNF(strings.NewReader("p cnf 2 1\n1 3 0\n"))
	require.Error(t, err)
}

func TestParseUnfinishedClause(t *testing.T) {
	_, err := ParseCNF(strings.NewReader("p cnf 2 1\n1 2"))
	require.Error(t, err)
}

func TestParseXorLine(t *testing.T) {
	pb := parseString(t, "p cnf 3 0\nx 1 2 3 0\n")
	require.Len(t, pb.Xors, 1)
	require.True(t, pb.Xors[0].Rhs())
	require.Len(t, pb.Xors[0].Vars(), 3)
}

func TestParseXorNegationFlipsRhs(t *testing.T) {
	pb := parseString(t, "p cnf 2 0\nx -1 2 0\n")
	require.Len(t, pb.Xors, 1)
	require.False(t, pb.Xors[0].Rhs())
}

func TestParseXorDuplicateVarsCancel(t *testing.T) {
	// x1 xor x1 xor x2 = 1 reduces to x2 = 1: a unit, not an xor.
	pb := parseString(t, "p cnf 2 0\nx 1 1 2 0\n")
	require.Empty(t, pb.Xors)
	require.Equal(t, []Lit{IntToLit(2)}, pb.Units)
}

func TestParseEmptyXor(t *testing.T) {
	// An even empty xor is a no-op; an odd one is a contradiction. The
	// only way to write an empty xor is through cancelling duplicates.
	pb := parseString(t, "p cnf 1 0\nx -1 1 0\n")
	require.Equal(t, Indet, pb.Status)
	pb = parseString(t, "p cnf 1 0\nx 1 1 0\n")
	require.Equal(t, Unsat, pb.Status)
}

func TestParseSolveMarkers(t *testing.T) {
	in := "p cnf 2 2\n1 0\nc Solver::solve()\n-1 2 0\n"
	pb := parseString(t, in)
	require.Len(t, pb.SolvePoints, 1)
	require.Equal(t, 0, pb.SolvePoints[0].NbClauses)
	require.Equal(t, 1, pb.SolvePoints[0].NbUnits)
	sub := pb.Prefix(pb.SolvePoints[0])
	s := New(sub, DefaultConf())
	require.Equal(t, Sat, s.Solve())
}

func TestParseNewVarMarkers(t *testing.T) {
	pb := parseString(t, "p cnf 1 1\n1 0\nc Solver::newVar()\n")
	require.Equal(t, 2, pb.NbVars)
}

func TestParseCNFFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pb.cnf")
	require.NoError(t, os.WriteFile(path, []byte("p cnf 2 1\n1 -2 0\n"), 0o644))
	pb, err := ParseCNFFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, pb.NbVars)
	require.Len(t, pb.Clauses, 1)
}

func TestParseSeveralFilesInto(t *testing.T) {
	var pb Problem
	require.NoError(t, ParseCNFInto(strings.NewReader("p cnf 2 1\n1 2 0\n"), &pb))
	require.NoError(t, ParseCNFInto(strings.NewReader("-1 0\n"), &pb))
	require.Len(t, pb.Clauses, 1)
	require.Len(t, pb.Units, 1)
	s := New(&pb, DefaultConf())
	require.Equal(t, Sat, s.Solve())
	require.True(t, s.Model()[IntToVar(2)])
}

func TestProblemCNFRoundTrip(t *testing.T) {
	in := "p cnf 3 3\n1 2 0\n-2 3 0\nx 1 3 0\n"
	pb := parseString(t, in)
	pb2 := parseString(t, pb.CNF())
	require.Equal(t, pb.NbVars, pb2.NbVars)
	require.Len(t, pb2.Clauses, len(pb.Clauses))
	require.Len(t, pb2.Xors, len(pb.Xors))
}
