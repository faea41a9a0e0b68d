package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpOrigRereadable(t *testing.T) {
	in := "p cnf 4 4\n1 2 0\n-1 2 3 0\n-2 -3 -4 0\nx 1 4 0\n"
	pb := parseString(t, in)
	s := New(pb, DefaultConf())

	var sb strings.Builder
	require.NoError(t, s.DumpOrig(&sb))
	pb2, err := ParseCNF(strings.NewReader(sb.String()))
	require.NoError(t, err)

	st := New(parseString(t, in), DefaultConf()).Solve()
	require.Equal(t, st, New(pb2, DefaultConf()).Solve())
}

func TestDumpLearntsRoundTrip(t *testing.T) {
	// Stop early on a hard instance, dump the learnts, then re-read them
	// together with the original: satisfiability must be unchanged.
	in := php(6, 5)
	conf := DefaultConf()
	conf.MaxRestarts = 1
	conf.FixRestartType = StaticRestart
	s := New(parseString(t, in), conf)
	require.Equal(t, Indet, s.Solve())

	var learnts strings.Builder
	require.NoError(t, s.DumpLearnts(&learnts, 1<<30))

	var pb Problem
	require.NoError(t, ParseCNFInto(strings.NewReader(in), &pb))
	require.NoError(t, ParseCNFInto(strings.NewReader(learnts.String()), &pb))
	full := New(&pb, DefaultConf())
	require.Equal(t, Unsat, full.Solve())
}

func TestDumpLearntsRespectsMaxSize(t *testing.T) {
	conf := DefaultConf()
	conf.MaxRestarts = 1
	conf.FixRestartType = StaticRestart
	s := New(parseString(t, php(6, 5)), conf)
	require.Equal(t, Indet, s.Solve())

	var sb strings.Builder
	require.NoError(t, s.DumpLearnts(&sb, 3))
	for _, line := range strings.Split(strings.TrimSpace(sb.String()), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		require.LessOrEqual(t, len(fields), 4, "clause longer than 3 lits dumped: %q", line)
	}
}

func TestDumpOrigKeepsXorLines(t *testing.T) {
	pb := parseString(t, "p cnf 3 1\n1 2 3 0\nx 1 2 3 0\n")
	s := New(pb, DefaultConf())
	var sb strings.Builder
	require.NoError(t, s.DumpOrig(&sb))
	require.Contains(t, sb.String(), "x ")
}
