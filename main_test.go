package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gocryptosat/gocryptosat/solver"
)

func defaultOpts() *cliOptions {
	return &cliOptions{
		polarityMode:   "auto",
		restartType:    "auto",
		rndFreq:        0.001,
		maxRestarts:    1 << 30,
		maxGlue:        24,
		maxDumpLearnts: 1 << 30,
		maxMatrixRows:  1000,
		minMatrixRows:  20,
		saveMatrix:     2,
		maxNumMatrixes: 3,
	}
}

func TestBuildConf(t *testing.T) {
	opts := defaultOpts()
	opts.gaussUntil = 42
	opts.lfMinimRec = true
	opts.noSortWatched = true
	conf, err := buildConf(opts)
	require.NoError(t, err)
	require.Equal(t, 42, conf.Gauss.DecisionUntil)
	require.True(t, conf.DoMinimLMoreRecur)
	require.False(t, conf.DoSortWatched)
}

func TestBuildConfRejectsBadValues(t *testing.T) {
	opts := defaultOpts()
	opts.polarityMode = "sideways"
	_, err := buildConf(opts)
	require.Error(t, err)

	opts = defaultOpts()
	opts.rndFreq = 1.5
	_, err = buildConf(opts)
	require.Error(t, err)

	opts = defaultOpts()
	opts.restartType = "sometimes"
	_, err = buildConf(opts)
	require.Error(t, err)
}

func TestReturnValue(t *testing.T) {
	require.Equal(t, exitSat, returnValue(solver.Sat))
	require.Equal(t, exitUnsat, returnValue(solver.Unsat))
	require.Equal(t, exitUndetermined, returnValue(solver.Indet))
}

func TestDiversify(t *testing.T) {
	conf := solver.DefaultConf()
	conf.Verbosity = 2
	base := diversify(conf, 0)
	require.Equal(t, int64(0), base.OrigSeed)
	require.Equal(t, 2, base.Verbosity)

	w1 := diversify(conf, 1)
	require.Equal(t, int64(1), w1.OrigSeed)
	require.Equal(t, solver.DynamicRestart, w1.FixRestartType)
	require.Equal(t, 0, w1.Verbosity)

	w2 := diversify(conf, 2)
	require.Equal(t, solver.StaticRestart, w2.FixRestartType)
	require.Greater(t, w2.SimpStartMult, conf.SimpStartMult)
}
