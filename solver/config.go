package solver

import (
	"math"

	"github.com/pkg/errors"
)

// PolarityMode tells the solver which truth value to try first when branching
// on a variable. Only PolarityAuto uses saved phases.
type PolarityMode byte

const (
	// PolarityTrue always branches on the positive literal first.
	PolarityTrue = PolarityMode(iota)
	// PolarityFalse always branches on the negative literal first.
	PolarityFalse
	// PolarityRnd picks a random polarity at each decision.
	PolarityRnd
	// PolarityAuto seeds polarities with a Jeroslow-Wang estimate, then
	// keeps the last assigned value of each variable (phase saving).
	PolarityAuto
)

// ParsePolarityMode converts a mode name from the command line.
func ParsePolarityMode(s string) (PolarityMode, error) {
	switch s {
	case "true":
		return PolarityTrue, nil
	case "false":
		return PolarityFalse, nil
	case "rnd":
		return PolarityRnd, nil
	case "auto":
		return PolarityAuto, nil
	}
	return PolarityAuto, errors.Errorf("unknown polarity-mode %q", s)
}

// RestartType selects the restart strategy followed during search.
type RestartType byte

const (
	// AutoRestart samples glues for a while, then commits to one of the
	// two other strategies depending on the observed glue variance.
	AutoRestart = RestartType(iota)
	// StaticRestart restarts at conflict counts following a Luby sequence.
	StaticRestart
	// DynamicRestart restarts when the recent learnt-clause glue average
	// degrades compared to the long-term average.
	DynamicRestart
)

// ParseRestartType converts a strategy name from the command line.
func ParseRestartType(s string) (RestartType, error) {
	switch s {
	case "auto":
		return AutoRestart, nil
	case "static":
		return StaticRestart, nil
	case "dynamic":
		return DynamicRestart, nil
	}
	return AutoRestart, errors.Errorf("unknown restart type %q", s)
}

// GaussConf controls the XOR matrix engine.
type GaussConf struct {
	DecisionUntil   int  // Depth until which Gaussian elimination is active. 0 disables it.
	OrderCols       bool // Order matrix columns to minimize fill during reduction.
	IterativeReduce bool // Reduce iteratively the matrix that is updated.
	MaxMatrixRows   int  // Matrices with more rows are not treated.
	MinMatrixRows   int  // Matrices with fewer rows are not treated.
	SaveEveryNth    int  // Save matrix state every Nth decision level.
	MaxNumMatrixes  int  // Maximum number of matrices to treat.
	NoMatrixFind    bool // Put all XORs into one big matrix instead of splitting per component.
	DontDisable     bool // Keep running matrices even when they never derive anything.
}

// Conf regroups all options recognized by the solver.
// The zero value is not usable; start from DefaultConf.
type Conf struct {
	Verbosity     int
	PolarityMode  PolarityMode
	RandomVarFreq float64 // Probability of branching on a random variable.
	OrigSeed      int64   // Seed for the decision RNG.

	RestrictPickBranch int // If > 0, pick randomly among the K most active variables.

	FixRestartType RestartType
	MaxRestarts    int // Search gives up with Indet after that many restarts.
	MaxConflicts   int64
	MaxGlue        int // Learnts above this glue are dropped on backjump (dynamic restarts only).

	// XOR simplification layers.
	DoFindXors       bool
	DoFindEqLits     bool
	DoRegFindEqLits  bool
	DoConglXors      bool
	DoHeuleProcess   bool
	DoXorSubsumption bool

	// CNF simplification layers.
	DoSchedSimp     bool
	DoSatELite      bool
	DoVarElim       bool
	DoSubsume1      bool
	DoBlockedClause bool

	// Probing layers.
	DoFailedLit         bool
	DoHyperBinRes       bool
	DoRemUselessBins    bool
	DoSubsWNonExistBins bool
	DoAsymmBranch       bool

	// Minor knobs.
	DoReplace         bool
	DoSortWatched     bool
	DoMinimLearntMore bool
	DoMinimLMoreRecur bool

	GreedyUnbound bool

	// Dumping of clauses on exit or interrupt.
	NeedToDumpLearnts  bool
	LearntsFilename    string
	MaxDumpLearntsSize int
	NeedToDumpOrig     bool
	OrigFilename       string

	// Scheduling of simplification episodes: first episode after
	// SimpStartMult conflicts, then the interval grows by SimpStartMMult.
	SimpStartMult  int64
	SimpStartMMult float64

	Gauss GaussConf
}

// DefaultConf returns the configuration used when no option is given.
func DefaultConf() Conf {
	return Conf{
		Verbosity:           0,
		PolarityMode:        PolarityAuto,
		RandomVarFreq:       0.001,
		OrigSeed:            0,
		RestrictPickBranch:  0,
		FixRestartType:      AutoRestart,
		MaxRestarts:         math.MaxInt32,
		MaxConflicts:        math.MaxInt64,
		MaxGlue:             24,
		DoFindXors:          true,
		DoFindEqLits:        true,
		DoRegFindEqLits:     true,
		DoConglXors:         true,
		DoHeuleProcess:      true,
		DoXorSubsumption:    true,
		DoSchedSimp:         true,
		DoSatELite:          true,
		DoVarElim:           true,
		DoSubsume1:          true,
		DoBlockedClause:     true,
		DoFailedLit:         true,
		DoHyperBinRes:       true,
		DoRemUselessBins:    true,
		DoSubsWNonExistBins: true,
		DoAsymmBranch:       true,
		DoReplace:           true,
		DoSortWatched:       true,
		DoMinimLearntMore:   true,
		DoMinimLMoreRecur:   false,
		MaxDumpLearntsSize:  math.MaxInt32,
		SimpStartMult:       300,
		SimpStartMMult:      1.5,
		Gauss: GaussConf{
			DecisionUntil:   0,
			OrderCols:       true,
			IterativeReduce: true,
			MaxMatrixRows:   1000,
			MinMatrixRows:   20,
			SaveEveryNth:    2,
			MaxNumMatrixes:  3,
		},
	}
}

// Validate checks option values and returns a configuration error on the
// first out-of-range one. It must be called before handing the Conf to New.
func (c *Conf) Validate() error {
	if c.RandomVarFreq < 0 || c.RandomVarFreq > 1 {
		return errors.Errorf("illegal rnd-freq constant %f", c.RandomVarFreq)
	}
	if c.RestrictPickBranch < 0 {
		return errors.Errorf("illegal restricted pick branch number %d", c.RestrictPickBranch)
	}
	if c.MaxRestarts < 1 {
		return errors.Errorf("illegal maximum restart number %d", c.MaxRestarts)
	}
	if c.MaxGlue < 0 || c.MaxGlue >= 1<<maxGlueBits {
		return errors.Errorf("max glue must be in [0, %d)", 1<<maxGlueBits)
	}
	if c.MaxDumpLearntsSize < 0 {
		return errors.Errorf("maximum dumped learnt clause size is illegal: %d", c.MaxDumpLearntsSize)
	}
	if c.NeedToDumpLearnts && c.LearntsFilename == "" {
		return errors.New("dumplearnts requested without a filename")
	}
	if c.NeedToDumpOrig && c.OrigFilename == "" {
		return errors.New("dumporig requested without a filename")
	}
	if c.Gauss.DecisionUntil < 0 {
		return errors.Errorf("illegal gaussuntil value %d", c.Gauss.DecisionUntil)
	}
	if c.Gauss.SaveEveryNth < 1 {
		return errors.Errorf("savematrix must be at least 1, got %d", c.Gauss.SaveEveryNth)
	}
	if c.Gauss.MinMatrixRows > c.Gauss.MaxMatrixRows {
		return errors.Errorf("minmatrixrows (%d) above maxmatrixrows (%d)",
			c.Gauss.MinMatrixRows, c.Gauss.MaxMatrixRows)
	}
	if c.Gauss.MaxNumMatrixes < 0 {
		return errors.Errorf("illegal maxnummatrixes value %d", c.Gauss.MaxNumMatrixes)
	}
	return nil
}
