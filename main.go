package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gocryptosat/gocryptosat/solver"
)

const (
	exitSat          = 10
	exitUndetermined = 15
	exitUnsat        = 20
)

type cliOptions struct {
	polarityMode    string
	restartType     string
	rndFreq         float64
	verbosity       int
	seed            int64
	restrict        int
	gaussUntil      int
	maxRestarts     int
	maxGlue         int
	maxSolutions    int
	threads         int
	dumpLearnts     string
	maxDumpLearnts  int
	dumpOrig        string
	alsoRead        []string
	greedyUnbound   bool
	debugLib        bool
	debugNewVar     bool
	noSolPrint      bool
	noNormXorFind   bool
	noBinXorFind    bool
	noRegBXorFind   bool
	noConglomerate  bool
	noSimplify      bool
	noVarReplace    bool
	noFailedVar     bool
	noHeuleProcess  bool
	noSatELite      bool
	noXorSubs       bool
	noHyperBinRes   bool
	noBlockedClause bool
	noVarElim       bool
	noSubsume1      bool
	noRemoveBins    bool
	noSubsWithBins  bool
	noAsymm         bool
	noSortWatched   bool
	noLfMinim       bool
	lfMinimRec      bool
	noMatrixFind    bool
	noIterReduce    bool
	noOrderCol      bool
	noDisableGauss  bool
	maxMatrixRows   int
	minMatrixRows   int
	saveMatrix      int
	maxNumMatrixes  int
}

func main() {
	debug.SetGCPercent(300)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	opts := &cliOptions{}
	var retval int
	cmd := &cobra.Command{
		Use:           "gocryptosat [flags] [input-file [result-output-file]]",
		Short:         "A CDCL SAT solver with XOR clauses and Gaussian elimination",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			retval, err = run(opts, args)
			return err
		},
	}
	addFlags(cmd, opts)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR! %v\n", err)
		os.Exit(1)
	}
	os.Exit(retval)
}

func addFlags(cmd *cobra.Command, opts *cliOptions) {
	fs := cmd.Flags()
	fs.StringVar(&opts.polarityMode, "polarity-mode", "auto", "default polarity mode: {true,false,rnd,auto}; auto is the Jeroslow-Wang method")
	fs.Float64Var(&opts.rndFreq, "rnd-freq", 0.001, "frequency of random branches, in [0, 1]")
	fs.IntVar(&opts.verbosity, "verbosity", 2, "verbosity level: {0,1,2}")
	fs.Int64Var(&opts.seed, "randomize", 0, "random seed used for picking decision variables")
	fs.IntVar(&opts.restrict, "restrict", 0, "when picking random variables to branch on, pick among the N most active ones; useful for cryptographic problems where the question is the key")
	fs.IntVar(&opts.gaussUntil, "gaussuntil", 0, "depth until which Gaussian elimination is active; 0 switches it off")
	fs.IntVar(&opts.maxRestarts, "restarts", 1<<31-1, "no more than this number of restarts is performed")
	fs.StringVar(&opts.restartType, "restart", "auto", "restart strategy to follow: {auto,static,dynamic}")
	fs.IntVar(&opts.maxGlue, "maxglue", 24, "glue value above which learnt clauses are thrown away on backtrack; only active with dynamic restarts")
	fs.IntVar(&opts.maxSolutions, "maxsolutions", 1, "search for the given amount of solutions")
	fs.IntVar(&opts.threads, "threads", 1, "number of solver instances racing on the problem")
	fs.StringVar(&opts.dumpLearnts, "dumplearnts", "", "if interrupted or the restart limit is reached, dump learnt clauses to this file")
	fs.IntVar(&opts.maxDumpLearnts, "maxdumplearnts", 1<<31-1, "maximum length of learnt clauses dumped to file")
	fs.StringVar(&opts.dumpOrig, "dumporig", "", "if interrupted or the restart limit is reached, dump the simplified original problem to this file")
	fs.StringSliceVar(&opts.alsoRead, "alsoread", nil, "also read this file in; can be used to re-read dumped learnts")
	fs.BoolVar(&opts.greedyUnbound, "greedyunbound", false, "greedily unbind variables that are not needed for SAT")
	fs.BoolVar(&opts.debugLib, "debuglib", false, "solve at 'c Solver::solve()' points in the CNF file")
	fs.BoolVar(&opts.debugNewVar, "debugnewvar", false, "add new vars at 'c Solver::newVar()' points in the CNF file")
	fs.BoolVar(&opts.noSolPrint, "nosolprint", false, "don't print the satisfying assignment")
	fs.BoolVar(&opts.noNormXorFind, "nonormxorfind", false, "don't find and collect >2-long xor clauses from regular clauses")
	fs.BoolVar(&opts.noBinXorFind, "nobinxorfind", false, "don't find and collect 2-long xor clauses from regular clauses")
	fs.BoolVar(&opts.noRegBXorFind, "noregbxorfind", false, "don't regularly find and collect 2-long xor clauses")
	fs.BoolVar(&opts.noConglomerate, "noconglomerate", false, "don't conglomerate two xor clauses when one var is dependent")
	fs.BoolVar(&opts.noSimplify, "nosimplify", false, "don't do regular simplification rounds")
	fs.BoolVar(&opts.noVarReplace, "novarreplace", false, "don't perform variable replacement")
	fs.BoolVar(&opts.noFailedVar, "nofailedvar", false, "don't search for failed vars")
	fs.BoolVar(&opts.noHeuleProcess, "noheuleprocess", false, "don't try to minimise XORs by XOR-ing them together")
	fs.BoolVar(&opts.noSatELite, "nosatelite", false, "don't do clause subsumption, strengthening and variable elimination")
	fs.BoolVar(&opts.noXorSubs, "noxorsubs", false, "don't try to subsume xor clauses")
	fs.BoolVar(&opts.noHyperBinRes, "nohyperbinres", false, "don't add binary clauses when doing failed lit probing")
	fs.BoolVar(&opts.noBlockedClause, "noblockedclause", false, "don't remove blocked clauses")
	fs.BoolVar(&opts.noVarElim, "novarelim", false, "don't perform variable elimination as per Een and Biere")
	fs.BoolVar(&opts.noSubsume1, "nosubsume1", false, "don't perform clause contraction through resolution")
	fs.BoolVar(&opts.noRemoveBins, "noremovebins", false, "don't remove useless binary clauses")
	fs.BoolVar(&opts.noSubsWithBins, "nosubswithbins", false, "don't subsume with non-existent binaries")
	fs.BoolVar(&opts.noAsymm, "noasymm", false, "don't do asymmetric branching")
	fs.BoolVar(&opts.noSortWatched, "nosortwatched", false, "don't sort watches according to size: bin, tri, etc.")
	fs.BoolVar(&opts.noLfMinim, "nolfminim", false, "don't do on-the-fly self-subsuming resolution")
	fs.BoolVar(&opts.lfMinimRec, "lfminimrec", false, "always perform recursive/transitive OTF self-subsuming resolution")
	fs.BoolVar(&opts.noMatrixFind, "nomatrixfind", false, "don't find distinct matrixes; put all xors into one big matrix")
	fs.BoolVar(&opts.noIterReduce, "noiterreduce", false, "don't reduce iteratively the matrix that is updated")
	fs.BoolVar(&opts.noOrderCol, "noordercol", false, "don't order variables in the columns of Gaussian elimination")
	fs.BoolVar(&opts.noDisableGauss, "nodisablegauss", false, "don't disable Gauss matrixes that prove useless")
	fs.IntVar(&opts.maxMatrixRows, "maxmatrixrows", 1000, "maximum number of rows for a Gaussian matrix")
	fs.IntVar(&opts.minMatrixRows, "minmatrixrows", 20, "minimum number of rows for a Gaussian matrix")
	fs.IntVar(&opts.saveMatrix, "savematrix", 2, "save the matrix every Nth decision level")
	fs.IntVar(&opts.maxNumMatrixes, "maxnummatrixes", 3, "maximum number of matrixes to treat")
}

// buildConf converts command-line options into a validated solver
// configuration.
func buildConf(opts *cliOptions) (solver.Conf, error) {
	conf := solver.DefaultConf()
	var err error
	if conf.PolarityMode, err = solver.ParsePolarityMode(opts.polarityMode); err != nil {
		return conf, err
	}
	if conf.FixRestartType, err = solver.ParseRestartType(opts.restartType); err != nil {
		return conf, err
	}
	conf.Verbosity = opts.verbosity
	conf.RandomVarFreq = opts.rndFreq
	conf.OrigSeed = opts.seed
	conf.RestrictPickBranch = opts.restrict
	conf.MaxRestarts = opts.maxRestarts
	conf.MaxGlue = opts.maxGlue
	conf.DoFindXors = !opts.noNormXorFind
	conf.DoFindEqLits = !opts.noBinXorFind
	conf.DoRegFindEqLits = !opts.noRegBXorFind
	conf.DoConglXors = !opts.noConglomerate
	conf.DoSchedSimp = !opts.noSimplify
	conf.DoReplace = !opts.noVarReplace
	conf.DoFailedLit = !opts.noFailedVar
	conf.DoHeuleProcess = !opts.noHeuleProcess
	conf.DoSatELite = !opts.noSatELite
	conf.DoXorSubsumption = !opts.noXorSubs
	conf.DoHyperBinRes = !opts.noHyperBinRes
	conf.DoBlockedClause = !opts.noBlockedClause
	conf.DoVarElim = !opts.noVarElim
	conf.DoSubsume1 = !opts.noSubsume1
	conf.DoRemUselessBins = !opts.noRemoveBins
	conf.DoSubsWNonExistBins = !opts.noSubsWithBins
	conf.DoAsymmBranch = !opts.noAsymm
	conf.DoSortWatched = !opts.noSortWatched
	conf.DoMinimLearntMore = !opts.noLfMinim
	conf.DoMinimLMoreRecur = opts.lfMinimRec
	conf.GreedyUnbound = opts.greedyUnbound
	conf.NeedToDumpLearnts = opts.dumpLearnts != ""
	conf.LearntsFilename = opts.dumpLearnts
	conf.MaxDumpLearntsSize = opts.maxDumpLearnts
	conf.NeedToDumpOrig = opts.dumpOrig != ""
	conf.OrigFilename = opts.dumpOrig
	conf.Gauss.DecisionUntil = opts.gaussUntil
	conf.Gauss.NoMatrixFind = opts.noMatrixFind
	conf.Gauss.IterativeReduce = !opts.noIterReduce
	conf.Gauss.OrderCols = !opts.noOrderCol
	conf.Gauss.DontDisable = opts.noDisableGauss
	conf.Gauss.MaxMatrixRows = opts.maxMatrixRows
	conf.Gauss.MinMatrixRows = opts.minMatrixRows
	conf.Gauss.SaveEveryNth = opts.saveMatrix
	conf.Gauss.MaxNumMatrixes = opts.maxNumMatrixes
	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

func run(opts *cliOptions, args []string) (int, error) {
	conf, err := buildConf(opts)
	if err != nil {
		return 1, err
	}
	if opts.maxSolutions < 1 {
		return 1, fmt.Errorf("wrong maximum number of solutions: %d", opts.maxSolutions)
	}

	pb, err := parseAllFiles(opts, args, conf.Verbosity)
	if err != nil {
		return 1, err
	}

	var resFile *os.File
	if len(args) == 2 {
		resFile, err = os.Create(args[1])
		if err != nil {
			return 1, fmt.Errorf("cannot open %s for writing: %v", args[1], err)
		}
		defer func() { _ = resFile.Close() }()
		if conf.Verbosity >= 1 {
			fmt.Printf("c Outputting solution to file: %s\n", args[1])
		}
	}

	if opts.threads > 1 {
		return multiThreadSolve(opts, conf, pb, resFile)
	}
	return oneSolve(opts, conf, pb, resFile, true)
}

func parseAllFiles(opts *cliOptions, args []string, verbosity int) (*solver.Problem, error) {
	var pb solver.Problem
	for _, extra := range opts.alsoRead {
		if verbosity >= 1 {
			fmt.Printf("c Reading file '%s'\n", extra)
		}
		if err := solver.ParseCNFFileInto(extra, &pb); err != nil {
			return nil, err
		}
	}
	if len(args) == 0 {
		if verbosity >= 1 {
			fmt.Println("c Reading from standard input... Use '-h' or '--help' for help.")
		}
		if err := solver.ParseCNFInto(os.Stdin, &pb); err != nil {
			return nil, err
		}
	} else {
		if verbosity >= 1 {
			fmt.Printf("c Reading file '%s'\n", args[0])
		}
		if err := solver.ParseCNFFileInto(args[0], &pb); err != nil {
			return nil, err
		}
	}
	return &pb, nil
}

// oneSolve runs a single solver instance, the model-enumeration loop
// included, and prints results and statistics.
func oneSolve(opts *cliOptions, conf solver.Conf, pb *solver.Problem, resFile *os.File, dump bool) (int, error) {
	s := solver.New(pb, conf)
	installInterruptHandler(s)

	if opts.debugLib {
		for i, p := range pb.SolvePoints {
			sub := solver.New(pb.Prefix(p), conf)
			fmt.Printf("c Solver::solve() point %d returned %v\n", i+1, sub.Solve())
		}
	}

	nbSolutions := 0
	ret := s.Solve()
	for ret == solver.Sat {
		nbSolutions++
		if nbSolutions >= opts.maxSolutions {
			break
		}
		if conf.Verbosity >= 1 {
			fmt.Println("c Prepare for next run...")
		}
		printResult(s, ret, resFile, !opts.noSolPrint)
		blocking := s.BlockingClause()
		if len(blocking) == 0 || !s.AddClause(blocking) {
			ret = solver.Unsat
			break
		}
		ret = s.Solve()
	}

	if dump {
		if err := dumpClauses(s, conf); err != nil {
			return 1, err
		}
	}
	if ret == solver.Indet && conf.Verbosity >= 1 {
		fmt.Println("c Not finished running -- maximum restart reached")
	}
	printResult(s, ret, resFile, !opts.noSolPrint)
	if conf.Verbosity >= 1 {
		printStats(s)
	}
	return returnValue(ret), nil
}

// installInterruptHandler wires SIGINT to the solver's cooperative
// interrupt flag. The solver drains to a coherent state and Solve returns
// Indet, after which learnt clauses can be dumped.
func installInterruptHandler(s *solver.Solver) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		fmt.Fprintln(os.Stderr, "*** INTERRUPTED ***")
		s.Interrupt()
	}()
}

func dumpClauses(s *solver.Solver, conf solver.Conf) error {
	if conf.NeedToDumpLearnts {
		f, err := os.Create(conf.LearntsFilename)
		if err != nil {
			return fmt.Errorf("cannot open learnts dump file: %v", err)
		}
		defer func() { _ = f.Close() }()
		if err := s.DumpLearnts(f, conf.MaxDumpLearntsSize); err != nil {
			return err
		}
		fmt.Printf("c Sorted learnt clauses dumped to file '%s'\n", conf.LearntsFilename)
	}
	if conf.NeedToDumpOrig {
		f, err := os.Create(conf.OrigFilename)
		if err != nil {
			return fmt.Errorf("cannot open orig dump file: %v", err)
		}
		defer func() { _ = f.Close() }()
		if err := s.DumpOrig(f); err != nil {
			return err
		}
		fmt.Printf("c Simplified original clauses dumped to file '%s'\n", conf.OrigFilename)
	}
	return nil
}

// printResult writes the result in the competition format: "s" and "v"
// lines on stdout, or SAT/UNSAT/INCONCLUSIVE plus the model into the
// result file when one was given.
func printResult(s *solver.Solver, ret solver.Status, resFile *os.File, printSol bool) {
	if resFile != nil {
		switch ret {
		case solver.Sat:
			fmt.Println("c SAT")
			fmt.Fprintln(resFile, "SAT")
			if printSol {
				fmt.Fprintln(resFile, modelLine(s))
			}
		case solver.Unsat:
			fmt.Println("c UNSAT")
			fmt.Fprintln(resFile, "UNSAT")
		default:
			fmt.Println("c INCONCLUSIVE")
			fmt.Fprintln(resFile, "INCONCLUSIVE")
		}
		return
	}
	switch ret {
	case solver.Sat:
		fmt.Println("s SATISFIABLE")
		if printSol {
			fmt.Printf("v %s\n", modelLine(s))
		}
	case solver.Unsat:
		fmt.Println("s UNSATISFIABLE")
	}
}

func modelLine(s *solver.Solver) string {
	line := ""
	for v := 0; v < s.NbVars(); v++ {
		val, bound := s.ModelValue(solver.Var(v))
		if !bound {
			continue
		}
		if val {
			line += fmt.Sprintf("%d ", v+1)
		} else {
			line += fmt.Sprintf("%d ", -(v + 1))
		}
	}
	return line + "0"
}

func returnValue(ret solver.Status) int {
	switch ret {
	case solver.Sat:
		return exitSat
	case solver.Unsat:
		return exitUnsat
	default:
		return exitUndetermined
	}
}

func printStatsLine(left string, value interface{}) {
	fmt.Printf("c %-22s: %v\n", left, value)
}

func printStatsPct(left string, value, total int64) {
	pct := 0.0
	if total > 0 {
		pct = float64(value) / float64(total) * 100.0
	}
	fmt.Printf("c %-22s: %-11d (%.2f %%)\n", left, value, pct)
}

// printStats prints the statistics block at the end of solving.
func printStats(s *solver.Solver) {
	st := s.Stats
	printStatsLine("restarts", st.NbRestarts)
	printStatsLine("dynamic restarts", st.NbDynRestarts)
	printStatsLine("static restarts", st.NbStaticRestarts)
	printStatsLine("full restarts", st.NbFullRestarts)
	printStatsLine("simplifications", st.NbSimplifies)
	printStatsLine("learnts DL2", st.NbGlue2Learnts)
	printStatsLine("learnts size 2", st.NbBinaryLearnts)
	printStatsLine("learnts size 1", st.NbUnitLearnts)
	printStatsLine("learnts deleted", st.NbDeleted)
	printStatsPct("OTF cl improved", st.NbShrunkenClauses, st.NbConflicts)
	printStatsLine("OTF lits removed", st.NbShrunkenLits)
	printStatsLine("minimized lits", st.NbMinimizedLits)
	printStatsPct("clauses over max glue", st.NbClOverMaxGlue, st.NbConflicts)
	if st.NbGaussCalled > 0 {
		printStatsLine("gauss called", st.NbGaussCalled)
		printStatsPct("gauss conflicts", st.NbGaussConfls, st.NbGaussCalled)
		printStatsPct("gauss propagations", st.NbGaussProps, st.NbGaussCalled)
		printStatsLine("gauss unit truths", st.NbGaussUnitTruths)
	}
	printStatsLine("xor propagations", st.NbXorProps)
	printStatsLine("xor conflicts", st.NbXorConfls)
	printStatsPct("decisions random", st.NbRndDecisions, st.NbDecisions)
	printStatsLine("conflicts", st.NbConflicts)
	printStatsLine("decisions", st.NbDecisions)
	printStatsLine("propagations", st.NbPropagations)
}
