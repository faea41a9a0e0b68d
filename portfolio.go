package main

import (
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gocryptosat/gocryptosat/solver"
)

// multiThreadSolve races several diversified solver instances on the same
// problem. The first worker to finish wins: the remaining workers are
// interrupted cooperatively, and the winner's result and statistics are
// the ones printed. Workers share nothing but the read-only parsed
// problem; output is serialized at completion time.
func multiThreadSolve(opts *cliOptions, conf solver.Conf, pb *solver.Problem, resFile *os.File) (int, error) {
	type outcome struct {
		s   *solver.Solver
		ret solver.Status
	}

	solvers := make([]*solver.Solver, opts.threads)
	for i := range solvers {
		solvers[i] = solver.New(pb, diversify(conf, i))
	}
	for _, s := range solvers {
		installInterruptHandler(s)
	}
	if conf.Verbosity >= 1 {
		fmt.Printf("c Using %d threads\n", opts.threads)
	}

	var g errgroup.Group
	var once sync.Once
	var winner outcome
	for i := range solvers {
		s := solvers[i]
		num := i
		g.Go(func() error {
			ret := s.Solve()
			once.Do(func() {
				winner = outcome{s: s, ret: ret}
				log.Debugf("worker %d finished first with %v", num, ret)
				for _, other := range solvers {
					if other != s {
						other.Interrupt()
					}
				}
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 1, err
	}

	if err := dumpClauses(winner.s, conf); err != nil {
		return 1, err
	}
	printResult(winner.s, winner.ret, resFile, !opts.noSolPrint)
	if conf.Verbosity >= 1 {
		printStats(winner.s)
	}
	return returnValue(winner.ret), nil
}

// diversify derives the configuration of one portfolio worker: its own
// seed, alternating restart strategies, and a scaled simplification
// cadence. Only worker 0 stays verbose.
func diversify(conf solver.Conf, num int) solver.Conf {
	conf.OrigSeed = int64(num)
	if num > 0 {
		if num%2 == 1 {
			conf.FixRestartType = solver.DynamicRestart
		} else {
			conf.FixRestartType = solver.StaticRestart
		}
		conf.SimpStartMult *= int64(2 * (num + 1))
		conf.Verbosity = 0
	}
	return conf
}
