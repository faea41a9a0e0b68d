package solver

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Dumping of the clause database as DIMACS, re-readable by the parser.
// Used on exit or interrupt when the corresponding options are set.

// DumpLearnts writes the learnt clauses sorted by increasing glue,
// skipping those with more than maxSize literals. The level-0 facts are
// always written as units; binary learnts are written when maxSize is at
// least 2.
func (s *Solver) DumpLearnts(w io.Writer, maxSize int) error {
	bw := bufio.NewWriter(w)
	for _, l := range s.trail {
		if s.level(l.Var()) != 0 {
			break
		}
		fmt.Fprintf(bw, "%d 0\n", l.Int())
	}
	if maxSize >= 2 {
		for _, b := range s.binLearnts {
			fmt.Fprintf(bw, "%d %d 0\n", b[0].Int(), b[1].Int())
		}
	}
	sorted := append([]CRef(nil), s.learnts...)
	sort.Slice(sorted, func(i, j int) bool {
		return s.ca.clause(sorted[i]).glue() < s.ca.clause(sorted[j]).glue()
	})
	for _, ref := range sorted {
		c := s.ca.clause(ref)
		if c.Len() > maxSize {
			continue
		}
		fmt.Fprintln(bw, c.CNF())
	}
	return bw.Flush()
}

// DumpOrig writes the original problem, simplified to the current point:
// level-0 facts, the surviving clauses and the XOR constraints.
func (s *Solver) DumpOrig(w io.Writer) error {
	bw := bufio.NewWriter(w)
	nbUnits := 0
	for _, l := range s.trail {
		if s.level(l.Var()) != 0 {
			break
		}
		nbUnits++
	}
	nbClauses := nbUnits + s.NbClauses() + len(s.xorClauses)
	fmt.Fprintf(bw, "p cnf %d %d\n", s.nbVars, nbClauses)
	for _, l := range s.trail[:nbUnits] {
		fmt.Fprintf(bw, "%d 0\n", l.Int())
	}
	for _, b := range s.binOrig {
		fmt.Fprintf(bw, "%d %d 0\n", b[0].Int(), b[1].Int())
	}
	for _, t := range s.triOrig {
		fmt.Fprintf(bw, "%d %d %d 0\n", t[0].Int(), t[1].Int(), t[2].Int())
	}
	for _, ref := range s.clauses {
		fmt.Fprintln(bw, s.ca.clause(ref).CNF())
	}
	for i := range s.xorClauses {
		fmt.Fprintln(bw, s.xorClauses[i].CNF())
	}
	return bw.Flush()
}
