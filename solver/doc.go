/*
Package solver implements a conflict-driven clause-learning SAT solver
with native XOR constraint support.

Its input is a DIMACS CNF stream, possibly extended with "x" lines
describing XOR constraints, or a solver.Problem built programmatically.
The solver decides whether the problem admits a model, and can enumerate
several models, dump its learnt clauses, and be interrupted cooperatively.

# Describing a problem

1. parse a DIMACS stream (io.Reader). If the io.Reader produces the
following content:

	p cnf 3 2
	1 2 0
	-1 3 0
	x 1 2 3 0

the programmer can create the Problem by doing:

	pb, err := solver.ParseCNF(f)

The "x" line constrains the parity of its variables: here x1 xor x2 xor x3
must be true. A negated literal in an "x" line flips the expected parity.

2. create the equivalent list of list of literals:

	clauses := [][]int{{1, 2}, {-1, 3}}
	pb := solver.ParseSlice(clauses)

or, with XOR constraints:

	pb := solver.ParseXorSlice(clauses, [][]int{{1, 2, 3}})

# Solving

To solve a problem, create a solver with the problem and a configuration,
then call Solve:

	conf := solver.DefaultConf()
	s := solver.New(pb, conf)
	status := s.Solve()

Solve returns Sat, Unsat, or Indet when a restart or conflict budget ran
out or Interrupt was called. On Sat, s.Model() returns a satisfying
assignment. Adding the blocking clause returned by s.BlockingClause() and
solving again enumerates further models.

The configuration exposes the branching polarity mode, the restart
strategy (static Luby, dynamic glue-driven, or automatic selection), the
learnt database tuning, and the Gaussian elimination engine that reasons
over the XOR constraints during search.
*/
package solver
