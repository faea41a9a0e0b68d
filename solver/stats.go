package solver

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbRestarts       int64
	NbDynRestarts    int64
	NbStaticRestarts int64
	NbFullRestarts   int64

	NbConflicts    int64
	NbDecisions    int64
	NbRndDecisions int64
	NbPropagations int64
	NbSimplifies   int64

	NbLearnts       int64 // How many clauses were learnt.
	NbUnitLearnts   int64 // How many unit clauses were learnt.
	NbBinaryLearnts int64 // How many binary clauses were learnt.
	NbGlue2Learnts  int64 // How many learnt clauses had glue 2.
	NbDeleted       int64 // How many learnt clauses were deleted.
	NbCompactions   int64 // How many arena compactions were run.
	NbClOverMaxGlue int64 // Learnts dropped for exceeding the glue bound.

	NbLearntLits      int64 // Total learnt literals, after minimization.
	NbMinimizedLits   int64 // Literals removed by learnt minimization.
	NbShrunkenClauses int64 // Clauses improved on the fly during analysis.
	NbShrunkenLits    int64 // Literals removed by on-the-fly improvement.

	NbXorProps  int64 // Propagations from watched XOR clauses.
	NbXorConfls int64 // Conflicts from watched XOR clauses.

	NbGaussCalled     int64
	NbGaussConfls     int64
	NbGaussProps      int64
	NbGaussUnitTruths int64
}
