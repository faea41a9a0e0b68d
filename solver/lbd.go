package solver

const (
	nbMaxRecent     = 50  // How many recent glue values we consider.
	triggerRestartK = 0.8 // Dynamic restarts fire when recent glues degrade past this ratio.
)

// lbdStats tracks the evolution of learnt-clause glues: a global average
// since the beginning of the search, a short moving window of recent
// values, and enough accumulators to compute the glue variance used by the
// auto restart mode.
type lbdStats struct {
	totalNb    int64            // Total number of values considered.
	totalSum   int64            // Sum of all glues so far.
	totalSumSq float64          // Sum of squared glues, for the variance.
	nbRecent   int              // Nb of values useful in recentVals.
	recentVals [nbMaxRecent]int // Last glue values.
	ptr        int              // Current index of oldest value in recentVals.
	recentAvg  float64          // Average glue for recentVals.
}

// mustRestart is true iff recent glues are much worse on average than the
// average of all glues.
func (l *lbdStats) mustRestart() bool {
	if l.nbRecent < nbMaxRecent {
		return false
	}
	return l.recentAvg*triggerRestartK > float64(l.totalSum)/float64(l.totalNb)
}

// add adds information about a recent learnt clause's glue.
func (l *lbdStats) add(glue int) {
	l.totalNb++
	l.totalSum += int64(glue)
	l.totalSumSq += float64(glue) * float64(glue)
	if l.nbRecent < nbMaxRecent {
		l.recentVals[l.nbRecent] = glue
		oldNb := float64(l.nbRecent)
		newNb := float64(l.nbRecent + 1)
		l.recentAvg = (l.recentAvg*oldNb)/newNb + float64(glue)/newNb
		l.nbRecent++
	} else {
		oldVal := l.recentVals[l.ptr]
		l.recentVals[l.ptr] = glue
		l.ptr++
		if l.ptr == nbMaxRecent {
			l.ptr = 0
		}
		l.recentAvg = l.recentAvg - float64(oldVal)/nbMaxRecent + float64(glue)/nbMaxRecent
	}
}

// variance returns the variance of all glues seen so far.
func (l *lbdStats) variance() float64 {
	if l.totalNb == 0 {
		return 0
	}
	mean := float64(l.totalSum) / float64(l.totalNb)
	return l.totalSumSq/float64(l.totalNb) - mean*mean
}

// clear clears the recent window. It should be called after a restart.
func (l *lbdStats) clear() {
	l.ptr = 0
	l.nbRecent = 0
	l.recentAvg = 0.0
}
