package solver

const (
	lubyBase        = 100  // Conflicts per Luby unit for static restarts.
	autoSampleConfl = 1000 // Conflicts sampled before auto commits to a strategy.
	autoVarianceK   = 6.0  // Glue variance above which auto picks dynamic restarts.
)

// restartPolicy decides when the search should restart. The three modes of
// operation are encoded as a committed RestartType plus, for the auto mode,
// a probing phase during which glues are only sampled.
type restartPolicy struct {
	configured RestartType
	committed  RestartType // Meaningful once probing is false.
	probing    bool

	glues       lbdStats
	nbConflicts int64 // Conflicts since the last restart.
	lubyIdx     uint
	staticLimit int64
}

func newRestartPolicy(kind RestartType) *restartPolicy {
	p := &restartPolicy{
		configured: kind,
		committed:  kind,
		probing:    kind == AutoRestart,
		lubyIdx:    1,
	}
	p.staticLimit = int64(luby(p.lubyIdx)) * lubyBase
	return p
}

// onConflict records a conflict and the glue of the clause it produced.
func (p *restartPolicy) onConflict(glue int) {
	p.nbConflicts++
	p.glues.add(glue)
	if p.probing && p.glues.totalNb >= autoSampleConfl {
		p.probing = false
		if p.glues.variance() > autoVarianceK {
			p.committed = DynamicRestart
		} else {
			p.committed = StaticRestart
		}
	}
}

// shouldRestart is consulted after each conflict has been analyzed and the
// learnt clause installed.
func (p *restartPolicy) shouldRestart() bool {
	if p.probing {
		// While probing, fall back to the static schedule.
		return p.nbConflicts >= p.staticLimit
	}
	switch p.committed {
	case StaticRestart:
		return p.nbConflicts >= p.staticLimit
	case DynamicRestart:
		return p.glues.mustRestart()
	}
	return false
}

// onRestart resets the per-restart state and advances the Luby schedule.
func (p *restartPolicy) onRestart() {
	p.nbConflicts = 0
	p.lubyIdx++
	p.staticLimit = int64(luby(p.lubyIdx)) * lubyBase
	p.glues.clear()
}

// kind returns the strategy currently in force.
func (p *restartPolicy) kind() RestartType {
	if p.probing {
		return AutoRestart
	}
	return p.committed
}

// fullRestart resets the search to a pristine level-0 state: polarity
// biases are dropped, the glue window is cleared and temporarily disabled
// features are re-enabled. Triggered on policy boundaries, typically
// around a simplification episode.
func (s *Solver) fullRestart() {
	s.cancelUntil(0)
	s.restart.glues.clear()
	copy(s.polarity, s.polarity0)
	if s.gauss != nil {
		s.gauss.reenable()
	}
	s.rebuildOrderHeap()
	s.Stats.NbFullRestarts++
}
