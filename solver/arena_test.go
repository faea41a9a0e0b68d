package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mkLits(ints ...int32) []Lit {
	lits := make([]Lit, len(ints))
	for i, v := range ints {
		lits[i] = IntToLit(v)
	}
	return lits
}

func TestArenaAllocAndRead(t *testing.T) {
	a := newArena(0)
	ref := a.alloc(mkLits(1, -2, 3, 4), false)
	c := a.clause(ref)
	require.Equal(t, 4, c.Len())
	require.Equal(t, IntToLit(1), c.Get(0))
	require.Equal(t, IntToLit(-2), c.Get(1))
	require.False(t, c.Learnt())

	learnt := a.alloc(mkLits(-1, -3, 4, 5), true)
	lc := a.clause(learnt)
	require.True(t, lc.Learnt())
	lc.setGlue(3)
	require.Equal(t, 3, lc.glue())
	lc.setActivity(1.5)
	require.InDelta(t, 1.5, float64(lc.activity()), 1e-9)
	lc.setProtected(true)
	require.True(t, lc.Protected())
}

func TestArenaShrink(t *testing.T) {
	a := newArena(0)
	ref := a.alloc(mkLits(1, 2, 3, 4, 5), true)
	c := a.clause(ref)
	c.Shrink(4)
	require.Equal(t, 4, c.Len())
	require.Equal(t, uint32(1), a.wasted)
}

func TestArenaCompact(t *testing.T) {
	a := newArena(0)
	r1 := a.alloc(mkLits(1, 2, 3, 4), false)
	r2 := a.alloc(mkLits(-1, -2, -3, -4), true)
	r3 := a.alloc(mkLits(2, 3, 4, 5), false)
	a.free(r2)
	require.True(t, a.isDead(r2))

	remap := a.compact()
	require.Contains(t, remap, r1)
	require.Contains(t, remap, r3)
	require.NotContains(t, remap, r2)
	require.Zero(t, a.wasted)

	c1 := a.clause(remap[r1])
	require.Equal(t, 4, c1.Len())
	require.Equal(t, IntToLit(1), c1.Get(0))
	c3 := a.clause(remap[r3])
	require.Equal(t, IntToLit(5), c3.Get(3))
}

func TestGarbageCollectDuringSearch(t *testing.T) {
	// Many conflicts with an aggressive reduction cadence exercise the
	// free/compact/remap path; the result must stay correct.
	conf := DefaultConf()
	pb := parseString(t, php(5, 4))
	s := New(pb, conf)
	s.nbMaxLearnts = 20
	require.Equal(t, Unsat, s.Solve())
}
