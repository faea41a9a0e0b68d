package solver

import (
	"math"
	"strconv"
)

// The clause arena. All clauses of length > 3, and learnt clauses of length
// 3, live in a single slab of uint32 words and are designated by stable
// integer handles (CRef). Binary clauses and original ternary clauses are
// inlined in the watch lists and never enter the arena; learnt ternary
// clauses are not inlined. Handles survive compaction through a remap pass driven by the
// solver, which knows every place a CRef can hide (clause lists, watch
// lists, reasons).

// A CRef is a handle to a clause stored in the arena.
type CRef uint32

// CRefUndef is the null clause reference.
const CRefUndef = CRef(0xFFFFFFFF)

const (
	hdrWords = 3 // flags+size, activity, glue

	learntMask    = uint32(1) << 31
	protectedMask = uint32(1) << 30
	deadMask      = uint32(1) << 29
	sizeMask      = uint32(1)<<29 - 1

	// maxGlueBits bounds the MaxGlue setting accepted by Validate.
	maxGlueBits = 28
)

type arena struct {
	words  []uint32
	wasted uint32 // Words held by freed clauses, reclaimed at compaction.
}

func newArena(capWords int) *arena {
	return &arena{words: make([]uint32, 0, capWords)}
}

// alloc stores a new clause and returns its handle.
func (a *arena) alloc(lits []Lit, learnt bool) CRef {
	ref := CRef(len(a.words))
	hdr := uint32(len(lits))
	if learnt {
		hdr |= learntMask
	}
	a.words = append(a.words, hdr, 0, 0)
	for _, l := range lits {
		a.words = append(a.words, uint32(l))
	}
	return ref
}

// free marks the clause as dead. The words are reclaimed at the next
// compaction.
func (a *arena) free(ref CRef) {
	a.words[ref] |= deadMask
	a.wasted += uint32(hdrWords) + a.words[ref]&sizeMask
}

func (a *arena) isDead(ref CRef) bool {
	return a.words[ref]&deadMask != 0
}

// shrinkBy records words lost when a clause is shrunk in place.
func (a *arena) shrinkBy(n int) {
	a.wasted += uint32(n)
}

// needsCompact is true when more than a third of the arena is dead weight.
func (a *arena) needsCompact() bool {
	return len(a.words) > 0 && a.wasted*3 > uint32(len(a.words))
}

// compact rewrites the arena without its dead clauses and returns the
// mapping from old to new handles for every surviving clause. The caller
// must remap every stored CRef afterwards.
func (a *arena) compact() map[CRef]CRef {
	remap := make(map[CRef]CRef)
	words := make([]uint32, 0, len(a.words)-int(a.wasted))
	off := CRef(0)
	for int(off) < len(a.words) {
		hdr := a.words[off]
		sz := hdr & sizeMask
		if hdr&deadMask == 0 {
			remap[off] = CRef(len(words))
			words = append(words, a.words[off:off+CRef(hdrWords)+CRef(sz)]...)
		}
		off += CRef(hdrWords) + CRef(sz)
	}
	a.words = words
	a.wasted = 0
	return remap
}

// A Clause is a view over an arena-stored clause.
type Clause struct {
	ar  *arena
	ref CRef
}

func (a *arena) clause(ref CRef) Clause {
	return Clause{ar: a, ref: ref}
}

// Len returns the nb of lits in the clause.
func (c Clause) Len() int {
	return int(c.ar.words[c.ref] & sizeMask)
}

// Get returns the ith literal from the clause.
func (c Clause) Get(i int) Lit {
	return Lit(c.ar.words[int(c.ref)+hdrWords+i])
}

// Set sets the ith literal of the clause.
func (c Clause) Set(i int, l Lit) {
	c.ar.words[int(c.ref)+hdrWords+i] = uint32(l)
}

func (c Clause) swap(i, j int) {
	base := int(c.ref) + hdrWords
	c.ar.words[base+i], c.ar.words[base+j] = c.ar.words[base+j], c.ar.words[base+i]
}

// Learnt returns true iff c was learned during search.
func (c Clause) Learnt() bool {
	return c.ar.words[c.ref]&learntMask != 0
}

// Protected reports whether the clause is protected from deletion.
func (c Clause) Protected() bool {
	return c.ar.words[c.ref]&protectedMask != 0
}

func (c Clause) setProtected(p bool) {
	if p {
		c.ar.words[c.ref] |= protectedMask
	} else {
		c.ar.words[c.ref] &^= protectedMask
	}
}

func (c Clause) activity() float32 {
	return math.Float32frombits(c.ar.words[c.ref+1])
}

func (c Clause) setActivity(act float32) {
	c.ar.words[c.ref+1] = math.Float32bits(act)
}

func (c Clause) glue() int {
	return int(c.ar.words[c.ref+2])
}

func (c Clause) setGlue(glue int) {
	c.ar.words[c.ref+2] = uint32(glue)
}

// Shrink removes all lits starting from position newLen.
func (c Clause) Shrink(newLen int) {
	old := c.Len()
	if newLen >= old {
		return
	}
	c.ar.words[c.ref] = c.ar.words[c.ref]&^sizeMask | uint32(newLen)
	c.ar.shrinkBy(old - newLen)
}

// CNF returns a DIMACS representation of the clause.
func (c Clause) CNF() string {
	res := ""
	for i := 0; i < c.Len(); i++ {
		res += strconv.Itoa(int(c.Get(i).Int())) + " "
	}
	return res + "0"
}
