package solver

import "sort"

// findMatrixComponents splits the XOR clauses into groups sharing
// variables, one future matrix per group. Groups outside the configured
// row bounds are dropped (their XORs are still propagated by the watch
// scheme), and at most MaxNumMatrixes groups are kept, largest first.
// With NoMatrixFind, all XORs go into one big matrix.
func findMatrixComponents(xors []XorClause, conf GaussConf) [][]int {
	if len(xors) == 0 {
		return nil
	}
	var groups [][]int
	if conf.NoMatrixFind {
		all := make([]int, len(xors))
		for i := range all {
			all[i] = i
		}
		groups = [][]int{all}
	} else {
		parent := make(map[Var]Var)
		var find func(v Var) Var
		find = func(v Var) Var {
			p, ok := parent[v]
			if !ok || p == v {
				parent[v] = v
				return v
			}
			root := find(p)
			parent[v] = root
			return root
		}
		for _, x := range xors {
			for _, v := range x.vars[1:] {
				parent[find(v)] = find(x.vars[0])
			}
		}
		byRoot := make(map[Var][]int)
		for i, x := range xors {
			if len(x.vars) == 0 {
				continue
			}
			root := find(x.vars[0])
			byRoot[root] = append(byRoot[root], i)
		}
		roots := make([]Var, 0, len(byRoot))
		for root := range byRoot {
			roots = append(roots, root)
		}
		sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
		for _, root := range roots {
			groups = append(groups, byRoot[root])
		}
	}
	kept := groups[:0]
	for _, g := range groups {
		if len(g) < conf.MinMatrixRows || len(g) > conf.MaxMatrixRows {
			continue
		}
		kept = append(kept, g)
	}
	sort.SliceStable(kept, func(i, j int) bool { return len(kept[i]) > len(kept[j]) })
	if conf.MaxNumMatrixes > 0 && len(kept) > conf.MaxNumMatrixes {
		kept = kept[:conf.MaxNumMatrixes]
	}
	return kept
}

// sortVarsByOcc orders columns by decreasing occurrence count, ties broken
// by variable index for determinism.
func sortVarsByOcc(vars []Var, occ map[Var]int) {
	sort.Slice(vars, func(i, j int) bool {
		if occ[vars[i]] != occ[vars[j]] {
			return occ[vars[i]] > occ[vars[j]]
		}
		return vars[i] < vars[j]
	})
}
