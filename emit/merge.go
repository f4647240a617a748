package emit

import (
	"fmt"
	"sort"
)

// drainCluster fully decodes one cluster's partitions and returns the Emit
// values it contributes, in order. A singleton cluster (the common case:
// one statement, no splitting) yields one Emit per row, unmodified. A
// multi-partition cluster shares a non-empty merge alias across every
// partition (see sqlbuild.Options splitting) and is combined by an
// inner join on that alias's decoded value: a join key missing from any
// partition contributes nothing, matching the original unsplit traversal,
// which would never have produced that id pairing either. Partitions are
// read to completion before combining, since SQL's row order within a
// result set carries no cross-statement correlation guarantee (sqlbuild
// attaches no ORDER BY to the join key column).
func drainCluster(cluster []*partition) ([]Emit, error) {
	if len(cluster) == 1 {
		rows, err := drainPartition(cluster[0])
		if err != nil {
			return nil, err
		}
		out := make([]Emit, len(rows))
		for i, r := range rows {
			out[i] = Emit{Path: r.path, Labels: r.labels}
		}
		return out, nil
	}

	decoded := make([][]row, len(cluster))
	for i, p := range cluster {
		rows, err := drainPartition(p)
		if err != nil {
			return nil, fmt.Errorf("emit: partition %d: %w", i, err)
		}
		decoded[i] = rows
	}

	// Index every partition after the first by join key; a key can repeat
	// within a partition (fan-out below the split point), so each key maps
	// to every matching row.
	indexes := make([]map[string][]row, len(cluster)-1)
	for i := 1; i < len(cluster); i++ {
		idx := map[string][]row{}
		for _, r := range decoded[i] {
			idx[r.joinKey] = append(idx[r.joinKey], r)
		}
		indexes[i-1] = idx
	}

	var out []Emit
	for _, base := range decoded[0] {
		combos := [][]row{{base}}
		for _, idx := range indexes {
			matches := idx[base.joinKey]
			if len(matches) == 0 {
				combos = nil
				break
			}
			var next [][]row
			for _, c := range combos {
				for _, m := range matches {
					next = append(next, append(append([]row(nil), c...), m))
				}
			}
			combos = next
		}
		for _, combo := range combos {
			var path []Element
			var labels [][]string
			for _, r := range combo {
				path = append(path, r.path...)
				labels = append(labels, r.labels...)
			}
			out = append(out, Emit{Path: path, Labels: labels})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return firstID(out[i]) < firstID(out[j])
	})
	return out, nil
}

func firstID(e Emit) string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[0].ID
}
