package envfile

import "sort"

// Pair is a key with the value from the side it appears on.
type Pair struct {
	Key   string
	Value string
}

// Change is a key present on both sides with differing values.
type Change struct {
	Key    string
	Local  string
	Remote string
}

// DiffResult partitions the union of local and remote keys into four
// disjoint categories. Every key appears in exactly one.
type DiffResult struct {
	// Added keys exist only in the remote mapping.
	Added []Pair
	// Removed keys exist only in the local mapping.
	Removed []Pair
	// Changed keys exist on both sides with differing values.
	Changed []Change
	// Unchanged counts keys identical on both sides; values are not
	// retained (they are not shown).
	Unchanged int
}

// Empty reports whether the two sides are structurally identical.
func (r *DiffResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// Compare computes the structural difference between a local and a remote
// mapping. Result lists are sorted by key for stable rendering.
func Compare(local, remote map[string]string) *DiffResult {
	result := &DiffResult{}

	for key, remoteValue := range remote {
		localValue, inLocal := local[key]
		switch {
		case !inLocal:
			result.Added = append(result.Added, Pair{Key: key, Value: remoteValue})
		case localValue != remoteValue:
			result.Changed = append(result.Changed, Change{Key: key, Local: localValue, Remote: remoteValue})
		default:
			result.Unchanged++
		}
	}

	for key, localValue := range local {
		if _, inRemote := remote[key]; !inRemote {
			result.Removed = append(result.Removed, Pair{Key: key, Value: localValue})
		}
	}

	sort.Slice(result.Added, func(i, j int) bool { return result.Added[i].Key < result.Added[j].Key })
	sort.Slice(result.Removed, func(i, j int) bool { return result.Removed[i].Key < result.Removed[j].Key })
	sort.Slice(result.Changed, func(i, j int) bool { return result.Changed[i].Key < result.Changed[j].Key })

	return result
}
