package envfile

import (
	"reflect"
	"testing"
)

func TestCompareScenario(t *testing.T) {
	local := map[string]string{"PORT": "3000", "DEBUG": "true"}
	remote := map[string]string{"PORT": "4000", "NEW_KEY": "x"}

	result := Compare(local, remote)

	wantAdded := []Pair{{Key: "NEW_KEY", Value: "x"}}
	if !reflect.DeepEqual(result.Added, wantAdded) {
		t.Errorf("Added = %v, want %v", result.Added, wantAdded)
	}

	wantRemoved := []Pair{{Key: "DEBUG", Value: "true"}}
	if !reflect.DeepEqual(result.Removed, wantRemoved) {
		t.Errorf("Removed = %v, want %v", result.Removed, wantRemoved)
	}

	wantChanged := []Change{{Key: "PORT", Local: "3000", Remote: "4000"}}
	if !reflect.DeepEqual(result.Changed, wantChanged) {
		t.Errorf("Changed = %v, want %v", result.Changed, wantChanged)
	}

	if result.Unchanged != 0 {
		t.Errorf("Unchanged = %d, want 0", result.Unchanged)
	}
	if result.Empty() {
		t.Error("Empty() = true for a differing pair")
	}
}

func TestCompareIdentical(t *testing.T) {
	side := map[string]string{"A": "1", "B": "2", "C": "3"}

	result := Compare(side, side)

	if !result.Empty() {
		t.Errorf("Empty() = false: %+v", result)
	}
	if result.Unchanged != 3 {
		t.Errorf("Unchanged = %d, want 3", result.Unchanged)
	}
}

func TestCompareEmptySides(t *testing.T) {
	if result := Compare(nil, nil); !result.Empty() || result.Unchanged != 0 {
		t.Errorf("Compare(nil, nil) = %+v", result)
	}

	result := Compare(nil, map[string]string{"A": "1"})
	if len(result.Added) != 1 || len(result.Removed) != 0 {
		t.Errorf("Compare(nil, remote) = %+v", result)
	}

	result = Compare(map[string]string{"A": "1"}, nil)
	if len(result.Removed) != 1 || len(result.Added) != 0 {
		t.Errorf("Compare(local, nil) = %+v", result)
	}
}

func TestComparePartitionsEveryKeyOnce(t *testing.T) {
	local := map[string]string{
		"SHARED_SAME": "x", "SHARED_DIFF": "a", "LOCAL_ONLY": "l",
		"ANOTHER_SAME": "y", "SECOND_DIFF": "p",
	}
	remote := map[string]string{
		"SHARED_SAME": "x", "SHARED_DIFF": "b", "REMOTE_ONLY": "r",
		"ANOTHER_SAME": "y", "SECOND_DIFF": "q",
	}

	result := Compare(local, remote)

	union := make(map[string]bool)
	for key := range local {
		union[key] = true
	}
	for key := range remote {
		union[key] = true
	}

	counted := len(result.Added) + len(result.Removed) + len(result.Changed) + result.Unchanged
	if counted != len(union) {
		t.Errorf("categories cover %d keys, union has %d", counted, len(union))
	}

	seen := make(map[string]int)
	for _, p := range result.Added {
		seen[p.Key]++
	}
	for _, p := range result.Removed {
		seen[p.Key]++
	}
	for _, c := range result.Changed {
		seen[c.Key]++
	}
	for key, n := range seen {
		if n != 1 {
			t.Errorf("key %q appears %d times across categories", key, n)
		}
		if !union[key] {
			t.Errorf("key %q not in the union", key)
		}
	}
}

func TestCompareSortedOutput(t *testing.T) {
	local := map[string]string{"B": "1", "A": "1", "D": "old"}
	remote := map[string]string{"C": "2", "E": "2", "D": "new"}

	result := Compare(local, remote)

	if result.Added[0].Key != "C" || result.Added[1].Key != "E" {
		t.Errorf("Added not sorted: %v", result.Added)
	}
	if result.Removed[0].Key != "A" || result.Removed[1].Key != "B" {
		t.Errorf("Removed not sorted: %v", result.Removed)
	}
}
