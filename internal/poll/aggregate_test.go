package poll

import "testing"

func TestApplyIncrementsKnownOption(t *testing.T) {
	p := &Poll{Data: []string{"A", "B"}}

	if !p.Apply("A") {
		t.Fatal("Apply returned false for known option")
	}
	if p.Votes["A"] != 1 {
		t.Fatalf("votes[A] = %d, want 1", p.Votes["A"])
	}

	if !p.Apply("A") {
		t.Fatal("Apply returned false on second increment")
	}
	if p.Votes["A"] != 2 {
		t.Fatalf("votes[A] = %d, want 2", p.Votes["A"])
	}
}

func TestApplyIgnoresUnknownOption(t *testing.T) {
	p := &Poll{
		Data:  []string{"A", "B"},
		Votes: map[string]int{"A": 1},
	}

	if p.Apply("C") {
		t.Fatal("Apply returned true for unknown option")
	}
	if len(p.Votes) != 1 || p.Votes["A"] != 1 {
		t.Fatalf("votes changed: %#v", p.Votes)
	}
}

func TestSortedTalliesDescendingStable(t *testing.T) {
	p := &Poll{
		Data:  []string{"A", "B", "C"},
		Votes: map[string]int{"A": 2, "B": 5, "C": 2},
	}

	entries := p.SortedTallies()
	want := []TallyEntry{
		{Option: "B", Count: 5},
		{Option: "A", Count: 2},
		{Option: "C", Count: 2},
	}
	if len(entries) != len(want) {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	for i, e := range want {
		if entries[i] != e {
			t.Fatalf("entries[%d] = %+v, want %+v", i, entries[i], e)
		}
	}
}

func TestSortedTalliesWithoutVotes(t *testing.T) {
	p := &Poll{Data: []string{"A", "B"}}

	entries := p.SortedTallies()
	if len(entries) != 2 {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	if entries[0].Option != "A" || entries[0].Count != 0 {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if entries[1].Option != "B" || entries[1].Count != 0 {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
}

func TestTotalVotes(t *testing.T) {
	p := &Poll{
		Data:  []string{"A", "B", "C"},
		Votes: map[string]int{"A": 2, "B": 5},
	}
	if got := p.TotalVotes(); got != 7 {
		t.Fatalf("TotalVotes = %d, want 7", got)
	}
}

func TestNormalizeOptionsPreservesOrder(t *testing.T) {
	got := NormalizeOptions([]string{" B ", "A", "B", "", "A", "C"})
	want := []string{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("unexpected options: %#v", got)
	}
	for i, opt := range want {
		if got[i] != opt {
			t.Fatalf("options[%d] = %q, want %q", i, got[i], opt)
		}
	}
}
