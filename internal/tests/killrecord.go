package tests

import "slices"

// KillRecord maps every test case to the candidates it kills.
//
// Candidates are identified by their index into Candidates. Outcomes[i][j] is the
// outcome of candidate j on Cases[i]; Kills[i] lists, in ascending order, the
// candidates whose outcome on Cases[i] differs from the reference outcome.
type KillRecord struct {
	Cases      []*TestCase
	Candidates []string
	Outcomes   [][]Outcome
	Kills      [][]int
}

// NewKillRecord allocates a record with one write-once outcome slot per
// (case, candidate) pair.
func NewKillRecord(cases []*TestCase, candidates []string) *KillRecord {
	outcomes := make([][]Outcome, len(cases))
	for i := range outcomes {
		outcomes[i] = make([]Outcome, len(candidates))
	}
	return &KillRecord{
		Cases:      cases,
		Candidates: candidates,
		Outcomes:   outcomes,
		Kills:      make([][]int, len(cases)),
	}
}

// Classify fills Kills by comparing every recorded outcome against the expected
// outcome attached to its test case. Cases without an expected outcome kill nobody.
func (k *KillRecord) Classify(cfg ComparisonConfig) {
	for i, tc := range k.Cases {
		k.Kills[i] = nil
		if tc.Expected == nil {
			continue
		}
		for j := range k.Candidates {
			if ok, _ := Compare(*tc.Expected, k.Outcomes[i][j], cfg); !ok {
				k.Kills[i] = append(k.Kills[i], j)
			}
		}
	}
}

// Killed returns the union of all kill sets, in ascending candidate order.
func (k *KillRecord) Killed() []int {
	seen := make([]bool, len(k.Candidates))
	for _, ks := range k.Kills {
		for _, c := range ks {
			seen[c] = true
		}
	}
	var out []int
	for c, ok := range seen {
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// Survivors returns the names of candidates no test case kills.
func (k *KillRecord) Survivors() []string {
	killed := k.Killed()
	var out []string
	for c, name := range k.Candidates {
		if !slices.Contains(killed, c) {
			out = append(out, name)
		}
	}
	return out
}

// KilledBy returns the indices of test cases that kill candidate c.
func (k *KillRecord) KilledBy(c int) []int {
	var out []int
	for i, ks := range k.Kills {
		if slices.Contains(ks, c) {
			out = append(out, i)
		}
	}
	return out
}

// Names returns the candidate names for a kill set.
func (k *KillRecord) Names(kills []int) []string {
	out := make([]string, len(kills))
	for i, c := range kills {
		out[i] = k.Candidates[c]
	}
	return out
}
