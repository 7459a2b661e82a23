// Package concise selects a small subset of test cases that kills every candidate
// the full base set kills.
package concise

import (
	"fmt"
	"slices"

	"github.com/AndreyAkinshin/diffgen/internal/tests"
)

// Result is the concise test set.
type Result struct {
	// Indices into the kill record's cases, in selection order.
	Indices []int
	Cases   []*tests.TestCase

	// Covered lists the killed candidates in ascending order; Survivors names
	// the candidates no test case kills.
	Covered   []int
	Survivors []string
}

// Generate selects the concise set for a classified kill record.
func Generate(record *tests.KillRecord) *Result {
	idx := SetCover(record.Kills)
	cases := make([]*tests.TestCase, len(idx))
	for i, j := range idx {
		cases[i] = record.Cases[j]
	}
	return &Result{
		Indices:   idx,
		Cases:     cases,
		Covered:   record.Killed(),
		Survivors: record.Survivors(),
	}
}

// SetCover picks test cases greedily: each step takes the case that kills the
// most not yet covered candidates, preferring the lowest index on ties, until
// nothing more can be covered. Cases with empty kill sets are never picked.
//
// A reverse pass then drops every pick whose kills are all covered by the
// remaining picks, so removing any returned case loses some candidate.
func SetCover(kills [][]int) []int {
	uncovered := make(map[int]bool)
	for _, ks := range kills {
		for _, c := range ks {
			uncovered[c] = true
		}
	}

	var picked []int
	for len(uncovered) > 0 {
		best, bestGain := -1, 0
		for i, ks := range kills {
			gain := 0
			for _, c := range ks {
				if uncovered[c] {
					gain++
				}
			}
			if gain > bestGain {
				best, bestGain = i, gain
			}
		}
		if best < 0 {
			break
		}
		picked = append(picked, best)
		for _, c := range kills[best] {
			delete(uncovered, c)
		}
	}

	return pruneRedundant(kills, picked)
}

func pruneRedundant(kills [][]int, picked []int) []int {
	coverage := make(map[int]int)
	for _, i := range picked {
		for _, c := range uniqueKills(kills[i]) {
			coverage[c]++
		}
	}

	keep := make([]bool, len(picked))
	for p := len(picked) - 1; p >= 0; p-- {
		ks := uniqueKills(kills[picked[p]])
		redundant := true
		for _, c := range ks {
			if coverage[c] < 2 {
				redundant = false
				break
			}
		}
		if redundant {
			for _, c := range ks {
				coverage[c]--
			}
			continue
		}
		keep[p] = true
	}

	out := make([]int, 0, len(picked))
	for p, i := range picked {
		if keep[p] {
			out = append(out, i)
		}
	}
	return out
}

func uniqueKills(ks []int) []int {
	out := slices.Clone(ks)
	slices.Sort(out)
	return slices.Compact(out)
}

// Verify checks that selected covers every candidate that kills covers, and
// that no selected case is redundant.
func Verify(kills [][]int, selected []int) error {
	want := union(kills, allIndices(len(kills)))
	got := union(kills, selected)
	if !slices.Equal(want, got) {
		return fmt.Errorf("concise set covers candidates %v, base set covers %v", got, want)
	}
	for p, i := range selected {
		rest := slices.Delete(slices.Clone(selected), p, p+1)
		if slices.Equal(union(kills, rest), want) {
			return fmt.Errorf("test case %d is redundant", i)
		}
	}
	return nil
}

// union returns the sorted union of kills over the given case indices.
func union(kills [][]int, indices []int) []int {
	var out []int
	for _, i := range indices {
		out = append(out, kills[i]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
