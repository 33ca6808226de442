/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package report

// Medal is the decorative marker for the top three ranks.
type Medal int

const (
	MedalNone Medal = iota
	MedalFirst
	MedalSecond
	MedalThird
)

// Pair is one ranked entry. Value is whatever the section sorts on.
type Pair struct {
	Key   string
	Value float64
}

type Placement struct {
	Key   string
	Rank  int
	Medal Medal
}

// Rank assigns 1-based competition ranks to pairs that the caller has already sorted.
// A run of equal values shares the rank of its first member, so [5 5 3] ranks as [1 1 3].
func Rank(pairs []Pair) []Placement {
	out := make([]Placement, 0, len(pairs))
	lastRank := 0
	for i, p := range pairs {
		rank := i + 1
		if i > 0 && p.Value == pairs[i-1].Value {
			rank = lastRank
		}
		lastRank = rank
		out = append(out, Placement{Key: p.Key, Rank: rank, Medal: MedalFor(rank)})
	}
	return out
}

func MedalFor(rank int) Medal {
	switch rank {
	case 1:
		return MedalFirst
	case 2:
		return MedalSecond
	case 3:
		return MedalThird
	default:
		return MedalNone
	}
}
