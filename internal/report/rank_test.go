package report

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func medals(ps []Placement) []Medal {
	out := make([]Medal, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Medal)
	}
	return out
}

func ranks(ps []Placement) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Rank)
	}
	return out
}

func TestRank_TieSharesFirstMedal(t *testing.T) {
	got := Rank([]Pair{{"a", 5}, {"b", 5}, {"c", 3}})
	assert.Equal(t, []Medal{MedalFirst, MedalFirst, MedalThird}, medals(got))
	assert.Equal(t, []int{1, 1, 3}, ranks(got))
}

func TestRank_Cases(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		ranks  []int
	}{
		{"empty", nil, []int{}},
		{"single", []float64{1}, []int{1}},
		{"distinct", []float64{9, 7, 4, 1}, []int{1, 2, 3, 4}},
		{"tie in middle", []float64{9, 7, 7, 1}, []int{1, 2, 2, 4}},
		{"all equal", []float64{2, 2, 2, 2}, []int{1, 1, 1, 1}},
		{"ascending input", []float64{0.5, 1.5, 1.5, 3}, []int{1, 2, 2, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pairs := make([]Pair, 0, len(tc.values))
			for i, v := range tc.values {
				pairs = append(pairs, Pair{Key: string(rune('a' + i)), Value: v})
			}
			assert.Equal(t, tc.ranks, ranks(Rank(pairs)))
		})
	}
}

func TestRank_LongTieChain(t *testing.T) {
	pairs := make([]Pair, 100000)
	for i := range pairs {
		pairs[i] = Pair{Key: "k", Value: 1}
	}
	for _, p := range Rank(pairs) {
		if p.Rank != 1 || p.Medal != MedalFirst {
			t.Fatalf("got rank %d medal %d", p.Rank, p.Medal)
		}
	}
}

func TestMedalFor(t *testing.T) {
	assert.Equal(t, MedalFirst, MedalFor(1))
	assert.Equal(t, MedalSecond, MedalFor(2))
	assert.Equal(t, MedalThird, MedalFor(3))
	assert.Equal(t, MedalNone, MedalFor(4))
	assert.Equal(t, MedalNone, MedalFor(40))
}

func TestRank_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vals := rapid.SliceOfN(rapid.IntRange(0, 5), 0, 30).Draw(t, "values")
		sort.Sort(sort.Reverse(sort.IntSlice(vals)))
		pairs := make([]Pair, len(vals))
		for i, v := range vals {
			pairs[i] = Pair{Key: "k", Value: float64(v)}
		}
		got := Rank(pairs)
		if len(got) != len(pairs) {
			t.Fatalf("len %d != %d", len(got), len(pairs))
		}
		for i, p := range got {
			if p.Rank < 1 || p.Rank > i+1 {
				t.Fatalf("rank %d out of range at %d", p.Rank, i)
			}
			if i > 0 && pairs[i].Value == pairs[i-1].Value && p.Rank != got[i-1].Rank {
				t.Fatalf("tie at %d not shared", i)
			}
			if i > 0 && pairs[i].Value != pairs[i-1].Value && p.Rank != i+1 {
				t.Fatalf("distinct value at %d got rank %d", i, p.Rank)
			}
			if p.Medal != MedalFor(p.Rank) {
				t.Fatalf("medal mismatch at %d", i)
			}
		}
	})
}
