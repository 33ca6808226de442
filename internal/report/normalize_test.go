package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func node(title, ident, email string, startedAt, completedAt any) map[string]any {
	n := map[string]any{
		"title":       title,
		"identifier":  ident,
		"startedAt":   startedAt,
		"completedAt": completedAt,
	}
	if email == "" {
		n["assignee"] = nil
	} else {
		n["assignee"] = map[string]any{"email": email}
	}
	return n
}

func result(nodes ...map[string]any) map[string]any {
	arr := make([]any, 0, len(nodes))
	for _, n := range nodes {
		arr = append(arr, n)
	}
	return map[string]any{"issues": map[string]any{"nodes": arr}}
}

func TestNormalize_KeepsOrderStartedThenCompleted(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	started := result(
		node("B1", "ENG-2", "b@x.com", "2026-10-10T09:00:00Z", nil),
		node("B2", "ENG-1", "a@x.com", "2026-10-11T09:00:00Z", nil),
	)
	completed := result(
		node("C1", "ENG-9", "c@x.com", "2026-10-14T09:00:00Z", "2026-10-16T09:00:00Z"),
	)

	issues := n.Normalize(started, completed)

	require.Len(t, issues, 3)
	assert.Equal(t, "ENG-2", issues[0].Identifier)
	assert.Equal(t, "ENG-1", issues[1].Identifier)
	assert.Equal(t, "ENG-9", issues[2].Identifier)
	assert.True(t, issues[0].IsOpen())
	require.NotNil(t, issues[2].CompletedAt)
	assert.Equal(t, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), *issues[2].CompletedAt)
}

func TestNormalize_DropsIncompleteNodes(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	good := node("Good", "ENG-1", "a@x.com", "2026-10-10T09:00:00Z", nil)

	cases := map[string]map[string]any{
		"no started":    node("Bad", "ENG-2", "a@x.com", nil, nil),
		"no assignee":   node("Bad", "ENG-2", "", "2026-10-10T09:00:00Z", nil),
		"no title":      node("", "ENG-2", "a@x.com", "2026-10-10T09:00:00Z", nil),
		"no identifier": node("Bad", "", "a@x.com", "2026-10-10T09:00:00Z", nil),
		"bad timestamp": node("Bad", "ENG-2", "a@x.com", "yesterday", nil),
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			issues := n.Normalize(result(good, bad), nil)
			require.Len(t, issues, 1)
			assert.Equal(t, "ENG-1", issues[0].Identifier)
		})
	}
}

func TestNormalize_CompletedSetRequiresCompletedAt(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	completed := result(
		node("Done", "ENG-1", "a@x.com", "2026-10-10T09:00:00Z", "2026-10-12T09:00:00Z"),
		node("Not done", "ENG-2", "a@x.com", "2026-10-10T09:00:00Z", nil),
	)

	issues := n.Normalize(nil, completed)

	require.Len(t, issues, 1)
	assert.Equal(t, "ENG-1", issues[0].Identifier)
}

func TestNormalize_MalformedResultIsEmptyAndReported(t *testing.T) {
	var buf bytes.Buffer
	n := NewNormalizer(zerolog.New(&buf))
	good := result(node("Good", "ENG-1", "a@x.com", "2026-10-10T09:00:00Z", nil))

	shapes := []map[string]any{
		nil,
		{},
		{"issues": "nope"},
		{"issues": map[string]any{"edges": []any{}}},
		{"nodes": map[string]any{}},
	}
	for _, shape := range shapes {
		buf.Reset()
		issues := n.Normalize(good, shape)
		require.Len(t, issues, 1)
		assert.Contains(t, buf.String(), "result has no issue nodes")
		assert.Contains(t, buf.String(), `"set":"completed"`)
	}
}

func TestNormalize_AcceptsTopLevelNodes(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	raw := map[string]any{"nodes": []any{node("T", "ENG-1", "a@x.com", "2026-10-10T09:00:00.123Z", nil)}}

	issues := n.Normalize(raw, nil)

	require.Len(t, issues, 1)
	assert.Equal(t, 123*time.Millisecond, time.Duration(issues[0].StartedAt.Nanosecond()))
}

func TestNormalize_SkipsNonObjectNodes(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	raw := map[string]any{"nodes": []any{"x", 42, nil, node("T", "ENG-1", "a@x.com", "2026-10-10T09:00:00Z", nil)}}
	assert.Len(t, n.Normalize(raw, nil), 1)
}

// Inverted spans are a data-quality condition: the issue is excluded and a warning is logged.
func TestNormalize_InvertedSpanIsExcluded(t *testing.T) {
	var buf bytes.Buffer
	n := NewNormalizer(zerolog.New(&buf))
	completed := result(
		node("Backwards", "ENG-7", "a@x.com", "2026-10-12T09:00:00Z", "2026-10-11T09:00:00Z"),
		node("Instant", "ENG-8", "a@x.com", "2026-10-12T09:00:00Z", "2026-10-12T09:00:00Z"),
	)

	issues := n.Normalize(nil, completed)

	require.Len(t, issues, 1)
	assert.Equal(t, "ENG-8", issues[0].Identifier)
	assert.Contains(t, buf.String(), "completed before started")
	assert.Contains(t, buf.String(), "ENG-7")
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-10-16T09:30:00Z",
		"2026-10-16T09:30:00.000Z",
		"2026-10-16T09:30:00+00:00",
		"2026-10-16T11:30:00+02:00",
		"2026-10-16T09:30:00.000+0000",
	} {
		got := ParseTimestamp(in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}
	assert.Nil(t, ParseTimestamp(nil))
	assert.Nil(t, ParseTimestamp(""))
	assert.Nil(t, ParseTimestamp(12345))
	assert.Nil(t, ParseTimestamp("2026-13-40"))
}

func TestNormalize_NeverPanicsAndNeverGrows(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	values := []any{nil, "", "ENG-1", "2026-10-10T09:00:00Z", "garbage", 7, map[string]any{}, []any{}}

	genNode := rapid.Custom(func(t *rapid.T) any {
		if rapid.IntRange(0, 9).Draw(t, "kind") == 0 {
			return rapid.SampledFrom(values).Draw(t, "junk")
		}
		m := map[string]any{}
		for _, k := range []string{"title", "identifier", "startedAt", "completedAt"} {
			if rapid.Bool().Draw(t, "has_"+k) {
				m[k] = rapid.SampledFrom(values).Draw(t, k)
			}
		}
		if rapid.Bool().Draw(t, "has_assignee") {
			m["assignee"] = map[string]any{"email": rapid.SampledFrom(values).Draw(t, "email")}
		}
		return m
	})
	genResult := func(t *rapid.T, label string) (map[string]any, int) {
		switch rapid.IntRange(0, 3).Draw(t, label+"_shape") {
		case 0:
			return nil, 0
		case 1:
			return map[string]any{"issues": rapid.SampledFrom(values).Draw(t, label+"_junk")}, 0
		default:
			nodes := rapid.SliceOfN(genNode, 0, 20).Draw(t, label+"_nodes")
			return map[string]any{"issues": map[string]any{"nodes": nodes}}, len(nodes)
		}
	}

	rapid.Check(t, func(t *rapid.T) {
		started, ns := genResult(t, "started")
		completed, nc := genResult(t, "completed")
		issues := n.Normalize(started, completed)
		if len(issues) > ns+nc {
			t.Fatalf("normalize produced %d issues from %d nodes", len(issues), ns+nc)
		}
		for _, iss := range issues {
			if iss.StartedAt.IsZero() {
				t.Fatalf("issue %q without startedAt", iss.Identifier)
			}
		}
	})
}

func TestNormalize_KeepsTitleAndIdentifierBytes(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	started := result(
		node("  Fix  spaces ", " ENG-1", "a@x.com", "2026-10-10T09:00:00Z", nil),
		node("   ", "ENG-2", "a@x.com", "2026-10-10T09:00:00Z", nil),
	)

	issues := n.Normalize(started, nil)

	require.Len(t, issues, 1)
	assert.Equal(t, "  Fix  spaces ", issues[0].Title)
	assert.Equal(t, " ENG-1", issues[0].Identifier)
}
