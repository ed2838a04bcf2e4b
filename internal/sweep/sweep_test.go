package sweep

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidates(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "braces", raw: "{1,3,5}", want: []string{"1", "3", "5"}},
		{name: "plain", raw: "fast, slow", want: []string{"fast", "slow"}},
		{name: "dedupe keeps first", raw: "b,a,b,a", want: []string{"b", "a"}},
		{name: "blank items dropped", raw: " , x ,, ", want: []string{"x"}},
		{name: "empty", raw: "", want: []string{""}},
		{name: "empty braces", raw: "{}", want: []string{""}},
		{name: "only commas", raw: ",,,", want: []string{""}},
		{name: "unbalanced brace kept", raw: "{1,2", want: []string{"{1", "2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCandidates(tc.raw)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseCandidates(%q) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestCombinations_CountIsProductOfCandidates(t *testing.T) {
	s := New()
	s.Add("alpha", "{1,2,3}")
	s.Add("beta", "x,y")
	s.Add("gamma", "")
	s.Add("delta", "{p,q}")

	combos := s.Combinations()
	require.Len(t, combos, 3*2*1*2)
	assert.Equal(t, s.Count(), len(combos))

	seen := make(map[string]bool)
	for _, c := range combos {
		name := c.CanonicalName()
		assert.False(t, seen[name], "duplicate canonical name %q", name)
		seen[name] = true
	}
}

func TestCombinations_RightmostFastest(t *testing.T) {
	s := New()
	s.Add("a", "{1,2}")
	s.Add("b", "{x,y}")

	var names []string
	for _, c := range s.Combinations() {
		names = append(names, c.CanonicalName())
	}

	want := []string{"a-1_b-x", "a-1_b-y", "a-2_b-x", "a-2_b-y"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("combination order mismatch (-want +got):\n%s", diff)
	}
}

func TestCombination_ArgumentsAndName(t *testing.T) {
	s := New()
	s.Add("retries", "{1,3}")
	s.Add("seed", "")
	s.Add("mode", "fast")

	combos := s.Combinations()
	require.Len(t, combos, 2)

	assert.Equal(t, []string{"retries=1", "mode=fast"}, combos[0].Arguments())
	assert.Equal(t, "retries-1_mode-fast", combos[0].CanonicalName())
	assert.Equal(t, []string{"retries=3", "mode=fast"}, combos[1].Arguments())
}

func TestCombination_NoArgs(t *testing.T) {
	t.Run("no parameters", func(t *testing.T) {
		combos := New().Combinations()
		require.Len(t, combos, 1)
		assert.Equal(t, NoArgsName, combos[0].CanonicalName())
		assert.Empty(t, combos[0].Arguments())
	})

	t.Run("only sentinel values", func(t *testing.T) {
		s := New()
		s.Add("a", "")
		s.Add("b", "{}")
		combos := s.Combinations()
		require.Len(t, combos, 1)
		assert.Equal(t, NoArgsName, combos[0].CanonicalName())
	})
}

func TestCanonicalName_IsDeterministic(t *testing.T) {
	build := func() []Combination {
		s := New()
		s.Add("k", "{2,4,8}")
		s.Add("tau", "0.5,0.9")
		return s.Combinations()
	}

	first, second := build(), build()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].CanonicalName(), second[i].CanonicalName())
		assert.Equal(t, first[i].Arguments(), second[i].Arguments())
	}
}

func TestAdd_SameNameExtendsAndDedupes(t *testing.T) {
	s := New()
	s.Add("retries", "1,3")
	s.Add("retries", "{3,5}")

	params := s.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, []string{"1", "3", "5"}, params[0].Candidates)
}

func TestCheckNames(t *testing.T) {
	t.Run("valid sweep", func(t *testing.T) {
		s := New()
		s.Add("retries", "1,3")
		require.NoError(t, CheckNames(s.Combinations()))
	})

	t.Run("collision through joining characters", func(t *testing.T) {
		combos := []Combination{
			{Selections: []Selection{{Name: "a", Value: "1_b-2"}, {Name: "b", Value: ""}}},
			{Selections: []Selection{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}},
		}
		err := CheckNames(combos)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNameCollision))
	})

	t.Run("path separator", func(t *testing.T) {
		s := New()
		s.Add("out", "../etc")
		err := CheckNames(s.Combinations())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsafeName))
	})
}
