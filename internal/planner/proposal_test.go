package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/planner"
)

func TestParseProposal(t *testing.T) {
	p, err := planner.ParseProposal([]byte(`{"title":" Busan ","plan":{"1":[{"place_name":"A"},{"place_name":" "}],"02":[{"place_name":"B"}],"0":[{"place_name":"Z"}]}}`))

	require.NoError(t, err)
	assert.Equal(t, "Busan", p.Title)
	assert.Equal(t, []string{"A"}, p.Days[1])
	assert.Equal(t, []string{"B"}, p.Days[2])
	_, ok := p.Days[0]
	assert.False(t, ok, "day 0 is not a valid day")
}

func TestParseProposal_Errors(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":    "",
		"not json": "Here is your plan!",
		"no plan":  `{"title":"T"}`,
		"bad plan": `{"plan":"1: A"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := planner.ParseProposal([]byte(raw))
			assert.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

func TestEncodeProposal_RoundTrip(t *testing.T) {
	in := domain.ProposedPlan{Title: "T", Days: map[int][]string{1: {"A", "B"}, 3: {"C"}}}

	raw, err := planner.EncodeProposal(in)
	require.NoError(t, err)
	out, err := planner.ParseProposal(raw)

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"```json{\"a\":1}```":     `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, planner.StripCodeFence(in), "input %q", in)
	}
}
