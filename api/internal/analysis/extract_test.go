package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bareJSON = `{"verdict":"Fake","confidence":0.9,"reason":"made up","sources":{"NASA":"https://nasa.gov"}}`

func TestExtractBareJSON(t *testing.T) {
	rec, err := Extract(bareJSON)
	require.NoError(t, err)
	assert.Equal(t, VerdictFake, rec.Verdict)
	assert.Equal(t, 0.9, rec.Confidence)
	assert.Equal(t, "made up", rec.Reason)
	ref, ok := rec.Sources.Get("NASA")
	require.True(t, ok)
	assert.Equal(t, "https://nasa.gov", ref)
}

func TestExtractWrappedReplies(t *testing.T) {
	want, err := Extract(bareJSON)
	require.NoError(t, err)

	wrapped := []string{
		"Here is my analysis:\n" + bareJSON + "\nLet me know if you need more.",
		"```json\n" + bareJSON + "\n```",
		"```\n" + bareJSON + "\n```",
		"text before " + bareJSON + " text after",
	}
	for _, raw := range wrapped {
		rec, err := Extract(raw)
		require.NoError(t, err, "raw: %q", raw)
		assert.Equal(t, want, rec, "raw: %q", raw)
	}
}

func TestExtractFailureNeverPanics(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here at all",
		"only open {",
		"only close }",
		"} out of order {",
		"{ not valid json }",
	} {
		rec, err := Extract(raw)
		assert.Nil(t, rec, "raw: %q", raw)
		assert.ErrorIs(t, err, ErrExtraction, "raw: %q", raw)
	}
}

func TestExtractLenientSchema(t *testing.T) {
	// missing fields stay at zero values, extraction does not validate
	rec, err := Extract(`{"verdict":"Real"}`)
	require.NoError(t, err)
	assert.Equal(t, VerdictReal, rec.Verdict)
	assert.Zero(t, rec.Confidence)
	assert.Empty(t, rec.Reason)
	assert.Empty(t, rec.Sources)
}

func TestSourceOrderPreserved(t *testing.T) {
	rec, err := Extract(`{"sources":{"b":"https://b.example","a":"https://a.example","c":"https://c.example"}}`)
	require.NoError(t, err)
	require.Len(t, rec.Sources, 3)
	assert.Equal(t, "b", rec.Sources[0].Title)
	assert.Equal(t, "a", rec.Sources[1].Title)
	assert.Equal(t, "c", rec.Sources[2].Title)

	out, err := rec.Sources.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":"https://b.example","a":"https://a.example","c":"https://c.example"}`, string(out))
	assert.Equal(t, `{"b":"https://b.example","a":"https://a.example","c":"https://c.example"}`, string(out))
}

func TestSourceNumericRef(t *testing.T) {
	rec, err := Extract(`{"sources":{"Ref":12}}`)
	require.NoError(t, err)
	require.Len(t, rec.Sources, 1)
	assert.Equal(t, "12", rec.Sources[0].Ref)
}
