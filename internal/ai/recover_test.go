package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecover_DirectJSON(t *testing.T) {
	t.Parallel()
	p, err := Recover(`{"request":{},"response":{}}`)
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, p.Request)
	require.Equal(t, map[string]any{}, p.Response)
}

func TestRecover_ValuesPreserved(t *testing.T) {
	t.Parallel()
	p, err := Recover(`{"request":{"name":"bob","age":30},"response":{"id":7}}`)
	require.NoError(t, err)
	req := p.Request.(map[string]any)
	require.Equal(t, "bob", req["name"])
	resp := p.Response.(map[string]any)
	require.EqualValues(t, 7, resp["id"])
}

func TestRecover_TaggedFenceAndBackfill(t *testing.T) {
	t.Parallel()
	p, err := Recover("```json\n{\"request\":{\"x\":1}}\n```")
	require.NoError(t, err)
	req := p.Request.(map[string]any)
	require.EqualValues(t, 1, req["x"])
	require.Equal(t, map[string]any{}, p.Response, "missing response key should be backfilled")
}

func TestRecover_BareFence(t *testing.T) {
	t.Parallel()
	p, err := Recover("```\n{\"response\":{\"ok\":true}}\n```")
	require.NoError(t, err)
	require.Equal(t, map[string]any{}, p.Request)
	resp := p.Response.(map[string]any)
	require.Equal(t, true, resp["ok"])
}

func TestRecover_SurroundingWhitespace(t *testing.T) {
	t.Parallel()
	p, err := Recover("  \n```json\n{\"request\":{},\"response\":{}}\n```  \n")
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestRecover_Unparseable(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"not json at all",
		"```\nstill not json\n```",
		"",
		"null",
	} {
		_, err := Recover(raw)
		require.Error(t, err, "input %q should fail", raw)
		require.ErrorIs(t, err, ErrMalformed)
		var me *MalformedResponseError
		require.ErrorAs(t, err, &me)
		require.Equal(t, raw, me.Raw)
	}
}

func TestRecover_NonObjectJSONFails(t *testing.T) {
	t.Parallel()
	_, err := Recover(`[1, 2, 3]`)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"```json\n{}\n```": "{}",
		"```\n{}\n```":     "{}",
		"{}":               "{}",
		"```{}":            "{}",
		"  {}  ":           "{}",
	}
	for in, want := range cases {
		require.Equal(t, want, stripCodeFence(in), "input %q", in)
	}
}
