package mock

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/api"
	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

type stubAdvisor struct {
	answer  string
	err     error
	queries []string
}

func (a *stubAdvisor) Complete(ctx context.Context, query string) (string, error) {
	a.queries = append(a.queries, query)
	return a.answer, a.err
}

func newTestServer(t *testing.T, advisor Advisor) (*httptest.Server, *SQLiteStore) {
	t.Helper()
	store := newTestStore(t)
	srv := httptest.NewServer(NewServer(Options{Store: store, Advisor: advisor}).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func postForm(t *testing.T, base, path string, form url.Values) (*http.Response, gjson.Result) {
	t.Helper()
	resp, err := http.PostForm(base+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data), "body %q", data)
	return resp, gjson.ParseBytes(data)
}

func TestAnalyze_RecordsAndCharts(t *testing.T) {
	srv, store := newTestServer(t, nil)

	resp, body := postForm(t, srv.URL, "/analyze", url.Values{"query": {"status of missions"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `["Apollo 11","Mars Rover","Hubble Telescope"]`, body.Get("result").Raw)
	assert.False(t, body.Get("chart").Exists())

	resp, body = postForm(t, srv.URL, "/analyze", url.Values{"mission": {"anything"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Get("result").IsArray())
	chart := body.Get("chart")
	require.Equal(t, gjson.String, chart.Type, "chart is sent as a JSON string")
	assert.True(t, gjson.Valid(chart.Str))

	entries, err := store.Page(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "anything", entries[0].Query)
	assert.NotEmpty(t, entries[0].RequestID)
}

func TestAnalyze_MissingQuery(t *testing.T) {
	srv, store := newTestServer(t, nil)

	for _, path := range []string{"/analyze", "/advanced_analyze"} {
		resp, body := postForm(t, srv.URL, path, url.Values{"query": {"   "}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.Equal(t, "Query is required", body.Get("error").String(), path)
	}

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdvancedAnalyze(t *testing.T) {
	t.Run("unavailable without advisor", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp, body := postForm(t, srv.URL, "/advanced_analyze", url.Values{"query": {"Europa"}})
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "Advanced analysis is not available", body.Get("error").String())
	})

	t.Run("answers with text", func(t *testing.T) {
		advisor := &stubAdvisor{answer: "Europa has a subsurface ocean."}
		srv, store := newTestServer(t, advisor)

		resp, body := postForm(t, srv.URL, "/advanced_analyze", url.Values{"query": {"Europa"}})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Europa has a subsurface ocean.", body.Get("result").String())
		assert.Equal(t, []string{"Europa"}, advisor.queries)

		entries, err := store.Page(context.Background(), 1, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].Advanced)
	})

	t.Run("advisor failure", func(t *testing.T) {
		srv, _ := newTestServer(t, &stubAdvisor{err: errors.New("rate limited")})
		resp, body := postForm(t, srv.URL, "/advanced_analyze", url.Values{"query": {"Europa"}})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, body.Get("error").String(), "rate limited")
	})
}

func TestHistory_Params(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		query      string
		wantStatus int
	}{
		{query: "", wantStatus: http.StatusOK},
		{query: "?page=2&per_page=10", wantStatus: http.StatusOK},
		{query: "?page=0", wantStatus: http.StatusBadRequest},
		{query: "?page=abc", wantStatus: http.StatusBadRequest},
		{query: "?per_page=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + "/history" + tt.query)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tt.wantStatus, resp.StatusCode, "query %q", tt.query)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, &stubAdvisor{answer: "Webb sees far."})

	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := client.Analyze(ctx, types.AnalysisRequest{Query: "all data"})
	require.NoError(t, err)
	assert.Equal(t, types.ResultSequence, resp.Result.Kind)
	assert.Len(t, resp.Result.Sequence, 3)
	assert.True(t, resp.HasChart())

	resp, err = client.Analyze(ctx, types.AnalysisRequest{Query: "Webb", Advanced: true})
	require.NoError(t, err)
	assert.Equal(t, types.ResultText, resp.Result.Kind)
	assert.Equal(t, "Webb sees far.", resp.Result.Text)

	missionClient, err := api.New(api.Options{BaseURL: srv.URL, Field: api.FieldMission})
	require.NoError(t, err)
	_, err = missionClient.Analyze(ctx, types.AnalysisRequest{Query: "year"})
	require.NoError(t, err)

	entries, err := client.History(ctx, 1, types.ItemsPerPage)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "year", entries[0].Query)
	assert.Equal(t, "Webb", entries[1].Query)
	assert.Equal(t, "all data", entries[2].Query)

	_, err = client.Analyze(ctx, types.AnalysisRequest{Query: "  "})
	require.Error(t, err)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	srv := NewServer(Options{Store: newTestStore(t)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
