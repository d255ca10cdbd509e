package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacman/internal/contract"
	"pacman/internal/rules"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: url, Timeout: timeout})
	require.NoError(t, err)
	return c
}

func replyJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestSerializeExampleRule(t *testing.T) {
	p := rules.Program{{
		Up:        rules.Ptr(rules.CellWall),
		Berry:     rules.Ptr(rules.BerryTaken),
		State:     rules.Ptr(rules.StateB),
		NextMove:  rules.MoveRight,
		NextState: rules.StateC,
	}}

	data, err := json.Marshal(Serialize(p))
	require.NoError(t, err)
	assert.JSONEq(t, `{"program":{"rules":[{
		"up":"wall","down":null,"left":null,"right":null,
		"berry":"taken","state":"b","nextMove":"right","nextState":"c"}]}}`, string(data))
}

func TestSerializeEmptyProgram(t *testing.T) {
	data, err := json.Marshal(Serialize(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"program":{"rules":[]}}`, string(data))
}

func TestSubmitPostsProgramOnce(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body contract.Submit
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Program.Rules, 2)
		assert.Nil(t, body.User)

		replyJSON(http.StatusOK, `"ok"`)(w, r)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	out := c.Submit(context.Background(), rules.Program{}.Append().Append())

	assert.Equal(t, Outcome{Kind: Success}, out)
	assert.Equal(t, 1, calls)
}

func TestSubmitResponseMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    Outcome
	}{
		{"ok", replyJSON(http.StatusOK, `"ok"`), Outcome{Kind: Success}},
		{"rate limit", replyJSON(http.StatusOK, `"rateLimitExceeded"`), Outcome{Kind: RateLimitExceeded}},
		{"level closed", replyJSON(http.StatusOK, `"levelClosed"`), Outcome{Kind: LevelClosed}},
		{"unauthorized tag", replyJSON(http.StatusOK, `"unauthorized"`), Outcome{Kind: Unauthorised}},
		{"401 with junk body", replyJSON(http.StatusUnauthorized, `<html>nope</html>`), Outcome{Kind: Unauthorised}},
		{"401 with ok body", replyJSON(http.StatusUnauthorized, `"ok"`), Outcome{Kind: Unauthorised}},
		{"server error", replyJSON(http.StatusInternalServerError, `"ok"`), Failed("bad status: 500")},
		{"not found", replyJSON(http.StatusNotFound, ``), Failed("bad status: 404")},
		{"unknown tag", replyJSON(http.StatusOK, `"maybe"`), Failed(`bad body: unexpected response "maybe"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			got := newTestClient(t, server.URL, 0).Submit(context.Background(), nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitMalformedBody(t *testing.T) {
	server := httptest.NewServer(replyJSON(http.StatusOK, `{not json`))
	defer server.Close()

	got := newTestClient(t, server.URL, 0).Submit(context.Background(), nil)
	assert.Equal(t, Fail, got.Kind)
	assert.Contains(t, got.Message, "bad body: ")
}

func TestSubmitTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	got := newTestClient(t, server.URL, 50*time.Millisecond).Submit(context.Background(), nil)
	assert.Equal(t, Failed("request timeout"), got)
}

func TestSubmitContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	got := newTestClient(t, server.URL, 0).Submit(ctx, nil)
	assert.Equal(t, Failed("request timeout"), got)
}

func TestSubmitNetworkError(t *testing.T) {
	server := httptest.NewServer(replyJSON(http.StatusOK, `"ok"`))
	url := server.URL
	server.Close()

	got := newTestClient(t, url, 0).Submit(context.Background(), nil)
	assert.Equal(t, Failed("network error"), got)
}

func TestSubmitBadURL(t *testing.T) {
	for _, base := range []string{"", "localhost:8000", "ftp://example.com", "/relative"} {
		got := newTestClient(t, base, 0).Submit(context.Background(), nil)
		assert.Equal(t, Fail, got.Kind, base)
		assert.Equal(t, "bad url: "+base+"/api/submit", got.Message, base)
	}
}

func TestAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body contract.Authenticate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.User != "labas" || body.Password != "rytas" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	ctx := context.Background()

	assert.NoError(t, c.Authenticate(ctx, "labas", "rytas"))

	err := c.Authenticate(ctx, "labas", "wrong")
	assert.ErrorIs(t, err, ErrIncorrectCredentials)
	assert.Equal(t, "incorrect credentials", ErrorMessage(err))
}

func TestAuthenticateOtherFailures(t *testing.T) {
	server := httptest.NewServer(replyJSON(http.StatusServiceUnavailable, ``))
	defer server.Close()

	err := newTestClient(t, server.URL, 0).Authenticate(context.Background(), "a", "b")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncorrectCredentials)
	assert.Equal(t, "bad status: 503", ErrorMessage(err))
}

func TestCookiesReplayedOnSubmit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/authenticate", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "user", Value: "labas", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "password", Value: "rytas", Path: "/"})
	})
	mux.HandleFunc("/api/submit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		user, err := r.Cookie("user")
		if err != nil || user.Value != "labas" {
			replyJSON(http.StatusOK, `"unauthorized"`)(w, r)
			return
		}
		replyJSON(http.StatusOK, `"ok"`)(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	ctx := context.Background()

	assert.Equal(t, Unauthorised, c.Submit(ctx, nil).Kind)
	require.NoError(t, c.Authenticate(ctx, "labas", "rytas"))
	assert.Equal(t, Success, c.Submit(ctx, nil).Kind)
}

func TestSubmissions(t *testing.T) {
	server := httptest.NewServer(replyJSON(http.StatusOK,
		`{"submissions":[{"id":0,"user":"labas"},{"id":1,"user":"vakaras"}],"levelClosed":true}`))
	defer server.Close()

	subs, err := newTestClient(t, server.URL, 0).Submissions(context.Background())
	require.NoError(t, err)
	assert.True(t, subs.LevelClosed)
	require.Len(t, subs.Submissions, 2)
	assert.Equal(t, "vakaras", subs.Submissions[1].User)
}

func TestSubmitStatusLifecycle(t *testing.T) {
	var s SubmitStatus
	assert.Equal(t, NotStarted, s.Phase)

	s = s.Start()
	assert.Equal(t, Pending, s.Phase)

	s = s.Finish(Failed("request timeout"))
	assert.Equal(t, Finished, s.Phase)
	assert.Equal(t, "request timeout", s.Result.String())

	s = s.Start()
	assert.Equal(t, SubmitStatus{Phase: Pending}, s)

	// Two results racing: the later one is kept.
	s = s.Finish(Outcome{Kind: LevelClosed}).Finish(Outcome{Kind: Success})
	assert.Equal(t, Success, s.Result.Kind)
}

func TestRequestErrorMessages(t *testing.T) {
	assert.Equal(t, "bad url: x", (&RequestError{Kind: KindBadURL, URL: "x"}).Message())
	assert.Equal(t, "request timeout", (&RequestError{Kind: KindTimeout}).Message())
	assert.Equal(t, "network error", (&RequestError{Kind: KindNetwork}).Message())
	assert.Equal(t, "bad status: 418", (&RequestError{Kind: KindBadStatus, Status: 418}).Message())
	assert.Equal(t, "bad body: eof", (&RequestError{Kind: KindBadBody, Body: "eof"}).Message())
	assert.Equal(t, "", ErrorMessage(nil))
}
