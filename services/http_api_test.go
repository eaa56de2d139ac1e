package services

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SaiNageswarS/booking-agent/agentboot"
	"github.com/SaiNageswarS/booking-agent/render"
	"github.com/SaiNageswarS/booking-agent/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := NewRouter(&fakeRunner{}, 60)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTurnEndpoint(t *testing.T) {
	t.Run("returns the turn result", func(t *testing.T) {
		runner := &fakeRunner{}
		w := post(NewRouter(runner, 60), "/v1/sessions/abc/turns", `{"text":"book a repair"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var got agentboot.TurnResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "abc", got.SessionID)
		assert.Equal(t, "What day works best?", got.Text)
		assert.Equal(t, "abc", runner.sessionID)
		assert.Equal(t, "book a repair", runner.text)
	})

	tests := []struct {
		name   string
		runner *fakeRunner
		body   string
		code   int
		errMsg string
	}{
		{"bad json", &fakeRunner{}, `{`, http.StatusBadRequest, "expected a JSON body with text"},
		{"empty text", &fakeRunner{}, `{"text":""}`, http.StatusBadRequest, "text is required"},
		{"busy", &fakeRunner{err: session.ErrTurnInProgress}, `{"text":"hi"}`, http.StatusTooManyRequests, busyText},
		{"store down", &fakeRunner{err: session.ErrStoreUnavailable}, `{"text":"hi"}`, http.StatusServiceUnavailable, render.RetryText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(NewRouter(tt.runner, 60), "/v1/sessions/abc/turns", tt.body)
			assert.Equal(t, tt.code, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.errMsg, body["error"])
		})
	}
}

func TestStreamTurnEndpoint(t *testing.T) {
	t.Run("streams answer then complete events", func(t *testing.T) {
		w := post(NewRouter(&fakeRunner{chunks: []string{"What day ", "works best?"}}, 60),
			"/v1/sessions/abc/turns/stream", `{"text":"book a repair"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

		var events []string
		scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event:"); ok {
				events = append(events, strings.TrimSpace(name))
			}
		}
		assert.Equal(t, []string{"answer", "answer", "complete"}, events)
	})

	t.Run("empty text is rejected before streaming", func(t *testing.T) {
		w := post(NewRouter(&fakeRunner{}, 60), "/v1/sessions/abc/turns/stream", `{"text":"  "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	r := NewRouter(&fakeRunner{}, 6)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, post(r, "/v1/sessions/abc/turns", `{"text":"hi"}`).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
