package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iamasit07/connectfour/internal/domain"
	"github.com/iamasit07/connectfour/internal/repository/postgres"
	"github.com/iamasit07/connectfour/internal/service/game"
	"github.com/iamasit07/connectfour/internal/transport/websocket"
	"github.com/iamasit07/connectfour/pkg/auth"
)

type memoryArchive map[string]postgres.FinishedGame

func (a memoryArchive) GetGame(_ context.Context, id string) (*postgres.FinishedGame, error) {
	g, ok := a[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (a memoryArchive) ListRecent(_ context.Context, limit int) ([]postgres.FinishedGame, error) {
	out := make([]postgres.FinishedGame, 0, len(a))
	for _, g := range a {
		out = append(out, g)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestRouter(archive ArchiveReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := game.NewService(game.Options{
		Tokens: auth.NewTokenIssuer("test-secret", time.Hour),
	})
	return NewRouter(RouterDeps{
		Games:      svc,
		Archive:    archive,
		Spectators: websocket.NewConnectionManager(zap.NewNop()),
		Logger:     zap.NewNop(),
	})
}

func do(t *testing.T, r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func createGame(t *testing.T, r *gin.Engine) game.Created {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/games", "", `{"rows":6,"cols":7}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	return decode[game.Created](t, w)
}

func TestCreateAndPlayToConnectFour(t *testing.T) {
	r := newTestRouter(nil)
	created := createGame(t, r)
	id, token := created.Game.ID, created.ControlToken
	base := "/api/games/" + id

	w := do(t, r, http.MethodPut, base+"/tokens", token, `{"token0":"red","token1":"YELLOW"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set tokens status = %d: %s", w.Code, w.Body.String())
	}

	moves := []string{
		`{"player":0,"column":0}`, `{"player":1,"column":6}`,
		`{"player":0,"column":1}`, `{"player":1,"column":6}`,
		`{"player":0,"column":2}`, `{"player":1,"column":6}`,
		`{"player":0,"column":3}`,
	}
	var last game.DropResult
	for _, mv := range moves {
		w := do(t, r, http.MethodPost, base+"/drops", token, mv)
		if w.Code != http.StatusOK {
			t.Fatalf("drop %s status = %d: %s", mv, w.Code, w.Body.String())
		}
		last = decode[game.DropResult](t, w)
	}
	if !last.ConnectFour || last.Game.Phase != domain.PhaseOver {
		t.Fatalf("expected connect four, got %+v", last)
	}

	w = do(t, r, http.MethodPost, base+"/drops", token, `{"player":1,"column":5}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("drop after game over status = %d", w.Code)
	}

	w = do(t, r, http.MethodGet, base+"/render?highlight=true", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "|R R R R") {
		t.Fatalf("render = %d %q", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, base+"/description", "", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "6 7 RED YELLOW") {
		t.Fatalf("description = %d %q", w.Code, w.Body.String())
	}
}

func TestControlRoutesNeedToken(t *testing.T) {
	r := newTestRouter(nil)
	a := createGame(t, r)
	b := createGame(t, r)

	w := do(t, r, http.MethodPut, "/api/games/"+a.Game.ID+"/tokens", "", `{"token0":"RED","token1":"BLUE"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", w.Code)
	}
	w = do(t, r, http.MethodPut, "/api/games/"+a.Game.ID+"/tokens", b.ControlToken, `{"token0":"RED","token1":"BLUE"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign token status = %d", w.Code)
	}
}

func TestEngineErrorsMapToStatus(t *testing.T) {
	r := newTestRouter(nil)
	created := createGame(t, r)
	base := "/api/games/" + created.Game.ID
	token := created.ControlToken

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{"drop before tokens", http.MethodPost, base + "/drops", `{"player":0,"column":0}`, http.StatusConflict, string(domain.ErrWrongPhase)},
		{"same tokens", http.MethodPut, base + "/tokens", `{"token0":"RED","token1":"red"}`, http.StatusBadRequest, string(domain.ErrInvalidTokens)},
		{"unknown token", http.MethodPut, base + "/tokens", `{"token0":"RED","token1":"MAUVE"}`, http.StatusBadRequest, string(domain.ErrInvalidTokens)},
		{"missing column", http.MethodPost, base + "/drops", `{"player":0}`, http.StatusBadRequest, ""},
		{"bad dimensions", http.MethodPost, "/api/games", `{"rows":10,"cols":7}`, http.StatusBadRequest, string(domain.ErrInvalidDimensions)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, token, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
			if tc.kind != "" {
				body := decode[map[string]string](t, w)
				if body["error"] != tc.kind {
					t.Fatalf("error = %q, want %q", body["error"], tc.kind)
				}
			}
		})
	}
}

func TestGetUsesETag(t *testing.T) {
	r := newTestRouter(nil)
	created := createGame(t, r)
	path := "/api/games/" + created.Game.ID

	w := do(t, r, http.MethodGet, path, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("conditional get status = %d", w.Code)
	}

	do(t, r, http.MethodPut, path+"/tokens", created.ControlToken, `{"token0":"GREEN","token1":"ORANGE"}`)
	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("changed game answered %d", w.Code)
	}
}

func TestCellLookup(t *testing.T) {
	r := newTestRouter(nil)
	created := createGame(t, r)
	base := "/api/games/" + created.Game.ID
	do(t, r, http.MethodPut, base+"/tokens", created.ControlToken, `{"token0":"RED","token1":"BLUE"}`)
	do(t, r, http.MethodPost, base+"/drops", created.ControlToken, `{"player":1,"column":4}`)

	w := do(t, r, http.MethodGet, base+"/cells/0/4", "", "")
	body := decode[map[string]any](t, w)
	if w.Code != http.StatusOK || body["token"] != "BLUE" {
		t.Fatalf("cell (0, 4) = %d %v", w.Code, body)
	}

	w = do(t, r, http.MethodGet, base+"/cells/1/4", "", "")
	body = decode[map[string]any](t, w)
	if body["token"] != nil {
		t.Fatalf("cell (1, 4) should be empty, got %v", body["token"])
	}

	w = do(t, r, http.MethodGet, base+"/cells/6/0", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out of bounds status = %d", w.Code)
	}
}

func TestImportDescription(t *testing.T) {
	r := newTestRouter(nil)
	desc := "6 7 RED BLUE\n" +
		"3 3 3 3 3 3 3\n" +
		"3 3 3 3 3 3 3\n" +
		"3 3 3 3 3 3 3\n" +
		"3 3 3 3 3 3 3\n" +
		"3 3 3 3 3 3 3\n" +
		"0 1 3 3 3 3 3\n" +
		"0 1\n"

	req := httptest.NewRequest(http.MethodPost, "/api/games/import", strings.NewReader(desc))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("import status = %d: %s", w.Code, w.Body.String())
	}
	created := decode[game.Created](t, w)
	if created.Game.Phase != domain.PhasePlayable || created.Game.NumDropped != 2 {
		t.Fatalf("unexpected imported game %+v", created.Game)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/games/import", strings.NewReader("6 7 RED"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed import status = %d", w.Code)
	}
}

func TestListAndDelete(t *testing.T) {
	r := newTestRouter(nil)
	a := createGame(t, r)
	createGame(t, r)

	w := do(t, r, http.MethodGet, "/api/games", "", "")
	if list := decode[[]map[string]any](t, w); len(list) != 2 {
		t.Fatalf("expected 2 live games, got %d", len(list))
	}

	w = do(t, r, http.MethodDelete, "/api/games/"+a.Game.ID, a.ControlToken, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/games/"+a.Game.ID, "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted game status = %d", w.Code)
	}
}

func TestHistory(t *testing.T) {
	r := newTestRouter(nil)
	if w := do(t, r, http.MethodGet, "/api/history", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("history without database = %d", w.Code)
	}

	archive := memoryArchive{"g1": {GameID: "g1", Outcome: postgres.OutcomeFullGrid}}
	r = newTestRouter(archive)
	w := do(t, r, http.MethodGet, "/api/history", "", "")
	if list := decode[[]postgres.FinishedGame](t, w); len(list) != 1 {
		t.Fatalf("history = %v", list)
	}
	if w := do(t, r, http.MethodGet, "/api/history/g1", "", ""); w.Code != http.StatusOK {
		t.Fatalf("history detail status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/history/nope", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing history status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/history?limit=0", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(nil)
	if w := do(t, r, http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}
