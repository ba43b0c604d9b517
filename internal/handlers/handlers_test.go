package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/flashquiz-service/internal/cache"
	"github.com/SAP-F-2025/flashquiz-service/internal/events"
	"github.com/SAP-F-2025/flashquiz-service/internal/models"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories/jsonfile"
	"github.com/SAP-F-2025/flashquiz-service/internal/repositories/redisstore"
	"github.com/SAP-F-2025/flashquiz-service/internal/services"
	"github.com/SAP-F-2025/flashquiz-service/internal/utils"
	"github.com/SAP-F-2025/flashquiz-service/internal/validator"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs, err := jsonfile.NewDocumentRepository(t.TempDir(), slogger)
	if err != nil {
		t.Fatalf("NewDocumentRepository() error = %v", err)
	}
	cm := cache.NewCacheManager(client)
	repo := repositories.NewRepository(docs, redisstore.NewSnapshotRepository(cm.Session), client)
	v := validator.New()

	sm := services.NewDefaultServiceManager(repo, cm, events.NewMockEventPublisher(slogger), slogger, v)
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { sm.Shutdown(context.Background()) })

	logger := utils.NewSlogLogger(slogger)
	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, v, logger).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func capitals() *models.QuizDocument {
	return &models.QuizDocument{
		Title:        "Capitals",
		TimerSeconds: 30,
		QuizQuestions: []models.QuestionSpec{
			{Question: "Capital of Italy?", CorrectAnswer: "Rome", IncorrectAnswers: []string{"Milan", "Turin"}},
			{Question: "Capital of Spain?", CorrectAnswer: "Madrid", IncorrectAnswers: []string{"Seville", "Valencia"}},
		},
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, body %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be set")
	}
}

func TestDocumentRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/documents/capitals", map[string]interface{}{"document": capitals()})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT document = %d, body %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"list", http.MethodGet, "/api/v1/documents", nil, http.StatusOK},
		{"get", http.MethodGet, "/api/v1/documents/capitals", nil, http.StatusOK},
		{"get missing", http.MethodGet, "/api/v1/documents/nowhere", nil, http.StatusNotFound},
		{"invalid name", http.MethodPut, "/api/v1/documents/bad..name", map[string]interface{}{"document": capitals()}, http.StatusBadRequest},
		{"missing body", http.MethodPut, "/api/v1/documents/other", map[string]interface{}{}, http.StatusBadRequest},
		{"restore without backup", http.MethodPost, "/api/v1/documents/nowhere/restore", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d, body %s", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestSessionRoutes_FullRun(t *testing.T) {
	router := newTestRouter(t)
	if w := doJSON(t, router, http.MethodPut, "/api/v1/documents/capitals", map[string]interface{}{"document": capitals()}); w.Code != http.StatusOK {
		t.Fatalf("PUT document = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"document_name": "capitals",
		"username":      "alice",
		"seed":          7,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /sessions = %d, body %s", w.Code, w.Body.String())
	}
	var started services.SessionResponse
	decode(t, w, &started)
	base := "/api/v1/sessions/" + started.ID

	for i := 0; i < 2; i++ {
		w = doJSON(t, router, http.MethodGet, base+"/item", nil)
		var item struct {
			Item models.ItemView `json:"item"`
		}
		decode(t, w, &item)
		if item.Item.Question == nil {
			t.Fatalf("item %d is not a question: %s", i, w.Body.String())
		}

		w = doJSON(t, router, http.MethodPost, base+"/answer", map[string]string{"answer": item.Item.Question.CorrectAnswer})
		if w.Code != http.StatusOK {
			t.Fatalf("answer = %d, body %s", w.Code, w.Body.String())
		}
		var ans services.AnswerResponse
		decode(t, w, &ans)
		if !ans.IsCorrect {
			t.Errorf("answer %d should be correct", i)
		}

		if w = doJSON(t, router, http.MethodPost, base+"/next", nil); w.Code != http.StatusOK {
			t.Fatalf("next = %d, body %s", w.Code, w.Body.String())
		}
	}

	w = doJSON(t, router, http.MethodGet, base+"/results", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("results = %d, body %s", w.Code, w.Body.String())
	}
	var result models.SessionResult
	decode(t, w, &result)
	if result.ScorePercent != 100 || result.Correct != 2 {
		t.Errorf("results = %+v, want a perfect score", result)
	}

	w = doJSON(t, router, http.MethodGet, base+"/results/export", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("export = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "results-alice-") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/documents/capitals/leaderboard", nil)
	var board []models.LeaderboardEntry
	decode(t, w, &board)
	if len(board) != 1 || board[0].Username != "alice" {
		t.Errorf("leaderboard = %+v", board)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/documents/capitals/users/alice/history", nil)
	var history services.HistoryResponse
	decode(t, w, &history)
	if len(history.Results) != 1 {
		t.Errorf("history = %+v", history)
	}

	w = doJSON(t, router, http.MethodPost, base+"/answer", map[string]string{"answer": "Rome"})
	var finishedErr ErrorResponse
	decode(t, w, &finishedErr)
	if w.Code != http.StatusBadRequest || finishedErr.Code != CodeFinished {
		t.Errorf("answer after finish = %d %q, want 400 %s", w.Code, finishedErr.Code, CodeFinished)
	}

	if w = doJSON(t, router, http.MethodDelete, base, nil); w.Code != http.StatusNoContent {
		t.Errorf("DELETE session = %d", w.Code)
	}
	if w = doJSON(t, router, http.MethodGet, base+"/status", nil); w.Code != http.StatusNotFound {
		t.Errorf("status after close = %d, want 404", w.Code)
	}
}

func TestSessionRoutes_Errors(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"document": capitals(),
		"username": "bob",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /sessions inline = %d, body %s", w.Code, w.Body.String())
	}
	var started services.SessionResponse
	decode(t, w, &started)
	base := "/api/v1/sessions/" + started.ID

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		want     int
		wantCode string
	}{
		{"unknown session", http.MethodGet, "/api/v1/sessions/missing/item", nil, http.StatusNotFound, CodeNotFound},
		{"missing username", http.MethodPost, "/api/v1/sessions", map[string]interface{}{"document_name": "capitals"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown document", http.MethodPost, "/api/v1/sessions", map[string]interface{}{"document_name": "nowhere", "username": "bob"}, http.StatusNotFound, CodeNotFound},
		{"empty answer", http.MethodPost, base + "/answer", map[string]string{"answer": ""}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"goto without index", http.MethodPost, base + "/goto", map[string]interface{}{}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"goto out of range", http.MethodPost, base + "/goto", map[string]int{"index": 9}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed json", http.MethodPost, base + "/answer", "{", http.StatusBadRequest, CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d, body %s", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
			var resp ErrorResponse
			decode(t, w, &resp)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestSessionRoutes_SnapshotRestore(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"document": capitals(),
		"username": "carol",
	})
	var started services.SessionResponse
	decode(t, w, &started)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+started.ID+"/snapshot", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot = %d, body %s", w.Code, w.Body.String())
	}
	var snap struct {
		Snapshot string `json:"snapshot"`
	}
	decode(t, w, &snap)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/restore", map[string]interface{}{
		"document": capitals(),
		"snapshot": snap.Snapshot,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("restore = %d, body %s", w.Code, w.Body.String())
	}
	var restored services.SessionResponse
	decode(t, w, &restored)
	if restored.ID == started.ID || restored.Username != "carol" {
		t.Errorf("restored = %+v", restored)
	}
}

func TestStatsRoutes_Cleanup(t *testing.T) {
	router := newTestRouter(t)
	if w := doJSON(t, router, http.MethodPut, "/api/v1/documents/capitals", map[string]interface{}{"document": capitals()}); w.Code != http.StatusOK {
		t.Fatalf("PUT document = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/documents/capitals/stats/cleanup", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cleanup = %d, body %s", w.Code, w.Body.String())
	}
	var resp services.StatsCleanupResponse
	decode(t, w, &resp)
	if resp.Removed != 0 {
		t.Errorf("cleanup = %+v, want nothing removed", resp)
	}

	if w = doJSON(t, router, http.MethodPost, "/api/v1/documents/capitals/stats/cleanup", map[string]int{"max_age_days": -3}); w.Code != http.StatusBadRequest {
		t.Errorf("cleanup with negative retention = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/documents/capitals/stats/restore", nil)
	var errResp ErrorResponse
	decode(t, w, &errResp)
	if w.Code != http.StatusNotFound || errResp.Code != CodeNoBackup {
		t.Errorf("restore without backup = %d %q", w.Code, errResp.Code)
	}
}
