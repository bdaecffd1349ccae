package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/petshop/internal/domain/model"
	"github.com/polkiloo/petshop/internal/feedback"
	pkgAuth "github.com/polkiloo/petshop/internal/pkg/auth"
	"github.com/polkiloo/petshop/internal/session"
	"github.com/polkiloo/petshop/internal/test/storefront"
)

const knownSession = "1c8e5f0a-3d2b-4e6f-9a7c-2b4d6f8a0c1e"

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type identified struct {
	session *session.Session
	userID  int64
	hasUser bool
}

func identifyRouter(facade *storefront.FacadeStub, got *identified) *gin.Engine {
	router := gin.New()
	router.Use(Identify(facade, discardLogger(), time.Hour))
	router.GET("/", func(c *gin.Context) {
		s, _ := c.Get(SessionContextKey)
		got.session, _ = s.(*session.Session)
		id, ok := c.Get(UserIDContextKey)
		got.hasUser = ok
		got.userID, _ = id.(int64)
		c.Status(http.StatusOK)
	})
	return router
}

func TestIdentifyIssuesSessionCookie(t *testing.T) {
	facade := storefront.NewFacadeStub()
	var got identified
	router := identifyRouter(facade, &got)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got.session == nil || got.hasUser {
		t.Fatalf("expected guest session, got %+v", got)
	}
	cookie := resp.Result().Cookies()
	if len(cookie) != 1 || cookie[0].Name != sessionCookieName || cookie[0].Value != got.session.ID {
		t.Fatalf("expected session cookie, got %+v", cookie)
	}

	first := got.session
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: first.ID})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if got.session != first {
		t.Fatalf("expected session reused from cookie")
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookie rewrite for a known session")
	}
}

func TestIdentifySignsInFromToken(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.ParseFn = func(token string) (int64, error) {
		if token != "abc" {
			t.Fatalf("unexpected token %q", token)
		}
		return 8, nil
	}
	facade.Carts.Rows[8] = []model.CartLine{{ID: 101, ProductID: 1, Price: 20, Quantity: 2}}
	var got identified
	router := identifyRouter(facade, &got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: knownSession})
	req.Header.Set("Authorization", "Bearer abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if !got.hasUser || got.userID != 8 {
		t.Fatalf("expected user 8 in context, got %+v", got)
	}
	if got.session.UserID() != 8 || got.session.Cart().TotalItems() != 2 {
		t.Fatalf("expected session signed in with synced cart")
	}

	router.ServeHTTP(httptest.NewRecorder(), req)
	if calls := len(facade.Carts.CallsFor("list")); calls != 1 {
		t.Fatalf("expected a single sync, got %d", calls)
	}
}

func TestIdentifyInvalidTokenTurnsSessionIntoGuest(t *testing.T) {
	facade := storefront.NewFacadeStub()
	s := facade.Session(context.Background(), knownSession)
	if err := facade.Identify(context.Background(), s, 3); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	_ = s.Cart().AddItem(context.Background(), model.CartLine{ProductID: 1, Price: 20, Quantity: 1})
	facade.ParseFn = func(string) (int64, error) { return 0, pkgAuth.ErrInvalidToken }

	var got identified
	router := identifyRouter(facade, &got)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: knownSession})
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "expired"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || got.hasUser {
		t.Fatalf("expected anonymous request, got %d %+v", resp.Code, got)
	}
	if s.UserID() != 0 || s.Cart().TotalItems() != 1 {
		t.Fatalf("expected guest session with lines kept")
	}
}

func TestIdentifyParseFailureIsServerError(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.ParseFn = func(string) (int64, error) { return 0, errors.New("key store down") }
	var got identified
	router := identifyRouter(facade, &got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}

func TestIdentifySyncFailureKeepsUser(t *testing.T) {
	facade := storefront.NewFacadeStub()
	facade.Carts.ListFn = func(context.Context, int64) ([]model.CartLine, error) { return nil, errors.New("db down") }
	var got identified
	router := identifyRouter(facade, &got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: knownSession})
	req.Header.Set("Authorization", "Bearer abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	if !got.hasUser || got.userID != 1 {
		t.Fatalf("expected authenticated request despite sync failure, got %+v", got)
	}
	if got.session.UserID() != 0 {
		t.Fatalf("expected session identity rolled back for retry")
	}
}

func TestAuthRequired(t *testing.T) {
	router := gin.New()
	router.Use(AuthRequired())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", resp.Code)
	}

	router = gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserIDContextKey, int64(1))
		c.Next()
	})
	router.Use(AuthRequired())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with user, got %d", resp.Code)
	}
}

func TestSetAuthCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	SetAuthCookie(c, "token")
	if got := recorder.Header().Get("Authorization"); got != "Bearer token" {
		t.Fatalf("expected auth header, got %q", got)
	}
	result := recorder.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	cookies := result.Cookies()
	if len(cookies) == 0 || cookies[0].Value != "token" {
		t.Fatalf("expected cookie with token, got %+v", cookies)
	}
}

func TestClearAuthCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	ClearAuthCookie(c)
	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != authCookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired auth cookie, got %+v", cookies)
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if token := extractToken(c); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}
	c.Request.Header.Del("Authorization")
	c.Request.AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie"})
	if token := extractToken(c); token != "cookie" {
		t.Fatalf("expected token from cookie, got %q", token)
	}
}

func decodeToasts(t *testing.T, header http.Header) []feedback.Toast {
	t.Helper()
	var out []feedback.Toast
	for _, raw := range header.Values(ToastHeader) {
		var toast feedback.Toast
		if err := json.Unmarshal([]byte(raw), &toast); err != nil {
			t.Fatalf("decode toast %q: %v", raw, err)
		}
		out = append(out, toast)
	}
	return out
}

func TestToastsBeforeBody(t *testing.T) {
	notifier := feedback.NewNotifier(nil)
	router := gin.New()
	router.Use(Toasts())
	router.GET("/", func(c *gin.Context) {
		notifier.Error(c.Request.Context(), "Failed to add item to cart", "db down")
		notifier.Success(c.Request.Context(), "Order placed", "")
		c.JSON(http.StatusBadGateway, gin.H{"error": "db down"})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	toasts := decodeToasts(t, resp.Header())
	if len(toasts) != 2 {
		t.Fatalf("expected 2 toasts, got %+v", toasts)
	}
	if toasts[0].Level != feedback.LevelError || toasts[0].Description != "db down" || toasts[1].Level != feedback.LevelSuccess {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
	if !strings.Contains(resp.Body.String(), "db down") {
		t.Fatalf("expected body written, got %q", resp.Body.String())
	}
}

func TestToastsWithoutBody(t *testing.T) {
	notifier := feedback.NewNotifier(nil)
	router := gin.New()
	router.Use(Toasts())
	router.POST("/", func(c *gin.Context) {
		notifier.Success(c.Request.Context(), "Saved", "")
		c.Status(http.StatusNoContent)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if toasts := decodeToasts(t, resp.Header()); len(toasts) != 1 || toasts[0].Title != "Saved" {
		t.Fatalf("expected toast on body-less response, got %+v", toasts)
	}

	router = gin.New()
	router.Use(Toasts())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "quiet") })
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(resp.Header().Values(ToastHeader)) != 0 {
		t.Fatalf("expected no toast headers")
	}
}

func gzipBody(t *testing.T, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(payload)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestDecompressRequest(t *testing.T) {
	router := gin.New()
	router.Use(DecompressRequest(0))
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBody(t, "payload")))
	req.Header.Set("Content-Encoding", "gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("plain")))
	body = ""
	router.ServeHTTP(httptest.NewRecorder(), req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt gzip, got %d", resp.Code)
	}
}

func TestDecompressRequestLimitsInflatedBody(t *testing.T) {
	router := gin.New()
	router.Use(DecompressRequest(4))
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBody(t, strings.Repeat("x", 64))))
	req.Header.Set("Content-Encoding", "gzip")
	router.ServeHTTP(httptest.NewRecorder(), req)
	if len(body) != 4 {
		t.Fatalf("expected body capped at 4 bytes, got %d", len(body))
	}
}

func TestRequestLogger(t *testing.T) {
	var levels []slog.Level
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey {
			if lvl, ok := a.Value.Any().(slog.Level); ok {
				levels = append(levels, lvl)
			}
		}
		return a
	}})
	logger := slog.New(handler)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	if len(levels) != 2 || levels[0] != slog.LevelInfo || levels[1] != slog.LevelError {
		t.Fatalf("expected info then error, got %v", levels)
	}
}
