package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/socialapp/internal/config"
	apphttp "github.com/geocoder89/socialapp/internal/http"
	"github.com/geocoder89/socialapp/internal/observability"
	"github.com/geocoder89/socialapp/internal/repo/memory"
	"github.com/geocoder89/socialapp/internal/repo/mongodb"
	"github.com/geocoder89/socialapp/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		Port:               0, // not used in tests
		StoreDriver:        config.StoreMemory,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout:     2 * time.Second,
		MaxUploadBytes:     1 << 20,
		SignupRateLimit:    0,
		SignupRateWindow:   time.Minute,
	}
}

type apiErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// setupTestRouter wires the full router over the in-memory store.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prom := observability.NewProm(prometheus.NewRegistry())

	deps := apphttp.Deps{
		Users: service.NewUserService(memory.NewUsersRepo(), prom),
		Posts: service.NewPostService(memory.NewPostsRepo(), prom),
		Prom:  prom,
	}

	return apphttp.NewRouter(discardLogger(), testConfig(), deps)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func createPost(t *testing.T, router *gin.Engine, content string, images ...[]byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("email", "a@x.com")
	_ = mw.WriteField("name", "A")
	_ = mw.WriteField("postContent", content)

	for i, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="img`+string(rune('0'+i))+`.png"`)
		h.Set("Content-Type", "image/png")

		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(img)
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/posts", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestSignUpIntegration_HappyPathAndDuplicate(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"name":"A","email":"a@x.com","password":"p1"}`

	w := doJSON(t, router, http.MethodPost, "/users", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if created.Message != "User registered successfully" {
		t.Fatalf("unexpected message %q", created.Message)
	}
	if created.User["name"] != "A" || created.User["email"] != "a@x.com" {
		t.Fatalf("unexpected user %v", created.User)
	}
	if _, ok := created.User["password"]; ok {
		t.Fatalf("password must not be returned")
	}

	// same email, different case
	w = doJSON(t, router, http.MethodPost, "/users", `{"name":"B","email":"A@X.com","password":"p2"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("[second call] got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	if resp.Message != "User already exists!" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if resp.RequestID == "" {
		t.Fatalf("expected a request id on errors")
	}
}

func TestGetUserIntegration(t *testing.T) {
	router := setupTestRouter(t)

	if w := doJSON(t, router, http.MethodPost, "/users", `{"name":"A","email":"a@x.com","password":"p1"}`); w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodGet, "/users?email=a@x.com", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if _, ok := got["password"]; ok {
		t.Fatalf("password leaked: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "$2a$") {
		t.Fatalf("hash leaked: %s", w.Body.String())
	}

	hobbies, ok := got["hobbies"].([]any)
	if !ok || len(hobbies) != 0 {
		t.Fatalf("expected empty hobbies array, got %v", got["hobbies"])
	}
	if got["profilePicture"] != "" || got["dob"] != "" {
		t.Fatalf("expected empty profile fields, got %v", got)
	}

	if w := doJSON(t, router, http.MethodGet, "/users", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing email: got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/users?email=nobody@x.com", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown email: got %d", w.Code)
	}
}

func TestPostsIntegration_CreateAndList(t *testing.T) {
	router := setupTestRouter(t)

	w := createPost(t, router, "", pngHeader)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var created struct {
		Post struct {
			Images   []string       `json:"images"`
			Comments map[string]any `json:"comments"`
			Likes    []string       `json:"likes"`
		} `json:"post"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(created.Post.Images) != 1 || !strings.HasPrefix(created.Post.Images[0], "data:image/png;base64,") {
		t.Fatalf("unexpected images %v", created.Post.Images)
	}
	if created.Post.Comments == nil || created.Post.Likes == nil {
		t.Fatalf("reserved fields must be initialized: %s", w.Body.String())
	}

	if w := createPost(t, router, "second"); w.Code != http.StatusCreated {
		t.Fatalf("second post: got %d %s", w.Code, w.Body.String())
	}

	if w := createPost(t, router, "   "); w.Code != http.StatusBadRequest {
		t.Fatalf("blank post must be rejected, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/posts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d", w.Code)
	}

	var posts []struct {
		PostContent string `json:"postContent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(posts) != 2 || posts[0].PostContent != "second" || posts[1].PostContent != "" {
		t.Fatalf("expected newest first, got %+v", posts)
	}
}

func TestPostsIntegration_EmptyList(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/posts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected [], got %s", w.Body.String())
	}
}

func TestRootMetricsAndCORS(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/", "")
	if w.Code != http.StatusOK || w.Body.String() != "API is running..." {
		t.Fatalf("unexpected root response %d %q", w.Code, w.Body.String())
	}

	doJSON(t, router, http.MethodPost, "/users", `{"name":"A","email":"a@x.com","password":"p1"}`)

	w = doJSON(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "socialapp_users_registered_total 1") {
		t.Fatalf("expected signup counter in metrics output")
	}

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow credentials = %q", got)
	}
}

func TestUnavailableStoreIntegration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := mongodb.Connect(ctx, mongodb.Config{
		URI:                    "mongodb://127.0.0.1:1",
		Database:               "socialapp_test",
		ServerSelectionTimeout: 200 * time.Millisecond,
		ConnectTimeout:         200 * time.Millisecond,
	}, discardLogger())

	deps := apphttp.Deps{
		Users: service.NewUserService(mongodb.NewUsersRepo(store), nil),
		Posts: service.NewPostService(mongodb.NewPostsRepo(store), nil),
		Ready: store.Ping,
	}
	router := apphttp.NewRouter(discardLogger(), testConfig(), deps)

	w := doJSON(t, router, http.MethodPost, "/users", `{"name":"A","email":"a@x.com","password":"p1"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("signup: got %d, body=%s", w.Code, w.Body.String())
	}

	var resp apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Code != "store_unavailable" {
		t.Fatalf("code = %q", resp.Code)
	}

	if w := doJSON(t, router, http.MethodGet, "/posts", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("list: got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz: got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: got %d", w.Code)
	}
}
