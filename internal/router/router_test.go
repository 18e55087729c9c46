package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finance-dashboard/internal/app"
	"finance-dashboard/internal/config"
	"finance-dashboard/internal/logger"
	"finance-dashboard/internal/util"
)

type envelope struct {
	Code    int                        `json:"code"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*app.App, *gin.Engine) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Realtime: config.RealtimeConfig{Driver: "memory"},
		Storage:  config.StorageConfig{Driver: "local", Dir: filepath.Join(dir, "avatars"), BaseURL: "/avatars"},
		Local:    config.LocalConfig{Path: filepath.Join(dir, "local.json")},
	}
	a, err := app.New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	a.Start(context.Background())
	return a, SetupRouter(a)
}

// mailbox 记录发出的重置令牌
type mailbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *mailbox) SendPasswordReset(_ context.Context, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[email] = token
	return nil
}

func (m *mailbox) token(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[email]
}

func setupRemote(t *testing.T) (*app.App, *gin.Engine, *mailbox) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		Remote: config.RemoteConfig{
			Enabled:    true,
			Driver:     "sqlite",
			DSN:        filepath.Join(dir, "remote.db"),
			JWTSecret:  "router-secret",
			BcryptCost: 4,
		},
		Realtime: config.RealtimeConfig{Driver: "memory"},
		Storage:  config.StorageConfig{Driver: "local", Dir: filepath.Join(dir, "avatars"), BaseURL: "/avatars"},
		Local:    config.LocalConfig{Path: filepath.Join(dir, "local.json")},
	}
	box := &mailbox{tokens: map[string]string{}}
	a, err := app.New(context.Background(), cfg, logger.Nop(), app.WithMailer(box))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	a.Start(context.Background())
	return a, SetupRouter(a), box
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func field[T any](t *testing.T, env envelope, key string) T {
	t.Helper()
	var v T
	raw, ok := env.Data[key]
	require.True(t, ok, "missing %q", key)
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func demoLogin(t *testing.T, r http.Handler) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/auth/demo", map[string]string{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	_, r := setup(t)

	w := do(t, r, http.MethodGet, "/api/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, decode(t, w).Code)

	w = do(t, r, http.MethodGet, "/api/market/quotes?search=apple", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDemoLoginAndLogout(t *testing.T) {
	a, r := setup(t)

	w := do(t, r, http.MethodPost, "/api/auth/demo", map[string]string{"email": "eu@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	sess := field[map[string]string](t, decode(t, w), "session")
	assert.Equal(t, "dev", sess["id"])
	assert.Equal(t, "eu@example.com", sess["email"])
	assert.Equal(t, "dark", a.Theme.Name())

	w = do(t, r, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, a.Session.Current())

	w = do(t, r, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetUnsupportedLocally(t *testing.T) {
	_, r := setup(t)
	w := do(t, r, http.MethodPost, "/api/auth/reset", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	_, r, box := setupRemote(t)

	w := do(t, r, http.MethodPost, "/api/auth/signup", map[string]string{"email": "rosa@example.com", "password": "antiga1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/auth/logout", nil).Code)

	w = do(t, r, http.MethodPost, "/api/auth/reset", map[string]string{"email": "rosa@example.com"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	token := box.token("rosa@example.com")
	require.NotEmpty(t, token)

	w = do(t, r, http.MethodPost, "/api/auth/reset/confirm", map[string]string{
		"token": token, "password": "novinha1", "confirm_password": "outra123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/auth/reset/confirm", map[string]string{"token": "errado", "password": "novinha1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, decode(t, w).Code)

	w = do(t, r, http.MethodPost, "/api/auth/reset/confirm", map[string]string{
		"token": token, "password": "novinha1", "confirm_password": "novinha1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 令牌只能用一次
	w = do(t, r, http.MethodPost, "/api/auth/reset/confirm", map[string]string{"token": token, "password": "denovo1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/auth/login", map[string]string{"email": "rosa@example.com", "password": "antiga1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, r, http.MethodPost, "/api/auth/login", map[string]string{"email": "rosa@example.com", "password": "novinha1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateEmailRefreshesSession(t *testing.T) {
	_, r, _ := setupRemote(t)

	w := do(t, r, http.MethodPost, "/api/auth/signup", map[string]string{"email": "velho@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/profile/email", map[string]string{"email": "novo@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, do(t, r, http.MethodGet, "/api/auth/session", nil))
	sess := field[map[string]string](t, env, "session")
	profile := field[map[string]any](t, env, "profile")
	assert.Equal(t, "novo@example.com", sess["email"])
	assert.Equal(t, "novo@example.com", profile["email"])
}

func TestPasswordResetConfirmUnsupportedLocally(t *testing.T) {
	_, r := setup(t)
	w := do(t, r, http.MethodPost, "/api/auth/reset/confirm", map[string]string{"token": "x", "password": "secret1"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestTransactionsFlow(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)

	today := time.Now().Format(time.RFC3339)
	w := do(t, r, http.MethodPost, "/api/transactions", map[string]string{
		"type": "income", "amount": "5000", "date": today, "description": "Salário", "category": "Salário",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/transactions", map[string]string{
		"type": "expense", "amount": "350", "date": today, "description": "Feira", "category": "Mercado",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tx := field[map[string]any](t, decode(t, w), "transaction")
	assert.Equal(t, "-350", tx["amount"])
	id := tx["id"].(string)

	w = do(t, r, http.MethodGet, "/api/transactions/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "4650", field[string](t, env, "balance"))
	assert.Equal(t, "5000", field[string](t, env, "month_income"))
	assert.Equal(t, "350", field[string](t, env, "month_expense"))
	assert.Equal(t, []string{"Mercado", "Salário"}, field[[]string](t, env, "categories"))

	w = do(t, r, http.MethodGet, "/api/transactions?category=Mercado", nil)
	assert.Equal(t, 1, field[int](t, decode(t, w), "total"))

	w = do(t, r, http.MethodDelete, "/api/transactions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/transactions/summary", nil)
	assert.Equal(t, "5000", field[string](t, decode(t, w), "balance"))
}

func TestCreateTransactionValidation(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)

	cases := []map[string]string{
		{"type": "income", "amount": "10", "category": ""},
		{"type": "income", "amount": "-10", "category": "Outros"},
		{"type": "income", "amount": "abc", "category": "Outros"},
		{"type": "gift", "amount": "10", "category": "Outros"},
		{"type": "income", "amount": "10", "category": "Outros", "date": "ontem"},
	}
	for _, body := range cases {
		w := do(t, r, http.MethodPost, "/api/transactions", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, util.CodeInvalidParam, decode(t, w).Code)
	}
}

func TestProfileThemeToggle(t *testing.T) {
	a, r := setup(t)
	demoLogin(t, r)
	require.True(t, a.Theme.Dark())

	w := do(t, r, http.MethodPatch, "/api/profile", map[string]string{"theme_preference": "light"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, a.Theme.Dark())

	w = do(t, r, http.MethodPatch, "/api/profile", map[string]string{"theme_preference": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPatch, "/api/profile", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePasswordMismatch(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)

	w := do(t, r, http.MethodPost, "/api/profile/password", map[string]string{"password": "secret1", "confirm_password": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/profile/password", map[string]string{"password": "secret1", "confirm_password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAvatarUploadIsServed(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	url := field[string](t, decode(t, w), "avatar_url")
	assert.True(t, strings.HasPrefix(url, "/avatars/dev/"), url)

	w = do(t, r, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestExportTransactionsCSV(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)
	do(t, r, http.MethodPost, "/api/transactions", map[string]string{
		"type": "expense", "amount": "80.5", "date": "2024-03-02", "description": "Pizza", "category": "Restaurante",
	})

	w := do(t, r, http.MethodGet, "/api/export/transactions?format=csv&kind=detailed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "transacoes_detailed_")

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeff"))
	assert.Contains(t, body, "Data,Tipo,Categoria,Descrição,Valor")
	assert.Contains(t, body, "02/03/2024,Despesa,Restaurante,Pizza,-80.50")

	w = do(t, r, http.MethodGet, "/api/export/transactions?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/api/export/transactions?kind=pivot", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportTemplateXLSX(t *testing.T) {
	_, r := setup(t)

	w := do(t, r, http.MethodGet, "/api/export/templates/Metas?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "modelo_metas_")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	formula, err := f.GetCellFormula("Metas", "D3")
	require.NoError(t, err)
	assert.Equal(t, "C3/B3", formula)

	w = do(t, r, http.MethodGet, "/api/export/templates/Impostos", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBudgetAllocationAndModels(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)
	do(t, r, http.MethodPost, "/api/transactions", map[string]string{"type": "income", "amount": "1000", "category": "Salário"})
	do(t, r, http.MethodPost, "/api/transactions", map[string]string{"type": "expense", "amount": "100", "category": "Lazer"})

	w := do(t, r, http.MethodGet, "/api/budget", nil)
	require.Equal(t, http.StatusOK, w.Code)
	allocs := field[[]map[string]any](t, decode(t, w), "allocations")
	require.Len(t, allocs, 3)
	assert.Equal(t, "Lazer", allocs[1]["name"])
	assert.Equal(t, "270", allocs[1]["allocated"])
	assert.Equal(t, "100", allocs[1]["spent"])

	w = do(t, r, http.MethodPost, "/api/budget/models", map[string]any{
		"name":       "Agressivo",
		"categories": []map[string]any{{"name": "Essenciais", "percentage": "40"}, {"name": "Investimentos", "percentage": "50"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/budget/models", map[string]any{
		"name":       "Agressivo",
		"categories": []map[string]any{{"name": "Essenciais", "percentage": "50"}, {"name": "Investimentos", "percentage": "50"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/budget?model=Agressivo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, field[[]map[string]any](t, decode(t, w), "allocations"), 2)

	w = do(t, r, http.MethodGet, "/api/budget?model=Nenhum", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvestments(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)

	w := do(t, r, http.MethodPost, "/api/investments", map[string]string{
		"ticker": "petr4", "quantity": "100", "purchase_price": "35.50", "dividend_frequency": "quarterly", "dividend_amount": "0.8",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	inv := field[map[string]any](t, decode(t, w), "investment")
	assert.Equal(t, "PETR4", inv["ticker"])

	w = do(t, r, http.MethodPost, "/api/investments", map[string]string{"ticker": "X", "quantity": "0", "purchase_price": "1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/investments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := field[[]map[string]any](t, decode(t, w), "rows")
	require.Len(t, rows, 1)
	assert.Equal(t, "80", rows[0]["dividends"])

	w = do(t, r, http.MethodDelete, "/api/investments/"+inv["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMarketNews(t *testing.T) {
	_, r := setup(t)

	w := do(t, r, http.MethodGet, "/api/market/news?category=Cripto", nil)
	require.Equal(t, http.StatusOK, w.Code)
	news := field[[]map[string]any](t, decode(t, w), "news")
	require.Len(t, news, 2)
	assert.Equal(t, "há 4h", news[0]["age"])

	w = do(t, r, http.MethodGet, "/api/market/quotes/zzzz", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventStream(t *testing.T) {
	_, r := setup(t)
	demoLogin(t, r)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/events", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() map[string]json.RawMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var m map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		var typ string
		require.NoError(t, json.Unmarshal(read()["type"], &typ))
		seen[typ] = true
	}
	assert.True(t, seen["session"])
	assert.True(t, seen["transactions"])

	do(t, r, http.MethodPost, "/api/transactions", map[string]string{"type": "income", "amount": "42", "category": "Outros"})

	assert.Eventually(t, func() bool {
		m := read()
		var typ string
		_ = json.Unmarshal(m["type"], &typ)
		if typ != "transactions" {
			return false
		}
		var data struct {
			Balance string `json:"balance"`
		}
		_ = json.Unmarshal(m["data"], &data)
		return data.Balance == "42"
	}, 5*time.Second, 10*time.Millisecond)
}
