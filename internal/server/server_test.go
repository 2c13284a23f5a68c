package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"katydid-common-idgen/internal/store"
	"katydid-common-idgen/pkg/config"
	"katydid-common-idgen/pkg/database"
	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

const testSecret = "test-secret"

type fixture struct {
	srv   *Server
	reg   *registry.Registry
	store *store.Store
	clk   *clock.Manual
}

func newFixture(t *testing.T, auth config.AuthConfig, withStore bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewManual(uint64(time.Now().UnixMilli()))
	def, err := snowflake.NewShared(snowflake.New(7), clk)
	require.NoError(t, err)

	reg := registry.New(clk, registry.WithLogger(zap.NewNop()))

	var st *store.Store
	if withStore {
		db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "server.db"), zap.NewNop())
		require.NoError(t, err)
		st, err = store.New(db, def)
		require.NoError(t, err)
	}

	srv := New(Options{
		Server:   config.ServerConfig{Addr: "127.0.0.1:0", MaxBatch: 100},
		Auth:     auth,
		Registry: reg,
		Default:  def,
		Store:    st,
		Logger:   zap.NewNop(),
	})
	return &fixture{srv: srv, reg: reg, store: st, clk: clk}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, false)
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	w = f.do(t, http.MethodGet, "/healthz", "", map[string]string{headerRequestID: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(headerRequestID))
}

func TestAssignDefault(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, false)

	w := f.do(t, http.MethodGet, "/v1/ids?count=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[idsResponse](t, w)
	require.Len(t, resp.IDs, 5)
	for i := 1; i < len(resp.IDs); i++ {
		assert.Less(t, resp.IDs[i-1].Int64(), resp.IDs[i].Int64())
	}
	assert.Equal(t, uint64(7), resp.IDs[0].Identifier())
	// ID在JSON中以字符串表示
	assert.Contains(t, w.Body.String(), `"`+resp.IDs[0].String()+`"`)

	for _, q := range []string{"0", "101", "abc", "-1"} {
		w = f.do(t, http.MethodGet, "/v1/ids?count="+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "count=%s", q)
		assert.NotEmpty(t, decode[errorResponse](t, w).RequestID)
	}
}

func TestDecode(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, false)
	now := f.clk.Timestamp()
	id := snowflake.ID(snowflake.Pack(0, now, 513, 3))

	for _, raw := range []string{id.String(), id.Hex(), id.Binary()} {
		w := f.do(t, http.MethodGet, "/v1/ids/"+raw, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[decodeResponse](t, w)
		assert.Equal(t, id.Int64(), resp.ID)
		assert.Equal(t, now, resp.Timestamp)
		assert.Equal(t, uint64(513), resp.Identifier)
		assert.Equal(t, uint64(3), resp.Sequence)
		assert.True(t, resp.Valid)
	}

	t.Run("未来时间戳", func(t *testing.T) {
		future := snowflake.ID(snowflake.Pack(0, now+10*60*1000, 1, 0))
		w := f.do(t, http.MethodGet, "/v1/ids/"+future.String(), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[decodeResponse](t, w)
		assert.False(t, resp.Valid)
		assert.NotEmpty(t, resp.Reason)
	})

	t.Run("非法输入", func(t *testing.T) {
		for _, raw := range []string{"abc", "-5", "0"} {
			w := f.do(t, http.MethodGet, "/v1/ids/"+raw, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, raw)
		}
	})
}

func TestGeneratorLifecycle(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, true)
	ctx := context.Background()

	w := f.do(t, http.MethodPost, "/v1/generators", `{"key":"orders","identifier":2000,"enable_metrics":true}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[generatorResponse](t, w)
	assert.Equal(t, "orders", created.Key)
	assert.Equal(t, uint64(976), created.Identifier, "超出10位的标识应被截断")

	defs, err := f.store.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "orders", defs[0].Key)

	w = f.do(t, http.MethodPost, "/v1/generators", `{"key":"orders"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/v1/generators", `{"key":"bad key!"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/v1/generators", `{"key":"x","identifier_source":"etcd"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/v1/generators", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"orders"}, decode[generatorsResponse](t, w).Generators)

	w = f.do(t, http.MethodGet, "/v1/generators/orders/ids?count=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ids := decode[idsResponse](t, w).IDs
	require.Len(t, ids, 3)
	assert.Equal(t, uint64(976), ids[0].Identifier())

	w = f.do(t, http.MethodGet, "/v1/generators/orders/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[map[string]uint64](t, w)
	assert.Equal(t, uint64(1), m["metrics_enabled"])
	assert.Equal(t, uint64(3), m["id_count"])

	w = f.do(t, http.MethodGet, "/v1/generators/missing/ids", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/v1/generators/orders", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, f.reg.Has("orders"))
	defs, err = f.store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)

	w = f.do(t, http.MethodDelete, "/v1/generators/orders", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteConfiguredGenerator(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, true)
	// 来自配置文件、未持久化的生成器
	_, err := f.reg.Create("static", "snowflake", &snowflake.Config{Identifier: 1})
	require.NoError(t, err)

	w := f.do(t, http.MethodDelete, "/v1/generators/static", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBearerAuth(t *testing.T) {
	f := newFixture(t, config.AuthConfig{Enabled: true, Secret: testSecret, Issuer: "idgen"}, false)

	sign := func(secret, issuer string) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "tester",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"无Token", nil, http.StatusUnauthorized},
		{"格式错误", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized},
		{"密钥错误", map[string]string{"Authorization": sign("other", "idgen")}, http.StatusUnauthorized},
		{"签发者错误", map[string]string{"Authorization": sign(testSecret, "other")}, http.StatusUnauthorized},
		{"正常", map[string]string{"Authorization": sign(testSecret, "idgen")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/v1/ids", "", tt.header)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	// 健康检查不需要鉴权
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListenAndServeShutdown(t *testing.T) {
	f := newFixture(t, config.AuthConfig{}, false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
