package hello

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plughost/internal/bootstrap/plug"
	"plughost/internal/email"
	"plughost/internal/plugin"
	"plughost/internal/services"
	"plughost/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func setup(t *testing.T, withMailer bool) (*gin.Engine, *plugin.Coordinator) {
	t.Helper()
	b := services.NewBuilder()
	require.NoError(t, b.Add(settings.ServiceName, settings.NewMemoryStore(settings.Settings(`{"language":"zh"}`))))
	require.NoError(t, b.Add("cache", services.NewTTLCache[any](time.Minute)))
	if withMailer {
		require.NoError(t, b.Add(email.ServiceName, email.NewMailer(nil)))
	}
	reg, err := b.Build()
	require.NoError(t, err)

	e := gin.New()
	host := plugin.NewHost(e, reg)
	res := host.Load(context.Background(), []plugin.Descriptor{{Name: "hello", Module: &Plugin{}}})
	require.NoError(t, res.Err())
	require.Len(t, res.Loaded, 1)
	assert.Equal(t, plugin.KindLifecycle, res.Loaded[0].Kind)
	return e, plugin.NewCoordinator(res.Loaded)
}

func TestHelloListsServices(t *testing.T) {
	e, coord := setup(t, true)

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hello", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message           string   `json:"message"`
		Language          string   `json:"language"`
		AvailableServices []string `json:"availableServices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "zh", body.Language)
	assert.True(t, strings.HasPrefix(body.Message, "你好"))
	assert.Equal(t, []string{"cache", "mailer", "settings"}, body.AvailableServices)

	res, err := coord.Shutdown(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Failed())
}

func TestHelloNotify(t *testing.T) {
	e, _ := setup(t, true)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/hello/notify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		e.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post(`{"to":"not-an-address"}`).Code)

	w := post(`{"to":"a@example.com"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"sent":true,"strategy":"none"}`, w.Body.String())
}

func TestHelloWithoutMailer(t *testing.T) {
	e, _ := setup(t, false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/hello/notify", strings.NewReader(`{"to":"a@example.com"}`))
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRegisteredAsBuiltin(t *testing.T) {
	v, ok := plug.Get("hello")
	require.True(t, ok)
	entry, err := plugin.Classify(v)
	require.NoError(t, err)
	assert.Equal(t, plugin.KindLifecycle, entry.Kind)
	assert.NotNil(t, entry.Shutdown)
}
