package mod

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"plughost/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeModule struct {
	name    string
	prefix  string
	enabled bool
	fail    bool
	envRuns *int
}

func (m fakeModule) Name() string          { return m.name }
func (m fakeModule) DefaultPrefix() string { return m.prefix }
func (m fakeModule) DefaultEnabled() bool  { return m.enabled }
func (m fakeModule) InitEnv() {
	if m.envRuns != nil {
		*m.envRuns++
	}
}
func (m fakeModule) Mount(r gin.IRouter, p string, svc *services.Registry) error {
	if m.fail {
		return errors.New("boom")
	}
	greeting, _ := services.Lookup[string](svc, "greeting")
	r.Group(p).GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, m.name+":"+greeting) })
	return nil
}

func testRegistry(t *testing.T) *services.Registry {
	t.Helper()
	b := services.NewBuilder()
	require.NoError(t, b.Add("greeting", "hi"))
	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"MODULES", "MODULES_DISABLE", "API_ROOT_PREFIX", "alpha_ENABLED", "beta_ENABLED", "alpha_PREFIX"} {
		t.Setenv(k, "")
	}
}

func get(e *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMountAllDefaults(t *testing.T) {
	clearEnv(t)
	runs := 0
	reg := map[string]Module{
		"beta":  fakeModule{name: "beta", prefix: "/api/beta", enabled: true, envRuns: &runs},
		"alpha": fakeModule{name: "alpha", prefix: "/api/alpha", enabled: true, envRuns: &runs},
		"off":   fakeModule{name: "off", prefix: "/api/off", enabled: false},
	}
	e := gin.New()
	mounted := mountAll(reg, e, testRegistry(t))

	assert.Equal(t, []Mounted{{"alpha", "/api/alpha"}, {"beta", "/api/beta"}}, mounted)
	assert.Equal(t, 2, runs)
	w := get(e, "/api/alpha/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alpha:hi", w.Body.String())
	assert.Equal(t, http.StatusNotFound, get(e, "/api/off/ping").Code)
}

func TestMountAllEnvSwitches(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODULES", "beta, alpha")
	t.Setenv("beta_ENABLED", "off")
	t.Setenv("API_ROOT_PREFIX", "/v1")

	reg := map[string]Module{
		"alpha": fakeModule{name: "alpha", prefix: "/api/alpha", enabled: true},
		"beta":  fakeModule{name: "beta", prefix: "/api/beta", enabled: true},
	}
	mounted := mountAll(reg, gin.New(), testRegistry(t))
	assert.Equal(t, []Mounted{{"alpha", "/v1/api/alpha"}}, mounted)
}

func TestMountAllPrefixOverrideAndFailure(t *testing.T) {
	clearEnv(t)
	t.Setenv("alpha_PREFIX", "custom")

	reg := map[string]Module{
		"alpha": fakeModule{name: "alpha", prefix: "/api/alpha", enabled: true},
		"beta":  fakeModule{name: "beta", prefix: "/api/beta", enabled: true, fail: true},
	}
	e := gin.New()
	mounted := mountAll(reg, e, testRegistry(t))
	assert.Equal(t, []Mounted{{"alpha", "/custom"}}, mounted)
	assert.Equal(t, http.StatusOK, get(e, "/custom/ping").Code)
}

func TestDecideEnabled(t *testing.T) {
	clearEnv(t)
	dis := toSet([]string{"beta"})
	assert.True(t, decideEnabled("alpha", true, nil, dis))
	assert.False(t, decideEnabled("beta", true, nil, dis))
	assert.False(t, decideEnabled("alpha", false, nil, nil))
	assert.False(t, decideEnabled("gamma", true, []string{"alpha"}, nil))

	t.Setenv("alpha_ENABLED", "yes")
	assert.True(t, decideEnabled("alpha", false, []string{"beta"}, nil))
}
