package plugin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterRegistersAndServes(t *testing.T) {
	engine := gin.New()
	table := newRouteTable(engine)
	r := table.For("hello")

	require.NoError(t, r.GET("/api/hello", okHandler))
	require.NoError(t, r.POST("/api/hello", okHandler))
	require.NoError(t, r.PUT("/api/hello", okHandler))
	require.NoError(t, r.PATCH("/api/hello", okHandler))
	require.NoError(t, r.DELETE("/api/hello", okHandler))
	require.NoError(t, r.Handle("options", "/api/hello", okHandler))
	assert.Len(t, r.Routes(), 6)

	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(m, "/api/hello", nil))
		assert.Equal(t, http.StatusOK, w.Code, m)
	}
}

func TestRouterIsAdditive(t *testing.T) {
	engine := gin.New()
	table := newRouteTable(engine)

	require.NoError(t, table.For("a").GET("/x", okHandler))
	err := table.For("b").GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	assert.ErrorIs(t, err, ErrRouteConflict)

	err = table.For("a").GET("/x", okHandler)
	assert.ErrorIs(t, err, ErrRouteConflict)

	assert.Empty(t, table.For("b").Routes())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRecoversEngineConflicts(t *testing.T) {
	engine := gin.New()
	engine.GET("/api/settings", okHandler)
	table := newRouteTable(engine)

	err := table.For("p").GET("/api/settings", okHandler)
	assert.ErrorIs(t, err, ErrRouteConflict)

	require.NoError(t, table.For("p").GET("/users/:id", okHandler))
	err = table.For("q").GET("/users/:name", okHandler)
	assert.ErrorIs(t, err, ErrRouteConflict)
	assert.Len(t, table.All(), 1)
}

func TestRouterValidation(t *testing.T) {
	r := newRouteTable(gin.New()).For("p")
	assert.ErrorIs(t, r.GET("no-slash", okHandler), ErrInvalidRoute)
	assert.ErrorIs(t, r.GET("/x"), ErrInvalidRoute)
	assert.ErrorIs(t, r.Handle("BREW", "/x", okHandler), ErrInvalidRoute)
}

func TestSealedRouterRejectsRegistration(t *testing.T) {
	table := newRouteTable(gin.New())
	r := table.For("p")
	require.NoError(t, r.GET("/before", okHandler))

	r.seal()
	assert.ErrorIs(t, r.GET("/after", okHandler), ErrRoutesSealed)
	assert.ErrorIs(t, r.Handle(http.MethodPost, "/before", okHandler), ErrRoutesSealed)
	assert.Len(t, r.Routes(), 1)

	// 其它插件的句柄不受影响
	require.NoError(t, table.For("q").GET("/other", okHandler))
}
