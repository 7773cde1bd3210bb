package settings

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const contentTypeJSON = "application/json; charset=utf-8"

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Get 返回当前设置。
func (h *Handler) Get(c *gin.Context) {
	s, err := h.store.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, s)
}

// Update 部分合并请求体并返回合并结果。
func (h *Handler) Update(c *gin.Context) {
	patch, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s, err := h.store.Update(c.Request.Context(), patch)
	if err != nil {
		if errors.Is(err, ErrInvalidPatch) {
			fail(c, http.StatusBadRequest, err)
			return
		}
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, s)
}

// Reset 恢复默认值并返回默认值。
func (h *Handler) Reset(c *gin.Context) {
	s, err := h.store.Reset(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, contentTypeJSON, s)
}

func (h *Handler) Defaults(c *gin.Context) {
	c.Data(http.StatusOK, contentTypeJSON, h.store.Defaults())
}

func fail(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.Printf("[settings] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
