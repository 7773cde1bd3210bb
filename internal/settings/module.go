package settings

import (
	"plughost/internal/bootstrap/mod"
	"plughost/internal/services"
	"plughost/internal/settings/envinit"

	"github.com/gin-gonic/gin"
)

type modSettings struct{}

func (modSettings) Name() string          { return "settings" }
func (modSettings) DefaultPrefix() string { return "/api/settings" }
func (modSettings) DefaultEnabled() bool  { return true }
func (modSettings) InitEnv()              { envinit.Init() }
func (modSettings) Mount(r gin.IRouter, p string, svc *services.Registry) error {
	store, ok := services.Lookup[Store](svc, ServiceName)
	if !ok {
		return ErrNotFound
	}
	AttachTo(r, p, store, AdminHashFromEnv())
	return nil
}

func init() { mod.Register(modSettings{}) }
