package app

import (
	"errors"
	"io"
	"time"

	"plughost/internal/email"
	emailenv "plughost/internal/email/envinit"
	"plughost/internal/services"
	"plughost/internal/settings"
	settingsenv "plughost/internal/settings/envinit"
)

const (
	cacheServiceName = "cache"
	cacheTTL         = 5 * time.Second
)

// buildServices 构造并封存插件共享的服务注册表。
// 返回的 closers 需要在插件全部 shutdown 之后关闭。
func buildServices() (*services.Registry, []io.Closer, error) {
	var closers []io.Closer
	b := services.NewBuilder()

	errs := []error{
		b.AddFunc(settings.ServiceName, func() (any, error) {
			settingsenv.Init()
			store, closer, err := settings.Open()
			if err != nil {
				return nil, err
			}
			if closer != nil {
				closers = append(closers, closer)
			}
			return store, nil
		}),
		b.AddFunc(email.ServiceName, func() (any, error) {
			emailenv.Init()
			return email.NewMailerFromEnv(), nil
		}),
		b.Add(cacheServiceName, services.NewTTLCache[any](cacheTTL)),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}

	reg, err := b.Build()
	if err != nil {
		return nil, closers, err
	}
	return reg, closers, nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
