package plugin

import (
	"errors"
	"fmt"
)

var (
	// 模块值既不是裸函数也不是生命周期对象
	ErrShape = errors.New("plugin: unsupported module shape")

	ErrNoRuntime       = errors.New("plugin: no runtime for extension")
	ErrRouteConflict   = errors.New("plugin: route already registered")
	ErrRoutesSealed    = errors.New("plugin: routes are sealed after init")
	ErrInvalidRoute    = errors.New("plugin: invalid route")
	ErrPanic           = errors.New("plugin: panic")
	ErrAlreadyShutdown = errors.New("plugin: shutdown already ran")
	ErrHandlerFailed   = errors.New("plugin: one or more shutdown hooks failed")
)

// LoadError.Op 的取值
const (
	OpLoad     = "load"
	OpClassify = "classify"
	OpInit     = "init"
)

// LoadError 是 Host.Load 期间单个插件的失败，不影响其它插件
type LoadError struct {
	Plugin string
	Op     string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("plugin %s: %s: %v", e.Plugin, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
