package plugin

import (
	"context"
	"fmt"

	"plughost/internal/services"
)

// Kind 是插件被判定的调用约定
type Kind int

const (
	KindBareFunction Kind = iota + 1
	KindLifecycle
)

func (k Kind) String() string {
	switch k {
	case KindBareFunction:
		return "bare-function"
	case KindLifecycle:
		return "lifecycle"
	default:
		return "unknown"
	}
}

// InitFunc 是裸函数约定，阻塞到插件初始化完成或失败。
type InitFunc func(ctx context.Context, r Router, svc *services.Registry) error

// ShutdownFunc 是生命周期插件的关闭钩子
type ShutdownFunc func(ctx context.Context) error

// Lifecycle 是结构体形式的生命周期对象，Shutdown 可选
type Lifecycle struct {
	Init     InitFunc
	Shutdown ShutdownFunc
}

// Initializer 是接口形式的生命周期对象
type Initializer interface {
	Init(ctx context.Context, r Router, svc *services.Registry) error
}

// Shutdowner 可与 Initializer 一起实现
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Entry 是模块值判定后的形式。Classify 之后只按 Kind 分支，不再查看原始值。
type Entry struct {
	Kind     Kind
	Init     InitFunc
	Shutdown ShutdownFunc
}

// Classify 对模块值只检查一次
func Classify(v any) (Entry, error) {
	switch m := v.(type) {
	case nil:
		return Entry{}, fmt.Errorf("%w: nil module", ErrShape)
	case InitFunc:
		if m == nil {
			return Entry{}, fmt.Errorf("%w: nil function", ErrShape)
		}
		return Entry{Kind: KindBareFunction, Init: m}, nil
	case func(context.Context, Router, *services.Registry) error:
		if m == nil {
			return Entry{}, fmt.Errorf("%w: nil function", ErrShape)
		}
		return Entry{Kind: KindBareFunction, Init: m}, nil
	case *Lifecycle:
		if m == nil {
			return Entry{}, fmt.Errorf("%w: nil lifecycle", ErrShape)
		}
		return classifyLifecycle(*m)
	case Lifecycle:
		return classifyLifecycle(m)
	case Initializer:
		e := Entry{Kind: KindLifecycle, Init: m.Init}
		if s, ok := v.(Shutdowner); ok {
			e.Shutdown = s.Shutdown
		}
		return e, nil
	default:
		return Entry{}, fmt.Errorf("%w: %T", ErrShape, v)
	}
}

func classifyLifecycle(l Lifecycle) (Entry, error) {
	if l.Init == nil {
		return Entry{}, fmt.Errorf("%w: lifecycle without init", ErrShape)
	}
	return Entry{Kind: KindLifecycle, Init: l.Init, Shutdown: l.Shutdown}, nil
}
