package plugin

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// HandlerResult 是单个插件的关闭结果
type HandlerResult struct {
	Name     string
	Kind     Kind
	Skipped  bool
	Duration time.Duration
	Err      error
}

type ShutdownResult struct {
	TotalDuration time.Duration
	Results       []HandlerResult
	// 任一钩子失败时包装 ErrHandlerFailed
	Err error
}

func (r *ShutdownResult) Failed() bool { return r.Err != nil }

func (r *ShutdownResult) FailedHandlers() []string {
	var failed []string
	for _, hr := range r.Results {
		if hr.Err != nil {
			failed = append(failed, hr.Name)
		}
	}
	return failed
}

type CoordinatorOption func(*Coordinator)

// WithProgress 在每个插件关闭后回调
func WithProgress(fn func(HandlerResult)) CoordinatorOption {
	return func(c *Coordinator) { c.onProgress = fn }
}

// Coordinator 按加载顺序的逆序关闭插件，只执行一次。
// 不设单插件超时：不返回的钩子会阻塞后续插件。
type Coordinator struct {
	handles    []*Handle
	onProgress func(HandlerResult)

	once   sync.Once
	done   chan struct{}
	result *ShutdownResult
}

func NewCoordinator(handles []*Handle, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		handles: append([]*Handle(nil), handles...),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Shutdown 执行全部关闭钩子。之后的调用直接返回 ErrAlreadyShutdown。
func (c *Coordinator) Shutdown(ctx context.Context) (*ShutdownResult, error) {
	ran := false
	c.once.Do(func() {
		ran = true
		c.result = c.run(ctx)
		close(c.done)
	})
	if !ran {
		return nil, ErrAlreadyShutdown
	}
	return c.result, c.result.Err
}

func (c *Coordinator) Done() <-chan struct{} { return c.done }

// Done 关闭前 Result 为 nil
func (c *Coordinator) Result() *ShutdownResult {
	select {
	case <-c.done:
		return c.result
	default:
		return nil
	}
}

func (c *Coordinator) run(ctx context.Context) *ShutdownResult {
	start := time.Now()
	res := &ShutdownResult{Results: make([]HandlerResult, 0, len(c.handles))}
	var failed []string

	for i := len(c.handles) - 1; i >= 0; i-- {
		h := c.handles[i]
		hr := HandlerResult{Name: h.Name, Kind: h.Kind}

		if h.Kind != KindLifecycle || h.shutdown == nil {
			hr.Skipped = true
		} else {
			t0 := time.Now()
			hr.Err = safeCall(func() error { return h.shutdown(ctx) })
			hr.Duration = time.Since(t0)
			if hr.Err != nil {
				failed = append(failed, h.Name)
				log.Printf("[plugin] shutdown %s failed: %v", h.Name, hr.Err)
			} else {
				log.Printf("[plugin] shutdown %s", h.Name)
			}
		}

		res.Results = append(res.Results, hr)
		if c.onProgress != nil {
			c.onProgress(hr)
		}
	}

	if len(failed) > 0 {
		res.Err = fmt.Errorf("%w: %v", ErrHandlerFailed, failed)
	}
	res.TotalDuration = time.Since(start)
	return res
}
