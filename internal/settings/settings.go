package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidPatch = errors.New("settings: patch must be a JSON object")
	ErrNotFound     = errors.New("settings: store not configured")
)

// Settings 是一个 JSON 对象文档。
type Settings = json.RawMessage

// BuiltinDefaults 未设置 SETTINGS_DEFAULTS 时使用。
const BuiltinDefaults = `{"theme":"light","volume":5,"language":"en","notifications":true}`

// Store 是设置协作者：读取、部分合并、重置以及同步返回默认值。
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, patch []byte) (Settings, error)
	Reset(ctx context.Context) (Settings, error)
	Defaults() Settings
}

// Backend 只负责持久化整份文档。
type Backend interface {
	// found=false 表示尚未保存过
	Load(ctx context.Context) (doc []byte, found bool, err error)
	Save(ctx context.Context, doc []byte) error
}

// Service 在 Backend 之上实现 Store。
type Service struct {
	mu       sync.Mutex
	backend  Backend
	defaults []byte
}

var _ Store = (*Service)(nil)

func NewService(b Backend, defaults Settings) *Service {
	return &Service{backend: b, defaults: clone(defaults)}
}

func (s *Service) Defaults() Settings { return clone(s.defaults) }

func (s *Service) Get(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

func (s *Service) current(ctx context.Context) (Settings, error) {
	doc, found, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return clone(s.defaults), nil
	}
	return clone(doc), nil
}

func (s *Service) Update(ctx context.Context, patch []byte) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := Merge(cur, patch)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Save(ctx, merged); err != nil {
		return nil, err
	}
	return clone(merged), nil
}

func (s *Service) Reset(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Save(ctx, s.defaults); err != nil {
		return nil, err
	}
	return clone(s.defaults), nil
}

// DefaultsFromEnv 读取 SETTINGS_DEFAULTS；非法时回退到内置默认值。
func DefaultsFromEnv() Settings {
	v := strings.TrimSpace(os.Getenv("SETTINGS_DEFAULTS"))
	if v == "" {
		return Settings(BuiltinDefaults)
	}
	if !isObject([]byte(v)) {
		log.Printf("[settings] SETTINGS_DEFAULTS is not a JSON object; using builtin defaults")
		return Settings(BuiltinDefaults)
	}
	return Settings(v)
}

func isObject(b []byte) bool {
	return gjson.ValidBytes(b) && gjson.ParseBytes(b).IsObject()
}

func clone(b []byte) Settings {
	if b == nil {
		return nil
	}
	return Settings(bytes.Clone(b))
}
