package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"recipe-assistant/internal/pkg/common"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store 保存目前生效的規則集，支援熱載入
type Store struct {
	path     string
	mu       sync.RWMutex
	current  *RuleSet
	onReload []func(*RuleSet)
	onError  []func(error)
}

// NewStore 從規則檔建立 Store；path 為空時只使用內建規則
func NewStore(path string) (*Store, error) {
	rs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: rs}, nil
}

// NewStaticStore 以固定規則集建立 Store（測試或嵌入用）
func NewStaticStore(rs *RuleSet) *Store {
	return &Store{current: rs}
}

// Current 取得目前的規則集
func (s *Store) Current() *RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnReload 註冊規則重新載入後的回呼
func (s *Store) OnReload(fn func(*RuleSet)) {
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

// OnReloadError 註冊重新載入失敗時的回呼
func (s *Store) OnReloadError(fn func(error)) {
	s.mu.Lock()
	s.onError = append(s.onError, fn)
	s.mu.Unlock()
}

// Reload 重新讀取規則檔；失敗時保留舊規則
func (s *Store) Reload() error {
	rs, err := LoadFile(s.path)
	if err != nil {
		s.mu.RLock()
		callbacks := append([]func(error){}, s.onError...)
		s.mu.RUnlock()
		for _, fn := range callbacks {
			fn(err)
		}
		return err
	}

	s.mu.Lock()
	s.current = rs
	callbacks := append([]func(*RuleSet){}, s.onReload...)
	s.mu.Unlock()

	common.LogInfo("拒絕規則已重新載入",
		zap.String("path", s.path),
		zap.Int("harm_rules", len(rs.Harm)),
		zap.Int("scope_rules", len(rs.OutOfScope)),
		zap.Int("specialist_ingredients", len(rs.Specialist)),
	)
	for _, fn := range callbacks {
		fn(rs)
	}
	return nil
}

// Watch 監看規則檔所在目錄，檔案變動時重新載入，直到 ctx 結束
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("no rules file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch rules dir %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if err := s.Reload(); err != nil {
						common.LogError("拒絕規則重新載入失敗", zap.Error(err), zap.String("path", s.path))
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				common.LogError("fsnotify error", zap.Error(err))
			}
		}
	}()

	return nil
}
