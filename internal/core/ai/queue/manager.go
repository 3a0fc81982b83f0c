package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"

	"go.uber.org/zap"
)

// Handler 處理一筆隊列請求
type Handler func(ctx context.Context, payload string) (interface{}, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	ID      string
	Payload string
	Result  chan Result
}

// Result 處理結果
type Result struct {
	ID    string
	Value interface{}
	Error error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int  `json:"queue_length"`
	ProcessedCount int  `json:"processed_count"`
	MaxQueueSize   int  `json:"max_queue_size"`
	Workers        int  `json:"workers"`
	Running        bool `json:"running"`
}

// Manager 有界隊列與固定數量的 worker
type Manager struct {
	config    config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	running   int32
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	return &Manager{
		config: cfg,
		queue:  make(chan *Request, cfg.MaxSize),
		done:   make(chan struct{}),
	}
}

// Start 啟動 worker；重複呼叫無效
func (m *Manager) Start(handler Handler) {
	m.startOnce.Do(func() {
		atomic.StoreInt32(&m.running, 1)
		for i := 0; i < m.config.Workers; i++ {
			m.wg.Add(1)
			go m.worker(i, handler)
		}
		common.LogInfo("請求隊列已啟動",
			zap.Int("workers", m.config.Workers),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
	})
}

func (m *Manager) worker(id int, handler Handler) {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			if err := req.Context.Err(); err != nil {
				req.Result <- Result{ID: req.ID, Error: err}
				continue
			}
			value, err := handler(req.Context, req.Payload)
			atomic.AddInt64(&m.processed, 1)
			req.Result <- Result{ID: req.ID, Value: value, Error: err}
			common.LogDebug("隊列請求已處理", zap.Int("worker", id), zap.String("id", req.ID))
		}
	}
}

// Enqueue 將請求加入隊列
func (m *Manager) Enqueue(ctx context.Context, id, payload string) (chan Result, error) {
	select {
	case <-m.done:
		return nil, common.ErrQueueClosed
	default:
	}

	// 檢查隊列容量
	if len(m.queue) >= m.config.MaxSize {
		common.LogWarn("請求隊列已滿", zap.Int("max_queue_size", m.config.MaxSize))
		return nil, common.ErrQueueFull
	}

	req := &Request{
		Context: ctx,
		ID:      id,
		Payload: payload,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.String("id", id),
			zap.Int("queue_length", len(m.queue)),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, common.ErrQueueClosed
	}
}

// Submit 加入隊列並等待結果
func (m *Manager) Submit(ctx context.Context, id, payload string) (interface{}, error) {
	ch, err := m.Enqueue(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-ch:
		return res.Value, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, common.ErrQueueClosed
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
		Running:        atomic.LoadInt32(&m.running) == 1,
	}
}

// Close 停止 worker 並等待進行中的請求完成
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		atomic.StoreInt32(&m.running, 0)
		common.LogInfo("請求隊列已關閉", zap.Int64("processed", atomic.LoadInt64(&m.processed)))
	})
}
