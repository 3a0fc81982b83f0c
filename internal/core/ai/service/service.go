package service

import (
	"context"
	"strings"
	"time"

	"recipe-assistant/internal/core/ai/provider"
	"recipe-assistant/internal/pkg/common"
)

// Service AI 補全服務，統一呼叫提供者並記錄耗時
type Service struct {
	provider    provider.Provider
	maxTokens   int
	temperature float64
}

// NewService 創建 AI 服務
func NewService(p provider.Provider, maxTokens int, temperature float64) *Service {
	return &Service{
		provider:    p,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Complete 送出對話並回傳模型文字
func (s *Service) Complete(ctx context.Context, messages []provider.Message) (string, error) {
	if timeout := s.provider.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &provider.Request{
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	common.LogAICall(s.provider.GetModel(), time.Since(start), err)
	if err != nil {
		return "", common.ErrAIServiceError.Wrap(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", common.ErrAIServiceError
	}
	return content, nil
}

// Model 目前使用的模型
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// Close 關閉提供者
func (s *Service) Close() error {
	return s.provider.Close()
}
