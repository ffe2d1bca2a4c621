package stats

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/langdec/langdec/pkg/providers"
)

// ProviderStats 提供商性能统计
type ProviderStats struct {
	ProviderName       string `json:"provider_name"`
	TotalRequests      int64  `json:"total_requests"`
	WordRequests       int64  `json:"word_requests"`
	TextRequests       int64  `json:"text_requests"`
	SuccessfulRequests int64  `json:"successful_requests"`
	FailedRequests     int64  `json:"failed_requests"`
	CacheHits          int64  `json:"cache_hits"`
	TotalTokensIn      int64  `json:"total_tokens_in"`
	TotalTokensOut     int64  `json:"total_tokens_out"`

	// 延迟指标
	AverageLatency time.Duration `json:"average_latency"`
	MinLatency     time.Duration `json:"min_latency"`
	MaxLatency     time.Duration `json:"max_latency"`
	TotalLatency   time.Duration `json:"total_latency"`

	// 按错误类型统计
	ErrorTypes map[string]int64 `json:"error_types"`

	FirstRequestTime time.Time `json:"first_request_time"`
	LastRequestTime  time.Time `json:"last_request_time"`
}

// RequestResult 单次请求结果
type RequestResult struct {
	Kind      string // word 或 text
	Success   bool
	Latency   time.Duration
	TokensIn  int
	TokensOut int
	ErrorType string
	CacheHit  bool
}

// Manager 统计管理器
type Manager struct {
	mu     sync.RWMutex
	stats  map[string]*ProviderStats
	logger *zap.Logger
}

// NewManager 创建统计管理器
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		stats:  make(map[string]*ProviderStats),
		logger: logger,
	}
}

// RecordRequest 记录请求结果
func (m *Manager) RecordRequest(provider string, result RequestResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.stats[provider]
	if !exists {
		s = &ProviderStats{
			ProviderName: provider,
			ErrorTypes:   make(map[string]int64),
			MinLatency:   time.Hour,
		}
		m.stats[provider] = s
	}

	now := time.Now()
	if s.FirstRequestTime.IsZero() {
		s.FirstRequestTime = now
	}
	s.LastRequestTime = now

	s.TotalRequests++
	switch result.Kind {
	case "word":
		s.WordRequests++
	case "text":
		s.TextRequests++
	}

	if result.CacheHit {
		s.CacheHits++
	}

	if result.Success {
		s.SuccessfulRequests++
	} else {
		s.FailedRequests++
		if result.ErrorType != "" {
			s.ErrorTypes[result.ErrorType]++
		}
	}

	s.TotalTokensIn += int64(result.TokensIn)
	s.TotalTokensOut += int64(result.TokensOut)

	s.TotalLatency += result.Latency
	if result.Latency < s.MinLatency {
		s.MinLatency = result.Latency
	}
	if result.Latency > s.MaxLatency {
		s.MaxLatency = result.Latency
	}
	if s.TotalRequests > 0 {
		s.AverageLatency = s.TotalLatency / time.Duration(s.TotalRequests)
	}
}

// Snapshot 返回当前统计的拷贝，按提供商名称排序
func (m *Manager) Snapshot() []ProviderStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ProviderStats, 0, len(m.stats))
	for _, s := range m.stats {
		copied := *s
		copied.ErrorTypes = make(map[string]int64, len(s.ErrorTypes))
		for k, v := range s.ErrorTypes {
			copied.ErrorTypes[k] = v
		}
		out = append(out, copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ProviderName < out[j].ProviderName
	})
	return out
}

// ClassifyError 给错误归类统计键。优先使用提供商错误码，
// 否则按错误文本猜测类别。
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	var provErr *providers.Error
	if errors.As(err, &provErr) {
		return provErr.Code
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return providers.ErrCodeTimeout
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429"):
		return providers.ErrCodeRateLimit
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized"):
		return providers.ErrCodeAuth
	case strings.Contains(errStr, "500") || strings.Contains(errStr, "502") || strings.Contains(errStr, "503"):
		return providers.ErrCodeServerError
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "network"):
		return "network_error"
	default:
		return providers.ErrCodeUnknown
	}
}
