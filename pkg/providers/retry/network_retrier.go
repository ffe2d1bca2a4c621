package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	// 最大重试次数
	MaxRetries int `json:"max_retries"`

	// 初始延迟时间
	InitialDelay time.Duration `json:"initial_delay"`

	// 最大延迟时间
	MaxDelay time.Duration `json:"max_delay"`

	// 退避因子（指数退避）
	BackoffFactor float64 `json:"backoff_factor"`

	// 网络瞬时错误的初始延迟（更短，快速重试）
	NetworkInitialDelay time.Duration `json:"network_initial_delay"`
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:          3,
		InitialDelay:        time.Second,
		MaxDelay:            30 * time.Second,
		BackoffFactor:       2.0,
		NetworkInitialDelay: 100 * time.Millisecond,
	}
}

// ErrorType 错误类型枚举
type ErrorType int

const (
	ErrorTypeNone          ErrorType = iota
	ErrorTypeNetwork                 // 网络瞬时错误
	ErrorTypeRetryableHTTP           // 可重试的HTTP错误（429）
	ErrorTypeServerError             // 服务端错误（5xx）
	ErrorTypeClientError             // 客户端错误（4xx）
	ErrorTypePermanent               // 永久性错误
)

// NetworkRetrier 网络重试器
type NetworkRetrier struct {
	config RetryConfig
}

// NewNetworkRetrier 创建网络重试器
func NewNetworkRetrier(config RetryConfig) *NetworkRetrier {
	return &NetworkRetrier{config: config}
}

// RetryableFunc 可重试的函数类型
type RetryableFunc func() (*http.Response, error)

// ExecuteWithRetry 执行带重试的函数。
// 2xx 直接返回；网络错误、429 和 5xx 按指数退避重试；
// 其余 4xx 视为永久错误立即返回。
func (nr *NetworkRetrier) ExecuteWithRetry(ctx context.Context, fn RetryableFunc) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= nr.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := nr.delay(attempt, isNetworkError(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := fn()
		if err == nil && resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		if lastResp != nil && lastResp.Body != nil {
			lastResp.Body.Close()
		}
		lastErr = err
		lastResp = resp

		switch classify(err, resp) {
		case ErrorTypeNetwork, ErrorTypeRetryableHTTP, ErrorTypeServerError:
			continue
		default:
			// 永久性错误不再重试
			if lastErr != nil {
				return lastResp, lastErr
			}
			return lastResp, nil
		}
	}

	if lastErr != nil {
		return lastResp, lastErr
	}
	if lastResp != nil {
		return lastResp, nil
	}
	return nil, errors.New("no response received")
}

// classify 分类错误
func classify(err error, resp *http.Response) ErrorType {
	if err != nil {
		if isNetworkError(err) {
			return ErrorTypeNetwork
		}
		return ErrorTypePermanent
	}

	if resp != nil {
		switch {
		case resp.StatusCode >= 500:
			return ErrorTypeServerError
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrorTypeRetryableHTTP
		case resp.StatusCode >= 400:
			return ErrorTypeClientError
		}
	}

	return ErrorTypeNone
}

// isNetworkError 判断是否为网络瞬时错误
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return isNetworkError(urlErr.Err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"connection timed out",
		"timeout",
		"temporary failure",
		"network is unreachable",
		"no such host",
		"broken pipe",
		"i/o timeout",
		"eof",
	}
	for _, pattern := range patterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// delay 计算第 attempt 次重试前的延迟
func (nr *NetworkRetrier) delay(attempt int, network bool) time.Duration {
	initial := nr.config.InitialDelay
	if network && nr.config.NetworkInitialDelay > 0 {
		initial = nr.config.NetworkInitialDelay
	}

	factor := nr.config.BackoffFactor
	if factor <= 1.0 {
		factor = 2.0
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if nr.config.MaxDelay > 0 && d > nr.config.MaxDelay {
		d = nr.config.MaxDelay
	}
	return d
}

// WrapHTTPClient 包装HTTP客户端，添加重试功能
func (nr *NetworkRetrier) WrapHTTPClient(client *http.Client) *RetryableHTTPClient {
	return &RetryableHTTPClient{
		client:  client,
		retrier: nr,
	}
}

// RetryableHTTPClient 可重试的HTTP客户端
type RetryableHTTPClient struct {
	client  *http.Client
	retrier *NetworkRetrier
}

// Do 执行HTTP请求（带重试）。请求体通过 GetBody 重建，
// 因此调用方必须使用可重放的 body（bytes.Reader / strings.Reader）。
func (rc *RetryableHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return rc.retrier.ExecuteWithRetry(req.Context(), func() (*http.Response, error) {
		cloned := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			cloned.Body = body
		}
		return rc.client.Do(cloned)
	})
}
