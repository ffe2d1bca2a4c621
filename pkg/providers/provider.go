package providers

import (
	"context"
	"time"
)

// BaseConfig 基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 超时和重试
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	// 代理设置
	ProxyURL string `json:"proxy_url,omitempty"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
		RetryDelay: time.Second,
		Headers:    make(map[string]string),
	}
}

// TranslationProvider 提供商基础接口
//
// 解码器依赖的两个操作是不对称的：TranslateWord 失败只表示该词没有
// 孤立翻译（解码继续），TranslateText 失败则让整次解码失败。
type TranslationProvider interface {
	// TranslateWord 翻译单个词（无句子上下文）
	TranslateWord(ctx context.Context, req *Request) (*Response, error)

	// TranslateText 翻译整段文本
	TranslateText(ctx context.Context, req *Request) (*Response, error)

	// GetName 获取提供商名称
	GetName() string
}

// Provider 提供商接口（扩展 TranslationProvider）
type Provider interface {
	TranslationProvider

	// Configure 配置提供商
	Configure(config interface{}) error

	// GetCapabilities 获取提供商能力
	GetCapabilities() Capabilities

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error
}

// WordBatcher 可选接口：一次请求翻译多个独立的词。
// 由 batch.Wrap 提供通用实现，解码器在配置允许时通过类型断言使用。
type WordBatcher interface {
	TranslateWords(ctx context.Context, req *BatchRequest) (*BatchResponse, error)
}

// Capabilities 提供商能力
type Capabilities struct {
	// 支持的语言
	SupportedLanguages []Language `json:"supported_languages"`

	// 最大文本长度
	MaxTextLength int `json:"max_text_length"`

	// 是否支持词批量翻译
	SupportsWordBatch bool `json:"supports_word_batch"`

	// 是否为离线提供商（不产生网络请求）
	Offline bool `json:"offline"`

	// 是否需要API密钥
	RequiresAPIKey bool `json:"requires_api_key"`

	// 速率限制
	RateLimit *RateLimit `json:"rate_limit,omitempty"`
}

// Language 语言信息
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RateLimit 速率限制
type RateLimit struct {
	RequestsPerMinute int `json:"requests_per_minute"`
	CharactersPerDay  int `json:"characters_per_day"`
}

// 错误代码
const (
	ErrCodeRateLimit           = "rate_limit"
	ErrCodeTimeout             = "timeout"
	ErrCodeServerError         = "server_error"
	ErrCodeAuth                = "auth_error"
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeUnsupportedLanguage = "unsupported_language"
	ErrCodeWordNotFound        = "word_not_found"
	ErrCodeEmptyResponse       = "empty_response"
	ErrCodeUnknown             = "unknown"
)

// Error 提供商错误
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRateLimit, ErrCodeTimeout, ErrCodeServerError:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithDetails 创建带详情的错误
func NewErrorWithDetails(code, message string, details map[string]interface{}) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Request 提供商请求
type Request struct {
	Text           string                 `json:"text"`
	SourceLanguage string                 `json:"source_language,omitempty"`
	TargetLanguage string                 `json:"target_language,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Response 提供商响应
type Response struct {
	Text      string                 `json:"text"`
	Model     string                 `json:"model,omitempty"`
	TokensIn  int                    `json:"tokens_in,omitempty"`
	TokensOut int                    `json:"tokens_out,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// BatchRequest 词批量请求，Words 保持调用方给定的顺序
type BatchRequest struct {
	Words          []string `json:"words"`
	SourceLanguage string   `json:"source_language,omitempty"`
	TargetLanguage string   `json:"target_language,omitempty"`
}

// BatchResponse 词批量响应
//
// Translations 与请求的 Words 一一对应；单个词失败时对应位置为空串，
// 由 OK 标记区分，整个批量调用不因个别词失败而报错。
// Translations 和 OK 是平行切片，实现方必须保证两者等长；
// 消费方按两者长度取短访问，长度不齐的实现只会丢词，不会越界。
type BatchResponse struct {
	Translations []string `json:"translations"`
	OK           []bool   `json:"ok"`
	TokensIn     int      `json:"tokens_in,omitempty"`
	TokensOut    int      `json:"tokens_out,omitempty"`
}

// FallbackTranslateWords 用逐词调用模拟批量翻译，
// 供不实现 WordBatcher 的提供商使用。
func FallbackTranslateWords(ctx context.Context, p TranslationProvider, req *BatchRequest) (*BatchResponse, error) {
	resp := &BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}

	for i, word := range req.Words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wordResp, err := p.TranslateWord(ctx, &Request{
			Text:           word,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
		})
		if err != nil || wordResp == nil || wordResp.Text == "" {
			continue
		}

		resp.Translations[i] = wordResp.Text
		resp.OK[i] = true
		resp.TokensIn += wordResp.TokensIn
		resp.TokensOut += wordResp.TokensOut
	}

	return resp, nil
}
