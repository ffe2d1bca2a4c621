package dictionary

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/langdec/langdec/pkg/providers"
)

// Config 词典提供商配置
type Config struct {
	providers.BaseConfig

	// Path TSV词典文件路径，每行 headword<TAB>translation
	Path string `json:"path"`

	// CaseSensitive 为假时查询先按原形、再按小写匹配
	CaseSensitive bool `json:"case_sensitive"`

	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig: providers.DefaultConfig(),
	}
}

// Provider 离线词典提供商。数据来自 TSV 文件，完全不走网络，
// TranslateText 退化为逐词注释。
type Provider struct {
	config  Config
	mu      sync.RWMutex
	entries map[string]string
	size    int
}

var (
	_ providers.Provider    = (*Provider)(nil)
	_ providers.WordBatcher = (*Provider)(nil)
)

// New 创建词典提供商并加载词典文件
func New(config Config) (*Provider, error) {
	p := &Provider{config: config}
	if err := p.load(config.Path); err != nil {
		return nil, err
	}
	return p, nil
}

// Configure 配置提供商并重新加载词典
func (p *Provider) Configure(config interface{}) error {
	cfg, ok := config.(Config)
	if !ok {
		return fmt.Errorf("invalid config type: expected Config")
	}
	if err := p.load(cfg.Path); err != nil {
		return err
	}
	p.config = cfg
	return nil
}

// load 加载TSV词典。同一词条出现多次时保留第一条。
func (p *Provider) load(path string) error {
	if path == "" {
		return fmt.Errorf("dictionary path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	entries := make(map[string]string)
	size := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		headword, translation, found := strings.Cut(line, "\t")
		if !found {
			continue
		}
		headword = strings.TrimSpace(headword)
		translation = strings.TrimSpace(translation)
		if headword == "" || translation == "" {
			continue
		}

		key := p.key(headword)
		if _, exists := entries[key]; exists {
			continue
		}
		entries[key] = translation
		size++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}

	p.mu.Lock()
	p.entries = entries
	p.size = size
	p.mu.Unlock()
	return nil
}

func (p *Provider) key(word string) string {
	if p.config.CaseSensitive {
		return word
	}
	return strings.ToLower(word)
}

// Lookup 查询单个词，返回译文与是否命中
func (p *Provider) Lookup(word string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.config.CaseSensitive {
		translation, ok := p.entries[word]
		return translation, ok
	}

	if translation, ok := p.entries[strings.ToLower(word)]; ok {
		return translation, ok
	}

	// 词典键已统一小写，再试去掉词尾标点
	trimmed := strings.TrimRight(strings.ToLower(word), ".,;:!?")
	if trimmed != "" && trimmed != strings.ToLower(word) {
		translation, ok := p.entries[trimmed]
		return translation, ok
	}

	return "", false
}

// Size 返回词条数量
func (p *Provider) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// TranslateWord 翻译单个词，未收录时返回 word_not_found
func (p *Provider) TranslateWord(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	translation, ok := p.Lookup(req.Text)
	if !ok {
		return nil, providers.NewError(providers.ErrCodeWordNotFound, fmt.Sprintf("word %q not in dictionary", req.Text))
	}

	return &providers.Response{
		Text:  translation,
		Model: "dictionary",
	}, nil
}

// TranslateText 逐词注释整段文本。未收录的词保留原文，
// 得到的是粗糙的直译，只用于完全离线的场景。
func (p *Provider) TranslateText(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	tokens := strings.Fields(req.Text)
	glossed := make([]string, len(tokens))
	hits := 0
	for i, token := range tokens {
		if translation, ok := p.Lookup(token); ok {
			glossed[i] = translation
			hits++
		} else {
			glossed[i] = token
		}
	}

	return &providers.Response{
		Text:  strings.Join(glossed, " "),
		Model: "dictionary",
		Metadata: map[string]interface{}{
			"glossed_tokens": hits,
			"total_tokens":   len(tokens),
		},
	}, nil
}

// TranslateWords 批量查询
func (p *Provider) TranslateWords(ctx context.Context, req *providers.BatchRequest) (*providers.BatchResponse, error) {
	resp := &providers.BatchResponse{
		Translations: make([]string, len(req.Words)),
		OK:           make([]bool, len(req.Words)),
	}
	for i, word := range req.Words {
		if translation, ok := p.Lookup(word); ok {
			resp.Translations[i] = translation
			resp.OK[i] = true
		}
	}
	return resp, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "dictionary"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	caps := providers.Capabilities{
		MaxTextLength:     1000000,
		SupportsWordBatch: true,
		Offline:           true,
		RequiresAPIKey:    false,
	}
	if p.config.SourceLanguage != "" && p.config.TargetLanguage != "" {
		caps.SupportedLanguages = []providers.Language{
			{Code: p.config.SourceLanguage},
			{Code: p.config.TargetLanguage},
		}
	}
	return caps
}

// HealthCheck 健康检查，空词典视为异常
func (p *Provider) HealthCheck(ctx context.Context) error {
	if p.Size() == 0 {
		return fmt.Errorf("dictionary is empty")
	}
	return nil
}
