package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Registry 提供商注册表
type Registry struct {
	mu        sync.RWMutex
	providers map[string]TranslationProvider
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]TranslationProvider),
	}
}

// Register 注册提供商
func (r *Registry) Register(name string, provider TranslationProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = provider
	return nil
}

// Get 获取提供商，未注册时附带拼写建议
func (r *Registry) Get(name string) (TranslationProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		if suggestion := r.suggestLocked(name); suggestion != "" {
			return nil, fmt.Errorf("provider %s not found (did you mean %q?)", name, suggestion)
		}
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// List 列出所有提供商（按名称排序）
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Suggest 返回与给定名称最接近的已注册提供商，找不到时返回空串
func (r *Registry) Suggest(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.suggestLocked(name)
}

func (r *Registry) suggestLocked(name string) string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)

	return SuggestName(name, names)
}

// SuggestName 在候选名单中给拼错的名称找最接近的匹配，找不到时返回空串
func SuggestName(name string, candidates []string) string {
	matches := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	sort.Sort(matches)
	return matches[0].Target
}

// Remove 移除提供商
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, name)
}

// Clear 清空注册表
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = make(map[string]TranslationProvider)
}
