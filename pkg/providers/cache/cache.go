package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store 翻译缓存存储接口
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
	SetWithTTL(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
	Stats() Stats
}

// Stats 缓存统计信息
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int64 `json:"size"`
}

// entry 缓存条目
type entry struct {
	Value     string        `json:"value"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl,omitempty"`
}

func (e entry) expired() bool {
	return e.TTL > 0 && time.Since(e.Timestamp) > e.TTL
}

// MemoryStore 内存缓存实现
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]entry
	stats Stats
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore 创建内存缓存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]entry),
	}
}

// Get 获取缓存
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[key]
	if !exists || e.expired() {
		if exists {
			delete(s.data, key)
		}
		s.stats.Misses++
		return "", false
	}

	s.stats.Hits++
	return e.Value, true
}

// Set 设置缓存
func (s *MemoryStore) Set(key string, value string) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL 设置带过期时间的缓存
func (s *MemoryStore) SetWithTTL(key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{
		Value:     value,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
	s.stats.Size = int64(len(s.data))
	return nil
}

// Delete 删除缓存
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	s.stats.Size = int64(len(s.data))
	return nil
}

// Clear 清除所有缓存
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]entry)
	s.stats = Stats{}
	return nil
}

// Stats 获取缓存统计信息
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats
}

// FileStore 文件缓存实现，内存缓存作为一级缓存
type FileStore struct {
	basePath string
	memory   *MemoryStore
	mu       sync.Mutex
	stats    Stats
}

var _ Store = (*FileStore)(nil)

// NewFileStore 创建文件缓存。目录无法创建时退化为纯内存缓存。
func NewFileStore(basePath string) *FileStore {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		basePath = ""
	}

	return &FileStore{
		basePath: basePath,
		memory:   NewMemoryStore(),
	}
}

func (s *FileStore) filePath(key string) string {
	if s.basePath == "" {
		return ""
	}
	hash := md5.Sum([]byte(key))
	return filepath.Join(s.basePath, fmt.Sprintf("%x.cache", hash))
}

// Get 获取缓存
func (s *FileStore) Get(key string) (string, bool) {
	if value, ok := s.memory.Get(key); ok {
		return value, true
	}

	if s.basePath == "" {
		return "", false
	}

	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		s.miss()
		return "", false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		s.miss()
		return "", false
	}
	if e.expired() {
		os.Remove(s.filePath(key))
		s.miss()
		return "", false
	}

	s.memory.Set(key, e.Value)
	s.hit()
	return e.Value, true
}

// Set 设置缓存
func (s *FileStore) Set(key string, value string) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL 设置带过期时间的缓存
func (s *FileStore) SetWithTTL(key string, value string, ttl time.Duration) error {
	if err := s.memory.SetWithTTL(key, value, ttl); err != nil {
		return err
	}
	if s.basePath == "" {
		return nil
	}

	data, err := json.Marshal(entry{
		Value:     value,
		Timestamp: time.Now(),
		TTL:       ttl,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.filePath(key), data, 0o644); err != nil {
		return err
	}

	s.mu.Lock()
	s.stats.Size++
	s.mu.Unlock()
	return nil
}

// Delete 删除缓存
func (s *FileStore) Delete(key string) error {
	s.memory.Delete(key)
	if s.basePath == "" {
		return nil
	}
	return os.Remove(s.filePath(key))
}

// Clear 清除所有缓存
func (s *FileStore) Clear() error {
	s.memory.Clear()
	if s.basePath == "" {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(s.basePath, "*.cache"))
	if err != nil {
		return err
	}
	for _, file := range files {
		os.Remove(file)
	}

	s.mu.Lock()
	s.stats = Stats{}
	s.mu.Unlock()
	return nil
}

// Stats 获取缓存统计信息（含内存层）
func (s *FileStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	memStats := s.memory.Stats()
	return Stats{
		Hits:   s.stats.Hits + memStats.Hits,
		Misses: s.stats.Misses + memStats.Misses,
		Size:   s.stats.Size,
	}
}

func (s *FileStore) hit() {
	s.mu.Lock()
	s.stats.Hits++
	s.mu.Unlock()
}

func (s *FileStore) miss() {
	s.mu.Lock()
	s.stats.Misses++
	s.mu.Unlock()
}

// 缓存key的请求类别
const (
	KindWord = "word"
	KindText = "text"
)

// KeyComponents 缓存key组件
type KeyComponents struct {
	Provider   string // 提供商名称
	SourceLang string // 源语言
	TargetLang string // 目标语言
	Kind       string // word 或 text
	Text       string // 请求文本
}

// Key 生成基于请求组件的缓存key
func Key(components KeyComponents) string {
	keyData := fmt.Sprintf("provider:%s|src:%s|tgt:%s|kind:%s|text:%s",
		components.Provider,
		components.SourceLang,
		components.TargetLang,
		components.Kind,
		components.Text,
	)
	hash := md5.Sum([]byte(keyData))
	return fmt.Sprintf("%x", hash)
}

// NewStore 根据配置创建缓存实例
func NewStore(useCache bool, cacheDir string) Store {
	if !useCache {
		return nil
	}
	if cacheDir != "" {
		return NewFileStore(cacheDir)
	}
	return NewMemoryStore()
}
