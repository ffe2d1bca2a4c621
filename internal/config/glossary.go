package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Glossary 用户钉死的词翻译表。命中的词不经过网关，
// 直接使用表里的译文（只影响逐词翻译，整段翻译不受影响）。
type Glossary struct {
	SourceLang string            `toml:"source_lang"`
	TargetLang string            `toml:"target_lang"`
	Words      map[string]string `toml:"words"`
}

// NewGlossary 创建术语表
func NewGlossary(sourceLang, targetLang string, words map[string]string) *Glossary {
	return &Glossary{
		SourceLang: sourceLang,
		TargetLang: targetLang,
		Words:      words,
	}
}

// LoadGlossary 从 TOML 文件加载术语表
func LoadGlossary(path string) (*Glossary, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("glossary file not found: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}

	glossary := &Glossary{}
	if err := toml.Unmarshal(content, glossary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal glossary: %w", err)
	}
	if glossary.SourceLang == "" || glossary.TargetLang == "" {
		return nil, fmt.Errorf("glossary file is missing source_lang or target_lang")
	}
	return glossary, nil
}

// Matches 术语表的语言对是否与给定语言对一致
func (g *Glossary) Matches(sourceLang, targetLang string) bool {
	return g.SourceLang == sourceLang && g.TargetLang == targetLang
}
