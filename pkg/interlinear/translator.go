package interlinear

import (
	"context"
	"fmt"
	"strings"

	"github.com/langdec/langdec/pkg/providers"
)

// TranslateLines 整段直译模式：不做逐词对照，逐行整句翻译，
// 保留原文的行结构，空行原样保留。任意一行整段翻译失败即中止，
// 与解码模式里整段翻译致命的约定一致。
func TranslateLines(ctx context.Context, provider providers.TranslationProvider, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	lines := strings.Split(text, "\n")
	translated := make([]string, 0, len(lines))

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			translated = append(translated, "")
			continue
		}

		resp, err := provider.TranslateText(ctx, &providers.Request{
			Text:           line,
			SourceLanguage: sourceLang,
			TargetLanguage: targetLang,
		})
		if err != nil {
			return "", fmt.Errorf("translate line %d: %w", i+1, err)
		}
		translated = append(translated, strings.TrimSpace(resp.Text))
	}

	return strings.Join(translated, "\n"), nil
}
