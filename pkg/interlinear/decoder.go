package interlinear

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/langdec/langdec/pkg/providers"
)

// Config 解码器配置
type Config struct {
	// StrictSentenceCount 句子数不一致时报错而不是截断对齐
	StrictSentenceCount bool

	// UseWordBatch 提供商支持 WordBatcher 时用批量调用获取孤立翻译。
	// 关闭时严格保持每词一次网关调用。
	UseWordBatch bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{}
}

// DecodeRequest 一次解码请求
type DecodeRequest struct {
	// Text 整段输入文本
	Text string

	// SourceLang 源语言代码，原样透传给网关
	SourceLang string

	// TargetLang 目标语言代码
	TargetLang string

	// MaxLineLength 每行最大宽度，<=0 时不换行
	MaxLineLength int
}

// DecodeStats 一次解码的统计信息
type DecodeStats struct {
	ID               string        `json:"id"`
	Sentences        int           `json:"sentences"`
	DroppedSentences int           `json:"dropped_sentences"`
	SourceTokens     int           `json:"source_tokens"`
	TargetTokens     int           `json:"target_tokens"`
	MatchedInContext int           `json:"matched_in_context"`
	TextCalls        int           `json:"text_calls"`
	WordCalls        int           `json:"word_calls"`
	WordFailures     int           `json:"word_failures"`
	Duration         time.Duration `json:"duration"`
}

// DecodeResult 解码结果
type DecodeResult struct {
	// Text 排版好的交替对照文本
	Text string

	// Traces 每个源词一条的对齐诊断记录，按句子顺序拼接
	Traces []AlignmentTrace

	// Stats 统计信息
	Stats DecodeStats
}

// Decoder 解码编排器：整段翻译 → 分句 → 逐句对齐 → 排版。
//
// 整句翻译给出最高质量的译文但丢失词级对应关系，逐词翻译保留
// 对应关系但质量较低；解码器把孤立翻译只当作在整句译文里检索
// 的键，两者互补。无共享可变状态，每次 Decode 相互独立。
type Decoder struct {
	provider providers.TranslationProvider
	logger   *zap.Logger
	config   Config

	// OnSentence 每完成一个句对后回调（已完成数，总数）。
	// 供 CLI 进度条使用，为 nil 时不回调。
	OnSentence func(done, total int)
}

// New 创建解码器。logger 为 nil 时使用 zap.NewNop()。
func New(provider providers.TranslationProvider, logger *zap.Logger, config Config) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{
		provider: provider,
		logger:   logger,
		config:   config,
	}
}

// Decode 对整段文本做逐词对照解码。
//
// 空白输入直接返回空结果，不产生任何网关调用。整段翻译失败
// 对本次调用是致命的；单个词的孤立翻译失败只影响该词的匹配，
// 词本身永远不会从输出中丢失。
func (d *Decoder) Decode(ctx context.Context, req *DecodeRequest) (*DecodeResult, error) {
	result := &DecodeResult{
		Traces: []AlignmentTrace{},
		Stats:  DecodeStats{ID: uuid.NewString()},
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return result, nil
	}

	start := time.Now()

	textResp, err := d.provider.TranslateText(ctx, &providers.Request{
		Text:           text,
		SourceLanguage: req.SourceLang,
		TargetLanguage: req.TargetLang,
	})
	result.Stats.TextCalls++
	if err != nil {
		return nil, &TranslateError{Stage: "text", Err: err}
	}
	if textResp == nil || strings.TrimSpace(textResp.Text) == "" {
		return nil, &TranslateError{Stage: "text", Err: ErrEmptyTranslation}
	}

	sourceSentences := SplitSentences(text)
	targetSentences := SplitSentences(textResp.Text)

	total := len(sourceSentences)
	if len(targetSentences) < total {
		total = len(targetSentences)
	}
	dropped := len(sourceSentences) + len(targetSentences) - 2*total
	if dropped > 0 {
		if d.config.StrictSentenceCount {
			return nil, fmt.Errorf("%w: %d source vs %d target",
				ErrSentenceMismatch, len(sourceSentences), len(targetSentences))
		}
		// 位置配对只能覆盖重叠部分，多出的句子会被丢弃
		d.logger.Warn("sentence counts differ, aligning overlap only",
			zap.Int("source_sentences", len(sourceSentences)),
			zap.Int("target_sentences", len(targetSentences)),
			zap.Int("dropped", dropped),
		)
	}
	result.Stats.Sentences = total
	result.Stats.DroppedSentences = dropped

	blocks := make([]string, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sourceTokens := Tokenize(sourceSentences[i])
		targetTokens := Tokenize(targetSentences[i])

		words, err := d.translateWords(ctx, sourceTokens, req, &result.Stats)
		if err != nil {
			return nil, err
		}

		pairs, traces := alignTokens(sourceTokens, targetTokens, words)
		blocks = append(blocks, FormatColumns(pairs, req.MaxLineLength))
		result.Traces = append(result.Traces, traces...)

		result.Stats.SourceTokens += len(sourceTokens)
		result.Stats.TargetTokens += len(targetTokens)
		for _, trace := range traces {
			if trace.Status == StatusMatchedInContext {
				result.Stats.MatchedInContext++
			}
		}

		if d.OnSentence != nil {
			d.OnSentence(i+1, total)
		}
	}

	// 每个块自带结尾换行，再加一个换行得到块间空行
	result.Text = strings.Join(blocks, "\n")
	result.Stats.Duration = time.Since(start)

	d.logger.Debug("decode finished",
		zap.String("decode_id", result.Stats.ID),
		zap.Int("sentences", result.Stats.Sentences),
		zap.Int("source_tokens", result.Stats.SourceTokens),
		zap.Int("matched_in_context", result.Stats.MatchedInContext),
		zap.Duration("duration", result.Stats.Duration),
	)
	return result, nil
}

// translateWords 获取一句源词的孤立翻译（对齐第一遍）。
// 词级失败一律记为"无孤立翻译"，绝不中断解码。
func (d *Decoder) translateWords(ctx context.Context, tokens []string, req *DecodeRequest, stats *DecodeStats) ([]WordTranslation, error) {
	words := make([]WordTranslation, len(tokens))
	if len(tokens) == 0 {
		return words, nil
	}

	if d.config.UseWordBatch {
		if batcher, ok := d.provider.(providers.WordBatcher); ok {
			stats.WordCalls++
			resp, err := batcher.TranslateWords(ctx, &providers.BatchRequest{
				Words:          tokens,
				SourceLanguage: req.SourceLang,
				TargetLanguage: req.TargetLang,
			})
			if err == nil && resp != nil {
				for i := range tokens {
					if i < len(resp.Translations) && i < len(resp.OK) && resp.OK[i] {
						words[i] = WordTranslation{
							Text: strings.TrimSpace(resp.Translations[i]),
							OK:   true,
						}
					} else {
						stats.WordFailures++
					}
				}
				return words, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			d.logger.Warn("word batch failed, falling back to per-word calls", zap.Error(err))
		}
	}

	for i, token := range tokens {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats.WordCalls++
		resp, err := d.provider.TranslateWord(ctx, &providers.Request{
			Text:           token,
			SourceLanguage: req.SourceLang,
			TargetLanguage: req.TargetLang,
		})
		if err != nil || resp == nil || strings.TrimSpace(resp.Text) == "" {
			stats.WordFailures++
			d.logger.Debug("no individual translation",
				zap.String("token", token),
				zap.Error(err),
			)
			continue
		}
		words[i] = WordTranslation{Text: strings.TrimSpace(resp.Text), OK: true}
	}
	return words, nil
}
