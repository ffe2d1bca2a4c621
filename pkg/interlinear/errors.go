package interlinear

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTranslation 网关返回了空的整段译文
	ErrEmptyTranslation = errors.New("translation provider returned empty text")

	// ErrSentenceMismatch 源文与译文的句子数不一致（严格模式下返回）
	ErrSentenceMismatch = errors.New("source and translation sentence counts differ")
)

// TranslateError 解码过程中来自翻译网关的错误。
// Stage 为 "text" 时整次解码失败；词级失败不会产生这个错误，
// 对应的词走位置回退。
type TranslateError struct {
	Stage string // text 或 word
	Err   error
}

func (e *TranslateError) Error() string {
	return fmt.Sprintf("translate %s: %v", e.Stage, e.Err)
}

func (e *TranslateError) Unwrap() error {
	return e.Err
}
