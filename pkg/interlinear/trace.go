package interlinear

// MatchStatus 源词在上下文匹配中的结果
type MatchStatus string

const (
	// StatusPending 尚未进入匹配
	StatusPending MatchStatus = "pending"

	// StatusMatchedInContext 孤立翻译在整句译文中找到了对应词
	StatusMatchedInContext MatchStatus = "matched-in-context"

	// StatusNotFoundInContext 未找到对应词，走位置回退
	StatusNotFoundInContext MatchStatus = "not-found-in-context"
)

// AlignmentTrace 每个源词一条的诊断记录。
// 只用于调试和测试，对排版输出没有影响，生命周期为一次解码调用。
type AlignmentTrace struct {
	// SourceToken 源词
	SourceToken string `json:"source_token"`

	// Translation 该词的孤立翻译，翻译失败时为空
	Translation string `json:"translation,omitempty"`

	// HasTranslation 孤立翻译是否成功
	HasTranslation bool `json:"has_translation"`

	// Status 匹配结果
	Status MatchStatus `json:"status"`
}
