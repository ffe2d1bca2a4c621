package interlinear

import "github.com/mattn/go-runewidth"

// Placeholder 没有对应词时使用的占位符。
// 它和普通词一样参与列宽计算。
const Placeholder = "---"

// TokenPair 一对对齐的词：原文在上、译文在下。
// 由对齐器创建，只被排版器消费，创建后不再修改。
type TokenPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Width 该列的宽度，取两侧较宽者。
// 宽度按终端显示单元格计算，CJK 等全角字符占两格。
func (p TokenPair) Width() int {
	sw := runewidth.StringWidth(p.Source)
	tw := runewidth.StringWidth(p.Target)
	if sw > tw {
		return sw
	}
	return tw
}
