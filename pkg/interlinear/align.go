package interlinear

import "strings"

// WordTranslation 单个源词的孤立翻译结果（第一遍的产物）。
// OK 为假表示网关没能给出翻译，该词跳过上下文匹配但绝不丢弃。
type WordTranslation struct {
	Text string
	OK   bool
}

// alignTokens 把一个句对的源词和译词做尽力而为的一一对齐。
//
// 输入是已经完全解析好的孤立翻译集合（words 与 source 同下标），
// 因此算法本身是纯函数，四遍依次完成：
//
//  1. 孤立翻译由调用方提前完成（words 参数）。
//  2. 上下文匹配：对每个翻译成功的源词按源序扫描译词序列，
//     取第一个未被占用且大小写不敏感相等的位置。先到先得，
//     重复词偏向按原顺序配对。
//  3. 位置回退：仍未匹配的源词优先取自己下标对应的译词
//     （该位置还空着时），否则取下标最小的空闲译词，
//     全部占用时配占位符。
//  4. 残留：从未被占用的译词按原顺序各自与占位符成对追加。
//
// 输出覆盖每个源词恰好一次（按原序），随后是残留译词；
// 每个译词同样恰好出现一次。贪心的先到先得是兼容性约定，
// 不要改成最优指派。
func alignTokens(source, target []string, words []WordTranslation) ([]TokenPair, []AlignmentTrace) {
	pairs := make([]TokenPair, 0, len(source)+len(target))
	traces := make([]AlignmentTrace, len(source))

	matched := make([]bool, len(target))
	// 每个源词匹配到的译词下标，-1 表示未匹配
	assignment := make([]int, len(source))

	for i, token := range source {
		assignment[i] = -1
		traces[i] = AlignmentTrace{
			SourceToken: token,
			Status:      StatusPending,
		}
		if i < len(words) && words[i].OK {
			traces[i].Translation = words[i].Text
			traces[i].HasTranslation = true
		}
	}

	// 第二遍：上下文匹配
	for i := range source {
		if !traces[i].HasTranslation {
			continue
		}
		want := strings.ToLower(traces[i].Translation)
		for j, candidate := range target {
			if matched[j] || strings.ToLower(candidate) != want {
				continue
			}
			assignment[i] = j
			matched[j] = true
			traces[i].Status = StatusMatchedInContext
			break
		}
	}

	// 第三遍：位置回退
	for i := range source {
		if assignment[i] >= 0 {
			continue
		}
		traces[i].Status = StatusNotFoundInContext

		if i < len(target) && !matched[i] {
			assignment[i] = i
			matched[i] = true
			continue
		}
		for j := range target {
			if !matched[j] {
				assignment[i] = j
				matched[j] = true
				break
			}
		}
	}

	for i, token := range source {
		pair := TokenPair{Source: token, Target: Placeholder}
		if assignment[i] >= 0 {
			pair.Target = target[assignment[i]]
		}
		pairs = append(pairs, pair)
	}

	// 第四遍：残留译词
	for j, token := range target {
		if !matched[j] {
			pairs = append(pairs, TokenPair{Source: Placeholder, Target: token})
		}
	}

	return pairs, traces
}
