package reveal

import "github.com/decker502/dialogue/pkg/config"

// PunctuationPauses 根据配置生成标点停顿回调
// 同时识别半角与全角标点（， 。 ？ ！）
func PunctuationPauses(p config.PunctuationPauses) PauseFunc {
	return func(grapheme string) float64 {
		switch grapheme {
		case ",", "，", "、":
			return p.Comma
		case ".", "。":
			return p.Period
		case "?", "？":
			return p.Question
		case "!", "！":
			return p.Exclamation
		default:
			return 0
		}
	}
}
