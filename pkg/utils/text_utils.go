package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// MeasureFunc 测量一段文本的显示宽度（像素或终端列数）
type MeasureFunc func(s string) float64

// CellWidth 按终端列宽测量文本（全角字符占两列）
func CellWidth(s string) float64 {
	return float64(runewidth.StringWidth(s))
}

// WrapText 将文本按指定宽度自动换行
// 参数:
//   - textStr: 要换行的文本，"\n" 强制换行
//   - measure: 宽度测量函数
//   - maxWidth: 最大宽度
//
// 换行规则:
//   - 优先在空格处断行
//   - 没有空格可断（如中文或超长单词）时按字素簇强制断行
//   - 单个字素簇超宽时独占一行
func WrapText(textStr string, measure MeasureFunc, maxWidth float64) []string {
	if textStr == "" || measure == nil || maxWidth <= 0 {
		return []string{textStr}
	}

	var lines []string
	for _, para := range strings.Split(textStr, "\n") {
		lines = append(lines, wrapParagraph(para, measure, maxWidth)...)
	}
	return lines
}

func wrapParagraph(para string, measure MeasureFunc, maxWidth float64) []string {
	if measure(para) <= maxWidth {
		return []string{para}
	}

	var lines []string
	line := ""
	breakAt := -1 // 当前行中最后一个空格之后的字节位置

	g := uniseg.NewGraphemes(para)
	for g.Next() {
		cluster := g.Str()
		candidate := line + cluster

		if line == "" || measure(candidate) <= maxWidth {
			line = candidate
			if cluster == " " {
				breakAt = len(line)
			}
			continue
		}

		switch {
		case cluster == " ":
			lines = append(lines, strings.TrimRight(line, " "))
			line = ""
		case breakAt > 0 && strings.TrimSpace(line[:breakAt]) != "":
			lines = append(lines, strings.TrimRight(line[:breakAt], " "))
			line = line[breakAt:] + cluster
		default:
			lines = append(lines, line)
			line = cluster
		}
		breakAt = -1
	}

	if line != "" || len(lines) == 0 {
		lines = append(lines, line)
	}
	return lines
}
