package telegram

import "strings"

var markdownReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
)

// EscapeMarkdown 转义模型生成文本中的Markdown特殊字符，
// 避免通知消息因非法格式被Telegram拒绝
func EscapeMarkdown(input string) string {
	return markdownReplacer.Replace(input)
}
