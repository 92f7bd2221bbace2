package events

// LineShown 一行对话显示完成（或被跳过）后发出
type LineShown struct {
	NodeID  string
	Speaker string
	Text    string
}

// ChoicePicked 玩家选择了某个选项后发出
type ChoicePicked struct {
	NodeID string
	Text   string
}

// ConversationReset 对话被重置（新会话开始或重新读取）时发出
type ConversationReset struct{}
