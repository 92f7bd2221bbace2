package history

import "time"

// Kind 历史记录条目类型
type Kind int

const (
	// KindLine 已显示的对话行
	KindLine Kind = iota
	// KindChoice 玩家做出的选择
	KindChoice
)

// String 返回 Kind 的字符串表示
func (k Kind) String() string {
	switch k {
	case KindLine:
		return "Line"
	case KindChoice:
		return "Choice"
	default:
		return "Unknown"
	}
}

// ChoiceSpeaker 选择类条目固定使用的说话人名称
const ChoiceSpeaker = "Your Choice"

// Entry 历史记录条目，插入后不再修改
type Entry struct {
	ID       string    // 条目唯一标识（uuid）
	Kind     Kind      // 条目类型
	Speaker  string    // 说话人名称
	Text     string    // 正文
	Portrait string    // 立绘资源 key，空字符串表示无立绘
	NodeID   string    // 来源对话节点
	At       time.Time // 创建时间
}

// IsChoice 是否为选择类条目
func (e Entry) IsChoice() bool {
	return e.Kind == KindChoice
}
