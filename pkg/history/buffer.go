// Package history 记录已显示的对话与玩家选择，并实现历史面板的暂停/恢复协议
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// Buffer 有界历史记录
//
// 环形缓冲实现：
//   - 插入顺序即时间顺序
//   - 长度永不超过容量；超出时淘汰最旧条目，不会淘汰最新条目
//   - 会话重置时整体清空
type Buffer struct {
	buf      []Entry
	head     int // 下一次写入位置
	size     int
	capacity int

	now   func() time.Time
	newID func() string
}

// NewBuffer 创建容量为 capacity 的历史记录，capacity 小于 1 时按 1 处理
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		buf:      make([]Entry, capacity),
		capacity: capacity,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetClock 替换时间来源（测试用）
func (b *Buffer) SetClock(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}

// Add 追加条目，必要时淘汰最旧条目
// 未设置 ID 与时间的条目会自动补齐，返回实际存储的条目
func (b *Buffer) Add(e Entry) Entry {
	if e.ID == "" {
		e.ID = b.newID()
	}
	if e.At.IsZero() {
		e.At = b.now()
	}

	b.buf[b.head] = e
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
	return e
}

// Clear 清空全部条目
func (b *Buffer) Clear() {
	for i := range b.buf {
		b.buf[i] = Entry{}
	}
	b.head = 0
	b.size = 0
}

// Len 返回当前条目数
func (b *Buffer) Len() int {
	return b.size
}

// Cap 返回容量
func (b *Buffer) Cap() int {
	return b.capacity
}

// At 返回按时间顺序的第 i 个条目（0 为最旧）
func (b *Buffer) At(i int) (Entry, bool) {
	if i < 0 || i >= b.size {
		return Entry{}, false
	}
	return b.buf[b.index(i)], true
}

// Last 返回最新条目
func (b *Buffer) Last() (Entry, bool) {
	return b.At(b.size - 1)
}

// Entries 返回按时间顺序排列的条目副本
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.buf[b.index(i)]
	}
	return out
}

// SetCapacity 修改容量，缩小时淘汰最旧的条目
func (b *Buffer) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	if capacity == b.capacity {
		return
	}

	entries := b.Entries()
	if len(entries) > capacity {
		entries = entries[len(entries)-capacity:]
	}

	b.buf = make([]Entry, capacity)
	b.capacity = capacity
	copy(b.buf, entries)
	b.size = len(entries)
	b.head = b.size % capacity
}

// Search 模糊搜索 "说话人: 正文"，按匹配度从高到低返回
func (b *Buffer) Search(query string) []Entry {
	if strings.TrimSpace(query) == "" || b.size == 0 {
		return nil
	}

	entries := b.Entries()
	matches := fuzzy.FindFrom(query, searchSource(entries))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

// Transcript 以纯文本形式导出全部条目，每条一行
func (b *Buffer) Transcript() string {
	var sb strings.Builder
	for i := 0; i < b.size; i++ {
		e := b.buf[b.index(i)]
		if e.IsChoice() {
			sb.WriteString("> ")
		}
		sb.WriteString(e.Speaker)
		sb.WriteString(": ")
		sb.WriteString(e.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Buffer) index(i int) int {
	oldest := (b.head - b.size + b.capacity) % b.capacity
	return (oldest + i) % b.capacity
}

// searchSource 适配 fuzzy.Source
type searchSource []Entry

func (s searchSource) String(i int) string {
	return s[i].Speaker + ": " + s[i].Text
}

func (s searchSource) Len() int {
	return len(s)
}
