// Package events 提供对话播放驱动与历史记录之间的同步事件分发
//
// 架构：
//   - 单线程同步分发，Publish 返回前所有处理器都已执行
//   - 处理器按订阅顺序调用
//   - 订阅返回 Subscription 句柄，Release() 后处理器不再被调用
package events

// Subscription 订阅句柄
// Release 幂等，可在处理器内部调用
type Subscription struct {
	release func()
}

// Release 取消订阅
func (s *Subscription) Release() {
	if s == nil || s.release == nil {
		return
	}
	s.release()
	s.release = nil
}

// Active 返回订阅是否仍然有效
func (s *Subscription) Active() bool {
	return s != nil && s.release != nil
}

// Group 一组订阅句柄，用于组件在退出时一次性解除全部监听
type Group struct {
	subs []*Subscription
}

// Add 把订阅加入组
func (g *Group) Add(subs ...*Subscription) {
	g.subs = append(g.subs, subs...)
}

// Release 解除组内全部订阅（幂等）
func (g *Group) Release() {
	for _, s := range g.subs {
		s.Release()
	}
	g.subs = nil
}

// Len 返回组内订阅数量
func (g *Group) Len() int {
	return len(g.subs)
}

// Topic 单一事件类型的处理器列表
type Topic[T any] struct {
	nextID   uint64
	handlers []topicHandler[T]
}

type topicHandler[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe 注册处理器
func (t *Topic[T]) Subscribe(fn func(T)) *Subscription {
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, topicHandler[T]{id: id, fn: fn})
	return &Subscription{release: func() { t.remove(id) }}
}

// Publish 依次调用全部处理器
// 分发期间新增或解除的订阅不影响本次分发
func (t *Topic[T]) Publish(evt T) {
	snapshot := make([]topicHandler[T], len(t.handlers))
	copy(snapshot, t.handlers)
	for _, h := range snapshot {
		if t.has(h.id) {
			h.fn(evt)
		}
	}
}

// HandlerCount 返回当前处理器数量
func (t *Topic[T]) HandlerCount() int {
	return len(t.handlers)
}

func (t *Topic[T]) has(id uint64) bool {
	for _, h := range t.handlers {
		if h.id == id {
			return true
		}
	}
	return false
}

func (t *Topic[T]) remove(id uint64) {
	for i, h := range t.handlers {
		if h.id == id {
			t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
			return
		}
	}
}

// Bus 对话事件总线
type Bus struct {
	Lines   Topic[LineShown]
	Choices Topic[ChoicePicked]
	Resets  Topic[ConversationReset]
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{}
}

// OnLineShown 订阅 LineShown
func (b *Bus) OnLineShown(fn func(LineShown)) *Subscription {
	return b.Lines.Subscribe(fn)
}

// OnChoicePicked 订阅 ChoicePicked
func (b *Bus) OnChoicePicked(fn func(ChoicePicked)) *Subscription {
	return b.Choices.Subscribe(fn)
}

// OnConversationReset 订阅 ConversationReset
func (b *Bus) OnConversationReset(fn func(ConversationReset)) *Subscription {
	return b.Resets.Subscribe(fn)
}
