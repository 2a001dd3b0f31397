package components

// SubscriptionID 订阅标识，用于取消订阅
type SubscriptionID uint64

type signalHandler[T any] struct {
	id SubscriptionID
	fn func(T)
}

// Signal 事件观察者列表
// 处理函数按注册顺序触发；零值可直接使用
//
// 注意：组件不是并发安全的，Signal 只应在实体所在的逻辑线程中使用
type Signal[T any] struct {
	handlers []signalHandler[T]
	nextID   SubscriptionID
}

// Subscribe 注册处理函数，返回订阅标识
// fn 为 nil 时不注册，返回 0
func (s *Signal[T]) Subscribe(fn func(T)) SubscriptionID {
	if s == nil || fn == nil {
		return 0
	}
	s.nextID++
	s.handlers = append(s.handlers, signalHandler[T]{id: s.nextID, fn: fn})
	return s.nextID
}

// Unsubscribe 取消订阅，返回是否找到该订阅
// 在 Emit 过程中取消订阅，从下一次 Emit 开始生效
func (s *Signal[T]) Unsubscribe(id SubscriptionID) bool {
	if s == nil || id == 0 {
		return false
	}
	for i, h := range s.handlers {
		if h.id == id {
			next := make([]signalHandler[T], 0, len(s.handlers)-1)
			next = append(next, s.handlers[:i]...)
			next = append(next, s.handlers[i+1:]...)
			s.handlers = next
			return true
		}
	}
	return false
}

// Emit 按注册顺序通知所有处理函数
func (s *Signal[T]) Emit(value T) {
	if s == nil || len(s.handlers) == 0 {
		return
	}
	// 快照当前列表，处理函数中的订阅变更不影响本次通知
	handlers := s.handlers
	for _, h := range handlers {
		h.fn(value)
	}
}

// Len 返回当前订阅数量
func (s *Signal[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.handlers)
}

// Clear 移除所有订阅
func (s *Signal[T]) Clear() {
	if s == nil {
		return
	}
	s.handlers = nil
}
