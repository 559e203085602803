package i18n

import (
	"sync"

	"golang.org/x/text/language"
)

// AppContext 用户级应用上下文：当前用户与界面语言
// 编辑器在创建时注入，语言切换通过 SetLocale 显式通知订阅者
type AppContext struct {
	mu     sync.RWMutex
	userID string
	locale language.Tag

	subs   map[int]func(language.Tag)
	nextID int
}

// NewAppContext 创建应用上下文
func NewAppContext(userID string, locale language.Tag) *AppContext {
	return &AppContext{
		userID: userID,
		locale: locale,
		subs:   make(map[int]func(language.Tag)),
	}
}

func (a *AppContext) UserID() string {
	return a.userID
}

func (a *AppContext) Locale() language.Tag {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.locale
}

// SetLocale 切换语言，仅在变化时通知
func (a *AppContext) SetLocale(tag language.Tag) {
	a.mu.Lock()
	if a.locale == tag {
		a.mu.Unlock()
		return
	}
	a.locale = tag
	subs := make([]func(language.Tag), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	// 锁外回调，订阅者可以再读取 Locale
	for _, fn := range subs {
		fn(tag)
	}
}

// Subscribe 订阅语言变化，返回取消订阅函数
func (a *AppContext) Subscribe(fn func(language.Tag)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.subs[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// Subscribers 当前订阅数
func (a *AppContext) Subscribers() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.subs)
}

// T 以当前语言渲染提示
func (a *AppContext) T(key string, args ...interface{}) string {
	return Translate(a.Locale(), key, args...)
}
