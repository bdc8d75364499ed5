package i18n

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// I18n 持有一份构建后只读的文案目录
// I18n holds a message catalog that is read-only after construction.
type I18n struct {
	locale   string
	messages map[string]string
}

var (
	global     *I18n
	globalOnce sync.Once
)

// Global 返回全局实例，未初始化时按环境自动探测
// Global returns the process-wide instance, detecting the locale from
// the environment on first use.
func Global() *I18n {
	globalOnce.Do(func() {
		if global == nil {
			global = New("")
		}
	})
	return global
}

// Init 用给定 locale 替换全局实例
// Init replaces the global instance with the given locale.
func Init(locale string) {
	global = New(locale)
}

// T 全局翻译快捷函数 / Global translation shortcut
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New 创建实例；locale 为空时从环境探测
// New builds an instance; an empty locale falls back to DetectLocale.
func New(locale string) *I18n {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)
	return &I18n{locale: locale, messages: catalogFor(locale)}
}

// catalogFor 以英文为底，中文 locale 时覆盖中文文案
// catalogFor starts from the English catalog and overlays Chinese
// entries for Chinese locales. Unknown locales render English.
func catalogFor(locale string) map[string]string {
	msgs := make(map[string]string, len(EnMessages))
	for k, v := range EnMessages {
		msgs[k] = v
	}
	if locale == "zh-CN" || locale == "zh" {
		for k, v := range ZhCNMessages {
			msgs[k] = v
		}
	}
	return msgs
}

// T 查找并格式化文案，缺失时原样返回 key
// T looks up and formats a message, returning the key itself when the
// catalog has no entry for it.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.messages[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale 返回归一化后的 locale / Locale returns the normalized locale
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale 依次读取 TASKDECK_LANG、LC_ALL、LANG
// DetectLocale reads TASKDECK_LANG, then LC_ALL, then LANG.
// TASKDECK_LANG lets users pick the UI language without touching
// their shell locale.
func DetectLocale() string {
	for _, env := range []string{"TASKDECK_LANG", "LC_ALL", "LANG"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

// normalizeLocale 将 zh_CN.UTF-8 之类的系统 locale 归一化为目录键
// normalizeLocale maps system locales like zh_CN.UTF-8 onto catalog
// keys. Any Chinese variant collapses to zh-CN; unrecognized locales
// pass through with underscores rewritten.
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "en"
	}
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	switch {
	case strings.HasPrefix(strings.ToLower(s), "zh"):
		return "zh-CN"
	case strings.HasPrefix(strings.ToLower(s), "en"):
		return "en"
	}
	return s
}
