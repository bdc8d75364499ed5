package i18n

import "testing"

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	got := i.T("chat.title")
	if got != "Assistant" {
		t.Fatalf("T(chat.title)=%q, want Assistant", got)
	}
}

func TestNew_Chinese(t *testing.T) {
	i := New("zh-CN")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("chat.title")
	if got != "助手" {
		t.Fatalf("T(chat.title)=%q, want 助手", got)
	}
}

func TestNew_ChineseFromLang(t *testing.T) {
	i := New("zh_CN.UTF-8")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("tasks.title")
	if got != "我的任务" {
		t.Fatalf("T(tasks.title)=%q, want 我的任务", got)
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	got := i.T("error.network", "timeout")
	if got != "Network error: timeout" {
		t.Fatalf("T with args=%q, want Network error: timeout", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	got := i.T("nonexistent.key")
	if got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US.UTF-8", "en"},
		{"zh_CN.UTF-8", "zh-CN"},
		{"zh_TW", "zh-CN"},
		{"en", "en"},
		{"", "en"},
		{"fr_FR", "fr-FR"},
	}
	for _, tt := range tests {
		got := normalizeLocale(tt.input)
		if got != tt.expected {
			t.Errorf("normalizeLocale(%q)=%q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDetectLocale(t *testing.T) {
	// TASKDECK_LANG 优先于 shell locale / TASKDECK_LANG wins over the shell locale
	t.Setenv("TASKDECK_LANG", "zh_CN.UTF-8")
	t.Setenv("LC_ALL", "en_US.UTF-8")
	t.Setenv("LANG", "en_US.UTF-8")
	if got := DetectLocale(); got != "zh-CN" {
		t.Fatalf("DetectLocale()=%q, want zh-CN", got)
	}

	t.Setenv("TASKDECK_LANG", "")
	if got := DetectLocale(); got != "en" {
		t.Fatalf("DetectLocale() via LC_ALL=%q, want en", got)
	}

	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "zh_CN")
	if got := DetectLocale(); got != "zh-CN" {
		t.Fatalf("DetectLocale() via LANG=%q, want zh-CN", got)
	}
}

func TestGlobal(t *testing.T) {
	g := Global()
	if g == nil {
		t.Fatal("Global() should not be nil")
	}
	// 应该返回同一实例 / Should return same instance
	g2 := Global()
	if g != g2 {
		t.Fatal("Global() should return same instance")
	}
}
