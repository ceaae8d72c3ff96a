package chat

import "testing"

func TestGiftContentRoundTrip(t *testing.T) {
	content := ComposeGiftContent("선물 도착!", "1024", "PRODUCT")
	if content != "선물 도착!&1024&PRODUCT" {
		t.Fatalf("content = %q", content)
	}

	if got := StripGiftContent(content); got != "선물 도착!" {
		t.Fatalf("StripGiftContent = %q, want 선물 도착!", got)
	}
	if got := GiftOrderID(content); got != "1024" {
		t.Fatalf("GiftOrderID = %q, want 1024", got)
	}
	if got := GiftType(content); got != "PRODUCT" {
		t.Fatalf("GiftType = %q, want PRODUCT", got)
	}
}

func TestGiftContentTextWithSeparator(t *testing.T) {
	// 展示文本自身含分隔符时只剥离最后两段
	content := ComposeGiftContent("A&B 세트", "77", "VOUCHER")
	if got := StripGiftContent(content); got != "A&B 세트" {
		t.Fatalf("StripGiftContent = %q, want A&B 세트", got)
	}
	if got := GiftOrderID(content); got != "77" {
		t.Fatalf("GiftOrderID = %q, want 77", got)
	}
}

func TestStripGiftContentPlainText(t *testing.T) {
	// 非礼物消息原样返回
	for _, raw := range []string{"안녕하세요", "a&b", ""} {
		if got := StripGiftContent(raw); got != raw {
			t.Fatalf("StripGiftContent(%q) = %q, want 原文", raw, got)
		}
	}
}

func TestGiftFieldsMalformed(t *testing.T) {
	if got := GiftOrderID("plain"); got != "" {
		t.Fatalf("GiftOrderID = %q, want 空", got)
	}
	if got := GiftType("a&b"); got != "" {
		t.Fatalf("GiftType = %q, want 空", got)
	}
}
