package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected Intent
	}{
		{"英文 Follow", "Follow", IntentFollow},
		{"英文 Follow Back", "Follow Back", IntentFollow},
		{"英文 Following", "Following", IntentFollowing},
		{"英文 Requested", "Requested", IntentFollowing},
		{"大小写和空白", "  FOLLOWING  ", IntentFollowing},
		{"西语关注", "Seguir", IntentFollow},
		{"西语已关注", "Siguiendo", IntentFollowing},
		{"葡语已关注", "Seguindo", IntentFollowing},
		{"德语已关注", "Abonniert", IntentFollowing},
		{"日语关注", "フォロー", IntentFollow},
		{"日语已关注", "フォロー中", IntentFollowing},
		{"韩语已关注", "팔로잉", IntentFollowing},
		{"中文已关注", "已关注", IntentFollowing},
		{"俄语关注", "Подписаться", IntentFollow},
		{"无法识别", "Message", IntentUnknown},
		{"空文案", "   ", IntentUnknown},
		{"follow 出现在单词内部不算", "unfollowers report", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyAction(tt.label), "label=%q", tt.label)
		})
	}
}

func TestIsUnfollowConfirm(t *testing.T) {
	confirm := []string{"Unfollow", "Dejar de seguir", "フォローをやめる", "取消关注", "Отписаться"}
	for _, label := range confirm {
		assert.True(t, IsUnfollowConfirm(label), "label=%q", label)
	}

	notConfirm := []string{"Follow", "Following", "Cancel", "取消"}
	for _, label := range notConfirm {
		assert.False(t, IsUnfollowConfirm(label), "label=%q", label)
	}
}

func TestIsBlockedNotice(t *testing.T) {
	blocked := []string{
		"Action Blocked",
		"Please try again later. We restrict certain activity to protect our community.",
		"Inténtalo de nuevo más tarde",
		"请稍后重试",
	}
	for _, text := range blocked {
		assert.True(t, IsBlockedNotice(text), "text=%q", text)
	}

	assert.False(t, IsBlockedNotice("Followers"))
	assert.False(t, IsBlockedNotice(""))
}

func TestNormalizeLabelIdempotent(t *testing.T) {
	inputs := []string{"  Follow   Back ", "FOLLOWING", "フォロー中", "٥٠٠ followers"}
	for _, input := range inputs {
		once := NormalizeLabel(input)
		assert.Equal(t, once, NormalizeLabel(once), "归一化必须幂等: %q", input)
	}
}

func TestNormalizeLabelFoldsDigits(t *testing.T) {
	assert.Equal(t, "500 followers", NormalizeLabel("٥٠٠ Followers"))
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", TruncateLabel("short", 40))
	long := "an extremely long button label that keeps going and going"
	truncated := TruncateLabel(long, 20)
	assert.LessOrEqual(t, len([]rune(truncated)), 20)
}
