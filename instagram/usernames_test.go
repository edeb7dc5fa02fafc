package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"去掉开头的 @", "@someone", "someone"},
		{"去掉空白", "  user_01  ", "user_01"},
		{"转小写", "SomeUser", "someuser"},
		{"@ 和空白混合", " @Some.User ", "some.user"},
		{"空输入", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeUsername(tt.input))
		})
	}
}

func TestNormalizeUsernameIdempotent(t *testing.T) {
	inputs := []string{"@User.Name", "  abc  ", "ABC_def", "@@double"}
	for _, input := range inputs {
		once := NormalizeUsername(input)
		assert.Equal(t, once, NormalizeUsername(once), "归一化必须幂等: %q", input)
	}
}

func TestIsValidUsername(t *testing.T) {
	valid := []string{"user", "user.name", "user_name", "a1b2c3", "a"}
	for _, name := range valid {
		assert.True(t, IsValidUsername(name), "应当合法: %q", name)
	}

	invalid := []string{
		"",
		"user name",
		"user-name",
		"ユーザー",
		"toolongtoolongtoolongtoolongtoo", // 31 个字符
		"explore",                         // 保留路径
		"accounts",
		"reels",
		"p",
	}
	for _, name := range invalid {
		assert.False(t, IsValidUsername(name), "应当非法: %q", name)
	}
}

func TestCandidateFromHref(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"相对路径", "/someone/", "someone"},
		{"无尾斜杠", "/someone", "someone"},
		{"绝对地址", "https://www.instagram.com/someone/", "someone"},
		{"带查询参数", "/someone/?hl=en", "someone"},
		{"保留路径 explore", "/explore/", ""},
		{"保留路径 accounts", "/accounts/edit/", ""},
		{"保留路径 reels", "/reels/xyz/", ""},
		{"帖子链接", "/p/abc123/", ""},
		{"非法字符", "/some one/", ""},
		{"空链接", "", ""},
		{"只有斜杠", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CandidateFromHref(tt.href))
		})
	}
}

func TestNotFollowingBack(t *testing.T) {
	result := NotFollowingBack(
		[]string{"a", "B", "c"},
		[]string{"b"},
	)
	assert.Equal(t, []string{"a", "c"}, result)
}

func TestNotFollowingBackOrderIndependent(t *testing.T) {
	first := NotFollowingBack([]string{"zeta", "Alpha", "mid"}, []string{"MID"})
	second := NotFollowingBack([]string{"mid", "zeta", "alpha"}, []string{"mid"})
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"alpha", "zeta"}, first)
}

func TestNotFollowingBackDeduplicates(t *testing.T) {
	result := NotFollowingBack([]string{"dup", "DUP", "@dup", "other"}, nil)
	assert.Equal(t, []string{"dup", "other"}, result)
}
