package instagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompactCount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"千分位逗号", "1,234", 1234},
		{"K 后缀带小数", "12.3K", 12300},
		{"M 后缀带小数", "2.5M", 2500000},
		{"B 后缀带小数", "1.2B", 1200000000},
		{"纯数字", "500", 500},
		{"小写后缀", "3k", 3000},
		{"整数加后缀", "12K", 12000},
		{"阿拉伯-印度数字", "٥٠٠", 500},
		{"天城文数字", "५००", 500},
		{"带上下文文本", "1,234 followers", 1234},
		{"欧式千分位", "1.234.567", 1234567},
		{"空格千分位", "12 345", 12345},
		{"后缀不吞后续单词首字母", "1,234 Brothers", 1234},
		{"后缀不吞后续单词首字母 K", "12 345 Kids", 12345},
		{"独立后缀隔一个空格", "1.2 B", 1200000000},
		{"德式百万缩写", "2,5 Mio.", 2500000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := ParseCompactCount(tt.input)
			require.True(t, ok, "应当解析成功: %q", tt.input)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestParseCompactCountNoNumber(t *testing.T) {
	for _, input := range []string{"", "followers", "---"} {
		_, ok := ParseCompactCount(input)
		assert.False(t, ok, "不应解析出数字: %q", input)
	}
}

func TestFoldDigitsIdempotent(t *testing.T) {
	inputs := []string{"٥٠٠", "५००", "123", "mixed ٤٢ text"}
	for _, input := range inputs {
		once := foldDigits(input)
		assert.Equal(t, once, foldDigits(once))
	}
}
