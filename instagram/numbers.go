package instagram

import (
	"regexp"
	"strconv"
	"strings"
)

// 关注/粉丝计数在页面上是本地化的紧凑格式，例如 "1,234"、"12.3K"、
// "2,5 Mio."、阿拉伯数字等。这里把它们还原成整数。

// digitZeroes 常见数字文字系统的零字符，同一系统内 0-9 连续编码。
var digitZeroes = []rune{
	'0',      // ASCII
	'٠', // 阿拉伯-印度数字 ٠
	'۰', // 波斯数字 ۰
	'०', // 天城文数字 ०
	'০', // 孟加拉数字 ০
}

// foldDigits 把非 ASCII 数字字符映射成 ASCII 数字，其余字符原样保留。
func foldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		for _, zero := range digitZeroes {
			if r >= zero && r <= zero+9 {
				return '0' + (r - zero)
			}
		}
		return r
	}, s)
}

// compactPattern 匹配文本里的第一个计数：数字主体 + 可选的 K/M/B/Mio 后缀。
// 数字主体必须以数字结尾，后缀紧邻或隔一个空格、且后面是词边界，
// 防止后缀吞掉后面无关单词的首字母（"1,234 Brothers" 不是 1234B）。
var compactPattern = regexp.MustCompile(`([0-9](?:[0-9.,'’\x{00a0}\x{202f} ]*[0-9])?)(?:[ \x{00a0}]?([kKmMbB]|[Mm]io)\b)?`)

var suffixMultipliers = map[string]float64{
	"k":   1e3,
	"m":   1e6,
	"mio": 1e6,
	"b":   1e9,
}

// ParseCompactCount 从文本中解析第一个计数值。
// 没有可解析的数字时返回 (0, false)。
func ParseCompactCount(text string) (int64, bool) {
	folded := foldDigits(text)

	m := compactPattern.FindStringSubmatch(folded)
	if m == nil {
		return 0, false
	}

	body := m[1]
	suffix := strings.ToLower(m[2])

	// 去掉空格类和撇号类千分位
	body = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ', '\'', '’':
			return -1
		}
		return r
	}, body)

	if suffix == "" {
		// 无后缀：逗号和点都只可能是千分位
		digits := stripNonDigits(body)
		if digits == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	mult := suffixMultipliers[suffix]

	// 有后缀：最后一个逗号/点在后面跟 1-2 位数字时是小数点，否则是千分位
	if idx := strings.LastIndexAny(body, ".,"); idx >= 0 {
		frac := body[idx+1:]
		if len(frac) >= 1 && len(frac) <= 2 && stripNonDigits(frac) == frac {
			intPart := stripNonDigits(body[:idx])
			f, err := strconv.ParseFloat(intPart+"."+frac, 64)
			if err != nil {
				return 0, false
			}
			return int64(f*mult + 0.5), true
		}
	}

	digits := stripNonDigits(body)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return int64(float64(n) * mult), true
}

func stripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
