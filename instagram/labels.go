package instagram

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// 界面文案分类器。按钮/弹窗文案因账号语言不同而不同，
// 这里用数据表把各语言的关键词映射到统一意图，新增语言只需要加表项。

// Intent 归一化文案对应的意图。
type Intent int

const (
	IntentUnknown Intent = iota
	IntentFollow
	IntentFollowing
	IntentUnfollowConfirm
	IntentBlocked
)

func (i Intent) String() string {
	switch i {
	case IntentFollow:
		return "follow"
	case IntentFollowing:
		return "following"
	case IntentUnfollowConfirm:
		return "unfollow_confirm"
	case IntentBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// followKeywords "关注"意图：表示当前未关注对方。
var followKeywords = []string{
	"follow",
	"follow back",
	"seguir",          // es / pt
	"folgen",          // de
	"suivre",          // fr
	"segui",           // it
	"takip et",        // tr
	"подписаться",     // ru
	"フォロー",        // ja
	"フォローする",    // ja
	"팔로우",          // ko
	"关注",            // zh
	"फ़ॉलो करें",      // hi
	"متابعة",          // ar
}

// followingKeywords "已关注"意图：表示当前已关注对方（含已发送请求）。
var followingKeywords = []string{
	"following",
	"requested",
	"siguiendo",        // es
	"seguindo",         // pt
	"abonniert",        // de
	"abonné",           // fr
	"segui già",        // it
	"già segui",        // it（两种语序都出现过）
	"takip ediliyor",   // tr
	"istek gönderildi", // tr
	"подписан",         // ru（覆盖 подписаны）
	"фолловинг",        // ru
	"フォロー中",       // ja
	"팔로잉",           // ko
	"已关注",           // zh
	"正在关注",         // zh
	"फ़ॉलो कर रहे",     // hi
	"تتابع",            // ar
}

// unfollowConfirmKeywords 取关确认按钮的文案。
var unfollowConfirmKeywords = []string{
	"unfollow",
	"dejar de seguir",   // es
	"deixar de seguir",  // pt
	"nicht mehr folgen", // de
	"ne plus suivre",    // fr
	"smetti di seguire", // it
	"takibi bırak",      // tr
	"отписаться",        // ru
	"フォローをやめる",  // ja
	"팔로우 취소",       // ko
	"取消关注",          // zh
	"अनफ़ॉलो",           // hi
	"إلغاء المتابعة",    // ar
}

// blockedPhrases 平台限流/阻止提示的特征短语。
var blockedPhrases = []string{
	"action blocked",
	"try again later",
	"we restrict certain activity",
	"limit how often",
	"inténtalo de nuevo más tarde", // es
	"vuelve a intentarlo",          // es
	"tente novamente mais tarde",   // pt
	"versuche es später erneut",    // de
	"réessayez plus tard",          // fr
	"riprova più tardi",            // it
	"daha sonra tekrar dene",       // tr
	"повторите попытку позже",      // ru
	"後ほどもう一度実行してください", // ja
	"나중에 다시 시도",             // ko
	"请稍后重试",                   // zh
	"操作被阻止",                   // zh
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeLabel 归一化界面文案：去首尾空白、折叠空白、转小写、数字折叠。
// 归一化是幂等的。
func NormalizeLabel(raw string) string {
	s := strings.TrimSpace(raw)
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	return foldDigits(s)
}

// ClassifyAction 对主页头部操作按钮的文案分类。
// "关注"关键词命中但"已关注"关键词也命中时判为已关注，
// 避免把 "follow back" 之类误判（following 含 follow 前缀的语言同理）。
func ClassifyAction(raw string) Intent {
	text := NormalizeLabel(raw)
	if text == "" {
		return IntentUnknown
	}

	isFollowing := matchAny(text, followingKeywords)
	if isFollowing {
		return IntentFollowing
	}
	if matchAny(text, followKeywords) {
		return IntentFollow
	}
	return IntentUnknown
}

// IsUnfollowConfirm 判断文案是否是取关确认按钮。
func IsUnfollowConfirm(raw string) bool {
	return matchAny(NormalizeLabel(raw), unfollowConfirmKeywords)
}

// IsBlockedNotice 判断文案是否是限流/阻止提示。
func IsBlockedNotice(raw string) bool {
	return matchAny(NormalizeLabel(raw), blockedPhrases)
}

// matchAny 关键词匹配。ASCII 关键词按单词边界匹配，避免命中其他单词内部；
// 非 ASCII 文字没有通用的词边界概念，按子串匹配。
func matchAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if isASCII(kw) {
			if matchWordBounded(text, kw) {
				return true
			}
		} else if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func matchWordBounded(text, kw string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], kw)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(kw)
		if boundaryAt(text, start-1) && boundaryAt(text, end) {
			return true
		}
		idx = start + 1
	}
}

// boundaryAt 判断 i 处是否是单词边界（越界或非字母数字）。
func boundaryAt(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	c := text[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// TruncateLabel 按显示宽度截断文案，用于日志和错误信息里引用原始文案。
func TruncateLabel(raw string, width int) string {
	return runewidth.Truncate(strings.TrimSpace(raw), width, "…")
}
