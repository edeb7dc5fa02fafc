package instagram

import (
	"regexp"
	"sort"
	"strings"
)

// usernamePattern Instagram 用户名的合法字符集（归一化之后匹配）。
var usernamePattern = regexp.MustCompile(`^[a-z0-9._]{1,30}$`)

// reservedRoutes 站点自身的导航/功能路径，会出现在和用户名相同的位置，
// 提取用户名时必须排除，否则会把功能入口当成账号。
var reservedRoutes = map[string]struct{}{
	"about":         {},
	"accounts":      {},
	"ajax":          {},
	"api":           {},
	"challenge":     {},
	"developer":     {},
	"direct":        {},
	"directory":     {},
	"explore":       {},
	"graphql":       {},
	"legal":         {},
	"lite":          {},
	"p":             {},
	"privacy":       {},
	"reel":          {},
	"reels":         {},
	"session":       {},
	"stories":       {},
	"terms":         {},
	"tv":            {},
	"web":           {},
	"your_activity": {},
}

// NormalizeUsername 归一化用户名：去空白、去开头的 @、转小写。
// 归一化是幂等的。
func NormalizeUsername(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "@")
	name = strings.TrimSpace(name)
	return strings.ToLower(name)
}

// IsValidUsername 判断归一化后的用户名是否落在安全字符集内，
// 且不是站点保留路径。
func IsValidUsername(name string) bool {
	if name == "" {
		return false
	}
	if _, reserved := reservedRoutes[name]; reserved {
		return false
	}
	return usernamePattern.MatchString(name)
}

// NotFollowingBack 求差集：我关注了但没有回关的账号。
// 不区分大小写、去重，结果按字典序升序，与输入顺序无关。
func NotFollowingBack(following, followers []string) []string {
	followerSet := make(map[string]struct{}, len(followers))
	for _, name := range followers {
		followerSet[NormalizeUsername(name)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(following))
	var result []string
	for _, raw := range following {
		name := NormalizeUsername(raw)
		if name == "" {
			continue
		}
		if _, follows := followerSet[name]; follows {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	sort.Strings(result)
	return result
}

// CandidateFromHref 从链接地址中提取用户名候选。
// 取路径的第一段，过滤保留路径和非法字符；不是用户名链接时返回空串。
func CandidateFromHref(href string) string {
	if href == "" {
		return ""
	}

	// 绝对地址只看路径部分
	if idx := strings.Index(href, "://"); idx >= 0 {
		rest := href[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			href = rest[slash:]
		} else {
			return ""
		}
	}

	href = strings.TrimPrefix(href, "/")
	if cut := strings.IndexAny(href, "?#"); cut >= 0 {
		href = href[:cut]
	}

	segment := href
	if slash := strings.Index(href, "/"); slash >= 0 {
		segment = href[:slash]
	}

	candidate := NormalizeUsername(segment)
	if !IsValidUsername(candidate) {
		return ""
	}
	return candidate
}
