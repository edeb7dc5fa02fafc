package instagram

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/configs"
)

// RelationKind 关系集合类型。
type RelationKind string

const (
	RelationFollowing RelationKind = "following"
	RelationFollowers RelationKind = "followers"
)

// ScanProgress 收集进度回调：关系类型 + 当前累计数量。
type ScanProgress func(kind RelationKind, cumulative int)

// CollectAction 从滚动虚拟化的关系列表中抓取完整的用户名集合。
// 页面没有分页接口，只能靠"连续多轮无增长 + 连续多轮滚不动"来判定收敛。
type CollectAction struct {
	page *rod.Page
}

func NewCollectAction(page *rod.Page) *CollectAction {
	return &CollectAction{page: page}
}

// Collect 收集指定账号的 following 或 followers 全量用户名。
// 返回去重后按字典序（不区分大小写）升序的列表。
func (c *CollectAction) Collect(ctx context.Context, account string, kind RelationKind, onProgress ScanProgress) ([]string, error) {
	account = NormalizeUsername(account)
	page := c.page.Context(ctx)

	log := logrus.WithFields(logrus.Fields{"account": account, "relation": kind})
	log.Info("开始收集关系列表")

	// 1. 打开个人主页，等头部渲染出来
	if err := page.Timeout(30 * time.Second).Navigate(baseURL + "/" + account + "/"); err != nil {
		return nil, &NavigationError{Target: "个人主页", Err: err}
	}
	if _, err := page.Timeout(20 * time.Second).Element("header"); err != nil {
		return nil, &NavigationError{Target: "个人主页头部", Err: err}
	}

	// 2. 在头部定位关系入口链接
	entry, err := c.findRelationEntry(page, account, kind)
	if err != nil {
		return nil, err
	}

	// 3. 解析页面展示的预期总数（拿不到不算失败，只是少一个收敛参考）
	expected := c.parseExpectedTotal(entry)
	if expected > 0 {
		log.Infof("页面显示的预期总数: %d", expected)
	}

	// 4. 打开关系弹窗
	if err := clickWithFallback(entry); err != nil {
		return nil, &NavigationError{Target: "关系入口", Err: err}
	}
	if _, err := page.Timeout(10 * time.Second).Element(`div[role="dialog"]`); err != nil {
		return nil, &NavigationError{Target: "关系弹窗", Err: err}
	}

	collected := make(map[string]struct{})
	report := func(count int) {
		if onProgress != nil {
			onProgress(kind, count)
		}
	}

	// 5-7. 弹窗内滚动收集直到收敛
	loop := &collectLoop{
		surface:          &overlaySurface{page: page, exclude: account},
		expected:         expected,
		noGrowthBudget:   configs.NoGrowthBudget(),
		noMovementBudget: configs.NoMovementBudget(),
		maxRounds:        configs.MaxScrollRounds(),
		sleepGrowing:     600 * time.Millisecond,
		sleepStable:      1200 * time.Millisecond,
		onGrowth:         report,
	}
	if err := loop.run(ctx, collected); err != nil {
		return nil, err
	}

	c.closeOverlay(page)

	// 8. 数量不足且知道预期总数时，走整页兜底再补一轮
	if needRecovery(expected, len(collected)) {
		log.Warnf("弹窗收集到 %d 个，少于预期 %d，进入整页兜底", len(collected), expected)
		if err := c.recoverFromFullPage(ctx, page, account, kind, expected, collected, report); err != nil {
			// 兜底失败不丢掉已有结果
			log.Warnf("整页兜底失败: %v", err)
		}
	}

	report(len(collected))
	log.Infof("收集完成，共 %d 个", len(collected))

	// 9. 去重排序返回（用户名已归一化为小写，字典序即不区分大小写的顺序）
	result := make([]string, 0, len(collected))
	for name := range collected {
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

func (c *CollectAction) findRelationEntry(page *rod.Page, account string, kind RelationKind) (*rod.Element, error) {
	header, err := page.Timeout(10 * time.Second).Element("header")
	if err != nil {
		return nil, &NavigationError{Target: "个人主页头部", Err: err}
	}

	links, err := header.Elements("a[href]")
	if err != nil || len(links) == 0 {
		return nil, &NavigationError{Target: "关系入口链接", Err: err}
	}

	want := "/" + account + "/" + string(kind) + "/"
	for _, link := range links {
		href, err := link.Attribute("href")
		if err != nil || href == nil {
			continue
		}
		if pathOf(*href) == want {
			return link, nil
		}
	}
	return nil, &NavigationError{Target: "关系入口 " + want}
}

// parseExpectedTotal 从入口链接上解析预期总数。
// title 属性里通常是未缩写的精确数字，优先于链接文本里的紧凑数字。
func (c *CollectAction) parseExpectedTotal(entry *rod.Element) int64 {
	if title, err := entry.Attribute("title"); err == nil && title != nil {
		if n, ok := ParseCompactCount(*title); ok {
			return n
		}
	}

	if span, err := entry.Element("span[title]"); err == nil {
		if title, err := span.Attribute("title"); err == nil && title != nil {
			if n, ok := ParseCompactCount(*title); ok {
				return n
			}
		}
	}

	if text, err := entry.Text(); err == nil {
		if n, ok := ParseCompactCount(text); ok {
			return n
		}
	}
	return 0
}

func (c *CollectAction) closeOverlay(page *rod.Page) {
	body, err := page.Element("body")
	if err != nil {
		return
	}
	ka, err := body.KeyActions()
	if err != nil {
		return
	}
	if err := ka.Press(input.Escape).Do(); err != nil {
		logrus.Debugf("按 ESC 关闭弹窗失败: %v", err)
	}
	time.Sleep(500 * time.Millisecond)
}

// needRecovery 判断是否进入整页兜底：知道预期总数且还没收集够。
// 拿不到预期总数时没有参照，弹窗收敛的结果就是最终结果。
func needRecovery(expected int64, collected int) bool {
	return expected > 0 && int64(collected) < expected
}

// recoverFromFullPage 兜底路径：弹窗收集不全时，改走 /{account}/{kind}/ 整页
// 再跑一遍同样的收敛循环，达到预期总数提前结束。
func (c *CollectAction) recoverFromFullPage(ctx context.Context, page *rod.Page, account string, kind RelationKind, expected int64, collected map[string]struct{}, onGrowth func(int)) error {
	target := baseURL + "/" + account + "/" + string(kind) + "/"
	if err := page.Timeout(30 * time.Second).Navigate(target); err != nil {
		return &NavigationError{Target: "关系整页", Err: err}
	}
	if err := page.Timeout(20 * time.Second).WaitLoad(); err != nil {
		return &NavigationError{Target: "关系整页", Err: err}
	}
	time.Sleep(time.Second)

	loop := &collectLoop{
		surface:          &fullPageSurface{page: page, exclude: account},
		expected:         expected,
		noGrowthBudget:   configs.NoGrowthBudget(),
		noMovementBudget: configs.NoMovementBudget(),
		maxRounds:        configs.RecoveryRounds(),
		sleepGrowing:     600 * time.Millisecond,
		sleepStable:      1200 * time.Millisecond,
		onGrowth:         onGrowth,
	}
	return loop.run(ctx, collected)
}

// clickWithFallback 先普通点击，失败再用脚本点击。
func clickWithFallback(el *rod.Element) error {
	if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
		return nil
	}
	_, err := el.Eval(`() => this.click()`)
	return err
}

func pathOf(href string) string {
	candidate := href
	if idx := strings.Index(candidate, "://"); idx >= 0 {
		rest := candidate[idx+3:]
		slash := strings.IndexByte(rest, '/')
		if slash < 0 {
			return ""
		}
		candidate = rest[slash:]
	}
	if cut := strings.IndexAny(candidate, "?#"); cut >= 0 {
		candidate = candidate[:cut]
	}
	if candidate != "" && !strings.HasSuffix(candidate, "/") {
		candidate += "/"
	}
	return candidate
}
