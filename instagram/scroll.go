package instagram

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/sirupsen/logrus"
)

// scrollSurface 把"一块可以滚动并从中提取用户名的区域"抽象出来，
// 让收敛循环可以脱离真实浏览器时序单独测试。
type scrollSurface interface {
	// ExtractUsernames 返回当前已渲染出来的用户名候选（未去重）。
	ExtractUsernames() ([]string, error)
	// Metrics 返回滚动位置和内容总高度。
	Metrics() (top, height float64, err error)
	// Scroll 用第 i 种手段尝试向下滚动。
	Scroll(technique int) error
	// TechniqueCount 可用滚动手段的数量。
	TechniqueCount() int
}

// collectLoop 提取/滚动收敛循环。
// 终止条件由三个命名判据共同决定：
//   - 连续 noGrowthBudget 轮没有新用户名，且连续 noMovementBudget 轮滚不动
//   - 轮数达到 maxRounds 硬上限
//   - 已知预期总数且已收集够
type collectLoop struct {
	surface          scrollSurface
	expected         int64
	noGrowthBudget   int
	noMovementBudget int
	maxRounds        int
	sleepGrowing     time.Duration
	sleepStable      time.Duration
	onGrowth         func(count int)
}

func (l *collectLoop) run(ctx context.Context, collected map[string]struct{}) error {
	noGrowth := 0
	noMovement := 0

	for round := 0; round < l.maxRounds; round++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		names, err := l.surface.ExtractUsernames()
		if err != nil {
			logrus.Debugf("提取用户名失败: %v", err)
		}

		before := len(collected)
		for _, raw := range names {
			name := NormalizeUsername(raw)
			if IsValidUsername(name) {
				collected[name] = struct{}{}
			}
		}

		if len(collected) > before {
			noGrowth = 0
			if l.onGrowth != nil {
				l.onGrowth(len(collected))
			}
		} else {
			noGrowth++
		}

		if l.expected > 0 && int64(len(collected)) >= l.expected {
			logrus.Debugf("已达到预期总数 %d，提前结束", l.expected)
			return nil
		}

		moved := l.advance()
		if moved {
			noMovement = 0
		} else {
			noMovement++
		}

		if noGrowth >= l.noGrowthBudget && noMovement >= l.noMovementBudget {
			logrus.Debugf("收敛：连续 %d 轮无增长、%d 轮无滚动", noGrowth, noMovement)
			return nil
		}

		// 懒加载有延迟：还在增长时小睡，进入平台期后多等一会
		if noGrowth == 0 {
			sleepCtx(ctx, l.sleepGrowing)
		} else {
			sleepCtx(ctx, l.sleepStable)
		}
	}

	logrus.Warnf("滚动轮数达到上限 %d，强制结束", l.maxRounds)
	return nil
}

// advance 依次尝试各种滚动手段，第一个让位置前进或内容变高的手段生效即停。
func (l *collectLoop) advance() bool {
	beforeTop, beforeHeight, err := l.surface.Metrics()
	if err != nil {
		logrus.Debugf("读取滚动状态失败: %v", err)
		return false
	}

	for technique := 0; technique < l.surface.TechniqueCount(); technique++ {
		if err := l.surface.Scroll(technique); err != nil {
			logrus.Debugf("滚动手段 %d 失败: %v", technique, err)
			continue
		}

		afterTop, afterHeight, err := l.surface.Metrics()
		if err != nil {
			continue
		}
		if afterTop > beforeTop || afterHeight > beforeHeight {
			return true
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// candidatesFromHrefs 把链接列表转换成用户名候选，并排除指定账号自身。
// 弹窗和整页上都会出现指向本账号的链接（弹窗标签页、侧边导航），
// 不排除的话本账号会混进自己的关系集合，甚至成为取关目标。
func candidatesFromHrefs(hrefs []string, exclude string) []string {
	var candidates []string
	for _, href := range hrefs {
		candidate := CandidateFromHref(href)
		if candidate == "" || candidate == exclude {
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// overlaySurface 关系弹窗内的滚动区域。
// 滚动目标是弹窗后代里 内容高度超出可视高度最多、且 overflow 允许滚动 的元素，
// 每次读取都重新解析，滚不动时自然换到新的目标。
type overlaySurface struct {
	page    *rod.Page
	exclude string
}

const overlayExtractJS = `() => {
	const dlg = document.querySelector('div[role="dialog"]');
	if (!dlg) return [];
	return Array.from(dlg.querySelectorAll('a[href]'))
		.map(a => a.getAttribute('href'))
		.filter(h => !!h);
}`

// overlayRegionJS 解析弹窗内的滚动区域并打上标记，返回其滚动状态。
const overlayRegionJS = `() => {
	const dlg = document.querySelector('div[role="dialog"]');
	if (!dlg) return null;
	for (const el of dlg.querySelectorAll('[data-scroll-region]')) {
		el.removeAttribute('data-scroll-region');
	}
	let best = dlg;
	let bestMargin = dlg.scrollHeight - dlg.clientHeight;
	for (const el of dlg.querySelectorAll('*')) {
		const margin = el.scrollHeight - el.clientHeight;
		if (margin <= 0) continue;
		const overflow = getComputedStyle(el).overflowY;
		if (overflow !== 'auto' && overflow !== 'scroll') continue;
		if (margin > bestMargin) {
			bestMargin = margin;
			best = el;
		}
	}
	best.setAttribute('data-scroll-region', '1');
	return { top: best.scrollTop, height: best.scrollHeight };
}`

func (s *overlaySurface) ExtractUsernames() ([]string, error) {
	res, err := s.page.Eval(overlayExtractJS)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	for _, item := range res.Value.Arr() {
		hrefs = append(hrefs, item.String())
	}
	return candidatesFromHrefs(hrefs, s.exclude), nil
}

func (s *overlaySurface) Metrics() (float64, float64, error) {
	res, err := s.page.Eval(overlayRegionJS)
	if err != nil {
		return 0, 0, err
	}
	if res.Value.Nil() {
		return 0, 0, nil
	}
	return res.Value.Get("top").Num(), res.Value.Get("height").Num(), nil
}

func (s *overlaySurface) TechniqueCount() int { return 4 }

func (s *overlaySurface) Scroll(technique int) error {
	switch technique {
	case 0:
		// 直接改 scrollTop
		_, err := s.page.Eval(`() => {
			const r = document.querySelector('[data-scroll-region]');
			if (!r) return false;
			r.scrollTop = r.scrollTop + Math.max(r.clientHeight, 400);
			return true;
		}`)
		return err
	case 1:
		// 合成滚轮事件
		_, err := s.page.Eval(`() => {
			const r = document.querySelector('[data-scroll-region]');
			if (!r) return false;
			r.dispatchEvent(new WheelEvent('wheel', { deltaY: 600, bubbles: true }));
			return true;
		}`)
		return err
	case 2:
		// 聚焦滚动区域后按 PageDown
		if _, err := s.page.Eval(`() => {
			const r = document.querySelector('[data-scroll-region]');
			if (r) r.focus();
		}`); err != nil {
			return err
		}
		return s.page.Keyboard.Type(input.PageDown)
	default:
		// 对整个页面按 PageDown
		return pressKeyOnBody(s.page, input.PageDown)
	}
}

// fullPageSurface 兜底路径使用的整页滚动区域（/{account}/{kind}/ 专页）。
// 整页上会出现导航里指向本账号主页的链接，提取时要排除掉本账号。
type fullPageSurface struct {
	page    *rod.Page
	exclude string
}

func (s *fullPageSurface) ExtractUsernames() ([]string, error) {
	res, err := s.page.Eval(`() => Array.from(document.querySelectorAll('a[href]'))
		.map(a => a.getAttribute('href'))
		.filter(h => !!h)`)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	for _, item := range res.Value.Arr() {
		hrefs = append(hrefs, item.String())
	}
	return candidatesFromHrefs(hrefs, s.exclude), nil
}

func (s *fullPageSurface) Metrics() (float64, float64, error) {
	res, err := s.page.Eval(`() => {
		const root = document.scrollingElement || document.documentElement;
		return { top: root.scrollTop, height: root.scrollHeight };
	}`)
	if err != nil {
		return 0, 0, err
	}
	return res.Value.Get("top").Num(), res.Value.Get("height").Num(), nil
}

func (s *fullPageSurface) TechniqueCount() int { return 3 }

func (s *fullPageSurface) Scroll(technique int) error {
	switch technique {
	case 0:
		_, err := s.page.Eval(`() => window.scrollBy(0, Math.max(window.innerHeight, 600))`)
		return err
	case 1:
		return s.page.Mouse.Scroll(0, 600, 1)
	default:
		return pressKeyOnBody(s.page, input.PageDown)
	}
}

func pressKeyOnBody(page *rod.Page, key input.Key) error {
	body, err := page.Element("body")
	if err != nil {
		return err
	}
	ka, err := body.KeyActions()
	if err != nil {
		return err
	}
	return ka.Press(key).Do()
}
