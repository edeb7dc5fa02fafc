package instagram

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// OutcomeStatus 单个目标的取关结果。
type OutcomeStatus int

const (
	OutcomeRemoved OutcomeStatus = iota
	OutcomeSkipped
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeRemoved:
		return "removed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome 一个目标账号的处理结果，removed/skipped/failed 三者必居其一。
type Outcome struct {
	Username string
	Status   OutcomeStatus
	Reason   string
}

const (
	verifyTimeout  = 15 * time.Second
	verifyInterval = time.Second
)

// UnfollowAction 驱动单个目标的取关状态机：
// 打开主页 → 读按钮状态 → {已经没关注 | 点击 → 等确认或限流提示 → 复核}。
type UnfollowAction struct {
	page *rod.Page
}

func NewUnfollowAction(page *rod.Page) *UnfollowAction {
	return &UnfollowAction{page: page}
}

// Remove 对一个目标执行取关并核实结果。任何一步失败只影响这个目标。
func (u *UnfollowAction) Remove(ctx context.Context, target string) Outcome {
	target = NormalizeUsername(target)
	page := u.page.Context(ctx)
	log := logrus.WithField("target", target)

	if !IsValidUsername(target) {
		return Outcome{Username: target, Status: OutcomeFailed, Reason: "用户名为空或非法"}
	}

	// 1. 打开目标主页
	if err := page.Timeout(30 * time.Second).Navigate(baseURL + "/" + target + "/"); err != nil {
		return Outcome{Username: target, Status: OutcomeFailed, Reason: "主页加载失败"}
	}
	if _, err := page.Timeout(15 * time.Second).Element("header"); err != nil {
		return Outcome{Username: target, Status: OutcomeFailed, Reason: "主页加载失败"}
	}

	// 2. 读头部操作按钮的状态
	state, control, rawText := u.readActionState(page)
	switch state {
	case IntentFollow:
		log.Info("本来就没有关注，跳过")
		return Outcome{Username: target, Status: OutcomeSkipped, Reason: "本来就没有关注"}
	case IntentUnknown:
		// 文案不认识说明站点文案或结构变了，这是前向兼容信号，必须显式上报
		uiErr := &UnknownUIStateError{RawText: TruncateLabel(rawText, 60)}
		log.Warn(uiErr.Error())
		return Outcome{Username: target, Status: OutcomeFailed, Reason: uiErr.Error()}
	}

	// 3. 点击操作按钮（脚本点击优先，失败退回直接点击）
	if err := scriptedClick(control); err != nil {
		log.Warnf("点击操作按钮失败: %v", err)
		return Outcome{Username: target, Status: OutcomeFailed, Reason: "点击操作按钮失败"}
	}
	time.Sleep(800 * time.Millisecond)

	// 4. 部分布局会弹出确认菜单，找到就点
	u.tryClickConfirm(page)

	// 5. 轮询核实：按钮变成"关注"即成功；出现限流提示立即失败
	deadline := time.Now().Add(verifyTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return Outcome{Username: target, Status: OutcomeFailed, Reason: "操作被取消"}
		case <-time.After(verifyInterval):
		}

		if u.detectBlockedNotice(page) {
			log.Warn("检测到平台限流提示")
			return Outcome{Username: target, Status: OutcomeFailed, Reason: (&ActionBlockedError{}).Error()}
		}

		state, _, _ := u.readActionState(page)
		if state == IntentFollow {
			log.Info("取关成功")
			return Outcome{Username: target, Status: OutcomeRemoved}
		}

		// 确认菜单可能出现得晚，每轮都再试一次
		u.tryClickConfirm(page)
	}

	return Outcome{Username: target, Status: OutcomeFailed, Reason: "超时未确认取关结果"}
}

// readActionState 在头部的交互元素里找操作按钮并分类其文案。
// 返回聚合状态、命中的元素和用于报错的原始文案。
func (u *UnfollowAction) readActionState(page *rod.Page) (Intent, *rod.Element, string) {
	header, err := page.Timeout(5 * time.Second).Element("header")
	if err != nil {
		return IntentUnknown, nil, ""
	}

	controls, err := header.Elements(`button, [role="button"]`)
	if err != nil || len(controls) == 0 {
		return IntentUnknown, nil, ""
	}

	var firstRaw string
	for _, control := range controls {
		text, err := control.Text()
		if err != nil {
			continue
		}
		if text == "" {
			// 图标按钮没有可见文字，退回 aria-label
			if label, err := control.Attribute("aria-label"); err == nil && label != nil {
				text = *label
			}
		}
		if firstRaw == "" && NormalizeLabel(text) != "" {
			firstRaw = text
		}

		switch ClassifyAction(text) {
		case IntentFollowing:
			return IntentFollowing, control, text
		case IntentFollow:
			return IntentFollow, control, text
		}
	}
	return IntentUnknown, nil, firstRaw
}

// tryClickConfirm 在逐步放宽的范围里找取关确认按钮：
// 对话框 → 菜单 → 整页的交互元素兜底（非拉丁文字不能用词边界，只能子串匹配）。
func (u *UnfollowAction) tryClickConfirm(page *rod.Page) {
	scopes := []string{
		`div[role="dialog"] button, div[role="dialog"] [role="button"]`,
		`[role="menu"] [role="menuitem"], [role="menu"] button`,
		`button, [role="button"], [role="menuitem"]`,
	}

	for _, scope := range scopes {
		candidates, err := page.Elements(scope)
		if err != nil {
			continue
		}
		for _, candidate := range candidates {
			text, err := candidate.Text()
			if err != nil || !IsUnfollowConfirm(text) {
				continue
			}
			logrus.WithField("label", TruncateLabel(text, 40)).Debug("点击取关确认按钮")
			if err := scriptedClick(candidate); err != nil {
				logrus.Debugf("点击确认按钮失败: %v", err)
				continue
			}
			return
		}
	}
}

// detectBlockedNotice 按优先级扫描限流提示：警告区 → 对话框 → 整个文档。
func (u *UnfollowAction) detectBlockedNotice(page *rod.Page) bool {
	scopeJS := []string{
		`() => { const el = document.querySelector('[role="alert"]'); return el ? el.innerText : ''; }`,
		`() => { const el = document.querySelector('div[role="dialog"]'); return el ? el.innerText : ''; }`,
		`() => document.body ? document.body.innerText : ''`,
	}

	for _, js := range scopeJS {
		res, err := page.Eval(js)
		if err != nil {
			continue
		}
		if text := res.Value.String(); text != "" && IsBlockedNotice(text) {
			return true
		}
	}
	return false
}

// scriptedClick 脚本点击优先（不受遮挡/可见性影响），失败退回真实点击。
func scriptedClick(el *rod.Element) error {
	if el == nil {
		return &NavigationError{Target: "操作按钮"}
	}
	if _, err := el.Eval(`() => this.click()`); err == nil {
		return nil
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}
