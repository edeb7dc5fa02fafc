package main

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/browser"
	"github.com/igtools/instagram-unfollow-mcp/configs"
	"github.com/igtools/instagram-unfollow-mcp/instagram"
	"github.com/igtools/instagram-unfollow-mcp/profiles"
)

// InstagramService 对外暴露的业务服务。
// 所有公开操作共用一把互斥锁：登录、收集、批量取关不允许交错使用同一个浏览器，
// 这是刻意的节流设计，不是待优化的缺陷——并发操作会显著提高被平台标记的概率。
type InstagramService struct {
	mu      sync.Mutex
	manager *browser.Manager
	account string // 已解析的当前账号名，会话销毁时清空
}

func NewInstagramService() *InstagramService {
	return &InstagramService{
		manager: browser.NewManager(configs.IsHeadless(), configs.GetBinPath()),
	}
}

// LoginStatus 登录状态。
type LoginStatus struct {
	IsLoggedIn bool   `json:"is_logged_in"`
	Username   string `json:"username,omitempty"`
}

// ScanResult 扫描结果。
type ScanResult struct {
	Username         string   `json:"username"`
	FollowingCount   int      `json:"following_count"`
	FollowersCount   int      `json:"followers_count"`
	NotFollowingBack []string `json:"not_following_back"`
}

// UnfollowReport 批量取关结果，三个列表长度之和恒等于输入长度。
type UnfollowReport struct {
	Removed []string `json:"removed"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"` // 形如 "username: 原因"
}

// ActionProgress 批量操作进度回调，每个输入用户名恰好回调一次，按输入顺序。
type ActionProgress func(index, total int, username string, success bool, message string)

// record 把单个结果记入对应列表。每个结果恰好进一个列表，
// 三个列表合起来与输入一一对应。
func (r *UnfollowReport) record(outcome instagram.Outcome) {
	switch outcome.Status {
	case instagram.OutcomeRemoved:
		r.Removed = append(r.Removed, outcome.Username)
	case instagram.OutcomeSkipped:
		r.Skipped = append(r.Skipped, outcome.Username)
	default:
		r.Failed = append(r.Failed, outcome.Username+": "+outcome.Reason)
	}
}

// Login 登录指定账号（账号名只是提示，可以为空）。
// profile 随账号隔离：换账号或强制重新登录时先销毁旧浏览器。
// 登录动作本身由人在浏览器里完成，这里等待登录信号并解析账号名。
func (s *InstagramService) Login(ctx context.Context, accountHint string, timeout time.Duration, forceNewProfile bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileKey := profiles.KeyFor(accountHint)
	dir, err := profiles.Dir(profileKey)
	if err != nil {
		return "", errors.Wrap(err, "准备 profile 目录失败")
	}

	_, activeKey := s.manager.Current()
	if forceNewProfile || profileKey != activeKey {
		// 会话要重建，旧的账号身份随之失效
		s.account = ""
	}

	b, release, err := s.manager.AcquireFor(profileKey, dir, forceNewProfile)
	if err != nil {
		return "", &instagram.BrowserUnavailableError{Err: err}
	}
	defer release()

	page, err := b.Page()
	if err != nil {
		return "", &instagram.BrowserUnavailableError{Err: err}
	}

	login := instagram.NewLoginAction(page)

	// profile 里留存的登录态可能直接可用
	loggedIn, err := login.IsLoggedIn(ctx)
	if err != nil {
		logrus.Debugf("登录状态探测失败: %v", err)
	}
	if !loggedIn {
		if err := login.Open(ctx, accountHint); err != nil {
			return "", err
		}
		if err := login.WaitForLogin(ctx, timeout); err != nil {
			return "", err
		}
	} else {
		logrus.Info("profile 中的会话仍然有效，无需重新登录")
	}

	username, err := login.ResolveIdentity(ctx)
	if err != nil {
		return "", err
	}

	s.account = username
	logrus.WithField("username", username).Info("登录完成")
	return username, nil
}

// Status 返回当前登录状态。浏览器句柄失活一律视为未登录。
func (s *InstagramService) Status(ctx context.Context) *LoginStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readySession(ctx); err != nil {
		return &LoginStatus{}
	}
	return &LoginStatus{IsLoggedIn: true, Username: s.account}
}

// ScanNotFollowingBack 收集 following 和 followers 两个集合并求差。
// onScan 进度做了节流：数量不大时每次增长都上报，之后只在增量足够大时上报。
func (s *InstagramService) ScanNotFollowingBack(ctx context.Context, onScan instagram.ScanProgress) (*ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.readySession(ctx)
	if err != nil {
		return nil, err
	}

	collector := instagram.NewCollectAction(page)
	progress := newThrottledProgress(onScan)

	following, err := collector.Collect(ctx, s.account, instagram.RelationFollowing, progress.update)
	if err != nil {
		return nil, errors.Wrap(err, "收集 following 失败")
	}
	progress.finish(instagram.RelationFollowing, len(following))

	followers, err := collector.Collect(ctx, s.account, instagram.RelationFollowers, progress.update)
	if err != nil {
		return nil, errors.Wrap(err, "收集 followers 失败")
	}
	progress.finish(instagram.RelationFollowers, len(followers))

	result := &ScanResult{
		Username:         s.account,
		FollowingCount:   len(following),
		FollowersCount:   len(followers),
		NotFollowingBack: instagram.NotFollowingBack(following, followers),
	}

	logrus.WithFields(logrus.Fields{
		"following":          result.FollowingCount,
		"followers":          result.FollowersCount,
		"not_following_back": len(result.NotFollowingBack),
	}).Info("扫描完成")
	return result, nil
}

// UnfollowAll 逐个取关，严格串行，目标之间强制间隔。
// 单个目标失败只记录不中断，三个结果列表合起来恰好覆盖全部输入。
func (s *InstagramService) UnfollowAll(ctx context.Context, usernames []string, delay time.Duration, onProgress ActionProgress) (*UnfollowReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.readySession(ctx)
	if err != nil {
		return nil, err
	}

	if delay <= 0 {
		delay = configs.ActionDelay()
	}
	if delay < configs.MinActionDelay() {
		delay = configs.MinActionDelay()
	}

	executor := instagram.NewUnfollowAction(page)
	report := &UnfollowReport{
		Removed: []string{},
		Skipped: []string{},
		Failed:  []string{},
	}
	total := len(usernames)

	logrus.WithFields(logrus.Fields{"total": total, "delay": delay}).Info("开始批量取关")

	for i, raw := range usernames {
		select {
		case <-ctx.Done():
			// 剩下的目标全部记为失败，保证结果列表覆盖全部输入
			for _, rest := range usernames[i:] {
				report.Failed = append(report.Failed, instagram.NormalizeUsername(rest)+": 操作被取消")
			}
			return report, ctx.Err()
		default:
		}

		outcome := executor.Remove(ctx, raw)
		report.record(outcome)

		if onProgress != nil {
			onProgress(i+1, total, outcome.Username, outcome.Status == instagram.OutcomeRemoved, outcome.Reason)
		}

		if i < total-1 {
			sleepWithContext(ctx, delay)
		}
	}

	logrus.WithFields(logrus.Fields{
		"removed": len(report.Removed),
		"skipped": len(report.Skipped),
		"failed":  len(report.Failed),
	}).Info("批量取关完成")
	return report, nil
}

// Logout 销毁当前会话。幂等，失败不阻塞退出。
func (s *InstagramService) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manager.CloseBrowser()
	s.account = ""
}

// readySession 所有业务操作的前置检查：
// 浏览器必须存在且还活着（被人从外部关掉视为未登录，需要重新 Login），
// 登录信号必须仍然成立，账号身份缺失时惰性补解析。
func (s *InstagramService) readySession(ctx context.Context) (*rod.Page, error) {
	b, _ := s.manager.Current()
	if b == nil || !b.Alive() {
		return nil, &instagram.AuthenticationError{Reason: "没有活动的浏览器会话"}
	}

	page, err := b.Page()
	if err != nil {
		return nil, &instagram.AuthenticationError{Reason: "浏览器页面不可用"}
	}

	login := instagram.NewLoginAction(page)
	loggedIn, err := login.IsLoggedIn(ctx)
	if err != nil {
		return nil, &instagram.AuthenticationError{Reason: "登录状态探测失败"}
	}
	if !loggedIn {
		return nil, &instagram.AuthenticationError{Reason: "登录信号已失效"}
	}

	if s.account == "" {
		username, err := login.ResolveIdentity(ctx)
		if err != nil {
			return nil, err
		}
		s.account = username
	}
	return page, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// throttledProgress 扫描进度节流：
// 数量 <= knee 时每次增长都上报，之后只有增量 >= delta 才上报。
type throttledProgress struct {
	onScan instagram.ScanProgress
	last   map[instagram.RelationKind]int
	knee   int
	delta  int
}

func newThrottledProgress(onScan instagram.ScanProgress) *throttledProgress {
	return &throttledProgress{
		onScan: onScan,
		last:   make(map[instagram.RelationKind]int),
		knee:   configs.ProgressKnee(),
		delta:  configs.ProgressDelta(),
	}
}

func (p *throttledProgress) update(kind instagram.RelationKind, count int) {
	if p.onScan == nil {
		return
	}
	previous, ok := p.last[kind]
	if !ok {
		previous = -1
	}
	if count <= p.knee || count-previous >= p.delta {
		p.last[kind] = count
		p.onScan(kind, count)
	}
}

// finish 收集结束时强制上报一次最终数量。
func (p *throttledProgress) finish(kind instagram.RelationKind, count int) {
	if p.onScan == nil {
		return
	}
	if p.last[kind] != count {
		p.last[kind] = count
		p.onScan(kind, count)
	}
}
