package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/browser"
	"github.com/igtools/instagram-unfollow-mcp/configs"
	"github.com/igtools/instagram-unfollow-mcp/instagram"
	"github.com/igtools/instagram-unfollow-mcp/profiles"
)

// 这个 CLI 程序用于直接从命令行跑完整流程：登录 → 扫描未回关 → （可选）批量取关，
// 不依赖 HTTP/MCP 客户端。
func main() {
	var (
		headless      bool
		binPath       string
		account       string
		loginTimeout  int
		delaySeconds  float64
		execute       bool
		resetProfiles bool

		noGrowth       int
		noMovement     int
		maxRounds      int
		recoveryRounds int
		progressKnee   int
		progressDelta  int
	)

	flag.BoolVar(&headless, "headless", false, "是否无头模式，默认 false（有界面，便于人工登录）")
	flag.StringVar(&binPath, "bin", "", "浏览器二进制文件路径（可选，不传则使用 ROD_BROWSER_BIN 环境变量）")
	flag.StringVar(&account, "account", "", "账号名提示（用于选择 profile 和预填登录表单）")
	flag.IntVar(&loginTimeout, "login-timeout", 300, "等待人工完成登录的秒数")
	flag.Float64Var(&delaySeconds, "delay", 2.0, "两次取关之间的间隔秒数，最低 0.5")
	flag.BoolVar(&execute, "execute", false, "扫描后执行批量取关；默认只扫描不动手")
	flag.BoolVar(&resetProfiles, "reset-profiles", false, "启动前删除所有本地 profile（强制所有账号重新登录）")

	// 滚动收敛和进度节流参数，默认值适用于绝大多数账号，列表特别大时可调
	flag.IntVar(&noGrowth, "no-growth", configs.NoGrowthBudget(), "判定收敛所需的连续无增长轮数")
	flag.IntVar(&noMovement, "no-movement", configs.NoMovementBudget(), "判定收敛所需的连续滚不动轮数")
	flag.IntVar(&maxRounds, "max-rounds", configs.MaxScrollRounds(), "弹窗滚动的硬性轮数上限")
	flag.IntVar(&recoveryRounds, "recovery-rounds", configs.RecoveryRounds(), "整页兜底收集的轮数预算")
	flag.IntVar(&progressKnee, "progress-knee", configs.ProgressKnee(), "进度节流拐点：数量不超过该值时每次增长都上报")
	flag.IntVar(&progressDelta, "progress-delta", configs.ProgressDelta(), "进度节流增量：超过拐点后增量达到该值才上报")
	flag.Parse()

	if len(binPath) == 0 {
		binPath = os.Getenv("ROD_BROWSER_BIN")
	}

	configs.InitHeadless(headless)
	configs.SetBinPath(binPath)
	configs.SetActionDelay(time.Duration(delaySeconds * float64(time.Second)))
	configs.SetConvergenceBudgets(noGrowth, noMovement, maxRounds)
	configs.SetRecoveryRounds(recoveryRounds)
	configs.SetProgressThrottle(progressKnee, progressDelta)

	if resetProfiles {
		if err := profiles.ResetAll(); err != nil {
			logrus.Fatalf("删除 profile 失败: %v", err)
		}
	}

	ctx := context.Background()

	profileKey := profiles.KeyFor(account)
	dir, err := profiles.Dir(profileKey)
	if err != nil {
		logrus.Fatalf("准备 profile 目录失败: %v", err)
	}

	manager := browser.NewManager(headless, binPath)
	defer manager.CloseBrowser()

	b, release, err := manager.AcquireFor(profileKey, dir, false)
	if err != nil {
		logrus.Fatalf("启动浏览器失败: %v", err)
	}
	defer release()

	page, err := b.Page()
	if err != nil {
		logrus.Fatalf("创建页面失败: %v", err)
	}

	// 1. 登录（profile 里的会话还有效时直接跳过）
	login := instagram.NewLoginAction(page)
	loggedIn, _ := login.IsLoggedIn(ctx)
	if !loggedIn {
		if err := login.Open(ctx, account); err != nil {
			logrus.Fatalf("打开登录页失败: %v", err)
		}
		if err := login.WaitForLogin(ctx, time.Duration(loginTimeout)*time.Second); err != nil {
			logrus.Fatalf("登录失败: %v", err)
		}
	}

	username, err := login.ResolveIdentity(ctx)
	if err != nil {
		logrus.Fatalf("解析账号名失败: %v", err)
	}
	logrus.WithField("username", username).Info("登录完成")

	// 2. 扫描两个关系集合并求差
	collector := instagram.NewCollectAction(page)
	onProgress := func(kind instagram.RelationKind, count int) {
		logrus.WithFields(logrus.Fields{"relation": kind, "count": count}).Info("扫描进度")
	}

	following, err := collector.Collect(ctx, username, instagram.RelationFollowing, onProgress)
	if err != nil {
		logrus.Fatalf("收集 following 失败: %v", err)
	}
	followers, err := collector.Collect(ctx, username, instagram.RelationFollowers, onProgress)
	if err != nil {
		logrus.Fatalf("收集 followers 失败: %v", err)
	}

	notFollowingBack := instagram.NotFollowingBack(following, followers)
	logrus.Infof("following=%d followers=%d 未回关=%d", len(following), len(followers), len(notFollowingBack))
	for _, name := range notFollowingBack {
		fmt.Println(name)
	}

	if !execute {
		logrus.Info("只扫描不动手（加 -execute 才会执行取关）")
		return
	}

	// 3. 逐个取关，目标之间强制间隔
	delay := configs.ActionDelay()
	executor := instagram.NewUnfollowAction(page)
	var removed, skipped, failed int

	for i, target := range notFollowingBack {
		outcome := executor.Remove(ctx, target)
		switch outcome.Status {
		case instagram.OutcomeRemoved:
			removed++
		case instagram.OutcomeSkipped:
			skipped++
		default:
			failed++
		}
		logrus.WithFields(logrus.Fields{
			"index":    i + 1,
			"total":    len(notFollowingBack),
			"username": outcome.Username,
			"status":   outcome.Status.String(),
			"message":  outcome.Reason,
		}).Info("取关进度")

		if i < len(notFollowingBack)-1 {
			time.Sleep(delay)
		}
	}

	logrus.Infof("批量取关完成: removed=%d skipped=%d failed=%d", removed, skipped, failed)
}
