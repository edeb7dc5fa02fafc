package configs

import "time"

// 全局配置，进程启动时由 main/CLI 初始化一次，之后只读。

var (
	headless = true
	binPath  string

	loginTimeout   = 300 * time.Second
	cookiePollGap  = 2 * time.Second
	actionDelay    = 2 * time.Second
	minActionDelay = 500 * time.Millisecond

	// 滚动收敛参数：连续无增长轮数 + 连续无滚动轮数 同时达到才终止
	noGrowthBudget   = 12
	noMovementBudget = 4
	maxScrollRounds  = 600
	recoveryRounds   = 150

	// 进度上报节流：数量 <= knee 时每次增长都上报，之后增量 >= delta 才上报
	progressKnee  = 50
	progressDelta = 5
)

func InitHeadless(h bool) { headless = h }

func IsHeadless() bool { return headless }

func SetBinPath(path string) { binPath = path }

func GetBinPath() string { return binPath }

func SetLoginTimeout(d time.Duration) {
	if d > 0 {
		loginTimeout = d
	}
}

func LoginTimeout() time.Duration { return loginTimeout }

func CookiePollInterval() time.Duration { return cookiePollGap }

// SetActionDelay 设置批量操作的间隔，低于下限时取下限。
func SetActionDelay(d time.Duration) {
	if d < minActionDelay {
		d = minActionDelay
	}
	actionDelay = d
}

func ActionDelay() time.Duration { return actionDelay }

func MinActionDelay() time.Duration { return minActionDelay }

func SetConvergenceBudgets(noGrowth, noMovement, maxRounds int) {
	if noGrowth > 0 {
		noGrowthBudget = noGrowth
	}
	if noMovement > 0 {
		noMovementBudget = noMovement
	}
	if maxRounds > 0 {
		maxScrollRounds = maxRounds
	}
}

func NoGrowthBudget() int { return noGrowthBudget }

func NoMovementBudget() int { return noMovementBudget }

func MaxScrollRounds() int { return maxScrollRounds }

func SetRecoveryRounds(n int) {
	if n > 0 {
		recoveryRounds = n
	}
}

func RecoveryRounds() int { return recoveryRounds }

func SetProgressThrottle(knee, delta int) {
	if knee > 0 {
		progressKnee = knee
	}
	if delta > 0 {
		progressDelta = delta
	}
}

func ProgressKnee() int { return progressKnee }

func ProgressDelta() int { return progressDelta }
