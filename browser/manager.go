package browser

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager 浏览器实例管理器，确保同一时间只有一个浏览器实例在使用，
// 且实例始终绑定在一个 profile 上。换账号或强制重新登录时先销毁旧实例。
type Manager struct {
	mu         sync.Mutex
	cond       *sync.Cond // 条件变量，用于等待浏览器释放
	browser    *Browser
	profileKey string
	headless   bool
	binPath    string
	inUse      bool
}

func NewManager(headless bool, binPath string) *Manager {
	m := &Manager{headless: headless, binPath: binPath}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// AcquireFor 获取绑定到指定 profile 的浏览器实例（会阻塞直到浏览器可用）。
// profile 变化、强制重建、或旧实例已失活时，先销毁旧实例再启动新实例。
// 返回实例和 release 函数，使用完毕后必须调用 release。
func (m *Manager) AcquireFor(profileKey, userDataDir string, force bool) (*Browser, func(), error) {
	m.mu.Lock()

	for m.inUse {
		logrus.Info("浏览器正在使用中，等待释放...")
		m.cond.Wait()
	}

	if m.browser != nil {
		switch {
		case force:
			logrus.WithField("profile", m.profileKey).Info("强制重建浏览器实例")
			m.teardownLocked()
		case profileKey != m.profileKey:
			logrus.WithFields(logrus.Fields{
				"from": m.profileKey,
				"to":   profileKey,
			}).Info("切换账号 profile，销毁旧浏览器实例")
			m.teardownLocked()
		case !m.browser.Alive():
			logrus.Warn("浏览器句柄已失活，销毁并重建")
			m.teardownLocked()
		}
	}

	if m.browser == nil {
		logrus.WithField("profile", profileKey).Info("创建新的浏览器实例...")
		b, err := NewBrowser(m.headless,
			WithBinPath(m.binPath),
			WithUserDataDir(userDataDir),
		)
		if err != nil {
			m.mu.Unlock()
			return nil, nil, err
		}
		m.browser = b
		m.profileKey = profileKey
		logrus.Info("浏览器实例创建成功")
	}

	m.inUse = true
	b := m.browser

	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.inUse = false
		m.cond.Signal()
	}

	m.mu.Unlock()
	return b, release, nil
}

// Current 返回当前实例（可能为 nil），不改变使用状态。
// 调用方用它做"是否还活着"之类的快速探测。
func (m *Manager) Current() (*Browser, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser, m.profileKey
}

// CloseBrowser 关闭并清理浏览器实例。幂等。
func (m *Manager) CloseBrowser() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		logrus.Info("关闭浏览器实例...")
		m.teardownLocked()
	}
}

func (m *Manager) teardownLocked() {
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	m.profileKey = ""
	m.inUse = false
}
