package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type browserConfig struct {
	binPath     string
	userDataDir string
}

type Option func(*browserConfig)

func WithBinPath(binPath string) Option {
	return func(c *browserConfig) {
		c.binPath = binPath
	}
}

// WithUserDataDir 指定浏览器实例使用的用户数据目录。
// 每个账号一个目录，登录态跨运行保留，账号之间互不共享。
func WithUserDataDir(dir string) Option {
	return func(c *browserConfig) {
		c.userDataDir = dir
	}
}

// Browser 一个已启动的浏览器实例及其主页面。
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
}

// NewBrowser 启动浏览器实例。
func NewBrowser(headless bool, options ...Option) (*Browser, error) {
	cfg := &browserConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	l := launcher.New().
		Headless(headless).
		Set("disable-notifications").
		Set("lang", "en-US")

	if cfg.binPath != "" {
		l = l.Bin(cfg.binPath)
	}
	if cfg.userDataDir != "" {
		l = l.UserDataDir(cfg.userDataDir)
		logrus.WithField("user_data_dir", cfg.userDataDir).Debug("使用持久化用户数据目录")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errors.Wrap(err, "launch browser")
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, errors.Wrap(err, "connect browser")
	}

	return &Browser{rod: b, launcher: l}, nil
}

// Page 返回该实例的主页面，首次调用时创建（带 stealth 补丁）。
func (b *Browser) Page() (*rod.Page, error) {
	if b.page != nil {
		return b.page, nil
	}

	page, err := stealth.Page(b.rod)
	if err != nil {
		return nil, errors.Wrap(err, "new stealth page")
	}
	b.page = page
	return page, nil
}

// Alive 探测浏览器句柄是否还可用。
// 浏览器被用户从外部关掉后，后续操作必须把它当成未登录处理，而不是崩溃。
func (b *Browser) Alive() bool {
	if b == nil || b.rod == nil {
		return false
	}
	_, err := b.rod.Pages()
	return err == nil
}

// Close 关闭浏览器实例。尽力而为，失败只记日志，不允许阻塞退出流程。
func (b *Browser) Close() {
	if b == nil {
		return
	}
	if b.rod != nil {
		if err := b.rod.Close(); err != nil {
			logrus.Debugf("关闭浏览器失败: %v", err)
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	b.page = nil
	b.rod = nil
}
