package instagram

import (
	"context"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/configs"
)

const (
	baseURL   = "https://www.instagram.com"
	loginPath = "/accounts/login/"

	// 登录成功的唯一判定信号：两个 cookie 同时非空，且当前不在登录页。
	sessionCookieName = "sessionid"
	userIDCookieName  = "ds_user_id"
)

// consentButtonLabels cookie 同意弹窗的按钮文案（归一化后匹配）。
var consentButtonLabels = []string{
	"allow all cookies",
	"accept all",
	"alle cookies erlauben",
	"permitir todas las cookies",
	"autoriser tous les cookies",
	"permitir todos os cookies",
	"consenti tutti i cookie",
	"允许所有 cookie",
}

// LoginAction 驱动浏览器登录流程。
// 登录本身由人在浏览器里完成（含验证码/挑战），这里只负责打开登录页、
// 轮询登录信号、以及解析登录后的账号名。
type LoginAction struct {
	page *rod.Page
}

func NewLoginAction(page *rod.Page) *LoginAction {
	return &LoginAction{page: page}
}

// Open 打开登录页，关掉 cookie 同意弹窗，尽力预填账号名。
// 预填只是给人省一步，输入框不存在不算失败。
func (a *LoginAction) Open(ctx context.Context, accountHint string) error {
	page := a.page.Context(ctx)

	if err := page.Timeout(30 * time.Second).Navigate(baseURL + loginPath); err != nil {
		return &NavigationError{Target: "登录页", Err: err}
	}
	if err := page.Timeout(30 * time.Second).WaitLoad(); err != nil {
		return &NavigationError{Target: "登录页", Err: err}
	}
	time.Sleep(time.Second)

	a.dismissConsentBanner(page)

	if hint := NormalizeUsername(accountHint); hint != "" {
		a.prefillUsername(page, hint)
	}
	return nil
}

// IsLoggedIn 判断当前会话是否已登录：
// sessionid 和 ds_user_id 两个 cookie 都非空，且当前 URL 不在登录路径下。
func (a *LoginAction) IsLoggedIn(ctx context.Context) (bool, error) {
	page := a.page.Context(ctx)

	cookies, err := page.Browser().GetCookies()
	if err != nil {
		return false, err
	}

	var hasSession, hasUserID bool
	for _, c := range cookies {
		if !strings.Contains(c.Domain, "instagram") {
			continue
		}
		switch c.Name {
		case sessionCookieName:
			hasSession = c.Value != ""
		case userIDCookieName:
			hasUserID = c.Value != ""
		}
	}
	if !hasSession || !hasUserID {
		return false, nil
	}

	info, err := page.Info()
	if err != nil {
		return false, err
	}
	return !strings.Contains(info.URL, "/accounts/login"), nil
}

// WaitForLogin 轮询等待人在浏览器里完成登录，直到超时。
func (a *LoginAction) WaitForLogin(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = configs.LoginTimeout()
	}
	deadline := time.Now().Add(timeout)
	interval := configs.CookiePollInterval()

	logrus.Infof("等待登录，超时时间 %s，请在浏览器中完成登录和可能出现的验证", timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		ok, err := a.IsLoggedIn(ctx)
		if err != nil {
			// 登录过程中页面会多次跳转，探测失败属于正常波动
			logrus.Debugf("登录状态探测失败: %v", err)
			continue
		}
		if ok {
			logrus.Info("检测到登录成功")
			return nil
		}
	}

	return &TimeoutError{Op: "登录"}
}

// ResolveIdentity 解析当前登录账号的用户名。
// 优先读账号设置页的用户名输入框；拿不到时退回扫描首页里的个人主页链接。
// cookie 层面已登录但两条路都失败时返回 IdentityUnresolvedError，
// 这与"未登录"是不同的错误，不能静默归并。
func (a *LoginAction) ResolveIdentity(ctx context.Context) (string, error) {
	page := a.page.Context(ctx)

	if name := a.identityFromSettings(page); name != "" {
		return name, nil
	}

	logrus.Warn("设置页未能解析账号名，回退到扫描首页链接")
	if name := a.identityFromHomeLinks(page); name != "" {
		return name, nil
	}

	return "", &IdentityUnresolvedError{}
}

func (a *LoginAction) identityFromSettings(page *rod.Page) string {
	if err := page.Timeout(20 * time.Second).Navigate(baseURL + "/accounts/edit/"); err != nil {
		logrus.Debugf("打开账号设置页失败: %v", err)
		return ""
	}
	if err := page.Timeout(20 * time.Second).WaitLoad(); err != nil {
		return ""
	}

	el, err := page.Timeout(10 * time.Second).Element(`input[name="username"]`)
	if err != nil {
		return ""
	}
	value, err := el.Property("value")
	if err != nil {
		return ""
	}

	name := NormalizeUsername(value.String())
	if !IsValidUsername(name) {
		return ""
	}
	logrus.WithField("username", name).Info("从账号设置页解析到当前账号")
	return name
}

func (a *LoginAction) identityFromHomeLinks(page *rod.Page) string {
	if err := page.Timeout(20 * time.Second).Navigate(baseURL + "/"); err != nil {
		return ""
	}
	if err := page.Timeout(20 * time.Second).WaitLoad(); err != nil {
		return ""
	}
	time.Sleep(time.Second)

	// 侧边导航里的个人主页链接最可靠，找不到再放宽到整页
	for _, scope := range []string{`nav a[href]`, `a[href]`} {
		links, err := page.Elements(scope)
		if err != nil {
			continue
		}
		for _, link := range links {
			href, err := link.Attribute("href")
			if err != nil || href == nil {
				continue
			}
			if candidate := CandidateFromHref(*href); candidate != "" {
				logrus.WithField("username", candidate).Info("从首页链接解析到当前账号")
				return candidate
			}
		}
	}
	return ""
}

// dismissConsentBanner 关闭 cookie 同意弹窗。弹窗不一定出现，尽力而为。
func (a *LoginAction) dismissConsentBanner(page *rod.Page) {
	buttons, err := page.Elements(`button, [role="button"]`)
	if err != nil {
		return
	}

	for _, btn := range buttons {
		text, err := btn.Text()
		if err != nil {
			continue
		}
		normalized := NormalizeLabel(text)
		for _, label := range consentButtonLabels {
			if normalized == label {
				logrus.WithField("label", TruncateLabel(text, 40)).Info("关闭 cookie 同意弹窗")
				if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
					logrus.Debugf("点击同意按钮失败: %v", err)
				}
				time.Sleep(500 * time.Millisecond)
				return
			}
		}
	}
}

func (a *LoginAction) prefillUsername(page *rod.Page, hint string) {
	el, err := page.Timeout(5 * time.Second).Element(`input[name="username"]`)
	if err != nil {
		logrus.Debug("登录页没有找到用户名输入框，跳过预填")
		return
	}
	if err := el.Input(hint); err != nil {
		logrus.Debugf("预填用户名失败: %v", err)
	}
}
