package instagram

import "fmt"

// 错误分类：所有向上传播的错误都带有可执行的补救提示。

// AuthenticationError 未登录或会话已失效。
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("未登录或会话已失效: %s，请重新登录", e.Reason)
}

// BrowserUnavailableError 浏览器启动或连接失败。
type BrowserUnavailableError struct {
	Err error
}

func (e *BrowserUnavailableError) Error() string {
	return fmt.Sprintf("无法启动浏览器自动化: %v，请确认已安装并更新 Chrome/Chromium，或通过 -bin 指定浏览器路径", e.Err)
}

func (e *BrowserUnavailableError) Unwrap() error { return e.Err }

// TimeoutError 登录或有界等待超时。
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s 超时，请在浏览器中完成登录/人机验证后重试", e.Op)
}

// NavigationError 预期的页面或元素始终没有出现。
type NavigationError struct {
	Target string
	Err    error
}

func (e *NavigationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("页面加载失败: %s (%v)", e.Target, e.Err)
	}
	return fmt.Sprintf("页面加载失败: %s", e.Target)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// ActionBlockedError 平台提示操作被限制（限流）。
type ActionBlockedError struct{}

func (e *ActionBlockedError) Error() string {
	return "操作被 Instagram 暂时限制，请稍后再试，并把间隔调大到 3-5 秒"
}

// IdentityUnresolvedError cookie 层面登录成功，但无法解析当前账号名。
// 与登录失败是两种情况，调用方不能混为一谈。
type IdentityUnresolvedError struct{}

func (e *IdentityUnresolvedError) Error() string {
	return "登录成功但无法确认当前账号名，请等待 20-30 秒后重试"
}

// UnknownUIStateError 控件文案无法识别，通常意味着站点文案或标记结构发生了变化。
type UnknownUIStateError struct {
	RawText string
}

func (e *UnknownUIStateError) Error() string {
	return fmt.Sprintf("无法识别的控件文案: %q", e.RawText)
}
