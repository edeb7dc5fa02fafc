package main

import (
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/configs"
)

func main() {
	var (
		headless     bool
		binPath      string // 浏览器二进制文件路径
		port         string
		stdioMode    bool // 是否使用 STDIO 模式
		loginTimeout int
		delaySeconds float64
	)
	flag.BoolVar(&headless, "headless", false, "是否无头模式，默认 false（登录需要人工在浏览器里操作）")
	flag.StringVar(&binPath, "bin", "", "浏览器二进制文件路径")
	flag.StringVar(&port, "port", ":18070", "端口")
	flag.BoolVar(&stdioMode, "stdio", false, "使用 STDIO 模式（用于 MCP 客户端）")
	flag.IntVar(&loginTimeout, "login-timeout", 300, "等待人工完成登录的秒数")
	flag.Float64Var(&delaySeconds, "delay", 2.0, "两次取关之间的默认间隔秒数，最低 0.5")
	flag.Parse()

	if len(binPath) == 0 {
		binPath = os.Getenv("ROD_BROWSER_BIN")
	}

	configs.InitHeadless(headless)
	configs.SetBinPath(binPath)
	configs.SetLoginTimeout(time.Duration(loginTimeout) * time.Second)
	configs.SetActionDelay(time.Duration(delaySeconds * float64(time.Second)))

	// 初始化服务
	instagramService := NewInstagramService()
	defer instagramService.Logout()

	// 创建应用服务器
	appServer := NewAppServer(instagramService)

	// 根据模式选择启动方式
	if stdioMode {
		// STDIO 模式：直接运行 MCP 服务器，不启动 HTTP 服务
		logrus.Info("启动 STDIO 模式 MCP 服务器")
		if err := appServer.StartSTDIO(); err != nil {
			logrus.Fatalf("failed to run STDIO server: %v", err)
		}
	} else {
		// HTTP 模式：启动 HTTP 服务器
		if err := appServer.Start(port); err != nil {
			logrus.Fatalf("failed to run server: %v", err)
		}
	}
}
