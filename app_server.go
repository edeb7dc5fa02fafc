package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// AppServer 应用服务器：HTTP 模式走 gin，STDIO 模式走 MCP。
type AppServer struct {
	service *InstagramService
}

func NewAppServer(service *InstagramService) *AppServer {
	return &AppServer{service: service}
}

// Start 启动 HTTP 服务。
func (s *AppServer) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	{
		api.POST("/login", s.handleLogin)
		api.GET("/login/status", s.handleLoginStatus)
		api.POST("/scan", s.handleScan)
		api.POST("/unfollow", s.handleUnfollow)
		api.POST("/logout", s.handleLogout)
	}

	logrus.Infof("HTTP 服务启动: %s", addr)
	return r.Run(addr)
}

// StartSTDIO 启动 STDIO 模式 MCP 服务器（用于 MCP 客户端）。
func (s *AppServer) StartSTDIO() error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "instagram-unfollow-mcp",
		Version: "1.0.0",
	}, nil)

	s.registerMCPTools(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}
