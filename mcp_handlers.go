package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/instagram"
)

// MCP 工具处理函数

type MCPLoginArgs struct {
	Account         string `json:"account,omitempty" jsonschema:"账号名提示，可为空；用于选择 profile 和预填登录表单"`
	TimeoutSeconds  int    `json:"timeout_seconds,omitempty" jsonschema:"等待人工完成登录的秒数，默认 300"`
	ForceNewProfile bool   `json:"force_new_profile,omitempty" jsonschema:"是否强制重建浏览器会话"`
}

type MCPUnfollowArgs struct {
	Usernames    []string `json:"usernames" jsonschema:"要取关的用户名列表"`
	DelaySeconds float64  `json:"delay_seconds,omitempty" jsonschema:"两次取关之间的间隔秒数，最低 0.5"`
}

type MCPEmptyArgs struct{}

func (s *AppServer) registerMCPTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "instagram_login",
		Description: "打开浏览器登录 Instagram，等待人工完成登录后返回当前账号名",
	}, s.handleMCPLogin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "instagram_login_status",
		Description: "检查当前是否已登录以及登录的账号名",
	}, s.handleMCPLoginStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "instagram_scan_not_following_back",
		Description: "收集 following 和 followers 两个列表，返回没有回关的账号",
	}, s.handleMCPScan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "instagram_unfollow",
		Description: "按列表逐个取关，返回 removed/skipped/failed 三个结果列表",
	}, s.handleMCPUnfollow)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "instagram_logout",
		Description: "关闭当前浏览器会话",
	}, s.handleMCPLogout)
}

func (s *AppServer) handleMCPLogin(ctx context.Context, req *mcp.CallToolRequest, args MCPLoginArgs) (*mcp.CallToolResult, any, error) {
	logrus.Info("MCP: 登录")

	username, err := s.service.Login(ctx, args.Account,
		time.Duration(args.TimeoutSeconds)*time.Second, args.ForceNewProfile)
	if err != nil {
		return mcpError("登录失败: " + err.Error()), nil, nil
	}

	return mcpText(fmt.Sprintf("登录成功，当前账号: %s", username)), nil, nil
}

func (s *AppServer) handleMCPLoginStatus(ctx context.Context, req *mcp.CallToolRequest, args MCPEmptyArgs) (*mcp.CallToolResult, any, error) {
	logrus.Info("MCP: 检查登录状态")

	status := s.service.Status(ctx)
	if !status.IsLoggedIn {
		return mcpText("当前未登录"), nil, nil
	}
	return mcpText("已登录，当前账号: " + status.Username), nil, nil
}

func (s *AppServer) handleMCPScan(ctx context.Context, req *mcp.CallToolRequest, args MCPEmptyArgs) (*mcp.CallToolResult, any, error) {
	logrus.Info("MCP: 扫描未回关账号")

	result, err := s.service.ScanNotFollowingBack(ctx, func(kind instagram.RelationKind, count int) {
		logrus.WithFields(logrus.Fields{"relation": kind, "count": count}).Info("扫描进度")
	})
	if err != nil {
		return mcpError("扫描失败: " + err.Error()), nil, nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcpError("序列化结果失败: " + err.Error()), nil, nil
	}
	return mcpText(string(data)), nil, nil
}

func (s *AppServer) handleMCPUnfollow(ctx context.Context, req *mcp.CallToolRequest, args MCPUnfollowArgs) (*mcp.CallToolResult, any, error) {
	logrus.Infof("MCP: 批量取关，共 %d 个", len(args.Usernames))

	if len(args.Usernames) == 0 {
		return mcpError("usernames 不能为空"), nil, nil
	}

	report, err := s.service.UnfollowAll(ctx, args.Usernames,
		time.Duration(args.DelaySeconds*float64(time.Second)),
		func(index, total int, username string, success bool, message string) {
			logrus.WithFields(logrus.Fields{
				"index":    index,
				"total":    total,
				"username": username,
				"success":  success,
				"message":  message,
			}).Info("取关进度")
		})
	if err != nil {
		return mcpError("批量取关中断: " + err.Error()), nil, nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcpError("序列化结果失败: " + err.Error()), nil, nil
	}
	return mcpText(string(data)), nil, nil
}

func (s *AppServer) handleMCPLogout(ctx context.Context, req *mcp.CallToolRequest, args MCPEmptyArgs) (*mcp.CallToolResult, any, error) {
	logrus.Info("MCP: 登出")

	s.service.Logout()
	return mcpText("已关闭浏览器会话"), nil, nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func mcpError(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
