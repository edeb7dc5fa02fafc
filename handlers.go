package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/igtools/instagram-unfollow-mcp/instagram"
)

// HTTP 处理函数

type LoginRequest struct {
	Account         string `json:"account"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	ForceNewProfile bool   `json:"force_new_profile"`
}

type UnfollowRequest struct {
	Usernames    []string `json:"usernames" binding:"required"`
	DelaySeconds float64  `json:"delay_seconds"`
}

func (s *AppServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *AppServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	username, err := s.service.Login(c.Request.Context(), req.Account,
		time.Duration(req.TimeoutSeconds)*time.Second, req.ForceNewProfile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username})
}

func (s *AppServer) handleLoginStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Status(c.Request.Context()))
}

func (s *AppServer) handleScan(c *gin.Context) {
	result, err := s.service.ScanNotFollowingBack(c.Request.Context(),
		func(kind instagram.RelationKind, count int) {
			logrus.WithFields(logrus.Fields{"relation": kind, "count": count}).Info("扫描进度")
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *AppServer) handleUnfollow(c *gin.Context) {
	var req UnfollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.service.UnfollowAll(c.Request.Context(), req.Usernames,
		time.Duration(req.DelaySeconds*float64(time.Second)),
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *AppServer) handleLogout(c *gin.Context) {
	s.service.Logout()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
