// Package profiles 管理每个账号独立的浏览器用户数据目录。
// 每个账号一个持久化 profile，cookies 和本地状态跨运行保留，账号之间互不共享。
package profiles

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultKey 在还不知道账号名时使用的 profile key。
const DefaultKey = "default"

// baseDir 可在测试中覆盖；为空时使用用户配置目录。
var baseDir string

// SetBaseDir 覆盖 profile 根目录（测试用）。
func SetBaseDir(dir string) { baseDir = dir }

// KeyFor 把账号名清洗成安全的 profile key。
// 只保留小写字母、数字、点、下划线、连字符，其余字符直接丢弃；
// 清洗后为空则回退到 DefaultKey。
func KeyFor(account string) string {
	account = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(account), "@")))

	var b strings.Builder
	for _, r := range account {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	key := b.String()
	if key == "" {
		return DefaultKey
	}
	return key
}

// Dir 返回指定 key 的 profile 目录，不存在时创建。
func Dir(key string) (string, error) {
	if key == "" {
		key = DefaultKey
	}

	root, err := rootDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(root, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Reset 删除指定 key 的 profile 目录。目录不存在不算错误。
func Reset(key string) error {
	root, err := rootDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(root, key)
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	logrus.WithField("profile", key).Info("已删除 profile 目录")
	return nil
}

// ResetAll 删除所有 profile 目录。
func ResetAll() error {
	root, err := rootDir()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, entry.Name())); err != nil {
			return err
		}
	}
	logrus.Info("已删除全部 profile 目录")
	return nil
}

func rootDir() (string, error) {
	if baseDir != "" {
		return filepath.Join(baseDir, "profiles"), nil
	}

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		// 无法定位用户配置目录时退回临时目录，profile 仍然可用，只是不保证持久。
		return filepath.Join(os.TempDir(), "instagram-unfollow-mcp", "profiles"), nil
	}
	return filepath.Join(cfgDir, "instagram-unfollow-mcp", "profiles"), nil
}
