package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"普通账号名", "someone", "someone"},
		{"去掉 @ 和空白", " @Some.User ", "some.user"},
		{"转小写", "MyAccount", "myaccount"},
		{"丢弃非法字符", "user name!#", "username"},
		{"保留下划线连字符", "a_b-c", "a_b-c"},
		{"空输入回退默认", "", DefaultKey},
		{"全非法字符回退默认", "@!#", DefaultKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KeyFor(tt.input))
		})
	}
}

func TestKeyForIdempotent(t *testing.T) {
	for _, input := range []string{"@User.Name", "a b c", "normal"} {
		once := KeyFor(input)
		assert.Equal(t, once, KeyFor(once))
	}
}

func TestDirCreatesAndReset(t *testing.T) {
	SetBaseDir(t.TempDir())
	defer SetBaseDir("")

	dir, err := Dir("someone")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "someone", filepath.Base(dir))

	// 不同账号互不共享目录
	other, err := Dir("another")
	require.NoError(t, err)
	assert.NotEqual(t, dir, other)

	require.NoError(t, Reset("someone"))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Reset 幂等
	require.NoError(t, Reset("someone"))
}

func TestResetAll(t *testing.T) {
	SetBaseDir(t.TempDir())
	defer SetBaseDir("")

	first, err := Dir("one")
	require.NoError(t, err)
	second, err := Dir("two")
	require.NoError(t, err)

	require.NoError(t, ResetAll())

	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(second)
	assert.True(t, os.IsNotExist(err))
}
