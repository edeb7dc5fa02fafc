package instagram

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownUIStateError(t *testing.T) {
	err := &UnknownUIStateError{RawText: "Mystery Button"}
	assert.Contains(t, err.Error(), "无法识别的控件文案")
	assert.Contains(t, err.Error(), "Mystery Button")

	// 经过包装后仍然可以按类型识别出来
	wrapped := pkgerrors.Wrap(err, "读取按钮状态")
	var target *UnknownUIStateError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "Mystery Button", target.RawText)
}

func TestNavigationErrorUnwrap(t *testing.T) {
	cause := pkgerrors.New("element not found")
	err := &NavigationError{Target: "关系弹窗", Err: cause}

	assert.Contains(t, err.Error(), "关系弹窗")
	assert.ErrorIs(t, err, cause)

	// 没有底层错误时信息仍然完整
	bare := &NavigationError{Target: "操作按钮"}
	assert.Contains(t, bare.Error(), "操作按钮")
}

func TestBrowserUnavailableErrorUnwrap(t *testing.T) {
	cause := pkgerrors.New("launch failed")
	err := &BrowserUnavailableError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "-bin")
}

func TestActionBlockedErrorRemediation(t *testing.T) {
	err := &ActionBlockedError{}
	assert.Contains(t, err.Error(), "限制")
	assert.Contains(t, err.Error(), "间隔")
}
