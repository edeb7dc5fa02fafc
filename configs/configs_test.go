package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetConvergenceBudgets(t *testing.T) {
	defer SetConvergenceBudgets(12, 4, 600)

	SetConvergenceBudgets(20, 6, 900)
	assert.Equal(t, 20, NoGrowthBudget())
	assert.Equal(t, 6, NoMovementBudget())
	assert.Equal(t, 900, MaxScrollRounds())

	// 非法值不生效，保留上一次的设置
	SetConvergenceBudgets(0, -1, 0)
	assert.Equal(t, 20, NoGrowthBudget())
	assert.Equal(t, 6, NoMovementBudget())
	assert.Equal(t, 900, MaxScrollRounds())
}

func TestSetRecoveryRounds(t *testing.T) {
	defer SetRecoveryRounds(150)

	SetRecoveryRounds(80)
	assert.Equal(t, 80, RecoveryRounds())

	SetRecoveryRounds(0)
	assert.Equal(t, 80, RecoveryRounds())
}

func TestSetProgressThrottle(t *testing.T) {
	defer SetProgressThrottle(50, 5)

	SetProgressThrottle(30, 10)
	assert.Equal(t, 30, ProgressKnee())
	assert.Equal(t, 10, ProgressDelta())

	SetProgressThrottle(-1, 0)
	assert.Equal(t, 30, ProgressKnee())
	assert.Equal(t, 10, ProgressDelta())
}

func TestSetActionDelayFloor(t *testing.T) {
	defer SetActionDelay(2 * time.Second)

	SetActionDelay(3 * time.Second)
	assert.Equal(t, 3*time.Second, ActionDelay())

	// 低于下限时取下限
	SetActionDelay(100 * time.Millisecond)
	assert.Equal(t, MinActionDelay(), ActionDelay())
}
