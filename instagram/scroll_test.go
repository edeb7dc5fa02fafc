package instagram

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface 模拟一个懒加载列表：每次有效滚动多渲染一批链接，
// 渲染完之后既不增长也滚不动。
type fakeSurface struct {
	names    []string
	revealed int
	perBatch int
	top      float64
}

func newFakeSurface(total, perBatch int) *fakeSurface {
	names := make([]string, total)
	for i := range names {
		names[i] = fmt.Sprintf("user%06d", i)
	}
	return &fakeSurface{names: names, revealed: perBatch, perBatch: perBatch}
}

func (s *fakeSurface) ExtractUsernames() ([]string, error) {
	return s.names[:s.revealed], nil
}

func (s *fakeSurface) Metrics() (float64, float64, error) {
	return s.top, float64(s.revealed * 100), nil
}

func (s *fakeSurface) Scroll(technique int) error {
	if s.revealed < len(s.names) {
		s.revealed += s.perBatch
		if s.revealed > len(s.names) {
			s.revealed = len(s.names)
		}
		s.top += 100
	}
	return nil
}

func (s *fakeSurface) TechniqueCount() int { return 4 }

func newTestLoop(surface scrollSurface, expected int64) *collectLoop {
	return &collectLoop{
		surface:          surface,
		expected:         expected,
		noGrowthBudget:   5,
		noMovementBudget: 3,
		maxRounds:        200,
	}
}

func TestCollectLoopConvergesWithoutExpectedTotal(t *testing.T) {
	// 60 个链接，渲染完就停：没有预期总数也必须正常收敛，拿到正好 60 个
	surface := newFakeSurface(60, 20)
	collected := make(map[string]struct{})

	err := newTestLoop(surface, 0).run(context.Background(), collected)
	require.NoError(t, err)
	assert.Len(t, collected, 60)
}

func TestCollectLoopStopsEarlyAtExpectedTotal(t *testing.T) {
	surface := newFakeSurface(500, 50)
	collected := make(map[string]struct{})

	err := newTestLoop(surface, 500).run(context.Background(), collected)
	require.NoError(t, err)
	assert.Len(t, collected, 500)
}

func TestCollectLoopRecoverySupplementsPlateau(t *testing.T) {
	// 弹窗里只渲染得出 480 个，预期 500：触发兜底，兜底面补上剩下的 20 个
	overlay := newFakeSurface(480, 60)
	collected := make(map[string]struct{})

	err := newTestLoop(overlay, 500).run(context.Background(), collected)
	require.NoError(t, err)
	assert.Len(t, collected, 480)
	require.True(t, needRecovery(500, len(collected)))

	// 兜底路径：整页面上能看到全部 500 个
	fullPage := newFakeSurface(500, 60)
	err = newTestLoop(fullPage, 500).run(context.Background(), collected)
	require.NoError(t, err)
	assert.Len(t, collected, 500)
	assert.False(t, needRecovery(500, len(collected)))
}

func TestNeedRecovery(t *testing.T) {
	tests := []struct {
		name      string
		expected  int64
		collected int
		want      bool
	}{
		{"不知道预期总数时不兜底", 0, 480, false},
		{"没收集够要兜底", 500, 480, true},
		{"刚好收集够不兜底", 500, 500, false},
		{"收集超过预期不兜底", 500, 520, false},
		{"预期非零但一个没收到也兜底", 500, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, needRecovery(tt.expected, tt.collected))
		})
	}
}

func TestCollectLoopHardRoundCap(t *testing.T) {
	// 永远在"增长"的病态列表也必须在硬上限处停下
	surface := newFakeSurface(1000000, 1)
	collected := make(map[string]struct{})

	loop := newTestLoop(surface, 0)
	loop.maxRounds = 10
	err := loop.run(context.Background(), collected)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(collected), 11)
}

func TestCollectLoopFiltersInvalidCandidates(t *testing.T) {
	surface := &staticSurface{hrefs: []string{
		"/real_user/",
		"/explore/",
		"/p/abc123/",
		"/Another.User/",
		"/real_user/", // 重复
	}}
	collected := make(map[string]struct{})

	err := newTestLoop(surface, 0).run(context.Background(), collected)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"real_user":    {},
		"another.user": {},
	}, collected)
}

func TestCollectLoopExcludesOwnAccount(t *testing.T) {
	// 弹窗标签页和导航里都有指向本账号的链接，不能混进本账号的关系集合
	surface := &staticSurface{
		hrefs: []string{
			"/myself/followers/",
			"/myself/",
			"/someone/",
			"/another.user/",
		},
		exclude: "myself",
	}
	collected := make(map[string]struct{})

	err := newTestLoop(surface, 0).run(context.Background(), collected)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"someone":      {},
		"another.user": {},
	}, collected)
}

func TestCollectLoopReportsGrowth(t *testing.T) {
	surface := newFakeSurface(40, 10)
	collected := make(map[string]struct{})

	var reports []int
	loop := newTestLoop(surface, 0)
	loop.onGrowth = func(count int) { reports = append(reports, count) }

	err := loop.run(context.Background(), collected)
	require.NoError(t, err)

	require.NotEmpty(t, reports)
	// 每次上报的数量必须单调不减，最后一次等于最终数量
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i], reports[i-1])
	}
	assert.Equal(t, 40, reports[len(reports)-1])
}

// staticSurface 不滚动、内容固定的区域。
type staticSurface struct {
	hrefs   []string
	exclude string
}

func (s *staticSurface) ExtractUsernames() ([]string, error) {
	return candidatesFromHrefs(s.hrefs, s.exclude), nil
}

func (s *staticSurface) Metrics() (float64, float64, error) { return 0, 100, nil }

func (s *staticSurface) Scroll(technique int) error { return nil }

func (s *staticSurface) TechniqueCount() int { return 2 }
