package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/service"
	"go.uber.org/zap"
)

type fakeLister struct {
	websites []models.Website
}

func (f *fakeLister) FindAllWebsites(ctx context.Context) ([]models.Website, error) {
	return f.websites, nil
}

type fakeChecker struct {
	inflight    atomic.Int32
	maxInflight atomic.Int32
	panicOn     string
}

func (f *fakeChecker) Check(ctx context.Context, rawURL string) service.CheckResult {
	current := f.inflight.Add(1)
	defer f.inflight.Add(-1)

	for {
		seen := f.maxInflight.Load()
		if current <= seen || f.maxInflight.CompareAndSwap(seen, current) {
			break
		}
	}

	if rawURL == f.panicOn {
		panic("checker exploded")
	}

	time.Sleep(10 * time.Millisecond)
	return service.CheckResult{Status: models.StatusUp, StatusCode: 200}
}

type fakeApplier struct {
	mu      sync.Mutex
	applied []string
}

func (f *fakeApplier) ApplyCheckResult(ctx context.Context, websiteID string, result service.CheckResult, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, websiteID)
	return nil
}

func (f *fakeApplier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

type fakeWatchdog struct {
	calls atomic.Int32
}

func (f *fakeWatchdog) CheckAgents(ctx context.Context, now time.Time) error {
	f.calls.Add(1)
	return nil
}

func makeWebsites(n int) []models.Website {
	websites := make([]models.Website, 0, n)
	for i := 0; i < n; i++ {
		websites = append(websites, models.Website{
			ID:  fmt.Sprintf("site-%02d", i),
			URL: fmt.Sprintf("https://example-%02d.com", i),
		})
	}
	return websites
}

func TestRunOnceConcurrencyCap(t *testing.T) {
	lister := &fakeLister{websites: makeWebsites(25)}
	checker := &fakeChecker{}
	applier := &fakeApplier{}
	watchdog := &fakeWatchdog{}

	s := NewProbeScheduler(zap.NewNop(), lister, checker, applier, watchdog)
	s.RunOnce(context.Background(), time.Now())

	if applier.count() != 25 {
		t.Fatalf("应用结果次数 = %d, 期望 25", applier.count())
	}
	if seen := checker.maxInflight.Load(); seen > batchSize {
		t.Fatalf("最大并发 = %d, 超过上限 %d", seen, batchSize)
	}
	if watchdog.calls.Load() != 1 {
		t.Fatalf("巡检次数 = %d, 期望 1", watchdog.calls.Load())
	}
}

func TestRunOncePanicDoesNotAbortBatch(t *testing.T) {
	lister := &fakeLister{websites: makeWebsites(12)}
	checker := &fakeChecker{panicOn: "https://example-03.com"}
	applier := &fakeApplier{}
	watchdog := &fakeWatchdog{}

	s := NewProbeScheduler(zap.NewNop(), lister, checker, applier, watchdog)
	s.RunOnce(context.Background(), time.Now())

	// panic 的那一个不产生结果，其余 11 个正常完成
	if applier.count() != 11 {
		t.Fatalf("应用结果次数 = %d, 期望 11", applier.count())
	}
	// 巡检在批次之后仍然执行
	if watchdog.calls.Load() != 1 {
		t.Fatalf("巡检次数 = %d, 期望 1", watchdog.calls.Load())
	}
}

func TestRunOnceNoWebsitesStillChecksAgents(t *testing.T) {
	s := NewProbeScheduler(zap.NewNop(), &fakeLister{}, &fakeChecker{}, &fakeApplier{}, &fakeWatchdog{})
	watchdog := &fakeWatchdog{}
	s.watchdog = watchdog

	s.RunOnce(context.Background(), time.Now())
	if watchdog.calls.Load() != 1 {
		t.Fatalf("巡检次数 = %d, 期望 1", watchdog.calls.Load())
	}
}
