package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dushixiang/swallow/internal/migrate"
	"github.com/dushixiang/swallow/internal/models"
	"github.com/dushixiang/swallow/internal/repo"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newTestDB 为每个测试创建独立的内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := migrate.Migrate(zap.NewNop(), db); err != nil {
		t.Fatalf("初始化表结构失败: %v", err)
	}
	return db
}

// fakeSender 记录全部通知内容
type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSender) Send(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestWebsite(t *testing.T, db *gorm.DB) *models.Website {
	t.Helper()
	website := &models.Website{Name: "测试站点", URL: "https://example.com"}
	if err := repo.NewWebsiteRepo(db).Create(context.Background(), website); err != nil {
		t.Fatalf("创建网站失败: %v", err)
	}
	return website
}

func TestApplyCheckResultFirstFailureNotifies(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	service := NewStatusService(zap.NewNop(), db, sender)
	website := newTestWebsite(t, db)

	now := time.Now()
	result := CheckResult{Status: models.StatusDown, StatusCode: 502, ResponseTime: 120}
	if err := service.ApplyCheckResult(context.Background(), website.ID, result, now); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}

	if sender.count() != 1 {
		t.Fatalf("通知次数 = %d, 期望 1", sender.count())
	}

	saved, err := repo.NewWebsiteRepo(db).FindById(context.Background(), website.ID)
	if err != nil {
		t.Fatalf("查询网站失败: %v", err)
	}
	if saved.LastStatus != models.StatusDown {
		t.Errorf("lastStatus = %s, 期望 down", saved.LastStatus)
	}
	if saved.LastStatusCode != 502 {
		t.Errorf("lastStatusCode = %d, 期望 502", saved.LastStatusCode)
	}
	if saved.LastNotifiedDownAt == nil || *saved.LastNotifiedDownAt != now.UnixMilli() {
		t.Errorf("lastNotifiedDownAt = %v, 期望 %d", saved.LastNotifiedDownAt, now.UnixMilli())
	}

	events, err := repo.NewStatusEventRepo(db).FindByWebsiteSince(context.Background(), website.ID, 0)
	if err != nil {
		t.Fatalf("查询事件失败: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("事件数 = %d, 期望 1", len(events))
	}
}

func TestApplyCheckResultCooldownSuppressesRepeat(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	service := NewStatusService(zap.NewNop(), db, sender)
	website := newTestWebsite(t, db)

	base := time.Now()
	down := CheckResult{Status: models.StatusDown, StatusCode: 500}

	// 首次故障：通知
	if err := service.ApplyCheckResult(context.Background(), website.ID, down, base); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}
	// 冷却期内持续故障：不再通知，但事件仍然追加
	for i := 1; i <= 3; i++ {
		at := base.Add(time.Duration(i) * 10 * time.Minute)
		if err := service.ApplyCheckResult(context.Background(), website.ID, down, at); err != nil {
			t.Fatalf("应用检测结果失败: %v", err)
		}
	}
	if sender.count() != 1 {
		t.Fatalf("冷却期内通知次数 = %d, 期望 1", sender.count())
	}

	events, _ := repo.NewStatusEventRepo(db).FindByWebsiteSince(context.Background(), website.ID, 0)
	if len(events) != 4 {
		t.Fatalf("事件数 = %d, 期望 4", len(events))
	}

	// 超过冷却期：再次通知
	if err := service.ApplyCheckResult(context.Background(), website.ID, down, base.Add(NotifyCooldown+time.Second)); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}
	if sender.count() != 2 {
		t.Fatalf("超过冷却期后通知次数 = %d, 期望 2", sender.count())
	}
}

func TestApplyCheckResultRecoveryClearsNotifiedAt(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	service := NewStatusService(zap.NewNop(), db, sender)
	website := newTestWebsite(t, db)

	base := time.Now()
	down := CheckResult{Status: models.StatusTimeout}
	up := CheckResult{Status: models.StatusUp, StatusCode: 200, ResponseTime: 80}

	if err := service.ApplyCheckResult(context.Background(), website.ID, down, base); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}
	if err := service.ApplyCheckResult(context.Background(), website.ID, up, base.Add(time.Minute)); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}

	// 故障通知 + 恢复通知
	if sender.count() != 2 {
		t.Fatalf("通知次数 = %d, 期望 2", sender.count())
	}

	saved, _ := repo.NewWebsiteRepo(db).FindById(context.Background(), website.ID)
	if saved.LastStatus != models.StatusUp {
		t.Errorf("lastStatus = %s, 期望 up", saved.LastStatus)
	}
	if saved.LastNotifiedDownAt != nil {
		t.Errorf("恢复后 lastNotifiedDownAt = %v, 期望 nil", saved.LastNotifiedDownAt)
	}

	// 恢复后再次故障属于新的首次故障，立即通知
	if err := service.ApplyCheckResult(context.Background(), website.ID, down, base.Add(2*time.Minute)); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}
	if sender.count() != 3 {
		t.Fatalf("通知次数 = %d, 期望 3", sender.count())
	}
}

func TestApplyCheckResultPendingToUpSilent(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	service := NewStatusService(zap.NewNop(), db, sender)
	website := newTestWebsite(t, db)

	up := CheckResult{Status: models.StatusUp, StatusCode: 200}
	if err := service.ApplyCheckResult(context.Background(), website.ID, up, time.Now()); err != nil {
		t.Fatalf("应用检测结果失败: %v", err)
	}
	if sender.count() != 0 {
		t.Fatalf("首次检测正常不应通知, 实际通知 %d 次", sender.count())
	}
}
