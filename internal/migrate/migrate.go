package migrate

import (
	"errors"
	"fmt"

	"github.com/dushixiang/swallow/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSchemaNotReady 表结构未初始化的显式信号
// 调用方应先执行 Migrate 再重试，而不是匹配底层驱动的错误文本
var ErrSchemaNotReady = errors.New("数据库表结构未初始化")

var tables = []interface{}{
	&models.Website{},
	&models.StatusEvent{},
	&models.Agent{},
	&models.MetricSnapshot{},
	&models.Property{},
}

// Migrate 幂等建表，启动时执行
func Migrate(logger *zap.Logger, db *gorm.DB) error {
	logger.Info("开始执行数据库迁移")

	if err := db.AutoMigrate(tables...); err != nil {
		logger.Error("数据库迁移失败", zap.Error(err))
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// Verify 校验全部表已就绪，缺表时返回 ErrSchemaNotReady
func Verify(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, table := range tables {
		if !migrator.HasTable(table) {
			return fmt.Errorf("%w: 缺少表 %T", ErrSchemaNotReady, table)
		}
	}
	return nil
}
