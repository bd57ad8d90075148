// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq" // "postgres" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/wordimpostor/models"
)

// Drivers accepted by NewGormPostgreSQL.
const (
	DriverPgx = "pgx"      // gorm's bundled pgx stdlib driver
	DriverPQ  = "postgres" // github.com/lib/pq
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// DSN builds a key/value connection string.
func DSN(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(driver, dsn string) (*GormPostgreSQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", DriverPgx:
		dialector = postgres.Open(dsn)
	case DriverPQ:
		dialector = postgres.New(postgres.Config{DriverName: DriverPQ, DSN: dsn})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,         // 禁用彩色打印
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormRoundRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveRoundRecord 保存对局记录
func (p *GormPostgreSQL) SaveRoundRecord(ctx context.Context, record *models.GormRoundRecord) error {
	if err := validate(record); err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(record).Error
}

// ListRoundRecords returns the newest records for a room, newest first.
func (p *GormPostgreSQL) ListRoundRecords(ctx context.Context, roomCode string, limit int) ([]models.GormRoundRecord, error) {
	var records []models.GormRoundRecord
	q := p.db.WithContext(ctx).Where("room_code = ?", roomCode).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}
	return records, nil
}

// CountRoundsSince counts rounds started at or after since.
func (p *GormPostgreSQL) CountRoundsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := p.db.WithContext(ctx).Model(&models.GormRoundRecord{}).Where("started_at >= ?", since).Count(&n).Error
	return n, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
