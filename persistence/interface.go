// persistence/interface.go
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/wordimpostor/models"
)

// Database 对局历史存储. Only finished facts about rounds are stored; live
// room state never leaves memory.
type Database interface {
	SaveRoundRecord(ctx context.Context, record *models.GormRoundRecord) error
	ListRoundRecords(ctx context.Context, roomCode string, limit int) ([]models.GormRoundRecord, error)
	CountRoundsSince(ctx context.Context, since time.Time) (int64, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrInvalidRecord  = fmt.Errorf("invalid round record")
)

func validate(record *models.GormRoundRecord) error {
	if record == nil || record.RoomCode == "" || record.Mode == "" || record.Players <= 0 {
		return ErrInvalidRecord
	}
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}
	return nil
}
