package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wfunc/wordimpostor/models"
)

// Memory keeps round records in process. It is used when no database is
// configured; records are lost on restart.
type Memory struct {
	records []models.GormRoundRecord
	nextID  uint
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) SaveRoundRecord(ctx context.Context, record *models.GormRoundRecord) error {
	if err := validate(record); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	record.ID = m.nextID
	record.CreatedAt = time.Now()
	m.nextID++
	m.records = append(m.records, *record)
	return nil
}

func (m *Memory) ListRoundRecords(ctx context.Context, roomCode string, limit int) ([]models.GormRoundRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var out []models.GormRoundRecord
	for _, r := range m.records {
		if r.RoomCode == roomCode {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, ErrRecordNotFound
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CountRoundsSince(ctx context.Context, since time.Time) (int64, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var n int64
	for _, r := range m.records {
		if !r.StartedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error {
	return nil
}
