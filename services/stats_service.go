// services/stats_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/persistence"
	"github.com/wfunc/wordimpostor/room"
)

// DefaultHistoryLimit caps RoundHistory when the caller asks for nothing
// specific.
const DefaultHistoryLimit = 20

// RoundSummary is the public view of a recorded round. The word is never
// stored.
type RoundSummary struct {
	RoomCode  string
	Mode      string
	Category  string
	Players   int
	Impostors int
	StartedAt time.Time
}

type StatsService struct {
	db    persistence.Database
	rooms *room.Manager
}

func NewStatsService(db persistence.Database, rooms *room.Manager) *StatsService {
	return &StatsService{db: db, rooms: rooms}
}

// RecordRound 记录一局的开始
func (s *StatsService) RecordRound(ctx context.Context, round room.Round) error {
	return s.db.SaveRoundRecord(ctx, &models.GormRoundRecord{
		RoomCode:  round.Code,
		Mode:      string(round.Mode),
		Category:  round.Category,
		Players:   round.Players,
		Impostors: round.Impostors,
		StartedAt: round.StartedAt,
	})
}

// RoundHistory returns the newest rounds of a room, newest first. A room
// without history yields an empty slice.
func (s *StatsService) RoundHistory(ctx context.Context, roomCode string, limit int) ([]RoundSummary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := s.db.ListRoundRecords(ctx, roomCode, limit)
	if errors.Is(err, persistence.ErrRecordNotFound) {
		return []RoundSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]RoundSummary, len(records))
	for i, r := range records {
		out[i] = RoundSummary{
			RoomCode:  r.RoomCode,
			Mode:      r.Mode,
			Category:  r.Category,
			Players:   r.Players,
			Impostors: r.Impostors,
			StartedAt: r.StartedAt,
		}
	}
	return out, nil
}

// Overview combines the live directory with recorded history.
type Overview struct {
	room.Stats
	RecentRounds int64
}

// Overview 获取服务器概况. RecentRounds counts rounds started within window;
// a zero window means one hour.
func (s *StatsService) Overview(ctx context.Context, window time.Duration) (Overview, error) {
	if window <= 0 {
		window = time.Hour
	}
	n, err := s.db.CountRoundsSince(ctx, time.Now().Add(-window))
	if err != nil {
		return Overview{}, err
	}
	return Overview{Stats: s.rooms.Stats(), RecentRounds: n}, nil
}
