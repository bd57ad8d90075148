package room

import (
	"strings"
	"sync"
	"time"

	"github.com/wfunc/wordimpostor/logger"
	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/network"
	"github.com/wfunc/wordimpostor/random"
	"github.com/wfunc/wordimpostor/words"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// after this many collisions in a row the code grows by one character
	maxCodeAttempts = 32

	DefaultMaxPlayers    = 12
	DefaultMinPlayers    = 3
	DefaultRematchWindow = 10 * time.Second
	DefaultCodeLength    = 4
	DefaultMaskedWord    = "???"
)

// Options configure a Manager. Zero values take the defaults above; a nil
// Rand is seeded from crypto/rand and a nil word table uses the built-in one.
// MinPlayers is never below DefaultMinPlayers and MaxPlayers never below
// MinPlayers.
type Options struct {
	Settings
	CodeLength int
}

// Stats summarises the directory.
type Stats struct {
	Rooms        int
	Participants int
	ActiveRounds int
}

// Manager 管理所有房间: it owns every live room keyed by code, and knows which
// rooms each participant is in so a disconnect can be routed.
type Manager struct {
	rooms      map[string]*Room
	index      map[string]map[string]struct{} // participant id -> room codes
	settings   Settings
	codeLength int
	mutex      sync.RWMutex
}

// NewRoomManager 创建一个新的房间管理器
func NewRoomManager(opts Options) *Manager {
	s := opts.Settings
	if s.MaxPlayers <= 0 {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.MinPlayers < DefaultMinPlayers {
		s.MinPlayers = DefaultMinPlayers
	}
	if s.MaxPlayers < s.MinPlayers {
		s.MaxPlayers = s.MinPlayers
	}
	if s.RematchWindow <= 0 {
		s.RematchWindow = DefaultRematchWindow
	}
	if s.MaskedWord == "" {
		s.MaskedWord = DefaultMaskedWord
	}
	if s.Words == nil {
		s.Words = words.DefaultTable()
	}
	if s.Rand == nil {
		seed, err := random.NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		s.Rand = random.NewLocked(seed)
	}
	length := opts.CodeLength
	if length <= 0 {
		length = DefaultCodeLength
	}

	return &Manager{
		rooms:      make(map[string]*Room),
		index:      make(map[string]map[string]struct{}),
		settings:   s,
		codeLength: length,
	}
}

// validate normalises a requested configuration.
func (m *Manager) validate(cfg Config) (Config, error) {
	switch cfg.Mode {
	case words.ModeManual:
	case words.ModeRandom:
		cfg.ManualWord = ""
	case words.ModeRandomCategory:
		cfg.ManualWord = ""
		if cfg.Category == "" || !m.settings.Words.Has(cfg.Category) {
			return cfg, words.ErrUnknownCategory
		}
	default:
		return cfg, words.ErrUnknownMode
	}
	if cfg.ImpostorCount < 1 {
		cfg.ImpostorCount = 1
	}
	return cfg, nil
}

// CreateRoom 创建一个新房间并添加到管理器. The host gets room-configured and
// the initial membership list.
func (m *Manager) CreateRoom(cfg Config, hostName, hostID string) (string, []Notification, error) {
	cfg, err := m.validate(cfg)
	if err != nil {
		return "", nil, err
	}
	hostName, err = normalizeName(hostName)
	if err != nil {
		return "", nil, err
	}

	m.mutex.Lock()
	code := m.newCode()
	room := newRoom(code, &Participant{ID: hostID, Name: hostName}, cfg, m.settings)
	// held until the host's notifications are out, so a fast joiner's
	// membership list cannot overtake them
	room.mutex.Lock()
	defer room.mutex.Unlock()
	m.rooms[code] = room
	m.track(hostID, code)
	m.mutex.Unlock()

	logger.Log.Infof("Room %s created by %s (mode=%s, impostors=%d)", code, hostName, cfg.Mode, cfg.ImpostorCount)

	notes := room.emit([]Notification{
		direct(hostID, network.MsgTypeRoomConfigured, room.configured()),
		room.membership(),
	})
	return code, notes, nil
}

// newCode returns an unused code. Caller holds m.mutex.
func (m *Manager) newCode() string {
	length := m.codeLength
	for {
		for attempt := 0; attempt < maxCodeAttempts; attempt++ {
			buf := make([]byte, length)
			for i := range buf {
				buf[i] = codeAlphabet[m.settings.Rand.Intn(len(codeAlphabet))]
			}
			code := string(buf)
			if _, exists := m.rooms[code]; !exists {
				return code
			}
		}
		length++
	}
}

// GetRoom 从管理器中获取一个房间. Codes are matched case-insensitively.
func (m *Manager) GetRoom(code string) (*Room, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[normalizeCode(code)]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Join adds a participant to the room with the given code.
func (m *Manager) Join(code, participantID, name string) ([]Notification, error) {
	room, err := m.GetRoom(code)
	if err != nil {
		return nil, err
	}
	notes, err := room.Join(participantID, name)
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	m.track(participantID, room.Code())
	m.mutex.Unlock()

	logger.Log.Infof("%s joined room %s", participantID, room.Code())
	return notes, nil
}

// StartRound starts a round in the room with the given code.
func (m *Manager) StartRound(code, requesterID string) ([]Notification, Round, error) {
	room, err := m.GetRoom(code)
	if err != nil {
		return nil, Round{}, err
	}
	return room.StartRound(requesterID)
}

// RequestRematch asks the room with the given code for a rematch.
func (m *Manager) RequestRematch(code, requesterID string) ([]Notification, error) {
	room, err := m.GetRoom(code)
	if err != nil {
		return nil, err
	}
	return room.RequestRematch(requesterID)
}

// RespondRematch records a rematch answer.
func (m *Manager) RespondRematch(code, participantID string, accepted bool) ([]Notification, error) {
	room, err := m.GetRoom(code)
	if err != nil {
		return nil, err
	}
	return room.RespondRematch(participantID, accepted)
}

// Leave removes a participant from one room and drops the room if it is
// now empty.
func (m *Manager) Leave(code, participantID string) ([]Notification, error) {
	room, err := m.GetRoom(code)
	if err != nil {
		return nil, err
	}
	notes, empty, err := room.Leave(participantID)
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	m.untrack(participantID, room.Code())
	m.mutex.Unlock()

	if empty {
		m.RemoveIfEmpty(room.Code())
	}
	return notes, nil
}

// Disconnect removes the participant from every room it is in.
func (m *Manager) Disconnect(participantID string) []Notification {
	m.mutex.RLock()
	codes := make([]string, 0, len(m.index[participantID]))
	for code := range m.index[participantID] {
		codes = append(codes, code)
	}
	m.mutex.RUnlock()

	var notes []Notification
	for _, code := range codes {
		n, err := m.Leave(code, participantID)
		if err != nil {
			logger.Log.Debugf("Disconnect of %s from room %s: %v", participantID, code, err)
			continue
		}
		notes = append(notes, n...)
	}
	return notes
}

// RemoveIfEmpty deletes the room if its last participant has left.
func (m *Manager) RemoveIfEmpty(code string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	room, exists := m.rooms[code]
	if !exists || !room.isClosed() {
		return false
	}
	delete(m.rooms, code)
	logger.Log.Infof("Room %s removed (empty) after %s", code, room.age().Round(time.Second))
	return true
}

// RoomsOf returns the codes of every room the participant is in.
func (m *Manager) RoomsOf(participantID string) []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	codes := make([]string, 0, len(m.index[participantID]))
	for code := range m.index[participantID] {
		codes = append(codes, code)
	}
	return codes
}

// Stats counts rooms, participants and rounds in progress.
func (m *Manager) Stats() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := Stats{Rooms: len(m.rooms)}
	for _, room := range m.rooms {
		snap := room.Snapshot()
		stats.Participants += len(snap.Members)
		if snap.RoundActive {
			stats.ActiveRounds++
		}
	}
	return stats
}

// Close tears down every room. Stale *Room references report RoomNotFound.
func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for code, room := range m.rooms {
		room.close()
		delete(m.rooms, code)
	}
	m.index = make(map[string]map[string]struct{})
}

// track/untrack maintain the participant index. Caller holds m.mutex.
func (m *Manager) track(participantID, code string) {
	codes, ok := m.index[participantID]
	if !ok {
		codes = make(map[string]struct{})
		m.index[participantID] = codes
	}
	codes[code] = struct{}{}
}

func (m *Manager) untrack(participantID, code string) {
	codes, ok := m.index[participantID]
	if !ok {
		return
	}
	delete(codes, code)
	if len(codes) == 0 {
		delete(m.index, participantID)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Payload helpers shared with the server for error replies.

// JoinError builds a join-error notification for one participant.
func JoinError(to string, err error) Notification {
	return direct(to, network.MsgTypeJoinError, models.ActionError{Reason: Reason(err), Message: err.Error()})
}

// RoundError builds a round-error notification for one participant.
func RoundError(to string, err error) Notification {
	return direct(to, network.MsgTypeRoundError, models.ActionError{Reason: Reason(err), Message: err.Error()})
}
