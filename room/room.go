// room/room.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/network"
	"github.com/wfunc/wordimpostor/random"
	"github.com/wfunc/wordimpostor/roles"
	"github.com/wfunc/wordimpostor/state"
	"github.com/wfunc/wordimpostor/words"
)

// Config 房间配置, fixed at creation.
type Config struct {
	Mode          words.Mode
	Category      string
	ManualWord    string
	ImpostorCount int
}

// Settings are the server-wide rules every room follows.
type Settings struct {
	MaxPlayers    int
	MinPlayers    int
	RematchWindow time.Duration
	MaskedWord    string
	Words         words.Table
	Rand          random.Source
	// Publish, when set, receives every notification a room produces. It is
	// called with the room mutex held, so one room's notifications go out in
	// the order they were produced.
	Publish func([]Notification)
}

// Snapshot is a read-only view of a room.
type Snapshot struct {
	Code           string
	Mode           words.Mode
	Category       string
	HostID         string
	Members        []models.Member
	Phase          string
	RoundActive    bool
	Impostors      int
	RematchPending bool
}

// Round summarises a round that just started. The word is left out.
type Round struct {
	Code      string
	Mode      words.Mode
	Category  string
	Players   int
	Impostors int
	StartedAt time.Time
}

// Room 是游戏房间的核心结构. Every exported method runs under the room
// mutex, so operations on one room never interleave.
type Room struct {
	code      string
	config    Config
	settings  Settings
	createdAt time.Time

	participants []*Participant // join order
	hostID       string

	currentWord    string
	impostorIDs    map[string]struct{}
	rematchPending bool
	closed         bool

	lobby        *state.Phase
	round        *state.Phase
	stateMachine state.StateMachine

	mutex sync.Mutex
}

// newRoom creates a room in the lobby with host as its only participant.
// The code must already be unique.
func newRoom(code string, host *Participant, cfg Config, settings Settings) *Room {
	host.IsHost = true
	r := &Room{
		code:         code,
		config:       cfg,
		settings:     settings,
		createdAt:    time.Now(),
		participants: []*Participant{host},
		hostID:       host.ID,
	}

	r.lobby = state.NewPhase(state.LobbyID, nil, nil)
	r.round = state.NewPhase(state.RoundID, nil, r.clearRound)

	machine := state.NewBaseStateMachine(r.lobby)
	machine.AddTransition(r.lobby, r.round, nil)
	machine.AddTransition(r.round, r.lobby, nil)
	r.stateMachine = machine

	return r
}

// Code returns the room code.
func (r *Room) Code() string {
	return r.code
}

// Config returns the room configuration.
func (r *Room) Config() Config {
	return r.config
}

// --- 房间核心逻辑 ---

// Join adds a participant at the end of the join order.
func (r *Room) Join(id, name string) ([]Notification, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, ErrRoomNotFound
	}
	if r.find(id) != nil {
		return nil, ErrAlreadyInRoom
	}
	if len(r.participants) >= r.settings.MaxPlayers {
		return nil, ErrRoomFull
	}
	key := foldName(name)
	for _, p := range r.participants {
		if foldName(p.Name) == key {
			return nil, ErrDuplicateName
		}
	}

	r.participants = append(r.participants, &Participant{ID: id, Name: name})

	return r.emit([]Notification{
		direct(id, network.MsgTypeRoomConfigured, r.configured()),
		r.membership(),
		direct(id, network.MsgTypeWaiting, models.Status{Message: "Waiting for the host to start the round..."}),
	}), nil
}

// StartRound picks the word and the impostors and sends every participant
// their private role. A pending rematch request is dropped.
func (r *Room) StartRound(requesterID string) ([]Notification, Round, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, Round{}, ErrRoomNotFound
	}
	if requesterID != r.hostID {
		return nil, Round{}, ErrUnauthorizedHost
	}
	if len(r.participants) < r.settings.MinPlayers {
		return nil, Round{}, ErrInsufficientPlayers
	}
	if !r.stateMachine.CanTransition(r.round) {
		return nil, Round{}, ErrRoundAlreadyActive
	}

	word, err := words.Select(r.config.Mode, r.config.Category, r.config.ManualWord, r.settings.Words, r.settings.Rand)
	if err != nil {
		return nil, Round{}, err
	}

	candidates := make([]roles.Candidate, len(r.participants))
	for i, p := range r.participants {
		candidates[i] = p.candidate()
	}
	impostors := roles.AssignImpostors(candidates, r.config.ImpostorCount, r.config.Mode == words.ModeManual, r.settings.Rand)

	if err := r.stateMachine.ChangeState(r.round); err != nil {
		return nil, Round{}, ErrRoundAlreadyActive
	}
	r.currentWord = word
	r.impostorIDs = impostors
	r.resetRematch()

	notes := make([]Notification, 0, len(r.participants))
	for _, p := range r.participants {
		_, isImpostor := impostors[p.ID]
		role := models.YourRole{
			Word:       word,
			IsImpostor: isImpostor,
			Mode:       string(r.config.Mode),
			Category:   r.config.Category,
		}
		if isImpostor {
			role.Word = r.settings.MaskedWord
		}
		notes = append(notes, direct(p.ID, network.MsgTypeYourRole, role))
	}
	round := Round{
		Code:      r.code,
		Mode:      r.config.Mode,
		Category:  r.config.Category,
		Players:   len(r.participants),
		Impostors: len(impostors),
		StartedAt: time.Now(),
	}
	return r.emit(notes), round, nil
}

// RequestRematch ends the current round right away and asks everyone to
// confirm the next one.
func (r *Room) RequestRematch(requesterID string) ([]Notification, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, ErrRoomNotFound
	}
	if requesterID != r.hostID {
		return nil, ErrUnauthorizedHost
	}

	if r.stateMachine.GetCurrentState() == r.round {
		if err := r.stateMachine.ChangeState(r.lobby); err != nil {
			return nil, err
		}
	}
	r.resetRematch()
	r.rematchPending = true

	return r.emit([]Notification{
		broadcastTo(r.ids(), network.MsgTypeRematchRequested, models.RematchRequested{
			Code:          r.code,
			WindowSeconds: int(r.settings.RematchWindow / time.Second),
		}),
	}), nil
}

// RespondRematch records a participant's answer. Once everyone has accepted,
// rematch-ready goes out once and the answers are cleared. Answers with no
// request outstanding are ignored.
func (r *Room) RespondRematch(participantID string, accepted bool) ([]Notification, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, ErrRoomNotFound
	}
	p := r.find(participantID)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if !r.rematchPending {
		return nil, nil
	}

	p.Rematch = AcceptanceDeclined
	if accepted {
		p.Rematch = AcceptanceAccepted
	}

	if note, ok := r.readyIfUnanimous(); ok {
		return r.emit([]Notification{note}), nil
	}
	return nil, nil
}

// Leave removes a participant. When the host leaves, the earliest joined
// survivor becomes host. empty reports that nobody is left; the room is then
// closed for good.
func (r *Room) Leave(participantID string) (notes []Notification, empty bool, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, true, ErrRoomNotFound
	}
	idx := -1
	for i, p := range r.participants {
		if p.ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, ErrNotInRoom
	}

	r.participants = append(r.participants[:idx], r.participants[idx+1:]...)

	if len(r.participants) == 0 {
		r.closed = true
		r.hostID = ""
		r.clearRound()
		return nil, true, nil
	}

	if participantID == r.hostID {
		next := r.participants[0]
		next.IsHost = true
		r.hostID = next.ID
	}
	if r.impostorIDs != nil {
		delete(r.impostorIDs, participantID)
	}

	notes = append(notes, r.membership())
	if r.rematchPending {
		if note, ok := r.readyIfUnanimous(); ok {
			notes = append(notes, note)
		}
	}
	return r.emit(notes), false, nil
}

// Snapshot returns a consistent copy of the room's public state.
func (r *Room) Snapshot() Snapshot {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	members := make([]models.Member, len(r.participants))
	for i, p := range r.participants {
		members[i] = p.member()
	}
	phase := r.stateMachine.GetCurrentState()
	return Snapshot{
		Code:           r.code,
		Mode:           r.config.Mode,
		Category:       r.config.Category,
		HostID:         r.hostID,
		Members:        members,
		Phase:          phase.GetID(),
		RoundActive:    phase == r.round,
		Impostors:      len(r.impostorIDs),
		RematchPending: r.rematchPending,
	}
}

// Has reports whether id is a participant.
func (r *Room) Has(id string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.find(id) != nil
}

func (r *Room) isClosed() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.closed
}

func (r *Room) close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.closed = true
}

// age is how long the room has existed.
func (r *Room) age() time.Duration {
	return time.Since(r.createdAt)
}

// --- helpers, mutex held ---

func (r *Room) clearRound() {
	r.currentWord = ""
	r.impostorIDs = nil
}

// emit hands notes to the publisher and returns them.
func (r *Room) emit(notes []Notification) []Notification {
	if r.settings.Publish != nil && len(notes) > 0 {
		r.settings.Publish(notes)
	}
	return notes
}

func (r *Room) resetRematch() {
	for _, p := range r.participants {
		p.Rematch = AcceptanceUnset
	}
	r.rematchPending = false
}

func (r *Room) readyIfUnanimous() (Notification, bool) {
	for _, p := range r.participants {
		if p.Rematch != AcceptanceAccepted {
			return Notification{}, false
		}
	}
	r.resetRematch()
	return broadcastTo(r.ids(), network.MsgTypeRematchReady, models.RoomRequest{Code: r.code}), true
}

func (r *Room) find(id string) *Participant {
	for _, p := range r.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) ids() []string {
	ids := make([]string, len(r.participants))
	for i, p := range r.participants {
		ids[i] = p.ID
	}
	return ids
}

func (r *Room) configured() models.RoomConfigured {
	return models.RoomConfigured{Code: r.code, Mode: string(r.config.Mode), Category: r.config.Category}
}

func (r *Room) membership() Notification {
	members := make([]models.Member, len(r.participants))
	for i, p := range r.participants {
		members[i] = p.member()
	}
	return broadcastTo(r.ids(), network.MsgTypeMembershipUpdated, members)
}
