package state

// Phase ids of a room.
const (
	LobbyID = "lobby"
	RoundID = "round"
)

// Phase is a State whose enter/exit behaviour is supplied by its owner.
type Phase struct {
	ID    string
	Enter func()
	Exit  func()
}

// NewPhase creates a phase; enter and exit may be nil.
func NewPhase(id string, enter, exit func()) *Phase {
	return &Phase{ID: id, Enter: enter, Exit: exit}
}

func (p *Phase) GetID() string {
	return p.ID
}

func (p *Phase) OnEnter() {
	if p.Enter != nil {
		p.Enter()
	}
}

func (p *Phase) OnExit() {
	if p.Exit != nil {
		p.Exit()
	}
}
