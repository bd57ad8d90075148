package room

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/wordimpostor/models"
	"github.com/wfunc/wordimpostor/network"
	"github.com/wfunc/wordimpostor/words"
)

func newTestManager(seed int64) *Manager {
	return NewRoomManager(Options{Settings: Settings{Rand: rand.New(rand.NewSource(seed))}})
}

// setupRoom creates a room hosted by "A" and joins the remaining ids, each
// named after its id.
func setupRoom(t *testing.T, m *Manager, cfg Config, ids ...string) *Room {
	t.Helper()
	code, _, err := m.CreateRoom(cfg, ids[0], ids[0])
	require.NoError(t, err)
	for _, id := range ids[1:] {
		_, err := m.Join(code, id, id)
		require.NoError(t, err)
	}
	r, err := m.GetRoom(code)
	require.NoError(t, err)
	return r
}

func roleNotes(t *testing.T, notes []Notification) map[string]models.YourRole {
	t.Helper()
	out := make(map[string]models.YourRole)
	for _, n := range notes {
		require.Equal(t, uint16(network.MsgTypeYourRole), n.MsgID)
		require.False(t, n.Broadcast, "your-role must be private")
		require.Len(t, n.Recipients, 1)
		out[n.Recipients[0]] = n.Payload.(models.YourRole)
	}
	return out
}

func findNote(notes []Notification, msgID uint16) (Notification, bool) {
	for _, n := range notes {
		if n.MsgID == msgID {
			return n, true
		}
	}
	return Notification{}, false
}

var randomCfg = Config{Mode: words.ModeRandom, ImpostorCount: 1}

func TestRoom_JoinNotifications(t *testing.T) {
	m := newTestManager(1)
	code, _, err := m.CreateRoom(Config{Mode: words.ModeRandomCategory, Category: "frutas", ImpostorCount: 1}, "A", "A")
	require.NoError(t, err)

	notes, err := m.Join(code, "B", "Bea")
	require.NoError(t, err)

	confirm, ok := findNote(notes, network.MsgTypeRoomConfigured)
	require.True(t, ok)
	assert.Equal(t, []string{"B"}, confirm.Recipients)
	assert.Equal(t, models.RoomConfigured{Code: code, Mode: "randomCategory", Category: "frutas"}, confirm.Payload)

	members, ok := findNote(notes, network.MsgTypeMembershipUpdated)
	require.True(t, ok)
	assert.True(t, members.Broadcast)
	assert.Equal(t, []string{"A", "B"}, members.Recipients)
	want := []models.Member{{ID: "A", Name: "A", IsHost: true}, {ID: "B", Name: "Bea"}}
	if diff := cmp.Diff(want, members.Payload); diff != "" {
		t.Errorf("membership mismatch (-want +got):\n%s", diff)
	}

	_, ok = findNote(notes, network.MsgTypeWaiting)
	assert.True(t, ok)
}

func TestRoom_JoinDuplicateNameCaseInsensitive(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A")
	_, err := r.Join("B", "Maria")
	require.NoError(t, err)

	for _, name := range []string{"maria", "MARIA", "  mArIa "} {
		_, err = r.Join("C", name)
		assert.ErrorIs(t, err, ErrDuplicateName, name)
	}
	assert.Len(t, r.Snapshot().Members, 2)
}

func TestRoom_JoinFull(t *testing.T) {
	m := NewRoomManager(Options{Settings: Settings{MaxPlayers: 3, Rand: rand.New(rand.NewSource(1))}})
	r := setupRoom(t, m, randomCfg, "A", "B", "C")
	before := r.Snapshot().Members

	_, err := m.Join(r.Code(), "D", "D")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, before, r.Snapshot().Members)
	assert.Empty(t, m.RoomsOf("D"))
}

func TestRoom_JoinDefaultCapacity(t *testing.T) {
	m := newTestManager(1)
	ids := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11"}
	r := setupRoom(t, m, randomCfg, ids...)
	assert.Len(t, r.Snapshot().Members, DefaultMaxPlayers)

	_, err := r.Join("p12", "p12")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRoom_JoinRejections(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A")

	_, err := r.Join("A", "Other")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	_, err = r.Join("B", "   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = r.Join("B", "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDEFG")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = m.Join("ZZZZZZ", "B", "B")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoom_StartRoundRandomScenario(t *testing.T) {
	m := newTestManager(7)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	notes, _, err := r.StartRound("A")
	require.NoError(t, err)
	roles := roleNotes(t, notes)
	require.Len(t, roles, 3)

	var impostors []string
	var realWords []string
	for id, role := range roles {
		assert.Equal(t, "random", role.Mode)
		if role.IsImpostor {
			impostors = append(impostors, id)
			assert.Equal(t, DefaultMaskedWord, role.Word)
		} else {
			realWords = append(realWords, role.Word)
		}
	}
	assert.Len(t, impostors, 1)
	require.Len(t, realWords, 2)
	assert.Equal(t, realWords[0], realWords[1])
	assert.Contains(t, words.DefaultTable().All(), realWords[0])

	snap := r.Snapshot()
	assert.True(t, snap.RoundActive)
	assert.Equal(t, 1, snap.Impostors)
}

func TestRoom_StartRoundRoleOrderFollowsJoinOrder(t *testing.T) {
	m := newTestManager(3)
	r := setupRoom(t, m, randomCfg, "A", "B", "C", "D")

	notes, _, err := r.StartRound("A")
	require.NoError(t, err)
	var order []string
	for _, n := range notes {
		order = append(order, n.Recipients[0])
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
}

func TestRoom_StartRoundByNonHost(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	notes, _, err := r.StartRound("B")
	assert.ErrorIs(t, err, ErrUnauthorizedHost)
	assert.Empty(t, notes)
	assert.False(t, r.Snapshot().RoundActive)

	_, _, err = r.StartRound("stranger")
	assert.ErrorIs(t, err, ErrUnauthorizedHost)
	assert.False(t, r.Snapshot().RoundActive)
}

func TestRoom_StartRoundInsufficientPlayers(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A", "B")

	_, _, err := r.StartRound("A")
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.False(t, r.Snapshot().RoundActive)
}

func TestRoom_StartRoundAlreadyActive(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	_, _, err := r.StartRound("A")
	require.NoError(t, err)
	word := r.currentWord

	_, _, err = r.StartRound("A")
	assert.ErrorIs(t, err, ErrRoundAlreadyActive)
	assert.Equal(t, word, r.currentWord)
}

func TestRoom_StartRoundUnknownCategoryLeavesLobby(t *testing.T) {
	// the table lost the category after the room was created
	settings := Settings{MaxPlayers: 12, MinPlayers: 3, MaskedWord: "???", Words: words.Table{"x": {"X"}}, Rand: rand.New(rand.NewSource(1))}
	r := newRoom("CODE", &Participant{ID: "A", Name: "A"}, Config{Mode: words.ModeRandomCategory, Category: "gone", ImpostorCount: 1}, settings)
	_, err := r.Join("B", "B")
	require.NoError(t, err)
	_, err = r.Join("C", "C")
	require.NoError(t, err)

	_, _, err = r.StartRound("A")
	assert.ErrorIs(t, err, words.ErrUnknownCategory)
	assert.Equal(t, "UnknownCategory", Reason(err))
	assert.False(t, r.Snapshot().RoundActive)
}

func TestRoom_TooManyImpostorsAssignsNone(t *testing.T) {
	m := newTestManager(1)
	// manual mode excludes the host: 2 eligible for 3 impostors
	r := setupRoom(t, m, Config{Mode: words.ModeManual, ManualWord: "GATO", ImpostorCount: 3}, "A", "B", "C")

	notes, _, err := r.StartRound("A")
	require.NoError(t, err)
	for _, role := range roleNotes(t, notes) {
		assert.False(t, role.IsImpostor)
		assert.Equal(t, "GATO", role.Word)
	}
	assert.Zero(t, r.Snapshot().Impostors)
	assert.True(t, r.Snapshot().RoundActive)
}

func TestRoom_ImpostorCountExactWhenPoolLargeEnough(t *testing.T) {
	m := newTestManager(11)
	r := setupRoom(t, m, Config{Mode: words.ModeRandom, ImpostorCount: 2}, "A", "B", "C", "D", "E")

	for i := 0; i < 50; i++ {
		notes, _, err := r.StartRound("A")
		require.NoError(t, err)
		n := 0
		for _, role := range roleNotes(t, notes) {
			if role.IsImpostor {
				n++
			}
		}
		assert.Equal(t, 2, n)
		_, err = r.RequestRematch("A")
		require.NoError(t, err)
	}
}

func TestRoom_ManualModeNeverPicksHostAndSplitsEvenly(t *testing.T) {
	m := newTestManager(2024)
	r := setupRoom(t, m, Config{Mode: words.ModeManual, ManualWord: "GATO", ImpostorCount: 1}, "A", "B", "C")

	const trials = 4000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		notes, _, err := r.StartRound("A")
		require.NoError(t, err)
		for id, role := range roleNotes(t, notes) {
			if role.IsImpostor {
				counts[id]++
			} else {
				assert.Equal(t, "GATO", role.Word)
			}
		}
		_, err = r.RequestRematch("A")
		require.NoError(t, err)
	}

	assert.Zero(t, counts["A"], "host must never be the impostor in manual mode")
	assert.Equal(t, trials, counts["B"]+counts["C"])
	assert.InDelta(t, 0.5, float64(counts["B"])/trials, 0.04)
}

func TestRoom_RematchRoundTrip(t *testing.T) {
	m := newTestManager(5)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	for cycle := 0; cycle < 2; cycle++ {
		_, _, err := r.StartRound("A")
		require.NoError(t, err)

		notes, err := r.RequestRematch("A")
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.True(t, notes[0].Broadcast)
		assert.Equal(t, uint16(network.MsgTypeRematchRequested), notes[0].MsgID)
		assert.Equal(t, models.RematchRequested{Code: r.Code(), WindowSeconds: 10}, notes[0].Payload)

		snap := r.Snapshot()
		assert.False(t, snap.RoundActive)
		assert.Empty(t, r.currentWord)
		assert.Nil(t, r.impostorIDs)

		ready := 0
		for _, id := range []string{"A", "B", "C"} {
			notes, err := r.RespondRematch(id, true)
			require.NoError(t, err)
			for _, n := range notes {
				if n.MsgID == network.MsgTypeRematchReady {
					ready++
					assert.ElementsMatch(t, []string{"A", "B", "C"}, n.Recipients)
				}
			}
		}
		assert.Equal(t, 1, ready, "cycle %d", cycle)
		for _, p := range r.participants {
			assert.Equal(t, AcceptanceUnset, p.Rematch)
		}
		assert.False(t, r.Snapshot().RematchPending)
	}
}

func TestRoom_RematchDeclineBlocks(t *testing.T) {
	m := newTestManager(5)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")
	_, err := r.RequestRematch("A")
	require.NoError(t, err)

	for _, id := range []string{"A", "B"} {
		notes, err := r.RespondRematch(id, true)
		require.NoError(t, err)
		assert.Empty(t, notes)
	}
	notes, err := r.RespondRematch("C", false)
	require.NoError(t, err)
	assert.Empty(t, notes)

	// changing the answer completes the cycle
	notes, err = r.RespondRematch("C", true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, uint16(network.MsgTypeRematchReady), notes[0].MsgID)
}

func TestRoom_RematchRejections(t *testing.T) {
	m := newTestManager(5)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")
	_, _, err := r.StartRound("A")
	require.NoError(t, err)

	_, err = r.RequestRematch("B")
	assert.ErrorIs(t, err, ErrUnauthorizedHost)
	assert.True(t, r.Snapshot().RoundActive)

	_, err = r.RespondRematch("ghost", true)
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestRoom_LeaveHostTransfersToEarliestSurvivor(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	notes, err := m.Leave(r.Code(), "A")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, []string{"B", "C"}, notes[0].Recipients)

	snap := r.Snapshot()
	assert.Equal(t, "B", snap.HostID)
	hosts := 0
	for _, mem := range snap.Members {
		if mem.IsHost {
			hosts++
			assert.Equal(t, "B", mem.ID)
		}
	}
	assert.Equal(t, 1, hosts)

	// new host has authority, old one is gone
	_, err = r.Join("D", "D")
	require.NoError(t, err)
	_, _, err = r.StartRound("B")
	assert.NoError(t, err)
}

func TestRoom_LeaveNonHostKeepsHost(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	_, err := m.Leave(r.Code(), "B")
	require.NoError(t, err)
	snap := r.Snapshot()
	assert.Equal(t, "A", snap.HostID)
	assert.Equal(t, []models.Member{{ID: "A", Name: "A", IsHost: true}, {ID: "C", Name: "C"}}, snap.Members)

	_, err = m.Leave(r.Code(), "B")
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestRoom_LeaveSoleParticipantRemovesRoom(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A")

	notes, err := m.Leave(r.Code(), "A")
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = m.GetRoom(r.Code())
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// a stale reference cannot resurrect the room
	_, err = r.Join("B", "B")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoom_LeaveUnblocksPendingRematch(t *testing.T) {
	m := newTestManager(1)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")
	_, err := r.RequestRematch("A")
	require.NoError(t, err)
	_, err = r.RespondRematch("A", true)
	require.NoError(t, err)
	_, err = r.RespondRematch("B", true)
	require.NoError(t, err)

	notes, err := m.Leave(r.Code(), "C")
	require.NoError(t, err)
	ready, ok := findNote(notes, network.MsgTypeRematchReady)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, ready.Recipients)
}

func TestRoom_LeaveDuringRoundDropsImpostor(t *testing.T) {
	m := newTestManager(9)
	r := setupRoom(t, m, randomCfg, "A", "B", "C", "D")
	notes, _, err := r.StartRound("A")
	require.NoError(t, err)

	var impostor string
	for id, role := range roleNotes(t, notes) {
		if role.IsImpostor {
			impostor = id
		}
	}
	require.NotEmpty(t, impostor)

	_, err = m.Leave(r.Code(), impostor)
	require.NoError(t, err)
	assert.Zero(t, r.Snapshot().Impostors)
	assert.True(t, r.Snapshot().RoundActive)
}

func TestRoom_RespondRematchWithoutRequestIsIgnored(t *testing.T) {
	m := newTestManager(5)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")

	for _, id := range []string{"A", "B", "C"} {
		notes, err := r.RespondRematch(id, true)
		require.NoError(t, err)
		assert.Nil(t, notes)
	}
	assert.False(t, r.Snapshot().RematchPending)
	for _, p := range r.participants {
		assert.Equal(t, AcceptanceUnset, p.Rematch, p.ID)
	}
}

func TestRoom_StartRoundDropsPendingRematch(t *testing.T) {
	m := newTestManager(5)
	r := setupRoom(t, m, randomCfg, "A", "B", "C")
	_, err := r.RequestRematch("A")
	require.NoError(t, err)
	for _, id := range []string{"A", "B"} {
		_, err := r.RespondRematch(id, true)
		require.NoError(t, err)
	}

	_, _, err = r.StartRound("A")
	require.NoError(t, err)
	assert.False(t, r.Snapshot().RematchPending)
	for _, p := range r.participants {
		assert.Equal(t, AcceptanceUnset, p.Rematch, p.ID)
	}

	// the late answer belongs to a request that no longer exists
	notes, err := r.RespondRematch("C", true)
	require.NoError(t, err)
	assert.Nil(t, notes)
	assert.True(t, r.Snapshot().RoundActive)
}

func TestRoom_StartRoundSummary(t *testing.T) {
	m := newTestManager(3)
	cfg := Config{Mode: words.ModeManual, ManualWord: "GATO", ImpostorCount: 2}
	r := setupRoom(t, m, cfg, "A", "B", "C", "D", "E")

	before := time.Now()
	notes, round, err := r.StartRound("A")
	require.NoError(t, err)
	assert.Len(t, notes, 5)

	assert.Equal(t, r.Code(), round.Code)
	assert.Equal(t, words.ModeManual, round.Mode)
	assert.Empty(t, round.Category)
	assert.Equal(t, 5, round.Players)
	assert.Equal(t, 2, round.Impostors)
	assert.False(t, round.StartedAt.Before(before))
}
