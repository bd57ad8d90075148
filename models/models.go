// models/models.go
package models

// ConfigureRoomRequest 创建房间请求 (configure-room)
type ConfigureRoomRequest struct {
	HostName      string `json:"hostName"`
	Mode          string `json:"mode"`
	Category      string `json:"category,omitempty"`
	ManualWord    string `json:"manualWord,omitempty"`
	ImpostorCount int    `json:"impostorCount"`
}

// RoomConfigured is sent to the creator and to every joiner.
type RoomConfigured struct {
	Code     string `json:"code"`
	Mode     string `json:"mode"`
	Category string `json:"category,omitempty"`
}

// JoinRoomRequest 加入房间请求 (join-room)
type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RoomRequest carries only a room code (start-round, request-rematch,
// leave-room, rematch-ready).
type RoomRequest struct {
	Code string `json:"code"`
}

// RespondRematchRequest answers a rematch request.
type RespondRematchRequest struct {
	Code     string `json:"code"`
	Accepted bool   `json:"accepted"`
}

// Member is one entry of a membership-updated list.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// YourRole is the private per-participant round notification. Word holds the
// masked placeholder for impostors.
type YourRole struct {
	Word       string `json:"word"`
	IsImpostor bool   `json:"isImpostor"`
	Mode       string `json:"mode"`
	Category   string `json:"category,omitempty"`
}

// RematchRequested asks everyone to confirm the next round.
type RematchRequested struct {
	Code          string `json:"code"`
	WindowSeconds int    `json:"windowSeconds"`
}

// ActionError reports a rejected action to its originator only.
type ActionError struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// Status is a free-form status line for one participant.
type Status struct {
	Message string `json:"message"`
}
