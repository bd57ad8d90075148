package network

const (
	MsgTypeHeartbeat = 1

	MsgTypeConfigureRoom     = 101
	MsgTypeRoomConfigured    = 102
	MsgTypeJoinRoom          = 103
	MsgTypeJoinError         = 104
	MsgTypeMembershipUpdated = 105
	MsgTypeWaiting           = 106

	MsgTypeStartRound = 201
	MsgTypeRoundError = 202
	MsgTypeYourRole   = 203

	MsgTypeRequestRematch   = 301
	MsgTypeRematchRequested = 302
	MsgTypeRespondRematch   = 303
	MsgTypeRematchReady     = 304

	MsgTypeLeaveRoom = 401
)

var eventNames = map[uint16]string{
	MsgTypeHeartbeat:         "heartbeat",
	MsgTypeConfigureRoom:     "configure-room",
	MsgTypeRoomConfigured:    "room-configured",
	MsgTypeJoinRoom:          "join-room",
	MsgTypeJoinError:         "join-error",
	MsgTypeMembershipUpdated: "membership-updated",
	MsgTypeWaiting:           "waiting",
	MsgTypeStartRound:        "start-round",
	MsgTypeRoundError:        "round-error",
	MsgTypeYourRole:          "your-role",
	MsgTypeRequestRematch:    "request-rematch",
	MsgTypeRematchRequested:  "rematch-requested",
	MsgTypeRespondRematch:    "respond-rematch",
	MsgTypeRematchReady:      "rematch-ready",
	MsgTypeLeaveRoom:         "leave-room",
}

// EventName returns the event name for a message id, or "unknown".
func EventName(msgID uint16) string {
	if name, ok := eventNames[msgID]; ok {
		return name
	}
	return "unknown"
}
