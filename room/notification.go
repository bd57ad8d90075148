package room

// Notification is an outbound message produced by a room operation. The
// caller delivers it; rooms never touch the transport.
type Notification struct {
	MsgID uint16
	// Recipients are participant ids, captured when the notification was
	// produced. Broadcasts list every member at that moment.
	Recipients []string
	Broadcast  bool
	Payload    interface{}
}

func direct(to string, msgID uint16, payload interface{}) Notification {
	return Notification{MsgID: msgID, Recipients: []string{to}, Payload: payload}
}

func broadcastTo(ids []string, msgID uint16, payload interface{}) Notification {
	return Notification{MsgID: msgID, Recipients: ids, Broadcast: true, Payload: payload}
}
