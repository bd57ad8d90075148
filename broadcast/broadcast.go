// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/wordimpostor/logger"
	"github.com/wfunc/wordimpostor/room"
	"github.com/wfunc/wordimpostor/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	Deliver(notes []room.Notification) error
}

// RoomBroadcaster 把房间通知投递到各个会话
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

// Deliver encodes each notification once and sends it to every recipient.
// A failed or vanished recipient does not stop delivery to the others; the
// failures are returned joined.
func (b *RoomBroadcaster) Deliver(notes []room.Notification) error {
	var errs []error
	for _, n := range notes {
		data, err := json.Marshal(n.Payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode msg %d: %w", n.MsgID, err))
			continue
		}
		for _, id := range n.Recipients {
			if err := b.send(id, n.MsgID, data); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Publish delivers notes and only logs failures. It fits room.Settings.Publish,
// which rooms call while holding their lock.
func (b *RoomBroadcaster) Publish(notes []room.Notification) {
	if err := b.Deliver(notes); err != nil {
		// recipients that went away are cleaned up by their own disconnect
		logger.Log.Debugf("Delivery incomplete: %v", err)
	}
}

func (b *RoomBroadcaster) send(sessionID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err := s.Send(msgID, data); err != nil {
		return fmt.Errorf("send msg %d to %s: %w", msgID, sessionID, err)
	}
	return nil
}
