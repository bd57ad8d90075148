package session

import (
	"net"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/wfunc/wordimpostor/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sent = append(m.sent, msgID)
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{}, nil)

	// Test Add
	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	// Test Get
	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	// Test Remove
	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_SendTouches(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s", conn, nil)
	before := sess.LastActive()

	time.Sleep(2 * time.Millisecond)
	if err := sess.Send(network.MsgTypeWaiting, []byte("{}")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if !sess.LastActive().After(before) {
		t.Error("Send should update LastActive")
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeWaiting {
		t.Errorf("Expected one waiting packet, got %v", conn.sent)
	}
}

func TestSession_Allow(t *testing.T) {
	unlimited := NewSession("a", &MockConnection{}, nil)
	for i := 0; i < 100; i++ {
		if !unlimited.Allow() {
			t.Fatal("Session without limiter should always allow")
		}
	}

	limited := NewSession("b", &MockConnection{}, rate.NewLimiter(rate.Every(time.Hour), 2))
	if !limited.Allow() || !limited.Allow() {
		t.Fatal("Burst of 2 should be allowed")
	}
	if limited.Allow() {
		t.Fatal("Third packet should be rejected")
	}
}

func TestManager_All(t *testing.T) {
	manager := NewManager()
	manager.Add(NewSession("a", &MockConnection{}, nil))
	manager.Add(NewSession("b", &MockConnection{}, nil))

	all := manager.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(all))
	}
	manager.Remove("a")
	if len(all) != 2 {
		t.Fatal("All should return a snapshot")
	}
}
