package chat

import (
	"sort"
	"testing"
)

func TestSessionJoinLeave(t *testing.T) {
	sess, conn := newTestSession("s1", "alice")

	sess.JoinChat("c1")
	sess.JoinChat("c2")
	if !conn.inRoom(ChatRoom("c1")) || !conn.inRoom(ChatRoom("c2")) {
		t.Error("connection should be in joined rooms")
	}

	chats := sess.JoinedChats()
	sort.Strings(chats)
	if len(chats) != 2 || chats[0] != "c1" || chats[1] != "c2" {
		t.Errorf("joined = %v", chats)
	}

	sess.LeaveChat("c1")
	if conn.inRoom(ChatRoom("c1")) {
		t.Error("connection should have left c1")
	}
	// 未加入过的房间，离开是空操作
	sess.LeaveChat("never")
}

func TestSessionManagerCountByUser(t *testing.T) {
	m := NewSessionManager()

	s1, _ := newTestSession("s1", "alice")
	s2, _ := newTestSession("s2", "alice")
	s3, _ := newTestSession("s3", "bob")
	m.Register(s1)
	m.Register(s2)
	m.Register(s3)

	if got := m.CountByUser("alice"); got != 2 {
		t.Errorf("alice sessions = %d, want 2", got)
	}
	if m.Get("s3") != s3 {
		t.Error("Get should return registered session")
	}

	// 一台设备断开后另一台仍在线
	m.Unregister("s1")
	if got := m.CountByUser("alice"); got != 1 {
		t.Errorf("alice sessions after unregister = %d, want 1", got)
	}
	if m.Get("s1") != nil {
		t.Error("unregistered session should be gone")
	}

	m.Unregister("s2")
	if got := m.CountByUser("alice"); got != 0 {
		t.Errorf("alice sessions = %d, want 0", got)
	}
}
