package chat

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"yuanfen_chat_server/internal/dao/mysql/repository"
	"yuanfen_chat_server/internal/dto/respond"
	"yuanfen_chat_server/internal/model"
	"yuanfen_chat_server/pkg/constants"
	"yuanfen_chat_server/pkg/util/snowflake"
)

func TestMain(m *testing.M) {
	snowflake.Init(1)
	m.Run()
}

type roomFixture struct {
	rooms    *RoomCoordinator
	chats    *memChatRepo
	messages *memMessageRepo
	cache    *fakeCache
	broker   *recordingBroker
}

func newRoomFixture() *roomFixture {
	chats := newMemChatRepo()
	messages := newMemMessageRepo()
	cache := newFakeCache()
	broker := &recordingBroker{}
	repos := &repository.Repositories{
		Chat:    chats,
		Message: messages,
		User:    newMemUserRepo(),
	}
	return &roomFixture{
		rooms:    NewRoomCoordinator(repos, cache, broker),
		chats:    chats,
		messages: messages,
		cache:    cache,
		broker:   broker,
	}
}

func (f *roomFixture) addChat(chatId, userOne, userTwo string) {
	_ = f.chats.CreateChat(&model.Chat{Uuid: chatId, UserOneId: userOne, UserTwoId: userTwo})
}

func newTestSession(connId, userId string) (*Session, *fakeConn) {
	conn := newFakeConn(connId)
	return NewSession(conn, userId), conn
}

func TestJoinAddsRoomMembership(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, conn := newTestSession("s1", "alice")

	rsp, err := f.rooms.Join(sess, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if rsp.ChatId != "c1" {
		t.Errorf("chatId = %s, want c1", rsp.ChatId)
	}
	if !conn.inRoom(ChatRoom("c1")) {
		t.Error("connection should be in chat room after join")
	}
}

func TestJoinMergesNotFoundAndDenied(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")

	// 会话不存在与非参与者必须返回同一错误文案，防止探测
	sess, _ := newTestSession("s1", "mallory")
	for _, chatId := range []string{"ghost", "c1"} {
		_, err := f.rooms.Join(sess, chatId)
		if err == nil {
			t.Fatalf("join %s should fail", chatId)
		}
		if err.Error() != "chat not found or access denied" {
			t.Errorf("join %s error = %q, want merged message", chatId, err.Error())
		}
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, conn := newTestSession("s1", "alice")

	if _, err := f.rooms.Join(sess, "c1"); err != nil {
		t.Fatal(err)
	}
	f.rooms.Leave(sess, "c1")
	if conn.inRoom(ChatRoom("c1")) {
		t.Error("connection should have left chat room")
	}
	// 再次离开以及离开从未加入的房间都不报错
	f.rooms.Leave(sess, "c1")
	f.rooms.Leave(sess, "never-joined")
}

func TestSendMessagePersistsThenBroadcasts(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, _ := newTestSession("s1", "alice")

	rsp, err := f.rooms.SendMessage(context.Background(), sess, "c1", "", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if rsp.Type != model.MessageTypeText {
		t.Errorf("type = %s, want default text", rsp.Type)
	}
	if rsp.SenderId != "alice" || rsp.ChatId != "c1" || rsp.IsRead {
		t.Errorf("unexpected respond: %+v", rsp)
	}

	// 已持久化
	msgUuid, err := strconv.ParseInt(rsp.MessageId, 10, 64)
	if err != nil {
		t.Fatalf("messageId %q is not a snowflake id", rsp.MessageId)
	}
	if _, err := f.messages.FindByUuid(msgUuid); err != nil {
		t.Fatal("message should be persisted before broadcast:", err)
	}

	// 已广播到会话房间
	last := f.broker.last()
	if last == nil {
		t.Fatal("expected a broadcast")
	}
	if last.room != ChatRoom("c1") || last.event != EventMessageNew {
		t.Errorf("broadcast to %s/%s, want %s/%s", last.room, last.event, ChatRoom("c1"), EventMessageNew)
	}

	// 消息列表缓存已追加
	if !f.cache.has(constants.CHAT_MESSAGELIST_PREFIX + "c1") {
		t.Error("message list cache should be populated")
	}
}

func TestSendMessageValidatesType(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, _ := newTestSession("s1", "alice")
	ctx := context.Background()

	rsp, err := f.rooms.SendMessage(ctx, sess, "c1", model.MessageTypeImage, "https://cdn/img.png")
	if err != nil {
		t.Fatal(err)
	}
	if rsp.Type != model.MessageTypeImage {
		t.Errorf("type = %s, want image", rsp.Type)
	}

	before := len(f.broker.all())
	if _, err := f.rooms.SendMessage(ctx, sess, "c1", "video", "x"); err == nil {
		t.Fatal("unknown message type should be rejected")
	} else if err.Error() != "invalid request payload" {
		t.Errorf("error = %q, want invalid request payload", err.Error())
	}
	if len(f.broker.all()) != before {
		t.Error("rejected send must not broadcast")
	}
}

func TestSendMessageRebuildsCacheOnMiss(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, _ := newTestSession("s1", "alice")
	ctx := context.Background()
	key := constants.CHAT_MESSAGELIST_PREFIX + "c1"

	first, err := f.rooms.SendMessage(ctx, sess, "c1", "text", "hello")
	if err != nil {
		t.Fatal(err)
	}
	// 模拟缓存被淘汰，下一次发送应从 MySQL 整表重建
	_ = f.cache.Delete(ctx, key)

	second, err := f.rooms.SendMessage(ctx, sess, "c1", "text", "world")
	if err != nil {
		t.Fatal(err)
	}

	var list []respond.MessageRespond
	if err := json.Unmarshal([]byte(f.cache.valueOf(key)), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("rebuilt cache has %d messages, want 2", len(list))
	}
	if list[0].MessageId != first.MessageId || list[1].MessageId != second.MessageId {
		t.Errorf("rebuilt cache order wrong: %+v", list)
	}
}

func TestSendMessageDeniedForNonParticipant(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, _ := newTestSession("s1", "mallory")

	if _, err := f.rooms.SendMessage(context.Background(), sess, "c1", "text", "hi"); err == nil {
		t.Fatal("non-participant should not send")
	} else if err.Error() != "chat not found or access denied" {
		t.Errorf("error = %q, want merged message", err.Error())
	}
	if len(f.broker.all()) != 0 {
		t.Error("denied send must not broadcast")
	}
}

func TestTypingBroadcastsToChatRoom(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sess, _ := newTestSession("s1", "alice")

	if err := f.rooms.Typing(context.Background(), sess, "c1", true); err != nil {
		t.Fatal(err)
	}
	last := f.broker.last()
	if last.room != ChatRoom("c1") || last.event != EventTypingBroadcast {
		t.Errorf("typing broadcast to %s/%s", last.room, last.event)
	}
	event := last.payload.(respond.TypingEvent)
	if event.UserId != "alice" || !event.IsTyping {
		t.Errorf("unexpected typing event: %+v", event)
	}
}

func TestMarkReadReceiptTargetsSenderRoom(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sender, _ := newTestSession("s1", "alice")

	rsp, err := f.rooms.SendMessage(context.Background(), sender, "c1", "text", "hi")
	if err != nil {
		t.Fatal(err)
	}

	reader, _ := newTestSession("s2", "bob")
	if err := f.rooms.MarkRead(context.Background(), reader, rsp.MessageId); err != nil {
		t.Fatal(err)
	}

	// 回执只投递到发送方的用户房间，不进会话房间
	last := f.broker.last()
	if last.room != UserRoom("alice") || last.event != EventMessageReadAck {
		t.Errorf("receipt to %s/%s, want %s/%s", last.room, last.event, UserRoom("alice"), EventMessageReadAck)
	}
	event := last.payload.(respond.MessageReadEvent)
	if event.ReadBy != "bob" || event.MessageId != rsp.MessageId {
		t.Errorf("unexpected read event: %+v", event)
	}

	msgUuid, _ := strconv.ParseInt(rsp.MessageId, 10, 64)
	message, _ := f.messages.FindByUuid(msgUuid)
	if !message.IsRead {
		t.Error("message should be marked read")
	}

	// 重复标记为幂等空操作，回执照常发出
	before := len(f.broker.all())
	if err := f.rooms.MarkRead(context.Background(), reader, rsp.MessageId); err != nil {
		t.Fatal(err)
	}
	if len(f.broker.all()) != before+1 {
		t.Error("repeated mark-read should still emit a receipt")
	}
}

func TestMarkReadDeniedForOutsider(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sender, _ := newTestSession("s1", "alice")
	rsp, err := f.rooms.SendMessage(context.Background(), sender, "c1", "text", "hi")
	if err != nil {
		t.Fatal(err)
	}

	outsider, _ := newTestSession("s3", "mallory")
	if err := f.rooms.MarkRead(context.Background(), outsider, rsp.MessageId); err == nil {
		t.Fatal("outsider should not mark read")
	} else if err.Error() != "access denied" {
		t.Errorf("error = %q, want access denied", err.Error())
	}
}

func TestMarkReadUnknownMessage(t *testing.T) {
	f := newRoomFixture()
	sess, _ := newTestSession("s1", "alice")
	if err := f.rooms.MarkRead(context.Background(), sess, "999"); err == nil {
		t.Fatal("unknown message should fail")
	} else if err.Error() != "message not found" {
		t.Errorf("error = %q, want message not found", err.Error())
	}
	// 非数字 ID 同样视为不存在
	if err := f.rooms.MarkRead(context.Background(), sess, "not-a-number"); err == nil || err.Error() != "message not found" {
		t.Errorf("non-numeric id should report message not found, got %v", err)
	}
}

func TestDeleteMergesNotFoundAndNotSender(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sender, _ := newTestSession("s1", "alice")
	rsp, err := f.rooms.SendMessage(context.Background(), sender, "c1", "text", "hi")
	if err != nil {
		t.Fatal(err)
	}

	// 不存在的消息与他人的消息必须返回同一错误文案
	other, _ := newTestSession("s2", "bob")
	for _, messageId := range []string{"424242", rsp.MessageId} {
		err := f.rooms.Delete(context.Background(), other, messageId)
		if err == nil {
			t.Fatalf("delete %s should fail", messageId)
		}
		if err.Error() != "message not found or you are not the sender" {
			t.Errorf("delete %s error = %q, want merged message", messageId, err.Error())
		}
	}
}

func TestDeleteBroadcastsToChatRoom(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	sender, _ := newTestSession("s1", "alice")
	rsp, err := f.rooms.SendMessage(context.Background(), sender, "c1", "text", "hi")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.rooms.Delete(context.Background(), sender, rsp.MessageId); err != nil {
		t.Fatal(err)
	}
	last := f.broker.last()
	if last.room != ChatRoom("c1") || last.event != EventMessageDeleted {
		t.Errorf("delete broadcast to %s/%s", last.room, last.event)
	}

	msgUuid, _ := strconv.ParseInt(rsp.MessageId, 10, 64)
	if _, err := f.messages.FindByUuid(msgUuid); err == nil {
		t.Error("message should be removed")
	}
	// 删除后消息列表缓存失效
	if f.cache.has(constants.CHAT_MESSAGELIST_PREFIX + "c1") {
		t.Error("message list cache should be invalidated")
	}
}

func TestUnreadCountExcludesOwnAndRead(t *testing.T) {
	f := newRoomFixture()
	f.addChat("c1", "alice", "bob")
	f.addChat("c2", "alice", "carol")
	alice, _ := newTestSession("s1", "alice")
	bob, _ := newTestSession("s2", "bob")
	carol, _ := newTestSession("s3", "carol")

	// bob 发两条，carol 发一条，alice 自己发一条
	first, _ := f.rooms.SendMessage(context.Background(), bob, "c1", "text", "1")
	_, _ = f.rooms.SendMessage(context.Background(), bob, "c1", "text", "2")
	_, _ = f.rooms.SendMessage(context.Background(), carol, "c2", "text", "3")
	_, _ = f.rooms.SendMessage(context.Background(), alice, "c1", "text", "4")

	rsp, err := f.rooms.UnreadCount(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if rsp.UnreadCount != 3 {
		t.Errorf("unread = %d, want 3", rsp.UnreadCount)
	}

	// 读掉一条后计数下降
	if err := f.rooms.MarkRead(context.Background(), alice, first.MessageId); err != nil {
		t.Fatal(err)
	}
	rsp, _ = f.rooms.UnreadCount(context.Background(), "alice")
	if rsp.UnreadCount != 2 {
		t.Errorf("unread after read = %d, want 2", rsp.UnreadCount)
	}
}
