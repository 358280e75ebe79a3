package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"yuanfen_chat_server/internal/model"
	"yuanfen_chat_server/pkg/errorx"
)

// ==================== 连接伪实现 ====================

type emittedEvent struct {
	event string
	args  []any
}

// fakeConn 内存版 SocketConn，记录发出的事件和房间变更
type fakeConn struct {
	id      string
	mu      sync.Mutex
	emitted []emittedEvent
	rooms   map[string]bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, rooms: make(map[string]bool)}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emitted = append(c.emitted, emittedEvent{event: event, args: args})
	return nil
}

func (c *fakeConn) Join(room string)  { c.mu.Lock(); c.rooms[room] = true; c.mu.Unlock() }
func (c *fakeConn) Leave(room string) { c.mu.Lock(); delete(c.rooms, room); c.mu.Unlock() }

func (c *fakeConn) inRoom(room string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[room]
}

// ==================== 广播器伪实现 ====================

type broadcastRecord struct {
	room    string
	event   string
	payload any
}

// recordingBroker 记录所有 Broadcast 调用，不做真实投递
type recordingBroker struct {
	mu      sync.Mutex
	records []broadcastRecord
}

func (b *recordingBroker) Broadcast(_ context.Context, room, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, broadcastRecord{room: room, event: event, payload: payload})
	return nil
}

func (b *recordingBroker) Start() {}
func (b *recordingBroker) Close() {}

func (b *recordingBroker) all() []broadcastRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastRecord(nil), b.records...)
}

func (b *recordingBroker) last() *broadcastRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) == 0 {
		return nil
	}
	return &b.records[len(b.records)-1]
}

// ==================== 缓存伪实现 ====================

type cacheEntry struct {
	value string
	ttl   time.Duration
}

// fakeCache 内存版 AsyncCacheService，SubmitTask 同步执行
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]cacheEntry)}
}

func (c *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (c *fakeCache) GetOrError(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", errorx.New(errorx.CodeNotFound, "key not found")
	}
	return entry.value, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[key]; ok {
		entry.ttl = ttl
		c.entries[key] = entry
	}
	return nil
}

func (c *fakeCache) ExistsBatch(_ context.Context, keys []string) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]bool, len(keys))
	for i, key := range keys {
		_, result[i] = c.entries[key]
	}
	return result, nil
}

func (c *fakeCache) ScanByPrefix(_ context.Context, prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (c *fakeCache) SubmitTask(action func()) { action() }

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *fakeCache) ttlOf(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key].ttl
}

func (c *fakeCache) valueOf(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key].value
}

// ==================== Repository 伪实现 ====================

type memChatRepo struct {
	mu    sync.Mutex
	chats map[string]*model.Chat
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{chats: make(map[string]*model.Chat)}
}

func (r *memChatRepo) FindByUuid(uuid string) (*model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[uuid]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "chat not found")
	}
	cloned := *chat
	return &cloned, nil
}

func (r *memChatRepo) FindByParticipant(userUuid string) ([]model.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var chats []model.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userUuid) {
			chats = append(chats, *chat)
		}
	}
	return chats, nil
}

func (r *memChatRepo) CreateChat(chat *model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[chat.Uuid] = chat
	return nil
}

func (r *memChatRepo) TouchLastMessageAt(uuid string) error {
	return nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages map[int64]*model.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[int64]*model.Message)}
}

func (r *memMessageRepo) FindByUuid(uuid int64) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[uuid]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "message not found")
	}
	cloned := *message
	return &cloned, nil
}

func (r *memMessageRepo) FindByChatId(chatId string) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []model.Message
	for _, message := range r.messages {
		if message.ChatId == chatId {
			messages = append(messages, *message)
		}
	}
	// 雪花 id 单调递增，按 id 升序即按时间升序
	sort.Slice(messages, func(i, j int) bool { return messages[i].Uuid < messages[j].Uuid })
	return messages, nil
}

func (r *memMessageRepo) Create(message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.CreatedAt = time.Now()
	r.messages[message.Uuid] = message
	return nil
}

func (r *memMessageRepo) MarkRead(uuid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[uuid]
	if !ok {
		return errorx.New(errorx.CodeNotFound, "message not found")
	}
	message.IsRead = true
	return nil
}

func (r *memMessageRepo) Delete(uuid int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, uuid)
	return nil
}

func (r *memMessageRepo) CountUnread(chatIds []string, excludeSendId string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inSet := make(map[string]bool, len(chatIds))
	for _, id := range chatIds {
		inSet[id] = true
	}
	var count int64
	for _, message := range r.messages {
		if inSet[message.ChatId] && !message.IsRead && message.SendId != excludeSendId {
			count++
		}
	}
	return count, nil
}

type memUserRepo struct {
	users map[string]*model.UserInfo
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.UserInfo)}
}

func (r *memUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	user, ok := r.users[uuid]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "user not found")
	}
	return user, nil
}

func (r *memUserRepo) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	var users []model.UserInfo
	for _, uuid := range uuids {
		if user, ok := r.users[uuid]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}
