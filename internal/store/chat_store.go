package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"vibechat-service/internal/models"
	"vibechat-service/internal/observability"
)

const (
	// TempIDPrefix marks locally generated message ids awaiting confirmation.
	TempIDPrefix = "temp-"

	DefaultPageSize   = 50
	profileFetchLimit = 8
	outboxSize        = 256
	lookupTimeout     = 10 * time.Second
)

// SendInput is an outgoing message.
type SendInput struct {
	ChatID    string             `json:"-"`
	Content   string             `json:"content"`
	Type      models.MessageType `json:"type"`
	MediaURL  string             `json:"mediaUrl"`
	ReplyToID string             `json:"replyToId"`
}

type ChatStoreConfig struct {
	UserID   string
	PageSize int
	Chats    ChatService
	Messages MessageService
	Profiles ProfileService
	Feed     Feed
	Log      zerolog.Logger
}

// ChatStore is one signed-in user's view of their chats and messages. It owns
// optimistic sends and merges the realtime insert feed into local state.
type ChatStore struct {
	userID   string
	pageSize int
	chats    ChatService
	messages MessageService
	profiles ProfileService
	feed     Feed
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string

	mu          sync.Mutex
	chatList    []models.Chat
	members     map[string]struct{}
	msgs        map[string][]models.Message
	loaded      map[string]bool
	profileMap  map[string]models.Profile
	unsubscribe func()
	observers   map[int]func(models.StoreEvent)
	nextObs     int
	outbox      chan []models.StoreEvent
	done        chan struct{}
	lookups     map[string][]models.MessageRow
	outsiders   map[string]struct{}
}

func NewChatStore(cfg ChatStoreConfig) *ChatStore {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ChatStore{
		userID:     cfg.UserID,
		pageSize:   pageSize,
		chats:      cfg.Chats,
		messages:   cfg.Messages,
		profiles:   cfg.Profiles,
		feed:       cfg.Feed,
		log:        cfg.Log.With().Str("component", "chat_store").Str("user_id", cfg.UserID).Logger(),
		now:        time.Now,
		newID:      uuid.NewString,
		members:    map[string]struct{}{},
		msgs:       map[string][]models.Message{},
		loaded:     map[string]bool{},
		profileMap: map[string]models.Profile{},
		observers:  map[int]func(models.StoreEvent){},
		lookups:    map[string][]models.MessageRow{},
		outsiders:  map[string]struct{}{},
	}
}

func (s *ChatStore) UserID() string { return s.userID }

// Start loads the chat list and subscribes to the insert feed. Once started,
// observers run on the store's own dispatch goroutine in publish order.
// Calling it again is a no-op for the subscription.
func (s *ChatStore) Start(ctx context.Context) {
	s.mu.Lock()
	if s.outbox == nil {
		s.outbox = make(chan []models.StoreEvent, outboxSize)
		s.done = make(chan struct{})
		go s.dispatch(s.outbox, s.done)
	}
	if s.unsubscribe == nil && s.feed != nil {
		s.unsubscribe = s.feed.Subscribe(s.HandleInsert)
	}
	s.mu.Unlock()
	s.RefreshChats(ctx)
}

// Stop drops the feed subscription and all observers. Queued events that
// have not been dispatched yet are discarded.
func (s *ChatStore) Stop() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.observers = map[int]func(models.StoreEvent){}
	if s.done != nil {
		close(s.done)
	}
	s.outbox, s.done = nil, nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *ChatStore) dispatch(outbox <-chan []models.StoreEvent, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case events := <-outbox:
			s.deliver(events)
		}
	}
}

// OnChange registers fn for store events and returns its removal func.
func (s *ChatStore) OnChange(fn func(models.StoreEvent)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// publish must be called without s.mu held.
// publish hands events to the dispatch goroutine without waiting for
// observers. A full queue drops the batch. Before Start, observers run inline.
func (s *ChatStore) publish(events ...models.StoreEvent) {
	s.mu.Lock()
	outbox, done := s.outbox, s.done
	s.mu.Unlock()
	if outbox == nil {
		s.deliver(events)
		return
	}
	select {
	case outbox <- events:
	case <-done:
	default:
		observability.IncRealtimeEvent("observer_overflow")
		s.log.Warn().Int("events", len(events)).Msg("observer queue full, events dropped")
	}
}

func (s *ChatStore) deliver(events []models.StoreEvent) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(models.StoreEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	s.mu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// RefreshChats reloads the chat list, fetches profiles for participants not
// seen yet and updates the membership set used to filter the feed.
func (s *ChatStore) RefreshChats(ctx context.Context) {
	ctx, span := observability.Tracer().Start(ctx, "chat_store.refresh")
	defer span.End()

	fetched := s.chats.GetChats(ctx, s.userID)

	s.mu.Lock()
	missing := s.missingProfilesLocked(fetched)
	s.mu.Unlock()

	profiles := fetchProfiles(ctx, s.profiles, missing)

	s.mu.Lock()
	prev := make(map[string]models.Chat, len(s.chatList))
	for _, c := range s.chatList {
		prev[c.ID] = c
	}
	for i := range fetched {
		old, ok := prev[fetched[i].ID]
		if !ok {
			continue
		}
		fetched[i].UnreadCount = old.UnreadCount
		if old.LastMessage != nil && (fetched[i].LastMessage == nil || old.LastMessage.Timestamp.After(fetched[i].LastMessage.Timestamp)) {
			fetched[i].LastMessage = old.LastMessage
		}
		if old.UpdatedAt.After(fetched[i].UpdatedAt) {
			fetched[i].UpdatedAt = old.UpdatedAt
		}
	}
	s.chatList = fetched
	sortChats(s.chatList)
	s.syncMembersLocked()
	s.outsiders = map[string]struct{}{}
	for id, p := range profiles {
		s.profileMap[id] = p
	}
	span.SetAttributes(attribute.Int("chats", len(s.chatList)))
	snapshot := s.chatsLocked()
	s.mu.Unlock()

	s.publish(models.StoreEvent{Type: models.EventChatsUpdated, Chats: snapshot})
}

// LoadMessages returns the newest page of a chat. The first call fetches from
// the backend; entries already added by sends or the feed are kept.
func (s *ChatStore) LoadMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	s.mu.Lock()
	if _, ok := s.members[chatID]; !ok {
		s.mu.Unlock()
		return nil, ErrUnknownChat
	}
	if s.loaded[chatID] {
		out := cloneMessages(s.msgs[chatID])
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	fetched := s.messages.GetMessages(ctx, chatID, s.pageSize)

	s.mu.Lock()
	s.msgs[chatID] = mergeHistory(s.msgs[chatID], fetched)
	s.loaded[chatID] = true
	out := cloneMessages(s.msgs[chatID])
	s.mu.Unlock()

	s.publish(models.StoreEvent{Type: models.EventMessagesLoaded, ChatID: chatID, Messages: out})
	return out, nil
}

// SendMessage shows the message immediately as pending, persists it and then
// reconciles the placeholder with the stored row by client id. On failure
// the placeholder is removed.
func (s *ChatStore) SendMessage(ctx context.Context, in SendInput) (models.Message, error) {
	msgType := in.Type
	if msgType == "" {
		msgType = models.MessageText
	}
	if !msgType.Valid() {
		return models.Message{}, ErrInvalidType
	}
	content := strings.TrimSpace(in.Content)
	if content == "" && in.MediaURL == "" {
		return models.Message{}, ErrEmptyMessage
	}

	clientID := s.newID()
	ctx, span := observability.Tracer().Start(ctx, "chat_store.send")
	defer span.End()
	span.SetAttributes(attribute.String("chat_id", in.ChatID), attribute.String("client_id", clientID))

	pending := models.Message{
		ID:        TempIDPrefix + clientID,
		ChatID:    in.ChatID,
		SenderID:  s.userID,
		ClientID:  clientID,
		Content:   content,
		Type:      msgType,
		MediaURL:  in.MediaURL,
		ReplyToID: in.ReplyToID,
		Timestamp: s.now(),
		State:     models.StatePending,
	}

	s.mu.Lock()
	idx := s.chatIndexLocked(in.ChatID)
	if idx < 0 {
		s.mu.Unlock()
		return models.Message{}, ErrUnknownChat
	}
	prevLast := s.chatList[idx].LastMessage
	prevUpdated := s.chatList[idx].UpdatedAt
	s.msgs[in.ChatID] = append([]models.Message{pending}, s.msgs[in.ChatID]...)
	last := pending
	s.chatList[idx].LastMessage = &last
	if pending.Timestamp.After(s.chatList[idx].UpdatedAt) {
		s.chatList[idx].UpdatedAt = pending.Timestamp
	}
	sortChats(s.chatList)
	snapshot := s.chatsLocked()
	s.mu.Unlock()

	s.publish(
		models.StoreEvent{Type: models.EventMessageUpserted, ChatID: in.ChatID, Message: &pending},
		models.StoreEvent{Type: models.EventChatsUpdated, Chats: snapshot},
	)

	if !s.messages.SendMessage(ctx, pending) {
		s.discard(pending, prevLast, prevUpdated)
		observability.IncMessageSend("discarded")
		return models.Message{}, ErrSendFailed
	}
	observability.IncMessageSend("sent")

	stored, ok := s.messages.GetByClientID(ctx, in.ChatID, clientID)
	if !ok {
		// The feed confirms the placeholder when the insert arrives.
		return pending, nil
	}
	confirmed, _ := s.apply(stored, "fetch_back")
	return confirmed, nil
}

// discard removes a failed placeholder and rolls the chat preview back.
func (s *ChatStore) discard(pending models.Message, prevLast *models.Message, prevUpdated time.Time) {
	s.mu.Lock()
	list := s.msgs[pending.ChatID]
	for i, m := range list {
		if m.ID == pending.ID {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	s.msgs[pending.ChatID] = list

	if idx := s.chatIndexLocked(pending.ChatID); idx >= 0 {
		chat := &s.chatList[idx]
		if chat.LastMessage != nil && chat.LastMessage.ID == pending.ID {
			chat.LastMessage = prevLast
			if len(list) > 0 && (prevLast == nil || list[0].Timestamp.After(prevLast.Timestamp)) {
				newest := list[0]
				chat.LastMessage = &newest
			}
		}
		if chat.UpdatedAt.Equal(pending.Timestamp) {
			chat.UpdatedAt = prevUpdated
		}
		sortChats(s.chatList)
	}
	snapshot := s.chatsLocked()
	s.mu.Unlock()

	s.publish(
		models.StoreEvent{Type: models.EventMessageDiscarded, ChatID: pending.ChatID, MessageID: pending.ID},
		models.StoreEvent{Type: models.EventChatsUpdated, Chats: snapshot},
	)
}

// HandleInsert merges a change-feed insert. A row for a chat outside the
// membership set triggers one background participant lookup for that chat;
// rows arriving meanwhile are held and applied after a confirming refresh.
// Chats the lookup rejects are ignored until the next RefreshChats.
func (s *ChatStore) HandleInsert(row models.MessageRow) {
	s.mu.Lock()
	if _, member := s.members[row.ChatID]; member {
		s.mu.Unlock()
		s.apply(models.MessageFromRow(row), "realtime")
		return
	}
	if _, outside := s.outsiders[row.ChatID]; outside {
		s.mu.Unlock()
		observability.IncRealtimeEvent("filtered")
		return
	}
	held, inFlight := s.lookups[row.ChatID]
	s.lookups[row.ChatID] = append(held, row)
	s.mu.Unlock()
	if !inFlight {
		go s.resolveUnknownChat(row.ChatID)
	}
}

func (s *ChatStore) resolveUnknownChat(chatID string) {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	ctx, span := observability.Tracer().Start(ctx, "chat_store.resolve_chat")
	defer span.End()

	joined := s.chats.IsParticipant(ctx, chatID, s.userID)
	if joined {
		s.log.Info().Str("chat_id", chatID).Msg("insert for unseen chat, refreshing chat list")
		s.RefreshChats(ctx)
	}

	s.mu.Lock()
	rows := s.lookups[chatID]
	delete(s.lookups, chatID)
	_, member := s.members[chatID]
	if !member {
		s.outsiders[chatID] = struct{}{}
	}
	s.mu.Unlock()

	if !member {
		for range rows {
			observability.IncRealtimeEvent("filtered")
		}
		return
	}
	for _, row := range rows {
		s.apply(models.MessageFromRow(row), "realtime")
	}
}

type applyResult int

const (
	applyInserted applyResult = iota
	applyReplaced
	applyDuplicate
)

// apply merges a confirmed message. A known server id is a duplicate; a
// pending entry with the same client id is replaced in place.
func (s *ChatStore) apply(msg models.Message, path string) (models.Message, applyResult) {
	s.mu.Lock()
	list := s.msgs[msg.ChatID]
	byID, byClient := -1, -1
	for i, m := range list {
		if m.ID == msg.ID {
			byID = i
		}
		if msg.ClientID != "" && m.ClientID == msg.ClientID && m.IsPending() {
			byClient = i
		}
	}

	var result applyResult
	switch {
	case byID >= 0:
		result = applyDuplicate
		if byClient >= 0 {
			list = append(list[:byClient:byClient], list[byClient+1:]...)
		}
	case byClient >= 0:
		result = applyReplaced
		list[byClient] = msg
	default:
		result = applyInserted
		list = append([]models.Message{msg}, list...)
	}
	s.msgs[msg.ChatID] = list

	if idx := s.chatIndexLocked(msg.ChatID); idx >= 0 {
		chat := &s.chatList[idx]
		last := chat.LastMessage
		if last == nil || last.ID == msg.ID || (msg.ClientID != "" && last.ClientID == msg.ClientID) || !msg.Timestamp.Before(last.Timestamp) {
			m := msg
			chat.LastMessage = &m
		}
		if msg.Timestamp.After(chat.UpdatedAt) {
			chat.UpdatedAt = msg.Timestamp
		}
		if path == "realtime" && result == applyInserted && msg.SenderID != s.userID {
			chat.UnreadCount++
		}
		sortChats(s.chatList)
	}
	snapshot := s.chatsLocked()
	s.mu.Unlock()

	switch result {
	case applyDuplicate:
		observability.IncReconciled("duplicate")
		if byClient < 0 {
			return msg, result
		}
		s.publish(models.StoreEvent{Type: models.EventMessageDiscarded, ChatID: msg.ChatID, MessageID: TempIDPrefix + msg.ClientID})
		return msg, result
	case applyReplaced:
		observability.IncReconciled(path)
	}
	if path == "realtime" {
		observability.IncRealtimeEvent("applied")
	}
	s.publish(
		models.StoreEvent{Type: models.EventMessageUpserted, ChatID: msg.ChatID, Message: &msg},
		models.StoreEvent{Type: models.EventChatsUpdated, Chats: snapshot},
	)
	return msg, result
}

// MarkAsRead clears the local unread counter.
func (s *ChatStore) MarkAsRead(chatID string) error {
	s.mu.Lock()
	idx := s.chatIndexLocked(chatID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownChat
	}
	if s.chatList[idx].UnreadCount == 0 {
		s.mu.Unlock()
		return nil
	}
	s.chatList[idx].UnreadCount = 0
	snapshot := s.chatsLocked()
	s.mu.Unlock()

	s.publish(models.StoreEvent{Type: models.EventChatsUpdated, Chats: snapshot})
	return nil
}

// CreateGroup creates a group chat administered by the current user and
// reloads the chat list.
func (s *ChatStore) CreateGroup(ctx context.Context, name, description string, memberIDs []string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrGroupNameRequired
	}
	seen := map[string]struct{}{s.userID: {}}
	others := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		others = append(others, id)
	}
	if len(others) == 0 {
		return "", ErrGroupNeedsMembers
	}

	id, ok := s.chats.CreateGroup(ctx, models.NewGroup{
		Name:        name,
		Description: strings.TrimSpace(description),
		AdminID:     s.userID,
		MemberIDs:   others,
	})
	if !ok {
		return "", ErrGroupCreateFailed
	}
	s.RefreshChats(ctx)
	return id, nil
}

// ToggleReaction applies the user's emoji to a confirmed message.
func (s *ChatStore) ToggleReaction(ctx context.Context, chatID, messageID, emoji string) (models.Message, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return models.Message{}, ErrEmptyEmoji
	}
	if !s.IsMember(chatID) {
		return models.Message{}, ErrUnknownChat
	}
	if strings.HasPrefix(messageID, TempIDPrefix) {
		return models.Message{}, ErrReactionFailed
	}

	updated, ok := s.messages.ToggleReaction(ctx, chatID, messageID, s.userID, emoji)
	if !ok {
		return models.Message{}, ErrReactionFailed
	}

	s.mu.Lock()
	list := s.msgs[chatID]
	for i := range list {
		if list[i].ID == updated.ID {
			list[i] = updated
			break
		}
	}
	if idx := s.chatIndexLocked(chatID); idx >= 0 {
		if last := s.chatList[idx].LastMessage; last != nil && last.ID == updated.ID {
			m := updated
			s.chatList[idx].LastMessage = &m
		}
	}
	s.mu.Unlock()

	s.publish(models.StoreEvent{Type: models.EventMessageUpserted, ChatID: chatID, Message: &updated})
	return updated, nil
}

// SetLocked persists the per-user lock flag of a chat.
func (s *ChatStore) SetLocked(ctx context.Context, chatID string, locked bool) error {
	if !s.IsMember(chatID) {
		return ErrUnknownChat
	}
	if !s.chats.ToggleLockChat(ctx, chatID, s.userID, locked) {
		return ErrLockFailed
	}

	s.mu.Lock()
	if idx := s.chatIndexLocked(chatID); idx >= 0 {
		s.chatList[idx].IsLocked = locked
	}
	snapshot := s.chatsLocked()
	s.mu.Unlock()

	s.publish(models.StoreEvent{Type: models.EventChatsUpdated, Chats: snapshot})
	return nil
}

// IsLocked reports the lock flag of a chat and whether the chat is known.
func (s *ChatStore) IsLocked(chatID string) (locked, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.chatIndexLocked(chatID)
	if idx < 0 {
		return false, false
	}
	return s.chatList[idx].IsLocked, true
}

func (s *ChatStore) IsMember(chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[chatID]
	return ok
}

// Chats returns a copy of the chat list, most recent first.
func (s *ChatStore) Chats() []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatsLocked()
}

func (s *ChatStore) Chat(chatID string) (models.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.chatIndexLocked(chatID)
	if idx < 0 {
		return models.Chat{}, false
	}
	return cloneChat(s.chatList[idx]), true
}

// Messages returns the locally held messages of a chat, newest first.
func (s *ChatStore) Messages(chatID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.msgs[chatID])
}

// Profiles returns the participant profiles fetched so far.
func (s *ChatStore) Profiles() map[string]models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.Profile, len(s.profileMap))
	for id, p := range s.profileMap {
		out[id] = p
	}
	return out
}

func (s *ChatStore) chatIndexLocked(chatID string) int {
	for i := range s.chatList {
		if s.chatList[i].ID == chatID {
			return i
		}
	}
	return -1
}

func (s *ChatStore) chatsLocked() []models.Chat {
	out := make([]models.Chat, len(s.chatList))
	for i, c := range s.chatList {
		out[i] = cloneChat(c)
	}
	return out
}

func (s *ChatStore) missingProfilesLocked(chats []models.Chat) []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, c := range chats {
		for _, id := range c.Participants {
			if id == s.userID {
				continue
			}
			if _, ok := s.profileMap[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// syncMembersLocked updates the membership set in place: chats that left the
// list are dropped, new ones are added.
func (s *ChatStore) syncMembersLocked() {
	current := make(map[string]struct{}, len(s.chatList))
	for _, c := range s.chatList {
		current[c.ID] = struct{}{}
		s.members[c.ID] = struct{}{}
	}
	for id := range s.members {
		if _, ok := current[id]; !ok {
			delete(s.members, id)
			delete(s.msgs, id)
			delete(s.loaded, id)
		}
	}
}

// fetchProfiles loads profiles concurrently. Profiles that fail to load are
// left out.
func fetchProfiles(ctx context.Context, svc ProfileService, ids []string) map[string]models.Profile {
	out := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 || svc == nil {
		return out
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFetchLimit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			p, ok := svc.GetProfile(gctx, id)
			if ok {
				mu.Lock()
				out[id] = p
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// mergeHistory appends fetched (older) messages after the current ones,
// skipping known ids and confirming pending entries by client id.
func mergeHistory(current, fetched []models.Message) []models.Message {
	out := make([]models.Message, 0, len(current)+len(fetched))
	out = append(out, current...)
	ids := make(map[string]struct{}, len(out))
	pending := map[string]int{}
	for i, m := range out {
		ids[m.ID] = struct{}{}
		if m.IsPending() && m.ClientID != "" {
			pending[m.ClientID] = i
		}
	}
	for _, m := range fetched {
		if _, ok := ids[m.ID]; ok {
			continue
		}
		if i, ok := pending[m.ClientID]; ok && m.ClientID != "" {
			out[i] = m
			delete(pending, m.ClientID)
			ids[m.ID] = struct{}{}
			continue
		}
		ids[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// sortChats orders chats by last activity, most recent first.
func sortChats(chats []models.Chat) {
	sort.SliceStable(chats, func(i, j int) bool {
		if !chats[i].UpdatedAt.Equal(chats[j].UpdatedAt) {
			return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
		}
		return chats[i].ID < chats[j].ID
	})
}

func cloneChat(c models.Chat) models.Chat {
	c.Participants = append([]string(nil), c.Participants...)
	if c.LastMessage != nil {
		m := *c.LastMessage
		c.LastMessage = &m
	}
	return c
}

func cloneMessages(in []models.Message) []models.Message {
	out := make([]models.Message, len(in))
	copy(out, in)
	return out
}
