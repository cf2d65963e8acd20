package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/dicebot/internal/apperrors"
	"github.com/example/dicebot/internal/core/customdice"
	"github.com/example/dicebot/internal/core/customparam"
	"github.com/example/dicebot/internal/core/interaction"
	"github.com/example/dicebot/internal/core/quickroll"
	"github.com/example/dicebot/internal/logging"
	"github.com/example/dicebot/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockConfigRepository implements secondary.ConfigRepository for testing.
type mockConfigRepository struct {
	mu        sync.Mutex
	configs   map[string]*secondary.ConfigRecord
	createErr error
	getErr    error
	saveCalls int
}

func newMockConfigRepository() *mockConfigRepository {
	return &mockConfigRepository{configs: make(map[string]*secondary.ConfigRecord)}
}

func (m *mockConfigRepository) Create(ctx context.Context, cfg *secondary.ConfigRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.configs[cfg.ID]; exists {
		return fmt.Errorf("configuration %s already exists", cfg.ID)
	}
	m.configs[cfg.ID] = cfg
	return nil
}

func (m *mockConfigRepository) SaveIfAbsent(ctx context.Context, cfg *secondary.ConfigRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if _, exists := m.configs[cfg.ID]; !exists {
		m.configs[cfg.ID] = cfg
	}
	return nil
}

func (m *mockConfigRepository) GetByID(ctx context.Context, id string) (*secondary.ConfigRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if cfg, ok := m.configs[id]; ok {
		return cfg, nil
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "configuration not found")
}

func (m *mockConfigRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[id]; !ok {
		return apperrors.New(apperrors.CodeNotFound, "configuration not found")
	}
	delete(m.configs, id)
	return nil
}

func (m *mockConfigRepository) List(ctx context.Context, filters secondary.ConfigFilters) ([]*secondary.ConfigRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*secondary.ConfigRecord
	for _, cfg := range m.configs {
		if filters.ChannelID != "" && cfg.ChannelID != filters.ChannelID {
			continue
		}
		if filters.CommandKind != "" && cfg.CommandKind != filters.CommandKind {
			continue
		}
		result = append(result, cfg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// mockMessageRepository implements secondary.MessageRepository for testing.
// It keeps the same live-uniqueness rules as the sqlite schema.
type mockMessageRepository struct {
	mu          sync.Mutex
	records     []*secondary.MessageRecord
	nextID      int64
	createCalls int
	createErr   error
	updateErr   error
	markErr     error
}

func newMockMessageRepository() *mockMessageRepository {
	return &mockMessageRepository{}
}

func (m *mockMessageRepository) liveLocked(channelID, messageID string) *secondary.MessageRecord {
	for _, r := range m.records {
		if r.ChannelID == channelID && r.MessageID == messageID && r.IsLive() {
			return r
		}
	}
	return nil
}

func (m *mockMessageRepository) Create(ctx context.Context, record *secondary.MessageRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return false, m.createErr
	}
	if m.liveLocked(record.ChannelID, record.MessageID) != nil {
		return false, nil
	}
	m.nextID++
	stored := *record
	stored.ID = m.nextID
	m.records = append(m.records, &stored)
	return true, nil
}

func (m *mockMessageRepository) GetByChannelMessage(ctx context.Context, channelID, messageID string) (*secondary.MessageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if live := m.liveLocked(channelID, messageID); live != nil {
		copied := *live
		return &copied, nil
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.ChannelID == channelID && r.MessageID == messageID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "message record not found")
}

func (m *mockMessageRepository) UpdateState(ctx context.Context, channelID, messageID string, state *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	live := m.liveLocked(channelID, messageID)
	if live == nil {
		return apperrors.New(apperrors.CodeNotFound, "no live record")
	}
	live.SerializedState = state
	return nil
}

func (m *mockMessageRepository) ListActiveMessageIDs(ctx context.Context, configID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, r := range m.records {
		if r.ConfigID == configID && r.IsLive() {
			ids = append(ids, r.MessageID)
		}
	}
	return ids, nil
}

func (m *mockMessageRepository) MarkDeleted(ctx context.Context, channelID, messageID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	if live := m.liveLocked(channelID, messageID); live != nil {
		deletedAt := at
		live.DeletedAt = &deletedAt
	}
	return nil
}

func (m *mockMessageRepository) PurgeDeleted(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	var purged int64
	for _, r := range m.records {
		if r.DeletedAt != nil && r.DeletedAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return purged, nil
}

// state returns the stored state of the live record, "" when none.
func (m *mockMessageRepository) state(channelID, messageID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if live := m.liveLocked(channelID, messageID); live != nil && live.SerializedState != nil {
		return *live.SerializedState
	}
	return ""
}

func (m *mockMessageRepository) isLive(channelID, messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveLocked(channelID, messageID) != nil
}

// chatMessage is a message held by mockChatAdapter.
type chatMessage struct {
	channelID string
	content   string
	rows      []secondary.ComponentRow
	pinned    bool
	system    bool
	createdAt time.Time
}

// mockChatAdapter implements secondary.ChatAdapter for testing. It scripts a
// channel in memory and records every call in order.
type mockChatAdapter struct {
	mu         sync.Mutex
	messages   map[string]*chatMessage
	calls      []string
	nextID     int
	now        time.Time
	sendErr    error
	deleteErr  error
	stateErr   error
	failSendOn map[string]bool // content -> fail
}

func newMockChatAdapter() *mockChatAdapter {
	return &mockChatAdapter{
		messages:   make(map[string]*chatMessage),
		nextID:     100,
		now:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		failSendOn: make(map[string]bool),
	}
}

// post places a message in the channel without recording a call.
func (m *mockChatAdapter) post(channelID, messageID string, pinned bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[messageID] = &chatMessage{channelID: channelID, pinned: pinned, createdAt: m.now.Add(-time.Minute)}
}

func (m *mockChatAdapter) SendMessage(ctx context.Context, channelID string, msg secondary.OutboundMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "send:"+channelID)
	if m.sendErr != nil || m.failSendOn[msg.Content] {
		return "", fmt.Errorf("send failed")
	}
	m.nextID++
	id := strconv.Itoa(m.nextID)
	m.messages[id] = &chatMessage{channelID: channelID, content: msg.Content, rows: msg.Rows, createdAt: m.now}
	return id, nil
}

func (m *mockChatAdapter) EditMessage(ctx context.Context, channelID, messageID string, msg secondary.OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "edit:"+messageID)
	existing, ok := m.messages[messageID]
	if !ok {
		return secondary.ErrMessageGone
	}
	existing.content = msg.Content
	existing.rows = msg.Rows
	return nil
}

func (m *mockChatAdapter) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete:"+messageID)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.messages[messageID]; !ok {
		return secondary.ErrMessageGone
	}
	delete(m.messages, messageID)
	return nil
}

func (m *mockChatAdapter) GetMessagesState(ctx context.Context, channelID string, messageIDs []string) ([]secondary.MessageState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "state")
	if m.stateErr != nil {
		return nil, m.stateErr
	}
	states := make([]secondary.MessageState, 0, len(messageIDs))
	for _, id := range messageIDs {
		msg, ok := m.messages[id]
		if !ok {
			states = append(states, secondary.MessageState{MessageID: id})
			continue
		}
		states = append(states, secondary.MessageState{MessageID: id, Exists: true, Pinned: msg.pinned, Deletable: !msg.system, CreatedAt: msg.createdAt})
	}
	return states, nil
}

func (m *mockChatAdapter) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockChatAdapter) exists(messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.messages[messageID]
	return ok
}

func (m *mockChatAdapter) contentOf(messageID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[messageID]; ok {
		return msg.content
	}
	return ""
}

// mockResponder implements secondary.Responder for testing. It writes origin
// updates through to the chat adapter so call order stays in one log.
type mockResponder struct {
	chat      *mockChatAdapter
	channelID string
	messageID string
	updates   []secondary.OutboundMessage
	replies   []string
	updateErr error
}

func (m *mockResponder) UpdateOrigin(ctx context.Context, msg secondary.OutboundMessage) error {
	m.updates = append(m.updates, msg)
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.chat != nil {
		return m.chat.EditMessage(ctx, m.channelID, m.messageID, msg)
	}
	return nil
}

func (m *mockResponder) Reply(ctx context.Context, content string) error {
	m.replies = append(m.replies, content)
	return nil
}

// mockDice implements secondary.DiceEvaluator with a fixed total.
type mockDice struct {
	mu    sync.Mutex
	total int
	err   error
	rolls []string
}

func (m *mockDice) Roll(expression string) (secondary.RollResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, expression)
	if m.err != nil {
		return secondary.RollResult{}, m.err
	}
	return secondary.RollResult{Expression: expression, Total: m.total, Detail: expression + "[" + strconv.Itoa(m.total) + "]"}, nil
}

// mockMetrics implements secondary.Metrics by counting calls.
type mockMetrics struct {
	mu       sync.Mutex
	clicks   map[string]int
	steps    map[string]int
	reaped   map[string]int
	delays   []time.Duration
	purged   int64
	failures int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{clicks: map[string]int{}, steps: map[string]int{}, reaped: map[string]int{}}
}

func (m *mockMetrics) ClickHandled(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks[kind+"/"+outcome]++
}

func (m *mockMetrics) StepObserved(step string, d time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[step]++
	if failed {
		m.failures++
	}
}

func (m *mockMetrics) MessagesReaped(action string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reaped[action] += n
}

func (m *mockMetrics) ThrottleDelayed(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays = append(m.delays, d)
}

func (m *mockMetrics) TombstonesPurged(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged += n
}

var (
	_ secondary.ConfigRepository  = (*mockConfigRepository)(nil)
	_ secondary.MessageRepository = (*mockMessageRepository)(nil)
	_ secondary.ChatAdapter       = (*mockChatAdapter)(nil)
	_ secondary.Responder         = (*mockResponder)(nil)
	_ secondary.DiceEvaluator     = (*mockDice)(nil)
	_ secondary.Metrics           = (*mockMetrics)(nil)
)

// ============================================================================
// Fixtures
// ============================================================================

// testEngine wires the interaction engine against in-memory mocks.
type testEngine struct {
	configs       *mockConfigRepository
	messages      *mockMessageRepository
	chat          *mockChatAdapter
	dice          *mockDice
	metrics       *mockMetrics
	registry      *interaction.Registry
	throttle      *ThrottleScheduler
	tracker       *LifecycleTracker
	resolver      *Resolver
	executor      *DefaultEffectExecutor
	service       *InteractionServiceImpl
	configService *ConfigurationServiceImpl
}

func newTestEngine() *testEngine {
	registry, err := interaction.NewRegistry(
		customparam.New(nil),
		customdice.New(nil),
		quickroll.New(),
	)
	if err != nil {
		panic(err)
	}

	e := &testEngine{
		configs:  newMockConfigRepository(),
		messages: newMockMessageRepository(),
		chat:     newMockChatAdapter(),
		dice:     &mockDice{total: 7},
		metrics:  newMockMetrics(),
		registry: registry,
	}
	logger := logging.Discard()

	e.throttle = NewThrottleScheduler(0)
	e.tracker = NewLifecycleTracker(e.messages, e.chat, e.metrics, logger)
	e.tracker.now = func() time.Time { return e.chat.now }
	e.resolver = NewResolver(e.configs, e.messages, true, logger)
	e.executor = NewEffectExecutor(e.chat, e.messages, e.dice, e.tracker, e.throttle, e.metrics, logger)
	e.service = NewInteractionService(registry, e.resolver, e.executor, e.metrics, logger)
	e.configService = NewConfigurationService(registry, e.configs, e.messages, e.chat, e.tracker, logger)
	return e
}
