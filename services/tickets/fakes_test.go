package tickets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"community-bot/model"
)

var errBoom = errors.New("boom")

type ticketKey struct{ guild, id string }

// memStore is an in-memory Store used by the service tests.
type memStore struct {
	mu       sync.Mutex
	configs  map[string]model.TicketConfig
	tickets  map[ticketKey]model.Ticket
	counters map[string]int
	logs     []model.TicketLog

	failNextNumber   bool
	failInsertTicket bool
	failInsertLog    bool
	failCount        bool
}

func newMemStore() *memStore {
	return &memStore{
		configs:  map[string]model.TicketConfig{},
		tickets:  map[ticketKey]model.Ticket{},
		counters: map[string]int{},
	}
}

func (m *memStore) UpsertConfig(_ context.Context, cfg *model.TicketConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.GuildID] = *cfg
	return nil
}

func (m *memStore) GetConfig(_ context.Context, guildID string) (*model.TicketConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.configs[guildID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &cfg, nil
}

func (m *memStore) ListConfigs(_ context.Context) ([]model.TicketConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TicketConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (m *memStore) NextTicketNumber(_ context.Context, guildID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNextNumber {
		return 0, errBoom
	}
	m.counters[guildID]++
	return m.counters[guildID], nil
}

func (m *memStore) InsertTicket(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertTicket {
		return errBoom
	}
	k := ticketKey{t.GuildID, t.TicketID}
	if _, ok := m.tickets[k]; ok {
		return fmt.Errorf("duplicate ticket %s", t.TicketID)
	}
	m.tickets[k] = *t
	return nil
}

func (m *memStore) GetTicket(_ context.Context, guildID, ticketID string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketKey{guildID, ticketID}]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) GetTicketByChannel(_ context.Context, channelID string) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.ChannelID == channelID {
			return &t, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) UpdateTicket(_ context.Context, guildID, ticketID string, upd model.TicketUpdate) (*model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ticketKey{guildID, ticketID}
	t, ok := m.tickets[k]
	if !ok {
		return nil, model.ErrNotFound
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	if upd.ChannelID != nil {
		t.ChannelID = *upd.ChannelID
	}
	if upd.ClosedAt != nil {
		closedAt := *upd.ClosedAt
		t.ClosedAt = &closedAt
	}
	if upd.ClearClosedAt {
		t.ClosedAt = nil
	}
	if upd.ClosedBy != nil {
		t.Metadata.ClosedBy = *upd.ClosedBy
	}
	if upd.CloseReason != nil {
		t.Metadata.CloseReason = *upd.CloseReason
	}
	if upd.ReopenedBy != nil {
		t.Metadata.ReopenedBy = *upd.ReopenedBy
	}
	if upd.IncrementReopen {
		t.Metadata.ReopenCount++
	}
	if upd.LastActivity != nil {
		t.Metadata.LastActivity = *upd.LastActivity
	}
	t.UpdatedAt = upd.UpdatedAt
	m.tickets[k] = t
	return &t, nil
}

func (m *memStore) CountOpenTickets(ctx context.Context, guildID, userID string) (int, error) {
	if m.failCount {
		return 0, errBoom
	}
	list, err := m.ListOpenTickets(ctx, guildID, userID)
	return len(list), err
}

func (m *memStore) ListOpenTickets(_ context.Context, guildID, userID string) ([]model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Ticket{}
	for _, t := range m.tickets {
		if t.GuildID == guildID && t.UserID == userID && !t.IsClosed() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].TicketID > out[j].TicketID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) ListInactiveTickets(_ context.Context, guildID string, before time.Time) ([]model.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Ticket{}
	for _, t := range m.tickets {
		if t.GuildID == guildID && !t.IsClosed() && t.LastActive().Before(before) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketID < out[j].TicketID })
	return out, nil
}

func (m *memStore) AppendMessage(_ context.Context, guildID, ticketID string, msg model.TicketMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := ticketKey{guildID, ticketID}
	t, ok := m.tickets[k]
	if !ok {
		return model.ErrNotFound
	}
	t.Messages = append(t.Messages, msg)
	t.Metadata.LastActivity = msg.Timestamp
	m.tickets[k] = t
	return nil
}

func (m *memStore) InsertLog(_ context.Context, entry *model.TicketLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsertLog {
		return errBoom
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memStore) ListLogs(_ context.Context, guildID string, q model.TicketLogQuery) ([]model.TicketLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.TicketLog{}
	for i := len(m.logs) - 1; i >= 0 && len(out) < q.Limit; i-- {
		l := m.logs[i]
		if l.GuildID != guildID ||
			(q.TicketID != "" && l.TicketID != q.TicketID) ||
			(q.UserID != "" && l.UserID != q.UserID) ||
			(q.Action != "" && l.Action != q.Action) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memStore) logsFor(action model.LogAction) []model.TicketLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TicketLog
	for _, l := range m.logs {
		if l.Action == action {
			out = append(out, l)
		}
	}
	return out
}

func (m *memStore) ticketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

// fakeGateway records channel operations.
type fakeGateway struct {
	mu         sync.Mutex
	next       int
	created    []ChannelRequest
	renamed    map[string]string
	deleted    []string
	welcomed   []string
	createErr  error
	renameErr  error
	welcomeErr error
}

func (g *fakeGateway) CreateTicketChannel(_ context.Context, req ChannelRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.next++
	g.created = append(g.created, req)
	return fmt.Sprintf("chan-%d", g.next), nil
}

func (g *fakeGateway) RenameTicketChannel(_ context.Context, channelID, name, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.renameErr != nil {
		return g.renameErr
	}
	if g.renamed == nil {
		g.renamed = map[string]string{}
	}
	g.renamed[channelID] = name
	return nil
}

func (g *fakeGateway) DeleteChannel(_ context.Context, channelID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, channelID)
	return nil
}

func (g *fakeGateway) SendWelcome(_ context.Context, channelID string, _ *model.Ticket, _ *model.TicketConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.welcomed = append(g.welcomed, channelID)
	return g.welcomeErr
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []model.TicketLog
	targets []string
	err     error
}

func (n *fakeNotifier) NotifyLog(_ context.Context, channelID string, entry model.TicketLog) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, entry)
	n.targets = append(n.targets, channelID)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeArchiver struct {
	mu       sync.Mutex
	archived []string
	err      error
}

func (a *fakeArchiver) Archive(_ context.Context, t *model.Ticket, _ *model.TicketConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, t.TicketID)
	return a.err
}

type fakeUploader struct {
	name        string
	channelID   string
	contentType string
	body        []byte
}

func (u *fakeUploader) UploadFile(_ context.Context, channelID, name, contentType string, r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	u.channelID, u.name, u.contentType, u.body = channelID, name, contentType, body
	return nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
