package business

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	channelentities "github.com/tgwatch/channelpulse/collector-service/internal/domain/channel/entities"
)

// mockSourceClient implements deps.SourceClient with overridable funcs
type mockSourceClient struct {
	connectFn     func(ctx context.Context) error
	getChannelFn  func(ctx context.Context, username string) (*domain.ChannelInfo, error)
	getMessagesFn func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error)
	connected     bool
}

func (m *mockSourceClient) Connect(ctx context.Context) error {
	if m.connectFn != nil {
		return m.connectFn(ctx)
	}
	return nil
}

func (m *mockSourceClient) IsConnected() bool {
	return m.connected
}

func (m *mockSourceClient) GetChannel(ctx context.Context, username string) (*domain.ChannelInfo, error) {
	if m.getChannelFn != nil {
		return m.getChannelFn(ctx, username)
	}
	return nil, nil
}

func (m *mockSourceClient) GetMessages(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
	if m.getMessagesFn != nil {
		return m.getMessagesFn(ctx, peer, limit, minID)
	}
	return nil, nil
}

func testCollectorConfig() *config.CollectorConfig {
	return &config.CollectorConfig{
		WindowHours: 24,
		FetchLimit:  100,
	}
}

func testChannel() *channelentities.Channel {
	return &channelentities.Channel{
		ID:         1,
		TelegramID: 100200300,
		AccessHash: 987654321,
		Username:   "technews",
	}
}

func newTestCollector(source *mockSourceClient, now time.Time) *Collector {
	c := NewCollector(source, testCollectorConfig(), zerolog.Nop())
	c.now = func() time.Time { return now }
	return c
}

func TestCollect_FiltersWindowButTracksUnfilteredMax(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			return []*domain.RawMessage{
				{ID: 150, Date: now.Add(-48 * time.Hour), Text: "stale"},
				{ID: 200, Date: now.Add(-1 * time.Hour), Text: "fresh"},
				{ID: 180, Date: now.Add(-30 * time.Hour), Text: "also stale"},
			}, nil
		},
	}

	result, err := newTestCollector(source, now).Collect(context.Background(), testChannel(), 100)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Count != 1 {
		t.Errorf("Expected 1 in-window message, got %d", result.Count)
	}
	if result.Messages[0].TelegramMessageID != 200 {
		t.Errorf("Expected message 200, got %d", result.Messages[0].TelegramMessageID)
	}
	// The cursor source includes out-of-window messages.
	if result.MaxMessageID != 200 {
		t.Errorf("Expected max message ID 200, got %d", result.MaxMessageID)
	}
}

func TestCollect_MaxReflectsDiscardedMessages(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			return []*domain.RawMessage{
				{ID: 300, Date: now.Add(-72 * time.Hour), Text: "old but newly visible"},
			}, nil
		},
	}

	result, err := newTestCollector(source, now).Collect(context.Background(), testChannel(), 0)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Count != 0 {
		t.Errorf("Expected no in-window messages, got %d", result.Count)
	}
	if result.MaxMessageID != 300 {
		t.Errorf("Expected max message ID 300 from discarded message, got %d", result.MaxMessageID)
	}
}

func TestCollect_SkipsNilSlots(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			return []*domain.RawMessage{
				{ID: 10, Date: now.Add(-time.Hour), Text: "first"},
				nil,
				{ID: 12, Date: now.Add(-time.Hour), Text: "third"},
			}, nil
		},
	}

	result, err := newTestCollector(source, now).Collect(context.Background(), testChannel(), 0)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Count != 2 {
		t.Errorf("Expected 2 messages after nil slot skip, got %d", result.Count)
	}
	if result.MaxMessageID != 12 {
		t.Errorf("Expected max message ID 12, got %d", result.MaxMessageID)
	}
}

func TestCollect_KeepsMediaOnlyMessages(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			return []*domain.RawMessage{
				{
					ID:   42,
					Date: now.Add(-time.Hour),
					Text: "",
					Media: []domain.MediaItem{
						{Type: "photo", FileRef: "photo:1"},
					},
				},
			}, nil
		},
	}

	result, err := newTestCollector(source, now).Collect(context.Background(), testChannel(), 0)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Count != 1 {
		t.Fatalf("Expected media-only message to survive, got %d messages", result.Count)
	}
	if len(result.Messages[0].Media) != 1 {
		t.Errorf("Expected 1 media item, got %d", len(result.Messages[0].Media))
	}
}

func TestCollect_ClampsNegativeMinID(t *testing.T) {
	now := time.Now()
	var gotMinID int
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			gotMinID = minID
			return nil, nil
		},
	}

	if _, err := newTestCollector(source, now).Collect(context.Background(), testChannel(), -7); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if gotMinID != 0 {
		t.Errorf("Expected negative minID clamped to 0, got %d", gotMinID)
	}
}

func TestCollect_EmptyFetch(t *testing.T) {
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			return []*domain.RawMessage{}, nil
		},
	}

	result, err := newTestCollector(source, time.Now()).Collect(context.Background(), testChannel(), 500)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Count != 0 {
		t.Errorf("Expected 0 messages, got %d", result.Count)
	}
	if result.MaxMessageID != 0 {
		t.Errorf("Expected max message ID 0 for empty fetch, got %d", result.MaxMessageID)
	}
}

func TestCollect_SourceErrorPropagates(t *testing.T) {
	sourceErr := &domain.FloodWaitError{Wait: 30 * time.Second}
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			return nil, sourceErr
		},
	}

	_, err := newTestCollector(source, time.Now()).Collect(context.Background(), testChannel(), 0)
	if err == nil {
		t.Fatal("Expected error from source failure")
	}
	var fw *domain.FloodWaitError
	if !errors.As(err, &fw) {
		t.Errorf("Expected wrapped FloodWaitError, got %v", err)
	}
}

func TestCollect_UsesStoredPeer(t *testing.T) {
	var gotPeer domain.ChannelPeer
	source := &mockSourceClient{
		getMessagesFn: func(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
			gotPeer = peer
			return nil, nil
		},
	}

	channel := testChannel()
	if _, err := newTestCollector(source, time.Now()).Collect(context.Background(), channel, 0); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if gotPeer.TelegramID != channel.TelegramID {
		t.Errorf("Expected telegram ID %d, got %d", channel.TelegramID, gotPeer.TelegramID)
	}
	if gotPeer.AccessHash != channel.AccessHash {
		t.Errorf("Expected access hash %d, got %d", channel.AccessHash, gotPeer.AccessHash)
	}
}
