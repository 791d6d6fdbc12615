package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/ratelimit"
)

func testTelegramConfig(apiID int, apiHash string) *config.TelegramConfig {
	return &config.TelegramConfig{
		APIID:       apiID,
		APIHash:     apiHash,
		SessionFile: "testdata/session.json",
		CallTimeout: time.Second,
	}
}

func testRetryConfig() *config.RetryConfig {
	return &config.RetryConfig{
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2,
		MaxRetries:   1,
	}
}

func newTestPipeline() *ratelimit.Limiter {
	return ratelimit.New(100, 1000)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestMapTelegramError_Nil(t *testing.T) {
	if err := mapTelegramError(nil); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}

func TestMapTelegramError_FloodWait(t *testing.T) {
	err := mapTelegramError(tgerr.New(420, "FLOOD_WAIT_30"))

	var fw *domain.FloodWaitError
	if !errors.As(err, &fw) {
		t.Fatalf("Expected FloodWaitError, got %v", err)
	}
	if fw.Wait != 30*time.Second {
		t.Errorf("Expected 30s mandated wait, got %s", fw.Wait)
	}
	if !domain.IsThrottle(err) {
		t.Error("Expected IsThrottle to match")
	}
}

func TestMapTelegramError_NotFoundCodes(t *testing.T) {
	codes := []string{"CHANNEL_PRIVATE", "CHANNEL_INVALID", "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID"}

	for _, code := range codes {
		err := mapTelegramError(tgerr.New(400, code))
		if !domain.IsNotFound(err) {
			t.Errorf("Expected %s to map to NotFoundError, got %v", code, err)
		}
	}
}

func TestMapTelegramError_DeadlineExceeded(t *testing.T) {
	err := mapTelegramError(context.DeadlineExceeded)

	var te *domain.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if !domain.IsRetryable(err) {
		t.Error("Expected timeout to be retryable")
	}
}

func TestMapTelegramError_UnknownPassthrough(t *testing.T) {
	original := errors.New("AUTH_KEY_UNREGISTERED")
	if err := mapTelegramError(original); !errors.Is(err, original) {
		t.Errorf("Expected unclassified error passed through, got %v", err)
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	pipeline := newTestPipeline()

	if _, err := NewClient(testTelegramConfig(0, "hash"), testRetryConfig(), pipeline, testLogger()); err == nil {
		t.Error("Expected error for missing API ID")
	}
	if _, err := NewClient(testTelegramConfig(12345, ""), testRetryConfig(), pipeline, testLogger()); err == nil {
		t.Error("Expected error for missing API hash")
	}
}

func TestClient_OperationsRequireConnection(t *testing.T) {
	client, err := NewClient(testTelegramConfig(12345, "hash"), testRetryConfig(), newTestPipeline(), testLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if client.IsConnected() {
		t.Error("Fresh client must not report connected")
	}

	if _, err := client.GetChannel(context.Background(), "technews"); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected from GetChannel, got %v", err)
	}

	peer := domain.ChannelPeer{TelegramID: 1, AccessHash: 2}
	if _, err := client.GetMessages(context.Background(), peer, 100, 0); !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected from GetMessages, got %v", err)
	}
}

func TestClient_DisconnectWithoutConnectIsNoop(t *testing.T) {
	client, err := NewClient(testTelegramConfig(12345, "hash"), testRetryConfig(), newTestPipeline(), testLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if err := client.Disconnect(context.Background()); err != nil {
		t.Errorf("Disconnect on fresh client should be a no-op, got %v", err)
	}
}
