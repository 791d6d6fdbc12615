package telegram

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/deps"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/ratelimit"
	"github.com/tgwatch/channelpulse/collector-service/internal/infrastructure/retry"
)

// RPC error codes that mean the channel is gone, private or was never
// there. They surface as NotFoundError, never as retryable failures.
var notFoundCodes = []string{
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"USERNAME_NOT_OCCUPIED",
	"USERNAME_INVALID",
	"PEER_ID_INVALID",
}

// Client implements deps.SourceClient using the gotd/td MTProto library.
// Every outbound call passes the two-tier pipeline limiter, a
// transport-level smoothing limiter and the retry policy before it
// reaches the wire.
type Client struct {
	client *telegram.Client
	api    *tg.Client

	apiID       int
	apiHash     string
	sessionFile string
	callTimeout time.Duration

	pipeline  *ratelimit.Limiter
	smoother  *rate.Limiter
	retryOpts retry.Options

	connected     bool
	disconnecting bool
	mu            sync.RWMutex
	cancelFunc    context.CancelFunc
	runDone       chan struct{}

	logger zerolog.Logger
}

// NewClient creates a new MTProto source client
func NewClient(
	cfg *config.TelegramConfig,
	retryCfg *config.RetryConfig,
	pipeline *ratelimit.Limiter,
	logger zerolog.Logger,
) (*Client, error) {
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}

	log := logger.With().Str("component", "mtproto_client").Logger()

	return &Client{
		apiID:       cfg.APIID,
		apiHash:     cfg.APIHash,
		sessionFile: cfg.SessionFile,
		callTimeout: cfg.CallTimeout,
		pipeline:    pipeline,
		// Transport-level smoothing beneath the pipeline limiter.
		smoother: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		retryOpts: retry.Options{
			MaxRetries: retryCfg.MaxRetries,
			Backoff: retry.Backoff{
				InitialDelay: retryCfg.InitialDelay,
				MaxDelay:     retryCfg.MaxDelay,
				Multiplier:   retryCfg.Multiplier,
				Jitter:       retryCfg.Jitter,
			},
			Retryable: domain.IsRetryable,
			Logger:    log,
		},
		logger: log,
	}, nil
}

// Connect establishes the MTProto session from stored credentials.
// Idempotent when already connected. The session file must already be
// authorized; interactive login is an operator task, not a runtime one.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}
	if c.disconnecting {
		c.mu.Unlock()
		return &domain.ConnectionError{Err: fmt.Errorf("disconnect in progress")}
	}
	defer c.mu.Unlock()

	c.logger.Info().Msg("connecting to Telegram")

	if dir := filepath.Dir(c.sessionFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &domain.ConnectionError{Err: fmt.Errorf("create session dir: %w", err)}
		}
	}

	c.client = telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.sessionFile},
	})

	clientCtx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)
	c.runDone = make(chan struct{})

	go func() {
		defer close(c.runDone)
		err := c.client.Run(clientCtx, func(ctx context.Context) error {
			c.api = c.client.API()

			status, err := c.client.Auth().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to check auth status: %w", err)
			}
			if !status.Authorized {
				return domain.ErrAuthorizationRequired
			}

			c.connected = true
			c.logger.Info().Msg("successfully connected to Telegram")
			close(readyChan)

			<-ctx.Done()
			return ctx.Err()
		})
		select {
		case errChan <- err:
		default:
		}
	}()

	select {
	case <-readyChan:
		return nil
	case err := <-errChan:
		cancel()
		if errors.Is(err, domain.ErrAuthorizationRequired) {
			return err
		}
		if err != nil {
			return &domain.ConnectionError{Err: err}
		}
		return nil
	case <-ctx.Done():
		cancel()
		return &domain.ConnectionError{Err: ctx.Err()}
	}
}

// Disconnect shuts the MTProto session down gracefully. Safe to call
// more than once.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()

	if c.disconnecting || !c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already disconnected")
		return nil
	}

	c.logger.Info().Msg("disconnecting from Telegram")
	c.disconnecting = true
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	c.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()
		if runDone != nil {
			select {
			case <-runDone:
				c.logger.Debug().Msg("client stopped gracefully")
			case <-ctx.Done():
				c.logger.Warn().Msg("disconnect timeout while waiting for client shutdown")
			}
		}
	}

	c.mu.Lock()
	c.client = nil
	c.api = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil
	c.disconnecting = false
	c.mu.Unlock()

	c.logger.Info().Msg("disconnected from Telegram")
	return nil
}

// IsConnected reports whether the session is up
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// GetChannel resolves a channel by username and returns its info along
// with the access hash needed for later history fetches. Access
// failures are reported as (nil, nil): validation flows treat them the
// same as "no such channel".
func (c *Client) GetChannel(ctx context.Context, username string) (*domain.ChannelInfo, error) {
	api, err := c.apiClient()
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("username", username).Msg("resolving channel")

	var channel *tg.Channel
	err = c.invoke(ctx, func(ctx context.Context) error {
		resolved, err := api.ContactsResolveUsername(ctx, username)
		if err != nil {
			return err
		}
		for _, chat := range resolved.Chats {
			if ch, ok := chat.(*tg.Channel); ok {
				channel = ch
				return nil
			}
		}
		return &domain.NotFoundError{Subject: fmt.Sprintf("channel %q", username)}
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		c.logger.Error().Err(err).Str("username", username).Msg("failed to resolve channel")
		return nil, err
	}

	info := &domain.ChannelInfo{
		Peer: domain.ChannelPeer{
			TelegramID: channel.ID,
			AccessHash: channel.AccessHash,
		},
		Username:     username,
		Title:        channel.Title,
		IsVerified:   channel.Verified,
		IsRestricted: channel.Restricted,
	}
	if count, ok := channel.GetParticipantsCount(); ok {
		info.SubscriberCount = count
	}

	// Full channel info carries the authoritative subscriber count and
	// description; a failure here degrades to the resolve-level data.
	err = c.invoke(ctx, func(ctx context.Context) error {
		full, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{
			ChannelID:  channel.ID,
			AccessHash: channel.AccessHash,
		})
		if err != nil {
			return err
		}
		if channelFull, ok := full.FullChat.(*tg.ChannelFull); ok {
			info.SubscriberCount = channelFull.ParticipantsCount
			info.About = channelFull.About
		}
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("username", username).Msg("failed to get full channel info")
	}

	return info, nil
}

// GetMessages fetches up to limit messages with ID strictly greater
// than minID. Deleted messages stay in the result as nil entries so the
// caller can see the gap; ordering is whatever the source returned.
func (c *Client) GetMessages(ctx context.Context, peer domain.ChannelPeer, limit, minID int) ([]*domain.RawMessage, error) {
	api, err := c.apiClient()
	if err != nil {
		return nil, err
	}

	if minID < 0 {
		minID = 0
	}

	c.logger.Debug().
		Int64("channel_id", peer.TelegramID).
		Int("limit", limit).
		Int("min_id", minID).
		Msg("fetching channel history")

	var history tg.MessagesMessagesClass
	err = c.invoke(ctx, func(ctx context.Context) error {
		var err error
		history, err = api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer: &tg.InputPeerChannel{
				ChannelID:  peer.TelegramID,
				AccessHash: peer.AccessHash,
			},
			Limit: limit,
			MinID: minID,
		})
		return err
	})
	if err != nil {
		c.logger.Error().Err(err).
			Int64("channel_id", peer.TelegramID).
			Int("limit", limit).
			Int("min_id", minID).
			Msg("failed to get channel history")
		return nil, err
	}

	messages, err := extractMessages(history)
	if err != nil {
		return nil, err
	}

	raw := make([]*domain.RawMessage, 0, len(messages))
	for _, msg := range messages {
		raw = append(raw, mapMessage(msg))
	}

	c.logger.Debug().
		Int64("channel_id", peer.TelegramID).
		Int("messages_count", len(raw)).
		Msg("fetched channel history")

	return raw, nil
}

// apiClient returns the API handle or ErrNotConnected
func (c *Client) apiClient() (*tg.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.api == nil {
		return nil, domain.ErrNotConnected
	}
	return c.api, nil
}

// invoke runs one API call through the pipeline limiter, the transport
// smoother, the per-call timeout and the retry policy, mapping errors
// to the typed domain variants
func (c *Client) invoke(ctx context.Context, op func(ctx context.Context) error) error {
	return retry.Do(ctx, c.retryOpts, func(ctx context.Context) error {
		if err := c.pipeline.Acquire(ctx); err != nil {
			return err
		}
		if err := c.smoother.Wait(ctx); err != nil {
			return err
		}

		callCtx := ctx
		cancel := func() {}
		if c.callTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
		}
		err := op(callCtx)
		cancel()

		return mapTelegramError(err)
	})
}

// mapTelegramError converts transport and RPC errors into the typed
// domain variants the rest of the pipeline classifies on
func mapTelegramError(err error) error {
	if err == nil {
		return nil
	}

	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &domain.FloodWaitError{Wait: wait}
	}

	if tgerr.Is(err, notFoundCodes...) {
		return &domain.NotFoundError{Subject: "channel"}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.TimeoutError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &domain.TimeoutError{Err: err}
		}
		return &domain.ConnectionError{Err: err}
	}

	return err
}

// Ensure Client implements deps.SourceClient
var _ deps.SourceClient = (*Client)(nil)
