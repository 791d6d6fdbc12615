package business

import (
	"math"
	"testing"
	"time"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
)

func testBuilder() *RecordBuilder {
	return NewRecordBuilder(&config.EngagementConfig{
		ReactionWeights: map[string]float64{
			"👍": 1.0,
			"❤": 1.5,
			"🔥": 2.0,
		},
		DefaultWeight: 1.0,
	})
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReactionScore_WeightedSum(t *testing.T) {
	b := testBuilder()

	score := b.ReactionScore(map[string]int{
		"👍": 10, // 10 * 1.0
		"❤": 4,  // 4 * 1.5
		"🔥": 3,  // 3 * 2.0
	})

	if !almostEqual(score, 22.0) {
		t.Errorf("Expected score 22.0, got %f", score)
	}
}

func TestReactionScore_UnknownKindGetsDefaultWeight(t *testing.T) {
	b := testBuilder()

	score := b.ReactionScore(map[string]int{
		"🤯": 5,
	})

	if !almostEqual(score, 5.0) {
		t.Errorf("Expected unknown reaction to use default weight, got %f", score)
	}
}

func TestReactionScore_Empty(t *testing.T) {
	b := testBuilder()

	if score := b.ReactionScore(nil); score != 0 {
		t.Errorf("Expected zero score for no reactions, got %f", score)
	}
}

func TestRelativeEngagement(t *testing.T) {
	tests := []struct {
		name        string
		views       int
		score       float64
		subscribers int
		expected    float64
	}{
		{"typical channel", 5000, 500, 100000, 0.055},
		{"zero subscribers", 5000, 500, 0, 0.0},
		{"zero engagement", 0, 0, 50000, 0.0},
		{"small channel", 100, 10, 100, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativeEngagement(tt.views, tt.score, tt.subscribers)
			if !almostEqual(got, tt.expected) {
				t.Errorf("RelativeEngagement(%d, %f, %d) = %f, expected %f",
					tt.views, tt.score, tt.subscribers, got, tt.expected)
			}
		})
	}
}

func TestBuild_FullBundle(t *testing.T) {
	b := testBuilder()
	publishedAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	collectedAt := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	msg := domain.MessageData{
		ChannelID:         7,
		TelegramMessageID: 1234,
		PublishedAt:       publishedAt,
		Text:              "breaking news",
		Media: []domain.MediaItem{
			{Type: "photo", FileRef: "photo:1", Width: 1280, Height: 720},
			{Type: "video", FileRef: "document:2", Duration: 30},
		},
		Views:     5000,
		Forwards:  40,
		Replies:   12,
		Reactions: map[string]int{"👍": 10},
	}

	bundle := b.Build(msg, 100000, collectedAt)

	if bundle.Post.ChannelID != 7 || bundle.Post.TelegramMessageID != 1234 {
		t.Errorf("Unexpected post identity: %+v", bundle.Post)
	}
	if !bundle.Post.PublishedAt.Equal(publishedAt) {
		t.Errorf("Expected published at %s, got %s", publishedAt, bundle.Post.PublishedAt)
	}
	if bundle.Content.IsMediaOnly {
		t.Error("Message with text should not be media-only")
	}
	if len(bundle.Media) != 2 {
		t.Fatalf("Expected 2 media rows, got %d", len(bundle.Media))
	}
	if bundle.Media[0].Position != 0 || bundle.Media[1].Position != 1 {
		t.Error("Media positions should preserve attachment order")
	}
	if bundle.Engagement.Views != 5000 || bundle.Engagement.Forwards != 40 || bundle.Engagement.Replies != 12 {
		t.Errorf("Unexpected engagement counters: %+v", bundle.Engagement)
	}
	if !almostEqual(bundle.Engagement.ReactionScore, 10.0) {
		t.Errorf("Expected reaction score 10.0, got %f", bundle.Engagement.ReactionScore)
	}
	if !almostEqual(bundle.Engagement.RelativeEngagement, 0.0501) {
		t.Errorf("Expected relative engagement 0.0501, got %f", bundle.Engagement.RelativeEngagement)
	}
	if !bundle.Engagement.CollectedAt.Equal(collectedAt) {
		t.Errorf("Expected collected at %s, got %s", collectedAt, bundle.Engagement.CollectedAt)
	}
	if len(bundle.Reactions) != 1 || bundle.Reactions[0].Kind != "👍" || bundle.Reactions[0].Count != 10 {
		t.Errorf("Unexpected reaction rows: %+v", bundle.Reactions)
	}
}

func TestBuild_MediaOnlyDetection(t *testing.T) {
	b := testBuilder()

	tests := []struct {
		name      string
		text      string
		mediaOnly bool
	}{
		{"empty text", "", true},
		{"whitespace only", "  \n\t ", true},
		{"real text", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := domain.MessageData{Text: tt.text}
			bundle := b.Build(msg, 1000, time.Now())
			if bundle.Content.IsMediaOnly != tt.mediaOnly {
				t.Errorf("IsMediaOnly = %v, expected %v for %q",
					bundle.Content.IsMediaOnly, tt.mediaOnly, tt.text)
			}
		})
	}
}
