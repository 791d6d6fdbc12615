package business

import (
	"strings"
	"time"

	"github.com/tgwatch/channelpulse/collector-service/config"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
	"github.com/tgwatch/channelpulse/collector-service/internal/domain/collection/entities"
)

// RecordBuilder maps normalized message records into persistable rows
// and computes derived engagement metrics. Pure transformation, no I/O.
type RecordBuilder struct {
	weights       map[string]float64
	defaultWeight float64
}

// NewRecordBuilder creates a builder with the configured reaction
// weight table
func NewRecordBuilder(cfg *config.EngagementConfig) *RecordBuilder {
	return &RecordBuilder{
		weights:       cfg.ReactionWeights,
		defaultWeight: cfg.DefaultWeight,
	}
}

// Build produces the full row bundle for one message. subscriberCount
// comes from the channel row at collection time; collectedAt stamps the
// engagement snapshot.
func (b *RecordBuilder) Build(msg domain.MessageData, subscriberCount int, collectedAt time.Time) *entities.PostBundle {
	score := b.ReactionScore(msg.Reactions)

	bundle := &entities.PostBundle{
		Post: entities.Post{
			ChannelID:            msg.ChannelID,
			TelegramMessageID:    msg.TelegramMessageID,
			PublishedAt:          msg.PublishedAt,
			Forwarded:            msg.Forwarded,
			ForwardFromChannelID: msg.ForwardFromChannelID,
			ForwardFromMessageID: msg.ForwardFromMessageID,
		},
		Content: entities.PostContent{
			Text:        msg.Text,
			IsMediaOnly: strings.TrimSpace(msg.Text) == "",
		},
		Engagement: entities.EngagementMetrics{
			Views:              msg.Views,
			Forwards:           msg.Forwards,
			Replies:            msg.Replies,
			ReactionScore:      score,
			RelativeEngagement: RelativeEngagement(msg.Views, score, subscriberCount),
			CollectedAt:        collectedAt,
		},
	}

	for i, item := range msg.Media {
		bundle.Media = append(bundle.Media, entities.PostMedia{
			Position: i,
			Type:     item.Type,
			FileRef:  item.FileRef,
			Size:     item.Size,
			Width:    item.Width,
			Height:   item.Height,
			Duration: item.Duration,
			MimeType: item.MimeType,
		})
	}

	for kind, count := range msg.Reactions {
		bundle.Reactions = append(bundle.Reactions, entities.ReactionCount{
			Kind:  kind,
			Count: count,
		})
	}

	return bundle
}

// ReactionScore sums reaction counts weighted per kind; kinds missing
// from the table get the default weight
func (b *RecordBuilder) ReactionScore(reactions map[string]int) float64 {
	var score float64
	for kind, count := range reactions {
		weight, ok := b.weights[kind]
		if !ok {
			weight = b.defaultWeight
		}
		score += float64(count) * weight
	}
	return score
}

// RelativeEngagement normalizes engagement by channel size:
// (views + reactionScore) / subscriberCount, 0.0 for empty channels
func RelativeEngagement(views int, reactionScore float64, subscriberCount int) float64 {
	if subscriberCount == 0 {
		return 0.0
	}
	return (float64(views) + reactionScore) / float64(subscriberCount)
}
