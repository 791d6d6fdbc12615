package telegram

import (
	"fmt"
	"time"

	"github.com/gotd/td/tg"

	"github.com/tgwatch/channelpulse/collector-service/internal/domain"
)

// extractMessages unwraps the history response container
func extractMessages(history tg.MessagesMessagesClass) ([]tg.MessageClass, error) {
	switch h := history.(type) {
	case *tg.MessagesChannelMessages:
		return h.Messages, nil
	case *tg.MessagesMessagesSlice:
		return h.Messages, nil
	case *tg.MessagesMessages:
		return h.Messages, nil
	default:
		return nil, fmt.Errorf("unexpected history response type %T", history)
	}
}

// mapMessage converts a transport message into a RawMessage. Deleted
// messages and service messages have no content to collect and map to
// nil.
func mapMessage(msg tg.MessageClass) *domain.RawMessage {
	m, ok := msg.(*tg.Message)
	if !ok {
		return nil
	}

	raw := &domain.RawMessage{
		ID:   m.ID,
		Date: time.Unix(int64(m.Date), 0).UTC(),
		Text: m.Message,
	}

	if media, ok := m.GetMedia(); ok {
		raw.Media = mapMedia(media)
	}

	if fwd, ok := m.GetFwdFrom(); ok {
		raw.Forwarded = true
		if from, ok := fwd.GetFromID(); ok {
			if ch, ok := from.(*tg.PeerChannel); ok {
				raw.ForwardFromChannelID = ch.ChannelID
			}
		}
		if post, ok := fwd.GetChannelPost(); ok {
			raw.ForwardFromMessageID = post
		}
	}

	if views, ok := m.GetViews(); ok {
		raw.Views = views
	}
	if forwards, ok := m.GetForwards(); ok {
		raw.Forwards = forwards
	}
	if replies, ok := m.GetReplies(); ok {
		raw.Replies = replies.Replies
	}
	if reactions, ok := m.GetReactions(); ok {
		raw.Reactions = mapReactions(reactions)
	}

	return raw
}

// mapMedia converts a media attachment into MediaItem records
func mapMedia(media tg.MessageMediaClass) []domain.MediaItem {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.GetPhoto()
		if !ok {
			return nil
		}
		p, ok := photo.(*tg.Photo)
		if !ok {
			return nil
		}
		item := domain.MediaItem{
			Type:    "photo",
			FileRef: fmt.Sprintf("photo:%d", p.ID),
		}
		// Largest available size represents the original.
		for _, size := range p.Sizes {
			if s, ok := size.(*tg.PhotoSize); ok {
				if s.W*s.H > item.Width*item.Height {
					item.Width = s.W
					item.Height = s.H
					item.Size = int64(s.Size)
				}
			}
		}
		return []domain.MediaItem{item}

	case *tg.MessageMediaDocument:
		doc, ok := m.GetDocument()
		if !ok {
			return nil
		}
		d, ok := doc.(*tg.Document)
		if !ok {
			return nil
		}
		item := domain.MediaItem{
			Type:     "document",
			FileRef:  fmt.Sprintf("document:%d", d.ID),
			Size:     d.Size,
			MimeType: d.MimeType,
		}
		for _, attr := range d.Attributes {
			switch a := attr.(type) {
			case *tg.DocumentAttributeVideo:
				item.Type = "video"
				item.Width = a.W
				item.Height = a.H
				item.Duration = int(a.Duration)
			case *tg.DocumentAttributeAudio:
				item.Type = "audio"
				item.Duration = int(a.Duration)
			case *tg.DocumentAttributeAnimated:
				item.Type = "animation"
			case *tg.DocumentAttributeImageSize:
				item.Width = a.W
				item.Height = a.H
			case *tg.DocumentAttributeSticker:
				item.Type = "sticker"
			}
		}
		return []domain.MediaItem{item}

	default:
		return nil
	}
}

// mapReactions flattens reaction results into a kind->count map.
// Standard reactions key by emoticon, custom emoji by document ID.
func mapReactions(reactions tg.MessageReactions) map[string]int {
	if len(reactions.Results) == 0 {
		return nil
	}
	counts := make(map[string]int, len(reactions.Results))
	for _, rc := range reactions.Results {
		switch r := rc.Reaction.(type) {
		case *tg.ReactionEmoji:
			counts[r.Emoticon] += rc.Count
		case *tg.ReactionCustomEmoji:
			counts[fmt.Sprintf("custom:%d", r.DocumentID)] += rc.Count
		}
	}
	return counts
}
