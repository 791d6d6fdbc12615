package telegram

import (
	"testing"
	"time"

	"github.com/gotd/td/tg"
)

func TestMapMessage_TextAndCounters(t *testing.T) {
	msg := &tg.Message{
		ID:      150,
		Date:    1756464000, // 2025-08-29T..Z
		Message: "breaking news",
	}
	msg.SetViews(5000)
	msg.SetForwards(40)
	msg.SetReplies(tg.MessageReplies{Replies: 12})

	raw := mapMessage(msg)
	if raw == nil {
		t.Fatal("Expected mapped message, got nil")
	}
	if raw.ID != 150 {
		t.Errorf("Expected ID 150, got %d", raw.ID)
	}
	if raw.Text != "breaking news" {
		t.Errorf("Expected text preserved, got %q", raw.Text)
	}
	if !raw.Date.Equal(time.Unix(1756464000, 0).UTC()) {
		t.Errorf("Expected UTC date from unix timestamp, got %s", raw.Date)
	}
	if raw.Views != 5000 || raw.Forwards != 40 || raw.Replies != 12 {
		t.Errorf("Unexpected counters: views=%d forwards=%d replies=%d", raw.Views, raw.Forwards, raw.Replies)
	}
}

func TestMapMessage_DeletedPlaceholderIsNil(t *testing.T) {
	if raw := mapMessage(&tg.MessageEmpty{ID: 99}); raw != nil {
		t.Errorf("Expected nil for deleted placeholder, got %+v", raw)
	}
}

func TestMapMessage_ServiceMessageIsNil(t *testing.T) {
	if raw := mapMessage(&tg.MessageService{ID: 100}); raw != nil {
		t.Errorf("Expected nil for service message, got %+v", raw)
	}
}

func TestMapMessage_ForwardProvenance(t *testing.T) {
	fwd := tg.MessageFwdHeader{}
	fwd.SetFromID(&tg.PeerChannel{ChannelID: 555})
	fwd.SetChannelPost(777)

	msg := &tg.Message{ID: 1, Date: 1756464000}
	msg.SetFwdFrom(fwd)

	raw := mapMessage(msg)
	if raw == nil {
		t.Fatal("Expected mapped message")
	}
	if !raw.Forwarded {
		t.Error("Expected forwarded flag set")
	}
	if raw.ForwardFromChannelID != 555 {
		t.Errorf("Expected forward source channel 555, got %d", raw.ForwardFromChannelID)
	}
	if raw.ForwardFromMessageID != 777 {
		t.Errorf("Expected forward source message 777, got %d", raw.ForwardFromMessageID)
	}
}

func TestMapMessage_Reactions(t *testing.T) {
	reactions := tg.MessageReactions{
		Results: []tg.ReactionCount{
			{Reaction: &tg.ReactionEmoji{Emoticon: "👍"}, Count: 10},
			{Reaction: &tg.ReactionCustomEmoji{DocumentID: 123456}, Count: 2},
		},
	}

	msg := &tg.Message{ID: 1, Date: 1756464000}
	msg.SetReactions(reactions)

	raw := mapMessage(msg)
	if raw == nil {
		t.Fatal("Expected mapped message")
	}
	if raw.Reactions["👍"] != 10 {
		t.Errorf("Expected 10 thumbs, got %d", raw.Reactions["👍"])
	}
	if raw.Reactions["custom:123456"] != 2 {
		t.Errorf("Expected 2 custom reactions, got %d", raw.Reactions["custom:123456"])
	}
}

func TestMapMedia_PhotoPicksLargestSize(t *testing.T) {
	media := &tg.MessageMediaPhoto{}
	media.SetPhoto(&tg.Photo{
		ID: 42,
		Sizes: []tg.PhotoSizeClass{
			&tg.PhotoSize{Type: "s", W: 90, H: 60, Size: 1000},
			&tg.PhotoSize{Type: "x", W: 1280, H: 720, Size: 90000},
			&tg.PhotoSize{Type: "m", W: 320, H: 180, Size: 9000},
		},
	})

	items := mapMedia(media)
	if len(items) != 1 {
		t.Fatalf("Expected 1 media item, got %d", len(items))
	}
	item := items[0]
	if item.Type != "photo" {
		t.Errorf("Expected photo type, got %q", item.Type)
	}
	if item.Width != 1280 || item.Height != 720 {
		t.Errorf("Expected largest size 1280x720, got %dx%d", item.Width, item.Height)
	}
	if item.FileRef != "photo:42" {
		t.Errorf("Expected file ref photo:42, got %q", item.FileRef)
	}
}

func TestMapMedia_VideoDocument(t *testing.T) {
	video := tg.DocumentAttributeVideo{W: 1920, H: 1080}
	video.Duration = 30

	media := &tg.MessageMediaDocument{}
	media.SetDocument(&tg.Document{
		ID:         77,
		MimeType:   "video/mp4",
		Size:       1 << 20,
		Attributes: []tg.DocumentAttributeClass{&video},
	})

	items := mapMedia(media)
	if len(items) != 1 {
		t.Fatalf("Expected 1 media item, got %d", len(items))
	}
	item := items[0]
	if item.Type != "video" {
		t.Errorf("Expected video type, got %q", item.Type)
	}
	if item.Width != 1920 || item.Height != 1080 || item.Duration != 30 {
		t.Errorf("Unexpected dimensions: %dx%d %ds", item.Width, item.Height, item.Duration)
	}
	if item.MimeType != "video/mp4" {
		t.Errorf("Expected mime type preserved, got %q", item.MimeType)
	}
}

func TestMapMedia_UnsupportedKindIgnored(t *testing.T) {
	if items := mapMedia(&tg.MessageMediaGeo{}); items != nil {
		t.Errorf("Expected nil for unsupported media, got %+v", items)
	}
}

func TestExtractMessages_ChannelContainer(t *testing.T) {
	history := &tg.MessagesChannelMessages{
		Messages: []tg.MessageClass{
			&tg.Message{ID: 1, Date: 1756464000},
			&tg.MessageEmpty{ID: 2},
		},
	}

	messages, err := extractMessages(history)
	if err != nil {
		t.Fatalf("extractMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(messages))
	}
}

func TestExtractMessages_UnexpectedType(t *testing.T) {
	if _, err := extractMessages(&tg.MessagesMessagesNotModified{}); err == nil {
		t.Error("Expected error for unexpected container type")
	}
}
