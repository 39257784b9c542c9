package notifier

import (
	"context"
	"log"
	"strings"
	"time"
)

// CommandHandler is called for every user command received on the control
// channel and returns the reply text, or "" for no reply.
type CommandHandler func(channelID, userID, text string) string

const pollInterval = 5 * time.Second

// StartPolling watches the control channel for "!" commands and dispatches
// them. Blocks until ctx is cancelled. A bot without a gateway connection can
// only short-poll message history, so this trails the channel with ?after=
// cursors.
func (d *DiscordClient) StartPolling(ctx context.Context, channelID string, handler CommandHandler) {
	lastID := ""
	if msgs, err := d.RecentMessages(channelID, 1); err != nil {
		log.Printf("[WARN] seed command polling: %v", err)
	} else if len(msgs) > 0 {
		lastID = msgs[0].ID
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] command polling stopped")
			return
		case <-time.After(pollInterval):
		}

		var msgs []Message
		var err error
		if lastID == "" {
			msgs, err = d.RecentMessages(channelID, 50)
		} else {
			msgs, err = d.MessagesAfter(channelID, lastID, 50)
		}
		if err != nil {
			log.Printf("[WARN] poll commands: %v", err)
			continue
		}

		// Newest first from the API; handle oldest first.
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			lastID = m.ID
			if m.AuthorID == d.botID {
				continue
			}
			text := strings.TrimSpace(m.Content)
			if !strings.HasPrefix(text, "!") {
				continue
			}
			log.Printf("[INFO] received command: %s", text)
			reply := handler(channelID, m.AuthorID, text)
			if reply != "" {
				if _, err := d.SendMessage(channelID, reply); err != nil {
					log.Printf("[ERROR] send reply: %v", err)
				}
			}
		}
	}
}
