package store

import (
	"fmt"
	"regexp"

	"StockSentry/internal/notifier"
)

// scanLimit is how far back the channel history is searched for a storage
// message.
const scanLimit = 100

// ChatTransport is the slice of the chat client the message-backed store
// needs.
type ChatTransport interface {
	RecentMessages(channelID string, limit int) ([]notifier.Message, error)
	SendMessage(channelID, content string) (messageID string, err error)
	EditMessage(channelID, messageID, content string) error
}

// ChatStore persists state as specially formatted messages authored by the
// bot itself, one message per (kind, channel): "<KIND>_<owner>_<channel>: <JSON>".
// The chat platform gives no atomicity guarantees; concurrent writers are
// last-write-wins.
type ChatStore struct {
	transport ChatTransport
	botID     string
}

// NewChatStore creates a store writing through the given transport as the
// given bot identity.
func NewChatStore(transport ChatTransport, botID string) *ChatStore {
	return &ChatStore{transport: transport, botID: botID}
}

func (s *ChatStore) pattern(kind Kind, channelID string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s_.*_%s: `, regexp.QuoteMeta(string(kind)), regexp.QuoteMeta(channelID)))
}

// findStorageMessage scans recent history for the first bot-authored message
// matching the kind+channel pattern, newest first.
func (s *ChatStore) findStorageMessage(kind Kind, channelID string) (*notifier.Message, *regexp.Regexp, error) {
	msgs, err := s.transport.RecentMessages(channelID, scanLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("scan channel %s: %w", channelID, err)
	}
	re := s.pattern(kind, channelID)
	for i := range msgs {
		if msgs[i].AuthorID == s.botID && re.MatchString(msgs[i].Content) {
			return &msgs[i], re, nil
		}
	}
	return nil, re, nil
}

func (s *ChatStore) Load(kind Kind, scope Scope) ([]byte, bool, error) {
	msg, re, err := s.findStorageMessage(kind, scope.ChannelID)
	if err != nil {
		return nil, false, err
	}
	if msg == nil {
		return nil, false, nil
	}
	loc := re.FindStringIndex(msg.Content)
	return []byte(msg.Content[loc[1]:]), true, nil
}

func (s *ChatStore) Save(kind Kind, scope Scope, data []byte) error {
	content := fmt.Sprintf("%s_%s_%s: %s", kind, scope.OwnerID, scope.ChannelID, data)
	msg, _, err := s.findStorageMessage(kind, scope.ChannelID)
	if err != nil {
		return err
	}
	if msg != nil {
		if err := s.transport.EditMessage(scope.ChannelID, msg.ID, content); err != nil {
			return fmt.Errorf("update storage message: %w", err)
		}
		return nil
	}
	if _, err := s.transport.SendMessage(scope.ChannelID, content); err != nil {
		return fmt.Errorf("create storage message: %w", err)
	}
	return nil
}
