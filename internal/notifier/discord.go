package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const defaultAPIBase = "https://discord.com/api/v10"

// Message is one chat message as seen through the transport.
type Message struct {
	ID       string
	AuthorID string
	Content  string
}

// Channel is a text channel the bot can post into.
type Channel struct {
	ID   string
	Name string
}

// DiscordClient talks to the Discord REST API. It is the chat transport for
// notifications, the message-backed store, and the command polling loop.
type DiscordClient struct {
	Token   string
	APIBase string
	Client  *http.Client

	botID string
}

// NewDiscordClient creates a client with optional proxy support. Login must
// be called before any other method.
func NewDiscordClient(token, proxyURL string) *DiscordClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &DiscordClient{
		Token:   token,
		APIBase: defaultAPIBase,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Login verifies the token and resolves the bot's own user id. Failure here
// is a startup error and should abort the process.
func (d *DiscordClient) Login() error {
	var me struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := d.do(http.MethodGet, "/users/@me", nil, &me); err != nil {
		return fmt.Errorf("discord login: %w", err)
	}
	d.botID = me.ID
	log.Printf("[INFO] logged in as %s (%s)", me.Username, me.ID)
	return nil
}

// BotID returns the bot's own user id, valid after Login.
func (d *DiscordClient) BotID() string { return d.botID }

// SendMessage posts a message and returns the new message id.
func (d *DiscordClient) SendMessage(channelID, content string) (string, error) {
	var msg struct {
		ID string `json:"id"`
	}
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := d.do(http.MethodPost, path, map[string]string{"content": content}, &msg); err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return msg.ID, nil
}

// EditMessage replaces the content of an existing message in place.
func (d *DiscordClient) EditMessage(channelID, messageID, content string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID)
	if err := d.do(http.MethodPatch, path, map[string]string{"content": content}, nil); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages from a channel, newest first.
func (d *DiscordClient) RecentMessages(channelID string, limit int) ([]Message, error) {
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, limit)
	return d.fetchMessages(path)
}

// MessagesAfter returns messages newer than afterID, newest first.
func (d *DiscordClient) MessagesAfter(channelID, afterID string, limit int) ([]Message, error) {
	path := fmt.Sprintf("/channels/%s/messages?limit=%d&after=%s", channelID, limit, afterID)
	return d.fetchMessages(path)
}

func (d *DiscordClient) fetchMessages(path string) ([]Message, error) {
	var raw []struct {
		ID      string `json:"id"`
		Content string `json:"content"`
		Author  struct {
			ID string `json:"id"`
		} `json:"author"`
	}
	if err := d.do(http.MethodGet, path, nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	msgs := make([]Message, len(raw))
	for i, m := range raw {
		msgs[i] = Message{ID: m.ID, AuthorID: m.Author.ID, Content: m.Content}
	}
	return msgs, nil
}

// Channels enumerates the text channels of every guild the bot is in.
func (d *DiscordClient) Channels() ([]Channel, error) {
	var guilds []struct {
		ID string `json:"id"`
	}
	if err := d.do(http.MethodGet, "/users/@me/guilds", nil, &guilds); err != nil {
		return nil, fmt.Errorf("fetch guilds: %w", err)
	}

	var channels []Channel
	for _, g := range guilds {
		var raw []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Type int    `json:"type"`
		}
		path := fmt.Sprintf("/guilds/%s/channels", g.ID)
		if err := d.do(http.MethodGet, path, nil, &raw); err != nil {
			log.Printf("[WARN] fetch channels for guild %s: %v", g.ID, err)
			continue
		}
		for _, c := range raw {
			if c.Type == 0 { // guild text channel
				channels = append(channels, Channel{ID: c.ID, Name: c.Name})
			}
		}
	}
	return channels, nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (d *DiscordClient) SendWithRetry(ctx context.Context, channelID, content string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if _, err := d.SendMessage(channelID, content); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[WARN] discord send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Notify sends a notification to a channel with a small retry budget. Used by
// the trackers, which log but never propagate delivery failures.
func (d *DiscordClient) Notify(channelID, text string) error {
	return d.SendWithRetry(context.Background(), channelID, text, 3)
}

// Close releases idle transport connections. Safe to call more than once.
func (d *DiscordClient) Close() error {
	d.Client.CloseIdleConnections()
	return nil
}

func (d *DiscordClient) do(method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, d.APIBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+d.Token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord API error: %s %s: status %d, body: %s", method, path, resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
