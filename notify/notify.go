/* notify.go
 * Contains the Discord webhook notifier that posts the import summary to a channel
 */

package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

// MaxMessageLength is Discord's limit on message content
const MaxMessageLength = 2000

// Username shown on webhook messages
const Username = "BOD Importer"

type Webhook struct {
	Session   WebhookSession
	WebhookID string
	Token     string
}

// NewWebhook creates a notifier backed by an unauthenticated discordgo session. Webhook execution only needs the
// webhook id and token
// Preconditions: Receives a webhook id and token, both non-empty
// Postconditions: Returns a Webhook, or an error if either credential is missing
func NewWebhook(webhookID string, token string) (*Webhook, error) {
	if webhookID == "" || token == "" {
		return nil, fmt.Errorf("webhook id and token are required")
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &Webhook{Session: session, WebhookID: webhookID, Token: token}, nil
}

// Send posts message to the webhook, split into several messages when it is longer than Discord allows
func (w *Webhook) Send(ctx context.Context, message string) error {
	for _, chunk := range Chunk(message, MaxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		params := &discordgo.WebhookParams{Content: chunk, Username: Username}
		if _, err := w.Session.WebhookExecute(w.WebhookID, w.Token, true, params, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to execute webhook: %w", err)
		}
	}
	return nil
}

// Chunk splits s into pieces of at most limit bytes, breaking at line ends where possible and never inside a rune
func Chunk(s string, limit int) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	var chunks []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(s, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				chunks = append(chunks, strings.TrimRight(b.String(), "\n"))
				b.Reset()
			}
			cut := runeBoundary(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if b.Len()+len(line) > limit {
			chunks = append(chunks, strings.TrimRight(b.String(), "\n"))
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		chunks = append(chunks, strings.TrimRight(b.String(), "\n"))
	}
	return chunks
}

// runeBoundary returns the largest cut point no greater than limit that does not split a rune in s
func runeBoundary(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}
