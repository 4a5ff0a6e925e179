/* mock_session.go
 * Contains mock implementation of WebhookSession for testing
 */

package notify

import "github.com/bwmarrin/discordgo"

// MockWebhookSession implements WebhookSession for testing purposes
type MockWebhookSession struct {
	// Sent stores every webhook execution made during tests
	Sent []MockWebhookCall
	// ErrorToReturn allows tests to simulate errors
	ErrorToReturn error
}

// MockWebhookCall represents one WebhookExecute call
type MockWebhookCall struct {
	WebhookID string
	Token     string
	Content   string
	Username  string
}

// WebhookExecute implements WebhookSession.WebhookExecute
func (m *MockWebhookSession) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}

	m.Sent = append(m.Sent, MockWebhookCall{
		WebhookID: webhookID,
		Token:     token,
		Content:   data.Content,
		Username:  data.Username,
	})

	return &discordgo.Message{ID: "mock_message_id", Content: data.Content}, nil
}
