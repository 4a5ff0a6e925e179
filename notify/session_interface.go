/* session_interface.go
 * Contains the interface for the Discord session methods used by the notifier so they can be mocked in tests
 */

package notify

import "github.com/bwmarrin/discordgo"

// WebhookSession defines the Discord session methods used by the notifier
type WebhookSession interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Ensure *discordgo.Session implements WebhookSession
var _ WebhookSession = (*discordgo.Session)(nil)
