/* notify_test.go
 * Contains unit tests for notify.go
 */

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region Send tests

func TestSend_PostsSummary(t *testing.T) {
	mock := &MockWebhookSession{}
	w := &Webhook{Session: mock, WebhookID: "123", Token: "abc"}

	err := w.Send(context.Background(), "Import run-1 finished\nPlayers: 2 created\n")

	require.NoError(t, err)
	require.Len(t, mock.Sent, 1)
	assert.Equal(t, "123", mock.Sent[0].WebhookID)
	assert.Equal(t, "abc", mock.Sent[0].Token)
	assert.Equal(t, Username, mock.Sent[0].Username)
	assert.Equal(t, "Import run-1 finished\nPlayers: 2 created", mock.Sent[0].Content)
}

func TestSend_SplitsLongMessages(t *testing.T) {
	mock := &MockWebhookSession{}
	w := &Webhook{Session: mock, WebhookID: "123", Token: "abc"}
	line := strings.Repeat("x", 999) + "\n"

	err := w.Send(context.Background(), line+line+line)

	require.NoError(t, err)
	assert.Len(t, mock.Sent, 2)
	for _, call := range mock.Sent {
		assert.LessOrEqual(t, len(call.Content), MaxMessageLength)
	}
}

func TestSend_Error(t *testing.T) {
	mock := &MockWebhookSession{ErrorToReturn: errors.New("unknown webhook")}
	w := &Webhook{Session: mock, WebhookID: "123", Token: "abc"}

	err := w.Send(context.Background(), "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown webhook")
}

func TestSend_CancelledContext(t *testing.T) {
	mock := &MockWebhookSession{}
	w := &Webhook{Session: mock, WebhookID: "123", Token: "abc"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Send(ctx, "hello")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.Sent)
}

func TestNewWebhook_RequiresCredentials(t *testing.T) {
	_, err := NewWebhook("", "abc")
	assert.Error(t, err)

	w, err := NewWebhook("123", "abc")
	require.NoError(t, err)
	assert.NotNil(t, w.Session)
}

// endregion

// region Chunk tests

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk("\n", 10))
}

func TestChunk_BreaksAtLines(t *testing.T) {
	chunks := Chunk("aaaa\nbbbb\ncccc\n", 10)

	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)
}

func TestChunk_SplitsOverlongLine(t *testing.T) {
	chunks := Chunk("ab\n"+strings.Repeat("z", 12), 5)

	assert.Equal(t, []string{"ab", "zzzzz", "zzzzz", "zz"}, chunks)
}

func TestChunk_KeepsRunesWhole(t *testing.T) {
	msg := "a" + strings.Repeat("é", 1500)

	chunks := Chunk(msg, MaxMessageLength)

	require.Len(t, chunks, 2)
	assert.Equal(t, msg, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), MaxMessageLength)
	}
}

// endregion
