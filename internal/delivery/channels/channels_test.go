package channels

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qced_directory/internal/delivery"
)

func TestEmailChannel(t *testing.T) {
	assert.False(t, NewEmailChannel(EmailConfig{}).Enabled())

	ch := NewEmailChannel(EmailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@qced.sa"})
	assert.True(t, ch.Enabled())
	assert.Equal(t, delivery.ChannelEmail, ch.Name())

	_, err := ch.BuildMessage(delivery.NewJob(delivery.ChannelEmail, "", "s", "b"))
	assert.Error(t, err)

	msg, err := ch.BuildMessage(delivery.NewJob(delivery.ChannelEmail, "sara@qced.sa", "Welcome", "Hello Sara"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sara@qced.sa"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Welcome"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Hello Sara")
}

func TestTelegramChannel(t *testing.T) {
	assert.False(t, NewTelegramChannel("", 42).Enabled())
	assert.False(t, NewTelegramChannel("token", 0).Enabled())

	ch := NewTelegramChannel("token", 42)
	assert.True(t, ch.Enabled())

	msg, err := ch.BuildMessage(delivery.NewJob(delivery.ChannelTelegram, "", "New HR message", "from Sara"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "New HR message\n\nfrom Sara", msg.Text)

	msg, err = ch.BuildMessage(delivery.NewJob(delivery.ChannelTelegram, "-1001", "", "x"))
	require.NoError(t, err)
	assert.Equal(t, int64(-1001), msg.ChatID)

	_, err = ch.BuildMessage(delivery.NewJob(delivery.ChannelTelegram, "abc", "", "x"))
	assert.Error(t, err)
}
