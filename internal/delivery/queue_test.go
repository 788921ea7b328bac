package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	name    string
	enabled bool
	failN   int
	panicky bool

	mu    sync.Mutex
	calls int
	sent  []Job
}

func (f *fakeChannel) Name() string  { return f.name }
func (f *fakeChannel) Enabled() bool { return f.enabled }

func (f *fakeChannel) Send(_ context.Context, job Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panicky {
		panic("boom")
	}
	if f.calls <= f.failN {
		return errors.New("temporary failure")
	}
	f.sent = append(f.sent, job)
	return nil
}

func (f *fakeChannel) snapshot() (int, []Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]Job(nil), f.sent...)
}

func noBackoff(int) time.Duration { return time.Millisecond }

func TestQueueDeliversWithRetry(t *testing.T) {
	ch := &fakeChannel{name: ChannelEmail, enabled: true, failN: 2}
	q := NewQueue(8, 2, []Channel{ch}, WithBackoff(noBackoff))
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(NewJob(ChannelEmail, "a@qced.sa", "Welcome", "hi")))
	q.Stop()

	calls, sent := ch.snapshot()
	assert.Equal(t, 3, calls)
	require.Len(t, sent, 1)
	assert.Equal(t, 3, sent[0].Attempts)
	assert.NotEmpty(t, sent[0].ID)
}

func TestQueueGivesUpAfterMaxAttempts(t *testing.T) {
	ch := &fakeChannel{name: ChannelEmail, enabled: true, failN: 10}
	q := NewQueue(8, 1, []Channel{ch}, WithBackoff(noBackoff), WithMaxAttempts(3))
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(NewJob(ChannelEmail, "a@qced.sa", "s", "b")))
	q.Stop()

	calls, sent := ch.snapshot()
	assert.Equal(t, 3, calls)
	assert.Empty(t, sent)
}

func TestQueueSkipsDisabledAndUnknownChannels(t *testing.T) {
	disabled := &fakeChannel{name: ChannelTelegram, enabled: false}
	q := NewQueue(8, 1, []Channel{disabled}, WithBackoff(noBackoff))
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(NewJob(ChannelTelegram, "", "", "alert")))
	require.NoError(t, q.Enqueue(NewJob("sms", "", "", "x")))
	q.Stop()

	calls, _ := disabled.snapshot()
	assert.Zero(t, calls)
}

func TestQueueRecoversChannelPanic(t *testing.T) {
	ch := &fakeChannel{name: ChannelEmail, enabled: true, panicky: true}
	q := NewQueue(8, 1, []Channel{ch}, WithBackoff(noBackoff), WithMaxAttempts(2))
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(NewJob(ChannelEmail, "a@qced.sa", "s", "b")))
	q.Stop()

	calls, _ := ch.snapshot()
	assert.Equal(t, 2, calls)
}

func TestQueueFullAndClosed(t *testing.T) {
	q := NewQueue(1, 1, nil)

	require.NoError(t, q.Enqueue(NewJob(ChannelEmail, "", "", "")))
	assert.ErrorIs(t, q.Enqueue(NewJob(ChannelEmail, "", "", "")), ErrQueueFull)

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(NewJob(ChannelEmail, "", "", "")), ErrQueueClosed)
}
