package ws

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techconnect/internal/domain"
)

type nopBroadcaster struct{}

func (nopBroadcaster) Connect(domain.Subscriber)            {}
func (nopBroadcaster) Join(string, domain.Subscriber)       {}
func (nopBroadcaster) Leave(string, domain.Subscriber)      {}
func (nopBroadcaster) OnDisconnect(domain.Subscriber)       {}
func (nopBroadcaster) Publish(msg *domain.BroadcastMessage) {}

func newTestClient() *Client {
	return newClient(nopBroadcaster{}, nil, slog.New(slog.DiscardHandler))
}

func TestClient_Notify_QueuesMessage(t *testing.T) {
	c := newTestClient()

	ok := c.Notify(&domain.BroadcastMessage{Kind: domain.KindCommentNew, EventID: "ev-1"})
	require.True(t, ok)

	var got domain.BroadcastMessage
	require.NoError(t, json.Unmarshal(<-c.send, &got))
	assert.Equal(t, domain.KindCommentNew, got.Kind)
	assert.Equal(t, "ev-1", got.EventID)
}

func TestClient_Notify_FullBufferReportsUnreachable(t *testing.T) {
	c := newTestClient()

	msg := &domain.BroadcastMessage{Kind: domain.KindEventUpdated, EventID: "ev-1"}
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, c.Notify(msg))
	}
	assert.False(t, c.Notify(msg), "a client that stopped draining is unreachable")
}

func TestClient_Notify_AfterCloseReportsUnreachable(t *testing.T) {
	c := newTestClient()
	c.close()

	assert.False(t, c.Notify(&domain.BroadcastMessage{Kind: domain.KindEventCreated}))
}

func TestControlMessageRoundTrip(t *testing.T) {
	var msg controlMessage
	require.NoError(t, json.Unmarshal([]byte(`{"action":"join:event","event_id":"ev-7"}`), &msg))
	assert.Equal(t, actionJoin, msg.Action)
	assert.Equal(t, "ev-7", msg.EventID)
}
