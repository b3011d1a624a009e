package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/Seednode/liarparty/internal/game"
)

func newTestClient(id string) *Client {
	return newClient(id, nil, rate.NewLimiter(rate.Inf, 1), nil)
}

func TestHub_Multicast(t *testing.T) {
	h := newHub(zerolog.Nop())
	a, b, c := newTestClient("a"), newTestClient("b"), newTestClient("c")
	h.add(a)
	h.add(b)
	h.add(c)

	h.Multicast([]string{"a", "c", "ghost"}, game.ChatMessage{Text: "hi"})

	require.Len(t, a.send, 1)
	assert.Empty(t, b.send)
	require.Len(t, c.send, 1)
	assert.JSONEq(t, `{"type":"chat","text":"hi"}`, string(<-a.send))
}

func TestHub_BroadcastAndUnicast(t *testing.T) {
	h := newHub(zerolog.Nop())
	a, b := newTestClient("a"), newTestClient("b")
	h.add(a)
	h.add(b)

	h.Broadcast(game.RoomListMessage{Rooms: []game.Summary{}})
	h.Unicast("b", game.SessionMessage{ConnectionID: "b"})
	h.Unicast("ghost", game.SessionMessage{ConnectionID: "ghost"})

	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 2)
	assert.Equal(t, 2, h.Len())
}

func TestHub_FullBufferClosesClient(t *testing.T) {
	h := newHub(zerolog.Nop())
	a := newTestClient("a")
	h.add(a)

	for range sendBuffer + 1 {
		h.Unicast("a", game.ChatMessage{Text: "spam"})
	}

	assert.Len(t, a.send, sendBuffer)
	select {
	case <-a.done:
	default:
		t.Fatal("client should be closed once its buffer overflows")
	}

	assert.False(t, a.enqueue([]byte(`{}`)))
}

func TestHub_RemoveClosesClient(t *testing.T) {
	h := newHub(zerolog.Nop())
	a := newTestClient("a")
	h.add(a)

	h.remove("a")
	h.remove("a")

	assert.Equal(t, 0, h.Len())
	_, open := <-a.done
	assert.False(t, open)
}
