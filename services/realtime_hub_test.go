package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubServer registers every upgraded connection under the user id in ?u=.
func hubServer(t *testing.T, hub *RealtimeHub) *httptest.Server {
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := &WSClient{UserID: r.URL.Query().Get("u"), Conn: conn}
		hub.Register(c)
		go func() {
			defer hub.Unregister(c)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?u=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRealtimeHub_BroadcastScopedToUser(t *testing.T) {
	hub := NewRealtimeHub()
	srv := hubServer(t, hub)

	a1 := dial(t, srv, "alice")
	a2 := dial(t, srv, "alice")
	b := dial(t, srv, "bob")
	require.Eventually(t, func() bool {
		return hub.Connections("alice") == 2 && hub.Connections("bob") == 1
	}, 2*time.Second, 10*time.Millisecond)

	bus := NewChangeBus(hub, nil)
	bus.MealsChanged("alice", OpConfirmed, "2025-09-01")

	for _, c := range []*websocket.Conn{a1, a2} {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		var ev ChangeEvent
		require.NoError(t, c.ReadJSON(&ev))
		assert.Equal(t, ChangeEvent{Kind: MealsChangedKind, Op: OpConfirmed, Date: "2025-09-01"}, ev)
	}

	require.NoError(t, b.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's events")
}

func TestRealtimeHub_UnregisterAndCloseAll(t *testing.T) {
	hub := NewRealtimeHub()
	srv := hubServer(t, hub)

	c := dial(t, srv, "alice")
	dial(t, srv, "bob")
	require.Eventually(t, func() bool { return hub.Connections("alice") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return hub.Connections("alice") == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.CloseAll()
	assert.Zero(t, hub.Connections("bob"))
	assert.NoError(t, hub.Broadcast("bob", ChangeEvent{Kind: MealsChangedKind}))
}

func TestChangeBus_NilHubIsSilent(t *testing.T) {
	var bus *ChangeBus
	assert.NotPanics(t, func() { bus.MealsChanged("u1", OpCreated, "2025-09-01") })
	assert.NotPanics(t, func() { NewChangeBus(nil, nil).MealsChanged("u1", OpCreated, "2025-09-01") })
}
