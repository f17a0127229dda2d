package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analogy-eval/db"
	"analogy-eval/suggest"
)

func newTestServer(t *testing.T) (*db.Manager, *httptest.Server) {
	t.Helper()

	manager := db.NewManager()
	_, err := manager.CreateTable("review", &suggest.Table{
		Methods:    []string{"3CosAvg"},
		Annotators: []string{"ana", "bia"},
		Rows: []suggest.Row{
			{WordA: "crânio", WordB: "duro", Valid: 1, Methods: []int{1}, Votes: []int{0, 0}},
			{WordA: "roda", WordB: "voar", Valid: 0, Methods: []int{1}, Votes: []int{0, 0}},
		},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(NewServer(manager).Handler())
	t.Cleanup(ts.Close)
	return manager, ts
}

func postVote(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["error"]
}

func TestAPIServer(t *testing.T) {
	manager, ts := newTestServer(t)

	// Test table listing
	resp, err := http.Get(ts.URL + "/api/tables")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tables []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tables))
	assert.Equal(t, []string{"review"}, tables)

	// Test table retrieval
	resp, err = http.Get(ts.URL + "/api/tables/review")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var table suggest.Table
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
	assert.Equal(t, []string{"ana", "bia"}, table.Annotators)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "crânio", table.Rows[0].WordA)

	// Test missing table
	resp, err = http.Get(ts.URL + "/api/tables/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, db.ErrTableNotFound.Error(), errorOf(t, resp))

	// Test vote casting
	resp = postVote(t, ts.URL+"/api/tables/review/votes", `{"row": 0, "user": "bia", "vote": 1}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := manager.GetTable("review")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, stored.Snapshot().Rows[0].Votes)
}

func TestVoteErrors(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		table  string
		body   string
		status int
	}{
		{"invalid json", "review", `{`, http.StatusBadRequest},
		{"missing row", "review", `{"user": "ana", "vote": 1}`, http.StatusBadRequest},
		{"missing user", "review", `{"row": 0, "vote": 1}`, http.StatusBadRequest},
		{"invalid row", "review", `{"row": 1, "user": "ana", "vote": 1}`, http.StatusBadRequest},
		{"unknown annotator", "review", `{"row": 0, "user": "caio", "vote": 1}`, http.StatusBadRequest},
		{"bad vote", "review", `{"row": 0, "user": "ana", "vote": 3}`, http.StatusBadRequest},
		{"row out of range", "review", `{"row": 9, "user": "ana", "vote": 1}`, http.StatusNotFound},
		{"unknown table", "missing", `{"row": 0, "user": "ana", "vote": 1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postVote(t, ts.URL+"/api/tables/"+tt.table+"/votes", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, errorOf(t, resp))
		})
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocket(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	// rows
	require.NoError(t, conn.WriteJSON(Message{Type: "rows", Table: "review"}))
	var reply struct {
		Type  string        `json:"type"`
		Data  suggest.Table `json:"data"`
		Error string        `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "rows", reply.Type)
	assert.Empty(t, reply.Error)
	assert.Len(t, reply.Data.Rows, 2)

	// vote
	require.NoError(t, conn.WriteJSON(Message{Type: "vote", Table: "review", Row: 0, User: "ana", Vote: 1}))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "vote", msg.Type)
	assert.Empty(t, msg.Error)
	assert.Equal(t, 1, msg.Vote)

	// vote on an invalid row
	require.NoError(t, conn.WriteJSON(Message{Type: "vote", Table: "review", Row: 1, User: "ana", Vote: 1}))
	msg = Message{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, db.ErrInvalidRow.Error(), msg.Error)

	// unknown type
	require.NoError(t, conn.WriteJSON(Message{Type: "search"}))
	msg = Message{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "unknown message type", msg.Error)
}

func TestWebSocketIncompleteVote(t *testing.T) {
	manager, ts := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(Message{Type: "vote", Table: "review", Row: 0, User: "ana", Vote: 1}))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	require.Empty(t, msg.Error)

	tests := []struct {
		name string
		body string
	}{
		{"missing row and vote", `{"type": "vote", "table": "review", "user": "ana"}`},
		{"missing vote", `{"type": "vote", "table": "review", "row": 0, "user": "ana"}`},
		{"missing row", `{"type": "vote", "table": "review", "user": "ana", "vote": 0}`},
		{"missing user", `{"type": "vote", "table": "review", "row": 0, "vote": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.body)))
			msg := Message{}
			require.NoError(t, conn.ReadJSON(&msg))
			assert.Equal(t, "vote", msg.Type)
			assert.Equal(t, errIncompleteVote.Error(), msg.Error)

			stored, err := manager.GetTable("review")
			require.NoError(t, err)
			assert.Equal(t, []int{1, 0}, stored.Snapshot().Rows[0].Votes)
		})
	}
}

func TestWebSocketKeepAlive(t *testing.T) {
	manager, _ := newTestServer(t)
	server := NewServer(manager)
	server.readTimeout = 300 * time.Millisecond
	server.pingPeriod = 50 * time.Millisecond
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	conn := dial(t, ts)
	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	replies := make(chan Message)
	go func() {
		defer close(replies)
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			replies <- msg
		}
	}()

	// idle past the read timeout, kept open by pongs
	time.Sleep(3 * server.readTimeout)
	require.NoError(t, conn.WriteJSON(Message{Type: "rows", Table: "review"}))

	select {
	case msg, ok := <-replies:
		require.True(t, ok, "connection closed")
		assert.Equal(t, "rows", msg.Type)
		assert.Empty(t, msg.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("no reply")
	}
	assert.Positive(t, pings.Load())
}

func TestVotesAreBroadcast(t *testing.T) {
	_, ts := newTestServer(t)
	watcher := dial(t, ts)

	// make sure the watcher is registered before voting
	require.NoError(t, watcher.WriteJSON(Message{Type: "rows", Table: "review"}))
	var ignored Message
	require.NoError(t, watcher.ReadJSON(&ignored))

	resp := postVote(t, ts.URL+"/api/tables/review/votes", `{"row": 0, "user": "ana", "vote": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg Message
	require.NoError(t, watcher.ReadJSON(&msg))
	assert.Equal(t, Message{Type: "vote", Table: "review", Row: 0, User: "ana", Vote: 1}, msg)
}

func TestCrossOrigin(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/tables", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://annotate.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
