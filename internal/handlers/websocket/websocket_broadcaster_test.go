package websocket_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffeeStatApp/internal/domain/model"
	ws "coffeeStatApp/internal/handlers/websocket"
)

func TestBroadcastReport(t *testing.T) {
	b := ws.NewWebSocketBroadcaster(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return b.Clients() == 1 }, time.Second, 10*time.Millisecond)

	b.BroadcastReport(&model.Report{RunID: "run-1", KPI: model.KPI{TotalOrders: 12}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got model.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, 12, got.KPI.TotalOrders)

	conn.Close()
	assert.Eventually(t, func() bool { return b.Clients() == 0 }, time.Second, 10*time.Millisecond)
}
