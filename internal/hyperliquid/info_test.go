package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/info", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		switch req["type"] {
		case "meta":
			_, _ = w.Write([]byte(`{"universe":[{"name":"BTC","szDecimals":5,"maxLeverage":50},{"name":"ETH","szDecimals":4,"maxLeverage":25}]}`))
		case "allMids":
			_, _ = w.Write([]byte(`{"BTC":"60000.5","ETH":"3000"}`))
		case "clearinghouseState":
			require.Equal(t, "0x1234567890AbcdEF1234567890aBcdef12345678", req["user"])
			_, _ = w.Write([]byte(`{"withdrawable":"123.45"}`))
		default:
			http.Error(w, "unknown type", http.StatusUnprocessableEntity)
		}
	}))
}

func TestInfoClient_Meta(t *testing.T) {
	srv := newInfoServer(t)
	defer srv.Close()

	client := NewInfoClient(srv.URL, time.Second, nil)

	meta, err := client.Meta(context.Background())
	require.NoError(t, err)
	require.Len(t, meta.Universe, 2)

	idx, asset, ok := meta.FindAsset("ETH")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 4, asset.SzDecimals)
	assert.Equal(t, 25, asset.MaxLeverage)

	_, _, ok = meta.FindAsset("DOGE")
	assert.False(t, ok)
}

func TestInfoClient_AllMids(t *testing.T) {
	srv := newInfoServer(t)
	defer srv.Close()

	client := NewInfoClient(srv.URL, time.Second, nil)

	mids, err := client.AllMids(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "60000.5", mids["BTC"])

	_, ok := mids["DOGE"]
	assert.False(t, ok)
}

func TestInfoClient_ClearinghouseState(t *testing.T) {
	srv := newInfoServer(t)
	defer srv.Close()

	client := NewInfoClient(srv.URL, time.Second, nil)

	state, err := client.ClearinghouseState(context.Background(), "0x1234567890AbcdEF1234567890aBcdef12345678")
	require.NoError(t, err)
	assert.Equal(t, "123.45", state.Withdrawable)
}

func TestInfoClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewInfoClient(srv.URL, time.Second, nil)

	_, err := client.Meta(context.Background())
	require.Error(t, err)
}
