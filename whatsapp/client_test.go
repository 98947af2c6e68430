package whatsapp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading zero replaced", "0771234567", "94771234567"},
		{"country code untouched", "94771234567", "94771234567"},
		{"non-digits stripped first", "077-123 4567", "94771234567"},
		{"formatted with country code", "+94 77 123 4567", "94771234567"},
		{"empty input", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestSendTemplate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []any{map[string]any{"id": "wamid.1"}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	out, err := c.SendTemplate("0712345678", "after_payment")
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "94712345678", got["to"])
	tmpl, ok := got["template"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "after_payment", tmpl["name"])
	assert.NotNil(t, out["messages"])
}

func TestSendTemplateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad token"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	out, err := c.SendTemplate("0712345678", "tmpl")
	assert.Error(t, err)
	assert.NotNil(t, out["error"])
}

func TestBroadcastCollectsPerNumberFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["to"] == "94770000002" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid recipient"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "t")
	results := c.Broadcast([]string{"0770000001", "0770000002", "0770000003"}, "tmpl")
	require.Len(t, results, 3)

	assert.Equal(t, "94770000001", results[0].Phone)
	assert.Empty(t, results[0].Error)
	assert.Equal(t, "94770000002", results[1].Phone)
	assert.NotEmpty(t, results[1].Error)
	// a failing recipient must not block the ones after it
	assert.Equal(t, "94770000003", results[2].Phone)
	assert.Empty(t, results[2].Error)
}
