package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IndicatorsQueue/internal/config"
)

func TestActiveMonitoringsPaginates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monitorings", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "":
			_, _ = w.Write([]byte(`{"data":[{"id":"A"},{"id":"B"}],"next_page":{"offset":"p2"}}`))
		case "p2":
			_, _ = w.Write([]byte(`{"data":[{"id":"C"}],"next_page":{"offset":"p3"}}`))
		default:
			_, _ = w.Write([]byte(`{"data":[],"next_page":{"offset":"p3"}}`))
		}
	}))
	defer server.Close()

	client := NewClient(config.AuditConfig{BaseURL: server.URL, Token: "secret", PageLimit: 2})

	got, err := client.ActiveMonitorings(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
}

func TestActiveMonitoringsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantErr: "unexpected status",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"data": [`))
			},
			wantErr: "decode response",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewClient(config.AuditConfig{BaseURL: server.URL})
			_, err := client.ActiveMonitorings(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestActiveMonitoringsWithoutURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.AuditConfig{}).ActiveMonitorings(context.Background())
	require.Error(t, err)
}
