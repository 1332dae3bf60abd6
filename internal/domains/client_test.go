package domains

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/autodetail/internal/ratelimit"
)

const sampleDomain = `{"name":"acme.example.com","apexName":"example.com","projectId":"prj_1","redirect":null,"redirectStatusCode":null,"gitBranch":null,"verified":true}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Token: "tok", TeamID: "team_1", ProjectID: "prj_1"}, srv.Client())
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{Token: "tok", TeamID: "team_1"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_CreateSubdomain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v10/projects/prj_1/domains", r.URL.Path)
		assert.Equal(t, "team_1", r.URL.Query().Get("teamId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "acme.example.com", body["name"])

		_, _ = w.Write([]byte(sampleDomain))
	})

	domain, err := client.CreateSubdomain(context.Background(), "acme", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "acme.example.com", domain.Name)
	assert.Equal(t, "example.com", domain.ApexName)
	assert.True(t, domain.Verified)
	assert.Nil(t, domain.Redirect)
}

func TestClient_CreateSubdomain_InvalidReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"acme.example.com"}`))
	})

	_, err := client.CreateSubdomain(context.Background(), "acme", "example.com")
	assert.ErrorIs(t, err, ErrInvalidReply)
}

func TestClient_VerifyDomain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v9/projects/prj_1/domains/acme.example.com/verify", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, client.VerifyDomain(context.Background(), "acme.example.com"))
}

func TestClient_ListDomains_Cached(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"domains":[` + sampleDomain + `]}`))
	})

	for i := 0; i < 3; i++ {
		domains, err := client.ListDomains(context.Background())
		require.NoError(t, err)
		require.Len(t, domains, 1)
		assert.Equal(t, "acme.example.com", domains[0].Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ListDomains_BareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[` + sampleDomain + `]`))
	})
	domains, err := client.ListDomains(context.Background())
	require.NoError(t, err)
	assert.Len(t, domains, 1)
}

func TestClient_DeleteDomain_InvalidatesCache(t *testing.T) {
	var lists int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			atomic.AddInt32(&lists, 1)
			_, _ = w.Write([]byte(`[` + sampleDomain + `]`))
		case http.MethodDelete:
			assert.Equal(t, "/v9/projects/prj_1/domains/acme.example.com", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	_, err := client.ListDomains(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.DeleteDomain(context.Background(), "acme.example.com"))
	_, err = client.ListDomains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&lists))
}

func TestClient_ErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"domain_taken","message":"Domain is already in use"}}`))
	})

	err := client.VerifyDomain(context.Background(), "acme.example.com")
	assert.ErrorIs(t, err, ErrRequest)
	assert.EqualError(t, err, "vercel API request failed: Domain is already in use")
}

func TestClient_RateLimited(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	client.limiter = ratelimit.New(1, requestWindow)

	assert.NoError(t, client.VerifyDomain(context.Background(), "a.example.com"))
	assert.ErrorIs(t, client.VerifyDomain(context.Background(), "b.example.com"), ErrRateLimited)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
