package vehicles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Details(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vehicle-details/1HGCM82633A004352", r.URL.Path)
		_, _ = w.Write([]byte(`{"make":"Honda","model":"Accord","year":2003}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/vehicle-details/", srv.Client())
	details, err := client.Details(context.Background(), "1HGCM82633A004352")
	require.NoError(t, err)
	assert.JSONEq(t, `{"make":"Honda","model":"Accord","year":2003}`, string(details))
}

func TestClient_Details_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.Details(context.Background(), "1HGCM82633A004352")
	assert.ErrorIs(t, err, ErrLookup)
	assert.Contains(t, err.Error(), "1HGCM82633A004352")
}
