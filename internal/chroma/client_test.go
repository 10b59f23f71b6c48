package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mcp-recall/internal/config"
	"mcp-recall/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.ChromaConfig{
		URL:              srv.URL,
		Tenant:           "default_tenant",
		Database:         "default_database",
		Collection:       "conversation_memory",
		TimeoutSeconds:   2,
		StartupWaitSecs:  1,
		HeartbeatSeconds: 1,
	}
	return NewClient(cfg, logging.NewLogger("chroma-test"))
}

func TestHeartbeat(t *testing.T) {
	alive := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/heartbeat", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	assert.True(t, alive.Heartbeat(context.Background()))

	dead := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	assert.False(t, dead.Heartbeat(context.Background()))
}

func TestProvisionTreatsConflictAsSuccess(t *testing.T) {
	var paths []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPost:
			// Everything already exists.
			w.WriteHeader(http.StatusConflict)
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "coll-123"})
		}
	}))

	require.NoError(t, client.Provision(context.Background()))
	assert.Equal(t, "coll-123", client.collectionID)
	assert.Equal(t, []string{
		"POST /tenants",
		"POST /tenants/default_tenant/databases",
		"POST /tenants/default_tenant/databases/default_database/collections",
		"GET /tenants/default_tenant/databases/default_database/collections/conversation_memory",
	}, paths)
}

func TestProvisionFailsWithoutCollectionID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	assert.Error(t, client.Provision(context.Background()))
}

func TestAddSendsDocumentsAndMetadata(t *testing.T) {
	var body map[string]interface{}
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tenants/default_tenant/databases/default_database/collections/coll-1/add" {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		w.WriteHeader(http.StatusOK)
	}))
	client.collectionID = "coll-1"

	err := client.Add(context.Background(),
		[]string{"id-1"},
		[]string{"doc one"},
		[]map[string]interface{}{{"session_id": "s1"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"id-1"}, body["ids"])
	assert.Equal(t, []interface{}{"doc one"}, body["documents"])
}

func TestQueryParsesHitsInDistanceOrder(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []interface{}{"nginx"}, req["queryTexts"])
		assert.EqualValues(t, 2, req["nResults"])
		assert.NotNil(t, req["where"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"documents": [][]string{{"closest", "further"}},
			"metadatas": [][]map[string]interface{}{{{"session_id": "s1"}, {"session_id": "s2"}}},
			"distances": [][]float64{{0.12, 0.48}},
		})
	}))
	client.collectionID = "coll-1"

	hits, err := client.Query(context.Background(), "nginx", map[string]interface{}{"team_id": "core"}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "closest", hits[0].Document)
	assert.Equal(t, 0.12, hits[0].Distance)
	assert.Equal(t, "s2", hits[1].Metadata["session_id"])
}

func TestQueryRetriesOnce(t *testing.T) {
	attempts := 0
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"documents": [][]string{{"ok"}},
			"distances": [][]float64{{0.5}},
		})
	}))
	client.collectionID = "coll-1"

	hits, err := client.Query(context.Background(), "q", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	require.Len(t, hits, 1)
	assert.Equal(t, "ok", hits[0].Document)
}

func TestWaitReadyTimesOut(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	err := client.WaitReady(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestDataOpsRequireProvisioning(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	assert.Error(t, client.Add(context.Background(), []string{"a"}, []string{"d"}, nil))
	_, err := client.Query(context.Background(), "q", nil, 1)
	assert.Error(t, err)
}
