package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":9080", cfg.Server.Addr)
	assert.Equal(t, "localhost", cfg.Chroma.Host)
	assert.Equal(t, 8000, cfg.Chroma.Port)
	assert.Equal(t, "default_tenant", cfg.Chroma.Tenant)
	assert.Equal(t, "default_database", cfg.Chroma.Database)
	assert.Equal(t, "conversation_memory", cfg.Chroma.Collection)
	assert.Equal(t, 5, cfg.Chroma.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Chroma.StartupWaitSecs)
	assert.NotEmpty(t, cfg.Memory.Dir)
	assert.False(t, cfg.Memory.DisableJSON)
	assert.False(t, cfg.Memory.PrivateJSONOnly)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MCP_RECALL_CHROMA_URL", "http://vectors.internal:9000")
	t.Setenv("MCP_RECALL_CHROMA_TENANT", "acme")
	t.Setenv("MCP_RECALL_CHROMA_COLLECTION", "support_memory")
	t.Setenv("MCP_RECALL_MEMORY_DIR", "/tmp/recall-test")
	t.Setenv("MCP_RECALL_USER_ID", "alice")
	t.Setenv("MCP_RECALL_TEAM_ID", "core")
	t.Setenv("MCP_RECALL_DEFAULT_PROJECT", "support-bot")
	t.Setenv("MCP_RECALL_DISABLE_JSON", "true")
	t.Setenv("MCP_RECALL_PRIVATE_JSON_ONLY", "1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://vectors.internal:9000", cfg.Chroma.BaseURL())
	assert.Equal(t, "acme", cfg.Chroma.Tenant)
	assert.Equal(t, "support_memory", cfg.Chroma.Collection)
	assert.Equal(t, "/tmp/recall-test", cfg.Memory.Dir)
	assert.Equal(t, "alice", cfg.Memory.DefaultUserID)
	assert.Equal(t, "core", cfg.Memory.DefaultTeamID)
	assert.Equal(t, "support-bot", cfg.Memory.DefaultProject)
	assert.True(t, cfg.Memory.DisableJSON)
	assert.True(t, cfg.Memory.PrivateJSONOnly)
}

func TestHostPortBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chroma.Host = "vectors"
	cfg.Chroma.Port = 8001
	assert.Equal(t, "http://vectors:8001", cfg.Chroma.BaseURL())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Chroma.Port = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Chroma.Collection = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Memory.Dir = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Chroma.TimeoutSeconds = 0
	assert.Error(t, cfg.Validate())
}
