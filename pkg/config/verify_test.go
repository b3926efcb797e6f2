package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAgainstEmbeddedSchema(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr bool
		errMsg  string
	}{
		{name: "defaults", modify: func(cfg *Config) {}},
		{name: "zero idle conns allowed", modify: func(cfg *Config) { cfg.Database.MaxIdleConns = 0 }},
		{
			name:    "open conns below minimum",
			modify:  func(cfg *Config) { cfg.Database.MaxOpenConns = 0 },
			wantErr: true,
			errMsg:  "database.max_open_conns: 0 is less than minimum 1",
		},
		{
			name: "several violations",
			modify: func(cfg *Config) {
				cfg.Fetcher.PoolSize = 0
				cfg.Schedule.MaxWorkers = -3
			},
			wantErr: true,
			errMsg:  "fetcher.pool_size: 0 is less than minimum 1; schedule.max_workers: -3 is less than minimum 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := VerifyAgainstEmbeddedSchema(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifySchema(t *testing.T) {
	t.Run("broken schema", func(t *testing.T) {
		err := verifySchema([]byte("{not json"), Default())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse schema")
	})

	t.Run("missing required and type mismatch", func(t *testing.T) {
		schema := `{"$ref":"#/$defs/Config","$defs":{"Config":{"type":"object","required":["server","extra"],
			"properties":{"server":{"$ref":"#/$defs/Server"}}},
			"Server":{"type":"object","properties":{"listen":{"type":"integer"}}}}}`
		err := verifySchema([]byte(schema), Default())
		require.Error(t, err)
		assert.Contains(t, err.Error(), ": missing required extra")
		assert.Contains(t, err.Error(), "server.listen: expected integer")
	})

	t.Run("unresolved reference", func(t *testing.T) {
		err := verifySchema([]byte(`{"$ref":"#/$defs/Nope"}`), Default())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unresolved schema reference")
	})
}

func TestEmbeddedSchemaMatchesConfig(t *testing.T) {
	generated, err := GenerateSchema()
	require.NoError(t, err)
	data, err := json.Marshal(generated)
	require.NoError(t, err)

	var gen, embedded schemaNode
	require.NoError(t, json.Unmarshal(data, &gen))
	require.NoError(t, json.Unmarshal(embeddedSchema, &embedded))

	require.Len(t, embedded.Defs, len(gen.Defs))
	for name, def := range gen.Defs {
		emb, ok := embedded.Defs[name]
		require.True(t, ok, "schema.json misses %s, run go generate", name)
		assert.ElementsMatch(t, def.Required, emb.Required, name)
		for prop := range def.Properties {
			assert.Contains(t, emb.Properties, prop, "%s.%s", name, prop)
		}
	}
}
