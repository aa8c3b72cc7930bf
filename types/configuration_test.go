package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()

	assert.NotEqual(t, "", cfg.ID.String())
	assert.False(t, cfg.CreatedAt.IsZero())
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 4222, cfg.Port)
	assert.Equal(t, int64(1048576), cfg.MaxPayload)
	assert.Equal(t, 4096, cfg.MaxControlLine)
	assert.Equal(t, int64(120), cfg.PingInterval)
	assert.Equal(t, 2, cfg.MaxPingsOut)
	assert.Equal(t, int64(10), cfg.WriteDeadline)
}

func TestConfigurationClone(t *testing.T) {
	t.Run("nil receiver", func(t *testing.T) {
		var cfg *Configuration
		assert.Nil(t, cfg.Clone())
	})

	t.Run("fresh identity", func(t *testing.T) {
		cfg := DefaultConfiguration()
		clone := cfg.Clone()

		assert.NotEqual(t, cfg.ID, clone.ID)
		assert.Equal(t, cfg.Host, clone.Host)
		assert.Equal(t, cfg.Port, clone.Port)
	})

	t.Run("deep copy of nested objects", func(t *testing.T) {
		cfg := DefaultConfiguration()
		cfg.Auth = &AuthConfig{Username: "admin", Password: "secret"}
		cfg.Cluster = &ClusterConfig{
			Name:   "mesh",
			Routes: []string{"nats-route://a:6222"},
			TLS:    &TLSConfig{CertFile: "a.crt", KeyFile: "a.key"},
		}
		cfg.Accounts = []*Account{{
			Name:     "APP",
			Users:    []*User{{Username: "app", Password: "p"}},
			Mappings: map[string]string{"orders.*": "orders.v2.*"},
		}}

		clone := cfg.Clone()
		clone.Auth.Password = "changed"
		clone.Cluster.Routes[0] = "nats-route://b:6222"
		clone.Cluster.TLS.CertFile = "b.crt"
		clone.Accounts[0].Users[0].Password = "q"
		clone.Accounts[0].Mappings["orders.*"] = "other"

		assert.Equal(t, "secret", cfg.Auth.Password)
		assert.Equal(t, "nats-route://a:6222", cfg.Cluster.Routes[0])
		assert.Equal(t, "a.crt", cfg.Cluster.TLS.CertFile)
		assert.Equal(t, "p", cfg.Accounts[0].Users[0].Password)
		assert.Equal(t, "orders.v2.*", cfg.Accounts[0].Mappings["orders.*"])
	})
}

func TestValidationResult(t *testing.T) {
	t.Run("empty is valid", func(t *testing.T) {
		r := NewValidationResult()
		assert.True(t, r.IsValid())
		assert.Empty(t, r.Summary())
	})

	t.Run("warnings keep it valid", func(t *testing.T) {
		r := NewValidationResult()
		r.AddWarning("MaxPayload", "large payload")
		assert.True(t, r.IsValid())
		require.Len(t, r.Warnings(), 1)
		assert.Empty(t, r.Errors())
	})

	t.Run("any error makes it invalid", func(t *testing.T) {
		r := NewValidationResult()
		r.AddWarning("MaxPayload", "large payload")
		r.AddError("Port", "out of range")
		assert.False(t, r.IsValid())
		require.Len(t, r.Errors(), 1)
		assert.Contains(t, r.Summary(), "Port: out of range")
	})

	t.Run("merge accumulates findings", func(t *testing.T) {
		a := NewValidationResult()
		a.AddError("Port", "bad")
		b := NewValidationResult()
		b.AddWarning("Trace", "noisy")

		a.Merge(b)
		a.Merge(nil)
		assert.Len(t, a.Findings, 2)
		assert.False(t, a.IsValid())
	})
}

func TestDiff(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		d := NewDiff()
		assert.False(t, d.HasChanges())
		assert.Equal(t, 0, d.Len())
	})

	t.Run("nil safe", func(t *testing.T) {
		var d *Diff
		assert.False(t, d.HasChanges())
		assert.Equal(t, 0, d.Len())
	})

	t.Run("add preserves order", func(t *testing.T) {
		d := NewDiff()
		d.Add("Host", "localhost", "0.0.0.0")
		d.Add("Port", 4222, 5222)

		require.Equal(t, 2, d.Len())
		assert.Equal(t, "Host", d.Changes[0].Path)
		assert.Equal(t, "Port", d.Changes[1].Path)
		assert.Equal(t, "Port: 4222 -> 5222", d.Changes[1].String())
	})
}
