package confparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natserrors "github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/types"
)

func TestParseDefaults(t *testing.T) {
	cfg := Parse("")
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 4222, cfg.Port)
	assert.Equal(t, int64(1048576), cfg.MaxPayload)
	assert.Equal(t, 4096, cfg.MaxControlLine)
	assert.Equal(t, int64(120), cfg.PingInterval)
	assert.Equal(t, 2, cfg.MaxPingsOut)
	assert.Equal(t, int64(10), cfg.WriteDeadline)
	assert.Nil(t, cfg.JetStream)
	assert.Nil(t, cfg.Auth)
	assert.Nil(t, cfg.TLS)
}

func TestParseTopLevelScalars(t *testing.T) {
	cfg := Parse(`
		host: 0.0.0.0
		port: 5222
		server_name: "edge-1"
		monitor_port: 8222
		https_port: 8443
		max_payload: 8MB
		max_control_line: 8KB
		ping_interval: 2m
		max_pings_out: 5
		write_deadline: 5s
		debug: true
		trace: enabled
		log_file: "/var/log/broker.log"
		logfile_size_limit: 100MB
		logfile_max_num: 7
		disable_sublist_cache: yes
		system_account: SYS
	`)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 5222, cfg.Port)
	assert.Equal(t, "edge-1", cfg.ServerName)
	assert.Equal(t, 8222, cfg.HTTPPort)
	assert.Equal(t, 8443, cfg.HTTPSPort)
	assert.Equal(t, int64(8388608), cfg.MaxPayload)
	assert.Equal(t, 8192, cfg.MaxControlLine)
	assert.Equal(t, int64(120), cfg.PingInterval)
	assert.Equal(t, 5, cfg.MaxPingsOut)
	assert.Equal(t, int64(5), cfg.WriteDeadline)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Trace)
	assert.Equal(t, "/var/log/broker.log", cfg.LogFile)
	assert.Equal(t, int64(100*1024*1024), cfg.LogFileSizeLimit)
	assert.Equal(t, 7, cfg.LogFileMaxNum)
	assert.True(t, cfg.DisableSublistCache)
	assert.Equal(t, "SYS", cfg.SystemAccount)
}

func TestParseListen(t *testing.T) {
	t.Run("host and port", func(t *testing.T) {
		cfg := Parse("listen: 10.0.0.5:4333")
		assert.Equal(t, "10.0.0.5", cfg.Host)
		assert.Equal(t, 4333, cfg.Port)
	})

	t.Run("bare port", func(t *testing.T) {
		cfg := Parse("listen: 4333")
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 4333, cfg.Port)
	})

	t.Run("bare host", func(t *testing.T) {
		cfg := Parse("listen: 0.0.0.0")
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, 4222, cfg.Port)
	})
}

func TestParseLenient(t *testing.T) {
	t.Run("malformed lines skipped", func(t *testing.T) {
		cfg := Parse(`
			this line has no separator
			port: 4333
			??? !!!
			: value without key
		`)
		assert.Equal(t, 4333, cfg.Port)
		assert.Equal(t, "localhost", cfg.Host)
	})

	t.Run("unknown keys skipped", func(t *testing.T) {
		cfg := Parse("mystery_knob: 42\nport: 4333")
		assert.Equal(t, 4333, cfg.Port)
	})

	t.Run("unparsable values yield zero", func(t *testing.T) {
		cfg := Parse("port: not-a-number\nmax_payload: 8XB")
		assert.Equal(t, 0, cfg.Port)
		assert.Equal(t, int64(0), cfg.MaxPayload)
	})

	t.Run("equals separator accepted", func(t *testing.T) {
		cfg := Parse("port = 4333")
		assert.Equal(t, 4333, cfg.Port)
	})
}

func TestParseComments(t *testing.T) {
	cfg := Parse(`
		# full-line comment
		port: 4333 # trailing comment
		server_name: "edge # not a comment"
	`)
	assert.Equal(t, 4333, cfg.Port)
	assert.Equal(t, "edge # not a comment", cfg.ServerName)
}

func TestParseJetStream(t *testing.T) {
	t.Run("bare keyword enables", func(t *testing.T) {
		cfg := Parse("jetstream")
		require.NotNil(t, cfg.JetStream)
		assert.True(t, cfg.JetStream.Enabled)
	})

	t.Run("key value form", func(t *testing.T) {
		cfg := Parse("jetstream: enabled")
		require.NotNil(t, cfg.JetStream)
		assert.True(t, cfg.JetStream.Enabled)
	})

	t.Run("block form", func(t *testing.T) {
		cfg := Parse(`
			jetstream {
				store_dir: "/data/js"
				domain: hub
				max_memory: 1GB
				max_file: 10GB
				unique_tag: "az:"
			}
		`)
		js := cfg.JetStream
		require.NotNil(t, js)
		assert.True(t, js.Enabled)
		assert.Equal(t, "/data/js", js.StoreDir)
		assert.Equal(t, "hub", js.Domain)
		assert.Equal(t, int64(1024*1024*1024), js.MaxMemory)
		assert.Equal(t, int64(10*1024*1024*1024), js.MaxFileStore)
		assert.Equal(t, "az:", js.UniqueTag)
	})
}

func TestParseAuthorization(t *testing.T) {
	t.Run("user password", func(t *testing.T) {
		cfg := Parse(`
			authorization {
				user: admin
				password: secret
			}
		`)
		require.NotNil(t, cfg.Auth)
		assert.Equal(t, "admin", cfg.Auth.Username)
		assert.Equal(t, "secret", cfg.Auth.Password)
		assert.Empty(t, cfg.Auth.Token)
	})

	t.Run("token", func(t *testing.T) {
		cfg := Parse(`
			authorization {
				token: "s3cr3t"
			}
		`)
		require.NotNil(t, cfg.Auth)
		assert.Equal(t, "s3cr3t", cfg.Auth.Token)
	})

	t.Run("allowed users as string list", func(t *testing.T) {
		cfg := Parse(`
			authorization {
				users: ["alice", "bob"]
			}
		`)
		require.NotNil(t, cfg.Auth)
		assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.AllowedUsers)
	})

	t.Run("allowed users as object list", func(t *testing.T) {
		cfg := Parse(`
			authorization {
				users: [
					{user: alice, password: a}
					{user: bob, password: b}
				]
			}
		`)
		require.NotNil(t, cfg.Auth)
		assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.AllowedUsers)
	})
}

func TestParseTLS(t *testing.T) {
	cfg := Parse(`
		tls {
			cert_file: "/etc/pki/server.crt"
			key_file: "/etc/pki/server.key"
			ca_file: "/etc/pki/ca.crt"
			verify: true
			timeout: 3s
			pinned_certs: ["aa:bb", "cc:dd"]
		}
	`)
	tls := cfg.TLS
	require.NotNil(t, tls)
	assert.Equal(t, "/etc/pki/server.crt", tls.CertFile)
	assert.Equal(t, "/etc/pki/server.key", tls.KeyFile)
	assert.Equal(t, "/etc/pki/ca.crt", tls.CAFile)
	assert.True(t, tls.Verify)
	assert.Equal(t, int64(3), tls.Timeout)
	assert.Equal(t, []string{"aa:bb", "cc:dd"}, tls.PinnedCerts)
}

func TestParseInlineBlock(t *testing.T) {
	cfg := Parse(`tls { cert_file: "a.crt", key_file: "a.key" }`)
	require.NotNil(t, cfg.TLS)
	assert.Equal(t, "a.crt", cfg.TLS.CertFile)
	assert.Equal(t, "a.key", cfg.TLS.KeyFile)
}

func TestParseCluster(t *testing.T) {
	cfg := Parse(`
		cluster {
			name: mesh
			listen: 0.0.0.0:6222
			routes: [
				"nats-route://seed1:6222"
				"nats-route://seed2:6222"
			]
			authorization {
				user: route
				password: routepass
			}
		}
	`)
	cl := cfg.Cluster
	require.NotNil(t, cl)
	assert.Equal(t, "mesh", cl.Name)
	assert.Equal(t, "0.0.0.0", cl.Host)
	assert.Equal(t, 6222, cl.Port)
	assert.Equal(t, []string{"nats-route://seed1:6222", "nats-route://seed2:6222"}, cl.Routes)
	require.NotNil(t, cl.Authorization)
	assert.Equal(t, "route", cl.Authorization.Username)
}

func TestParseLeafNodes(t *testing.T) {
	cfg := Parse(`
		leafnodes {
			port: 7422
			host: 0.0.0.0
			advertise: "edge.example.com:7422"
			reconnect_delay: 2s
			remotes: [
				{
					urls: ["nats-leaf://hub1:7422", "nats-leaf://hub2:7422"]
					account: EDGE
					credentials: "/etc/creds/edge.creds"
				}
				{
					url: "nats-leaf://hub3:7422"
					user: leaf
					password: leafpass
				}
			]
		}
	`)
	leaf := cfg.LeafNode
	require.NotNil(t, leaf)
	assert.Equal(t, 7422, leaf.Port)
	assert.Equal(t, "0.0.0.0", leaf.Host)
	assert.Equal(t, "edge.example.com:7422", leaf.Advertise)
	assert.Equal(t, int64(2), leaf.ReconnectDelay)

	require.Len(t, leaf.Remotes, 2)
	assert.Equal(t, []string{"nats-leaf://hub1:7422", "nats-leaf://hub2:7422"}, leaf.Remotes[0].URLs)
	assert.Equal(t, "EDGE", leaf.Remotes[0].Account)
	assert.Equal(t, "/etc/creds/edge.creds", leaf.Remotes[0].Credentials)
	assert.Equal(t, []string{"nats-leaf://hub3:7422"}, leaf.Remotes[1].URLs)
	assert.Equal(t, "leaf", leaf.Remotes[1].Username)
	assert.Equal(t, "leafpass", leaf.Remotes[1].Password)
}

func TestParseRemoteWithTLS(t *testing.T) {
	cfg := Parse(`
		leafnodes {
			remotes: [
				{
					urls: ["tls://hub:7422"]
					tls {
						cert_file: "/etc/pki/leaf.crt"
						key_file: "/etc/pki/leaf.key"
					}
				}
			]
		}
	`)
	require.NotNil(t, cfg.LeafNode)
	require.Len(t, cfg.LeafNode.Remotes, 1)
	remote := cfg.LeafNode.Remotes[0]
	assert.Equal(t, []string{"tls://hub:7422"}, remote.URLs)
	require.NotNil(t, remote.TLS)
	assert.Equal(t, "/etc/pki/leaf.crt", remote.TLS.CertFile)
	assert.Equal(t, "/etc/pki/leaf.key", remote.TLS.KeyFile)
}

func TestParseAccounts(t *testing.T) {
	cfg := Parse(`
		accounts {
			APP {
				jetstream: enabled
				users: [
					{user: app, password: apppass}
				]
				exports: [
					{stream: "telemetry.>"}
					{service: "api.lookup"}
				]
				mappings {
					"orders.*": "orders.v2.*"
				}
			}
			SYS {
				users: [
					{user: sys, password: syspass}
				]
				imports: [
					{stream: "telemetry.>", account: APP, prefix: app}
				]
			}
		}
	`)

	require.Len(t, cfg.Accounts, 2)

	app := cfg.Accounts[0]
	assert.Equal(t, "APP", app.Name)
	assert.True(t, app.JetStream)
	require.Len(t, app.Users, 1)
	assert.Equal(t, "app", app.Users[0].Username)
	require.Len(t, app.Exports, 2)
	assert.Equal(t, "telemetry.>", app.Exports[0].Stream)
	assert.Equal(t, "api.lookup", app.Exports[1].Service)
	assert.Equal(t, map[string]string{"orders.*": "orders.v2.*"}, app.Mappings)

	sys := cfg.Accounts[1]
	assert.Equal(t, "SYS", sys.Name)
	require.Len(t, sys.Imports, 1)
	assert.Equal(t, "telemetry.>", sys.Imports[0].Stream)
	assert.Equal(t, "APP", sys.Imports[0].Account)
	assert.Equal(t, "app", sys.Imports[0].Prefix)
}

func TestParseCompleteFile(t *testing.T) {
	text := `
# edge broker
server_name: "edge-1"
listen: 0.0.0.0:4222
monitor_port: 8222
max_payload: 4MB
system_account: SYS

authorization {
	user: admin
	password: secret
}

jetstream {
	store_dir: "/data/js"
	max_memory: 1GB
	max_file: 10GB
}

cluster {
	name: mesh
	port: 6222
	routes: ["nats-route://seed:6222"]
}
`

	want := types.DefaultConfiguration()
	want.ServerName = "edge-1"
	want.Host = "0.0.0.0"
	want.HTTPPort = 8222
	want.MaxPayload = 4 * 1024 * 1024
	want.SystemAccount = "SYS"
	want.Auth = &types.AuthConfig{Username: "admin", Password: "secret"}
	want.JetStream = &types.JetStreamConfig{
		Enabled:      true,
		StoreDir:     "/data/js",
		MaxMemory:    1024 * 1024 * 1024,
		MaxFileStore: 10 * 1024 * 1024 * 1024,
	}
	want.Cluster = &types.ClusterConfig{
		Name:   "mesh",
		Port:   6222,
		Routes: []string{"nats-route://seed:6222"},
	}

	got := Parse(text)
	ignoreIdentity := cmpopts.IgnoreFields(types.Configuration{}, "ID", "CreatedAt")
	if diff := cmp.Diff(want, got, ignoreIdentity); diff != "" {
		t.Errorf("parsed configuration mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFile(t *testing.T) {
	t.Run("reads and parses", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broker.conf")
		require.NoError(t, os.WriteFile(path, []byte("port: 4333\n"), 0o600))

		cfg, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, 4333, cfg.Port)
	})

	t.Run("missing file is not found", func(t *testing.T) {
		cfg, err := ParseFile(filepath.Join(t.TempDir(), "absent.conf"))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.True(t, natserrors.IsNotFound(err))
		assert.ErrorIs(t, err, natserrors.ErrFileNotFound)
	})
}
