// Package types contains the shared domain types used across the natsconf platform:
// the broker configuration tree, versioned snapshots, structural diffs, and
// validation results.
package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Configuration is the complete broker settings tree. ID and CreatedAt identify
// a particular snapshot and are excluded from equality and diff computation.
// A Configuration captured into a ConfigurationVersion is treated as immutable;
// mutation always happens on a fresh Clone.
type Configuration struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Host                string `json:"host"`
	Port                int    `json:"port"`
	ServerName          string `json:"server_name,omitempty"`
	HTTPPort            int    `json:"http_port,omitempty"`
	HTTPSPort           int    `json:"https_port,omitempty"`
	MaxPayload          int64  `json:"max_payload"`
	MaxControlLine      int    `json:"max_control_line"`
	PingInterval        int64  `json:"ping_interval"` // seconds
	MaxPingsOut         int    `json:"max_pings_out"`
	WriteDeadline       int64  `json:"write_deadline"` // seconds
	Debug               bool   `json:"debug"`
	Trace               bool   `json:"trace"`
	LogFile             string `json:"log_file,omitempty"`
	LogFileSizeLimit    int64  `json:"logfile_size_limit,omitempty"`
	LogFileMaxNum       int    `json:"logfile_max_num,omitempty"`
	DisableSublistCache bool   `json:"disable_sublist_cache,omitempty"`
	SystemAccount       string `json:"system_account,omitempty"`

	Auth      *AuthConfig      `json:"auth,omitempty"`
	TLS       *TLSConfig       `json:"tls,omitempty"`
	LeafNode  *LeafNodeConfig  `json:"leafnodes,omitempty"`
	Cluster   *ClusterConfig   `json:"cluster,omitempty"`
	Accounts  []*Account       `json:"accounts,omitempty"`
	JetStream *JetStreamConfig `json:"jetstream,omitempty"`
}

// AuthConfig holds client authentication settings. Username/password and token
// are mutually exclusive; the validator enforces that at every level where an
// AuthConfig appears.
type AuthConfig struct {
	Username     string   `json:"username,omitempty"`
	Password     string   `json:"password,omitempty"`
	Token        string   `json:"token,omitempty"`
	AllowedUsers []string `json:"allowed_users,omitempty"`
}

// TLSConfig holds certificate settings for a listener or remote. The
// CertStore* fields select a certificate from the OS certificate store and are
// only valid on Windows hosts.
type TLSConfig struct {
	CertFile    string   `json:"cert_file,omitempty"`
	KeyFile     string   `json:"key_file,omitempty"`
	CAFile      string   `json:"ca_file,omitempty"`
	Verify      bool     `json:"verify,omitempty"`
	Timeout     int64    `json:"timeout,omitempty"` // seconds
	PinnedCerts []string `json:"pinned_certs,omitempty"`
	CertStore   string   `json:"cert_store,omitempty"`
	CertMatchBy string   `json:"cert_match_by,omitempty"`
	CertMatch   string   `json:"cert_match,omitempty"`
}

// LeafNodeConfig configures the leafnode listener and its remote federation
// links.
type LeafNodeConfig struct {
	Port                    int               `json:"port,omitempty"`
	Host                    string            `json:"host,omitempty"`
	Advertise               string            `json:"advertise,omitempty"`
	IsolateLeafnodeInterest bool              `json:"isolate_leafnode_interest,omitempty"`
	ReconnectDelay          int64             `json:"reconnect_delay,omitempty"` // seconds
	ImportSubjects          []string          `json:"import_subjects,omitempty"`
	ExportSubjects          []string          `json:"export_subjects,omitempty"`
	TLS                     *TLSConfig        `json:"tls,omitempty"`
	Authorization           *AuthConfig       `json:"authorization,omitempty"`
	Remotes                 []*LeafNodeRemote `json:"remotes,omitempty"`
}

// LeafNodeRemote describes one outbound leafnode connection.
type LeafNodeRemote struct {
	URLs             []string   `json:"urls,omitempty"`
	Account          string     `json:"account,omitempty"`
	Credentials      string     `json:"credentials,omitempty"`
	FirstInfoTimeout int64      `json:"first_info_timeout,omitempty"` // seconds
	Username         string     `json:"username,omitempty"`
	Password         string     `json:"password,omitempty"`
	Token            string     `json:"token,omitempty"`
	TLS              *TLSConfig `json:"tls,omitempty"`
}

// ClusterConfig configures full-mesh clustering with other brokers.
type ClusterConfig struct {
	Name          string      `json:"name,omitempty"`
	Port          int         `json:"port,omitempty"`
	Host          string      `json:"host,omitempty"`
	Routes        []string    `json:"routes,omitempty"`
	Authorization *AuthConfig `json:"authorization,omitempty"`
	TLS           *TLSConfig  `json:"tls,omitempty"`
}

// Account is a named isolation context with its own users, subject
// imports/exports, and mappings.
type Account struct {
	Name      string            `json:"name"`
	JetStream bool              `json:"jetstream,omitempty"`
	Users     []*User           `json:"users,omitempty"`
	Imports   []*SubjectImport  `json:"imports,omitempty"`
	Exports   []*SubjectExport  `json:"exports,omitempty"`
	Mappings  map[string]string `json:"mappings,omitempty"`
}

// User is a single account user.
type User struct {
	Username string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// SubjectImport grants an account access to a subject exported elsewhere.
type SubjectImport struct {
	Stream  string `json:"stream,omitempty"`
	Service string `json:"service,omitempty"`
	Account string `json:"account,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
	To      string `json:"to,omitempty"`
}

// SubjectExport makes a subject available to other accounts.
type SubjectExport struct {
	Stream  string `json:"stream,omitempty"`
	Service string `json:"service,omitempty"`
}

// JetStreamConfig configures the persistence subsystem. MaxMemory and
// MaxFileStore use -1 for unlimited; 0 is invalid when JetStream is enabled.
type JetStreamConfig struct {
	Enabled      bool   `json:"enabled"`
	StoreDir     string `json:"store_dir,omitempty"`
	Domain       string `json:"domain,omitempty"`
	MaxMemory    int64  `json:"max_memory,omitempty"`
	MaxFileStore int64  `json:"max_file_store,omitempty"`
	UniqueTag    string `json:"unique_tag,omitempty"`
}

// NewConfiguration returns an empty configuration with a fresh identity.
func NewConfiguration() *Configuration {
	return &Configuration{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
}

// DefaultConfiguration returns a configuration carrying the broker defaults.
// These values pass standalone validation unchanged.
func DefaultConfiguration() *Configuration {
	cfg := NewConfiguration()
	cfg.Host = "localhost"
	cfg.Port = 4222
	cfg.MaxPayload = 1048576
	cfg.MaxControlLine = 4096
	cfg.PingInterval = 120
	cfg.MaxPingsOut = 2
	cfg.WriteDeadline = 10
	return cfg
}

// Clone returns a deep copy of the configuration carrying a fresh identity and
// creation timestamp. Identity and timestamp are excluded from diffing, so a
// clone always diffs empty against its source.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}

	// JSON round-trip for the deep copy; the tree is plain data.
	clone := &Configuration{}
	data, err := json.Marshal(c)
	if err == nil {
		_ = json.Unmarshal(data, clone)
	} else {
		*clone = *c
	}

	clone.ID = uuid.New()
	clone.CreatedAt = time.Now().UTC()
	return clone
}
