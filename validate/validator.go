// Package validate checks configurations for standalone correctness and for
// the safety of a proposed transition between two configurations.
//
// Findings come in two tiers: Error-severity findings block an apply, while
// Warning-severity findings only inform the operator. The validator never
// fails; it accumulates findings into a ValidationResult.
package validate

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/c360/natsconf/types"
)

// Validation thresholds. The exact values are load-bearing for compatibility;
// do not re-derive them.
const (
	minPort = 1
	maxPort = 65535

	maxPayloadWarnBytes   = 10 * 1024 * 1024
	payloadDeltaWarnRatio = 0.5
)

// Platform answers host-platform capability queries. The validator consults it
// only for the certificate-store rule.
type Platform interface {
	IsWindows() bool
}

type hostPlatform struct{}

func (hostPlatform) IsWindows() bool { return runtime.GOOS == "windows" }

// HostPlatform returns a Platform backed by the running operating system.
func HostPlatform() Platform { return hostPlatform{} }

// Validator applies the configuration rule set.
type Validator struct {
	platform Platform
	logger   *slog.Logger
}

// NewValidator creates a validator. A nil platform defaults to the host
// platform; a nil logger defaults to slog.Default().
func NewValidator(platform Platform, logger *slog.Logger) *Validator {
	if platform == nil {
		platform = HostPlatform()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{platform: platform, logger: logger}
}

// Validate checks a single configuration for standalone correctness.
func (v *Validator) Validate(cfg *types.Configuration) *types.ValidationResult {
	r := types.NewValidationResult()

	if cfg == nil {
		r.AddError("Configuration", "configuration cannot be nil")
		return r
	}

	if cfg.Host == "" {
		r.AddError("Host", "host cannot be empty")
	}

	v.checkPort(r, "Port", cfg.Port)
	if cfg.HTTPPort != 0 {
		v.checkPort(r, "HTTPPort", cfg.HTTPPort)
	}
	if cfg.HTTPSPort != 0 {
		v.checkPort(r, "HTTPSPort", cfg.HTTPSPort)
	}
	if cfg.LeafNode != nil && cfg.LeafNode.Port != 0 {
		v.checkPort(r, "LeafNode.Port", cfg.LeafNode.Port)
	}
	if cfg.Cluster != nil && cfg.Cluster.Port != 0 {
		v.checkPort(r, "Cluster.Port", cfg.Cluster.Port)
	}
	v.checkDistinctPorts(r, cfg)

	if cfg.MaxPayload <= 0 {
		r.AddError("MaxPayload", "max payload must be greater than zero")
	} else if cfg.MaxPayload > maxPayloadWarnBytes {
		r.AddWarning("MaxPayload", fmt.Sprintf("max payload %d exceeds %d bytes; large payloads degrade broker throughput", cfg.MaxPayload, int64(maxPayloadWarnBytes)))
	}
	if cfg.MaxControlLine <= 0 {
		r.AddError("MaxControlLine", "max control line must be greater than zero")
	}
	if cfg.PingInterval < 0 {
		r.AddError("PingInterval", "ping interval cannot be negative")
	}
	if cfg.MaxPingsOut <= 0 {
		r.AddError("MaxPingsOut", "max pings out must be greater than zero")
	}
	if cfg.WriteDeadline <= 0 {
		r.AddError("WriteDeadline", "write deadline must be greater than zero")
	}
	if cfg.LogFileSizeLimit < 0 {
		r.AddError("LogFileSizeLimit", "log file size limit cannot be negative")
	}

	if cfg.Trace && !cfg.Debug {
		r.AddWarning("Trace", "trace is enabled without debug; trace output will lack debug context")
	}

	v.checkJetStream(r, cfg.JetStream)
	v.checkAuth(r, "Auth", cfg.Auth)
	v.checkTLS(r, "TLS", cfg.TLS)
	v.checkLeafNode(r, cfg.LeafNode)
	v.checkCluster(r, cfg.Cluster)

	if !r.IsValid() {
		v.logger.Debug("configuration validation failed",
			"errors", len(r.Errors()),
			"warnings", len(r.Warnings()))
	}
	return r
}

// ValidateChanges validates the proposed configuration and appends
// transition-specific warnings for risky differences from the current one.
// Transition findings never block an apply.
func (v *Validator) ValidateChanges(current, proposed *types.Configuration) *types.ValidationResult {
	r := v.Validate(proposed)
	if current == nil || proposed == nil {
		return r
	}

	if current.Host != proposed.Host {
		r.AddWarning("Host", "changing the listen host will disconnect all clients")
	}
	if current.Port != proposed.Port {
		r.AddWarning("Port", "changing the listen port will disconnect all clients")
	}

	curJS := jetStreamEnabled(current)
	newJS := jetStreamEnabled(proposed)
	switch {
	case !curJS && newJS:
		r.AddWarning("JetStream.Enabled", "enabling JetStream may require a broker restart")
	case curJS && !newJS:
		r.AddWarning("JetStream.Enabled", "disabling JetStream will make stored streams unavailable (possible data loss)")
	case curJS && newJS:
		if current.JetStream.StoreDir != proposed.JetStream.StoreDir {
			r.AddWarning("JetStream.StoreDir", "changing the store directory while JetStream is enabled orphans existing data")
		}
	}

	curCluster, newCluster := current.Cluster, proposed.Cluster
	curClusterPort, newClusterPort := clusterPort(curCluster), clusterPort(newCluster)
	if curClusterPort != newClusterPort {
		r.AddWarning("Cluster.Port", "changing the cluster port will disconnect routes and may require a restart")
	}
	if clusterName(curCluster) != clusterName(newCluster) {
		r.AddWarning("Cluster.Name", "renaming the cluster will force all routes to re-establish")
	}

	if current.MaxPayload > 0 {
		delta := float64(absInt64(proposed.MaxPayload-current.MaxPayload)) / float64(current.MaxPayload)
		if delta > payloadDeltaWarnRatio {
			r.AddWarning("MaxPayload", fmt.Sprintf("max payload changing by %.0f%% of the previous value; clients may need reconfiguration", delta*100))
		}
	}

	return r
}

func jetStreamEnabled(cfg *types.Configuration) bool {
	return cfg.JetStream != nil && cfg.JetStream.Enabled
}

func clusterPort(c *types.ClusterConfig) int {
	if c == nil {
		return 0
	}
	return c.Port
}

func clusterName(c *types.ClusterConfig) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
