package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360/natsconf/types"
)

// routePattern matches cluster route URLs of the form nats-route://host:port.
var routePattern = regexp.MustCompile(`^nats-route://[^\s:/]+:\d+$`)

func (v *Validator) checkPort(r *types.ValidationResult, path string, port int) {
	if port < minPort || port > maxPort {
		r.AddError(path, fmt.Sprintf("port %d is outside the valid range [%d, %d]", port, minPort, maxPort))
	}
}

// checkDistinctPorts requires pairwise distinctness across every enabled
// listener port.
func (v *Validator) checkDistinctPorts(r *types.ValidationResult, cfg *types.Configuration) {
	type listener struct {
		path string
		port int
	}
	listeners := []listener{{"Port", cfg.Port}}
	if cfg.HTTPPort != 0 {
		listeners = append(listeners, listener{"HTTPPort", cfg.HTTPPort})
	}
	if cfg.HTTPSPort != 0 {
		listeners = append(listeners, listener{"HTTPSPort", cfg.HTTPSPort})
	}
	if cfg.LeafNode != nil && cfg.LeafNode.Port != 0 {
		listeners = append(listeners, listener{"LeafNode.Port", cfg.LeafNode.Port})
	}
	if cfg.Cluster != nil && cfg.Cluster.Port != 0 {
		listeners = append(listeners, listener{"Cluster.Port", cfg.Cluster.Port})
	}

	for i := 0; i < len(listeners); i++ {
		for j := i + 1; j < len(listeners); j++ {
			if listeners[i].port != 0 && listeners[i].port == listeners[j].port {
				r.AddError(listeners[j].path,
					fmt.Sprintf("port %d conflicts with %s", listeners[j].port, listeners[i].path))
			}
		}
	}
}

func (v *Validator) checkJetStream(r *types.ValidationResult, js *types.JetStreamConfig) {
	if js == nil || !js.Enabled {
		return
	}
	if js.StoreDir == "" {
		r.AddError("JetStream.StoreDir", "store directory is required when JetStream is enabled")
	}
	if js.MaxMemory == 0 {
		r.AddError("JetStream.MaxMemory", "memory cap cannot be zero; use -1 for unlimited")
	}
	if js.MaxFileStore == 0 {
		r.AddError("JetStream.MaxFileStore", "store cap cannot be zero; use -1 for unlimited")
	}
}

// checkAuth enforces the username/password XOR token constraint at one level.
func (v *Validator) checkAuth(r *types.ValidationResult, path string, auth *types.AuthConfig) {
	if auth == nil {
		return
	}
	v.checkCredentials(r, path, auth.Username, auth.Password, auth.Token)
}

func (v *Validator) checkCredentials(r *types.ValidationResult, path, username, password, token string) {
	if (username != "" || password != "") && token != "" {
		r.AddError(path, "username/password and token authentication are mutually exclusive")
	}
}

// checkTLS enforces cert/key pairing and gates certificate-store fields on the
// host platform.
func (v *Validator) checkTLS(r *types.ValidationResult, path string, tls *types.TLSConfig) {
	if tls == nil {
		return
	}

	if tls.CertFile != "" && tls.KeyFile == "" {
		r.AddError(path+".KeyFile", "key file is required when a cert file is set")
	}
	if tls.KeyFile != "" && tls.CertFile == "" {
		r.AddError(path+".CertFile", "cert file is required when a key file is set")
	}

	usesStore := tls.CertStore != "" || tls.CertMatchBy != "" || tls.CertMatch != ""
	if usesStore && !v.platform.IsWindows() {
		r.AddError(path+".CertStore", "certificate store fields are only supported on Windows hosts")
	}
	if usesStore && tls.CertFile != "" {
		r.AddWarning(path+".CertStore", "both certificate files and the certificate store are configured; the store takes precedence")
	}
}

func (v *Validator) checkLeafNode(r *types.ValidationResult, leaf *types.LeafNodeConfig) {
	if leaf == nil {
		return
	}

	v.checkTLS(r, "LeafNode.TLS", leaf.TLS)
	v.checkAuth(r, "LeafNode.Authorization", leaf.Authorization)

	for i, subject := range leaf.ImportSubjects {
		v.checkSubject(r, fmt.Sprintf("LeafNode.ImportSubjects[%d]", i), subject)
	}
	for i, subject := range leaf.ExportSubjects {
		v.checkSubject(r, fmt.Sprintf("LeafNode.ExportSubjects[%d]", i), subject)
	}

	for i, remote := range leaf.Remotes {
		if remote == nil {
			continue
		}
		path := fmt.Sprintf("LeafNode.Remotes[%d]", i)
		v.checkCredentials(r, path, remote.Username, remote.Password, remote.Token)
		v.checkTLS(r, path+".TLS", remote.TLS)
	}
}

func (v *Validator) checkCluster(r *types.ValidationResult, cluster *types.ClusterConfig) {
	if cluster == nil {
		return
	}

	if cluster.Name == "" {
		r.AddError("Cluster.Name", "cluster name is required when clustering is configured")
	}
	v.checkAuth(r, "Cluster.Authorization", cluster.Authorization)
	v.checkTLS(r, "Cluster.TLS", cluster.TLS)

	for i, route := range cluster.Routes {
		if !routePattern.MatchString(route) {
			r.AddError(fmt.Sprintf("Cluster.Routes[%d]", i),
				fmt.Sprintf("route %q must match nats-route://host:port", route))
		}
	}
}

// checkSubject validates a dot-segmented subject pattern: non-empty, no
// leading/trailing or doubled dots, '>' only as the final token, and only
// alphanumerics plus '.', '-', '_', '*', '>'.
func (v *Validator) checkSubject(r *types.ValidationResult, path, subject string) {
	if subject == "" {
		r.AddError(path, "subject cannot be empty")
		return
	}
	if strings.HasPrefix(subject, ".") || strings.HasSuffix(subject, ".") {
		r.AddError(path, fmt.Sprintf("subject %q must not start or end with '.'", subject))
		return
	}
	if strings.Contains(subject, "..") {
		r.AddError(path, fmt.Sprintf("subject %q must not contain empty tokens", subject))
		return
	}

	for _, ch := range subject {
		if !isSubjectChar(ch) {
			r.AddError(path, fmt.Sprintf("subject %q contains invalid character %q", subject, ch))
			return
		}
	}

	if idx := strings.IndexByte(subject, '>'); idx >= 0 {
		// '>' must be the entire subject or the final token preceded by '.'.
		if idx != len(subject)-1 || (len(subject) > 1 && subject[len(subject)-2] != '.') {
			r.AddError(path, fmt.Sprintf("subject %q may only use '>' as the final token", subject))
		}
	}
}

func isSubjectChar(ch rune) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	case ch == '.' || ch == '-' || ch == '_' || ch == '*' || ch == '>':
		return true
	}
	return false
}
