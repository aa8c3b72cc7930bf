package diff

import "github.com/c360/natsconf/types"

// Field tables, one per configuration type, in declared field order.
// Identity and creation timestamp are deliberately absent.

var configurationFields = []scalarField[types.Configuration]{
	{"Host", func(c *types.Configuration) any { return c.Host }},
	{"Port", func(c *types.Configuration) any { return c.Port }},
	{"ServerName", func(c *types.Configuration) any { return c.ServerName }},
	{"HTTPPort", func(c *types.Configuration) any { return c.HTTPPort }},
	{"HTTPSPort", func(c *types.Configuration) any { return c.HTTPSPort }},
	{"MaxPayload", func(c *types.Configuration) any { return c.MaxPayload }},
	{"MaxControlLine", func(c *types.Configuration) any { return c.MaxControlLine }},
	{"PingInterval", func(c *types.Configuration) any { return c.PingInterval }},
	{"MaxPingsOut", func(c *types.Configuration) any { return c.MaxPingsOut }},
	{"WriteDeadline", func(c *types.Configuration) any { return c.WriteDeadline }},
	{"Debug", func(c *types.Configuration) any { return c.Debug }},
	{"Trace", func(c *types.Configuration) any { return c.Trace }},
	{"LogFile", func(c *types.Configuration) any { return c.LogFile }},
	{"LogFileSizeLimit", func(c *types.Configuration) any { return c.LogFileSizeLimit }},
	{"LogFileMaxNum", func(c *types.Configuration) any { return c.LogFileMaxNum }},
	{"DisableSublistCache", func(c *types.Configuration) any { return c.DisableSublistCache }},
	{"SystemAccount", func(c *types.Configuration) any { return c.SystemAccount }},
}

var authFields = []scalarField[types.AuthConfig]{
	{"Username", func(a *types.AuthConfig) any { return a.Username }},
	{"Password", func(a *types.AuthConfig) any { return a.Password }},
	{"Token", func(a *types.AuthConfig) any { return a.Token }},
	{"AllowedUsers", func(a *types.AuthConfig) any { return a.AllowedUsers }},
}

var tlsFields = []scalarField[types.TLSConfig]{
	{"CertFile", func(t *types.TLSConfig) any { return t.CertFile }},
	{"KeyFile", func(t *types.TLSConfig) any { return t.KeyFile }},
	{"CAFile", func(t *types.TLSConfig) any { return t.CAFile }},
	{"Verify", func(t *types.TLSConfig) any { return t.Verify }},
	{"Timeout", func(t *types.TLSConfig) any { return t.Timeout }},
	{"PinnedCerts", func(t *types.TLSConfig) any { return t.PinnedCerts }},
	{"CertStore", func(t *types.TLSConfig) any { return t.CertStore }},
	{"CertMatchBy", func(t *types.TLSConfig) any { return t.CertMatchBy }},
	{"CertMatch", func(t *types.TLSConfig) any { return t.CertMatch }},
}

var leafNodeFields = []scalarField[types.LeafNodeConfig]{
	{"Port", func(l *types.LeafNodeConfig) any { return l.Port }},
	{"Host", func(l *types.LeafNodeConfig) any { return l.Host }},
	{"Advertise", func(l *types.LeafNodeConfig) any { return l.Advertise }},
	{"IsolateLeafnodeInterest", func(l *types.LeafNodeConfig) any { return l.IsolateLeafnodeInterest }},
	{"ReconnectDelay", func(l *types.LeafNodeConfig) any { return l.ReconnectDelay }},
	{"ImportSubjects", func(l *types.LeafNodeConfig) any { return l.ImportSubjects }},
	{"ExportSubjects", func(l *types.LeafNodeConfig) any { return l.ExportSubjects }},
}

var clusterFields = []scalarField[types.ClusterConfig]{
	{"Name", func(c *types.ClusterConfig) any { return c.Name }},
	{"Port", func(c *types.ClusterConfig) any { return c.Port }},
	{"Host", func(c *types.ClusterConfig) any { return c.Host }},
	{"Routes", func(c *types.ClusterConfig) any { return c.Routes }},
}

var jetStreamFields = []scalarField[types.JetStreamConfig]{
	{"Enabled", func(j *types.JetStreamConfig) any { return j.Enabled }},
	{"StoreDir", func(j *types.JetStreamConfig) any { return j.StoreDir }},
	{"Domain", func(j *types.JetStreamConfig) any { return j.Domain }},
	{"MaxMemory", func(j *types.JetStreamConfig) any { return j.MaxMemory }},
	{"MaxFileStore", func(j *types.JetStreamConfig) any { return j.MaxFileStore }},
	{"UniqueTag", func(j *types.JetStreamConfig) any { return j.UniqueTag }},
}
