// Package diff computes the structural difference between two configuration
// snapshots as an ordered list of dotted-path property changes.
//
// Field enumeration is table-driven: every configuration type declares its
// fields explicitly in declared order, so output order is deterministic and no
// runtime reflection is involved. Snapshot identity and creation timestamp are
// always excluded.
package diff

import (
	"github.com/c360/natsconf/types"
)

// ComputeDiff compares two configuration snapshots. Both nil yields an empty
// diff; exactly one nil yields a single change at path "Configuration"
// representing whole-object creation or deletion.
func ComputeDiff(oldCfg, newCfg *types.Configuration) *types.Diff {
	d := types.NewDiff()

	if oldCfg == nil && newCfg == nil {
		return d
	}
	if oldCfg == nil {
		d.Add("Configuration", nil, newCfg)
		return d
	}
	if newCfg == nil {
		d.Add("Configuration", oldCfg, nil)
		return d
	}

	diffScalars(d, "", configurationFields, oldCfg, newCfg)

	diffNested(d, "Auth", oldCfg.Auth, newCfg.Auth, func(o, n *types.AuthConfig) {
		diffScalars(d, "Auth.", authFields, o, n)
	})
	diffNested(d, "TLS", oldCfg.TLS, newCfg.TLS, func(o, n *types.TLSConfig) {
		diffScalars(d, "TLS.", tlsFields, o, n)
	})
	diffNested(d, "LeafNode", oldCfg.LeafNode, newCfg.LeafNode, func(o, n *types.LeafNodeConfig) {
		diffScalars(d, "LeafNode.", leafNodeFields, o, n)
		diffNested(d, "LeafNode.TLS", o.TLS, n.TLS, func(ot, nt *types.TLSConfig) {
			diffScalars(d, "LeafNode.TLS.", tlsFields, ot, nt)
		})
		diffNested(d, "LeafNode.Authorization", o.Authorization, n.Authorization, func(oa, na *types.AuthConfig) {
			diffScalars(d, "LeafNode.Authorization.", authFields, oa, na)
		})
		if !equalRemotes(o.Remotes, n.Remotes) {
			d.Add("LeafNode.Remotes", o.Remotes, n.Remotes)
		}
	})
	diffNested(d, "Cluster", oldCfg.Cluster, newCfg.Cluster, func(o, n *types.ClusterConfig) {
		diffScalars(d, "Cluster.", clusterFields, o, n)
		diffNested(d, "Cluster.Authorization", o.Authorization, n.Authorization, func(oa, na *types.AuthConfig) {
			diffScalars(d, "Cluster.Authorization.", authFields, oa, na)
		})
		diffNested(d, "Cluster.TLS", o.TLS, n.TLS, func(ot, nt *types.TLSConfig) {
			diffScalars(d, "Cluster.TLS.", tlsFields, ot, nt)
		})
	})
	if !equalAccounts(oldCfg.Accounts, newCfg.Accounts) {
		d.Add("Accounts", oldCfg.Accounts, newCfg.Accounts)
	}
	diffNested(d, "JetStream", oldCfg.JetStream, newCfg.JetStream, func(o, n *types.JetStreamConfig) {
		diffScalars(d, "JetStream.", jetStreamFields, o, n)
	})

	return d
}

// scalarField names one directly comparable field of T.
type scalarField[T any] struct {
	name string
	get  func(*T) any
}

// diffScalars emits a change for every table field whose values differ.
func diffScalars[T any](d *types.Diff, prefix string, fields []scalarField[T], oldV, newV *T) {
	for _, f := range fields {
		ov, nv := f.get(oldV), f.get(newV)
		if !equalValues(ov, nv) {
			d.Add(prefix+f.name, ov, nv)
		}
	}
}

// diffNested handles an optional sub-object: both absent is a no-op, exactly
// one absent emits a single whole-object change at the path, both present
// recurses field by field.
func diffNested[T any](d *types.Diff, path string, oldV, newV *T, recurse func(o, n *T)) {
	switch {
	case oldV == nil && newV == nil:
	case oldV == nil:
		d.Add(path, nil, newV)
	case newV == nil:
		d.Add(path, oldV, nil)
	default:
		recurse(oldV, newV)
	}
}

// equalValues compares scalar field values. String collections are compared
// order-sensitively: reordering registers as a change.
func equalValues(a, b any) bool {
	if as, ok := a.([]string); ok {
		bs, ok := b.([]string)
		return ok && equalStringSlices(as, bs)
	}
	return a == b
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
