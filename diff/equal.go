package diff

import "github.com/c360/natsconf/types"

// Structural equality for collection elements. Collections are compared
// position by position: a different length or a reordering registers as a
// change.

func equalRemotes(a, b []*types.LeafNodeRemote) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalRemote(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalRemote(a, b *types.LeafNodeRemote) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equalStringSlices(a.URLs, b.URLs) &&
		a.Account == b.Account &&
		a.Credentials == b.Credentials &&
		a.FirstInfoTimeout == b.FirstInfoTimeout &&
		a.Username == b.Username &&
		a.Password == b.Password &&
		a.Token == b.Token &&
		equalTLS(a.TLS, b.TLS)
}

func equalTLS(a, b *types.TLSConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.CertFile == b.CertFile &&
		a.KeyFile == b.KeyFile &&
		a.CAFile == b.CAFile &&
		a.Verify == b.Verify &&
		a.Timeout == b.Timeout &&
		equalStringSlices(a.PinnedCerts, b.PinnedCerts) &&
		a.CertStore == b.CertStore &&
		a.CertMatchBy == b.CertMatchBy &&
		a.CertMatch == b.CertMatch
}

func equalAccounts(a, b []*types.Account) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalAccount(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalAccount(a, b *types.Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name &&
		a.JetStream == b.JetStream &&
		equalUsers(a.Users, b.Users) &&
		equalImports(a.Imports, b.Imports) &&
		equalExports(a.Exports, b.Exports) &&
		equalStringMaps(a.Mappings, b.Mappings)
}

func equalUsers(a, b []*types.User) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if a[i].Username != b[i].Username || a[i].Password != b[i].Password {
			return false
		}
	}
	return true
}

func equalImports(a, b []*types.SubjectImport) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if *a[i] != *b[i] {
			return false
		}
	}
	return true
}

func equalExports(a, b []*types.SubjectExport) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if *a[i] != *b[i] {
			return false
		}
	}
	return true
}

func equalStringMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
