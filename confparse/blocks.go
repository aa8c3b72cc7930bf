package confparse

import (
	"strings"

	"github.com/c360/natsconf/types"
)

// applyBlock dispatches a named block to its sub-parser. Unrecognized block
// names are skipped.
func applyBlock(cfg *types.Configuration, name, content string) {
	switch strings.ToLower(name) {
	case "jetstream":
		parseJetStreamBlock(cfg, content)
	case "leafnodes", "leafnode":
		cfg.LeafNode = parseLeafNodesBlock(content)
	case "accounts":
		cfg.Accounts = parseAccountsBlock(content)
	case "cluster":
		cfg.Cluster = parseClusterBlock(content)
	case "tls":
		cfg.TLS = parseTLSBlock(content)
	case "authorization":
		cfg.Auth = parseAuthBlock(content)
	}
}

// walkBlock iterates the key/value pairs and nested blocks inside block
// content. Inline blocks arrive as a single comma-separated line, so pair
// lines are comma-split before applying. A field value containing a literal
// comma will be misparsed here; this is a known limitation.
func walkBlock(content string, pairFn func(key, value string), blockFn func(name, inner string)) {
	cur := newLineCursor(content)
	for cur.hasMore() {
		line := strings.TrimSpace(stripComment(cur.next()))
		if line == "" {
			continue
		}

		if name, open, ok := blockStart(line); ok {
			inner := collectBlock(line, open, cur)
			if blockFn != nil {
				blockFn(name, inner)
			}
			continue
		}

		if pairFn == nil {
			continue
		}
		for _, frag := range strings.Split(line, ",") {
			if key, value, ok := splitKeyValue(frag); ok {
				pairFn(key, value)
			}
		}
	}
}

func parseJetStreamBlock(cfg *types.Configuration, content string) {
	js := ensureJetStream(cfg)
	js.Enabled = true
	walkBlock(content, func(key, value string) {
		switch strings.ToLower(key) {
		case "store_dir", "storedir":
			js.StoreDir = unquote(value)
		case "domain":
			js.Domain = unquote(value)
		case "max_memory", "max_memory_store", "max_mem":
			js.MaxMemory = parseSize(value)
		case "max_file", "max_file_store":
			js.MaxFileStore = parseSize(value)
		case "unique_tag":
			js.UniqueTag = unquote(value)
		case "enabled":
			js.Enabled = parseBool(value)
		}
	}, nil)
}

func parseLeafNodesBlock(content string) *types.LeafNodeConfig {
	leaf := &types.LeafNodeConfig{}
	walkBlock(content, func(key, value string) {
		switch strings.ToLower(key) {
		case "port":
			leaf.Port = parseInt(value)
		case "host":
			leaf.Host = unquote(value)
		case "listen":
			host, port := splitHostPort(unquote(value))
			if host != "" {
				leaf.Host = host
			}
			if port != 0 {
				leaf.Port = port
			}
		case "advertise":
			leaf.Advertise = unquote(value)
		case "isolate_leafnode_interest":
			leaf.IsolateLeafnodeInterest = parseBool(value)
		case "reconnect_delay", "reconnect":
			leaf.ReconnectDelay = parseDurationSeconds(value)
		}
	}, func(name, inner string) {
		switch strings.ToLower(name) {
		case "tls":
			leaf.TLS = parseTLSBlock(inner)
		case "authorization":
			leaf.Authorization = parseAuthBlock(inner)
		case "remotes":
			leaf.Remotes = parseRemotes(inner)
		case "imports":
			leaf.ImportSubjects = parseStringList(inner)
		case "exports":
			leaf.ExportSubjects = parseStringList(inner)
		}
	})
	return leaf
}

// parseRemotes parses the remotes array: brace-delimited object groups, each
// tolerating one level of inner nesting for its tls block and urls array.
func parseRemotes(content string) []*types.LeafNodeRemote {
	var remotes []*types.LeafNodeRemote
	for _, group := range extractObjectGroups(content) {
		remote := &types.LeafNodeRemote{}

		if inner, rest, ok := extractNamed(group, "tls"); ok {
			remote.TLS = parseTLSBlock(inner)
			group = rest
		}
		if inner, rest, ok := extractNamed(group, "urls"); ok {
			remote.URLs = parseStringList(inner)
			group = rest
		}

		parseGroupPairs(group, func(key, value string) {
			switch strings.ToLower(key) {
			case "url":
				remote.URLs = append(remote.URLs, unquote(value))
			case "account":
				remote.Account = unquote(value)
			case "credentials", "creds":
				remote.Credentials = unquote(value)
			case "first_info_timeout":
				remote.FirstInfoTimeout = parseDurationSeconds(value)
			case "user", "username":
				remote.Username = unquote(value)
			case "password", "pass":
				remote.Password = unquote(value)
			case "token":
				remote.Token = unquote(value)
			}
		})
		remotes = append(remotes, remote)
	}
	return remotes
}

func parseAccountsBlock(content string) []*types.Account {
	var accounts []*types.Account
	walkBlock(content, nil, func(name, inner string) {
		name = unquote(name)
		if name == "" {
			return
		}
		accounts = append(accounts, parseAccount(name, inner))
	})
	return accounts
}

func parseAccount(name, content string) *types.Account {
	acct := &types.Account{Name: name}
	walkBlock(content, func(key, value string) {
		if strings.EqualFold(key, "jetstream") {
			acct.JetStream = parseBool(value)
		}
	}, func(blockName, inner string) {
		switch strings.ToLower(blockName) {
		case "users":
			acct.Users = parseUsers(inner)
		case "imports":
			acct.Imports = parseImports(inner)
		case "exports":
			acct.Exports = parseExports(inner)
		case "mappings":
			acct.Mappings = parseMappings(inner)
		}
	})
	return acct
}

func parseUsers(content string) []*types.User {
	var users []*types.User
	for _, group := range extractObjectGroups(content) {
		user := &types.User{}
		parseGroupPairs(group, func(key, value string) {
			switch strings.ToLower(key) {
			case "user", "username":
				user.Username = unquote(value)
			case "password", "pass":
				user.Password = unquote(value)
			}
		})
		users = append(users, user)
	}
	return users
}

func parseImports(content string) []*types.SubjectImport {
	var imports []*types.SubjectImport
	for _, group := range extractObjectGroups(content) {
		imp := &types.SubjectImport{}
		parseGroupPairs(group, func(key, value string) {
			switch strings.ToLower(key) {
			case "stream":
				imp.Stream = unquote(value)
			case "service":
				imp.Service = unquote(value)
			case "account":
				imp.Account = unquote(value)
			case "prefix":
				imp.Prefix = unquote(value)
			case "to":
				imp.To = unquote(value)
			}
		})
		imports = append(imports, imp)
	}
	return imports
}

func parseExports(content string) []*types.SubjectExport {
	var exports []*types.SubjectExport
	for _, group := range extractObjectGroups(content) {
		exp := &types.SubjectExport{}
		parseGroupPairs(group, func(key, value string) {
			switch strings.ToLower(key) {
			case "stream":
				exp.Stream = unquote(value)
			case "service":
				exp.Service = unquote(value)
			}
		})
		exports = append(exports, exp)
	}
	return exports
}

func parseMappings(content string) map[string]string {
	mappings := make(map[string]string)
	walkBlock(content, func(key, value string) {
		mappings[unquote(key)] = unquote(value)
	}, nil)
	if len(mappings) == 0 {
		return nil
	}
	return mappings
}

func parseClusterBlock(content string) *types.ClusterConfig {
	cluster := &types.ClusterConfig{}
	walkBlock(content, func(key, value string) {
		switch strings.ToLower(key) {
		case "name":
			cluster.Name = unquote(value)
		case "port":
			cluster.Port = parseInt(value)
		case "host":
			cluster.Host = unquote(value)
		case "listen":
			host, port := splitHostPort(unquote(value))
			if host != "" {
				cluster.Host = host
			}
			if port != 0 {
				cluster.Port = port
			}
		}
	}, func(name, inner string) {
		switch strings.ToLower(name) {
		case "routes":
			cluster.Routes = parseStringList(inner)
		case "authorization":
			cluster.Authorization = parseAuthBlock(inner)
		case "tls":
			cluster.TLS = parseTLSBlock(inner)
		}
	})
	return cluster
}

func parseTLSBlock(content string) *types.TLSConfig {
	tls := &types.TLSConfig{}
	walkBlock(content, func(key, value string) {
		switch strings.ToLower(key) {
		case "cert_file":
			tls.CertFile = unquote(value)
		case "key_file":
			tls.KeyFile = unquote(value)
		case "ca_file":
			tls.CAFile = unquote(value)
		case "verify":
			tls.Verify = parseBool(value)
		case "timeout":
			tls.Timeout = parseDurationSeconds(value)
		case "cert_store":
			tls.CertStore = unquote(value)
		case "cert_match_by":
			tls.CertMatchBy = unquote(value)
		case "cert_match":
			tls.CertMatch = unquote(value)
		}
	}, func(name, inner string) {
		if strings.EqualFold(name, "pinned_certs") {
			tls.PinnedCerts = parseStringList(inner)
		}
	})
	return tls
}

func parseAuthBlock(content string) *types.AuthConfig {
	auth := &types.AuthConfig{}
	walkBlock(content, func(key, value string) {
		switch strings.ToLower(key) {
		case "user", "username":
			auth.Username = unquote(value)
		case "password", "pass":
			auth.Password = unquote(value)
		case "token":
			auth.Token = unquote(value)
		}
	}, func(name, inner string) {
		if !strings.EqualFold(name, "users") {
			return
		}
		if strings.Contains(inner, "{") {
			for _, user := range parseUsers(inner) {
				if user.Username != "" {
					auth.AllowedUsers = append(auth.AllowedUsers, user.Username)
				}
			}
		} else {
			auth.AllowedUsers = parseStringList(inner)
		}
	})
	return auth
}

// extractObjectGroups locates brace-delimited object groups inside array
// content, tolerating nested braces and brackets inside a group.
func extractObjectGroups(content string) []string {
	var groups []string
	depth := 0
	start := -1
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case '}':
			depth--
			if depth == 0 && start >= 0 {
				groups = append(groups, content[start:i])
				start = -1
			}
		case '[':
			if depth > 0 {
				depth++
			}
		case ']':
			if depth > 1 {
				depth--
			}
		}
	}
	return groups
}

// extractNamed removes a named sub-block or sub-array ("tls {...}",
// "urls: [...]") from group text, returning its inner content and the
// remainder.
func extractNamed(text, key string) (inner, remainder string, ok bool) {
	lower := strings.ToLower(text)
	from := 0
	for {
		idx := strings.Index(lower[from:], key)
		if idx < 0 {
			return "", text, false
		}
		idx += from
		from = idx + len(key)

		// Token boundary on the left.
		if idx > 0 {
			prev := lower[idx-1]
			if prev != ' ' && prev != '\t' && prev != '\n' && prev != ',' && prev != '{' {
				continue
			}
		}

		// Skip separators to find the opener.
		j := idx + len(key)
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == ':' || text[j] == '=') {
			j++
		}
		if j >= len(text) || (text[j] != '{' && text[j] != '[') {
			continue
		}

		depth := 0
		for k := j; k < len(text); k++ {
			switch text[k] {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					return text[j+1 : k], text[:idx] + text[k+1:], true
				}
			}
		}
		return "", text, false
	}
}

// parseGroupPairs applies comma- and newline-separated key:value pairs inside
// an object group.
func parseGroupPairs(group string, apply func(key, value string)) {
	for _, part := range strings.FieldsFunc(group, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		if key, value, ok := splitKeyValue(part); ok {
			apply(key, value)
		}
	}
}

// parseStringList splits array content into trimmed, unquoted entries.
func parseStringList(content string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		entry := unquote(strings.TrimSpace(part))
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// splitHostPort splits "host:port" permissively; either side may be absent.
func splitHostPort(value string) (host string, port int) {
	if idx := strings.LastIndexByte(value, ':'); idx >= 0 {
		return strings.TrimSpace(value[:idx]), parseInt(value[idx+1:])
	}
	if p := parseInt(value); p != 0 {
		return "", p
	}
	return value, 0
}
