// Package confparse parses the broker's brace-delimited configuration language
// into a types.Configuration tree.
//
// Parsing is deliberately best-effort: malformed or unrecognized lines are
// silently skipped, never raised as errors. Only the file-based entry point can
// fail, and only when the file itself is missing or unreadable.
package confparse

import (
	"os"
	"strings"

	"github.com/c360/natsconf/errors"
	"github.com/c360/natsconf/types"
)

// Parse parses configuration text into a Configuration. It is pure and total:
// any text yields a configuration, starting from broker defaults.
func Parse(text string) *types.Configuration {
	cfg := types.DefaultConfiguration()
	cur := newLineCursor(text)

	for cur.hasMore() {
		line := stripComment(cur.next())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if name, open, ok := blockStart(line); ok {
			content := collectBlock(line, open, cur)
			applyBlock(cfg, name, content)
			continue
		}

		if key, value, ok := splitKeyValue(line); ok {
			applyTopLevel(cfg, key, value)
			continue
		}

		// Bare "jetstream" enables the subsystem with defaults.
		if strings.EqualFold(line, "jetstream") {
			ensureJetStream(cfg).Enabled = true
		}
		// Anything else is skipped.
	}

	return cfg
}

// ParseFile reads and parses a configuration file. A missing file is reported
// as a not-found error; any other read failure is transient. Parsing itself
// never fails.
func ParseFile(path string) (*types.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapNotFound(errors.ErrFileNotFound, "Parser", "ParseFile", "open "+path)
		}
		return nil, errors.WrapTransient(err, "Parser", "ParseFile", "read "+path)
	}
	return Parse(string(data)), nil
}

// lineCursor scans text top to bottom, one line at a time.
type lineCursor struct {
	lines []string
	pos   int
}

func newLineCursor(text string) *lineCursor {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &lineCursor{lines: strings.Split(text, "\n")}
}

func (c *lineCursor) hasMore() bool {
	return c.pos < len(c.lines)
}

func (c *lineCursor) next() string {
	line := c.lines[c.pos]
	c.pos++
	return line
}

// stripComment removes a trailing # comment, respecting quoted strings.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '#':
			return line[:i]
		}
	}
	return line
}

// splitKeyValue splits a "key: value" or "key = value" line. The first colon
// wins over the first equals unless the equals appears first.
func splitKeyValue(line string) (key, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	eq := strings.IndexByte(line, '=')

	sep := colon
	if eq >= 0 && (colon < 0 || eq < colon) {
		sep = eq
	}
	if sep < 0 {
		return "", "", false
	}

	key = strings.TrimSpace(line[:sep])
	value = strings.TrimSpace(line[sep+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

// blockStart reports whether the line opens a brace or bracket block: an
// opening symbol appears before any closing counterpart. The block name is the
// text preceding the earliest opener, with a trailing ':' or '=' stripped.
func blockStart(line string) (name string, open byte, ok bool) {
	openIdx := -1
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '{', '[':
			openIdx = i
		case '}', ']':
			if openIdx < 0 {
				return "", 0, false
			}
		}
		if openIdx >= 0 {
			break
		}
	}
	if openIdx < 0 {
		return "", 0, false
	}

	name = strings.TrimSpace(line[:openIdx])
	name = strings.TrimRight(name, ":=")
	name = strings.TrimSpace(name)
	return name, line[openIdx], true
}

// collectBlock extracts the content of a block opened on the given line,
// counting matching braces and brackets until the depth returns to zero.
// If the block closes on the opening line the content is extracted inline
// without advancing the cursor.
func collectBlock(line string, open byte, cur *lineCursor) string {
	idx := strings.IndexByte(line, open)
	rest := line[idx+1:]

	var b strings.Builder
	depth := 1

	consume := func(s string) bool {
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
				if depth == 0 {
					b.WriteString(s[:i])
					return true
				}
			}
		}
		b.WriteString(s)
		return false
	}

	if consume(rest) {
		return b.String()
	}
	for cur.hasMore() {
		b.WriteByte('\n')
		if consume(stripComment(cur.next())) {
			break
		}
	}
	return b.String()
}

// applyTopLevel applies a recognized top-level key/value setting. Unrecognized
// keys are skipped.
func applyTopLevel(cfg *types.Configuration, key, value string) {
	switch strings.ToLower(key) {
	case "listen":
		applyListen(cfg, unquote(value))
	case "host", "net":
		cfg.Host = unquote(value)
	case "port":
		cfg.Port = parseInt(value)
	case "server_name", "name":
		cfg.ServerName = unquote(value)
	case "monitor_port", "http_port", "http":
		cfg.HTTPPort = parseInt(value)
	case "https_port", "https":
		cfg.HTTPSPort = parseInt(value)
	case "debug":
		cfg.Debug = parseBool(value)
	case "trace":
		cfg.Trace = parseBool(value)
	case "log_file", "logfile":
		cfg.LogFile = unquote(value)
	case "logfile_size_limit", "log_size_limit":
		cfg.LogFileSizeLimit = parseSize(value)
	case "logfile_max_num":
		cfg.LogFileMaxNum = parseInt(value)
	case "max_payload":
		cfg.MaxPayload = parseSize(value)
	case "max_control_line":
		cfg.MaxControlLine = int(parseSize(value))
	case "ping_interval":
		cfg.PingInterval = parseDurationSeconds(value)
	case "ping_max", "max_pings_out":
		cfg.MaxPingsOut = parseInt(value)
	case "write_deadline":
		cfg.WriteDeadline = parseDurationSeconds(value)
	case "disable_sublist_cache":
		cfg.DisableSublistCache = parseBool(value)
	case "system_account":
		cfg.SystemAccount = unquote(value)
	case "jetstream":
		ensureJetStream(cfg).Enabled = parseBool(value)
	}
}

// applyListen accepts "host:port", a bare port, and a bare host.
func applyListen(cfg *types.Configuration, value string) {
	if idx := strings.LastIndexByte(value, ':'); idx >= 0 {
		host := strings.TrimSpace(value[:idx])
		if host != "" {
			cfg.Host = host
		}
		if port := parseInt(value[idx+1:]); port != 0 {
			cfg.Port = port
		}
		return
	}
	if port := parseInt(value); port != 0 {
		cfg.Port = port
		return
	}
	if value != "" {
		cfg.Host = value
	}
}

func ensureJetStream(cfg *types.Configuration) *types.JetStreamConfig {
	if cfg.JetStream == nil {
		cfg.JetStream = &types.JetStreamConfig{}
	}
	return cfg.JetStream
}
