// Package remote provides cached, batched retrieval of file contents from an
// SSH-reachable host. All remote operations shell out to the system ssh
// binary; no SSH protocol is implemented here.
package remote

import (
	"fmt"
	"strconv"
	"strings"
)

// Connection describes how to reach a remote host. It replaces the opaque
// "ssh myhost" command-prefix string with an explicit value type, so that
// differently formatted command strings addressing the same host normalize
// to the same cache namespace.
type Connection struct {
	Host         string   // Remote host name or address
	User         string   // Login user, empty for the ssh default
	Port         int      // Port, 0 for the ssh default
	IdentityFile string   // Path to a private key file, optional
	Options      []string // Extra ssh arguments, rendered verbatim before the target
}

// ParseCommand builds a Connection from a legacy SSH invocation string such
// as "ssh -p 2222 -i ~/.ssh/key user@host". Unrecognized flags are preserved
// in Options so the rendered command stays equivalent to the original.
func ParseCommand(command string) (Connection, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return Connection{}, fmt.Errorf("empty ssh command")
	}
	if fields[0] == "ssh" {
		fields = fields[1:]
	}

	var conn Connection
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case tok == "-p" && i+1 < len(fields):
			port, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return Connection{}, fmt.Errorf("invalid port %q: %w", fields[i+1], err)
			}
			conn.Port = port
			i++
		case strings.HasPrefix(tok, "-p") && len(tok) > 2:
			port, err := strconv.Atoi(tok[2:])
			if err != nil {
				return Connection{}, fmt.Errorf("invalid port %q: %w", tok[2:], err)
			}
			conn.Port = port
		case tok == "-i" && i+1 < len(fields):
			conn.IdentityFile = fields[i+1]
			i++
		case tok == "-l" && i+1 < len(fields):
			conn.User = fields[i+1]
			i++
		case tok == "-o" && i+1 < len(fields):
			conn.Options = append(conn.Options, "-o", fields[i+1])
			i++
		case strings.HasPrefix(tok, "-"):
			conn.Options = append(conn.Options, tok)
		default:
			// The first non-flag token is the [user@]host target.
			if conn.Host != "" {
				return Connection{}, fmt.Errorf("unexpected argument %q after host", tok)
			}
			if at := strings.IndexByte(tok, '@'); at >= 0 {
				conn.User = tok[:at]
				conn.Host = tok[at+1:]
			} else {
				conn.Host = tok
			}
		}
	}

	if conn.Host == "" {
		return Connection{}, fmt.Errorf("no host in ssh command %q", command)
	}
	return conn, nil
}

// Target returns the [user@]host argument.
func (c Connection) Target() string {
	if c.User != "" {
		return c.User + "@" + c.Host
	}
	return c.Host
}

// Args renders the connection to an argv prefix for the system ssh binary,
// without the remote command.
func (c Connection) Args() []string {
	args := []string{"ssh"}
	if c.Port > 0 {
		args = append(args, "-p", strconv.Itoa(c.Port))
	}
	if c.IdentityFile != "" {
		args = append(args, "-i", c.IdentityFile)
	}
	args = append(args, c.Options...)
	return append(args, c.Target())
}

// CacheKey returns the string identity of the connection used to namespace
// cache entries. Two descriptors with the same rendered form share a
// namespace; descriptors differing in any field do not.
func (c Connection) CacheKey() string {
	return strings.Join(c.Args(), " ")
}
