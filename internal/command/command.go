package command

import "github.com/redkv-io/redkv/internal/types"

// Command is one protocol command as handed over by the frontend. Args
// holds the raw argument vector including the command name at index 0,
// mirroring the RESP layout.
type Command struct {
	Kind   types.CommandKind
	Args   [][]byte
	Tenant types.Identity
}

// New builds a command from its kind and arguments (without the name).
func New(kind types.CommandKind, args ...[]byte) *Command {
	full := make([][]byte, 0, len(args)+1)
	full = append(full, []byte(kind))
	full = append(full, args...)
	return &Command{Kind: kind, Args: full}
}

// WithTenant returns the command bound to a tenant identity.
func (c *Command) WithTenant(id types.Identity) *Command {
	c.Tenant = id
	return c
}

// Key returns the logical key argument, or nil for a malformed command.
func (c *Command) Key() []byte {
	if len(c.Args) < 2 {
		return nil
	}
	return c.Args[1]
}
