package command

import (
	"context"
	"log/slog"

	"github.com/redkv-io/redkv/internal/types"
)

// Commanders dispatches commands to their per-kind commander and shields
// callers from panics and malformed input.
type Commanders struct {
	commanders map[types.CommandKind]Commander
	logger     *slog.Logger
}

// NewCommanders wires up the full command set over one collaborator
// bundle.
func NewCommanders(cfg CommanderConfig) *Commanders {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cs := &Commanders{
		commanders: make(map[types.CommandKind]Commander),
		logger:     logger.With("component", "commanders"),
	}

	cs.register(newHSetCommander(cfg))
	cs.register(newHGetCommander(cfg))
	cs.register(newHDelCommander(cfg))
	cs.register(newHLenCommander(cfg))
	cs.register(newHGetAllCommander(cfg))
	cs.register(newHExistsCommander(cfg))

	return cs
}

func (cs *Commanders) register(c Commander) {
	cs.commanders[c.Kind()] = c
}

// Supported reports whether kind has a commander.
func (cs *Commanders) Supported(kind types.CommandKind) bool {
	_, ok := cs.commanders[kind]
	return ok
}

// RunToCompletion attempts the non-blocking fast path. The second return
// is false when the in-memory tiers hold no answer and the caller must
// take Execute.
func (cs *Commanders) RunToCompletion(slot int, cmd *Command) (reply Reply, ok bool) {
	c, found := cs.commanders[cmd.Kind]
	if !found {
		return &ErrorReply{Message: "ERR unsupported command '" + string(cmd.Kind) + "'"}, true
	}
	if !c.Parse(cmd) {
		return WrongArgsReply(string(cmd.Kind)), true
	}

	defer func() {
		if r := recover(); r != nil {
			cs.logger.Error("command fast path panic", "command", cmd.Kind, "panic", r)
			reply, ok = InternalErrorReply, true
		}
	}()

	reply = c.RunToCompletion(slot, cmd)
	return reply, reply != nil
}

// Execute runs the full command path, including backend I/O.
func (cs *Commanders) Execute(ctx context.Context, slot int, cmd *Command) (reply Reply) {
	c, found := cs.commanders[cmd.Kind]
	if !found {
		return &ErrorReply{Message: "ERR unsupported command '" + string(cmd.Kind) + "'"}
	}
	if !c.Parse(cmd) {
		return WrongArgsReply(string(cmd.Kind))
	}

	defer func() {
		if r := recover(); r != nil {
			cs.logger.Error("command execute panic", "command", cmd.Kind, "panic", r)
			reply = InternalErrorReply
		}
	}()

	return c.Execute(ctx, slot, cmd)
}
