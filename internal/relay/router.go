// ABOUTME: Request router for the command relay: dispatches six operations
// ABOUTME: Holds one lock across lookup, mailbox mutation, and reply serialization

package relay

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/2389/coven-relay/internal/agent"
)

const (
	pathRegister     = "/register_pc2"
	pathList         = "/list_pc2s"
	pathSendCommand  = "/send_command"
	pathGetCommand   = "/get_command/"
	pathSendResponse = "/send_response"
	pathGetResponse  = "/get_response/"
)

// detailReplaced marks a store that overwrote a value nobody had taken yet.
const detailReplaced = "replaced pending value"

// ConnInfo identifies the connection a request arrived on.
type ConnInfo struct {
	ID         string
	RemoteAddr string
}

// RouterParams configures a Router.
type RouterParams struct {
	Directory *agent.Directory
	Journal   Journal
	Logger    *slog.Logger
}

// Router owns the directory for the lifetime of the relay and serializes
// every request against it.
type Router struct {
	mu      sync.Mutex
	dir     *agent.Directory
	journal Journal
	logger  *slog.Logger
}

// NewRouter creates a Router. A nil Directory gets a default-capacity one;
// a nil Journal discards events.
func NewRouter(p RouterParams) *Router {
	if p.Directory == nil {
		p.Directory = agent.NewDirectory(agent.DefaultCapacity)
	}
	if p.Journal == nil {
		p.Journal = nopJournal{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Router{
		dir:     p.Directory,
		journal: p.Journal,
		logger:  p.Logger,
	}
}

// Handle processes one raw request and returns the bytes to write back.
// A nil result means the connection should close without a reply.
func (r *Router) Handle(ctx context.Context, conn ConnInfo, raw []byte) []byte {
	req := parseRequest(raw)

	r.mu.Lock()
	reply, ev := r.dispatch(req)
	r.mu.Unlock()

	ev.ConnID = conn.ID
	r.logger.Debug("request handled",
		"conn_id", conn.ID,
		"remote", conn.RemoteAddr,
		"method", req.Method,
		"path", req.Path,
		"action", ev.Action,
		"identity", ev.Identity,
		"reply_bytes", len(reply),
	)
	// empty polls carry no action and are not journaled
	if ev.Action != "" {
		r.journal.Record(ctx, ev)
	}

	return reply
}

// Snapshot returns the current directory listing under the router lock.
func (r *Router) Snapshot() []agent.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dir.List()
}

// dispatch must be called with mu held.
func (r *Router) dispatch(req request) ([]byte, Event) {
	switch {
	case req.Method == "POST" && req.Path == pathRegister:
		return r.register(req.Body)
	case req.Method == "GET" && req.Path == pathList:
		return okReply(listBody(r.dir.List())), Event{Action: ActionListed}
	case req.Method == "POST" && req.Path == pathSendCommand:
		return r.sendCommand(req.Body)
	case req.Method == "GET" && strings.HasPrefix(req.Path, pathGetCommand):
		return r.getCommand(strings.TrimPrefix(req.Path, pathGetCommand))
	case req.Method == "POST" && req.Path == pathSendResponse:
		return r.sendResponse(req.Body)
	case req.Method == "GET" && strings.HasPrefix(req.Path, pathGetResponse):
		return r.getResponse(strings.TrimPrefix(req.Path, pathGetResponse))
	default:
		return notFoundReply(), Event{Action: ActionNotFound, Detail: req.Method + " " + req.Path}
	}
}

func (r *Router) register(body []byte) ([]byte, Event) {
	ip, name, ok := registerShape.extract(body)
	if !ok {
		return nil, Event{Action: ActionMalformed, Detail: pathRegister}
	}

	// A full directory is indistinguishable from success for the caller.
	if _, ok := r.dir.RegisterOrGet(ip, name); !ok {
		return okReply(bodyRegistered), Event{Action: ActionRegisterRejected, Identity: ip, Detail: name}
	}
	return okReply(bodyRegistered), Event{Action: ActionRegistered, Identity: ip, Detail: name}
}

func (r *Router) sendCommand(body []byte) ([]byte, Event) {
	target, command, ok := commandShape.extract(body)
	if !ok {
		return nil, Event{Action: ActionMalformed, Detail: pathSendCommand}
	}

	// Unknown targets are created on the spot, named after their identity.
	rec, err := r.dir.Register(target, target)
	if err != nil {
		return nil, Event{Action: ActionCommandRejected, Identity: target, Detail: err.Error()}
	}
	ev := Event{Action: ActionCommandStored, Identity: target}
	if rec.HasCommand() {
		ev.Detail = detailReplaced
	}
	rec.SetCommand(command)
	return okReply(bodyCommandStored), ev
}

func (r *Router) getCommand(identity string) ([]byte, Event) {
	rec, ok := r.dir.Find(identity)
	if !ok {
		return okReply(bodyNoCommand), Event{Identity: identity}
	}
	cmd, ok := rec.TakeCommand()
	if !ok {
		return okReply(bodyNoCommand), Event{Identity: identity}
	}
	return okReply(commandBody(cmd)), Event{Action: ActionCommandDelivered, Identity: identity}
}

func (r *Router) sendResponse(body []byte) ([]byte, Event) {
	sender, output, ok := responseShape.extract(body)
	if !ok {
		return nil, Event{Action: ActionMalformed, Detail: pathSendResponse}
	}

	// Unlike send_command, an unknown sender is never created and its
	// output is lost.
	rec, ok := r.dir.Find(sender)
	if !ok {
		return nil, Event{Action: ActionResponseDropped, Identity: sender}
	}
	ev := Event{Action: ActionResponseStored, Identity: sender}
	if rec.HasResponse() {
		ev.Detail = detailReplaced
	}
	rec.SetResponse(output)
	return okReply(bodyResponseStored), ev
}

func (r *Router) getResponse(identity string) ([]byte, Event) {
	rec, ok := r.dir.Find(identity)
	if !ok {
		return okReply(bodyNoOutput), Event{Identity: identity}
	}
	out, ok := rec.TakeResponse()
	if !ok {
		return okReply(bodyNoOutput), Event{Identity: identity}
	}
	return okReply(outputBody(out)), Event{Action: ActionResponseDelivered, Identity: identity}
}
