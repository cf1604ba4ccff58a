package rpc

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/jward/lathe/internal/store"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/tree"
)

// Server runs recipes for remote clients. Each connection is one run: the
// client's files arrive as deltas, and changed files go back the same way.
type Server struct {
	recipes  *recipe.Registry
	codecs   *Registry
	store    *store.Store
	interner *jtype.Interner
	logger   *zap.SugaredLogger
	sched    []recipe.SchedulerOption
	maxFiles int
}

// DefaultMaxFiles bounds the files one run may announce.
const DefaultMaxFiles = 100_000

type ServerOption func(*Server)

// WithServerStore keeps named sessions in s, so a returning client only
// sends what changed since its last run.
func WithServerStore(s *store.Store) ServerOption {
	return func(srv *Server) { srv.store = s }
}

func WithServerInterner(in *jtype.Interner) ServerOption {
	return func(srv *Server) { srv.interner = in }
}

func WithServerLogger(l *zap.SugaredLogger) ServerOption {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithMaxFiles sets how many files a run request may announce. Requests
// over the limit are refused before any file is read.
func WithMaxFiles(n int) ServerOption {
	return func(srv *Server) {
		if n > 0 {
			srv.maxFiles = n
		}
	}
}

func WithSchedulerOptions(opts ...recipe.SchedulerOption) ServerOption {
	return func(srv *Server) { srv.sched = append(srv.sched, opts...) }
}

func NewServer(recipes *recipe.Registry, opts ...ServerOption) *Server {
	s := &Server{
		recipes:  recipes,
		codecs:   JavaCodecs(),
		interner: jtype.NewInterner(),
		logger:   zap.NewNop().Sugar(),
		maxFiles: DefaultMaxFiles,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler serves runs over websocket connections.
func (s *Server) Handler() http.Handler {
	return Handler(s.Serve, s.logger)
}

func (s *Server) cacheFor(session string) SnapshotCache {
	if session != "" && s.store != nil {
		return NewStoreCache(s.store, session)
	}
	return NewMemoryCache()
}

// Serve handles one run on conn.
func (s *Server) Serve(ctx context.Context, conn Conn) error {
	var msg Msg
	if err := conn.ReadJSON(&msg); err != nil {
		return errors.Wrap(err, "rpc: receive run request")
	}
	if msg.Type != MsgRun || msg.Run == nil {
		return s.fail(conn, errors.Newf("rpc: expected %s, got %s", MsgRun, msg.Type))
	}
	req := msg.Run
	if req.Files < 0 || req.Files > s.maxFiles {
		return s.fail(conn, violation("", tree.NilID, "run announces %d files, limit is %d", req.Files, s.maxFiles))
	}

	recipes := make([]recipe.Recipe, 0, len(req.Recipes))
	for _, spec := range req.Recipes {
		r, err := s.recipes.Instantiate(spec.Name, spec.Options)
		if err != nil {
			return s.fail(conn, err)
		}
		recipes = append(recipes, r)
	}

	cache := s.cacheFor(req.Session)
	recv := NewReceiver(s.codecs, cache, WithInterner(s.interner), WithReceiverLogger(s.logger))
	send := NewSender(s.codecs, cache, WithSenderLogger(s.logger))

	files := make([]tree.SourceFile, 0, req.Files)
	for range req.Files {
		var m Msg
		if err := conn.ReadJSON(&m); err != nil {
			return errors.Wrap(err, "rpc: receive file")
		}
		if m.Type != MsgDelta {
			return s.fail(conn, errors.Newf("rpc: expected %s, got %s", MsgDelta, m.Type))
		}
		sf, err := recv.accept(conn, m.Delta, nil)
		if err != nil {
			return err
		}
		files = append(files, sf)
	}

	opts := append([]recipe.SchedulerOption{recipe.WithLogger(s.logger)}, s.sched...)
	if req.MaxCycles > 0 {
		opts = append(opts, recipe.WithMaxCycles(req.MaxCycles))
	}
	res, runErr := recipe.NewScheduler(opts...).Run(ctx, recipes, files)
	if res == nil {
		return s.fail(conn, runErr)
	}

	reply := replyFor(res, runErr)
	if err := conn.WriteJSON(Msg{Type: MsgResult, Result: reply}); err != nil {
		return errors.Wrap(err, "rpc: send result")
	}
	for _, r := range res.Results {
		if r.After == nil || !r.Changed() {
			continue
		}
		if _, err := send.Send(ctx, conn, r.After); err != nil {
			return err
		}
	}
	if err := conn.WriteJSON(Msg{Type: MsgDone}); err != nil {
		return errors.Wrap(err, "rpc: send done")
	}

	s.logger.Infow("Remote run complete",
		"files", len(files),
		"changed", len(res.Changes()),
		"cycles", res.CyclesUsed,
		"state", res.State.String(),
	)
	return nil
}

func (s *Server) fail(conn Conn, err error) error {
	if werr := conn.WriteJSON(Msg{Type: MsgError, Error: err.Error()}); werr != nil {
		s.logger.Warnw("Failed to report run error", "error", werr)
	}
	return err
}

func replyFor(res *recipe.RunResult, runErr error) *RunReply {
	reply := &RunReply{
		Files:      make([]FileReply, 0, len(res.Results)),
		CyclesUsed: res.CyclesUsed,
		Converged:  res.Converged,
		State:      res.State.String(),
		Warning:    res.Warning,
	}
	if runErr != nil {
		reply.Error = runErr.Error()
	}
	for _, r := range res.Results {
		fr := FileReply{Path: r.Path(), Change: ChangeNone, Recipes: r.Recipes}
		switch {
		case r.Generated():
			fr.Change = ChangeGenerated
			fr.Recipes = []string{r.GeneratedBy}
		case r.Deleted():
			fr.Change = ChangeDeleted
			fr.Recipes = []string{r.DeletedBy}
		case r.Changed():
			fr.Change = ChangeModified
		}
		if r.After != nil {
			fr.Root = r.After.ID()
		} else {
			fr.Root = r.Before.ID()
		}
		if r.Err != nil {
			fr.Error = r.Err.Error()
		}
		reply.Files = append(reply.Files, fr)
	}
	return reply
}

// RemoteRunner runs recipes on a Server.
type RemoteRunner struct {
	conn     Conn
	sender   *Sender
	receiver *Receiver
	logger   *zap.SugaredLogger
}

type RemoteOption func(*RemoteRunner)

func WithRemoteLogger(l *zap.SugaredLogger) RemoteOption {
	return func(rr *RemoteRunner) {
		if l != nil {
			rr.logger = l
		}
	}
}

// NewRemoteRunner uses cache for both directions, so the client and the
// server agree on one snapshot per session.
func NewRemoteRunner(conn Conn, codecs *Registry, cache SnapshotCache, interner *jtype.Interner, opts ...RemoteOption) *RemoteRunner {
	rr := &RemoteRunner{conn: conn, logger: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(rr)
	}
	rr.sender = NewSender(codecs, cache, WithSenderLogger(rr.logger))
	rr.receiver = NewReceiver(codecs, cache, WithInterner(interner), WithReceiverLogger(rr.logger))
	rr.sender.track = rr.receiver.remember
	return rr
}

// Run sends files to the server, runs req's recipes there and rebuilds the
// outcome. Unchanged subtrees of a modified file are the input's own nodes.
func (rr *RemoteRunner) Run(ctx context.Context, req RunRequest, files []tree.SourceFile) (*recipe.RunResult, error) {
	req.Files = len(files)
	if err := rr.conn.WriteJSON(Msg{Type: MsgRun, Run: &req}); err != nil {
		return nil, errors.Wrap(err, "rpc: send run request")
	}
	for _, f := range files {
		if _, err := rr.sender.Send(ctx, rr.conn, f); err != nil {
			return nil, errors.Wrapf(err, "rpc: send %s", f.SourcePath())
		}
	}

	var msg Msg
	if err := rr.conn.ReadJSON(&msg); err != nil {
		return nil, errors.Wrap(err, "rpc: receive result")
	}
	switch {
	case msg.Type == MsgError:
		return nil, &RemoteError{Message: msg.Error}
	case msg.Type != MsgResult || msg.Result == nil:
		return nil, errors.Newf("rpc: expected %s, got %s", MsgResult, msg.Type)
	}
	reply := msg.Result

	res := &recipe.RunResult{
		Results:    make([]recipe.Result, 0, len(reply.Files)),
		CyclesUsed: reply.CyclesUsed,
		Converged:  reply.Converged,
		Warning:    reply.Warning,
	}
	res.State, _ = recipe.ParseState(reply.State)

	for i, fr := range reply.Files {
		var r recipe.Result
		if i < len(files) {
			r.Before = files[i]
		}
		switch fr.Change {
		case ChangeNone:
			r.After = r.Before
			r.Recipes = fr.Recipes
		case ChangeDeleted:
			r.DeletedBy = first(fr.Recipes)
		case ChangeModified, ChangeGenerated:
			after, err := rr.receive(ctx, fr)
			if err != nil {
				return nil, err
			}
			r.After = after
			if fr.Change == ChangeGenerated {
				r.GeneratedBy = first(fr.Recipes)
			} else {
				r.Recipes = fr.Recipes
			}
		default:
			return nil, errors.Newf("rpc: unknown change %q for %s", fr.Change, fr.Path)
		}
		if fr.Error != "" {
			r.Err = errors.Newf("%s", fr.Error)
		}
		res.Results = append(res.Results, r)
	}

	if err := rr.conn.ReadJSON(&msg); err != nil {
		return nil, errors.Wrap(err, "rpc: receive done")
	}
	if msg.Type != MsgDone {
		return nil, errors.Newf("rpc: expected %s, got %s", MsgDone, msg.Type)
	}
	if reply.Error != "" {
		return res, errors.Newf("rpc: remote run: %s", reply.Error)
	}
	return res, nil
}

func (rr *RemoteRunner) receive(ctx context.Context, fr FileReply) (tree.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var msg Msg
	if err := rr.conn.ReadJSON(&msg); err != nil {
		return nil, errors.Wrapf(err, "rpc: receive %s", fr.Path)
	}
	if msg.Type != MsgDelta || msg.Delta == nil {
		return nil, errors.Newf("rpc: expected %s for %s, got %s", MsgDelta, fr.Path, msg.Type)
	}
	if msg.Delta.Root != fr.Root {
		return nil, violation("", msg.Delta.Root, "expected root %s for %s", fr.Root, fr.Path)
	}
	return rr.receiver.accept(rr.conn, msg.Delta, nil)
}

func first(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
