// Package devserver implements a small live-reparse development
// server: it watches a file by polling its mtime, reparses on change,
// and pushes the serialized tree to every connected browser tab over a
// websocket. It is a development convenience, not a production
// service: no TLS, no auth, and it binds to 127.0.0.1 by default.
package devserver

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/noxbrowser/htmlcore/export"
	"github.com/noxbrowser/htmlcore/store"
	"github.com/noxbrowser/htmlcore/tokenizer"
	"github.com/noxbrowser/htmlcore/treebuilder"
)

var upgrader = websocket.Upgrader{}

const pollInterval = 500 * time.Millisecond

// Server watches one file and fans out its serialized parse tree to
// every connected websocket whenever the file's contents change.
type Server struct {
	path   string
	logger *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New returns a Server that will watch path once Watch is called.
func New(path string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{path: path, logger: logger, conns: make(map[*websocket.Conn]struct{})}
}

// Watch polls path for mtime changes and serves / (a tiny text viewer)
// and /ws (the live feed) on addr until ctxDone is closed or an
// unrecoverable listen error occurs.
func (s *Server) Watch(addr string, ctxDone <-chan struct{}) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveViewer)
	mux.HandleFunc("/ws", s.serveWS)

	srv := &http.Server{Addr: addr, Handler: mux}
	errC := make(chan error, 1)
	go func() { errC <- srv.ListenAndServe() }()

	go s.pollLoop(ctxDone)

	select {
	case <-ctxDone:
		return srv.Close()
	case err := <-errC:
		return err
	}
}

func (s *Server) pollLoop(ctxDone <-chan struct{}) {
	var lastMod time.Time
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctxDone:
			return
		case <-ticker.C:
			info, err := os.Stat(s.path)
			if err != nil {
				s.logger.Warn("stat watched file", "path", s.path, "error", err)
				continue
			}
			if info.ModTime().Equal(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			s.reparseAndBroadcast()
		}
	}
}

func (s *Server) reparseAndBroadcast() {
	f, err := os.Open(s.path)
	if err != nil {
		s.logger.Warn("open watched file", "path", s.path, "error", err)
		return
	}
	defer f.Close()

	st := store.New()
	tk := tokenizer.New(f)
	c := treebuilder.New()
	for {
		ev := c.PollNext(tk, st)
		if ev.Kind == treebuilder.Done || ev.Kind == treebuilder.Fatal {
			break
		}
	}

	var buf bytes.Buffer
	if err := export.Serialize(&buf, st); err != nil {
		s.logger.Warn("serialize reparsed tree", "error", err)
		return
	}
	s.broadcast(buf.Bytes())
}

func (s *Server) broadcast(msg []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.logger.Warn("write to websocket client", "error", err)
			conn.Close()
			delete(s.conns, conn)
		}
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade websocket", "error", err)
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()
}

func (s *Server) serveViewer(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, strings.TrimSpace(viewerHTML))
}

const viewerHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>htmlcore live parse</title></head>
<body>
<pre id="tree">connecting...</pre>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  const el = document.getElementById("tree");
  ws.onmessage = (ev) => { el.textContent = ev.data; };
  ws.onclose = () => { el.textContent += "\n[disconnected]"; };
</script>
</body>
</html>`
