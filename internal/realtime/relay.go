package realtime

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Relay proxies a duplex frame stream between a local client connection and
// the upstream realtime service. It never inspects payload bytes; frames
// cross unchanged, FIFO per direction.
type Relay struct {
	apiKey   string
	baseURL  string
	resolver *Resolver
	dialer   *websocket.Dialer
	log      *logrus.Logger
}

func NewRelay(apiKey, baseURL string, resolver *Resolver, log *logrus.Logger) *Relay {
	return &Relay{
		apiKey:   apiKey,
		baseURL:  baseURL,
		resolver: resolver,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			Subprotocols:     []string{"realtime"},
		},
		log: log,
	}
}

// ControlFrame is the in-band JSON message the relay sends to the local
// client outside of forwarded traffic.
type ControlFrame struct {
	Type      string    `json:"type"`
	Transport Transport `json:"transport,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// relayConn serialises writes and guarantees the underlying connection is
// closed exactly once however many teardown paths race.
type relayConn struct {
	c    *websocket.Conn
	mu   sync.Mutex
	once sync.Once
}

func (rc *relayConn) write(messageType int, data []byte) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return rc.c.WriteMessage(messageType, data)
}

func (rc *relayConn) writeJSON(v any) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return rc.c.WriteJSON(v)
}

func (rc *relayConn) close() {
	rc.once.Do(func() { _ = rc.c.Close() })
}

// Run drives one relay session over an already-upgraded local connection.
// It owns the local connection from this point and closes it on every exit
// path.
func (r *Relay) Run(ctx context.Context, local *websocket.Conn, model, sourceLang, targetLang, voice string) error {
	lc := &relayConn{c: local}
	defer lc.close()

	transport := r.resolver.Resolve(model, TransportPeer)
	if transport != TransportStreaming {
		err := &ProtocolError{Model: model, Transport: transport}
		_ = lc.writeJSON(ControlFrame{Type: "error", Message: err.Error()})
		return err
	}

	cfg := NewSessionConfig(model, sourceLang, targetLang, voice, TransportStreaming)

	target := r.baseURL + "?model=" + url.QueryEscape(model)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+r.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	upstream, _, err := r.dialer.DialContext(ctx, target, header)
	if err != nil {
		connectErr := &UpstreamConnectError{URL: target, Err: err}
		r.log.WithError(err).WithField("model", model).Error("relay upstream connect failed")
		// Best effort: the client may already be gone.
		_ = lc.writeJSON(ControlFrame{Type: "error", Message: "upstream connect failed"})
		return connectErr
	}
	uc := &relayConn{c: upstream}
	defer uc.close()

	if err := uc.writeJSON(BuildSessionUpdate(cfg)); err != nil {
		_ = lc.writeJSON(ControlFrame{Type: "error", Message: "upstream negotiation failed"})
		return &UpstreamConnectError{URL: target, Err: err}
	}

	if err := lc.writeJSON(ControlFrame{Type: "session.ready", Transport: TransportStreaming}); err != nil {
		return nil // client left before forwarding began
	}

	r.log.WithFields(logrus.Fields{
		"model":  model,
		"source": sourceLang,
		"target": targetLang,
	}).Info("relay session established")

	type pumpResult struct {
		dir string
		err error
	}
	results := make(chan pumpResult, 2)

	go func() { results <- pumpResult{dir: "client-to-upstream", err: pump(lc, uc)} }()
	go func() { results <- pumpResult{dir: "upstream-to-client", err: pump(uc, lc)} }()

	first := <-results

	if first.err != nil && !isExpectedClose(first.err) {
		// Best effort: when the failing side is the client itself this
		// write fails, and that is fine.
		_ = lc.writeJSON(ControlFrame{Type: "error", Message: "relay session failed"})
	}

	// Whichever loop exits first tears down both sides; the peer loop then
	// unblocks on its closed connection.
	lc.close()
	uc.close()
	<-results

	if first.err != nil && !isExpectedClose(first.err) {
		r.log.WithError(first.err).WithField("direction", first.dir).Warn("relay session ended with error")
		return &TransientIOError{Direction: first.dir, Err: first.err}
	}

	r.log.WithField("direction", first.dir).Debug("relay session closed")
	return nil
}

// pump forwards frames from src to dst preserving text/binary framing
// until either side closes or errors.
func pump(src, dst *relayConn) error {
	for {
		messageType, data, err := src.c.ReadMessage()
		if err != nil {
			return err
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		if err := dst.write(messageType, data); err != nil {
			return err
		}
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
