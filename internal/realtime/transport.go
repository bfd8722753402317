package realtime

import "strings"

// Transport identifies how a realtime session reaches the upstream service.
type Transport string

const (
	// TransportPeer hands the client a short-lived token so it can open its
	// own peer session with the upstream provider.
	TransportPeer Transport = "peer"
	// TransportStreaming keeps upstream credentials server-side and relays
	// every frame between client and upstream.
	TransportStreaming Transport = "streaming"
	// TransportAuto defers to the model table.
	TransportAuto Transport = "auto"
)

// transportTable maps known model families to the only transport they
// support. Read-only after init; shared by every session without locking.
var transportTable = map[string]Transport{
	"gpt-realtime":                            TransportPeer,
	"gpt-4o-realtime-preview":                 TransportPeer,
	"gpt-4o-mini-realtime-preview":            TransportStreaming,
	"gpt-4o-mini-realtime-preview-2024-12-17": TransportStreaming,
}

// ResolveTransport looks up the transport for a model identifier. Matching
// is case-insensitive and ignores surrounding whitespace; unknown models
// resolve to fallback.
func ResolveTransport(model string, fallback Transport) Transport {
	key := strings.ToLower(strings.TrimSpace(model))
	if t, ok := transportTable[key]; ok {
		return t
	}
	return fallback
}

// Resolver applies an optional process-wide transport pin on top of the
// model table. A pin of TransportAuto (or empty) consults the table.
type Resolver struct {
	pin Transport
}

func NewResolver(pin Transport) *Resolver {
	return &Resolver{pin: pin}
}

func (r *Resolver) Resolve(model string, fallback Transport) Transport {
	if r != nil && (r.pin == TransportPeer || r.pin == TransportStreaming) {
		return r.pin
	}
	return ResolveTransport(model, fallback)
}
