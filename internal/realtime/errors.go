package realtime

import "fmt"

// UpstreamSessionError reports a non-2xx reply from the upstream
// session-minting endpoint, preserving status and body for the caller.
type UpstreamSessionError struct {
	Status int
	Body   string
}

func (e *UpstreamSessionError) Error() string {
	return fmt.Sprintf("upstream session request failed: status=%d body=%s", e.Status, e.Body)
}

// UpstreamConnectError reports a failed upstream socket dial, including
// handshake timeouts.
type UpstreamConnectError struct {
	URL string
	Err error
}

func (e *UpstreamConnectError) Error() string {
	return fmt.Sprintf("upstream connect %s: %v", e.URL, e.Err)
}

func (e *UpstreamConnectError) Unwrap() error { return e.Err }

// TransientIOError reports a forwarding failure on an established relay
// session, tagged with the direction that broke first.
type TransientIOError struct {
	Direction string
	Err       error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("relay %s: %v", e.Direction, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// ProtocolError reports a relay accept for a model whose transport is not
// streaming.
type ProtocolError struct {
	Model     string
	Transport Transport
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("model %s expects transport %q", e.Model, e.Transport)
}
