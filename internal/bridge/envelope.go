package bridge

import "encoding/json"

// Envelope wraps one telemetry datagram for the broker. The payload rides
// through base64-encoded and untouched; consumers that want MAVLink fields
// decode it themselves.
type Envelope struct {
	Seq        uint64 `json:"seq"`
	ReceivedAt int64  `json:"received_at_ms"`
	Payload    []byte `json:"payload"`
}

func encodeEnvelope(seq uint64, f frame) ([]byte, error) {
	return json.Marshal(Envelope{
		Seq:        seq,
		ReceivedAt: f.receivedAt.UnixMilli(),
		Payload:    f.payload,
	})
}
