package amqp

import (
	"encoding/json"
	"time"
)

// LedgerChangedMessage signals that a user's ledger mutated and a fresh
// snapshot is available in storage. The worker fetches the snapshot itself;
// the message only carries the key and a revision counter.
type LedgerChangedMessage struct {
	UserKey   string    `json:"userKey"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(userKey string, revision int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		UserKey:   userKey,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
