package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by entity change messages.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntityChangeMessage tells consumers that a ledger entity changed. It
// carries only identifiers; consumers fetch current state from the
// database, so a stale or replayed message is harmless.
type EntityChangeMessage struct {
	Entity     string    `json:"entity"`
	ID         int64     `json:"id"`
	Action     string    `json:"action"`
	AccountID  int64     `json:"account_id,omitempty"`
	ProjectID  int64     `json:"project_id,omitempty"`
	EmployeeID int64     `json:"employee_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewEntityChangeMessage(entity string, id int64, action string) *EntityChangeMessage {
	return &EntityChangeMessage{
		Entity:    entity,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *EntityChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntityChangeMessageFromJSON(data []byte) (*EntityChangeMessage, error) {
	var msg EntityChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
