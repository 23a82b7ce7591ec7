package amqp

import (
	"encoding/json"
	"time"
)

// ExportRequest asks the worker to render one owner's full ledger to a CSV
// file. It carries only the owner id; the worker reads the rows itself so the
// file always reflects the ledger at processing time.
type ExportRequest struct {
	OwnerID     int64     `json:"owner_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewExportRequest creates an export request stamped with the current time.
func NewExportRequest(ownerID int64) *ExportRequest {
	return &ExportRequest{
		OwnerID:     ownerID,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestFromJSON creates a message from JSON bytes
func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var msg ExportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
