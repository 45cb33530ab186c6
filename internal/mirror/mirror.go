// Package mirror copies workflow state into an external row store used for reporting.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrRowNotFound = errors.New("row not found")
	// ErrSyncFailure is returned once every retry of a write has failed.
	ErrSyncFailure = errors.New("sync failure")
)

// Sheets of the mirror.
const (
	SheetOrders          = "orders"
	SheetPaymentRequests = "payment_requests"
	SheetFunding         = "funding"
	SheetLedger          = "ledger"
)

// Row is one mirrored record, addressed by sheet and business key.
type Row struct {
	Sheet string            `json:"sheet"`
	Key   string            `json:"key"`
	Cells map[string]string `json:"cells"`
}

// Content is the serialized form compared to decide whether a write is needed.
func (r Row) Content() string {
	b, _ := json.Marshal(r.Cells)
	return string(b)
}

// RowStore is the external spreadsheet-like store.
type RowStore interface {
	FindRow(ctx context.Context, sheet, key string) (Row, error)
	UpsertRow(ctx context.Context, row Row) error
}

// Entity is the current state of one request as the mirror should show it.
type Entity struct {
	Row          Row
	LastSyncedAt *time.Time
}

// Source reads workflow state and records sync progress.
type Source interface {
	Snapshot(ctx context.Context, kind, reference string) (Entity, error)
	MarkSynced(ctx context.Context, kind, reference string, at time.Time) error
	// LedgerSnapshot returns the balances row for reference and the key of the row currently flagged latest.
	LedgerSnapshot(ctx context.Context, reference string) (Row, string, error)
	SetLatestLedgerRow(ctx context.Context, reference string, at time.Time) error
}

// Alerter reports failures to the operators.
type Alerter interface {
	Alert(ctx context.Context, entityID, reason string) error
}

// DebouncedError means the entity was synced too recently; retry after Until.
type DebouncedError struct {
	Reference string
	Until     time.Time
}

func (e *DebouncedError) Error() string {
	return fmt.Sprintf("sync of %s debounced until %s", e.Reference, e.Until.Format(time.RFC3339))
}
