package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RequestKind is the explicit discriminator for the three request variants.
type RequestKind string

const (
	KindOrder          RequestKind = "order"
	KindPaymentRequest RequestKind = "payment_request"
	KindFunding        RequestKind = "funding"
)

// AggregateLedger names the ledger in events and mirror rows; it has no identifier prefix.
const AggregateLedger = "ledger"

var kindPrefixes = map[RequestKind]string{
	KindOrder:          "CMD",
	KindPaymentRequest: "PAY",
	KindFunding:        "FUND",
}

func (k RequestKind) Prefix() string {
	return kindPrefixes[k]
}

func (k RequestKind) Valid() bool {
	_, ok := kindPrefixes[k]
	return ok
}

// RequestID is the human identifier PREFIX/YYYY/MM/NNNN.
type RequestID struct {
	Kind  RequestKind
	Year  int
	Month int
	Seq   int
}

func NewRequestID(kind RequestKind, at time.Time, seq int) RequestID {
	return RequestID{Kind: kind, Year: at.Year(), Month: int(at.Month()), Seq: seq}
}

func (id RequestID) String() string {
	return fmt.Sprintf("%s/%04d/%02d/%04d", id.Kind.Prefix(), id.Year, id.Month, id.Seq)
}

// Period is the counter scope of the identifier, e.g. "2025-03".
func (id RequestID) Period() string {
	return fmt.Sprintf("%04d-%02d", id.Year, id.Month)
}

// ParseRequestID parses "FUND/2025/03/0007" and friends.
func ParseRequestID(raw string) (RequestID, error) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 4 {
		return RequestID{}, Invalid("id", "malformed identifier %q", raw)
	}

	var kind RequestKind
	for k, prefix := range kindPrefixes {
		if parts[0] == prefix {
			kind = k
			break
		}
	}
	if kind == "" {
		return RequestID{}, Invalid("id", "unknown prefix %q", parts[0])
	}

	if len(parts[1]) != 4 || len(parts[2]) != 2 || len(parts[3]) < 4 {
		return RequestID{}, Invalid("id", "malformed identifier %q", raw)
	}

	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return RequestID{}, Invalid("id", "bad year in %q", raw)
	}
	month, err := strconv.Atoi(parts[2])
	if err != nil || month < 1 || month > 12 {
		return RequestID{}, Invalid("id", "bad month in %q", raw)
	}
	seq, err := strconv.Atoi(parts[3])
	if err != nil || seq < 1 {
		return RequestID{}, Invalid("id", "bad sequence in %q", raw)
	}

	return RequestID{Kind: kind, Year: year, Month: month, Seq: seq}, nil
}

// SequenceCounter backs the per (prefix, period) identifier sequence.
type SequenceCounter struct {
	Prefix string `gorm:"type:varchar(8);primaryKey" json:"prefix"`
	Period string `gorm:"type:varchar(7);primaryKey" json:"period"`
	Value  int    `gorm:"not null" json:"value"`
}
