// Package receipt holds the AFT receipt data set by long poll 75 and turns
// finished transfers into printable transaction receipts.
package receipt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/external"
)

// Field is an LP75 receipt data field code.
type Field byte

const (
	Location     Field = 0x00
	Address1     Field = 0x01
	Address2     Field = 0x02
	InHouseLine1 Field = 0x10
	InHouseLine2 Field = 0x11
	InHouseLine3 Field = 0x12
	InHouseLine4 Field = 0x13
	DebitLine1   Field = 0x20
	DebitLine2   Field = 0x21
	DebitLine3   Field = 0x22
	DebitLine4   Field = 0x23
)

const (
	// UseDefault as a field length selects the configured default.
	UseDefault = 0xFF
	// MaxFieldLength is the longest accepted field value.
	MaxFieldLength = 40
)

var (
	// ErrUnknownField is returned for a field code outside the LP75 set.
	ErrUnknownField = errors.New("unknown receipt field")
	// ErrFieldTooLong is returned for values over MaxFieldLength.
	ErrFieldTooLong = errors.New("receipt field too long")
	// ErrInsufficientData is returned when a required field is empty.
	ErrInsufficientData = errors.New("insufficient receipt data")
	// ErrPrinterUnavailable is returned when no printer can print the receipt.
	ErrPrinterUnavailable = errors.New("printer unavailable")
)

var fields = []Field{
	Location, Address1, Address2,
	InHouseLine1, InHouseLine2, InHouseLine3, InHouseLine4,
	DebitLine1, DebitLine2, DebitLine3, DebitLine4,
}

// Valid reports whether f is an LP75 field code.
func (f Field) Valid() bool {
	for _, known := range fields {
		if f == known {
			return true
		}
	}
	return false
}

// Update is one field change from the host. Default selects the configured
// default and wins over Value; an empty Value clears the field.
type Update struct {
	Field   Field
	Value   string
	Default bool
}

// Persister stores the receipt fields.
type Persister interface {
	PutReceiptData(fields map[byte]string) error
}

// Data is the receipt field set. It is safe for concurrent use.
type Data struct {
	mu        sync.RWMutex
	values    map[Field]string
	defaults  map[Field]string
	persister Persister
}

// New creates receipt data starting from defaults. A nil persister keeps the
// fields in memory only.
func New(defaults map[Field]string, persister Persister) *Data {
	d := &Data{
		values:    make(map[Field]string),
		defaults:  make(map[Field]string),
		persister: persister,
	}
	for f, v := range defaults {
		d.defaults[f] = v
		d.values[f] = v
	}
	return d
}

// Restore replaces the current values with persisted ones.
func (d *Data) Restore(stored map[byte]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for code, v := range stored {
		if f := Field(code); f.Valid() {
			d.values[f] = v
		}
	}
}

// Apply validates and applies all updates, then persists the result. Either
// every update is applied or none.
func (d *Data) Apply(updates []Update) error {
	for _, u := range updates {
		if !u.Field.Valid() {
			return errors.Wrapf(ErrUnknownField, "code 0x%02X", byte(u.Field))
		}
		if !u.Default && len(u.Value) > MaxFieldLength {
			return errors.Wrapf(ErrFieldTooLong, "code 0x%02X", byte(u.Field))
		}
	}

	d.mu.Lock()
	for _, u := range updates {
		switch {
		case u.Default:
			d.values[u.Field] = d.defaults[u.Field]
		case u.Value == "":
			delete(d.values, u.Field)
		default:
			d.values[u.Field] = u.Value
		}
	}
	snapshot := d.snapshot()
	d.mu.Unlock()

	if d.persister != nil {
		if err := d.persister.PutReceiptData(snapshot); err != nil {
			return errors.Wrap(err, "persist receipt data")
		}
	}
	return nil
}

// Get returns the current value of f.
func (d *Data) Get(f Field) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.values[f]
}

func (d *Data) snapshot() map[byte]string {
	out := make(map[byte]string, len(d.values))
	for f, v := range d.values {
		out[byte(f)] = v
	}
	return out
}

// Check reports ErrInsufficientData when rec's receipt would miss a
// required field.
func (d *Data) Check(rec dto.TransferRecord) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.values[Location] == "" {
		return errors.Wrap(ErrInsufficientData, "location")
	}
	if rec.TransferType.IsDebit() && d.values[DebitLine1] == "" {
		return errors.Wrap(ErrInsufficientData, "debit line 1")
	}
	return nil
}

// Build renders rec as receipt lines.
func (d *Data) Build(rec dto.TransferRecord) ([]string, error) {
	if err := d.Check(rec); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	lines := []string{d.values[Location]}
	for _, f := range []Field{Address1, Address2} {
		if v := d.values[f]; v != "" {
			lines = append(lines, v)
		}
	}

	lines = append(lines,
		rec.TransactionTime.Format("01/02/2006 15:04:05"),
		strings.ToUpper(rec.TransferType.String()),
		fmt.Sprintf("TRANSACTION %s", rec.TransactionID),
		fmt.Sprintf("ASSET %d", rec.AssetNumber),
	)

	if rec.CashableAmount > 0 {
		lines = append(lines, "CASHABLE "+Money(rec.CashableAmount))
	}
	if rec.RestrictedAmount > 0 {
		lines = append(lines, "RESTRICTED "+Money(rec.RestrictedAmount))
	}
	if rec.NonRestrictedAmount > 0 {
		lines = append(lines, "NONRESTRICTED "+Money(rec.NonRestrictedAmount))
	}
	lines = append(lines, "TOTAL "+Money(rec.Total()))

	extra := []Field{InHouseLine1, InHouseLine2, InHouseLine3, InHouseLine4}
	if rec.TransferType.IsDebit() {
		extra = []Field{DebitLine1, DebitLine2, DebitLine3, DebitLine4}
	}
	for _, f := range extra {
		if v := d.values[f]; v != "" {
			lines = append(lines, v)
		}
	}

	return lines, nil
}

// Money formats cents as a currency amount with two decimals.
func Money(cents uint64) string {
	return decimal.New(int64(cents), -2).StringFixed(2)
}

// Service prints transaction receipts for finished transfers.
type Service struct {
	data    *Data
	printer external.Printer
}

// NewService binds receipt data to a printer. printer may be nil.
func NewService(data *Data, printer external.Printer) *Service {
	return &Service{data: data, printer: printer}
}

func (s *Service) Data() *Data {
	return s.data
}

// Verify reports the status a receipt request for rec would fail with, or
// ok when a receipt can be printed.
func (s *Service) Verify(rec dto.TransferRecord) (dto.TransferStatus, bool) {
	if s.printer == nil || !s.printer.CanPrint() {
		return dto.UnableToPrintTransactionReceipt, false
	}
	if err := s.data.Check(rec); err != nil {
		return dto.InsufficientDataToPrintTransactionReceipt, false
	}
	return 0, true
}

// Print renders and prints the receipt for rec and returns the resulting
// receipt status.
func (s *Service) Print(ctx context.Context, rec dto.TransferRecord) (dto.ReceiptStatus, error) {
	if s.printer == nil || !s.printer.CanPrint() {
		return dto.ReceiptPending, ErrPrinterUnavailable
	}

	lines, err := s.data.Build(rec)
	if err != nil {
		return dto.ReceiptPending, err
	}

	if err := s.printer.PrintReceipt(ctx, lines); err != nil {
		return dto.ReceiptPending, errors.Wrap(err, "print receipt")
	}

	log.Debugf("receipt printed for transaction %s", rec.TransactionID)
	return dto.ReceiptPrinted, nil
}
