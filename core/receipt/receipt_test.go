package receipt

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/mocks"
	"go.uber.org/mock/gomock"
)

type memPersister struct {
	saved map[byte]string
}

func (m *memPersister) PutReceiptData(fields map[byte]string) error {
	m.saved = fields
	return nil
}

func TestData_ApplyDefaultsAndClear(t *testing.T) {
	p := &memPersister{}
	d := New(map[Field]string{Location: "Main Floor", InHouseLine1: "Thanks"}, p)

	require.NoError(t, d.Apply([]Update{
		{Field: Location, Value: "High Limit Room"},
		{Field: Address1, Value: "1 Casino Way"},
	}))
	require.Equal(t, "High Limit Room", d.Get(Location))
	require.Equal(t, "1 Casino Way", p.saved[byte(Address1)])

	require.NoError(t, d.Apply([]Update{
		{Field: Location, Default: true},
		{Field: InHouseLine1, Value: ""},
	}))
	require.Equal(t, "Main Floor", d.Get(Location))
	require.Empty(t, d.Get(InHouseLine1))
}

func TestData_ApplyRejectsAtomically(t *testing.T) {
	d := New(nil, nil)

	err := d.Apply([]Update{
		{Field: Location, Value: "Somewhere"},
		{Field: Field(0x05), Value: "bad"},
	})
	require.ErrorIs(t, err, ErrUnknownField)
	require.Empty(t, d.Get(Location))

	long := make([]byte, MaxFieldLength+1)
	for i := range long {
		long[i] = 'x'
	}
	require.ErrorIs(t, d.Apply([]Update{{Field: Address2, Value: string(long)}}), ErrFieldTooLong)
}

func TestData_BuildRequiresFields(t *testing.T) {
	d := New(nil, nil)
	rec := dto.TransferRecord{TransferType: dto.HostToGameDebit, CashableAmount: 1234}

	_, err := d.Build(rec)
	require.ErrorIs(t, err, ErrInsufficientData)

	require.NoError(t, d.Apply([]Update{{Field: Location, Value: "Floor"}}))
	_, err = d.Build(rec)
	require.ErrorIs(t, err, ErrInsufficientData)

	require.NoError(t, d.Apply([]Update{{Field: DebitLine1, Value: "Debit card"}}))
	rec.TransactionID = "TX1"
	rec.TransactionTime = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	lines, err := d.Build(rec)
	require.NoError(t, err)
	require.Contains(t, lines, "CASHABLE 12.34")
	require.Contains(t, lines, "TOTAL 12.34")
	require.Contains(t, lines, "Debit card")
	require.Contains(t, lines, "10/18/2026 09:30:00")
}

func TestMoney(t *testing.T) {
	require.Equal(t, "0.05", Money(5))
	require.Equal(t, "1000.00", Money(100000))
}

func TestService_VerifyAndPrint(t *testing.T) {
	ctrl := gomock.NewController(t)
	printer := mocks.NewMockPrinter(ctrl)
	data := New(map[Field]string{Location: "Floor"}, nil)
	svc := NewService(data, printer)
	rec := dto.TransferRecord{TransferType: dto.HostToGameInHouse, CashableAmount: 100, TransactionID: "A"}

	printer.EXPECT().CanPrint().Return(false)
	status, ok := svc.Verify(rec)
	require.False(t, ok)
	require.Equal(t, dto.UnableToPrintTransactionReceipt, status)

	printer.EXPECT().CanPrint().Return(true).Times(2)
	printer.EXPECT().PrintReceipt(gomock.Any(), gomock.Any()).Return(nil)
	_, ok = svc.Verify(rec)
	require.True(t, ok)

	rs, err := svc.Print(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, dto.ReceiptPrinted, rs)

	printer.EXPECT().CanPrint().Return(true)
	printer.EXPECT().PrintReceipt(gomock.Any(), gomock.Any()).Return(errors.New("paper jam"))
	rs, err = svc.Print(context.Background(), rec)
	require.Error(t, err)
	require.Equal(t, dto.ReceiptPending, rs)
}

func TestService_NoPrinter(t *testing.T) {
	svc := NewService(New(map[Field]string{Location: "Floor"}, nil), nil)

	status, ok := svc.Verify(dto.TransferRecord{})
	require.False(t, ok)
	require.Equal(t, dto.UnableToPrintTransactionReceipt, status)

	_, err := svc.Print(context.Background(), dto.TransferRecord{})
	require.ErrorIs(t, err, ErrPrinterUnavailable)
}
