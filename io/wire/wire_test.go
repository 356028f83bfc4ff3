package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCRC_KnownVector(t *testing.T) {
	// CRC-16/KERMIT check value for "123456789"
	require.Equal(t, uint16(0x2189), CRC([]byte("123456789")))
}

func TestFrame_RoundTripWithLength(t *testing.T) {
	frame := Frame(0x01, 0x72, []byte{0xFF, 0x00}, true)
	require.Equal(t, []byte{0x01, 0x72, 0x02, 0xFF, 0x00}, frame[:5])

	addr, cmd, body, err := ParseFrame(frame, true)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), addr)
	require.Equal(t, byte(0x72), cmd)
	require.Equal(t, []byte{0xFF, 0x00}, body)
}

func TestParseFrame_Errors(t *testing.T) {
	frame := Frame(0x01, 0x72, []byte{0xFF, 0x00}, true)

	corrupted := append([]byte{}, frame...)
	corrupted[3] ^= 0x01
	_, _, _, err := ParseFrame(corrupted, true)
	require.ErrorIs(t, err, ErrBadCRC)

	wrongLen := Frame(0x01, 0x72, []byte{0x05, 0xFF}, false)
	_, _, _, err = ParseFrame(wrongLen, true)
	require.ErrorIs(t, err, ErrLength)

	_, _, _, err = ParseFrame([]byte{0x01, 0x72}, true)
	require.ErrorIs(t, err, ErrShortFrame)
}

func TestBCD(t *testing.T) {
	b, err := EncodeBCD(1234567890, 5)
	require.NoError(t, err)
	require.Equal(t, []byte{0x12, 0x34, 0x56, 0x78, 0x90}, b)

	v, err := DecodeBCD(b)
	require.NoError(t, err)
	require.Equal(t, uint64(1234567890), v)

	_, err = EncodeBCD(100, 1)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = DecodeBCD([]byte{0x1A})
	require.ErrorIs(t, err, ErrBadBCD)
}

func TestDateAndTimeValues(t *testing.T) {
	ts := time.Date(2026, time.October, 18, 9, 5, 7, 0, time.UTC)
	require.Equal(t, uint64(10182026), DateValue(ts))
	require.Equal(t, uint64(90507), TimeValue(ts))
	require.Zero(t, DateValue(time.Time{}))

	back := DateTime(DateValue(ts), TimeValue(ts))
	require.Equal(t, ts.Format(time.DateTime), back.Format(time.DateTime))
	require.True(t, DateTime(0, 0).IsZero())
}

func TestReaderWriter(t *testing.T) {
	w := NewWriter(16)
	w.Byte(0xAB)
	w.BCD(42, 2)
	w.Uint16(0x1234)
	w.Uint32(0xDEADBEEF)
	require.NoError(t, w.Err())

	r := NewReader(w.Body())
	require.Equal(t, byte(0xAB), r.Byte())
	require.Equal(t, uint64(42), r.BCD(2))
	require.Equal(t, uint16(0x1234), r.Uint16())
	require.Equal(t, uint32(0xDEADBEEF), r.Uint32())
	require.Zero(t, r.Remaining())
	require.NoError(t, r.Err())

	r.Byte()
	require.ErrorIs(t, r.Err(), ErrShortFrame)

	w.BCD(1000, 1)
	require.ErrorIs(t, w.Err(), ErrOverflow)
}
