// Package wire implements the SAS serial framing used by the AFT long polls.
//
// A frame is [address][command]([length])[body...][crc lo][crc hi]. Amounts,
// dates, times and timeouts are packed BCD, asset numbers and pool ids are
// little-endian binary.
package wire

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrShortFrame is returned when a frame ends before a declared field.
	ErrShortFrame = errors.New("frame too short")
	// ErrBadCRC is returned when the trailing CRC does not match the frame.
	ErrBadCRC = errors.New("crc mismatch")
	// ErrBadBCD is returned when a BCD field holds a nibble above 9.
	ErrBadBCD = errors.New("invalid bcd digit")
	// ErrLength is returned when the length byte disagrees with the frame size.
	ErrLength = errors.New("length byte does not match frame")
	// ErrOverflow is returned when a value does not fit its BCD field.
	ErrOverflow = errors.New("value does not fit field")
)

// CRC computes the SAS CRC-16 (CCITT, reflected, seed 0) over data.
func CRC(data []byte) uint16 {
	var crc uint16
	for _, c := range data {
		q := (crc ^ uint16(c)) & 0x0f
		crc = (crc >> 4) ^ (q * 0x1081)
		q = (crc ^ uint16(c>>4)) & 0x0f
		crc = (crc >> 4) ^ (q * 0x1081)
	}
	return crc
}

// AppendCRC appends the CRC of frame, least significant byte first.
func AppendCRC(frame []byte) []byte {
	crc := CRC(frame)
	return append(frame, byte(crc), byte(crc>>8))
}

// CheckCRC validates the trailing two CRC bytes and returns the frame without them.
func CheckCRC(frame []byte) ([]byte, error) {
	if len(frame) < 4 {
		return nil, ErrShortFrame
	}
	payload := frame[:len(frame)-2]
	got := binary.LittleEndian.Uint16(frame[len(frame)-2:])
	if CRC(payload) != got {
		return nil, ErrBadCRC
	}
	return payload, nil
}

// Frame builds a complete frame. When withLength is set the body length is
// written after the command byte.
func Frame(address, command byte, body []byte, withLength bool) []byte {
	out := make([]byte, 0, len(body)+5)
	out = append(out, address, command)
	if withLength {
		out = append(out, byte(len(body)))
	}
	out = append(out, body...)
	return AppendCRC(out)
}

// ParseFrame checks the CRC and splits a frame into its header and body.
func ParseFrame(frame []byte, withLength bool) (address, command byte, body []byte, err error) {
	payload, err := CheckCRC(frame)
	if err != nil {
		return 0, 0, nil, err
	}
	address, command = payload[0], payload[1]
	body = payload[2:]
	if withLength {
		if len(body) < 1 {
			return 0, 0, nil, ErrShortFrame
		}
		n := int(body[0])
		body = body[1:]
		if n != len(body) {
			return 0, 0, nil, errors.Wrapf(ErrLength, "declared %d, got %d", n, len(body))
		}
	}
	return address, command, body, nil
}

// EncodeBCD packs v into n bytes of BCD, most significant digit first.
func EncodeBCD(v uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		lo := v % 10
		v /= 10
		hi := v % 10
		v /= 10
		out[i] = byte(hi<<4 | lo)
	}
	if v != 0 {
		return nil, ErrOverflow
	}
	return out, nil
}

// DecodeBCD unpacks a BCD field.
func DecodeBCD(b []byte) (uint64, error) {
	var v uint64
	for _, c := range b {
		hi, lo := c>>4, c&0x0f
		if hi > 9 || lo > 9 {
			return 0, ErrBadBCD
		}
		v = v*100 + uint64(hi)*10 + uint64(lo)
	}
	return v, nil
}

// DateValue returns t as the MMDDYYYY number SAS uses in date fields.
func DateValue(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.Month())*1000000 + uint64(t.Day())*10000 + uint64(t.Year())
}

// TimeValue returns t as the HHMMSS number SAS uses in time fields.
func TimeValue(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.Hour())*10000 + uint64(t.Minute())*100 + uint64(t.Second())
}

// DateTime is the inverse of DateValue and TimeValue. A zero date gives the
// zero time.
func DateTime(date, clock uint64) time.Time {
	if date == 0 {
		return time.Time{}
	}
	month, day, year := date/1000000, date/10000%100, date%10000
	hour, minute, sec := clock/10000, clock/100%100, clock%100
	return time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(sec), 0, time.Local)
}
