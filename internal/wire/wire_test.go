package wire

import (
	"bytes"
	"math"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (int64, []byte) {
	t.Helper()
	exp, p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return exp, p
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		expiresAt int64
		payload   []byte
	}{
		{0, nil},
		{0, []byte{}},
		{1717243200, []byte("hello")},
		{math.MaxInt64, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.expiresAt, tc.payload)
		exp, p := mustDecode(t, enc)
		if exp != tc.expiresAt {
			t.Fatalf("expiresAt mismatch: got %d want %d", exp, tc.expiresAt)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(7, []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestRejectsCorruptHeaders(t *testing.T) {
	enc := Encode(1, []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// truncated below header size
	if _, _, err := Decode(enc[:8]); err == nil {
		t.Fatalf("expected error on truncated entry")
	}

	// length field larger than remaining bytes
	short := append([]byte(nil), enc...)
	short[13] = 0xFF // vlen high byte
	if _, _, err := Decode(short); err == nil {
		t.Fatalf("expected error on oversized vlen")
	}
}

func TestRejectsTruncatedPayload(t *testing.T) {
	enc := Encode(42, []byte("payload"))
	if _, _, err := Decode(enc[:len(enc)-2]); err == nil {
		t.Fatalf("expected error on truncated payload")
	}
}
