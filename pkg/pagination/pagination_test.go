package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 50, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}
	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("round trip mismatch: %+v != %+v", got, want)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	cursor, err := ParseCursor("  ")
	if err != nil || cursor != nil {
		t.Fatalf("expected nil cursor for blank input, got %v / %v", cursor, err)
	}
	if _, err := ParseCursor("not-base64!"); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}
