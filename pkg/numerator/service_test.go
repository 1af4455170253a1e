package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sequence upsert: every call bumps the value.
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	keys         []string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(args) > 0 {
		if key, ok := args[0].(string); ok {
			m.keys = append(m.keys, key)
		}
	}
	if len(args) == 2 {
		// SetNextNumber passes the explicit value
		if val, ok := args[1].(int64); ok {
			m.currentValue = val
			return &mockRow{val: m.currentValue}
		}
	}
	m.currentValue++
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("TEST")
	period := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2026-00001" {
		t.Errorf("expected TEST-2026-00001, got %s", num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "TEST-2026-00002" {
		t.Errorf("expected TEST-2026-00002, got %s", num)
	}

	if len(q.keys) != 2 || q.keys[0] != "TEST_2026" {
		t.Errorf("expected sequence key TEST_2026, got %v", q.keys)
	}
}

func TestGetNextNumber_ResetPeriods(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	period := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	cfg := Config{Prefix: "ADJ", ResetPeriod: "month", PadWidth: 4}
	num, err := svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "ADJ-0001" {
		t.Errorf("expected ADJ-0001, got %s", num)
	}
	if q.keys[0] != "ADJ_2026_08" {
		t.Errorf("expected monthly key ADJ_2026_08, got %s", q.keys[0])
	}

	cfg = Config{Prefix: "GR", ResetPeriod: "never"}
	if _, err := svc.GetNextNumber(ctx, cfg, period); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.keys[1] != "GR" {
		t.Errorf("expected key GR, got %s", q.keys[1])
	}
}

func TestSetNextNumber(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	period := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	if err := svc.SetNextNumber(ctx, cfg, period, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, err := svc.GetNextNumber(ctx, cfg, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "INV-2026-00101" {
		t.Errorf("expected INV-2026-00101, got %s", num)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]int64{
		"POS-2026-00042": 42,
		"GR-00007":       7,
		"garbage":        -1,
	}
	for in, want := range cases {
		if got := ParseNumber(in); got != want {
			t.Errorf("ParseNumber(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSaleNumbers_Next(t *testing.T) {
	q := &mockQuerier{}
	n := NewSaleNumbers(q)

	num, err := n.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "POS-" + time.Now().Format("2006") + "-00001"
	if num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
}
