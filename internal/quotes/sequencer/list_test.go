package sequencer

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"travel_backoffice/platform/apperr"
)

func day(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func nights(n int) *int { return &n }

func tour(name string, date civil.Date) Item {
	return Item{ID: uuid.New(), ServiceRef: uuid.New(), DisplayText: name, City: "Cusco", ServiceTypeLabel: "Tour", ScheduledDate: date}
}

func hotel(name, city string, date civil.Date, n int) Item {
	return Item{ID: uuid.New(), ServiceRef: uuid.New(), DisplayText: name, City: city, ServiceTypeLabel: "Hotel", ScheduledDate: date, NightCount: nights(n)}
}

func names(l *List) []string {
	out := make([]string, 0, l.Len())
	for _, it := range l.Items() {
		out = append(out, it.DisplayText)
	}
	return out
}

func TestMoveLaterOntoEqualDateDoesNotSwap(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 10)), tour("B", day(2025, 6, 11))})

	res, err := l.Move(0, Later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Shifted || res.Swapped {
		t.Fatalf("expected shift without swap, got %+v", res)
	}
	if got := l.Items()[0].ScheduledDate; got != day(2025, 6, 11) {
		t.Fatalf("expected A on 2025-06-11, got %s", got)
	}
	if got := names(l); got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected order unchanged, got %v", got)
	}
}

func TestMoveEarlierOntoEqualDateDoesNotSwap(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 10)), tour("B", day(2025, 6, 11))})

	res, err := l.Move(1, Earlier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Swapped {
		t.Fatal("expected no swap on a tie")
	}
	if got := l.Items()[1].ScheduledDate; got != day(2025, 6, 10) {
		t.Fatalf("expected B on 2025-06-10, got %s", got)
	}
}

func TestMoveEarlierTwiceCrossesPredecessor(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 10)), tour("B", day(2025, 6, 11))})

	first, _ := l.Move(1, Earlier)
	second, err := l.Move(1, Earlier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Swapped {
		t.Fatal("first move must not swap")
	}
	if !second.Swapped || second.Index != 0 {
		t.Fatalf("expected second move to swap into index 0, got %+v", second)
	}
	items := l.Items()
	if items[0].DisplayText != "B" || items[0].ScheduledDate != day(2025, 6, 9) {
		t.Fatalf("expected B(2025-06-09) first, got %s(%s)", items[0].DisplayText, items[0].ScheduledDate)
	}
	if items[1].DisplayText != "A" || items[1].ScheduledDate != day(2025, 6, 10) {
		t.Fatalf("expected A(2025-06-10) second, got %s(%s)", items[1].DisplayText, items[1].ScheduledDate)
	}
}

func TestMoveLaterCrossesSuccessor(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 11)), tour("B", day(2025, 6, 11))})

	res, _ := l.Move(0, Later)
	if !res.Swapped || res.Index != 1 {
		t.Fatalf("expected swap to index 1, got %+v", res)
	}
	if got := names(l); got[0] != "B" || got[1] != "A" {
		t.Fatalf("expected [B A], got %v", got)
	}
}

func TestMoveShiftsAcrossMonthAndYearBoundaries(t *testing.T) {
	cases := []struct {
		from  civil.Date
		delta int
		want  civil.Date
	}{
		{day(2025, 3, 1), Earlier, day(2025, 2, 28)},
		{day(2024, 3, 1), Earlier, day(2024, 2, 29)},
		{day(2025, 1, 1), Earlier, day(2024, 12, 31)},
		{day(2025, 12, 31), Later, day(2026, 1, 1)},
	}
	for _, tc := range cases {
		l := NewList(nil)
		l.Load([]Item{tour("A", tc.from)})
		res, err := l.Move(0, tc.delta)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Item.ScheduledDate != tc.want {
			t.Fatalf("move %s by %d: expected %s, got %s", tc.from, tc.delta, tc.want, res.Item.ScheduledDate)
		}
	}
}

func TestMoveAtEdgesOnlyShiftsDate(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 10)), tour("B", day(2025, 6, 20))})

	first, _ := l.Move(0, Earlier)
	last, _ := l.Move(1, Later)
	if first.Swapped || last.Swapped {
		t.Fatal("edge moves must never swap")
	}
	if l.Items()[0].ScheduledDate != day(2025, 6, 9) || l.Items()[1].ScheduledDate != day(2025, 6, 21) {
		t.Fatalf("unexpected dates %v", l.Items())
	}
}

func TestMoveWithoutDateIsNoop(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{{ID: uuid.New(), DisplayText: "A", ServiceTypeLabel: "Tour"}, tour("B", day(2025, 6, 1))})

	res, err := l.Move(0, Later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Shifted || res.Swapped {
		t.Fatalf("expected no-op, got %+v", res)
	}
}

func TestMoveRejectsBadInput(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 10))})

	if _, err := l.Move(0, 2); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for delta 2, got %v", err)
	}
	if _, err := l.Move(5, Later); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for index 5, got %v", err)
	}
}

func TestPositionsFollowIndex(t *testing.T) {
	l := NewList(nil)
	a, b, c := tour("A", day(2025, 6, 1)), tour("B", day(2025, 6, 2)), tour("C", day(2025, 6, 3))
	l.Load([]Item{a, b, c})
	_, _ = l.Move(2, Earlier)
	_, _ = l.Move(2, Earlier)

	pos := l.Positions()
	want := []uuid.UUID{a.ID, c.ID, b.ID}
	for i, p := range pos {
		if p.Position != i+1 || p.ItemID != want[i] {
			t.Fatalf("position %d: expected %s@%d, got %s@%d", i, want[i], i+1, p.ItemID, p.Position)
		}
	}
}

func TestAppendValidation(t *testing.T) {
	l := NewList(nil)

	if err := l.Append(Item{ServiceTypeLabel: "Tour"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error without date, got %v", err)
	}
	bad := hotel("H", "Lima", day(2025, 6, 1), 0)
	if err := l.Append(bad); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for zero nights, got %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list after failed appends, got %d", l.Len())
	}

	_ = l.Append(tour("A", day(2025, 6, 5)))
	_ = l.Append(hotel("H", "Lima", day(2025, 6, 1), 2))
	if got := names(l); got[0] != "A" || got[1] != "H" {
		t.Fatalf("expected appended items last, got %v", got)
	}
}

func TestRemove(t *testing.T) {
	l := NewList(nil)
	l.Load([]Item{tour("A", day(2025, 6, 1)), tour("B", day(2025, 6, 2))})

	removed, err := l.Remove(0)
	if err != nil || removed.DisplayText != "A" {
		t.Fatalf("expected A removed, got %v (%v)", removed.DisplayText, err)
	}
	if l.Len() != 1 || l.Items()[0].DisplayText != "B" {
		t.Fatalf("expected [B], got %v", names(l))
	}
	if _, err := l.Remove(3); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTotalSkipsOptionalAndUnpricedItems(t *testing.T) {
	priced := func(it Item, amount string, optional bool) Item {
		it.Price = decimal.NewNullDecimal(decimal.RequireFromString(amount))
		it.IsOptional = optional
		return it
	}

	flight := Item{ID: uuid.New(), ServiceTypeLabel: "Vuelo", ScheduledDate: day(2025, 6, 1),
		Price: decimal.NewNullDecimal(decimal.RequireFromString("300"))}

	l := NewList(nil)
	l.Load([]Item{
		priced(tour("A", day(2025, 6, 1)), "100.50", false),
		priced(tour("B", day(2025, 6, 2)), "999", true),
		priced(tour("C", day(2025, 6, 3)), "-20", false),
		tour("D", day(2025, 6, 4)),
		priced(hotel("H", "Lima", day(2025, 6, 4), 2), "240.25", false),
		flight,
	})

	if got := l.Total(); !got.Equal(decimal.RequireFromString("340.75")) {
		t.Fatalf("expected total 340.75, got %s", got)
	}
}

func TestRepriceOnlyMatchesCurrentDate(t *testing.T) {
	a := tour("A", day(2025, 3, 1))
	a.Price = decimal.NewNullDecimal(decimal.NewFromInt(100))
	l := NewList(nil)
	l.Load([]Item{a})

	if _, err := l.Move(0, Earlier); err != nil {
		t.Fatalf("move: %v", err)
	}
	feb := decimal.NewNullDecimal(decimal.NewFromInt(80))

	if l.Reprice(a.ID, day(2025, 3, 1), feb) {
		t.Fatal("expected a price for the old date to be ignored")
	}
	if !l.Reprice(a.ID, day(2025, 2, 28), feb) {
		t.Fatal("expected reprice at the current date")
	}
	if got := l.Total(); !got.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected total 80, got %s", got)
	}
	if l.Reprice(uuid.New(), day(2025, 2, 28), feb) {
		t.Fatal("expected unknown item to be ignored")
	}
}

func TestRepriceKeepsExemptItemsUnpriced(t *testing.T) {
	flight := Item{ID: uuid.New(), ServiceTypeLabel: "Vuelo", ScheduledDate: day(2025, 6, 1)}
	l := NewList(nil)
	l.Load([]Item{flight})

	l.Reprice(flight.ID, day(2025, 6, 1), decimal.NewNullDecimal(decimal.NewFromInt(300)))
	if it, _ := l.At(0); it.Price.Valid {
		t.Fatalf("expected price-exempt item to stay unpriced, got %s", it.Price.Decimal)
	}
}

func TestLoadDropsNonPositiveNightCount(t *testing.T) {
	legacy := hotel("H", "Lima", day(2025, 6, 4), 0)
	l := NewList(nil)
	l.Load([]Item{legacy})

	it, _ := l.At(0)
	if !it.IsLodging {
		t.Fatal("expected lodging item")
	}
	if it.NightCount != nil {
		t.Fatalf("expected zero night count to be dropped, got %d", *it.NightCount)
	}
	if got := DateLabel(it); got != "04/06/2025" {
		t.Fatalf("expected single date label, got %q", got)
	}
}
