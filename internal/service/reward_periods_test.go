package service

import (
	"math/big"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/substrate-wallet-core/internal/types"
)

func ts(month time.Month, dayNum int) int64 {
	return time.Date(2024, month, dayNum, 12, 0, 0, 0, time.UTC).Unix()
}

func reward(month time.Month, dayNum int, amount int64) types.RewardEvent {
	return types.RewardEvent{
		Address:   "15oF4u...",
		Amount:    big.NewInt(amount),
		AmountRaw: big.NewInt(amount).String(),
		Era:       int(ts(month, dayNum) / 86400),
		Timestamp: ts(month, dayNum),
	}
}

func TestSortRewardEvents(t *testing.T) {
	events := []types.RewardEvent{
		reward(time.January, 5, 30),
		reward(time.January, 1, 10),
		reward(time.January, 3, 20),
	}

	sorted := SortRewardEvents(events)

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Timestamp > sorted[i].Timestamp {
			t.Fatalf("events not ascending at index %d", i)
		}
	}

	// Input order is untouched.
	if events[0].Timestamp != ts(time.January, 5) {
		t.Error("SortRewardEvents mutated its input")
	}
}

func TestAggregateByDay(t *testing.T) {
	morning := reward(time.January, 2, 100)
	evening := reward(time.January, 2, 50)
	evening.Timestamp += 6 * 3600

	buckets := AggregateByDay([]types.RewardEvent{morning, evening, reward(time.January, 3, 7)}, 0)

	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}
	if buckets[0].Date != "January 2" {
		t.Errorf("Date = %q, want %q", buckets[0].Date, "January 2")
	}
	if buckets[0].Amount.Int64() != 150 {
		t.Errorf("Amount = %v, want 150", buckets[0].Amount)
	}
	if buckets[0].Timestamp != morning.Timestamp {
		t.Error("bucket should keep the first-seen timestamp")
	}
	if buckets[0].AmountRaw != "150" {
		t.Errorf("AmountRaw = %q, want %q", buckets[0].AmountRaw, "150")
	}
}

func TestFillDayGaps_MultiDayGap(t *testing.T) {
	buckets := AggregateByDay([]types.RewardEvent{
		reward(time.January, 1, 10),
		reward(time.January, 5, 20),
	}, 0)

	filled := FillDayGaps(buckets)

	if len(filled) != 5 {
		t.Fatalf("len(filled) = %d, want 5", len(filled))
	}
	wantDates := []string{"January 1", "January 2", "January 3", "January 4", "January 5"}
	for i, want := range wantDates {
		if filled[i].Date != want {
			t.Errorf("filled[%d].Date = %q, want %q", i, filled[i].Date, want)
		}
	}
	for _, i := range []int{1, 2, 3} {
		if filled[i].Amount.Sign() != 0 {
			t.Errorf("synthetic bucket %d has non-zero amount", i)
		}
	}
}

func TestFillDayGaps_AcrossMonthBoundary(t *testing.T) {
	buckets := AggregateByDay([]types.RewardEvent{
		reward(time.January, 30, 10),
		reward(time.February, 2, 20),
	}, 0)

	filled := FillDayGaps(buckets)

	wantDates := []string{"January 30", "January 31", "February 1", "February 2"}
	if len(filled) != len(wantDates) {
		t.Fatalf("len(filled) = %d, want %d", len(filled), len(wantDates))
	}
	for i, want := range wantDates {
		if filled[i].Date != want {
			t.Errorf("filled[%d].Date = %q, want %q", i, filled[i].Date, want)
		}
	}
}

func TestPartitionPeriods_PadsPartialWindow(t *testing.T) {
	buckets := FillDayGaps(AggregateByDay([]types.RewardEvent{
		reward(time.March, 1, 1),
		reward(time.March, 2, 2),
		reward(time.March, 3, 3),
		reward(time.March, 4, 4),
	}, 0))

	periods := PartitionPeriods(buckets, IntervalCompact)

	if len(periods) != 1 {
		t.Fatalf("len(periods) = %d, want 1", len(periods))
	}
	if len(periods[0]) != IntervalCompact {
		t.Fatalf("period size = %d, want %d", len(periods[0]), IntervalCompact)
	}

	// The shortfall is made up with synthesized leading days so the window
	// still ends on the newest real day. 2024 is a leap year.
	for i := 0; i < 6; i++ {
		if periods[0][i].Amount.Sign() != 0 {
			t.Errorf("padded bucket %d has non-zero amount", i)
		}
	}
	if periods[0][0].Date != "February 24" {
		t.Errorf("first padded date = %q, want %q", periods[0][0].Date, "February 24")
	}
	if periods[0][5].Date != "February 29" {
		t.Errorf("last padded date = %q, want %q", periods[0][5].Date, "February 29")
	}
	if periods[0][9].Date != "March 4" {
		t.Errorf("window ends at %q, want %q", periods[0][9].Date, "March 4")
	}
}

func TestPartitionPeriods_NewestFirst(t *testing.T) {
	var events []types.RewardEvent
	for d := 1; d <= 25; d++ {
		events = append(events, reward(time.March, d, int64(d)))
	}
	buckets := FillDayGaps(AggregateByDay(events, 0))

	periods := PartitionPeriods(buckets, IntervalCompact)

	if len(periods) != 3 {
		t.Fatalf("len(periods) = %d, want 3", len(periods))
	}

	// Windows align to the newest day: the most recent period holds the ten
	// newest real days and never synthesized future ones.
	if periods[0][0].Date != "March 16" {
		t.Errorf("periods[0] starts at %q, want %q", periods[0][0].Date, "March 16")
	}
	if periods[0][9].Date != "March 25" {
		t.Errorf("periods[0] ends at %q, want %q", periods[0][9].Date, "March 25")
	}
	for i, bucket := range periods[0] {
		if bucket.Amount.Sign() == 0 {
			t.Errorf("periods[0][%d] (%s) is synthesized, newest window must be real", i, bucket.Date)
		}
	}

	if periods[1][0].Date != "March 6" {
		t.Errorf("periods[1] starts at %q, want %q", periods[1][0].Date, "March 6")
	}

	// The oldest window absorbs the shortfall with leading zero days.
	if periods[2][0].Date != "February 25" {
		t.Errorf("periods[2] starts at %q, want %q", periods[2][0].Date, "February 25")
	}
	if periods[2][9].Date != "March 5" {
		t.Errorf("periods[2] ends at %q, want %q", periods[2][9].Date, "March 5")
	}
	for i := 0; i < 5; i++ {
		if periods[2][i].Amount.Sign() != 0 {
			t.Errorf("periods[2][%d] should be a padded zero day", i)
		}
	}

	for i, period := range periods {
		if len(period) != IntervalCompact {
			t.Errorf("period %d size = %d, want %d", i, len(period), IntervalCompact)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	sameMonth := []types.DayBucket{
		{Timestamp: ts(time.January, 3)},
		{Timestamp: ts(time.January, 12)},
	}
	if got := PeriodLabel(sameMonth); got != "January 3 - 12" {
		t.Errorf("PeriodLabel = %q, want %q", got, "January 3 - 12")
	}

	crossMonth := []types.DayBucket{
		{Timestamp: ts(time.January, 28)},
		{Timestamp: ts(time.February, 4)},
	}
	if got := PeriodLabel(crossMonth); got != "January 28 - February 4" {
		t.Errorf("PeriodLabel = %q, want %q", got, "January 28 - February 4")
	}

	if got := PeriodLabel(nil); got != "" {
		t.Errorf("PeriodLabel(nil) = %q, want empty", got)
	}
}

func TestAmountToHuman(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		decimals int
		want     string
	}{
		{"nil amount", nil, 10, "0"},
		{"zero decimals", big.NewInt(1234), 0, "1234"},
		{"whole tokens", big.NewInt(50_000_000_000), 10, "5"},
		{"fraction capped at four digits", big.NewInt(12_345_678_901), 10, "1.2345"},
		{"trailing zeros trimmed", big.NewInt(15_000_000_000), 10, "1.5"},
		{"sub-token amount", big.NewInt(2_500_000_000), 10, "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AmountToHuman(tt.amount, tt.decimals); got != tt.want {
				t.Errorf("AmountToHuman = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewardPager_Navigation(t *testing.T) {
	var events []types.RewardEvent
	for d := 1; d <= 25; d++ {
		events = append(events, reward(time.March, d, int64(d)))
	}

	pager := NewRewardPager(events, 0, IntervalCompact)

	if pager.PeriodCount() != 3 {
		t.Fatalf("PeriodCount = %d, want 3", pager.PeriodCount())
	}
	if pager.PageIndex() != 0 {
		t.Fatalf("initial PageIndex = %d, want 0", pager.PageIndex())
	}

	// Next past the newest period is a no-op.
	pager.Next()
	if pager.PageIndex() != 0 {
		t.Errorf("Next at newest moved to %d", pager.PageIndex())
	}

	pager.Prev()
	pager.Prev()
	if pager.PageIndex() != 2 {
		t.Errorf("PageIndex = %d after two Prev, want 2", pager.PageIndex())
	}

	// Prev past the oldest period is a no-op.
	pager.Prev()
	if pager.PageIndex() != 2 {
		t.Errorf("Prev at oldest moved to %d", pager.PageIndex())
	}

	pager.Next()
	if pager.PageIndex() != 1 {
		t.Errorf("PageIndex = %d after Next, want 1", pager.PageIndex())
	}

	pager.SetPageIndex(99)
	if pager.PageIndex() != 1 {
		t.Errorf("out-of-range SetPageIndex changed page to %d", pager.PageIndex())
	}
	pager.SetPageIndex(-1)
	if pager.PageIndex() != 1 {
		t.Errorf("negative SetPageIndex changed page to %d", pager.PageIndex())
	}
}

func TestRewardPager_ExpandToggle(t *testing.T) {
	pager := NewRewardPager([]types.RewardEvent{
		reward(time.March, 1, 10),
		reward(time.March, 2, 20),
	}, 0, IntervalCompact)

	pager.ToggleExpand("2")
	if pager.Expanded() != "2" {
		t.Fatalf("Expanded = %q, want %q", pager.Expanded(), "2")
	}

	bucket := pager.ExpandedBucket()
	if bucket == nil || bucket.Date != "March 2" {
		t.Fatalf("ExpandedBucket = %+v, want March 2", bucket)
	}

	// Expanding another day replaces the previous expansion.
	pager.ToggleExpand("1")
	if pager.Expanded() != "1" {
		t.Errorf("Expanded = %q, want %q", pager.Expanded(), "1")
	}

	// Toggling the same day collapses it.
	pager.ToggleExpand("1")
	if pager.Expanded() != "" {
		t.Errorf("Expanded = %q after collapse, want empty", pager.Expanded())
	}
	if pager.ExpandedBucket() != nil {
		t.Error("ExpandedBucket should be nil when nothing is expanded")
	}
}

func TestRewardPager_EmptyEvents(t *testing.T) {
	pager := NewRewardPager(nil, 10, IntervalCompact)
	if pager.PeriodCount() != 0 {
		t.Errorf("PeriodCount = %d, want 0", pager.PeriodCount())
	}
	if pager.Current() != nil {
		t.Error("Current should be nil with no periods")
	}
	if pager.Label() != "" {
		t.Errorf("Label = %q, want empty", pager.Label())
	}
}

func TestRewardPeriods_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genDays := gen.SliceOfN(12, gen.IntRange(1, 28))

	properties.Property("sorting is idempotent", prop.ForAll(
		func(days []int) bool {
			events := make([]types.RewardEvent, len(days))
			for i, d := range days {
				events[i] = reward(time.March, d, int64(i+1))
			}
			once := SortRewardEvents(events)
			twice := SortRewardEvents(once)
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		genDays,
	))

	properties.Property("gap fill yields consecutive calendar days", prop.ForAll(
		func(days []int) bool {
			events := make([]types.RewardEvent, len(days))
			for i, d := range days {
				events[i] = reward(time.March, d, int64(i+1))
			}
			filled := FillDayGaps(AggregateByDay(SortRewardEvents(events), 0))
			for i := 1; i < len(filled); i++ {
				prev := time.Unix(filled[i-1].Timestamp, 0).UTC()
				if bucketDate(prev.Add(day).Unix()) != filled[i].Date {
					return false
				}
			}
			return true
		},
		genDays,
	))

	properties.Property("every period has exactly interval days", prop.ForAll(
		func(days []int) bool {
			events := make([]types.RewardEvent, len(days))
			for i, d := range days {
				events[i] = reward(time.March, d, int64(i+1))
			}
			pager := NewRewardPager(events, 0, IntervalCompact)
			for i := 0; i < pager.PeriodCount(); i++ {
				pager.SetPageIndex(i)
				if len(pager.Current()) != IntervalCompact {
					return false
				}
			}
			return true
		},
		genDays,
	))

	properties.TestingRun(t)
}
