package service

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/substrate-wallet-core/internal/types"
)

// Interval sizes for period partitioning
const (
	// IntervalCompact is the period length for the compact display
	IntervalCompact = 10
	// IntervalExpanded is the period length for the fullscreen display
	IntervalExpanded = 15
)

const day = 24 * time.Hour

// bucketDate formats a timestamp as the calendar-date label buckets are
// grouped by ("January 2" granularity, UTC, no year).
func bucketDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("January 2")
}

// dayOfMonth is the date-without-month label used for bucket expansion matching
func dayOfMonth(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2")
}

// SortRewardEvents returns a copy of events sorted ascending by timestamp.
// Ties break on era then raw amount so repeated runs are bit-identical.
func SortRewardEvents(events []types.RewardEvent) []types.RewardEvent {
	sorted := make([]types.RewardEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp != sorted[j].Timestamp {
			return sorted[i].Timestamp < sorted[j].Timestamp
		}
		if sorted[i].Era != sorted[j].Era {
			return sorted[i].Era < sorted[j].Era
		}
		return sorted[i].AmountRaw < sorted[j].AmountRaw
	})
	return sorted
}

// AggregateByDay groups sorted events by calendar-date label and sums the
// amounts per group. The group keeps the first-seen timestamp.
func AggregateByDay(events []types.RewardEvent, decimals int) []types.DayBucket {
	var buckets []types.DayBucket
	index := make(map[string]int)

	for _, ev := range events {
		date := bucketDate(ev.Timestamp)
		amount := ev.Amount
		if amount == nil {
			amount = new(big.Int)
			amount.SetString(ev.AmountRaw, 10)
		}
		if i, ok := index[date]; ok {
			buckets[i].Amount = new(big.Int).Add(buckets[i].Amount, amount)
			continue
		}
		index[date] = len(buckets)
		buckets = append(buckets, types.DayBucket{
			Date:      date,
			Timestamp: ev.Timestamp,
			Amount:    new(big.Int).Set(amount),
		})
	}

	for i := range buckets {
		buckets[i].AmountRaw = buckets[i].Amount.String()
		buckets[i].AmountInHuman = AmountToHuman(buckets[i].Amount, decimals)
	}
	return buckets
}

// FillDayGaps inserts zero-amount synthetic buckets so consecutive entries
// are exactly one calendar day apart. Multi-day gaps are filled completely,
// not one day per adjacent pair.
func FillDayGaps(buckets []types.DayBucket) []types.DayBucket {
	if len(buckets) < 2 {
		return buckets
	}

	filled := make([]types.DayBucket, 0, len(buckets))
	filled = append(filled, buckets[0])

	for i := 1; i < len(buckets); i++ {
		prev := filled[len(filled)-1]
		next := buckets[i]

		cursor := time.Unix(prev.Timestamp, 0).UTC().Add(day)
		for bucketDate(cursor.Unix()) != next.Date {
			filled = append(filled, zeroBucket(cursor.Unix()))
			cursor = cursor.Add(day)
		}
		filled = append(filled, next)
	}
	return filled
}

// zeroBucket synthesizes a zero-amount entry for a missing day
func zeroBucket(ts int64) types.DayBucket {
	zero := new(big.Int)
	return types.DayBucket{
		Date:          bucketDate(ts),
		Timestamp:     ts,
		Amount:        zero,
		AmountRaw:     "0",
		AmountInHuman: "0",
	}
}

// PartitionPeriods slices a contiguous day list into windows of interval
// days, working backward from the most recent day so the newest window always
// holds real days. Periods are returned newest-first (index 0 = most recent)
// while each period stays chronological. The oldest window absorbs the
// shortfall and is padded with synthesized leading days so every period has
// exactly interval entries.
func PartitionPeriods(buckets []types.DayBucket, interval int) [][]types.DayBucket {
	if interval <= 0 || len(buckets) == 0 {
		return nil
	}

	var periods [][]types.DayBucket
	for end := len(buckets); end > 0; end -= interval {
		start := end - interval
		if start < 0 {
			start = 0
		}
		chunk := make([]types.DayBucket, end-start)
		copy(chunk, buckets[start:end])
		periods = append(periods, chunk)
	}

	// Pad the oldest window by continuing the day decrements backward.
	oldest := periods[len(periods)-1]
	for len(oldest) < interval {
		prev := time.Unix(oldest[0].Timestamp, 0).UTC().Add(-day)
		oldest = append([]types.DayBucket{zeroBucket(prev.Unix())}, oldest...)
	}
	periods[len(periods)-1] = oldest

	return periods
}

// PeriodLabel produces the human span label for a period:
// "January 3 - 12" inside one month, "January 28 - February 4" across months.
func PeriodLabel(period []types.DayBucket) string {
	if len(period) == 0 {
		return ""
	}
	first := time.Unix(period[0].Timestamp, 0).UTC()
	last := time.Unix(period[len(period)-1].Timestamp, 0).UTC()

	if first.Month() == last.Month() {
		return fmt.Sprintf("%s %d - %d", first.Month(), first.Day(), last.Day())
	}
	return fmt.Sprintf("%s %d - %s %d", first.Month(), first.Day(), last.Month(), last.Day())
}

// AmountToHuman converts a raw chain amount into a fixed-point decimal string
// using the chain's token decimals. The fractional part is trimmed of
// trailing zeros and capped at four digits.
func AmountToHuman(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(amount, divisor, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}

	frac := fmt.Sprintf("%0*s", decimals, rem.String())
	if len(frac) > 4 {
		frac = frac[:4]
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return quo.String()
	}
	return quo.String() + "." + frac
}

// RewardPager exposes navigation over partitioned reward periods.
// pageIndex 0 is the most recent period; navigation past either end is a
// no-op. At most one bucket is expanded at a time.
type RewardPager struct {
	periods   [][]types.DayBucket
	pageIndex int
	expanded  string
}

// NewRewardPager aggregates, gap-fills, and partitions raw events into a
// navigable pager.
func NewRewardPager(events []types.RewardEvent, decimals, interval int) *RewardPager {
	buckets := FillDayGaps(AggregateByDay(SortRewardEvents(events), decimals))
	return &RewardPager{
		periods: PartitionPeriods(buckets, interval),
	}
}

// PeriodCount returns the number of periods
func (p *RewardPager) PeriodCount() int {
	return len(p.periods)
}

// PageIndex returns the active period index
func (p *RewardPager) PageIndex() int {
	return p.pageIndex
}

// SetPageIndex jumps to a period; out-of-range indices are ignored
func (p *RewardPager) SetPageIndex(i int) {
	if i >= 0 && i < len(p.periods) {
		p.pageIndex = i
	}
}

// Current returns the active period, chronological within the period
func (p *RewardPager) Current() []types.DayBucket {
	if p.pageIndex < 0 || p.pageIndex >= len(p.periods) {
		return nil
	}
	return p.periods[p.pageIndex]
}

// Next moves toward the more recent period
func (p *RewardPager) Next() {
	if p.pageIndex > 0 {
		p.pageIndex--
	}
}

// Prev moves toward the older period
func (p *RewardPager) Prev() {
	if p.pageIndex < len(p.periods)-1 {
		p.pageIndex++
	}
}

// Label returns the span label of the active period
func (p *RewardPager) Label() string {
	return PeriodLabel(p.Current())
}

// ToggleExpand expands the bucket whose day-of-month label matches, or
// collapses it when it is already expanded.
func (p *RewardPager) ToggleExpand(dayLabel string) {
	if p.expanded == dayLabel {
		p.expanded = ""
		return
	}
	p.expanded = dayLabel
}

// Expanded returns the day-of-month label of the expanded bucket, or ""
func (p *RewardPager) Expanded() string {
	return p.expanded
}

// ExpandedBucket resolves the expanded identity against the active period
func (p *RewardPager) ExpandedBucket() *types.DayBucket {
	if p.expanded == "" {
		return nil
	}
	current := p.Current()
	for i := range current {
		if dayOfMonth(current[i].Timestamp) == p.expanded {
			return &current[i]
		}
	}
	return nil
}
