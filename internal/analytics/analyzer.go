package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/2beens/fittrack/internal/weights"
	"github.com/2beens/fittrack/pkg"
)

const dayLayout = time.DateOnly

// civilDay maps t to midnight UTC of its calendar date in loc,
// so days can be compared and stepped without DST surprises.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WindowStart returns the first instant of the window of days ending today, in loc.
func WindowStart(now time.Time, loc *time.Location, days int) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d-(days-1), 0, 0, 0, 0, loc)
}

// WeeksStart returns the first instant of the Monday opening a range of weeks ending this week, in loc.
func WeeksStart(now time.Time, loc *time.Location, weeks int) time.Time {
	y, m, d := now.In(loc).Date()
	offset := (int(now.In(loc).Weekday()) + 6) % 7
	return time.Date(y, m, d-offset-(weeks-1)*7, 0, 0, 0, 0, loc)
}

// Summarize builds the summary over all of the user's workouts.
func Summarize(now time.Time, loc *time.Location, days int, all []WorkoutStat) Summary {
	summary := Summary{
		Days:          days,
		TotalWorkouts: len(all),
	}

	windowStart := WindowStart(now, loc, days)
	activeAll := make(map[time.Time]bool)
	activeInWindow := make(map[time.Time]bool)
	var volume float64
	var duration int
	for _, w := range all {
		day := civilDay(w.PerformedAt, loc)
		activeAll[day] = true
		if w.PerformedAt.Before(windowStart) {
			continue
		}
		activeInWindow[day] = true
		summary.WorkoutsInWindow++
		volume += w.VolumeKg
		duration += w.DurationMinutes
	}

	summary.ActiveDays = len(activeInWindow)
	summary.Consistency = pkg.Truncate2(float64(summary.ActiveDays) / float64(days) * 100)
	summary.TotalVolumeKg = pkg.Truncate2(volume)
	if summary.WorkoutsInWindow > 0 {
		summary.AvgDurationMinutes = pkg.Truncate2(float64(duration) / float64(summary.WorkoutsInWindow))
	}
	summary.CurrentStreak = currentStreak(civilDay(now, loc), activeAll)
	summary.LongestStreak = longestStreak(activeAll)

	return summary
}

// currentStreak counts active days back from today, or from yesterday when today is still empty.
func currentStreak(today time.Time, active map[time.Time]bool) int {
	day := today
	if !active[day] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for active[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func longestStreak(active map[time.Time]bool) int {
	days := make([]time.Time, 0, len(active))
	for d := range active {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Distribution spreads set counts over every known group, keeping the groups order.
func Distribution(groups []string, sets map[string]int) []GroupShare {
	total := 0
	for _, g := range groups {
		total += sets[g]
	}

	shares := make([]GroupShare, 0, len(groups))
	for _, g := range groups {
		share := GroupShare{
			Name: g,
			Sets: sets[g],
		}
		if total > 0 {
			share.Percentage = pkg.Truncate2(float64(share.Sets) / float64(total) * 100)
		}
		shares = append(shares, share)
	}
	return shares
}

// Trend expects entries oldest first and adds a trailing moving average over window entries.
func Trend(entries []weights.Entry, window int) WeightTrend {
	trend := WeightTrend{
		Window:  window,
		Entries: make([]TrendPoint, 0, len(entries)),
	}
	if len(entries) == 0 {
		return trend
	}

	trend.Min, trend.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for i, e := range entries {
		sum += e.WeightKg
		if i >= window {
			sum -= entries[i-window].WeightKg
		}
		n := min(i+1, window)
		trend.Entries = append(trend.Entries, TrendPoint{
			MeasuredAt:    e.MeasuredAt,
			WeightKg:      e.WeightKg,
			MovingAverage: pkg.Truncate2(sum / float64(n)),
		})
		trend.Min = math.Min(trend.Min, e.WeightKg)
		trend.Max = math.Max(trend.Max, e.WeightKg)
	}
	trend.Change = pkg.Truncate2(entries[len(entries)-1].WeightKg - entries[0].WeightKg)

	return trend
}

// WeeklyVolume buckets workouts into ISO weeks, including empty ones, oldest week first.
func WeeklyVolume(now time.Time, loc *time.Location, weeks int, stats []WorkoutStat) []WeekVolume {
	first := civilDay(WeeksStart(now, loc, weeks), loc)

	buckets := make([]WeekVolume, weeks)
	for i := range buckets {
		monday := first.AddDate(0, 0, i*7)
		year, week := monday.ISOWeek()
		buckets[i] = WeekVolume{
			WeekStart: monday.Format(dayLayout),
			Year:      year,
			Week:      week,
		}
	}

	for _, w := range stats {
		i := int(civilDay(w.PerformedAt, loc).Sub(first).Hours()/24) / 7
		if i < 0 || i >= weeks {
			continue
		}
		buckets[i].Workouts++
		buckets[i].VolumeKg += w.VolumeKg
	}
	for i := range buckets {
		buckets[i].VolumeKg = pkg.Truncate2(buckets[i].VolumeKg)
	}

	return buckets
}

// EstimatedOneRepMax uses the Epley formula.
func EstimatedOneRepMax(weightKg float64, reps int) float64 {
	if reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// ExerciseProgress groups the sets of one exercise per calendar day, oldest first.
func ExerciseProgress(loc *time.Location, sets []SetStat) []DayProgress {
	byDay := make(map[time.Time]*DayProgress)
	var days []time.Time
	for _, s := range sets {
		day := civilDay(s.PerformedAt, loc)
		p, ok := byDay[day]
		if !ok {
			p = &DayProgress{Date: day.Format(dayLayout)}
			byDay[day] = p
			days = append(days, day)
		}
		p.Sets += s.Sets
		p.VolumeKg += float64(s.Sets*s.Reps) * s.WeightKg
		p.MaxWeightKg = math.Max(p.MaxWeightKg, s.WeightKg)
		p.EstimatedOneRepMax = math.Max(p.EstimatedOneRepMax, EstimatedOneRepMax(s.WeightKg, s.Reps))
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	progress := make([]DayProgress, 0, len(days))
	for _, d := range days {
		p := byDay[d]
		p.VolumeKg = pkg.Truncate2(p.VolumeKg)
		p.EstimatedOneRepMax = pkg.Truncate2(p.EstimatedOneRepMax)
		progress = append(progress, *p)
	}
	return progress
}
