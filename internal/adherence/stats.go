// Package adherence derives adherence statistics from a medication log history.
// Everything here is pure: the same logs and reference time always give the same result.
package adherence

import (
	"math"
	"sort"
	"time"

	"github.com/vcscsvcscs/medreminder/pkg/model"
)

// DefaultWindow is the lookback used by the dashboard
const DefaultWindow = 30 * 24 * time.Hour

// MaxUpcoming is the number of upcoming doses shown
const MaxUpcoming = 5

// Compute tallies logs scheduled within window before now.
//
// The streak walks logs newest first: taken increments, missed stops the walk,
// skipped and pending are passed over. LongestStreak mirrors CurrentStreak since
// no historical maximum is tracked.
func Compute(logs []model.MedicationLog, now time.Time, window time.Duration) model.AdherenceStats {
	since := now.Add(-window)

	inWindow := make([]model.MedicationLog, 0, len(logs))
	for _, log := range logs {
		if log.ScheduledTime.Before(since) {
			continue
		}
		inWindow = append(inWindow, log)
	}

	var stats model.AdherenceStats
	stats.TotalDoses = len(inWindow)
	for _, log := range inWindow {
		switch log.Status {
		case model.LogStatusTaken:
			stats.TakenDoses++
		case model.LogStatusMissed:
			stats.MissedDoses++
		case model.LogStatusSkipped:
			stats.SkippedDoses++
		}
	}

	stats.AdherenceRate = Rate(stats.TakenDoses, stats.TotalDoses)
	stats.CurrentStreak = CurrentStreak(inWindow)
	stats.LongestStreak = stats.CurrentStreak

	return stats
}

// Rate returns round(100 * taken / total), or 0 when total is 0
func Rate(taken, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(taken) / float64(total)))
}

// CurrentStreak counts consecutive taken doses from the most recent one
func CurrentStreak(logs []model.MedicationLog) int {
	sorted := make([]model.MedicationLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledTime.After(sorted[j].ScheduledTime)
	})

	streak := 0
	for _, log := range sorted {
		if log.Status == model.LogStatusMissed {
			break
		}
		if log.Status == model.LogStatusTaken {
			streak++
		}
	}
	return streak
}

// UpcomingDoses returns the pending doses of now's calendar day in ascending
// scheduled order, truncated to MaxUpcoming.
func UpcomingDoses(todayLogs []model.MedicationLogWithDetails, now time.Time) []model.MedicationLogWithDetails {
	dayStart, dayEnd := DayBounds(now)

	upcoming := make([]model.MedicationLogWithDetails, 0, MaxUpcoming)
	for _, log := range todayLogs {
		if log.Status != model.LogStatusPending {
			continue
		}
		if log.ScheduledTime.Before(dayStart) || !log.ScheduledTime.Before(dayEnd) {
			continue
		}
		upcoming = append(upcoming, log)
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].ScheduledTime.Before(upcoming[j].ScheduledTime)
	})

	if len(upcoming) > MaxUpcoming {
		upcoming = upcoming[:MaxUpcoming]
	}
	return upcoming
}

// GroupByMedication pairs each medication with its logs for the day.
// Medications without logs are kept with an empty list.
func GroupByMedication(meds []model.Medication, todayLogs []model.MedicationLogWithDetails) []model.MedicationWithLogs {
	byMed := make(map[string][]model.MedicationLog, len(meds))
	for _, log := range todayLogs {
		byMed[log.MedicationID] = append(byMed[log.MedicationID], log.MedicationLog)
	}

	grouped := make([]model.MedicationWithLogs, 0, len(meds))
	for _, med := range meds {
		logs := byMed[med.ID]
		if logs == nil {
			logs = []model.MedicationLog{}
		}
		grouped = append(grouped, model.MedicationWithLogs{Medication: med, Logs: logs})
	}
	return grouped
}

// DayBounds returns the start of t's calendar day and the start of the next one,
// in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
