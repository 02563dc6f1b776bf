package adherence

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/medreminder/pkg/model"
)

var refNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// logsNewestFirst builds logs one hour apart, the first element being the most recent
func logsNewestFirst(statuses ...model.LogStatus) []model.MedicationLog {
	logs := make([]model.MedicationLog, len(statuses))
	for i, status := range statuses {
		logs[i] = model.MedicationLog{
			ID:            string(rune('a' + i)),
			MedicationID:  "med-1",
			ScheduledTime: refNow.Add(-time.Duration(i+1) * time.Hour),
			Status:        status,
		}
	}
	return logs
}

func TestCompute_EmptyWindow(t *testing.T) {
	stats := Compute(nil, refNow, DefaultWindow)

	assert.Equal(t, 0, stats.TotalDoses)
	assert.Equal(t, 0, stats.AdherenceRate)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 0, stats.LongestStreak)
}

func TestCompute_Tally(t *testing.T) {
	logs := logsNewestFirst(
		model.LogStatusTaken,
		model.LogStatusTaken,
		model.LogStatusMissed,
		model.LogStatusSkipped,
		model.LogStatusPending,
		model.LogStatusTaken,
	)

	stats := Compute(logs, refNow, DefaultWindow)

	assert.Equal(t, 6, stats.TotalDoses)
	assert.Equal(t, 3, stats.TakenDoses)
	assert.Equal(t, 1, stats.MissedDoses)
	assert.Equal(t, 1, stats.SkippedDoses)
	assert.Equal(t, 50, stats.AdherenceRate)
}

func TestCompute_ExcludesLogsOutsideWindow(t *testing.T) {
	logs := []model.MedicationLog{
		{ID: "old", ScheduledTime: refNow.Add(-31 * 24 * time.Hour), Status: model.LogStatusMissed},
		{ID: "recent", ScheduledTime: refNow.Add(-time.Hour), Status: model.LogStatusTaken},
	}

	stats := Compute(logs, refNow, DefaultWindow)

	assert.Equal(t, 1, stats.TotalDoses)
	assert.Equal(t, 100, stats.AdherenceRate)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestCompute_RateRounds(t *testing.T) {
	logs := logsNewestFirst(model.LogStatusTaken, model.LogStatusMissed, model.LogStatusMissed)

	stats := Compute(logs, refNow, DefaultWindow)

	assert.Equal(t, 33, stats.AdherenceRate)

	logs = logsNewestFirst(model.LogStatusTaken, model.LogStatusTaken, model.LogStatusMissed)
	assert.Equal(t, 67, Compute(logs, refNow, DefaultWindow).AdherenceRate)
}

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name     string
		statuses []model.LogStatus
		want     int
	}{
		{
			name:     "stops at first missed",
			statuses: []model.LogStatus{model.LogStatusTaken, model.LogStatusTaken, model.LogStatusMissed, model.LogStatusTaken},
			want:     2,
		},
		{
			name:     "skipped neither breaks nor counts",
			statuses: []model.LogStatus{model.LogStatusTaken, model.LogStatusSkipped, model.LogStatusTaken},
			want:     2,
		},
		{
			name:     "pending is passed over",
			statuses: []model.LogStatus{model.LogStatusPending, model.LogStatusTaken, model.LogStatusTaken},
			want:     2,
		},
		{
			name:     "missed first gives zero",
			statuses: []model.LogStatus{model.LogStatusMissed, model.LogStatusTaken},
			want:     0,
		},
		{
			name:     "all taken",
			statuses: []model.LogStatus{model.LogStatusTaken, model.LogStatusTaken, model.LogStatusTaken},
			want:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(logsNewestFirst(tt.statuses...)))
		})
	}
}

func TestCurrentStreak_SortsByScheduledTime(t *testing.T) {
	logs := logsNewestFirst(model.LogStatusTaken, model.LogStatusTaken, model.LogStatusMissed, model.LogStatusTaken)
	// reverse input order, result must not change
	reversed := make([]model.MedicationLog, len(logs))
	for i := range logs {
		reversed[len(logs)-1-i] = logs[i]
	}

	assert.Equal(t, 2, CurrentStreak(reversed))
	assert.Equal(t, model.LogStatusTaken, reversed[0].Status, "input must not be reordered")
}

func TestCompute_LongestStreakMirrorsCurrent(t *testing.T) {
	logs := logsNewestFirst(model.LogStatusTaken, model.LogStatusMissed, model.LogStatusTaken, model.LogStatusTaken, model.LogStatusTaken)

	stats := Compute(logs, refNow, DefaultWindow)

	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, stats.CurrentStreak, stats.LongestStreak)
}

func TestUpcomingDoses(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	var logs []model.MedicationLogWithDetails
	for i := 7; i >= 0; i-- {
		logs = append(logs, model.MedicationLogWithDetails{
			MedicationLog: model.MedicationLog{
				ID:            string(rune('a' + i)),
				ScheduledTime: now.Add(time.Duration(i) * time.Hour),
				Status:        model.LogStatusPending,
			},
		})
	}
	logs = append(logs,
		model.MedicationLogWithDetails{MedicationLog: model.MedicationLog{ID: "taken", ScheduledTime: now, Status: model.LogStatusTaken}},
		model.MedicationLogWithDetails{MedicationLog: model.MedicationLog{ID: "tomorrow", ScheduledTime: now.Add(16 * time.Hour), Status: model.LogStatusPending}},
	)

	upcoming := UpcomingDoses(logs, now)

	require.Len(t, upcoming, MaxUpcoming)
	for i := 1; i < len(upcoming); i++ {
		assert.True(t, upcoming[i-1].ScheduledTime.Before(upcoming[i].ScheduledTime))
	}
	assert.Equal(t, "a", upcoming[0].ID)
	for _, log := range upcoming {
		assert.Equal(t, model.LogStatusPending, log.Status)
	}
}

func TestGroupByMedication_KeepsMedicationsWithoutLogs(t *testing.T) {
	meds := []model.Medication{{ID: "m1", Name: "Aspirin"}, {ID: "m2", Name: "Metformin"}}
	logs := []model.MedicationLogWithDetails{
		{MedicationLog: model.MedicationLog{ID: "l1", MedicationID: "m1"}},
		{MedicationLog: model.MedicationLog{ID: "l2", MedicationID: "m1"}},
		{MedicationLog: model.MedicationLog{ID: "l3", MedicationID: "gone"}},
	}

	grouped := GroupByMedication(meds, logs)

	require.Len(t, grouped, 2)
	assert.Len(t, grouped[0].Logs, 2)
	assert.NotNil(t, grouped[1].Logs)
	assert.Empty(t, grouped[1].Logs)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 15, 0, 30, 0, 0, loc)

	start, end := DayBounds(ts)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, loc), end)
}

func genStatus() gopter.Gen {
	return gen.OneConstOf(model.LogStatusPending, model.LogStatusTaken, model.LogStatusMissed, model.LogStatusSkipped)
}

func toLogs(raw []model.LogStatus) []model.MedicationLog {
	return logsNewestFirst(raw...)
}

func TestProperty_AdherenceInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("counts add up and rate stays within 0..100", prop.ForAll(
		func(raw []model.LogStatus) bool {
			stats := Compute(toLogs(raw), refNow, DefaultWindow)

			pending := 0
			for _, s := range raw {
				if s == model.LogStatusPending {
					pending++
				}
			}

			return stats.TotalDoses == len(raw) &&
				stats.TakenDoses+stats.MissedDoses+stats.SkippedDoses+pending == stats.TotalDoses &&
				stats.AdherenceRate >= 0 && stats.AdherenceRate <= 100
		},
		gen.SliceOf(genStatus()),
	))

	properties.Property("streak never exceeds taken count and ignores everything after the first miss", prop.ForAll(
		func(raw []model.LogStatus) bool {
			logs := toLogs(raw)
			streak := CurrentStreak(logs)

			expected := 0
			for _, log := range logs {
				if log.Status == model.LogStatusMissed {
					break
				}
				if log.Status == model.LogStatusTaken {
					expected++
				}
			}

			return streak == expected && streak <= Compute(logs, refNow, DefaultWindow).TakenDoses
		},
		gen.SliceOf(genStatus()),
	))

	properties.Property("compute is deterministic", prop.ForAll(
		func(raw []model.LogStatus) bool {
			logs := toLogs(raw)
			return Compute(logs, refNow, DefaultWindow) == Compute(logs, refNow, DefaultWindow)
		},
		gen.SliceOf(genStatus()),
	))

	properties.TestingRun(t)
}
