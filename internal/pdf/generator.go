package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/medreminder/internal/adherence"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

const maxLogRows = 200

// PDFGenerator generates medication adherence reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	UserID      string
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Location    *time.Location
	Stats       model.AdherenceStats
	Medications []model.Medication
	Logs        []model.MedicationLogWithDetails
}

// MedicationBreakdown is the per-medication tally shown in the report
type MedicationBreakdown struct {
	MedicationID string
	Name         string
	Taken        int
	Missed       int
	Skipped      int
	Pending      int
	Rate         int
}

// Generate creates a PDF report from the provided data
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("report data is required")
	}

	g.logger.Info("generating PDF report",
		zap.String("user_id", data.UserID),
		zap.Time("from", data.From),
		zap.Time("to", data.To),
		zap.Int("logs", len(data.Logs)),
	)

	loc := data.Location
	if loc == nil {
		loc = time.UTC
	}
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	period := fmt.Sprintf("%s to %s", data.From.In(loc).Format("2006-01-02"), data.To.In(loc).Format("2006-01-02"))
	g.addTitle(pdf, "Medication Adherence Report", period, generated.In(loc))
	g.addSummary(pdf, data.Stats)
	g.addMedicationList(pdf, tr, data.Medications, loc)
	g.addBreakdown(pdf, tr, Breakdown(data.Medications, data.Logs))
	g.addDoseLog(pdf, tr, data.Logs, loc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("PDF report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// Breakdown tallies log statuses per medication. Medications without logs are included.
func Breakdown(meds []model.Medication, logs []model.MedicationLogWithDetails) []MedicationBreakdown {
	byID := make(map[string]*MedicationBreakdown, len(meds))
	order := make([]string, 0, len(meds))

	for _, med := range meds {
		if _, ok := byID[med.ID]; ok {
			continue
		}
		byID[med.ID] = &MedicationBreakdown{MedicationID: med.ID, Name: med.Name}
		order = append(order, med.ID)
	}

	for _, l := range logs {
		b, ok := byID[l.MedicationID]
		if !ok {
			name := l.MedicationName()
			if name == "" {
				name = "Unknown medication"
			}
			b = &MedicationBreakdown{MedicationID: l.MedicationID, Name: name}
			byID[l.MedicationID] = b
			order = append(order, l.MedicationID)
		}
		switch l.Status {
		case model.LogStatusTaken:
			b.Taken++
		case model.LogStatusMissed:
			b.Missed++
		case model.LogStatusSkipped:
			b.Skipped++
		default:
			b.Pending++
		}
	}

	out := make([]MedicationBreakdown, 0, len(order))
	for _, id := range order {
		b := byID[id]
		b.Rate = adherence.Rate(b.Taken, b.Taken+b.Missed+b.Skipped+b.Pending)
		out = append(out, *b)
	}
	return out
}

// addTitle adds the report title and header information
func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, title, period string, generated time.Time) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s", period), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func (g *PDFGenerator) addSummary(pdf *gofpdf.Fpdf, stats model.AdherenceStats) {
	g.addSectionHeader(pdf, "Adherence Summary")

	if stats.TotalDoses == 0 {
		pdf.CellFormat(0, 8, "No doses scheduled during this period.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	lines := []string{
		fmt.Sprintf("Adherence rate: %d%%", stats.AdherenceRate),
		fmt.Sprintf("Scheduled doses: %d", stats.TotalDoses),
		fmt.Sprintf("Taken: %d   Missed: %d   Skipped: %d", stats.TakenDoses, stats.MissedDoses, stats.SkippedDoses),
		fmt.Sprintf("Current streak: %d doses", stats.CurrentStreak),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// addMedicationList adds medication list section
func (g *PDFGenerator) addMedicationList(pdf *gofpdf.Fpdf, tr func(string) string, medications []model.Medication, loc *time.Location) {
	g.addSectionHeader(pdf, "Medication List")

	if len(medications) == 0 {
		pdf.CellFormat(0, 8, "No medications recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	for _, med := range medications {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(med.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("  Dosage: %s", med.Dosage)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("  Frequency: %s", med.Frequency)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("  Start Date: %s", med.StartDate.In(loc).Format("2006-01-02")), "", 1, "L", false, 0, "")
		if med.EndDate != nil {
			pdf.CellFormat(0, 5, fmt.Sprintf("  End Date: %s", med.EndDate.In(loc).Format("2006-01-02")), "", 1, "L", false, 0, "")
		}
		if len(med.ReminderTimes) > 0 {
			times := append([]string(nil), med.ReminderTimes...)
			sort.Strings(times)
			pdf.CellFormat(0, 5, fmt.Sprintf("  Reminders: %v", times), "", 1, "L", false, 0, "")
		}
		if med.RemainingQuantity != nil {
			pdf.CellFormat(0, 5, fmt.Sprintf("  Remaining: %d", *med.RemainingQuantity), "", 1, "L", false, 0, "")
		}
		if med.Notes != nil && *med.Notes != "" {
			pdf.CellFormat(0, 5, tr(fmt.Sprintf("  Notes: %s", *med.Notes)), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addBreakdown(pdf *gofpdf.Fpdf, tr func(string) string, rows []MedicationBreakdown) {
	g.addSectionHeader(pdf, "Adherence by Medication")

	if len(rows) == 0 {
		pdf.CellFormat(0, 8, "No adherence data recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	widths := []float64{60, 22, 22, 22, 22, 22}
	headers := []string{"Medication", "Taken", "Missed", "Skipped", "Pending", "Rate"}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, tr(r.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d", r.Taken), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%d", r.Missed), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%d", r.Skipped), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%d", r.Pending), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%d%%", r.Rate), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(5)
}

func (g *PDFGenerator) addDoseLog(pdf *gofpdf.Fpdf, tr func(string) string, logs []model.MedicationLogWithDetails, loc *time.Location) {
	g.addSectionHeader(pdf, "Dose Log")

	if len(logs) == 0 {
		pdf.CellFormat(0, 8, "No doses recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	sorted := append([]model.MedicationLogWithDetails(nil), logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ScheduledTime.After(sorted[j].ScheduledTime)
	})

	rows := sorted
	if len(rows) > maxLogRows {
		rows = rows[:maxLogRows]
	}

	for _, l := range rows {
		name := l.MedicationName()
		if name == "" {
			name = "Unknown medication"
		}
		line := fmt.Sprintf("%s  %-8s  %s", l.ScheduledTime.In(loc).Format("2006-01-02 15:04"), l.Status, name)
		if l.TakenTime != nil {
			line += fmt.Sprintf(" (taken %s)", l.TakenTime.In(loc).Format("15:04"))
		}
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}

	if len(sorted) > maxLogRows {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d older entries omitted.", len(sorted)-maxLogRows), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}
