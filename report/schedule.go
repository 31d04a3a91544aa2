package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cuidarbem/cuidarbem-api/models"
)

const ScheduleSheet = "Schedule"

var ScheduleHeader = []string{
	"Appointment",
	"Date",
	"Time",
	"Service",
	"Location",
	"Hourly Rate",
	"Patient",
	"Patient Age",
	"Address",
	"Contact",
	"Notes",
	"Status",
}

var scheduleColumnWidths = []float64{12, 12, 8, 30, 20, 12, 25, 12, 35, 28, 40, 12}

// Schedule renders appointments, with ServiceOffer and Patient loaded, as an
// XLSX workbook.
func Schedule(appointments []models.Appointment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ScheduleSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range ScheduleHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ScheduleSheet, cell, header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(ScheduleSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(ScheduleSheet, colName, colName, scheduleColumnWidths[col]); err != nil {
			return nil, err
		}
	}

	for i, a := range appointments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ScheduleSheet, cell, &[]interface{}{
			a.ID,
			a.Date,
			a.Time,
			title(a),
			location(a),
			rate(a),
			a.PatientName,
			a.PatientAge,
			a.Address,
			contact(a),
			notes(a),
			string(a.Status),
		}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func title(a models.Appointment) string {
	if a.ServiceOffer == nil {
		return ""
	}
	return a.ServiceOffer.Title
}

func location(a models.Appointment) string {
	if a.ServiceOffer == nil {
		return ""
	}
	return a.ServiceOffer.Location
}

func rate(a models.Appointment) float64 {
	if a.ServiceOffer == nil {
		return 0
	}
	return a.ServiceOffer.HourlyRate
}

func contact(a models.Appointment) string {
	if a.Patient == nil {
		return ""
	}
	if a.Patient.Phone != "" {
		return a.Patient.Email + " / " + a.Patient.Phone
	}
	return a.Patient.Email
}

func notes(a models.Appointment) string {
	if a.Notes == nil {
		return ""
	}
	return *a.Notes
}
