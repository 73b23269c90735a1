package dto

import (
	"encoding/csv"
	"io"

	"github.com/fadilmartias/cert-verifier/internal/model"
)

// ReportColumns are the report headers, in output order.
var ReportColumns = []string{
	"Filename",
	"Name",
	"Assignment Score (out of 25)",
	"Proctored Exam Score (out of 75)",
	"Marks (%)",
	"Status",
	"links for pdf",
}

type ReportRowDTO struct {
	Filename        string  `json:"filename"`
	Name            *string `json:"name"`
	AssignmentScore *string `json:"assignment_score"`
	ProctoredScore  *string `json:"proctored_exam_score"`
	Marks           *string `json:"marks"`
	Status          string  `json:"status"`
	PDFLink         *string `json:"pdf_link"`
	Notes           string  `json:"notes,omitempty"`
}

type ReportSummary struct {
	Total       int `json:"total"`
	Verified    int `json:"verified"`
	NotVerified int `json:"not_verified"`
}

type ReportDTO struct {
	Summary ReportSummary  `json:"summary"`
	Rows    []ReportRowDTO `json:"rows"`
}

func NewReportDTO(rows []model.ReportRow) ReportDTO {
	report := ReportDTO{Rows: make([]ReportRowDTO, 0, len(rows))}
	for _, r := range rows {
		report.Rows = append(report.Rows, ReportRowDTO{
			Filename:        r.Filename,
			Name:            r.Name,
			AssignmentScore: r.AssignmentScore,
			ProctoredScore:  r.ProctoredScore,
			Marks:           r.Marks,
			Status:          string(r.Status),
			PDFLink:         r.PDFLink,
			Notes:           r.Notes,
		})
		if r.Status == model.Verified {
			report.Summary.Verified++
		} else {
			report.Summary.NotVerified++
		}
	}
	report.Summary.Total = len(rows)
	return report
}

// Values renders the row as strings in ReportColumns order; absent values
// become "".
func (r ReportRowDTO) Values() []string {
	return []string{
		r.Filename,
		deref(r.Name),
		deref(r.AssignmentScore),
		deref(r.ProctoredScore),
		deref(r.Marks),
		r.Status,
		deref(r.PDFLink),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteCSV writes the header row followed by one record per report row.
func (r ReportDTO) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write(ReportColumns); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := w.Write(row.Values()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
