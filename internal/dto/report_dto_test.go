package dto

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestNewReportDTO(t *testing.T) {
	rows := []model.ReportRow{
		{Filename: "a.pdf", Name: str("JOHN SMITH"), Marks: str("76%"), Status: model.Verified, PDFLink: str("https://x/a.pdf")},
		{Filename: "b.pdf", Status: model.NotVerified, Notes: "document unreadable"},
	}

	report := NewReportDTO(rows)

	assert.Equal(t, ReportSummary{Total: 2, Verified: 1, NotVerified: 1}, report.Summary)
	assert.Equal(t, []string{"b.pdf", "", "", "", "", "Not Verified", ""}, report.Rows[1].Values())

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ReportColumns, records[0])
	assert.Equal(t, []string{"a.pdf", "JOHN SMITH", "", "", "76%", "Verified", "https://x/a.pdf"}, records[1])
}
