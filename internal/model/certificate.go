package model

import (
	"errors"
)

// Error kinds raised by the verification pipeline. Components wrap them with
// context; callers classify with errors.Is.
var (
	ErrDocument = errors.New("document unreadable")
	ErrNetwork  = errors.New("verification page unreachable")
	ErrNotFound = errors.New("official certificate link not found")
	ErrFetch    = errors.New("official certificate download failed")
)

type Verdict string

const (
	Verified    Verdict = "Verified"
	NotVerified Verdict = "Not Verified"
)

type PointerKind string

const (
	PointerNone PointerKind = "none"
	PointerQR   PointerKind = "qr"
	PointerLink PointerKind = "link"
)

// Pointer is an authenticity pointer found inside a certificate: a QR payload
// or an embedded hyperlink leading to the issuer's own record.
type Pointer struct {
	Kind  PointerKind `json:"kind"`
	Value string      `json:"value,omitempty"`
}

func QRPointer(payload string) Pointer { return Pointer{Kind: PointerQR, Value: payload} }
func LinkPointer(url string) Pointer   { return Pointer{Kind: PointerLink, Value: url} }
func NoPointer() Pointer               { return Pointer{Kind: PointerNone} }

// ExtractedDocument is everything read out of one PDF.
type ExtractedDocument struct {
	Lines        []string
	QRPayloads   []string
	EmbeddedLink *string
}

type ParsedFields struct {
	Name            *string `json:"name"`
	OverallMarks    *string `json:"overall_marks"`
	AssignmentScore *string `json:"assignment_score"`
	ProctoredScore  *string `json:"proctored_score"`
}

type VerificationResult struct {
	Pointer         Pointer `json:"pointer"`
	ResolvedPDFLink *string `json:"resolved_pdf_link"`
	FetchSucceeded  bool    `json:"fetch_succeeded"`
	Verdict         Verdict `json:"verdict"`
	Err             error   `json:"-"`
}

// CertificateFile is one submitted certificate.
type CertificateFile struct {
	Filename string
	Data     []byte
}

type CertificateOutcome struct {
	Filename     string
	Fields       ParsedFields
	Results      []VerificationResult
	OfficialLink *string
	Err          error
}

// Status reduces the per-pointer results: verified if any result is.
func (o *CertificateOutcome) Status() Verdict {
	for _, r := range o.Results {
		if r.Verdict == Verified {
			return Verified
		}
	}
	return NotVerified
}

// ReportRow is one line of the aggregate report.
type ReportRow struct {
	Filename        string  `json:"filename"`
	Name            *string `json:"name"`
	AssignmentScore *string `json:"assignment_score"`
	ProctoredScore  *string `json:"proctored_score"`
	Marks           *string `json:"marks"`
	Status          Verdict `json:"status"`
	PDFLink         *string `json:"pdf_link"`
	Notes           string  `json:"notes,omitempty"`
}

func (o *CertificateOutcome) Row() ReportRow {
	row := ReportRow{
		Filename:        o.Filename,
		Name:            o.Fields.Name,
		AssignmentScore: o.Fields.AssignmentScore,
		ProctoredScore:  o.Fields.ProctoredScore,
		Marks:           o.Fields.OverallMarks,
		Status:          o.Status(),
		PDFLink:         o.OfficialLink,
	}
	if o.Err != nil {
		row.Notes = o.Err.Error()
	}
	return row
}
