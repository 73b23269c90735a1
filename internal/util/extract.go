package util

import (
	"fmt"
	"image"
	"strings"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/gen2brain/go-fitz"
	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/sirupsen/logrus"
)

// NativeDPI renders a page at its own resolution (one pixel per PDF point).
const NativeDPI = 72.0

// PDFExtractor reads text, QR payloads and issuer hyperlinks out of a
// certificate PDF using MuPDF.
type PDFExtractor struct {
	LinkPrefix string
	RenderDPI  float64
	log        *logrus.Entry
}

func NewPDFExtractor(linkPrefix string, logger *logrus.Entry) *PDFExtractor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &PDFExtractor{
		LinkPrefix: linkPrefix,
		RenderDPI:  NativeDPI,
		log:        logger.WithField("component", "pdf_extractor"),
	}
}

// Extract opens the document once and collects text lines, every decoded QR
// payload and the first hyperlink pointing at the issuer backend.
func (e *PDFExtractor) Extract(data []byte) (*model.ExtractedDocument, error) {
	doc, err := openPDF(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	lines, err := pageLines(doc)
	if err != nil {
		return nil, err
	}

	out := &model.ExtractedDocument{
		Lines:      lines,
		QRPayloads: e.qrPayloads(doc),
	}
	if link, ok := e.firstLink(doc); ok {
		out.EmbeddedLink = &link
	}
	e.log.WithFields(logrus.Fields{
		"pages": doc.NumPage(),
		"lines": len(out.Lines),
		"qr":    len(out.QRPayloads),
	}).Debug("extracted certificate")
	return out, nil
}

// ExtractText returns only the text lines, used for the issuer's copy.
func (e *PDFExtractor) ExtractText(data []byte) ([]string, error) {
	doc, err := openPDF(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return pageLines(doc)
}

func openPDF(data []byte) (*fitz.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input: %w", model.ErrDocument)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %v: %w", err, model.ErrDocument)
	}
	return doc, nil
}

func pageLines(doc *fitz.Document) ([]string, error) {
	var full strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("page %d: failed to extract text: %v: %w", n+1, err, model.ErrDocument)
		}
		full.WriteString(text)
		if !strings.HasSuffix(text, "\n") {
			full.WriteString("\n")
		}
	}
	return SplitLines(full.String()), nil
}

// SplitLines splits MuPDF text output into printed lines. MuPDF terminates
// every text block with an extra empty line; those separators are dropped so
// line numbers follow the printed layout.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func (e *PDFExtractor) qrPayloads(doc *fitz.Document) []string {
	var payloads []string
	dpi := e.RenderDPI
	if dpi <= 0 {
		dpi = NativeDPI
	}
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			e.log.Warnf("page %d: failed to render: %v", n+1, err)
			continue
		}
		payloads = append(payloads, DecodeQRCodes(img)...)
	}
	return payloads
}

// DecodeQRCodes returns the payload of every QR symbol found in img, in
// decoder order. An image without QR codes yields nil.
func DecodeQRCodes(img image.Image) []string {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	results, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, hints)
	if err != nil {
		return nil
	}
	payloads := make([]string, 0, len(results))
	for _, r := range results {
		payloads = append(payloads, r.GetText())
	}
	return payloads
}

func (e *PDFExtractor) firstLink(doc *fitz.Document) (string, bool) {
	if e.LinkPrefix == "" {
		return "", false
	}
	for n := 0; n < doc.NumPage(); n++ {
		links, err := doc.Links(n)
		if err != nil {
			e.log.Warnf("page %d: failed to read links: %v", n+1, err)
			continue
		}
		for _, link := range links {
			if strings.HasPrefix(link.URI, e.LinkPrefix) {
				return link.URI, true
			}
		}
	}
	return "", false
}
