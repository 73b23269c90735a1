// Package testutil builds small certificate PDFs for tests.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Page describes one page of a generated PDF. Lines are drawn top-down, the
// QR image (if any) is drawn inline at the bottom-left at QRSize points and
// Link becomes a URI annotation.
type Page struct {
	Lines  []string
	QR     *image.Gray
	QRSize int
	Link   string
}

// QRImage renders payload as a 240x240 QR code including its quiet zone.
func QRImage(payload string) (*image.Gray, error) {
	matrix, err := qrcode.NewQRCodeWriter().Encode(payload, gozxing.BarcodeFormat_QR_CODE, 240, 240, nil)
	if err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			c := color.Gray{Y: 255}
			if matrix.Get(x, y) {
				c = color.Gray{Y: 0}
			}
			img.SetGray(x, y, c)
		}
	}
	return img, nil
}

// BuildPDF writes a PDF with one page per element of pages.
func BuildPDF(pages ...Page) []byte {
	// 1: catalog, 2: page tree, 3: font, then page/content/annot objects.
	objects := []string{"", "", "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"}
	add := func(obj string) int {
		objects = append(objects, obj)
		return len(objects)
	}

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		content := pageContent(p)
		contentRef := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))

		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R", contentRef)
		if p.Link != "" {
			annot := add(fmt.Sprintf("<< /Type /Annot /Subtype /Link /Rect [320 40 560 60] /Border [0 0 0] /A << /Type /Action /S /URI /URI (%s) >> >>", p.Link))
			page += fmt.Sprintf(" /Annots [%d 0 R]", annot)
		}
		kids = append(kids, fmt.Sprintf("%d 0 R", add(page+" >>")))
	}
	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func pageContent(p Page) []byte {
	var content bytes.Buffer
	for i, line := range p.Lines {
		fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", 740-i*24, line)
	}
	if p.QR != nil {
		size := p.QRSize
		if size <= 0 {
			size = 180
		}
		b := p.QR.Bounds()
		fmt.Fprintf(&content, "q %d 0 0 %d 72 72 cm\nBI /W %d /H %d /CS /G /BPC 8 ID ", size, size, b.Dx(), b.Dy())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := p.QR.PixOffset(b.Min.X, y)
			content.Write(p.QR.Pix[off : off+b.Dx()])
		}
		content.WriteString("\nEI Q\n")
	}
	return content.Bytes()
}
