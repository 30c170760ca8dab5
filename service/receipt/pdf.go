package receipt

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/KAsare1/Gymhub-server/cmd/models"
	"github.com/go-pdf/fpdf"
)

const (
	defaultGymName    = "Fitness Center"
	defaultGymAddress = "Fitness Center, Main Road\nCity, State, 123456"
	dateLayout        = "02 Jan 2006"
)

// Document is everything the renderer needs. Logo is optional raw image bytes.
type Document struct {
	Receipt    models.Receipt
	GymName    string
	GymAddress string
	Logo       []byte
}

// PDFRenderer lays out an A4 receipt. The output depends only on the Document: PDF
// timestamps are pinned to the receipt's issuance time.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (PDFRenderer) Render(doc Document) ([]byte, error) {
	rcpt := doc.Receipt
	gymName := strings.TrimSpace(doc.GymName)
	if gymName == "" {
		gymName = defaultGymName
	}
	address := strings.TrimSpace(doc.GymAddress)
	if address == "" {
		address = defaultGymAddress
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(rcpt.GeneratedAt)
	pdf.SetModificationDate(rcpt.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Receipt "+rcpt.ID, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Header: optional logo left, gym identity and title right.
	left := 20.0
	if logoType := imageType(doc.Logo); logoType != "" {
		opts := fpdf.ImageOptions{ImageType: logoType}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(doc.Logo))
		if pdf.Ok() {
			pdf.ImageOptions("logo", 20, 18, 25, 0, false, opts, 0, "")
			left = 50
		} else {
			pdf.ClearError()
		}
	}

	pdf.SetXY(left, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 8, tr(gymName), "", 1, "L", false, 0, "")
	pdf.SetX(left)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 4.5, tr(address), "", "L", false)

	pdf.SetXY(130, 20)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(60, 10, "RECEIPT", "", 2, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(60, 5, "Receipt #: "+rcpt.ID, "", 2, "R", false, 0, "")
	pdf.CellFormat(60, 5, "Date: "+rcpt.GeneratedAt.Format(dateLayout), "", 1, "R", false, 0, "")

	pdf.SetY(55)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(6)

	// Bill to.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 6, "BILL TO", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(rcpt.ClientName), "", 1, "L", false, 0, "")
	if rcpt.ClientPhone != "" {
		pdf.CellFormat(0, 5, tr(rcpt.ClientPhone), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// Line items.
	widths := []float64{70, 35, 35, 30}
	pdf.SetFillColor(245, 245, 245)
	pdf.SetFont("Helvetica", "B", 9)
	for i, heading := range []string{"DESCRIPTION", "START DATE", "END DATE", "AMOUNT"} {
		align := "L"
		if i == len(widths)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, heading, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	amount := "Rs. " + rcpt.Amount.StringFixed(2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(widths[0], 9, tr("Membership - "+planLabel(rcpt.MembershipType)), "", 0, "L", false, 0, "")
	pdf.CellFormat(widths[1], 9, rcpt.StartDate.Format(dateLayout), "", 0, "L", false, 0, "")
	pdf.CellFormat(widths[2], 9, rcpt.EndDate.Format(dateLayout), "", 0, "L", false, 0, "")
	pdf.CellFormat(widths[3], 9, amount, "", 1, "R", false, 0, "")
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "TOTAL PAID", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, amount, "", 1, "R", false, 0, "")

	// Footer.
	pdf.SetY(-50)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 6, "Thank you for choosing us!", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "For any queries, please contact the front desk.", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "This is a computer-generated receipt and does not require a signature.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", rcpt.ID, err)
	}
	return buf.Bytes(), nil
}

// imageType maps a decodable logo to the fpdf image type, or "" if it cannot be embedded.
func imageType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	switch format {
	case "png":
		return "PNG"
	case "jpeg":
		return "JPG"
	case "gif":
		return "GIF"
	default:
		return ""
	}
}

func planLabel(membershipType string) string {
	if membershipType == "" {
		return ""
	}
	return strings.ToUpper(membershipType[:1]) + membershipType[1:]
}
