package document

import (
	"bytes"
	"fmt"
	"time"

	"telemed-clinic-backend/internal/domain/entity"

	"github.com/jung-kurt/gofpdf"
)

const dateLayout = "02/01/2006 15:04"

// PDFRenderer builds clinical documents with the core PDF fonts, so no font files are needed.
type PDFRenderer struct {
	clinicName string
	now        func() time.Time
}

func NewPDFRenderer(clinicName string) *PDFRenderer {
	return &PDFRenderer{clinicName: clinicName, now: time.Now}
}

// PatientHistory renders every record of the patient, newest first as given.
func (r *PDFRenderer) PatientHistory(patient *entity.Patient, records []entity.ClinicalRecord, subtitle string) ([]byte, error) {
	doc := r.newDocument("Clinical history - " + patient.FullName)
	doc.header(subtitle)
	doc.patientBlock(patient)

	doc.sectionTitle(fmt.Sprintf("Clinical history (%d notes)", len(records)))
	if len(records) == 0 {
		doc.paragraph("No clinical records.")
	}
	for i := range records {
		doc.recordBlock(&records[i])
	}

	return doc.bytes()
}

// Consultation renders a consultation report with its patient and doctor details.
func (r *PDFRenderer) Consultation(c *entity.Consultation) ([]byte, error) {
	doc := r.newDocument("Consultation report")
	doc.header("Consultation report")
	if c.Patient != nil {
		doc.patientBlock(c.Patient)
	}

	doc.sectionTitle("Consultation")
	doc.field("Scheduled", c.ScheduledAt.UTC().Format(dateLayout)+" UTC")
	doc.field("Duration", fmt.Sprintf("%d min", c.DurationMinutes))
	doc.field("Type", string(c.ConsultationType))
	doc.field("Status", string(c.Status))
	doc.field("Specialty", c.Specialty)
	if c.Doctor != nil {
		doc.field("Doctor", c.Doctor.FullName)
		if c.Doctor.LicenseNumber != nil {
			doc.field("License", *c.Doctor.LicenseNumber)
		}
	}
	if c.StartedAt != nil {
		doc.field("Started", c.StartedAt.UTC().Format(dateLayout))
	}
	if c.EndedAt != nil {
		doc.field("Ended", c.EndedAt.UTC().Format(dateLayout))
	}

	if c.ReasonForVisit != "" {
		doc.sectionTitle("Reason for visit")
		doc.paragraph(c.ReasonForVisit)
	}
	if c.Notes != "" {
		doc.sectionTitle("Notes")
		doc.paragraph(c.Notes)
	}

	return doc.bytes()
}

type document struct {
	pdf        *gofpdf.Fpdf
	tr         func(string) string
	clinicName string
	generated  time.Time
}

func (r *PDFRenderer) newDocument(title string) *document {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")

	d := &document{
		pdf:        pdf,
		tr:         pdf.UnicodeTranslatorFromDescriptor(""),
		clinicName: r.clinicName,
		generated:  r.now().UTC(),
	}
	pdf.SetTitle(d.tr(title), false)
	pdf.SetCreator(d.tr(r.clinicName), false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s UTC - page %d/{nb}", d.generated.Format(dateLayout), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) header(subtitle string) {
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.CellFormat(0, 10, d.tr(d.clinicName), "", 1, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 12)
	d.pdf.CellFormat(0, 8, d.tr(subtitle), "B", 1, "L", false, 0, "")
	d.pdf.Ln(4)
}

func (d *document) patientBlock(p *entity.Patient) {
	d.sectionTitle("Patient")
	d.field("Name", p.FullName)
	d.field("Email", p.Email)
	if p.Phone != "" {
		d.field("Phone", p.Phone)
	}
}

func (d *document) recordBlock(rec *entity.ClinicalRecord) {
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.SetFillColor(235, 240, 248)
	d.pdf.CellFormat(0, 7, d.tr(rec.CreatedAt.UTC().Format(dateLayout)), "", 1, "L", true, 0, "")
	d.optional("Chief complaint", rec.ChiefComplaint)
	d.optional("Background", rec.Background)
	d.optional("Assessment", rec.Assessment)
	d.optional("Plan", rec.Plan)
	d.optional("Allergies", rec.Allergies)
	d.optional("Medications", rec.Medications)
	d.pdf.Ln(3)
}

func (d *document) sectionTitle(title string) {
	d.pdf.Ln(2)
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
}

func (d *document) field(label, value string) {
	if value == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(35, 6, d.tr(label+":"), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 6, d.tr(value), "", "L", false)
}

func (d *document) optional(label, value string) {
	if value == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(0, 6, d.tr(label), "", 1, "L", false, 0, "")
	d.paragraph(value)
}

func (d *document) paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 5, d.tr(text), "", "L", false)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("document: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
