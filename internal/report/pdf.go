package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Gentaaaa/MedPal/internal/models"
)

// AppointmentSummary renders a one-page PDF summary of an appointment:
// doctor, patient, service, slot and status.
func AppointmentSummary(appt *models.Appointment, doctor, patient *models.User, service *models.Service) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Appointment Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 12)
	addDetail(pdf, "Doctor", "Dr. "+doctor.Name)
	addDetail(pdf, "Patient", patient.Name)
	addDetail(pdf, "Email", patient.Email)
	addDetail(pdf, "Service", service.Name)
	addDetail(pdf, "Price", fmt.Sprintf("%.2f EUR", service.Price))
	addDetail(pdf, "Date", appt.Date)
	addDetail(pdf, "Time", appt.Time)
	addDetail(pdf, "Status", string(appt.Status))

	return output(pdf)
}

// VisitReport renders the doctor's visit report as a PDF: patient details,
// visit details, findings, and a signature line.
func VisitReport(rep *models.VisitReport, appt *models.Appointment, doctor, patient *models.User) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Medical Visit Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	dob := "N/A"
	if patient.DateOfBirth != nil {
		dob = patient.DateOfBirth.Format("2006-01-02")
	}

	sectionTitle(pdf, "Patient")
	addDetail(pdf, "Name", patient.Name)
	addDetail(pdf, "Email", patient.Email)
	addDetail(pdf, "Date of birth", dob)

	sectionTitle(pdf, "Visit")
	addDetail(pdf, "Doctor", "Dr. "+doctor.Name)
	addDetail(pdf, "Date", appt.Date)
	addDetail(pdf, "Time", appt.Time)

	sectionTitle(pdf, "Findings")
	addDetail(pdf, "Diagnosis", rep.Diagnosis)
	addDetail(pdf, "Recommendation", rep.Recommendation)
	addDetail(pdf, "Symptoms", rep.Symptoms)
	addDetail(pdf, "Temperature", rep.Temperature)
	addDetail(pdf, "Blood pressure", rep.BloodPressure)

	pdf.Ln(16)
	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on %s", time.Now().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
	pdf.CellFormat(0, 6, "____________________________", "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Signature of Dr. %s", doctor.Name), "", 1, "R", false, 0, "")

	return output(pdf)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 9, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 12)
}

func addDetail(pdf *gofpdf.Fpdf, label, value string) {
	if value == "" {
		value = "N/A"
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(45, 7, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 7, value, "", "L", false)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
