package booking

import (
	"fmt"
	"strings"

	"github.com/Gentaaaa/MedPal/internal/models"
)

// Notification subjects and HTML bodies for booking and status emails.
// Bodies are small enough that fmt beats a template engine here.

const bookedPatientSubject = "Your appointment was booked"

func bookedDoctorSubject(patient *models.User) string {
	return fmt.Sprintf("New appointment from %s", patient.Name)
}

func bookedClinicSubject(doctor *models.User) string {
	return fmt.Sprintf("New appointment for Dr. %s", doctor.Name)
}

func bookedPatientBody(patient, doctor *models.User, service *models.Service, appt *models.Appointment) string {
	return fmt.Sprintf(
		"Hello %s,<br />You have booked an appointment with Dr. %s for <strong>%s</strong> on <strong>%s</strong> at <strong>%s</strong>.",
		patient.Name, doctor.Name, service.Name, appt.Date, appt.Time,
	)
}

// bookedStaffBody is shared by the doctor and clinic notifications: booking
// details plus the patient's stored documents as links.
func bookedStaffBody(patient *models.User, service *models.Service, appt *models.Appointment, documents []models.Document, appURL string) string {
	var b strings.Builder

	dob := "N/A"
	if patient.DateOfBirth != nil {
		dob = patient.DateOfBirth.Format("2006-01-02")
	}

	b.WriteString("<p>A patient has booked an appointment:</p><ul>")
	fmt.Fprintf(&b, "<li><strong>Patient:</strong> %s</li>", patient.Name)
	fmt.Fprintf(&b, "<li><strong>Email:</strong> %s</li>", patient.Email)
	fmt.Fprintf(&b, "<li><strong>Date of birth:</strong> %s</li>", dob)
	fmt.Fprintf(&b, "<li><strong>Service:</strong> %s</li>", service.Name)
	fmt.Fprintf(&b, "<li><strong>Date:</strong> %s</li>", appt.Date)
	fmt.Fprintf(&b, "<li><strong>Time:</strong> %s</li>", appt.Time)
	b.WriteString("</ul>")

	if len(documents) == 0 {
		b.WriteString("<p>No documents attached.</p>")
		return b.String()
	}

	b.WriteString("<p><strong>Attached documents:</strong></p><ul>")
	for _, d := range documents {
		fmt.Fprintf(&b, `<li><a href="%s%s" target="_blank">%s</a></li>`, appURL, d.FileURL, d.Title)
	}
	b.WriteString("</ul>")
	return b.String()
}

func statusSubject(status models.AppointmentStatus) string {
	if status == models.StatusApproved {
		return "Your appointment was approved"
	}
	return "Your appointment was canceled"
}

func statusBody(doctor *models.User, appt *models.Appointment, status models.AppointmentStatus) string {
	outcome := "canceled"
	if status == models.StatusApproved {
		outcome = "approved"
	}
	doctorName := "your doctor"
	if doctor != nil {
		doctorName = "Dr. " + doctor.Name
	}
	return fmt.Sprintf(
		"Your appointment with %s on %s at %s has been %s.",
		doctorName, appt.Date, appt.Time, outcome,
	)
}
