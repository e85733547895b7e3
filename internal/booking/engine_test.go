package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Gentaaaa/MedPal/internal/cache"
	"github.com/Gentaaaa/MedPal/internal/models"
)

// ---------- Fakes ----------

type fakeStore struct {
	mu           sync.Mutex
	users        map[string]*models.User
	services     map[string]*models.Service
	appointments map[string]*models.Appointment
	documents    []models.Document

	nextID          int
	activeTimeCalls int
	createErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[string]*models.User),
		services:     make(map[string]*models.Service),
		appointments: make(map[string]*models.Appointment),
	}
}

func (s *fakeStore) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *fakeStore) ServiceByID(_ context.Context, id string) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.services[id], nil
}

func (s *fakeStore) ActiveBySlot(_ context.Context, doctorID, date, slotTime string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeBySlotLocked(doctorID, date, slotTime), nil
}

func (s *fakeStore) activeBySlotLocked(doctorID, date, slotTime string) *models.Appointment {
	for _, appt := range s.appointments {
		if appt.DoctorID == doctorID && appt.Date == date && appt.Time == slotTime &&
			appt.Status != models.StatusCanceled {
			return appt
		}
	}
	return nil
}

func (s *fakeStore) Create(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.activeBySlotLocked(appt.DoctorID, appt.Date, appt.Time) != nil {
		return ErrSlotTaken
	}
	s.nextID++
	appt.ID = fmt.Sprintf("appt-%d", s.nextID)
	stored := *appt
	s.appointments[appt.ID] = &stored
	return nil
}

func (s *fakeStore) ByID(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	copied := *appt
	return &copied, nil
}

func (s *fakeStore) Save(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *appt
	s.appointments[appt.ID] = &stored
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.appointments, id)
	return nil
}

func (s *fakeStore) ActiveTimes(_ context.Context, doctorID, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTimeCalls++
	var times []string
	for _, appt := range s.appointments {
		if appt.DoctorID == doctorID && appt.Date == date && appt.Status != models.StatusCanceled {
			times = append(times, appt.Time)
		}
	}
	return times, nil
}

func (s *fakeStore) MarkSeen(_ context.Context, patientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for _, appt := range s.appointments {
		if appt.PatientID == patientID && !appt.SeenByPatient {
			appt.SeenByPatient = true
			changed++
		}
	}
	return changed, nil
}

func (s *fakeStore) CountUnseen(_ context.Context, patientID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, appt := range s.appointments {
		if appt.PatientID == patientID && !appt.SeenByPatient &&
			(appt.Status == models.StatusApproved || appt.Status == models.StatusCanceled) {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) ByPatient(_ context.Context, patientID string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var documents []models.Document
	for _, d := range s.documents {
		if d.PatientID == patientID {
			documents = append(documents, d)
		}
	}
	return documents, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (n *fakeNotifier) Send(to, subject, htmlBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (n *fakeNotifier) mails() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]sentMail, len(n.sent))
	copy(out, n.sent)
	return out
}

// ---------- Helpers ----------

const (
	aMonday  = "2025-01-06"
	aTuesday = "2025-01-07"
)

func newTestEngine(t *testing.T) (*Engine, *fakeStore, *fakeNotifier) {
	t.Helper()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	slots, err := cache.NewSlotCache(16)
	if err != nil {
		t.Fatalf("creating slot cache: %v", err)
	}
	engine := NewEngine(store, store, store, notifier, slots, "http://localhost:5000", zerolog.Nop())
	return engine, store, notifier
}

func seedClinic(store *fakeStore) {
	store.users["clinic-1"] = &models.User{
		BaseModel: models.BaseModel{ID: "clinic-1"},
		Name:      "Prime Clinic", Email: "clinic@example.com", Role: models.RoleClinic,
	}
	store.users["doctor-1"] = &models.User{
		BaseModel: models.BaseModel{ID: "doctor-1"},
		Name:      "House", Email: "house@example.com", Role: models.RoleDoctor,
		ClinicID: "clinic-1",
		WorkingHours: models.WorkingHours{
			"monday":  {Start: "09:00", End: "17:00"},
			"tuesday": {Start: "10:00", End: "14:00"},
		},
	}
	store.users["patient-1"] = &models.User{
		BaseModel: models.BaseModel{ID: "patient-1"},
		Name:      "Alice", Email: "alice@example.com", Role: models.RolePatient,
	}
	store.users["patient-2"] = &models.User{
		BaseModel: models.BaseModel{ID: "patient-2"},
		Name:      "Bob", Email: "bob@example.com", Role: models.RolePatient,
	}
	store.services["service-1"] = &models.Service{
		BaseModel: models.BaseModel{ID: "service-1"},
		Name:      "Checkup", Price: 30,
	}
}

func mondayBooking(slotTime string) BookingInput {
	return BookingInput{
		PatientID: "patient-1", DoctorID: "doctor-1", ServiceID: "service-1",
		Date: aMonday, Time: slotTime,
	}
}

func isValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func isNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func isAuthorization(err error) bool {
	var e *AuthorizationError
	return errors.As(err, &e)
}

func isConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// ---------- CreateBooking ----------

func TestCreateBooking_MissingFields(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	cases := []BookingInput{
		{PatientID: "patient-1", ServiceID: "service-1", Date: aMonday, Time: "09:00"},
		{PatientID: "patient-1", DoctorID: "doctor-1", Date: aMonday, Time: "09:00"},
		{PatientID: "patient-1", DoctorID: "doctor-1", ServiceID: "service-1", Time: "09:00"},
		{PatientID: "patient-1", DoctorID: "doctor-1", ServiceID: "service-1", Date: aMonday},
	}
	for i, in := range cases {
		if _, err := engine.CreateBooking(context.Background(), in); !isValidation(err) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
	if len(store.appointments) != 0 {
		t.Errorf("expected no appointments persisted, got %d", len(store.appointments))
	}
}

func TestCreateBooking_UnknownDoctorOrService(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	in := mondayBooking("09:00")
	in.DoctorID = "missing"
	if _, err := engine.CreateBooking(context.Background(), in); !isNotFound(err) {
		t.Errorf("unknown doctor: expected NotFoundError, got %v", err)
	}

	// A non-doctor user id is not a doctor either
	in = mondayBooking("09:00")
	in.DoctorID = "patient-2"
	if _, err := engine.CreateBooking(context.Background(), in); !isNotFound(err) {
		t.Errorf("non-doctor user: expected NotFoundError, got %v", err)
	}

	in = mondayBooking("09:00")
	in.ServiceID = "missing"
	if _, err := engine.CreateBooking(context.Background(), in); !isNotFound(err) {
		t.Errorf("unknown service: expected NotFoundError, got %v", err)
	}
}

func TestCreateBooking_NoWorkingHours(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	store.users["doctor-1"].WorkingHours = nil

	if _, err := engine.CreateBooking(context.Background(), mondayBooking("09:00")); !isValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestCreateBooking_DayOffNamesWeekday(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	in := mondayBooking("09:00")
	in.Date = "2025-01-08" // a Wednesday, not in the schedule
	_, err := engine.CreateBooking(context.Background(), in)
	if !isValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "wednesday") {
		t.Errorf("expected the error to name the weekday, got %q", err.Error())
	}
}

func TestCreateBooking_WindowBoundariesInclusive(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	if _, err := engine.CreateBooking(context.Background(), mondayBooking("08:59")); !isValidation(err) {
		t.Errorf("08:59: expected ValidationError, got %v", err)
	}
	if _, err := engine.CreateBooking(context.Background(), mondayBooking("09:00")); err != nil {
		t.Errorf("09:00: expected success, got %v", err)
	}
	if _, err := engine.CreateBooking(context.Background(), mondayBooking("17:00")); err != nil {
		t.Errorf("17:00: expected success, got %v", err)
	}
	if _, err := engine.CreateBooking(context.Background(), mondayBooking("17:01")); !isValidation(err) {
		t.Errorf("17:01: expected ValidationError, got %v", err)
	}
	engine.Wait()
}

func TestCreateBooking_SlotConflict(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	first, err := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Second patient, same slot
	in := mondayBooking("10:00")
	in.PatientID = "patient-2"
	if _, err := engine.CreateBooking(context.Background(), in); !isConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	// After cancellation the slot opens up again
	store.appointments[first.ID].Status = models.StatusCanceled
	if _, err := engine.CreateBooking(context.Background(), in); err != nil {
		t.Errorf("rebooking a canceled slot failed: %v", err)
	}
	engine.Wait()
}

func TestCreateBooking_StoreRejectsConcurrentDuplicate(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	store.createErr = ErrSlotTaken

	if _, err := engine.CreateBooking(context.Background(), mondayBooking("10:00")); !isConflict(err) {
		t.Errorf("expected ConflictError when the store rejects the insert, got %v", err)
	}
}

func TestCreateBooking_PersistsPendingAndNotifies(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	seedClinic(store)
	store.documents = []models.Document{
		{BaseModel: models.BaseModel{ID: "doc-1"}, Title: "Blood work", FileURL: "/uploads/blood.pdf", PatientID: "patient-1"},
	}

	appt, err := engine.CreateBooking(context.Background(), mondayBooking("11:00"))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if appt.Status != models.StatusPending {
		t.Errorf("expected pending status, got %q", appt.Status)
	}
	engine.Wait()

	mails := notifier.mails()
	if len(mails) != 3 {
		t.Fatalf("expected 3 notifications (patient, doctor, clinic), got %d", len(mails))
	}
	recipients := map[string]bool{}
	for _, mail := range mails {
		recipients[mail.To] = true
	}
	for _, want := range []string{"alice@example.com", "house@example.com", "clinic@example.com"} {
		if !recipients[want] {
			t.Errorf("expected a notification to %s", want)
		}
	}
	for _, mail := range mails {
		if mail.To == "house@example.com" && !strings.Contains(mail.Body, "/uploads/blood.pdf") {
			t.Errorf("doctor notification should link the patient's documents, body: %q", mail.Body)
		}
	}
}

func TestCreateBooking_NoClinicMeansTwoNotifications(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	seedClinic(store)
	store.users["doctor-1"].ClinicID = ""

	if _, err := engine.CreateBooking(context.Background(), mondayBooking("11:00")); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	engine.Wait()

	if got := len(notifier.mails()); got != 2 {
		t.Errorf("expected 2 notifications without an owning clinic, got %d", got)
	}
}

func TestCreateBooking_NotificationFailureDoesNotFailBooking(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	seedClinic(store)
	notifier.fail = true

	appt, err := engine.CreateBooking(context.Background(), mondayBooking("12:00"))
	if err != nil {
		t.Fatalf("booking should succeed despite notification failures: %v", err)
	}
	engine.Wait()

	if _, ok := store.appointments[appt.ID]; !ok {
		t.Error("appointment should be persisted")
	}
}

// ---------- SetStatus ----------

func TestSetStatus_ClinicOnly(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()

	for _, actor := range []Actor{
		{ID: "patient-1", Role: models.RolePatient},
		{ID: "doctor-1", Role: models.RoleDoctor},
		{ID: "admin-1", Role: models.RoleAdmin},
	} {
		if _, err := engine.SetStatus(context.Background(), appt.ID, models.StatusApproved, actor); !isAuthorization(err) {
			t.Errorf("%s: expected AuthorizationError, got %v", actor.Role, err)
		}
	}
}

func TestSetStatus_InvalidStatusAndMissingAppointment(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()

	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	if _, err := engine.SetStatus(context.Background(), appt.ID, "done", clinic); !isValidation(err) {
		t.Errorf("invalid status: expected ValidationError, got %v", err)
	}
	if _, err := engine.SetStatus(context.Background(), "missing", models.StatusApproved, clinic); !isNotFound(err) {
		t.Errorf("missing appointment: expected NotFoundError, got %v", err)
	}
}

func TestSetStatus_ApproveNotifiesPatientOnce(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	seedClinic(store)
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()
	before := len(notifier.mails())

	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	updated, err := engine.SetStatus(context.Background(), appt.ID, models.StatusApproved, clinic)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("expected approved, got %q", updated.Status)
	}
	engine.Wait()

	mails := notifier.mails()[before:]
	if len(mails) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(mails))
	}
	if mails[0].To != "alice@example.com" {
		t.Errorf("notification should go to the patient, got %s", mails[0].To)
	}
}

func TestSetStatus_PendingSendsNothing(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	seedClinic(store)
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()
	before := len(notifier.mails())

	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	if _, err := engine.SetStatus(context.Background(), appt.ID, models.StatusPending, clinic); err != nil {
		t.Fatalf("transition to pending failed: %v", err)
	}
	engine.Wait()

	if got := len(notifier.mails()) - before; got != 0 {
		t.Errorf("expected zero notifications on transition to pending, got %d", got)
	}
}

func TestSetStatus_ApproveRevalidatesCurrentSchedule(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("16:30"))
	engine.Wait()

	// The doctor's Monday hours shrink after the booking was made
	store.users["doctor-1"].WorkingHours = models.WorkingHours{
		"monday": {Start: "09:00", End: "12:00"},
	}

	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	if _, err := engine.SetStatus(context.Background(), appt.ID, models.StatusApproved, clinic); !isValidation(err) {
		t.Errorf("expected ValidationError after schedule change, got %v", err)
	}

	// Cancellation does not re-validate
	if _, err := engine.SetStatus(context.Background(), appt.ID, models.StatusCanceled, clinic); err != nil {
		t.Errorf("cancel should not re-validate the schedule: %v", err)
	}
	engine.Wait()
}

// ---------- Attendance & presence ----------

func TestSetAttendance_Policy(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	store.users["doctor-2"] = &models.User{
		BaseModel: models.BaseModel{ID: "doctor-2"},
		Name:      "Wilson", Email: "wilson@example.com", Role: models.RoleDoctor, ClinicID: "clinic-2",
	}
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()

	denied := []Actor{
		{ID: "patient-1", Role: models.RolePatient},
		{ID: "doctor-2", Role: models.RoleDoctor},
		{ID: "clinic-2", Role: models.RoleClinic},
	}
	for _, actor := range denied {
		if _, err := engine.SetAttendance(context.Background(), appt.ID, actor); !isAuthorization(err) {
			t.Errorf("%s/%s: expected AuthorizationError, got %v", actor.Role, actor.ID, err)
		}
	}

	updated, err := engine.SetAttendance(context.Background(), appt.ID, Actor{ID: "doctor-1", Role: models.RoleDoctor})
	if err != nil {
		t.Fatalf("owning doctor: %v", err)
	}
	if !updated.Attended {
		t.Error("expected attended=true")
	}

	if _, err := engine.SetAttendance(context.Background(), appt.ID, Actor{ID: "clinic-1", Role: models.RoleClinic}); err != nil {
		t.Errorf("owning clinic: %v", err)
	}

	if _, err := engine.SetAttendance(context.Background(), "missing", Actor{ID: "doctor-1", Role: models.RoleDoctor}); !isNotFound(err) {
		t.Errorf("missing appointment: expected NotFoundError, got %v", err)
	}
}

func TestSetPresence_TogglesBothWays(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)
	appt, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()

	doctor := Actor{ID: "doctor-1", Role: models.RoleDoctor}
	updated, err := engine.SetPresence(context.Background(), appt.ID, true, doctor)
	if err != nil {
		t.Fatalf("set present failed: %v", err)
	}
	if !updated.IsPresent {
		t.Error("expected isPresent=true")
	}

	updated, err = engine.SetPresence(context.Background(), appt.ID, false, doctor)
	if err != nil {
		t.Fatalf("unset present failed: %v", err)
	}
	if updated.IsPresent {
		t.Error("expected isPresent=false")
	}

	if _, err := engine.SetPresence(context.Background(), appt.ID, true, Actor{ID: "patient-1", Role: models.RolePatient}); !isAuthorization(err) {
		t.Errorf("patient: expected AuthorizationError, got %v", err)
	}
}

// ---------- DeleteAppointment ----------

func TestDeleteAppointment_Policy(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	attempt := func(actor Actor) error {
		appt, err := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
		if err != nil {
			t.Fatalf("seeding booking: %v", err)
		}
		engine.Wait()
		deleteErr := engine.DeleteAppointment(context.Background(), appt.ID, actor)
		if deleteErr != nil {
			// Clean up so the next case can reuse the slot
			store.mu.Lock()
			delete(store.appointments, appt.ID)
			store.mu.Unlock()
		}
		return deleteErr
	}

	if err := attempt(Actor{ID: "patient-2", Role: models.RolePatient}); !isAuthorization(err) {
		t.Errorf("other patient: expected AuthorizationError, got %v", err)
	}
	if err := attempt(Actor{ID: "doctor-9", Role: models.RoleDoctor}); !isAuthorization(err) {
		t.Errorf("other doctor: expected AuthorizationError, got %v", err)
	}
	if err := attempt(Actor{ID: "patient-1", Role: models.RolePatient}); err != nil {
		t.Errorf("owning patient: %v", err)
	}
	if err := attempt(Actor{ID: "doctor-1", Role: models.RoleDoctor}); err != nil {
		t.Errorf("assigned doctor: %v", err)
	}
	if err := attempt(Actor{ID: "clinic-9", Role: models.RoleClinic}); err != nil {
		t.Errorf("any clinic: %v", err)
	}
	if err := attempt(Actor{ID: "admin-1", Role: models.RoleAdmin}); err != nil {
		t.Errorf("any admin: %v", err)
	}

	if err := engine.DeleteAppointment(context.Background(), "missing", Actor{ID: "admin-1", Role: models.RoleAdmin}); !isNotFound(err) {
		t.Errorf("missing appointment: expected NotFoundError, got %v", err)
	}
}

// ---------- ListTakenSlots ----------

func TestListTakenSlots_ExcludesCanceled(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	first, _ := engine.CreateBooking(context.Background(), mondayBooking("09:00"))
	second := mondayBooking("10:00")
	second.PatientID = "patient-2"
	if _, err := engine.CreateBooking(context.Background(), second); err != nil {
		t.Fatalf("second booking: %v", err)
	}
	engine.Wait()

	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	if _, err := engine.SetStatus(context.Background(), first.ID, models.StatusCanceled, clinic); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	engine.Wait()

	times, err := engine.ListTakenSlots(context.Background(), "doctor-1", aMonday)
	if err != nil {
		t.Fatalf("listing taken slots: %v", err)
	}
	if len(times) != 1 || times[0] != "10:00" {
		t.Errorf("expected only [10:00], got %v", times)
	}
}

func TestListTakenSlots_RequiresInputsAndCaches(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	if _, err := engine.ListTakenSlots(context.Background(), "", aMonday); !isValidation(err) {
		t.Errorf("missing doctorId: expected ValidationError, got %v", err)
	}
	if _, err := engine.ListTakenSlots(context.Background(), "doctor-1", ""); !isValidation(err) {
		t.Errorf("missing date: expected ValidationError, got %v", err)
	}

	if _, err := engine.ListTakenSlots(context.Background(), "doctor-1", aMonday); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.ListTakenSlots(context.Background(), "doctor-1", aMonday); err != nil {
		t.Fatal(err)
	}
	if store.activeTimeCalls != 1 {
		t.Errorf("expected the second read to come from the cache, store calls: %d", store.activeTimeCalls)
	}

	// A new booking invalidates the cached entry
	if _, err := engine.CreateBooking(context.Background(), mondayBooking("09:00")); err != nil {
		t.Fatalf("booking: %v", err)
	}
	engine.Wait()
	times, err := engine.ListTakenSlots(context.Background(), "doctor-1", aMonday)
	if err != nil {
		t.Fatal(err)
	}
	if store.activeTimeCalls != 2 {
		t.Errorf("expected a store read after invalidation, store calls: %d", store.activeTimeCalls)
	}
	if len(times) != 1 || times[0] != "09:00" {
		t.Errorf("expected [09:00], got %v", times)
	}
}

// ---------- MarkSeen / CountUnseen ----------

func TestMarkSeen_IdempotentAndCountUnseen(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedClinic(store)

	first, _ := engine.CreateBooking(context.Background(), mondayBooking("09:00"))
	second, _ := engine.CreateBooking(context.Background(), mondayBooking("10:00"))
	engine.Wait()

	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	if _, err := engine.SetStatus(context.Background(), first.ID, models.StatusApproved, clinic); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.SetStatus(context.Background(), second.ID, models.StatusCanceled, clinic); err != nil {
		t.Fatal(err)
	}
	engine.Wait()

	count, err := engine.CountUnseen(context.Background(), "patient-1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 unseen, got %d", count)
	}

	changed, err := engine.MarkSeen(context.Background(), "patient-1")
	if err != nil {
		t.Fatal(err)
	}
	if changed != 2 {
		t.Errorf("expected 2 rows changed, got %d", changed)
	}

	// Second call is a no-op
	changed, err = engine.MarkSeen(context.Background(), "patient-1")
	if err != nil {
		t.Fatal(err)
	}
	if changed != 0 {
		t.Errorf("expected 0 rows changed on repeat, got %d", changed)
	}

	count, err = engine.CountUnseen(context.Background(), "patient-1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected 0 unseen after MarkSeen, got %d", count)
	}
}

// ---------- End-to-end ----------

func TestBookingLifecycle(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	seedClinic(store)

	// Doctor works Tuesday 10:00-14:00; patient books 10:00
	in := BookingInput{
		PatientID: "patient-1", DoctorID: "doctor-1", ServiceID: "service-1",
		Date: aTuesday, Time: "10:00",
	}
	appt, err := engine.CreateBooking(context.Background(), in)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if appt.Status != models.StatusPending {
		t.Fatalf("expected pending, got %q", appt.Status)
	}
	engine.Wait()
	if got := len(notifier.mails()); got != 3 {
		t.Fatalf("expected 3 booking notifications, got %d", got)
	}

	// Clinic approves; exactly one more notification, to the patient
	clinic := Actor{ID: "clinic-1", Role: models.RoleClinic}
	updated, err := engine.SetStatus(context.Background(), appt.ID, models.StatusApproved, clinic)
	if err != nil {
		t.Fatalf("approval failed: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", updated.Status)
	}
	engine.Wait()
	mails := notifier.mails()
	if len(mails) != 4 {
		t.Fatalf("expected 4 notifications total, got %d", len(mails))
	}
	if mails[3].To != "alice@example.com" {
		t.Errorf("approval notification should go to the patient, got %s", mails[3].To)
	}

	// A second patient tries the same slot before any cancellation
	in.PatientID = "patient-2"
	if _, err := engine.CreateBooking(context.Background(), in); !isConflict(err) {
		t.Errorf("expected ConflictError for the occupied slot, got %v", err)
	}
}
