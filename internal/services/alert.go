package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"fleet-management/internal/models"
	"fleet-management/internal/websocket"
	"fleet-management/pkg/email"
)

type alertTripStore interface {
	FindOverdueScheduled(ctx context.Context, now time.Time) ([]*models.PopulatedTrip, error)
}

type alertVehicleStore interface {
	FindDueForService(now time.Time) ([]*models.Vehicle, error)
}

type alertUserStore interface {
	FindByRole(role string) ([]*models.User, error)
}

type alertMailer interface {
	SendOverdueTripAlert(to string, data email.OverdueTripData) error
	SendMaintenanceAlert(to string, data email.MaintenanceAlertData) error
}

// AlertService periodically scans for scheduled trips past their start
// time and vehicles with expired service, insurance or registration
// dates. Findings are pushed to fleet managers and admins over the
// WebSocket hub and mailed once per subject per process lifetime.
type AlertService struct {
	trips    alertTripStore
	vehicles alertVehicleStore
	users    alertUserStore
	mailer   alertMailer
	emitter  websocket.EventEmitter
	interval time.Duration
	stopChan chan bool

	// mu serializes the mail path: the scan ticker and manual scans
	// triggered over HTTP both walk the mailed set.
	mu     sync.Mutex
	mailed map[string]bool

	now func() time.Time
}

func NewAlertService(trips alertTripStore, vehicles alertVehicleStore, users alertUserStore, interval time.Duration) *AlertService {
	return &AlertService{
		trips:    trips,
		vehicles: vehicles,
		users:    users,
		interval: interval,
		stopChan: make(chan bool),
		mailed:   make(map[string]bool),
		now:      time.Now,
	}
}

// SetMailer allows setting the email service for alert notifications
func (s *AlertService) SetMailer(mailer alertMailer) {
	s.mailer = mailer
}

// SetEventEmitter allows setting the WebSocket emitter for real-time alerts
func (s *AlertService) SetEventEmitter(emitter websocket.EventEmitter) {
	s.emitter = emitter
}

// Start begins the alert scan loop
func (s *AlertService) Start() {
	log.Printf("Starting alert scan service (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runChecks()

	for {
		select {
		case <-ticker.C:
			s.runChecks()
		case <-s.stopChan:
			log.Println("Stopping alert scan service")
			return
		}
	}
}

// Stop stops the alert scan loop
func (s *AlertService) Stop() {
	s.stopChan <- true
}

func (s *AlertService) runChecks() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.CheckOverdueTrips(ctx)
	s.CheckMaintenanceAlerts()
}

// CheckOverdueTrips finds scheduled trips whose start time has passed
// and notifies fleet managers and admins.
func (s *AlertService) CheckOverdueTrips(ctx context.Context) {
	now := s.now()
	overdue, err := s.trips.FindOverdueScheduled(ctx, now)
	if err != nil {
		log.Printf("Error checking overdue trips: %v", err)
		return
	}

	for _, trip := range overdue {
		payload := map[string]interface{}{
			"tripId":      trip.ID.Hex(),
			"origin":      trip.Origin,
			"destination": trip.Destination,
			"startTime":   trip.StartTime,
			"overdueBy":   int(now.Sub(trip.StartTime).Minutes()),
		}
		if trip.Vehicle != nil {
			payload["vehicleNumber"] = trip.Vehicle.VehicleNumber
		}
		if trip.Driver != nil {
			payload["driverName"] = trip.Driver.Name
		}

		s.emitToManagers(websocket.NewEvent(websocket.EventOverdueTripAlert, payload))
		s.mailOverdueTrip(trip)
	}
}

// CheckMaintenanceAlerts finds vehicles with expired service, insurance
// or registration dates and notifies fleet managers and admins.
func (s *AlertService) CheckMaintenanceAlerts() {
	now := s.now()
	due, err := s.vehicles.FindDueForService(now)
	if err != nil {
		log.Printf("Error checking vehicle maintenance: %v", err)
		return
	}

	for _, vehicle := range due {
		reasons := maintenanceReasons(vehicle, now)
		if len(reasons) == 0 {
			continue
		}

		s.emitToManagers(websocket.NewEvent(websocket.EventMaintenanceAlert, map[string]interface{}{
			"vehicleId":     vehicle.ID.Hex(),
			"vehicleNumber": vehicle.VehicleNumber,
			"reasons":       reasons,
		}))
		s.mailMaintenance(vehicle, reasons)
	}
}

// MaintenanceFinding pairs a vehicle with the reasons it needs
// attention.
type MaintenanceFinding struct {
	Vehicle *models.Vehicle `json:"vehicle"`
	Reasons []string        `json:"reasons"`
}

// ListOverdueTrips returns the scheduled trips currently past their
// start time, for on-demand inspection.
func (s *AlertService) ListOverdueTrips(ctx context.Context) ([]*models.PopulatedTrip, error) {
	return s.trips.FindOverdueScheduled(ctx, s.now())
}

// ListMaintenanceDue returns the vehicles with expired service,
// insurance or registration dates, with the reasons spelled out.
func (s *AlertService) ListMaintenanceDue() ([]MaintenanceFinding, error) {
	now := s.now()
	due, err := s.vehicles.FindDueForService(now)
	if err != nil {
		return nil, err
	}

	findings := make([]MaintenanceFinding, 0, len(due))
	for _, vehicle := range due {
		reasons := maintenanceReasons(vehicle, now)
		if len(reasons) == 0 {
			continue
		}
		findings = append(findings, MaintenanceFinding{Vehicle: vehicle, Reasons: reasons})
	}

	return findings, nil
}

func maintenanceReasons(vehicle *models.Vehicle, now time.Time) []string {
	var reasons []string
	if vehicle.NextServiceDue != nil && vehicle.NextServiceDue.Before(now) {
		reasons = append(reasons, fmt.Sprintf("Service was due on %s", vehicle.NextServiceDue.Format("Jan 2, 2006")))
	}
	if vehicle.InsuranceExpiry != nil && vehicle.InsuranceExpiry.Before(now) {
		reasons = append(reasons, fmt.Sprintf("Insurance expired on %s", vehicle.InsuranceExpiry.Format("Jan 2, 2006")))
	}
	if vehicle.RegistrationExpiry != nil && vehicle.RegistrationExpiry.Before(now) {
		reasons = append(reasons, fmt.Sprintf("Registration expired on %s", vehicle.RegistrationExpiry.Format("Jan 2, 2006")))
	}
	return reasons
}

func (s *AlertService) emitToManagers(event websocket.Event) {
	if s.emitter == nil {
		return
	}
	s.emitter.EmitToRole(models.RoleFleetManager, event)
	s.emitter.EmitToRole(models.RoleAdmin, event)
}

func (s *AlertService) mailOverdueTrip(trip *models.PopulatedTrip) {
	if s.mailer == nil {
		return
	}

	key := "trip:" + trip.ID.Hex()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mailed[key] {
		return
	}

	data := email.OverdueTripData{
		TripID:      trip.ID.Hex(),
		Origin:      trip.Origin,
		Destination: trip.Destination,
		StartTime:   trip.StartTime,
	}
	if trip.Vehicle != nil {
		data.VehicleNumber = trip.Vehicle.VehicleNumber
	}
	if trip.Driver != nil {
		data.DriverName = trip.Driver.Name
	}

	if s.sendToManagers(func(to string) error {
		return s.mailer.SendOverdueTripAlert(to, data)
	}) {
		s.mailed[key] = true
	}
}

func (s *AlertService) mailMaintenance(vehicle *models.Vehicle, reasons []string) {
	if s.mailer == nil {
		return
	}

	key := "vehicle:" + vehicle.ID.Hex()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mailed[key] {
		return
	}

	data := email.MaintenanceAlertData{
		VehicleNumber: vehicle.VehicleNumber,
		Make:          vehicle.Make,
		Model:         vehicle.Model,
		Reasons:       reasons,
	}

	if s.sendToManagers(func(to string) error {
		return s.mailer.SendMaintenanceAlert(to, data)
	}) {
		s.mailed[key] = true
	}
}

// sendToManagers mails every fleet manager and admin, reporting whether
// at least one send succeeded.
func (s *AlertService) sendToManagers(send func(to string) error) bool {
	sent := false
	for _, role := range []string{models.RoleFleetManager, models.RoleAdmin} {
		users, err := s.users.FindByRole(role)
		if err != nil {
			log.Printf("Error loading %s recipients: %v", role, err)
			continue
		}
		for _, user := range users {
			if err := send(user.Email); err != nil {
				log.Printf("Failed to send alert email to %s: %v", user.Email, err)
				continue
			}
			sent = true
		}
	}
	return sent
}
