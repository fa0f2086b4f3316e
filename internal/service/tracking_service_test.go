package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-fleet-api/internal/dto"
	"github.com/noah-isme/campus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
	"github.com/noah-isme/campus-fleet-api/pkg/jobs"
)

var adminCaller = models.Caller{ID: "admin-1", Role: models.RoleAdmin}

type trackingFixture struct {
	fleet   *fakeFleet
	svc     *TrackingService
	history *LocationHistoryService
	metrics *MetricsService
	cache   *invalidationSpy
	queue   *enqueueSpy
}

type enqueueSpy struct {
	jobs []jobs.Job
	err  error
}

func (s *enqueueSpy) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func newTrackingFixture(t *testing.T) (*trackingFixture, func(ok bool)) {
	t.Helper()
	fleet := newFakeFleet()
	tx, mock := newTxProviderMock(t)
	metrics := NewMetricsService()
	cache := &invalidationSpy{}
	queue := &enqueueSpy{}

	history := NewLocationHistoryService(&fakeHistoryRepo{fleet: fleet}, &fakeBusRepo{fleet: fleet}, metrics, nil, LocationHistoryConfig{})
	history.UseRetryQueue(queue)

	svc := NewTrackingService(&fakeBusRepo{fleet: fleet}, history, cache, tx, metrics, nil, nil)
	fixed := time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	expectTx := func(ok bool) {
		mock.ExpectBegin()
		if ok {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
	}
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })

	return &trackingFixture{fleet: fleet, svc: svc, history: history, metrics: metrics, cache: cache, queue: queue}, expectTx
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func locationRequest(direction models.Direction, count int, total *int) dto.LocationUpdateRequest {
	return dto.LocationUpdateRequest{
		CurrentLocation: "Main Gate",
		Status:          models.BusStatusInTransit,
		AttendanceData:  dto.AttendanceData{Route: "North Loop", Count: intPtr(count), TotalStudents: total},
		RouteDirection:  direction,
	}
}

func TestIncrementRejectsBeyondSeatingCapacity(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	bus := fx.fleet.addBus("bus-1", "B-01", 40)
	bus.Students = 38

	expectTx(false)
	_, err := fx.svc.IncrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerStudents, Count: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
	assert.Equal(t, models.PassengerCounts{Students: 38}, fx.fleet.bus("bus-1").PassengerCounts)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.capacityRejections.WithLabelValues("increment", "capacity")))

	expectTx(true)
	status, err := fx.svc.IncrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerStudents, Count: 2})
	require.NoError(t, err)
	assert.Equal(t, 40, status.CurrentPassengers.Students)
	assert.Equal(t, 0, status.AvailableSeats)
	assert.NotNil(t, fx.fleet.bus("bus-1").LastUpdated)
	assert.Equal(t, []string{busCachePattern}, fx.cache.patterns)
}

func TestIncrementCountsOthersAgainstTheSameSeats(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	bus := fx.fleet.addBus("bus-1", "B-01", 10)
	bus.Students = 8

	expectTx(false)
	_, err := fx.svc.IncrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerOthers, Count: 3})
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))

	expectTx(true)
	status, err := fx.svc.IncrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerOthers, Count: 2})
	require.NoError(t, err)
	assert.Equal(t, models.PassengerCounts{Students: 8, Others: 2}, status.CurrentPassengers)
	assert.Equal(t, 0, status.AvailableSeats)
}

func TestDecrementRejectsNegativeCounts(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	bus := fx.fleet.addBus("bus-1", "B-01", 40)
	bus.Students = 5

	expectTx(false)
	_, err := fx.svc.DecrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerOthers, Count: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNegativeCount))
	assert.Equal(t, models.PassengerCounts{Students: 5}, fx.fleet.bus("bus-1").PassengerCounts)

	expectTx(true)
	status, err := fx.svc.DecrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerStudents, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, status.CurrentPassengers.Students)
	assert.Equal(t, 40, status.AvailableSeats)
}

func TestPassengerDeltaValidation(t *testing.T) {
	fx, _ := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)

	_, err := fx.svc.IncrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: "crew", Count: 1})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = fx.svc.DecrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerStudents, Count: 0})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestPushLocationDepartureUsesCountAsStudents(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)

	expectTx(true)
	detail, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionDeparture, 12, nil))
	require.NoError(t, err)

	assert.Equal(t, 12, detail.Students)
	assert.Equal(t, "Main Gate", detail.CurrentLocation)
	assert.Equal(t, models.BusStatusInTransit, detail.Status)
	assert.Equal(t, models.DirectionDeparture, detail.CurrentDirection)
	require.NotNil(t, detail.Attendance.Count)
	assert.Equal(t, 12, *detail.Attendance.Count)
	assert.Equal(t, "North Loop", *detail.Attendance.Route)

	require.Len(t, fx.fleet.history, 1)
	entry := fx.fleet.history[0]
	assert.Equal(t, "bus-1", entry.BusID)
	assert.Equal(t, 12, entry.PassengerCount)
	assert.Equal(t, 12, entry.StudentsOnboard)
	assert.Equal(t, time.Date(2026, 10, 19, 7, 30, 0, 0, time.UTC), entry.RecordedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.locationUpdates.WithLabelValues("in-transit")))
}

func TestPushLocationReturnDerivesRemainingStudents(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)

	expectTx(true)
	detail, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionReturn, 5, intPtr(20)))
	require.NoError(t, err)
	assert.Equal(t, 15, detail.Students)
	assert.Equal(t, models.DirectionReturn, detail.CurrentDirection)

	require.Len(t, fx.fleet.history, 1)
	assert.Equal(t, 5, fx.fleet.history[0].PassengerCount)
	assert.Equal(t, 15, fx.fleet.history[0].StudentsOnboard)
	assert.Equal(t, 20, *fx.fleet.history[0].TotalStudents)
}

func TestPushLocationReturnNeedsRouteTotal(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)

	expectTx(false)
	_, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionReturn, 5, nil))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, fx.fleet.history)
}

func TestPushLocationRejectsImpossibleCounts(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	bus := fx.fleet.addBus("bus-1", "B-01", 20)
	bus.Others = 5

	expectTx(false)
	_, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionDeparture, 16, nil))
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))

	expectTx(false)
	_, err = fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionReturn, 25, intPtr(20)))
	assert.True(t, errors.Is(err, appErrors.ErrNegativeCount))

	after := fx.fleet.bus("bus-1")
	assert.Equal(t, models.DepotLocation, after.CurrentLocation)
	assert.Equal(t, models.PassengerCounts{Others: 5}, after.PassengerCounts)
	assert.Empty(t, fx.fleet.history)
}

func TestPushLocationClearsOmittedAlert(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	bus := fx.fleet.addBus("bus-1", "B-01", 40)
	bus.AlertMessage = strPtr("flat tyre")
	bus.AlertType = strPtr("breakdown")

	req := locationRequest(models.DirectionDeparture, 3, nil)
	expectTx(true)
	detail, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, req)
	require.NoError(t, err)
	assert.Nil(t, detail.AlertMessage)
	assert.Nil(t, detail.AlertType)

	req.AlertMessage = strPtr("  traffic jam ")
	req.AlertType = strPtr("delay")
	expectTx(true)
	detail, err = fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, req)
	require.NoError(t, err)
	assert.Equal(t, "traffic jam", *detail.AlertMessage)
	assert.Equal(t, "delay", *fx.fleet.history[1].AlertType)
}

func TestTrackingCallerRules(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)
	fx.fleet.addPerson(models.PersonnelConductor, "cond-1", "Ravi")
	fx.fleet.addPerson(models.PersonnelConductor, "cond-2", "Meera")
	fx.fleet.bind("bus-1", models.PersonnelConductor, "cond-1")

	req := locationRequest(models.DirectionDeparture, 4, nil)

	expectTx(false)
	_, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", models.Caller{ID: "cond-2", Role: models.RoleConductor}, req)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	expectTx(false)
	_, err = fx.svc.IncrementPassengers(context.Background(), "bus-1", models.Caller{ID: "drv-1", Role: models.RoleDriver}, dto.PassengerDeltaRequest{Type: models.PassengerStudents, Count: 1})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	expectTx(true)
	detail, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", models.Caller{ID: "cond-1", Role: models.RoleConductor}, req)
	require.NoError(t, err)
	assert.Equal(t, 4, detail.Students)
	require.NotNil(t, detail.ConductorName)
	assert.Equal(t, "Ravi", *detail.ConductorName)
}

func TestTrackingUnknownBus(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)

	expectTx(false)
	_, err := fx.svc.PushLocationUpdate(context.Background(), "missing", adminCaller, locationRequest(models.DirectionDeparture, 1, nil))
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	expectTx(false)
	_, err = fx.svc.DecrementPassengers(context.Background(), "missing", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerStudents, Count: 1})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestPushLocationKeepsBusWriteWhenAuditFails(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)
	fx.fleet.appendErr = errors.New("history table unavailable")

	expectTx(true)
	detail, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionDeparture, 9, nil))
	require.NoError(t, err)
	assert.Equal(t, 9, detail.Students)
	assert.Equal(t, 9, fx.fleet.bus("bus-1").Students)

	require.Len(t, fx.queue.jobs, 1)
	job := fx.queue.jobs[0]
	assert.Equal(t, HistoryAppendJob, job.Type)
	entry := job.Payload.(*models.LocationHistory)
	assert.Equal(t, job.ID, entry.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.auditFailures))

	fx.fleet.appendErr = nil
	require.NoError(t, fx.history.RetryAppend(context.Background(), job))
	require.NoError(t, fx.history.RetryAppend(context.Background(), job))
	assert.Len(t, fx.fleet.history, 1)
}

func TestPushLocationFallsBackWhenReloadFails(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40)
	fx.fleet.detailErr = errors.New("replica lag")

	expectTx(true)
	detail, err := fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionDeparture, 2, nil))
	require.NoError(t, err)
	assert.Equal(t, "bus-1", detail.ID)
	assert.Equal(t, 2, detail.Students)
	assert.Nil(t, detail.RouteName)
}

func TestDeriveStudents(t *testing.T) {
	students, err := DeriveStudents(models.DirectionDeparture, 12, intPtr(30))
	require.NoError(t, err)
	assert.Equal(t, 12, students)

	students, err = DeriveStudents(models.DirectionReturn, 5, intPtr(20))
	require.NoError(t, err)
	assert.Equal(t, 15, students)

	students, err = DeriveStudents(models.DirectionReturn, 25, intPtr(20))
	require.NoError(t, err)
	assert.Equal(t, -5, students)

	_, err = DeriveStudents(models.DirectionReturn, 1, nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestIncrementRejectsHugeCountAsCapacity(t *testing.T) {
	fx, expectTx := newTrackingFixture(t)
	fx.fleet.addBus("bus-1", "B-01", 40).Students = 10

	expectTx(false)
	_, err := fx.svc.IncrementPassengers(context.Background(), "bus-1", adminCaller, dto.PassengerDeltaRequest{Type: models.PassengerOthers, Count: math.MaxInt})
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
	assert.Equal(t, models.PassengerCounts{Students: 10}, fx.fleet.bus("bus-1").PassengerCounts)

	expectTx(false)
	_, err = fx.svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, locationRequest(models.DirectionDeparture, math.MaxInt, nil))
	assert.True(t, errors.Is(err, appErrors.ErrCapacityExceeded))
}

// lockWaitBusRepo runs onLock once before handing out the row, standing in
// for a writer that committed while this one waited on the lock.
type lockWaitBusRepo struct {
	*fakeBusRepo
	onLock func()
}

func (r *lockWaitBusRepo) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Bus, error) {
	if hook := r.onLock; hook != nil {
		r.onLock = nil
		hook()
	}
	return r.fakeBusRepo.LockByID(ctx, exec, id)
}

func TestPushLocationStampsInLockOrder(t *testing.T) {
	fleet := newFakeFleet()
	fleet.addBus("bus-1", "B-01", 40)
	tx, mock := newTxProviderMock(t)
	repo := &lockWaitBusRepo{fakeBusRepo: &fakeBusRepo{fleet: fleet}}
	history := NewLocationHistoryService(&fakeHistoryRepo{fleet: fleet}, &fakeBusRepo{fleet: fleet}, nil, nil, LocationHistoryConfig{})
	svc := NewTrackingService(repo, history, &invalidationSpy{}, tx, nil, nil, nil)

	tick := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectCommit()
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })

	first := locationRequest(models.DirectionDeparture, 5, nil)
	first.CurrentLocation = "Stop A"
	second := locationRequest(models.DirectionDeparture, 7, nil)
	second.CurrentLocation = "Stop B"

	repo.onLock = func() {
		_, err := svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, second)
		require.NoError(t, err)
	}
	_, err := svc.PushLocationUpdate(context.Background(), "bus-1", adminCaller, first)
	require.NoError(t, err)

	bus := fleet.bus("bus-1")
	assert.Equal(t, "Stop A", bus.CurrentLocation)

	entries, err := history.List(context.Background(), "bus-1", dto.LocationHistoryQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Stop A", entries[0].Location)
	assert.Equal(t, "Stop B", entries[1].Location)
	assert.True(t, entries[0].RecordedAt.After(entries[1].RecordedAt))
	require.NotNil(t, bus.LastUpdated)
	assert.Equal(t, entries[0].RecordedAt, *bus.LastUpdated)
}
