package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-fleet-api/internal/models"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

// fakeFleet is an in-memory store shared by the fake repositories. Reads
// return copies so a service can only change state through writes.
type fakeFleet struct {
	buses      map[string]*models.Bus
	drivers    *fakePersonnelRepo
	conductors *fakePersonnelRepo
	routes     map[string]*models.Route
	history    []models.LocationHistory
	seq        int64

	busUpdateErr error
	appendErr    error
	appendCalls  int
	detailErr    error
}

func newFakeFleet() *fakeFleet {
	f := &fakeFleet{
		buses:  map[string]*models.Bus{},
		routes: map[string]*models.Route{},
	}
	f.drivers = &fakePersonnelRepo{fleet: f, role: models.PersonnelDriver, people: map[string]*models.Personnel{}}
	f.conductors = &fakePersonnelRepo{fleet: f, role: models.PersonnelConductor, people: map[string]*models.Personnel{}}
	return f
}

func (f *fakeFleet) repoFor(role models.PersonnelRole) *fakePersonnelRepo {
	if role == models.PersonnelConductor {
		return f.conductors
	}
	return f.drivers
}

func (f *fakeFleet) addBus(id, number string, seating int) *models.Bus {
	bus := models.NewBus(number, "REG-"+number, "CH-"+number, "EN-"+number, seating, 10)
	bus.ID = id
	f.buses[id] = bus
	return bus
}

func (f *fakeFleet) addPerson(role models.PersonnelRole, id, name string) *models.Personnel {
	person := &models.Personnel{ID: id, Role: role, FullName: name, EmployeeCode: "EMP-" + id}
	f.repoFor(role).people[id] = person
	return person
}

func (f *fakeFleet) addRoute(id, name string) {
	f.routes[id] = &models.Route{ID: id, Name: name}
}

// bind sets up an assignment directly, keeping both sides in sync.
func (f *fakeFleet) bind(busID string, role models.PersonnelRole, personID string) {
	id := personID
	f.buses[busID].SetSlot(role, &id)
	bus := busID
	f.repoFor(role).people[personID].AssignedBusID = &bus
}

func (f *fakeFleet) bus(id string) models.Bus {
	return *f.buses[id]
}

func (f *fakeFleet) person(role models.PersonnelRole, id string) models.Personnel {
	return *f.repoFor(role).people[id]
}

// assignmentViolations lists every break of the two-sided assignment rule.
func (f *fakeFleet) assignmentViolations() []string {
	var out []string
	for _, role := range models.PersonnelRoles {
		holders := map[string]string{}
		for _, bus := range f.buses {
			slot := bus.Slot(role)
			if slot == nil {
				continue
			}
			if other, ok := holders[*slot]; ok {
				out = append(out, fmt.Sprintf("%s %s on buses %s and %s", role, *slot, other, bus.ID))
			}
			holders[*slot] = bus.ID
			person, ok := f.repoFor(role).people[*slot]
			if !ok {
				out = append(out, fmt.Sprintf("bus %s references missing %s %s", bus.ID, role, *slot))
				continue
			}
			if person.AssignedBusID == nil || *person.AssignedBusID != bus.ID {
				out = append(out, fmt.Sprintf("%s %s does not point back at bus %s", role, *slot, bus.ID))
			}
		}
		for _, person := range f.repoFor(role).people {
			if person.AssignedBusID == nil {
				continue
			}
			if holders[person.ID] != *person.AssignedBusID {
				out = append(out, fmt.Sprintf("%s %s points at bus %s which does not hold it", role, person.ID, *person.AssignedBusID))
			}
		}
	}
	sort.Strings(out)
	return out
}

func copyBus(b *models.Bus) *models.Bus {
	c := *b
	return &c
}

func copyPerson(p *models.Personnel) *models.Personnel {
	c := *p
	return &c
}

type fakeBusRepo struct {
	fleet *fakeFleet
}

func (r *fakeBusRepo) List(ctx context.Context, filter models.BusFilter) ([]models.BusDetail, error) {
	out := make([]models.BusDetail, 0, len(r.fleet.buses))
	for id := range r.fleet.buses {
		bus := r.fleet.buses[id]
		if filter.Status != nil && bus.Status != *filter.Status {
			continue
		}
		if filter.RouteID != nil && (bus.RouteID == nil || *bus.RouteID != *filter.RouteID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(bus.BusNumber), strings.ToLower(filter.Search)) {
			continue
		}
		detail, _ := r.FindDetailByID(ctx, nil, id)
		out = append(out, *detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusNumber < out[j].BusNumber })
	return out, nil
}

func (r *fakeBusRepo) FindByID(ctx context.Context, id string) (*models.Bus, error) {
	bus, ok := r.fleet.buses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyBus(bus), nil
}

func (r *fakeBusRepo) FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BusDetail, error) {
	if r.fleet.detailErr != nil {
		return nil, r.fleet.detailErr
	}
	bus, ok := r.fleet.buses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	detail := &models.BusDetail{Bus: *bus}
	if bus.DriverID != nil {
		if p, ok := r.fleet.drivers.people[*bus.DriverID]; ok {
			name := p.FullName
			detail.DriverName = &name
		}
	}
	if bus.ConductorID != nil {
		if p, ok := r.fleet.conductors.people[*bus.ConductorID]; ok {
			name := p.FullName
			detail.ConductorName = &name
		}
	}
	if bus.RouteID != nil {
		if route, ok := r.fleet.routes[*bus.RouteID]; ok {
			name := route.Name
			detail.RouteName = &name
		}
	}
	return detail, nil
}

func (r *fakeBusRepo) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Bus, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBusRepo) FindByPersonnel(ctx context.Context, exec sqlx.ExtContext, role models.PersonnelRole, personID string, lock bool) (*models.Bus, error) {
	for _, bus := range r.fleet.buses {
		if slot := bus.Slot(role); slot != nil && *slot == personID {
			return copyBus(bus), nil
		}
	}
	return nil, nil
}

func (r *fakeBusRepo) FindIdentityClash(ctx context.Context, identity models.BusIdentity, excludeID string) (string, error) {
	for _, bus := range r.fleet.buses {
		if bus.ID == excludeID {
			continue
		}
		switch {
		case bus.BusNumber == identity.BusNumber:
			return "bus_number", nil
		case bus.RegistrationNumber == identity.RegistrationNumber:
			return "registration_number", nil
		case bus.ChassisNumber == identity.ChassisNumber:
			return "chassis_number", nil
		case bus.EngineNumber == identity.EngineNumber:
			return "engine_number", nil
		}
	}
	return "", nil
}

func (r *fakeBusRepo) Create(ctx context.Context, bus *models.Bus) error {
	if bus.ID == "" {
		bus.ID = fmt.Sprintf("bus-%d", len(r.fleet.buses)+1)
	}
	r.fleet.buses[bus.ID] = copyBus(bus)
	return nil
}

func (r *fakeBusRepo) Update(ctx context.Context, exec sqlx.ExtContext, bus *models.Bus) error {
	if r.fleet.busUpdateErr != nil {
		return r.fleet.busUpdateErr
	}
	if _, ok := r.fleet.buses[bus.ID]; !ok {
		return sql.ErrNoRows
	}
	r.fleet.buses[bus.ID] = copyBus(bus)
	return nil
}

func (r *fakeBusRepo) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, ok := r.fleet.buses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.fleet.buses, id)
	return nil
}

type fakePersonnelRepo struct {
	fleet  *fakeFleet
	role   models.PersonnelRole
	people map[string]*models.Personnel
	locked [][]string
}

func (r *fakePersonnelRepo) Role() models.PersonnelRole { return r.role }

func (r *fakePersonnelRepo) List(ctx context.Context) ([]models.PersonnelDetail, error) {
	out := make([]models.PersonnelDetail, 0, len(r.people))
	for _, p := range r.people {
		detail := models.PersonnelDetail{Personnel: *p}
		if p.AssignedBusID != nil {
			if bus, ok := r.fleet.buses[*p.AssignedBusID]; ok {
				number := bus.BusNumber
				detail.AssignedBusNumber = &number
			}
		}
		out = append(out, detail)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakePersonnelRepo) FindByID(ctx context.Context, id string) (*models.Personnel, error) {
	p, ok := r.people[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyPerson(p), nil
}

func (r *fakePersonnelRepo) LockByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) (map[string]*models.Personnel, error) {
	r.locked = append(r.locked, append([]string(nil), ids...))
	out := map[string]*models.Personnel{}
	for _, id := range ids {
		if p, ok := r.people[id]; ok {
			out[id] = copyPerson(p)
		}
	}
	return out, nil
}

func (r *fakePersonnelRepo) EmployeeCodeTaken(ctx context.Context, code, excludeID string) (bool, error) {
	for _, p := range r.people {
		if p.EmployeeCode == code && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePersonnelRepo) Create(ctx context.Context, person *models.Personnel) error {
	if person.ID == "" {
		person.ID = fmt.Sprintf("%s-%d", r.role, len(r.people)+1)
	}
	person.Role = r.role
	person.AssignedBusID = nil
	person.CreatedAt = time.Now().UTC()
	person.UpdatedAt = person.CreatedAt
	r.people[person.ID] = copyPerson(person)
	return nil
}

func (r *fakePersonnelRepo) Update(ctx context.Context, person *models.Personnel) error {
	current, ok := r.people[person.ID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := copyPerson(person)
	updated.AssignedBusID = current.AssignedBusID
	r.people[person.ID] = updated
	return nil
}

func (r *fakePersonnelRepo) BindBus(ctx context.Context, exec sqlx.ExtContext, personID, busID string) error {
	p, ok := r.people[personID]
	if !ok {
		return sql.ErrNoRows
	}
	id := busID
	p.AssignedBusID = &id
	return nil
}

func (r *fakePersonnelRepo) ReleaseBus(ctx context.Context, exec sqlx.ExtContext, personID, busID string) error {
	if p, ok := r.people[personID]; ok && p.AssignedBusID != nil && *p.AssignedBusID == busID {
		p.AssignedBusID = nil
	}
	return nil
}

func (r *fakePersonnelRepo) ClearBus(ctx context.Context, exec sqlx.ExtContext, busID string) error {
	for _, p := range r.people {
		if p.AssignedBusID != nil && *p.AssignedBusID == busID {
			p.AssignedBusID = nil
		}
	}
	return nil
}

func (r *fakePersonnelRepo) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, ok := r.people[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.people, id)
	return nil
}

type fakeRouteRepo struct {
	fleet *fakeFleet
	err   error
}

func (r *fakeRouteRepo) List(ctx context.Context) ([]models.Route, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Route, 0, len(r.fleet.routes))
	for _, route := range r.fleet.routes {
		out = append(out, *route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRouteRepo) FindByID(ctx context.Context, id string) (*models.Route, error) {
	route, ok := r.fleet.routes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *route
	return &c, nil
}

func (r *fakeRouteRepo) Exists(ctx context.Context, id string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.fleet.routes[id]
	return ok, nil
}

type fakeHistoryRepo struct {
	fleet *fakeFleet
}

func (r *fakeHistoryRepo) Append(ctx context.Context, entry *models.LocationHistory) error {
	r.fleet.appendCalls++
	if r.fleet.appendErr != nil {
		return r.fleet.appendErr
	}
	for _, existing := range r.fleet.history {
		if existing.ID == entry.ID {
			entry.Seq = existing.Seq
			return nil
		}
	}
	r.fleet.seq++
	entry.Seq = r.fleet.seq
	r.fleet.history = append(r.fleet.history, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByBus(ctx context.Context, busID string, limit int) ([]models.LocationHistory, error) {
	out := make([]models.LocationHistory, 0)
	for _, e := range r.fleet.history {
		if e.BusID == busID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.After(out[j].RecordedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeHistoryRepo) DeleteByBus(ctx context.Context, exec sqlx.ExtContext, busID string) (int64, error) {
	kept := r.fleet.history[:0]
	var n int64
	for _, e := range r.fleet.history {
		if e.BusID == busID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.fleet.history = kept
	return n, nil
}

type invalidationSpy struct {
	patterns []string
}

func (s *invalidationSpy) Invalidate(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}
