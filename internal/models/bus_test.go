package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusStartsAtDepot(t *testing.T) {
	bus := NewBus("B-12", "KA-01-1234", "CH-1", "EN-1", 40, 10)

	assert.Equal(t, DepotLocation, bus.CurrentLocation)
	assert.Equal(t, BusStatusMaintenance, bus.Status)
	assert.Equal(t, DirectionDeparture, bus.CurrentDirection)
	assert.Equal(t, PassengerCounts{}, bus.PassengerCounts)
	assert.Equal(t, 40, bus.AvailableSeats())
}

func TestResetToDepotKeepsSlots(t *testing.T) {
	driver := "drv-1"
	route := "route-9"
	msg := "flat tyre"
	count := 12
	bus := NewBus("B-12", "KA-01-1234", "CH-1", "EN-1", 40, 0)
	bus.DriverID = &driver
	bus.RouteID = &route
	bus.Status = BusStatusInTransit
	bus.CurrentLocation = "Library Stop"
	bus.CurrentDirection = DirectionReturn
	bus.PassengerCounts = PassengerCounts{Students: 12, Others: 2}
	bus.Attendance = Attendance{Count: &count}
	bus.AlertMessage = &msg

	bus.ResetToDepot()

	assert.Equal(t, DepotLocation, bus.CurrentLocation)
	assert.Equal(t, BusStatusMaintenance, bus.Status)
	assert.Equal(t, DirectionDeparture, bus.CurrentDirection)
	assert.Zero(t, bus.Onboard())
	assert.Nil(t, bus.Attendance.Count)
	assert.Nil(t, bus.AlertMessage)
	assert.Equal(t, &driver, bus.DriverID)
	assert.Equal(t, &route, bus.RouteID)
}

func TestPassengerCountsWith(t *testing.T) {
	counts := PassengerCounts{Students: 3, Others: 1}
	updated := counts.With(PassengerOthers, 4)

	assert.Equal(t, 1, counts.Of(PassengerOthers))
	assert.Equal(t, 4, updated.Of(PassengerOthers))
	assert.Equal(t, 3, updated.Of(PassengerStudents))
	assert.Equal(t, 7, updated.Onboard())
}

func TestBusSlots(t *testing.T) {
	bus := &Bus{}
	id := "cond-1"
	bus.SetSlot(PersonnelConductor, &id)

	assert.Nil(t, bus.Slot(PersonnelDriver))
	assert.Equal(t, &id, bus.Slot(PersonnelConductor))
	assert.Equal(t, "conductor_id", PersonnelConductor.BusColumn())
	assert.Equal(t, "drivers", PersonnelDriver.Table())
	assert.False(t, PersonnelRole("cleaner").Valid())
}

func TestBusJSONNestsPassengers(t *testing.T) {
	bus := NewBus("B-1", "R-1", "C-1", "E-1", 30, 0)
	bus.PassengerCounts = PassengerCounts{Students: 5, Others: 2}

	raw, err := json.Marshal(BusDetail{Bus: *bus})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	passengers, ok := decoded["current_passengers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), passengers["students"])
	assert.Equal(t, float64(2), passengers["others"])
	assert.Contains(t, decoded, "attendance")
	assert.Equal(t, "B-1", decoded["bus_number"])
}
