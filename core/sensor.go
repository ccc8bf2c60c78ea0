package core

import (
	"fmt"
	"strings"

	"github.com/dvla-io/dvla/api"
)

const (
	// Domain identifies devices and entities of this integration
	Domain = "dvla"

	// ConfigurationURL is the device configuration url announced to Home Assistant
	ConfigurationURL = "https://github.com/jampez77/DVLA-Vehicle-Checker/"

	// Unknown is the state of a sensor whose key is missing from the vehicle record
	Unknown = "unknown"
)

// Description describes a sensor entity
type Description struct {
	Key  string
	Name string
	Icon string
}

// SensorTypes are the sensors exposed per vehicle
var SensorTypes = []Description{
	{Key: "registrationNumber", Name: "Registration Number", Icon: "mdi:car"},
	{Key: "taxStatus", Name: "Tax Status", Icon: "mdi:car"},
	{Key: "taxDueDate", Name: "Tax Due Date", Icon: "mdi:calendar-clock"},
	{Key: "motStatus", Name: "Mot Status", Icon: "mdi:car"},
	{Key: "make", Name: "Make", Icon: "mdi:car"},
	{Key: "yearOfManufacture", Name: "Year of Manufacture", Icon: "mdi:car"},
	{Key: "engineCapacity", Name: "Engine Capacity", Icon: "mdi:engine"},
	{Key: "co2Emissions", Name: "CO2 Emissions", Icon: "mdi:engine"},
	{Key: "fuelType", Name: "Fuel Type", Icon: "mdi:engine"},
	{Key: "markedForExport", Name: "Marked for Export", Icon: "mdi:export"},
	{Key: "colour", Name: "Colour", Icon: "mdi:spray"},
	{Key: "typeApproval", Name: "Type Approval", Icon: "mdi:car"},
	{Key: "revenueWeight", Name: "Revenue Weight", Icon: "mdi:weight"},
	{Key: "dateOfLastV5CIssued", Name: "Date of Last V5C Issued", Icon: "mdi:calendar"},
	{Key: "motExpiryDate", Name: "Mot Expiry Date", Icon: "mdi:calendar-check"},
	{Key: "wheelplan", Name: "Wheelplan", Icon: "mdi:car"},
	{Key: "monthOfFirstRegistration", Name: "Month of First Registration", Icon: "mdi:calendar"},
}

// DeviceInfo groups the sensors of a vehicle into a device
type DeviceInfo struct {
	Identifiers      [][2]string `json:"identifiers"`
	Manufacturer     string      `json:"manufacturer,omitempty"`
	Name             string      `json:"name"`
	ConfigurationURL string      `json:"configurationUrl"`
}

// Sensor is a read-only view on a single field of the coordinator's vehicle record
type Sensor struct {
	Description
	coordinator *Coordinator
	name        string
}

// NewSensor creates a sensor view for the given description
func NewSensor(coordinator *Coordinator, name string, description Description) *Sensor {
	return &Sensor{
		Description: description,
		coordinator: coordinator,
		name:        name,
	}
}

// UniqueID returns the entity's unique id
func (s *Sensor) UniqueID() string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%s", Domain, s.name, s.Key))
}

// DeviceInfo returns the device the sensor belongs to
func (s *Sensor) DeviceInfo() DeviceInfo {
	manufacturer, _ := s.coordinator.Data().String("make")

	return DeviceInfo{
		Identifiers:      [][2]string{{Domain, s.name}},
		Manufacturer:     manufacturer,
		Name:             strings.ToUpper(s.name),
		ConfigurationURL: ConfigurationURL,
	}
}

// Available returns true if the coordinator holds vehicle data
func (s *Sensor) Available() bool {
	return !s.coordinator.Data().Empty()
}

// NativeValue returns the sensor's state
func (s *Sensor) NativeValue() string {
	return s.value(s.coordinator.Data())
}

func (s *Sensor) value(data api.Record) string {
	if val, ok := data.String(s.Key); ok {
		return val
	}
	return Unknown
}

// ExtraStateAttributes returns the complete vehicle record
func (s *Sensor) ExtraStateAttributes() api.Record {
	return attributes(s.coordinator.Data())
}

func attributes(data api.Record) api.Record {
	if data != nil {
		return data
	}
	return api.Record{}
}

// State is the serializable sensor state
type State struct {
	UniqueID   string     `json:"uniqueId"`
	Name       string     `json:"name"`
	Icon       string     `json:"icon"`
	State      string     `json:"state"`
	Available  bool       `json:"available"`
	Attributes api.Record `json:"attributes"`
}

// State returns a consistent snapshot of the sensor
func (s *Sensor) State() State {
	data := s.coordinator.Data()

	return State{
		UniqueID:   s.UniqueID(),
		Name:       s.Name,
		Icon:       s.Icon,
		State:      s.value(data),
		Available:  !data.Empty(),
		Attributes: attributes(data),
	}
}
