package vehicle

import (
	"strings"
	"time"

	"frontera/internal/lifecycle"
	dErrors "frontera/pkg/domain-errors"
)

// Collection keys, also used as table names and event collection labels.
const (
	CollectionVehicles        = "vehicles"
	CollectionTouristVehicles = "tourist_vehicles"
)

// Vehicle is a crossing-permit record registered at the checkpoint desk.
// Documents are free-form labels; the structured slot variant below is what
// tourists file through self-service.
type Vehicle struct {
	ID        string           `json:"id"`
	Plate     string           `json:"plate"`
	Type      string           `json:"type"`
	Owner     string           `json:"owner"`
	OwnerID   string           `json:"owner_id,omitempty"`
	Status    lifecycle.Status `json:"status"`
	Date      time.Time        `json:"date"`
	Documents []string         `json:"documents,omitempty"`
}

// Document slot names accepted by the tourist self-service endpoints.
const (
	SlotCirculationPermit = "circulation_permit"
	SlotDriverLicense     = "driver_license"
	SlotIDCard            = "id_card"
	SlotInsurance         = "insurance"
	SlotVehicleRegistry   = "vehicle_registry"
)

// DocumentSet holds the tourist vehicle's structured document slots. The
// first three are required; insurance and the vehicle registry never affect
// completeness.
type DocumentSet struct {
	CirculationPermit string `json:"circulation_permit,omitempty"`
	DriverLicense     string `json:"driver_license,omitempty"`
	IDCard            string `json:"id_card,omitempty"`
	Insurance         string `json:"insurance,omitempty"`
	VehicleRegistry   string `json:"vehicle_registry,omitempty"`
}

// Derived tourist-vehicle statuses. Never set directly: recomputed from the
// document set on every mutation.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// DocumentProgress summarizes required-slot completion for display.
type DocumentProgress struct {
	Completed int  `json:"completed"`
	Required  int  `json:"required"`
	Complete  bool `json:"complete"`
}

// Progress recomputes completion from the current slots. It is a pure
// function of document state, never a persisted transition.
func (d DocumentSet) Progress() DocumentProgress {
	required := []string{d.CirculationPermit, d.DriverLicense, d.IDCard}
	completed := 0
	for _, doc := range required {
		if doc != "" {
			completed++
		}
	}
	return DocumentProgress{
		Completed: completed,
		Required:  len(required),
		Complete:  completed == len(required),
	}
}

// Status derives the completeness status from the required slots.
func (d DocumentSet) Status() string {
	if d.Progress().Complete {
		return StatusComplete
	}
	return StatusIncomplete
}

func (d *DocumentSet) slot(name string) (*string, error) {
	switch name {
	case SlotCirculationPermit:
		return &d.CirculationPermit, nil
	case SlotDriverLicense:
		return &d.DriverLicense, nil
	case SlotIDCard:
		return &d.IDCard, nil
	case SlotInsurance:
		return &d.Insurance, nil
	case SlotVehicleRegistry:
		return &d.VehicleRegistry, nil
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "unknown document slot")
	}
}

// Attach stores a document file name in the named slot.
func (d *DocumentSet) Attach(name, fileName string) error {
	slot, err := d.slot(name)
	if err != nil {
		return err
	}
	*slot = fileName
	return nil
}

// Clear empties the named slot.
func (d *DocumentSet) Clear(name string) error {
	slot, err := d.slot(name)
	if err != nil {
		return err
	}
	*slot = ""
	return nil
}

// TouristVehicle is the self-service variant with structured document slots.
// Its status is the derived completeness, not the review workflow.
type TouristVehicle struct {
	ID        string      `json:"id"`
	Plate     string      `json:"plate"`
	Type      string      `json:"type"`
	Owner     string      `json:"owner"`
	OwnerID   string      `json:"owner_id,omitempty"`
	Status    string      `json:"status"`
	Date      time.Time   `json:"date"`
	Documents DocumentSet `json:"documents"`
}

// NormalizePlate uppercases and trims a plate the way the entry forms do.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
