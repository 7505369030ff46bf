package minor

import (
	"slices"
	"time"

	dErrors "frontera/pkg/domain-errors"
)

// Collection keys, also used as table names and event collection labels.
const (
	CollectionMinors        = "minors"
	CollectionTouristMinors = "tourist_minors"
)

// Derived statuses. Never set directly: recomputed from the documents on
// every mutation.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// Minor is the legacy desk-filed travel authorization. Documents are
// free-form labels; the record is complete once at least two are attached.
type Minor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Guardian  string    `json:"guardian"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
	Documents []string  `json:"documents,omitempty"`
}

// DeriveStatus recomputes the legacy completeness rule.
func (m *Minor) DeriveStatus() {
	if len(m.Documents) >= 2 {
		m.Status = StatusComplete
	} else {
		m.Status = StatusIncomplete
	}
}

// AttachDocument adds a document label once.
func (m *Minor) AttachDocument(label string) {
	if !slices.Contains(m.Documents, label) {
		m.Documents = append(m.Documents, label)
	}
	m.DeriveStatus()
}

// RemoveDocument drops a document label if present.
func (m *Minor) RemoveDocument(label string) {
	m.Documents = slices.DeleteFunc(m.Documents, func(d string) bool { return d == label })
	m.DeriveStatus()
}

// Document slot names accepted by the tourist self-service endpoints.
const (
	SlotIDCard                = "id_card"
	SlotNotarialAuthorization = "notarial_authorization"
)

// DocumentSet holds the tourist minor's structured slots. The id card is
// always required; the notarial authorization only when the accompanying
// adult is not direct family.
type DocumentSet struct {
	IDCard                string `json:"id_card,omitempty"`
	NotarialAuthorization string `json:"notarial_authorization,omitempty"`
}

func (d *DocumentSet) slot(name string) (*string, error) {
	switch name {
	case SlotIDCard:
		return &d.IDCard, nil
	case SlotNotarialAuthorization:
		return &d.NotarialAuthorization, nil
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

// DocumentProgress summarizes required-document completion. The required
// count is dynamic: one document for direct family, two otherwise.
type DocumentProgress struct {
	Completed int  `json:"completed"`
	Required  int  `json:"required"`
	Complete  bool `json:"complete"`
}

// TouristMinor is the self-service travel authorization with structured
// document slots and the direct-family relationship flag.
type TouristMinor struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Age            int         `json:"age"`
	Guardian       string      `json:"guardian"`
	IsDirectFamily bool        `json:"is_direct_family"`
	OwnerID        string      `json:"owner_id,omitempty"`
	Status         string      `json:"status"`
	Date           time.Time   `json:"date"`
	Documents      DocumentSet `json:"documents"`
}

// Complete applies the authorization rule: id card present, and a notarial
// authorization unless the accompanying adult is direct family.
func (m TouristMinor) Complete() bool {
	return m.Documents.IDCard != "" && (m.IsDirectFamily || m.Documents.NotarialAuthorization != "")
}

// DeriveStatus recomputes the derived status from the documents.
func (m *TouristMinor) DeriveStatus() {
	if m.Complete() {
		m.Status = StatusComplete
	} else {
		m.Status = StatusIncomplete
	}
}

// Progress reports required-document completion for display.
func (m TouristMinor) Progress() DocumentProgress {
	required := 2
	if m.IsDirectFamily {
		required = 1
	}
	completed := 0
	if m.Documents.IDCard != "" {
		completed++
	}
	if !m.IsDirectFamily && m.Documents.NotarialAuthorization != "" {
		completed++
	}
	return DocumentProgress{Completed: completed, Required: required, Complete: m.Complete()}
}
