package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EntityType identifies the kind of business entity a transaction links to.
// The values double as the ledger's related_type column.
type EntityType string

const (
	EntityVehicle          EntityType = "car"
	EntityInvestor         EntityType = "invest"
	EntityConsignmentParty EntityType = "jiip"
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case EntityVehicle, EntityInvestor, EntityConsignmentParty:
		return true
	}
	return false
}

// EntityRef points at one entity in the registry.
type EntityRef struct {
	Type EntityType
	ID   string
}

func (r EntityRef) String() string {
	return string(r.Type) + ":" + r.ID
}

// ParseEntityRef parses "type:id". The empty string and "none" yield nil.
func ParseEntityRef(s string) (*EntityRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	typ, id, ok := strings.Cut(s, ":")
	ref := EntityRef{Type: EntityType(strings.ToLower(strings.TrimSpace(typ))), ID: strings.TrimSpace(id)}
	if !ok || ref.ID == "" || !ref.Type.Valid() {
		return nil, fmt.Errorf("invalid entity reference %q (want car:<id>, invest:<id> or jiip:<id>)", s)
	}
	return &ref, nil
}

// Vehicle is a registered fleet vehicle.
type Vehicle struct {
	ID          string
	PlateNumber string
	Model       string
}

// Investor is an investment contract paying monthly interest.
type Investor struct {
	ID           string
	Name         string
	InvestAmount int64
	InterestRate decimal.Decimal // annual, percent
	PaymentDay   int             // 0 means unset
	Active       bool
}

// ConsignmentContract is a consignment (jiip) arrangement with the
// driver/operator named PartyName.
type ConsignmentContract struct {
	ID        string
	PartyName string
	VehicleID string
	PayoutDay int // 0 means unset
	Active    bool
}

// EntitySet is an immutable snapshot of every known entity.
type EntitySet struct {
	Vehicles     []Vehicle
	Investors    []Investor
	Consignments []ConsignmentContract
}

// Contains reports whether ref names an entity in the set.
func (s EntitySet) Contains(ref EntityRef) bool {
	switch ref.Type {
	case EntityVehicle:
		for _, v := range s.Vehicles {
			if v.ID == ref.ID {
				return true
			}
		}
	case EntityInvestor:
		for _, inv := range s.Investors {
			if inv.ID == ref.ID {
				return true
			}
		}
	case EntityConsignmentParty:
		for _, c := range s.Consignments {
			if c.ID == ref.ID {
				return true
			}
		}
	}
	return false
}

// Size returns the number of entities across all kinds.
func (s EntitySet) Size() int {
	return len(s.Vehicles) + len(s.Investors) + len(s.Consignments)
}
