package wikidata

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Entity is the JSON shape of a Wikidata entity as served by
// Special:EntityData and wbgetentities.
type Entity struct {
	ID           string             `json:"id"`
	Labels       map[string]Term    `json:"labels"`
	Descriptions map[string]Term    `json:"descriptions"`
	Claims       map[string][]Claim `json:"claims"`
}

// Term is a label or description in one language
type Term struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Claim is one statement on an entity
type Claim struct {
	ID         string            `json:"id"`
	MainSnak   Snak              `json:"mainsnak"`
	Qualifiers map[string][]Snak `json:"qualifiers,omitempty"`
	References []ReferenceBlock  `json:"references,omitempty"`
	Rank       string            `json:"rank"`
}

// ReferenceBlock is one reference attached to a claim
type ReferenceBlock struct {
	Hash       string            `json:"hash,omitempty"`
	Snaks      map[string][]Snak `json:"snaks"`
	SnaksOrder []string          `json:"snaks-order,omitempty"`
}

// Snak is a single property-value assertion. DataValue is nil for
// snaktype somevalue and novalue.
type Snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property"`
	DataType  string     `json:"datatype,omitempty"`
	DataValue *DataValue `json:"datavalue,omitempty"`
}

// DataValue is the tagged union Wikibase uses for snak values
type DataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// EntityIDValue points at another entity
type EntityIDValue struct {
	EntityType string `json:"entity-type"`
	ID         string `json:"id"`
	NumericID  int64  `json:"numeric-id"`
}

// EntityID returns the full ID, deriving it from the numeric form when
// the dump predates the explicit id field.
func (v EntityIDValue) EntityID() string {
	if v.ID != "" {
		return v.ID
	}
	prefix := "Q"
	if v.EntityType == "property" {
		prefix = "P"
	}
	return prefix + strconv.FormatInt(v.NumericID, 10)
}

// TimeValue is a point in time with calendar metadata
type TimeValue struct {
	Time          string `json:"time"`
	Precision     int    `json:"precision"`
	CalendarModel string `json:"calendarmodel,omitempty"`
}

// QuantityValue is an amount with an optional unit
type QuantityValue struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit,omitempty"`
}

// GlobeCoordinateValue is a latitude/longitude pair
type GlobeCoordinateValue struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Precision float64 `json:"precision,omitempty"`
}

// MonolingualTextValue is text in a single language
type MonolingualTextValue struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// RawValue wraps a datavalue type this code does not model. New
// Wikibase value types degrade to a string rendering, never an error.
type RawValue struct {
	Type string
	JSON json.RawMessage
}

// String renders the raw JSON as-is
func (v RawValue) String() string {
	return string(v.JSON)
}

// Decode returns the concrete Go value for the variant tag
func (d *DataValue) Decode() (interface{}, error) {
	switch d.Type {
	case "wikibase-entityid":
		var v EntityIDValue
		if err := json.Unmarshal(d.Value, &v); err != nil {
			return nil, fmt.Errorf("decode entityid value: %w", err)
		}
		return v, nil
	case "time":
		var v TimeValue
		if err := json.Unmarshal(d.Value, &v); err != nil {
			return nil, fmt.Errorf("decode time value: %w", err)
		}
		return v, nil
	case "quantity":
		var v QuantityValue
		if err := json.Unmarshal(d.Value, &v); err != nil {
			return nil, fmt.Errorf("decode quantity value: %w", err)
		}
		return v, nil
	case "string":
		var v string
		if err := json.Unmarshal(d.Value, &v); err != nil {
			return nil, fmt.Errorf("decode string value: %w", err)
		}
		return v, nil
	case "globecoordinate":
		var v GlobeCoordinateValue
		if err := json.Unmarshal(d.Value, &v); err != nil {
			return nil, fmt.Errorf("decode coordinate value: %w", err)
		}
		return v, nil
	case "monolingualtext":
		var v MonolingualTextValue
		if err := json.Unmarshal(d.Value, &v); err != nil {
			return nil, fmt.Errorf("decode monolingualtext value: %w", err)
		}
		return v, nil
	default:
		return RawValue{Type: d.Type, JSON: d.Value}, nil
	}
}

// Label returns the entity's label in the given language, if any
func (e *Entity) Label(lang string) (string, bool) {
	if e == nil || e.Labels == nil {
		return "", false
	}
	term, ok := e.Labels[lang]
	if !ok || term.Value == "" {
		return "", false
	}
	return term.Value, true
}

// Description returns the entity's description in the given language, if any
func (e *Entity) Description(lang string) (string, bool) {
	if e == nil || e.Descriptions == nil {
		return "", false
	}
	term, ok := e.Descriptions[lang]
	if !ok || term.Value == "" {
		return "", false
	}
	return term.Value, true
}
