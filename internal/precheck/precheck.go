// Package precheck derives verification questions and ontology warnings
// from enriched edits. Everything here is deterministic and offline:
// no network calls, no model cost.
package precheck

import (
	"fmt"

	"github.com/ppiankov/vigil/internal/diff"
	"github.com/ppiankov/vigil/internal/model"
)

// knownMetaItems are Wikidata-internal types that are never valid
// real-world classes. A new editor pointing P31/P279 at one of these has
// usually picked the wrong search result.
var knownMetaItems = map[string]bool{
	"Q4167410":  true, // Wikimedia disambiguation page
	"Q4167836":  true, // Wikimedia category
	"Q11266439": true, // Wikimedia template
	"Q13406463": true, // Wikimedia list article
	"Q19847637": true, // Wikidata property type for external identifiers
}

// Question templates a natural-language verification question for an
// enriched edit, with any ontology warnings appended. Returns the empty
// string when the edit summary was not parsed.
func Question(edit *model.Edit) string {
	q := baseQuestion(edit)
	if q == "" {
		return ""
	}
	for _, warning := range OntologyWarnings(edit) {
		q += "\n\nWARNING: " + warning
	}
	return q
}

// baseQuestion picks the template for the edit's diff kind. The refined
// kind from the diff engine wins over the operation-based mapping, which
// covers unenriched edits.
func baseQuestion(edit *model.Edit) string {
	parsed := edit.ParsedEdit
	if parsed == nil {
		return ""
	}

	prop := parsed.PropertyLabel
	if prop == "" {
		prop = parsed.Property
	}
	value := parsed.ValueLabel
	if value == "" {
		value = parsed.ValueRaw
	}
	item := "unknown item"
	if edit.Item != nil && edit.Item.LabelEn != "" {
		item = edit.Item.LabelEn
	} else if edit.Title != "" {
		item = edit.Title
	}

	kind := diff.KindForOperation(parsed.Operation)
	if edit.EditDiff != nil && edit.EditDiff.Type != "" {
		kind = edit.EditDiff.Type
	}

	switch kind {
	case model.DiffStatementRemoved:
		return fmt.Sprintf("Was \"%s\" correctly removed as %s for %s?", value, prop, item)
	case model.DiffStatementAdded:
		return fmt.Sprintf("Is \"%s\" a correct %s for %s?", value, prop, item)
	case model.DiffValueChanged:
		return fmt.Sprintf("Is \"%s\" a correct updated %s for %s?", value, prop, item)
	case model.DiffReferenceAdded:
		return fmt.Sprintf("Does the added reference support the %s claim for %s?", prop, item)
	case model.DiffReferenceChanged:
		return fmt.Sprintf("Does the updated reference support the %s claim for %s?", prop, item)
	case model.DiffReferenceRemoved:
		return fmt.Sprintf("Was the reference correctly removed from the %s claim for %s?", prop, item)
	case model.DiffQualifierAdded:
		return fmt.Sprintf("Is \"%s\" a correct qualifier for the %s claim on %s?", value, prop, item)
	case model.DiffQualifierChanged:
		return fmt.Sprintf("Is \"%s\" a correct updated qualifier for the %s claim on %s?", value, prop, item)
	case model.DiffQualifierRemoved:
		return fmt.Sprintf("Was the qualifier correctly removed from the %s claim for %s?", prop, item)
	case model.DiffRankChanged:
		return fmt.Sprintf("Is the rank change on the %s claim correct for %s?", prop, item)
	default:
		return fmt.Sprintf("Is the edit to %s (\"%s\") correct for %s?", prop, value, item)
	}
}

// OntologyWarnings runs consistency checks against class-membership
// edits (P31 instance-of, P279 subclass-of). The meta-item check works
// without item context; the other two need the item's existing claims.
func OntologyWarnings(edit *model.Edit) []string {
	parsed := edit.ParsedEdit
	if parsed == nil {
		return nil
	}
	if parsed.Property != "P31" && parsed.Property != "P279" {
		return nil
	}

	var warnings []string

	if knownMetaItems[parsed.ValueRaw] {
		value := parsed.ValueLabel
		if value == "" {
			value = parsed.ValueRaw
		}
		warnings = append(warnings, fmt.Sprintf(
			"new value %s is a Wikidata-internal type, not a real-world class", value))
	}

	if parsed.Property == "P279" && itemStates(edit, "P31", "Q5") {
		warnings = append(warnings,
			"P279 (subclass of) is for classes, not instances, and this item is an instance of human (Q5)")
	}

	if parsed.Property == "P31" && parsed.ValueRaw == "Q5" && itemHasStatements(edit, "P279") {
		warnings = append(warnings,
			"this item has subclass of (P279) statements and looks like a class, not an instance of human (Q5)")
	}

	return warnings
}

// itemStates reports whether the item's existing claims state the given
// value for the property
func itemStates(edit *model.Edit, property, value string) bool {
	if edit.Item == nil {
		return false
	}
	claims, ok := edit.Item.Claims[property]
	if !ok {
		return false
	}
	for _, statement := range claims.Statements {
		if statement.Value == value {
			return true
		}
	}
	return false
}

// itemHasStatements reports whether the item has any statement for the property
func itemHasStatements(edit *model.Edit, property string) bool {
	if edit.Item == nil {
		return false
	}
	claims, ok := edit.Item.Claims[property]
	return ok && len(claims.Statements) > 0
}
