package diff

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/wikidata"
)

// Resolver supplies display labels during serialization. The label
// cache satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, id string) string
	ResolveDescription(ctx context.Context, id string) string
}

// SnakValue renders a snak's value for display. The second return is
// the resolved label for entity values, empty for everything else.
func SnakValue(ctx context.Context, snak wikidata.Snak, r Resolver) (string, string) {
	// somevalue and novalue carry no datavalue; the snaktype itself is
	// the most honest rendering
	if snak.SnakType != "value" || snak.DataValue == nil {
		return snak.SnakType, ""
	}

	decoded, err := snak.DataValue.Decode()
	if err != nil {
		// Malformed datavalue: show the raw JSON rather than dropping
		// the snak
		return string(snak.DataValue.Value), ""
	}

	switch v := decoded.(type) {
	case wikidata.EntityIDValue:
		id := v.EntityID()
		return id, r.Resolve(ctx, id)
	case wikidata.TimeValue:
		return v.Time, ""
	case wikidata.QuantityValue:
		return v.Amount, ""
	case string:
		return v, ""
	case wikidata.GlobeCoordinateValue:
		return formatCoordinate(v), ""
	case wikidata.MonolingualTextValue:
		return v.Text, ""
	case wikidata.RawValue:
		return v.String(), ""
	default:
		return fmt.Sprintf("%v", decoded), ""
	}
}

// formatCoordinate renders "lat,lon" with minimal float formatting
func formatCoordinate(v wikidata.GlobeCoordinateValue) string {
	lat := strconv.FormatFloat(v.Latitude, 'f', -1, 64)
	lon := strconv.FormatFloat(v.Longitude, 'f', -1, 64)
	return lat + "," + lon
}

// SerializeStatement renders one claim into its display form:
// value, rank, and the first snak of every reference and qualifier
// property. Empty references and qualifiers serialize as empty
// containers, not null.
func SerializeStatement(ctx context.Context, claim wikidata.Claim, r Resolver) *model.Statement {
	value, valueLabel := SnakValue(ctx, claim.MainSnak, r)

	st := &model.Statement{
		Value:      value,
		ValueLabel: valueLabel,
		Rank:       claim.Rank,
		References: []model.Reference{},
		Qualifiers: map[string]model.SnakDetail{},
	}

	for _, ref := range claim.References {
		block := model.Reference{}
		for pid, snaks := range ref.Snaks {
			if len(snaks) == 0 {
				continue
			}
			block[pid] = snakDetail(ctx, pid, snaks[0], r)
		}
		st.References = append(st.References, block)
	}

	for pid, snaks := range claim.Qualifiers {
		if len(snaks) == 0 {
			continue
		}
		st.Qualifiers[pid] = snakDetail(ctx, pid, snaks[0], r)
	}

	return st
}

func snakDetail(ctx context.Context, pid string, snak wikidata.Snak, r Resolver) model.SnakDetail {
	value, valueLabel := SnakValue(ctx, snak, r)
	return model.SnakDetail{
		PropertyLabel: r.Resolve(ctx, pid),
		Value:         value,
		ValueLabel:    valueLabel,
	}
}

// SerializeClaims renders all claims for item context. Properties whose
// statements are external identifiers are skipped; they are catalog
// plumbing, not facts a judge can verify.
func SerializeClaims(ctx context.Context, claims map[string][]wikidata.Claim, r Resolver) map[string]model.PropertyClaims {
	out := make(map[string]model.PropertyClaims, len(claims))

	for pid, claimList := range claims {
		if len(claimList) == 0 {
			continue
		}
		if claimList[0].MainSnak.DataType == "external-id" {
			continue
		}

		statements := make([]model.Statement, 0, len(claimList))
		for _, c := range claimList {
			statements = append(statements, *SerializeStatement(ctx, c, r))
		}

		out[pid] = model.PropertyClaims{
			PropertyLabel: r.Resolve(ctx, pid),
			Statements:    statements,
		}
	}

	return out
}

// CollectEntityIDs walks properties, mainsnaks, qualifiers, and
// reference snaks, returning every entity ID that will need label
// resolution during serialization. One batch resolve of this set makes
// serialization itself fetch-free.
func CollectEntityIDs(claims map[string][]wikidata.Claim) []string {
	seen := make(map[string]bool)
	var ids []string

	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	addSnak := func(s wikidata.Snak) {
		if s.SnakType != "value" || s.DataValue == nil || s.DataValue.Type != "wikibase-entityid" {
			return
		}
		decoded, err := s.DataValue.Decode()
		if err != nil {
			return
		}
		if v, ok := decoded.(wikidata.EntityIDValue); ok {
			add(v.EntityID())
		}
	}

	for pid, claimList := range claims {
		add(pid)
		for _, claim := range claimList {
			addSnak(claim.MainSnak)
			for _, ref := range claim.References {
				for refPid, snaks := range ref.Snaks {
					add(refPid)
					for _, s := range snaks {
						addSnak(s)
					}
				}
			}
			for qualPid, snaks := range claim.Qualifiers {
				add(qualPid)
				for _, s := range snaks {
					addSnak(s)
				}
			}
		}
	}

	return ids
}
