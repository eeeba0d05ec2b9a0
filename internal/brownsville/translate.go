package brownsville

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var defaultTranslations []byte

// Translations maps the category id columns to their human-readable labels.
type Translations struct {
	UnitType      map[int64]string `yaml:"unittype"`
	SpaceType     map[int64]string `yaml:"spacetype"`
	Type          map[int64]string `yaml:"type"`
	MajorCategory map[int64]string `yaml:"majorcategory"`
	MinorCategory map[int64]string `yaml:"minorcategory"`
	Code          map[int64]string `yaml:"code"`
}

// LoadTranslations reads an id→label table from the given YAML file, falling
// back to the embedded default table when path is empty.
func LoadTranslations(path string) (*Translations, error) {
	data := defaultTranslations
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "translations: read %s", path)
		}
		data = fileData
	}

	var t Translations
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "translations: parse")
	}
	return &t, nil
}

func lookup(table map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	return table[*id]
}

// Apply fills the label columns of a record from its id columns. Ids with no
// translation entry leave the label empty.
func (t *Translations) Apply(r *Record) {
	r.UnitType = lookup(t.UnitType, r.UnitTypeID)
	r.SpaceType = lookup(t.SpaceType, r.SpaceTypeID)
	r.Type = lookup(t.Type, r.TypeID)
	r.MajorCategory = lookup(t.MajorCategory, r.MajorCategoryID)
	r.MinorCategory = lookup(t.MinorCategory, r.MinorCategoryID)
	r.Code = lookup(t.Code, r.CodeID)
}

// ownerTypes translates the PLUTO owner-type code to a human label.
var ownerTypes = map[string]string{
	"C": "CITY OWNERSHIP",
	"M": "MIXED CITY & PRIVATE OWNERSHIP",
	"O": "OTHER (PUBLIC AUTHORITY OR THE STATE/FEDERAL GOVERNMENT)",
	"P": "PRIVATE OWNERSHIP",
	"X": "FULLY TAX-EXEMPT PROPERTY (MAYBE OWNED BY THE CITY)",
}

// unknownOwnerType is the fill value for parcels with no owner-type code.
const unknownOwnerType = "UNKNOWN (USUALLY PRIVATE OWNERSHIP)"

// unknownStatus is the fill value for rows with no status description.
const unknownStatus = "UNKNOWN STATUS"

// shortDescriptions maps the full HPD status-description sentences onto short
// canonical phrases. Sentences outside this table are knowingly left as-is.
var shortDescriptions = map[string]string{
	"The Department of Housing Preservation and Development inspected the following conditions. No violations were issued. The complaint has been closed.":                                                                                                                                                                                                                   "Inspected; no violations issued",
	"The Department of Housing Preservation and Development inspected the following conditions. Violations were issued. Information about specific violations is available at www.nyc.gov/hpd.":                                                                                                                                                                              "Inspected; violations issued",
	"The Department of Housing Preservation and Development was not able to gain access to inspect the following conditions. The complaint has been closed. If the condition still exists, please file a new complaint.":                                                                                                                                                     "Unable to gain access",
	"More than one complaint was received for this building-wide condition.This complaint status is for the initial complaint. The Department of Housing Preservation and Development contacted an occupant of the apartment and verified that the following conditions were corrected. The complaint has been closed. If the condition still exists, please file a new complaint.": "Multiple complaints; tenant confirmed resolved",
	"More than one complaint was received for this building-wide condition.This complaint status is for the initial complaint. The Department of Housing Preservation and Development contacted a tenant in the building and verified that the following conditions were corrected. The complaint has been closed. If the condition still exists, please file a new complaint.":      "Multiple complaints; tenant confirmed resolved",
	"The Department of Housing Preservation and Development responded to a complaint of no heat or hot water and was advised by a tenant in the building that heat and hot water had been restored. If the condition still exists, please file a new complaint.":                                                                                                              "Single complaint; tenant confirmed resolved",
	"The Department of Housing Preservation and Development was not able to gain access to your apartment or others in the building to inspect for a lack of heat or hot water. The complaint has been closed. If the condition still exists, please file a new complaint.":                                                                                                   "Unable to gain access",
	"The Department of Housing Preservation and Development contacted an occupant of the apartment and verified that the following conditions were corrected. The complaint has been closed. If the condition still exists, please file a new complaint.":                                                                                                                    "Inspected; no violations issued",
	"The Department of Housing Preservation and Development inspected the following conditions. Violations were previously issued for these conditions. Information about specific violations is available at www.nyc.gov/hpd.":                                                                                                                                               "Inspected; violations previously issued",
	"The Department of Housing Preservation and Development was unable to access the rooms where the following conditions were reported. No violations were issued. The complaint has been closed.":                                                                                                                                                                          "Unable to gain access",
	"The Department of Housing Preservation and Development contacted a tenant in the building and verified that the following conditions were corrected. The complaint has been closed. If the condition still exists, please file a new complaint.":                                                                                                                        "Single complaint; tenant confirmed resolved",
	"The Department of Housing Preservation and Development was not able to gain access to your apartment to inspect for a lack of heat or hot water. However, HPD was able to verify that heat or hot water was inadequate by inspecting another apartment and a violation was issued. Information about specific violations is available at www.nyc.gov/hpd.":               "Unable to gain access; violation issued",
	"The following complaint conditions are still open. HPD may attempt to contact you to verify the correction of the condition or may conduct an inspection.":                                                                                                                                                                                                              "Complaint remains open",
	"The Department of Housing Preservation and Development was not able to gain access to inspect the conditions. If the conditions still exist and an inspection is required, please contact the borough office with your complaint number at":                                                                                                                              "Unable to gain access",
	"The Department of Housing Preservation and Development responded to a complaint of no heat or hot water. Heat was not required at the time of the inspection. No violations were issued. If the condition still exists, please file a new complaint.":                                                                                                                    "Inspected; no violations issued",
	"More than one complaint was received for this building-wide condition. This complaint status is for the initial complaint.The Department of Housing Preservation and Development contacted an occupant of the apartment and verified that the following conditions were corrected. The complaint has been closed. If the condition still exists, please file a new complaint.": "Multiple complaints; tenant confirmed resolved",
	"More than one complaint was received for this building-wide condition. This complaint status is for the initial complaint.The Department of Housing Preservation and Development contacted a tenant in the building and verified that the following conditions were corrected. The complaint has been closed. If the condition still exists, please file a new complaint.":      "Multiple complaints; tenant confirmed resolved",
	"The Department of Housing Preservation and Development inspected the following conditions. Violations were issued. However, HPD also identified potential lead-based paint conditions and will attempt to contact you to schedule a follow-up inspection to test the paint for lead. Information about specific violations is available at www.nyc.gov/hpd.":              "Inspected; violations issued",
	"More than one complaint was received for this building-wide condition.This complaint status is for the initial complaint. The following complaint conditions are still open. HPD may attempt to contact you to verify the correction of the condition or may conduct an inspection.":                                                                                     "Complaint remains open",
	"The Department of Housing Preservation and Development was unable to access the rooms where the following  conditions were reported. No violations were issued. The complaint has been closed.":                                                                                                                                                                         "Unable to gain access",
	"The Department of Housing Preservation and Development inspected the following conditions. A Section 8 Failure was issued. Both the tenant and the property owner will receive a notice in the mail regarding the details of the Failure and the resulting action by the Agency.":                                                                                        "Inspected; violations issued",
	unknownStatus: unknownStatus,
}

// shortDescription collapses a full status-description sentence to its short
// phrase. Unmapped text is returned unchanged rather than guessed at.
func shortDescription(full string) string {
	if short, ok := shortDescriptions[full]; ok {
		return short
	}
	return full
}
