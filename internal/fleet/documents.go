package fleet

// requiredDocuments maps entity kind -> certificate type -> documents the recipient must upload.
var requiredDocuments = map[Kind]map[string][]string{
	KindVehicle: {
		"registration_expiry_date": {"V5C registration certificate"},
		"plate_expiry_date":        {"Council vehicle plate licence"},
		"insurance_expiry_date":    {"Certificate of motor insurance", "Insurance schedule"},
		"mot_date":                 {"MOT certificate"},
		"tax_date":                 {"Vehicle tax confirmation"},
		"loler_expiry_date":        {"LOLER inspection report"},
		"first_aid_expiry":         {"First aid kit check record"},
		"fire_extinguisher_expiry": {"Fire extinguisher service certificate"},
	},
	KindDriver: {
		"tas_badge_expiry_date":             {"TAS badge (front and back)"},
		"taxi_badge_expiry_date":            {"Taxi driver badge"},
		"dbs_expiry_date":                   {"Enhanced DBS certificate", "DBS update service check"},
		"first_aid_certificate_expiry_date": {"First aid certificate"},
		"driving_license_expiry_date":       {"Driving licence (front and back)", "DVLA check code"},
	},
	KindAssistant: {
		"tas_badge_expiry_date": {"TAS badge (front and back)"},
		"dbs_expiry_date":       {"Enhanced DBS certificate", "DBS update service check"},
	},
}

// RequiredDocuments returns the upload checklist for a certificate, or a generic entry.
func RequiredDocuments(k Kind, certificateType string) []string {
	if docs, ok := requiredDocuments[k][certificateType]; ok {
		out := make([]string, len(docs))
		copy(out, docs)
		return out
	}
	return []string{"Updated certificate"}
}
