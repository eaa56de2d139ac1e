package booking

import "github.com/SaiNageswarS/booking-agent/catalog"

// NextMissingField returns the first required field, in catalog order, that
// has no non-empty value in record. ok is false when the record is complete.
func NextMissingField(record Record, required []catalog.FieldName) (field catalog.FieldName, ok bool) {
	for _, f := range required {
		if !record.Has(f) {
			return f, true
		}
	}
	return "", false
}

// Complete reports whether every required field has a value.
func Complete(record Record, required []catalog.FieldName) bool {
	_, missing := NextMissingField(record, required)
	return !missing
}
