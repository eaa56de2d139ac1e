package catalog

import "slices"

// FieldName names one slot of an appointment record.
type FieldName string

const (
	ServiceType    FieldName = "service_type"
	PreferredDate  FieldName = "preferred_date"
	PreferredTime  FieldName = "preferred_time"
	BikeDetails    FieldName = "bike_details"
	SpecificIssues FieldName = "specific_issues"
	ContactInfo    FieldName = "contact_info"
)

// Catalog is the read-only definition of the appointment fields.
// The order of Required is the order in which missing fields are requested.
type Catalog struct {
	required []FieldName
	optional []FieldName
	labels   map[FieldName]string
}

var defaultCatalog = New(
	[]FieldName{ServiceType, PreferredDate, PreferredTime},
	[]FieldName{BikeDetails, SpecificIssues, ContactInfo},
)

// Default returns the service-appointment catalog.
func Default() *Catalog {
	return defaultCatalog
}

func New(required, optional []FieldName) *Catalog {
	c := &Catalog{
		required: slices.Clone(required),
		optional: slices.Clone(optional),
		labels:   make(map[FieldName]string, len(required)+len(optional)),
	}
	for _, f := range c.Fields() {
		c.labels[f] = humanize(f)
	}
	return c
}

// Required returns a copy of the required fields in priority order.
func (c *Catalog) Required() []FieldName {
	return slices.Clone(c.required)
}

func (c *Catalog) Optional() []FieldName {
	return slices.Clone(c.optional)
}

// Fields returns required fields followed by optional ones.
func (c *Catalog) Fields() []FieldName {
	return append(slices.Clone(c.required), c.optional...)
}

func (c *Catalog) Contains(name FieldName) bool {
	return c.IsRequired(name) || slices.Contains(c.optional, name)
}

func (c *Catalog) IsRequired(name FieldName) bool {
	return slices.Contains(c.required, name)
}

// Label is the human readable name of a field, e.g. "preferred date".
func (c *Catalog) Label(name FieldName) string {
	if l, ok := c.labels[name]; ok {
		return l
	}
	return humanize(name)
}

func humanize(name FieldName) string {
	b := []byte(name)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}
