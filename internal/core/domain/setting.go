package domain

// Well-known setting keys with dedicated validation.
const (
	SettingUPIID        = "upi_id"
	SettingBusinessName = "business_name"
	SettingContactPhone = "contact_phone"
)

// Setting is a single site-wide key/value pair.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
