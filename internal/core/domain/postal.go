package domain

// PostOffice is one result of a postal-code lookup, used to prefill
// city and state on profile forms.
type PostOffice struct {
	Name     string `json:"name"`
	District string `json:"district"`
	State    string `json:"state"`
}
