package model

// ProxyService is a purchasing-agent contact record. Items reference proxies
// by id; the reference is not an ownership relation.
type ProxyService struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contactInfo,omitempty"`
	Website     string `json:"website,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Key returns the document key.
func (p ProxyService) Key() string { return p.ID }
