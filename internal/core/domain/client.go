package domain

// Client is the slice of the client registry this engine needs for response
// enrichment. Client lifecycle (creation, obligations, documents) is owned by
// the management console backend, not by this service.
type Client struct {
	ClientID    string `json:"clientID"` // Primary Key (UUID)
	DisplayName string `json:"displayName"`
	TaxID       string `json:"taxID"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}
