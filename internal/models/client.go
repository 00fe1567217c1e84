package models

// Client mirrors one row of the clients table. The table is maintained by
// the console backend; this service only reads it.
type Client struct {
	ClientID    string `json:"clientID"` // Primary Key (UUID)
	DisplayName string `json:"displayName"`
	TaxID       string `json:"taxID"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}
