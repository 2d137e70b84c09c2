package model

// Account is a user's financial account. It is read-only to the extraction core.
type Account struct {
	ID            string `json:"id" mapstructure:"id"`
	Name          string `json:"name" mapstructure:"name"`
	AccountNumber string `json:"account_number,omitempty" mapstructure:"account_number"`
	Type          string `json:"type" mapstructure:"type"`
}
