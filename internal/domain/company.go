package domain

// CompanyInfo is the issuer profile printed on every invoice. There is exactly one and
// it is replaced wholesale on save.
type CompanyInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address,omitempty"`
	Logo    string `json:"logo,omitempty"` // URL or base64 data
	Website string `json:"website,omitempty"`
}

// Validate returns an error if the profile is invalid
func (c *CompanyInfo) Validate() error {
	return validateStruct("company", c)
}
