package crm

// Customer is a person or agency that can raise inquiries
type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	Store     string `json:"store" validate:"required"`
	Contact   string `json:"contact" validate:"required"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// SameIdentity reports whether two customers share the exact (name, store) pair
func (c Customer) SameIdentity(other Customer) bool {
	return c.Name == other.Name && c.Store == other.Store
}
