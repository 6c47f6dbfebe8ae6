package model

// ListingFields is the subset of a property sent to the text generator
type ListingFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Address     string `json:"address"`
}

// FieldsOf returns the generator input for a property
func FieldsOf(p *Property) ListingFields {
	return ListingFields{Title: p.Title, Description: p.Description, Price: p.Price, Address: p.Address}
}
