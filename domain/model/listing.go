package model

// Listing holds the best-effort fields extracted from a listing page.
// Every string field carries a literal fallback when nothing matched.
type Listing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Address     string   `json:"address"`
	Images      []string `json:"images"`
	Agent       *Agent   `json:"agent,omitempty"`
}

type Agent struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}
