package models

// MenuItem is an orderable catalog entry. The engine only reads it to take
// price and name snapshots; the catalog itself is managed elsewhere.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}
