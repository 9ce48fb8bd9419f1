// internal/inventory/domain.go
package inventory

// Resource is a countable consumable with the units currently available.
type Resource struct {
	Name     string `json:"nombre"`
	Quantity int    `json:"cantidad"`
}

// Defaults returns the built-in stock used when no inventory has been persisted.
func Defaults() []Resource {
	return []Resource{
		{Name: "COHETE", Quantity: 5},
		{Name: "PLATAFORMA", Quantity: 3},
		{Name: "LABORATORIO", Quantity: 2},
		{Name: "EQUIPO", Quantity: 10},
	}
}
