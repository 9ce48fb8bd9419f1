// internal/catalog/domain.go
package catalog

// Placeholder is the value an unselected event-type picker holds.
const Placeholder = "Elige un tipo de evento"

// EventType is a named category of space event with its default resources.
type EventType struct {
	Name      string   `json:"nombre"`
	Resources []string `json:"recursos"`
}

// Defaults returns the built-in event types used when no catalog file is available.
func Defaults() []EventType {
	return []EventType{
		{Name: "Despegue", Resources: []string{"COHETE", "PLATAFORMA"}},
		{Name: "Prueba", Resources: []string{"LABORATORIO", "EQUIPO"}},
		{Name: "Ensayo", Resources: []string{"SISTEMA", "CONTROL"}},
	}
}
