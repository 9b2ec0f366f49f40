package domain

import (
	"strconv"
	"time"
)

// Entity is a flaggable content object known to the service.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	ID        int64     `json:"id"`
}

// URLInfo names the route that renders an entity, plus its parameters.
type URLInfo struct {
	RouteParameters map[string]string `json:"route_parameters"`
	RouteName       string            `json:"route_name"`
}

// CanonicalRouteName returns the canonical route name for an entity type,
// e.g. "entity.node.canonical".
func CanonicalRouteName(entityType string) string {
	return "entity." + entityType + ".canonical"
}

// URLInfo returns the canonical location of the entity.
func (e *Entity) URLInfo() URLInfo {
	return URLInfo{
		RouteName: CanonicalRouteName(e.Type),
		RouteParameters: map[string]string{
			e.Type: strconv.FormatInt(e.ID, 10),
		},
	}
}

// Key returns "type:id", unique across entity types.
func (e *Entity) Key() string {
	return e.Type + ":" + strconv.FormatInt(e.ID, 10)
}
