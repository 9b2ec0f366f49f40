// Package routing turns named routes and their parameters into URL paths.
package routing

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// Generator builds paths from route templates such as "/node/{node}".
// Entity canonical routes without an explicit template fall back to
// "/<type>/{<type>}".
type Generator struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewGenerator creates a generator with the given route templates.
func NewGenerator(templates map[string]string) (*Generator, error) {
	g := &Generator{templates: make(map[string]string, len(templates))}
	for name, tmpl := range templates {
		if err := g.Register(name, tmpl); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Register adds or replaces a route template.
func (g *Generator) Register(name, template string) error {
	if name == "" {
		return domainerrors.Validation("route name is required")
	}
	if !strings.HasPrefix(template, "/") {
		return domainerrors.Validationf("route %q: template %q must start with /", name, template)
	}

	g.mu.Lock()
	g.templates[name] = template
	g.mu.Unlock()
	return nil
}

// Template returns the template used for a route name.
func (g *Generator) Template(name string) (string, bool) {
	g.mu.RLock()
	tmpl, ok := g.templates[name]
	g.mu.RUnlock()
	if ok {
		return tmpl, true
	}

	if entityType, ok := canonicalEntityType(name); ok {
		return "/" + entityType + "/{" + entityType + "}", true
	}
	return "", false
}

// Generate fills the route's placeholders with params. Values are path escaped.
func (g *Generator) Generate(name string, params map[string]string) (string, error) {
	tmpl, ok := g.Template(name)
	if !ok {
		return "", domainerrors.NotFoundf("route %q not found", name)
	}

	var missing []string
	path := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := params[key]
		if !ok || v == "" {
			missing = append(missing, key)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", domainerrors.Validationf("route %q: missing parameters %s", name, strings.Join(missing, ", "))
	}
	return path, nil
}

// URL returns the path for an entity's URL info.
func (g *Generator) URL(info domain.URLInfo) (string, error) {
	return g.Generate(info.RouteName, info.RouteParameters)
}

// EntityURL returns the canonical path of an entity.
func (g *Generator) EntityURL(e *domain.Entity) (string, error) {
	return g.URL(e.URLInfo())
}

// canonicalEntityType extracts "node" from "entity.node.canonical".
func canonicalEntityType(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "entity.")
	if !ok {
		return "", false
	}
	entityType, ok := strings.CutSuffix(rest, ".canonical")
	if !ok || entityType == "" || strings.Contains(entityType, ".") {
		return "", false
	}
	return entityType, true
}

// ParseTemplates parses "name=/path/{param};name2=/other" into a template map.
func ParseTemplates(s string) (map[string]string, error) {
	out := make(map[string]string)
	for part := range strings.SplitSeq(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, tmpl, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid route %q: expected name=/template", part)
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(tmpl)
	}
	return out, nil
}
