package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Memory is an in-process Service used for demo mode and tests. Rows keep
// insertion order. Ids are assigned sequentially per resource.
type Memory struct {
	mu     sync.Mutex
	rows   map[string][]Entity
	nextID map[string]int

	// Fail, when set, is consulted before every call; a non-nil return is
	// handed back to the caller instead of touching the data.
	Fail func(op, resource string) error
}

// NewMemory returns an empty in-memory service.
func NewMemory() *Memory {
	return &Memory{
		rows:   make(map[string][]Entity),
		nextID: make(map[string]int),
	}
}

// Seed appends rows to a resource, assigning ids to rows that have none.
func (m *Memory) Seed(resource string, rows ...map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fields := range rows {
		m.insertLocked(resource, fields)
	}
}

func (m *Memory) insertLocked(resource string, fields map[string]any) Entity {
	copied := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		copied[k] = v
	}
	if _, ok := copied["id"]; !ok {
		m.nextID[resource]++
		copied["id"] = strconv.Itoa(m.nextID[resource])
	}
	e := NewEntity(copied)
	m.rows[resource] = append(m.rows[resource], e)
	return e
}

func (m *Memory) fail(op, resource string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, resource)
}

func notFound(resource, id string) error {
	return &Error{Message: fmt.Sprintf("%s %s not found", resource, id), Status: http.StatusNotFound}
}

// List returns every row whose fields equal the given filters. The "search"
// filter is a case-insensitive substring match against every field.
func (m *Memory) List(_ context.Context, resource string, filters url.Values) ([]Entity, error) {
	if err := m.fail("list", resource); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Entity, 0, len(m.rows[resource]))
	for _, e := range m.rows[resource] {
		if matchesFilters(e, filters) {
			out = append(out, e)
		}
	}
	return out, nil
}

func matchesFilters(e Entity, filters url.Values) bool {
	for field, values := range filters {
		if len(values) == 0 {
			continue
		}
		if field == SearchParam {
			if !containsFold(e, values[0]) {
				return false
			}
			continue
		}
		if e.String(field) != values[0] {
			return false
		}
	}
	return true
}

func containsFold(e Entity, q string) bool {
	q = strings.ToLower(q)
	for k := range e.Fields {
		if strings.Contains(strings.ToLower(e.String(k)), q) {
			return true
		}
	}
	return false
}

func (m *Memory) Get(_ context.Context, resource, id string) (Entity, error) {
	if err := m.fail("get", resource); err != nil {
		return Entity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.rows[resource] {
		if e.ID == id {
			return e, nil
		}
	}
	return Entity{}, notFound(resource, id)
}

func (m *Memory) Create(_ context.Context, resource string, payload map[string]any) (Entity, error) {
	if err := m.fail("create", resource); err != nil {
		return Entity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fields := make(map[string]any, len(payload))
	for k, v := range payload {
		if k != "id" {
			fields[k] = v
		}
	}
	return m.insertLocked(resource, fields), nil
}

func (m *Memory) Update(_ context.Context, resource, id string, payload map[string]any) (Entity, error) {
	if err := m.fail("update", resource); err != nil {
		return Entity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.rows[resource] {
		if e.ID != id {
			continue
		}
		fields := e.Payload()
		for k, v := range payload {
			if k != "id" {
				fields[k] = v
			}
		}
		updated := NewEntity(fields)
		m.rows[resource][i] = updated
		return updated, nil
	}
	return Entity{}, notFound(resource, id)
}

func (m *Memory) Delete(_ context.Context, resource, id string) error {
	if err := m.fail("delete", resource); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.rows[resource]
	for i, e := range rows {
		if e.ID == id {
			m.rows[resource] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return notFound(resource, id)
}
