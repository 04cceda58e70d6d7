package catalog

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("catalog entry not found")

// Service is a bookable salon treatment.
type Service struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Category        string  `json:"category,omitempty"`
	Active          bool    `json:"active"`
}

// Client is a salon customer record.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog holds the client and service collections the booking ledger
// references by id.
type Catalog struct {
	mu           sync.RWMutex
	services     map[string]Service
	clients      map[string]Client
	serviceOrder []string
	clientOrder  []string

	newID func() string
	now   func() time.Time
}

func New() *Catalog {
	return &Catalog{
		services: map[string]Service{},
		clients:  map[string]Client{},
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (c *Catalog) AddService(s Service) Service {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.ID == "" {
		s.ID = c.newID()
	}
	s.Name = strings.TrimSpace(s.Name)
	if _, exists := c.services[s.ID]; !exists {
		c.serviceOrder = append(c.serviceOrder, s.ID)
	}
	c.services[s.ID] = s
	return s
}

func (c *Catalog) Service(id string) (Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.services[id]
	if !ok {
		return Service{}, ErrNotFound
	}
	return s, nil
}

func (c *Catalog) Services() []Service {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Service, 0, len(c.serviceOrder))
	for _, id := range c.serviceOrder {
		out = append(out, c.services[id])
	}
	return out
}

func (c *Catalog) AddClient(cl Client) Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl.ID == "" {
		cl.ID = c.newID()
	}
	if cl.CreatedAt.IsZero() {
		cl.CreatedAt = c.now()
	}
	cl.Name = strings.TrimSpace(cl.Name)
	if _, exists := c.clients[cl.ID]; !exists {
		c.clientOrder = append(c.clientOrder, cl.ID)
	}
	c.clients[cl.ID] = cl
	return cl
}

func (c *Catalog) Client(id string) (Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cl, ok := c.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return cl, nil
}

func (c *Catalog) Clients() []Client {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Client, 0, len(c.clientOrder))
	for _, id := range c.clientOrder {
		out = append(out, c.clients[id])
	}
	return out
}
