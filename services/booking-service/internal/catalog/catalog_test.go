package catalog

import (
	"errors"
	"testing"
	"time"
)

func TestAddServiceAssignsID(t *testing.T) {
	c := New()

	svc := c.AddService(Service{Name: "  Bridal Updo  ", DurationMinutes: 90, Price: 120, Active: true})
	if svc.ID == "" {
		t.Fatal("expected a generated id")
	}
	if svc.Name != "Bridal Updo" {
		t.Fatalf("expected trimmed name, got %q", svc.Name)
	}

	got, err := c.Service(svc.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got != svc {
		t.Fatalf("lookup returned %+v, want %+v", got, svc)
	}
}

func TestServiceNotFound(t *testing.T) {
	c := New()
	if _, err := c.Service("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Client("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServicesPreserveInsertionOrder(t *testing.T) {
	c := New()
	c.AddService(Service{ID: "a", Name: "A", DurationMinutes: 30})
	c.AddService(Service{ID: "b", Name: "B", DurationMinutes: 30})
	c.AddService(Service{ID: "a", Name: "A updated", DurationMinutes: 45})

	services := c.Services()
	if len(services) != 2 {
		t.Fatalf("re-adding an id must update in place, got %d services", len(services))
	}
	if services[0].ID != "a" || services[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", services[0].ID, services[1].ID)
	}
	if services[0].Name != "A updated" {
		t.Fatalf("expected updated name, got %q", services[0].Name)
	}
}

func TestAddClientDefaults(t *testing.T) {
	c := New()
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	cl := c.AddClient(Client{Name: "Sarah Johnson", Email: "sarah.j@email.com"})
	if cl.ID == "" {
		t.Fatal("expected a generated id")
	}
	if !cl.CreatedAt.Equal(fixed) {
		t.Fatalf("expected CreatedAt defaulted to now, got %s", cl.CreatedAt)
	}

	clients := c.Clients()
	if len(clients) != 1 || clients[0].ID != cl.ID {
		t.Fatalf("unexpected clients list: %+v", clients)
	}
}

func TestSeedDefaultServices(t *testing.T) {
	c := New()
	c.SeedDefaultServices()

	services := c.Services()
	if len(services) != 8 {
		t.Fatalf("expected 8 seeded services, got %d", len(services))
	}

	svc, err := c.Service("svc-womens-haircut")
	if err != nil {
		t.Fatalf("seeded service missing: %v", err)
	}
	if svc.DurationMinutes != 60 || svc.Price != 75 {
		t.Fatalf("unexpected seeded service: %+v", svc)
	}
	for _, s := range services {
		if !s.Active {
			t.Fatalf("seeded service %s should be active", s.ID)
		}
		if s.DurationMinutes <= 0 || s.Price <= 0 {
			t.Fatalf("seeded service %s has invalid duration or price", s.ID)
		}
	}
}
