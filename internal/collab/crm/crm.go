// Package crm implements the CRM port against a fixture dataset. It stands
// in for the operator's customer system in development and tests; the
// lookup and ticket semantics match what the production integration
// provides.
package crm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aurida/helpline/pkg/domain"
	"github.com/aurida/helpline/pkg/ports"
)

// Service is an in-memory CRM backed by a fixture customer set.
type Service struct {
	mu        sync.Mutex
	byPhone   map[string]domain.Customer
	customers []domain.Customer
	tickets   []ports.TicketRequest
}

var _ ports.CRMService = (*Service)(nil)

// New creates a CRM service over the given customers.
func New(customers []domain.Customer) *Service {
	byPhone := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		byPhone[normalizePhone(c.Phone)] = c
	}
	return &Service{
		byPhone:   byPhone,
		customers: customers,
	}
}

// Load parses a yaml fixture document and builds a Service from it.
func Load(data []byte) (*Service, error) {
	var doc struct {
		Customers []struct {
			ID        string `yaml:"id"`
			Name      string `yaml:"name"`
			Phone     string `yaml:"phone"`
			Addresses []struct {
				City        string `yaml:"city"`
				Street      string `yaml:"street"`
				HouseNumber string `yaml:"house_number"`
				Apartment   string `yaml:"apartment"`
			} `yaml:"addresses"`
		} `yaml:"customers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse customer fixtures: %w", err)
	}

	customers := make([]domain.Customer, 0, len(doc.Customers))
	for i, rec := range doc.Customers {
		if rec.ID == "" {
			return nil, fmt.Errorf("customer fixture %d is missing an id", i)
		}
		c := domain.Customer{
			CustomerID: rec.ID,
			Name:       rec.Name,
			Phone:      rec.Phone,
		}
		for _, addr := range rec.Addresses {
			c.Addresses = append(c.Addresses, domain.Address{
				City:        addr.City,
				Street:      addr.Street,
				HouseNumber: addr.HouseNumber,
				Apartment:   addr.Apartment,
			})
		}
		customers = append(customers, c)
	}
	return New(customers), nil
}

// LookupByPhone finds the customer registered under phone.
func (s *Service) LookupByPhone(_ context.Context, phone string) (*ports.LookupResult, error) {
	c, ok := s.byPhone[normalizePhone(phone)]
	if !ok {
		return &ports.LookupResult{}, nil
	}
	return &ports.LookupResult{Found: true, Customer: c}, nil
}

// LookupByAddress matches customers by service address. City and street are
// required; house number and apartment narrow the match further when given.
func (s *Service) LookupByAddress(_ context.Context, city, street, houseNumber, apartment string) (*ports.LookupResult, error) {
	if city == "" || street == "" {
		return &ports.LookupResult{}, nil
	}
	for _, c := range s.customers {
		for _, addr := range c.Addresses {
			if !matchField(addr.City, city) || !matchField(addr.Street, street) {
				continue
			}
			if houseNumber != "" && !matchField(addr.HouseNumber, houseNumber) {
				continue
			}
			if apartment != "" && !matchField(addr.Apartment, apartment) {
				continue
			}
			return &ports.LookupResult{Found: true, Customer: c}, nil
		}
	}
	return &ports.LookupResult{}, nil
}

// CreateTicket records an escalation ticket and returns its id.
func (s *Service) CreateTicket(_ context.Context, req ports.TicketRequest) (*ports.TicketResult, error) {
	if req.CustomerID == "" {
		return &ports.TicketResult{}, nil
	}

	s.mu.Lock()
	s.tickets = append(s.tickets, req)
	s.mu.Unlock()

	return &ports.TicketResult{
		Success:  true,
		TicketID: "TCK-" + strings.ToUpper(uuid.NewString()[:8]),
	}, nil
}

// Tickets returns the tickets created so far.
func (s *Service) Tickets() []ports.TicketRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.TicketRequest, len(s.tickets))
	copy(out, s.tickets)
	return out
}

func matchField(have, want string) bool {
	return strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want))
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	// Lithuanian numbers circulate as 86..., +3706... and 3706...; compare
	// on the national significant part.
	if strings.HasPrefix(digits, "370") && len(digits) > 3 {
		digits = "8" + digits[3:]
	}
	return digits
}
