package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bobbykesh/lms/internal/domain/valueobject"
)

// Client is a borrower record. Ids are canonical strings; loans reference a
// client by id without owning it. A client is never deleted, and after
// creation only the blacklist flag changes.
type Client struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Blacklisted bool   `json:"is_blacklisted"`
}

// NewClient registers a new client. Name is required; phone and address are
// free text.
func NewClient(name, phone, address string) (Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Client{}, fmt.Errorf("%w: client name is required", valueobject.ErrValidation)
	}
	return Client{
		ID:      uuid.New().String(),
		Name:    name,
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
	}, nil
}
