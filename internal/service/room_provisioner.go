package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"telemed-clinic-backend/config"

	"github.com/google/uuid"
)

// Room identifies an external video meeting.
type Room struct {
	Name string
	URL  string
}

// RoomProvisioner mints unique video room identifiers. It persists nothing.
type RoomProvisioner interface {
	Provision(consultationID uuid.UUID) (Room, error)
}

type roomProvisioner struct {
	domain string
	random io.Reader
}

func NewRoomProvisioner(videoDomain string) RoomProvisioner {
	return &roomProvisioner{
		domain: normalizeVideoDomain(videoDomain),
		random: rand.Reader,
	}
}

// Provision returns Telemed_<consultation id>_<8 hex chars> on the configured domain.
func (p *roomProvisioner) Provision(consultationID uuid.UUID) (Room, error) {
	suffix := make([]byte, 4)
	if _, err := io.ReadFull(p.random, suffix); err != nil {
		return Room{}, fmt.Errorf("generate room suffix: %w", err)
	}

	name := fmt.Sprintf("Telemed_%s_%s", consultationID, hex.EncodeToString(suffix))
	return Room{
		Name: name,
		URL:  fmt.Sprintf("https://%s/%s", p.domain, name),
	}, nil
}

func normalizeVideoDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimRight(domain, "/")
	if domain == "" {
		return config.DefaultVideoDomain
	}
	return domain
}
