package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// DefaultTicketTTL bounds how long a private match invitation stays valid.
const DefaultTicketTTL = 24 * time.Hour

const ticketIssuer = "roevhul"

var (
	ErrTicketsDisabled = errors.New("join tickets are not configured")
	ErrInvalidTicket   = errors.New("invalid join ticket")
)

// TicketService signs and checks join tickets for private matches.
type TicketService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTicketService returns a service signing with secret. An empty secret disables tickets.
func NewTicketService(secret string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a secret is configured.
func (s *TicketService) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Issue returns a ticket admitting its bearer to matchID.
func (s *TicketService) Issue(matchID, issuedBy string) (string, error) {
	if !s.Enabled() {
		return "", ErrTicketsDisabled
	}
	now := s.now()
	claims := jwt.StandardClaims{
		Id:        uuid.NewString(),
		Issuer:    ticketIssuer,
		Subject:   matchID,
		Audience:  []string{issuedBy},
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return token, nil
}

// Verify checks that ticket was issued by this service for matchID and has not expired.
func (s *TicketService) Verify(ticket, matchID string) error {
	if !s.Enabled() {
		return ErrTicketsDisabled
	}
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if claims.Issuer != ticketIssuer || claims.Subject != matchID {
		return fmt.Errorf("%w: issued for another match", ErrInvalidTicket)
	}
	return nil
}
