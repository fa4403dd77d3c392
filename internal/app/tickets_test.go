package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

func TestTicketService_IssueAndVerify(t *testing.T) {
	svc := NewTicketService("test-secret", time.Hour)

	ticket, err := svc.Issue("match-1", "owner")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := svc.Verify(ticket, "match-1"); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	claims := parseTicketClaims(t, ticket, "test-secret")
	if claims["sub"] != "match-1" || claims["iss"] != "roevhul" || fmt.Sprint(claims["aud"]) != "[owner]" {
		t.Fatalf("unexpected claims %v", claims)
	}
}

func TestTicketService_Rejects(t *testing.T) {
	svc := NewTicketService("test-secret", time.Hour)
	ticket, err := svc.Issue("match-1", "owner")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired := NewTicketService("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("match-1", "owner")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		svc     *TicketService
		ticket  string
		matchID string
		want    error
	}{
		{name: "other match", svc: svc, ticket: ticket, matchID: "match-2", want: ErrInvalidTicket},
		{name: "wrong secret", svc: NewTicketService("other", time.Hour), ticket: ticket, matchID: "match-1", want: ErrInvalidTicket},
		{name: "expired", svc: svc, ticket: old, matchID: "match-1", want: ErrInvalidTicket},
		{name: "garbage", svc: svc, ticket: "not-a-token", matchID: "match-1", want: ErrInvalidTicket},
		{name: "disabled", svc: NewTicketService("", 0), ticket: ticket, matchID: "match-1", want: ErrTicketsDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.svc.Verify(tt.ticket, tt.matchID); !errors.Is(err, tt.want) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func parseTicketClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}
