// File: services/admin_gate.go
package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"school-vote/logger"
)

// AdminToken proves a successful Authenticate call. Results operations
// take it as an explicit argument.
type AdminToken struct {
	ID       string
	IssuedAt time.Time
}

// AdminGate keeps casual visitors off the results screen with a shared
// password. It is a convenience, not access control: anyone who learns
// the password gets in, and there are no per-user accounts.
type AdminGate struct {
	hash []byte
	ttl  time.Duration
	now  func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time // id -> issued at
}

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// NewAdminGate checks passwords against passwordHash. Tokens expire after
// ttl; a zero ttl keeps them until revoked.
func NewAdminGate(passwordHash []byte, ttl time.Duration) *AdminGate {
	return &AdminGate{
		hash:   passwordHash,
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

// Authenticate issues a new token when password matches.
func (g *AdminGate) Authenticate(password string) (AdminToken, error) {
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		logger.Warn.Println("AdminGate.Authenticate: wrong results password")
		return AdminToken{}, ErrInvalidCredentials
	}

	tok := AdminToken{ID: uuid.NewString(), IssuedAt: g.now()}

	g.mu.Lock()
	g.pruneLocked()
	g.tokens[tok.ID] = tok.IssuedAt
	g.mu.Unlock()

	logger.Info.Printf("AdminGate.Authenticate: issued results token %s", tok.ID)
	return tok, nil
}

// Verify returns the token for id if it was issued and not revoked or expired.
func (g *AdminGate) Verify(id string) (AdminToken, bool) {
	if id == "" {
		return AdminToken{}, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	issued, ok := g.tokens[id]
	if !ok {
		return AdminToken{}, false
	}
	if g.expired(issued) {
		delete(g.tokens, id)
		return AdminToken{}, false
	}
	return AdminToken{ID: id, IssuedAt: issued}, true
}

// Revoke forgets the token.
func (g *AdminGate) Revoke(id string) {
	g.mu.Lock()
	delete(g.tokens, id)
	g.mu.Unlock()
}

func (g *AdminGate) expired(issued time.Time) bool {
	return g.ttl > 0 && g.now().Sub(issued) > g.ttl
}

func (g *AdminGate) pruneLocked() {
	for id, issued := range g.tokens {
		if g.expired(issued) {
			delete(g.tokens, id)
		}
	}
}
