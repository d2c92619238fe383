// internal/app/system/wsticket/wsticket.go

// Package wsticket issues the short-lived signed tickets that authenticate
// websocket upgrades. Mobile websocket clients cannot attach Authorization
// headers, so an authenticated client first requests a ticket over HTTP and
// then presents it as a query parameter on the upgrade request.
package wsticket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/securecookie"
)

// TTL is how long an issued ticket stays redeemable.
const TTL = 30 * time.Second

var ErrInvalid = errors.New("invalid or expired websocket ticket")

type payload struct {
	UserID   string
	IssuedAt int64
}

// Issuer signs and redeems tickets. A ticket redeems exactly once; replays
// inside the TTL are refused.
type Issuer struct {
	codec *securecookie.SecureCookie
	now   func() time.Time

	mu   sync.Mutex
	used map[string]time.Time
}

// NewIssuer builds an Issuer from the signing key. The key should be the
// same strength as a session key; tickets carry no secrets but gate the
// event stream.
func NewIssuer(key string) *Issuer {
	sc := securecookie.New([]byte(key), nil)
	sc.MaxAge(int(TTL.Seconds()))
	return &Issuer{codec: sc, now: time.Now, used: make(map[string]time.Time)}
}

// Issue creates a ticket for userID.
func (i *Issuer) Issue(userID string) (string, error) {
	return i.codec.Encode("ws", payload{UserID: userID, IssuedAt: i.now().Unix()})
}

// Redeem verifies a ticket and returns the user it was issued to. A second
// redemption of the same ticket fails.
func (i *Issuer) Redeem(ticket string) (string, error) {
	var p payload
	if err := i.codec.Decode("ws", ticket, &p); err != nil {
		return "", ErrInvalid
	}
	if i.now().Sub(time.Unix(p.IssuedAt, 0)) > TTL {
		return "", ErrInvalid
	}
	if !i.markUsed(ticket) {
		return "", ErrInvalid
	}
	return p.UserID, nil
}

// markUsed records a redemption, pruning entries old enough that the TTL
// check would refuse them anyway.
func (i *Issuer) markUsed(ticket string) bool {
	now := i.now()
	i.mu.Lock()
	defer i.mu.Unlock()
	for t, at := range i.used {
		if now.Sub(at) > TTL {
			delete(i.used, t)
		}
	}
	if _, dup := i.used[ticket]; dup {
		return false
	}
	i.used[ticket] = now
	return true
}
