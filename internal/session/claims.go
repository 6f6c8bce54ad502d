package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when the token is not a decodable JWT.
var ErrOpaqueToken = errors.New("token is not a JWT")

// Claims is what the client can read from its token without the signing key.
type Claims struct {
	Subject  string
	Username string
	IssuedAt time.Time
}

// Claims decodes the token payload without verifying its signature.
// The result is for display only.
func (s Session) Claims() (Claims, error) {
	var mc jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &mc); err != nil {
		return Claims{}, errors.Join(ErrOpaqueToken, err)
	}

	var c Claims
	// The demo API puts a numeric user id in "sub" and the name in "user".
	switch sub := mc["sub"].(type) {
	case string:
		c.Subject = sub
	case float64:
		c.Subject = strconv.FormatInt(int64(sub), 10)
	}
	if user, ok := mc["user"].(string); ok {
		c.Username = user
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c, nil
}
