package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/GophTasks/internal/models"
)

// ErrTokenDecode marks a token whose payload cannot be read. It never
// reaches callers; the store turns it into a forced sign-out.
var ErrTokenDecode = errors.New("decode token")

// DecodeIdentity reads the user identity from the token's payload segment.
// Neither the header nor the signature is looked at; the service remains
// the authority on whether the token is valid.
func DecodeIdentity(token string) (*models.UserIdentity, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: expected header.payload[.signature]", ErrTokenDecode)
	}
	payload, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenDecode, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenDecode, err)
	}

	var id string
	switch sub := claims["sub"].(type) {
	case string:
		id = sub
	case float64:
		id = strconv.FormatInt(int64(sub), 10)
	}
	username, _ := claims["username"].(string)

	if id == "" || username == "" {
		return nil, fmt.Errorf("%w: missing sub or username claim", ErrTokenDecode)
	}
	return &models.UserIdentity{ID: id, Username: username}, nil
}
