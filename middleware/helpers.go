package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/checkmate-cup/services"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Имена JWT claims. sub - стандартный subject, user_id - для старых токенов.
const (
	jwtClaimSubject  = "sub"
	jwtClaimUserID   = "user_id"
	jwtClaimEmail    = "email"
	jwtClaimMetadata = "user_metadata"
)

var ErrNoClaims = errors.New("user claims not found in context")

func userIDFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, name := range []string{jwtClaimSubject, jwtClaimUserID} {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return uuid.Nil, fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, raw)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid '%s' claim: %w", name, err)
		}
		if id == uuid.Nil {
			return uuid.Nil, fmt.Errorf("empty '%s' claim", name)
		}
		return id, nil
	}
	return uuid.Nil, fmt.Errorf("missing '%s' claim in token", jwtClaimSubject)
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrNoClaims
	}
	return userIDFromClaims(claims)
}

// OptionalUserID returns nil for anonymous requests.
func OptionalUserID(ctx context.Context) *uuid.UUID {
	id, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil
	}
	return &id
}

// GetIdentityFromContext собирает профильные данные из claims (email и user_metadata).
func GetIdentityFromContext(ctx context.Context) (services.Identity, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return services.Identity{}, ErrNoClaims
	}
	id, err := userIDFromClaims(claims)
	if err != nil {
		return services.Identity{}, err
	}

	identity := services.Identity{UserID: id}
	identity.Email, _ = claims[jwtClaimEmail].(string)
	if meta, ok := claims[jwtClaimMetadata].(map[string]interface{}); ok {
		identity.Username, _ = meta["username"].(string)
		identity.FullName, _ = meta["full_name"].(string)
		identity.AvatarURL, _ = meta["avatar_url"].(string)
	}
	return identity, nil
}
