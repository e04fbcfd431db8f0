package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "slfcert/pkg/domain"
	dErrors "slfcert/pkg/domain-errors"
	"slfcert/pkg/requestcontext"
)

// Claims are the access token claims issued by the external auth system.
// Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService validates actor tokens. Token issuance lives in the auth system;
// GenerateActorToken exists for local tooling and tests.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

func (s *JWTService) GenerateActorToken(userID id.UserID, role id.Role, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ResolveActor validates a token and converts its claims to the actor the
// workflow engine reasons about.
func (s *JWTService) ResolveActor(tokenString string) (requestcontext.ActorInfo, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return requestcontext.ActorInfo{}, err
	}
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return requestcontext.ActorInfo{}, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a user id")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return requestcontext.ActorInfo{}, dErrors.New(dErrors.CodeUnauthorized, "token role is not recognized")
	}
	return requestcontext.ActorInfo{ID: userID, Role: role}, nil
}
