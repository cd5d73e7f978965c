package jwttoken

import (
	authmw "lanewise/pkg/platform/middleware/auth"
)

// JWTServiceAdapter bridges JWTService to the auth middleware's validator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (authmw.Identity, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return authmw.Identity{}, err
	}
	return authmw.Identity{AgentID: claims.AgentID, Role: claims.Role}, nil
}
