package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Servicio que consulta al microservicio externo de autenticación.
type AuthService struct {
	authURL string
	client  *http.Client
	cache   *gocache.Cache
}

type AuthUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	Login       string   `json:"login"`
	Enabled     bool     `json:"enabled"`
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUserDisabled = errors.New("user disabled")
)

// Crea el servicio de autenticación. Los tokens válidos se guardan en
// memoria durante cacheTTL (0 desactiva el cache).
func NewAuthService(authURL string, cacheTTL time.Duration) *AuthService {
	a := &AuthService{
		authURL: authURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	if cacheTTL > 0 {
		a.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return a
}

// Verifica si el usuario tiene permiso de administrador.
func (a *AuthService) IsAdmin(user *AuthUser) bool {
	return slices.Contains(user.Permissions, "admin")
}

// Valida el token consultando a /users/current del microservicio de auth.
func (a *AuthService) ValidateToken(ctx context.Context, token string) (*AuthUser, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if a.cache != nil {
		if v, ok := a.cache.Get(token); ok {
			return v.(*AuthUser), nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/users/current", a.authURL), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}

	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	if a.cache != nil {
		a.cache.SetDefault(token, &user)
	}
	return &user, nil
}
