package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-WellnessBooking/internal/api/handlers"
	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

const (
	msgMissingToken   = "требуется авторизация"
	msgInvalidToken   = "недействительный токен доступа"
	msgNoCompany      = "пользователь не привязан к компании"
	msgNotEnoughRight = "недостаточно прав"
)

var (
	// ErrMissingToken заголовок Authorization отсутствует или не в формате Bearer
	ErrMissingToken = errors.New("auth: missing bearer token")

	// ErrInvalidToken токен не прошёл проверку подписи, срока действия или издателя
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrNoCompany в токене нет компании пользователя
	ErrNoCompany = errors.New("auth: token has no company")
)

type contextKey int

const actorKey contextKey = iota

// Claims утверждения access token управляемого бэкенда аутентификации
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// TokenParser проверяет HS256 access token и превращает его в Actor
type TokenParser struct {
	secret []byte
	issuer string
}

// NewTokenParser создает парсер токенов; issuer может быть пустым
func NewTokenParser(secret, issuer string) *TokenParser {
	return &TokenParser{secret: []byte(secret), issuer: issuer}
}

// Parse проверяет токен и возвращает вызывающего
func (p *TokenParser) Parse(tokenStr string) (domain.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Actor{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: subject: %v", ErrInvalidToken, err)
	}

	if claims.CompanyID == "" {
		return domain.Actor{}, ErrNoCompany
	}
	tenantID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: company_id: %v", ErrInvalidToken, err)
	}

	return domain.Actor{
		UserID:   userID,
		TenantID: tenantID,
		Role:     parseRole(claims.Role),
		Email:    claims.Email,
		Name:     claims.Name,
	}, nil
}

// Неизвестная роль понижается до обычного пользователя
func parseRole(role string) domain.Role {
	switch domain.Role(role) {
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		return domain.Role(role)
	default:
		return domain.RoleUser
	}
}

// Auth проверяет Bearer токен и кладёт Actor в контекст запроса
func Auth(parser *TokenParser, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := bearerToken(r)
			if err != nil {
				logger.Warn("Auth: %s %s - %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			actor, err := parser.Parse(tokenStr)
			if err != nil {
				logger.Warn("Auth: %s %s - %v", r.Method, r.URL.Path, err)
				if errors.Is(err, ErrNoCompany) {
					handlers.RespondForbidden(w, msgNoCompany)
					return
				}
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin пропускает только администраторов компании
// Должен стоять после Auth
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if !ok {
			handlers.RespondUnauthorized(w, msgMissingToken)
			return
		}
		if !actor.IsAdmin() {
			handlers.RespondForbidden(w, msgNotEnoughRight)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithActor возвращает контекст с вызывающим
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor извлекает вызывающего из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	actor, ok := GetActor(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return actor.UserID, true
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}

	return strings.TrimSpace(token), nil
}
