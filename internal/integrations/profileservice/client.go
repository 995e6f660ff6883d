package profileservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Client клиент REST-интерфейса профилей управляемого бэкенда
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetProfile получает профиль пользователя по ID
func (c *Client) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := url.Values{}
	query.Set("id", "eq."+userID.String())
	query.Set("select", "id,nome,email,role,company_id")
	endpoint := fmt.Sprintf("%s/profiles?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrProfileNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Ответ - массив строк таблицы profiles
	var profiles []Profile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}

	return &profiles[0], nil
}

// GetProfileWithGracefulDegradation получает профиль с graceful degradation
// При недоступности сервиса возвращает ErrServiceDegraded, вызывающий подставляет email
func (c *Client) GetProfileWithGracefulDegradation(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	profile, err := c.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.log.Warn("Profile not found for user_id=%s", userID)
			return nil, err
		}

		c.log.Error("Profile service unavailable, applying graceful degradation for user_id=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: user_id=%s, error=%v", ErrServiceDegraded, userID, err)
	}

	return profile, nil
}
