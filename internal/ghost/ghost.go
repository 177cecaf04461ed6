package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Post is a post returned by the Ghost Admin API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// APIError is a non-2xx answer from Ghost.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin api error: status %d, body: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrUnexpectedResponse means Ghost answered 2xx with a body that could not be read.
// The post may exist, so it is never retried.
var ErrUnexpectedResponse = errors.New("unexpected ghost response")

// IsTemporary reports whether err is worth retrying. Transport errors count as temporary.
func IsTemporary(err error) bool {
	if errors.Is(err, ErrUnexpectedResponse) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var keyErr *KeyError
	return !errors.As(err, &keyErr)
}

// KeyError means the admin key is malformed. It never succeeds on retry.
type KeyError struct {
	Reason string
}

func (e *KeyError) Error() string {
	return "invalid admin key: " + e.Reason
}

// Publisher creates posts on a Ghost blog.
type Publisher interface {
	CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error)
}

// Client is the Ghost Admin API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	adminKey   string
	now        func() time.Time
}

// NewClient creates a new Ghost Admin API client. adminKey has the form id:hexsecret.
func NewClient(baseURL, adminKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminKey:   adminKey,
		now:        time.Now,
	}
}

// CreatePost creates a new post using the Ghost Admin API.
func (c *Client) CreatePost(ctx context.Context, title, html string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, err
	}

	status := "draft"
	if publish {
		status = "published"
	}

	body, err := json.Marshal(map[string]any{
		"posts": []map[string]any{
			{
				"title":  title,
				"html":   html,
				"status": status,
				"tags":   []string{"meal-plan"},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	url := fmt.Sprintf("%s/ghost/api/admin/posts/?source=html", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	// Ghost has accepted the post from here on; a retry would create a duplicate.
	var response PostsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnexpectedResponse, err)
	}
	if len(response.Posts) == 0 {
		return nil, fmt.Errorf("%w: no post returned from api", ErrUnexpectedResponse)
	}

	return &response.Posts[0], nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *Client) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.adminKey, ":")
	if !ok || id == "" || secretHex == "" {
		return "", &KeyError{Reason: "expected id:secret"}
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", &KeyError{Reason: "secret is not hex"}
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
