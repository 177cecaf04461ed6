package ghost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const testAdminKey = "65f1a2b3c4d5e6f7a8b9c0d1:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestCreatePost(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/ghost/api/admin/posts/" {
				t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
			}

			auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Ghost ")
			token, _, err := jwt.NewParser().ParseUnverified(auth, jwt.MapClaims{})
			if err != nil {
				t.Fatalf("Failed to parse token: %v", err)
			}
			if token.Header["kid"] != "65f1a2b3c4d5e6f7a8b9c0d1" {
				t.Errorf("Unexpected kid %v", token.Header["kid"])
			}

			var body postsRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if len(body.Posts) != 1 || body.Posts[0].Status != "draft" {
				t.Errorf("Unexpected body %+v", body)
			}

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"posts":[{"id":"p1","title":"Week","url":"http://blog/week/","status":"draft"}]}`))
		}))
		defer server.Close()

		post, err := NewClient(server.URL, testAdminKey).CreatePost(context.Background(), "Week", "<p>hi</p>", false)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if post.ID != "p1" || post.URL != "http://blog/week/" {
			t.Errorf("Unexpected post %+v", post)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, testAdminKey).CreatePost(context.Background(), "Week", "", false)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
			t.Fatalf("Expected APIError 502, got %v", err)
		}
		if !IsTemporary(err) {
			t.Errorf("Expected 502 to be temporary")
		}
	})

	t.Run("ClientError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, testAdminKey).CreatePost(context.Background(), "Week", "", false)
		if err == nil || IsTemporary(err) {
			t.Errorf("Expected a permanent error, got %v", err)
		}
	})

	t.Run("EmptyPostsAfterCreate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"posts":[]}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, testAdminKey).CreatePost(context.Background(), "Week", "", false)
		if !errors.Is(err, ErrUnexpectedResponse) {
			t.Fatalf("Expected ErrUnexpectedResponse, got %v", err)
		}
		if IsTemporary(err) {
			t.Errorf("Expected an accepted post to never be retried")
		}
	})

	t.Run("UndecodableBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>proxy page</html>`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, testAdminKey).CreatePost(context.Background(), "Week", "", false)
		if !errors.Is(err, ErrUnexpectedResponse) || IsTemporary(err) {
			t.Errorf("Expected a permanent ErrUnexpectedResponse, got %v", err)
		}
	})

	t.Run("BadKey", func(t *testing.T) {
		_, err := NewClient("http://unused", "nocolon").CreatePost(context.Background(), "Week", "", false)
		var keyErr *KeyError
		if !errors.As(err, &keyErr) {
			t.Fatalf("Expected KeyError, got %v", err)
		}
		if IsTemporary(err) {
			t.Errorf("Expected key errors to be permanent")
		}
	})
}

type postsRequest struct {
	Posts []struct {
		Title  string `json:"title"`
		HTML   string `json:"html"`
		Status string `json:"status"`
	} `json:"posts"`
}
