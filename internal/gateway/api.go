package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// User is the backend's user object, also denormalized into the local
// session after login.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UserUpdate carries the editable profile fields.
type UserUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RatingAverage is the per-university aggregate rating.
type RatingAverage struct {
	UniversityID int     `json:"universityId"`
	Average      float64 `json:"average"`
}

// RankingEntry is one row of the /ranking leaderboard. The backend sends
// the average as a decimal string.
type RankingEntry struct {
	UniversityID int    `json:"universityId"`
	Avg          string `json:"avg"`
}

// Login authenticates and returns the session token plus user object.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	raw, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	var auth AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	return &auth, nil
}

// Register creates an account and returns the session token plus user object.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	raw, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body:   map[string]string{"name": name, "email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	var auth AuthResponse
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	return &auth, nil
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	raw, err := c.Do(ctx, Request{Path: "/api/users/me", Token: token})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}

// UpdateMe patches the editable profile fields.
func (c *Client) UpdateMe(ctx context.Context, token string, update UserUpdate) (*User, error) {
	raw, err := c.Do(ctx, Request{
		Method: http.MethodPatch,
		Path:   "/api/users/me",
		Token:  token,
		Body:   update,
	})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}

// UploadPhoto sends a profile photo as multipart form data. The backend
// expects the file under the "file" field and the user id under "id".
func (c *Client) UploadPhoto(ctx context.Context, token string, userID int, filename string, photo io.Reader) (*User, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if err := w.WriteField("id", strconv.Itoa(userID)); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	raw, err := c.Do(ctx, Request{
		Method:      http.MethodPatch,
		Path:        "/api/users/me/photo",
		Token:       token,
		Body:        &buf,
		ContentType: w.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}

// DeletePhoto removes the profile photo.
func (c *Client) DeletePhoto(ctx context.Context, token string) (*User, error) {
	raw, err := c.Do(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/api/users/me/photo",
		Token:  token,
	})
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &u, nil
}

// RatingAverage fetches the aggregate rating for a university. A missing
// record (404 or a JSON null body) returns (nil, nil): "no ratings yet" is
// not an error.
func (c *Client) RatingAverage(ctx context.Context, universityID int) (*RatingAverage, error) {
	raw, err := c.Do(ctx, Request{
		Path: fmt.Sprintf("/api/universities/%d/ratings/average", universityID),
	})
	if err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var avg RatingAverage
	if err := json.Unmarshal(raw, &avg); err != nil {
		return nil, fmt.Errorf("failed to decode rating: %w", err)
	}
	return &avg, nil
}

// SubmitRating posts a 1-5 score for a university on behalf of a user.
func (c *Client) SubmitRating(ctx context.Context, token string, universityID, userID, score int) error {
	_, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/universities/%d/ratings", universityID),
		Token:  token,
		Body:   map[string]int{"userId": userID, "score": score},
	})
	return err
}

// Ranking fetches the leaderboard rows.
func (c *Client) Ranking(ctx context.Context) ([]RankingEntry, error) {
	raw, err := c.Do(ctx, Request{Path: "/ranking"})
	if err != nil {
		return nil, err
	}
	var entries []RankingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ranking: %w", err)
	}
	return entries, nil
}

// Universities fetches the raw catalog payload. The catalog package owns
// decoding so the entity type lives next to its consumers.
func (c *Client) Universities(ctx context.Context) (json.RawMessage, error) {
	return c.Do(ctx, Request{Path: "/api/universities"})
}
