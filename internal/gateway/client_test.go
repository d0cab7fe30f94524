package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil)
}

func TestDo_JSONBodyAndBearerToken(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(`{"ok":true}`))
	})

	raw, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/echo",
		Token:  "tok-123",
		Body:   map[string]int{"score": 4},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"score":4}`, gotBody)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
}

func TestDo_DefaultsToGET(t *testing.T) {
	var gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`[]`))
	})

	_, err := c.Do(context.Background(), Request{Path: "/api/universities"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestDo_ReaderBodyPassedThrough(t *testing.T) {
	var gotContentType, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(`{}`))
	})

	_, err := c.Do(context.Background(), Request{
		Method:      http.MethodPatch,
		Path:        "/api/users/me/photo",
		Body:        strings.NewReader("raw-bytes"),
		ContentType: "multipart/form-data; boundary=xyz",
	})
	require.NoError(t, err)

	assert.Equal(t, "multipart/form-data; boundary=xyz", gotContentType)
	assert.Equal(t, "raw-bytes", gotBody)
}

func TestDo_HeaderOverridesApplyLast(t *testing.T) {
	var gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept-Language")
		w.Write([]byte(`{}`))
	})

	_, err := c.Do(context.Background(), Request{
		Path:    "/api/universities",
		Headers: map[string]string{"Accept-Language": "ru"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ru", gotAccept)
}

func TestDo_NonOKStatusIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := c.Do(context.Background(), Request{Path: "/api/users/me"})
	require.Error(t, err)

	se, ok := err.(*StatusError)
	require.True(t, ok, "expected *StatusError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestDo_NetworkFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	c := New(srv.URL, time.Second, nil)

	_, err := c.Do(context.Background(), Request{Path: "/api/universities"})
	assert.Error(t, err)
}

func TestRatingAverage_MissingRecordIsNotError(t *testing.T) {
	t.Run("404", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		avg, err := c.RatingAverage(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, avg)
	})

	t.Run("null body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("null"))
		})
		avg, err := c.RatingAverage(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, avg)
	})
}

func TestRatingAverage_Present(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/universities/42/ratings/average", r.URL.Path)
		json.NewEncoder(w).Encode(RatingAverage{UniversityID: 42, Average: 4.2})
	})

	avg, err := c.RatingAverage(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.2, avg.Average, 1e-9)
}

func TestSubmitRating_PostsScore(t *testing.T) {
	var gotPath, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Write([]byte(`{"ok":true}`))
	})

	err := c.SubmitRating(context.Background(), "tok", 42, 9, 4)
	require.NoError(t, err)
	assert.Equal(t, "/api/universities/42/ratings", gotPath)
	assert.JSONEq(t, `{"userId":9,"score":4}`, gotBody)
}

func TestUploadPhoto_MultipartFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "9", r.FormValue("id"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)

		assert.Equal(t, "me.png", hdr.Filename)
		assert.Equal(t, "png-bytes", string(data))
		json.NewEncoder(w).Encode(User{ID: 9, Photo: "/photos/9.png"})
	})

	u, err := c.UploadPhoto(context.Background(), "tok", 9, "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/photos/9.png", u.Photo)
}

func TestLogin_DecodesAuthResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(AuthResponse{
			Token: "tok-1",
			User:  User{ID: 3, Name: "Aynur", Email: "a@example.com"},
		})
	})

	auth, err := c.Login(context.Background(), "a@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", auth.Token)
	assert.Equal(t, 3, auth.User.ID)
}
