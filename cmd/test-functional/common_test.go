package test_functional

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type (
	LoginResp struct {
		AccessToken string `json:"access_token"`
	}

	UserResp struct {
		ID        uint64  `json:"id"`
		Email     string  `json:"email"`
		FirstName *string `json:"firstName,omitempty"`
		LastName  *string `json:"lastName,omitempty"`
	}

	BookmarkResp struct {
		ID          uint64  `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description,omitempty"`
		Link        string  `json:"link"`
	}
)

func FlushDB() {
	_, err := DBConn.Exec(context.Background(), "TRUNCATE bookmarks, users RESTART IDENTITY CASCADE")
	if err != nil {
		panic(err)
	}
}

func credsBody(email, password string) string {
	return fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
}

func appURL(path string) string {
	u := AppBaseURL
	u.Path = path
	return u.String()
}

// RegisterAndLogin signs the user up and returns a fresh bearer token.
func RegisterAndLogin(t *testing.T, ctx context.Context, email, password string) string {
	t.Helper()

	resp, err := resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetBody(credsBody(email, password)).
		Post(appURL("/auth/signup"))
	require.Nil(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	loginResp, err := resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetResult(&LoginResp{}).
		SetBody(credsBody(email, password)).
		Post(appURL("/auth/login"))
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, loginResp.StatusCode())

	got, ok := loginResp.Result().(*LoginResp)
	require.True(t, ok)
	require.NotEmpty(t, got.AccessToken)
	return got.AccessToken
}
