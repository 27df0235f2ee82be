package test_functional

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
)

func TestSignup(t *testing.T) {
	u := appURL("/auth/signup")

	t.Run("successful signup", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetResult(&UserResp{}).
			SetBody(credsBody("test@x.com", "pw123456")).
			Post(u)
		assert.Nil(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		got, ok := resp.Result().(*UserResp)
		assert.True(t, ok)
		assert.Equal(t, "test@x.com", got.Email)
		assert.NotZero(t, got.ID)
		assert.NotContains(t, resp.String(), "password")

		var (
			id       uint64
			password string
		)
		err = DBConn.QueryRow(ctx, "SELECT id, password FROM users WHERE email=$1", "test@x.com").Scan(&id, &password)
		assert.Nil(t, err)

		assert.Equal(t, got.ID, id)
		// Stored credential is a bcrypt hash, never the plaintext.
		assert.NotEqual(t, "pw123456", password)
		assert.True(t, strings.HasPrefix(password, "$2a$"))
	})

	t.Run("duplicate email", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		cl := resty.New()
		resp, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(credsBody("test@x.com", "pw123456")).
			Post(u)
		assert.Nil(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		resp, err = cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(credsBody("test@x.com", "different1")).
			Post(u)
		assert.Nil(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

		var count int
		err = DBConn.QueryRow(ctx, "SELECT count(*) FROM users WHERE email=$1", "test@x.com").Scan(&count)
		assert.Nil(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`
			{"something": "???"}
		`).
			Post(u)
		assert.Nil(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})
}

func TestLogin(t *testing.T) {
	u := appURL("/auth/login")

	t.Run("successful login", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		token := RegisterAndLogin(t, ctx, "test@x.com", "pw123456")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		RegisterAndLogin(t, ctx, "test@x.com", "pw123456")

		cl := resty.New()
		wrongPass, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(credsBody("test@x.com", "wrong-password")).
			Post(u)
		assert.Nil(t, err)

		unknown, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(credsBody("nobody@x.com", "pw123456")).
			Post(u)
		assert.Nil(t, err)

		assert.Equal(t, http.StatusBadRequest, wrongPass.StatusCode())
		assert.Equal(t, http.StatusBadRequest, unknown.StatusCode())
		assert.Equal(t, wrongPass.String(), unknown.String())
	})
}

func TestUsersMe(t *testing.T) {
	defer FlushDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	token := RegisterAndLogin(t, ctx, "test@x.com", "pw123456")

	cl := resty.New()
	resp, err := cl.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&UserResp{}).
		Get(appURL("/users/me"))
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	got, ok := resp.Result().(*UserResp)
	assert.True(t, ok)
	assert.Equal(t, "test@x.com", got.Email)

	resp, err = cl.R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&UserResp{}).
		SetBody(`{"firstName": "Ada", "lastName": "Lovelace"}`).
		Patch(appURL("/users/me"))
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	got, ok = resp.Result().(*UserResp)
	assert.True(t, ok)
	if assert.NotNil(t, got.FirstName) {
		assert.Equal(t, "Ada", *got.FirstName)
	}
	if assert.NotNil(t, got.LastName) {
		assert.Equal(t, "Lovelace", *got.LastName)
	}

	resp, err = cl.R().
		SetContext(ctx).
		Get(appURL("/users/me"))
	assert.Nil(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}
