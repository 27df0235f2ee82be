package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/linkstash/linkstash-back/internal/auth"
	"github.com/linkstash/linkstash-back/internal/config"
	"github.com/linkstash/linkstash-back/internal/db"
	"github.com/linkstash/linkstash-back/internal/service"
)

const userIDContextKey = "userID"

type (
	SignupReq struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginReq struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResp struct {
		AccessToken string `json:"access_token"`
	}

	UserResp struct {
		ID        uint64  `json:"id"`
		Email     string  `json:"email"`
		FirstName *string `json:"firstName,omitempty"`
		LastName  *string `json:"lastName,omitempty"`
	}

	UserPatchReq struct {
		Email     *string `json:"email" validate:"omitempty,email"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}

	BookmarkCreateReq struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
		Link        string  `json:"link" validate:"required"`
	}

	BookmarkPatchReq struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Link        *string `json:"link"`
	}

	BookmarkResp struct {
		ID          uint64  `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description,omitempty"`
		Link        string  `json:"link"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		auth      *auth.Core
		tokens    *auth.TokenService
		bookmarks *service.Bookmarks
		users     *service.Users
		logger    *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	authCore *auth.Core,
	tokens *auth.TokenService,
	bookmarks *service.Bookmarks,
	users *service.Users,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := HTTPServer{
		auth:      authCore,
		tokens:    tokens,
		bookmarks: bookmarks,
		users:     users,
		logger:    logger,
	}

	e := instance.routes()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

func (s *HTTPServer) routes() *echo.Echo {
	e := echo.New()

	e.POST("/auth/signup", s.Signup)
	e.POST("/auth/login", s.Login)

	userG := e.Group("/users")
	userG.GET("/me", s.UserGet)
	userG.PATCH("/me", s.UserUpdate)

	bookmarkG := e.Group("/bookmarks")
	bookmarkG.GET("", s.BookmarkList)
	bookmarkG.POST("", s.BookmarkCreate)
	bookmarkG.GET("/:id", s.BookmarkGet)
	bookmarkG.PATCH("/:id", s.BookmarkUpdate)
	bookmarkG.DELETE("/:id", s.BookmarkDelete)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, _ []byte) {
		if len(reqBody) == 0 {
			return
		}
		s.logger.Debugw("request body", "path", c.Path(), "body", string(censorBody(reqBody)))
	}))

	e.Use(s.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	return e
}

func (s *HTTPServer) Signup(c echo.Context) error {
	req := SignupReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Signup(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusCreated, userResp(user))
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	token, _, err := s.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusOK, LoginResp{AccessToken: token})
}

func (s *HTTPServer) UserGet(c echo.Context) error {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	user, err := s.users.Get(c.Request().Context(), userID)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusOK, userResp(user))
}

func (s *HTTPServer) UserUpdate(c echo.Context) error {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	req := UserPatchReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.users.Update(c.Request().Context(), userID, req.Email, req.FirstName, req.LastName)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusOK, userResp(user))
}

func (s *HTTPServer) BookmarkList(c echo.Context) error {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	bookmarks, err := s.bookmarks.List(c.Request().Context(), userID)
	if err != nil {
		return s.httpError(err)
	}

	resp := make([]BookmarkResp, len(bookmarks))
	for i := range bookmarks {
		resp[i] = bookmarkResp(&bookmarks[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) BookmarkCreate(c echo.Context) error {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	req := BookmarkCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	model, err := s.bookmarks.Create(c.Request().Context(), userID, req.Title, req.Description, req.Link)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusCreated, bookmarkResp(model))
}

func (s *HTTPServer) BookmarkGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	model, err := s.bookmarks.Get(c.Request().Context(), userID, id)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusOK, bookmarkResp(model))
}

func (s *HTTPServer) BookmarkUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	req := BookmarkPatchReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	model, err := s.bookmarks.Update(c.Request().Context(), userID, id, req.Title, req.Description, req.Link)
	if err != nil {
		return s.httpError(err)
	}

	return c.JSON(http.StatusOK, bookmarkResp(model))
}

func (s *HTTPServer) BookmarkDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	if err := s.bookmarks.Delete(c.Request().Context(), userID, id); err != nil {
		return s.httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AuthMiddleware is the access guard on every route except signup, login
// and the liveness probe. It verifies the bearer token and attaches the
// resolved user identifier to the request context. The raw token never
// travels further than this function.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := c.Path()
		if path == "/auth/signup" || path == "/auth/login" || path == "/ping" {
			return next(c)
		}

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return c.NoContent(http.StatusUnauthorized)
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			return c.NoContent(http.StatusUnauthorized)
		}

		userID, err := s.tokens.Verify(tokenString)
		if err != nil {
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

// httpError translates domain errors at the boundary. Anything without a
// mapping is logged in full and surfaced as an opaque 500.
func (s *HTTPServer) httpError(err error) error {
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, auth.ErrDuplicateEmail.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusBadRequest, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, service.ErrForbidden.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	s.logger.Errorw("internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func userResp(user *db.User) UserResp {
	return UserResp{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func bookmarkResp(bookmark *db.Bookmark) BookmarkResp {
	return BookmarkResp{
		ID:          bookmark.ID,
		Title:       bookmark.Title,
		Description: bookmark.Description,
		Link:        bookmark.Link,
	}
}

// censorBody masks the password field of a JSON payload before it reaches
// a log line. Bodies that do not parse are returned untouched.
func censorBody(body []byte) []byte {
	payload := map[string]interface{}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return body
	}
	if _, ok := payload["password"]; !ok {
		return body
	}
	payload["password"] = "$censored"
	censored, err := json.Marshal(payload)
	if err != nil {
		return body
	}
	return censored
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetUserIDFromContext(c echo.Context) (uint64, error) {
	userID, ok := c.Get(userIDContextKey).(uint64)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
	}
	return userID, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}
