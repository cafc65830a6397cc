package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey    = "user_id"    // int64
	CtxUserEmailKey = "user_email" // string
	CtxUserRoleKey  = "user_role"  // string
)

// bearerAuth用のJWT検証ミドルウェア。
// IdPが発行したトークンの {sub, email, role} をcontextに積む。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authenticate(c, cfg); err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

// カート用。Authorizationが無ければ匿名のまま通す。
// あるのに不正なら401（黙って匿名に落とさない）。
func AuthJWTOptional(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			if err := authenticate(c, cfg); err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

func authenticate(c echo.Context, cfg config.Config) error {
	//Authorizationヘッダを取得
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return errors.New("missing authorization header")
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return errors.New("not a bearer token")
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return errors.New("empty token")
	}

	//JWTをパースして検証する
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return errors.New("invalid token")
	}

	//claimsを取り出す
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}

	userID, err := parseUserID(claims["sub"])
	if err != nil || userID <= 0 {
		return errors.New("invalid sub")
	}

	email, err := parseString(claims["email"])
	if err != nil || email == "" {
		return errors.New("invalid email")
	}

	//roleを取り出す（USER/ADMIN）
	role, err := parseString(claims["role"])
	if err != nil || role == "" {
		return errors.New("invalid role")
	}

	//contextへ保存
	c.Set(CtxUserIDKey, userID)
	c.Set(CtxUserEmailKey, email)
	c.Set(CtxUserRoleKey, role)

	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// user_idをint64に変換する
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
