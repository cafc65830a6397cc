package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID int64 `json:"product_id"`
}

// カートは未ログインでも使える（セッションcookieでバケツを分ける）
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWTOptional(cfg))
	g.Use(middleware.CartSession())

	g.GET("", h.get)
	g.POST("", h.add)
	g.DELETE("", h.clear)
	g.DELETE("/items/:productId", h.remove)
}

// ログインユーザーが最優先。未ログインはセッションcookie。
// セッションとユーザーのカートは自動ではマージしない。
func cartOwnerFromContext(c echo.Context) (repo.CartOwner, bool) {
	if userID, ok := getUserIDFromContext(c); ok {
		return repo.CartOwner{Kind: repo.CartOwnerUser, ID: strconv.FormatInt(userID, 10)}, true
	}

	v := c.Get(middleware.CtxCartSessionKey)
	sid, ok := v.(string)
	if !ok || sid == "" {
		return repo.CartOwner{}, false
	}
	return repo.CartOwner{Kind: repo.CartOwnerSession, ID: sid}, true
}

func (h *CartHandler) get(c echo.Context) error {
	owner, ok := cartOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing cart session"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) add(c echo.Context) error {
	owner, ok := cartOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing cart session"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), owner, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) remove(c echo.Context) error {
	owner, ok := cartOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing cart session"})
	}

	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
	}

	out, err := h.uc.RemoveFromCart(c.Request().Context(), owner, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	owner, ok := cartOwnerFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing cart session"})
	}

	if err := h.uc.ClearCart(c.Request().Context(), owner); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cleared"})
}
