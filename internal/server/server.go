package server

import (
	"net/http"

	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はルート登録済みのechoを返す。
func New(cartH *handler.CartHandler, productH *handler.ProductHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	cartH.RegisterRoutes(e)
	productH.RegisterRoutes(e)

	return e
}

func Start(addr string, cartH *handler.CartHandler, productH *handler.ProductHandler) error {
	return New(cartH, productH).Start(addr)
}
