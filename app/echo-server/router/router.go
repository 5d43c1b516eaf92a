package router

import (
	"stylShop/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupPersonalizeRoutes(api *echo.Group, handler *rest.PersonalizeHandler, authRequired echo.MiddlewareFunc) {
	p := api.Group("/personalize", authRequired)

	p.POST("/session", handler.StartSession)
	p.POST("/initial", handler.InitialOrder)
	p.POST("/feed", handler.Feed)
	p.POST("/interactions", handler.RecordInteraction)
	p.POST("/rerank", handler.Rerank)
	p.POST("/explain", handler.Explain)
	p.GET("/profile", handler.GetProfile)
	p.DELETE("/profile", handler.ResetProfile)
	p.PUT("/categories", handler.SetCategories)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts, authRequired)
	products.GET("/:id", handler.GetProductByID, authRequired)
	products.POST("", handler.CreateProduct, authRequired, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)
}
