package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-storefront-cache/async"
	"github.com/goliatone/go-storefront-cache/model"
)

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"online":  s.container.Probe().IsOnline(),
		"backend": s.container.Binding().Available(),
		"entries": s.container.Store().Len(),
	})
}

func (s *Server) product(c echo.Context) error {
	p, err := await(c, s.container.Products().FetchByID(tagged(c, "product"), c.Param("id")))
	if err != nil {
		return err
	}
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, p)
}

// listProducts lists one category, or the whole catalog without a filter.
func (s *Server) listProducts(c echo.Context) error {
	ctx := tagged(c, "products")
	var f *async.Future[[]model.Product]
	if category := c.QueryParam("category"); category != "" {
		f = s.container.Products().FetchByCategory(ctx, category)
	} else {
		f = s.container.Products().FetchAll(ctx)
	}
	products, err := await(c, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) featured(c echo.Context) error {
	products, err := await(c, s.container.Products().FetchFeatured(tagged(c, "featured")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) popular(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	products, err := await(c, s.container.Products().FetchPopular(tagged(c, "popular"), limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) newest(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return err
	}
	products, err := await(c, s.container.Products().FetchNew(tagged(c, "new"), limit))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) search(c echo.Context) error {
	products, err := await(c, s.container.Products().Search(tagged(c, "search"), c.QueryParam("q")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

func (s *Server) categories(c echo.Context) error {
	names, err := await(c, s.container.Categories().FetchAll(tagged(c, "categories")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, names)
}

func (s *Server) banner(c echo.Context) error {
	url, err := await(c, s.container.Promotions().ActiveBannerURL(tagged(c, "banner")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"imageUrl": url})
}

func (s *Server) user(c echo.Context) error {
	u, err := await(c, s.container.Users().FetchByID(tagged(c, "user"), c.Param("id")))
	if err != nil {
		return err
	}
	if u == nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) cart(c echo.Context) error {
	items, err := await(c, s.container.Users().FetchCart(tagged(c, "cart"), c.Param("id")))
	if err != nil {
		return err
	}
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items, "total": total})
}

// refresh drops the product caches and reloads the catalog.
func (s *Server) refresh(c echo.Context) error {
	products, err := await(c, s.container.Products().RefreshAll(tagged(c, "refresh")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"products": len(products)})
}

func (s *Server) clear(c echo.Context) error {
	s.container.ClearAll()
	return c.NoContent(http.StatusNoContent)
}
