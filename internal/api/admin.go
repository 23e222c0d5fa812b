package api

import (
	"github.com/modelscout/modelscout/internal/services/catalog"
	"github.com/modelscout/modelscout/internal/services/request"
	"github.com/modelscout/modelscout/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// AdminHandler exposes catalog cache management: forced invalidation and a
// freshness probe.
type AdminHandler struct {
	requestSvc   *request.BaseService
	catalogCache *catalog.Cache
	responseSvc  *response.BaseService
}

// NewAdminHandler initializes the admin handler.
func NewAdminHandler(
	requestSvc *request.BaseService,
	catalogCache *catalog.Cache,
	responseSvc *response.BaseService,
) *AdminHandler {
	return &AdminHandler{
		requestSvc:   requestSvc,
		catalogCache: catalogCache,
		responseSvc:  responseSvc,
	}
}

// InvalidateCatalog forces the cache into its empty state so the next read
// fetches from upstream.
func (h *AdminHandler) InvalidateCatalog(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)

	h.catalogCache.Invalidate()
	fiberlog.Infof("[%s] catalog cache invalidated via admin API", reqID)

	return h.responseSvc.Success(c, fiber.Map{"invalidated": true})
}

// CatalogStatus reports cache freshness without triggering a refresh.
func (h *AdminHandler) CatalogStatus(c *fiber.Ctx) error {
	return h.responseSvc.Success(c, h.catalogCache.Status())
}
