package api

import (
	"github.com/modelscout/modelscout/internal/services/recommend"
	"github.com/modelscout/modelscout/internal/services/request"
	"github.com/modelscout/modelscout/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// ModelsHandler handles GET /models.
type ModelsHandler struct {
	requestSvc   *request.BaseService
	recommendSvc *recommend.Service
	responseSvc  *response.BaseService
}

// NewModelsHandler initializes the catalog listing handler.
func NewModelsHandler(
	requestSvc *request.BaseService,
	recommendSvc *recommend.Service,
	responseSvc *response.BaseService,
) *ModelsHandler {
	return &ModelsHandler{
		requestSvc:   requestSvc,
		recommendSvc: recommendSvc,
		responseSvc:  responseSvc,
	}
}

// List serves the catalog from the cache, refreshing it when stale.
func (h *ModelsHandler) List(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)

	resp, err := h.recommendSvc.Models(c.UserContext())
	if err != nil {
		fiberlog.Errorf("[%s] catalog listing failed: %v", reqID, err)
		return h.responseSvc.AppError(c, err)
	}

	return h.responseSvc.Success(c, resp)
}
