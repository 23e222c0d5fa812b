package api

import (
	"github.com/modelscout/modelscout/internal/models"
	"github.com/modelscout/modelscout/internal/services/recommend"
	"github.com/modelscout/modelscout/internal/services/request"
	"github.com/modelscout/modelscout/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// RecommendHandler handles POST /recommend.
type RecommendHandler struct {
	requestSvc   *request.BaseService
	recommendSvc *recommend.Service
	responseSvc  *response.BaseService
}

// NewRecommendHandler initializes the recommendation handler with injected dependencies.
func NewRecommendHandler(
	requestSvc *request.BaseService,
	recommendSvc *recommend.Service,
	responseSvc *response.BaseService,
) *RecommendHandler {
	return &RecommendHandler{
		requestSvc:   requestSvc,
		recommendSvc: recommendSvc,
		responseSvc:  responseSvc,
	}
}

// Recommend runs the full pipeline for one use case. Validation failures
// return 400 before any downstream work; pipeline failures map through the
// error taxonomy (ranking errors surface as 500).
func (h *RecommendHandler) Recommend(c *fiber.Ctx) error {
	reqID := h.requestSvc.GetRequestID(c)
	fiberlog.Infof("[%s] starting recommendation request", reqID)

	var req models.RecommendRequest
	if err := c.BodyParser(&req); err != nil {
		return h.responseSvc.Error(c, fiber.StatusBadRequest, "invalid request body", err.Error())
	}

	if req.UseCase == "" {
		return h.responseSvc.Error(c, fiber.StatusBadRequest, "useCase is required", "")
	}

	resp, err := h.recommendSvc.Recommend(c.UserContext(), req, reqID)
	if err != nil {
		fiberlog.Errorf("[%s] recommendation failed: %v", reqID, err)
		return h.responseSvc.AppError(c, err)
	}

	fiberlog.Infof("[%s] returning %d recommendations (relax level %d, %dms)",
		reqID, len(resp.Recommendations), resp.Metadata.RelaxLevel, resp.Metadata.Timing.TotalMs)
	return h.responseSvc.Success(c, resp)
}
