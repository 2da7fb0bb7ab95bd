package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrier_pricing_v1/internal/middleware"
	"carrier_pricing_v1/internal/service"
)

type PriorityController struct {
	priorityService *service.PriorityService
}

func NewPriorityController(priorityService *service.PriorityService) *PriorityController {
	return &PriorityController{priorityService: priorityService}
}

// Recompute 手动重算当前用户的优先级分组 (有冷却时间)
// @Tags Priority
// @Success 200 {object} dto.PriorityBandsResp
// @Failure 429 {object} map[string]interface{}
// @Router /api/v1/priority-bands/recompute [post]
func (ctl *PriorityController) Recompute(c *gin.Context) {
	resp, err := ctl.priorityService.Recompute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
