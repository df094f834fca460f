package api

import (
	"fmt"
	"mirrorbalance/internal/app"
	l1_service "mirrorbalance/internal/service/l1"
	l3_service "mirrorbalance/internal/service/l3"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (m ApiHandler) rebalance(c *gin.Context) {
	format, err := l3_service.ParseReportFormat(c.DefaultQuery("format", string(l3_service.ReportFormatJson)))
	if err != nil {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	refresh, err := strconv.ParseBool(c.DefaultQuery("refresh", "false"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid refresh parameter: %w", err), c, http.StatusBadRequest)
		return
	}
	if refresh {
		m.ReferenceDataCache.Invalidate(l1_service.AllCacheKinds...)
	}

	result, err := m.RebalancerHandler.Rebalance(c.Request.Context(), app.RebalanceInput{
		Format: format,
	})
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to rebalance: %w", err), c)
		return
	}

	c.Data(http.StatusOK, format.ContentType(), result.Rendered)
}
