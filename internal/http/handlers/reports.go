package handlers

import (
	"net/http"

	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/reports/trips
func TripRevenueReport(c *gin.Context) {
	svc := services.ReportService{}
	rows, err := svc.TripRevenue()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao gerar relatorio", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": rows})
}
