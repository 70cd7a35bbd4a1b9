package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

// DELETE /api/usages/:id
// Reverte um uso de credito: devolve o saldo e recalcula (ou remove) o
// passageiro da viagem.
func ReverseUsage(c *gin.Context) {
	usageID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.ReversalService{
		Notifier:  services.LogNotifier{},
		RequestID: middleware.GetRequestID(c),
	}
	result, err := svc.Reverse(usageID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/usages/:id/impact
// Preview do que aconteceria se o usage fosse revertido, sem escrever nada.
func PreviewUsageReversal(c *gin.Context) {
	usageID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.ReversalService{RequestID: middleware.GetRequestID(c)}
	impact, err := svc.PreviewReverse(usageID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, impact)
}
