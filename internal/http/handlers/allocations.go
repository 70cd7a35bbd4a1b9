package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/allocations
// Consome credito FIFO do cliente para colocar beneficiarios na viagem.
// Saldo insuficiente nao e erro: a resposta volta 200 com shortfall > 0 e as
// opcoes de resolucao.
func CreateAllocation(c *gin.Context) {
	var req services.AllocationRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.AllocationService{
		Notifier:  services.LogNotifier{},
		RequestID: middleware.GetRequestID(c),
	}
	result, err := svc.Allocate(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	status := http.StatusCreated
	if len(result.CreatedMemberships) == 0 {
		// nada novo foi criado (todos ja estavam na viagem)
		status = http.StatusOK
	}
	c.JSON(status, result)
}

type shortfallRequest struct {
	MembershipID int64                    `json:"membershipId"`
	Choice       services.ShortfallChoice `json:"choice"`
	AmountCents  int64                    `json:"amountCents"`
	Method       string                   `json:"method"`
	PaidAt       string                   `json:"paidAt"`
}

// POST /api/allocations/shortfall
func ResolveShortfall(c *gin.Context) {
	var req shortfallRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	reqID := middleware.GetRequestID(c)
	svc := services.ShortfallService{
		PaymentSvc: services.PaymentService{
			Notifier:  services.LogNotifier{},
			RequestID: reqID,
		},
		RequestID: reqID,
	}
	resolution, err := svc.Resolve(req.MembershipID, req.Choice, req.AmountCents, req.Method, req.PaidAt)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}
