package handlers

import (
	"net/http"

	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

type recordPaymentRequest struct {
	MembershipID int64                  `json:"membershipId"`
	Category     models.PaymentCategory `json:"category"`
	AmountCents  int64                  `json:"amountCents"`
	Method       string                 `json:"method"`
	PaidAt       string                 `json:"paidAt"`
	Notes        string                 `json:"notes"`
}

// POST /api/payments
func RecordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := services.PaymentService{
		Notifier:  services.LogNotifier{},
		RequestID: middleware.GetRequestID(c),
	}
	m, err := svc.Record(req.MembershipID, req.Category, req.AmountCents, req.Method, req.PaidAt, req.Notes)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "pagamento registrado",
		"membership": m,
	})
}

// GET /api/memberships/:id/payments
func ListMembershipPayments(c *gin.Context) {
	membershipID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	repo := repositories.PaymentHistoryRepository{}
	payments, err := repo.ListByMembership(nil, membershipID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar pagamentos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership_id": membershipID, "payments": payments})
}
