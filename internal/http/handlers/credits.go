package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/customers/:id/credits
func ListCustomerCredits(c *gin.Context) {
	customerID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	customerRepo := repositories.CustomerRepository{}
	if _, err := customerRepo.GetByID(nil, customerID); err != nil {
		RespondDomainError(c, err)
		return
	}

	creditRepo := repositories.CreditRepository{}
	credits, err := creditRepo.ListByOwner(nil, customerID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar creditos", err)
		return
	}

	var totalBalance int64
	for _, cr := range credits {
		if cr.Status != models.CreditRefunded {
			totalBalance += cr.AvailableBalance
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"customer_id":             customerID,
		"credits":                 credits,
		"available_balance":       totalBalance,
		"available_balance_label": utils.FormatReal(totalBalance),
	})
}

// GET /api/credits?customer_id=
func ListCredits(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Query("customer_id"), 10, 64)
	if err != nil || customerID <= 0 {
		RespondError(c, http.StatusBadRequest, "customer_id e obrigatorio", err)
		return
	}

	creditRepo := repositories.CreditRepository{}
	credits, err := creditRepo.ListByOwner(nil, customerID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar creditos", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer_id": customerID, "credits": credits})
}

type createCreditRequest struct {
	OwnerID     int64  `json:"ownerId"`
	AmountCents int64  `json:"amountCents"`
	Notes       string `json:"notes"`
}

// POST /api/credits
func CreateCredit(c *gin.Context) {
	var req createCreditRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.OwnerID <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "ownerId", Msg: "cliente invalido"})
		return
	}
	if req.AmountCents <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "amountCents", Msg: "valor deve ser positivo"})
		return
	}

	customerRepo := repositories.CustomerRepository{}
	if _, err := customerRepo.GetByID(nil, req.OwnerID); err != nil {
		RespondDomainError(c, err)
		return
	}

	creditRepo := repositories.CreditRepository{}
	id, err := creditRepo.Create(nil, req.OwnerID, req.AmountCents, utils.TrimOrEmpty(req.Notes), utils.NowUTC())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao criar credito", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "credits", "create",
		"credito criado para cliente, valor "+utils.FormatReal(req.AmountCents))
	c.JSON(http.StatusCreated, gin.H{
		"id":           id,
		"owner_id":     req.OwnerID,
		"amount_cents": req.AmountCents,
		"amount_label": utils.FormatReal(req.AmountCents),
	})
}

// GET /api/credits/:id
func GetCredit(c *gin.Context) {
	creditID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	creditRepo := repositories.CreditRepository{}
	credit, err := creditRepo.GetByID(nil, creditID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			RespondDomainError(c, domain.NotFoundError{Resource: "credito", Err: err})
			return
		}
		RespondError(c, http.StatusInternalServerError, "falha ao buscar credito", err)
		return
	}

	usageRepo := repositories.CreditUsageRepository{}
	usages, err := usageRepo.ListByCredit(nil, creditID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar usos do credito", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credit": credit,
		"usages": usages,
	})
}

// GET /api/credits/:id/usages
func ListCreditUsages(c *gin.Context) {
	creditID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	usageRepo := repositories.CreditUsageRepository{}
	usages, err := usageRepo.ListByCredit(nil, creditID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar usos do credito", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit_id": creditID, "usages": usages})
}

// DELETE /api/credits/:id
// Retira o credito inteiro: reverte todos os usages em uma transacao.
func WithdrawCredit(c *gin.Context) {
	creditID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.ReversalService{
		Notifier:  services.LogNotifier{},
		RequestID: middleware.GetRequestID(c),
	}
	result, err := svc.WithdrawCredit(creditID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "credito retirado",
		"result":  result,
	})
}

// GET /api/customers/:id/credit-statement
func CreditStatementPDF(c *gin.Context) {
	customerID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.StatementService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateCreditStatement(customerID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
