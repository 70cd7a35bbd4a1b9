package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/trips
func ListTrips(c *gin.Context) {
	repo := repositories.CatalogRepository{}
	trips, err := repo.ListTrips(nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar viagens", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	tripID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	repo := repositories.CatalogRepository{}
	trip, err := repo.GetTrip(nil, tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	tours, err := repo.ListTours(nil, tripID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar passeios", err)
		return
	}
	tickets, err := repo.ListTickets(nil, tripID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar passagens", err)
		return
	}
	buses, err := repo.ListBuses(nil, tripID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar onibus", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trip":    trip,
		"tours":   tours,
		"tickets": tickets,
		"buses":   buses,
	})
}

// GET /api/trips/:id/passengers
func ListTripPassengers(c *gin.Context) {
	tripID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	catalogRepo := repositories.CatalogRepository{}
	if _, err := catalogRepo.GetTrip(nil, tripID); err != nil {
		RespondDomainError(c, err)
		return
	}

	membershipRepo := repositories.MembershipRepository{}
	members, err := membershipRepo.ListByTrip(nil, tripID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar passageiros", err)
		return
	}

	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		tours, err := membershipRepo.ListTours(nil, m.TripID, m.PassengerID)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "falha ao listar passeios do passageiro", err)
			return
		}
		out = append(out, gin.H{
			"membership": m,
			"tours":      tours,
		})
	}

	c.JSON(http.StatusOK, gin.H{"trip_id": tripID, "passengers": out})
}

// GET /api/trips/:id/buses
func ListTripBuses(c *gin.Context) {
	tripID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	repo := repositories.CatalogRepository{}
	buses, err := repo.ListBuses(nil, tripID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "falha ao listar onibus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip_id": tripID, "buses": buses})
}

// GET /api/trips/:id/roster
func TripRosterPDF(c *gin.Context) {
	tripID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	svc := services.StatementService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateTripRoster(tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
