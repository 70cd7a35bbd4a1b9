package services

import (
	"fmt"

	"backend/internal/utils"
)

// MembershipNotifier e o hook de "roster mudou" para caches de visao dependentes.
// Fire-and-forget: os engines nao aguardam nem dependem do resultado.
type MembershipNotifier interface {
	MembershipChanged(tripID, passengerID int64)
}

// LogNotifier e o observador padrao; so registra o evento.
type LogNotifier struct {
	RequestID string
}

func (n LogNotifier) MembershipChanged(tripID, passengerID int64) {
	utils.LogEvent(n.RequestID, "roster", "membership_changed",
		fmt.Sprintf("trip_id=%d passenger_id=%d", tripID, passengerID))
}

// notifyAsync dispara o hook fora do caminho critico. Panic do observador
// nao pode derrubar o engine.
func notifyAsync(n MembershipNotifier, tripID, passengerID int64) {
	if n == nil {
		return
	}
	go func() {
		defer func() { _ = recover() }()
		n.MembershipChanged(tripID, passengerID)
	}()
}
