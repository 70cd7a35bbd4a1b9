package domain

// PaymentStatus e o estado discreto de pagamento de um passageiro na viagem.
type PaymentStatus string

const (
	StatusPendente      PaymentStatus = "Pendente"
	StatusViagemPaga    PaymentStatus = "ViagemPaga"
	StatusPasseiosPagos PaymentStatus = "PasseiosPagos"
	StatusPagoCompleto  PaymentStatus = "PagoCompleto"
	StatusBrinde        PaymentStatus = "Brinde"
	StatusCancelado     PaymentStatus = "Cancelado"
)

// PaymentBreakdown separa o devido/pago em dois sub-razoes: viagem e passeios.
// Valores em centavos; derivado, nunca persistido como fonte de verdade.
type PaymentBreakdown struct {
	TripDue  int64 `json:"tripDue"`
	TripPaid int64 `json:"tripPaid"`
	TourDue  int64 `json:"tourDue"`
	TourPaid int64 `json:"tourPaid"`
}

// ResolvePaymentStatus mapeia o breakdown para um status discreto.
// Precedencia estrita: cancelado > brinde > completo > viagem > passeios > pendente.
// Comparacoes exatas em centavos; nao existe epsilon aqui.
func ResolvePaymentStatus(b PaymentBreakdown, isFree, isCancelled bool) PaymentStatus {
	switch {
	case isCancelled:
		return StatusCancelado
	case isFree:
		return StatusBrinde
	case b.TripPaid >= b.TripDue && b.TourPaid >= b.TourDue:
		return StatusPagoCompleto
	case b.TripPaid >= b.TripDue:
		return StatusViagemPaga
	case b.TourDue > 0 && b.TourPaid >= b.TourDue:
		return StatusPasseiosPagos
	default:
		return StatusPendente
	}
}
