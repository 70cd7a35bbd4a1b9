package domain

import "testing"

func TestResolvePaymentStatus(t *testing.T) {
	cases := []struct {
		name      string
		b         PaymentBreakdown
		free      bool
		cancelled bool
		want      PaymentStatus
	}{
		{"tudo zerado sem passeio", PaymentBreakdown{TripDue: 0, TripPaid: 0}, false, false, StatusPagoCompleto},
		{"nada pago", PaymentBreakdown{TripDue: 10000, TourDue: 5000}, false, false, StatusPendente},
		{"viagem paga passeios nao", PaymentBreakdown{TripDue: 10000, TripPaid: 10000, TourDue: 5000, TourPaid: 2000}, false, false, StatusViagemPaga},
		{"passeios pagos viagem nao", PaymentBreakdown{TripDue: 10000, TripPaid: 4000, TourDue: 5000, TourPaid: 5000}, false, false, StatusPasseiosPagos},
		{"passeios zerados nao contam como pagos", PaymentBreakdown{TripDue: 10000, TripPaid: 4000, TourDue: 0, TourPaid: 0}, false, false, StatusPendente},
		{"tudo pago", PaymentBreakdown{TripDue: 10000, TripPaid: 10000, TourDue: 5000, TourPaid: 5000}, false, false, StatusPagoCompleto},
		{"pago a mais continua completo", PaymentBreakdown{TripDue: 10000, TripPaid: 12000, TourDue: 5000, TourPaid: 5000}, false, false, StatusPagoCompleto},
		{"brinde ignora breakdown", PaymentBreakdown{TripDue: 10000}, true, false, StatusBrinde},
		{"cancelado vence brinde", PaymentBreakdown{TripDue: 10000}, true, true, StatusCancelado},
		{"cancelado vence pago", PaymentBreakdown{TripDue: 10000, TripPaid: 10000}, false, true, StatusCancelado},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePaymentStatus(tc.b, tc.free, tc.cancelled)
			if got != tc.want {
				t.Fatalf("ResolvePaymentStatus(%+v, free=%v, cancelled=%v) = %s, esperava %s", tc.b, tc.free, tc.cancelled, got, tc.want)
			}
		})
	}
}

// Aumentar tripPaid ou tourPaid nunca pode rebaixar um PagoCompleto.
func TestResolvePaymentStatusMonotonic(t *testing.T) {
	base := PaymentBreakdown{TripDue: 10000, TripPaid: 10000, TourDue: 5000, TourPaid: 5000}
	if got := ResolvePaymentStatus(base, false, false); got != StatusPagoCompleto {
		t.Fatalf("base deveria ser PagoCompleto, veio %s", got)
	}

	for extra := int64(100); extra <= 10000; extra += 100 {
		up := base
		up.TripPaid += extra
		if got := ResolvePaymentStatus(up, false, false); got != StatusPagoCompleto {
			t.Fatalf("tripPaid+%d rebaixou status para %s", extra, got)
		}
		up = base
		up.TourPaid += extra
		if got := ResolvePaymentStatus(up, false, false); got != StatusPagoCompleto {
			t.Fatalf("tourPaid+%d rebaixou status para %s", extra, got)
		}
	}
}
