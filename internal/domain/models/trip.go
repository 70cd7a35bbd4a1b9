package models

type Trip struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Fare          int64  `json:"fare"`
	Status        string `json:"status"` // ativa / cancelada
}

func (t Trip) IsCancelled() bool {
	return t.Status == "cancelada"
}

type Tour struct {
	ID     int64  `json:"id"`
	TripID int64  `json:"tripId"`
	Name   string `json:"name"`
	Fare   int64  `json:"fare"`
}

type Ticket struct {
	ID     int64  `json:"id"`
	TripID int64  `json:"tripId"`
	Name   string `json:"name"`
	Fare   int64  `json:"fare"`
}

type Bus struct {
	ID        int64  `json:"id"`
	TripID    int64  `json:"tripId"`
	Name      string `json:"name"`
	Seats     int    `json:"seats"`
	FreeSeats int    `json:"freeSeats"`
}
