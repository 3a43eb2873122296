package models

// Requests for the session HTTP endpoints.

type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ActRequest struct {
	Intent string `json:"intent" validate:"required,oneof=long short skip"`
}

type FilterRequest struct {
	Country string `json:"country"`
}

type AmountRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

type PositionsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
