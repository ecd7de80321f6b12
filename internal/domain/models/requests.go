package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type ProfileRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type IndicatorsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=1,lte=1000"`
}

type SettingsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

// UpdateSettingsRequest carries everything in the body; PUT requests do not
// bind query params.
type UpdateSettingsRequest struct {
	Symbol   string   `json:"symbol" validate:"required"`
	Settings Settings `json:"settings"`
}
