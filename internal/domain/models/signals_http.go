package models

import "time"

// Requests for signal HTTP endpoints. The timeframe tag accepts aliases
// like H1; handlers resolve them with repository.ParseTimeframe.

type AnalyzeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type SignalHistoryRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}

type ScanRequest struct {
	Symbols []string `json:"symbols" validate:"dive,required"`
}

type CandlesRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"timeframe"`
	Limit    int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=1000"`
}

type IndicatorsRequest struct {
	Timeframe string `param:"timeframe" validate:"required,timeframe"`
	Symbol    string `query:"symbol" json:"symbol" validate:"required"`
}

// ScanAccepted is returned when a scan has been queued.
type ScanAccepted struct {
	Status    string    `json:"status"`
	Symbols   []string  `json:"symbols"`
	Timestamp time.Time `json:"timestamp"`
}
