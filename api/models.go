package api

import (
	"github.com/meenmo/curvebuild/builder"
	"github.com/meenmo/curvebuild/curve"
	"github.com/meenmo/curvebuild/marketdata"
)

// BuildRequest carries the instrument prices to calibrate to.
type BuildRequest struct {
	Prices map[string]float64 `json:"prices" binding:"required"`
}

// BuildResponse is a calibrated curve set with its diagnostics.
type BuildResponse struct {
	Curves   curve.Snapshot     `json:"curves"`
	Jacobian JacobianPayload    `json:"jacobian"`
	Solver   SolverSummary      `json:"solver"`
	Repriced []marketdata.Quote `json:"repriced"`
}

// JacobianPayload holds d residual / d DOF with DOF rows and instrument columns.
type JacobianPayload struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

type SolverSummary struct {
	Iterations  int     `json:"iterations"`
	Evaluations int     `json:"evaluations"`
	Cost        float64 `json:"cost"`
	Status      string  `json:"status"`
}

// RepriceRequest reprices against the given curves, or the last build when omitted.
type RepriceRequest struct {
	Curves *curve.Snapshot `json:"curves"`
}

type RepriceResponse struct {
	Prices []marketdata.Quote `json:"prices"`
}

type CurvesResponse struct {
	Curves []string `json:"curves"`
}

type InstrumentsResponse struct {
	Instruments []builder.InstrumentRow `json:"instruments"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
