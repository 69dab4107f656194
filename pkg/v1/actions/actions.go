// Package actions defines the tracker's action protocol: a closed set of
// typed request/response pairs carried over a generic asynchronous
// request/response channel.
package actions

import (
	"encoding/json"
	"fmt"

	"pricetracker/internal/platform/models"
)

// Action tags the closed set of protocol operations.
type Action string

// Protocol actions.
const (
	ActionTrackProduct       Action = "TRACK_PRODUCT"
	ActionGetProducts        Action = "GET_PRODUCTS"
	ActionUpdateProduct      Action = "UPDATE_PRODUCT"
	ActionDeleteProduct      Action = "DELETE_PRODUCT"
	ActionGetPriceHistory    Action = "GET_PRICE_HISTORY"
	ActionExportData         Action = "EXPORT_DATA"
	ActionImportData         Action = "IMPORT_DATA"
	ActionCheckAndStorePrice Action = "CHECK_AND_STORE_PRICE"
)

// Request is the protocol request envelope.
type Request struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the protocol response envelope: a success flag plus either a
// data payload or an error string. No other shape crosses the boundary.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TrackProductRequest is the TRACK_PRODUCT payload.
type TrackProductRequest struct {
	Record models.ProductRecord `json:"record"`
}

// TrackProductResult is the TRACK_PRODUCT result.
type TrackProductResult struct {
	ID    string `json:"id"`
	IsNew bool   `json:"isNew"`
}

// UpdateProductRequest is the UPDATE_PRODUCT payload.
type UpdateProductRequest struct {
	Identity string               `json:"identity"`
	Updates  models.ProductUpdate `json:"updates"`
}

// DeleteProductRequest is the DELETE_PRODUCT payload.
type DeleteProductRequest struct {
	Identity string `json:"identity"`
}

// GetPriceHistoryRequest is the GET_PRICE_HISTORY payload.
type GetPriceHistoryRequest struct {
	Identity string `json:"identity"`
}

// ImportDataRequest is the IMPORT_DATA payload; Payload carries the export
// envelope to restore.
type ImportDataRequest struct {
	Payload json.RawMessage `json:"payload"`
}

// ImportDataResult is the IMPORT_DATA result.
type ImportDataResult struct {
	Count int `json:"count"`
}

// CheckAndStorePriceRequest is the CHECK_AND_STORE_PRICE payload.
type CheckAndStorePriceRequest struct {
	Identity string `json:"identity"`
	Price    int64  `json:"price"`
}

// CheckAndStorePriceResult is the CHECK_AND_STORE_PRICE result.
type CheckAndStorePriceResult struct {
	PriceAdded bool `json:"priceAdded"`
}

// NewRequest builds a request envelope for action with payload.
func NewRequest(action Action, payload any) (Request, error) {
	if payload == nil {
		return Request{Action: action}, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("can't marshal %s payload: %w", action, err)
	}

	return Request{Action: action, Payload: raw}, nil
}

// OK builds a success response carrying data.
func OK(data any) Response {
	if data == nil {
		return Response{Success: true}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Fail(fmt.Errorf("can't marshal response data: %w", err))
	}

	return Response{Success: true, Data: raw}
}

// Fail builds an error response from err.
func Fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}
