package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"pricetracker/internal/platform/models"
)

//go:generate mockery --name Requester --filename requester.go

// Requester sends one request over the underlying channel and returns the
// raw response. A response that never arrives is the Requester's own timeout
// concern.
type Requester interface {
	Request(ctx context.Context, message []byte) ([]byte, error)
}

// ProtocolError is a failure reported by the remote handler through the
// response envelope.
type ProtocolError struct {
	Action  Action
	Message string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Action, e.Message)
}

// Client is the typed protocol client used by the detector side.
type Client struct {
	requester Requester
}

// NewClient returns a Client using the provided requester.
func NewClient(requester Requester) Client {
	return Client{requester: requester}
}

// TrackProduct requests an upsert of record.
func (c Client) TrackProduct(ctx context.Context, record models.ProductRecord) (TrackProductResult, error) {
	var result TrackProductResult
	err := c.call(ctx, ActionTrackProduct, TrackProductRequest{Record: record}, &result)
	return result, err
}

// GetProducts requests the full catalog.
func (c Client) GetProducts(ctx context.Context) (map[string]models.ProductRecord, error) {
	var result map[string]models.ProductRecord
	err := c.call(ctx, ActionGetProducts, nil, &result)
	return result, err
}

// UpdateProduct requests a field merge for identity and returns the updated
// record.
func (c Client) UpdateProduct(ctx context.Context, identity string, updates models.ProductUpdate) (models.ProductRecord, error) {
	var result models.ProductRecord
	err := c.call(ctx, ActionUpdateProduct, UpdateProductRequest{Identity: identity, Updates: updates}, &result)
	return result, err
}

// DeleteProduct requests removal of identity and its history.
func (c Client) DeleteProduct(ctx context.Context, identity string) error {
	return c.call(ctx, ActionDeleteProduct, DeleteProductRequest{Identity: identity}, nil)
}

// GetPriceHistory requests the ordered price history for identity.
func (c Client) GetPriceHistory(ctx context.Context, identity string) ([]models.PricePoint, error) {
	var result []models.PricePoint
	err := c.call(ctx, ActionGetPriceHistory, GetPriceHistoryRequest{Identity: identity}, &result)
	return result, err
}

// ExportData requests a full snapshot envelope.
func (c Client) ExportData(ctx context.Context) (models.ExportEnvelope, error) {
	var result models.ExportEnvelope
	err := c.call(ctx, ActionExportData, nil, &result)
	return result, err
}

// ImportData requests a wholesale restore from a snapshot envelope.
func (c Client) ImportData(ctx context.Context, payload json.RawMessage) (ImportDataResult, error) {
	var result ImportDataResult
	err := c.call(ctx, ActionImportData, ImportDataRequest{Payload: payload}, &result)
	return result, err
}

// CheckAndStorePrice requests an append of price for identity unless a point
// was already recorded today.
func (c Client) CheckAndStorePrice(ctx context.Context, identity string, price int64) (CheckAndStorePriceResult, error) {
	var result CheckAndStorePriceResult
	err := c.call(ctx, ActionCheckAndStorePrice, CheckAndStorePriceRequest{Identity: identity, Price: price}, &result)
	return result, err
}

func (c Client) call(ctx context.Context, action Action, payload any, result any) error {
	request, err := NewRequest(action, payload)
	if err != nil {
		return err
	}

	message, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("can't marshal %s request: %w", action, err)
	}

	raw, err := c.requester.Request(ctx, message)
	if err != nil {
		return fmt.Errorf("can't send %s request: %w", action, err)
	}

	var response Response
	if err := json.Unmarshal(raw, &response); err != nil {
		return fmt.Errorf("can't decode %s response: %w", action, err)
	}

	if !response.Success {
		return &ProtocolError{Action: action, Message: response.Error}
	}

	if result == nil || len(response.Data) == 0 {
		return nil
	}

	if err := json.Unmarshal(response.Data, result); err != nil {
		return fmt.Errorf("can't decode %s result: %w", action, err)
	}

	return nil
}
