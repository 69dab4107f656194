package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pricetracker/internal/platform/models"
	"pricetracker/pkg/v1/actions"
)

// Ledger owns the persisted catalog and price histories.
type Ledger interface {
	Track(ctx context.Context, draft models.ProductRecord) (string, bool, error)
	Products(ctx context.Context) (map[string]models.ProductRecord, error)
	Update(ctx context.Context, identity string, updates models.ProductUpdate) (models.ProductRecord, error)
	Delete(ctx context.Context, identity string) error
	History(ctx context.Context, identity string) ([]models.PricePoint, error)
	Export(ctx context.Context) (models.ExportEnvelope, error)
	Import(ctx context.Context, raw []byte) (int, error)
	AppendPriceIfNewToday(ctx context.Context, identity string, price int64) (bool, error)
}

// errUnknownAction is returned for actions outside the closed protocol set.
var errUnknownAction = errors.New("Unknown action")

// Dispatch decodes one request envelope and routes it to the ledger. Every
// failure, including panics from ledger internals, is translated into the
// protocol's error envelope; nothing escapes the boundary.
func Dispatch(ctx context.Context, ledger Ledger, raw []byte) (response actions.Response) {
	defer func() {
		if recovered := recover(); recovered != nil {
			response = actions.Fail(fmt.Errorf("internal error: %v", recovered))
		}
	}()

	var request actions.Request
	if err := json.Unmarshal(raw, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode request: %w", err))
	}

	switch request.Action {
	case actions.ActionTrackProduct:
		return trackProduct(ctx, ledger, request.Payload)
	case actions.ActionGetProducts:
		return getProducts(ctx, ledger)
	case actions.ActionUpdateProduct:
		return updateProduct(ctx, ledger, request.Payload)
	case actions.ActionDeleteProduct:
		return deleteProduct(ctx, ledger, request.Payload)
	case actions.ActionGetPriceHistory:
		return getPriceHistory(ctx, ledger, request.Payload)
	case actions.ActionExportData:
		return exportData(ctx, ledger)
	case actions.ActionImportData:
		return importData(ctx, ledger, request.Payload)
	case actions.ActionCheckAndStorePrice:
		return checkAndStorePrice(ctx, ledger, request.Payload)
	default:
		return actions.Fail(errUnknownAction)
	}
}

func trackProduct(ctx context.Context, ledger Ledger, payload json.RawMessage) actions.Response {
	var request actions.TrackProductRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode track payload: %w", err))
	}

	id, isNew, err := ledger.Track(ctx, request.Record)
	if err != nil {
		return actions.Fail(err)
	}

	return actions.OK(actions.TrackProductResult{ID: id, IsNew: isNew})
}

func getProducts(ctx context.Context, ledger Ledger) actions.Response {
	products, err := ledger.Products(ctx)
	if err != nil {
		return actions.Fail(err)
	}

	return actions.OK(products)
}

func updateProduct(ctx context.Context, ledger Ledger, payload json.RawMessage) actions.Response {
	var request actions.UpdateProductRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode update payload: %w", err))
	}

	record, err := ledger.Update(ctx, request.Identity, request.Updates)
	if err != nil {
		return actions.Fail(err)
	}

	return actions.OK(record)
}

func deleteProduct(ctx context.Context, ledger Ledger, payload json.RawMessage) actions.Response {
	var request actions.DeleteProductRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode delete payload: %w", err))
	}

	if err := ledger.Delete(ctx, request.Identity); err != nil {
		return actions.Fail(err)
	}

	return actions.OK(nil)
}

func getPriceHistory(ctx context.Context, ledger Ledger, payload json.RawMessage) actions.Response {
	var request actions.GetPriceHistoryRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode history payload: %w", err))
	}

	history, err := ledger.History(ctx, request.Identity)
	if err != nil {
		return actions.Fail(err)
	}

	if history == nil {
		history = []models.PricePoint{}
	}

	return actions.OK(history)
}

func exportData(ctx context.Context, ledger Ledger) actions.Response {
	envelope, err := ledger.Export(ctx)
	if err != nil {
		return actions.Fail(err)
	}

	return actions.OK(envelope)
}

func importData(ctx context.Context, ledger Ledger, payload json.RawMessage) actions.Response {
	var request actions.ImportDataRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode import payload: %w", err))
	}

	count, err := ledger.Import(ctx, request.Payload)
	if err != nil {
		return actions.Fail(err)
	}

	return actions.OK(actions.ImportDataResult{Count: count})
}

func checkAndStorePrice(ctx context.Context, ledger Ledger, payload json.RawMessage) actions.Response {
	var request actions.CheckAndStorePriceRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return actions.Fail(fmt.Errorf("can't decode price payload: %w", err))
	}

	added, err := ledger.AppendPriceIfNewToday(ctx, request.Identity, request.Price)
	if err != nil {
		return actions.Fail(err)
	}

	return actions.OK(actions.CheckAndStorePriceResult{PriceAdded: added})
}
