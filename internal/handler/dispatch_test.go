package handler_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricetracker/internal/handler"
	"pricetracker/internal/ledger"
	"pricetracker/internal/platform/models"
	"pricetracker/internal/platform/models/modelstesting"
	"pricetracker/internal/platform/store"
	"pricetracker/pkg/v1/actions"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Timestamp() int64 { return c.now.UnixMilli() }
func (c fixedClock) Now() time.Time   { return c.now }

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	clock := fixedClock{now: time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)}
	return ledger.New(store.NewMemory(), ledger.WithClock(clock))
}

func dispatch(t *testing.T, led handler.Ledger, action actions.Action, payload any) actions.Response {
	t.Helper()

	request, err := actions.NewRequest(action, payload)
	require.NoError(t, err, "can't build test request")

	raw, err := json.Marshal(request)
	require.NoError(t, err, "can't marshal test request")

	return handler.Dispatch(context.TODO(), led, raw)
}

func decodeData(t *testing.T, response actions.Response, result any) {
	t.Helper()

	require.True(t, response.Success, "response should be successful, got error: %s", response.Error)
	require.NoError(t, json.Unmarshal(response.Data, result), "can't decode response data")
}

func TestUnitDispatchTrackAndGet(t *testing.T) {
	led := newLedger(t)
	record := modelstesting.FakeProduct()

	var tracked actions.TrackProductResult
	decodeData(t, dispatch(t, led, actions.ActionTrackProduct, actions.TrackProductRequest{Record: record}), &tracked)
	assert.True(t, tracked.IsNew, "first track should report new")
	assert.Equal(t, record.Identity, tracked.ID, "should return the derived identity")

	decodeData(t, dispatch(t, led, actions.ActionTrackProduct, actions.TrackProductRequest{Record: record}), &tracked)
	assert.False(t, tracked.IsNew, "second track should report existing")

	var products map[string]models.ProductRecord
	decodeData(t, dispatch(t, led, actions.ActionGetProducts, nil), &products)
	require.Len(t, products, 1, "catalog should contain the tracked product")
	assert.Equal(t, record.Title, products[tracked.ID].Title, "record should round-trip")
}

func TestUnitDispatchUpdateDelete(t *testing.T) {
	led := newLedger(t)
	record := modelstesting.FakeProduct()

	var tracked actions.TrackProductResult
	decodeData(t, dispatch(t, led, actions.ActionTrackProduct, actions.TrackProductRequest{Record: record}), &tracked)

	newTitle := "新しいタイトル"
	var updated models.ProductRecord
	decodeData(t, dispatch(t, led, actions.ActionUpdateProduct, actions.UpdateProductRequest{
		Identity: tracked.ID,
		Updates:  models.ProductUpdate{Title: &newTitle},
	}), &updated)
	assert.Equal(t, newTitle, updated.Title, "update should return the merged record")

	response := dispatch(t, led, actions.ActionDeleteProduct, actions.DeleteProductRequest{Identity: tracked.ID})
	assert.True(t, response.Success, "delete of known identity should succeed")

	response = dispatch(t, led, actions.ActionDeleteProduct, actions.DeleteProductRequest{Identity: tracked.ID})
	require.False(t, response.Success, "delete of unknown identity should fail")
	assert.Contains(t, response.Error, tracked.ID, "error should embed the identity")
}

func TestUnitDispatchPriceHistory(t *testing.T) {
	led := newLedger(t)
	record := modelstesting.FakeProduct()

	var tracked actions.TrackProductResult
	decodeData(t, dispatch(t, led, actions.ActionTrackProduct, actions.TrackProductRequest{Record: record}), &tracked)

	var check actions.CheckAndStorePriceResult
	decodeData(t, dispatch(t, led, actions.ActionCheckAndStorePrice, actions.CheckAndStorePriceRequest{
		Identity: tracked.ID,
		Price:    999,
	}), &check)
	assert.False(t, check.PriceAdded, "track already seeded today's point")

	var history []models.PricePoint
	decodeData(t, dispatch(t, led, actions.ActionGetPriceHistory, actions.GetPriceHistoryRequest{
		Identity: tracked.ID,
	}), &history)
	assert.Len(t, history, 1, "history should hold the seed point only")

	// unknown identity yields an empty list, not an error
	decodeData(t, dispatch(t, led, actions.ActionGetPriceHistory, actions.GetPriceHistoryRequest{
		Identity: "ghost",
	}), &history)
	assert.Empty(t, history, "unknown identity should yield an empty history")
}

func TestUnitDispatchExportImport(t *testing.T) {
	led := newLedger(t)
	record := modelstesting.FakeProduct()

	var tracked actions.TrackProductResult
	decodeData(t, dispatch(t, led, actions.ActionTrackProduct, actions.TrackProductRequest{Record: record}), &tracked)

	var envelope models.ExportEnvelope
	decodeData(t, dispatch(t, led, actions.ActionExportData, nil), &envelope)
	assert.Equal(t, models.ExportVersion, envelope.Version, "export should carry the version tag")

	raw, err := json.Marshal(envelope)
	require.NoError(t, err, "can't marshal envelope")

	restored := newLedger(t)
	var imported actions.ImportDataResult
	decodeData(t, dispatch(t, restored, actions.ActionImportData, actions.ImportDataRequest{
		Payload: raw,
	}), &imported)
	assert.Equal(t, 1, imported.Count, "import should report the product count")
}

func TestUnitDispatchImportValidationFailure(t *testing.T) {
	led := newLedger(t)

	response := dispatch(t, led, actions.ActionImportData, actions.ImportDataRequest{
		Payload: json.RawMessage(`{"no":"envelope"}`),
	})

	require.False(t, response.Success, "invalid payload should fail")
	assert.Contains(t, response.Error, "invalid import payload", "failure should be the typed validation error")
}

func TestUnitDispatchUnknownAction(t *testing.T) {
	led := newLedger(t)

	response := handler.Dispatch(context.TODO(), led, []byte(`{"action":"SELF_DESTRUCT"}`))

	require.False(t, response.Success, "unknown action should fail")
	assert.Equal(t, "Unknown action", response.Error, "should report the unknown action error")
}

func TestUnitDispatchMalformedRequest(t *testing.T) {
	led := newLedger(t)

	response := handler.Dispatch(context.TODO(), led, []byte(`not json`))

	require.False(t, response.Success, "malformed request should fail")
	assert.NotEmpty(t, response.Error, "failure should carry an error message")
}
