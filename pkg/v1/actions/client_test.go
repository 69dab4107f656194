package actions_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pricetracker/internal/platform/models/modelstesting"
	"pricetracker/pkg/v1/actions"
	"pricetracker/pkg/v1/actions/mocks"
)

func respond(t *testing.T, response actions.Response) []byte {
	t.Helper()

	raw, err := json.Marshal(response)
	require.NoError(t, err, "can't marshal test response")

	return raw
}

func TestUnitTrackProduct(t *testing.T) {
	record := modelstesting.FakeProduct()
	want := actions.TrackProductResult{ID: record.Identity, IsNew: true}

	requester := mocks.NewRequester(t)
	requester.On("Request", mock.Anything, mock.MatchedBy(func(message []byte) bool {
		var request actions.Request
		if err := json.Unmarshal(message, &request); err != nil {
			return false
		}
		return request.Action == actions.ActionTrackProduct
	})).Return(respond(t, actions.OK(want)), nil)

	client := actions.NewClient(requester)
	result, err := client.TrackProduct(context.TODO(), record)

	require.NoError(t, err, "shouldn't return any error")
	assert.Equal(t, want, result, "should decode the typed result")
}

func TestUnitClientRequesterError(t *testing.T) {
	requester := mocks.NewRequester(t)
	requester.On("Request", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	client := actions.NewClient(requester)
	_, err := client.GetProducts(context.TODO())

	require.ErrorIs(t, err, assert.AnError, "should return error containing assert.AnError")
}

func TestUnitClientProtocolError(t *testing.T) {
	requester := mocks.NewRequester(t)
	requester.On("Request", mock.Anything, mock.Anything).
		Return(respond(t, actions.Response{Success: false, Error: "product not found: ghost"}), nil)

	client := actions.NewClient(requester)
	err := client.DeleteProduct(context.TODO(), "ghost")

	var protocolErr *actions.ProtocolError
	require.ErrorAs(t, err, &protocolErr, "handler failure should surface as a protocol error")
	assert.Equal(t, actions.ActionDeleteProduct, protocolErr.Action, "error should carry the action")
	assert.Contains(t, protocolErr.Message, "ghost", "error should carry the handler message")
}

func TestUnitCheckAndStorePrice(t *testing.T) {
	tests := map[string]struct {
		priceAdded bool
	}{
		"price added":        {priceAdded: true},
		"already seen today": {priceAdded: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			requester := mocks.NewRequester(t)
			requester.On("Request", mock.Anything, mock.Anything).
				Return(respond(t, actions.OK(actions.CheckAndStorePriceResult{PriceAdded: tt.priceAdded})), nil)

			client := actions.NewClient(requester)
			result, err := client.CheckAndStorePrice(context.TODO(), "shop_item", 12345)

			require.NoError(t, err, "shouldn't return any error")
			assert.Equal(t, tt.priceAdded, result.PriceAdded, "should report whether the point was added")
		})
	}
}
