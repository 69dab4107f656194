package modelstesting

import (
	"fmt"
	"math/rand"

	"github.com/go-faker/faker/v4"

	"pricetracker/internal/platform/models"
)

// FakeProduct returns models.ProductRecord with fake data.
func FakeProduct(ops ...func(p *models.ProductRecord)) models.ProductRecord {
	shopID := faker.Username()
	itemCode := faker.Username()

	product := models.ProductRecord{
		Identity:     fmt.Sprintf("%s_%s", shopID, itemCode),
		URL:          fmt.Sprintf("https://item.example.co.jp/%s/%s/", shopID, itemCode),
		Title:        faker.Sentence(),
		Price:        rand.Int63n(1_000_000),
		ShopID:       shopID,
		ItemCode:     itemCode,
		Availability: models.Available,
		SellerName:   faker.Name(),
		CreatedAt:    rand.Int63(),
		UpdatedAt:    rand.Int63(),
		Alert:        models.DefaultAlertConfig(),
	}

	for _, op := range ops {
		op(&product)
	}

	return product
}

// FakePricePoint returns models.PricePoint with fake data.
func FakePricePoint(ops ...func(p *models.PricePoint)) models.PricePoint {
	point := models.PricePoint{
		Price:     rand.Int63n(1_000_000),
		Timestamp: rand.Int63(),
	}

	for _, op := range ops {
		op(&point)
	}

	return point
}

// FakeHistory returns a history of n fake points.
func FakeHistory(n int) []models.PricePoint {
	history := make([]models.PricePoint, 0, n)
	for i := 0; i < n; i++ {
		history = append(history, FakePricePoint())
	}

	return history
}
