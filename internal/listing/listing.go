// Package listing holds the air-rights NFT listing record consumed by the
// purchase pipeline. Listings arrive from an external marketplace feed;
// this client only reads them.
package listing

import (
	"airspace/internal/credential"
	id "airspace/pkg/domain"
	"airspace/pkg/validation"
)

// Listing is one tokenized air-rights parcel offered for sale.
type Listing struct {
	ID              id.AssetID `json:"id" validate:"required"`
	TokenID         int64      `json:"token_id"`
	Title           string     `json:"title"`
	PropertyAddress string     `json:"propertyAddress" validate:"notblank"`
	CurrentHeight   float64    `json:"currentHeight" validate:"gte=0"`
	MaximumHeight   float64    `json:"maximumHeight" validate:"gtefield=CurrentHeight"`
	AvailableFloors int        `json:"availableFloors"`
	Price           float64    `json:"price" validate:"gte=0"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
}

// Validate checks the fields the purchase pipeline depends on.
func (l Listing) Validate() error {
	return validation.Validate(l)
}

// AirRightsDetails maps the listing onto air-rights credential claims.
func (l Listing) AirRightsDetails() credential.AirRightsDetails {
	return credential.AirRightsDetails{
		PropertyDetails: credential.PropertyDetails{
			PropertyAddress: l.PropertyAddress,
			CurrentHeight:   l.CurrentHeight,
			MaximumHeight:   l.MaximumHeight,
			AvailableFloors: l.AvailableFloors,
			Coordinates: &credential.Coordinates{
				Latitude:  l.Latitude,
				Longitude: l.Longitude,
			},
		},
		Price: l.Price,
	}
}
