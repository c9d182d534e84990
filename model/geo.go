// api/model/geo.go
package model

// GeoLocation is the resolved location of a request IP.
type GeoLocation struct {
	CountryCode string `json:"country_code"`
	Region      string `json:"region"`
	City        string `json:"city"`
}
