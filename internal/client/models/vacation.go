package models

import "github.com/dmitrijs2005/tripcat/internal/timex"

// Vacation is a single catalog offer. Created, updated and deleted only
// through Vacation Service round trips; the catalog cache never invents one.
type Vacation struct {
	ID              int        `json:"vacation_id"`
	Description     string     `json:"vacation_description"`
	CountryID       int        `json:"country_id"`
	Start           timex.Date `json:"vacation_start"`
	End             timex.Date `json:"vacation_end"`
	Price           float64    `json:"price"`
	PictureFileName string     `json:"picture_file_name"`
	LikesCount      int        `json:"likes_count"`
}

// Country is read-only reference data cached for the lifetime of a catalog view.
type Country struct {
	ID   int    `json:"country_id"`
	Name string `json:"country_name"`
}
