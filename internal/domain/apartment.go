package domain

type Apartment struct {
	ID          int64  `json:"id"`
	Block       string `json:"block"`
	Floor       string `json:"floor"`
	ApartmentNo string `json:"apartment_no"`
	Rent        int64  `json:"rent"`
	ImageURL    string `json:"image_url"`
}

// ApartmentPage is one page of the filtered catalog.
type ApartmentPage struct {
	Apartments  []Apartment `json:"apartments"`
	CurrentPage int         `json:"current_page"`
	TotalPages  int         `json:"total_pages"`
}
