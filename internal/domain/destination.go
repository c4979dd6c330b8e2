package domain

import "time"

// DestinationName is the enumerated travel-location category a plan points at.
type DestinationName string

// Known destination categories, seeded by migration.
const (
	DestinationSeoul     DestinationName = "SEOUL"
	DestinationBusan     DestinationName = "BUSAN"
	DestinationIncheon   DestinationName = "INCHEON"
	DestinationGangneung DestinationName = "GANGNEUNG"
	DestinationGyeongju  DestinationName = "GYEONGJU"
	DestinationJeonju    DestinationName = "JEONJU"
	DestinationYeosu     DestinationName = "YEOSU"
	DestinationJeju      DestinationName = "JEJU"
)

// Valid reports whether n is one of the seeded destination names.
func (n DestinationName) Valid() bool {
	switch n {
	case DestinationSeoul, DestinationBusan, DestinationIncheon,
		DestinationGangneung, DestinationGyeongju, DestinationJeonju,
		DestinationYeosu, DestinationJeju:
		return true
	}
	return false
}

// Destination is a reference row plans point at. Rows are seeded by
// migration and never created through the API.
type Destination struct {
	ID        int64           `json:"id"`
	Name      DestinationName `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
}
