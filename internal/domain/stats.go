package domain

// Stats is the aggregate view derived from a snapshot. It is recomputed on
// demand and never persisted.
type Stats struct {
	TotalCoffees int       `json:"totalCoffees"`
	AvgPerDay    int       `json:"avgPerDay"`
	TopDrinker   *User     `json:"topDrinker"`
	MostRecent   *Activity `json:"mostRecent"`
	ActiveUsers  int       `json:"activeUsers"`
}
