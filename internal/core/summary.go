package core

// DayTotal is the summed amount of one kind on one UTC calendar day.
type DayTotal struct {
	Day   string `json:"day"`
	Total Money  `json:"total"`
}

// CategoryTotal is the summed amount of one kind in one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}
