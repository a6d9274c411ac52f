package models

// SpinAllowance is stored as a whole JSON object; field names follow the browser variants.
type SpinAllowance struct {
	Day       string `json:"date"`
	Remaining int    `json:"spins"`
}

type AllowanceResult struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

type AllowanceResponse struct {
	Day       string `json:"day"`
	Remaining int    `json:"remaining"`
	DailyCap  int    `json:"daily_cap"`
	Degraded  bool   `json:"degraded"`
}
