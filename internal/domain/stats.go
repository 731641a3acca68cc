package domain

type RequestStats struct {
	Total    int                   `json:"total"`
	ByStatus map[RequestStatus]int `json:"byStatus"`
}
