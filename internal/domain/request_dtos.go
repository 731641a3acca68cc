package domain

type CreateEmergencyRequest struct {
	Address      string   `json:"address" validate:"required,max=300"`
	City         string   `json:"city" validate:"omitempty,area"`
	CarModel     string   `json:"carModel" validate:"required,max=80"`
	CarPlate     string   `json:"carPlate" validate:"required,max=20"`
	Description  string   `json:"description" validate:"max=1000"`
	BeforeImages []string `json:"beforeImages" validate:"max=4,dive,image_ref"`
	AreaFields
}

// UpdateRequestBody is the PUT /requests/{id} payload. Status selects the transition.
type UpdateRequestBody struct {
	Status       string   `json:"status" validate:"required"`
	AssignedTo   *string  `json:"assignedTo,omitempty"`
	BeforeImages []string `json:"beforeImages,omitempty" validate:"max=4,dive,image_ref"`
	AfterImages  []string `json:"afterImages,omitempty" validate:"max=4,dive,image_ref"`
}

type AssignRequestBody struct {
	WorkerID string `json:"workerId" validate:"required"`
}

type StartRequestBody struct {
	BeforeImages []string `json:"beforeImages,omitempty" validate:"max=4,dive,image_ref"`
}

type CompleteRequestBody struct {
	AfterImages []string `json:"afterImages" validate:"max=4,dive,image_ref"`
}

type ListRequestsFilter struct {
	Status *RequestStatus
	Page   int
	Limit  int
}

type ListRequestsResponse struct {
	Requests []EmergencyRequest `json:"requests"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
	Total    int                `json:"total"`
}
