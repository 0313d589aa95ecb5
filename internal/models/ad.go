package models

import "time"

type AdStatus string

const (
	AdStatusPending  AdStatus = "pending"
	AdStatusApproved AdStatus = "approved"
	AdStatusRejected AdStatus = "rejected"
)

type AdPlan string

const (
	AdPlanFree      AdPlan = "free"
	AdPlanState     AdPlan = "state"
	AdPlanTwoStates AdPlan = "two-states"
	AdPlanPremium   AdPlan = "premium"
)

type Ad struct {
	ID              string
	UserID          string
	Title           string
	Description     string
	Price           float64
	Category        string
	Subcategory     string
	Region          string
	District        string
	Contact         string
	Images          []string
	Plan            AdPlan
	DurationDays    int
	CoverageRegions []string
	TotalCost       float64
	ExpiresAt       *time.Time
	IsFeatured      bool
	IsSold          bool
	Status          AdStatus
	RejectionReason *string
	Views           int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AdFilter narrows public listing queries. Zero values mean "no constraint".
type AdFilter struct {
	Category string
	Region   string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Limit    int
}
