package handlers

import "github.com/reviewfighters/reviewfighters-api/internal/models"

var moderators = []models.Role{models.RoleStaff, models.RoleAdmin, models.RoleOwner}

// ReviewOwnership lets authors manage their own reviews. Moderation state
// (status, fake score) is set by moderators only.
func ReviewOwnership() Ownership[models.Review] {
	return Ownership[models.Review]{
		Owner:      func(rv *models.Review) *string { return &rv.UserID },
		Privileged: moderators,
		Protect: func(rv *models.Review, existing *models.Review) {
			if existing == nil {
				rv.Status = models.ReviewStatusPending
				rv.FakeScore = 0
				return
			}
			rv.Status = existing.Status
			rv.FakeScore = existing.FakeScore
		},
	}
}

func ProfileOwnership() Ownership[models.UserProfile] {
	return Ownership[models.UserProfile]{
		Owner:      func(p *models.UserProfile) *string { return &p.UserID },
		Privileged: moderators,
	}
}

// AffiliateOwnership keeps affiliates to their own record; commission,
// earnings and status are managed by admins.
func AffiliateOwnership() Ownership[models.Affiliate] {
	return Ownership[models.Affiliate]{
		Owner:      func(a *models.Affiliate) *string { return &a.UserID },
		Privileged: []models.Role{models.RoleAdmin, models.RoleOwner},
		Protect: func(a *models.Affiliate, existing *models.Affiliate) {
			if existing == nil {
				a.CommissionRate = 0
				a.TotalEarnings = 0
				a.Status = ""
				return
			}
			a.CommissionRate = existing.CommissionRate
			a.TotalEarnings = existing.TotalEarnings
			a.Status = existing.Status
		},
	}
}
