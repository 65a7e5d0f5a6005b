package model

// PlanID identifies a subscription tier.
type PlanID string

const (
	PlanFree         PlanID = "free"
	PlanPremium      PlanID = "premium"
	PlanFullyManaged PlanID = "fully_managed"
)

// Unlimited disables enforcement for a dimension. A limit of Unlimited must
// never be compared numerically against usage.
const Unlimited = -1

// UsageLimits are the per-plan caps across every quota dimension.
type UsageLimits struct {
	MaxMemorials         int
	MaxPhotosPerMemorial int
	MaxVideosPerMemorial int
	MaxVideoSizeMB       int
	MaxTotalStorageMB    int
	MaxTimelineEvents    int
}

// planLimits is the authoritative plan table, defined at deploy time.
var planLimits = map[PlanID]UsageLimits{
	PlanFree: {
		MaxMemorials:         1,
		MaxPhotosPerMemorial: 3,
		MaxVideosPerMemorial: 1,
		MaxVideoSizeMB:       50,
		MaxTotalStorageMB:    100,
		MaxTimelineEvents:    5,
	},
	PlanPremium: {
		MaxMemorials:         5,
		MaxPhotosPerMemorial: 100,
		MaxVideosPerMemorial: 50,
		MaxVideoSizeMB:       Unlimited,
		MaxTotalStorageMB:    5120,
		MaxTimelineEvents:    100,
	},
	PlanFullyManaged: {
		MaxMemorials:         Unlimited,
		MaxPhotosPerMemorial: Unlimited,
		MaxVideosPerMemorial: Unlimited,
		MaxVideoSizeMB:       Unlimited,
		MaxTotalStorageMB:    Unlimited,
		MaxTimelineEvents:    Unlimited,
	},
}

// planOrder lists tiers from most to least restrictive, used to decide
// whether a plan change would lift a denied limit.
var planOrder = []PlanID{PlanFree, PlanPremium, PlanFullyManaged}

// LimitsFor returns the limits for a plan. Unknown plans resolve to the free
// tier so a bad plan identifier restricts rather than unlocks.
func LimitsFor(plan PlanID) UsageLimits {
	limits, ok := planLimits[plan]
	if !ok {
		return planLimits[PlanFree]
	}
	return limits
}

// HigherPlans returns the tiers above the given plan, lowest first. Unknown
// plans are treated as free.
func HigherPlans(plan PlanID) []PlanID {
	for i, p := range planOrder {
		if p == plan {
			return planOrder[i+1:]
		}
	}
	return planOrder[1:]
}
