// internal/models/trip.go
package models

// TravelerType is a coarse demographic tag used for budget allocation
// and candidate scoring.
type TravelerType string

const (
	TravelerFamilyWithKids TravelerType = "family_with_kids"
	TravelerCouple         TravelerType = "couple"
	TravelerSolo           TravelerType = "solo"
	TravelerOlderAdults    TravelerType = "older_adults"
	TravelerGroupFriends   TravelerType = "group_friends"
	TravelerBusiness       TravelerType = "business"
	TravelerLeisure        TravelerType = "leisure"
)

// RequestType labels a trip request to select a research strategy.
type RequestType string

const (
	RequestSpecific      RequestType = "specific"
	RequestAbstract      RequestType = "abstract"
	RequestMultiLocation RequestType = "multi_location"
	RequestConstrained   RequestType = "constrained"
)

// TripQuery is the parsed trip intent. It is created once per request by the
// extraction stage and normalized by the validation stage; all later stages
// treat it as read-only.
type TripQuery struct {
	Query                string       `json:"query"`
	OriginLocation       string       `json:"originLocation,omitempty"`
	MaxTravelTime        string       `json:"maxTravelTime,omitempty"`
	TravelDates          string       `json:"travelDates,omitempty"`
	Budget               string       `json:"budget,omitempty"`
	Interests            []string     `json:"interests,omitempty"`
	TravelStyle          string       `json:"travelStyle,omitempty"`
	TravelerType         TravelerType `json:"travelerType,omitempty"`
	GroupSize            int          `json:"groupSize,omitempty"`
	AgeRange             string       `json:"ageRange,omitempty"`
	MobilityRequirements string       `json:"mobilityRequirements,omitempty"`
	SeasonalPreference   string       `json:"seasonalPreference,omitempty"`
}

// Clone returns a copy of the query with its own interests slice, so the
// validation stage can return a normalized value without mutating its input.
func (q TripQuery) Clone() TripQuery {
	out := q
	if len(q.Interests) > 0 {
		out.Interests = make([]string, len(q.Interests))
		copy(out.Interests, q.Interests)
	}
	return out
}
