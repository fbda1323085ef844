package constants

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityToWire = map[Priority]string{
	PriorityLow:    "Faible",
	PriorityMedium: "Important",
	PriorityHigh:   "Urgent",
}

var priorityFromWire = map[string]Priority{
	"Faible":    PriorityLow,
	"Important": PriorityMedium,
	"Urgent":    PriorityHigh,
}

func (p Priority) Valid() bool {
	_, ok := priorityToWire[p]
	return ok
}

// Wire returns the backend label; unknown priorities map to "Important".
func (p Priority) Wire() string {
	if v, ok := priorityToWire[p]; ok {
		return v
	}
	return priorityToWire[PriorityMedium]
}

func PriorityFromWire(label string) Priority {
	if p, ok := priorityFromWire[label]; ok {
		return p
	}
	return PriorityMedium
}
