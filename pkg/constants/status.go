package constants

const (
	StatutDone       = "Terminé"
	StatutInProgress = "En cours"
)

// Statut maps the completed flag onto the backend status label.
func Statut(completed bool) string {
	if completed {
		return StatutDone
	}
	return StatutInProgress
}

func CompletedFromStatut(statut string) bool {
	return statut == StatutDone
}

// MemberStatus is the per-member progress of a group task.
type MemberStatus string

const (
	MemberStatusPending    MemberStatus = "pending"
	MemberStatusInProgress MemberStatus = "in-progress"
	MemberStatusCompleted  MemberStatus = "completed"
	MemberStatusCancelled  MemberStatus = "cancelled"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusPending, MemberStatusInProgress, MemberStatusCompleted, MemberStatusCancelled:
		return true
	}
	return false
}

const DefaultMemberRole = "Membre"
