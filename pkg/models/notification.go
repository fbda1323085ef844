package model

import "time"

type Notification struct {
	ID               int64     `json:"id"`
	Contenu          string    `json:"contenu"`
	TypeNotification string    `json:"type_notification"`
	WindowLabel      *string   `json:"window_label"`
	EstLue           bool      `json:"est_lue"`
	DateEnvoi        time.Time `json:"date_envoi"`
	UtilisateurID    int64     `json:"utilisateur_id"`
	TacheID          *int64    `json:"tache_id"`
}

type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
