package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

// flexID accepts both numeric and string identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	*id = flexID(b)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime accepts the timestamp shapes the backend emits, with or without a zone.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if strings.ContainsAny(layout, "Z") {
			if v, err := time.Parse(layout, s); err == nil {
				return v, nil
			}
			continue
		}
		if v, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return v, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format %q", s)
}

func (t *flexTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// numericOrString sends ids as numbers when the backend's integer keys allow it.
func numericOrString(id string) any {
	if id == "" {
		return nil
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

type memberStatusDTO struct {
	UtilisateurID flexID    `json:"utilisateur_id"`
	Statut        string    `json:"statut"`
	DateMiseAJour *flexTime `json:"date_mise_a_jour"`
}

type taskDTO struct {
	ID             flexID            `json:"id"`
	Titre          string            `json:"titre"`
	Description    *string           `json:"description"`
	Priorite       string            `json:"priorite"`
	Categorie      string            `json:"categorie"`
	DateEcheance   *flexTime         `json:"date_echeance"`
	Rappel         *flexTime         `json:"rappel"`
	Statut         string            `json:"statut"`
	DateCreation   *flexTime         `json:"date_creation"`
	GroupeID       *flexID           `json:"groupe_id"`
	StatutsMembres []memberStatusDTO `json:"statuts_membres"`
}

func (d taskDTO) toModel(now time.Time) model.Task {
	t := model.Task{
		ID:        string(d.ID),
		Title:     d.Titre,
		Priority:  constants.PriorityFromWire(d.Priorite),
		Category:  constants.CategoryFromWire(d.Categorie),
		Completed: constants.CompletedFromStatut(d.Statut),
		DueDate:   d.DateEcheance.ptr(),
		Reminder:  d.Rappel.ptr(),
		CreatedAt: now,
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if created := d.DateCreation.ptr(); created != nil {
		t.CreatedAt = *created
	}
	if d.GroupeID != nil {
		t.GroupID = string(*d.GroupeID)
	}
	for _, ms := range d.StatutsMembres {
		entry := model.TaskMemberStatus{UserID: string(ms.UtilisateurID), Status: ms.Statut}
		if at := ms.DateMiseAJour.ptr(); at != nil {
			entry.UpdatedAt = *at
		}
		t.MemberStatuses = append(t.MemberStatuses, entry)
	}
	return t
}

func tasksToModel(items []taskDTO, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel(now))
	}
	return out
}

type createTaskRequest struct {
	Titre        string     `json:"titre"`
	Description  string     `json:"description"`
	Priorite     string     `json:"priorite"`
	Categorie    string     `json:"categorie"`
	DateEcheance *time.Time `json:"date_echeance"`
	Rappel       *time.Time `json:"rappel"`
	Statut       string     `json:"statut"`
	GroupeID     any        `json:"groupe_id"`
}

func newCreateTaskRequest(in model.CreateTaskInput) createTaskRequest {
	return createTaskRequest{
		Titre:        in.Title,
		Description:  in.Description,
		Priorite:     in.Priority.Wire(),
		Categorie:    in.Category.Wire(),
		DateEcheance: in.DueDate,
		Rappel:       in.Reminder,
		Statut:       constants.Statut(in.Completed),
		GroupeID:     numericOrString(in.GroupID),
	}
}

// patchBody carries only the fields the patch sets.
func patchBody(p model.TaskPatch) map[string]any {
	body := make(map[string]any)
	if p.Title != nil {
		body["titre"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Priority != nil {
		body["priorite"] = p.Priority.Wire()
	}
	if p.Category != nil {
		body["categorie"] = p.Category.Wire()
	}
	if p.Completed != nil {
		body["statut"] = constants.Statut(*p.Completed)
	}
	if p.DueDate != nil {
		body["date_echeance"] = *p.DueDate
	}
	if p.Reminder != nil {
		body["rappel"] = *p.Reminder
	}
	if p.GroupID != nil {
		body["groupe_id"] = numericOrString(*p.GroupID)
	}
	return body
}

type memberStateDTO struct {
	UtilisateurID flexID    `json:"utilisateur_id"`
	Nom           string    `json:"nom"`
	Prenom        string    `json:"prenom"`
	Statut        string    `json:"statut"`
	DateMiseAJour *flexTime `json:"date_mise_a_jour"`
}

func (d memberStateDTO) toModel() model.MemberTaskState {
	s := model.MemberTaskState{
		UserID:    string(d.UtilisateurID),
		FirstName: d.Prenom,
		LastName:  d.Nom,
		Status:    d.Statut,
	}
	if at := d.DateMiseAJour.ptr(); at != nil {
		s.UpdatedAt = *at
	}
	return s
}

type scheduledTaskDTO struct {
	ID               flexID   `json:"id"`
	TitreTache       string   `json:"titre_tache"`
	DescriptionTache *string  `json:"description_tache"`
	DateDebut        flexTime `json:"date_debut"`
	Duree            int64    `json:"duree"`
}

// toModel projects an occurrence onto a task: it is due when it starts and
// the reminder marks its end.
func (d scheduledTaskDTO) toModel(now time.Time) model.Task {
	start := d.DateDebut.Time
	end := start.Add(time.Duration(d.Duree) * time.Second)
	t := model.Task{
		ID:        string(d.ID),
		Title:     d.TitreTache,
		Priority:  constants.PriorityMedium,
		Category:  constants.CategoryOther,
		DueDate:   &start,
		Reminder:  &end,
		CreatedAt: now,
	}
	if d.DescriptionTache != nil {
		t.Description = *d.DescriptionTache
	}
	return t
}

type userDTO struct {
	ID     flexID `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func (d userDTO) displayName() string {
	if d.Prenom != "" && d.Nom != "" {
		return d.Prenom + " " + d.Nom
	}
	if d.Email != "" {
		return d.Email
	}
	return "Utilisateur"
}

func (d userDTO) toModel() model.User {
	return model.User{
		ID:     string(d.ID),
		Name:   d.displayName(),
		Email:  d.Email,
		Avatar: d.Avatar,
	}
}

func usersToModel(items []userDTO) []model.User {
	out := make([]model.User, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel())
	}
	return out
}

type groupDTO struct {
	ID           flexID    `json:"id"`
	Nom          string    `json:"nom"`
	Description  *string   `json:"description"`
	DateCreation *flexTime `json:"date_creation"`
	CreateurID   *flexID   `json:"createur_id"`
	Membres      []userDTO `json:"membres"`
}

func (d groupDTO) toModel(now time.Time) model.Group {
	g := model.Group{
		ID:        string(d.ID),
		Name:      d.Nom,
		CreatedAt: now,
		CreatedBy: "1",
		Members:   usersToModel(d.Membres),
	}
	if d.Description != nil {
		g.Description = *d.Description
	}
	if created := d.DateCreation.ptr(); created != nil {
		g.CreatedAt = *created
	}
	if d.CreateurID != nil && *d.CreateurID != "" {
		g.CreatedBy = string(*d.CreateurID)
	}
	return g
}

type groupRequest struct {
	Nom         *string `json:"nom,omitempty"`
	Description *string `json:"description,omitempty"`
}

type addMemberRequest struct {
	UtilisateurID any    `json:"utilisateur_id"`
	GroupeID      any    `json:"groupe_id"`
	Role          string `json:"role"`
}

type groupMemberDTO struct {
	ID           flexID    `json:"id"`
	Nom          string    `json:"nom"`
	Prenom       string    `json:"prenom"`
	Email        string    `json:"email"`
	Tel          string    `json:"tel"`
	DateCreation *flexTime `json:"date_creation"`
	Role         string    `json:"role"`
}

func (d groupMemberDTO) toModel() model.GroupMember {
	return model.GroupMember{
		ID:        string(d.ID),
		LastName:  d.Nom,
		FirstName: d.Prenom,
		Email:     d.Email,
		Phone:     d.Tel,
		CreatedAt: d.DateCreation.ptr(),
		Role:      d.Role,
	}
}

type notificationDTO struct {
	ID               int64     `json:"id"`
	Contenu          string    `json:"contenu"`
	TypeNotification string    `json:"type_notification"`
	WindowLabel      *string   `json:"window_label"`
	EstLue           bool      `json:"est_lue"`
	DateEnvoi        *flexTime `json:"date_envoi"`
	UtilisateurID    int64     `json:"utilisateur_id"`
	TacheID          *int64    `json:"tache_id"`
}

func (d notificationDTO) toModel(now time.Time) model.Notification {
	n := model.Notification{
		ID:               d.ID,
		Contenu:          d.Contenu,
		TypeNotification: d.TypeNotification,
		WindowLabel:      d.WindowLabel,
		EstLue:           d.EstLue,
		DateEnvoi:        now,
		UtilisateurID:    d.UtilisateurID,
		TacheID:          d.TacheID,
	}
	if sent := d.DateEnvoi.ptr(); sent != nil {
		n.DateEnvoi = *sent
	}
	return n
}

// DecodeNotification parses one push payload.
func DecodeNotification(payload []byte) (model.Notification, error) {
	var d notificationDTO
	if err := json.Unmarshal(payload, &d); err != nil {
		return model.Notification{}, err
	}
	return d.toModel(time.Now()), nil
}
