package model

import "time"

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
	Members     []User    `json:"members"`
}

func (g Group) Clone() Group {
	c := g
	c.Members = append([]User{}, g.Members...)
	return c
}

func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// GroupMember is the role-annotated member record served by /groupes/{id}/membres.
type GroupMember struct {
	ID        string     `json:"id"`
	LastName  string     `json:"nom"`
	FirstName string     `json:"prenom"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"tel,omitempty"`
	CreatedAt *time.Time `json:"date_creation,omitempty"`
	Role      string     `json:"role"`
}

type CreateGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (in CreateGroupInput) Validate() error {
	return validGroupName(in.Name)
}

type GroupPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p GroupPatch) Validate() error {
	if p.Name != nil {
		return validGroupName(*p.Name)
	}
	return nil
}
