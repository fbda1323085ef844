package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Oumaima1mal/task-pilot-front/pkg/constants"
	model "github.com/Oumaima1mal/task-pilot-front/pkg/models"
)

type GroupGateway struct {
	client *Client
	now    func() time.Time
}

func NewGroupGateway(client *Client) *GroupGateway {
	return &GroupGateway{client: client, now: time.Now}
}

func (g *GroupGateway) List(ctx context.Context) ([]model.Group, error) {
	var items []groupDTO
	if err := g.client.do(ctx, request{method: http.MethodGet, path: "/groupes/", out: &items}); err != nil {
		return nil, err
	}

	now := g.now()
	out := make([]model.Group, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel(now))
	}
	return out, nil
}

func (g *GroupGateway) Create(ctx context.Context, in model.CreateGroupInput) (model.Group, error) {
	body := groupRequest{Nom: &in.Name, Description: &in.Description}
	return g.write(ctx, http.MethodPost, "/groupes/", body)
}

func (g *GroupGateway) Update(ctx context.Context, id string, patch model.GroupPatch) (model.Group, error) {
	body := groupRequest{Nom: patch.Name, Description: patch.Description}
	return g.write(ctx, http.MethodPut, "/groupes/"+url.PathEscape(id), body)
}

func (g *GroupGateway) write(ctx context.Context, method, path string, body groupRequest) (model.Group, error) {
	var out groupDTO
	if err := g.client.do(ctx, request{method: method, path: path, body: body, out: &out}); err != nil {
		return model.Group{}, err
	}
	return out.toModel(g.now()), nil
}

func (g *GroupGateway) Delete(ctx context.Context, id string) error {
	return g.client.do(ctx, request{method: http.MethodDelete, path: "/groupes/" + url.PathEscape(id)})
}

func (g *GroupGateway) AddMember(ctx context.Context, groupID, userID string) error {
	return g.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/groupes/ajouter-membre",
		body: addMemberRequest{
			UtilisateurID: numericOrString(userID),
			GroupeID:      numericOrString(groupID),
			Role:          constants.DefaultMemberRole,
		},
	})
}

func (g *GroupGateway) RemoveMember(ctx context.Context, groupID, userID string) error {
	return g.client.do(ctx, request{
		method: http.MethodDelete,
		path:   "/groupes/" + url.PathEscape(groupID) + "/membres/" + url.PathEscape(userID),
	})
}

func (g *GroupGateway) ListUsers(ctx context.Context) ([]model.User, error) {
	var items []userDTO
	if err := g.client.do(ctx, request{method: http.MethodGet, path: "/utilisateurs/", out: &items}); err != nil {
		return nil, err
	}
	return usersToModel(items), nil
}

func (g *GroupGateway) Members(ctx context.Context, groupID string) ([]model.GroupMember, error) {
	var items []groupMemberDTO
	err := g.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/groupes/" + url.PathEscape(groupID) + "/membres",
		out:    &items,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.GroupMember, 0, len(items))
	for _, d := range items {
		out = append(out, d.toModel())
	}
	return out, nil
}
