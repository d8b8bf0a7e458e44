package gateway

import (
	"context"
	"fmt"

	"sge-console/core/model"
	"sge-console/core/rbac"
	"sge-console/core/state"
	"sge-console/core/utils"
	"sge-console/core/view"
)

// UsersGateway covers the admin user management endpoints. The backend
// rejects self-edits, self-deletes and deleting admin accounts; those
// refusals surface here as transient error notices.
type UsersGateway struct {
	d *deps
}

type UserDraft struct {
	Username string
	Email    string
	FullName string
	Role     string
	Password string
	Active   bool
}

type userCreatePayload struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	Password *string `json:"password,omitempty"`
	Active   bool    `json:"active"`
}

// UserUpdate patches only the fields that are set.
type UserUpdate struct {
	Email       *string `json:"email,omitempty"`
	Role        *string `json:"role,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	Active      *bool   `json:"active,omitempty"`
	NewPassword *string `json:"new_password,omitempty"`
}

func (g *UsersGateway) List(ctx context.Context) error {
	var users []model.User
	if err := g.d.client.GetJSON(ctx, "/api/admin/users", nil, &users); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.UsersLoaded{Users: users})
	return nil
}

func (g *UsersGateway) Create(ctx context.Context, draft UserDraft) error {
	if !g.d.guard.begin("create-user") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("create-user")

	if err := requireFields(map[string]string{
		"username":  draft.Username,
		"email":     draft.Email,
		"full_name": draft.FullName,
		"role":      draft.Role,
	}); err != nil {
		g.d.store.PostError(err.Error())
		return err
	}
	if utils.ValidateUsername(draft.Username) != nil {
		err := fmt.Errorf("Username non valido")
		g.d.store.PostError(err.Error())
		return err
	}
	if !rbac.IsKnownRole(draft.Role) {
		err := fmt.Errorf("Ruolo non valido")
		g.d.store.PostError(err.Error())
		return err
	}
	payload := userCreatePayload{
		Username: draft.Username,
		Email:    draft.Email,
		FullName: draft.FullName,
		Role:     draft.Role,
		Password: optText(draft.Password),
		Active:   draft.Active,
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := g.d.client.PostJSON(ctx, "/api/admin/users", payload, &resp); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Utente creato con successo")
	g.d.quietFail(g.List(ctx), "users reload")
	g.d.afterMutation(ctx, view.ResourceUsers, nil)
	return nil
}

func (g *UsersGateway) Update(ctx context.Context, username string, patch UserUpdate) error {
	if !g.d.guard.begin("edit-user") {
		return ErrSubmissionInFlight
	}
	defer g.d.guard.end("edit-user")

	if patch.Role != nil && !rbac.IsKnownRole(*patch.Role) {
		err := fmt.Errorf("Ruolo non valido")
		g.d.store.PostError(err.Error())
		return err
	}
	if err := g.d.client.PutJSON(ctx, "/api/admin/users/"+username, patch, nil); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Utente aggiornato con successo")
	g.d.quietFail(g.List(ctx), "users reload")
	g.d.afterMutation(ctx, view.ResourceUsers, nil)
	return nil
}

func (g *UsersGateway) Delete(ctx context.Context, username string) error {
	if !g.d.confirm.Confirm(fmt.Sprintf("Sei sicuro di voler eliminare l'utente %q?", username)) {
		return nil
	}
	if err := g.d.client.Delete(ctx, "/api/admin/users/"+username); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess("Utente eliminato con successo")
	g.d.quietFail(g.List(ctx), "users reload")
	g.d.afterMutation(ctx, view.ResourceUsers, nil)
	return nil
}

// ResetPassword asks the backend to reset the account to a generated
// password; the returned message carries the new credential and is shown
// verbatim so the operator can hand it over.
func (g *UsersGateway) ResetPassword(ctx context.Context, username string) (string, error) {
	if !g.d.confirm.Confirm(fmt.Sprintf("Resettare la password di %q?", username)) {
		return "", nil
	}
	var resp struct {
		Message string `json:"message"`
	}
	if err := g.d.client.PostJSON(ctx, "/api/admin/users/"+username+"/reset-password", struct{}{}, &resp); err != nil {
		return "", g.d.fail(ctx, err)
	}
	g.d.store.PostSuccess(resp.Message)
	return resp.Message, nil
}

// AdminStats loads the admin dashboard aggregates.
func (g *UsersGateway) AdminStats(ctx context.Context) error {
	var stats model.AdminStats
	if err := g.d.client.GetJSON(ctx, "/api/admin/stats", nil, &stats); err != nil {
		return g.d.fail(ctx, err)
	}
	g.d.store.Dispatch(state.AdminStatsLoaded{Stats: stats})
	return nil
}
