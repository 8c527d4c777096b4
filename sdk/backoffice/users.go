package backoffice

import (
	"context"
	"net/http"

	"github.com/cppe-issia/console/sdk/meta"
)

// Account is a back-office user account as managed by a super-admin. It is
// distinct from authx.User, which describes the session's own user.
type Account struct {
	meta.ObjectMeta
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles,omitempty"`
	Active bool     `json:"actif"`
	// Password is write-only. It is sent when creating an Account.
	Password string `json:"password,omitempty"`
	// Role is write-only. It names the single role assigned on creation.
	Role string `json:"role,omitempty"`
}

// UsersClient is the specialized client for managing back-office accounts.
type UsersClient interface {
	List(context.Context) ([]Account, error)
	Create(context.Context, Account) (Account, error)
	Get(context.Context, int64) (Account, error)
	Update(context.Context, int64, Account) (Account, error)
	Delete(context.Context, int64) error
	UpdateRole(ctx context.Context, id int64, role string) error
	// ResetPassword asks the API to generate a new password for the Account
	// and returns it.
	ResetPassword(context.Context, int64) (string, error)
}

type usersClient struct {
	resourceClient
}

func (u *usersClient) List(ctx context.Context) ([]Account, error) {
	accounts := []Account{}
	_, err := u.list(ctx, "admin/users", nil, &accounts)
	return accounts, err
}

func (u *usersClient) Create(
	ctx context.Context,
	account Account,
) (Account, error) {
	created := Account{}
	_, err := u.do(ctx, http.MethodPost, "admin/users", account, &created)
	return created, err
}

func (u *usersClient) Get(ctx context.Context, id int64) (Account, error) {
	account := Account{}
	_, err := u.do(
		ctx,
		http.MethodGet,
		idPath("admin/users/%d", id),
		nil,
		&account,
	)
	return account, err
}

func (u *usersClient) Update(
	ctx context.Context,
	id int64,
	account Account,
) (Account, error) {
	updated := Account{}
	_, err := u.do(
		ctx,
		http.MethodPut,
		idPath("admin/users/%d", id),
		account,
		&updated,
	)
	return updated, err
}

func (u *usersClient) Delete(ctx context.Context, id int64) error {
	return u.delete(ctx, idPath("admin/users/%d", id))
}

func (u *usersClient) UpdateRole(
	ctx context.Context,
	id int64,
	role string,
) error {
	_, err := u.do(
		ctx,
		http.MethodPut,
		idPath("admin/users/%d/role", id),
		struct {
			Role string `json:"role"`
		}{role},
		nil,
	)
	return err
}

func (u *usersClient) ResetPassword(
	ctx context.Context,
	id int64,
) (string, error) {
	result := struct {
		NewPassword string `json:"nouveau_mot_de_passe"`
	}{}
	_, err := u.do(
		ctx,
		http.MethodPost,
		idPath("admin/users/%d/reset-password", id),
		nil,
		&result,
	)
	return result.NewPassword, err
}
