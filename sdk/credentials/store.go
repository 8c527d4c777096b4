// Package credentials provides persistent storage for the bearer token and
// User record of the current back-office session.
package credentials

import (
	"encoding/json"

	"github.com/cppe-issia/console/sdk/authx"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const (
	// TokenKey is the fixed key under which the bearer token is stored.
	TokenKey = "cppe_token"
	// UserKey is the fixed key under which the JSON-serialized User record is
	// stored.
	UserKey = "cppe_user"
)

// Store is the interface for components that persist a session's
// credentials. The token and the User are always written and cleared
// together.
type Store interface {
	// Save persists the token and User atomically; no other reader can
	// observe one without the other.
	Save(token string, user authx.User) error
	// Load returns the stored token and User. A missing, unreadable or
	// malformed value is returned as "" or nil respectively; Load never
	// fails.
	Load() (string, *authx.User)
	// Token returns the stored token and true, or "" and false if there is
	// none.
	Token() (string, bool)
	// Clear removes both values. Clearing an empty store is not an error.
	Clear() error
}

// userSchema describes the minimum shape a stored User record must have to
// be restored.
const userSchema = `{
	"type": "object",
	"required": ["name", "roles"],
	"properties": {
		"name": {"type": "string"},
		"roles": {"type": "array", "items": {"type": "string"}},
		"permissions": {
			"type": ["array", "null"],
			"items": {"type": "string"}
		}
	}
}`

var compiledUserSchema = mustCompileSchema(userSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(errors.Wrap(err, "error compiling user record schema"))
	}
	return s
}

// encodeUser serializes a User the way every backend stores it.
func encodeUser(user authx.User) ([]byte, error) {
	userBytes, err := json.Marshal(user)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling user")
	}
	return userBytes, nil
}

// decodeUser returns the User serialized in raw or nil if raw is empty,
// malformed, or does not satisfy the User record schema.
func decodeUser(raw []byte) *authx.User {
	if len(raw) == 0 {
		return nil
	}
	result, err := compiledUserSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil || !result.Valid() {
		return nil
	}
	user := &authx.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil
	}
	return user
}
