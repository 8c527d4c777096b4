package credentials

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cppe-issia/console/sdk/authx"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/require"
)

var testUser = authx.User{
	ID:          7,
	Name:        "Awa Kouassi",
	Email:       "direction@cppe-issia.ci",
	Roles:       []string{authx.RoleDirecteur},
	Permissions: []string{"gerer-actualites"},
}

func newTestFileStore(t *testing.T) *FileStore {
	dir, err := ioutil.TempDir("", "cppe-credentials")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) }) // nolint: errcheck
	store, err := NewFileStore(filepath.Join(dir, "nested", "credentials.json"))
	require.NoError(t, err)
	return store
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) // nolint: errcheck
	return NewRedisStore(client, "test:"), mr
}

func TestStores(t *testing.T) {
	testCases := []struct {
		name     string
		newStore func(t *testing.T) Store
	}{
		{
			name:     "memory",
			newStore: func(*testing.T) Store { return NewMemoryStore() },
		},
		{
			name:     "file",
			newStore: func(t *testing.T) Store { return newTestFileStore(t) },
		},
		{
			name: "redis",
			newStore: func(t *testing.T) Store {
				store, _ := newTestRedisStore(t)
				return store
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := testCase.newStore(t)

			// Empty
			token, user := store.Load()
			require.Empty(t, token)
			require.Nil(t, user)
			_, ok := store.Token()
			require.False(t, ok)
			require.NoError(t, store.Clear())

			// Round trip
			require.NoError(t, store.Save("tok-123", testUser))
			token, user = store.Load()
			require.Equal(t, "tok-123", token)
			require.Equal(t, &testUser, user)
			token, ok = store.Token()
			require.True(t, ok)
			require.Equal(t, "tok-123", token)

			// Overwrite
			other := authx.User{Name: "Admin", Roles: []string{authx.RoleSuperAdmin}}
			require.NoError(t, store.Save("tok-456", other))
			token, user = store.Load()
			require.Equal(t, "tok-456", token)
			require.Equal(t, &other, user)

			// Clear removes both
			require.NoError(t, store.Clear())
			token, user = store.Load()
			require.Empty(t, token)
			require.Nil(t, user)
			_, ok = store.Token()
			require.False(t, ok)
		})
	}
}

func TestDecodeUser(t *testing.T) {
	testCases := []struct {
		name  string
		raw   string
		valid bool
	}{
		{
			name:  "valid",
			raw:   `{"name":"Awa","roles":["directeur"]}`,
			valid: true,
		},
		{
			name:  "valid with permissions",
			raw:   `{"id":3,"name":"Awa","roles":["directeur"],"permissions":["x"]}`,
			valid: true,
		},
		{
			name: "empty",
			raw:  ``,
		},
		{
			name: "not json",
			raw:  `not-json`,
		},
		{
			name: "json string",
			raw:  `"Awa"`,
		},
		{
			name: "missing roles",
			raw:  `{"name":"Awa"}`,
		},
		{
			name: "roles not an array",
			raw:  `{"name":"Awa","roles":"directeur"}`,
		},
		{
			name: "name not a string",
			raw:  `{"name":12,"roles":[]}`,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			user := decodeUser([]byte(testCase.raw))
			if testCase.valid {
				require.NotNil(t, user)
				require.Equal(t, "Awa", user.Name)
			} else {
				require.Nil(t, user)
			}
		})
	}
}

func TestMemoryStoreMalformedUser(t *testing.T) {
	store := NewMemoryStore()
	store.SetRaw("tok-123", []byte("{broken"))
	token, user := store.Load()
	require.Equal(t, "tok-123", token)
	require.Nil(t, user)
}

func TestFileStoreMalformedDocument(t *testing.T) {
	store := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0700))

	// A corrupt document yields nothing
	require.NoError(t, ioutil.WriteFile(store.Path(), []byte("{broken"), 0600))
	token, user := store.Load()
	require.Empty(t, token)
	require.Nil(t, user)

	// A token without a user yields only the token
	require.NoError(
		t,
		ioutil.WriteFile(store.Path(), []byte(`{"cppe_token":"tok-123"}`), 0600),
	)
	token, user = store.Load()
	require.Equal(t, "tok-123", token)
	require.Nil(t, user)

	// A user record that fails validation is dropped
	require.NoError(
		t,
		ioutil.WriteFile(
			store.Path(),
			[]byte(`{"cppe_token":"tok-123","cppe_user":{"name":"Awa"}}`),
			0600,
		),
	)
	token, user = store.Load()
	require.Equal(t, "tok-123", token)
	require.Nil(t, user)
}

func TestFileStorePermissions(t *testing.T) {
	store := newTestFileStore(t)
	require.NoError(t, store.Save("tok-123", testUser))
	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	// No temporary files are left behind
	entries, err := ioutil.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDefaultFilePath(t *testing.T) {
	path, err := DefaultFilePath()
	require.NoError(t, err)
	require.Equal(t, "credentials.json", filepath.Base(path))
	require.Equal(t, ".cppe", filepath.Base(filepath.Dir(path)))
}

func TestRedisStoreKeys(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, store.Save("tok-123", testUser))
	token, err := mr.Get("test:" + TokenKey)
	require.NoError(t, err)
	require.Equal(t, "tok-123", token)
	require.True(t, mr.Exists("test:"+UserKey))

	// A corrupt user record is dropped but the token survives
	require.NoError(t, mr.Set("test:"+UserKey, "{broken"))
	loadedToken, user := store.Load()
	require.Equal(t, "tok-123", loadedToken)
	require.Nil(t, user)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, store.Save("tok-123", testUser))
	mr.Close()
	token, user := store.Load()
	require.Empty(t, token)
	require.Nil(t, user)
	_, ok := store.Token()
	require.False(t, ok)
	require.Error(t, store.Save("tok-456", testUser))
}
