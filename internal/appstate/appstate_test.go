package appstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/synergy/internal/db"
	"github.com/tgienger/synergy/internal/models"
)

func TestSignInAndOut(t *testing.T) {
	store := NewMemoryStore()
	ctx := New(store, "s1", "")

	assert.False(t, ctx.Authenticated())
	_, ok := ctx.User()
	assert.False(t, ok)

	u := models.User{Name: "Ada Lovelace", Email: "ada@example.com", PhotoURL: "https://x/y.png"}
	require.NoError(t, ctx.SignIn(u))
	assert.True(t, ctx.Authenticated())

	got, ok := ctx.User()
	require.True(t, ok)
	assert.Equal(t, u, got)

	raw, _ := store.GetSetting(KeyUser)
	assert.JSONEq(t, `{"name":"Ada Lovelace","email":"ada@example.com","photoURL":"https://x/y.png"}`, raw)

	u.Name = "Ada"
	require.NoError(t, ctx.UpdateUser(u))
	got, _ = ctx.User()
	assert.Equal(t, "Ada", got.Name)

	require.NoError(t, ctx.SignOut())
	assert.False(t, ctx.Authenticated())
	require.NoError(t, ctx.UpdateUser(u))
	raw, _ = store.GetSetting(KeyUser)
	assert.Empty(t, raw)
}

func TestCorruptUserReadsAsMissing(t *testing.T) {
	store := NewMemoryStore()
	_ = store.SetSetting(KeyAuth, "true")
	_ = store.SetSetting(KeyUser, "{not json")
	_, ok := New(store, "s1", "").User()
	assert.False(t, ok)
}

func TestTheme(t *testing.T) {
	ctx := New(NewMemoryStore(), "s1", ThemeLight)
	assert.Equal(t, ThemeLight, ctx.Theme())

	next, err := ctx.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, next)
	assert.Equal(t, ThemeDark, ctx.Theme())

	assert.ErrorIs(t, ctx.SetTheme("sepia"), ErrUnknownTheme)
	assert.Equal(t, ThemeDark, ctx.Theme())
}

func TestPromptDismissalIsPerSession(t *testing.T) {
	store := NewMemoryStore()
	first := New(store, "session-a", "")
	assert.False(t, first.PromptDismissed())
	require.NoError(t, first.DismissPrompt())
	assert.True(t, first.PromptDismissed())

	second := New(store, "session-b", "")
	assert.False(t, second.PromptDismissed())
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) GetSetting(string) (string, error) { return "", errors.New("disk gone") }
func (f *failingStore) SetSetting(string, string) error   { return errors.New("disk gone") }

func TestStoreErrors(t *testing.T) {
	ctx := New(&failingStore{NewMemoryStore()}, "s1", ThemeDark)
	assert.False(t, ctx.Authenticated())
	assert.Equal(t, ThemeDark, ctx.Theme())
	assert.False(t, ctx.PromptDismissed())
	assert.Error(t, ctx.SignIn(models.User{Name: "x"}))
}

// authFlagFails accepts every write except the session flag
type authFlagFails struct{ *MemoryStore }

func (f authFlagFails) SetSetting(key, value string) error {
	if key == KeyAuth {
		return errors.New("disk full")
	}
	return f.MemoryStore.SetSetting(key, value)
}

func TestSignInRestoresUserWhenFlagFails(t *testing.T) {
	mem := NewMemoryStore()
	require.NoError(t, mem.SetSetting(KeyUser, `{"name":"Old","email":"old@company.com"}`))

	ctx := New(authFlagFails{mem}, "s1", ThemeDark)
	require.Error(t, ctx.SignIn(models.User{Name: "New", Email: "new@company.com"}))
	assert.False(t, ctx.Authenticated())
	raw, _ := mem.GetSetting(KeyUser)
	assert.JSONEq(t, `{"name":"Old","email":"old@company.com"}`, raw)

	empty := NewMemoryStore()
	ctx = New(authFlagFails{empty}, "s1", ThemeDark)
	require.Error(t, ctx.SignIn(models.User{Name: "New", Email: "new@company.com"}))
	raw, _ = empty.GetSetting(KeyUser)
	assert.Empty(t, raw)
}

func TestSQLiteBackedContext(t *testing.T) {
	database, err := db.New(db.DriverPure, db.Memory)
	require.NoError(t, err)
	defer database.Close()

	ctx := New(database, "s1", "")
	require.NoError(t, ctx.SignIn(models.User{Name: "Alex", Email: "alex@company.com"}))
	require.NoError(t, ctx.SetTheme(ThemeLight))

	again := New(database, "s2", "")
	assert.True(t, again.Authenticated())
	assert.Equal(t, ThemeLight, again.Theme())
}

func TestLastProject(t *testing.T) {
	ctx := New(NewMemoryStore(), "s1", "")
	assert.Empty(t, ctx.LastProject())

	require.NoError(t, ctx.SetLastProject("p2"))
	assert.Equal(t, "p2", ctx.LastProject())

	require.NoError(t, ctx.SetLastProject(""))
	assert.Empty(t, ctx.LastProject())
}
