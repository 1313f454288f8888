package portal

import (
	"testing"

	"club-portal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteMemberCascades(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")
	env.app.photos.set([]Photo{
		{ID: 1, UserID: "student1", Title: "robot", URL: "data:image/png;base64,AA=="},
		{ID: 2, UserID: "student2", Title: "team", URL: "data:image/png;base64,AA=="},
	})
	eventsBefore := env.app.Events()
	articlesBefore := env.app.Articles()

	require.NoError(t, env.app.RequestDeleteMember("student1"))
	text, ok := env.app.Notifier().Pending()
	require.True(t, ok)
	assert.Equal(t, `Are you sure you want to delete user "student1" and all their associated data (work, photos)?`, text)
	assert.Len(t, env.app.Users(), 3, "nothing removed before confirmation")

	env.accept(t)

	_, ok = env.app.User("student1")
	assert.False(t, ok)
	for _, w := range env.app.WorkItems() {
		assert.NotEqual(t, "student1", w.UserID)
	}
	assert.Len(t, env.app.WorkItems(), 2)
	assert.Equal(t, []Photo{{ID: 2, UserID: "student2", Title: "team", URL: "data:image/png;base64,AA=="}}, env.app.Photos())
	assert.Equal(t, eventsBefore, env.app.Events())
	assert.Equal(t, articlesBefore, env.app.Articles())
	assert.Equal(t, `User "student1" and their data deleted.`, env.message(t).Text)

	stored := storage.Load(env.store, SlotUsers, []User(nil))
	assert.Len(t, stored, 2)
}

func TestDeleteMemberCancelled(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")
	require.NoError(t, env.app.RequestDeleteMember("student2"))
	require.True(t, env.app.Notifier().Resolve(false))
	_, ok := env.app.User("student2")
	assert.True(t, ok)
}

func TestDeleteAdminAlwaysFails(t *testing.T) {
	cases := map[string][2]string{
		"logged out": {},
		"member":     {"student1", "pass1"},
		"admin":      {"admin", "admin123"},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			if creds[0] != "" {
				env.login(t, creds[0], creds[1])
			}
			before := env.app.Users()

			err := env.app.RequestDeleteMember(AdminID)
			require.Error(t, err)
			assert.True(t, IsPermission(err))
			_, pending := env.app.Notifier().Pending()
			assert.False(t, pending)
			assert.Equal(t, before, env.app.Users())
			assert.Equal(t, "Cannot delete the default admin user!", env.message(t).Text)
		})
	}
}

func TestMemberCannotDeleteMembers(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")
	err := env.app.RequestDeleteMember("student2")
	assert.True(t, IsPermission(err))
	_, pending := env.app.Notifier().Pending()
	assert.False(t, pending)
}

func TestDeleteSelfEndsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")
	require.NoError(t, env.app.AddMember(MemberDraft{ID: "mentor", Name: "Mentor", Password: "m", Role: RoleAdmin}))
	env.app.RequestLogout()
	env.accept(t)
	env.login(t, "mentor", "m")

	require.NoError(t, env.app.RequestDeleteMember("mentor"))
	env.accept(t)

	_, ok := env.app.CurrentUser()
	assert.False(t, ok)
	assert.Equal(t, ViewLogin, env.app.CurrentView())
}

func TestAddMember(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")

	require.NoError(t, env.app.AddMember(MemberDraft{ID: "  student3 ", Name: "Student Three", Password: "pass3"}))
	u, ok := env.app.User("student3")
	require.True(t, ok)
	assert.Equal(t, User{ID: "student3", Password: "pass3", Name: "Student Three", Progress: 0, Role: RoleMember}, u)

	tests := []struct {
		name  string
		draft MemberDraft
		want  string
	}{
		{"blank id", MemberDraft{ID: " ", Name: "X", Password: "p"}, "All fields are required."},
		{"blank password", MemberDraft{ID: "x", Name: "X"}, "All fields are required."},
		{"duplicate", MemberDraft{ID: "student1", Name: "Again", Password: "p"}, `User ID "student1" already exists.`},
		{"bad role", MemberDraft{ID: "x", Name: "X", Password: "p", Role: "owner"}, "Role must be one of: admin, member."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(env.app.Users())
			err := env.app.AddMember(tt.draft)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
			assert.Len(t, env.app.Users(), before)
		})
	}
}

func TestUpdateProgress(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")

	require.NoError(t, env.app.UpdateProgress("student2", 85))
	u, _ := env.app.User("student2")
	assert.Equal(t, 85, u.Progress)
	assert.Equal(t, "Progress for Student Two updated.", env.message(t).Text)

	for _, v := range []int{-1, 101} {
		err := env.app.UpdateProgress("student2", v)
		assert.True(t, IsValidation(err), v)
	}
	u, _ = env.app.User("student2")
	assert.Equal(t, 85, u.Progress)

	require.NoError(t, env.app.UpdateProgress("ghost", 10))
	assert.Len(t, env.app.Users(), 3)
}

func TestUpdateProgressRefreshesSession(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "admin", "admin123")
	require.NoError(t, env.app.UpdateProgress(AdminID, 90))
	u, _ := env.app.CurrentUser()
	assert.Equal(t, 90, u.Progress)
}

func TestMemberCannotUpdateProgress(t *testing.T) {
	env := newTestEnv(t)
	env.login(t, "student1", "pass1")
	err := env.app.UpdateProgress("student1", 100)
	assert.True(t, IsPermission(err))
	u, _ := env.app.User("student1")
	assert.Equal(t, 70, u.Progress)
}
