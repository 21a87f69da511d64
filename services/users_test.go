package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bellapacxx/academy-backend/models"
	"github.com/bellapacxx/academy-backend/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newUserService(t *testing.T) (*UserService, *MediaStore) {
	t.Helper()
	media := NewMediaStore(t.TempDir(), "/media/")
	return NewUserService(testutil.NewDB(t), media), media
}

// uploadedFile builds a multipart file header as gin would hand it over.
func uploadedFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestCreateUser(t *testing.T) {
	users, _ := newUserService(t)
	ctx := context.Background()

	user, err := users.Create(ctx, UserInput{
		Username: ptr("Alice"),
		Password: ptr("hunter22"),
		Email:    ptr("alice@example.com"),
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, "alice", user.UsernameLower)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter22")))
	assert.False(t, user.HasImage())

	found, err := users.FindByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestCreateUserValidation(t *testing.T) {
	users, _ := newUserService(t)
	ctx := context.Background()
	_, err := users.Create(ctx, UserInput{Username: ptr("alice"), Password: ptr("pw")})
	require.NoError(t, err)

	cases := map[string]struct {
		in    UserInput
		field string
		msg   string
	}{
		"missing username": {UserInput{Password: ptr("pw")}, "username", "This field is required."},
		"missing password": {UserInput{Username: ptr("bob")}, "password", "This field is required."},
		"taken":            {UserInput{Username: ptr("ALICE"), Password: ptr("pw")}, "username", "A user with that username already exists."},
		"bad characters":   {UserInput{Username: ptr("bob smith"), Password: ptr("pw")}, "username", ""},
		"blank password":   {UserInput{Username: ptr("bob"), Password: ptr("")}, "password", "This field may not be blank."},
		"bad email":        {UserInput{Username: ptr("bob"), Password: ptr("pw"), Email: ptr("nope")}, "email", "Enter a valid email address."},
		"no email domain":  {UserInput{Username: ptr("bob"), Password: ptr("pw"), Email: ptr("foo@")}, "email", "Enter a valid email address."},
		"no email local":   {UserInput{Username: ptr("bob"), Password: ptr("pw"), Email: ptr("@")}, "email", "Enter a valid email address."},
		"space in email":   {UserInput{Username: ptr("bob"), Password: ptr("pw"), Email: ptr("a b@c")}, "email", "Enter a valid email address."},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := users.Create(ctx, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tc.field)
			if tc.msg != "" {
				assert.Equal(t, []string{tc.msg}, verr.Fields[tc.field])
			}
		})
	}
}

func TestCreateUserAcceptsUnicodeAndBlankEmail(t *testing.T) {
	users, _ := newUserService(t)

	user, err := users.Create(context.Background(), UserInput{
		Username: ptr("jørgen"),
		Password: ptr("pw"),
		Email:    ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "jørgen", user.Username)
	assert.Empty(t, user.Email)
}

func TestCreateUserConcurrentDuplicate(t *testing.T) {
	users, _ := newUserService(t)
	db := users.db

	// Another request claims the name between the availability check and
	// the insert.
	raced := false
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:race", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "users" {
			return
		}
		if _, counting := tx.Statement.Dest.(*int64); !counting {
			return
		}
		raced = true
		testutil.CreateUser(t, db, "Bob")
	}))

	_, err := users.Create(context.Background(), UserInput{Username: ptr("bob"), Password: ptr("pw")})
	require.True(t, raced)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"A user with that username already exists."}, verr.Fields["username"])
}

func TestUpdateUserImage(t *testing.T) {
	users, media := newUserService(t)
	ctx := context.Background()

	user, err := users.Create(ctx, UserInput{
		Username: ptr("alice"),
		Password: ptr("pw"),
		Image:    uploadedFile(t, "me.PNG", []byte("png bytes")),
	})
	require.NoError(t, err)
	require.True(t, user.HasImage())
	assert.Equal(t, ".png", filepath.Ext(user.Image))
	first := filepath.Join(media.Root, user.Image)
	assert.FileExists(t, first)

	err = users.Update(ctx, user, UserInput{Image: uploadedFile(t, "new.jpg", []byte("jpg bytes"))}, true)
	require.NoError(t, err)
	assert.NoFileExists(t, first)
	data, err := os.ReadFile(filepath.Join(media.Root, user.Image))
	require.NoError(t, err)
	assert.Equal(t, "jpg bytes", string(data))

	err = users.Update(ctx, user, UserInput{Image: uploadedFile(t, "notes.txt", []byte("text"))}, true)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
}

func TestUpdateUserFullRequiresFields(t *testing.T) {
	users, _ := newUserService(t)
	ctx := context.Background()
	user, err := users.Create(ctx, UserInput{Username: ptr("alice"), Password: ptr("pw")})
	require.NoError(t, err)

	err = users.Update(ctx, user, UserInput{Email: ptr("a@example.com")}, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")

	require.NoError(t, users.Update(ctx, user, UserInput{Username: ptr("alice"), Password: ptr("new")}, false))
	stored, err := users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("new")))
}

func TestDeleteUser(t *testing.T) {
	users, _ := newUserService(t)
	ctx := context.Background()
	db := users.db

	idle := testutil.CreateUser(t, db, "idle")
	testutil.CreateToken(t, db, idle)
	require.NoError(t, users.Delete(ctx, idle))
	_, err := users.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var tokens int64
	require.NoError(t, db.Model(&models.Token{}).Count(&tokens).Error)
	assert.Zero(t, tokens)

	player := testutil.CreateUser(t, db, "player")
	testutil.CreateGame(t, db, testutil.Epoch, player)
	assert.ErrorIs(t, users.Delete(ctx, player), ErrUserHasGames)
	_, err = users.Get(ctx, player.ID)
	assert.NoError(t, err)
}

func TestListUsersOrderedByID(t *testing.T) {
	users, _ := newUserService(t)
	testutil.CreateUser(t, users.db, "zed")
	testutil.CreateUser(t, users.db, "amy")

	list, err := users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "zed", list[0].Username)
	assert.Equal(t, "amy", list[1].Username)
}
