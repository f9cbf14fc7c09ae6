package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/model"
	"github.com/iliyamo/crm-service/internal/utils"
)

func register(t *testing.T, f *fixture, name, email, role string) (*AuthResult, *model.User) {
	t.Helper()
	res, err := f.userSvc.Register(context.Background(), model.RegisterInput{Name: name, Email: email, Password: "pw-" + name, Role: role})
	require.NoError(t, err)
	u, err := f.users.GetByEmail(context.Background(), res.User.Email)
	require.NoError(t, err)
	return res, u
}

func TestRegister(t *testing.T) {
	f := newFixture()
	res, u := register(t, f, "ada", "  Ada@Example.com ", "")

	assert.Equal(t, model.PublicUser{Name: "ada", Email: "ada@example.com", Role: model.RoleSalesRep}, res.User)
	assert.NotEqual(t, "pw-ada", u.PasswordHash)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "pw-ada"))

	claims, err := utils.ParseAccessToken("test-secret", res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
}

func TestRegisterValidationAndConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.userSvc.Register(ctx, model.RegisterInput{Name: "x", Email: "x@example.com"})
	requireKind(t, err, KindValidation, "Please provide all values")
	_, err = f.userSvc.Register(ctx, model.RegisterInput{Name: "x", Email: "nope", Password: "p"})
	requireKind(t, err, KindValidation, "Please provide a valid email")

	_, first := register(t, f, "first", "dup@example.com", model.RoleManager)
	_, err = f.userSvc.Register(ctx, model.RegisterInput{Name: "second", Email: "DUP@example.com", Password: "other"})
	requireKind(t, err, KindConflict, "User already exists")

	after, err := f.users.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first, *after)
}

func TestRegisterKeepsArbitraryRole(t *testing.T) {
	f := newFixture()
	res, _ := register(t, f, "odd", "odd@example.com", "overlord")
	assert.Equal(t, "overlord", res.User.Role)
}

func TestLoginDistinguishesOnlyByKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	register(t, f, "ada", "ada@example.com", "")

	_, err := f.userSvc.Login(ctx, model.LoginInput{Email: "ada@example.com"})
	requireKind(t, err, KindValidation, "Please provide email and password")

	_, err = f.userSvc.Login(ctx, model.LoginInput{Email: "ghost@example.com", Password: "pw-ada"})
	requireKind(t, err, KindNotFound, "Invalid credentials")

	_, err = f.userSvc.Login(ctx, model.LoginInput{Email: "ada@example.com", Password: "wrong"})
	requireKind(t, err, KindUnauthenticated, "Invalid credentials")

	res, err := f.userSvc.Login(ctx, model.LoginInput{Email: "ADA@example.com", Password: "pw-ada"})
	require.NoError(t, err)
	assert.Equal(t, "ada", res.User.Name)
	assert.NotEmpty(t, res.Token)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res, u := register(t, f, "ada", "ada@example.com", model.RoleAdmin)

	got, err := f.userSvc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)

	_, err = f.userSvc.Authenticate(ctx, "garbage")
	requireKind(t, err, KindUnauthenticated, "Not Authorized, Token Failed!")

	orphan, err := utils.NewAccessToken("test-secret", bson.NewObjectID().Hex(), model.RoleAdmin, 5)
	require.NoError(t, err)
	_, err = f.userSvc.Authenticate(ctx, orphan.Token)
	requireKind(t, err, KindUnauthenticated, "Not Authorized, User Not Found!")
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, u := register(t, f, "ada", "ada@example.com", "")

	p, err := f.userSvc.GetProfile(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", p.Email)

	_, err = f.userSvc.UpdateProfile(ctx, u.ID.Hex(), model.ProfileInput{Name: "Ada"})
	requireKind(t, err, KindValidation, "Please provide all values")

	p, err = f.userSvc.UpdateProfile(ctx, u.ID.Hex(), model.ProfileInput{Name: "Ada L", Email: "ada.l@example.com", Password: "new-pw"})
	require.NoError(t, err)
	assert.Equal(t, model.PublicUser{Name: "Ada L", Email: "ada.l@example.com", Role: model.RoleSalesRep}, *p)

	_, err = f.userSvc.Login(ctx, model.LoginInput{Email: "ada.l@example.com", Password: "new-pw"})
	require.NoError(t, err)

	_, err = f.userSvc.GetProfile(ctx, bson.NewObjectID().Hex())
	requireKind(t, err, KindNotFound, "User not found")
}

func TestListAllExcludesCaller(t *testing.T) {
	f := newFixture()
	_, admin := register(t, f, "admin", "admin@example.com", model.RoleAdmin)
	_, other := register(t, f, "rep", "rep@example.com", "")

	users, err := f.userSvc.ListAll(context.Background(), admin.ID.Hex())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, other.ID, users[0].ID)
}

func TestUpdateByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, u := register(t, f, "rep", "rep@example.com", "")
	register(t, f, "taken", "taken@example.com", "")

	require.NoError(t, f.userSvc.UpdateByID(ctx, u.ID.Hex(), model.UserInput{Role: ptr(model.RoleManager), Password: ptr("rotated")}))
	got, err := f.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, got.Role)
	assert.Equal(t, "rep", got.Name)
	assert.True(t, utils.VerifyPassword(got.PasswordHash, "rotated"))

	err = f.userSvc.UpdateByID(ctx, u.ID.Hex(), model.UserInput{Email: ptr("taken@example.com")})
	requireKind(t, err, KindConflict, "User already exists")

	err = f.userSvc.UpdateByID(ctx, bson.NewObjectID().Hex(), model.UserInput{Name: ptr("x")})
	requireKind(t, err, KindNotFound, "User not found")
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture()
	f.pub.Err = errors.New("broker down")

	_, err := f.customerSvc.Create(context.Background(), model.CustomerInput{Name: ptr("Acme")})
	require.NoError(t, err)
	assert.Empty(t, f.pub.Events)
}
