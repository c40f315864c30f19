package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/internal/testdb"
	"github.com/shashiranjanraj/bazaar/pkg/apperr"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
)

type fixture struct {
	auth    *services.AuthService
	vendors *services.VendorService
	orders  *services.OrderService
	tokens  *auth.TokenService
	users   *repositories.UserRepository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testdb.Open(t)
	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	return fixture{
		auth:    services.NewAuthService(users, auth.NewHasher(auth.MinCost), tokens),
		vendors: services.NewVendorService(users),
		orders:  services.NewOrderService(orders),
		tokens:  tokens,
		users:   users,
	}
}

func ptr[T any](v T) *T { return &v }

func register(t *testing.T, f fixture, email, role string) *models.User {
	t.Helper()
	u, _, err := f.auth.Register(context.Background(), requests.Register{
		Name: "Test", Email: email, Password: "secret1", Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, token, err := f.auth.Register(ctx, requests.Register{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "vendor", claims.Role)

	c := register(t, f, "c@x.com", "customer")
	assert.Equal(t, models.RoleCustomer, c.Role)
	assert.False(t, c.IsActive)
}

func TestRegisterKeepsProfileForVendorsOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	req := requests.Register{
		Name: "P", Password: "secret1",
		BusinessName: ptr("Shop"), BusinessAddress: ptr("1 Road"), PhoneNumber: ptr("555"),
	}

	req.Email, req.Role = "v@x.com", "vendor"
	v, _, err := f.auth.Register(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, v.BusinessName)
	assert.Equal(t, "Shop", *v.BusinessName)

	for _, role := range []string{"customer", "admin"} {
		req.Email, req.Role = role+"@x.com", role
		u, _, err := f.auth.Register(ctx, req)
		require.NoError(t, err)

		stored, err := f.users.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.BusinessName, role)
		assert.Nil(t, stored.BusinessAddress, role)
		assert.Nil(t, stored.PhoneNumber, role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	register(t, f, "a@x.com", "")

	for i := 0; i < 2; i++ {
		_, _, err := f.auth.Register(ctx, requests.Register{Name: "B", Email: "a@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, services.ErrEmailInUse)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	}

	accounts, err := f.users.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.auth.Register(ctx, requests.Register{Name: "Racer", Email: "race@x.com", Password: "secret1"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, services.ErrEmailInUse)
	}
	assert.Equal(t, 1, created)
}

// staleLookup misses on every email lookup, as a registration that lost
// the race between its existence check and its insert would.
type staleLookup struct {
	*repositories.UserRepository
}

func (staleLookup) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func TestRegisterInsertConflict(t *testing.T) {
	f := setup(t)
	register(t, f, "taken@x.com", "")

	racing := services.NewAuthService(staleLookup{f.users}, auth.NewHasher(auth.MinCost), f.tokens)
	_, _, err := racing.Register(context.Background(), requests.Register{Name: "Late", Email: "taken@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrEmailInUse)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := register(t, f, "a@x.com", "")

	got, token, err := f.auth.Login(ctx, requests.Login{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	id, err := f.auth.ResolveIdentity(ctx, mustVerify(t, f, token))
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{ID: u.ID, Role: "vendor"}, id)

	_, _, err = f.auth.Login(ctx, requests.Login{Email: "a@x.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, services.ErrInvalidPassword)

	_, _, err = f.auth.Login(ctx, requests.Login{Email: "nobody@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func mustVerify(t *testing.T, f fixture, token string) uint {
	t.Helper()
	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)
	return claims.UserID
}

func TestResolveIdentityUnknown(t *testing.T) {
	f := setup(t)
	_, err := f.auth.ResolveIdentity(context.Background(), 404)
	assert.ErrorIs(t, err, auth.ErrUnknownIdentity)
}

func TestVendorCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := register(t, f, "c@x.com", "customer")

	req := requests.CreateVendor{BusinessName: "Shop", BusinessAddress: "1 Road", PhoneNumber: "555", IsActive: ptr(false)}
	v, err := f.vendors.Create(ctx, c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, v.Role)
	assert.False(t, v.IsActive)
	assert.Equal(t, "Shop", *v.BusinessName)

	// Repeating the call keeps conflicting.
	for i := 0; i < 2; i++ {
		_, err = f.vendors.Create(ctx, c.ID, req)
		assert.ErrorIs(t, err, services.ErrAlreadyVendor)
	}

	admin := register(t, f, "admin@x.com", "admin")
	_, err = f.vendors.Create(ctx, admin.ID, req)
	assert.ErrorIs(t, err, services.ErrRoleLocked)

	_, err = f.vendors.Create(ctx, 999, req)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestVendorProfileAndFind(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := register(t, f, "v@x.com", "vendor")
	c := register(t, f, "c@x.com", "customer")

	got, err := f.vendors.Profile(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = f.vendors.Profile(ctx, c.ID)
	assert.ErrorIs(t, err, services.ErrNotVendor)

	got, err = f.vendors.Find(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "v@x.com", got.Email)

	_, err = f.vendors.Find(ctx, c.ID)
	assert.ErrorIs(t, err, services.ErrTargetNotVendor)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = f.vendors.Find(ctx, 0)
	assert.ErrorIs(t, err, services.ErrInvalidVendorID)
	_, err = f.vendors.Find(ctx, 999)
	assert.ErrorIs(t, err, services.ErrVendorNotFound)

	list, err := f.vendors.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, v.ID, list[0].ID)
	assert.Equal(t, models.RoleVendor, list[0].Role)
	assert.Equal(t, c.ID, list[1].ID)
	assert.Equal(t, models.RoleCustomer, list[1].Role)
}

func TestVendorUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := register(t, f, "v@x.com", "vendor")
	c := register(t, f, "c@x.com", "customer")

	got, err := f.vendors.Update(ctx, v.ID, requests.UpdateVendor{PhoneNumber: ptr("777")})
	require.NoError(t, err)
	assert.Equal(t, "777", *got.PhoneNumber)
	assert.Nil(t, got.BusinessName)
	assert.True(t, got.IsActive)

	_, err = f.vendors.Update(ctx, c.ID, requests.UpdateVendor{PhoneNumber: ptr("777")})
	assert.ErrorIs(t, err, services.ErrNotVendor)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestVendorDeleteCascadesOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	v := register(t, f, "v@x.com", "vendor")

	var ids []uint
	for _, item := range []string{"a", "b", "c"} {
		o, err := f.orders.Create(ctx, v.ID, requests.CreateOrder{Amount: ptr(5.0), Item: item})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	deleted, err := f.vendors.Delete(ctx, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	for _, id := range ids {
		_, err := f.orders.Get(ctx, v.ID, id)
		assert.ErrorIs(t, err, services.ErrOrderNotFound)
	}

	u, err := f.users.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.False(t, u.IsActive)
	assert.Nil(t, u.BusinessName)

	_, err = f.vendors.Delete(ctx, v.ID)
	assert.ErrorIs(t, err, services.ErrNotVendor)
}

func TestOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := register(t, f, "o@x.com", "vendor")
	other := register(t, f, "x@x.com", "customer")

	o, err := f.orders.Create(ctx, owner.ID, requests.CreateOrder{Amount: ptr(10.0), Item: "book"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Regexp(t, `^ORD-[0-9a-f]{8}$`, o.OrderNumber)
	assert.Equal(t, "USD", o.Currency)

	_, err = f.orders.Create(ctx, other.ID, requests.CreateOrder{Amount: ptr(1.0), Item: "pen", Currency: "EUR"})
	require.NoError(t, err)

	got, err := f.orders.Get(ctx, owner.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)

	_, err = f.orders.Get(ctx, other.ID, o.ID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	_, err = f.orders.Get(ctx, owner.ID, 0)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	updated, err := f.orders.Update(ctx, owner.ID, o.ID, requests.UpdateOrder{Status: ptr("COMPLETED"), Amount: ptr(12.345)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, updated.Status)
	assert.Equal(t, "12.35", updated.Amount.StringFixed(2))
	assert.Equal(t, "book", updated.Item)

	_, err = f.orders.Update(ctx, other.ID, o.ID, requests.UpdateOrder{Item: ptr("stolen")})
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	own, err := f.orders.ListOwn(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := f.orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, f.orders.Delete(ctx, other.ID, o.ID), services.ErrOrderNotFound)
	require.NoError(t, f.orders.Delete(ctx, owner.ID, o.ID))
	assert.ErrorIs(t, f.orders.Delete(ctx, owner.ID, o.ID), services.ErrOrderNotFound)
}
