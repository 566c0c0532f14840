package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chachabrian/swiftparcel-backend/internal/models"
	"github.com/chachabrian/swiftparcel-backend/internal/services"
	"github.com/chachabrian/swiftparcel-backend/internal/store/sqlstore"
	"github.com/chachabrian/swiftparcel-backend/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeIntents struct {
	amounts []int64
}

func (f *fakeIntents) CreatePaymentIntent(_ context.Context, amount int64) (string, error) {
	f.amounts = append(f.amounts, amount)
	return fmt.Sprintf("pi_secret_%d", amount), nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []services.PaymentNotification
}

func (f *fakeNotifier) NotifyPaymentConfirmed(_ context.Context, n services.PaymentNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

type testAPI struct {
	router    *gin.Engine
	uploadDir string
	store     *sqlstore.Store
	tokens    *utils.TokenManager
	intents   *fakeIntents
	notifier  *fakeNotifier
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	st := sqlstore.New(db)
	require.NoError(t, st.EnsureIndexes(context.Background()))
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	uploadDir := t.TempDir()
	images, err := services.NewImageStore("", "", uploadDir, "http://localhost:5000", zerolog.Nop())
	require.NoError(t, err)

	hub := services.NewHub(zerolog.Nop())
	api := &testAPI{
		uploadDir: uploadDir,
		store:     st,
		tokens:    utils.NewTokenManager("test-secret", utils.AccessTokenTTL),
		intents:   &fakeIntents{},
		notifier:  &fakeNotifier{},
	}
	api.router = NewRouter(Dependencies{
		Store:              st,
		Tokens:             api.tokens,
		Intents:            api.intents,
		Notifier:           api.notifier,
		Events:             services.NewLocalParcelEvents(hub),
		Hub:                hub,
		Images:             images,
		Logger:             zerolog.Nop(),
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	})
	return api
}

func (a *testAPI) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := a.tokens.GenerateToken(map[string]any{"email": email})
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) createUser(t *testing.T, email string, role models.Role) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/users", map[string]any{"email": email, "name": email, "role": role}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[models.InsertResult](t, rec)
	require.NotEmpty(t, res.InsertedID)
	return res.InsertedID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRootAndUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "swift is running", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = api.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[map[string]any](t, rec)["code"])

	rec = api.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])
}

func TestIssueTokenAndVerify(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/jwt", map[string]any{"email": "ann@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	claims, err := api.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims["email"])

	rec = api.do(t, http.MethodGet, "/users", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized access", decode[map[string]any](t, rec)["message"])

	rec = api.do(t, http.MethodGet, "/users", nil, token+"x")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/jwt", "not an object", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoleGuards(t *testing.T) {
	api := newTestAPI(t)
	target := api.createUser(t, "bob@example.com", models.RoleUser)
	api.createUser(t, "admin@example.com", models.RoleAdmin)

	rec := api.do(t, http.MethodPatch, "/users/admin/"+target, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPatch, "/users/admin/"+target, nil, api.token(t, "bob@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden access", decode[map[string]any](t, rec)["message"])

	rec = api.do(t, http.MethodPatch, "/users/admin/"+target, nil, api.token(t, "ghost@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPatch, "/users/admin/"+target, nil, api.token(t, "admin@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.UpdateResult](t, rec).MatchedCount)

	rec = api.do(t, http.MethodGet, "/users/admin/bob@example.com", nil, api.token(t, "bob@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"admin": true}, decode[map[string]bool](t, rec))

	rec = api.do(t, http.MethodGet, "/users/admin/bob@example.com", nil, api.token(t, "admin@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/admin-stats", nil, api.token(t, "bob@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/deliveries/"+target, nil, api.token(t, "admin@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateUserIsInsertIfAbsent(t *testing.T) {
	api := newTestAPI(t)
	api.createUser(t, "ann@example.com", "")

	rec := api.do(t, http.MethodPost, "/users", map[string]any{"email": "ann@example.com", "name": "Again"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "user already exists", body["message"])
	v, ok := body["insertedId"]
	assert.True(t, ok)
	assert.Nil(t, v)

	rec = api.do(t, http.MethodGet, "/users?email=ann@example.com", nil, api.token(t, "ann@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleUser, users[0].Role)
	assert.Equal(t, "ann@example.com", users[0].Name)
}

func TestProfileAndRating(t *testing.T) {
	api := newTestAPI(t)
	dm := api.createUser(t, "dm@example.com", models.RoleDeliveryMan)
	token := api.token(t, "ann@example.com")

	rec := api.do(t, http.MethodGet, "/users/profile/ann@example.com", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPatch, "/users/rate/"+dm, map[string]any{"rating": 6}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, "/users/rate/"+uuid.NewString(), map[string]any{"rating": 4}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for _, r := range []float64{5, 3} {
		rec = api.do(t, http.MethodPatch, "/users/rate/"+dm, map[string]any{"rating": r}, token)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = api.do(t, http.MethodPatch, "/users/delivered/"+dm, nil, api.token(t, "dm@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/users/profile/dm@example.com", nil, api.token(t, "dm@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	u := decode[models.User](t, rec)
	assert.InDelta(t, 4, u.AverageRatings, 1e-9)
	assert.Equal(t, 2, u.ReviewCount)
	assert.Equal(t, 1, u.ParcelsDelivered)

	rec = api.do(t, http.MethodGet, "/top-delivery-men", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[[]models.User](t, rec)
	require.Len(t, top, 1)
	assert.Equal(t, "dm@example.com", top[0].Email)
}

func TestMalformedIDIsServerError(t *testing.T) {
	api := newTestAPI(t)
	api.createUser(t, "admin@example.com", models.RoleAdmin)

	rec := api.do(t, http.MethodDelete, "/users/not-an-id", nil, api.token(t, "admin@example.com"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode[map[string]any](t, rec)["message"])
}

func (a *testAPI) createParcel(t *testing.T, token string, body map[string]any) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/parcel", body, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.InsertResult](t, rec).InsertedID
}

func TestSearchParcelsByDate(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "ann@example.com")

	for _, d := range []string{"2024-01-01", "2024-01-15", "2024-01-31", "2024-02-01"} {
		api.createParcel(t, token, map[string]any{"email": "ann@example.com", "deliveryDate": d})
	}

	rec := api.do(t, http.MethodGet, "/parcels/search-date?startDate=invalid&endDate=2024-01-01", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/parcels/search-date?startDate=2024-01-01&endDate=2024-01-31", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	parcels := decode[[]models.Parcel](t, rec)
	require.Len(t, parcels, 3)
	for _, p := range parcels {
		assert.NotEqual(t, "2024-02-01", utils.DayKey(p.DeliveryDate))
	}

	rec = api.do(t, http.MethodGet, "/parcels/search-date?startDate=2024-01-01", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/bookings-by-date", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.DailyBookings{
		{Date: "2024-01-01", Count: 1},
		{Date: "2024-01-15", Count: 1},
		{Date: "2024-01-31", Count: 1},
		{Date: "2024-02-01", Count: 1},
	}, decode[[]models.DailyBookings](t, rec))
}

func TestCreateParcelRejectsBadDate(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/parcel", map[string]any{"deliveryDate": "someday"}, api.token(t, "ann@example.com"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusPatchTouchesOnlyAssignment(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "ann@example.com")

	id := api.createParcel(t, token, map[string]any{
		"email":           "ann@example.com",
		"receiverName":    "Bob",
		"deliveryAddress": "12 Main St",
		"price":           150,
		"deliveryDate":    "2024-03-01",
	})

	rec := api.do(t, http.MethodGet, "/parcel-details/"+id, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[models.Parcel](t, rec)
	assert.Equal(t, models.ParcelStatusPending, before.Status)

	rec = api.do(t, http.MethodPatch, "/parcel/"+id, map[string]any{
		"status":                "onTheWay",
		"deliveryManId":         "dm-7",
		"estimatedDeliveryDate": "2024-03-02",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.UpdateResult](t, rec).MatchedCount)

	rec = api.do(t, http.MethodGet, "/parcel-details/"+id, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[models.Parcel](t, rec)

	assert.Equal(t, models.ParcelStatusOnTheWay, after.Status)
	assert.Equal(t, "dm-7", after.DeliveryManID)
	assert.Equal(t, "2024-03-02", after.EstimatedDeliveryDate)

	after.Status = before.Status
	after.DeliveryManID = before.DeliveryManID
	after.EstimatedDeliveryDate = before.EstimatedDeliveryDate
	assert.Equal(t, before, after)

	rec = api.do(t, http.MethodPatch, "/cancel-parcel/"+id, map[string]any{"status": "cancelled"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/parcel-details/"+id, nil, token)
	assert.Equal(t, models.ParcelStatusCancelled, decode[models.Parcel](t, rec).Status)

	rec = api.do(t, http.MethodGet, "/parcel-details/"+uuid.NewString(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParcelsByEmailRequiresSelf(t *testing.T) {
	api := newTestAPI(t)
	ann := api.token(t, "ann@example.com")
	api.createParcel(t, ann, map[string]any{"deliveryDate": "2024-03-01"})

	rec := api.do(t, http.MethodGet, "/parcel/ann@example.com", nil, ann)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Parcel](t, rec), 1)

	rec = api.do(t, http.MethodGet, "/parcel/ann@example.com", nil, api.token(t, "bob@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpsertParcel(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "ann@example.com")
	id := uuid.NewString()

	rec := api.do(t, http.MethodPut, "/parcel/"+id, map[string]any{"receiverName": "Bob", "price": 20, "deliveryDate": "2024-04-01"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.UpdateResult](t, rec)
	require.NotNil(t, res.UpsertedID)
	assert.Equal(t, id, *res.UpsertedID)

	rec = api.do(t, http.MethodGet, "/parcel-details/"+id, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob", decode[models.Parcel](t, rec).ReceiverName)
}

func TestPaymentClearsCartAndNotifies(t *testing.T) {
	api := newTestAPI(t)

	var ids []string
	for _, menuID := range []string{"m1", "m2", "m3"} {
		rec := api.do(t, http.MethodPost, "/carts", map[string]any{"email": "ann@example.com", "menuId": menuID, "price": 10}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		ids = append(ids, decode[models.InsertResult](t, rec).InsertedID)
	}

	rec := api.do(t, http.MethodPost, "/payments", map[string]any{
		"email":         "ann@example.com",
		"price":         20,
		"transactionId": "pi_123",
		"cartIds":       ids[:2],
		"menuItemIds":   []string{},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		PaymentResult models.InsertResult `json:"paymentResult"`
		DeleteResult  models.DeleteResult `json:"deleteResult"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.PaymentResult.InsertedID)
	assert.EqualValues(t, 2, body.DeleteResult.DeletedCount)

	rec = api.do(t, http.MethodGet, "/carts?email=ann@example.com", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	left := decode[[]models.CartItem](t, rec)
	require.Len(t, left, 1)
	assert.Equal(t, ids[2], left[0].ID)

	require.Len(t, api.notifier.sent, 1)
	assert.Equal(t, "ann@example.com", api.notifier.sent[0].To)
	assert.Equal(t, "pi_123", api.notifier.sent[0].TransactionID)

	rec = api.do(t, http.MethodGet, "/payments/ann@example.com", nil, api.token(t, "ann@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	payments := decode[[]models.Payment](t, rec)
	require.Len(t, payments, 1)
	assert.ElementsMatch(t, ids[:2], payments[0].CartIDs)

	rec = api.do(t, http.MethodGet, "/payments/ann@example.com", nil, api.token(t, "bob@example.com"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreatePaymentIntent(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/create-payment-intent", map[string]any{"price": 19.5}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi_secret_1950", decode[map[string]string](t, rec)["clientSecret"])
	assert.Equal(t, []int64{1950}, api.intents.amounts)
}

func TestStats(t *testing.T) {
	api := newTestAPI(t)
	api.createUser(t, "admin@example.com", models.RoleAdmin)
	adminToken := api.token(t, "admin@example.com")
	ann := api.token(t, "ann@example.com")

	api.createParcel(t, ann, map[string]any{"deliveryDate": "2024-01-01"})
	api.createParcel(t, ann, map[string]any{"deliveryDate": "2024-01-02", "status": "delivered"})

	var menuIDs []string
	for _, item := range []map[string]any{
		{"name": "Express", "category": "courier", "price": 20},
		{"name": "Freight", "category": "cargo", "price": 100},
	} {
		rec := api.do(t, http.MethodPost, "/menu", item, adminToken)
		require.Equal(t, http.StatusOK, rec.Code)
		menuIDs = append(menuIDs, decode[models.InsertResult](t, rec).InsertedID)
	}

	rec := api.do(t, http.MethodPost, "/menu", map[string]any{"name": "x"}, ann)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/payments", map[string]any{
		"email": "ann@example.com", "price": 120, "transactionId": "pi_1",
		"cartIds": []string{}, "menuItemIds": menuIDs,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/home-stats", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.HomeStats{BookedParcelsCount: 1, DeliveredParcelsCount: 1, UsersCount: 1}, decode[models.HomeStats](t, rec))

	rec = api.do(t, http.MethodGet, "/admin-stats", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AdminStats{Users: 1, MenuItems: 2, Orders: 1, Parcels: 2, Revenue: 120}, decode[models.AdminStats](t, rec))

	rec = api.do(t, http.MethodGet, "/order-stats", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.CategoryStats{
		{Category: "cargo", Quantity: 1, Revenue: 100},
		{Category: "courier", Quantity: 1, Revenue: 20},
	}, decode[[]models.CategoryStats](t, rec))

	rec = api.do(t, http.MethodGet, "/menu", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.MenuItem](t, rec), 2)
}

func TestUploadParcelImage(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "ann@example.com")
	id := api.createParcel(t, token, map[string]any{"deliveryDate": "2024-01-01"})

	upload := func(parcelID, filename string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("parcelImage", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/parcel/"+parcelID+"/image", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)
		return rec
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	rec := upload(uuid.NewString(), "box.png", png)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	stored, err := os.ReadDir(api.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, stored, "nothing may be stored for an unknown parcel")

	rec = upload(id, "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(id, "box.png", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	url := decode[map[string]any](t, rec)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/parcels/"))

	rec = api.do(t, http.MethodGet, "/parcel-details/"+id, nil, token)
	assert.Equal(t, url, decode[models.Parcel](t, rec).ParcelImage)

	served := api.do(t, http.MethodGet, strings.TrimPrefix(url, "http://localhost:5000"), nil, "")
	assert.Equal(t, http.StatusOK, served.Code)
}
