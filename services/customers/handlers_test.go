package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
)

const handlerSecret = "customers-secret"

type handlerFixture struct {
	repo   *MockCustomerRepository
	tx     *MockTx
	router *gin.Engine
	issuer *authn.Issuer
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc, repo, tx := newTestUseCase(t)
	router := gin.New()
	NewCustomerHandler(uc).RegisterRoutes(router, authn.NewVerifier(handlerSecret))

	return &handlerFixture{
		repo:   repo,
		tx:     tx,
		router: router,
		issuer: authn.NewIssuer(handlerSecret, time.Hour, time.Minute),
	}
}

// do sends the request as identity. An empty username sends no token.
func (f *handlerFixture) do(t *testing.T, identity authn.Identity, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if identity.Username != "" {
		token, err := f.issuer.Issue(identity)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

var (
	eveIdentity   = authn.Identity{Username: "eve", Role: authn.RoleCustomer}
	malIdentity   = authn.Identity{Username: "mal", Role: authn.RoleCustomer}
	adminIdentity = authn.Identity{Username: "root", Role: authn.RoleAdmin}
	salesIdentity = authn.Identity{Username: "eve", Role: authn.RoleService}
)

const registrationBody = `{"username": "eve", "password": "correct horse", "fullname": "Eve Adams",
	"age": 31, "address": "1 Main St", "gender": "female", "marital_status": "single"}`

func TestRegister_Handler(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("CreateCustomer", mock.Anything, mock.Anything).Return(int64(3), nil).Once()
	f.repo.On("CreateCustomer", mock.Anything, mock.Anything).Return(int64(0), ErrUsernameTaken).Once()

	// Act
	w, body := f.do(t, authn.Identity{}, http.MethodPost, "/customers", registrationBody)
	wTaken, taken := f.do(t, authn.Identity{}, http.MethodPost, "/customers", registrationBody)
	wRole, _ := f.do(t, authn.Identity{}, http.MethodPost, "/customers",
		strings.Replace(registrationBody, `"age"`, `"role": "admin", "age"`, 1))

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(3), body["customer_id"])
	assert.Equal(t, http.StatusBadRequest, wTaken.Code)
	assert.Equal(t, "Username is already taken", taken["error"])
	assert.Equal(t, http.StatusBadRequest, wRole.Code)
	f.repo.AssertNumberOfCalls(t, "CreateCustomer", 2)
}

func TestRegisterStaff_AdminOnly(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(c *Customer) bool {
		return c.Role == authn.RoleProductManager
	})).Return(int64(4), nil)
	staffBody := strings.Replace(registrationBody, `"age"`, `"role": "product_manager", "age"`, 1)

	// Act
	w, body := f.do(t, adminIdentity, http.MethodPost, "/admins", staffBody)
	wCustomer, _ := f.do(t, eveIdentity, http.MethodPost, "/admins", staffBody)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Admin added successfully", body["message"])
	assert.Equal(t, http.StatusForbidden, wCustomer.Code)
}

func TestGetCustomer_OwnerOrAdmin(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)

	// Act
	wOwner, owner := f.do(t, eveIdentity, http.MethodGet, "/customers/eve", "")
	wAdmin, _ := f.do(t, adminIdentity, http.MethodGet, "/customers/eve", "")
	wSales, _ := f.do(t, salesIdentity, http.MethodGet, "/customers/eve", "")
	wOther, _ := f.do(t, malIdentity, http.MethodGet, "/customers/eve", "")

	// Assert
	assert.Equal(t, http.StatusOK, wOwner.Code)
	assert.Equal(t, float64(200), owner["wallet"])
	assert.NotContains(t, owner, "password_hash")
	assert.Equal(t, http.StatusOK, wAdmin.Code)
	assert.Equal(t, http.StatusOK, wSales.Code)
	assert.Equal(t, http.StatusForbidden, wOther.Code)
}

func TestGetCustomer_NotFound(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("GetCustomer", mock.Anything, "ghost").Return(nil, ErrCustomerNotFound)

	// Act
	w, body := f.do(t, adminIdentity, http.MethodGet, "/customers/ghost", "")

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Customer not found", body["error"])
}

func TestListCustomers_AdminOnly(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("ListCustomers", mock.Anything).Return([]Customer{*eve()}, nil)

	// Act
	w, _ := f.do(t, adminIdentity, http.MethodGet, "/customers", "")
	wCustomer, _ := f.do(t, eveIdentity, http.MethodGet, "/customers", "")

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusForbidden, wCustomer.Code)
	f.repo.AssertNumberOfCalls(t, "ListCustomers", 1)
}

func TestUpdateCustomer_Handler(t *testing.T) {
	tests := []struct {
		name       string
		identity   authn.Identity
		body       string
		wantStatus int
	}{
		{name: "owner updates address", identity: eveIdentity, body: `{"address": "2 Side St"}`, wantStatus: http.StatusOK},
		{name: "wallet is not updatable", identity: eveIdentity, body: `{"wallet": 1000000}`, wantStatus: http.StatusBadRequest},
		{name: "role is not updatable", identity: eveIdentity, body: `{"role": "admin"}`, wantStatus: http.StatusBadRequest},
		{name: "password is not updatable", identity: eveIdentity, body: `{"password": "new secret"}`, wantStatus: http.StatusBadRequest},
		{name: "admin cannot edit someone else's profile", identity: adminIdentity, body: `{"address": "x"}`, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newHandlerFixture(t)
			f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil).Maybe()
			f.repo.On("UpdateCustomer", mock.Anything, mock.Anything).Return(nil).Maybe()

			// Act
			w, _ := f.do(t, tt.identity, http.MethodPut, "/customers/eve", tt.body)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				f.repo.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDeleteCustomer_Handler(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("DeleteCustomer", mock.Anything, "eve").Return(nil)

	// Act
	wOther, _ := f.do(t, malIdentity, http.MethodDelete, "/customers/eve", "")
	w, body := f.do(t, eveIdentity, http.MethodDelete, "/customers/eve", "")

	// Assert
	assert.Equal(t, http.StatusForbidden, wOther.Code)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Customer eve deleted successfully", body["message"])
	f.repo.AssertNumberOfCalls(t, "DeleteCustomer", 1)
}

func TestDeductFunds_Handler(t *testing.T) {
	tests := []struct {
		name       string
		identity   authn.Identity
		body       string
		setup      func(f *handlerFixture)
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:     "derived service token debits",
			identity: salesIdentity,
			body:     `{"amount": 150}`,
			setup: func(f *handlerFixture) {
				f.repo.On("BeginTx", mock.Anything).Return(f.tx, nil)
				f.repo.On("DebitWallet", mock.Anything, f.tx, "eve", amountEq("150")).Return(int64(7), decimal.NewFromInt(50), nil)
				f.repo.On("RecordTransaction", mock.Anything, f.tx, mock.Anything).Return(nil)
				f.tx.On("Commit", mock.Anything).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"message": "Deducted 150.00 from eve's wallet", "new_balance": float64(50)},
		},
		{
			name:     "lost race",
			identity: eveIdentity,
			body:     `{"amount": "80.50"}`,
			setup: func(f *handlerFixture) {
				f.repo.On("BeginTx", mock.Anything).Return(f.tx, nil)
				f.repo.On("DebitWallet", mock.Anything, f.tx, "eve", amountEq("80.50")).Return(int64(0), decimal.Zero, ErrInsufficientBalance)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Insufficient balance"},
		},
		{
			name:     "unknown customer",
			identity: adminIdentity,
			body:     `{"amount": 1}`,
			setup: func(f *handlerFixture) {
				f.repo.On("BeginTx", mock.Anything).Return(f.tx, nil)
				f.repo.On("DebitWallet", mock.Anything, f.tx, "eve", amountEq("1")).Return(int64(0), decimal.Zero, ErrCustomerNotFound)
			},
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]any{"error": "Customer not found"},
		},
		{
			name:       "negative amount",
			identity:   eveIdentity,
			body:       `{"amount": -10}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Invalid amount"},
		},
		{
			name:       "missing amount",
			identity:   eveIdentity,
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Invalid amount"},
		},
		{
			name:       "someone else's wallet",
			identity:   malIdentity,
			body:       `{"amount": 1}`,
			wantStatus: http.StatusForbidden,
			wantBody:   map[string]any{"error": "Forbidden"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newHandlerFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			// Act
			w, body := f.do(t, tt.identity, http.MethodPost, "/customers/eve/wallet/deduct", tt.body)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestAddFunds_Handler(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.repo.On("CreditWallet", mock.Anything, f.tx, "eve", amountEq("25.5")).Return(int64(7), decimal.RequireFromString("225.50"), nil)
	f.repo.On("RecordTransaction", mock.Anything, f.tx, mock.Anything).Return(nil)
	f.tx.On("Commit", mock.Anything).Return(nil)

	// Act
	w, body := f.do(t, eveIdentity, http.MethodPost, "/customers/eve/wallet/add", `{"amount": 25.5}`)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Charged 25.50 to eve's wallet", body["message"])
	assert.Equal(t, 225.5, body["new_balance"])
}

func TestListWishlist_Handler(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)
	f.repo.On("ListWishlist", mock.Anything, int64(7)).Return([]WishlistEntry{
		{ID: 4, ItemID: 1, ItemName: "Widget", ItemPrice: decimal.RequireFromString("50.25")},
	}, nil)

	// Act
	wOwner, owner := f.do(t, eveIdentity, http.MethodGet, "/customers/eve/wishlist", "")
	wAdmin, _ := f.do(t, adminIdentity, http.MethodGet, "/customers/eve/wishlist", "")
	wOther, _ := f.do(t, malIdentity, http.MethodGet, "/customers/eve/wishlist", "")

	// Assert
	require.Equal(t, http.StatusOK, wOwner.Code)
	entries := owner["wishlist"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, float64(4), entry["wishlist_id"])
	assert.Equal(t, "Widget", entry["item_name"])
	assert.Equal(t, 50.25, entry["item_price"])
	assert.Equal(t, http.StatusOK, wAdmin.Code)
	assert.Equal(t, http.StatusForbidden, wOther.Code)
}

func TestListWishlist_EmptyAndUnknown(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)
	f.repo.On("ListWishlist", mock.Anything, int64(7)).Return(nil, nil)
	f.repo.On("GetCustomer", mock.Anything, "ghost").Return(nil, ErrCustomerNotFound)

	// Act
	wEmpty, _ := f.do(t, eveIdentity, http.MethodGet, "/customers/eve/wishlist", "")
	wUnknown, _ := f.do(t, adminIdentity, http.MethodGet, "/customers/ghost/wishlist", "")

	// Assert
	assert.Equal(t, http.StatusOK, wEmpty.Code)
	assert.JSONEq(t, `{"wishlist": []}`, wEmpty.Body.String())
	assert.Equal(t, http.StatusNotFound, wUnknown.Code)
}

func TestAddToWishlist_Handler(t *testing.T) {
	tests := []struct {
		name       string
		identity   authn.Identity
		body       string
		setup      func(f *handlerFixture)
		wantStatus int
	}{
		{
			name:     "saved",
			identity: eveIdentity,
			body:     `{"item_id": 1}`,
			setup: func(f *handlerFixture) {
				f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)
				f.repo.On("AddToWishlist", mock.Anything, int64(7), int64(1)).Return(int64(4), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:     "duplicate",
			identity: eveIdentity,
			body:     `{"item_id": 1}`,
			setup: func(f *handlerFixture) {
				f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)
				f.repo.On("AddToWishlist", mock.Anything, int64(7), int64(1)).Return(int64(0), ErrAlreadyWishlisted)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:     "unknown item",
			identity: eveIdentity,
			body:     `{"item_id": 99}`,
			setup: func(f *handlerFixture) {
				f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)
				f.repo.On("AddToWishlist", mock.Anything, int64(7), int64(99)).Return(int64(0), ErrItemNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{name: "bad item id", identity: eveIdentity, body: `{"item_id": "one"}`, wantStatus: http.StatusBadRequest},
		{name: "zero item id", identity: eveIdentity, body: `{"item_id": 0}`, wantStatus: http.StatusBadRequest},
		{name: "admin cannot write another wishlist", identity: adminIdentity, body: `{"item_id": 1}`, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newHandlerFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			// Act
			w, _ := f.do(t, tt.identity, http.MethodPost, "/customers/eve/wishlist", tt.body)

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRemoveFromWishlist_Handler(t *testing.T) {
	// Arrange
	f := newHandlerFixture(t)
	f.repo.On("GetCustomer", mock.Anything, "eve").Return(eve(), nil)
	f.repo.On("RemoveFromWishlist", mock.Anything, int64(7), int64(4)).Return(nil)
	f.repo.On("RemoveFromWishlist", mock.Anything, int64(7), int64(5)).Return(ErrWishlistEntryNotFound)

	// Act
	wRemoved, body := f.do(t, eveIdentity, http.MethodDelete, "/customers/eve/wishlist/4", "")
	wMissing, _ := f.do(t, eveIdentity, http.MethodDelete, "/customers/eve/wishlist/5", "")
	wBadID, _ := f.do(t, eveIdentity, http.MethodDelete, "/customers/eve/wishlist/abc", "")
	wOther, _ := f.do(t, malIdentity, http.MethodDelete, "/customers/eve/wishlist/4", "")

	// Assert
	assert.Equal(t, http.StatusOK, wRemoved.Code)
	assert.Equal(t, "Item removed from wishlist", body["message"])
	assert.Equal(t, http.StatusNotFound, wMissing.Code)
	assert.Equal(t, http.StatusNotFound, wBadID.Code)
	assert.Equal(t, http.StatusForbidden, wOther.Code)
}
