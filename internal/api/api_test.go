package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mobile/backend/internal/mocks"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

type routes interface {
	RegisterRoutes(*gin.RouterGroup)
}

// routesFunc adapts a RegisterRoutes method with extra parameters to routes.
type routesFunc func(*gin.RouterGroup)

func (f routesFunc) RegisterRoutes(g *gin.RouterGroup) { f(g) }

// newTestRouter mounts h under /api/v1 with the error middleware. A non-nil
// userID is injected as the authenticated caller.
func newTestRouter(userID uuid.UUID, h routes) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(nil))
	group := r.Group("/api/v1")
	if userID != uuid.Nil {
		group.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserID, userID)
			c.Next()
		})
	}
	h.RegisterRoutes(group)
	return r
}

func request(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorBody {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error
}

func TestAuthHandler(t *testing.T) {
	authService := &mocks.MockAuthService{}
	authHandler := NewAuthHandler(authService)
	r := newTestRouter(uuid.Nil, routesFunc(func(g *gin.RouterGroup) { authHandler.RegisterRoutes(g) }))

	userID := uuid.New()
	authService.On("Register", mock.Anything, &types.RegisterRequest{
		Email:    "cook@example.com",
		Password: "longenough",
	}).Return(&types.AuthResponse{Token: "jwt", UserID: userID}, nil)
	authService.On("Login", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewInvalidCredentialsError())

	t.Run("register", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
			Email:    "cook@example.com",
			Password: "longenough",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp types.AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "jwt", resp.Token)
		assert.Equal(t, userID, resp.UserID)
	})

	t.Run("register validation", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := errorBody(t, w)
		assert.Equal(t, string(apperrors.CodeValidationFailed), string(body.Code))
		assert.Contains(t, body.Details, "email address")
		assert.Contains(t, body.Details, "at least 8")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/auth/login", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body is not valid JSON", errorBody(t, w).Details)
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
			Email:    "cook@example.com",
			Password: "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, string(apperrors.CodeInvalidCredentials), string(errorBody(t, w).Code))
	})

	authService.AssertExpectations(t)
}

func TestProfileHandler(t *testing.T) {
	userID := uuid.New()
	profileService := &mocks.MockProfileService{}
	r := newTestRouter(userID, NewProfileHandler(profileService))

	profileService.On("GetBundle", mock.Anything, userID).Return(&service.ProfileBundle{}, nil)
	profileService.On("ReplaceEquipment", mock.Anything, userID, []string{"wok", "oven"}).Return(nil, nil)
	profileService.On("NutritionGoals", mock.Anything, userID).
		Return(nil, apperrors.NewValidationError("profile is missing height"))

	w := request(r, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodPut, "/api/v1/profile/equipment", types.ReplaceNamesRequest{Names: []string{"wok", "oven"}})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"equipment"`)

	w = request(r, http.MethodGet, "/api/v1/profile/nutrition-goals", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "profile is missing height", errorBody(t, w).Details)

	profileService.AssertExpectations(t)
}

func TestRequiresAuthenticatedUser(t *testing.T) {
	r := newTestRouter(uuid.Nil, NewPantryHandler(&mocks.MockPantryService{}))

	w := request(r, http.MethodGet, "/api/v1/pantry", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	userID := uuid.New()
	pantry := &mocks.MockPantryService{}
	pantry.On("List", mock.Anything, userID).Return(nil, errors.New("pq: connection refused"))
	r := newTestRouter(userID, NewPantryHandler(pantry))

	w := request(r, http.MethodGet, "/api/v1/pantry", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := errorBody(t, w)
	assert.Equal(t, apperrors.GenericMessage, body.Message)
	assert.Empty(t, body.Details)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestShoppingHandler(t *testing.T) {
	userID := uuid.New()
	shopping := &mocks.MockShoppingService{}
	r := newTestRouter(userID, NewShoppingHandler(shopping))

	shopping.On("ClearChecked", mock.Anything, userID).Return(int64(3), nil)
	shopping.On("MoveCheckedToPantry", mock.Anything, userID).Return(2, nil)

	w := request(r, http.MethodDelete, "/api/v1/shopping-list/checked", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed":3}`, w.Body.String())

	w = request(r, http.MethodPost, "/api/v1/shopping-list/checked/to-pantry", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"moved":2}`, w.Body.String())

	w = request(r, http.MethodPost, "/api/v1/shopping-list/not-a-uuid/toggle", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id must be a UUID", errorBody(t, w).Details)

	shopping.AssertExpectations(t)
}

func TestMealPlanHandler(t *testing.T) {
	userID := uuid.New()
	plans := &mocks.MockMealPlanService{}
	r := newTestRouter(userID, NewMealPlanHandler(plans))

	plans.On("Week", mock.Anything, userID, "2026-10-15").
		Return(&service.WeekPlan{WeekStart: "2026-10-12", WeekEnd: "2026-10-18"}, nil)

	w := request(r, http.MethodGet, "/api/v1/meal-plan?week_start=2026-10-15", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"week_start":"2026-10-12"`)

	w = request(r, http.MethodGet, "/api/v1/meal-plan?week_start=15/10/2026", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodGet, "/api/v1/meal-plan/nutrition", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w).Details, "required")

	w = request(r, http.MethodPut, "/api/v1/meal-plan", map[string]any{
		"date":      "2026-10-15",
		"meal_type": "brunch",
		"recipe_id": uuid.NewString(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w).Details, "must be one of")

	plans.AssertExpectations(t)
}

func TestStateHandler(t *testing.T) {
	userID := uuid.New()
	state := &mocks.MockClientStateService{}
	r := newTestRouter(userID, NewStateHandler(state))

	prefs := &types.Preferences{Theme: "dark", Language: "en-US"}
	state.On("PutPreferences", mock.Anything, userID, prefs).Return(nil)
	state.On("GetPreferences", mock.Anything, userID).Return(prefs, nil)
	state.On("DeleteOnboarding", mock.Anything, userID).Return(nil)

	w := request(r, http.MethodPut, "/api/v1/state/preferences", prefs)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(r, http.MethodPut, "/api/v1/state/preferences", map[string]string{"theme": "neon", "language": "en"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(r, http.MethodGet, "/api/v1/state/preferences", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"theme":"dark","language":"en-US"}`, w.Body.String())

	w = request(r, http.MethodDelete, "/api/v1/state/onboarding", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	state.AssertExpectations(t)
}

func TestToolsHandler(t *testing.T) {
	r := newTestRouter(uuid.New(), NewToolsHandler())

	t.Run("convert", func(t *testing.T) {
		cases := []struct {
			query string
			want  string
		}{
			{"from=cm&value=180", `{"cm":180,"feet":5,"inches":11}`},
			{"from=ft_in&feet=5&inches=11", `{"feet":5,"inches":11,"cm":180}`},
			{"from=kg&value=70", `{"kg":70,"lbs":154.3}`},
			{"from=lbs&value=154.3", `{"lbs":154.3,"kg":70}`},
		}
		for _, tc := range cases {
			w := request(r, http.MethodGet, "/api/v1/tools/convert?"+tc.query, nil)
			assert.Equal(t, http.StatusOK, w.Code, tc.query)
			assert.JSONEq(t, tc.want, w.Body.String(), tc.query)
		}

		w := request(r, http.MethodGet, "/api/v1/tools/convert?from=stone&value=10", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("nutrition goals", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/tools/nutrition-goals", types.NutritionGoalsRequest{
			WeightKg:      80,
			HeightCm:      180,
			Age:           30,
			Gender:        "male",
			ActivityLevel: "moderate",
			Goal:          "maintain",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp, "goals")
		assert.Contains(t, resp, "per_meal")

		w = request(r, http.MethodPost, "/api/v1/tools/nutrition-goals", map[string]any{"weight_kg": 80})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("quick filters", func(t *testing.T) {
		w := request(r, http.MethodGet, "/api/v1/ai/quick-filters", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			QuickFilters []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"quick_filters"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.QuickFilters)
		for _, f := range resp.QuickFilters {
			assert.NotEmpty(t, f.Description, f.Name)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(nil, nil).HealthCheck)

	w := request(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
}
