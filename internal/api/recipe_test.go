package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mobile/backend/internal/mocks"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/recipeschema"
	"github.com/pageza/alchemorsel-mobile/backend/internal/service"
	"github.com/pageza/alchemorsel-mobile/backend/internal/testhelpers"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func uploadRequest(t *testing.T, path, field string, data []byte) *http.Request {
	t.Helper()
	return typedUploadRequest(t, path, field, "application/octet-stream", data)
}

func typedUploadRequest(t *testing.T, path, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="photo"`, field))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRecipeHandler(t *testing.T) {
	userID := uuid.New()
	recipeID := uuid.New()
	recipes := &mocks.MockRecipeService{}
	r := newTestRouter(userID, NewRecipeHandler(recipes, 0))

	t.Run("list passes the filter", func(t *testing.T) {
		recipes.On("List", mock.Anything, userID, service.RecipeFilter{
			Query:         "curry",
			FavoritesOnly: true,
		}).Return([]models.Recipe{{ID: recipeID, Title: "Green Curry"}}, nil).Once()

		w := request(r, http.MethodGet, "/api/v1/recipes?q=curry&favorites=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Green Curry")
	})

	t.Run("create reads the raw body", func(t *testing.T) {
		body := []byte(recipeschema.Example)
		recipes.On("CreateManual", mock.Anything, userID, body).
			Return(&models.Recipe{ID: recipeID, Title: "Lemon Garlic Chicken"}, nil).Once()

		w := request(r, http.MethodPost, "/api/v1/recipes", recipeschema.Example)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("create with an empty body", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/recipes", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create rejects oversized bodies", func(t *testing.T) {
		w := request(r, http.MethodPost, "/api/v1/recipes", strings.Repeat("x", MaxJSONBody+1))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New()
		recipes.On("Get", mock.Anything, userID, missing).
			Return(nil, apperrors.NewRecipeNotFoundError(missing.String())).Once()

		w := request(r, http.MethodGet, "/api/v1/recipes/"+missing.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperrors.CodeRecipeNotFound, errorBody(t, w).Code)
	})

	t.Run("delete", func(t *testing.T) {
		recipes.On("Delete", mock.Anything, userID, recipeID).Return(nil).Once()

		w := request(r, http.MethodDelete, "/api/v1/recipes/"+recipeID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("similar limit", func(t *testing.T) {
		recipes.On("Similar", mock.Anything, userID, recipeID, 3).Return([]models.Recipe{}, nil).Once()

		w := request(r, http.MethodGet, "/api/v1/recipes/"+recipeID.String()+"/similar?limit=3", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = request(r, http.MethodGet, "/api/v1/recipes/"+recipeID.String()+"/similar?limit=500", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	recipes.AssertExpectations(t)
}

func TestUploadImage(t *testing.T) {
	userID := uuid.New()
	recipeID := uuid.New()
	path := "/api/v1/recipes/" + recipeID.String() + "/image"

	t.Run("sniffs the content type", func(t *testing.T) {
		recipes := &mocks.MockRecipeService{}
		r := newTestRouter(userID, NewRecipeHandler(recipes, 1<<20))
		recipes.On("SetImage", mock.Anything, userID, recipeID, "image/png", int64(len(pngHeader))).
			Return(&models.Recipe{ID: recipeID, ImageURL: "https://images.example.com/r.png"}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, path, "image", pngHeader))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "images.example.com")
		recipes.AssertExpectations(t)
	})

	t.Run("missing field", func(t *testing.T) {
		r := newTestRouter(userID, NewRecipeHandler(&mocks.MockRecipeService{}, 1<<20))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, path, "photo", pngHeader))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		r := newTestRouter(userID, NewRecipeHandler(&mocks.MockRecipeService{}, 16))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, path, "image", bytes.Repeat([]byte{0xff}, 1024)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("declared type must match the bytes", func(t *testing.T) {
		recipes := &mocks.MockRecipeService{}
		r := newTestRouter(userID, NewRecipeHandler(recipes, 1<<20))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, typedUploadRequest(t, path, "image", "image/png", []byte("<html><script>x</script></html>")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w).Details, "not the declared image/png")
		recipes.AssertNotCalled(t, "SetImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("matching declared type", func(t *testing.T) {
		recipes := &mocks.MockRecipeService{}
		r := newTestRouter(userID, NewRecipeHandler(recipes, 1<<20))
		recipes.On("SetImage", mock.Anything, userID, recipeID, "image/png", mock.Anything).
			Return(&models.Recipe{ID: recipeID}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, typedUploadRequest(t, path, "image", "image/png", pngHeader))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("unsupported type comes back from the service", func(t *testing.T) {
		recipes := &mocks.MockRecipeService{}
		r := newTestRouter(userID, NewRecipeHandler(recipes, 1<<20))
		recipes.On("SetImage", mock.Anything, userID, recipeID, "text/plain; charset=utf-8", mock.Anything).
			Return(nil, apperrors.NewValidationError("unsupported image type"))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, path, "image", []byte("hello")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAIHandler(t *testing.T) {
	userID := uuid.New()
	generation := &mocks.MockGenerationService{}
	rdb := testhelpers.NewFakeRedis()
	h := NewAIHandler(generation,
		middleware.NewGenerationRateLimiter(rdb, 1, zap.NewNop()),
		middleware.NewModificationRateLimiter(rdb, 0, zap.NewNop()),
	)
	r := newTestRouter(userID, h)

	draft := &service.RecipeDraft{ID: uuid.New(), UserID: userID, Provider: "deepseek"}
	generation.On("Generate", mock.Anything, userID, mock.AnythingOfType("*types.RecipeSearchForm")).Return(draft, nil).Once()

	form := types.RecipeSearchForm{Prompt: "a quick soup", MealType: "lunch"}
	w := request(r, http.MethodPost, "/api/v1/ai/recipes/generate", form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = request(r, http.MethodPost, "/api/v1/ai/recipes/generate", form)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = request(r, http.MethodGet, "/api/v1/ai/rate-limits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var limits struct {
		Generation   *middleware.Usage `json:"generation"`
		Modification *middleware.Usage `json:"modification"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &limits))
	require.NotNil(t, limits.Generation)
	assert.Equal(t, 0, limits.Generation.Remaining)
	assert.Nil(t, limits.Modification)

	t.Run("invalid meal type never reaches the service", func(t *testing.T) {
		w := request(newTestRouter(userID, NewAIHandler(generation, nil, nil)), http.MethodPost,
			"/api/v1/ai/recipes/generate", map[string]string{"meal_type": "elevenses"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("provider failures are bad gateway", func(t *testing.T) {
		generation.On("Chat", mock.Anything, userID, mock.Anything).
			Return(nil, apperrors.NewExternalServiceError("deepseek", assert.AnError)).Once()

		w := request(r, http.MethodPost, "/api/v1/ai/chat", types.ChatRequest{Message: "hi"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("save draft", func(t *testing.T) {
		generation.On("SaveDraft", mock.Anything, userID, draft.ID).
			Return(&models.Recipe{ID: uuid.New(), Source: models.SourceAI}, nil).Once()

		w := request(r, http.MethodPost, "/api/v1/ai/drafts/"+draft.ID.String()+"/save", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"source":"ai"`)
	})

	generation.AssertExpectations(t)
}
