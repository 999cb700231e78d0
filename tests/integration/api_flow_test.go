package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/database"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/identifier"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/recipes"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/server"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiSigningSecret = "integration-secret"
	jsonContentType  = "application/json"
)

func startAPIServer(testContext *testing.T) *httptest.Server {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	databasePath := filepath.Join(testContext.TempDir(), "integration.db")
	db, err := database.OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}

	idProvider := identifier.NewUUIDProvider()
	usersService, err := users.NewService(users.ServiceConfig{
		Database:   db,
		IDProvider: idProvider,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build users service: %v", err)
	}
	recipesService, err := recipes.NewService(recipes.ServiceConfig{
		Database:   db,
		IDProvider: idProvider,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build recipes service: %v", err)
	}
	tokenIssuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(apiSigningSecret),
		Issuer:        "flavorai-auth",
		Audience:      "flavorai-api",
		TokenTTL:      time.Hour,
	})
	if err != nil {
		testContext.Fatalf("failed to build token issuer: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager:   tokenIssuer,
		UsersService:   usersService,
		RecipesService: recipesService,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	testContext.Cleanup(testServer.Close)
	return testServer
}

func postJSON(testContext *testing.T, url, token string, payload any) (*http.Response, []byte) {
	testContext.Helper()
	return sendJSON(testContext, http.MethodPost, url, token, payload)
}

func sendJSON(testContext *testing.T, method, url, token string, payload any) (*http.Response, []byte) {
	testContext.Helper()
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			testContext.Fatalf("failed to encode payload: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequest(method, url, reader)
	if err != nil {
		testContext.Fatalf("failed to build request: %v", err)
	}
	request.Header.Set("Content-Type", jsonContentType)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := http.DefaultClient.Do(request)
	if err != nil {
		testContext.Fatalf("request failed: %v", err)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		testContext.Fatalf("failed to read response body: %v", err)
	}
	response.Body.Close()
	return response, body
}

func registerAccount(testContext *testing.T, baseURL, email, username string) string {
	testContext.Helper()
	response, body := postJSON(testContext, baseURL+"/api/auth/register", "", map[string]any{
		"email":    email,
		"username": username,
		"password": "secret-pass",
	})
	if response.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected register status %d: %s", response.StatusCode, body)
	}
	var registered struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &registered); err != nil {
		testContext.Fatalf("failed to decode register response: %v", err)
	}
	if registered.AccessToken == "" {
		testContext.Fatalf("expected access token in register response")
	}
	return registered.AccessToken
}

func TestRecipeLifecycleFlow(testContext *testing.T) {
	testServer := startAPIServer(testContext)
	baseURL := testServer.URL

	authorToken := registerAccount(testContext, baseURL, "author@example.com", "chef_author")
	raterToken := registerAccount(testContext, baseURL, "rater@example.com", "chef_rater")

	loginResponse, loginBody := postJSON(testContext, baseURL+"/api/auth/login", "", map[string]any{
		"email":    "Author@Example.com",
		"password": "secret-pass",
	})
	if loginResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected login status %d: %s", loginResponse.StatusCode, loginBody)
	}

	createResponse, createBody := postJSON(testContext, baseURL+"/api/recipes", authorToken, map[string]any{
		"title":        "Shakshuka",
		"description":  "Eggs poached in spiced tomato sauce",
		"instructions": "Simmer the sauce, crack in the eggs, cover until set.",
		"ingredients":  []string{"eggs", "tomatoes", "paprika"},
		"cookTime":     30,
	})
	if createResponse.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected create status %d: %s", createResponse.StatusCode, createBody)
	}
	var created struct {
		ID     string `json:"id"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
	}
	if err := json.Unmarshal(createBody, &created); err != nil {
		testContext.Fatalf("failed to decode create response: %v", err)
	}
	if created.ID == "" || created.Author.Username != "chef_author" {
		testContext.Fatalf("unexpected create payload: %s", createBody)
	}

	listResponse, listBody := sendJSON(testContext, http.MethodGet, baseURL+"/api/recipes?search=shakshuka", raterToken, nil)
	if listResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected list status %d: %s", listResponse.StatusCode, listBody)
	}
	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(listBody, &listing); err != nil {
		testContext.Fatalf("failed to decode list response: %v", err)
	}
	if listing.Pagination.Total != 1 || len(listing.Data) != 1 || listing.Data[0].ID != created.ID {
		testContext.Fatalf("unexpected listing: %s", listBody)
	}

	rateResponse, rateBody := postJSON(testContext, baseURL+"/api/recipes/"+created.ID+"/rate", raterToken, map[string]any{"rating": 5})
	if rateResponse.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected rate status %d: %s", rateResponse.StatusCode, rateBody)
	}
	var rated struct {
		AverageRating float64 `json:"averageRating"`
		RatingsCount  int     `json:"ratingsCount"`
	}
	if err := json.Unmarshal(rateBody, &rated); err != nil {
		testContext.Fatalf("failed to decode rate response: %v", err)
	}
	if rated.AverageRating != 5 || rated.RatingsCount != 1 {
		testContext.Fatalf("unexpected rating aggregate: %s", rateBody)
	}

	noteResponse, noteBody := postJSON(testContext, baseURL+"/api/recipes/"+created.ID+"/notes", raterToken, map[string]any{
		"content": "Halve the paprika next time",
	})
	if noteResponse.StatusCode != http.StatusCreated {
		testContext.Fatalf("unexpected note status %d: %s", noteResponse.StatusCode, noteBody)
	}

	fetchNoteResponse, fetchNoteBody := sendJSON(testContext, http.MethodGet, baseURL+"/api/recipes/"+created.ID+"/notes", raterToken, nil)
	if fetchNoteResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected note fetch status %d: %s", fetchNoteResponse.StatusCode, fetchNoteBody)
	}
	var note struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(fetchNoteBody, &note); err != nil {
		testContext.Fatalf("failed to decode note response: %v", err)
	}
	if note.Content != "Halve the paprika next time" {
		testContext.Fatalf("unexpected note content: %s", fetchNoteBody)
	}

	forbiddenResponse, _ := sendJSON(testContext, http.MethodDelete, baseURL+"/api/recipes/"+created.ID, raterToken, nil)
	if forbiddenResponse.StatusCode != http.StatusForbidden {
		testContext.Fatalf("expected 403 for non-owner delete, got %d", forbiddenResponse.StatusCode)
	}

	getResponse, getBody := sendJSON(testContext, http.MethodGet, baseURL+"/api/recipes/"+created.ID, authorToken, nil)
	if getResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected get status %d: %s", getResponse.StatusCode, getBody)
	}
	var detailed struct {
		AverageRating float64 `json:"averageRating"`
		RatingsCount  int     `json:"ratingsCount"`
		Ratings       []struct {
			Rating int `json:"rating"`
			User   struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"ratings"`
	}
	if err := json.Unmarshal(getBody, &detailed); err != nil {
		testContext.Fatalf("failed to decode recipe detail: %v", err)
	}
	if detailed.AverageRating != 5 || detailed.RatingsCount != 1 {
		testContext.Fatalf("unexpected detail aggregate: %s", getBody)
	}
	if len(detailed.Ratings) != 1 || detailed.Ratings[0].User.Username != "chef_rater" {
		testContext.Fatalf("unexpected ratings list: %s", getBody)
	}

	deleteResponse, deleteBody := sendJSON(testContext, http.MethodDelete, baseURL+"/api/recipes/"+created.ID, authorToken, nil)
	if deleteResponse.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected delete status %d: %s", deleteResponse.StatusCode, deleteBody)
	}
	var removedRecipe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(deleteBody, &removedRecipe); err != nil {
		testContext.Fatalf("failed to decode delete response: %v", err)
	}
	if removedRecipe.ID != created.ID {
		testContext.Fatalf("expected the deleted recipe back, got %s", deleteBody)
	}

	goneResponse, goneBody := sendJSON(testContext, http.MethodGet, baseURL+"/api/recipes/"+created.ID, authorToken, nil)
	if goneResponse.StatusCode != http.StatusNotFound {
		testContext.Fatalf("expected 404 after delete, got %d: %s", goneResponse.StatusCode, goneBody)
	}
	var missing struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Error      string `json:"error"`
	}
	if err := json.Unmarshal(goneBody, &missing); err != nil {
		testContext.Fatalf("failed to decode error envelope: %v", err)
	}
	if missing.StatusCode != http.StatusNotFound || missing.Message != "Recipe not found" || missing.Error != "Not Found" {
		testContext.Fatalf("unexpected error envelope: %s", goneBody)
	}
}
