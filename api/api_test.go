package api

import (
	"encoding/json"
	"errors"
	"mirrorbalance/internal/app"
	"mirrorbalance/internal/domain"
	mock_repository "mirrorbalance/internal/repository/mocks"
	l1_service "mirrorbalance/internal/service/l1"
	l3_service "mirrorbalance/internal/service/l3"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	mainAccount = domain.Account{ID: "2000111", Name: "main", Status: domain.AccountStatusOpen}
	iisAccount  = domain.Account{ID: "2000222", Name: "iis", Status: domain.AccountStatusOpen}
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApiHandler(repo *mock_repository.MockInvestRepository, jwtSecret string) ApiHandler {
	cache := l1_service.NewReferenceDataCache(repo, time.Hour)
	rebalanceService := l3_service.NewRebalanceService(
		l1_service.NewPortfolioService(repo, cache),
		cache,
		l3_service.RebalanceConfig{
			PrimaryAccount:   "main",
			SecondaryAccount: "iis",
			PrimaryFilter:    l1_service.ExcludeInstrumentTypes(domain.InstrumentTypeCurrency),
			JobTimeout:       time.Minute,
		},
	)
	return ApiHandler{
		ReferenceDataCache: cache,
		RebalancerHandler: app.RebalancerHandler{
			RebalanceService: rebalanceService,
		},
		JwtSecret: jwtSecret,
	}
}

func expectHappyPath(repo *mock_repository.MockInvestRepository) {
	repo.EXPECT().GetShares(gomock.Any()).Return([]domain.Instrument{
		{Figi: "AAA", Name: "Alpha", Lot: 1},
	}, nil).AnyTimes()
	repo.EXPECT().GetEtfs(gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().GetCurrencies(gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().GetPortfolio(gomock.Any(), mainAccount).Return([]domain.PortfolioPosition{
		{Figi: "AAA", InstrumentType: "share", Quantity: decimal.NewFromInt(10), CurrentPrice: decimal.NewFromInt(100)},
	}, nil).AnyTimes()
	repo.EXPECT().GetPortfolio(gomock.Any(), iisAccount).Return([]domain.PortfolioPosition{
		{Figi: "AAA", InstrumentType: "share", Quantity: decimal.NewFromInt(20), CurrentPrice: decimal.NewFromInt(60)},
		{Figi: "BBB", InstrumentType: "share", Quantity: decimal.NewFromInt(5), CurrentPrice: decimal.NewFromInt(10)},
	}, nil).AnyTimes()
}

func doGet(router http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRebalanceRoute(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		repo.EXPECT().GetAccounts(gomock.Any()).Return([]domain.Account{mainAccount, iisAccount}, nil).Times(1)
		expectHappyPath(repo)

		w := doGet(newTestApiHandler(repo, "").NewRouter(), "/rebalance?format=text", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "Alpha: 1.00\nunresolved (cash?): -5.00\n", w.Body.String())
	})

	t.Run("json is the default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		repo.EXPECT().GetAccounts(gomock.Any()).Return([]domain.Account{mainAccount, iisAccount}, nil).Times(1)
		expectHappyPath(repo)

		w := doGet(newTestApiHandler(repo, "").NewRouter(), "/rebalance", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := l3_service.ReportJson{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "iis", body.SecondaryAccount)
		require.True(t, decimal.NewFromFloat(1.25).Equal(body.Summary.Ratio))
		require.Len(t, body.Positions, 2)
	})

	t.Run("refresh reloads reference data", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		repo.EXPECT().GetAccounts(gomock.Any()).Return([]domain.Account{mainAccount, iisAccount}, nil).Times(2)
		expectHappyPath(repo)

		router := newTestApiHandler(repo, "").NewRouter()
		require.Equal(t, http.StatusOK, doGet(router, "/rebalance", nil).Code)
		require.Equal(t, http.StatusOK, doGet(router, "/rebalance", nil).Code)
		require.Equal(t, http.StatusOK, doGet(router, "/rebalance?refresh=true", nil).Code)
	})

	t.Run("bad parameters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		router := newTestApiHandler(repo, "").NewRouter()

		require.Equal(t, http.StatusBadRequest, doGet(router, "/rebalance?format=xml", nil).Code)
		require.Equal(t, http.StatusBadRequest, doGet(router, "/rebalance?refresh=maybe", nil).Code)
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		repo.EXPECT().GetAccounts(gomock.Any()).Return([]domain.Account{iisAccount}, nil)

		w := doGet(newTestApiHandler(repo, "").NewRouter(), "/rebalance", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("provider failure is 502", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		repo.EXPECT().GetAccounts(gomock.Any()).Return(nil, errors.New("boom"))

		w := doGet(newTestApiHandler(repo, "").NewRouter(), "/rebalance", nil)
		require.Equal(t, http.StatusBadGateway, w.Code)
		require.Contains(t, w.Body.String(), "boom")
	})
}

func Test_errorStatusCode(t *testing.T) {
	require.Equal(t, http.StatusNotFound, errorStatusCode(domain.ErrNotFound))
	require.Equal(t, http.StatusUnprocessableEntity, errorStatusCode(domain.ErrZeroPrimaryValue))
	require.Equal(t, http.StatusUnprocessableEntity, errorStatusCode(domain.ErrDuplicateFigi))
	require.Equal(t, http.StatusBadGateway, errorStatusCode(errors.New("timeout")))
}

func TestAccountsRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_repository.NewMockInvestRepository(ctrl)
	repo.EXPECT().GetAccounts(gomock.Any()).Return([]domain.Account{
		mainAccount,
		iisAccount,
		{ID: "3", Name: "closed", Status: domain.AccountStatusClosed},
	}, nil)

	w := doGet(newTestApiHandler(repo, "").NewRouter(), "/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[{"id":"2000222","name":"iis"},{"id":"2000111","name":"main"}]`, w.Body.String())
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	secret := "test-secret"
	newRouter := func(t *testing.T) http.Handler {
		ctrl := gomock.NewController(t)
		repo := mock_repository.NewMockInvestRepository(ctrl)
		repo.EXPECT().GetAccounts(gomock.Any()).Return([]domain.Account{mainAccount}, nil).AnyTimes()
		return newTestApiHandler(repo, secret).NewRouter()
	}

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"sub": "ops",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		w := doGet(newRouter(t), "/accounts", map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := doGet(newRouter(t), "/accounts", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		w := doGet(newRouter(t), "/accounts", map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
		w := doGet(newRouter(t), "/accounts", map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token without expiry", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{"sub": "ops"})
		w := doGet(newRouter(t), "/accounts", map[string]string{"Authorization": "Bearer " + token})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("root is open", func(t *testing.T) {
		w := doGet(newRouter(t), "/", nil)
		require.Equal(t, http.StatusOK, w.Code)
	})
}
