package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnproc/internal/errors"
	"txnproc/internal/models"
)

type fakeBatchService struct {
	result       *models.ProcessBatchResult
	processErr   error
	decisions    []models.Decision
	decisionsErr error
}

func (f *fakeBatchService) Process(ctx context.Context, req *models.ProcessBatchRequest) (*models.ProcessBatchResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return f.result, nil
}

func (f *fakeBatchService) GetDecisions(ctx context.Context, batchID string) ([]models.Decision, error) {
	if f.decisionsErr != nil {
		return nil, f.decisionsErr
	}
	return f.decisions, nil
}

func testRouter(svc *fakeBatchService) *mux.Router {
	h := NewBatchHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func TestProcessBatch_OK(t *testing.T) {
	svc := &fakeBatchService{
		result: &models.ProcessBatchResult{
			BatchID: "batch-1",
			Decisions: []models.Decision{
				{TransactionID: "T1", Status: models.StatusApproved, Reason: "OK"},
			},
		},
	}
	router := testRouter(svc)

	body := `{"accounts":[{"id":"U1"}],"transactions":[{"id":"T1","user_id":"U1","kind":"DEPOSIT","amount":"100","method":"TRANSFER","payment_account_id":"LT601010012345678901"}]}`
	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ProcessBatchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, "batch-1", result.BatchID)
	require.Len(t, result.Decisions, 1)
	assert.Equal(t, models.StatusApproved, result.Decisions[0].Status)
}

func TestProcessBatch_BadPayload(t *testing.T) {
	router := testRouter(&fakeBatchService{})

	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBatch_EmptyBatch(t *testing.T) {
	router := testRouter(&fakeBatchService{processErr: errors.ErrEmptyBatch})

	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(`{"transactions":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBatch_ValidationError(t *testing.T) {
	router := testRouter(&fakeBatchService{processErr: errors.NewValidationError("accounts", "duplicate account id")})

	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBatch_InternalError(t *testing.T) {
	router := testRouter(&fakeBatchService{processErr: io.ErrUnexpectedEOF})

	req := httptest.NewRequest(http.MethodPost, "/batches", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetDecisions_OK(t *testing.T) {
	svc := &fakeBatchService{
		decisions: []models.Decision{
			{TransactionID: "T1", Status: models.StatusApproved, Reason: "OK"},
			{TransactionID: "T2", Status: models.StatusDeclined, Reason: "User U9 not found in Users"},
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/batches/batch-1/decisions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var decisions []models.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&decisions))
	require.Len(t, decisions, 2)
	assert.Equal(t, "T2", decisions[1].TransactionID)
}

func TestGetDecisions_NotFound(t *testing.T) {
	router := testRouter(&fakeBatchService{decisionsErr: errors.ErrBatchNotFound})

	req := httptest.NewRequest(http.MethodGet, "/batches/missing/decisions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDecisions_ArchiveDisabled(t *testing.T) {
	router := testRouter(&fakeBatchService{decisionsErr: errors.ErrArchiveDisabled})

	req := httptest.NewRequest(http.MethodGet, "/batches/batch-1/decisions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
