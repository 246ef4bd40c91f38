package mpesa_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventtribe/ticketing/internal/adapter/mpesa"
	"github.com/eventtribe/ticketing/internal/core/ports"
)

const tokenKey = "mpesa:token:174379"

// 2026-03-14 09:30:00 UTC is 12:30:00 in Nairobi.
var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.Handler) (*mpesa.Client, redismock.ClientMock) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db, mockRedis := redismock.NewClientMock()
	client := mpesa.NewClient(mpesa.Config{
		BaseURL:        srv.URL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://api.example.com/payments/mpesa/callback?token=t",
		Timeout:        2 * time.Second,
	}, db, mpesa.WithClock(func() time.Time { return fixedNow }))

	return client, mockRedis
}

func TestInitiateSTKPush(t *testing.T) {
	var got map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))
		w.Write([]byte(`{"access_token":"tok","expires_in":"3599"}`))
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResponseCode": "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage": "Success. Request accepted for processing"
		}`))
	})

	client, mockRedis := newTestClient(t, mux)
	mockRedis.ExpectGet(tokenKey).RedisNil()
	mockRedis.ExpectSet(tokenKey, "tok", 3539*time.Second).SetVal("OK")

	resp, err := client.InitiateSTKPush(context.Background(), ports.STKPushRequest{
		BookingID:   "b1",
		PhoneNumber: "254712345678",
		Amount:      500,
		Description: "Payment for Nairobi Jazz Night",
	})

	require.NoError(t, err)
	assert.True(t, resp.Accepted())
	assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)

	assert.Equal(t, "20260314123000", got["Timestamp"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("174379passkey20260314123000")), got["Password"])
	assert.Equal(t, "CustomerPayBillOnline", got["TransactionType"])
	assert.Equal(t, float64(500), got["Amount"])
	assert.Equal(t, "254712345678", got["PartyA"])
	assert.Equal(t, "174379", got["PartyB"])
	assert.Equal(t, "b1", got["AccountReference"])
	assert.Equal(t, "Payment for Nairobi Jazz Night", got["TransactionDesc"])

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestInitiateSTKPush_UsesCachedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint must not be called")
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer cached", r.Header.Get("Authorization"))
		w.Write([]byte(`{"CheckoutRequestID":"ws_1","ResponseCode":"1","ResponseDescription":"Rejected"}`))
	})

	client, mockRedis := newTestClient(t, mux)
	mockRedis.ExpectGet(tokenKey).SetVal("cached")

	resp, err := client.InitiateSTKPush(context.Background(), ports.STKPushRequest{BookingID: "b1", PhoneNumber: "254712345678", Amount: 1})

	require.NoError(t, err)
	assert.False(t, resp.Accepted())
	assert.Equal(t, "Rejected", resp.ResponseDescription)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestInitiateSTKPush_ProviderError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"requestId":"r1","errorCode":"400.002.02","errorMessage":"Bad Request - Invalid PhoneNumber"}`))
	})

	client, mockRedis := newTestClient(t, mux)
	mockRedis.ExpectGet(tokenKey).SetVal("cached")

	_, err := client.InitiateSTKPush(context.Background(), ports.STKPushRequest{BookingID: "b1", PhoneNumber: "254712345678", Amount: 1})

	var perr *ports.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Equal(t, "400.002.02", perr.Code)
	assert.Equal(t, "Bad Request - Invalid PhoneNumber", perr.Description)
}

func TestInitiateSTKPush_UnauthorizedDropsCachedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorCode":"404.001.04","errorMessage":"Invalid Access Token"}`))
	})

	client, mockRedis := newTestClient(t, mux)
	mockRedis.ExpectGet(tokenKey).SetVal("stale")
	mockRedis.ExpectDel(tokenKey).SetVal(1)

	_, err := client.InitiateSTKPush(context.Background(), ports.STKPushRequest{BookingID: "b1", PhoneNumber: "254712345678", Amount: 1})

	assert.Error(t, err)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestInitiateSTKPush_TokenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorCode":"400.008.01","errorMessage":"Invalid Authentication passed"}`))
	})

	client, mockRedis := newTestClient(t, mux)
	mockRedis.ExpectGet(tokenKey).RedisNil()

	_, err := client.InitiateSTKPush(context.Background(), ports.STKPushRequest{BookingID: "b1"})

	var perr *ports.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Invalid Authentication passed", perr.Description)
}

func TestInitiateSTKPush_CacheDownStillWorks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"fresh","expires_in":"3599"}`))
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		w.Write([]byte(`{"CheckoutRequestID":"ws_1","ResponseCode":"0"}`))
	})

	client, mockRedis := newTestClient(t, mux)
	mockRedis.ExpectGet(tokenKey).SetErr(errors.New("connection refused"))
	mockRedis.ExpectSet(tokenKey, "fresh", 3539*time.Second).SetErr(errors.New("connection refused"))

	resp, err := client.InitiateSTKPush(context.Background(), ports.STKPushRequest{BookingID: "b1", PhoneNumber: "254712345678", Amount: 1})

	require.NoError(t, err)
	assert.True(t, resp.Accepted())
}

func TestQuerySTKPush(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   int
		processing bool
		wantErr    bool
	}{
		{
			name:     "paid",
			status:   http.StatusOK,
			body:     `{"ResponseCode":"0","ResultCode":"0","ResultDesc":"The service request is processed successfully."}`,
			wantCode: 0,
		},
		{
			name:     "cancelled",
			status:   http.StatusOK,
			body:     `{"ResponseCode":"0","ResultCode":"1032","ResultDesc":"Request cancelled by user"}`,
			wantCode: 1032,
		},
		{
			name:     "numeric result code",
			status:   http.StatusOK,
			body:     `{"ResponseCode":"0","ResultCode":1037,"ResultDesc":"DS timeout user cannot be reached"}`,
			wantCode: 1037,
		},
		{
			name:       "still processing error",
			status:     http.StatusInternalServerError,
			body:       `{"requestId":"r","errorCode":"500.001.1001","errorMessage":"The transaction is being processed"}`,
			processing: true,
		},
		{
			name:    "query not accepted",
			status:  http.StatusOK,
			body:    `{"ResponseCode":"1","ResponseDescription":"The transaction could not be queried"}`,
			wantErr: true,
		},
		{
			name:    "accepted without result code",
			status:  http.StatusOK,
			body:    `{"ResponseCode":"0","ResponseDescription":"The service request has been accepted successsfully"}`,
			wantErr: true,
		},
		{
			name:    "null result code",
			status:  http.StatusOK,
			body:    `{"ResponseCode":"0","ResultCode":null}`,
			wantErr: true,
		},
		{
			name:       "still processing result",
			status:     http.StatusOK,
			body:       `{"ResponseCode":"0","ResultCode":"4999","ResultDesc":"The transaction is still under processing"}`,
			processing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/mpesa/stkpushquery/v1/query", func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "ws_CO_1", body["CheckoutRequestID"])
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			client, mockRedis := newTestClient(t, mux)
			mockRedis.ExpectGet(tokenKey).SetVal("cached")

			res, err := client.QuerySTKPush(context.Background(), "ws_CO_1")

			if tt.processing {
				assert.ErrorIs(t, err, ports.ErrPaymentStillProcessing)
				return
			}
			if tt.wantErr {
				var perr *ports.ProviderError
				require.ErrorAs(t, err, &perr)
				assert.NotErrorIs(t, err, ports.ErrPaymentStillProcessing)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.ResultCode)
		})
	}
}
