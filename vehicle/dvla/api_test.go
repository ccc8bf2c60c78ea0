package dvla

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
	"github.com/dvla-io/dvla/util/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vehicleResponse = `{
	"registrationNumber": "WN67DSO",
	"taxStatus": "Taxed",
	"taxDueDate": "2025-12-01",
	"motStatus": "Valid",
	"make": "FORD",
	"yearOfManufacture": 2017,
	"engineCapacity": 1596,
	"co2Emissions": 140,
	"fuelType": "PETROL",
	"markedForExport": false,
	"colour": "BLUE",
	"typeApproval": "M1",
	"dateOfLastV5CIssued": "2021-05-19",
	"motExpiryDate": "2025-09-14",
	"wheelplan": "2 AXLE RIGID BODY",
	"monthOfFirstRegistration": "2017-09"
}`

func testServer(t *testing.T, status *int32, calls *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "WN67DSO", req.RegistrationNumber)

		w.Header().Set("Content-Type", "application/json")

		if code := atomic.LoadInt32(status); code != http.StatusOK {
			w.WriteHeader(int(code))
			_, _ = w.Write([]byte(`{"errors":[{"status":"404","code":"404","title":"Vehicle Not Found","detail":"Record for vehicle not found"}]}`))
			return
		}

		_, _ = w.Write([]byte(vehicleResponse))
	}))
}

func TestVehicle(t *testing.T) {
	status, calls := int32(http.StatusOK), int32(0)
	srv := testServer(t, &status, &calls)
	defer srv.Close()

	v := NewAPI(util.NewLogger("test"), srv.URL, "secret", 0)

	res, err := v.Vehicle(context.Background(), " wn67 dso ")
	require.NoError(t, err)

	assert.Equal(t, "WN67DSO", res["registrationNumber"])
	assert.Equal(t, "Taxed", res["taxStatus"])
	assert.Equal(t, float64(1596), res["engineCapacity"])
	assert.Equal(t, false, res["markedForExport"])
	assert.Len(t, res, 16)
}

func TestVehicleNotFound(t *testing.T) {
	status, calls := int32(http.StatusNotFound), int32(0)
	srv := testServer(t, &status, &calls)
	defer srv.Close()

	v := NewAPI(util.NewLogger("test"), srv.URL, "secret", 3)
	v.delay = 0

	_, err := v.Vehicle(context.Background(), "WN67DSO")
	require.Error(t, err)

	var se *request.StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.HasStatus(http.StatusNotFound))
	assert.Contains(t, err.Error(), "Vehicle Not Found (Record for vehicle not found)")
	assert.False(t, errors.Is(err, api.ErrMustRetry))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors must not be retried")
}

func TestVehicleRetry(t *testing.T) {
	status, calls := int32(http.StatusServiceUnavailable), int32(0)
	srv := testServer(t, &status, &calls)
	defer srv.Close()

	v := NewAPI(util.NewLogger("test"), srv.URL, "secret", 3)
	v.delay = 0

	_, err := v.Vehicle(context.Background(), "WN67DSO")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrMustRetry))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestVehicleUnreachable(t *testing.T) {
	status, calls := int32(http.StatusOK), int32(0)
	srv := testServer(t, &status, &calls)
	srv.Close()

	v := NewAPI(util.NewLogger("test"), srv.URL, "secret", 2)
	v.delay = 0

	_, err := v.Vehicle(context.Background(), "WN67DSO")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrMustRetry))
}

func TestVehicleInvalidResponse(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	v := NewAPI(util.NewLogger("test"), srv.URL, "secret", 3)
	v.delay = 0

	_, err := v.Vehicle(context.Background(), "WN67DSO")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response")
	assert.False(t, errors.Is(err, api.ErrMustRetry))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRegistration(t *testing.T) {
	for _, tc := range []struct {
		in, out string
		err     bool
	}{
		{"wn67dso", "WN67DSO", false},
		{" WN67 DSO ", "WN67DSO", false},
		{"", "", true},
		{"   ", "", true},
		{"WN67-DSO", "", true},
	} {
		res, err := Registration(tc.in)
		if tc.err {
			assert.ErrorIs(t, err, ErrInvalidRegistration, tc.in)
			continue
		}

		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, res)
	}
}

func TestErrorResponse(t *testing.T) {
	assert.Equal(t, "Forbidden", ErrorResponse{Message: "Forbidden"}.String())
	assert.Equal(t, "Bad Request", ErrorResponse{Errors: []Error{{Title: "Bad Request", Detail: "Bad Request"}}}.String())
}
