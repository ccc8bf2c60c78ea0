package dvla

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v3"
	"github.com/dvla-io/dvla/api"
	"github.com/dvla-io/dvla/util"
	"github.com/dvla-io/dvla/util/request"
	"github.com/dvla-io/dvla/util/transport"
)

// https://developer-portal.driver-vehicle-licensing.api.gov.uk/apis/vehicle-enquiry-service/vehicle-enquiry-service-description.html

const (
	ApiURI    = "https://driver-vehicle-licensing.api.gov.uk/vehicle-enquiry/v1/vehicles"
	UatApiURI = "https://uat.driver-vehicle-licensing.api.gov.uk/vehicle-enquiry/v1/vehicles"
)

// ErrInvalidRegistration indicates an empty or malformed registration number
var ErrInvalidRegistration = errors.New("invalid registration number")

// API is an api.Vehicle implementation for the DVLA vehicle enquiry service
type API struct {
	*request.Helper
	uri     string
	retries uint
	delay   time.Duration
}

var _ api.Vehicle = (*API)(nil)

// NewAPI creates a new vehicle enquiry api client. An empty uri selects the production endpoint.
func NewAPI(log *util.Logger, uri, apiKey string, retries uint) *API {
	if uri == "" {
		uri = ApiURI
	}

	if retries == 0 {
		retries = 1
	}

	v := &API{
		Helper:  request.NewHelper(log),
		uri:     strings.TrimSuffix(uri, "/"),
		retries: retries,
		delay:   time.Second,
	}

	log.Redact(apiKey)

	v.Client.Transport = &transport.Decorator{
		Decorator: transport.DecorateHeaders(map[string]string{
			"x-api-key": apiKey,
		}),
		Base: v.Client.Transport,
	}

	return v
}

// Registration normalises a registration number by removing white space and converting to upper case
func Registration(reg string) (string, error) {
	reg = strings.ToUpper(strings.Join(strings.Fields(reg), ""))

	if reg == "" {
		return "", ErrInvalidRegistration
	}

	for _, r := range reg {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("%w: %s", ErrInvalidRegistration, reg)
		}
	}

	return reg, nil
}

// Vehicle implements the vehicle enquiry api
func (v *API) Vehicle(ctx context.Context, registration string) (api.Record, error) {
	reg, err := Registration(registration)
	if err != nil {
		return nil, err
	}

	var res api.Record

	err = retry.Do(
		func() error {
			res, err = v.enquiry(ctx, reg)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(v.retries),
		retry.Delay(v.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, api.ErrMustRetry)
		}),
	)

	return res, err
}

func (v *API) enquiry(ctx context.Context, reg string) (api.Record, error) {
	req, err := request.New(http.MethodPost, v.uri, request.MarshalJSON(Request{
		RegistrationNumber: reg,
	}), request.JSONEncoding)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err = v.DoJSON(req.WithContext(ctx), &raw)

	var se *request.StatusError
	if errors.As(err, &se) {
		var res ErrorResponse
		_ = json.Unmarshal(raw, &res)

		se = se.WithMessage(res.String())
		if se.HasStatus(http.StatusTooManyRequests) || se.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %v", api.ErrMustRetry, se)
		}

		return nil, se
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return nil, fmt.Errorf("%w: %v", api.ErrMustRetry, err)
	}

	if err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	var res api.Record
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}

	return res, nil
}
