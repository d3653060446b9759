// Package login performs the captive-portal login request and the related
// reachability checks.
package login

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// StatusSuccess is the recorded status of a successful login.
	StatusSuccess = "200"
	// StatusFailed is recorded when the request never produced a response.
	StatusFailed = "FAILED"

	// UnknownMessage is recorded when the portal response has no message.
	UnknownMessage = "Unknown response"

	loginMode       = "191"
	maxResponseBody = 1 << 20
)

var messageRegex = regexp.MustCompile(`<message><!\[CDATA\[(.*?)\]\]></message>`)

// Success reports whether a recorded response status denotes success.
func Success(status string) bool {
	return status == StatusSuccess
}

// ExecutionError reports a transport failure during a portal request.
type ExecutionError struct {
	URL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Request holds the parameters of one login.
type Request struct {
	URL         string
	Username    string
	Password    string
	ProductType string
}

// Result is the outcome of a login. Transport failures are reported in Err
// with Status set to StatusFailed; they are never returned as errors.
type Result struct {
	Status    string
	Message   string
	SessionID string
	Err       error
}

// Success reports whether the login succeeded.
func (r Result) Success() bool {
	return Success(r.Status)
}

// Executor sends portal requests over HTTP.
type Executor struct {
	client      *http.Client
	testTimeout time.Duration
	now         func() time.Time
}

// NewExecutor creates an executor. timeout bounds login requests and
// testTimeout bounds connection tests and connectivity probes.
func NewExecutor(timeout, testTimeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if testTimeout <= 0 {
		testTimeout = 5 * time.Second
	}
	return &Executor{
		client:      &http.Client{Timeout: timeout},
		testTimeout: testTimeout,
		now:         time.Now,
	}
}

// Login posts the credentials to the portal.
func (e *Executor) Login(ctx context.Context, req Request) Result {
	sessionID := strconv.FormatInt(e.now().Unix(), 10)

	form := url.Values{}
	form.Set("mode", loginMode)
	form.Set("username", req.Username)
	form.Set("password", req.Password)
	form.Set("a", sessionID)
	form.Set("producttype", req.ProductType)

	result := Result{SessionID: sessionID}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return failed(result, req.URL, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return failed(result, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return failed(result, req.URL, err)
	}

	result.Status = strconv.Itoa(resp.StatusCode)
	result.Message = ExtractMessage(string(body))
	return result
}

func failed(r Result, rawURL string, err error) Result {
	execErr := &ExecutionError{URL: rawURL, Err: err}
	r.Status = StatusFailed
	r.Message = err.Error()
	r.Err = execErr
	return r
}

// ExtractMessage returns the CDATA message of a portal XML response.
func ExtractMessage(body string) string {
	if m := messageRegex.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return UnknownMessage
}

// TestConnection issues a HEAD request to rawURL and returns the HTTP status
// code.
func (e *Executor) TestConnection(ctx context.Context, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.testTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, &ExecutionError{URL: rawURL, Err: err}
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return 0, &ExecutionError{URL: rawURL, Err: err}
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Online reports whether probeURL answers 204 No Content. A captive portal
// intercepts the probe and answers with a redirect or a login page instead.
func (e *Executor) Online(ctx context.Context, probeURL string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.testTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false, &ExecutionError{URL: probeURL, Err: err}
	}

	client := *e.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, &ExecutionError{URL: probeURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	return resp.StatusCode == http.StatusNoContent, nil
}
