package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wifiauth/internal/detect"
	"github.com/user/wifiauth/internal/login"
	"github.com/user/wifiauth/internal/model"
	"github.com/user/wifiauth/internal/profile"
	"github.com/user/wifiauth/internal/storage"
)

const twoNetworks = `
networks:
  home:
    ssid: HomeWiFi
    login_url: http://192.168.1.1/login.xml
    username: alice
    password: secret
  work:
    ssid: OfficeWiFi
    login_url: http://10.0.0.1/login.xml
    username: alice.w
    password: hunter2
`

type fakeExecutor struct {
	result   login.Result
	status   int
	err      error
	requests []login.Request
}

func (f *fakeExecutor) Login(_ context.Context, req login.Request) login.Result {
	f.requests = append(f.requests, req)
	return f.result
}

func (f *fakeExecutor) TestConnection(_ context.Context, rawURL string) (int, error) {
	f.requests = append(f.requests, login.Request{URL: rawURL})
	return f.status, f.err
}

type failingRecorder struct{}

func (failingRecorder) Record(*model.LoginAttempt) error {
	return &storage.StorageError{Op: "record attempt", Err: errors.New("disk I/O error")}
}

func newStore(t *testing.T) *storage.AttemptStorage {
	t.Helper()
	db, err := storage.Initialize(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewAttemptStorage(db)
}

func newProfiles(t *testing.T, doc string) *profile.Config {
	t.Helper()
	cfg, err := profile.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestLoginFailureIsRecordedAndAggregated(t *testing.T) {
	store := newStore(t)
	exec := &fakeExecutor{result: login.Result{
		Status:    login.StatusFailed,
		Message:   "connection refused",
		SessionID: "1700000000",
		Err:       &login.ExecutionError{URL: "http://10.0.0.1/login.xml", Err: errors.New("connection refused")},
	}}
	svc := NewService(newProfiles(t, twoNetworks), detect.Static{SSID: "OfficeWiFi"}, exec, store)

	out, err := svc.Login(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "work", out.Resolution.Profile.Name)
	assert.Equal(t, profile.RuleSSID, out.Resolution.Rule)
	require.Len(t, exec.requests, 1)
	assert.Equal(t, "http://10.0.0.1/login.xml", exec.requests[0].URL)
	assert.Equal(t, "alice.w", exec.requests[0].Username)
	assert.Equal(t, "hunter2", exec.requests[0].Password)
	assert.Equal(t, profile.DefaultProductType, exec.requests[0].ProductType)

	attempts, err := store.Recent(10, "")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	a := attempts[0]
	assert.Equal(t, "work", a.NetworkName)
	assert.Equal(t, "OfficeWiFi", a.NetworkSSID)
	assert.Equal(t, login.StatusFailed, a.ResponseStatus)
	assert.Equal(t, MaskedPassword, a.Password)
	assert.Equal(t, "1700000000", a.SessionID)

	stats, err := store.AggregateByNetwork()
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "work", stats[0].NetworkName)
	assert.Equal(t, 1, stats[0].TotalAttempts)
	assert.Equal(t, 0, stats[0].SuccessfulAttempts)
}

func TestLoginOverrideSkipsDetection(t *testing.T) {
	store := newStore(t)
	exec := &fakeExecutor{result: login.Result{Status: login.StatusSuccess, Message: "ok"}}
	det := detect.Static{Err: errors.New("must not be called")}
	svc := NewService(newProfiles(t, twoNetworks), det, exec, store)

	out, err := svc.Login(context.Background(), "home")
	require.NoError(t, err)
	assert.Equal(t, profile.RuleOverride, out.Resolution.Rule)
	assert.Empty(t, out.DetectedSSID)
	assert.Equal(t, "HomeWiFi", out.Attempt.NetworkSSID)
	assert.True(t, out.Result.Success())
}

func TestLoginUnknownOverride(t *testing.T) {
	exec := &fakeExecutor{}
	svc := NewService(newProfiles(t, twoNetworks), detect.Static{SSID: "HomeWiFi"}, exec, newStore(t))

	_, err := svc.Login(context.Background(), "school")
	var nerr *profile.NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Empty(t, exec.requests)
}

func TestLoginDetectionErrorFallsThrough(t *testing.T) {
	doc := "default_network: home\n" + twoNetworks
	exec := &fakeExecutor{result: login.Result{Status: login.StatusSuccess}}
	det := detect.Static{Err: &detect.DetectionError{Platform: "plan9", Err: detect.ErrUnsupported}}
	svc := NewService(newProfiles(t, doc), det, exec, newStore(t))

	out, err := svc.Login(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "home", out.Resolution.Profile.Name)
	assert.Equal(t, profile.RuleDefault, out.Resolution.Rule)
}

func TestLoginUnresolvable(t *testing.T) {
	exec := &fakeExecutor{}
	svc := NewService(newProfiles(t, twoNetworks), detect.Static{SSID: "CoffeeShop"}, exec, newStore(t))

	_, err := svc.Login(context.Background(), "")
	var rerr *profile.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Empty(t, exec.requests)
}

func TestLoginStorageFailureSurfaces(t *testing.T) {
	exec := &fakeExecutor{result: login.Result{Status: login.StatusSuccess}}
	svc := NewService(newProfiles(t, twoNetworks), detect.Static{SSID: "HomeWiFi"}, exec, failingRecorder{})

	_, err := svc.Login(context.Background(), "")
	var serr *storage.StorageError
	require.ErrorAs(t, err, &serr)
}

func TestTestConnection(t *testing.T) {
	exec := &fakeExecutor{status: 200}
	svc := NewService(newProfiles(t, twoNetworks), detect.Static{SSID: "HomeWiFi"}, exec, newStore(t))

	check, err := svc.TestConnection(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, check.OK())
	assert.Equal(t, "home", check.Profile.Name)
	assert.Equal(t, "http://192.168.1.1/login.xml", exec.requests[0].URL)
}

func TestDetectAndListProfiles(t *testing.T) {
	doc := "default_network: work\n" + twoNetworks
	svc := NewService(newProfiles(t, doc), detect.Static{SSID: "HomeWiFi"}, &fakeExecutor{}, newStore(t))

	d := svc.Detect(context.Background())
	require.NoError(t, d.Err)
	assert.Equal(t, "HomeWiFi", d.SSID)
	require.NotNil(t, d.Profile)
	assert.Equal(t, "home", d.Profile.Name)

	list, ssid := svc.ListProfiles(context.Background())
	assert.Equal(t, "HomeWiFi", ssid)
	require.Len(t, list, 2)
	assert.True(t, list[0].Current)
	assert.False(t, list[0].Default)
	assert.False(t, list[1].Current)
	assert.True(t, list[1].Default)
}

func TestDetectNoMatch(t *testing.T) {
	svc := NewService(newProfiles(t, twoNetworks), detect.Static{SSID: "CoffeeShop"}, &fakeExecutor{}, newStore(t))

	d := svc.Detect(context.Background())
	assert.Equal(t, "CoffeeShop", d.SSID)
	assert.Nil(t, d.Profile)
}
