package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex sync.Mutex
	files map[string]string
}

func (m *memoryOutput) Write(id string, contents string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.files[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	tel := &TestAPI{}
	out := &memoryOutput{files: map[string]string{}}

	client := resty.New()
	InstrumentResty(client, tel, out)

	res, err := client.R().
		SetFormData(map[string]string{"a": "b"}).
		Post(server.URL + "/pot")
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, res.StatusCode())

	debug := tel.Reports("debug")
	require.Len(t, debug, 2)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, report_resty_response, debug[1].Id)

	require.Len(t, out.files, 1)
	dump := out.files["1"]
	require.True(t, strings.HasPrefix(dump, "---- REQUEST ----"))
	require.Contains(t, dump, "a=b")
	require.Contains(t, dump, "short and stout")
}

func TestInstrumentRestyWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("home page"))
	}))
	defer server.Close()

	out := &memoryOutput{files: map[string]string{}}
	client := resty.New()
	InstrumentResty(client, &TestAPI{}, out)

	res, err := client.R().Get(server.URL + "/home")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	require.Len(t, out.files, 1)
	dump := out.files["1"]
	require.Contains(t, dump, "GET "+server.URL+"/home")
	require.Contains(t, dump, "home page")
}

func TestInstrumentRestyRedactsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("signed in"))
	}))
	defer server.Close()

	out := &memoryOutput{files: map[string]string{}}
	client := resty.New()
	InstrumentResty(client, &TestAPI{}, out)

	_, err := client.R().
		SetFormData(map[string]string{
			"user[email]":        "player@example.com",
			"user[password]":     "hunter2",
			"authenticity_token": "csrf-secret",
		}).
		Post(server.URL + "/sessions")
	require.NoError(t, err)

	dump := out.files["1"]
	require.NotContains(t, dump, "hunter2")
	require.NotContains(t, dump, "csrf-secret")
	require.Contains(t, dump, "user%5Bpassword%5D=REDACTED")
	require.Contains(t, dump, "player%40example.com")
}

func TestScopedAPI(t *testing.T) {
	tel := &TestAPI{}
	scoped := NewScopedAPI("orcz", tel)
	scoped.ReportBroken("client.shift-codes", "boom")
	scoped.ReportCount("extract.rows", 3)

	broken := tel.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "orcz: client.shift-codes", broken[0].Id)

	counts := tel.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, []any{int64(3)}, counts[0].Params)
}
